package eventlogger

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrUnknownDriver = errors.New("unknown event store driver")

// Dialect differences between the supported drivers are limited to
// placeholder syntax.
type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectSQLite   Dialect = "sqlite"
)

const createEventsTable = `CREATE TABLE IF NOT EXISTS events (
	id             TEXT PRIMARY KEY,
	event_type     TEXT NOT NULL,
	event_data     TEXT,
	event_metadata TEXT,
	created_at     TEXT NOT NULL
)`

const createEventsTypeIndex = `CREATE INDEX IF NOT EXISTS idx_events_type ON events (event_type, created_at)`

type sqlEventLogger struct {
	db      *sql.DB
	dialect Dialect
}

func NewSqlEventLogger(db *sql.DB, dialect Dialect) (*sqlEventLogger, error) {
	switch dialect {
	case DialectPostgres, DialectSQLite:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, dialect)
	}
	return &sqlEventLogger{
		db:      db,
		dialect: dialect,
	}, nil
}

// Migrate creates the events table when it does not exist yet.
func (el *sqlEventLogger) Migrate(ctx context.Context) error {
	for _, stmt := range []string{createEventsTable, createEventsTypeIndex} {
		if _, err := el.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrating events table: %w", err)
		}
	}
	return nil
}

// bind rewrites $n placeholders for drivers that want ?.
func (el *sqlEventLogger) bind(query string, n int) string {
	if el.dialect == DialectPostgres {
		return query
	}
	for i := n; i >= 1; i-- {
		query = strings.ReplaceAll(query, fmt.Sprintf("$%d", i), "?")
	}
	return query
}

func (el *sqlEventLogger) Save(ctx context.Context, e Event) error {
	jsonData, err := json.Marshal(e.Data)
	if err != nil {
		return err
	}
	jsonMetadata, err := json.Marshal(e.Metadata)
	if err != nil {
		return err
	}
	statement := el.bind(`INSERT INTO events (id, event_type, event_data, event_metadata, created_at) VALUES ($1, $2, $3, $4, $5)`, 5)
	_, err = el.db.ExecContext(ctx, statement, e.ID.String(), e.Type, string(jsonData), string(jsonMetadata), e.CreatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("inserting event: %w", err)
	}

	return nil
}

// GetByType returns events oldest first. Event data comes back as raw JSON.
func (el *sqlEventLogger) GetByType(ctx context.Context, eventType string) ([]Event, error) {
	query := el.bind(`SELECT id, event_type, event_data, event_metadata, created_at FROM events WHERE event_type = $1 ORDER BY created_at`, 1)
	result, err := el.db.QueryContext(ctx, query, eventType)
	if err != nil {
		return nil, fmt.Errorf("querying events: %w", err)
	}
	defer result.Close()

	events := make([]Event, 0)
	for result.Next() {
		var event Event
		var id, createdAt string
		var jsonData, jsonMetadata sql.NullString
		if err := result.Scan(&id, &event.Type, &jsonData, &jsonMetadata, &createdAt); err != nil {
			return events, err
		}
		if err := event.ID.UnmarshalText([]byte(id)); err != nil {
			return events, fmt.Errorf("parsing event id: %w", err)
		}
		if event.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
			return events, fmt.Errorf("parsing event time: %w", err)
		}
		if jsonData.Valid {
			event.Data = json.RawMessage(jsonData.String)
		}
		if jsonMetadata.Valid {
			var metadata map[string]string
			if err := json.Unmarshal([]byte(jsonMetadata.String), &metadata); err != nil {
				return events, fmt.Errorf("decoding event metadata: %w", err)
			}
			event.Metadata = metadata
		}

		events = append(events, event)
	}

	if err := result.Err(); err != nil {
		return events, err
	}

	return events, nil
}
