package eventlogger

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Event types emitted by the quote service.
const (
	TypeSheetCreated   = "sheet.created"
	TypeQuoteSubmitted = "quote.submitted"
	TypeQuoteCaptured  = "quote.captured"
	TypeCaptureFailed  = "quote.capture_failed"
)

type Event struct {
	ID        uuid.UUID         `json:"id,omitempty"`
	Type      string            `json:"event_type,omitempty"`
	Data      any               `json:"event_data,omitempty"`
	Metadata  map[string]string `json:"event_metadata,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}

type EventOption func(*Event)

func WithType(eventType string) EventOption {
	return func(e *Event) {
		e.Type = eventType
	}
}

func WithData(data any) EventOption {
	return func(e *Event) {
		e.Data = data
	}
}

func WithMetadata(metadata map[string]string) EventOption {
	return func(e *Event) {
		for k, v := range metadata {
			e.Metadata[k] = v
		}
	}
}

// WithSession tags the event with the sheet session it came from.
func WithSession(sessionID uuid.UUID) EventOption {
	return func(e *Event) {
		e.Metadata["session_id"] = sessionID.String()
	}
}

func NewEvent(opts ...EventOption) Event {
	e := Event{
		ID:        uuid.New(),
		CreatedAt: time.Now().UTC(),
		Metadata:  make(map[string]string),
	}
	for _, opt := range opts {
		opt(&e)
	}
	return e
}

type EventLogger interface {
	Save(ctx context.Context, e Event) error
	GetByType(ctx context.Context, eventType string) ([]Event, error)
}
