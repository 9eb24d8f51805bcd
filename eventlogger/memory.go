package eventlogger

import (
	"context"
	"log/slog"
	"sync"
)

// memoryEventLogger writes events to slog and keeps the most recent ones
// in memory. Used when no event database is configured.
type memoryEventLogger struct {
	mu       sync.Mutex
	logger   *slog.Logger
	events   []Event
	capacity int
}

func NewMemoryEventLogger(logger *slog.Logger, capacity int) *memoryEventLogger {
	if capacity <= 0 {
		capacity = 1000
	}
	return &memoryEventLogger{
		logger:   logger,
		capacity: capacity,
	}
}

func (el *memoryEventLogger) Save(ctx context.Context, e Event) error {
	el.logger.InfoContext(ctx, "event",
		"event_id", e.ID.String(),
		"event_type", e.Type,
		"event_data", e.Data,
		"event_metadata", e.Metadata,
	)

	el.mu.Lock()
	defer el.mu.Unlock()
	if len(el.events) == el.capacity {
		copy(el.events, el.events[1:])
		el.events = el.events[:len(el.events)-1]
	}
	el.events = append(el.events, e)
	return nil
}

func (el *memoryEventLogger) GetByType(ctx context.Context, eventType string) ([]Event, error) {
	el.mu.Lock()
	defer el.mu.Unlock()

	events := make([]Event, 0)
	for _, e := range el.events {
		if e.Type == eventType {
			events = append(events, e)
		}
	}
	return events, nil
}
