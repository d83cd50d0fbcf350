package db

import (
	"github.com/jackc/pgx/v5"

	"github.com/gyeh/joblog/internal/model"
)

// EventSource implements pgx.CopyFromSource over a slice of normalized events.
type EventSource struct {
	events []model.Event
	pos    int
}

// NewEventSource creates a CopyFromSource backed by events.
func NewEventSource(events []model.Event) *EventSource {
	return &EventSource{events: events, pos: -1}
}

// Next advances to the next event. Returns false after the last one.
func (s *EventSource) Next() bool {
	s.pos++
	return s.pos < len(s.events)
}

// Values returns the current event's values in COPY column order.
func (s *EventSource) Values() ([]any, error) {
	return s.events[s.pos].CopyValues(), nil
}

// Err always returns nil; a slice cannot fail mid-iteration.
func (s *EventSource) Err() error {
	return nil
}

// Compile-time check that EventSource satisfies the interface.
var _ pgx.CopyFromSource = (*EventSource)(nil)
