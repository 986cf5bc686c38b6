package analytics

import (
	"context"
	"time"
)

// Event is one storefront analytics event. Emission is always
// fire-and-forget: no caller ever waits on, retries, or fails because
// of an event.
type Event struct {
	Action    string         `json:"action"`
	SessionID string         `json:"session_id"`
	ProductID string         `json:"product_id,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// Tracker delivers events to the analytics backend.
type Tracker interface {
	Track(ctx context.Context, event Event) error
}

// NoopTracker drops every event. Used when no broker is configured.
type NoopTracker struct{}

func (NoopTracker) Track(context.Context, Event) error { return nil }
