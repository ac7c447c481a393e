package domain

import (
	"context"

	"ridepulse/internal/pipeline"
)

// SessionStore keeps cleaned datasets for the lifetime of a dashboard
// session. Implementations expire entries on TTL and cap the number of
// live sessions.
type SessionStore interface {
	Get(id string) (*pipeline.Dataset, bool)
	Put(id string, ds *pipeline.Dataset) error
	Delete(id string)
	Len() int
}

// AggregateCache stores rendered aggregate payloads keyed by session
// and view. A nil cache is valid: callers must work without one.
type AggregateCache interface {
	Get(ctx context.Context, sessionID, view string) ([]byte, error)
	Set(ctx context.Context, sessionID, view string, payload []byte) error
	Invalidate(ctx context.Context, sessionID string) error
}

// EventPublisher fans dataset lifecycle events out to subscribers.
type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

// ExportEnqueuer schedules background XLSX exports.
type ExportEnqueuer interface {
	Enqueue(ctx context.Context, sessionID string) (string, error)
}
