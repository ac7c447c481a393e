// Package worker runs background export jobs off the request path.
package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ridepulse/internal/domain"
	"ridepulse/internal/events"
	"ridepulse/internal/export"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var (
	ErrUnknownSession = errors.New("unknown session")
	ErrQueueFull      = errors.New("export queue is full")
)

// ExportTask is one scheduled workbook export.
type ExportTask struct {
	ID        string
	SessionID string
	CreatedAt time.Time
}

// ExportWorker drains a bounded queue of export tasks, writing XLSX
// workbooks to disk with retries. Failures for sessions that expired
// mid-flight are terminal.
type ExportWorker struct {
	store       domain.SessionStore
	eventBus    domain.EventPublisher
	exportDir   string
	retryPolicy RetryPolicy
	queue       chan ExportTask
	logger      *zerolog.Logger
}

// NewExportWorker builds a worker with sane retry defaults.
func NewExportWorker(
	store domain.SessionStore,
	eventBus domain.EventPublisher,
	exportDir string,
	retry RetryPolicy,
	queueSize int,
	logger *zerolog.Logger,
) *ExportWorker {
	if retry.MaxRetries == 0 {
		retry.MaxRetries = 3
	}
	if retry.InitialDelay == 0 {
		retry.InitialDelay = time.Second
	}
	if retry.MaxDelay == 0 {
		retry.MaxDelay = 30 * time.Second
	}
	if retry.BackoffFactor == 0 {
		retry.BackoffFactor = 2
	}
	if queueSize <= 0 {
		queueSize = 32
	}

	return &ExportWorker{
		store:       store,
		eventBus:    eventBus,
		exportDir:   exportDir,
		retryPolicy: retry,
		queue:       make(chan ExportTask, queueSize),
		logger:      logger,
	}
}

// Enqueue schedules an export for the session and returns the task ID.
func (w *ExportWorker) Enqueue(_ context.Context, sessionID string) (string, error) {
	if _, ok := w.store.Get(sessionID); !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownSession, sessionID)
	}

	task := ExportTask{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		CreatedAt: time.Now(),
	}

	select {
	case w.queue <- task:
		return task.ID, nil
	default:
		return "", ErrQueueFull
	}
}

// Start drains the queue until ctx is done.
func (w *ExportWorker) Start(ctx context.Context) {
	w.logger.Info().Msg("export worker started")
	defer w.logger.Info().Msg("export worker stopped")

	for {
		select {
		case <-ctx.Done():
			return
		case task := <-w.queue:
			w.processTask(ctx, task)
		}
	}
}

func (w *ExportWorker) processTask(ctx context.Context, task ExportTask) {
	for attempt := 1; attempt <= w.retryPolicy.MaxRetries; attempt++ {
		ds, ok := w.store.Get(task.SessionID)
		if !ok {
			// The session expired while the task was queued.
			w.logger.Warn().
				Str("task_id", task.ID).
				Str("session_id", task.SessionID).
				Msg("session gone, export dropped")
			return
		}

		path, err := export.SaveXLSX(w.exportDir, task.SessionID, ds)
		if err == nil {
			w.logger.Info().
				Str("task_id", task.ID).
				Str("session_id", task.SessionID).
				Str("file_path", path).
				Msg("export written")
			w.publishExportEvent(task.SessionID, path)
			return
		}

		w.logger.Error().Err(err).
			Str("task_id", task.ID).
			Int("attempt", attempt).
			Msg("export attempt failed")

		if attempt == w.retryPolicy.MaxRetries {
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(w.retryPolicy.NextDelay(attempt)):
		}
	}
}

func (w *ExportWorker) publishExportEvent(sessionID, path string) {
	if w.eventBus == nil {
		return
	}

	payload := events.ExportEventPayload{
		SessionID: sessionID,
		Format:    "xlsx",
		Path:      path,
	}
	if err := w.eventBus.PublishJSON(events.EventExportCreated, payload); err != nil {
		w.logger.Error().Err(err).Str("session_id", sessionID).Msg("publish export event error")
	}
}
