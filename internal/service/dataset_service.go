package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"ridepulse/internal/analytics"
	"ridepulse/internal/domain"
	"ridepulse/internal/events"
	"ridepulse/internal/models"
	"ridepulse/internal/pipeline"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrUnknownView     = errors.New("unknown aggregate view")
)

// DatasetService owns the upload-to-aggregate lifecycle: it runs the
// cleaning pipeline, keeps the result in the session store, and renders
// the aggregate views with an optional cache in front.
type DatasetService struct {
	store    domain.SessionStore
	cache    domain.AggregateCache
	eventBus domain.EventPublisher
	pipeline *pipeline.Pipeline
	topN     int
	bins     int
	logger   *zerolog.Logger
}

func NewDatasetService(
	store domain.SessionStore,
	cache domain.AggregateCache,
	eventBus domain.EventPublisher,
	p *pipeline.Pipeline,
	topN, bins int,
	logger *zerolog.Logger,
) *DatasetService {
	if topN <= 0 {
		topN = models.DefaultTopN
	}
	if bins <= 0 {
		bins = models.DefaultHistogramBins
	}
	return &DatasetService{
		store:    store,
		cache:    cache,
		eventBus: eventBus,
		pipeline: p,
		topN:     topN,
		bins:     bins,
		logger:   logger,
	}
}

// Upload ingests raw delimited data into the session. An empty session
// ID starts a fresh session; an existing one has its dataset replaced.
func (s *DatasetService) Upload(ctx context.Context, r io.Reader, sessionID string) (*models.UploadResult, error) {
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	ds, err := s.pipeline.Run(r)
	if err != nil {
		return nil, err
	}

	_, replaced := s.store.Get(sessionID)

	if err := s.store.Put(sessionID, ds); err != nil {
		return nil, fmt.Errorf("failed to store dataset: %w", err)
	}

	s.invalidateCache(ctx, sessionID)

	eventType := events.EventDatasetLoaded
	if replaced {
		eventType = events.EventDatasetReplaced
	}
	s.publishDatasetEvent(eventType, sessionID, ds)

	overview := analytics.Overview(ds)

	s.logger.Info().
		Str("session_id", sessionID).
		Int("rows", ds.Nrow()).
		Int("columns", ds.Ncol()).
		Bool("replaced", replaced).
		Msg("dataset loaded")

	return &models.UploadResult{
		SessionID: sessionID,
		Rows:      ds.Nrow(),
		Columns:   ds.Ncol(),
		Replaced:  replaced,
		Overview:  overview,
	}, nil
}

// Dataset returns the live dataset for a session.
func (s *DatasetService) Dataset(sessionID string) (*pipeline.Dataset, error) {
	ds, ok := s.store.Get(sessionID)
	if !ok {
		return nil, ErrSessionNotFound
	}
	return ds, nil
}

// Aggregate renders one view of the session's dataset as JSON, serving
// from the cache when possible.
func (s *DatasetService) Aggregate(ctx context.Context, sessionID, view string) ([]byte, error) {
	if !analytics.IsView(view) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownView, view)
	}

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, sessionID, view)
		if err != nil {
			s.logger.Warn().Err(err).Str("view", view).Msg("aggregate cache read error")
		} else if cached != nil {
			return cached, nil
		}
	}

	ds, err := s.Dataset(sessionID)
	if err != nil {
		return nil, err
	}

	result, err := s.compute(ds, view)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s aggregate: %w", view, err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, sessionID, view, payload); err != nil {
			s.logger.Warn().Err(err).Str("view", view).Msg("aggregate cache write error")
		}
	}

	return payload, nil
}

func (s *DatasetService) compute(ds *pipeline.Dataset, view string) (interface{}, error) {
	switch view {
	case analytics.ViewOverview:
		return analytics.Overview(ds), nil
	case analytics.ViewDemand:
		return analytics.Demand(ds), nil
	case analytics.ViewCancellations:
		return analytics.Cancellations(ds, s.topN), nil
	case analytics.ViewRevenue:
		return analytics.Revenue(ds, s.bins), nil
	case analytics.ViewEngagement:
		return analytics.Engagement(ds, s.topN), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownView, view)
	}
}

// ExportCSV streams the cleaned dataset, derived columns included, as
// CSV.
func (s *DatasetService) ExportCSV(_ context.Context, sessionID string, w io.Writer) error {
	ds, err := s.Dataset(sessionID)
	if err != nil {
		return err
	}
	return ds.WriteCSV(w)
}

func (s *DatasetService) invalidateCache(ctx context.Context, sessionID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, sessionID); err != nil {
		s.logger.Warn().Err(err).Str("session_id", sessionID).Msg("aggregate cache invalidation error")
	}
}

func (s *DatasetService) publishDatasetEvent(eventType, sessionID string, ds *pipeline.Dataset) {
	if s.eventBus == nil {
		return
	}

	payload := events.DatasetEventPayload{
		SessionID: sessionID,
		Rows:      ds.Nrow(),
		Columns:   ds.Ncol(),
	}

	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("event_type", eventType).Str("session_id", sessionID).Msg("publish event error")
	}
}
