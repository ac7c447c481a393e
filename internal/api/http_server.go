// Package api is the HTTP boundary: upload, aggregate views, exports.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"ridepulse/internal/config"
	"ridepulse/internal/domain"
	"ridepulse/internal/service"

	"github.com/rs/zerolog"
)

// HTTPServer exposes the dataset API.
type HTTPServer struct {
	cfg       config.APIConfig
	svc       *service.DatasetService
	exporter  domain.ExportEnqueuer
	maxUpload int64
	server    *http.Server
	auth      *HTTPAuth
	logger    *zerolog.Logger
}

func NewHTTPServer(
	cfg config.APIConfig,
	svc *service.DatasetService,
	exporter domain.ExportEnqueuer,
	maxUpload int64,
	logger *zerolog.Logger,
) *HTTPServer {
	mux := http.NewServeMux()
	srv := &HTTPServer{
		cfg:       cfg,
		svc:       svc,
		exporter:  exporter,
		maxUpload: maxUpload,
		logger:    logger,
	}
	srv.auth = NewHTTPAuth(cfg)

	mux.HandleFunc("/healthz", srv.handleHealth)
	mux.HandleFunc("/api/v1/datasets", srv.handleDatasets)
	mux.HandleFunc("/api/v1/datasets/", srv.handleDataset)

	handler := loggingMiddleware(logger, srv.auth.Wrap(mux))

	srv.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second,
	}

	return srv
}

// Handler returns the fully wrapped handler, mainly for tests.
func (s *HTTPServer) Handler() http.Handler {
	return s.server.Handler
}

func (s *HTTPServer) Start() error {
	if s.server == nil {
		return fmt.Errorf("http server is not initialized")
	}
	s.logger.Info().Str("addr", s.server.Addr).Msg("HTTP API listening")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *HTTPServer) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func loggingMiddleware(logger *zerolog.Logger, next http.Handler) http.Handler {
	base := zerolog.Nop()
	if logger != nil {
		base = logger.With().Str("component", "http").Logger()
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)

		base.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", recorder.status).
			Dur("duration", time.Since(start)).
			Msg("http request")
	})
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{"error": message})
}

// writeRawJSON writes a payload that is already serialized JSON.
func writeRawJSON(w http.ResponseWriter, statusCode int, payload []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_, _ = w.Write(payload)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
