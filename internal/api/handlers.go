package api

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"ridepulse/internal/export"
	"ridepulse/internal/metrics"
	"ridepulse/internal/pipeline"
	"ridepulse/internal/service"
	"ridepulse/internal/session"
	"ridepulse/internal/worker"
)

func (s *HTTPServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleDatasets covers the collection endpoint: POST uploads a new
// dataset into a fresh session.
func (s *HTTPServer) handleDatasets(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	s.upload(w, r, "")
}

// handleDataset routes /api/v1/datasets/{id}[/op].
func (s *HTTPServer) handleDataset(w http.ResponseWriter, r *http.Request) {
	const prefix = "/api/v1/datasets/"
	rest := strings.TrimPrefix(r.URL.Path, prefix)
	parts := strings.Split(strings.Trim(rest, "/"), "/")
	if len(parts) == 0 || parts[0] == "" {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	sessionID := parts[0]

	if len(parts) == 1 {
		switch r.Method {
		case http.MethodPost, http.MethodPut:
			// Re-upload into an existing session replaces its dataset.
			s.upload(w, r, sessionID)
		default:
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		}
		return
	}

	if len(parts) != 2 {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	op := parts[1]
	switch {
	case op == "export":
		s.exportCSV(w, r, sessionID)
	case op == "export.xlsx":
		s.exportXLSX(w, r, sessionID)
	case op == "exports":
		s.enqueueExport(w, r, sessionID)
	default:
		s.aggregate(w, r, sessionID, op)
	}
}

func (s *HTTPServer) upload(w http.ResponseWriter, r *http.Request, sessionID string) {
	metrics.IncHTTP("upload")

	body, err := s.uploadBody(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	defer body.Close()

	result, err := s.svc.Upload(r.Context(), body, sessionID)
	if err != nil {
		s.writeUploadError(w, err)
		return
	}

	metrics.IncUpload(result.Rows)
	writeJSON(w, http.StatusCreated, result)
}

// uploadBody returns the CSV stream from either a multipart "file"
// field or the raw request body, size-capped in both cases.
func (s *HTTPServer) uploadBody(w http.ResponseWriter, r *http.Request) (io.ReadCloser, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)

	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err == nil && strings.HasPrefix(mediaType, "multipart/") {
		if err := r.ParseMultipartForm(s.maxUpload); err != nil {
			return nil, fmt.Errorf("invalid multipart body: %w", err)
		}
		file, _, err := r.FormFile("file")
		if err != nil {
			return nil, errors.New("multipart field 'file' is required")
		}
		return file, nil
	}

	return r.Body, nil
}

func (s *HTTPServer) writeUploadError(w http.ResponseWriter, err error) {
	var maxBytesErr *http.MaxBytesError
	switch {
	case pipeline.IsSchemaError(err), errors.Is(err, pipeline.ErrEmptyInput):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &maxBytesErr):
		writeError(w, http.StatusRequestEntityTooLarge, "upload too large")
	case errors.Is(err, session.ErrStoreFull):
		writeError(w, http.StatusServiceUnavailable, "too many live sessions, retry later")
	default:
		s.logger.Error().Err(err).Msg("upload failed")
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func (s *HTTPServer) aggregate(w http.ResponseWriter, r *http.Request, sessionID, view string) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	metrics.IncHTTP("aggregate")

	payload, err := s.svc.Aggregate(r.Context(), sessionID, view)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUnknownView):
			writeError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrSessionNotFound):
			writeError(w, http.StatusNotFound, "session not found")
		default:
			s.logger.Error().Err(err).Str("view", view).Msg("aggregate failed")
			writeError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}

	metrics.IncAggregate(view)
	writeRawJSON(w, http.StatusOK, payload)
}

func (s *HTTPServer) exportCSV(w http.ResponseWriter, r *http.Request, sessionID string) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	metrics.IncHTTP("export")

	ds, err := s.svc.Dataset(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="bookings_cleaned.csv"`)
	if err := ds.WriteCSV(w); err != nil {
		s.logger.Error().Err(err).Str("session_id", sessionID).Msg("csv export failed")
		return
	}
	metrics.IncExport("csv")
}

func (s *HTTPServer) exportXLSX(w http.ResponseWriter, r *http.Request, sessionID string) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	metrics.IncHTTP("export")

	ds, err := s.svc.Dataset(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="bookings_cleaned.xlsx"`)
	if err := export.WriteXLSX(w, ds); err != nil {
		s.logger.Error().Err(err).Str("session_id", sessionID).Msg("xlsx export failed")
		return
	}
	metrics.IncExport("xlsx")
}

// enqueueExport schedules a background XLSX export so large workbooks
// stay off the request path.
func (s *HTTPServer) enqueueExport(w http.ResponseWriter, r *http.Request, sessionID string) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	metrics.IncHTTP("export")

	if s.exporter == nil {
		writeError(w, http.StatusNotImplemented, "background exports are disabled")
		return
	}

	exportID, err := s.exporter.Enqueue(r.Context(), sessionID)
	if err != nil {
		switch {
		case errors.Is(err, worker.ErrUnknownSession):
			writeError(w, http.StatusNotFound, "session not found")
		case errors.Is(err, worker.ErrQueueFull):
			writeError(w, http.StatusServiceUnavailable, "export queue is full, retry later")
		default:
			s.logger.Error().Err(err).Str("session_id", sessionID).Msg("export enqueue failed")
			writeError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]string{
		"export_id": exportID,
		"status":    "queued",
	})
}
