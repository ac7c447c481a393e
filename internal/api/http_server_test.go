package api

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"ridepulse/internal/config"
	"ridepulse/internal/models"
	"ridepulse/internal/pipeline"
	"ridepulse/internal/service"
	"ridepulse/internal/session"
	"ridepulse/internal/worker"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const apiCSV = "Date,Time,Booking Status,Booking ID,Customer ID,Booking Value,Payment Method\n" +
	"2024-03-01,10:00:00,Completed,B1,C1,250,UPI\n" +
	"2024-03-01,11:00:00,Cancelled By Driver,B2,C2,300,Cash\n" +
	"2024-03-02,09:30:00,Completed,B3,C1,120,UPI\n"

func newTestServer(t *testing.T, cfg config.APIConfig) *HTTPServer {
	t.Helper()

	p := pipeline.New(pipeline.NewStatusSets(
		[]string{"Completed"},
		[]string{"Cancelled By Customer"},
		[]string{"Cancelled By Driver"},
		[]string{"No Driver Found"},
	))
	logger := zerolog.Nop()
	store := session.NewStore(time.Hour, 8)
	svc := service.NewDatasetService(store, nil, nil, p, 10, 30, &logger)
	exporter := worker.NewExportWorker(store, nil, t.TempDir(), worker.RetryPolicy{}, 4, &logger)

	return NewHTTPServer(cfg, svc, exporter, 1<<20, &logger)
}

func uploadDataset(t *testing.T, srv *HTTPServer, body string) string {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/datasets", strings.NewReader(body))
	req.Header.Set("Content-Type", "text/csv")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var result models.UploadResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	require.NotEmpty(t, result.SessionID)
	return result.SessionID
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t, config.APIConfig{})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestUploadRawCSV(t *testing.T) {
	srv := newTestServer(t, config.APIConfig{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/datasets", strings.NewReader(apiCSV))
	req.Header.Set("Content-Type", "text/csv")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	var result models.UploadResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, 3, result.Rows)
	assert.False(t, result.Replaced)
	require.NotNil(t, result.Overview)
	assert.Equal(t, 3, result.Overview.Rows)
}

func TestUploadMultipart(t *testing.T) {
	srv := newTestServer(t, config.APIConfig{})

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "bookings.csv")
	require.NoError(t, err)
	_, err = fw.Write([]byte(apiCSV))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/datasets", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func TestUploadMissingColumns(t *testing.T) {
	srv := newTestServer(t, config.APIConfig{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/datasets",
		strings.NewReader("Date,Time\n2024-03-01,10:00:00\n"))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "missing required columns")
	assert.Contains(t, rec.Body.String(), "Booking Value")
}

func TestUploadEmptyBody(t *testing.T) {
	srv := newTestServer(t, config.APIConfig{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/datasets", strings.NewReader(""))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUploadReplaceSession(t *testing.T) {
	srv := newTestServer(t, config.APIConfig{})
	id := uploadDataset(t, srv, apiCSV)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/datasets/"+id, strings.NewReader(apiCSV))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	var result models.UploadResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, id, result.SessionID)
	assert.True(t, result.Replaced)
}

func TestAggregateViews(t *testing.T) {
	srv := newTestServer(t, config.APIConfig{})
	id := uploadDataset(t, srv, apiCSV)

	for _, view := range []string{"overview", "demand", "cancellations", "revenue", "engagement"} {
		t.Run(view, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/datasets/"+id+"/"+view, nil)
			rec := httptest.NewRecorder()
			srv.Handler().ServeHTTP(rec, req)

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			assert.True(t, json.Valid(rec.Body.Bytes()))
		})
	}
}

func TestAggregateDemandPayload(t *testing.T) {
	srv := newTestServer(t, config.APIConfig{})
	id := uploadDataset(t, srv, apiCSV)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/datasets/"+id+"/demand", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var stats models.DemandStats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Len(t, stats.Hourly, 24)

	total := 0
	for _, point := range stats.Daily {
		total += point.Count
	}
	assert.Equal(t, 3, total)
}

func TestAggregateUnknownSession(t *testing.T) {
	srv := newTestServer(t, config.APIConfig{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/datasets/ghost/overview", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAggregateUnknownView(t *testing.T) {
	srv := newTestServer(t, config.APIConfig{})
	id := uploadDataset(t, srv, apiCSV)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/datasets/"+id+"/heatmap", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestExportCSV(t *testing.T) {
	srv := newTestServer(t, config.APIConfig{})
	id := uploadDataset(t, srv, apiCSV)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/datasets/"+id+"/export", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))

	body := rec.Body.String()
	assert.Contains(t, body, "Booking Status")
	assert.Contains(t, body, "hour_of_day")
	assert.Contains(t, body, "day_of_week")
	assert.Equal(t, 4, strings.Count(strings.TrimSpace(body), "\n")+1, "header plus three rows")
}

func TestExportXLSX(t *testing.T) {
	srv := newTestServer(t, config.APIConfig{})
	id := uploadDataset(t, srv, apiCSV)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/datasets/"+id+"/export.xlsx", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		rec.Header().Get("Content-Type"))
	assert.NotZero(t, rec.Body.Len())
}

func TestEnqueueExport(t *testing.T) {
	srv := newTestServer(t, config.APIConfig{})
	id := uploadDataset(t, srv, apiCSV)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/datasets/"+id+"/exports", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusAccepted, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp["export_id"])
	assert.Equal(t, "queued", resp["status"])
}

func TestEnqueueExportUnknownSession(t *testing.T) {
	srv := newTestServer(t, config.APIConfig{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/datasets/ghost/exports", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMethodNotAllowed(t *testing.T) {
	srv := newTestServer(t, config.APIConfig{})
	id := uploadDataset(t, srv, apiCSV)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/datasets/"+id+"/overview", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
