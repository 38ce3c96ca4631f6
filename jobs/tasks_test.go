package jobs

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewLedgerIntegrityTask(t *testing.T) {
	since := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	task, err := NewLedgerIntegrityTask(LedgerIntegrityPayload{Since: since})
	require.NoError(t, err)
	require.Equal(t, TaskLedgerIntegrity, task.Type())

	var payload LedgerIntegrityPayload
	require.NoError(t, json.Unmarshal(task.Payload(), &payload))
	require.True(t, since.Equal(payload.Since))
}

func TestIntegrityHandleRejectsBadPayload(t *testing.T) {
	checker := NewIntegrityChecker(nil, newTestLogger(), nil)
	err := checker.Handle(context.Background(), asynq.NewTask(TaskLedgerIntegrity, []byte("{not json")))
	require.ErrorIs(t, err, asynq.SkipRetry)
}

func TestSinceArgSkipsZeroBound(t *testing.T) {
	require.Nil(t, sinceArg(time.Time{}))
	since := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	require.Equal(t, since, sinceArg(since))
}

func TestJobsHealthEndpoint(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	handler := NewHandler(nil, rdb, newTestLogger())
	router := chi.NewRouter()
	router.Route("/jobs", handler.MountRoutes)

	req := httptest.NewRequest(http.MethodGet, "/jobs/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"queue":"default","pending":0}`, rec.Body.String())

	// A dead redis turns the endpoint unhealthy.
	mr.Close()
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/jobs/health", nil))
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
