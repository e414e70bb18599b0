package app

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/costbook/internal/observability"
	"github.com/odyssey-erp/costbook/internal/platform/blob"
	_ "github.com/odyssey-erp/costbook/testing"
)

func TestTestModeFromHarness(t *testing.T) {
	RefreshTestMode()
	require.True(t, InTestMode())
}

func TestLoggerLevelAndFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, &Config{LogFormat: "json", LogLevel: "warn"})
	logger.Info("hidden")
	logger.Warn("shown", slog.String("k", "v"))

	out := buf.String()
	require.NotContains(t, out, "hidden")
	require.Contains(t, out, `"msg":"shown"`)
	require.Contains(t, out, `"service":"costbook"`)
	require.Equal(t, slog.LevelDebug, parseLevel(" DEBUG "))
	require.Equal(t, slog.LevelInfo, parseLevel("verbose"))
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, ":8080", cfg.AppAddr)
	require.Equal(t, "2", cfg.Multiplier().String())
	require.Equal(t, 50, cfg.HistoryPageSize)
	require.Equal(t, blob.DriverFilesystem, cfg.BlobConfig().Driver)
	require.False(t, cfg.IsProduction())
	require.EqualValues(t, 10, cfg.PGMaxConns)
	require.Equal(t, "127.0.0.1:6379", cfg.RedisOptions().Addr)
}

func TestLoadConfigValidation(t *testing.T) {
	t.Setenv("CAPACITY_MULTIPLIER", "0")
	_, err := LoadConfig()
	require.ErrorContains(t, err, "CAPACITY_MULTIPLIER")

	t.Setenv("CAPACITY_MULTIPLIER", "3")
	t.Setenv("BLOB_DRIVER", "s3")
	_, err = LoadConfig()
	require.ErrorContains(t, err, "BLOB_S3_BUCKET")

	t.Setenv("BLOB_S3_BUCKET", "reports")
	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, "3", cfg.Multiplier().String())
	require.Equal(t, "reports", cfg.BlobConfig().S3Bucket)
}

func newTestRouter(ready func(*http.Request) error) http.Handler {
	return NewRouter(RouterParams{
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		Config:  &Config{AppEnv: "test"},
		Metrics: observability.NewMetrics(),
		Ready:   ready,
	})
}

func TestRouterHealthAndHeaders(t *testing.T) {
	h := newTestRouter(nil)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	require.JSONEq(t, `{"status":"ok"}`, rr.Body.String())
	require.Equal(t, "DENY", rr.Header().Get("X-Frame-Options"))
	require.Equal(t, "nosniff", rr.Header().Get("X-Content-Type-Options"))

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	require.Contains(t, rr.Body.String(), "costbook_http_requests_total")

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/nowhere", nil))
	require.Equal(t, http.StatusNotFound, rr.Code)
	require.Equal(t, "application/problem+json", rr.Header().Get("Content-Type"))
}

func TestRouterHealthReportsDependencyFailure(t *testing.T) {
	h := newTestRouter(func(*http.Request) error { return errors.New("postgres down") })
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusServiceUnavailable, rr.Code)
}
