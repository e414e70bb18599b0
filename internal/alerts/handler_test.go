package alerts

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
)

func TestHandlerScanReadResolve(t *testing.T) {
	svc := newTestService(t, staticItems{"flour": stockItem("flour", "0", "10")}, nil)
	r := chi.NewRouter()
	NewHandler(slog.New(slog.NewTextHandler(io.Discard, nil)), svc).MountRoutes(r)

	do := func(method, path string) *httptest.ResponseRecorder {
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, httptest.NewRequest(method, path, nil))
		return rr
	}

	rr := do(http.MethodPost, "/alerts/scan")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var scan struct {
		Raised []Alert `json:"raised"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &scan))
	require.Len(t, scan.Raised, 1)
	id := scan.Raised[0].ID

	rr = do(http.MethodPost, "/alerts/"+id+"/read")
	require.Equal(t, http.StatusOK, rr.Code)

	rr = do(http.MethodPost, "/alerts/"+id+"/resolve")
	require.Equal(t, http.StatusOK, rr.Code)

	rr = do(http.MethodGet, "/alerts")
	require.Equal(t, http.StatusOK, rr.Code)
	var list struct {
		Alerts []Alert `json:"alerts"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &list))
	require.Empty(t, list.Alerts)

	rr = do(http.MethodGet, "/alerts?include_resolved=true")
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &list))
	require.Len(t, list.Alerts, 1)

	rr = do(http.MethodPost, "/alerts/nope/read")
	require.Equal(t, http.StatusNotFound, rr.Code)
}
