package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/costbook/internal/alerts"
	"github.com/odyssey-erp/costbook/internal/catalog"
	"github.com/odyssey-erp/costbook/internal/costing"
	"github.com/odyssey-erp/costbook/internal/inventory"
	"github.com/odyssey-erp/costbook/internal/observability"
	"github.com/odyssey-erp/costbook/internal/platform/httpx"
	"github.com/odyssey-erp/costbook/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger           *slog.Logger
	Config           *Config
	CatalogHandler   *catalog.Handler
	CostingHandler   *costing.Handler
	InventoryHandler *inventory.Handler
	AlertsHandler    *alerts.Handler
	JobHandler       *jobs.Handler
	Metrics          *observability.Metrics
	// Ready reports dependency health for /healthz. Nil means always ready.
	Ready func(r *http.Request) error
}

// NewRouter constructs the JSON API router.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if params.Ready != nil {
			if err := params.Ready(r); err != nil {
				params.Logger.Warn("health check failed", slog.Any("error", err))
				httpx.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
				return
			}
		}
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	params.CatalogHandler.MountRoutes(r)
	params.CostingHandler.MountRoutes(r)
	params.InventoryHandler.MountRoutes(r)
	params.AlertsHandler.MountRoutes(r)
	if params.JobHandler != nil {
		params.JobHandler.MountRoutes(r)
	}
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httpx.Problem(w, http.StatusNotFound, "Not Found", "no route for "+r.Method+" "+r.URL.Path)
	})
	return r
}
