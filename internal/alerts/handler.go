package alerts

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/costbook/internal/platform/httpx"
)

// Handler exposes alerts over JSON.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs the alerts handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers alert routes.
func (h *Handler) MountRoutes(r chi.Router) {
	if h == nil {
		return
	}
	r.Get("/alerts", h.handleList)
	r.Post("/alerts/scan", h.handleScan)
	r.Post("/alerts/{id}/read", h.handleRead)
	r.Post("/alerts/{id}/resolve", h.handleResolve)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	includeResolved, _ := strconv.ParseBool(r.URL.Query().Get("include_resolved"))
	list, err := h.service.List(r.Context(), includeResolved)
	if err != nil {
		h.logger.Error("list alerts failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"alerts": list})
}

func (h *Handler) handleScan(w http.ResponseWriter, r *http.Request) {
	raised, err := h.service.RunScan(r.Context())
	if err != nil {
		h.logger.Error("alert scan failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"raised": raised})
}

func (h *Handler) handleRead(w http.ResponseWriter, r *http.Request) {
	a, err := h.service.MarkRead(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, a)
}

func (h *Handler) handleResolve(w http.ResponseWriter, r *http.Request) {
	a, err := h.service.Resolve(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	h.logger.Info("alert resolved", slog.String("alert_id", a.ID))
	httpx.JSON(w, http.StatusOK, a)
}
