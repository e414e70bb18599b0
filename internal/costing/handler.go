package costing

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/costbook/internal/platform/httpx"
	"github.com/odyssey-erp/costbook/internal/shared"
)

// Handler exposes recipe costing over JSON.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs the costing handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers recipe and alternative-search routes.
func (h *Handler) MountRoutes(r chi.Router) {
	if h == nil {
		return
	}
	r.Post("/recipes", h.handleSave)
	r.Get("/recipes/{id}", h.handleGet)
	r.Get("/recipes/{id}/analysis", h.handleAnalysis)
	r.Post("/recipes/{id}/lock-prices", h.handleLockPrices)
	r.Get("/recipes/{id}/ingredients/{ingredientID}/savings", h.handleSavings)
	r.Get("/catalog/entries/{id}/alternatives", h.handleAlternatives)
}

type ingredientRequest struct {
	ID       string          `json:"id"`
	EntryID  string          `json:"entry_id" validate:"required"`
	Quantity decimal.Decimal `json:"quantity"`
}

type saveRecipeRequest struct {
	ID          string              `json:"id"`
	Name        string              `json:"name" validate:"required"`
	Ingredients []ingredientRequest `json:"ingredients" validate:"dive"`
}

func (h *Handler) handleSave(w http.ResponseWriter, r *http.Request) {
	var req saveRecipeRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	rec := Recipe{ID: req.ID, Name: req.Name}
	for _, ing := range req.Ingredients {
		rec.Ingredients = append(rec.Ingredients, Ingredient{ID: ing.ID, EntryID: ing.EntryID, Quantity: ing.Quantity})
	}
	saved, err := h.service.SaveRecipe(r.Context(), rec)
	if err != nil {
		h.logger.Warn("save recipe failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, saved)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	rec, err := h.service.GetRecipe(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, rec)
}

func (h *Handler) handleAnalysis(w http.ResponseWriter, r *http.Request) {
	analysis, err := h.service.AnalyzeRecipe(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respondFailure(w, "analyze recipe", err)
		return
	}
	httpx.JSON(w, http.StatusOK, analysis)
}

func (h *Handler) handleLockPrices(w http.ResponseWriter, r *http.Request) {
	rec, err := h.service.LockPrices(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respondFailure(w, "lock prices", err)
		return
	}
	httpx.JSON(w, http.StatusOK, rec)
}

func (h *Handler) handleSavings(w http.ResponseWriter, r *http.Request) {
	alternative := r.URL.Query().Get("alternative")
	if alternative == "" {
		httpx.RespondError(w, shared.Validation("alternative is required"))
		return
	}
	savings, err := h.service.Savings(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "ingredientID"), alternative)
	if err != nil {
		h.respondFailure(w, "switching savings", err)
		return
	}
	httpx.JSON(w, http.StatusOK, savings)
}

func (h *Handler) handleAlternatives(w http.ResponseWriter, r *http.Request) {
	max := 0
	if raw := r.URL.Query().Get("max"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			httpx.RespondError(w, shared.Validation(fmt.Sprintf("max %q is not a non-negative integer", raw)))
			return
		}
		max = n
	}
	entries, err := h.service.Alternatives(r.Context(), chi.URLParam(r, "id"), max)
	if err != nil {
		h.respondFailure(w, "find alternatives", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"alternatives": entries})
}

func (h *Handler) respondFailure(w http.ResponseWriter, op string, err error) {
	h.logger.Error(op+" failed", slog.Any("error", err))
	httpx.RespondError(w, err)
}
