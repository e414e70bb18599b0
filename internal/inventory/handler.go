package inventory

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/costbook/internal/catalog"
	"github.com/odyssey-erp/costbook/internal/platform/httpx"
	"github.com/odyssey-erp/costbook/internal/shared"
	"github.com/odyssey-erp/costbook/internal/units"
)

// maxHistoryLimit caps the number of transactions returned per request.
const maxHistoryLimit = 500

// Handler wires HTTP endpoints for inventory module.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs inventory handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers inventory routes.
func (h *Handler) MountRoutes(r chi.Router) {
	if h == nil {
		return
	}
	r.Route("/inventory/items", func(r chi.Router) {
		r.Post("/", h.handleCreate)
		r.Get("/", h.handleList)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.handleGet)
			r.Patch("/thresholds", h.handleThresholds)
			r.Post("/archive", h.handleArchive)
			r.Post("/transactions", h.handleDelta)
			r.Get("/transactions", h.handleHistory)
			r.Get("/valuation", h.handleValuation)
			r.Post("/reconcile", h.handleReconcile)
		})
	})
}

type createItemRequest struct {
	ID            string           `json:"id"`
	ItemKind      string           `json:"item_kind" validate:"required,oneof=material packaging label"`
	CatalogItemID string           `json:"catalog_item_id" validate:"required"`
	Name          string           `json:"name" validate:"required"`
	PriceEntryID  string           `json:"price_entry_id"`
	Unit          string           `json:"unit" validate:"required"`
	MinLevel      decimal.Decimal  `json:"min_level"`
	MaxLevel      *decimal.Decimal `json:"max_level"`
}

type thresholdsRequest struct {
	MinLevel decimal.Decimal  `json:"min_level"`
	MaxLevel *decimal.Decimal `json:"max_level"`
}

type deltaRequest struct {
	Delta     decimal.Decimal `json:"delta"`
	Reason    string          `json:"reason" validate:"max=64"`
	Reference string          `json:"reference" validate:"max=128"`
	Notes     string          `json:"notes" validate:"max=1024"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createItemRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	unit, err := units.Parse(req.Unit)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	item, err := h.service.CreateItem(r.Context(), ItemInput{
		ID:            req.ID,
		ItemKind:      catalog.ItemKind(req.ItemKind),
		CatalogItemID: req.CatalogItemID,
		Name:          req.Name,
		PriceEntryID:  req.PriceEntryID,
		Unit:          unit,
		MinLevel:      req.MinLevel,
		MaxLevel:      req.MaxLevel,
	})
	if err != nil {
		h.fail(w, "create stock item", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, item)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	includeArchived, _ := strconv.ParseBool(r.URL.Query().Get("archived"))
	items, err := h.service.ListItems(r.Context(), includeArchived)
	if err != nil {
		h.fail(w, "list stock items", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": items})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	item, err := h.service.GetItem(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, "get stock item", err)
		return
	}
	httpx.JSON(w, http.StatusOK, item)
}

func (h *Handler) handleThresholds(w http.ResponseWriter, r *http.Request) {
	var req thresholdsRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	item, err := h.service.UpdateThresholds(r.Context(), chi.URLParam(r, "id"), Thresholds{MinLevel: req.MinLevel, MaxLevel: req.MaxLevel})
	if err != nil {
		h.fail(w, "update thresholds", err)
		return
	}
	httpx.JSON(w, http.StatusOK, item)
}

func (h *Handler) handleArchive(w http.ResponseWriter, r *http.Request) {
	item, err := h.service.Archive(r.Context(), chi.URLParam(r, "id"), actorFrom(r))
	if err != nil {
		h.fail(w, "archive stock item", err)
		return
	}
	httpx.JSON(w, http.StatusOK, item)
}

func (h *Handler) handleDelta(w http.ResponseWriter, r *http.Request) {
	var req deltaRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	record, err := h.service.ApplyDelta(r.Context(), DeltaInput{
		ItemID:    chi.URLParam(r, "id"),
		Delta:     req.Delta,
		Reason:    req.Reason,
		Reference: req.Reference,
		Notes:     req.Notes,
		ActorID:   actorFrom(r),
	})
	if err != nil {
		h.fail(w, "apply stock delta", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, record)
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit := 100
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			httpx.RespondError(w, shared.Validation("limit must be a positive integer"))
			return
		}
		limit = min(n, maxHistoryLimit)
	}
	var before int64
	if raw := r.URL.Query().Get("before"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n <= 0 {
			httpx.RespondError(w, shared.Validation("before must be a positive ledger sequence"))
			return
		}
		before = n
	}
	itemID := chi.URLParam(r, "id")
	if _, err := h.service.GetItem(r.Context(), itemID); err != nil {
		h.fail(w, "stock history", err)
		return
	}
	out := make([]Transaction, 0, limit)
	for tx, err := range h.service.HistoryBefore(r.Context(), itemID, before, 0) {
		if err != nil {
			h.fail(w, "stock history", err)
			return
		}
		out = append(out, tx)
		if len(out) == limit {
			break
		}
	}
	resp := map[string]any{"transactions": out}
	if len(out) == limit {
		resp["next_before"] = out[len(out)-1].Seq
	}
	httpx.JSON(w, http.StatusOK, resp)
}

func (h *Handler) handleValuation(w http.ResponseWriter, r *http.Request) {
	price, err := decimal.NewFromString(r.URL.Query().Get("unit_price"))
	if err != nil {
		httpx.RespondError(w, shared.Validation("unit_price must be a decimal number"))
		return
	}
	v, err := h.service.Valuate(r.Context(), chi.URLParam(r, "id"), price)
	if err != nil {
		h.fail(w, "valuate stock item", err)
		return
	}
	httpx.JSON(w, http.StatusOK, v)
}

func (h *Handler) handleReconcile(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.Reconcile(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, "reconcile stock item", err)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

func (h *Handler) fail(w http.ResponseWriter, op string, err error) {
	h.logger.Warn(op+" failed", slog.Any("error", err))
	httpx.RespondError(w, err)
}

// actorFrom reads the caller identity set by an upstream proxy.
func actorFrom(r *http.Request) string {
	return r.Header.Get("X-Actor-ID")
}
