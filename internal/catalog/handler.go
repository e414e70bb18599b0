package catalog

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/costbook/internal/platform/httpx"
	"github.com/odyssey-erp/costbook/internal/units"
)

// Handler exposes catalog maintenance over JSON.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs the catalog handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers catalog routes.
func (h *Handler) MountRoutes(r chi.Router) {
	if h == nil {
		return
	}
	r.Post("/catalog/entries", h.handleCreate)
	r.Get("/catalog/entries/{id}", h.handleGet)
	r.Patch("/catalog/entries/{id}/price", h.handleUpdatePrice)
	r.Get("/catalog/items/{itemID}/entries", h.handleForItem)
}

type createEntryRequest struct {
	ID           string           `json:"id"`
	SupplierID   string           `json:"supplier_id" validate:"required"`
	ItemKind     string           `json:"item_kind" validate:"required,oneof=material packaging label"`
	ItemID       string           `json:"item_id" validate:"required"`
	ItemName     string           `json:"item_name" validate:"required"`
	Unit         string           `json:"unit" validate:"required"`
	UnitPrice    decimal.Decimal  `json:"unit_price"`
	Tax          decimal.Decimal  `json:"tax"`
	BulkPrice    *decimal.Decimal `json:"bulk_price"`
	BulkQuantity *decimal.Decimal `json:"bulk_quantity"`
	LeadTimeDays int              `json:"lead_time_days" validate:"gte=0"`
	Availability string           `json:"availability" validate:"omitempty,oneof=available limited unavailable"`
}

type updatePriceRequest struct {
	UnitPrice    decimal.Decimal `json:"unit_price"`
	Tax          decimal.Decimal `json:"tax"`
	Availability string          `json:"availability" validate:"omitempty,oneof=available limited unavailable"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createEntryRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	unit, err := units.Parse(req.Unit)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	entry, err := h.service.CreateEntry(r.Context(), Entry{
		ID:           req.ID,
		SupplierID:   req.SupplierID,
		ItemKind:     ItemKind(req.ItemKind),
		ItemID:       req.ItemID,
		ItemName:     req.ItemName,
		Unit:         unit,
		UnitPrice:    req.UnitPrice,
		Tax:          req.Tax,
		BulkPrice:    req.BulkPrice,
		BulkQuantity: req.BulkQuantity,
		LeadTimeDays: req.LeadTimeDays,
		Availability: Availability(req.Availability),
	})
	if err != nil {
		h.logger.Warn("create catalog entry failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, entry)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	entry, err := h.service.GetEntry(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, entry)
}

func (h *Handler) handleUpdatePrice(w http.ResponseWriter, r *http.Request) {
	var req updatePriceRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	entry, err := h.service.UpdatePrice(r.Context(), chi.URLParam(r, "id"), PriceUpdate{
		UnitPrice:    req.UnitPrice,
		Tax:          req.Tax,
		Availability: Availability(req.Availability),
	})
	if err != nil {
		h.logger.Warn("update catalog price failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, entry)
}

func (h *Handler) handleForItem(w http.ResponseWriter, r *http.Request) {
	entries, err := h.service.EntriesForItem(r.Context(), chi.URLParam(r, "itemID"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"entries": entries})
}
