package handlers

import (
	"encoding/csv"
	"net/http"
	"strconv"

	"plantstock/internal/contextutil"
	"plantstock/internal/inventory"
)

// InventoryHandler serves inventory item CRUD and export.
type InventoryHandler struct {
	items *inventory.Service
}

// NewInventoryHandler creates an InventoryHandler.
func NewInventoryHandler(items *inventory.Service) *InventoryHandler {
	return &InventoryHandler{items: items}
}

// AddItem inserts a new inventory item.
func (h *InventoryHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	var item inventory.Item
	if err := decodeJSON(r, &item); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.items.Add(ctx, item); err != nil {
		writeServiceError(w, logger, err)
		return
	}
	logger.InfoContext(ctx, "inventory item added", "numero_parte", item.NumeroParte)
	writeMessage(w, http.StatusCreated, "Item added successfully!")
}

type inventoryResponse struct {
	Items []inventory.Item `json:"items"`
}

// GetInventory lists all items sorted by part number.
func (h *InventoryHandler) GetInventory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	items, err := h.items.List(ctx)
	if err != nil {
		writeServiceError(w, logger, err)
		return
	}
	writeJSON(w, http.StatusOK, inventoryResponse{Items: items})
}

// UpdateItem replaces the stored item for its part number.
func (h *InventoryHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	var item inventory.Item
	if err := decodeJSON(r, &item); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.items.Update(ctx, item); err != nil {
		writeServiceError(w, logger, err)
		return
	}
	writeMessage(w, http.StatusOK, "Item updated successfully!")
}

// DeleteItem removes the item named by the numero_parte query parameter.
func (h *InventoryHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	numeroParte := r.URL.Query().Get("numero_parte")
	if numeroParte == "" {
		writeError(w, http.StatusBadRequest, "numero_parte is required")
		return
	}

	if err := h.items.Delete(ctx, numeroParte); err != nil {
		writeServiceError(w, logger, err)
		return
	}
	logger.InfoContext(ctx, "inventory item deleted", "numero_parte", numeroParte)
	writeMessage(w, http.StatusOK, "Item deleted successfully!")
}

// Export streams the full inventory as a CSV download.
func (h *InventoryHandler) Export(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	items, err := h.items.List(ctx)
	if err != nil {
		writeServiceError(w, logger, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="inventory.csv"`)

	cw := csv.NewWriter(w)
	_ = cw.Write([]string{"numero_parte", "cantidad", "descripcion"})
	for _, item := range items {
		_ = cw.Write([]string{item.NumeroParte, strconv.Itoa(item.Cantidad), item.Descripcion})
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		logger.ErrorContext(ctx, "failed to write inventory export", "error", err)
	}
}
