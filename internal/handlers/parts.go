package handlers

import (
	"net/http"

	"plantstock/internal/contextutil"
	"plantstock/internal/parts"
)

// PartsHandler serves engineering part-number CRUD.
type PartsHandler struct {
	parts *parts.Service
}

// NewPartsHandler creates a PartsHandler.
func NewPartsHandler(parts *parts.Service) *PartsHandler {
	return &PartsHandler{parts: parts}
}

// Home greets an authenticated engineering user.
func (h *PartsHandler) Home(w http.ResponseWriter, r *http.Request) {
	writeMessage(w, http.StatusOK, "Welcome to the engineering route.")
}

// Create adds a new part-number definition.
func (h *PartsHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	var part parts.Part
	if err := decodeJSON(r, &part); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.parts.Add(ctx, part); err != nil {
		writeServiceError(w, logger, err)
		return
	}
	writeMessage(w, http.StatusCreated, "Numero de parte agregado exitosamente.")
}

// List returns all part-number definitions.
func (h *PartsHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	defs, err := h.parts.List(ctx)
	if err != nil {
		writeServiceError(w, logger, err)
		return
	}
	writeJSON(w, http.StatusOK, defs)
}

// Find looks up one part by the numero_parte query parameter.
func (h *PartsHandler) Find(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	numeroParte := r.URL.Query().Get("numero_parte")
	if numeroParte == "" {
		writeError(w, http.StatusBadRequest, "numero_parte is required")
		return
	}

	part, err := h.parts.FindByNumeroParte(ctx, numeroParte)
	if err != nil {
		writeServiceError(w, logger, err)
		return
	}
	writeJSON(w, http.StatusOK, part)
}

// Update replaces the definition for an existing part number.
func (h *PartsHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	var part parts.Part
	if err := decodeJSON(r, &part); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.parts.Update(ctx, part); err != nil {
		writeServiceError(w, logger, err)
		return
	}
	writeMessage(w, http.StatusOK, "Numero de parte actualizado exitosamente.")
}

type deletePartRequest struct {
	NumeroParte string `json:"numero_parte"`
}

// Delete removes the definition for a part number. Zero matches is still
// a success.
func (h *PartsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	var req deletePartRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.NumeroParte == "" {
		writeError(w, http.StatusBadRequest, "numero_parte is required")
		return
	}

	if err := h.parts.Delete(ctx, req.NumeroParte); err != nil {
		writeServiceError(w, logger, err)
		return
	}
	logger.InfoContext(ctx, "part deleted", "numero_parte", req.NumeroParte)
	writeMessage(w, http.StatusOK, "Numero de parte eliminado exitosamente.")
}
