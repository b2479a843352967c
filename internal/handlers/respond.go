package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"plantstock/internal/inventory"
	"plantstock/internal/parts"
	"plantstock/internal/recordstore"
	"plantstock/internal/users"
)

// writeJSON serializes v to the response with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Default().Error("failed to encode response", "error", err)
	}
}

// writeError writes a JSON error body with the given status.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeMessage writes a JSON message body with the given status.
func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg})
}

// decodeJSON decodes the request body into v, rejecting unknown fields.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// writeServiceError maps domain errors onto HTTP statuses. Backing-store
// failures become a generic internal error so storage details do not leak
// to clients.
func writeServiceError(w http.ResponseWriter, logger *slog.Logger, err error) {
	switch {
	case errors.Is(err, users.ErrValidation),
		errors.Is(err, inventory.ErrValidation),
		errors.Is(err, parts.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, users.ErrUsernameTaken),
		errors.Is(err, inventory.ErrDuplicatePart),
		errors.Is(err, recordstore.ErrDuplicateKey):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, users.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, recordstore.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	default:
		logger.Error("internal error", "error", err)
		writeError(w, http.StatusInternalServerError, "an unexpected error occurred")
	}
}
