package httpx

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/kabbani-home/inventory-api/internal/auth"
	"github.com/kabbani-home/inventory-api/internal/catalog"
	"github.com/kabbani-home/inventory-api/internal/reservation"
)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

type errorBody struct {
	Kind      string `json:"kind"`
	Message   string `json:"message"`
	Available *int   `json:"available,omitempty"`
	Requested *int   `json:"requested,omitempty"`
}

func WriteError(w http.ResponseWriter, status int, kind, message string) {
	writeJSON(w, status, map[string]errorBody{"error": {Kind: kind, Message: message}})
}

// writeDomainError maps the error taxonomy onto statuses and stable kinds.
// Conflict gets 409 so callers can re-read and retry instead of silently
// losing an update.
func writeDomainError(w http.ResponseWriter, err error) {
	var insufficient *reservation.InsufficientStockError
	var fatal *reservation.FatalError
	switch {
	case errors.As(err, &insufficient):
		writeJSON(w, http.StatusBadRequest, map[string]errorBody{"error": {
			Kind:      "insufficient_stock",
			Message:   insufficient.Error(),
			Available: &insufficient.Available,
			Requested: &insufficient.Requested,
		}})
	case errors.As(err, &fatal):
		// Logged distinctly: the ledger and reservations have diverged and
		// need manual reconciliation.
		log.Printf("FATAL: %v", fatal)
		WriteError(w, http.StatusInternalServerError, "fatal", "internal inconsistency, contact support")
	case errors.Is(err, reservation.ErrInvalidRequest):
		WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, reservation.ErrInvalidState):
		WriteError(w, http.StatusBadRequest, "invalid_state", err.Error())
	case errors.Is(err, reservation.ErrForbidden):
		WriteError(w, http.StatusForbidden, "forbidden", err.Error())
	case errors.Is(err, reservation.ErrConflict):
		WriteError(w, http.StatusConflict, "conflict", "stock changed concurrently, retry the request")
	case errors.Is(err, reservation.ErrNotFound), errors.Is(err, catalog.ErrNotFound):
		WriteError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, auth.ErrNotFound):
		WriteError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, auth.ErrEmailTaken):
		WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, auth.ErrInvalidCredentials):
		WriteError(w, http.StatusUnauthorized, "unauthenticated", err.Error())
	default:
		log.Printf("internal error: %v", err)
		WriteError(w, http.StatusInternalServerError, "internal", "server error")
	}
}
