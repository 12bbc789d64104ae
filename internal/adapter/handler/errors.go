package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/eventlane/ticket-inventory/internal/core/domain"
)

const timeFormat = time.RFC3339

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeDomainError maps the engine's error taxonomy onto HTTP statuses.
// Business rejections are routine outcomes: 4xx/409, surfaced unchanged.
// Only storage trouble is a 503, the single retryable kind.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidQuantity),
		errors.Is(err, domain.ErrInvalidRefund),
		errors.Is(err, domain.ErrInvalidCapacity),
		errors.Is(err, domain.ErrInvalidPrice):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrInsufficientInventory),
		errors.Is(err, domain.ErrCapacityBelowSold),
		errors.Is(err, domain.ErrAlreadyConfirmed),
		errors.Is(err, domain.ErrInventoryExists):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrTokenExpired):
		writeError(w, http.StatusGone, err.Error())
	case errors.Is(err, domain.ErrTokenNotFound),
		errors.Is(err, domain.ErrInventoryNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrStorageUnavailable):
		writeError(w, http.StatusServiceUnavailable, "storage unavailable, retry later")
	default:
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
