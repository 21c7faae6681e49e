package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/HansenHalim1/RePlate.id/internal/gateway"
	"github.com/HansenHalim1/RePlate.id/internal/repository"
	"github.com/HansenHalim1/RePlate.id/internal/service"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}

// handleServiceError turns domain sentinels into HTTP statuses. Anything not
// in the taxonomy is a 500 with a generic message; details stay in the log.
func handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidQuantity),
		errors.Is(err, service.ErrInvalidRating),
		errors.Is(err, service.ErrEmptySelection):
		respondError(w, http.StatusBadRequest, "invalid_input", err.Error())
	case errors.Is(err, service.ErrNotEligible):
		respondError(w, http.StatusForbidden, "forbidden", err.Error())
	case errors.Is(err, service.ErrSignatureMismatch):
		respondError(w, http.StatusUnauthorized, "invalid_signature", "invalid signature")
	case errors.Is(err, repository.ErrProductNotFound),
		errors.Is(err, repository.ErrCartLineNotFound),
		errors.Is(err, repository.ErrOrderNotFound):
		respondError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, gateway.ErrGatewayRejected),
		errors.Is(err, gateway.ErrGatewayUnavailable):
		respondError(w, http.StatusBadGateway, "gateway_error", "failed to create payment session")
	default:
		log.Printf("internal error: %v", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}
