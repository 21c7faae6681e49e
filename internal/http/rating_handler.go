package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/HansenHalim1/RePlate.id/internal/domain"
)

type RatingService interface {
	SubmitRating(ctx context.Context, userID, productID, orderID string, rating int, review string) error
	Summary(ctx context.Context, productIDs []string) (map[string]domain.RatingSummary, error)
}

type RatingHandler struct {
	ratings RatingService
	timeout time.Duration
}

func NewRatingHandler(ratings RatingService, timeout time.Duration) *RatingHandler {
	return &RatingHandler{
		ratings: ratings,
		timeout: timeout,
	}
}

type SubmitRatingRequestDTO struct {
	ProductID string `json:"productId"`
	OrderID   string `json:"orderId"`
	Rating    int    `json:"rating"`
	Review    string `json:"review"`
}

type SummaryRequestDTO struct {
	ProductIDs []string `json:"productIds"`
}

// POST /api/v1/ratings
func (h *RatingHandler) SubmitRating(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	identity := identityFromContext(r.Context())
	if identity == nil {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	var req SubmitRatingRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.ProductID == "" || req.OrderID == "" {
		respondError(w, http.StatusBadRequest, "invalid_request", "productId and orderId are required")
		return
	}

	if err := h.ratings.SubmitRating(ctx, identity.UserID, req.ProductID, req.OrderID, req.Rating, req.Review); err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "Thanks for rating!"})
}

// POST /api/v1/ratings/summary
// Public bulk read: product listing pages batch their visible ids here.
func (h *RatingHandler) Summary(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req SummaryRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	summary, err := h.ratings.Summary(ctx, req.ProductIDs)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, summary)
}
