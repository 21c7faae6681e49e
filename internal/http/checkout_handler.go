package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/HansenHalim1/RePlate.id/internal/auth"
	"github.com/HansenHalim1/RePlate.id/internal/service"
)

type CheckoutService interface {
	Checkout(ctx context.Context, identity *auth.Identity, lineIDs []string) (*service.CheckoutResult, error)
}

type CheckoutHandler struct {
	checkout CheckoutService
	timeout  time.Duration
}

func NewCheckoutHandler(checkout CheckoutService, timeout time.Duration) *CheckoutHandler {
	return &CheckoutHandler{
		checkout: checkout,
		timeout:  timeout,
	}
}

type CreatePaymentRequestDTO struct {
	ItemIDs       []string `json:"itemIds"`
	PaymentMethod string   `json:"paymentMethod"`
}

type CreatePaymentResponseDTO struct {
	OrderID     string `json:"order_id"`
	Token       string `json:"token"`
	RedirectURL string `json:"redirect_url"`
	ClientKey   string `json:"client_key"`
	Total       int64  `json:"total"`
}

// POST /api/v1/payments
// paymentMethod only steers the hosted widget client-side; the server ignores
// it and always recomputes the total from the selection.
func (h *CheckoutHandler) CreatePayment(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	identity := identityFromContext(r.Context())
	if identity == nil {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	var req CreatePaymentRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	result, err := h.checkout.Checkout(ctx, identity, req.ItemIDs)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, CreatePaymentResponseDTO{
		OrderID:     result.OrderID,
		Token:       result.Token,
		RedirectURL: result.RedirectURL,
		ClientKey:   result.ClientKey,
		Total:       result.Total,
	})
}
