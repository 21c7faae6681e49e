package http

import (
	"context"
	"net/http"
	"time"

	"github.com/HansenHalim1/RePlate.id/internal/domain"
)

type OrderLister interface {
	ListOrdersByUserID(ctx context.Context, userID string) ([]*domain.Order, error)
}

type OrderHandler struct {
	orders  OrderLister
	timeout time.Duration
}

func NewOrderHandler(orders OrderLister, timeout time.Duration) *OrderHandler {
	return &OrderHandler{
		orders:  orders,
		timeout: timeout,
	}
}

// GET /api/v1/orders
// The caller's purchase history with item snapshots, newest first.
func (h *OrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	identity := identityFromContext(r.Context())
	if identity == nil {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	orders, err := h.orders.ListOrdersByUserID(ctx, identity.UserID)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if orders == nil {
		orders = []*domain.Order{}
	}

	respondJSON(w, http.StatusOK, orders)
}
