package http

import (
	"context"
	"net/http"
	"time"

	"github.com/HansenHalim1/RePlate.id/internal/domain"
)

type ProductLister interface {
	ListProducts(ctx context.Context, category string) ([]*domain.Product, error)
}

type ProductHandler struct {
	products ProductLister
	timeout  time.Duration
}

func NewProductHandler(products ProductLister, timeout time.Duration) *ProductHandler {
	return &ProductHandler{
		products: products,
		timeout:  timeout,
	}
}

// GET /api/v1/products?category=lunch
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	products, err := h.products.ListProducts(ctx, r.URL.Query().Get("category"))
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if products == nil {
		products = []*domain.Product{}
	}

	respondJSON(w, http.StatusOK, products)
}
