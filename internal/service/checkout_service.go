package service

import (
	"context"
	"fmt"
	"log"

	"github.com/HansenHalim1/RePlate.id/internal/auth"
	"github.com/HansenHalim1/RePlate.id/internal/domain"
	"github.com/HansenHalim1/RePlate.id/internal/gateway"
	"github.com/google/uuid"
)

type CheckoutRepository interface {
	GetCartSelection(ctx context.Context, userID string, lineIDs []string) ([]domain.CartItem, error)
	CreateOrder(ctx context.Context, order *domain.Order) error
}

type PaymentGateway interface {
	CreateSession(ctx context.Context, req gateway.SessionRequest) (*gateway.SnapSession, error)
	ClientKey() string
}

// CheckoutResult is what the browser needs to drive the hosted payment
// widget. The order stays pending until the webhook says otherwise.
type CheckoutResult struct {
	OrderID     string `json:"order_id"`
	Token       string `json:"token"`
	RedirectURL string `json:"redirect_url"`
	ClientKey   string `json:"client_key"`
	Total       int64  `json:"total"`
}

type CheckoutService struct {
	repo    CheckoutRepository
	gateway PaymentGateway
}

func NewCheckoutService(repo CheckoutRepository, paymentGateway PaymentGateway) *CheckoutService {
	return &CheckoutService{
		repo:    repo,
		gateway: paymentGateway,
	}
}

// RecalculateTotal prices the caller's cart selection from authoritative
// product rows. Client-submitted totals are never accepted anywhere.
func (s *CheckoutService) RecalculateTotal(ctx context.Context, userID string, lineIDs []string) (int64, []domain.CartItem, error) {
	items, err := s.repo.GetCartSelection(ctx, userID, lineIDs)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to load cart selection: %w", err)
	}
	if len(items) == 0 {
		return 0, nil, ErrEmptySelection
	}

	var total int64
	for _, item := range items {
		total += item.UnitPrice * int64(item.Quantity)
	}
	if total <= 0 {
		return 0, nil, ErrEmptySelection
	}

	return total, items, nil
}

// Checkout recomputes the total, requests a payment session from the gateway
// and persists the pending order with its item snapshots. No retry and no
// idempotency key: a failed attempt is re-initiated by the user and mints a
// fresh order id.
func (s *CheckoutService) Checkout(ctx context.Context, identity *auth.Identity, lineIDs []string) (*CheckoutResult, error) {
	total, items, err := s.RecalculateTotal(ctx, identity.UserID, lineIDs)
	if err != nil {
		return nil, err
	}

	orderID := "ORDER-" + uuid.NewString()

	snapshot := make([]domain.OrderItem, 0, len(items))
	for _, item := range items {
		snapshot = append(snapshot, domain.OrderItem{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			Price:       item.UnitPrice,
		})
	}

	session, err := s.gateway.CreateSession(ctx, gateway.SessionRequest{
		OrderID:       orderID,
		GrossAmount:   total,
		Items:         snapshot,
		CustomerEmail: identity.Email,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create payment session: %w", err)
	}

	order := &domain.Order{
		ID:     orderID,
		UserID: identity.UserID,
		Total:  total,
		Status: domain.OrderStatusPending,
		Items:  snapshot,
	}
	if err := s.repo.CreateOrder(ctx, order); err != nil {
		// the gateway session already exists with no local record; nothing
		// compensates for it, the user re-initiates with a new order id
		log.Printf("order %s: payment session %s issued but persistence failed: %v", orderID, session.Token, err)
		return nil, fmt.Errorf("failed to record order: %w", err)
	}

	return &CheckoutResult{
		OrderID:     orderID,
		Token:       session.Token,
		RedirectURL: session.RedirectURL,
		ClientKey:   s.gateway.ClientKey(),
		Total:       total,
	}, nil
}
