package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/HansenHalim1/RePlate.id/internal/domain"
	"github.com/HansenHalim1/RePlate.id/internal/events"
	"github.com/HansenHalim1/RePlate.id/internal/gateway"
)

type WebhookRepository interface {
	GetOrder(ctx context.Context, id string) (*domain.Order, error)
	UpdateOrderStatus(ctx context.Context, id string, from, to domain.OrderStatus) (bool, error)
}

type StatusPublisher interface {
	PublishStatusChange(ctx context.Context, event events.OrderStatusEvent) error
}

// Notification is the gateway's webhook body. Fields stay strings because the
// signature is computed over the raw string values.
type Notification struct {
	OrderID           string `json:"order_id"`
	StatusCode        string `json:"status_code"`
	GrossAmount       string `json:"gross_amount"`
	SignatureKey      string `json:"signature_key"`
	TransactionStatus string `json:"transaction_status"`
}

// WebhookService reconciles asynchronous payment notifications into order
// status. It runs with no user session and must touch nothing but order
// status.
type WebhookService struct {
	repo      WebhookRepository
	serverKey string
	publisher StatusPublisher
}

func NewWebhookService(repo WebhookRepository, serverKey string, publisher StatusPublisher) *WebhookService {
	return &WebhookService{
		repo:      repo,
		serverKey: serverKey,
		publisher: publisher,
	}
}

// Reconcile verifies the notification and applies the mapped status. The
// signature is the sole authenticity check; on mismatch nothing is written.
// Replays and out-of-order deliveries are absorbed: re-applying the current
// status is a no-op, and transitions the monotonic table forbids are
// acknowledged but skipped.
func (s *WebhookService) Reconcile(ctx context.Context, n *Notification) error {
	if !gateway.VerifySignature(n.OrderID, n.StatusCode, n.GrossAmount, s.serverKey, n.SignatureKey) {
		return ErrSignatureMismatch
	}

	next := domain.MapTransactionStatus(n.TransactionStatus)

	order, err := s.repo.GetOrder(ctx, n.OrderID)
	if err != nil {
		return err
	}

	if order.Status == next {
		return nil // replay, already applied
	}

	if !order.Status.CanTransitionTo(next) {
		log.Printf("order %s: ignoring webhook transition %s -> %s (transaction_status=%q)",
			order.ID, order.Status, next, n.TransactionStatus)
		return nil
	}

	moved, err := s.repo.UpdateOrderStatus(ctx, order.ID, order.Status, next)
	if err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}
	if !moved {
		// lost a race with another delivery; fine if it applied the same status
		current, errRead := s.repo.GetOrder(ctx, n.OrderID)
		if errRead != nil {
			return errRead
		}
		if current.Status != next {
			log.Printf("order %s: concurrent webhook moved status to %s, skipping %s", order.ID, current.Status, next)
		}
		return nil
	}

	s.publish(order, next)
	return nil
}

func (s *WebhookService) publish(order *domain.Order, next domain.OrderStatus) {
	if s.publisher == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	event := events.OrderStatusEvent{
		OrderID:        order.ID,
		UserID:         order.UserID,
		PreviousStatus: order.Status.String(),
		Status:         next.String(),
		Total:          order.Total,
		OccurredAt:     time.Now().UTC(),
	}
	if err := s.publisher.PublishStatusChange(ctx, event); err != nil {
		// never surface publish failures to the gateway
		log.Printf("order %s: failed to publish status event: %v", order.ID, err)
	}
}
