package domain

import "time"

type OrderStatus string

const (
	OrderStatusPending  OrderStatus = "pending"
	OrderStatusPaid     OrderStatus = "paid"
	OrderStatusFailed   OrderStatus = "failed"
	OrderStatusExpired  OrderStatus = "expired"
	OrderStatusRefunded OrderStatus = "refunded"
)

func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusPaid || s == OrderStatusFailed ||
		s == OrderStatusExpired || s == OrderStatusRefunded
}

// String representation (for logging)
func (s OrderStatus) String() string {
	return string(s)
}

// CanTransitionTo enforces the monotonic status table: pending may move
// anywhere, paid may only move to refunded, and re-applying the current
// status is always allowed so replayed webhooks stay idempotent.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	if s == next {
		return true
	}
	switch s {
	case OrderStatusPending:
		return true
	case OrderStatusPaid:
		return next == OrderStatusRefunded
	default:
		return false
	}
}

// transactionStatusMap mirrors the gateway's transaction_status vocabulary.
var transactionStatusMap = map[string]OrderStatus{
	"capture":    OrderStatusPaid,
	"settlement": OrderStatusPaid,
	"pending":    OrderStatusPending,
	"deny":       OrderStatusFailed,
	"cancel":     OrderStatusFailed,
	"expire":     OrderStatusExpired,
	"refund":     OrderStatusRefunded,
}

// MapTransactionStatus maps a gateway transaction_status to an order status.
// Unknown values map to pending rather than a terminal state.
func MapTransactionStatus(transactionStatus string) OrderStatus {
	if status, ok := transactionStatusMap[transactionStatus]; ok {
		return status
	}
	return OrderStatusPending
}

// OrderItem is a snapshot of a purchased product captured at order-creation
// time. Name and price are copied from the product row so history survives
// later catalog changes.
type OrderItem struct {
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name"`
	Quantity    int    `json:"quantity"`
	Price       int64  `json:"price"`
}

type Order struct {
	ID        string      `json:"id"`
	UserID    string      `json:"user_id"`
	Total     int64       `json:"total"`
	Status    OrderStatus `json:"status"`
	Items     []OrderItem `json:"items"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}
