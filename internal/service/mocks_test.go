package service

import (
	"context"
	"sync"

	"github.com/HansenHalim1/RePlate.id/internal/cache"
	"github.com/HansenHalim1/RePlate.id/internal/domain"
	"github.com/HansenHalim1/RePlate.id/internal/events"
	"github.com/HansenHalim1/RePlate.id/internal/gateway"
	"github.com/HansenHalim1/RePlate.id/internal/repository"
)

// the sentinel the real store returns for a missing order
var errOrderMissing = repository.ErrOrderNotFound

// MockRepository implements the repository interfaces the services consume.
type MockRepository struct {
	mu sync.Mutex

	Cart          *domain.Cart
	Selection     []domain.CartItem
	SelectionErr  error
	CartErr       error
	CreatedOrders []*domain.Order // captures orders passed to CreateOrder
	CreateErr     error

	Orders          map[string]*domain.Order
	GetOrderErr     error
	StatusUpdates   []statusUpdate // captures UpdateOrderStatus calls
	UpdateMoved     bool
	UpdateErr       error
	ApplyUpdates    bool // when set, UpdateOrderStatus mutates Orders like the real store
	Eligible        bool
	EligibleErr     error
	UpsertedRatings []*domain.Rating
	UpsertErr       error
	SummaryStats    map[string]domain.RatingSummary
	SummaryErr      error
}

type statusUpdate struct {
	OrderID string
	From    domain.OrderStatus
	To      domain.OrderStatus
}

func (m *MockRepository) GetCart(_ context.Context, _ string) (*domain.Cart, error) {
	return m.Cart, m.CartErr
}

func (m *MockRepository) AddCartLine(_ context.Context, _, _ string, _ int) error {
	return m.CartErr
}

func (m *MockRepository) UpdateCartLineQuantity(_ context.Context, _, _ string, _ int) error {
	return m.CartErr
}

func (m *MockRepository) RemoveCartLine(_ context.Context, _, _ string) error {
	return m.CartErr
}

func (m *MockRepository) ClearCart(_ context.Context, _ string) error {
	return m.CartErr
}

func (m *MockRepository) GetCartSelection(_ context.Context, _ string, _ []string) ([]domain.CartItem, error) {
	return m.Selection, m.SelectionErr
}

func (m *MockRepository) CreateOrder(_ context.Context, order *domain.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CreateErr != nil {
		return m.CreateErr
	}
	m.CreatedOrders = append(m.CreatedOrders, order)
	return nil
}

func (m *MockRepository) GetOrder(_ context.Context, id string) (*domain.Order, error) {
	if m.GetOrderErr != nil {
		return nil, m.GetOrderErr
	}
	order, ok := m.Orders[id]
	if !ok {
		return nil, errOrderMissing
	}
	return order, nil
}

func (m *MockRepository) UpdateOrderStatus(_ context.Context, id string, from, to domain.OrderStatus) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.StatusUpdates = append(m.StatusUpdates, statusUpdate{OrderID: id, From: from, To: to})
	if m.UpdateErr != nil {
		return false, m.UpdateErr
	}
	if m.ApplyUpdates {
		order, ok := m.Orders[id]
		if !ok || order.Status != from {
			return false, nil
		}
		order.Status = to
		return true, nil
	}
	return m.UpdateMoved, nil
}

func (m *MockRepository) HasPaidOrderWithProduct(_ context.Context, _, _, _ string) (bool, error) {
	return m.Eligible, m.EligibleErr
}

func (m *MockRepository) UpsertRating(_ context.Context, rating *domain.Rating) error {
	if m.UpsertErr != nil {
		return m.UpsertErr
	}
	m.UpsertedRatings = append(m.UpsertedRatings, rating)
	return nil
}

func (m *MockRepository) RatingSummary(_ context.Context, _ []string) (map[string]domain.RatingSummary, error) {
	return m.SummaryStats, m.SummaryErr
}

// MockGateway implements PaymentGateway.
type MockGateway struct {
	Session  *gateway.SnapSession
	Err      error
	Requests []gateway.SessionRequest // captures session requests
}

func (m *MockGateway) CreateSession(_ context.Context, req gateway.SessionRequest) (*gateway.SnapSession, error) {
	m.Requests = append(m.Requests, req)
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Session, nil
}

func (m *MockGateway) ClientKey() string {
	return "client-key"
}

// MockPublisher implements StatusPublisher.
type MockPublisher struct {
	mu     sync.Mutex
	Events []events.OrderStatusEvent
	Err    error
}

func (m *MockPublisher) PublishStatusChange(_ context.Context, event events.OrderStatusEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.Events = append(m.Events, event)
	return nil
}

// MockCache implements cache.CartCache over a map.
type MockCache struct {
	mu      sync.Mutex
	Entries map[string]*domain.Cart
	GetErr  error
	SetErr  error
	Deletes []string
}

func NewMockCache() *MockCache {
	return &MockCache{Entries: make(map[string]*domain.Cart)}
}

func (m *MockCache) Get(_ context.Context, userID string) (*domain.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	cart, ok := m.Entries[userID]
	if !ok {
		return nil, cache.ErrCacheMiss
	}
	return cart, nil
}

func (m *MockCache) Set(_ context.Context, userID string, cart *domain.Cart) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SetErr != nil {
		return m.SetErr
	}
	m.Entries[userID] = cart
	return nil
}

func (m *MockCache) Delete(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Deletes = append(m.Deletes, userID)
	delete(m.Entries, userID)
	return nil
}
