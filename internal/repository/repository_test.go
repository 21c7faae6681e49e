package repository

import (
	"context"
	"testing"
	"time"

	"github.com/HansenHalim1/RePlate.id/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *Repository {
	repo, err := NewSQLiteRepository(":memory:")
	require.NoError(t, err)

	require.NoError(t, repo.RunMigrations("./migrations/sqlite"))

	t.Cleanup(func() { repo.Close() })
	return repo
}

// seedProduct inserts a fixture product outside the migration seed.
func seedProduct(t *testing.T, repo *Repository, id string, price int64) {
	_, err := repo.db.Exec(
		`INSERT INTO products (id, name, price, image_url, category) VALUES ($1, $2, $3, '', 'lunch')`,
		id, "Rescue Box "+id, price)
	require.NoError(t, err)
}

func TestListProducts_ReturnsMigrationSeed(t *testing.T) {
	repo := setupTestDB(t)

	products, err := repo.ListProducts(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, products, 6)
}

func TestListProducts_FiltersByCategory(t *testing.T) {
	repo := setupTestDB(t)

	products, err := repo.ListProducts(context.Background(), "dessert")
	require.NoError(t, err)
	require.Len(t, products, 2)
	for _, p := range products {
		assert.Equal(t, "dessert", p.Category)
	}
}

func TestGetProduct_NotFound(t *testing.T) {
	repo := setupTestDB(t)

	_, err := repo.GetProduct(context.Background(), "no-such-product")
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestAddCartLine_InsertsThenIncrements(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	require.NoError(t, repo.AddCartLine(ctx, "user-1", "lunch-1", 2))
	require.NoError(t, repo.AddCartLine(ctx, "user-1", "lunch-1", 3))

	cart, err := repo.GetCart(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 5, cart.Items[0].Quantity)
	assert.Equal(t, int64(15000), cart.Items[0].UnitPrice)
	assert.Equal(t, int64(75000), cart.Total)
}

func TestAddCartLine_UnknownProduct(t *testing.T) {
	repo := setupTestDB(t)

	err := repo.AddCartLine(context.Background(), "user-1", "no-such-product", 1)
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestUpdateCartLineQuantity_OwnerOnly(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	require.NoError(t, repo.AddCartLine(ctx, "user-1", "lunch-1", 1))
	cart, err := repo.GetCart(ctx, "user-1")
	require.NoError(t, err)
	lineID := cart.Items[0].ID

	err = repo.UpdateCartLineQuantity(ctx, "user-2", lineID, 4)
	assert.ErrorIs(t, err, ErrCartLineNotFound)

	require.NoError(t, repo.UpdateCartLineQuantity(ctx, "user-1", lineID, 4))
	cart, err = repo.GetCart(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 4, cart.Items[0].Quantity)
}

func TestRemoveCartLine(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	require.NoError(t, repo.AddCartLine(ctx, "user-1", "lunch-1", 1))
	cart, err := repo.GetCart(ctx, "user-1")
	require.NoError(t, err)
	lineID := cart.Items[0].ID

	require.NoError(t, repo.RemoveCartLine(ctx, "user-1", lineID))
	assert.ErrorIs(t, repo.RemoveCartLine(ctx, "user-1", lineID), ErrCartLineNotFound)

	cart, err = repo.GetCart(ctx, "user-1")
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
}

func TestClearCart(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	require.NoError(t, repo.AddCartLine(ctx, "user-1", "lunch-1", 1))
	require.NoError(t, repo.AddCartLine(ctx, "user-1", "bread-1", 2))
	require.NoError(t, repo.ClearCart(ctx, "user-1"))

	cart, err := repo.GetCart(ctx, "user-1")
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
}

func TestGetCartSelection_Subset(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()
	seedProduct(t, repo, "surplus-1", 35000)

	require.NoError(t, repo.AddCartLine(ctx, "user-1", "surplus-1", 2))
	require.NoError(t, repo.AddCartLine(ctx, "user-1", "lunch-1", 1))

	cart, err := repo.GetCart(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, cart.Items, 2)

	var surplusLineID string
	for _, item := range cart.Items {
		if item.ProductID == "surplus-1" {
			surplusLineID = item.ID
		}
	}
	require.NotEmpty(t, surplusLineID)

	items, err := repo.GetCartSelection(ctx, "user-1", []string{surplusLineID})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, int64(70000), items[0].Subtotal)
}

func TestGetCartSelection_IgnoresForeignLines(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	require.NoError(t, repo.AddCartLine(ctx, "user-2", "lunch-1", 1))
	cart, err := repo.GetCart(ctx, "user-2")
	require.NoError(t, err)
	foreignLineID := cart.Items[0].ID

	items, err := repo.GetCartSelection(ctx, "user-1", []string{foreignLineID})
	require.NoError(t, err)
	assert.Empty(t, items)
}

func makeOrder(userID string) *domain.Order {
	return &domain.Order{
		ID:     "ORDER-11111111-1111-1111-1111-111111111111",
		UserID: userID,
		Total:  70000,
		Status: domain.OrderStatusPending,
		Items: []domain.OrderItem{
			{ProductID: "surplus-1", ProductName: "Rescue Box", Quantity: 2, Price: 35000},
		},
	}
}

func TestCreateOrder_AndGetOrder(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	order := makeOrder("user-1")
	require.NoError(t, repo.CreateOrder(ctx, order))

	got, err := repo.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.ID, got.ID)
	assert.Equal(t, int64(70000), got.Total)
	assert.Equal(t, domain.OrderStatusPending, got.Status)
	require.Len(t, got.Items, 1)
	assert.Equal(t, int64(35000), got.Items[0].Price)
	assert.Equal(t, 2, got.Items[0].Quantity)
}

func TestCreateOrder_DuplicateID(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	order := makeOrder("user-1")
	require.NoError(t, repo.CreateOrder(ctx, order))

	err := repo.CreateOrder(ctx, makeOrder("user-1"))
	assert.Error(t, err)
}

func TestGetOrder_NotFound(t *testing.T) {
	repo := setupTestDB(t)

	_, err := repo.GetOrder(context.Background(), "ORDER-missing")
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestListOrdersByUserID_NewestFirst(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	older := makeOrder("user-1")
	older.ID = "ORDER-older"
	older.CreatedAt = time.Now().UTC().Add(-time.Hour)
	require.NoError(t, repo.CreateOrder(ctx, older))

	newer := makeOrder("user-1")
	newer.ID = "ORDER-newer"
	require.NoError(t, repo.CreateOrder(ctx, newer))

	other := makeOrder("user-2")
	other.ID = "ORDER-other"
	require.NoError(t, repo.CreateOrder(ctx, other))

	orders, err := repo.ListOrdersByUserID(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, "ORDER-newer", orders[0].ID)
	assert.Equal(t, "ORDER-older", orders[1].ID)
	require.Len(t, orders[0].Items, 1)
}

func TestUpdateOrderStatus_Conditional(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	order := makeOrder("user-1")
	require.NoError(t, repo.CreateOrder(ctx, order))

	moved, err := repo.UpdateOrderStatus(ctx, order.ID, domain.OrderStatusPending, domain.OrderStatusPaid)
	require.NoError(t, err)
	assert.True(t, moved)

	// predicate no longer matches: the row is already paid
	moved, err = repo.UpdateOrderStatus(ctx, order.ID, domain.OrderStatusPending, domain.OrderStatusFailed)
	require.NoError(t, err)
	assert.False(t, moved)

	got, err := repo.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusPaid, got.Status)
}

func TestHasPaidOrderWithProduct(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	order := makeOrder("user-1")
	require.NoError(t, repo.CreateOrder(ctx, order))

	// pending order does not qualify
	ok, err := repo.HasPaidOrderWithProduct(ctx, "user-1", order.ID, "surplus-1")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = repo.UpdateOrderStatus(ctx, order.ID, domain.OrderStatusPending, domain.OrderStatusPaid)
	require.NoError(t, err)

	ok, err = repo.HasPaidOrderWithProduct(ctx, "user-1", order.ID, "surplus-1")
	require.NoError(t, err)
	assert.True(t, ok)

	// wrong user, wrong product
	ok, err = repo.HasPaidOrderWithProduct(ctx, "user-2", order.ID, "surplus-1")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = repo.HasPaidOrderWithProduct(ctx, "user-1", order.ID, "lunch-1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestUpsertRating_OverwritesOnRepeat(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	rating := &domain.Rating{
		OrderID:   "ORDER-1",
		ProductID: "lunch-1",
		UserID:    "user-1",
		Rating:    5,
		Review:    "great value",
	}
	require.NoError(t, repo.UpsertRating(ctx, rating))

	rating.Rating = 3
	rating.Review = "arrived late"
	require.NoError(t, repo.UpsertRating(ctx, rating))

	summary, err := repo.RatingSummary(ctx, []string{"lunch-1"})
	require.NoError(t, err)
	require.Contains(t, summary, "lunch-1")
	assert.Equal(t, 1, summary["lunch-1"].Count)
	assert.InDelta(t, 3.0, summary["lunch-1"].Average, 0.001)
}

func TestRatingSummary_AggregatesPerProduct(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	require.NoError(t, repo.UpsertRating(ctx, &domain.Rating{OrderID: "ORDER-1", ProductID: "lunch-1", UserID: "user-1", Rating: 4}))
	require.NoError(t, repo.UpsertRating(ctx, &domain.Rating{OrderID: "ORDER-2", ProductID: "lunch-1", UserID: "user-2", Rating: 5}))

	summary, err := repo.RatingSummary(ctx, []string{"lunch-1", "bread-1"})
	require.NoError(t, err)
	assert.Equal(t, 2, summary["lunch-1"].Count)
	assert.InDelta(t, 4.5, summary["lunch-1"].Average, 0.001)
	assert.NotContains(t, summary, "bread-1")
}

func TestRatingSummary_EmptyInput(t *testing.T) {
	repo := setupTestDB(t)

	summary, err := repo.RatingSummary(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, summary)
}
