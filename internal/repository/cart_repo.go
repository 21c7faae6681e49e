package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/HansenHalim1/RePlate.id/internal/domain"
	"github.com/google/uuid"
)

// AddCartLine inserts a line for (user, product) or increments the quantity
// of the existing one. The product must exist.
func (r *Repository) AddCartLine(ctx context.Context, userID, productID string, quantity int) error {
	if _, err := r.GetProduct(ctx, productID); err != nil {
		return err
	}

	query := `INSERT INTO cart_items (id, user_id, product_id, quantity, created_at)
	          VALUES ($1, $2, $3, $4, $5)
	          ON CONFLICT (user_id, product_id)
	          DO UPDATE SET quantity = cart_items.quantity + excluded.quantity`

	_, err := r.db.ExecContext(ctx, query,
		uuid.NewString(), userID, productID, quantity, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("insert cart item: %w", err)
	}
	return nil
}

// UpdateCartLineQuantity sets the quantity of a line owned by userID.
func (r *Repository) UpdateCartLineQuantity(ctx context.Context, userID, lineID string, quantity int) error {
	query := `UPDATE cart_items SET quantity = $1 WHERE id = $2 AND user_id = $3`

	res, err := r.db.ExecContext(ctx, query, quantity, lineID, userID)
	if err != nil {
		return fmt.Errorf("update cart item: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update cart item rows affected: %w", err)
	}
	if affected == 0 {
		return ErrCartLineNotFound
	}
	return nil
}

func (r *Repository) RemoveCartLine(ctx context.Context, userID, lineID string) error {
	query := `DELETE FROM cart_items WHERE id = $1 AND user_id = $2`

	res, err := r.db.ExecContext(ctx, query, lineID, userID)
	if err != nil {
		return fmt.Errorf("delete cart item: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete cart item rows affected: %w", err)
	}
	if affected == 0 {
		return ErrCartLineNotFound
	}
	return nil
}

func (r *Repository) ClearCart(ctx context.Context, userID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM cart_items WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}

func (r *Repository) GetCart(ctx context.Context, userID string) (*domain.Cart, error) {
	items, err := r.GetCartSelection(ctx, userID, nil)
	if err != nil {
		return nil, err
	}

	cart := &domain.Cart{UserID: userID, Items: items}
	for _, item := range items {
		cart.Total += item.Subtotal
	}
	return cart, nil
}

// GetCartSelection loads the caller's cart lines joined to current product
// prices, restricted to lineIDs when provided. Lines referencing ids the
// caller does not own simply don't match.
func (r *Repository) GetCartSelection(ctx context.Context, userID string, lineIDs []string) ([]domain.CartItem, error) {
	query := `SELECT c.id, c.product_id, p.name, p.price, c.quantity, p.image_url, c.created_at
	          FROM cart_items c
	          JOIN products p ON p.id = c.product_id
	          WHERE c.user_id = $1`
	args := []any{userID}

	if len(lineIDs) > 0 {
		placeholders := make([]string, len(lineIDs))
		for i, id := range lineIDs {
			placeholders[i] = fmt.Sprintf("$%d", i+2)
			args = append(args, id)
		}
		query += fmt.Sprintf(" AND c.id IN (%s)", strings.Join(placeholders, ", "))
	}
	query += " ORDER BY c.created_at, c.id"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query cart items: %w", err)
	}
	defer rows.Close()

	var items []domain.CartItem
	for rows.Next() {
		var item domain.CartItem
		if err := rows.Scan(
			&item.ID,
			&item.ProductID,
			&item.ProductName,
			&item.UnitPrice,
			&item.Quantity,
			&item.ImageURL,
			&item.AddedAt,
		); err != nil {
			return nil, fmt.Errorf("scan cart item: %w", err)
		}
		item.Subtotal = item.UnitPrice * int64(item.Quantity)
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return items, nil
}
