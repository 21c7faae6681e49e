package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/HansenHalim1/RePlate.id/internal/domain"
)

// HasPaidOrderWithProduct reports whether the given order belongs to the
// user, is paid, and snapshotted the product. This is the rating gate's
// only precondition.
func (r *Repository) HasPaidOrderWithProduct(ctx context.Context, userID, orderID, productID string) (bool, error) {
	query := `SELECT 1
	          FROM orders o
	          JOIN order_items oi ON oi.order_id = o.id
	          WHERE o.id = $1 AND o.user_id = $2 AND o.status = $3 AND oi.product_id = $4
	          LIMIT 1`

	var one int
	err := r.db.QueryRowContext(ctx, query, orderID, userID, domain.OrderStatusPaid, productID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query paid order for product: %w", err)
	}
	return true, nil
}

// UpsertRating writes a rating keyed by (order, product, user); a repeated
// submission overwrites the previous rating and review.
func (r *Repository) UpsertRating(ctx context.Context, rating *domain.Rating) error {
	var review sql.NullString
	if rating.Review != "" {
		review = sql.NullString{String: rating.Review, Valid: true}
	}

	now := time.Now().UTC()
	query := `INSERT INTO product_ratings (order_id, product_id, user_id, rating, review, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)
	          ON CONFLICT (order_id, product_id, user_id)
	          DO UPDATE SET rating = excluded.rating, review = excluded.review, updated_at = excluded.updated_at`

	_, err := r.db.ExecContext(ctx, query,
		rating.OrderID, rating.ProductID, rating.UserID, rating.Rating, review, now, now)
	if err != nil {
		return fmt.Errorf("upsert rating: %w", err)
	}
	return nil
}

// RatingSummary aggregates ratings for the requested product ids. Products
// with no ratings are absent from the result; the service layer fills zeros.
func (r *Repository) RatingSummary(ctx context.Context, productIDs []string) (map[string]domain.RatingSummary, error) {
	if len(productIDs) == 0 {
		return map[string]domain.RatingSummary{}, nil
	}

	placeholders := make([]string, len(productIDs))
	args := make([]any, len(productIDs))
	for i, id := range productIDs {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = id
	}

	query := fmt.Sprintf(
		`SELECT product_id, AVG(rating), COUNT(*)
		 FROM product_ratings
		 WHERE product_id IN (%s)
		 GROUP BY product_id`,
		strings.Join(placeholders, ", "))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query rating summary: %w", err)
	}
	defer rows.Close()

	summary := make(map[string]domain.RatingSummary, len(productIDs))
	for rows.Next() {
		var productID string
		var avg float64
		var count int
		if err := rows.Scan(&productID, &avg, &count); err != nil {
			return nil, fmt.Errorf("scan rating summary: %w", err)
		}
		summary[productID] = domain.RatingSummary{Average: avg, Count: count}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return summary, nil
}
