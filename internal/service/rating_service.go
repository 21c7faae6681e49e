package service

import (
	"context"
	"fmt"
	"math"

	"github.com/HansenHalim1/RePlate.id/internal/domain"
)

type RatingRepository interface {
	HasPaidOrderWithProduct(ctx context.Context, userID, orderID, productID string) (bool, error)
	UpsertRating(ctx context.Context, rating *domain.Rating) error
	RatingSummary(ctx context.Context, productIDs []string) (map[string]domain.RatingSummary, error)
}

type RatingService struct {
	repo RatingRepository
}

func NewRatingService(repo RatingRepository) *RatingService {
	return &RatingService{repo: repo}
}

// SubmitRating upserts a rating keyed by (order, product, user), but only if
// the caller has a paid order with that id containing the product. This is
// the single authorization rule beyond row ownership in the system.
func (s *RatingService) SubmitRating(ctx context.Context, userID, productID, orderID string, rating int, review string) error {
	if rating < 1 || rating > 5 {
		return ErrInvalidRating
	}

	eligible, err := s.repo.HasPaidOrderWithProduct(ctx, userID, orderID, productID)
	if err != nil {
		return fmt.Errorf("failed to validate purchase: %w", err)
	}
	if !eligible {
		return ErrNotEligible
	}

	return s.repo.UpsertRating(ctx, &domain.Rating{
		OrderID:   orderID,
		ProductID: productID,
		UserID:    userID,
		Rating:    rating,
		Review:    review,
	})
}

// Summary returns {average, count} per requested product id; products without
// ratings come back as zeros, so the client can render them uniformly.
func (s *RatingService) Summary(ctx context.Context, productIDs []string) (map[string]domain.RatingSummary, error) {
	result := make(map[string]domain.RatingSummary, len(productIDs))
	if len(productIDs) == 0 {
		return result, nil
	}

	stats, err := s.repo.RatingSummary(ctx, productIDs)
	if err != nil {
		return nil, err
	}

	for _, id := range productIDs {
		stat, ok := stats[id]
		if !ok {
			result[id] = domain.RatingSummary{}
			continue
		}
		stat.Average = math.Round(stat.Average*100) / 100
		result[id] = stat
	}

	return result, nil
}
