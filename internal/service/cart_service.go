package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/HansenHalim1/RePlate.id/internal/cache"
	"github.com/HansenHalim1/RePlate.id/internal/domain"
	"golang.org/x/sync/singleflight"
)

type CartRepository interface {
	GetCart(ctx context.Context, userID string) (*domain.Cart, error)
	AddCartLine(ctx context.Context, userID, productID string, quantity int) error
	UpdateCartLineQuantity(ctx context.Context, userID, lineID string, quantity int) error
	RemoveCartLine(ctx context.Context, userID, lineID string) error
	ClearCart(ctx context.Context, userID string) error
}

// maxLineQuantity bounds a single cart line; rescue boxes are sold in small
// batches, so anything larger is a client bug.
const maxLineQuantity = 99

type CartService struct {
	repo  CartRepository
	cache cache.CartCache
	sfg   singleflight.Group // prevents cache stampede
}

func NewCartService(repo CartRepository, cartCache cache.CartCache) *CartService {
	return &CartService{
		repo:  repo,
		cache: cartCache,
	}
}

func (s *CartService) GetCart(ctx context.Context, userID string) (*domain.Cart, error) {
	v, err, _ := s.sfg.Do(userID, func() (interface{}, error) {
		cart, err := s.cache.Get(ctx, userID)
		if err == nil {
			return cart, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			log.Printf("cart cache get error: %v", err) // degrade to the store
		}

		cart, errGet := s.repo.GetCart(ctx, userID)
		if errGet != nil {
			return nil, errGet
		}

		go func() {
			if errSet := s.cache.Set(context.Background(), userID, cart); errSet != nil {
				log.Printf("cart cache set error: %v", errSet)
			}
		}()

		return cart, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(*domain.Cart), nil
}

func (s *CartService) AddItem(ctx context.Context, userID, productID string, quantity int) error {
	if quantity < 1 || quantity > maxLineQuantity {
		return ErrInvalidQuantity
	}

	if err := s.repo.AddCartLine(ctx, userID, productID, quantity); err != nil {
		return err
	}

	s.invalidateCache(userID)
	return nil
}

func (s *CartService) UpdateQuantity(ctx context.Context, userID, lineID string, quantity int) error {
	if quantity < 1 || quantity > maxLineQuantity {
		return ErrInvalidQuantity
	}

	if err := s.repo.UpdateCartLineQuantity(ctx, userID, lineID, quantity); err != nil {
		return err
	}

	s.invalidateCache(userID)
	return nil
}

func (s *CartService) RemoveItem(ctx context.Context, userID, lineID string) error {
	if err := s.repo.RemoveCartLine(ctx, userID, lineID); err != nil {
		return err
	}

	s.invalidateCache(userID)
	return nil
}

func (s *CartService) ClearCart(ctx context.Context, userID string) error {
	if err := s.repo.ClearCart(ctx, userID); err != nil {
		return err
	}

	s.invalidateCache(userID)
	return nil
}

func (s *CartService) invalidateCache(userID string) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.cache.Delete(ctx, userID); err != nil {
		log.Printf("cart cache invalidate error: %v", err)
	}
}
