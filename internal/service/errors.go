package service

import "errors"

var (
	ErrEmptySelection    = errors.New("cart selection is empty, nothing to checkout")
	ErrInvalidQuantity   = errors.New("quantity must be a positive integer")
	ErrInvalidRating     = errors.New("rating must be an integer between 1 and 5")
	ErrNotEligible       = errors.New("no paid order of yours includes this product")
	ErrSignatureMismatch = errors.New("webhook signature mismatch")
)
