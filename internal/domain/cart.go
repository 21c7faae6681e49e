package domain

import "time"

// CartItem is a cart line joined to its product. UnitPrice always comes from
// the products table at read time, never from the client.
type CartItem struct {
	ID          string    `json:"id"`
	ProductID   string    `json:"product_id"`
	ProductName string    `json:"product_name"`
	UnitPrice   int64     `json:"unit_price"`
	Quantity    int       `json:"quantity"`
	Subtotal    int64     `json:"subtotal"`
	ImageURL    string    `json:"image_url"`
	AddedAt     time.Time `json:"added_at"`
}

type Cart struct {
	UserID string     `json:"user_id"`
	Items  []CartItem `json:"items"`
	Total  int64      `json:"total"`
}
