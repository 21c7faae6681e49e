package http

import (
	"net/http"
	"time"

	"github.com/HansenHalim1/RePlate.id/internal/auth"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type RouterConfig struct {
	Sessions       auth.SessionStore
	Products       ProductLister
	Cart           CartService
	Checkout       CheckoutService
	Webhook        WebhookService
	Ratings        RatingService
	Orders         OrderLister
	RequestTimeout time.Duration
}

// NewRouter assembles the public surface. Everything under the auth group
// requires a bearer session; the webhook and the rating summary are public.
func NewRouter(cfg RouterConfig) chi.Router {
	productHandler := NewProductHandler(cfg.Products, cfg.RequestTimeout)
	cartHandler := NewCartHandler(cfg.Cart, cfg.RequestTimeout)
	checkoutHandler := NewCheckoutHandler(cfg.Checkout, cfg.RequestTimeout)
	webhookHandler := NewWebhookHandler(cfg.Webhook, cfg.RequestTimeout)
	ratingHandler := NewRatingHandler(cfg.Ratings, cfg.RequestTimeout)
	orderHandler := NewOrderHandler(cfg.Orders, cfg.RequestTimeout)

	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestIDMiddleware)
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(middleware.Compress(5))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		// public
		r.Get("/products", productHandler.ListProducts)
		r.Post("/ratings/summary", ratingHandler.Summary)
		r.Post("/payments/webhook", webhookHandler.HandleNotification)

		// bearer session required
		r.Group(func(r chi.Router) {
			r.Use(AuthMiddleware(cfg.Sessions))

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", cartHandler.GetCart)
				r.Delete("/", cartHandler.ClearCart)
				r.Post("/items", cartHandler.AddItem)
				r.Put("/items/{line_id}", cartHandler.UpdateQuantity)
				r.Delete("/items/{line_id}", cartHandler.RemoveItem)
			})

			r.Post("/payments", checkoutHandler.CreatePayment)
			r.Get("/orders", orderHandler.ListOrders)
			r.Post("/ratings", ratingHandler.SubmitRating)
		})
	})

	return r
}
