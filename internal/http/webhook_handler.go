package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/HansenHalim1/RePlate.id/internal/service"
)

type WebhookService interface {
	Reconcile(ctx context.Context, n *service.Notification) error
}

type WebhookHandler struct {
	webhook WebhookService
	timeout time.Duration
}

func NewWebhookHandler(webhook WebhookService, timeout time.Duration) *WebhookHandler {
	return &WebhookHandler{
		webhook: webhook,
		timeout: timeout,
	}
}

// POST /api/v1/payments/webhook
// No user credential: the gateway calls this server-to-server. The body
// signature is the only authenticity check.
func (h *WebhookHandler) HandleNotification(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var n service.Notification
	if err := json.NewDecoder(r.Body).Decode(&n); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if n.OrderID == "" || n.StatusCode == "" || n.GrossAmount == "" || n.SignatureKey == "" {
		respondError(w, http.StatusBadRequest, "missing_fields", "missing required fields")
		return
	}

	if err := h.webhook.Reconcile(ctx, &n); err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
