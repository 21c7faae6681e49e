package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/HansenHalim1/RePlate.id/internal/repository"
	"github.com/HansenHalim1/RePlate.id/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type WebhookServiceMock struct {
	received *service.Notification
	err      error
}

func (m *WebhookServiceMock) Reconcile(_ context.Context, n *service.Notification) error {
	m.received = n
	return m.err
}

func webhookBody() map[string]string {
	return map[string]string{
		"order_id":           "ORDER-1",
		"status_code":        "200",
		"gross_amount":       "70000.00",
		"signature_key":      "abc123",
		"transaction_status": "settlement",
	}
}

func postWebhook(t *testing.T, handler *WebhookHandler, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/webhook", bytes.NewReader(payload))
	w := httptest.NewRecorder()
	handler.HandleNotification(w, req)
	return w
}

func TestHandleNotification_Success(t *testing.T) {
	mock := &WebhookServiceMock{}
	handler := NewWebhookHandler(mock, 5*time.Second)

	w := postWebhook(t, handler, webhookBody())

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"ok":true}`, w.Body.String())

	require.NotNil(t, mock.received)
	assert.Equal(t, "ORDER-1", mock.received.OrderID)
	assert.Equal(t, "settlement", mock.received.TransactionStatus)
	assert.Equal(t, "70000.00", mock.received.GrossAmount)
}

func TestHandleNotification_MissingFields(t *testing.T) {
	mock := &WebhookServiceMock{}
	handler := NewWebhookHandler(mock, 5*time.Second)

	body := webhookBody()
	delete(body, "signature_key")
	w := postWebhook(t, handler, body)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Nil(t, mock.received, "the service must not see incomplete payloads")
}

func TestHandleNotification_InvalidJSON(t *testing.T) {
	handler := NewWebhookHandler(&WebhookServiceMock{}, 5*time.Second)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/webhook", bytes.NewReader([]byte(`{"order_id":`)))
	w := httptest.NewRecorder()
	handler.HandleNotification(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleNotification_SignatureMismatch(t *testing.T) {
	mock := &WebhookServiceMock{err: service.ErrSignatureMismatch}
	handler := NewWebhookHandler(mock, 5*time.Second)

	w := postWebhook(t, handler, webhookBody())

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestHandleNotification_UnknownOrder(t *testing.T) {
	mock := &WebhookServiceMock{err: repository.ErrOrderNotFound}
	handler := NewWebhookHandler(mock, 5*time.Second)

	w := postWebhook(t, handler, webhookBody())

	assert.Equal(t, http.StatusNotFound, w.Code)
}
