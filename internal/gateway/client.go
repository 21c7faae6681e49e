package gateway

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/HansenHalim1/RePlate.id/internal/domain"
	"github.com/sony/gobreaker/v2"
)

var (
	// ErrGatewayRejected covers non-2xx responses from the payment provider.
	ErrGatewayRejected = errors.New("payment gateway rejected the request")
	// ErrGatewayUnavailable covers transport failures and an open breaker.
	ErrGatewayUnavailable = errors.New("payment gateway unavailable")
)

// SnapSession is the opaque payment session handed back to the browser. It
// carries no server-held secret.
type SnapSession struct {
	Token       string `json:"token"`
	RedirectURL string `json:"redirect_url"`
}

type SessionRequest struct {
	OrderID       string
	GrossAmount   int64
	Items         []domain.OrderItem
	CustomerEmail string
}

// Client talks to a Midtrans-Snap-style hosted payment API. Session creation
// goes through a circuit breaker so a dead provider fails fast instead of
// tying up request handlers.
type Client struct {
	baseURL    string
	serverKey  string
	clientKey  string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[*SnapSession]
}

func NewClient(baseURL, serverKey, clientKey string) *Client {
	breaker := gobreaker.NewCircuitBreaker[*SnapSession](gobreaker.Settings{
		Name:    "snap-transactions",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Printf("circuit breaker %s: %s -> %s", name, from, to)
		},
	})

	return &Client{
		baseURL:    baseURL,
		serverKey:  serverKey,
		clientKey:  clientKey,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		breaker:    breaker,
	}
}

// ClientKey returns the publishable key the browser widget needs.
func (c *Client) ClientKey() string {
	return c.clientKey
}

type transactionDetails struct {
	OrderID     string `json:"order_id"`
	GrossAmount int64  `json:"gross_amount"`
}

type itemDetail struct {
	ID       string `json:"id"`
	Price    int64  `json:"price"`
	Quantity int    `json:"quantity"`
	Name     string `json:"name"`
}

type customerDetails struct {
	Email string `json:"email"`
}

type snapPayload struct {
	TransactionDetails transactionDetails `json:"transaction_details"`
	ItemDetails        []itemDetail       `json:"item_details"`
	CustomerDetails    customerDetails    `json:"customer_details"`
}

// CreateSession requests a hosted payment session for an order. The server
// key authenticates the call; it never leaves this package.
func (c *Client) CreateSession(ctx context.Context, req SessionRequest) (*SnapSession, error) {
	session, err := c.breaker.Execute(func() (*SnapSession, error) {
		return c.createSession(ctx, req)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
		}
		return nil, err
	}
	return session, nil
}

func (c *Client) createSession(ctx context.Context, req SessionRequest) (*SnapSession, error) {
	payload := snapPayload{
		TransactionDetails: transactionDetails{
			OrderID:     req.OrderID,
			GrossAmount: req.GrossAmount,
		},
		ItemDetails:     make([]itemDetail, 0, len(req.Items)),
		CustomerDetails: customerDetails{Email: req.CustomerEmail},
	}
	for i, item := range req.Items {
		payload.ItemDetails = append(payload.ItemDetails, itemDetail{
			ID:       itemDetailID(item.ProductName, i),
			Price:    item.Price,
			Quantity: item.Quantity,
			Name:     item.ProductName,
		})
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal snap payload: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/snap/v1/transactions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build snap request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", basicAuth(c.serverKey))

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		errorText, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		log.Printf("snap error response (%d): %s", resp.StatusCode, errorText)
		return nil, fmt.Errorf("%w: status %d", ErrGatewayRejected, resp.StatusCode)
	}

	var session SnapSession
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return nil, fmt.Errorf("decode snap response: %w", err)
	}
	if session.Token == "" {
		return nil, fmt.Errorf("%w: empty token", ErrGatewayRejected)
	}

	return &session, nil
}

// itemDetailID follows the provider limit of 20 characters on item ids.
func itemDetailID(name string, idx int) string {
	if name == "" {
		return fmt.Sprintf("item-%d", idx+1)
	}
	if len(name) > 20 {
		return name[:20]
	}
	return name
}

func basicAuth(serverKey string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(serverKey+":"))
}
