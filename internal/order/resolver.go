// Package order reads confirmed orders back from the external order
// authority. Orders are created only by the authority; this package never
// fabricates an order id.
package order

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"
)

type Item struct {
	ItemID    string          `json:"itemId"`
	Title     string          `json:"title"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Quantity  int             `json:"quantity"`
}

type Customer struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	City    string `json:"city"`
	State   string `json:"state"`
	ZipCode string `json:"zipCode"`
}

// Order is the authoritative record, read-only once created.
type Order struct {
	ID          string          `json:"orderId"`
	Items       []Item          `json:"items"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	Customer    Customer        `json:"customer"`
	CreatedAt   time.Time       `json:"createdAt"`
	Status      string          `json:"status"`
}

// RetrievalError reports a failed order fetch. Status is the authority's
// HTTP status, passed through to the caller; 0 means the request never
// completed.
type RetrievalError struct {
	Status  int
	Message string
}

func (e *RetrievalError) Error() string {
	if e.Status == 0 {
		return "order retrieval failed: " + e.Message
	}
	return fmt.Sprintf("order retrieval failed (status %d): %s", e.Status, e.Message)
}

// Resolver fetches an order by id. One attempt per call; retries are the
// caller's decision.
type Resolver struct {
	baseURL *url.URL
	apiKey  string
	http    *http.Client
	logger  *log.Logger
}

func NewResolver(baseURL, apiKey string, httpClient *http.Client, logger *log.Logger) *Resolver {
	u, err := url.Parse(baseURL)
	if err != nil {
		// Fail fast: config error
		panic(fmt.Sprintf("invalid order base url %q: %v", baseURL, err))
	}
	return &Resolver{baseURL: u, apiKey: apiKey, http: httpClient, logger: logger}
}

// Resolve performs exactly one retrieval call for the given order id.
func (r *Resolver) Resolve(ctx context.Context, orderID string) (*Order, error) {
	u := r.baseURL.JoinPath("orders", url.PathEscape(orderID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	if r.apiKey != "" {
		req.Header.Set("x-api-key", r.apiKey)
	}

	resp, err := r.http.Do(req)
	if err != nil {
		r.logger.Printf("order retrieval transport failure for %s: %v", orderID, err)
		return nil, &RetrievalError{Message: "error connecting to order service"}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &RetrievalError{Status: resp.StatusCode, Message: "error reading order response"}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &RetrievalError{Status: resp.StatusCode, Message: upstreamMessage(raw)}
	}

	o, err := decodeOrder(raw)
	if err != nil {
		return nil, &RetrievalError{Status: resp.StatusCode, Message: err.Error()}
	}
	return o, nil
}

// decodeOrder tolerates the gateway envelope around the order record.
func decodeOrder(raw []byte) (*Order, error) {
	var env struct {
		Body *string `json:"body"`
	}
	if err := json.Unmarshal(raw, &env); err == nil && env.Body != nil {
		raw = []byte(*env.Body)
	}

	var o Order
	if err := json.Unmarshal(raw, &o); err != nil {
		return nil, fmt.Errorf("unparseable order record")
	}
	if o.ID == "" {
		return nil, fmt.Errorf("order record missing orderId")
	}
	return &o, nil
}

func upstreamMessage(raw []byte) string {
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(raw, &body); err == nil {
		if body.Message != "" {
			return body.Message
		}
		if body.Error != "" {
			return body.Error
		}
	}
	return "Failed to retrieve order"
}
