package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"

	"github.com/shopspring/decimal"

	"github.com/cloudshelf/storefront/internal/cart"
)

// CustomerInfo is the shipping subset forwarded to the authority.
type CustomerInfo struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	City    string `json:"city"`
	State   string `json:"state"`
	ZipCode string `json:"zipCode"`
}

// Request is one payment submission to the external authority.
type Request struct {
	Instrument  Instrument
	Items       []cart.Line
	TotalAmount decimal.Decimal
	Customer    CustomerInfo
	Token       string
}

// Result is a successful submission; the authority alone assigns OrderID.
type Result struct {
	OrderID string
	Message string
}

// GatewayError reports a declined or failed submission. Status is the
// authority's HTTP status, or 0 when the request never completed. Message
// carries the authority's wording verbatim when it supplied one.
type GatewayError struct {
	Status  int
	Message string
}

func (e *GatewayError) Error() string {
	if e.Status == 0 {
		return "payment gateway unreachable: " + e.Message
	}
	return fmt.Sprintf("payment gateway rejected submission (status %d): %s", e.Status, e.Message)
}

const genericFailure = "Payment processing failed"

// Client submits validated instruments to the payment/order authority.
type Client struct {
	baseURL *url.URL
	apiKey  string
	http    *http.Client
	logger  *log.Logger
}

func NewClient(baseURL, apiKey string, httpClient *http.Client, logger *log.Logger) *Client {
	u, err := url.Parse(baseURL)
	if err != nil {
		// Fail fast: config error
		panic(fmt.Sprintf("invalid payment base url %q: %v", baseURL, err))
	}
	return &Client{baseURL: u, apiKey: apiKey, http: httpClient, logger: logger}
}

type submitBody struct {
	PaymentInstrument Instrument   `json:"paymentInstrument"`
	OrderDetails      orderDetails `json:"orderDetails"`
	CustomerInfo      CustomerInfo `json:"customerInfo"`
	AntiForgeryToken  string       `json:"antiForgeryToken"`
}

type orderDetails struct {
	TotalAmount decimal.Decimal `json:"totalAmount"`
	Items       []cart.Line     `json:"items"`
}

type submitResponse struct {
	Success bool   `json:"success"`
	OrderID string `json:"orderId"`
	Message string `json:"message"`
	Error   string `json:"error"`
}

// Submit posts the payment to the authority. Callers must have validated
// the instrument and verified the anti-forgery token first.
func (c *Client) Submit(ctx context.Context, req Request) (Result, error) {
	payload, err := json.Marshal(submitBody{
		PaymentInstrument: req.Instrument,
		OrderDetails:      orderDetails{TotalAmount: req.TotalAmount, Items: req.Items},
		CustomerInfo:      req.Customer,
		AntiForgeryToken:  req.Token,
	})
	if err != nil {
		return Result{}, fmt.Errorf("marshal payment submission: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL.JoinPath("process-payment").String(), bytes.NewReader(payload))
	if err != nil {
		return Result{}, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("x-api-key", c.apiKey)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		c.logger.Printf("payment submission transport failure: %v", err)
		return Result{}, &GatewayError{Message: "error connecting to payment service"}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{}, &GatewayError{Status: resp.StatusCode, Message: "error reading payment response"}
	}

	var body submitResponse
	if err := json.Unmarshal(raw, &body); err != nil {
		c.logger.Printf("payment response unparseable (status %d): %q", resp.StatusCode, raw)
		return Result{}, &GatewayError{Status: resp.StatusCode, Message: genericFailure}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Result{}, &GatewayError{Status: resp.StatusCode, Message: authorityMessage(body)}
	}
	if body.OrderID == "" {
		return Result{}, &GatewayError{Status: resp.StatusCode, Message: authorityMessage(body)}
	}

	return Result{OrderID: body.OrderID, Message: body.Message}, nil
}

func authorityMessage(body submitResponse) string {
	if body.Message != "" {
		return body.Message
	}
	if body.Error != "" {
		return body.Error
	}
	return genericFailure
}
