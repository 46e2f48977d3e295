package checkout

import (
	"context"
	"errors"
	"log"

	"github.com/google/uuid"

	"github.com/cloudshelf/storefront/internal/cart"
	"github.com/cloudshelf/storefront/internal/csrf"
	"github.com/cloudshelf/storefront/internal/events"
	"github.com/cloudshelf/storefront/internal/payment"
)

// PaymentGateway is what the orchestrator needs from the payment authority
// client.
type PaymentGateway interface {
	Submit(ctx context.Context, req payment.Request) (payment.Result, error)
}

// EventPublisher announces confirmed orders. Publishing is best-effort:
// a broker outage never fails a confirmed checkout.
type EventPublisher interface {
	PublishOrderConfirmed(ctx context.Context, correlationID string, ev events.OrderConfirmed) error
}

// Orchestrator drives a checkout attempt through its lifecycle:
// COLLECTING_SHIPPING -> AWAITING_PAYMENT -> SUBMITTING -> CONFIRMED,
// with declined payments returning to AWAITING_PAYMENT.
type Orchestrator struct {
	attempts Repository
	carts    cart.Repository
	gateway  PaymentGateway
	events   EventPublisher
	logger   *log.Logger
}

func NewOrchestrator(attempts Repository, carts cart.Repository, gateway PaymentGateway, publisher EventPublisher, logger *log.Logger) *Orchestrator {
	return &Orchestrator{
		attempts: attempts,
		carts:    carts,
		gateway:  gateway,
		events:   publisher,
		logger:   logger,
	}
}

// Begin starts a checkout attempt for the user's current cart. The minted
// token is returned so the transport layer can set it as a cookie; it is
// also bound to the attempt for the double-submit check at payment time.
func (o *Orchestrator) Begin(ctx context.Context, userID string) (*Attempt, error) {
	c, err := o.carts.Load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if c == nil || c.IsEmpty() {
		return nil, ErrEmptyCart
	}

	token, err := csrf.Mint()
	if err != nil {
		return nil, err
	}

	a := &Attempt{
		ID:     uuid.NewString(),
		UserID: userID,
		Status: StatusCollectingShipping,
		Token:  token,
	}
	if err := o.attempts.Create(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// SubmitShipping validates and stores the shipping details, moving the
// attempt to AWAITING_PAYMENT. Resubmitting shipping while awaiting payment
// is allowed; the shopper may go back and correct an address.
func (o *Orchestrator) SubmitShipping(ctx context.Context, userID, attemptID string, s ShippingInfo) (*Attempt, error) {
	a, err := o.attempts.Get(ctx, attemptID)
	if err != nil {
		return nil, err
	}
	if a.UserID != userID {
		return nil, ErrAttemptNotFound
	}
	if a.Status != StatusCollectingShipping && a.Status != StatusAwaitingPayment {
		return nil, ErrIllegalTransition
	}

	s = s.Sanitize()
	if missing := s.MissingFields(); len(missing) > 0 {
		return nil, &ValidationError{Fields: missing}
	}

	if err := o.attempts.SetShipping(ctx, attemptID, s); err != nil {
		return nil, err
	}
	a.Shipping = &s
	a.Status = StatusAwaitingPayment
	return a, nil
}

// SubmitPayment performs the token check, validates the instrument, and
// forwards the payment to the authority. The attempt holds SUBMITTING for
// the duration of the call so a double click cannot pay twice.
func (o *Orchestrator) SubmitPayment(ctx context.Context, userID, attemptID, cookieToken string, inst payment.Instrument, submittedToken string) (*Attempt, error) {
	a, err := o.attempts.Get(ctx, attemptID)
	if err != nil {
		return nil, err
	}
	if a.UserID != userID {
		return nil, ErrAttemptNotFound
	}
	if a.Status != StatusAwaitingPayment {
		if a.Status == StatusSubmitting {
			return nil, ErrSubmissionInFlight
		}
		return nil, ErrIllegalTransition
	}
	if a.Shipping == nil {
		return nil, &ValidationError{Fields: map[string]string{"shipping": "Shipping information is required"}}
	}

	if !csrf.Verify(submittedToken, cookieToken) || !csrf.Verify(submittedToken, a.Token) {
		authErr := &AuthorizationError{Reason: "invalid request token"}
		if err := o.attempts.RecordFailure(ctx, attemptID, authErr.Reason, true); err != nil {
			o.logger.Printf("record token failure for attempt %s: %v", attemptID, err)
		}
		return nil, authErr
	}

	if fields := payment.ValidateInstrument(&inst); fields != nil {
		return nil, &ValidationError{Fields: fields}
	}

	c, err := o.carts.Load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if c == nil || c.IsEmpty() {
		return nil, ErrEmptyCart
	}

	if err := o.attempts.MarkSubmitting(ctx, attemptID); err != nil {
		return nil, err
	}

	req := payment.Request{
		Instrument:  inst,
		Items:       c.Lines,
		TotalAmount: c.Total(),
		Customer: payment.CustomerInfo{
			Name:    a.Shipping.Name,
			Email:   a.Shipping.Email,
			Phone:   a.Shipping.Phone,
			Address: a.Shipping.Address,
			City:    a.Shipping.City,
			State:   a.Shipping.State,
			ZipCode: a.Shipping.ZipCode,
		},
		Token: submittedToken,
	}

	res, err := o.gateway.Submit(ctx, req)
	if err != nil {
		message := err.Error()
		var gwErr *payment.GatewayError
		if errors.As(err, &gwErr) {
			message = gwErr.Message
		}
		if recErr := o.attempts.RecordFailure(ctx, attemptID, message, false); recErr != nil {
			o.logger.Printf("record payment failure for attempt %s: %v", attemptID, recErr)
		}
		a.Status = StatusAwaitingPayment
		a.LastError = message
		return a, err
	}

	if err := o.attempts.MarkConfirmed(ctx, attemptID, res.OrderID); err != nil {
		return nil, err
	}
	a.Status = StatusConfirmed
	a.OrderID = res.OrderID
	a.LastError = ""

	// Cleared only after confirmation is durable, so a crash between the
	// two leaves the cart intact rather than silently dropped.
	if err := o.carts.Clear(ctx, userID); err != nil {
		o.logger.Printf("clear cart for user %s after order %s: %v", userID, res.OrderID, err)
	}

	o.publishConfirmed(ctx, a, c)
	return a, nil
}

func (o *Orchestrator) publishConfirmed(ctx context.Context, a *Attempt, c *cart.Cart) {
	if o.events == nil {
		return
	}
	lines := make([]events.LineEvent, 0, len(c.Lines))
	for _, l := range c.Lines {
		lines = append(lines, events.LineEvent{
			ItemID:    l.ItemID,
			Title:     l.Title,
			UnitPrice: l.UnitPrice,
			Quantity:  l.Quantity,
		})
	}
	ev := events.OrderConfirmed{
		OrderID:     a.OrderID,
		AttemptID:   a.ID,
		UserID:      a.UserID,
		Items:       lines,
		TotalAmount: c.Total(),
	}
	if err := o.events.PublishOrderConfirmed(ctx, a.ID, ev); err != nil {
		o.logger.Printf("publish order confirmed for order %s: %v", a.OrderID, err)
	}
}
