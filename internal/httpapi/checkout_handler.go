package httpapi

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cloudshelf/storefront/internal/checkout"
	"github.com/cloudshelf/storefront/internal/csrf"
	"github.com/cloudshelf/storefront/internal/middleware"
	"github.com/cloudshelf/storefront/internal/model"
	"github.com/cloudshelf/storefront/internal/payment"
)

type CheckoutHandler struct {
	orchestrator *checkout.Orchestrator
	logger       *log.Logger
}

func NewCheckoutHandler(orchestrator *checkout.Orchestrator, logger *log.Logger) *CheckoutHandler {
	return &CheckoutHandler{orchestrator: orchestrator, logger: logger}
}

// Begin opens a checkout attempt and hands the anti-forgery token to the
// browser as a cookie. The same token must come back in the payment body.
func (h *CheckoutHandler) Begin(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	a, err := h.orchestrator.Begin(r.Context(), userID)
	if err != nil {
		if errors.Is(err, checkout.ErrEmptyCart) {
			writeJSON(w, http.StatusBadRequest, model.ErrorResponse{
				Error:         "cart is empty",
				Redirect:      "/cart",
				CorrelationID: middleware.GetCorrelationID(r.Context()),
			})
			return
		}
		h.logger.Printf("begin checkout for %s: %v", userID, err)
		writeError(w, r, http.StatusInternalServerError, "failed to start checkout")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     csrf.CookieName,
		Value:    a.Token,
		Path:     "/",
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	})
	writeJSON(w, http.StatusCreated, a)
}

func (h *CheckoutHandler) SubmitShipping(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	attemptID := chi.URLParam(r, "attemptId")

	var s checkout.ShippingInfo
	if err := json.NewDecoder(r.Body).Decode(&s); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json")
		return
	}

	a, err := h.orchestrator.SubmitShipping(r.Context(), userID, attemptID, s)
	if err != nil {
		h.writeCheckoutError(w, r, attemptID, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

type paymentRequest struct {
	payment.Instrument
	AntiForgeryToken string `json:"antiForgeryToken"`
}

func (h *CheckoutHandler) SubmitPayment(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	attemptID := chi.URLParam(r, "attemptId")

	var req paymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json")
		return
	}

	var cookieToken string
	if c, err := r.Cookie(csrf.CookieName); err == nil {
		cookieToken = c.Value
	}

	a, err := h.orchestrator.SubmitPayment(r.Context(), userID, attemptID, cookieToken, req.Instrument, req.AntiForgeryToken)
	if err != nil {
		h.writeCheckoutError(w, r, attemptID, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"orderId": a.OrderID,
		"status":  a.Status,
	})
}

// writeCheckoutError maps orchestrator errors onto transport status codes.
// Authority failures keep the authority's own status and message.
func (h *CheckoutHandler) writeCheckoutError(w http.ResponseWriter, r *http.Request, attemptID string, err error) {
	var (
		vErr    *checkout.ValidationError
		authErr *checkout.AuthorizationError
		gwErr   *payment.GatewayError
	)
	switch {
	case errors.As(err, &vErr):
		writeFieldErrors(w, r, "validation failed", vErr.Fields)
	case errors.As(err, &authErr):
		writeError(w, r, http.StatusForbidden, authErr.Reason)
	case errors.As(err, &gwErr):
		status := gwErr.Status
		if status == 0 {
			// No status at all means we never reached the authority
			status = http.StatusBadGateway
		}
		writeError(w, r, status, gwErr.Message)
	case errors.Is(err, checkout.ErrAttemptNotFound):
		writeError(w, r, http.StatusNotFound, "checkout attempt not found")
	case errors.Is(err, checkout.ErrSubmissionInFlight):
		writeError(w, r, http.StatusConflict, "payment already in progress")
	case errors.Is(err, checkout.ErrIllegalTransition):
		writeError(w, r, http.StatusConflict, "checkout attempt is not in a state that allows this")
	case errors.Is(err, checkout.ErrEmptyCart):
		writeError(w, r, http.StatusBadRequest, "cart is empty")
	default:
		h.logger.Printf("checkout attempt %s: %v", attemptID, err)
		writeError(w, r, http.StatusInternalServerError, "checkout failed")
	}
}
