package checkout

import (
	"errors"
	"sort"
	"strings"
)

var (
	// ErrEmptyCart refuses checkout entry; callers redirect to the cart.
	ErrEmptyCart = errors.New("cart is empty, nothing to check out")

	ErrAttemptNotFound = errors.New("checkout attempt not found")

	// ErrSubmissionInFlight blocks a second submission while one is
	// already in SUBMITTING.
	ErrSubmissionInFlight = errors.New("payment submission already in progress")

	ErrIllegalTransition = errors.New("illegal checkout status transition")
)

// ValidationError carries every field violation at once so the caller can
// surface all of them together.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return "validation failed: " + strings.Join(keys, ", ")
}

// AuthorizationError reports an anti-forgery failure. It is terminal for
// the attempt; recovery requires a fresh checkout with a new token.
type AuthorizationError struct {
	Reason string
}

func (e *AuthorizationError) Error() string {
	return e.Reason
}
