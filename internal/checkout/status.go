package checkout

// Status is the checkout attempt state machine:
// COLLECTING_SHIPPING -> AWAITING_PAYMENT -> SUBMITTING -> CONFIRMED.
// A retryable decline moves SUBMITTING back to AWAITING_PAYMENT; FAILED is
// terminal and reached only on authorization failure.
type Status string

const (
	StatusCollectingShipping Status = "COLLECTING_SHIPPING"
	StatusAwaitingPayment    Status = "AWAITING_PAYMENT"
	StatusSubmitting         Status = "SUBMITTING"
	StatusConfirmed          Status = "CONFIRMED"
	StatusFailed             Status = "FAILED"
)

func (s Status) IsTerminal() bool {
	return s == StatusConfirmed || s == StatusFailed
}

// String representation (for logging)
func (s Status) String() string {
	return string(s)
}
