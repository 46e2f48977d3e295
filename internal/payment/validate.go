package payment

import (
	"regexp"
	"strconv"
	"strings"
)

// Instrument is the card data entered by the shopper. It is held only for
// the duration of the submission call and never persisted.
type Instrument struct {
	CardNumber     string `json:"cardNumber"`
	ExpiryMonth    string `json:"expiryMonth"`
	ExpiryYear     string `json:"expiryYear"`
	CVV            string `json:"cvv"`
	CardholderName string `json:"cardholderName"`
}

var (
	digitsOnly = regexp.MustCompile(`^\d+$`)
	whitespace = regexp.MustCompile(`\s+`)
	nonDigit   = regexp.MustCompile(`\D`)
)

// NormalizeExpiryMonth cleans up common shopper typos: a single digit
// above 1 gets zero-padded, "1" followed by a digit above 2 clamps to
// "12", and "00" corrects to "01". Non-digits are dropped first.
func NormalizeExpiryMonth(month string) string {
	m := nonDigit.ReplaceAllString(month, "")
	switch {
	case m == "00":
		return "01"
	case len(m) == 1 && m > "1":
		return "0" + m
	case len(m) == 2 && m[0] == '1' && m[1] > '2':
		return "12"
	}
	return m
}

// ValidateInstrument checks every field and returns a field-keyed error
// map so all violations can be shown at once. An empty map means valid.
// The instrument is normalized in place (whitespace stripped from the
// card number, expiry month corrected).
func ValidateInstrument(inst *Instrument) map[string]string {
	errs := make(map[string]string)

	inst.CardNumber = whitespace.ReplaceAllString(inst.CardNumber, "")
	if !digitsOnly.MatchString(inst.CardNumber) || len(inst.CardNumber) != 16 {
		errs["cardNumber"] = "card number must be exactly 16 digits"
	}

	inst.ExpiryMonth = NormalizeExpiryMonth(inst.ExpiryMonth)
	if m, err := strconv.Atoi(inst.ExpiryMonth); err != nil || m < 1 || m > 12 {
		errs["expiryMonth"] = "expiry month must be between 01 and 12"
	}

	if !digitsOnly.MatchString(inst.ExpiryYear) || len(inst.ExpiryYear) != 2 {
		errs["expiryYear"] = "expiry year must be exactly 2 digits"
	}

	if !digitsOnly.MatchString(inst.CVV) || len(inst.CVV) != 3 {
		errs["cvv"] = "cvv must be exactly 3 digits"
	}

	if strings.TrimSpace(inst.CardholderName) == "" {
		errs["cardholderName"] = "cardholder name is required"
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}
