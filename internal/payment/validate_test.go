package payment

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validInstrument() Instrument {
	return Instrument{
		CardNumber:     "4242 4242 4242 4242",
		ExpiryMonth:    "09",
		ExpiryYear:     "27",
		CVV:            "123",
		CardholderName: "Jane Doe",
	}
}

func TestNormalizeExpiryMonth(t *testing.T) {
	cases := []struct{ in, want string }{
		{"00", "01"},
		{"1", "1"},
		{"2", "02"},
		{"9", "09"},
		{"09", "09"},
		{"12", "12"},
		{"13", "12"},
		{"19", "12"},
		{"1a", "1"},
		{"ab", ""},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, NormalizeExpiryMonth(tc.in), "input %q", tc.in)
	}
}

func TestValidateInstrument(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		inst := validInstrument()
		errs := ValidateInstrument(&inst)
		assert.Empty(t, errs)
		assert.Equal(t, "4242424242424242", inst.CardNumber, "whitespace stripped")
	})

	t.Run("short card number with other fields valid", func(t *testing.T) {
		inst := validInstrument()
		inst.CardNumber = "1234 5678"
		errs := ValidateInstrument(&inst)
		assert.Contains(t, errs, "cardNumber")
		assert.Len(t, errs, 1)
	})

	t.Run("all violations reported together", func(t *testing.T) {
		inst := Instrument{
			CardNumber:     "abcd",
			ExpiryMonth:    "77",
			ExpiryYear:     "2027",
			CVV:            "12",
			CardholderName: "   ",
		}
		errs := ValidateInstrument(&inst)
		assert.Len(t, errs, 5)
		assert.Contains(t, errs, "cardNumber")
		assert.Contains(t, errs, "expiryMonth")
		assert.Contains(t, errs, "expiryYear")
		assert.Contains(t, errs, "cvv")
		assert.Contains(t, errs, "cardholderName")
	})

	t.Run("expiry month corrected before check", func(t *testing.T) {
		inst := validInstrument()
		inst.ExpiryMonth = "13"
		errs := ValidateInstrument(&inst)
		assert.Empty(t, errs)
		assert.Equal(t, "12", inst.ExpiryMonth)

		inst = validInstrument()
		inst.ExpiryMonth = "00"
		errs = ValidateInstrument(&inst)
		assert.Empty(t, errs)
		assert.Equal(t, "01", inst.ExpiryMonth)
	})

	t.Run("cvv length", func(t *testing.T) {
		for _, cvv := range []string{"12", "1234", "12a"} {
			inst := validInstrument()
			inst.CVV = cvv
			errs := ValidateInstrument(&inst)
			assert.Contains(t, errs, "cvv", "cvv %q", cvv)
		}
	})
}
