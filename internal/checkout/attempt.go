package checkout

import (
	"time"

	"github.com/cloudshelf/storefront/internal/sanitize"
)

// ShippingInfo is the shopper-entered delivery data. All fields are
// required, after sanitization, before payment can proceed.
type ShippingInfo struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	City    string `json:"city"`
	State   string `json:"state"`
	ZipCode string `json:"zipCode"`
}

// Sanitize strips markup from every field; email additionally gets
// lowercased and length-capped.
func (s ShippingInfo) Sanitize() ShippingInfo {
	return ShippingInfo{
		Name:    sanitize.Text(s.Name),
		Email:   sanitize.Email(s.Email),
		Phone:   sanitize.Text(s.Phone),
		Address: sanitize.Text(s.Address),
		City:    sanitize.Text(s.City),
		State:   sanitize.Text(s.State),
		ZipCode: sanitize.Text(s.ZipCode),
	}
}

// MissingFields returns a field error for every empty required field.
func (s ShippingInfo) MissingFields() map[string]string {
	required := []struct{ name, value string }{
		{"name", s.Name},
		{"email", s.Email},
		{"phone", s.Phone},
		{"address", s.Address},
		{"city", s.City},
		{"state", s.State},
		{"zipCode", s.ZipCode},
	}
	var errs map[string]string
	for _, f := range required {
		if f.value == "" {
			if errs == nil {
				errs = make(map[string]string)
			}
			errs[f.name] = f.name + " is required"
		}
	}
	return errs
}

// Attempt is one checkout attempt: a single shopper driving the cart
// through shipping, payment, and confirmation. Exactly one anti-forgery
// token is minted per attempt, at creation.
type Attempt struct {
	ID        string        `json:"attemptId"`
	UserID    string        `json:"-"`
	Status    Status        `json:"status"`
	Token     string        `json:"-"`
	Shipping  *ShippingInfo `json:"shipping,omitempty"`
	OrderID   string        `json:"orderId,omitempty"`
	LastError string        `json:"lastError,omitempty"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
}
