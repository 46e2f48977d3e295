package model

// ErrorResponse is the error body every handler and middleware returns.
// Fields holds per-field validation messages when present.
type ErrorResponse struct {
	Error         string            `json:"error"`
	Fields        map[string]string `json:"fields,omitempty"`
	Redirect      string            `json:"redirect,omitempty"`
	CorrelationID string            `json:"correlationId,omitempty"`
}
