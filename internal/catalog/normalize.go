package catalog

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// ShapeError reports that no parse strategy could make sense of an
// upstream payload. It is absorbed by the search fallback and only
// surfaces when every strategy, including local filtering, has failed.
type ShapeError struct {
	Detail string
}

func (e *ShapeError) Error() string {
	return "unrecognized upstream payload shape: " + e.Detail
}

// rawBook tolerates shape drift at the field level. Every field is held as
// raw JSON and coerced afterwards, so a record with a numeric id or a
// string price still parses.
type rawBook struct {
	ID          json.RawMessage `json:"id"`
	Title       json.RawMessage `json:"title"`
	Author      json.RawMessage `json:"author"`
	Description json.RawMessage `json:"description"`
	Price       json.RawMessage `json:"price"`
	ImageURL    json.RawMessage `json:"imageUrl"`
	Category    json.RawMessage `json:"category"`
}

type parseStrategy func(raw []byte) ([]Book, error)

// Normalize runs the ordered parse strategies over an upstream payload and
// returns the first success: direct array parse, envelope unwrap, then
// bracket repair.
func Normalize(raw []byte) ([]Book, error) {
	strategies := []parseStrategy{parseArray, parseEnvelope, parseBracketRepair}
	for _, try := range strategies {
		books, err := try(raw)
		if err == nil {
			return books, nil
		}
	}
	return nil, &ShapeError{Detail: snippet(raw)}
}

// NormalizeOne parses a single catalog record, unwrapping a gateway
// envelope if present. A record without an id is rejected.
func NormalizeOne(raw []byte) (Book, error) {
	var rb rawBook
	if err := json.Unmarshal(raw, &rb); err == nil {
		if b := sanitizeRecord(rb); b.ID != "" {
			return b, nil
		}
	}

	body, err := unwrapEnvelope(raw)
	if err != nil {
		return Book{}, &ShapeError{Detail: snippet(raw)}
	}
	if err := json.Unmarshal(body, &rb); err != nil {
		return Book{}, &ShapeError{Detail: snippet(body)}
	}
	b := sanitizeRecord(rb)
	if b.ID == "" {
		return Book{}, &ShapeError{Detail: "record missing id"}
	}
	return b, nil
}

// FilterLocal is the last-resort search strategy: substring match on
// title, author, or category, case-insensitive.
func FilterLocal(books []Book, query string) []Book {
	q := strings.ToLower(query)
	out := make([]Book, 0, len(books))
	for _, b := range books {
		if strings.Contains(strings.ToLower(b.Title), q) ||
			strings.Contains(strings.ToLower(b.Author), q) ||
			strings.Contains(strings.ToLower(b.Category), q) {
			out = append(out, b)
		}
	}
	return out
}

func parseArray(raw []byte) ([]Book, error) {
	var records []rawBook
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, err
	}
	books := make([]Book, 0, len(records))
	for _, rb := range records {
		books = append(books, sanitizeRecord(rb))
	}
	return books, nil
}

// parseEnvelope unwraps the gateway format {"body": "<json string>"} and
// retries the array parse on the inner document.
func parseEnvelope(raw []byte) ([]Book, error) {
	body, err := unwrapEnvelope(raw)
	if err != nil {
		return nil, err
	}
	return parseArray(body)
}

func unwrapEnvelope(raw []byte) ([]byte, error) {
	var env struct {
		Body *string `json:"body"`
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, err
	}
	if env.Body == nil {
		return nil, fmt.Errorf("payload has no string body field")
	}
	return []byte(*env.Body), nil
}

// parseBracketRepair handles payloads that arrive with anomalous nested
// bracket runs, e.g. "[[{...}]]": strip the leading/trailing brackets and
// re-wrap the remainder as a single JSON array.
func parseBracketRepair(raw []byte) ([]Book, error) {
	s := strings.TrimSpace(string(raw))
	if !strings.HasPrefix(s, "[[") {
		return nil, fmt.Errorf("payload is not bracket-repairable")
	}
	inner := strings.Trim(s, "[]")
	if inner == "" {
		return nil, fmt.Errorf("nothing left after bracket repair")
	}
	return parseArray([]byte("[" + inner + "]"))
}

func sanitizeRecord(rb rawBook) Book {
	return Book{
		ID:          coerceString(rb.ID, ""),
		Title:       coerceString(rb.Title, defaultTitle),
		Author:      coerceString(rb.Author, defaultAuthor),
		Description: coerceString(rb.Description, defaultDescription),
		Price:       coercePrice(rb.Price),
		ImageURL:    coerceString(rb.ImageURL, ""),
		Category:    coerceString(rb.Category, defaultCategory),
	}
}

// coerceString accepts a JSON string or number; anything else (or empty)
// falls back to the default.
func coerceString(raw json.RawMessage, def string) string {
	if len(raw) == 0 {
		return def
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if s == "" {
			return def
		}
		return s
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return strconv.FormatFloat(n, 'f', -1, 64)
	}
	return def
}

// coercePrice accepts a JSON number or numeric string; malformed or
// negative input becomes zero.
func coercePrice(raw json.RawMessage) decimal.Decimal {
	if len(raw) == 0 {
		return decimal.Zero
	}
	var d decimal.Decimal
	if err := json.Unmarshal(raw, &d); err != nil {
		return decimal.Zero
	}
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

func snippet(raw []byte) string {
	s := strings.TrimSpace(string(raw))
	if len(s) > 64 {
		s = s[:64] + "..."
	}
	return s
}
