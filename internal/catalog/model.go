package catalog

import "github.com/shopspring/decimal"

// Book is the normalized catalog record. Every display field is guaranteed
// non-empty after normalization so the rendering layer never sees a null.
type Book struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Author      string          `json:"author"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	ImageURL    string          `json:"imageUrl"`
	Category    string          `json:"category"`
}

const (
	defaultTitle       = "Untitled Book"
	defaultAuthor      = "Unknown Author"
	defaultDescription = "No description available."
	defaultCategory    = "Uncategorized"
)
