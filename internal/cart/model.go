package cart

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// Line is one selected item. UnitPrice is defensively coerced to zero on
// load when it is not numeric, mirroring the same rule applied on add.
type Line struct {
	ItemID    string          `json:"itemId"`
	Title     string          `json:"title"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Quantity  int             `json:"quantity"`
}

// UnmarshalJSON tolerates a malformed unitPrice (string garbage, null,
// negative) by treating it as zero rather than rejecting the line.
func (l *Line) UnmarshalJSON(data []byte) error {
	var aux struct {
		ItemID    string          `json:"itemId"`
		Title     string          `json:"title"`
		UnitPrice json.RawMessage `json:"unitPrice"`
		Quantity  int             `json:"quantity"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	l.ItemID = aux.ItemID
	l.Title = aux.Title
	l.Quantity = aux.Quantity
	l.UnitPrice = safePrice(aux.UnitPrice)
	return nil
}

// Cart is one shopper's cart. Lines keep insertion order and hold at most
// one entry per itemId.
type Cart struct {
	ID        string    `json:"cartId"`
	UserID    string    `json:"userId"`
	Lines     []Line    `json:"items"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func New(userID string) *Cart {
	return &Cart{UserID: userID, Lines: []Line{}}
}

// Add inserts the item with its quantity, or increments the existing
// line's quantity when the item is already present. A non-positive
// quantity counts as one.
func (c *Cart) Add(line Line) {
	if line.Quantity <= 0 {
		line.Quantity = 1
	}
	if line.UnitPrice.IsNegative() {
		line.UnitPrice = decimal.Zero
	}
	for i := range c.Lines {
		if c.Lines[i].ItemID == line.ItemID {
			c.Lines[i].Quantity += line.Quantity
			return
		}
	}
	c.Lines = append(c.Lines, line)
}

// SetQuantity overwrites a line's quantity; zero or less removes the line.
// Unknown itemIds are ignored.
func (c *Cart) SetQuantity(itemID string, quantity int) {
	if quantity <= 0 {
		c.Remove(itemID)
		return
	}
	for i := range c.Lines {
		if c.Lines[i].ItemID == itemID {
			c.Lines[i].Quantity = quantity
			return
		}
	}
}

func (c *Cart) Remove(itemID string) {
	for i := range c.Lines {
		if c.Lines[i].ItemID == itemID {
			c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
			return
		}
	}
}

func (c *Cart) ClearLines() {
	c.Lines = c.Lines[:0]
}

// Total is the sum of unitPrice x quantity over all lines.
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.Lines {
		total = total.Add(l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return total
}

// Count is the sum of quantities over all lines.
func (c *Cart) Count() int {
	n := 0
	for _, l := range c.Lines {
		n += l.Quantity
	}
	return n
}

func (c *Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

func safePrice(raw json.RawMessage) decimal.Decimal {
	if len(raw) == 0 {
		return decimal.Zero
	}
	var d decimal.Decimal
	if err := json.Unmarshal(raw, &d); err != nil || d.IsNegative() {
		return decimal.Zero
	}
	return d
}
