package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderLine is the outcome of settling one cart line. Err is set when the
// line contributed nothing to the bill.
type OrderLine struct {
	Product   string          `json:"product"`
	Quantity  int             `json:"quantity"`
	Amount    decimal.Decimal `json:"amount"`
	Promotion string          `json:"promotion,omitempty"`
	Err       error           `json:"-"`
}

// Failed reports whether the line was skipped.
func (l OrderLine) Failed() bool { return l.Err != nil }

// Order is a settled cart.
//
// Requested counts every unit that was in the cart, including lines that
// failed; Fulfilled counts only the units taken from stock.
type Order struct {
	ID        uuid.UUID       `json:"id"`
	Lines     []OrderLine     `json:"lines"`
	Total     decimal.Decimal `json:"total"`
	Requested int             `json:"requested"`
	Fulfilled int             `json:"fulfilled"`
	CreatedAt time.Time       `json:"created_at"`
}

// Failures returns the lines that were not fulfilled.
func (o Order) Failures() []OrderLine {
	var out []OrderLine
	for _, l := range o.Lines {
		if l.Failed() {
			out = append(out, l)
		}
	}
	return out
}
