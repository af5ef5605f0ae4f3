package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Dish is a menu entry as the server renders it.
// Name and Price are for display only; mutations only ever carry the ID.
type Dish struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

// OrderLine is one dish entry within an in-progress table order.
// The client copy is transient and possibly stale: the next rendered page wins.
type OrderLine struct {
	ID       string `json:"id"`
	Quantity int    `json:"quantity"`
	Dish     Dish   `json:"dish"`
}

func (l OrderLine) Total() decimal.Decimal {
	return l.Dish.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Order is the in-progress order of a single table.
type Order struct {
	ID          string      `json:"id"`
	TableNumber int         `json:"table_number"`
	CreatedAt   time.Time   `json:"created_at"`
	Completed   bool        `json:"completed"`
	Lines       []OrderLine `json:"lines"`
}

// Total is a display value; the server computes the real one.
func (o Order) Total() decimal.Decimal {
	sum := decimal.Zero
	for _, l := range o.Lines {
		sum = sum.Add(l.Total())
	}
	return sum
}

// CSRFToken is the per-page anti-forgery value. It must be copied verbatim
// into every mutation sent for the page it was read from.
type CSRFToken string

func (t CSRFToken) Empty() bool { return t == "" }
