package views

import (
	"github.com/appetiteclub/pos/pkg/order"
	"github.com/shopspring/decimal"
)

// Totals summarises an order for display. Prices are stored as floats on
// the wire; sums are computed in decimal so they print without drift. Due
// treats the discount as an amount and is an estimate: the backend prices
// the order.
type Totals struct {
	Subtotal string
	Discount string
	Due      string
	Items    int
}

type lineView struct {
	order.OrderItem
	UnitPrice string
	Total     string
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// amount converts a wire float. Non-finite values count as zero.
func amount(f float64) decimal.Decimal {
	if !order.Finite(f) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(f)
}

func lineTotal(item order.OrderItem) decimal.Decimal {
	return amount(item.Price).Mul(decimal.NewFromInt(int64(item.Quantity)))
}

func linesFor(items []order.OrderItem) []lineView {
	lines := make([]lineView, 0, len(items))
	for _, item := range items {
		lines = append(lines, lineView{
			OrderItem: item,
			UnitPrice: money(amount(item.Price)),
			Total:     money(lineTotal(item)),
		})
	}
	return lines
}

// totalsFor sums the lines and applies the discount. The amount due never
// drops below zero.
func totalsFor(items []order.OrderItem, discount float64) Totals {
	subtotal := decimal.Zero
	count := 0
	for _, item := range items {
		subtotal = subtotal.Add(lineTotal(item))
		count += item.Quantity
	}

	disc := amount(discount)
	due := subtotal.Sub(disc)
	if due.IsNegative() {
		due = decimal.Zero
	}

	return Totals{
		Subtotal: money(subtotal),
		Discount: money(disc),
		Due:      money(due),
		Items:    count,
	}
}
