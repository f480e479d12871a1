package capgains

import "strings"

// Trade is a buy or a sell of a quantity of a scrip on a given day at a given price.
//
// Buy trades are also the lots of the FIFO matching: their Quantity is
// consumed by sells and reaches zero once the lot is exhausted.
type Trade struct {
	Date         Date
	Quantity     Quantity // remaining quantity, decremented by matching.
	OrigQuantity Quantity // traded quantity, for reporting.
	Price        Money    // price per share.

	bonus  bool // zero cost lot injected by a bonus issue, never merged.
	splits int  // number of the scrip's splits already considered for this lot.
}

func newTrade(on Date, quantity Quantity, price Money) *Trade {
	return &Trade{Date: on, Quantity: quantity, OrigQuantity: quantity, Price: price}
}

// IsBonus reports whether the lot was issued by a bonus.
func (t *Trade) IsBonus() bool { return t.bonus }

// Exhausted reports whether nothing is left to match.
func (t *Trade) Exhausted() bool { return !t.Quantity.IsPositive() }

// Value returns the value of the remaining quantity.
func (t *Trade) Value() Money { return t.Price.Mul(t.Quantity) }

// merge adds a trade of the same side, on the same day, into t.
//
// The price becomes the quantity weighted average price, computed exactly.
func (t *Trade) merge(quantity Quantity, price Money) {
	total := t.Price.Mul(t.Quantity).Add(price.Mul(quantity))
	t.Quantity = t.Quantity.Add(quantity)
	t.OrigQuantity = t.Quantity
	if !t.Quantity.IsZero() {
		t.Price = total.Div(t.Quantity)
	}
}

// String returns "date,quantity,price" using the traded quantity.
func (t Trade) String() string {
	return strings.Join([]string{t.Date.Format(ReportDateFormat), t.OrigQuantity.String(), t.Price.Fixed()}, ",")
}
