package capgains

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/shopspring/decimal"
)

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// MarshalJSON writes the gain with a stable field order, omitting the absent figures.
func (g Gain) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("qty", g.Quantity)
	w.Append("buyDate", g.BuyDate)
	w.Append("buyPrice", g.BuyPrice)
	w.Append("buyValue", g.BuyValue)
	w.Optional("ixCost", g.IndexedCostBasis)
	w.Append("sellDate", g.SellDate)
	w.Append("sellPrice", g.SellPrice)
	w.Append("sellValue", g.SellValue)
	w.Append("term", g.Term().String())
	w.Optional("intraday", g.Intraday)
	w.Optional("shortTerm", g.ShortTerm)
	w.Optional("longTerm", g.LongTerm)
	w.Optional("longTermIndexed", g.LongTermIndexed)
	w.Optional("description", g.Description)
	return w.MarshalJSON()
}

// MarshalJSON writes the position with its value.
func (p Position) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("side", p.Side)
	w.Append("date", p.Date)
	w.Append("qty", p.Quantity)
	w.Append("price", p.Price)
	w.Append("value", p.Value())
	return w.MarshalJSON()
}

// MarshalJSON writes the failure with its message.
func (f MatchFailure) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("sellDate", f.Sell.Date)
	w.Append("sellQty", f.Sell.OrigQuantity)
	w.Append("sellPrice", f.Sell.Price)
	w.Append("unmatched", f.Unmatched)
	w.Append("message", f.Error())
	return w.MarshalJSON()
}

// MarshalJSON writes the report of a scrip.
func (s *ScripReport) MarshalJSON() ([]byte, error) {
	totals := s.Totals()
	var w jsonObjectWriter
	w.Append("key", s.Key)
	w.Optional("code", s.Code)
	w.Optional("name", s.Name)
	w.Append("balance", s.Balance)
	w.Append("matched", s.Matched)
	w.Append("gains", nonNil(s.Gains))
	w.Optional("dropped", s.Dropped)
	w.Append("unmatched", nonNil(s.Unmatched))
	w.Optional("failures", s.Failures)
	w.Append("intraday", totals.Intraday)
	w.Append("shortTerm", totals.ShortTerm)
	w.Append("longTerm", totals.LongTerm)
	w.Append("longTermIndexed", totals.LongTermIndexed)
	return w.MarshalJSON()
}

// nonNil returns an empty slice for nil, so that it is written as [].
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// EncodeReport writes the report as JSON Lines, one scrip per line, in key order.
func EncodeReport(w io.Writer, report *Report) error {
	enc := json.NewEncoder(w)
	for _, s := range report.Scrips {
		if err := enc.Encode(s); err != nil {
			return fmt.Errorf("could not encode scrip %s: %w", s.Key, err)
		}
	}
	return nil
}
