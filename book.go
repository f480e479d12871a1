package capgains

import (
	"context"
	"fmt"
	"slices"

	"golang.org/x/sync/errgroup"
)

// TradeRow is a trade as read from a trade ledger.
type TradeRow struct {
	Date     Date
	Time     string // informative only, trades of the same day are kept in input order.
	Code     string
	Name     string
	Action   Action
	Quantity Quantity
	Price    Money
}

// Key returns the identity of the scrip traded.
func (r TradeRow) Key() string { return Key(r.Code, r.Name) }

// Book is a trade ledger across scrips, with their indexation prices and
// corporate actions.
type Book struct {
	// Workers bounds the number of scrips matched concurrently. Less than 2 is sequential.
	Workers int
	// Currency of the book, DefaultCurrency if empty.
	Currency string

	rows    []TradeRow
	index   map[string]Money
	actions map[string]*CorporateActions

	scrips map[string]*Scrip // from the last Calculate.
}

// NewBook returns an empty book.
func NewBook() *Book {
	return &Book{Currency: DefaultCurrency}
}

// Append adds trades to the book. Rows are kept sorted by date, rows of the
// same date keep their relative order.
func (b *Book) Append(rows ...TradeRow) error {
	for i, r := range rows {
		if r.Key() == "" {
			return fmt.Errorf("row %d: trade on %s has neither scrip code nor name", i, r.Date)
		}
		if r.Action != Buy && r.Action != Sell {
			return fmt.Errorf("row %d: %w: %q", i, ErrUnsupportedTradeAction, r.Action)
		}
	}
	b.rows = append(b.rows, rows...)
	slices.SortStableFunc(b.rows, func(x, y TradeRow) int { return compareDates(x.Date, y.Date) })
	return nil
}

// Len returns the number of trades in the book.
func (b *Book) Len() int { return len(b.rows) }

// SetIndexation sets the indexation reference prices by scrip key.
func (b *Book) SetIndexation(prices map[string]Money) { b.index = prices }

// SetCorporateActions sets the corporate actions by scrip key.
func (b *Book) SetCorporateActions(actions map[string]*CorporateActions) { b.actions = actions }

// Keys returns the sorted keys of the scrips traded.
func (b *Book) Keys() []string {
	seen := make(map[string]bool)
	var keys []string
	for _, r := range b.rows {
		if k := r.Key(); !seen[k] {
			seen[k] = true
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)
	return keys
}

// Scrip returns the ledger of a scrip as of the last Calculate, or nil.
func (b *Book) Scrip(key string) *Scrip { return b.scrips[key] }

// Calculate builds every scrip ledger from the trades and matches them.
//
// Scrips are independent and are matched concurrently, up to Workers at a time.
// The report is identical whatever the number of workers.
func (b *Book) Calculate(ctx context.Context, opts MatchOptions) (*Report, error) {
	currency := b.Currency
	if currency == "" {
		currency = DefaultCurrency
	}
	scrips := make(map[string]*Scrip)
	for _, r := range b.rows {
		key := r.Key()
		s, exists := scrips[key]
		if !exists {
			s = NewScrip(r.Code, r.Name)
			s.Currency = currency
			if p, ok := b.index[key]; ok {
				s.Index = &p
			}
			s.Actions = b.actions[key].Clone()
			scrips[key] = s
		}
		if err := s.AddTrade(r.Action, r.Date, r.Quantity, r.Price); err != nil {
			return nil, fmt.Errorf("scrip %s: %w", key, err)
		}
	}

	keys := b.Keys()
	results := make([]Result, len(keys))
	g, ctx := errgroup.WithContext(ctx)
	workers := b.Workers
	if workers < 1 {
		workers = 1
	}
	g.SetLimit(workers)
	for i, key := range keys {
		s := scrips[key]
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = s.CalculateGains(opts)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("could not calculate gains: %w", err)
	}
	b.scrips = scrips

	report := &Report{Options: opts, Currency: currency}
	for i, key := range keys {
		report.Scrips = append(report.Scrips, newScripReport(scrips[key], results[i]))
	}
	return report, nil
}
