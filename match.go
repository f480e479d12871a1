package capgains

// MatchOptions controls the computation of gains.
type MatchOptions struct {
	// IndexationCutoff defaults to DefaultIndexationCutoff.
	IndexationCutoff Date
	// ReportingStart drops the gains of sells dated before it. Zero keeps every gain.
	ReportingStart Date
	// AsOf bounds the corporate actions applied at the end of the history.
	// Zero applies them all.
	AsOf Date
}

// Result is the outcome of the matching of a scrip.
type Result struct {
	// Matched is false when at least one sell could not be fully matched.
	Matched  bool
	Failures []MatchFailure
}

// CalculateGains matches sells against buy lots, first in first out, and
// records the realized gains in s.Gains.
//
// A buy of the same day as the sell is preferred over the oldest lot. Sell
// quantities left without buy are matched against the IPO allotment if any, or
// reported as failures.
//
// Matching consumes the lots: it happens once, later calls return the first result.
func (s *Scrip) CalculateGains(opts MatchOptions) Result {
	if s.result != nil {
		return *s.result
	}
	if s.Actions != nil {
		for _, lot := range s.Actions.drainBonuses(opts.AsOf, s.Balance, s.Currency) {
			s.buys = append(s.buys, lot)
			s.Balance = s.Balance.Add(lot.Quantity)
		}
	}

	ix := IndexRule{Cutoff: opts.IndexationCutoff, Price: s.Index}
	res := Result{Matched: true}
	cursor := 0
	for _, sell := range s.sells {
		for sell.Quantity.IsPositive() {
			i := cursor
			if j, ok := s.sameDay[sell.Date]; ok && !s.buys[j].Price.IsZero() {
				i = j
			}
			if i >= len(s.buys) {
				break
			}
			lot := s.buys[i]
			if lot.Exhausted() {
				s.retire(i)
				if i == cursor {
					cursor++
				}
				continue
			}
			if lot.Date.After(sell.Date) {
				break
			}
			if s.Actions != nil {
				s.Balance = s.Balance.Add(s.Actions.applySplits(lot, sell.Date))
				if lot.Exhausted() {
					continue
				}
			}

			q := sell.Quantity.Min(lot.Quantity)
			lot.Quantity = lot.Quantity.Sub(q)
			sell.Quantity = sell.Quantity.Sub(q)
			if lot.Exhausted() {
				s.retire(i)
			}
			s.record(NewGain(q, lot.Date, lot.Price, sell.Date, sell.Price, ix), opts.ReportingStart)
		}

		if !sell.Quantity.IsPositive() {
			continue
		}
		if s.Actions == nil || s.Actions.IPO == nil {
			res.Matched = false
			res.Failures = append(res.Failures, MatchFailure{Code: s.Code, Name: s.Name, Sell: *sell, Unmatched: sell.Quantity})
			continue
		}
		ipo := s.Actions.IPO
		g := NewGain(sell.Quantity, ipo.Date, s.Actions.ipoPrice(sell.Date), sell.Date, sell.Price, ix)
		g.Description = "IPO"
		s.Balance = s.Balance.Add(sell.Quantity)
		sell.Quantity = Quantity{}
		s.record(g, opts.ReportingStart)
	}

	if s.Actions != nil {
		for _, lot := range s.buys {
			if lot.Quantity.IsZero() {
				continue
			}
			s.Balance = s.Balance.Add(s.Actions.applySplits(lot, opts.AsOf))
		}
	}
	s.result = &res
	return res
}

// retire removes an exhausted lot from the same day index.
func (s *Scrip) retire(i int) {
	d := s.buys[i].Date
	if j, ok := s.sameDay[d]; ok && j == i {
		delete(s.sameDay, d)
	}
}

// record keeps the gain, unless it was realized before start.
func (s *Scrip) record(g Gain, start Date) {
	if !start.IsZero() && g.SellDate.Before(start) {
		s.Dropped = append(s.Dropped, g)
		return
	}
	s.Gains = append(s.Gains, g)
}
