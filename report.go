package capgains

// Report is the outcome of Book.Calculate, one entry per scrip in key order.
type Report struct {
	Options  MatchOptions
	Currency string
	Scrips   []*ScripReport
}

// ScripReport holds the gains and the unmatched positions of a scrip.
type ScripReport struct {
	Key       string
	Code      string
	Name      string
	Balance   Quantity
	Matched   bool
	Gains     []Gain
	Dropped   int // number of gains realized before the reporting start.
	Unmatched []Position
	Failures  []MatchFailure
}

func newScripReport(s *Scrip, res Result) *ScripReport {
	return &ScripReport{
		Key:       s.Key(),
		Code:      s.Code,
		Name:      s.Name,
		Balance:   s.Balance,
		Matched:   res.Matched,
		Gains:     s.Gains,
		Dropped:   len(s.Dropped),
		Unmatched: s.Unmatched(),
		Failures:  res.Failures,
	}
}

// Totals sums profits and losses by term.
type Totals struct {
	Intraday        Money
	ShortTerm       Money
	LongTerm        Money
	LongTermIndexed Money
}

func (t *Totals) add(g Gain) {
	if g.Intraday != nil {
		t.Intraday = t.Intraday.Add(*g.Intraday)
	}
	if g.ShortTerm != nil {
		t.ShortTerm = t.ShortTerm.Add(*g.ShortTerm)
	}
	if g.LongTerm != nil {
		t.LongTerm = t.LongTerm.Add(*g.LongTerm)
	}
	if g.LongTermIndexed != nil {
		t.LongTermIndexed = t.LongTermIndexed.Add(*g.LongTermIndexed)
	}
}

// Totals returns the totals of the scrip.
func (s *ScripReport) Totals() Totals {
	var t Totals
	for _, g := range s.Gains {
		t.add(g)
	}
	return t
}

// Totals returns the totals across scrips.
func (r *Report) Totals() Totals {
	var t Totals
	for _, s := range r.Scrips {
		for _, g := range s.Gains {
			t.add(g)
		}
	}
	return t
}

// Scrip returns the report of a scrip by key, or nil.
func (r *Report) Scrip(key string) *ScripReport {
	for _, s := range r.Scrips {
		if s.Key == key {
			return s
		}
	}
	return nil
}

// Failures returns every match failure, in key order.
func (r *Report) Failures() []MatchFailure {
	var res []MatchFailure
	for _, s := range r.Scrips {
		res = append(res, s.Failures...)
	}
	return res
}

// Matched reports whether every scrip was fully matched.
func (r *Report) Matched() bool {
	for _, s := range r.Scrips {
		if !s.Matched {
			return false
		}
	}
	return true
}
