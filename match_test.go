package capgains

import (
	"errors"
	"strings"
	"testing"
)

// trade is a compact trade description for tests.
type trade struct {
	action Action
	date   string
	qty    int
	price  float64
}

func newTestScrip(t *testing.T, ca *CorporateActions, trades ...trade) *Scrip {
	t.Helper()
	s := NewScrip("X", "X Ltd")
	s.Actions = ca
	for _, tr := range trades {
		if err := s.AddTrade(tr.action, d(tr.date), Q(tr.qty), INR(tr.price)); err != nil {
			t.Fatalf("AddTrade(%v) unexpected error: %v", tr, err)
		}
	}
	return s
}

func equalOptional(a, b *Money) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

func fmtOptional(m *Money) string {
	if m == nil {
		return "<nil>"
	}
	return m.Fixed()
}

func checkGain(t *testing.T, i int, got, want Gain) {
	t.Helper()
	if !got.Quantity.Equal(want.Quantity) {
		t.Errorf("gain #%d: Quantity got %v want %v", i, got.Quantity, want.Quantity)
	}
	if got.BuyDate != want.BuyDate || got.SellDate != want.SellDate {
		t.Errorf("gain #%d: dates got %v->%v want %v->%v", i, got.BuyDate, got.SellDate, want.BuyDate, want.SellDate)
	}
	if !got.BuyValue.Equal(want.BuyValue) {
		t.Errorf("gain #%d: BuyValue got %v want %v", i, got.BuyValue.Fixed(), want.BuyValue.Fixed())
	}
	if !got.SellValue.Equal(want.SellValue) {
		t.Errorf("gain #%d: SellValue got %v want %v", i, got.SellValue.Fixed(), want.SellValue.Fixed())
	}
	for _, f := range []struct {
		name      string
		got, want *Money
	}{
		{"IndexedCostBasis", got.IndexedCostBasis, want.IndexedCostBasis},
		{"Intraday", got.Intraday, want.Intraday},
		{"ShortTerm", got.ShortTerm, want.ShortTerm},
		{"LongTerm", got.LongTerm, want.LongTerm},
		{"LongTermIndexed", got.LongTermIndexed, want.LongTermIndexed},
	} {
		if !equalOptional(f.got, f.want) {
			t.Errorf("gain #%d: %s got %s want %s", i, f.name, fmtOptional(f.got), fmtOptional(f.want))
		}
	}
	if got.Description != want.Description {
		t.Errorf("gain #%d: Description got %q want %q", i, got.Description, want.Description)
	}
}

func checkGains(t *testing.T, got, want []Gain) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d gains want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		checkGain(t, i, got[i], want[i])
	}
}

// checkInvariants verifies that the balance is what is left unmatched, and
// that every sold share is reported once.
func checkInvariants(t *testing.T, s *Scrip) {
	t.Helper()
	var left Quantity
	for _, p := range s.Unmatched() {
		if p.Side == Buy {
			left = left.Add(p.Quantity)
		} else {
			left = left.Sub(p.Quantity)
		}
	}
	if !s.Balance.Equal(left) {
		t.Errorf("Balance got %v want %v (unmatched buys minus unmatched sells)", s.Balance, left)
	}

	var sold, reported Quantity
	for _, sell := range s.Sells() {
		sold = sold.Add(sell.OrigQuantity)
		reported = reported.Add(sell.Quantity)
	}
	for _, g := range s.Gains {
		reported = reported.Add(g.Quantity)
	}
	for _, g := range s.Dropped {
		reported = reported.Add(g.Quantity)
	}
	if !sold.Equal(reported) {
		t.Errorf("sold %v but reported %v (gains, dropped and unmatched)", sold, reported)
	}
}

func TestScrip_CalculateGains(t *testing.T) {
	ipo := func() *CorporateActions {
		ca := NewCorporateActions()
		ca.SetIPO(d("2019-01-01"), INR(5))
		return ca
	}
	bonus := func() *CorporateActions {
		ca := NewCorporateActions()
		ca.AddBonus(d("2020-02-01"), d("2020-02-10"), NewRatio(1, 1))
		return ca
	}

	tests := []struct {
		name    string
		actions *CorporateActions
		trades  []trade
		opts    MatchOptions
		want    []Gain
		balance int
		matched bool
	}{
		{
			name: "single short term",
			trades: []trade{
				{Buy, "2020-01-01", 100, 10},
				{Sell, "2020-06-01", 100, 15},
			},
			want: []Gain{
				{Quantity: Q(100), BuyDate: d("2020-01-01"), BuyValue: INR(1000), SellDate: d("2020-06-01"), SellValue: INR(1500), ShortTerm: pINR(500)},
			},
			balance: 0,
			matched: true,
		},
		{
			name:    "ipo allotment",
			actions: ipo(),
			trades: []trade{
				{Sell, "2021-01-01", 50, 20},
			},
			want: []Gain{
				{Quantity: Q(50), BuyDate: d("2019-01-01"), BuyValue: INR(250), SellDate: d("2021-01-01"), SellValue: INR(1000), LongTerm: pINR(750), Description: "IPO"},
			},
			balance: 0,
			matched: true,
		},
		{
			name:    "bonus recorded before the sell",
			actions: bonus(),
			trades: []trade{
				{Buy, "2020-01-01", 100, 10},
				{Sell, "2020-03-01", 150, 12},
			},
			want: []Gain{
				{Quantity: Q(100), BuyDate: d("2020-01-01"), BuyValue: INR(1000), SellDate: d("2020-03-01"), SellValue: INR(1200), ShortTerm: pINR(200)},
				{Quantity: Q(50), BuyDate: d("2020-02-10"), BuyValue: INR(0), SellDate: d("2020-03-01"), SellValue: INR(600), ShortTerm: pINR(600)},
			},
			balance: 50,
			matched: true,
		},
		{
			name: "fifo across lots",
			trades: []trade{
				{Buy, "2020-01-01", 100, 10},
				{Buy, "2020-02-01", 100, 20},
				{Sell, "2021-03-01", 150, 30},
			},
			want: []Gain{
				{Quantity: Q(100), BuyDate: d("2020-01-01"), BuyValue: INR(1000), SellDate: d("2021-03-01"), SellValue: INR(3000), LongTerm: pINR(2000)},
				{Quantity: Q(50), BuyDate: d("2020-02-01"), BuyValue: INR(1000), SellDate: d("2021-03-01"), SellValue: INR(1500), LongTerm: pINR(500)},
			},
			balance: 50,
			matched: true,
		},
		{
			name: "same day buy is preferred",
			trades: []trade{
				{Buy, "2020-01-01", 100, 10},
				{Buy, "2020-03-01", 50, 12},
				{Sell, "2020-03-01", 50, 13},
			},
			want: []Gain{
				{Quantity: Q(50), BuyDate: d("2020-03-01"), BuyValue: INR(600), SellDate: d("2020-03-01"), SellValue: INR(650), Intraday: pINR(50)},
			},
			balance: 100,
			matched: true,
		},
		{
			name: "same day buy exhausted falls back to the oldest lot",
			trades: []trade{
				{Buy, "2020-01-01", 100, 10},
				{Buy, "2020-03-01", 50, 12},
				{Sell, "2020-03-01", 80, 13},
			},
			want: []Gain{
				{Quantity: Q(50), BuyDate: d("2020-03-01"), BuyValue: INR(600), SellDate: d("2020-03-01"), SellValue: INR(650), Intraday: pINR(50)},
				{Quantity: Q(30), BuyDate: d("2020-01-01"), BuyValue: INR(300), SellDate: d("2020-03-01"), SellValue: INR(390), ShortTerm: pINR(90)},
			},
			balance: 70,
			matched: true,
		},
		{
			name: "sell without buy",
			trades: []trade{
				{Sell, "2020-03-01", 10, 13},
			},
			balance: -10,
			matched: false,
		},
		{
			name: "buy after the sell is not matched",
			trades: []trade{
				{Buy, "2020-01-01", 10, 10},
				{Sell, "2020-02-01", 20, 13},
				{Buy, "2020-03-01", 10, 10},
			},
			want: []Gain{
				{Quantity: Q(10), BuyDate: d("2020-01-01"), BuyValue: INR(100), SellDate: d("2020-02-01"), SellValue: INR(130), ShortTerm: pINR(30)},
			},
			balance: 0,
			matched: false,
		},
		{
			name: "reporting start",
			trades: []trade{
				{Buy, "2020-01-01", 100, 10},
				{Sell, "2020-02-01", 40, 12},
				{Sell, "2020-05-01", 60, 15},
			},
			opts: MatchOptions{ReportingStart: d("2020-04-01")},
			want: []Gain{
				{Quantity: Q(60), BuyDate: d("2020-01-01"), BuyValue: INR(600), SellDate: d("2020-05-01"), SellValue: INR(900), ShortTerm: pINR(300)},
			},
			balance: 0,
			matched: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestScrip(t, tt.actions, tt.trades...)
			res := s.CalculateGains(tt.opts)
			checkGains(t, s.Gains, tt.want)
			if !s.Balance.Equal(Q(tt.balance)) {
				t.Errorf("Balance got %v want %v", s.Balance, tt.balance)
			}
			if res.Matched != tt.matched {
				t.Errorf("Matched got %v want %v", res.Matched, tt.matched)
			}
			if !res.Matched && len(res.Failures) == 0 {
				t.Errorf("not matched but no failure reported")
			}
			checkInvariants(t, s)
		})
	}
}

func TestScrip_CalculateGains_Failure(t *testing.T) {
	s := newTestScrip(t, nil,
		trade{Buy, "2020-01-01", 10, 10},
		trade{Sell, "2020-02-01", 25, 13},
	)
	res := s.CalculateGains(MatchOptions{})
	if len(res.Failures) != 1 {
		t.Fatalf("got %d failures want 1", len(res.Failures))
	}
	f := res.Failures[0]
	if !f.Unmatched.Equal(Q(15)) {
		t.Errorf("Unmatched got %v want 15", f.Unmatched)
	}
	if f.Code != "X" || f.Name != "X Ltd" {
		t.Errorf("failure scrip got %q %q want %q %q", f.Code, f.Name, "X", "X Ltd")
	}
	msg := f.Error()
	for _, want := range []string{"X Ltd (X)", "No matching buy trades to process sell trades!", "01-Feb-2020,25,13.00"} {
		if !strings.Contains(msg, want) {
			t.Errorf("Error() = %q, want it to contain %q", msg, want)
		}
	}
}

func TestScrip_CalculateGains_Once(t *testing.T) {
	ca := NewCorporateActions()
	ca.AddSplit(d("2020-06-01"), NewRatio(10, 2))
	s := newTestScrip(t, ca,
		trade{Buy, "2020-01-01", 10, 500},
		trade{Sell, "2020-07-01", 20, 120},
	)
	first := s.CalculateGains(MatchOptions{})
	balance := s.Balance
	second := s.CalculateGains(MatchOptions{})
	if first.Matched != second.Matched || len(s.Gains) != 1 {
		t.Errorf("second CalculateGains changed the result: %v %v, %d gains", first, second, len(s.Gains))
	}
	if !s.Balance.Equal(balance) {
		t.Errorf("second CalculateGains changed the balance from %v to %v", balance, s.Balance)
	}
}

func TestScrip_Split(t *testing.T) {
	split := func() *CorporateActions {
		ca := NewCorporateActions()
		ca.AddSplit(d("2020-06-01"), NewRatio(10, 2))
		return ca
	}

	t.Run("lot split before the sell", func(t *testing.T) {
		s := newTestScrip(t, split(),
			trade{Buy, "2020-01-01", 10, 500},
			trade{Sell, "2020-07-01", 50, 120},
		)
		s.CalculateGains(MatchOptions{})
		checkGains(t, s.Gains, []Gain{
			{Quantity: Q(50), BuyDate: d("2020-01-01"), BuyValue: INR(5000), SellDate: d("2020-07-01"), SellValue: INR(6000), ShortTerm: pINR(1000)},
		})
		if !s.Balance.IsZero() {
			t.Errorf("Balance got %v want 0", s.Balance)
		}
		checkInvariants(t, s)
	})

	t.Run("sell before the split", func(t *testing.T) {
		s := newTestScrip(t, split(),
			trade{Buy, "2020-01-01", 10, 500},
			trade{Sell, "2020-03-01", 4, 550},
		)
		s.CalculateGains(MatchOptions{})
		checkGains(t, s.Gains, []Gain{
			{Quantity: Q(4), BuyDate: d("2020-01-01"), BuyValue: INR(2000), SellDate: d("2020-03-01"), SellValue: INR(2200), ShortTerm: pINR(200)},
		})
		// the 6 shares left are split at the end of the history.
		buys := s.Buys()
		if !buys[0].Quantity.Equal(Q(30)) || !buys[0].Price.Equal(INR(100)) {
			t.Errorf("lot got %v at %v want 30 at 100", buys[0].Quantity, buys[0].Price)
		}
		if !s.Balance.Equal(Q(30)) {
			t.Errorf("Balance got %v want 30", s.Balance)
		}
		checkInvariants(t, s)
	})

	t.Run("as of before the split", func(t *testing.T) {
		s := newTestScrip(t, split(), trade{Buy, "2020-01-01", 10, 500})
		s.CalculateGains(MatchOptions{AsOf: d("2020-05-01")})
		if !s.Balance.Equal(Q(10)) {
			t.Errorf("Balance got %v want 10", s.Balance)
		}
	})

	t.Run("lot bought after the split", func(t *testing.T) {
		s := newTestScrip(t, split(),
			trade{Buy, "2020-07-01", 10, 100},
			trade{Sell, "2020-08-01", 10, 110},
		)
		s.CalculateGains(MatchOptions{})
		checkGains(t, s.Gains, []Gain{
			{Quantity: Q(10), BuyDate: d("2020-07-01"), BuyValue: INR(1000), SellDate: d("2020-08-01"), SellValue: INR(1100), ShortTerm: pINR(100)},
		})
	})

	t.Run("applied once per lot", func(t *testing.T) {
		ca := split()
		lot := newTrade(d("2020-01-01"), Q(10), INR(500))
		if delta := ca.applySplits(lot, d("2020-07-01")); !delta.Equal(Q(40)) {
			t.Errorf("first applySplits delta got %v want 40", delta)
		}
		if delta := ca.applySplits(lot, Date{}); !delta.IsZero() {
			t.Errorf("second applySplits delta got %v want 0", delta)
		}
		if !lot.Quantity.Equal(Q(50)) || !lot.Price.Equal(INR(100)) {
			t.Errorf("lot got %v at %v want 50 at 100", lot.Quantity, lot.Price)
		}
	})

	t.Run("ipo price follows splits", func(t *testing.T) {
		ca := split()
		ca.SetIPO(d("2019-01-01"), INR(50))
		s := newTestScrip(t, ca, trade{Sell, "2021-01-01", 100, 20})
		s.CalculateGains(MatchOptions{})
		checkGains(t, s.Gains, []Gain{
			{Quantity: Q(100), BuyDate: d("2019-01-01"), BuyValue: INR(1000), SellDate: d("2021-01-01"), SellValue: INR(2000), LongTerm: pINR(1000), Description: "IPO"},
		})
	})
}

func TestScrip_Bonus(t *testing.T) {
	newBonus := func() *CorporateActions {
		ca := NewCorporateActions()
		ca.AddBonus(d("2020-02-01"), d("2020-02-10"), NewRatio(1, 2))
		return ca
	}

	t.Run("credited by a later buy", func(t *testing.T) {
		ca := newBonus()
		s := newTestScrip(t, ca,
			trade{Buy, "2020-01-01", 100, 10},
			trade{Buy, "2020-03-01", 10, 20},
		)
		if got := ca.Bonuses[0].State(); got != BonusApplied {
			t.Errorf("bonus state got %v want %v", got, BonusApplied)
		}
		buys := s.Buys()
		if len(buys) != 3 {
			t.Fatalf("got %d lots want 3", len(buys))
		}
		if !buys[1].IsBonus() || !buys[1].Quantity.Equal(Q(50)) || !buys[1].Price.IsZero() || buys[1].Date != d("2020-02-10") {
			t.Errorf("bonus lot got %v", buys[1])
		}
		if !s.Balance.Equal(Q(160)) {
			t.Errorf("Balance got %v want 160", s.Balance)
		}
	})

	t.Run("frozen on record date balance", func(t *testing.T) {
		ca := newBonus()
		s := newTestScrip(t, ca,
			trade{Buy, "2020-01-01", 100, 10},
			trade{Buy, "2020-02-05", 100, 20},
		)
		b := ca.Bonuses[0]
		if b.State() != BonusFrozen || !b.Quantity().Equal(Q(50)) {
			t.Errorf("bonus got %v %v want %v 50", b.State(), b.Quantity(), BonusFrozen)
		}
		s.CalculateGains(MatchOptions{})
		if b.State() != BonusApplied {
			t.Errorf("bonus state got %v want %v", b.State(), BonusApplied)
		}
		if !s.Balance.Equal(Q(250)) {
			t.Errorf("Balance got %v want 250", s.Balance)
		}
	})

	t.Run("not merged with a buy of the same day", func(t *testing.T) {
		s := newTestScrip(t, newBonus(),
			trade{Buy, "2020-01-01", 100, 10},
			trade{Buy, "2020-02-10", 10, 20},
			trade{Buy, "2020-02-10", 10, 30},
		)
		buys := s.Buys()
		if len(buys) != 3 {
			t.Fatalf("got %d lots want 3: %v", len(buys), buys)
		}
		if !buys[2].Quantity.Equal(Q(20)) || !buys[2].Price.Equal(INR(25)) {
			t.Errorf("merged lot got %v at %v want 20 at 25", buys[2].Quantity, buys[2].Price)
		}
	})

	t.Run("as of before record date", func(t *testing.T) {
		ca := newBonus()
		s := newTestScrip(t, ca, trade{Buy, "2020-01-01", 100, 10})
		s.CalculateGains(MatchOptions{AsOf: d("2020-01-15")})
		if got := ca.Bonuses[0].State(); got != BonusPending {
			t.Errorf("bonus state got %v want %v", got, BonusPending)
		}
		if !s.Balance.Equal(Q(100)) {
			t.Errorf("Balance got %v want 100", s.Balance)
		}
	})

	t.Run("executed after as of", func(t *testing.T) {
		ca := newBonus()
		s := newTestScrip(t, ca, trade{Buy, "2020-01-01", 100, 10})
		s.CalculateGains(MatchOptions{AsOf: d("2020-02-05")})
		b := ca.Bonuses[0]
		if b.State() != BonusFrozen || !b.Quantity().Equal(Q(50)) {
			t.Errorf("bonus got %v %v want %v 50", b.State(), b.Quantity(), BonusFrozen)
		}
		if len(s.Buys()) != 1 || !s.Balance.Equal(Q(100)) {
			t.Errorf("got %d lots and balance %v want 1 lot and 100", len(s.Buys()), s.Balance)
		}
	})

	t.Run("overlapping bonuses", func(t *testing.T) {
		tests := []struct {
			name   string
			trades []trade
			b1, b2 int
			state2 BonusState
		}{
			{
				name:   "buy between record and execution",
				trades: []trade{{Buy, "2020-01-01", 100, 10}, {Buy, "2020-02-10", 100, 20}, {Buy, "2020-03-10", 10, 30}},
				b1:     100, b2: 100, state2: BonusApplied,
			},
			{
				name:   "sell between record and execution",
				trades: []trade{{Buy, "2020-01-01", 100, 10}, {Sell, "2020-02-10", 10, 20}},
				b1:     100, b2: 100, state2: BonusFrozen,
			},
			{
				name:   "single buy after both executions",
				trades: []trade{{Buy, "2020-01-01", 100, 10}, {Buy, "2020-03-10", 10, 30}},
				b1:     100, b2: 100, state2: BonusApplied,
			},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				ca := NewCorporateActions()
				ca.AddBonus(d("2020-02-01"), d("2020-03-01"), NewRatio(1, 1))
				ca.AddBonus(d("2020-02-05"), d("2020-03-05"), NewRatio(1, 1))
				newTestScrip(t, ca, tt.trades...)
				b1, b2 := ca.Bonuses[0], ca.Bonuses[1]
				if !b1.Quantity().Equal(Q(tt.b1)) {
					t.Errorf("first bonus quantity got %v want %d", b1.Quantity(), tt.b1)
				}
				if !b2.Quantity().Equal(Q(tt.b2)) || b2.State() != tt.state2 {
					t.Errorf("second bonus got %v %v want %v %d", b2.State(), b2.Quantity(), tt.state2, tt.b2)
				}
			})
		}
	})

	t.Run("recorded after an earlier execution", func(t *testing.T) {
		ca := NewCorporateActions()
		ca.AddBonus(d("2020-02-01"), d("2020-02-10"), NewRatio(1, 1))
		ca.AddBonus(d("2020-02-15"), d("2020-03-05"), NewRatio(1, 1))
		s := newTestScrip(t, ca, trade{Buy, "2020-01-01", 100, 10}, trade{Buy, "2020-03-10", 10, 30})
		if q := ca.Bonuses[1].Quantity(); !q.Equal(Q(200)) {
			t.Errorf("second bonus quantity got %v want 200", q)
		}
		if !s.Balance.Equal(Q(410)) {
			t.Errorf("Balance got %v want 410", s.Balance)
		}
	})

	t.Run("drained at the end of the history", func(t *testing.T) {
		s := newTestScrip(t, newBonus(), trade{Buy, "2020-01-01", 100, 10})
		s.CalculateGains(MatchOptions{})
		if !s.Balance.Equal(Q(150)) {
			t.Errorf("Balance got %v want 150", s.Balance)
		}
		checkInvariants(t, s)
	})
}

func TestScrip_AddTrade(t *testing.T) {
	s := NewScrip("X", "")
	if err := s.AddTrade(Action("DIVIDEND"), d("2020-01-01"), Q(1), INR(1)); !errors.Is(err, ErrUnsupportedTradeAction) {
		t.Errorf("AddTrade(DIVIDEND) got error %v want %v", err, ErrUnsupportedTradeAction)
	}

	if err := s.AddTrade(Buy, d("2020-01-01"), Q(100), INR(10)); err != nil {
		t.Fatal(err)
	}
	if err := s.AddTrade(Buy, d("2020-01-01"), Q(50), INR(11)); err != nil {
		t.Fatal(err)
	}
	buys := s.Buys()
	if len(buys) != 1 {
		t.Fatalf("got %d lots want 1", len(buys))
	}
	if !buys[0].OrigQuantity.Equal(Q(150)) {
		t.Errorf("OrigQuantity got %v want 150", buys[0].OrigQuantity)
	}
	if got := buys[0].Value().Round(2); !got.Equal(INR(1550)) {
		t.Errorf("Value got %v want 1550.00", got.Fixed())
	}
	if got := buys[0].Price.Fixed(); got != "10.33" {
		t.Errorf("Price got %v want 10.33", got)
	}
	if !s.Balance.Equal(Q(150)) {
		t.Errorf("Balance got %v want 150", s.Balance)
	}
}

func TestKey(t *testing.T) {
	tests := []struct {
		code, name, want string
	}{
		{"500209", "INFY", "500209"},
		{"", "INFY", "INFY"},
		{" 500209 ", "INFY", "500209"},
		{"", "", ""},
	}
	for _, tt := range tests {
		if got := Key(tt.code, tt.name); got != tt.want {
			t.Errorf("Key(%q, %q) = %q, want %q", tt.code, tt.name, got, tt.want)
		}
	}
}
