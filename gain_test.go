package capgains

import "testing"

func TestNewGain_Term(t *testing.T) {
	tests := []struct {
		buy, sell string
		want      Term
	}{
		{"2019-01-01", "2019-01-01", Intraday},
		{"2019-01-01", "2019-01-02", ShortTerm},
		{"2019-01-01", "2019-12-31", ShortTerm}, // 364 days
		{"2019-01-01", "2020-01-01", LongTerm},  // 365 days
		{"2019-12-31", "2020-12-30", LongTerm},  // 365 days across Feb 29th
		{"2019-12-31", "2020-12-29", ShortTerm},
	}
	for _, tt := range tests {
		g := NewGain(Q(10), d(tt.buy), INR(100), d(tt.sell), INR(110), IndexRule{})
		if got := g.Term(); got != tt.want {
			t.Errorf("NewGain(%s -> %s).Term() = %v, want %v", tt.buy, tt.sell, got, tt.want)
		}
		set := 0
		for _, pl := range []*Money{g.Intraday, g.ShortTerm, g.LongTerm} {
			if pl != nil {
				set++
				if !pl.Equal(INR(100)) {
					t.Errorf("NewGain(%s -> %s) P/L = %v, want 100", tt.buy, tt.sell, pl.Fixed())
				}
			}
		}
		if set != 1 {
			t.Errorf("NewGain(%s -> %s) has %d P/L figures, want 1", tt.buy, tt.sell, set)
		}
	}
}

func TestNewGain_Indexation(t *testing.T) {
	ref := INR(50)
	ix := IndexRule{Price: &ref}

	tests := []struct {
		name      string
		buy, sell string
		ix        IndexRule
		want      Gain
	}{
		{
			name: "long term across the cutoff",
			buy:  "2017-06-01", sell: "2019-06-01", ix: ix,
			want: Gain{IndexedCostBasis: pINR(500), LongTerm: pINR(600), LongTermIndexed: pINR(500)},
		},
		{
			name: "bought on the cutoff",
			buy:  "2018-01-31", sell: "2019-06-01", ix: ix,
			want: Gain{IndexedCostBasis: pINR(500), LongTerm: pINR(600), LongTermIndexed: pINR(500)},
		},
		{
			name: "short term across the cutoff",
			buy:  "2018-01-15", sell: "2018-03-01", ix: ix,
			want: Gain{IndexedCostBasis: pINR(500), ShortTerm: pINR(600)},
		},
		{
			name: "bought after the cutoff",
			buy:  "2018-02-01", sell: "2019-06-01", ix: ix,
			want: Gain{LongTerm: pINR(600)},
		},
		{
			name: "sold on the cutoff",
			buy:  "2016-01-01", sell: "2018-01-31", ix: ix,
			want: Gain{LongTerm: pINR(600)},
		},
		{
			name: "no reference price",
			buy:  "2017-06-01", sell: "2019-06-01",
			want: Gain{LongTerm: pINR(600)},
		},
		{
			name: "custom cutoff",
			buy:  "2017-06-01", sell: "2019-06-01", ix: IndexRule{Cutoff: d("2017-01-01"), Price: &ref},
			want: Gain{LongTerm: pINR(600)},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewGain(Q(10), d(tt.buy), INR(40), d(tt.sell), INR(100), tt.ix)
			want := tt.want
			want.Quantity = Q(10)
			want.BuyDate, want.SellDate = d(tt.buy), d(tt.sell)
			want.BuyValue, want.SellValue = INR(400), INR(1000)
			checkGain(t, 0, got, want)
		})
	}
}
