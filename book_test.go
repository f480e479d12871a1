package capgains

import (
	"bytes"
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func testBook(t *testing.T) *Book {
	t.Helper()
	b := NewBook()
	rows := []TradeRow{
		{Date: d("2021-01-01"), Code: "Y", Name: "Y Ltd", Action: Sell, Quantity: Q(50), Price: INR(20)},
		{Date: d("2020-01-01"), Code: "X", Name: "X Ltd", Action: Buy, Quantity: Q(100), Price: INR(10)},
		{Date: d("2020-06-01"), Code: "X", Name: "X Ltd", Action: Sell, Quantity: Q(100), Price: INR(15)},
		{Date: d("2020-01-01"), Code: "Z", Name: "Z Ltd", Action: Buy, Quantity: Q(100), Price: INR(10)},
		{Date: d("2020-03-01"), Code: "Z", Name: "Z Ltd", Action: Sell, Quantity: Q(150), Price: INR(12)},
		{Date: d("2020-03-01"), Name: "NOCODE", Action: Sell, Quantity: Q(5), Price: INR(12)},
	}
	if err := b.Append(rows...); err != nil {
		t.Fatalf("Append() unexpected error: %v", err)
	}

	y := NewCorporateActions()
	y.SetIPO(d("2019-01-01"), INR(5))
	z := NewCorporateActions()
	z.AddBonus(d("2020-02-01"), d("2020-02-10"), NewRatio(1, 1))
	b.SetCorporateActions(map[string]*CorporateActions{"Y": y, "Z": z})
	return b
}

func TestBook_Keys(t *testing.T) {
	b := testBook(t)
	want := []string{"NOCODE", "X", "Y", "Z"}
	if diff := cmp.Diff(want, b.Keys()); diff != "" {
		t.Errorf("Keys() mismatch (-want +got):\n%s", diff)
	}
}

func TestBook_Calculate(t *testing.T) {
	b := testBook(t)
	report, err := b.Calculate(context.Background(), MatchOptions{})
	if err != nil {
		t.Fatalf("Calculate() unexpected error: %v", err)
	}

	balances := make(map[string]string)
	gains := make(map[string]int)
	for _, s := range report.Scrips {
		balances[s.Key] = s.Balance.String()
		gains[s.Key] = len(s.Gains)
	}
	if diff := cmp.Diff(map[string]string{"NOCODE": "-5", "X": "0", "Y": "0", "Z": "50"}, balances); diff != "" {
		t.Errorf("balances mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(map[string]int{"NOCODE": 0, "X": 1, "Y": 1, "Z": 2}, gains); diff != "" {
		t.Errorf("gains mismatch (-want +got):\n%s", diff)
	}

	if report.Matched() {
		t.Errorf("Matched() = true, want false")
	}
	failures := report.Failures()
	if len(failures) != 1 || failures[0].Name != "NOCODE" {
		t.Errorf("Failures() = %v, want one failure for NOCODE", failures)
	}

	totals := report.Totals()
	if !totals.ShortTerm.Equal(INR(1300)) {
		t.Errorf("ShortTerm total got %v want 1300.00", totals.ShortTerm.Fixed())
	}
	if !totals.LongTerm.Equal(INR(750)) {
		t.Errorf("LongTerm total got %v want 750.00", totals.LongTerm.Fixed())
	}

	if s := b.Scrip("Z"); s == nil || len(s.Buys()) != 2 {
		t.Errorf("Scrip(Z) want a ledger with 2 lots, got %v", s)
	}
}

func TestBook_Calculate_Repeatable(t *testing.T) {
	// bonus states must not leak from one calculation to the next.
	b := testBook(t)
	encode := func(workers int) string {
		b.Workers = workers
		report, err := b.Calculate(context.Background(), MatchOptions{})
		if err != nil {
			t.Fatalf("Calculate() unexpected error: %v", err)
		}
		var buf bytes.Buffer
		if err := EncodeReport(&buf, report); err != nil {
			t.Fatalf("EncodeReport() unexpected error: %v", err)
		}
		return buf.String()
	}
	sequential := encode(1)
	if diff := cmp.Diff(sequential, encode(4)); diff != "" {
		t.Errorf("concurrent report mismatch (-sequential +concurrent):\n%s", diff)
	}
	if diff := cmp.Diff(sequential, encode(0)); diff != "" {
		t.Errorf("second report mismatch (-first +second):\n%s", diff)
	}
}

func TestBook_Calculate_Cancelled(t *testing.T) {
	b := testBook(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := b.Calculate(ctx, MatchOptions{}); err == nil {
		t.Errorf("Calculate() with a cancelled context want error, got nil")
	}
}

func TestBook_Append(t *testing.T) {
	b := NewBook()
	err := b.Append(TradeRow{Date: d("2020-01-01"), Action: Buy, Quantity: Q(1), Price: INR(1)})
	if err == nil {
		t.Errorf("Append() of a row without code and name want error, got nil")
	}
	err = b.Append(TradeRow{Date: d("2020-01-01"), Code: "X", Action: "GIFT", Quantity: Q(1), Price: INR(1)})
	if err == nil {
		t.Errorf("Append() of a GIFT row want error, got nil")
	}
	if b.Len() != 0 {
		t.Errorf("Len() = %d, want 0", b.Len())
	}
}
