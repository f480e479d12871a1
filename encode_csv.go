package capgains

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// CSVFormat describes the csv files read and written.
type CSVFormat struct {
	Comma    rune   // field separator, ',' if zero.
	Currency string // currency of the prices read, DefaultCurrency if empty.
}

func (f CSVFormat) comma() rune {
	if f.Comma == 0 {
		return ','
	}
	return f.Comma
}

func (f CSVFormat) currency() string {
	if f.Currency == "" {
		return DefaultCurrency
	}
	return f.Currency
}

func (f CSVFormat) newReader(r io.Reader) *csv.Reader {
	reader := csv.NewReader(r)
	reader.Comma = f.comma()
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	return reader
}

func (f CSVFormat) newWriter(w io.Writer) *csv.Writer {
	writer := csv.NewWriter(w)
	writer.Comma = f.comma()
	return writer
}

// RowError is a row that could not be decoded.
type RowError struct {
	Line int
	Err  error
}

func (e *RowError) Error() string { return fmt.Sprintf("line %d: %v", e.Line, e.Err) }
func (e *RowError) Unwrap() error { return e.Err }

// tradeColumns is the number of columns of a trade row:
// Date,Time,Scrip Code,Scrip Name,Buy Qty,Sell Qty,Price
const tradeColumns = 7

// DecodeTrades reads trade rows.
//
// The first row is a header. Rows with fewer than 7 columns are ignored. A row
// is a buy when its "Buy Qty" column is not empty, a sell otherwise. Rows that
// cannot be parsed are returned as skipped, only a read failure is an error.
func DecodeTrades(r io.Reader, f CSVFormat) (rows []TradeRow, skipped []*RowError, err error) {
	records, err := f.newReader(r).ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("could not read trades: %w", err)
	}
	for i, rec := range records {
		if i == 0 || len(rec) < tradeColumns {
			continue
		}
		row, err := decodeTrade(rec, f.currency())
		if err != nil {
			skipped = append(skipped, &RowError{Line: i + 1, Err: err})
			continue
		}
		rows = append(rows, row)
	}
	return rows, skipped, nil
}

func decodeTrade(rec []string, currency string) (TradeRow, error) {
	for i := range rec {
		rec[i] = strings.TrimSpace(rec[i])
	}
	on, err := ParseDate(rec[0])
	if err != nil {
		return TradeRow{}, err
	}
	row := TradeRow{Date: on, Time: rec[1], Code: rec[2], Name: rec[3], Action: Buy}
	qty := rec[4]
	if qty == "" {
		row.Action, qty = Sell, rec[5]
	}
	if row.Quantity, err = ParseQuantity(qty); err != nil {
		return TradeRow{}, fmt.Errorf("invalid quantity %q: %w", qty, err)
	}
	if row.Quantity.IsNegative() {
		return TradeRow{}, fmt.Errorf("negative quantity %q", qty)
	}
	if row.Price, err = ParseMoney(rec[6], currency); err != nil {
		return TradeRow{}, fmt.Errorf("invalid price %q: %w", rec[6], err)
	}
	if row.Key() == "" {
		return TradeRow{}, errors.New("missing scrip code and name")
	}
	return row, nil
}

// DecodeIndexation reads the "Scrip Code,Price" reference prices.
// The first row is a header.
func DecodeIndexation(r io.Reader, f CSVFormat) (map[string]Money, error) {
	records, err := f.newReader(r).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("could not read indexation: %w", err)
	}
	prices := make(map[string]Money)
	for i, rec := range records {
		if i == 0 || len(rec) == 0 || (len(rec) == 1 && strings.TrimSpace(rec[0]) == "") {
			continue
		}
		if len(rec) < 2 {
			return nil, &RowError{Line: i + 1, Err: errors.New("want \"Scrip Code,Price\"")}
		}
		price, err := ParseMoney(strings.TrimSpace(rec[1]), f.currency())
		if err != nil {
			return nil, &RowError{Line: i + 1, Err: fmt.Errorf("invalid price %q: %w", rec[1], err)}
		}
		prices[strings.TrimSpace(rec[0])] = price
	}
	return prices, nil
}

// DecodeCorporateActions reads corporate actions by scrip code, with columns
// "Scrip Code,Record Date,Exec Date,Action,Ratio,Price". The first row is a header.
//
//   - IPO uses Record Date as the allotment date, and Price.
//   - BONUS uses Record Date, Exec Date and Ratio.
//   - SPLIT uses Record Date as the split date, and Ratio (old to new face value).
func DecodeCorporateActions(r io.Reader, f CSVFormat) (map[string]*CorporateActions, error) {
	records, err := f.newReader(r).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("could not read corporate actions: %w", err)
	}
	actions := make(map[string]*CorporateActions)
	for i, rec := range records {
		if i == 0 || (len(rec) == 1 && strings.TrimSpace(rec[0]) == "") {
			continue
		}
		if err := decodeCorporateAction(rec, f.currency(), actions); err != nil {
			return nil, &RowError{Line: i + 1, Err: err}
		}
	}
	return actions, nil
}

func decodeCorporateAction(rec []string, currency string, actions map[string]*CorporateActions) error {
	for len(rec) < 6 {
		rec = append(rec, "")
	}
	for i := range rec {
		rec[i] = strings.TrimSpace(rec[i])
	}
	code := rec[0]
	if code == "" {
		return errors.New("missing scrip code")
	}
	kind, err := ParseActionType(rec[3])
	if err != nil {
		return err
	}
	record, err := ParseDate(rec[1])
	if err != nil {
		return fmt.Errorf("invalid record date: %w", err)
	}
	ca, ok := actions[code]
	if !ok {
		ca = NewCorporateActions()
		actions[code] = ca
	}

	switch kind {
	case ActionIPO:
		price, err := ParseMoney(rec[5], currency)
		if err != nil {
			return fmt.Errorf("invalid IPO price %q: %w", rec[5], err)
		}
		ca.SetIPO(record, price)
	case ActionBonus:
		exec, err := ParseDate(rec[2])
		if err != nil {
			return fmt.Errorf("invalid exec date: %w", err)
		}
		if exec.Before(record) {
			return fmt.Errorf("bonus exec date %s is before record date %s", exec, record)
		}
		ratio, err := ParseRatio(rec[4])
		if err != nil {
			return err
		}
		ca.AddBonus(record, exec, ratio)
	case ActionSplit:
		ratio, err := ParseRatio(rec[4])
		if err != nil {
			return err
		}
		ca.AddSplit(record, ratio)
	}
	return nil
}

var gainsHeader = []string{"Scrip Code", "Scrip Name", "Qty", "Buy Date", "Buy Value", "Ix Cost", "Sell Date", "Sell Value", "ITD P/L", "ST P/L", "LT P/L", "LT P/L (Ix)", "Description"}

// optional formats an optional amount, empty when absent.
func optional(m *Money) string {
	if m == nil {
		return ""
	}
	return m.Fixed()
}

// EncodeGains writes the gains of every scrip, each followed by a
// "Remaining Balance" row.
func EncodeGains(w io.Writer, report *Report, f CSVFormat) error {
	writer := f.newWriter(w)
	if err := writer.Write(gainsHeader); err != nil {
		return err
	}
	for _, s := range report.Scrips {
		for _, g := range s.Gains {
			err := writer.Write([]string{
				s.Code, s.Name,
				g.Quantity.String(),
				g.BuyDate.Format(ReportDateFormat),
				g.BuyValue.Fixed(),
				optional(g.IndexedCostBasis),
				g.SellDate.Format(ReportDateFormat),
				g.SellValue.Fixed(),
				optional(g.Intraday),
				optional(g.ShortTerm),
				optional(g.LongTerm),
				optional(g.LongTermIndexed),
				g.Description,
			})
			if err != nil {
				return err
			}
		}
		if err := writer.Write([]string{s.Code, s.Name, "Remaining Balance", s.Balance.String()}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// EncodeUnmatched writes the unmatched positions of every scrip.
func EncodeUnmatched(w io.Writer, report *Report, f CSVFormat) error {
	writer := f.newWriter(w)
	if err := writer.Write([]string{"Scrip Code", "Scrip Name", "Side", "Date", "Qty", "Price", "Value"}); err != nil {
		return err
	}
	for _, s := range report.Scrips {
		for _, p := range s.Unmatched {
			err := writer.Write([]string{
				s.Code, s.Name,
				p.Side.String(),
				p.Date.Format(ReportDateFormat),
				p.Quantity.String(),
				p.Price.Fixed(),
				p.Value().Fixed(),
			})
			if err != nil {
				return err
			}
		}
	}
	writer.Flush()
	return writer.Error()
}

// EncodeFailures writes one human readable entry per failure.
func EncodeFailures(w io.Writer, failures []MatchFailure) error {
	for _, f := range failures {
		if _, err := fmt.Fprintln(w, f.Error()); err != nil {
			return err
		}
	}
	return nil
}
