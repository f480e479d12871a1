// Package store persists gains reports in a SQLite database.
package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/etnz/capgains"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS scrips (
	scrip_key TEXT PRIMARY KEY,
	code TEXT,
	name TEXT,
	balance TEXT NOT NULL,
	matched BOOLEAN NOT NULL,
	dropped INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS gains (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	scrip_key TEXT NOT NULL,
	qty TEXT NOT NULL,
	buy_date TEXT NOT NULL,
	buy_price TEXT NOT NULL,
	sell_date TEXT NOT NULL,
	sell_price TEXT NOT NULL,
	currency TEXT NOT NULL,
	term TEXT NOT NULL,
	pl TEXT NOT NULL,
	ix_cost TEXT,
	lt_indexed TEXT,
	description TEXT,
	FOREIGN KEY(scrip_key) REFERENCES scrips(scrip_key)
);

CREATE TABLE IF NOT EXISTS unmatched (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	scrip_key TEXT NOT NULL,
	side TEXT NOT NULL,
	date TEXT NOT NULL,
	qty TEXT NOT NULL,
	price TEXT NOT NULL,
	FOREIGN KEY(scrip_key) REFERENCES scrips(scrip_key)
);

CREATE TABLE IF NOT EXISTS failures (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	scrip_key TEXT NOT NULL,
	sell_date TEXT NOT NULL,
	unmatched TEXT NOT NULL,
	message TEXT NOT NULL,
	FOREIGN KEY(scrip_key) REFERENCES scrips(scrip_key)
);
`

// Store is a SQLite database of gains reports.
type Store struct {
	db *sql.DB
}

// Open opens, or creates, the database at path and ensures its tables.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database at %s: %w", path, err)
	}
	// a single connection keeps ":memory:" databases alive.
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error { return s.db.Close() }

// SaveReport replaces the content of the database with the report, in a single transaction.
func (s *Store) SaveReport(ctx context.Context, r *capgains.Report) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	for _, table := range []string{"failures", "unmatched", "gains", "scrips"} {
		if _, err = tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("could not clear %s: %w", table, err)
		}
	}

	for _, sr := range r.Scrips {
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO scrips (scrip_key, code, name, balance, matched, dropped) VALUES (?, ?, ?, ?, ?, ?)`,
			sr.Key, sr.Code, sr.Name, sr.Balance.String(), sr.Matched, sr.Dropped); err != nil {
			return fmt.Errorf("could not save scrip %s: %w", sr.Key, err)
		}
		for _, g := range sr.Gains {
			if _, err = tx.ExecContext(ctx,
				`INSERT INTO gains (scrip_key, qty, buy_date, buy_price, sell_date, sell_price, currency, term, pl, ix_cost, lt_indexed, description)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				sr.Key, g.Quantity.String(), g.BuyDate.String(), g.BuyPrice.Decimal().String(),
				g.SellDate.String(), g.SellPrice.Decimal().String(), g.SellPrice.Currency(),
				g.Term().String(), g.PL().Decimal().String(),
				nullMoney(g.IndexedCostBasis), nullMoney(g.LongTermIndexed), g.Description); err != nil {
				return fmt.Errorf("could not save gain of %s: %w", sr.Key, err)
			}
		}
		for _, p := range sr.Unmatched {
			if _, err = tx.ExecContext(ctx,
				`INSERT INTO unmatched (scrip_key, side, date, qty, price) VALUES (?, ?, ?, ?, ?)`,
				sr.Key, p.Side.String(), p.Date.String(), p.Quantity.String(), p.Price.Decimal().String()); err != nil {
				return fmt.Errorf("could not save position of %s: %w", sr.Key, err)
			}
		}
		for _, f := range sr.Failures {
			if _, err = tx.ExecContext(ctx,
				`INSERT INTO failures (scrip_key, sell_date, unmatched, message) VALUES (?, ?, ?, ?)`,
				sr.Key, f.Sell.Date.String(), f.Unmatched.String(), f.Error()); err != nil {
				return fmt.Errorf("could not save failure of %s: %w", sr.Key, err)
			}
		}
	}
	return tx.Commit()
}

func nullMoney(m *capgains.Money) sql.NullString {
	if m == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: m.Decimal().String(), Valid: true}
}

// Scrip is a scrip as saved.
type Scrip struct {
	Key, Code, Name string
	Balance         capgains.Quantity
	Matched         bool
	Dropped         int
}

// Scrips returns the scrips saved, sorted by key.
func (s *Store) Scrips(ctx context.Context) ([]Scrip, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT scrip_key, code, name, balance, matched, dropped FROM scrips ORDER BY scrip_key`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []Scrip
	for rows.Next() {
		var sc Scrip
		var balance string
		if err := rows.Scan(&sc.Key, &sc.Code, &sc.Name, &balance, &sc.Matched, &sc.Dropped); err != nil {
			return nil, err
		}
		if sc.Balance, err = capgains.ParseQuantity(balance); err != nil {
			return nil, fmt.Errorf("scrip %s: %w", sc.Key, err)
		}
		res = append(res, sc)
	}
	return res, rows.Err()
}

// Gains returns the gains saved for a scrip, in the order they were realized.
func (s *Store) Gains(ctx context.Context, key string) ([]capgains.Gain, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT qty, buy_date, buy_price, sell_date, sell_price, currency, term, pl, ix_cost, lt_indexed, description
		FROM gains WHERE scrip_key = ? ORDER BY id`, key)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []capgains.Gain
	for rows.Next() {
		var r gainRow
		if err := rows.Scan(&r.qty, &r.buyDate, &r.buyPrice, &r.sellDate, &r.sellPrice, &r.currency, &r.term, &r.pl, &r.ixCost, &r.ltIndexed, &r.description); err != nil {
			return nil, err
		}
		g, err := r.gain()
		if err != nil {
			return nil, fmt.Errorf("gain of %s: %w", key, err)
		}
		res = append(res, g)
	}
	return res, rows.Err()
}

type gainRow struct {
	qty, buyDate, buyPrice, sellDate, sellPrice, currency, term, pl string
	ixCost, ltIndexed, description                                 sql.NullString
}

func (r gainRow) gain() (g capgains.Gain, err error) {
	if g.Quantity, err = capgains.ParseQuantity(r.qty); err != nil {
		return g, err
	}
	if g.BuyDate, err = capgains.ParseDate(r.buyDate); err != nil {
		return g, err
	}
	if g.SellDate, err = capgains.ParseDate(r.sellDate); err != nil {
		return g, err
	}
	if g.BuyPrice, err = capgains.ParseMoney(r.buyPrice, r.currency); err != nil {
		return g, err
	}
	if g.SellPrice, err = capgains.ParseMoney(r.sellPrice, r.currency); err != nil {
		return g, err
	}
	g.BuyValue = g.BuyPrice.Mul(g.Quantity)
	g.SellValue = g.SellPrice.Mul(g.Quantity)
	pl, err := capgains.ParseMoney(r.pl, r.currency)
	if err != nil {
		return g, err
	}
	switch r.term {
	case capgains.Intraday.String():
		g.Intraday = &pl
	case capgains.ShortTerm.String():
		g.ShortTerm = &pl
	default:
		g.LongTerm = &pl
	}
	if g.IndexedCostBasis, err = parseNull(r.ixCost, r.currency); err != nil {
		return g, err
	}
	if g.LongTermIndexed, err = parseNull(r.ltIndexed, r.currency); err != nil {
		return g, err
	}
	g.Description = r.description.String
	return g, nil
}

func parseNull(s sql.NullString, currency string) (*capgains.Money, error) {
	if !s.Valid {
		return nil, nil
	}
	m, err := capgains.ParseMoney(s.String, currency)
	if err != nil {
		return nil, err
	}
	return &m, nil
}
