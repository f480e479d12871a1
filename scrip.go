package capgains

import (
	"fmt"
	"strings"
)

// Key returns the identity of a scrip: its code, or its name when the code is empty.
func Key(code, name string) string {
	if code = strings.TrimSpace(code); code != "" {
		return code
	}
	return strings.TrimSpace(name)
}

// Scrip is the lot ledger of a single security.
//
// Trades must be added in chronological order. Buys and sells of the same side
// on the same day are merged into a single trade at the weighted average price.
type Scrip struct {
	Code string
	Name string

	// Balance is the signed quantity held: bought, including bonus shares,
	// split adjustments and IPO allotments, minus sold.
	Balance Quantity

	// Index is the indexation reference price, nil when the scrip has none.
	Index *Money

	// Actions are the corporate actions of the scrip, nil when it has none.
	Actions *CorporateActions

	// Currency of the zero cost bonus lots.
	Currency string

	// Gains are the realized gains, available after CalculateGains.
	Gains []Gain
	// Dropped are the gains realized before the reporting start.
	Dropped []Gain

	buys    []*Trade
	sells   []*Trade
	sameDay map[Date]int // buy lot position by date, for lots not exhausted yet.

	result *Result
}

// NewScrip returns an empty ledger.
func NewScrip(code, name string) *Scrip {
	return &Scrip{
		Code:     code,
		Name:     name,
		Currency: DefaultCurrency,
		sameDay:  make(map[Date]int),
	}
}

// Key returns the identity of the scrip.
func (s *Scrip) Key() string { return Key(s.Code, s.Name) }

// AddTrade records a trade.
//
// A buy first credits the bonus issues that are due. A sell freezes the bonus
// issues whose record date is passed, so that their quantity is computed from
// the balance on their record date.
func (s *Scrip) AddTrade(action Action, on Date, quantity Quantity, price Money) error {
	switch action {
	case Buy:
		if s.Actions != nil {
			for _, lot := range s.Actions.dueBonuses(on, s.Balance, s.Currency) {
				s.buys = append(s.buys, lot)
				s.Balance = s.Balance.Add(lot.Quantity)
			}
		}
		if n := len(s.buys); n > 0 && s.buys[n-1].Date == on && !s.buys[n-1].bonus {
			s.buys[n-1].merge(quantity, price)
		} else {
			s.buys = append(s.buys, newTrade(on, quantity, price))
			s.sameDay[on] = len(s.buys) - 1
		}
		s.Balance = s.Balance.Add(quantity)

	case Sell:
		if s.Actions != nil {
			s.Actions.freezeBonuses(on, s.Balance)
		}
		if n := len(s.sells); n > 0 && s.sells[n-1].Date == on {
			s.sells[n-1].merge(quantity, price)
		} else {
			s.sells = append(s.sells, newTrade(on, quantity, price))
		}
		s.Balance = s.Balance.Sub(quantity)

	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedTradeAction, action)
	}
	return nil
}

// Buys returns a copy of the buy lots, in chronological order.
func (s *Scrip) Buys() []Trade { return copyTrades(s.buys) }

// Sells returns a copy of the sell trades, in chronological order.
func (s *Scrip) Sells() []Trade { return copyTrades(s.sells) }

func copyTrades(trades []*Trade) []Trade {
	res := make([]Trade, 0, len(trades))
	for _, t := range trades {
		res = append(res, *t)
	}
	return res
}

// Position is a trade quantity left unmatched.
type Position struct {
	Side     Action
	Date     Date
	Quantity Quantity
	Price    Money
}

// Value returns the value of the position.
func (p Position) Value() Money { return p.Price.Mul(p.Quantity) }

// Unmatched returns the buy lots still held and the sell quantities that found
// no buy, in chronological order, buys first.
func (s *Scrip) Unmatched() []Position {
	var res []Position
	for _, t := range s.buys {
		if t.Quantity.IsPositive() {
			res = append(res, Position{Side: Buy, Date: t.Date, Quantity: t.Quantity, Price: t.Price})
		}
	}
	for _, t := range s.sells {
		if t.Quantity.IsPositive() {
			res = append(res, Position{Side: Sell, Date: t.Date, Quantity: t.Quantity, Price: t.Price})
		}
	}
	return res
}
