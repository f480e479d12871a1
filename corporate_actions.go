package capgains

import (
	"fmt"
	"slices"
	"strings"
)

// ActionType identifies a corporate action.
type ActionType string

const (
	ActionIPO   ActionType = "IPO"
	ActionBonus ActionType = "BONUS"
	ActionSplit ActionType = "SPLIT"
)

// ParseActionType parses "ipo", "bonus" or "split", case insensitive.
func ParseActionType(s string) (ActionType, error) {
	switch a := ActionType(strings.ToUpper(strings.TrimSpace(s))); a {
	case ActionIPO, ActionBonus, ActionSplit:
		return a, nil
	default:
		return a, fmt.Errorf("unknown corporate action %q", s)
	}
}

// IPO is the allotment of shares at the initial public offering.
//
// It is used as a lot of unlimited quantity, for sells that have no buy to be
// matched with.
type IPO struct {
	Date  Date
	Price Money
}

// BonusState is the life cycle of a bonus issue.
type BonusState int

const (
	// BonusPending is a bonus whose record date has not been passed yet.
	BonusPending BonusState = iota
	// BonusFrozen is a bonus whose quantity has been computed from the balance on its record date.
	BonusFrozen
	// BonusApplied is a bonus whose shares have been credited as a zero cost lot.
	BonusApplied
)

func (s BonusState) String() string {
	switch s {
	case BonusPending:
		return "pending"
	case BonusFrozen:
		return "frozen"
	case BonusApplied:
		return "applied"
	default:
		return "unknown"
	}
}

// Bonus is a bonus issue: holders on the record date receive Ratio additional
// shares, credited on the execution date.
type Bonus struct {
	RecordDate Date
	ExecDate   Date
	Ratio      Ratio

	state    BonusState
	quantity Quantity
}

// NewBonus creates a pending bonus.
func NewBonus(record, exec Date, ratio Ratio) *Bonus {
	return &Bonus{RecordDate: record, ExecDate: exec, Ratio: ratio}
}

// State returns where the bonus stands: pending, frozen or applied.
func (b *Bonus) State() BonusState { return b.state }

// Quantity returns the number of bonus shares, known once the bonus is frozen.
func (b *Bonus) Quantity() Quantity { return b.quantity }

// freeze computes the bonus quantity from the balance on the record date.
// It happens exactly once, later calls are no-ops.
func (b *Bonus) freeze(balance Quantity) {
	if b.state != BonusPending {
		return
	}
	b.state = BonusFrozen
	if balance.IsPositive() {
		b.quantity = balance.Scale(b.Ratio)
	}
}

// apply marks a frozen bonus as credited and returns the lot to credit.
func (b *Bonus) apply(currency string) *Trade {
	b.state = BonusApplied
	lot := newTrade(b.ExecDate, b.quantity, M(0, currency))
	lot.bonus = true
	return lot
}

// Split is a change of face value, Ratio is old face value to new face value.
//
// A "10:2" split turns 1 share at 500 into 5 shares at 100.
type Split struct {
	Date  Date
	Ratio Ratio
}

// apply rewrites the lot quantity and price.
func (s Split) apply(lot *Trade) {
	lot.Quantity = lot.Quantity.Scale(s.Ratio)
	lot.Price = lot.Price.MulRatio(s.Ratio.Inverse())
}

// CorporateActions holds the corporate actions of a single scrip.
//
// Bonus issues carry their own state, so a CorporateActions must not be shared
// between scrips.
type CorporateActions struct {
	IPO     *IPO
	Bonuses []*Bonus // sorted by record date.
	Splits  []Split  // sorted by date.

	nextBonus int // first bonus not applied yet.
}

// NewCorporateActions returns an empty set of corporate actions.
func NewCorporateActions() *CorporateActions { return &CorporateActions{} }

// SetIPO records the IPO allotment.
func (ca *CorporateActions) SetIPO(on Date, price Money) {
	ca.IPO = &IPO{Date: on, Price: price}
}

// AddBonus inserts a bonus issue, keeping bonuses sorted by record date.
func (ca *CorporateActions) AddBonus(record, exec Date, ratio Ratio) {
	ca.Bonuses = append(ca.Bonuses, NewBonus(record, exec, ratio))
	slices.SortStableFunc(ca.Bonuses, func(x, y *Bonus) int { return compareDates(x.RecordDate, y.RecordDate) })
}

// AddSplit inserts a split, keeping splits sorted by date.
func (ca *CorporateActions) AddSplit(on Date, ratio Ratio) {
	ca.Splits = append(ca.Splits, Split{Date: on, Ratio: ratio})
	slices.SortStableFunc(ca.Splits, func(x, y Split) int { return compareDates(x.Date, y.Date) })
}

// Clone returns a deep copy with every bonus pending again.
func (ca *CorporateActions) Clone() *CorporateActions {
	if ca == nil {
		return nil
	}
	c := &CorporateActions{Splits: slices.Clone(ca.Splits)}
	if ca.IPO != nil {
		ipo := *ca.IPO
		c.IPO = &ipo
	}
	for _, b := range ca.Bonuses {
		c.Bonuses = append(c.Bonuses, NewBonus(b.RecordDate, b.ExecDate, b.Ratio))
	}
	return c
}

// freezeBonuses freezes, in record date order, the pending bonuses whose
// record date is before 'on'.
func (ca *CorporateActions) freezeBonuses(on Date, balance Quantity) {
	for _, b := range ca.Bonuses[ca.nextBonus:] {
		if !b.RecordDate.Before(on) {
			return
		}
		b.freeze(balance)
	}
}

// dueBonuses runs the bonus cursor for a buy on 'on'. Bonuses due by 'on' are
// applied in record date order; before each one is credited, the pending
// bonuses recorded before its execution date are frozen, so that none sees
// a balance from after its record date. The remaining bonuses recorded before
// 'on' are frozen last. It stops applying at the first bonus not due.
func (ca *CorporateActions) dueBonuses(on Date, balance Quantity, currency string) []*Trade {
	var lots []*Trade
	for ca.nextBonus < len(ca.Bonuses) {
		b := ca.Bonuses[ca.nextBonus]
		if !b.RecordDate.Before(on) || on.Before(b.ExecDate) {
			break
		}
		ca.freezeBonuses(b.ExecDate, balance)
		b.freeze(balance)
		lot := b.apply(currency)
		lots = append(lots, lot)
		balance = balance.Add(lot.Quantity)
		ca.nextBonus++
	}
	ca.freezeBonuses(on, balance)
	return lots
}

// drainBonuses settles the bonuses at the end of the history. Bonuses recorded
// on or before asOf (every bonus if asOf is zero) are frozen with the balance,
// and applied in record date order if their execution date is on or before
// asOf too. A bonus executed after asOf stays frozen, and so do the ones after it.
func (ca *CorporateActions) drainBonuses(asOf Date, balance Quantity, currency string) []*Trade {
	known := func(d Date) bool { return asOf.IsZero() || !d.After(asOf) }
	var lots []*Trade
	for ca.nextBonus < len(ca.Bonuses) {
		b := ca.Bonuses[ca.nextBonus]
		if !known(b.RecordDate) {
			break
		}
		limit := b.ExecDate
		if !known(limit) {
			limit = asOf.Add(1)
		}
		ca.freezeBonuses(limit, balance)
		b.freeze(balance)
		if !known(b.ExecDate) {
			break
		}
		lot := b.apply(currency)
		lots = append(lots, lot)
		balance = balance.Add(lot.Quantity)
		ca.nextBonus++
	}
	if !asOf.IsZero() {
		ca.freezeBonuses(asOf.Add(1), balance)
	}
	return lots
}

// applySplits applies to the lot, in date order, the splits dated on or
// before 'until' (every split if until is zero) that it has not considered
// yet. Only splits dated after the lot date change it. It returns the change
// in quantity.
func (ca *CorporateActions) applySplits(lot *Trade, until Date) Quantity {
	before := lot.Quantity
	for lot.splits < len(ca.Splits) {
		s := ca.Splits[lot.splits]
		if !until.IsZero() && s.Date.After(until) {
			break
		}
		if lot.Date.Before(s.Date) {
			s.apply(lot)
		}
		lot.splits++
	}
	return lot.Quantity.Sub(before)
}

// ipoPrice returns the IPO price adjusted by the splits dated after the IPO
// and on or before 'until'.
func (ca *CorporateActions) ipoPrice(until Date) Money {
	price := ca.IPO.Price
	for _, s := range ca.Splits {
		if s.Date.After(until) {
			break
		}
		if ca.IPO.Date.Before(s.Date) {
			price = price.MulRatio(s.Ratio.Inverse())
		}
	}
	return price
}

// compareDates is a three way comparison of dates.
func compareDates(a, b Date) int {
	switch {
	case a.Before(b):
		return -1
	case a.After(b):
		return 1
	default:
		return 0
	}
}
