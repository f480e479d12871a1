package capgains

// DefaultIndexationCutoff is the grandfathering date of the indexation rule.
// Lots bought on or before it, and sold after it, can use a reference price as
// cost basis.
var DefaultIndexationCutoff = NewDate(2018, 1, 31)

// LongTermDays is the holding period, in days, from which a gain is long term.
const LongTermDays = 365

// Term is the holding period class of a gain.
type Term int

const (
	Intraday Term = iota
	ShortTerm
	LongTerm
)

func (t Term) String() string {
	switch t {
	case Intraday:
		return "intraday"
	case ShortTerm:
		return "short-term"
	case LongTerm:
		return "long-term"
	default:
		return "unknown"
	}
}

// classify returns the term of a holding period in days.
func classify(days int) Term {
	switch {
	case days <= 0:
		return Intraday
	case days < LongTermDays:
		return ShortTerm
	default:
		return LongTerm
	}
}

// IndexRule carries the indexation parameters of a scrip.
type IndexRule struct {
	Cutoff Date
	Price  *Money // reference price, nil when the scrip has none.
}

// applies reports whether a lot bought on 'buy' and sold on 'sell' is indexed.
func (ix IndexRule) applies(buy, sell Date) bool {
	if ix.Price == nil {
		return false
	}
	cutoff := ix.Cutoff
	if cutoff.IsZero() {
		cutoff = DefaultIndexationCutoff
	}
	return !buy.After(cutoff) && sell.After(cutoff)
}

// Gain is a realized gain: a quantity matched between a buy lot and a sell.
//
// Exactly one of Intraday, ShortTerm or LongTerm is set. IndexedCostBasis and
// LongTermIndexed are set when indexation applies.
type Gain struct {
	Quantity  Quantity
	BuyDate   Date
	BuyPrice  Money
	BuyValue  Money
	SellDate  Date
	SellPrice Money
	SellValue Money

	IndexedCostBasis *Money
	Intraday         *Money
	ShortTerm        *Money
	LongTerm         *Money
	LongTermIndexed  *Money

	Description string
}

// NewGain creates the gain of selling q shares bought on buyDate at buyPrice
// and sold on sellDate at sellPrice.
func NewGain(q Quantity, buyDate Date, buyPrice Money, sellDate Date, sellPrice Money, ix IndexRule) Gain {
	g := Gain{
		Quantity:  q,
		BuyDate:   buyDate,
		BuyPrice:  buyPrice,
		BuyValue:  buyPrice.Mul(q),
		SellDate:  sellDate,
		SellPrice: sellPrice,
		SellValue: sellPrice.Mul(q),
	}
	pl := g.SellValue.Sub(g.BuyValue)
	switch g.Term() {
	case Intraday:
		g.Intraday = &pl
	case ShortTerm:
		g.ShortTerm = &pl
	default:
		g.LongTerm = &pl
	}
	if ix.applies(buyDate, sellDate) {
		cost := ix.Price.Mul(q)
		g.IndexedCostBasis = &cost
		if g.LongTerm != nil {
			ipl := g.SellValue.Sub(cost)
			g.LongTermIndexed = &ipl
		}
	}
	return g
}

// HoldingDays returns the number of days between the buy and the sell.
func (g Gain) HoldingDays() int { return g.SellDate.DaysSince(g.BuyDate) }

func (g Gain) Term() Term { return classify(g.HoldingDays()) }

// PL returns the profit or loss, whatever its term.
func (g Gain) PL() Money { return g.SellValue.Sub(g.BuyValue) }
