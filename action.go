package capgains

import (
	"fmt"
	"strings"
)

// Action is the side of a trade.
type Action string

const (
	Buy  Action = "BUY"
	Sell Action = "SELL"
)

func (a Action) String() string { return string(a) }

// ParseAction parses "buy" or "sell", case insensitive.
func ParseAction(s string) (Action, error) {
	switch a := Action(strings.ToUpper(strings.TrimSpace(s))); a {
	case Buy, Sell:
		return a, nil
	default:
		return a, fmt.Errorf("%w: %q", ErrUnsupportedTradeAction, s)
	}
}
