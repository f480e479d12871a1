package capgains

import (
	"errors"
	"fmt"
)

// ErrUnsupportedTradeAction is returned when a trade is neither a buy nor a sell.
var ErrUnsupportedTradeAction = errors.New("unsupported trade action")

// MatchFailure describes a sell trade that could not be fully matched against
// buy lots, and for which no IPO allotment was recorded.
//
// A MatchFailure is not fatal: the scrip is flagged as not fully matched and
// the processing of other scrips carries on.
type MatchFailure struct {
	Code, Name string
	Sell       Trade    // snapshot of the sell trade, OrigQuantity is the traded quantity.
	Unmatched  Quantity // quantity that could not be matched.
}

// Error returns a human readable description of the failure, suitable for an error log.
func (f MatchFailure) Error() string {
	return fmt.Sprintf("%s (%s) - No matching buy trades to process sell trades!\nSell Trade: %s (unmatched %s)",
		f.Name, f.Code, f.Sell.String(), f.Unmatched)
}
