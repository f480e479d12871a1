// Package capgains computes realized capital gains from a ledger of buy and
// sell trades.
//
// Sells are matched against buy lots first in first out, a buy of the same day
// being preferred. Each match is a Gain, classified intraday, short term or
// long term by its holding period, and carrying an indexed cost basis when the
// scrip has an indexation reference price.
//
// Corporate actions change the lots before they are matched:
//   - an IPO allotment serves the sells that have no buy to be matched with,
//   - a bonus issue credits a zero cost lot on its execution date, sized from
//     the balance held on its record date,
//   - a split rescales quantity and price of the lots bought before it.
//
// A Book groups the trades by scrip, matches every scrip independently and
// assembles a Report, which can be encoded as csv or JSON Lines.
package capgains
