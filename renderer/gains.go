package renderer

import (
	"fmt"

	"github.com/etnz/capgains"
)

type totalsView struct {
	Intraday, ShortTerm, LongTerm, LongTermIndexed string
}

func newTotalsView(t capgains.Totals) totalsView {
	return totalsView{
		Intraday:        t.Intraday.SignedString(),
		ShortTerm:       t.ShortTerm.SignedString(),
		LongTerm:        t.LongTerm.SignedString(),
		LongTermIndexed: t.LongTermIndexed.SignedString(),
	}
}

type gainView struct {
	BuyDate         string
	SellDate        string
	Qty             string
	BuyValue        string
	SellValue       string
	IxCost          string
	Intraday        string
	ShortTerm       string
	LongTerm        string
	LongTermIndexed string
	Description     string
}

type scripView struct {
	Title   string
	Balance string
	Matched bool
	Dropped int
	Gains   []gainView
}

type gainsView struct {
	Options []string
	Scrips  []scripView
	Totals  totalsView
}

func optional(m *capgains.Money) string {
	if m == nil {
		return ""
	}
	return m.Fixed()
}

func title(code, name string) string {
	switch {
	case code == "":
		return name
	case name == "" || name == code:
		return code
	default:
		return fmt.Sprintf("%s (%s)", name, code)
	}
}

// GainsMarkdown renders the gains of every scrip and the totals by term.
func GainsMarkdown(r *capgains.Report) string {
	v := gainsView{Totals: newTotalsView(r.Totals())}
	if d := r.Options.ReportingStart; !d.IsZero() {
		v.Options = append(v.Options, "Sells from "+d.Format(capgains.ReportDateFormat))
	}
	if d := r.Options.AsOf; !d.IsZero() {
		v.Options = append(v.Options, "Corporate actions as of "+d.Format(capgains.ReportDateFormat))
	}
	for _, s := range r.Scrips {
		sv := scripView{
			Title:   cell(title(s.Code, s.Name)),
			Balance: s.Balance.String(),
			Matched: s.Matched,
			Dropped: s.Dropped,
		}
		for _, g := range s.Gains {
			sv.Gains = append(sv.Gains, gainView{
				BuyDate:         g.BuyDate.Format(capgains.ReportDateFormat),
				SellDate:        g.SellDate.Format(capgains.ReportDateFormat),
				Qty:             g.Quantity.String(),
				BuyValue:        g.BuyValue.Fixed(),
				SellValue:       g.SellValue.Fixed(),
				IxCost:          optional(g.IndexedCostBasis),
				Intraday:        optional(g.Intraday),
				ShortTerm:       optional(g.ShortTerm),
				LongTerm:        optional(g.LongTerm),
				LongTermIndexed: optional(g.LongTermIndexed),
				Description:     cell(g.Description),
			})
		}
		v.Scrips = append(v.Scrips, sv)
	}
	partials := map[string]string{
		"gains_options": "gains_options.md",
		"gains_scrip":   "gains_scrip.md",
	}
	return renderTemplate("gains", "gains.md", partials, v)
}
