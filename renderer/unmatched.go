package renderer

import (
	"fmt"
	"io"
	"strings"

	"github.com/etnz/capgains"
)

// UnmatchedMarkdown renders the positions left unmatched, by scrip.
func UnmatchedMarkdown(r *capgains.Report) string {
	var b strings.Builder
	fmt.Fprint(&b, "# Unmatched Positions\n\n")

	empty := true
	for _, s := range r.Scrips {
		ConditionalBlock(&b, func(w io.Writer) bool {
			fmt.Fprintf(w, "## %s\n\n", cell(title(s.Code, s.Name)))
			fmt.Fprintln(w, "| Side | Date | Qty | Price | Value |")
			fmt.Fprintln(w, "|:---|:---|---:|---:|---:|")
			for _, p := range s.Unmatched {
				fmt.Fprintf(w, "| %s | %s | %s | %s | %s |\n",
					p.Side, p.Date.Format(capgains.ReportDateFormat), p.Quantity, p.Price.Fixed(), p.Value().Fixed())
			}
			fmt.Fprintln(w)
			if len(s.Unmatched) > 0 {
				empty = false
				return true
			}
			return false
		})
	}
	if empty {
		fmt.Fprintln(&b, "Every position is matched.")
	}
	return b.String()
}

// FailuresMarkdown renders the sells that could not be matched.
func FailuresMarkdown(failures []capgains.MatchFailure) string {
	var b strings.Builder
	fmt.Fprint(&b, "# Unmatched Sells\n\n")
	if len(failures) == 0 {
		fmt.Fprintln(&b, "None.")
		return b.String()
	}
	fmt.Fprintln(&b, "| Scrip | Sell Date | Sold | Price | Unmatched |")
	fmt.Fprintln(&b, "|:---|:---|---:|---:|---:|")
	for _, f := range failures {
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s |\n",
			cell(title(f.Code, f.Name)), f.Sell.Date.Format(capgains.ReportDateFormat), f.Sell.OrigQuantity, f.Sell.Price.Fixed(), f.Unmatched)
	}
	return b.String()
}
