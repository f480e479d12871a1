package capgains

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/PaesslerAG/gval"
	"github.com/PaesslerAG/jsonpath"
)

// queryLanguage is JSONPath with the full gval operators, so that filters can
// compare values.
var queryLanguage = gval.Full(jsonpath.PlaceholderExtension())

// Document returns the report as generic JSON values: an object with the
// options, the totals and the list of scrips, as written by EncodeReport.
func (r *Report) Document() (map[string]any, error) {
	var buf bytes.Buffer
	if err := EncodeReport(&buf, r); err != nil {
		return nil, err
	}
	dec := json.NewDecoder(&buf)
	dec.UseNumber()
	scrips := []any{}
	for dec.More() {
		var s map[string]any
		if err := dec.Decode(&s); err != nil {
			return nil, fmt.Errorf("could not decode report: %w", err)
		}
		scrips = append(scrips, s)
	}

	totals := r.Totals()
	doc := map[string]any{
		"currency": r.Currency,
		"matched":  r.Matched(),
		"scrips":   scrips,
		"totals": map[string]any{
			"intraday":        totals.Intraday.InexactFloat64(),
			"shortTerm":       totals.ShortTerm.InexactFloat64(),
			"longTerm":        totals.LongTerm.InexactFloat64(),
			"longTermIndexed": totals.LongTermIndexed.InexactFloat64(),
		},
	}
	if d := r.Options.ReportingStart; !d.IsZero() {
		doc["from"] = d.String()
	}
	if d := r.Options.AsOf; !d.IsZero() {
		doc["asOf"] = d.String()
	}
	return doc, nil
}

// Query evaluates a JSONPath expression against the report document, for
// instance "$.scrips[?(@.balance < 0)].key" or "$.totals.longTerm".
func (r *Report) Query(path string) (any, error) {
	doc, err := r.Document()
	if err != nil {
		return nil, err
	}
	v, err := queryLanguage.Evaluate(path, normalize(doc))
	if err != nil {
		return nil, fmt.Errorf("could not evaluate %q: %w", path, err)
	}
	return v, nil
}

// normalize converts json.Number into float64 so that filters can compare numbers.
func normalize(v any) any {
	switch v := v.(type) {
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return v.String()
		}
		return f
	case map[string]any:
		for k, e := range v {
			v[k] = normalize(e)
		}
		return v
	case []any:
		for i, e := range v {
			v[i] = normalize(e)
		}
		return v
	default:
		return v
	}
}

// Filter returns a report restricted to the given keys, in the report order.
// Unknown keys are ignored.
func (r *Report) Filter(keys ...string) *Report {
	want := make(map[string]bool, len(keys))
	for _, k := range keys {
		want[k] = true
	}
	res := &Report{Options: r.Options, Currency: r.Currency}
	for _, s := range r.Scrips {
		if want[s.Key] {
			res.Scrips = append(res.Scrips, s)
		}
	}
	return res
}
