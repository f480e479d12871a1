package cmd

import (
	"context"
	"flag"
	"fmt"

	"github.com/etnz/capgains"
	"github.com/etnz/capgains/config"
	"github.com/etnz/capgains/logger"
)

// reportFlags are the flags shared by the commands that compute a report.
type reportFlags struct {
	from string
	asOf string
}

func (r *reportFlags) SetFlags(f *flag.FlagSet) {
	f.StringVar(&r.from, "from", "", "Report the gains of the sells from this date. See the user manual for supported date formats.")
	f.StringVar(&r.asOf, "asof", "", "Apply the corporate actions known as of this date. See the user manual for supported date formats.")
}

// options returns the matching options of cfg, overridden by the flags.
func (r *reportFlags) options(cfg *config.Config) (capgains.MatchOptions, error) {
	opts, err := cfg.MatchOptions()
	if err != nil {
		return opts, err
	}
	for _, d := range []struct {
		name  string
		value string
		dst   *capgains.Date
	}{
		{"from", r.from, &opts.ReportingStart},
		{"asof", r.asOf, &opts.AsOf},
	} {
		if d.value == "" {
			continue
		}
		on, err := capgains.ParseDate(d.value)
		if err != nil {
			return opts, &usageError{fmt.Errorf("invalid -%s: %w", d.name, err)}
		}
		*d.dst = on
	}
	return opts, nil
}

// calculate loads the configuration and the book, and computes the report.
func (r *reportFlags) calculate(ctx context.Context) (*config.Config, *capgains.Report, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	opts, err := r.options(cfg)
	if err != nil {
		return nil, nil, err
	}
	book, err := loadBook(cfg)
	if err != nil {
		return nil, nil, err
	}
	report, err := book.Calculate(ctx, opts)
	if err != nil {
		return nil, nil, err
	}
	for _, f := range report.Failures() {
		logger.Get().Warnw("sell not fully matched", "scrip", f.Code, "name", f.Name, "date", f.Sell.Date, "unmatched", f.Unmatched)
	}
	return cfg, report, nil
}
