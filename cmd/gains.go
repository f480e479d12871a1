package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/etnz/capgains"
	"github.com/etnz/capgains/logger"
	"github.com/etnz/capgains/renderer"
	"github.com/google/subcommands"
)

var formats = []string{"csv", "jsonl", "md", "html"}

// gainsCmd holds the flags for the 'gains' subcommand.
type gainsCmd struct {
	reportFlags
	output string
	format string
}

func (*gainsCmd) Name() string     { return "gains" }
func (*gainsCmd) Synopsis() string { return "compute the realized capital gains" }
func (*gainsCmd) Usage() string {
	return `cgt gains [-format csv|jsonl|md|html] [-o <file>] [-from <date>] [-asof <date>]

  Matches the sells against the buys, first in first out, and reports the
  gains by holding term. The csv format is written to the configured gains
  file, the other formats to the standard output, unless -o is set.
  Sells that could not be matched are written to the error log.
`
}

func (c *gainsCmd) SetFlags(f *flag.FlagSet) {
	c.reportFlags.SetFlags(f)
	f.StringVar(&c.output, "o", "", "Output file, '-' for the standard output")
	f.StringVar(&c.format, "format", "csv", "Output format (csv, jsonl, md, html)")
}

func (c *gainsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, report, err := c.calculate(ctx)
	if err != nil {
		return failure(err)
	}

	if cfg.ErrorLog != "" {
		if err := recordFailures(cfg.ErrorLog, report.Failures()); err != nil {
			return failure(err)
		}
	}

	output := c.output
	if output == "" && c.format == "csv" {
		output = cfg.Gains
	}
	if output == "" && c.format == "md" {
		printMarkdown(renderer.GainsMarkdown(report))
		return subcommands.ExitSuccess
	}

	var write func(io.Writer) error
	switch c.format {
	case "csv":
		write = func(w io.Writer) error { return capgains.EncodeGains(w, report, cfg.CSVFormat()) }
	case "jsonl":
		write = func(w io.Writer) error { return capgains.EncodeReport(w, report) }
	case "md":
		write = func(w io.Writer) error {
			_, err := io.WriteString(w, renderer.GainsMarkdown(report))
			return err
		}
	case "html":
		write = func(w io.Writer) error {
			html, err := renderer.HTML(renderer.GainsMarkdown(report))
			if err != nil {
				return err
			}
			_, err = io.WriteString(w, html)
			return err
		}
	default:
		return failure(&usageError{fmt.Errorf("unknown format %q, want one of %v", c.format, formats)})
	}
	if err := writeFile(output, os.Stdout, write); err != nil {
		return failure(fmt.Errorf("could not write gains: %w", err))
	}
	if output != "" && output != "-" {
		logger.Get().Infow("gains written", "file", output, "scrips", len(report.Scrips), "matched", report.Matched())
	}
	return subcommands.ExitSuccess
}

// recordFailures writes one entry per failure to the error log at name.
func recordFailures(name string, failures []capgains.MatchFailure) error {
	l, err := logger.NewErrorLog(name)
	if err != nil {
		return err
	}
	for _, f := range failures {
		l.Record(f)
	}
	return l.Close()
}
