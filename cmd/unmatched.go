package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/etnz/capgains"
	"github.com/etnz/capgains/renderer"
	"github.com/google/subcommands"
)

type unmatchedCmd struct {
	reportFlags
	output string
	format string
}

func (*unmatchedCmd) Name() string     { return "unmatched" }
func (*unmatchedCmd) Synopsis() string { return "list the positions left unmatched" }
func (*unmatchedCmd) Usage() string {
	return `cgt unmatched [-format csv|md] [-o <file>] [-from <date>] [-asof <date>]

  Lists the buys still held, and the sells that could not be matched, after
  matching. The csv format is written to the configured unmatched file.
`
}

func (c *unmatchedCmd) SetFlags(f *flag.FlagSet) {
	c.reportFlags.SetFlags(f)
	f.StringVar(&c.output, "o", "", "Output file, '-' for the standard output")
	f.StringVar(&c.format, "format", "md", "Output format (csv, md)")
}

func (c *unmatchedCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, report, err := c.calculate(ctx)
	if err != nil {
		return failure(err)
	}
	switch c.format {
	case "md":
		md := renderer.UnmatchedMarkdown(report) + "\n" + renderer.FailuresMarkdown(report.Failures())
		if c.output == "" {
			printMarkdown(md)
			return subcommands.ExitSuccess
		}
		err = writeFile(c.output, os.Stdout, func(w io.Writer) error {
			_, err := io.WriteString(w, md)
			return err
		})
	case "csv":
		output := c.output
		if output == "" {
			output = cfg.Unmatched
		}
		err = writeFile(output, os.Stdout, func(w io.Writer) error {
			return capgains.EncodeUnmatched(w, report, cfg.CSVFormat())
		})
	default:
		return failure(&usageError{fmt.Errorf("unknown format %q, want csv or md", c.format)})
	}
	if err != nil {
		return failure(fmt.Errorf("could not write unmatched positions: %w", err))
	}
	return subcommands.ExitSuccess
}
