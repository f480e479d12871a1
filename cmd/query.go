package cmd

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/etnz/capgains"
	"github.com/google/subcommands"
)

type queryCmd struct {
	reportFlags
}

func (*queryCmd) Name() string     { return "query" }
func (*queryCmd) Synopsis() string { return "evaluate a JSONPath expression against the report" }
func (*queryCmd) Usage() string {
	return `cgt query [-from <date>] [-asof <date>] <jsonpath>

  Evaluates a JSONPath expression against the report and prints the result
  as JSON, for instance:

    cgt query '$.totals.longTerm'
    cgt query '$.scrips[?(@.balance > 0)].key'
`
}

func (c *queryCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "query requires exactly one JSONPath expression")
		return subcommands.ExitUsageError
	}
	_, report, err := c.calculate(ctx)
	if err != nil {
		return failure(err)
	}
	if err := query(os.Stdout, report, f.Arg(0)); err != nil {
		return failure(err)
	}
	return subcommands.ExitSuccess
}

// query writes the indented JSON result of path against the report.
func query(w io.Writer, report *capgains.Report, path string) error {
	v, err := report.Query(path)
	if err != nil {
		return &usageError{err}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
