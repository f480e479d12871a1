package cmd

import (
	"context"
	"flag"
	"fmt"

	"github.com/etnz/capgains/logger"
	"github.com/etnz/capgains/store"
	"github.com/google/subcommands"
)

type exportCmd struct {
	reportFlags
	db string
}

func (*exportCmd) Name() string     { return "export" }
func (*exportCmd) Synopsis() string { return "save the report into a SQLite database" }
func (*exportCmd) Usage() string {
	return `cgt export [-db <file>] [-from <date>] [-asof <date>]

  Computes the report and saves the scrips, the gains, the unmatched
  positions and the failures into a SQLite database, replacing its content.
`
}

func (c *exportCmd) SetFlags(f *flag.FlagSet) {
	c.reportFlags.SetFlags(f)
	f.StringVar(&c.db, "db", "", "SQLite database file, defaults to the configured database")
}

func (c *exportCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, report, err := c.calculate(ctx)
	if err != nil {
		return failure(err)
	}
	db := c.db
	if db == "" {
		db = cfg.Database
	}
	if db == "" {
		return failure(&usageError{fmt.Errorf("no database: set -db or the database setting")})
	}

	s, err := store.Open(ctx, db)
	if err != nil {
		return failure(err)
	}
	defer s.Close()
	if err := s.SaveReport(ctx, report); err != nil {
		return failure(err)
	}
	logger.Get().Infow("report exported", "database", db, "scrips", len(report.Scrips))
	return subcommands.ExitSuccess
}
