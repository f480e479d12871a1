// Command cgt computes realized capital gains from a csv ledger of trades.
package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/etnz/capgains/cmd"
	"github.com/etnz/capgains/logger"
	"github.com/google/subcommands"
)

func main() {
	// completes the command line when invoked by the shell.
	cmd.Completion().Complete("cgt")

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	cmd.Register(commander)

	flag.Parse()
	status := commander.Execute(context.Background())
	logger.Sync()
	os.Exit(int(status))
}
