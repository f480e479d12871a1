// Package cmd implements the cgt command line application.
package cmd

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/glamour"
	"github.com/etnz/capgains"
	"github.com/etnz/capgains/config"
	"github.com/etnz/capgains/logger"
	"github.com/google/subcommands"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var (
	configFile     = flag.String("config", "", "Path to the YAML configuration file")
	tradesFile     = flag.String("trades", "", "Path to the trades csv file, overrides the configuration")
	actionsFile    = flag.String("actions", "", "Path to the corporate actions csv file, overrides the configuration")
	indexationFile = flag.String("indexation", "", "Path to the indexation prices csv file, overrides the configuration")
	errorsFile     = flag.String("errors", "", "Path to the error log, overrides the configuration")
	separator      = flag.String("sep", "", "Separator of the csv files, overrides the configuration")
	verbose        = flag.Bool("v", false, "Verbose logging")
)

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(c.HelpCommand(), "")
	c.Register(c.FlagsCommand(), "")

	c.Register(&gainsCmd{}, "reports")
	c.Register(&unmatchedCmd{}, "reports")
	c.Register(&queryCmd{}, "reports")
	c.Register(&exportCmd{}, "reports")

	c.Register(&assistCmd{}, "assistant")
	c.Register(&topicCmd{}, "documentation")
}

// Completion returns the shell completion of the application.
func Completion() *complete.Command {
	csv := predict.Files("*.csv")
	global := map[string]complete.Predictor{
		"config":     predict.Files("*.yaml"),
		"trades":     csv,
		"actions":    csv,
		"indexation": csv,
		"errors":     predict.Files("*"),
		"sep":        predict.Set{",", ";", "|"},
		"v":          predict.Nothing,
	}
	report := map[string]complete.Predictor{
		"from": predict.Something,
		"asof": predict.Something,
	}
	with := func(flags map[string]complete.Predictor, more map[string]complete.Predictor) map[string]complete.Predictor {
		res := make(map[string]complete.Predictor, len(flags)+len(more))
		for k, v := range flags {
			res[k] = v
		}
		for k, v := range more {
			res[k] = v
		}
		return res
	}
	return &complete.Command{
		Flags: global,
		Sub: map[string]*complete.Command{
			"gains": {Flags: with(report, map[string]complete.Predictor{
				"o":      predict.Files("*"),
				"format": predict.Set(formats),
			})},
			"unmatched": {Flags: with(report, map[string]complete.Predictor{
				"o":      predict.Files("*"),
				"format": predict.Set(formats),
			})},
			"query":  {Flags: report},
			"export": {Flags: with(report, map[string]complete.Predictor{"db": predict.Files("*.sqlite")})},
			"assist": {Flags: report},
			"topic":  {Args: predict.Set(topics())},
			"help":   {},
			"flags":  {},
		},
	}
}

// loadConfig loads the configuration file, then applies the global flags.
func loadConfig() (*config.Config, error) {
	logger.Init(*verbose)
	cfg, err := config.Load(*configFile)
	if err != nil {
		return nil, err
	}
	for _, o := range []struct {
		flag string
		dst  *string
	}{
		{*tradesFile, &cfg.Trades},
		{*actionsFile, &cfg.CorporateActions},
		{*indexationFile, &cfg.Indexation},
		{*errorsFile, &cfg.ErrorLog},
		{*separator, &cfg.Separator},
	} {
		if o.flag != "" {
			*o.dst = o.flag
		}
	}
	return cfg, cfg.Validate()
}

// loadBook decodes the trades, the corporate actions and the indexation prices of cfg.
func loadBook(cfg *config.Config) (*capgains.Book, error) {
	log := logger.Get()
	format := cfg.CSVFormat()

	f, err := os.Open(cfg.Trades)
	if err != nil {
		return nil, fmt.Errorf("could not open trades: %w", err)
	}
	defer f.Close()
	rows, skipped, err := capgains.DecodeTrades(f, format)
	if err != nil {
		return nil, fmt.Errorf("could not decode trades %q: %w", cfg.Trades, err)
	}
	for _, s := range skipped {
		log.Warnw("skipping trade", "file", cfg.Trades, "line", s.Line, "error", s.Err)
	}

	b := capgains.NewBook()
	b.Workers = cfg.Workers
	b.Currency = cfg.Currency
	if err := b.Append(rows...); err != nil {
		return nil, err
	}
	log.Debugw("trades loaded", "file", cfg.Trades, "rows", b.Len(), "scrips", len(b.Keys()))

	if cfg.CorporateActions != "" {
		actions, err := decodeFile(cfg.CorporateActions, func(r io.Reader) (map[string]*capgains.CorporateActions, error) {
			return capgains.DecodeCorporateActions(r, format)
		})
		if err != nil {
			return nil, err
		}
		b.SetCorporateActions(actions)
		log.Debugw("corporate actions loaded", "file", cfg.CorporateActions, "scrips", len(actions))
	}
	if cfg.Indexation != "" {
		prices, err := decodeFile(cfg.Indexation, func(r io.Reader) (map[string]capgains.Money, error) {
			return capgains.DecodeIndexation(r, format)
		})
		if err != nil {
			return nil, err
		}
		b.SetIndexation(prices)
		log.Debugw("indexation prices loaded", "file", cfg.Indexation, "scrips", len(prices))
	}
	return b, nil
}

func decodeFile[T any](name string, decode func(io.Reader) (T, error)) (v T, err error) {
	f, err := os.Open(name)
	if err != nil {
		return v, fmt.Errorf("could not open %q: %w", name, err)
	}
	defer f.Close()
	v, err = decode(f)
	if err != nil {
		return v, fmt.Errorf("could not decode %q: %w", name, err)
	}
	return v, nil
}

// writeFile creates name, and its directory, and writes to it.
// An empty name or "-" writes to w instead.
func writeFile(name string, w io.Writer, write func(io.Writer) error) error {
	if name == "" || name == "-" {
		return write(w)
	}
	if err := os.MkdirAll(filepath.Dir(name), 0o755); err != nil {
		return err
	}
	f, err := os.Create(name)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// printMarkdown renders md in the terminal, or prints it raw if it cannot.
func printMarkdown(md string) {
	out, err := glamour.Render(md, "auto")
	if err != nil {
		logger.Get().Debugw("could not render markdown", "error", err)
		fmt.Print(md)
		return
	}
	fmt.Print(out)
}

// failure prints err and returns the matching exit status.
func failure(err error) subcommands.ExitStatus {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	var usage *usageError
	if errors.As(err, &usage) {
		return subcommands.ExitUsageError
	}
	return subcommands.ExitFailure
}

type usageError struct{ err error }

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }
