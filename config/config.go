// Package config loads the settings of the cgt command from a YAML file and
// CGT_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"unicode/utf8"

	"github.com/etnz/capgains"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds the files and the matching options.
type Config struct {
	Trades           string `yaml:"trades"`
	CorporateActions string `yaml:"corporate_actions"`
	Indexation       string `yaml:"indexation"`
	Gains            string `yaml:"gains"`
	Unmatched        string `yaml:"unmatched"`
	ErrorLog         string `yaml:"error_log"`
	Database         string `yaml:"database"`

	Separator string `yaml:"separator"`
	Currency  string `yaml:"currency"`

	IndexationCutoff string `yaml:"indexation_cutoff"`
	ReportingStart   string `yaml:"reporting_start"`
	AsOf             string `yaml:"as_of"`
	Workers          int    `yaml:"workers"`

	GeminiModel string `yaml:"gemini_model"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Trades:           "files/trades_data.csv",
		Gains:            "files/out/capital_gains.csv",
		Unmatched:        "files/out/unmatched.csv",
		ErrorLog:         "files/errors.log",
		Separator:        ",",
		Currency:         capgains.DefaultCurrency,
		IndexationCutoff: capgains.DefaultIndexationCutoff.String(),
		Workers:          4,
		GeminiModel:      "gemini-2.5-flash",
	}
}

// Load reads the defaults, then the YAML file at path if not empty, then the
// environment (a .env file is loaded if present), and validates the result.
func Load(path string) (*Config, error) {
	c := Default()
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("could not read config: %w", err)
		}
		if err := yaml.Unmarshal(b, c); err != nil {
			return nil, fmt.Errorf("invalid config %q: %w", path, err)
		}
	}
	// a missing .env file is not an error.
	_ = godotenv.Load()
	if err := c.applyEnv(); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) applyEnv() error {
	for name, field := range map[string]*string{
		"CGT_TRADES":            &c.Trades,
		"CGT_CORPORATE_ACTIONS": &c.CorporateActions,
		"CGT_INDEXATION":        &c.Indexation,
		"CGT_GAINS":             &c.Gains,
		"CGT_UNMATCHED":         &c.Unmatched,
		"CGT_ERROR_LOG":         &c.ErrorLog,
		"CGT_DATABASE":          &c.Database,
		"CGT_SEPARATOR":         &c.Separator,
		"CGT_CURRENCY":          &c.Currency,
		"CGT_INDEXATION_CUTOFF": &c.IndexationCutoff,
		"CGT_REPORTING_START":   &c.ReportingStart,
		"CGT_AS_OF":             &c.AsOf,
		"CGT_GEMINI_MODEL":      &c.GeminiModel,
	} {
		*field = getEnv(name, *field)
	}
	if v := os.Getenv("CGT_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid CGT_WORKERS %q: %w", v, err)
		}
		c.Workers = n
	}
	return nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// Validate checks the separator and the dates.
func (c *Config) Validate() error {
	if utf8.RuneCountInString(c.Separator) != 1 {
		return fmt.Errorf("separator must be a single character, got %q", c.Separator)
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must be positive, got %d", c.Workers)
	}
	if c.Currency == "" {
		return errors.New("currency cannot be empty")
	}
	if _, err := c.MatchOptions(); err != nil {
		return err
	}
	return nil
}

// Comma returns the separator as a rune.
func (c *Config) Comma() rune {
	r, _ := utf8.DecodeRuneInString(c.Separator)
	return r
}

// CSVFormat returns the format of the csv files.
func (c *Config) CSVFormat() capgains.CSVFormat {
	return capgains.CSVFormat{Comma: c.Comma(), Currency: c.Currency}
}

// MatchOptions parses the dates of the configuration.
func (c *Config) MatchOptions() (capgains.MatchOptions, error) {
	var opts capgains.MatchOptions
	for _, d := range []struct {
		name  string
		value string
		dst   *capgains.Date
	}{
		{"indexation_cutoff", c.IndexationCutoff, &opts.IndexationCutoff},
		{"reporting_start", c.ReportingStart, &opts.ReportingStart},
		{"as_of", c.AsOf, &opts.AsOf},
	} {
		if d.value == "" {
			continue
		}
		on, err := capgains.ParseDate(d.value)
		if err != nil {
			return opts, fmt.Errorf("invalid %s: %w", d.name, err)
		}
		*d.dst = on
	}
	return opts, nil
}
