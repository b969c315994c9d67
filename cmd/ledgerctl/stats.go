package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/subcommands"

	"storeledger/backend/internal/domain"
	"storeledger/backend/internal/stats"
)

type statsCmd struct {
	file   string
	period string
	person string
	now    string
	tz     string

	out io.Writer
}

func (*statsCmd) Name() string     { return "stats" }
func (*statsCmd) Synopsis() string { return "compute store statistics from a JSON transaction dump" }
func (*statsCmd) Usage() string {
	return `ledgerctl stats -file <txs.json> [-period monthly] [-person individual] [-now <RFC3339|YYYY-MM-DD>] [-tz UTC]

  Reads a JSON array of transactions and prints the period comparison,
  consumption tax and income tax as JSON.
`
}

func (c *statsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.file, "file", "", "Path to a JSON array of transactions")
	f.StringVar(&c.period, "period", "monthly", "Period (daily, weekly, monthly, annual)")
	f.StringVar(&c.person, "person", "individual", "Taxpayer type (individual, corporate)")
	f.StringVar(&c.now, "now", "", "Reference time (defaults to the current time)")
	f.StringVar(&c.tz, "tz", "UTC", "Time zone the windows are computed in")
}

func (c *statsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	period, ok := domain.ParsePeriod(c.period)
	if !ok {
		fmt.Fprintf(os.Stderr, "Error: unknown period %q\n", c.period)
		return subcommands.ExitUsageError
	}
	loc, err := time.LoadLocation(c.tz)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	now, err := parseNow(c.now, loc)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	if c.file == "" {
		fmt.Fprintln(os.Stderr, "Error: -file is required")
		return subcommands.ExitUsageError
	}

	txs, err := readTransactions(c.file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	result := stats.Compute(stats.Input{
		Period:       period,
		PersonType:   domain.ParsePersonType(c.person),
		Now:          now,
		Transactions: txs,
	})
	if err := writeIndented(c.output(), result); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

func (c *statsCmd) output() io.Writer {
	if c.out == nil {
		return os.Stdout
	}
	return c.out
}

func parseNow(raw string, loc *time.Location) (time.Time, error) {
	if raw == "" {
		return time.Now().In(loc), nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.In(loc), nil
	}
	t, err := time.ParseInLocation("2006-01-02", raw, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("-now must be RFC 3339 or YYYY-MM-DD: %w", err)
	}
	return t, nil
}

func readTransactions(path string) ([]domain.Transaction, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var txs []domain.Transaction
	if err := json.Unmarshal(raw, &txs); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return txs, nil
}

func writeIndented(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
