package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/google/subcommands"
	"github.com/shopspring/decimal"

	"storeledger/backend/internal/domain"
	"storeledger/backend/internal/stats"
)

type taxCmd struct {
	base   string
	person string

	out io.Writer
}

func (*taxCmd) Name() string     { return "tax" }
func (*taxCmd) Synopsis() string { return "print the progressive income tax for a tax base" }
func (*taxCmd) Usage() string {
	return `ledgerctl tax -base <amount> [-person individual]
`
}

func (c *taxCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.base, "base", "", "Annual tax base (income minus deductible expenses)")
	f.StringVar(&c.person, "person", "individual", "Taxpayer type (individual, corporate)")
}

func (c *taxCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	base, err := decimal.NewFromString(c.base)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: -base must be a decimal amount: %v\n", err)
		return subcommands.ExitUsageError
	}

	tax := stats.ProgressiveIncomeTax(base, domain.ParsePersonType(c.person))
	out := c.out
	if out == nil {
		out = os.Stdout
	}
	fmt.Fprintln(out, tax.StringFixed(2))
	return subcommands.ExitSuccess
}
