package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/subcommands"

	"storeledger/backend/internal/config"
	"storeledger/backend/internal/domain"
	"storeledger/backend/internal/httpapi"
)

type tokenCmd struct {
	subject string
	person  string
	ttl     time.Duration
	secret  string

	out io.Writer
}

func (*tokenCmd) Name() string     { return "token" }
func (*tokenCmd) Synopsis() string { return "mint a development bearer token" }
func (*tokenCmd) Usage() string {
	return `ledgerctl token -sub <user-id> [-person individual] [-ttl 8h]

  Signs a token with AUTH_SECRET (read from the environment or .env).
`
}

func (c *tokenCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.subject, "sub", "", "User id placed in the sub claim")
	f.StringVar(&c.person, "person", "individual", "Taxpayer type claim")
	f.DurationVar(&c.ttl, "ttl", 8*time.Hour, "Token lifetime")
}

func (c *tokenCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.subject == "" {
		fmt.Fprintln(os.Stderr, "Error: -sub is required")
		return subcommands.ExitUsageError
	}
	secret := c.secret
	if secret == "" {
		secret = config.Load().AuthSecret
	}
	if secret == "" {
		fmt.Fprintln(os.Stderr, "Error: AUTH_SECRET is not set")
		return subcommands.ExitFailure
	}

	token, err := httpapi.NewIdentity(secret).Sign(domain.Principal{
		UserID:     c.subject,
		PersonType: domain.ParsePersonType(c.person),
	}, c.ttl)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	out := c.out
	if out == nil {
		out = os.Stdout
	}
	fmt.Fprintln(out, token)
	return subcommands.ExitSuccess
}
