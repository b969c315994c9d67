package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/subcommands"

	"storeledger/backend/internal/domain"
	"storeledger/backend/internal/httpapi"
)

// run parses args into cmd's flags and executes it.
func run(t *testing.T, cmd subcommands.Command, args ...string) subcommands.ExitStatus {
	t.Helper()
	fs := flag.NewFlagSet(cmd.Name(), flag.ContinueOnError)
	cmd.SetFlags(fs)
	if err := fs.Parse(args); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	return cmd.Execute(context.Background(), fs)
}

func TestTaxCommandBrackets(t *testing.T) {
	cases := map[string]string{
		"10000":  "0.00",
		"30000":  "2850.00",
		"100000": "18350.00",
	}
	for base, want := range cases {
		var out bytes.Buffer
		status := run(t, &taxCmd{out: &out}, "-base", base)
		if status != subcommands.ExitSuccess {
			t.Fatalf("tax %s exited %v", base, status)
		}
		if got := strings.TrimSpace(out.String()); got != want {
			t.Errorf("tax -base %s = %s, want %s", base, got, want)
		}
	}
}

func TestTaxCommandRejectsBadBase(t *testing.T) {
	if status := run(t, &taxCmd{out: &bytes.Buffer{}}, "-base", "lots"); status != subcommands.ExitUsageError {
		t.Fatalf("expected usage error, got %v", status)
	}
}

func TestStatsCommandReadsDump(t *testing.T) {
	dump := `[
		{"id": 1, "store_id": 1, "type": "income", "category": "sales", "income": {"customer_id": 1, "employee_id": 1}, "total_amount": "100.00", "sale_date": "2024-06-03T10:00:00Z"},
		{"id": 2, "store_id": 1, "type": "expense", "category": "rent", "expense": {"recipient": "Landlord", "deductible": true}, "total_amount": "40.00", "sale_date": "2024-06-04T10:00:00Z"}
	]`
	path := filepath.Join(t.TempDir(), "txs.json")
	if err := os.WriteFile(path, []byte(dump), 0o600); err != nil {
		t.Fatalf("write dump: %v", err)
	}

	var out bytes.Buffer
	status := run(t, &statsCmd{out: &out}, "-file", path, "-period", "monthly", "-now", "2024-06-20")
	if status != subcommands.ExitSuccess {
		t.Fatalf("stats exited %v", status)
	}

	var result domain.Statistics
	if err := json.Unmarshal(out.Bytes(), &result); err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if result.Balance.Current.Amount.StringFixed(2) != "60.00" {
		t.Fatalf("expected balance 60.00, got %s", result.Balance.Current.Amount)
	}
	if result.ConsumptionTax.StringFixed(2) != "7.00" {
		t.Fatalf("expected consumption tax 7.00, got %s", result.ConsumptionTax)
	}
}

func TestStatsCommandRequiresFile(t *testing.T) {
	if status := run(t, &statsCmd{out: &bytes.Buffer{}}); status != subcommands.ExitUsageError {
		t.Fatalf("expected usage error, got %v", status)
	}
}

func TestTokenCommandMintsVerifiableToken(t *testing.T) {
	secret := "test-secret-key-with-enough-bytes"
	var out bytes.Buffer
	if status := run(t, &tokenCmd{out: &out, secret: secret}, "-sub", "owner-1", "-person", "corporate"); status != subcommands.ExitSuccess {
		t.Fatalf("token exited %v", status)
	}

	principal, err := httpapi.NewIdentity(secret).ParseToken(strings.TrimSpace(out.String()))
	if err != nil {
		t.Fatalf("parse minted token: %v", err)
	}
	if principal.UserID != "owner-1" || principal.PersonType != domain.PersonCorporate {
		t.Fatalf("unexpected principal %+v", principal)
	}
}
