package config

import (
	"testing"
	"time"
)

func TestLoadDoesNotInjectWeakAuthDefaults(t *testing.T) {
	t.Setenv("AUTH_SECRET", "")

	cfg := Load()
	if cfg.AuthSecret != "" {
		t.Fatalf("expected empty AUTH_SECRET when unset, got %q", cfg.AuthSecret)
	}
}

func TestLoadFallsBackOnInvalidValues(t *testing.T) {
	t.Setenv("STATISTICS_TTL_SECONDS", "-4")
	t.Setenv("LOCK_TTL_SECONDS", "abc")
	t.Setenv("STOCK_OVERSELL_POLICY", "whatever")
	t.Setenv("LEDGER_TIMEZONE", "Not/AZone")

	cfg := Load()
	if cfg.StatisticsTTLSeconds != 60 {
		t.Fatalf("expected statistics ttl fallback 60, got %d", cfg.StatisticsTTLSeconds)
	}
	if cfg.LockTTLSeconds != 10 {
		t.Fatalf("expected lock ttl fallback 10, got %d", cfg.LockTTLSeconds)
	}
	if cfg.StockPolicy != StockPolicyReject {
		t.Fatalf("expected reject policy, got %s", cfg.StockPolicy)
	}
	if cfg.Location() != time.UTC {
		t.Fatalf("expected UTC fallback for unknown timezone")
	}
}

func TestLoadReadsClampPolicy(t *testing.T) {
	t.Setenv("STOCK_OVERSELL_POLICY", " Clamp ")

	if got := Load().StockPolicy; got != StockPolicyClamp {
		t.Fatalf("expected clamp policy, got %s", got)
	}
}
