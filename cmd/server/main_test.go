package main

import (
	"testing"

	"storeledger/backend/internal/config"
)

func TestValidateSecurityConfigRejectsShortSecret(t *testing.T) {
	err := validateSecurityConfig(config.Config{AuthSecret: "short", Timezone: "UTC"})
	if err == nil {
		t.Fatalf("expected short secret to be rejected")
	}
}

func TestValidateSecurityConfigRejectsUnknownZone(t *testing.T) {
	err := validateSecurityConfig(config.Config{AuthSecret: "0123456789abcdef0123456789abcdef", Timezone: "Mars/Olympus"})
	if err == nil {
		t.Fatalf("expected unknown zone to be rejected")
	}
}

func TestValidateSecurityConfigAcceptsStrongValues(t *testing.T) {
	err := validateSecurityConfig(config.Config{AuthSecret: "0123456789abcdef0123456789abcdef", Timezone: "America/Panama"})
	if err != nil {
		t.Fatalf("expected valid config to pass, got %v", err)
	}
}
