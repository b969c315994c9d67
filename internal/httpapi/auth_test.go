package httpapi

import (
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"

	"storeledger/backend/internal/domain"
)

func TestIdentityRoundTrip(t *testing.T) {
	identity := NewIdentity("test-secret-key-with-enough-bytes")

	token, err := identity.Sign(domain.Principal{UserID: "owner-1", PersonType: domain.PersonCorporate}, time.Hour)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	principal, err := identity.ParseToken(token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if principal.UserID != "owner-1" || principal.PersonType != domain.PersonCorporate {
		t.Fatalf("unexpected principal %+v", principal)
	}
}

func TestIdentityDefaultsPersonType(t *testing.T) {
	identity := NewIdentity("test-secret-key-with-enough-bytes")

	token, _ := identity.Sign(domain.Principal{UserID: "owner-1"}, time.Hour)
	principal, err := identity.ParseToken(token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if principal.PersonType != domain.PersonIndividual {
		t.Fatalf("expected individual default, got %q", principal.PersonType)
	}
}

func TestIdentityRejectsForeignAndExpiredTokens(t *testing.T) {
	identity := NewIdentity("test-secret-key-with-enough-bytes")
	other := NewIdentity("another-secret-key-entirely-000")

	foreign, _ := other.Sign(domain.Principal{UserID: "owner-1"}, time.Hour)
	if _, err := identity.ParseToken(foreign); err == nil {
		t.Fatalf("expected token signed with another secret to fail")
	}

	past := NewIdentity("test-secret-key-with-enough-bytes")
	past.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expired, _ := past.Sign(domain.Principal{UserID: "owner-1"}, time.Hour)
	if _, err := identity.ParseToken(expired); err == nil {
		t.Fatalf("expected expired token to fail")
	}
}

func TestIdentityRejectsUnsignedAndSubjectless(t *testing.T) {
	identity := NewIdentity("test-secret-key-with-enough-bytes")

	unsigned := jwtlib.NewWithClaims(jwtlib.SigningMethodNone, jwtlib.RegisteredClaims{
		Subject:   "owner-1",
		ExpiresAt: jwtlib.NewNumericDate(time.Now().Add(time.Hour)),
	})
	raw, err := unsigned.SignedString(jwtlib.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none: %v", err)
	}
	if _, err := identity.ParseToken(raw); err == nil {
		t.Fatalf("expected alg=none token to fail")
	}

	anonymous := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, jwtlib.RegisteredClaims{
		ExpiresAt: jwtlib.NewNumericDate(time.Now().Add(time.Hour)),
	})
	raw, _ = anonymous.SignedString([]byte("test-secret-key-with-enough-bytes"))
	if _, err := identity.ParseToken(raw); err == nil {
		t.Fatalf("expected token without subject to fail")
	}
}
