package xid

import (
	"strings"
	"testing"
)

func TestNewIsPrefixedAndUnique(t *testing.T) {
	a, b := New("req"), New("req")
	if !strings.HasPrefix(a, "req-") || len(a) != len("req-")+32 {
		t.Fatalf("unexpected id %q", a)
	}
	if a == b {
		t.Fatalf("expected unique ids")
	}
}

func TestValid(t *testing.T) {
	if !Valid("req-abc_1.2") {
		t.Fatalf("expected valid id")
	}
	for _, bad := range []string{"", "has space", "new\nline", strings.Repeat("a", 129)} {
		if Valid(bad) {
			t.Fatalf("expected %q to be invalid", bad)
		}
	}
}
