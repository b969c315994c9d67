package lock

import (
	"context"
	"errors"
	"testing"
	"time"

	"storeledger/backend/internal/store"
)

func TestLocalRejectsSecondHolder(t *testing.T) {
	l := NewLocal()
	l.wait, l.tries = time.Millisecond, 2
	ctx := context.Background()

	release, err := l.Acquire(ctx, TransactionKey(1))
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	if _, err := l.Acquire(ctx, TransactionKey(1)); !errors.Is(err, store.ErrConcurrentEdit) {
		t.Fatalf("expected concurrent edit, got %v", err)
	}
	if other, err := l.Acquire(ctx, TransactionKey(2)); err != nil {
		t.Fatalf("expected independent key to lock, got %v", err)
	} else {
		other()
	}

	release()
	again, err := l.Acquire(ctx, TransactionKey(1))
	if err != nil {
		t.Fatalf("expected lock after release, got %v", err)
	}
	again()
}

func TestLocalWaitsForRelease(t *testing.T) {
	l := NewLocal()
	l.wait = 5 * time.Millisecond
	ctx := context.Background()

	release, _ := l.Acquire(ctx, "k")
	go func() {
		time.Sleep(10 * time.Millisecond)
		release()
	}()
	second, err := l.Acquire(ctx, "k")
	if err != nil {
		t.Fatalf("expected lock once released, got %v", err)
	}
	second()
}

func TestTransactionKey(t *testing.T) {
	if got := TransactionKey(42); got != "storeledger:tx:42" {
		t.Fatalf("unexpected key %q", got)
	}
}
