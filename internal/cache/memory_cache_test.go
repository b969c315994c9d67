package cache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"storeledger/backend/internal/domain"
)

func TestMemoryCacheExpiresEntries(t *testing.T) {
	c := NewMemoryStatisticsCache()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }
	ctx := context.Background()

	if err := c.Set(ctx, "k", &domain.Statistics{StoreID: 7}, time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, ok, _ := c.Get(ctx, "k")
	if !ok || got.StoreID != 7 {
		t.Fatalf("expected cached entry, got %+v ok=%v", got, ok)
	}

	now = now.Add(2 * time.Minute)
	if _, ok, _ := c.Get(ctx, "k"); ok {
		t.Fatalf("expected entry to expire")
	}
}

func TestMemoryCacheBumpIsPerStore(t *testing.T) {
	c := NewMemoryStatisticsCache()
	ctx := context.Background()

	_ = c.Bump(ctx, 1)
	_ = c.Bump(ctx, 1)
	if gen, _ := c.Generation(ctx, 1); gen != 2 {
		t.Fatalf("expected generation 2, got %d", gen)
	}
	if gen, _ := c.Generation(ctx, 2); gen != 0 {
		t.Fatalf("expected untouched store at 0, got %d", gen)
	}
}

func TestNoopCacheNeverHits(t *testing.T) {
	var c StatisticsCache = NoopStatisticsCache{}
	ctx := context.Background()
	_ = c.Set(ctx, "k", &domain.Statistics{}, time.Minute)
	if _, ok, err := c.Get(ctx, "k"); ok || err != nil {
		t.Fatalf("expected miss, got ok=%v err=%v", ok, err)
	}
}

func TestMemoryCacheDropsStaleGenerations(t *testing.T) {
	c := NewMemoryStatisticsCache()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }
	ctx := context.Background()

	for i := 0; i < 1000; i++ {
		gen, _ := c.Generation(ctx, 1)
		key := fmt.Sprintf("storeledger:stats:1:%d:monthly", gen)
		if err := c.Set(ctx, key, &domain.Statistics{StoreID: 1}, time.Minute); err != nil {
			t.Fatalf("set: %v", err)
		}
		_ = c.Bump(ctx, 1)
	}

	now = now.Add(time.Hour)
	if err := c.Set(ctx, "fresh", &domain.Statistics{StoreID: 1}, time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	if got := len(c.entries); got != 1 {
		t.Fatalf("expected only the fresh entry to remain, got %d", got)
	}
}
