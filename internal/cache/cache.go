package cache

import (
	"context"
	"time"

	"storeledger/backend/internal/domain"
)

// StatisticsCache stores computed statistics under keys that embed a
// per-store generation. Bumping the generation makes every earlier key of
// that store unreachable, so writes never need to enumerate keys.
type StatisticsCache interface {
	Get(ctx context.Context, key string) (*domain.Statistics, bool, error)
	Set(ctx context.Context, key string, value *domain.Statistics, ttl time.Duration) error
	Generation(ctx context.Context, storeID int64) (int64, error)
	Bump(ctx context.Context, storeID int64) error
}

type NoopStatisticsCache struct{}

func (NoopStatisticsCache) Get(_ context.Context, _ string) (*domain.Statistics, bool, error) {
	return nil, false, nil
}

func (NoopStatisticsCache) Set(_ context.Context, _ string, _ *domain.Statistics, _ time.Duration) error {
	return nil
}

func (NoopStatisticsCache) Generation(_ context.Context, _ int64) (int64, error) {
	return 0, nil
}

func (NoopStatisticsCache) Bump(_ context.Context, _ int64) error {
	return nil
}
