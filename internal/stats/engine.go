package stats

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"storeledger/backend/internal/cache"
	"storeledger/backend/internal/domain"
	"storeledger/backend/internal/metrics"
)

// Loader returns one consistent snapshot of a store's transactions.
type Loader func(ctx context.Context) ([]domain.Transaction, error)

type Query struct {
	StoreID    int64
	Period     domain.Period
	PersonType domain.PersonType
	Now        time.Time
}

type Engine struct {
	cache    cache.StatisticsCache
	cacheTTL time.Duration
	log      logrus.FieldLogger
	metrics  *metrics.Metrics
}

func NewEngine(cacheStore cache.StatisticsCache, cacheTTL time.Duration, log logrus.FieldLogger, m *metrics.Metrics) *Engine {
	if cacheStore == nil {
		cacheStore = cache.NoopStatisticsCache{}
	}
	if cacheTTL <= 0 {
		cacheTTL = 60 * time.Second
	}
	if log == nil {
		log = logrus.StandardLogger()
	}

	return &Engine{
		cache:    cacheStore,
		cacheTTL: cacheTTL,
		log:      log.WithField("component", "stats"),
		metrics:  m,
	}
}

// Statistics serves q from the cache when the store has not been written
// since the entry was computed, and otherwise computes it from load.
// Cache failures degrade to a fresh computation.
func (e *Engine) Statistics(ctx context.Context, q Query, load Loader) (domain.Statistics, error) {
	gen, err := e.cache.Generation(ctx, q.StoreID)
	cacheable := err == nil
	if err != nil {
		e.log.WithError(err).WithField("store_id", q.StoreID).Warn("statistics cache generation unavailable")
	}

	key := buildCacheKey(q, gen)
	if cacheable {
		if cached, ok, err := e.cache.Get(ctx, key); err == nil && ok {
			e.metrics.ObserveStatistics(true)
			return *cached, nil
		}
	}

	txs, err := load(ctx)
	if err != nil {
		return domain.Statistics{}, err
	}

	result := Compute(Input{
		StoreID:      q.StoreID,
		Period:       q.Period,
		PersonType:   q.PersonType,
		Now:          q.Now,
		Transactions: txs,
	})
	e.metrics.ObserveStatistics(false)

	for _, w := range result.Warnings {
		e.log.WithFields(logrus.Fields{
			"store_id":       q.StoreID,
			"transaction_id": w.TransactionID,
			"field":          w.Field,
		}).Warn(w.Message)
	}

	if cacheable {
		if err := e.cache.Set(ctx, key, &result, e.cacheTTL); err != nil {
			e.log.WithError(err).WithField("store_id", q.StoreID).Warn("failed to cache statistics")
		}
	}
	return result, nil
}

// Invalidate drops every cached result of a store.
func (e *Engine) Invalidate(ctx context.Context, storeID int64) {
	if err := e.cache.Bump(ctx, storeID); err != nil {
		e.log.WithError(err).WithField("store_id", storeID).Warn("failed to invalidate statistics cache")
	}
}

func buildCacheKey(q Query, generation int64) string {
	person := q.PersonType
	if person != domain.PersonCorporate {
		person = domain.PersonIndividual
	}
	period := q.Period
	if period == "" {
		period = domain.PeriodMonthly
	}
	return fmt.Sprintf(
		"storeledger:stats:%d:%d:%s:%s:%s:%s",
		q.StoreID,
		generation,
		period,
		person,
		q.Now.Location().String(),
		q.Now.Format("2006-01-02"),
	)
}
