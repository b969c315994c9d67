package service

import (
	"context"
	"time"

	"storeledger/backend/internal/domain"
	"storeledger/backend/internal/stats"
)

// ComputeStatistics reports the store's figures for the period containing
// now, in the service's location. A zero now means the current time. The
// person type comes from the caller's identity.
func (s *Service) ComputeStatistics(ctx context.Context, storeID int64, period domain.Period, now time.Time) (domain.Statistics, error) {
	principal, err := requirePrincipal(ctx)
	if err != nil {
		return domain.Statistics{}, err
	}
	if _, err := authorizeStore(ctx, s.repo, principal, storeID); err != nil {
		return domain.Statistics{}, err
	}

	if now.IsZero() {
		now = s.clock()
	}
	q := stats.Query{
		StoreID:    storeID,
		Period:     period,
		PersonType: principal.PersonType,
		Now:        now.In(s.location),
	}
	return s.stats.Statistics(ctx, q, func(ctx context.Context) ([]domain.Transaction, error) {
		return s.repo.ListTransactionsByStore(ctx, storeID)
	})
}
