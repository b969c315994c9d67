// Package inventory applies the stock side effects of sales.
package inventory

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"storeledger/backend/internal/metrics"
	"storeledger/backend/internal/store"
)

type Policy string

const (
	// PolicyReject fails a reservation the store cannot cover.
	PolicyReject Policy = "reject"
	// PolicyClamp floors the stock at zero instead of failing.
	PolicyClamp Policy = "clamp"
)

type Ledger struct {
	policy  Policy
	log     logrus.FieldLogger
	metrics *metrics.Metrics
}

func NewLedger(policy Policy, log logrus.FieldLogger, m *metrics.Metrics) *Ledger {
	if policy != PolicyClamp {
		policy = PolicyReject
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Ledger{policy: policy, log: log.WithField("component", "inventory"), metrics: m}
}

func (l *Ledger) Policy() Policy {
	return l.policy
}

// Reserve takes qty units of the product off the shelf and returns the new
// stock. The store decrements only when enough stock is on hand; when it is
// not, the reservation either fails with *store.InsufficientStockError or,
// under PolicyClamp, floors the stock at zero.
func (l *Ledger) Reserve(ctx context.Context, s store.StockStore, productID int64, qty int) (int, error) {
	if qty <= 0 {
		return 0, store.Invalid("quantity", "gt", "reserved quantity must be positive")
	}

	left, err := s.DecrementStock(ctx, productID, qty)
	if err == nil {
		return left, nil
	}

	var stockErr *store.InsufficientStockError
	if !errors.As(err, &stockErr) || l.policy != PolicyClamp {
		return 0, err
	}

	if err := s.ZeroStock(ctx, productID); err != nil {
		return 0, err
	}
	l.metrics.ObserveFloorHit()
	l.log.WithFields(logrus.Fields{
		"product_id": productID,
		"requested":  qty,
		"available":  stockErr.Available,
	}).Warn("stock floored at zero; reservation exceeded available stock")
	return 0, nil
}

// Release puts qty units back. Shelf capacity is not modelled.
func (l *Ledger) Release(ctx context.Context, s store.StockStore, productID int64, qty int) (int, error) {
	if qty <= 0 {
		return 0, store.Invalid("quantity", "gt", "released quantity must be positive")
	}
	return s.IncrementStock(ctx, productID, qty)
}
