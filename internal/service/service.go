package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"storeledger/backend/internal/domain"
	"storeledger/backend/internal/inventory"
	"storeledger/backend/internal/lock"
	"storeledger/backend/internal/metrics"
	"storeledger/backend/internal/stats"
	"storeledger/backend/internal/store"
)

type principalContextKey struct{}

func WithPrincipal(ctx context.Context, principal domain.Principal) context.Context {
	return context.WithValue(ctx, principalContextKey{}, principal)
}

func PrincipalFromContext(ctx context.Context) (domain.Principal, bool) {
	principal, ok := ctx.Value(principalContextKey{}).(domain.Principal)
	return principal, ok && principal.UserID != ""
}

// Options carries the collaborators that have sensible defaults.
type Options struct {
	Locker   lock.Locker
	Logger   logrus.FieldLogger
	Metrics  *metrics.Metrics
	Clock    func() time.Time
	Location *time.Location
}

type Service struct {
	repo      store.Repository
	inventory *inventory.Ledger
	stats     *stats.Engine
	locker    lock.Locker
	validate  *validator.Validate
	log       logrus.FieldLogger
	metrics   *metrics.Metrics
	clock     func() time.Time
	location  *time.Location
}

func New(repo store.Repository, inv *inventory.Ledger, engine *stats.Engine, opts Options) *Service {
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}
	if inv == nil {
		inv = inventory.NewLedger(inventory.PolicyReject, opts.Logger, opts.Metrics)
	}
	if engine == nil {
		engine = stats.NewEngine(nil, 0, opts.Logger, opts.Metrics)
	}
	if opts.Locker == nil {
		opts.Locker = lock.Noop{}
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}

	return &Service{
		repo:      repo,
		inventory: inv,
		stats:     engine,
		locker:    opts.Locker,
		validate:  newValidator(),
		log:       opts.Logger.WithField("component", "service"),
		metrics:   opts.Metrics,
		clock:     opts.Clock,
		location:  opts.Location,
	}
}

func requirePrincipal(ctx context.Context) (domain.Principal, error) {
	principal, ok := PrincipalFromContext(ctx)
	if !ok {
		return domain.Principal{}, store.ErrForbidden
	}
	return principal, nil
}

type storeGetter interface {
	GetStore(ctx context.Context, id int64) (*domain.Store, error)
}

// authorizeStore loads the store and checks the principal owns it.
func authorizeStore(ctx context.Context, l storeGetter, principal domain.Principal, storeID int64) (*domain.Store, error) {
	shop, err := l.GetStore(ctx, storeID)
	if err != nil {
		return nil, err
	}
	if shop.OwnerID != principal.UserID {
		return nil, store.ErrForbidden
	}
	return shop, nil
}

// committed runs after a write is durable.
func (s *Service) committed(ctx context.Context, storeID int64) {
	s.stats.Invalidate(ctx, storeID)
}

// Location is the zone statistics windows are computed in.
func (s *Service) Location() *time.Location {
	return s.location
}
