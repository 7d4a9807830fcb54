// Package ledger applies expense, settlement and rollover operations to the
// store and serves the derived views (dues, stats, summaries) of a period.
//
// The store is the source of truth. Every view is recomputed from the
// period's expenses, settlements and carry-forward, read through a period
// cache that writes invalidate.
package ledger

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmynk/duesbook/internal/cache"
	"github.com/mmynk/duesbook/internal/events"
	"github.com/mmynk/duesbook/internal/metrics"
	"github.com/mmynk/duesbook/internal/models"
	"github.com/mmynk/duesbook/internal/storage"
)

const (
	defaultCacheSize = 24
	defaultCacheTTL  = 5 * time.Minute
)

// Book is the ledger of a single household or group of people.
type Book struct {
	store     storage.Store
	cache     *cache.PeriodCache
	publisher events.Publisher
	logger    *slog.Logger
	loc       *time.Location
	now       func() time.Time
}

// Option configures a Book.
type Option func(*Book)

// WithPublisher sends every recorded activity entry to p.
func WithPublisher(p events.Publisher) Option {
	return func(b *Book) { b.publisher = p }
}

// WithLogger replaces the default logger.
func WithLogger(l *slog.Logger) Option {
	return func(b *Book) { b.logger = l }
}

// WithLocation sets the time zone used to decide the current period.
func WithLocation(loc *time.Location) Option {
	return func(b *Book) { b.loc = loc }
}

// WithCache sizes the period snapshot cache.
func WithCache(size int, ttl time.Duration) Option {
	return func(b *Book) { b.cache = cache.NewPeriodCache(b.loadSnapshot, size, ttl) }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(b *Book) { b.now = now }
}

// New creates a Book over store.
func New(store storage.Store, opts ...Option) *Book {
	b := &Book{
		store:     store,
		publisher: events.NopPublisher{},
		logger:    slog.Default(),
		loc:       time.UTC,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.cache == nil {
		b.cache = cache.NewPeriodCache(b.loadSnapshot, defaultCacheSize, defaultCacheTTL)
	}
	return b
}

// CurrentPeriod returns the period containing the current time.
func (b *Book) CurrentPeriod() models.Period {
	return models.PeriodOf(b.now().In(b.loc))
}

// People lists everyone known to the ledger.
func (b *Book) People(ctx context.Context) ([]*models.Person, error) {
	return b.store.ListPeople(ctx)
}

// ListActivity returns the most recent activity entries, newest first.
func (b *Book) ListActivity(ctx context.Context, limit int) ([]*models.Activity, error) {
	return b.store.ListActivity(ctx, limit)
}

// PruneCache drops expired period snapshots.
func (b *Book) PruneCache() int {
	return b.cache.CleanExpired()
}

func (b *Book) loadSnapshot(ctx context.Context, period models.Period) (*cache.Snapshot, error) {
	expenses, err := b.store.ListExpenses(ctx, models.ExpenseFilter{Period: period})
	if err != nil {
		return nil, err
	}
	settlements, err := b.store.ListSettlements(ctx, period)
	if err != nil {
		return nil, err
	}

	carry := map[string]decimal.Decimal{}
	rollover, err := b.store.GetRolloverInto(ctx, period)
	switch {
	case err == nil:
		carry = rollover.CarryForward()
	case !errors.Is(err, models.ErrNotFound):
		return nil, err
	}

	return &cache.Snapshot{
		Period:       period,
		Expenses:     expenses,
		Settlements:  settlements,
		CarryForward: carry,
		LoadedAt:     b.now(),
	}, nil
}

func (b *Book) snapshot(ctx context.Context, period models.Period) (*cache.Snapshot, error) {
	if !period.Valid() {
		return nil, models.Invalid("period", "month must be 1-12, got %d-%d", period.Year, period.Month)
	}
	return b.cache.Get(ctx, period)
}

// checkPeople returns a NotFoundError for the first unknown person.
func (b *Book) checkPeople(ctx context.Context, ids ...string) error {
	for _, id := range ids {
		if _, err := b.store.GetPerson(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// record appends an activity entry and publishes it. The mutation it
// describes has already been committed, so failures here are logged only.
func (b *Book) record(ctx context.Context, actorID string, action models.Action, detail models.Detail) {
	metrics.LedgerOperations.WithLabelValues(string(action)).Inc()

	activity := &models.Activity{
		Action:  action,
		ActorID: actorID,
		At:      b.now().Unix(),
		Detail:  detail,
	}
	if err := b.store.AppendActivity(ctx, activity); err != nil {
		b.logger.Error("Failed to append activity", "action", action, "kind", detail.Kind(), "error", err)
		return
	}

	if err := b.publisher.Publish(ctx, activity); err != nil {
		metrics.EventsPublished.WithLabelValues("error").Inc()
		b.logger.Warn("Failed to publish activity", "id", activity.ID, "action", action, "error", err)
		return
	}
	metrics.EventsPublished.WithLabelValues("ok").Inc()
}
