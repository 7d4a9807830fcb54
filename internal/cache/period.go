// Package cache provides a read-through cache of per-period ledger snapshots.
//
// Reads go through Get, which loads a snapshot on a miss. Writes never update
// the cache in place; callers invalidate the periods they touched and the next
// read reloads from the store.
package cache

import (
	"container/list"
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"

	"github.com/mmynk/duesbook/internal/metrics"
	"github.com/mmynk/duesbook/internal/models"
)

// Snapshot is everything the calculator needs to compute a period.
// Snapshots are shared between readers and must not be mutated.
type Snapshot struct {
	Period       models.Period
	Expenses     []*models.Expense
	Settlements  []*models.Settlement
	CarryForward map[string]decimal.Decimal
	LoadedAt     time.Time
}

// Loader fetches a snapshot from the backing store.
type Loader func(ctx context.Context, period models.Period) (*Snapshot, error)

// loadTimeout bounds a shared load. Loads run detached from the caller that
// started them so one cancelled request cannot fail every waiter.
const loadTimeout = 30 * time.Second

type entry struct {
	key       string
	snapshot  *Snapshot
	expiresAt time.Time
}

// PeriodCache is an LRU of snapshots with a TTL. Concurrent misses for the
// same period share a single load.
type PeriodCache struct {
	mu         sync.Mutex
	maxSize    int
	ttl        time.Duration
	items      map[string]*list.Element
	lru        *list.List
	generation map[string]uint64
	flight     singleflight.Group
	load       Loader
	now        func() time.Time
}

// NewPeriodCache creates a cache holding at most maxSize periods for ttl each.
func NewPeriodCache(load Loader, maxSize int, ttl time.Duration) *PeriodCache {
	if maxSize < 1 {
		maxSize = 1
	}
	return &PeriodCache{
		maxSize:    maxSize,
		ttl:        ttl,
		items:      make(map[string]*list.Element),
		lru:        list.New(),
		generation: make(map[string]uint64),
		load:       load,
		now:        time.Now,
	}
}

// Get returns the snapshot for period, loading it on a miss.
func (c *PeriodCache) Get(ctx context.Context, period models.Period) (*Snapshot, error) {
	key := period.Key()

	c.mu.Lock()
	if snap, ok := c.lookup(key); ok {
		c.mu.Unlock()
		metrics.CacheLookups.WithLabelValues("hit").Inc()
		return snap, nil
	}
	gen := c.generation[key]
	c.mu.Unlock()
	metrics.CacheLookups.WithLabelValues("miss").Inc()

	// The generation is part of the flight key so a load started before an
	// invalidation is never shared with readers arriving after it.
	flightKey := key + "#" + strconv.FormatUint(gen, 10)
	ch := c.flight.DoChan(flightKey, func() (any, error) {
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), loadTimeout)
		defer cancel()

		snap, err := c.load(loadCtx, period)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		if c.generation[key] == gen {
			c.store(key, snap)
		}
		c.mu.Unlock()
		return snap, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Snapshot), nil
	}
}

// Invalidate drops the cached snapshots of the given periods.
func (c *PeriodCache) Invalidate(periods ...models.Period) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, p := range periods {
		key := p.Key()
		c.generation[key]++
		if elem, ok := c.items[key]; ok {
			c.remove(elem)
		}
		metrics.CacheInvalidations.Inc()
	}
}

// InvalidateAll drops every cached snapshot.
func (c *PeriodCache) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for key, elem := range c.items {
		c.generation[key]++
		c.remove(elem)
	}
	// Periods with a load in flight but nothing cached yet.
	for key := range c.generation {
		c.generation[key]++
	}
	metrics.CacheInvalidations.Inc()
}

// CleanExpired removes expired snapshots and returns how many were dropped.
func (c *PeriodCache) CleanExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	var expired []*list.Element
	for elem := c.lru.Front(); elem != nil; elem = elem.Next() {
		if now.After(elem.Value.(*entry).expiresAt) {
			expired = append(expired, elem)
		}
	}
	for _, elem := range expired {
		c.remove(elem)
	}
	return len(expired)
}

func (c *PeriodCache) size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// lookup must be called with c.mu held.
func (c *PeriodCache) lookup(key string) (*Snapshot, bool) {
	elem, ok := c.items[key]
	if !ok {
		return nil, false
	}
	e := elem.Value.(*entry)
	if c.now().After(e.expiresAt) {
		c.remove(elem)
		return nil, false
	}
	c.lru.MoveToFront(elem)
	return e.snapshot, true
}

// store must be called with c.mu held.
func (c *PeriodCache) store(key string, snap *Snapshot) {
	e := &entry{key: key, snapshot: snap, expiresAt: c.now().Add(c.ttl)}
	if elem, ok := c.items[key]; ok {
		elem.Value = e
		c.lru.MoveToFront(elem)
		return
	}
	c.items[key] = c.lru.PushFront(e)
	if c.lru.Len() > c.maxSize {
		c.remove(c.lru.Back())
	}
}

func (c *PeriodCache) remove(elem *list.Element) {
	delete(c.items, elem.Value.(*entry).key)
	c.lru.Remove(elem)
}
