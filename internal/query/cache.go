// Package query is the cached read layer between handlers and the upstream
// transport. Reads are keyed, de-duplicated while in flight and kept until a
// mutation invalidates them; the Registrations facade binds the cache to the
// registration endpoints.
package query

import (
	"context"
	"strconv"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

// Status is the lifecycle state of a cache entry.
type Status int

const (
	StatusIdle Status = iota
	StatusPending
	StatusResolved
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusResolved:
		return "resolved"
	case StatusFailed:
		return "failed"
	default:
		return "idle"
	}
}

// Entry is a point-in-time copy of one cache slot.
type Entry struct {
	Key       Key
	Value     any
	Status    Status
	Err       error
	Stale     bool
	UpdatedAt time.Time
}

// Fetcher loads the value for a key.
type Fetcher func(ctx context.Context) (any, error)

type slot struct {
	key       Key
	value     any
	status    Status
	err       error
	stale     bool
	updatedAt time.Time
	gen       uint64
}

// Options tune a Cache. Zero values mean: fresh until invalidated, never evicted.
type Options struct {
	// StaleTime is how long a resolved entry is served without refetching.
	StaleTime time.Duration
	// GCTime evicts entries not read for this long.
	GCTime time.Duration
	// Now overrides the clock (tests).
	Now func() time.Time
}

// Cache holds query results keyed by Key. It is safe for concurrent use and
// is meant to be created once and shared.
type Cache struct {
	mu    sync.Mutex
	store *gocache.Cache
	group singleflight.Group
	seq   uint64

	staleTime time.Duration
	gcTime    time.Duration
	now       func() time.Time
}

// New returns an empty Cache.
func New(opts Options) *Cache {
	ttl := gocache.NoExpiration
	var cleanup time.Duration
	if opts.GCTime > 0 {
		ttl = opts.GCTime
		cleanup = opts.GCTime
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	store := gocache.New(ttl, cleanup)
	store.OnEvicted(func(k string, _ any) {
		log.Debug().Str("key", k).Msg("query entry evicted")
	})
	return &Cache{
		store:     store,
		staleTime: opts.StaleTime,
		gcTime:    ttl,
		now:       now,
	}
}

// StaleTime reports the configured freshness window.
func (c *Cache) StaleTime() time.Duration { return c.staleTime }

// Fetch returns the cached value for key when it is resolved and fresh;
// otherwise it runs fn, sharing a single call among concurrent callers of the
// same key. If ctx ends first Fetch returns ctx.Err() and the shared call
// keeps running; its result still lands in the slot unless the key was
// invalidated or removed in the meantime.
func (c *Cache) Fetch(ctx context.Context, key Key, fn Fetcher) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	k := key.String()

	c.mu.Lock()
	s := c.lookup(k)
	if s != nil && s.status == StatusResolved && !c.isStale(s) {
		v := s.value
		c.store.Set(k, s, c.gcTime)
		c.mu.Unlock()
		cacheLookups.WithLabelValues("hit").Inc()
		return v, nil
	}
	if s == nil {
		c.seq++
		s = &slot{key: append(Key(nil), key...), gen: c.seq}
	}
	s.status = StatusPending
	// pending slots must survive a slow upstream
	c.store.Set(k, s, gocache.NoExpiration)
	gen := s.gen
	c.mu.Unlock()

	leader := false
	ch := c.group.DoChan(flightKey(k, gen), func() (any, error) {
		leader = true
		v, err := fn(context.WithoutCancel(ctx))
		c.land(k, gen, v, err)
		return v, err
	})

	select {
	case r := <-ch:
		if leader {
			cacheLookups.WithLabelValues("miss").Inc()
		} else {
			cacheLookups.WithLabelValues("shared").Inc()
		}
		return r.Val, r.Err
	case <-ctx.Done():
		cacheLookups.WithLabelValues("miss").Inc()
		return nil, ctx.Err()
	}
}

// land stores a finished fetch, unless the slot moved on to a newer generation.
func (c *Cache) land(k string, gen uint64, v any, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.lookup(k)
	if s == nil || s.gen != gen {
		log.Debug().Str("key", k).Msg("discarding superseded query result")
		return
	}
	if err != nil {
		s.status = StatusFailed
		s.err = err
	} else {
		s.status = StatusResolved
		s.value = v
		s.err = nil
		s.stale = false
	}
	s.updatedAt = c.now()
	c.store.Set(k, s, c.gcTime)
}

// Invalidate marks every entry whose key starts with prefix as stale, so the
// next Fetch refetches. In-flight fetches for those keys are not written back.
// It returns the number of entries touched.
func (c *Cache) Invalidate(prefix Key) int {
	cacheInvalidations.Inc()
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, s := range c.matching(prefix) {
		c.seq++
		s.gen = c.seq
		s.stale = true
		if s.status == StatusPending {
			// the old flight will not land; let the slot expire if nobody refetches
			c.store.Set(s.key.String(), s, c.gcTime)
		}
		n++
	}
	return n
}

// Remove drops every entry whose key starts with prefix.
func (c *Cache) Remove(prefix Key) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, s := range c.matching(prefix) {
		c.store.Delete(s.key.String())
		n++
	}
	return n
}

// Snapshot returns a copy of the entry at key. A missing entry reports
// StatusIdle and ok=false.
func (c *Cache) Snapshot(key Key) (Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.lookup(key.String())
	if s == nil {
		return Entry{Key: key, Status: StatusIdle}, false
	}
	return Entry{
		Key:       s.key,
		Value:     s.value,
		Status:    s.status,
		Err:       s.err,
		Stale:     c.isStale(s),
		UpdatedAt: s.updatedAt,
	}, true
}

// Len reports the number of live entries.
func (c *Cache) Len() int { return c.store.ItemCount() }

func (c *Cache) lookup(k string) *slot {
	v, ok := c.store.Get(k)
	if !ok {
		return nil
	}
	s, ok := v.(*slot)
	if !ok {
		log.Error().Str("key", k).Msg("wrong type in query cache")
		return nil
	}
	return s
}

func (c *Cache) matching(prefix Key) []*slot {
	var out []*slot
	for k := range c.store.Items() {
		if s := c.lookup(k); s != nil && s.key.HasPrefix(prefix) {
			out = append(out, s)
		}
	}
	return out
}

func (c *Cache) isStale(s *slot) bool {
	if s.stale {
		return true
	}
	if s.status != StatusResolved || c.staleTime <= 0 {
		return false
	}
	return c.now().Sub(s.updatedAt) >= c.staleTime
}

func flightKey(k string, gen uint64) string {
	return k + "#" + strconv.FormatUint(gen, 10)
}
