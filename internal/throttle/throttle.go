// Package throttle keeps one rate.Limiter per client, grouped by route.
package throttle

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// Conf describes one bucket group.
type Conf struct {
	Burst     int           // maximum number of tokens in a bucket
	Increment int           // tokens added each period
	Period    time.Duration // how often Increment is added
}

// PerMinute returns a Conf allowing n requests per minute with the given
// burst. n <= 0 disables refill.
func PerMinute(n, burst int) Conf {
	if burst <= 0 {
		burst = 1
	}
	if n <= 0 {
		return Conf{Burst: burst, Increment: 0, Period: time.Minute}
	}
	return Conf{Burst: burst, Increment: 1, Period: time.Minute / time.Duration(n)}
}

// limit converts the group's refill into a rate.Limit.
func (c Conf) limit() rate.Limit {
	if c.Increment <= 0 || c.Period <= 0 {
		return 0
	}
	return rate.Limit(float64(c.Increment) / c.Period.Seconds())
}

type bucket struct {
	lim      *rate.Limiter
	lastSeen atomic.Int64 // unix nanos of the last Allow
}

func newBucket(conf Conf) *bucket {
	return &bucket{lim: rate.NewLimiter(conf.limit(), conf.Burst)}
}

func (b *bucket) allow(now time.Time) bool {
	b.lastSeen.Store(now.UnixNano())
	return b.lim.AllowN(now, 1)
}

type group[K comparable] struct {
	conf    Conf
	buckets sync.Map // K -> *bucket
}

// Store holds bucket groups keyed by name.
type Store[K comparable] struct {
	mu     sync.RWMutex
	groups map[string]*group[K]
	log    zerolog.Logger
}

// NewStore returns an empty Store.
func NewStore[K comparable](log zerolog.Logger) *Store[K] {
	return &Store[K]{
		groups: make(map[string]*group[K]),
		log:    log.With().Str("component", "throttle").Logger(),
	}
}

// SetGroup registers or replaces a group. Existing buckets are dropped.
func (s *Store[K]) SetGroup(name string, conf Conf) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.groups[name] = &group[K]{conf: conf}
}

// Allow takes one token from id's bucket in group. Unknown groups always
// deny.
func (s *Store[K]) Allow(groupName string, id K, now time.Time) bool {
	s.mu.RLock()
	g, ok := s.groups[groupName]
	s.mu.RUnlock()
	if !ok {
		return false
	}

	v, ok := g.buckets.Load(id)
	if !ok {
		v, _ = g.buckets.LoadOrStore(id, newBucket(g.conf))
	}
	return v.(*bucket).allow(now)
}

// Sweep drops buckets untouched for longer than olderThan and returns how
// many were removed.
func (s *Store[K]) Sweep(now time.Time, olderThan time.Duration) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	removed := 0
	for _, g := range s.groups {
		g.buckets.Range(func(id, value any) bool {
			last := time.Unix(0, value.(*bucket).lastSeen.Load())
			if now.Sub(last) > olderThan {
				g.buckets.Delete(id)
				removed++
			}
			return true
		})
	}
	return removed
}

// Run sweeps every cycle until ctx is done.
func (s *Store[K]) Run(ctx context.Context, cycle, olderThan time.Duration) {
	ticker := time.NewTicker(cycle)
	defer ticker.Stop()
	s.log.Info().Dur("cycle", cycle).Dur("older_than", olderThan).Msg("bucket sweeper started")
	for {
		select {
		case <-ctx.Done():
			s.log.Info().Msg("bucket sweeper stopped")
			return
		case now := <-ticker.C:
			if n := s.Sweep(now, olderThan); n > 0 {
				s.log.Debug().Int("removed", n).Msg("stale buckets swept")
			}
		}
	}
}
