// Package ratelimit throttles form submissions per client address with a
// token bucket per key.
package ratelimit

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"registro/pkg/requestcontext"
)

const (
	defaultIdleTTL      = 15 * time.Minute
	defaultCleanupEvery = 2 * time.Minute
)

// Store keeps one limiter per client key and forgets keys idle for longer than idleTTL.
type Store struct {
	mu           sync.Mutex
	entries      map[string]*entry
	limit        rate.Limit
	burst        int
	idleTTL      time.Duration
	cleanupEvery time.Duration
	now          func() time.Time
}

type entry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type Option func(*Store)

func WithIdleTTL(d time.Duration) Option {
	return func(s *Store) { s.idleTTL = d }
}

func WithCleanupEvery(d time.Duration) Option {
	return func(s *Store) { s.cleanupEvery = d }
}

// WithClock overrides the time source; used by tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func NewStore(rps float64, burst int, opts ...Option) *Store {
	s := &Store{
		entries:      make(map[string]*entry),
		limit:        rate.Limit(rps),
		burst:        burst,
		idleTTL:      defaultIdleTTL,
		cleanupEvery: defaultCleanupEvery,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Allow reports whether key may proceed now, and if not how long until a token is available.
func (s *Store) Allow(key string) (bool, time.Duration) {
	now := s.now()
	lim := s.limiter(key, now)

	res := lim.ReserveN(now, 1)
	if !res.OK() {
		return false, time.Second
	}
	delay := res.DelayFrom(now)
	if delay == 0 {
		return true, 0
	}
	res.CancelAt(now)
	return false, delay
}

func (s *Store) limiter(key string, now time.Time) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ent, ok := s.entries[key]; ok {
		ent.lastSeen = now
		return ent.limiter
	}
	lim := rate.NewLimiter(s.limit, s.burst)
	s.entries[key] = &entry{limiter: lim, lastSeen: now}
	return lim
}

// Len returns the number of tracked keys.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Cleanup drops keys that have not been seen within the idle TTL.
func (s *Store) Cleanup() {
	cutoff := s.now().Add(-s.idleTTL)

	s.mu.Lock()
	defer s.mu.Unlock()
	for k, ent := range s.entries {
		if ent.lastSeen.Before(cutoff) {
			delete(s.entries, k)
		}
	}
}

// Run cleans idle keys periodically until ctx is cancelled.
func (s *Store) Run(ctx context.Context) error {
	if s.cleanupEvery <= 0 {
		<-ctx.Done()
		return nil
	}
	ticker := time.NewTicker(s.cleanupEvery)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s.Cleanup()
		}
	}
}

// Middleware rejects requests over the per-client budget with 429 and Retry-After.
// Clients are keyed by the address resolved by the metadata middleware.
func Middleware(store *Store, onReject func(r *http.Request)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := requestcontext.ClientIP(r.Context())
			if key == "" {
				key = "unknown"
			}
			allowed, retryAfter := store.Allow(key)
			if !allowed {
				if onReject != nil {
					onReject(r)
				}
				seconds := int(math.Ceil(retryAfter.Seconds()))
				if seconds < 1 {
					seconds = 1
				}
				w.Header().Set("Retry-After", strconv.Itoa(seconds))
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				_, _ = w.Write([]byte(`{"error":"rate_limited","error_description":"too many requests, retry later"}`)) //nolint:errcheck // headers already sent
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
