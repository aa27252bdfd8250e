package ratelimiter

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// DefaultIdleTTL is how long a client bucket survives without requests.
const DefaultIdleTTL = 10 * time.Minute

// RateLimiter provides per-client request rate limiting using the token
// bucket algorithm.
//
// Every key (typically the client IP) gets its own golang.org/x/time/rate
// bucket, created on first use. Buckets that have not been used for the idle
// TTL are pruned opportunistically, so the table does not grow with every
// address ever seen.
//
// Special cases:
//   - requestsPerSecond = 0: no rate limiting, Allow always succeeds
//   - burst = 0 with a non-zero rate: burst defaults to requestsPerSecond
//
// Thread safety:
// All methods are safe for concurrent use.
type RateLimiter struct {
	limit   rate.Limit
	burst   int
	idleTTL time.Duration
	now     func() time.Time

	mu        sync.Mutex
	clients   map[string]*client
	lastPrune time.Time
}

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// New creates a RateLimiter.
//
// Parameters:
//   - requestsPerSecond: sustained rate per key (tokens added per second)
//   - burst: bucket capacity per key
//   - idleTTL: inactivity after which a key's bucket is dropped; zero means
//     DefaultIdleTTL
func New(requestsPerSecond, burst uint, idleTTL time.Duration) *RateLimiter {
	if idleTTL <= 0 {
		idleTTL = DefaultIdleTTL
	}

	limit := rate.Limit(requestsPerSecond)
	if requestsPerSecond == 0 {
		limit = rate.Inf
	} else if burst == 0 {
		burst = requestsPerSecond
	}

	return &RateLimiter{
		limit:   limit,
		burst:   int(burst),
		idleTTL: idleTTL,
		now:     time.Now,
		clients: make(map[string]*client),
	}
}

// Unlimited reports whether the limiter lets every request through.
func (r *RateLimiter) Unlimited() bool {
	return r.limit == rate.Inf
}

// Allow consumes one token from key's bucket.
//
// Returns false if the bucket is empty; the request should be rejected.
func (r *RateLimiter) Allow(key string) bool {
	if r.Unlimited() {
		return true
	}

	now := r.now()
	return r.bucket(key, now).AllowN(now, 1)
}

// RetryAfter estimates how long key must wait before its next token. It
// does not consume a token.
func (r *RateLimiter) RetryAfter(key string) time.Duration {
	if r.Unlimited() {
		return 0
	}

	now := r.now()
	res := r.bucket(key, now).ReserveN(now, 1)
	if !res.OK() {
		return time.Second
	}
	delay := res.DelayFrom(now)
	res.CancelAt(now)
	return delay
}

// bucket returns key's limiter, creating it on first use.
func (r *RateLimiter) bucket(key string, now time.Time) *rate.Limiter {
	r.mu.Lock()
	defer r.mu.Unlock()

	if now.Sub(r.lastPrune) > r.idleTTL {
		r.pruneLocked(now)
	}

	c, ok := r.clients[key]
	if !ok {
		c = &client{limiter: rate.NewLimiter(r.limit, r.burst)}
		r.clients[key] = c
	}
	c.lastSeen = now
	return c.limiter
}

// Prune drops buckets idle for longer than the idle TTL and returns how
// many were removed.
func (r *RateLimiter) Prune() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pruneLocked(r.now())
}

func (r *RateLimiter) pruneLocked(now time.Time) int {
	removed := 0
	for key, c := range r.clients {
		if now.Sub(c.lastSeen) > r.idleTTL {
			delete(r.clients, key)
			removed++
		}
	}
	r.lastPrune = now
	return removed
}

// Len returns the number of tracked keys.
func (r *RateLimiter) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.clients)
}
