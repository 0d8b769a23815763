package middleware

import (
	"net"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/kevinaaaquil/readingbud/backend/apperr"
	"golang.org/x/time/rate"
)

// KeyedLimiter gives every key its own token bucket. Buckets idle for longer than a full
// refill are evicted by a background sweep until Stop is called.
type KeyedLimiter struct {
	mu       sync.RWMutex
	limiters map[string]*keyedEntry
	limit    rate.Limit
	burst    int
	idle     time.Duration

	done     chan struct{}
	stopOnce sync.Once
}

type keyedEntry struct {
	limiter  *rate.Limiter
	lastSeen atomic.Int64 // unix nanoseconds
}

// NewKeyedLimiter allows perMinute requests per key per minute, all of which may arrive at once.
// It returns nil when perMinute is not positive.
func NewKeyedLimiter(perMinute int) *KeyedLimiter {
	if perMinute <= 0 {
		return nil
	}
	k := &KeyedLimiter{
		limiters: make(map[string]*keyedEntry),
		limit:    rate.Every(time.Minute / time.Duration(perMinute)),
		burst:    perMinute,
		idle:     time.Minute,
		done:     make(chan struct{}),
	}
	go k.cleanup(time.Minute)
	return k
}

func (k *KeyedLimiter) Allow(key string) bool {
	e := k.entry(key)
	e.lastSeen.Store(time.Now().UnixNano())
	return e.limiter.Allow()
}

func (k *KeyedLimiter) entry(key string) *keyedEntry {
	k.mu.RLock()
	e, ok := k.limiters[key]
	k.mu.RUnlock()
	if ok {
		return e
	}

	k.mu.Lock()
	defer k.mu.Unlock()
	if e, ok = k.limiters[key]; ok {
		return e
	}
	e = &keyedEntry{limiter: rate.NewLimiter(k.limit, k.burst)}
	k.limiters[key] = e
	return e
}

// Len returns the number of tracked keys.
func (k *KeyedLimiter) Len() int {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return len(k.limiters)
}

// Stop ends the background sweep.
func (k *KeyedLimiter) Stop() {
	if k == nil {
		return
	}
	k.stopOnce.Do(func() {
		close(k.done)
	})
}

func (k *KeyedLimiter) cleanup(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-k.done:
			return
		case now := <-ticker.C:
			k.evictIdle(now)
		}
	}
}

// evictIdle drops keys not seen since now minus the idle window. A bucket idle that long
// has refilled, so a fresh one behaves the same.
func (k *KeyedLimiter) evictIdle(now time.Time) int {
	cutoff := now.Add(-k.idle).UnixNano()
	k.mu.Lock()
	defer k.mu.Unlock()
	evicted := 0
	for key, e := range k.limiters {
		if e.lastSeen.Load() < cutoff {
			delete(k.limiters, key)
			evicted++
		}
	}
	return evicted
}

// RateLimit answers 429 once a client IP exhausts its bucket. A nil limiter disables limiting.
// Mount after chi's RealIP so RemoteAddr is the client address.
func RateLimit(limiter *KeyedLimiter) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if limiter == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow(clientIP(r)) {
				w.Header().Set("Retry-After", strconv.Itoa(retryAfterSeconds(limiter.limit)))
				reject(w, apperr.ErrRateLimited)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func retryAfterSeconds(limit rate.Limit) int {
	if limit <= 0 {
		return 60
	}
	secs := int(1 / float64(limit))
	if secs < 1 {
		return 1
	}
	return secs
}
