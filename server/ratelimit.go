package server

import (
	"context"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/Shyp/joblog/metrics"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

// A Limiter decides whether the client identified by key may make another
// request.
type Limiter interface {
	Allow(ctx context.Context, key string) bool
}

// LocalLimiter keeps one token bucket per client in memory. Buckets that have
// not been seen for IdleTTL are dropped by Cleanup.
type LocalLimiter struct {
	IdleTTL time.Duration

	mu      sync.Mutex
	rps     rate.Limit
	burst   int
	buckets map[string]*bucket
}

type bucket struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

// NewLocalLimiter returns a LocalLimiter that refills rps tokens a second, up
// to burst.
func NewLocalLimiter(rps float64, burst int) *LocalLimiter {
	return &LocalLimiter{
		IdleTTL: 15 * time.Minute,
		rps:     rate.Limit(rps),
		burst:   burst,
		buckets: make(map[string]*bucket),
	}
}

func (l *LocalLimiter) Allow(_ context.Context, key string) bool {
	now := time.Now()
	l.mu.Lock()
	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{lim: rate.NewLimiter(l.rps, l.burst)}
		l.buckets[key] = b
	}
	b.lastSeen = now
	l.mu.Unlock()
	return b.lim.AllowN(now, 1)
}

// Cleanup drops buckets idle for longer than IdleTTL.
func (l *LocalLimiter) Cleanup() {
	cutoff := time.Now().Add(-l.IdleTTL)
	l.mu.Lock()
	defer l.mu.Unlock()
	for k, b := range l.buckets {
		if b.lastSeen.Before(cutoff) {
			delete(l.buckets, k)
		}
	}
}

// StartJanitor calls Cleanup every interval until ctx is canceled.
func (l *LocalLimiter) StartJanitor(ctx context.Context, interval time.Duration) {
	t := time.NewTicker(interval)
	go func() {
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				l.Cleanup()
			}
		}
	}()
}

const fixedWindowScript = `
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
if current > tonumber(ARGV[2]) then
  return 0
end
return 1
`

// RedisLimiter counts requests per client in a fixed window stored in Redis,
// so several server processes share one budget. If Redis cannot be reached
// the request is allowed.
type RedisLimiter struct {
	Prefix  string
	Limit   int
	Window  time.Duration
	Timeout time.Duration

	client redis.Scripter
	script *redis.Script
}

// NewRedisLimiter allows limit requests per window for each client.
func NewRedisLimiter(client redis.Scripter, limit int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{
		Prefix:  "joblog:ratelimit:",
		Limit:   limit,
		Window:  window,
		Timeout: 250 * time.Millisecond,
		client:  client,
		script:  redis.NewScript(fixedWindowScript),
	}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) bool {
	if l == nil || l.client == nil || l.Limit <= 0 || l.Window <= 0 {
		return true
	}
	ttl := l.Window.Milliseconds()
	if ttl <= 0 {
		ttl = 1
	}
	ctx, cancel := context.WithTimeout(ctx, l.Timeout)
	defer cancel()
	allowed, err := l.script.Run(ctx, l.client, []string{l.Prefix + key}, ttl, l.Limit).Int64()
	if err != nil {
		go metrics.Increment("ratelimit.redis.error")
		Logger.Warn("rate limit check failed", "err", err)
		return true
	}
	return allowed == 1
}

// ClientIP returns the host part of the remote address. If trustForwarded is
// true the server sits behind a proxy that appends the caller's address to
// X-Forwarded-For, so the last entry of that header is used instead. Earlier
// entries come from the client and are ignored.
func ClientIP(r *http.Request, trustForwarded bool) string {
	if trustForwarded {
		if xff := r.Header.Values("X-Forwarded-For"); len(xff) > 0 {
			parts := strings.Split(xff[len(xff)-1], ",")
			if ip := strings.TrimSpace(parts[len(parts)-1]); ip != "" {
				return ip
			}
		}
	}
	host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// rateLimitHandler answers 429 to clients that l refuses. A nil Limiter lets
// every request through.
func rateLimitHandler(l Limiter, trustForwarded bool, h http.Handler) http.Handler {
	if l == nil {
		return h
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.Allow(r.Context(), ClientIP(r, trustForwarded)) {
			go metrics.Increment("ratelimit.rejected")
			w.Header().Set("Retry-After", "1")
			writeError(w, new429(r))
			return
		}
		h.ServeHTTP(w, r)
	})
}
