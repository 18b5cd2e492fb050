package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/Shyp/joblog/test"
)

func TestLocalLimiterBurst(t *testing.T) {
	t.Parallel()
	l := NewLocalLimiter(0.001, 2)
	ctx := context.Background()
	test.Assert(t, l.Allow(ctx, "a"), "first request")
	test.Assert(t, l.Allow(ctx, "a"), "second request")
	test.Assert(t, !l.Allow(ctx, "a"), "third request should be limited")
	test.Assert(t, l.Allow(ctx, "b"), "other clients have their own bucket")
}

func TestLocalLimiterCleanup(t *testing.T) {
	t.Parallel()
	l := NewLocalLimiter(1, 1)
	l.Allow(context.Background(), "a")
	l.IdleTTL = -time.Second
	l.Cleanup()
	l.mu.Lock()
	n := len(l.buckets)
	l.mu.Unlock()
	test.AssertEquals(t, n, 0)
}

func TestNilRedisLimiterAllows(t *testing.T) {
	t.Parallel()
	var l *RedisLimiter
	test.Assert(t, l.Allow(context.Background(), "a"), "")
	test.Assert(t, NewRedisLimiter(nil, 10, time.Second).Allow(context.Background(), "a"), "")
}

var clientIPTests = []struct {
	xff        []string
	remoteAddr string
	trust      bool
	want       string
}{
	{nil, "10.0.0.1:5555", false, "10.0.0.1"},
	{[]string{"203.0.113.7"}, "10.0.0.1:5555", false, "10.0.0.1"},
	{[]string{"203.0.113.7"}, "10.0.0.1:5555", true, "203.0.113.7"},
	{[]string{"198.51.100.1, 203.0.113.7"}, "10.0.0.1:5555", true, "203.0.113.7"},
	{[]string{"198.51.100.1", "203.0.113.7"}, "10.0.0.1:5555", true, "203.0.113.7"},
	{[]string{""}, "10.0.0.1:5555", true, "10.0.0.1"},
	{nil, "nohost", true, "nohost"},
}

func TestClientIP(t *testing.T) {
	t.Parallel()
	for _, tt := range clientIPTests {
		req := httptest.NewRequest("GET", "/", nil)
		req.RemoteAddr = tt.remoteAddr
		for _, v := range tt.xff {
			req.Header.Add("X-Forwarded-For", v)
		}
		test.AssertEquals(t, ClientIP(req, tt.trust), tt.want)
	}
}

// countingLimiter allows the first request from each key.
type countingLimiter struct {
	mu   sync.Mutex
	seen map[string]int
}

func (c *countingLimiter) Allow(_ context.Context, key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seen[key]++
	return c.seen[key] == 1
}

func TestSpoofedForwardedForSharesBucket(t *testing.T) {
	t.Parallel()
	l := &countingLimiter{seen: make(map[string]int)}
	h := rateLimitHandler(l, false, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	codes := make([]int, 0, 3)
	for _, xff := range []string{"1.1.1.1", "2.2.2.2", "3.3.3.3"} {
		req := httptest.NewRequest("GET", "/", nil)
		req.RemoteAddr = "10.0.0.1:4000"
		req.Header.Set("X-Forwarded-For", xff)
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}
	test.AssertDeepEquals(t, codes, []int{200, 429, 429})
}
