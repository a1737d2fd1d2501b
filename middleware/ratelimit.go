package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/en9inerd/go-mount/pipeline"
)

// tokenBucket is a token bucket refilled continuously at rate tokens/s.
type tokenBucket struct {
	mu         sync.Mutex
	tokens     float64
	capacity   float64
	rate       float64
	lastRefill time.Time
	now        func() time.Time
}

func newTokenBucket(rate float64, burst int) *tokenBucket {
	capacity := float64(max(burst, 1))
	return &tokenBucket{
		tokens:     capacity,
		capacity:   capacity,
		rate:       rate,
		lastRefill: time.Now(),
		now:        time.Now,
	}
}

// take consumes one token. When none is left it reports how long until the
// next one is due.
func (tb *tokenBucket) take() (bool, time.Duration) {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	now := tb.now()
	tb.tokens = min(tb.capacity, tb.tokens+now.Sub(tb.lastRefill).Seconds()*tb.rate)
	tb.lastRefill = now

	if tb.tokens >= 1 {
		tb.tokens--
		return true, 0
	}
	return false, time.Duration((1 - tb.tokens) / tb.rate * float64(time.Second))
}

// RateLimit admits rate requests per second with bursts up to burst. All
// requests passing through the middleware share one bucket. Rejected
// requests get 429 with Retry-After and stop the chain.
func RateLimit(rate float64, burst int) pipeline.Middleware {
	if rate <= 0 {
		return func(h pipeline.Handler) pipeline.Handler { return h }
	}
	tb := newTokenBucket(rate, burst)
	return rateLimit(tb)
}

func rateLimit(tb *tokenBucket) pipeline.Middleware {
	return func(next pipeline.Handler) pipeline.Handler {
		return pipeline.HandlerFunc(func(req *pipeline.Request, w http.ResponseWriter) pipeline.Signal {
			ok, wait := tb.take()
			if !ok {
				w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
				http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
				return pipeline.Stop
			}
			return next.Handle(req, w)
		})
	}
}
