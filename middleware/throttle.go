package middleware

import (
	"net/http"

	"github.com/en9inerd/go-mount/pipeline"
)

// ThrottleConfig holds configuration for the throttle middleware
type ThrottleConfig struct {
	Limit   int64
	Message string
}

// Throttle returns a middleware that limits the number of in-flight
// requests passing through it.
func Throttle(limit int64) pipeline.Middleware {
	return ThrottleWithConfig(ThrottleConfig{
		Limit:   limit,
		Message: "too many requests",
	})
}

// ThrottleWithConfig returns a throttle middleware with custom configuration.
func ThrottleWithConfig(cfg ThrottleConfig) pipeline.Middleware {
	if cfg.Limit <= 0 {
		// no throttling
		return func(h pipeline.Handler) pipeline.Handler { return h }
	}

	if cfg.Message == "" {
		cfg.Message = "too many requests"
	}

	// one semaphore shared by every handler this middleware wraps
	ch := make(chan struct{}, cfg.Limit)

	return func(h pipeline.Handler) pipeline.Handler {
		return pipeline.HandlerFunc(func(req *pipeline.Request, w http.ResponseWriter) pipeline.Signal {
			select {
			case ch <- struct{}{}: // acquired slot
				defer func() { <-ch }()
				return h.Handle(req, w)
			default: // no slot available
				http.Error(w, cfg.Message, http.StatusTooManyRequests)
				return pipeline.Stop
			}
		})
	}
}
