package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/en9inerd/go-mount/pipeline"
)

// Timeout puts a deadline on the request context for the wrapped stages and
// hands the original context back to the stages that run afterwards.
// Note: this does not forcibly terminate the handler, it relies on the
// handler checking context.Done() for cooperative cancellation.
func Timeout(timeout time.Duration) pipeline.Middleware {
	return func(next pipeline.Handler) pipeline.Handler {
		return pipeline.HandlerFunc(func(req *pipeline.Request, w http.ResponseWriter) pipeline.Signal {
			parent := req.Context()
			ctx, cancel := context.WithTimeout(parent, timeout)
			defer cancel()

			req.SetContext(ctx)
			defer req.SetContext(parent)
			return next.Handle(req, w)
		})
	}
}
