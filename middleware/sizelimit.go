package middleware

import (
	"net/http"

	"github.com/en9inerd/go-mount/pipeline"
)

// SizeLimit middleware rejects requests with bodies larger than size.
func SizeLimit(size int64) pipeline.Middleware {
	return func(next pipeline.Handler) pipeline.Handler {
		return pipeline.HandlerFunc(func(req *pipeline.Request, w http.ResponseWriter) pipeline.Signal {
			r := req.HTTP()
			if r.ContentLength > size {
				http.Error(w, "request too large", http.StatusRequestEntityTooLarge)
				return pipeline.Stop
			}
			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, size)
			}
			return next.Handle(req, w)
		})
	}
}
