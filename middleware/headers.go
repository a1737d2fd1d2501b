package middleware

import (
	"net/http"
	"strings"

	"github.com/en9inerd/go-mount/pipeline"
)

// Headers middleware adds headers to response.
// Header values are sanitized to prevent HTTP header injection attacks.
func Headers(headers ...string) pipeline.Middleware {
	type kv struct{ key, value string }
	parsed := make([]kv, 0, len(headers))
	for _, h := range headers {
		elems := strings.SplitN(h, ":", 2)
		if len(elems) != 2 {
			continue
		}
		value := strings.TrimSpace(elems[1])
		if strings.ContainsAny(value, "\r\n") {
			continue
		}
		parsed = append(parsed, kv{strings.TrimSpace(elems[0]), value})
	}

	return func(next pipeline.Handler) pipeline.Handler {
		return pipeline.HandlerFunc(func(req *pipeline.Request, w http.ResponseWriter) pipeline.Signal {
			for _, h := range parsed {
				w.Header().Set(h.key, h.value)
			}
			return next.Handle(req, w)
		})
	}
}
