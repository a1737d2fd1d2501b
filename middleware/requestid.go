package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/en9inerd/go-mount/pipeline"
)

// HeaderRequestID carries the request ID in both directions.
const HeaderRequestID = "X-Request-ID"

type requestIDKey struct{}

// RequestID tags each request with an ID, reusing a sane incoming
// X-Request-ID and generating a UUID otherwise. The ID is stored in the
// request context and echoed in the response header.
func RequestID() pipeline.Middleware {
	return func(next pipeline.Handler) pipeline.Handler {
		return pipeline.HandlerFunc(func(req *pipeline.Request, w http.ResponseWriter) pipeline.Signal {
			id := normalizeRequestID(req.HTTP().Header.Get(HeaderRequestID))
			if id == "" {
				id = uuid.New().String()
			}
			w.Header().Set(HeaderRequestID, id)
			req.SetContext(context.WithValue(req.Context(), requestIDKey{}, id))
			return next.Handle(req, w)
		})
	}
}

// GetRequestID retrieves the request ID from context.
// Returns an empty string if no request ID is set.
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

func normalizeRequestID(v string) string {
	v = strings.TrimSpace(v)
	if v == "" || strings.ContainsAny(v, "\r\n") {
		return ""
	}
	const maxLen = 128
	if len(v) > maxLen {
		v = v[:maxLen]
	}
	return v
}
