package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/en9inerd/go-mount/pipeline"
)

// Recoverer is a middleware that recovers from panics, logs the panic and returns a HTTP 500 status if possible.
// If includeStack is true, full stack traces are logged. In production, set includeStack to false to prevent
// information disclosure if logs are exposed.
//
// Mounts below the recoverer put their prefix back while the panic unwinds,
// so the logged URL is the one the request arrived with.
func Recoverer(logger *slog.Logger, includeStack bool) pipeline.Middleware {
	return func(next pipeline.Handler) pipeline.Handler {
		return pipeline.HandlerFunc(func(req *pipeline.Request, w http.ResponseWriter) (sig pipeline.Signal) {
			defer func() {
				if rvr := recover(); rvr != nil {
					if rvr == http.ErrAbortHandler {
						panic(rvr)
					}

					attrs := []any{
						slog.Any("panic", rvr),
						slog.String("url", req.HTTP().URL.String()),
						slog.String("remote_addr", req.HTTP().RemoteAddr),
					}
					if includeStack {
						attrs = append(attrs, slog.String("stack", string(debug.Stack())))
					}
					logger.Error("panic recovered", attrs...)

					http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
					sig = pipeline.Stop
				}
			}()
			return next.Handle(req, w)
		})
	}
}
