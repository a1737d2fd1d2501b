package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/en9inerd/go-mount/pipeline"
)

// Logger middleware using slog
func Logger(logger *slog.Logger) pipeline.Middleware {
	return func(next pipeline.Handler) pipeline.Handler {
		return pipeline.HandlerFunc(func(req *pipeline.Request, w http.ResponseWriter) pipeline.Signal {
			start := time.Now()
			path, _ := req.Path()
			remote := GetClientIP(req.Context())
			if remote == "" {
				remote = req.HTTP().RemoteAddr
			}

			sig := next.Handle(req, w)

			logger.Info("request",
				"method", req.HTTP().Method,
				"path", path,
				"target", req.Target().String(),
				"signal", sig.String(),
				"request_id", GetRequestID(req.Context()),
				"remote", remote,
				"duration", time.Since(start).String(),
			)
			return sig
		})
	}
}
