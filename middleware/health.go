package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/en9inerd/go-mount/pipeline"
)

type HealthResponse struct {
	Status string `json:"status"`
}

// Health answers GET /health relative to wherever it is mounted.
func Health(next pipeline.Handler) pipeline.Handler {
	return pipeline.HandlerFunc(func(req *pipeline.Request, w http.ResponseWriter) pipeline.Signal {
		if path, ok := req.Path(); ok && path == "/health" && req.HTTP().Method == http.MethodGet {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(HealthResponse{Status: "ok"})
			return pipeline.Stop
		}
		return next.Handle(req, w)
	})
}
