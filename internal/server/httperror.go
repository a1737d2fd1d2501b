package server

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/en9inerd/go-mount/middleware"
)

type errorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

// sendErrorJSON logs err, if any, and writes a JSON error body.
func sendErrorJSON(w http.ResponseWriter, r *http.Request, l *slog.Logger, code int, err error, msg string) {
	id := middleware.GetRequestID(r.Context())
	if err != nil && l != nil {
		l.Error(msg, "code", code, "path", r.URL.Path, "request_id", id, "error", err)
	}

	buf := &bytes.Buffer{}
	if e := json.NewEncoder(buf).Encode(errorResponse{Error: msg, RequestID: id}); e != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(code)
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) notFound(w http.ResponseWriter, r *http.Request) {
	sendErrorJSON(w, r, nil, http.StatusNotFound, nil, "no mount matches "+r.URL.Path)
}
