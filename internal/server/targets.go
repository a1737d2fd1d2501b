package server

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httputil"
	"net/url"

	"github.com/pkg/errors"

	"github.com/en9inerd/go-mount/config"
	"github.com/en9inerd/go-mount/middleware"
	"github.com/en9inerd/go-mount/pipeline"
)

// newProxy forwards the mount-relative path to upstream, joined onto the
// upstream's own path.
func newProxy(upstream string, logger *slog.Logger) (pipeline.Handler, error) {
	target, err := url.Parse(upstream)
	if err != nil {
		return nil, errors.Wrapf(err, "parse upstream %q", upstream)
	}
	if target.Scheme == "" || target.Host == "" {
		return nil, errors.Errorf("upstream %q is not an absolute URL", upstream)
	}

	rp := &httputil.ReverseProxy{
		Rewrite: func(pr *httputil.ProxyRequest) {
			pr.SetURL(target)
			pr.SetXForwarded()
			if id := middleware.GetRequestID(pr.In.Context()); id != "" {
				pr.Out.Header.Set(middleware.HeaderRequestID, id)
			}
		},
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			sendErrorJSON(w, r, logger, http.StatusBadGateway, err, "upstream "+upstream+" unavailable")
		},
	}
	return pipeline.Terminal(rp), nil
}

func respond(rc config.RespondConfig) pipeline.Handler {
	status := statusOrOK(rc.Status)
	contentType := rc.ContentType
	if contentType == "" {
		contentType = "text/plain; charset=utf-8"
	}
	return pipeline.Terminal(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", contentType)
		w.WriteHeader(status)
		io.WriteString(w, rc.Body)
	}))
}

func statusOrOK(status int) int {
	if status == 0 {
		return http.StatusOK
	}
	return status
}
