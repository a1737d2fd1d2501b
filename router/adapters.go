package router

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/mux"

	"github.com/en9inerd/go-mount/pipeline"
)

// Chi turns a chi router into a pipeline stage. Requests matching one of its
// routes are served and stop the chain; all others continue.
func Chi(r chi.Router) pipeline.Handler {
	return pipeline.HandlerFunc(func(req *pipeline.Request, w http.ResponseWriter) pipeline.Signal {
		path, ok := req.Path()
		if !ok {
			return pipeline.Continue
		}
		if path == "" {
			path = "/"
		}
		hr := req.HTTP()
		if !r.Match(chi.NewRouteContext(), hr.Method, path) {
			return pipeline.Continue
		}
		// chi routes on RoutePath when a route context is present, so an
		// enclosing chi router cannot leak its own routing state in here.
		rctx := chi.NewRouteContext()
		rctx.RoutePath = path
		r.ServeHTTP(w, hr.WithContext(context.WithValue(hr.Context(), chi.RouteCtxKey, rctx)))
		return pipeline.Stop
	})
}

// GorillaMux turns a gorilla/mux router into a pipeline stage. Method
// mismatches and unmatched paths continue, leaving 404/405 handling to the
// enclosing pipeline.
func GorillaMux(r *mux.Router) pipeline.Handler {
	return pipeline.HandlerFunc(func(req *pipeline.Request, w http.ResponseWriter) pipeline.Signal {
		if _, ok := req.Path(); !ok {
			return pipeline.Continue
		}
		var match mux.RouteMatch
		if !r.Match(req.HTTP(), &match) || match.MatchErr != nil {
			return pipeline.Continue
		}
		r.ServeHTTP(w, req.HTTP())
		return pipeline.Stop
	})
}
