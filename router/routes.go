package router

import (
	"net/http"
	"regexp"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/en9inerd/go-mount/mount"
	"github.com/en9inerd/go-mount/pipeline"
)

// matches "METHOD /path"
var reMethodPattern = regexp.MustCompile(`^(\S+)\s+(.+)$`)

// Stage appends a pipeline stage to the group.
func (g *Group) Stage(h pipeline.Handler) {
	g.lockRoot()
	g.chain.Append(h)
}

// Handle registers a route. The pattern may carry an HTTP method prefix
// ("GET /users/{id}") and is matched against the mount-relative path.
func (g *Group) Handle(pattern string, handler http.Handler) {
	g.register(pattern, handler)
}

// HandleFunc registers a route handler function.
func (g *Group) HandleFunc(pattern string, handler http.HandlerFunc) {
	g.register(pattern, handler)
}

// HandleFiles serves static files below prefix.
func (g *Group) HandleFiles(prefix string, root http.FileSystem) {
	prefix = strings.TrimSuffix(prefix, "/")
	if prefix == "" {
		g.Stage(fileServer(root))
		return
	}
	m := mount.Must(mount.Filter(regexp.QuoteMeta(prefix), fileServer(root)))
	g.Stage(m)
}

func (g *Group) register(pattern string, handler http.Handler) {
	g.lockRoot()
	if g.routes == nil {
		g.routes = chi.NewRouter()
		g.chain.Append(Chi(g.routes))
	}

	if m := reMethodPattern.FindStringSubmatch(pattern); len(m) > 2 {
		g.routes.Method(m[1], m[2], handler)
		return
	}
	g.routes.Handle(pattern, handler)
}

// fileServer serves files for the empty path and paths below "/", and lets
// anything else (such as "foo" left over from "/staticfoo") continue.
func fileServer(root http.FileSystem) pipeline.Handler {
	fs := http.FileServer(root)
	return pipeline.HandlerFunc(func(req *pipeline.Request, w http.ResponseWriter) pipeline.Signal {
		path, ok := req.Path()
		if !ok || (path != "" && !strings.HasPrefix(path, "/")) {
			return pipeline.Continue
		}
		r := req.HTTP()
		if path == "" {
			// http.FileServer rewrites a relative path in place; hand it a copy.
			r2 := new(http.Request)
			*r2 = *r
			u := *r.URL
			u.Path, u.RawPath = "/", ""
			r2.URL = &u
			r = r2
		}
		fs.ServeHTTP(w, r)
		return pipeline.Stop
	})
}
