package server

import (
	"net/http"

	"github.com/pkg/errors"

	"github.com/en9inerd/go-mount/config"
	"github.com/en9inerd/go-mount/middleware"
	"github.com/en9inerd/go-mount/mount"
	"github.com/en9inerd/go-mount/router"
)

// Route is one entry of the flattened mount table.
type Route struct {
	Path   string // prefixes of all enclosing mounts, concatenated
	Prefix string
	Policy mount.Policy
	Target string
	Depth  int
}

// Hit is a mount visited while resolving a path, with the path its
// nested pipeline sees.
type Hit struct {
	Route
	Matched   string
	Remaining string
}

type node struct {
	route    Route
	router   *mount.Router
	children []*node
}

// mountAll registers mounts on g. Nested mounts are registered before the
// mount's own target so a catch-all target cannot shadow them.
func (s *Server) mountAll(g *router.Group, mounts []config.MountConfig, parent string, depth int) ([]*node, error) {
	nodes := make([]*node, 0, len(mounts))
	for _, mc := range mounts {
		full := parent + mc.Prefix
		policy, err := mount.ParsePolicy(mc.Policy)
		if err != nil {
			return nil, errors.Wrapf(err, "mount %s", full)
		}
		if err := mount.CheckPrefix(mc.Prefix); err != nil {
			return nil, errors.Wrapf(err, "mount %s", full)
		}

		sub := g.MountPolicy(mc.Prefix, policy)
		mounted := g.Mounts()[len(g.Mounts())-1]

		if s.metrics != nil {
			sub.Use(s.metrics.Middleware(full))
		}
		if rl := mc.RateLimit; rl != nil {
			sub.Use(middleware.RateLimit(rl.RPS, rl.Burst))
		}
		if len(mc.Headers) > 0 {
			sub.Use(middleware.Headers(mc.Headers...))
		}

		n := &node{
			route: Route{
				Path:   full,
				Prefix: mc.Prefix,
				Policy: policy,
				Target: describeTarget(mc),
				Depth:  depth,
			},
			router: mounted.Router,
		}

		children, err := s.mountAll(sub, mc.Mounts, full, depth+1)
		if err != nil {
			return nil, err
		}
		n.children = children

		if err := s.attachTarget(sub, mc); err != nil {
			return nil, errors.Wrapf(err, "mount %s", full)
		}
		nodes = append(nodes, n)
	}
	return nodes, nil
}

func (s *Server) attachTarget(g *router.Group, mc config.MountConfig) error {
	switch {
	case mc.Static != nil:
		g.HandleFiles("/", http.Dir(mc.Static.Dir))
	case mc.Proxy != nil:
		h, err := newProxy(mc.Proxy.Upstream, s.logger)
		if err != nil {
			return err
		}
		g.Stage(h)
	case mc.Respond != nil:
		g.Stage(respond(*mc.Respond))
	}
	return nil
}

// Routes returns the mount table in registration order, depth first.
func (s *Server) Routes() []Route {
	var out []Route
	var walk func([]*node)
	walk = func(nodes []*node) {
		for _, n := range nodes {
			out = append(out, n.route)
			walk(n.children)
		}
	}
	walk(s.tree)
	return out
}

// Trace reports the mounts a request for path would enter, in the order the
// pipeline visits them. A matching terminal mount ends its level since it
// stops the enclosing chain; for the other policies the nested pipeline is
// assumed to continue.
func (s *Server) Trace(path string) []Hit {
	var hits []Hit
	var walk func([]*node, string)
	walk = func(nodes []*node, path string) {
		for _, n := range nodes {
			matched, ok := n.router.Match(path)
			if !ok {
				continue
			}
			rest := path[len(matched):]
			hits = append(hits, Hit{Route: n.route, Matched: matched, Remaining: rest})
			walk(n.children, rest)
			if n.route.Policy == mount.AlwaysStop {
				break
			}
		}
	}
	walk(s.tree, path)
	return hits
}

func describeTarget(mc config.MountConfig) string {
	switch {
	case mc.Static != nil:
		return "static " + mc.Static.Dir
	case mc.Proxy != nil:
		return "proxy " + mc.Proxy.Upstream
	case mc.Respond != nil:
		return "respond " + http.StatusText(statusOrOK(mc.Respond.Status))
	default:
		return "-"
	}
}
