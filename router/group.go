package router

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/en9inerd/go-mount/mount"
	"github.com/en9inerd/go-mount/pipeline"
)

// Group represents an ordered set of stages with optional middleware.
type Group struct {
	chain       *pipeline.Chain
	middlewares []pipeline.Middleware

	// routes is the group-local pattern router, added as a stage on the
	// first Handle call.
	routes chi.Router

	// optional custom 404 handler
	notFound http.Handler

	// root points to the root group.
	root *Group

	// mounts lists the mount points registered directly on this group.
	mounts []Mounted

	// routesLocked indicates that stages have been registered and no further
	// middlewares may be added.
	routesLocked bool

	once    sync.Once
	handler pipeline.Handler
	srv     http.Handler
}

// Mounted describes a mount point registered on a group.
type Mounted struct {
	Router *mount.Router
	Group  *Group
}

// New creates a new root Group.
func New() *Group {
	return &Group{chain: pipeline.NewChain()}
}

// ServeHTTP implements http.Handler for the group. Requests are always
// served by the root group.
func (g *Group) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	root := g.rootGroup()
	root.freeze()
	root.srv.ServeHTTP(w, r)
}

// Pipeline returns the group as a pipeline stage: its stages wrapped in its
// middleware.
func (g *Group) Pipeline() pipeline.Handler {
	return pipeline.HandlerFunc(func(req *pipeline.Request, w http.ResponseWriter) pipeline.Signal {
		g.freeze()
		return g.handler.Handle(req, w)
	})
}

// freeze builds the group handler on first use; groups are read-only from
// then on.
func (g *Group) freeze() {
	g.once.Do(func() {
		g.handler = pipeline.Wrap(g.chain, g.middlewares...)
		g.srv = pipeline.Serve(g.handler, g.notFound)
	})
}

// Group creates a new subgroup that runs as the next stage of g.
func (g *Group) Group() *Group {
	ng := g.child()
	g.Stage(ng.Pipeline())
	return ng
}

// Mount creates a new subgroup below prefix. Requests handled by the
// subgroup stop the enclosing chain.
func (g *Group) Mount(prefix string) *Group {
	return g.mountWithPolicy(prefix, mount.AlwaysStop)
}

// MountNonTerminal creates a new subgroup below prefix after which the
// enclosing chain always continues.
func (g *Group) MountNonTerminal(prefix string) *Group {
	return g.mountWithPolicy(prefix, mount.AlwaysContinue)
}

// MountFilter creates a new subgroup below prefix whose own signal is
// reported to the enclosing chain.
func (g *Group) MountFilter(prefix string) *Group {
	return g.mountWithPolicy(prefix, mount.PassThrough)
}

// MountPolicy creates a new subgroup below prefix with an explicit policy.
// It panics if prefix is invalid; route tables are assembled at startup.
func (g *Group) MountPolicy(prefix string, policy mount.Policy) *Group {
	return g.mountWithPolicy(prefix, policy)
}

// Route configures the group inside the provided function.
func (g *Group) Route(fn func(*Group)) { fn(g) }

// Mounts returns the mount points registered directly on the group.
func (g *Group) Mounts() []Mounted {
	return g.mounts
}

// NotFoundHandler sets a custom 404 handler on the root group.
func (g *Group) NotFoundHandler(handler http.HandlerFunc) {
	g.rootGroup().notFound = handler
}

func (g *Group) mountWithPolicy(prefix string, policy mount.Policy) *Group {
	ng := g.child()
	m, err := mount.NewWithPolicy(prefix, ng.Pipeline(), policy)
	if err != nil {
		panic(fmt.Sprintf("router: %v", err))
	}
	g.Stage(m)
	g.mounts = append(g.mounts, Mounted{Router: m, Group: ng})
	return ng
}
