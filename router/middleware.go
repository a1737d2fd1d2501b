package router

import "github.com/en9inerd/go-mount/pipeline"

// Use appends middleware(s) to the group.
func (g *Group) Use(mw pipeline.Middleware, more ...pipeline.Middleware) {
	if g.routesLocked {
		panic("router: Use called after routes were registered; add middleware before routes or use Group/With")
	}
	g.middlewares = append(g.middlewares, mw)
	g.middlewares = append(g.middlewares, more...)
}

// With returns a new subgroup with the given middleware(s). The subgroup
// runs as the next stage of g.
func (g *Group) With(mw pipeline.Middleware, more ...pipeline.Middleware) *Group {
	ng := g.Group()
	ng.Use(mw, more...)
	return ng
}
