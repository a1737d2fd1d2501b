package router

import "github.com/en9inerd/go-mount/pipeline"

func (g *Group) child() *Group {
	ng := &Group{
		chain: pipeline.NewChain(),
		root:  g.root,
	}
	if ng.root == nil {
		ng.root = g
	}
	return ng
}

func (g *Group) rootGroup() *Group {
	if g.root != nil {
		return g.root
	}
	return g
}

func (g *Group) lockRoot() { g.routesLocked = true }
