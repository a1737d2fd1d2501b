package pipeline

import "net/http"

// Chain runs its stages in order until one of them stops.
type Chain struct {
	stages []Handler
}

// NewChain creates a chain from stages.
func NewChain(stages ...Handler) *Chain {
	c := &Chain{}
	c.Append(stages...)
	return c
}

// Append adds stages to the end of the chain. Nil stages are skipped.
// Chains must not be modified once they serve requests.
func (c *Chain) Append(stages ...Handler) {
	for _, s := range stages {
		if s != nil {
			c.stages = append(c.stages, s)
		}
	}
}

// Len returns the number of stages.
func (c *Chain) Len() int {
	return len(c.stages)
}

// Handle implements Handler. It returns Stop as soon as a stage stops and
// Continue when every stage let the request through.
func (c *Chain) Handle(req *Request, w http.ResponseWriter) Signal {
	for _, s := range c.stages {
		if s.Handle(req, w) == Stop {
			return Stop
		}
	}
	return Continue
}

// Serve bridges a pipeline to net/http. Requests that run through the whole
// pipeline without a stop are passed to notFound, or http.NotFound when
// notFound is nil.
func Serve(h Handler, notFound http.Handler) http.Handler {
	if notFound == nil {
		notFound = http.NotFoundHandler()
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req := NewRequest(r)
		if h.Handle(req, w) == Continue {
			notFound.ServeHTTP(w, req.HTTP())
		}
	})
}
