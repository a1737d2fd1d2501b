package pipeline

import "net/http"

// Handler is a pipeline stage.
type Handler interface {
	Handle(req *Request, w http.ResponseWriter) Signal
}

// HandlerFunc adapts an ordinary function to a Handler.
type HandlerFunc func(req *Request, w http.ResponseWriter) Signal

// Handle calls f(req, w).
func (f HandlerFunc) Handle(req *Request, w http.ResponseWriter) Signal {
	return f(req, w)
}

// Middleware wraps a Handler, typically to add cross-cutting behavior.
type Middleware func(next Handler) Handler

// Wrap applies middleware in order, the first one being outermost.
func Wrap(h Handler, mws ...Middleware) Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

// Terminal returns a stage that serves h on the current, possibly rewritten,
// path and stops the chain.
func Terminal(h http.Handler) Handler {
	return HandlerFunc(func(req *Request, w http.ResponseWriter) Signal {
		h.ServeHTTP(w, req.HTTP())
		return Stop
	})
}

// When returns a stage that runs h for requests accepted by match and lets
// every other request continue.
func When(match func(*Request) bool, h Handler) Handler {
	return HandlerFunc(func(req *Request, w http.ResponseWriter) Signal {
		if !match(req) {
			return Continue
		}
		return h.Handle(req, w)
	})
}
