package mount

import (
	"errors"
	"fmt"
	"net/http"
	"regexp"

	"github.com/en9inerd/go-mount/pipeline"
)

// ErrInvalidPrefix is returned when a prefix cannot be compiled into an
// anchored matcher.
var ErrInvalidPrefix = errors.New("mount: invalid prefix")

// Router is a mount point: a prefix and the pipeline it delegates to.
// It is safe for concurrent use; all per-request state lives in the
// request.
type Router struct {
	prefix  string
	matcher *regexp.Regexp
	nested  pipeline.Handler
	policy  Policy
}

// New mounts nested under prefix and stops the enclosing chain after every
// matched request.
func New(prefix string, nested pipeline.Handler) (*Router, error) {
	return NewWithPolicy(prefix, nested, AlwaysStop)
}

// NonTerminal mounts nested under prefix and lets the enclosing chain
// continue after every matched request.
func NonTerminal(prefix string, nested pipeline.Handler) (*Router, error) {
	return NewWithPolicy(prefix, nested, AlwaysContinue)
}

// Filter mounts nested under prefix and reports the nested pipeline's own
// signal.
func Filter(prefix string, nested pipeline.Handler) (*Router, error) {
	return NewWithPolicy(prefix, nested, PassThrough)
}

// NewWithPolicy mounts nested under prefix with an explicit policy.
func NewWithPolicy(prefix string, nested pipeline.Handler, policy Policy) (*Router, error) {
	if nested == nil {
		return nil, errors.New("mount: nil nested pipeline")
	}
	if policy > PassThrough {
		return nil, fmt.Errorf("mount: unknown policy %d", policy)
	}
	matcher, err := compile(prefix)
	if err != nil {
		return nil, err
	}
	return &Router{
		prefix:  prefix,
		matcher: matcher,
		nested:  nested,
		policy:  policy,
	}, nil
}

// CheckPrefix reports whether prefix can be mounted.
func CheckPrefix(prefix string) error {
	_, err := compile(prefix)
	return err
}

func compile(prefix string) (*regexp.Regexp, error) {
	if prefix == "" {
		return nil, fmt.Errorf("%w: empty prefix", ErrInvalidPrefix)
	}
	re, err := regexp.Compile("^(?:" + prefix + ")")
	if err != nil {
		return nil, fmt.Errorf("%w %q: %w", ErrInvalidPrefix, prefix, err)
	}
	return re, nil
}

// Must is a helper that wraps a call to a constructor and panics if the
// error is non-nil. It is intended for route tables built at startup.
func Must(r *Router, err error) *Router {
	if err != nil {
		panic(err)
	}
	return r
}

// Prefix returns the configured prefix.
func (m *Router) Prefix() string { return m.prefix }

// Policy returns the termination policy.
func (m *Router) Policy() Policy { return m.policy }

func (m *Router) String() string {
	return fmt.Sprintf("mount %s (%s)", m.prefix, m.policy)
}

// Match reports the leading text of path claimed by this mount.
func (m *Router) Match(path string) (string, bool) {
	loc := m.matcher.FindStringIndex(path)
	if loc == nil {
		return "", false
	}
	return path[:loc[1]], true
}

// Handle implements pipeline.Handler.
func (m *Router) Handle(req *pipeline.Request, w http.ResponseWriter) pipeline.Signal {
	path, ok := req.Path()
	if !ok {
		return pipeline.Continue
	}
	matched, ok := m.Match(path)
	if !ok {
		return pipeline.Continue
	}

	req.SetPath(path[len(matched):])
	sig := m.delegate(req, w, matched)
	return m.policy.resolve(sig)
}

// delegate runs the nested pipeline and puts the stripped text back in
// front of whatever path is current afterwards, even if nested panics.
func (m *Router) delegate(req *pipeline.Request, w http.ResponseWriter, matched string) pipeline.Signal {
	defer func() {
		cur, ok := req.Path()
		if !ok || !req.SetPath(matched+cur) {
			panic(fmt.Sprintf("mount %s: request lost its absolute path during delegation", m.prefix))
		}
	}()
	return m.nested.Handle(req, w)
}
