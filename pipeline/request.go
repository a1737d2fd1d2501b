package pipeline

import (
	"context"
	"net/http"
	"strings"
)

// Target is the form of the request-target from the request line.
type Target uint8

const (
	// TargetAbsolutePath is origin-form ("/where?q=now").
	TargetAbsolutePath Target = iota
	// TargetAbsoluteURI is absolute-form, as sent to proxies ("http://host/where").
	TargetAbsoluteURI
	// TargetAuthority is authority-form, used by CONNECT ("host:443").
	TargetAuthority
	// TargetAsterisk is asterisk-form ("OPTIONS *").
	TargetAsterisk
)

func (t Target) String() string {
	switch t {
	case TargetAbsolutePath:
		return "absolute-path"
	case TargetAbsoluteURI:
		return "absolute-uri"
	case TargetAuthority:
		return "authority"
	case TargetAsterisk:
		return "asterisk"
	default:
		return "unknown"
	}
}

// Request is the pipeline view of an HTTP request. The target form is fixed
// when the request enters the pipeline; only absolute-path requests expose a
// rewritable path.
type Request struct {
	req    *http.Request
	target Target

	origPath    string
	origRawPath string
}

// NewRequest wraps r. The target form is taken from r.RequestURI for
// server requests and from r.URL for requests built in process.
func NewRequest(r *http.Request) *Request {
	return &Request{
		req:         r,
		target:      targetOf(r),
		origPath:    r.URL.Path,
		origRawPath: r.URL.RawPath,
	}
}

func targetOf(r *http.Request) Target {
	uri := r.RequestURI
	if uri == "" {
		switch {
		case r.Method == http.MethodConnect && r.URL.Path == "":
			return TargetAuthority
		case r.URL.Path == "*":
			return TargetAsterisk
		case r.URL.Scheme != "" || r.URL.Opaque != "":
			return TargetAbsoluteURI
		default:
			return TargetAbsolutePath
		}
	}
	switch {
	case uri == "*":
		return TargetAsterisk
	case strings.HasPrefix(uri, "/"):
		return TargetAbsolutePath
	case r.Method == http.MethodConnect:
		return TargetAuthority
	default:
		return TargetAbsoluteURI
	}
}

// HTTP returns the underlying request. Its URL.Path reflects any rewrite
// currently in effect.
func (r *Request) HTTP() *http.Request {
	return r.req
}

// Context returns the request context.
func (r *Request) Context() context.Context {
	return r.req.Context()
}

// SetContext replaces the request context for later stages.
func (r *Request) SetContext(ctx context.Context) {
	r.req = r.req.WithContext(ctx)
}

// Target returns the request-target form.
func (r *Request) Target() Target {
	return r.target
}

// Path returns the current path and true for absolute-path requests. For any
// other target form it returns "" and false.
func (r *Request) Path() (string, bool) {
	if r.target != TargetAbsolutePath {
		return "", false
	}
	return r.req.URL.Path, true
}

// SetPath rewrites the path seen by later stages. It reports false, leaving
// the request untouched, when the request has no absolute path.
//
// URL.RawPath is dropped while the path differs from the one the request
// arrived with and comes back verbatim once the original path is restored.
func (r *Request) SetPath(path string) bool {
	if r.target != TargetAbsolutePath {
		return false
	}
	r.req.URL.Path = path
	if path == r.origPath {
		r.req.URL.RawPath = r.origRawPath
	} else {
		r.req.URL.RawPath = ""
	}
	return true
}
