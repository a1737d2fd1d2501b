package mount

import (
	"bufio"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/en9inerd/go-mount/pipeline"
)

// spy records the path it was called with and returns a fixed signal.
type spy struct {
	sig   pipeline.Signal
	calls int
	seen  []string
}

func (p *spy) Handle(req *pipeline.Request, w http.ResponseWriter) pipeline.Signal {
	p.calls++
	path, _ := req.Path()
	p.seen = append(p.seen, path)
	return p.sig
}

func newReq(path string) *pipeline.Request {
	return pipeline.NewRequest(httptest.NewRequest(http.MethodGet, path, nil))
}

func TestConstructorsSelectPolicy(t *testing.T) {
	nested := &spy{}

	r, err := New("/a", nested)
	require.NoError(t, err)
	assert.Equal(t, AlwaysStop, r.Policy())

	r, err = NonTerminal("/a", nested)
	require.NoError(t, err)
	assert.Equal(t, AlwaysContinue, r.Policy())

	r, err = Filter("/a", nested)
	require.NoError(t, err)
	assert.Equal(t, PassThrough, r.Policy())
	assert.Equal(t, "/a", r.Prefix())
	assert.Equal(t, "mount /a (filter)", r.String())
}

func TestInvalidPrefix(t *testing.T) {
	for _, prefix := range []string{"", "/a(", "/[z-a]"} {
		t.Run(prefix, func(t *testing.T) {
			_, err := New(prefix, &spy{})
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidPrefix), "got %v", err)
			assert.ErrorIs(t, CheckPrefix(prefix), ErrInvalidPrefix)
		})
	}
	assert.NoError(t, CheckPrefix("/v[0-9]+"))
}

func TestNilNestedRejected(t *testing.T) {
	_, err := New("/a", nil)
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrInvalidPrefix))
}

func TestMustPanics(t *testing.T) {
	assert.Panics(t, func() { Must(New("(", &spy{})) })
	assert.NotPanics(t, func() { Must(New("/ok", &spy{})) })
}

func TestNoMatchLeavesRequestUntouched(t *testing.T) {
	nested := &spy{sig: pipeline.Stop}
	r := Must(New("/api", nested))

	hr := httptest.NewRequest(http.MethodGet, "/other/a%2Fb?x=1", nil)
	before := *hr.URL
	rec := httptest.NewRecorder()

	sig := r.Handle(pipeline.NewRequest(hr), rec)

	assert.Equal(t, pipeline.Continue, sig)
	assert.Equal(t, 0, nested.calls)
	assert.Equal(t, before, *hr.URL)
	assert.Equal(t, 0, rec.Body.Len())
	assert.Empty(t, rec.Header())
	assert.False(t, rec.Flushed)
}

func TestPrefixIsAnchored(t *testing.T) {
	nested := &spy{sig: pipeline.Stop}
	r := Must(New("/api", nested))

	assert.Equal(t, pipeline.Continue, r.Handle(newReq("/v1/api"), httptest.NewRecorder()))
	assert.Equal(t, 0, nested.calls)
}

func TestStripAndRestore(t *testing.T) {
	nested := &spy{sig: pipeline.Continue}
	r := Must(New("/api", nested))

	req := newReq("/api/users/7")
	sig := r.Handle(req, httptest.NewRecorder())

	assert.Equal(t, pipeline.Stop, sig)
	assert.Equal(t, []string{"/users/7"}, nested.seen)
	path, _ := req.Path()
	assert.Equal(t, "/api/users/7", path)
}

func TestRestoreSeenBySiblings(t *testing.T) {
	var after string
	chain := pipeline.NewChain(
		Must(NonTerminal("/api", &spy{sig: pipeline.Stop})),
		pipeline.HandlerFunc(func(req *pipeline.Request, w http.ResponseWriter) pipeline.Signal {
			after, _ = req.Path()
			return pipeline.Stop
		}),
	)

	chain.Handle(newReq("/api/x"), httptest.NewRecorder())
	assert.Equal(t, "/api/x", after)
}

func TestRestorePrependsToRewrittenPath(t *testing.T) {
	rewrite := pipeline.HandlerFunc(func(req *pipeline.Request, w http.ResponseWriter) pipeline.Signal {
		req.SetPath("/rewritten")
		return pipeline.Stop
	})
	r := Must(New("/api", rewrite))

	req := newReq("/api/x")
	r.Handle(req, httptest.NewRecorder())

	path, _ := req.Path()
	assert.Equal(t, "/api/rewritten", path)
}

func TestNoSegmentAwareness(t *testing.T) {
	nested := &spy{sig: pipeline.Stop}
	r := Must(New("/api", nested))

	req := newReq("/apifoo")
	assert.Equal(t, pipeline.Stop, r.Handle(req, httptest.NewRecorder()))
	assert.Equal(t, []string{"foo"}, nested.seen)

	path, _ := req.Path()
	assert.Equal(t, "/apifoo", path)
}

func TestEmptyRemainder(t *testing.T) {
	nested := &spy{sig: pipeline.Stop}
	r := Must(New("/api", nested))

	req := newReq("/api")
	r.Handle(req, httptest.NewRecorder())

	assert.Equal(t, []string{""}, nested.seen)
	path, _ := req.Path()
	assert.Equal(t, "/api", path)
}

func TestTerminationPolicy(t *testing.T) {
	tests := []struct {
		name   string
		ctor   func(string, pipeline.Handler) (*Router, error)
		nested pipeline.Signal
		want   pipeline.Signal
	}{
		{"new/stop", New, pipeline.Stop, pipeline.Stop},
		{"new/continue", New, pipeline.Continue, pipeline.Stop},
		{"non-terminal/stop", NonTerminal, pipeline.Stop, pipeline.Continue},
		{"non-terminal/continue", NonTerminal, pipeline.Continue, pipeline.Continue},
		{"filter/stop", Filter, pipeline.Stop, pipeline.Stop},
		{"filter/continue", Filter, pipeline.Continue, pipeline.Continue},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := tt.ctor("/m", &spy{sig: tt.nested})
			require.NoError(t, err)
			assert.Equal(t, tt.want, r.Handle(newReq("/m/x"), httptest.NewRecorder()))
		})
	}
}

func TestNonAbsolutePathRequests(t *testing.T) {
	raws := []string{
		"CONNECT example.com:443 HTTP/1.1\r\nHost: example.com:443\r\n\r\n",
		"OPTIONS * HTTP/1.1\r\nHost: example.com\r\n\r\n",
		"GET http://example.com/ HTTP/1.1\r\nHost: example.com\r\n\r\n",
	}
	for _, raw := range raws {
		hr, err := http.ReadRequest(bufio.NewReader(strings.NewReader(raw)))
		require.NoError(t, err)
		before := *hr.URL

		// ".*" would match any path, so only the target form keeps it out.
		nested := &spy{sig: pipeline.Stop}
		r := Must(New(".*", nested))

		assert.Equal(t, pipeline.Continue, r.Handle(pipeline.NewRequest(hr), httptest.NewRecorder()))
		assert.Equal(t, 0, nested.calls)
		assert.Equal(t, before, *hr.URL)
	}
}

func TestNestedMounts(t *testing.T) {
	inner := &spy{sig: pipeline.Stop}
	b := Must(New("/b", inner))
	a := Must(NonTerminal("/a", b))

	var after string
	chain := pipeline.NewChain(a, pipeline.HandlerFunc(func(req *pipeline.Request, w http.ResponseWriter) pipeline.Signal {
		after, _ = req.Path()
		return pipeline.Stop
	}))

	chain.Handle(newReq("/a/b/x"), httptest.NewRecorder())

	assert.Equal(t, []string{"/x"}, inner.seen)
	assert.Equal(t, "/a/b/x", after)
}

func TestRestoreOnPanic(t *testing.T) {
	boom := pipeline.HandlerFunc(func(req *pipeline.Request, w http.ResponseWriter) pipeline.Signal {
		panic("boom")
	})
	r := Must(New("/api", boom))
	req := newReq("/api/x")

	assert.PanicsWithValue(t, "boom", func() { r.Handle(req, httptest.NewRecorder()) })

	path, _ := req.Path()
	assert.Equal(t, "/api/x", path)
}

func TestRegexPrefixRoundTrip(t *testing.T) {
	nested := &spy{sig: pipeline.Stop}
	r := Must(New("/v[0-9]+", nested))

	req := newReq("/v12/items")
	r.Handle(req, httptest.NewRecorder())

	assert.Equal(t, []string{"/items"}, nested.seen)
	path, _ := req.Path()
	assert.Equal(t, "/v12/items", path)
}

func TestAlternationStaysAnchored(t *testing.T) {
	nested := &spy{sig: pipeline.Stop}
	r := Must(New("/a|/b", nested))

	assert.Equal(t, pipeline.Continue, r.Handle(newReq("/x/b"), httptest.NewRecorder()))
	assert.Equal(t, pipeline.Stop, r.Handle(newReq("/b/x"), httptest.NewRecorder()))
	assert.Equal(t, []string{"/x"}, nested.seen)
}

func TestRawPathRoundTrip(t *testing.T) {
	nested := &spy{sig: pipeline.Stop}
	r := Must(New("/files", nested))

	hr := httptest.NewRequest(http.MethodGet, "/files/a%2Fb", nil)
	r.Handle(pipeline.NewRequest(hr), httptest.NewRecorder())

	assert.Equal(t, []string{"/a/b"}, nested.seen)
	assert.Equal(t, "/files/a/b", hr.URL.Path)
	assert.Equal(t, "/files/a%2Fb", hr.URL.RawPath)
}

func TestNestedHTTPHandlerSeesStrippedPath(t *testing.T) {
	var seen string
	r := Must(New("/static", pipeline.Terminal(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r.URL.Path
		w.WriteHeader(http.StatusTeapot)
	}))))

	rec := httptest.NewRecorder()
	pipeline.Serve(r, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/static/app.js", nil))

	assert.Equal(t, "/app.js", seen)
	assert.Equal(t, http.StatusTeapot, rec.Code)
}

func TestParsePolicy(t *testing.T) {
	tests := map[string]Policy{
		"":             AlwaysStop,
		"terminal":     AlwaysStop,
		"Stop":         AlwaysStop,
		"non-terminal": AlwaysContinue,
		"continue":     AlwaysContinue,
		"filter":       PassThrough,
		"pass-through": PassThrough,
	}
	for in, want := range tests {
		got, err := ParsePolicy(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParsePolicy("sometimes")
	assert.Error(t, err)
}

func TestConcurrentHandle(t *testing.T) {
	leaf := pipeline.HandlerFunc(func(req *pipeline.Request, w http.ResponseWriter) pipeline.Signal {
		path, _ := req.Path()
		_, _ = w.Write([]byte(path))
		return pipeline.Stop
	})
	r := Must(New("/a", Must(Filter("/b", leaf))))

	const workers = 64
	var wg sync.WaitGroup
	errs := make(chan string, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			path := "/a/b/" + strconv.Itoa(i)
			req := newReq(path)
			rec := httptest.NewRecorder()
			sig := r.Handle(req, rec)

			got, _ := req.Path()
			if sig != pipeline.Stop || rec.Body.String() != "/"+strconv.Itoa(i) || got != path {
				errs <- path + ": " + sig.String() + " " + rec.Body.String() + " " + got
			}
		}(i)
	}
	wg.Wait()
	close(errs)

	for e := range errs {
		t.Error(e)
	}
}
