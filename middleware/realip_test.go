package middleware

import (
	"net"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/en9inerd/go-mount/pipeline"
)

func newIPRequest(headers map[string]string, remoteAddr string) *http.Request {
	r := &http.Request{
		Header:     make(http.Header),
		RemoteAddr: remoteAddr,
	}
	for k, v := range headers {
		r.Header.Set(k, v)
	}
	return r
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		headers    map[string]string
		remoteAddr string
		wantIP     string
		wantErr    bool
	}{
		{"PublicIPInXForwardedFor", map[string]string{"X-Forwarded-For": "192.168.0.1, 8.8.8.8"}, "10.0.0.1:12345", "8.8.8.8", false},
		{"FallsBackToFirstPrivateIP", map[string]string{"X-Forwarded-For": "192.168.1.10, 10.0.0.5"}, "10.0.0.2:8080", "192.168.1.10", false},
		{"UsesXRealIPIfPresent", map[string]string{"X-Real-Ip": "8.8.4.4"}, "127.0.0.1:12345", "8.8.4.4", false},
		{"PublicPeerIgnoresHeaders", map[string]string{"X-Forwarded-For": "8.8.8.8"}, "203.0.113.1:8080", "203.0.113.1", false},
		{"FallsBackToRemoteAddr", nil, "203.0.113.99:5678", "203.0.113.99", false},
		{"InvalidRemoteAddr", nil, "not-an-ip", "", true},
		{"MultiplePublicIPsInXForwardedFor", map[string]string{"X-Forwarded-For": "192.168.0.1, 8.8.8.8, 1.1.1.1"}, "10.0.0.1:12345", "1.1.1.1", false},
		{"HeaderWithInvalidIPs", map[string]string{"X-Forwarded-For": "invalid-ip, also-bad, 8.8.8.8"}, "10.0.0.1:12345", "8.8.8.8", false},
		{"IPv6PublicAndPrivateMix", map[string]string{"X-Forwarded-For": "fc00::1, 2001:4860:4860::8888"}, "[fe80::1]:1234", "2001:4860:4860::8888", false},
		{"RemoteAddrWithoutPort", nil, "203.0.113.77", "203.0.113.77", false},
		{"HeaderInvalidPeerPrivate", map[string]string{"X-Forwarded-For": "not-an-ip"}, "10.1.1.1:1234", "10.1.1.1", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ip, err := clientIP(newIPRequest(tt.headers, tt.remoteAddr))
			if (err != nil) != tt.wantErr {
				t.Fatalf("unexpected error: %v", err)
			}
			if ip != tt.wantIP {
				t.Errorf("expected %s, got %s", tt.wantIP, ip)
			}
		})
	}
}

func TestIsPrivateSubnet(t *testing.T) {
	cases := []struct {
		ip       string
		expected bool
	}{
		{"192.168.1.1", true},
		{"10.0.0.1", true},
		{"172.16.5.5", true},
		{"100.64.0.1", true},
		{"fc00::1", true},
		{"fe80::1", true},
		{"8.8.8.8", false},
		{"2001:4860:4860::8888", false},
	}

	for _, c := range cases {
		if got := isPrivateSubnet(net.ParseIP(c.ip)); got != c.expected {
			t.Errorf("ip %s: expected %v, got %v", c.ip, c.expected, got)
		}
	}
}

func TestRealIPStoresClientIP(t *testing.T) {
	var got string
	h := RealIP()(pipeline.HandlerFunc(func(req *pipeline.Request, w http.ResponseWriter) pipeline.Signal {
		got = GetClientIP(req.Context())
		return pipeline.Stop
	}))

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "127.0.0.1:4000"
	r.Header.Set("X-Forwarded-For", "8.8.8.8")
	run(h, r)

	if got != "8.8.8.8" {
		t.Fatalf("expected forwarded client IP, got %q", got)
	}
}
