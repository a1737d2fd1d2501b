package middleware

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/en9inerd/go-mount/pipeline"
)

var privateNets []*net.IPNet

func init() {
	cidrs := []string{
		// IPv4 Private
		"10.0.0.0/8",
		"172.16.0.0/12",
		"192.168.0.0/16",
		// IPv4 Link-Local
		"169.254.0.0/16",
		// IPv4 Shared Address Space (RFC 6598)
		"100.64.0.0/10",
		// IPv4 Benchmarking (RFC 2544)
		"198.18.0.0/15",
		// IPv6 Unique Local Addresses (ULA)
		"fc00::/7",
		// IPv6 Link-local
		"fe80::/10",
	}

	for _, cidr := range cidrs {
		_, network, err := net.ParseCIDR(cidr)
		if err == nil {
			privateNets = append(privateNets, network)
		}
	}
}

type clientIPKey struct{}

// RealIP stores the client address in the request context. Forwarding
// headers are honoured only when the connection comes from a loopback or
// private peer, i.e. a proxy in front of this server.
func RealIP() pipeline.Middleware {
	return func(next pipeline.Handler) pipeline.Handler {
		return pipeline.HandlerFunc(func(req *pipeline.Request, w http.ResponseWriter) pipeline.Signal {
			if ip, err := clientIP(req.HTTP()); err == nil {
				req.SetContext(context.WithValue(req.Context(), clientIPKey{}, ip))
			}
			return next.Handle(req, w)
		})
	}
}

// GetClientIP returns the address stored by RealIP, or "".
func GetClientIP(ctx context.Context) string {
	ip, _ := ctx.Value(clientIPKey{}).(string)
	return ip
}

func clientIP(r *http.Request) (string, error) {
	peer := r.RemoteAddr
	if host, _, err := net.SplitHostPort(peer); err == nil {
		peer = host
	}
	peerIP := net.ParseIP(peer)
	if peerIP == nil {
		return "", fmt.Errorf("no valid IP found in request: %q", r.RemoteAddr)
	}
	if !peerIP.IsLoopback() && !isPrivateSubnet(peerIP) {
		return peer, nil
	}
	if ip := forwardedIP(r.Header); ip != "" {
		return ip, nil
	}
	return peer, nil
}

// forwardedIP prefers the right-most public address in the forwarding
// headers and falls back to the first valid one.
func forwardedIP(h http.Header) string {
	var firstValidIP string

	for _, header := range []string{"X-Forwarded-For", "X-Real-Ip"} {
		hv := h.Get(header)
		if hv == "" {
			continue
		}

		parts := strings.Split(hv, ",")
		for _, ipStr := range parts {
			ipStr = strings.TrimSpace(ipStr)
			if firstValidIP == "" && net.ParseIP(ipStr) != nil {
				firstValidIP = ipStr
			}
		}

		for i := len(parts) - 1; i >= 0; i-- {
			ipStr := strings.TrimSpace(parts[i])
			ip := net.ParseIP(ipStr)
			if ip != nil && ip.IsGlobalUnicast() && !isPrivateSubnet(ip) {
				return ipStr
			}
		}
	}
	return firstValidIP
}

func isPrivateSubnet(ip net.IP) bool {
	for _, n := range privateNets {
		if n.Contains(ip) {
			return true
		}
	}
	return false
}
