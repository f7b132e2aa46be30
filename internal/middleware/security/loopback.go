package security

import (
	"net"
	"net/http"
	"strings"
	"sync/atomic"
)

// GuardMetrics counts rejected requests.
type GuardMetrics struct {
	ForeignPeers int64
	ForeignHosts int64
}

// LoopbackGuard keeps the ledger API local. It rejects connections that do
// not come from a loopback address, and requests whose Host header names
// anything but a loopback host, which blocks DNS rebinding from a browser.
type LoopbackGuard struct {
	metrics GuardMetrics
}

func NewLoopbackGuard() *LoopbackGuard {
	return &LoopbackGuard{}
}

// IsLoopbackPeer reports whether the direct peer is a loopback address.
// Forwarding headers are ignored; there is no trusted proxy in front.
func (g *LoopbackGuard) IsLoopbackPeer(r *http.Request) bool {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

// IsLoopbackHost reports whether the Host header names a loopback host.
func (g *LoopbackGuard) IsLoopbackHost(r *http.Request) bool {
	host := r.Host
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	host = strings.Trim(host, "[]")
	if strings.EqualFold(host, "localhost") {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

// Middleware answers 403 for anything that is not local.
func (g *LoopbackGuard) Middleware(onReject func(http.ResponseWriter, *http.Request)) func(http.Handler) http.Handler {
	if onReject == nil {
		onReject = func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "forbidden", http.StatusForbidden)
		}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !g.IsLoopbackPeer(r) {
				atomic.AddInt64(&g.metrics.ForeignPeers, 1)
				onReject(w, r)
				return
			}
			if !g.IsLoopbackHost(r) {
				atomic.AddInt64(&g.metrics.ForeignHosts, 1)
				onReject(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// GetMetrics returns current guard metrics
func (g *LoopbackGuard) GetMetrics() GuardMetrics {
	return GuardMetrics{
		ForeignPeers: atomic.LoadInt64(&g.metrics.ForeignPeers),
		ForeignHosts: atomic.LoadInt64(&g.metrics.ForeignHosts),
	}
}
