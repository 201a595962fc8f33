// Package transport multiplexes one network listener between ordinary
// request/response traffic and the upgrade-based real-time protocols.
package transport

import (
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/pairpad/pairpad/internal/metrics"
)

type route struct {
	prefix  string
	handler http.Handler
}

// Router dispatches each inbound upgrade request to exactly one
// sub-protocol handler. Matchers are evaluated in registration order;
// the first prefix match owns the raw connection and completes its own
// handshake. An upgrade request matching no prefix is rejected and the
// underlying connection closed, never left dangling. Non-upgrade
// requests fall through to the regular HTTP handler.
type Router struct {
	routes   []route
	fallback http.Handler
}

func NewRouter(fallback http.Handler) *Router {
	return &Router{fallback: fallback}
}

// Handle appends a (pathPrefix, handler) pair to the routing table.
// Registration order is match order.
func (rt *Router) Handle(prefix string, h http.Handler) {
	rt.routes = append(rt.routes, route{prefix: prefix, handler: h})
}

func (rt *Router) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !IsUpgrade(r) {
		rt.fallback.ServeHTTP(w, r)
		return
	}
	for _, rte := range rt.routes {
		if strings.HasPrefix(r.URL.Path, rte.prefix) {
			rte.handler.ServeHTTP(w, r)
			return
		}
	}
	rt.reject(w, r)
}

// IsUpgrade reports whether the request asks for a websocket handshake.
// No payload is read; routing is purely header and path based.
func IsUpgrade(r *http.Request) bool {
	if !headerContainsToken(r.Header, "Connection", "upgrade") {
		return false
	}
	return headerContainsToken(r.Header, "Upgrade", "websocket")
}

// reject answers an unmatched upgrade request with 404 and closes the
// raw connection. Hijacking guarantees the close even for clients that
// would otherwise keep the socket open waiting for a handshake.
func (rt *Router) reject(w http.ResponseWriter, r *http.Request) {
	metrics.RejectedUpgrades.Inc()
	log.Warn().Str("module", "transport").Str("path", r.URL.Path).Msg("upgrade request matched no route")

	if hj, ok := w.(http.Hijacker); ok {
		conn, buf, err := hj.Hijack()
		if err == nil {
			_, _ = buf.WriteString("HTTP/1.1 404 Not Found\r\nConnection: close\r\nContent-Length: 0\r\n\r\n")
			_ = buf.Flush()
			_ = conn.Close()
			return
		}
	}
	w.Header().Set("Connection", "close")
	http.Error(w, "no such endpoint", http.StatusNotFound)
}

func headerContainsToken(h http.Header, key, token string) bool {
	for _, v := range h.Values(key) {
		for _, part := range strings.Split(v, ",") {
			if strings.EqualFold(strings.TrimSpace(part), token) {
				return true
			}
		}
	}
	return false
}
