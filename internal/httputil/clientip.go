package httputil

import (
	"net"
	"net/http"
	"strings"
)

// ClientIP extracts the originating client IP from the request. Proxy
// headers win over the socket address: X-Forwarded-For first (leftmost
// entry in the chain), then X-Real-IP, then RemoteAddr with any port
// stripped.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}

	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return xri
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
