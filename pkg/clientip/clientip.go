// Package clientip resolves the peer address used to key rate limiters.
package clientip

import (
	"net"
	"net/http"
	"strings"
)

// RealClientIP returns the connecting peer's IP. Only r.RemoteAddr is
// consulted: forwarding headers are client-controlled, and trusting them
// would let a caller rotate identities under the rate limiter.
func RealClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return strings.TrimSpace(r.RemoteAddr)
	}
	return strings.TrimSpace(host)
}
