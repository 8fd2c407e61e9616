// Package metadata extracts client IP and User-Agent into the request context.
// Elastic Beanstalk and most managed platforms sit the service behind a load
// balancer, so X-Forwarded-For is honoured only from configured proxy ranges.
package metadata

import (
	"fmt"
	"net"
	"net/http"
	"net/netip"
	"strings"

	"registro/pkg/requestcontext"
)

// MaxXFFHeaderLength bounds X-Forwarded-For and X-Real-IP values that are parsed.
const MaxXFFHeaderLength = 500

// Config holds configuration for the metadata middleware.
type Config struct {
	// TrustedProxies is a list of IP prefixes (CIDR notation) that are trusted
	// to set X-Forwarded-For headers. If empty, XFF is never trusted.
	TrustedProxies []netip.Prefix
}

// ParseTrustedProxies parses a comma separated list of CIDR prefixes or bare IPs.
func ParseTrustedProxies(csv string) ([]netip.Prefix, error) {
	var prefixes []netip.Prefix
	for _, raw := range strings.Split(csv, ",") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		if !strings.Contains(raw, "/") {
			addr, err := netip.ParseAddr(raw)
			if err != nil {
				return nil, fmt.Errorf("parse trusted proxy %q: %w", raw, err)
			}
			prefixes = append(prefixes, netip.PrefixFrom(addr, addr.BitLen()))
			continue
		}
		prefix, err := netip.ParsePrefix(raw)
		if err != nil {
			return nil, fmt.Errorf("parse trusted proxy %q: %w", raw, err)
		}
		prefixes = append(prefixes, prefix.Masked())
	}
	return prefixes, nil
}

// Middleware handles client metadata extraction with configurable trusted proxies.
type Middleware struct {
	trusted []netip.Prefix
}

// NewMiddleware creates a new metadata middleware with the given config.
func NewMiddleware(cfg *Config) *Middleware {
	if cfg == nil {
		return &Middleware{}
	}
	return &Middleware{trusted: cfg.TrustedProxies}
}

// Handler extracts client IP address and User-Agent from the request
// and adds them to the context for use by handlers and services.
func (m *Middleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := requestcontext.WithClientMetadata(r.Context(), m.clientIP(r), r.Header.Get("User-Agent"))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (m *Middleware) clientIP(r *http.Request) string {
	remote := remoteHost(r.RemoteAddr)
	if remote == "" {
		return "unknown"
	}
	if !m.trusts(remote) {
		return remote
	}

	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if len(xff) > MaxXFFHeaderLength {
			return remote
		}
		first, _, _ := strings.Cut(xff, ",")
		first = strings.TrimSpace(first)
		if _, err := netip.ParseAddr(first); err != nil {
			return remote
		}
		return first
	}

	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" && len(xri) <= MaxXFFHeaderLength {
		if _, err := netip.ParseAddr(xri); err == nil {
			return xri
		}
	}
	return remote
}

func (m *Middleware) trusts(ip string) bool {
	if len(m.trusted) == 0 {
		return false
	}
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return false
	}
	addr = addr.Unmap()
	for _, prefix := range m.trusted {
		if prefix.Contains(addr) {
			return true
		}
	}
	return false
}

// remoteHost strips the port from RemoteAddr, handling bracketed IPv6.
func remoteHost(remoteAddr string) string {
	if remoteAddr == "" {
		return ""
	}
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		return strings.Trim(remoteAddr, "[]")
	}
	return host
}
