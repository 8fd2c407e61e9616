package metadata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/netip"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"registro/pkg/requestcontext"
)

func TestMiddlewareHandler(t *testing.T) {
	tests := []struct {
		name           string
		headers        map[string]string
		remoteAddr     string
		trustedProxies string
		expectedIP     string
		expectedUA     string
	}{
		{
			name: "ignores XFF when no trusted proxies",
			headers: map[string]string{
				"X-Forwarded-For": "203.0.113.1",
				"User-Agent":      "Mozilla/5.0",
			},
			remoteAddr: "192.168.1.1:12345",
			expectedIP: "192.168.1.1",
			expectedUA: "Mozilla/5.0",
		},
		{
			name: "trusts XFF from load balancer range",
			headers: map[string]string{
				"X-Forwarded-For": "203.0.113.1, 10.0.0.7",
				"User-Agent":      "curl/8.5.0",
			},
			remoteAddr:     "10.0.0.1:12345",
			trustedProxies: "10.0.0.0/8",
			expectedIP:     "203.0.113.1",
			expectedUA:     "curl/8.5.0",
		},
		{
			name: "rejects malformed XFF from trusted proxy",
			headers: map[string]string{
				"X-Forwarded-For": "not-an-ip",
			},
			remoteAddr:     "10.0.0.1:12345",
			trustedProxies: "10.0.0.0/8",
			expectedIP:     "10.0.0.1",
		},
		{
			name: "uses X-Real-IP from trusted proxy",
			headers: map[string]string{
				"X-Real-IP": "198.51.100.4",
			},
			remoteAddr:     "10.1.2.3:443",
			trustedProxies: "10.1.2.3",
			expectedIP:     "198.51.100.4",
		},
		{
			name: "ignores oversized XFF",
			headers: map[string]string{
				"X-Forwarded-For": strings.Repeat("1", MaxXFFHeaderLength+1),
			},
			remoteAddr:     "10.0.0.1:12345",
			trustedProxies: "10.0.0.0/8",
			expectedIP:     "10.0.0.1",
		},
		{
			name:       "handles bracketed IPv6 remote address",
			remoteAddr: "[2001:db8::1]:8080",
			expectedIP: "2001:db8::1",
		},
		{
			name:       "unknown when remote address missing",
			remoteAddr: "",
			expectedIP: "unknown",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var capturedCtx context.Context
			testHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				capturedCtx = r.Context()
				w.WriteHeader(http.StatusOK)
			})

			prefixes, err := ParseTrustedProxies(tt.trustedProxies)
			require.NoError(t, err)
			handler := NewMiddleware(&Config{TrustedProxies: prefixes}).Handler(testHandler)

			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			req.RemoteAddr = tt.remoteAddr
			for key, value := range tt.headers {
				req.Header.Set(key, value)
			}

			handler.ServeHTTP(httptest.NewRecorder(), req)

			assert.Equal(t, tt.expectedIP, requestcontext.ClientIP(capturedCtx), "IP address mismatch")
			assert.Equal(t, tt.expectedUA, requestcontext.UserAgent(capturedCtx), "User-Agent mismatch")
		})
	}
}

func TestParseTrustedProxies(t *testing.T) {
	t.Run("parses CIDRs and bare addresses", func(t *testing.T) {
		prefixes, err := ParseTrustedProxies("10.0.0.0/8, 172.16.5.4 ,")
		require.NoError(t, err)
		assert.Equal(t, []netip.Prefix{
			netip.MustParsePrefix("10.0.0.0/8"),
			netip.MustParsePrefix("172.16.5.4/32"),
		}, prefixes)
	})

	t.Run("empty input yields no prefixes", func(t *testing.T) {
		prefixes, err := ParseTrustedProxies("")
		require.NoError(t, err)
		assert.Empty(t, prefixes)
	})

	t.Run("rejects garbage", func(t *testing.T) {
		_, err := ParseTrustedProxies("10.0.0.0/99")
		assert.Error(t, err)
	})
}
