package http

import (
	"net"
	"net/http"

	"astro-news/pkg/security/csp"
)

// SecurityHeaders sets the CSP from policy plus the usual hardening headers.
// The policy is rendered once.
func SecurityHeaders(policy *csp.Builder) Middleware {
	value := policy.Build()
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			if value != "" {
				h.Set(csp.HeaderName, value)
			}
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-Frame-Options", "DENY")
			h.Set("Referrer-Policy", "same-origin")
			next.ServeHTTP(w, r)
		})
	}
}

// ClientKey identifies the caller for rate limiting. Proxy headers are not
// trusted, so behind a reverse proxy every client shares the proxy's key.
func ClientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
