// internal/middleware/security.go
//
// Security-header middleware.
//
// Sets the usual response headers before the handler runs:
//
//   • Strict-Transport-Security  (2 years + subdomains, tenant subdomains included)
//   • Content-Security-Policy    (self, plus Google Analytics for sites with a tag)
//   • X-Frame-Options
//   • X-Content-Type-Options
//   • Referrer-Policy
//   • Permissions-Policy
//
// Notes
// -----
// • Headers are written before next.ServeHTTP; once a handler writes the
//   status line later changes are ignored.  Handlers may still Set their own
//   value to override a default.

package middleware

import "net/http"

var securityHeaders = [...][2]string{
	{"Strict-Transport-Security", "max-age=63072000; includeSubDomains"},
	{"Content-Security-Policy", "default-src 'self'; " +
		"script-src 'self' https://www.googletagmanager.com; " +
		"connect-src 'self' https://*.google-analytics.com; " +
		"img-src 'self' data: https://*.google-analytics.com; " +
		"object-src 'none'; base-uri 'self'; frame-ancestors 'none'"},
	{"X-Frame-Options", "DENY"},
	{"X-Content-Type-Options", "nosniff"},
	{"Referrer-Policy", "strict-origin-when-cross-origin"},
	{"Permissions-Policy", "geolocation=(), microphone=(), camera=()"},
}

// Security sets security headers for every response.
func Security(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		for _, kv := range securityHeaders {
			h.Set(kv[0], kv[1])
		}
		next.ServeHTTP(w, r)
	})
}
