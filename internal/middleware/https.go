// Package middleware holds small, composable HTTP wrappers.
package middleware

import (
	"net/http"

	"github.com/manawiki/mana/internal/tenant"
)

// ForceHTTPS wraps h.  Plain-HTTP requests outside the local environment
// are answered with a 308 Permanent Redirect to the HTTPS version of the
// same URL.  TLS terminated upstream is recognised by X-Forwarded-Proto.
func ForceHTTPS(env tenant.Environment, h http.Handler) http.Handler {
	if env == tenant.EnvLocal {
		return h
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" ||
			tenant.StripPort(r.Host) == "localhost" {
			h.ServeHTTP(w, r)
			return
		}
		target := "https://" + r.Host + r.URL.RequestURI()
		http.Redirect(w, r, target, http.StatusPermanentRedirect)
	})
}
