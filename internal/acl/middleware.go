// internal/acl/middleware.go
//
// Chi middleware helpers that enforce access rules before a handler runs.

package acl

import (
	"net/http"

	"github.com/manawiki/mana/internal/auth"
	"github.com/manawiki/mana/internal/httpx"
)

// RequireUser sends anonymous requests to the login page.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := auth.UserID(r.Context()); !ok {
			httpx.Fail(w, r, httpx.Unauthenticated())
			return
		}
		next.ServeHTTP(w, r)
	})
}
