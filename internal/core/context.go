// internal/core/context.go
//
// Central per-request context.
//
// Context
// -------
// The router builds one *core.Context per request and passes it by
// parameter into handlers, services, and the resolver's caller.  Nothing
// about the acting user or environment lives in package-level state.  It
// bundles:
//
//   - Request : the incoming *http.Request (its context carries deadlines).
//   - Params  : route params such as “siteId”.
//   - UserID  : acting user, empty when anonymous.
//   - Env     : deployment environment tag.
//   - Info    : parsed UA, geo, URL, and timestamp (may be nil).
//
// Notes
// -----
// • Handlers must treat Context as read-only after construction.
package core

import (
	"context"
	"net/http"

	"github.com/manawiki/mana/internal/requestinfo"
	"github.com/manawiki/mana/internal/tenant"
)

// Context is passed to handlers and services.
type Context struct {
	Request *http.Request
	Params  map[string]string
	UserID  string
	Env     tenant.Environment
	Info    *requestinfo.RequestInfo
}

// Ctx returns the request's context.Context, or Background when the
// Context was built without a request.
func (c *Context) Ctx() context.Context {
	if c == nil || c.Request == nil {
		return context.Background()
	}
	return c.Request.Context()
}

// Authenticated reports whether an acting user is attached.
func (c *Context) Authenticated() bool {
	return c != nil && c.UserID != ""
}

// Param returns a route parameter or "".
func (c *Context) Param(name string) string {
	return c.Params[name]
}
