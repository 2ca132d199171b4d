package core

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/manawiki/mana/internal/auth"
	"github.com/manawiki/mana/internal/httpx"
	"github.com/manawiki/mana/internal/requestinfo"
	"github.com/manawiki/mana/internal/tenant"
)

// HandlerFunc handles one request with its Context.  A returned error is
// answered through httpx.Fail.
type HandlerFunc func(cc *Context, w http.ResponseWriter) error

// Handle adapts fn to net/http, building the Context from r.
func Handle(env tenant.Environment, fn HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cc := New(r, env)
		if err := fn(cc, w); err != nil {
			httpx.Fail(w, r, err)
		}
	}
}

// New builds the Context for r.  Route params are read from chi, the user
// from the session, and request info from the Enrich middleware.
func New(r *http.Request, env tenant.Environment) *Context {
	cc := &Context{
		Request: r,
		Params:  map[string]string{},
		Env:     env,
		Info:    requestinfo.FromContext(r.Context()),
	}
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		for i, k := range rctx.URLParams.Keys {
			cc.Params[k] = rctx.URLParams.Values[i]
		}
	}
	if uid, ok := auth.UserID(r.Context()); ok {
		cc.UserID = uid
	}
	return cc
}
