// components/debug/debug.go
//
// Debug component – echoes what the server knows about the request: parsed
// UA, client IP, Geo lookup, acting user, and the resolved environment.
// Mounted only outside production.
package debug

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/manawiki/mana/internal/component"
	"github.com/manawiki/mana/internal/core"
	"github.com/manawiki/mana/internal/httpx"
	"github.com/manawiki/mana/internal/tenant"
)

var _ component.Component = (*Component)(nil)

// Component has no schema and no store.
type Component struct {
	Env tenant.Environment
}

func (c *Component) Name() string         { return "debug" }
func (c *Component) Migrations() []string { return nil }

func (c *Component) Init(env component.Env) error {
	c.Env = env.Environment()
	return nil
}

func (c *Component) Routes(r chi.Router) {
	if c.Env == tenant.EnvProduction {
		return
	}
	r.Get("/_debug/request", core.Handle(c.Env, c.request))
}

func init() { component.Register(&Component{}) }

func (c *Component) request(cc *core.Context, w http.ResponseWriter) error {
	httpx.JSON(w, http.StatusOK, map[string]any{
		"host":        cc.Request.Host,
		"path":        cc.Request.URL.Path,
		"user":        cc.UserID,
		"environment": cc.Env,
		"subdomain":   tenant.IsSubdomain(cc.Request.Host),
		"info":        cc.Info,
	})
	return nil
}
