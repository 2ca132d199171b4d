// components/sites/sites.go
//
// Site page component: tenant resolution loader and follow/unfollow action.
//
// Workflow
// --------
//
//	GET  /{siteId}  → load site → tenant.Resolver → 301 | /404 | {"site": …}
//	POST /{siteId}  → intent followSite | unfollow → {"user": {id, email, createdAt, sites}}
//
// Both handlers validate siteId (exactly 10 characters) before touching the
// store.
package sites

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/manawiki/mana/internal/component"
	"github.com/manawiki/mana/internal/core"
	"github.com/manawiki/mana/internal/httpx"
	"github.com/manawiki/mana/internal/membership"
	"github.com/manawiki/mana/internal/metrics"
	"github.com/manawiki/mana/internal/site"
	"github.com/manawiki/mana/internal/tenant"
	"github.com/manawiki/mana/internal/user"
)

// Form intents accepted by the action.
const (
	IntentFollow   = "followSite"
	IntentUnfollow = "unfollow"
)

// Compile-time assertion: *Component satisfies component.Component.
var _ component.Component = (*Component)(nil)

// UserLookup is the slice of user.Repository the action needs for its
// payload.
type UserLookup interface {
	ByID(ctx context.Context, id string) (*user.Record, error)
}

// Component serves site pages and membership changes.
type Component struct {
	Sites      membership.SiteStore
	Users      UserLookup
	Membership *membership.Service
	Resolver   tenant.Resolver
	Env        tenant.Environment
}

/*────────────────── component.Component methods ───────────────────────────*/

func (c *Component) Name() string { return "sites" }

// Migrations returns the site, user, and follow-list tables.
func (c *Component) Migrations() []string {
	return append(site.Migrations(), user.Migrations()...)
}

// Init binds the MySQL repositories.
func (c *Component) Init(env component.Env) error {
	sites := site.NewRepository(env.DB())
	users := user.NewRepository(env.DB())
	c.Sites = sites
	c.Users = users
	c.Membership = &membership.Service{
		Users: users,
		Sites: sites,
		Live: func() membership.Options {
			return membership.Options{Dedupe: env.Config().Membership.DedupeFollow}
		},
	}
	c.Resolver = tenant.Resolver{Domains: env.Domains()}
	c.Env = env.Environment()
	return nil
}

func (c *Component) Routes(r chi.Router) {
	r.Get("/{siteId}", core.Handle(c.Env, c.load))
	r.Post("/{siteId}", core.Handle(c.Env, c.action))
}

func init() { component.Register(&Component{}) }

/*──────────────────────────── Handlers ─────────────────────────────────────*/

func (c *Component) load(cc *core.Context, w http.ResponseWriter) error {
	id := cc.Param("siteId")
	if err := httpx.SiteID(id); err != nil {
		return err
	}

	rec, err := c.Sites.ByID(cc.Ctx(), id)
	if err != nil && !errors.Is(err, site.ErrNotFound) {
		return err
	}

	out := c.Resolver.Resolve(rec, cc.Request.Host, cc.Env)
	metrics.SiteResolutions.WithLabelValues(out.Kind.String()).Inc()

	switch out.Kind {
	case tenant.NotFound:
		return httpx.NotFound(err)
	case tenant.RedirectPermanent:
		http.Redirect(w, cc.Request, out.URL, http.StatusMovedPermanently)
		return nil
	}

	if out.SubdomainMismatch {
		metrics.SubdomainMismatches.Inc()
		zap.L().Warn("site served on foreign subdomain",
			zap.String("site", rec.ID),
			zap.String("subdomain", rec.SubdomainLabel()),
			zap.String("host", cc.Request.Host))
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"site": rec})
	return nil
}

type userPayload struct {
	*user.Record
	Sites []string `json:"sites"`
}

func (c *Component) action(cc *core.Context, w http.ResponseWriter) error {
	id := cc.Param("siteId")
	if err := httpx.SiteID(id); err != nil {
		return err
	}
	if err := cc.Request.ParseForm(); err != nil {
		return httpx.Validation("Malformed form body.")
	}

	intent := cc.Request.PostForm.Get("intent")
	if intent != IntentFollow && intent != IntentUnfollow {
		return httpx.Validation("Unknown intent.", httpx.FieldError{Name: "intent", Message: "Must be one of: followSite unfollow."})
	}

	// A session whose user row is gone is treated as signed out.
	var acting *user.Record
	if cc.Authenticated() {
		u, err := c.Users.ByID(cc.Ctx(), cc.UserID)
		switch {
		case errors.Is(err, user.ErrNotFound):
			return httpx.Unauthenticated()
		case err != nil:
			return err
		}
		acting = u
	}

	var (
		sites []string
		err   error
	)
	if intent == IntentFollow {
		sites, err = c.Membership.Follow(cc, id)
	} else {
		sites, err = c.Membership.Unfollow(cc, id)
	}

	switch {
	case err == nil:
	case errors.Is(err, membership.ErrUnauthenticated):
		return httpx.Unauthenticated()
	case errors.Is(err, membership.ErrOwnershipViolation):
		return httpx.OwnershipViolation(membership.OwnershipMessage)
	case errors.Is(err, site.ErrNotFound):
		return httpx.NotFound(err)
	default:
		return err
	}

	httpx.JSON(w, http.StatusOK, map[string]any{"user": userPayload{Record: acting, Sites: sites}})
	return nil
}
