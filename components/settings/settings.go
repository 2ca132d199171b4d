// components/settings/settings.go
//
// Site settings form handler.
//
// Context
// -------
// POST /settings/site receives the settings form.  The intent field picks
// the operation:
//
//	saveSettings → access check → site.Repository.UpdateSettings
//	addDomain    → not supported, answered as a validation error
//
// Access is decided by acl.Checker: the owner, or a user whose role grants
// sites/update.  Anonymous requests never reach the handler (RequireUser).
package settings

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/manawiki/mana/internal/acl"
	"github.com/manawiki/mana/internal/component"
	"github.com/manawiki/mana/internal/core"
	"github.com/manawiki/mana/internal/httpx"
	"github.com/manawiki/mana/internal/metrics"
	"github.com/manawiki/mana/internal/routing"
	"github.com/manawiki/mana/internal/site"
	"github.com/manawiki/mana/internal/tenant"
)

const (
	IntentSave      = "saveSettings"
	IntentAddDomain = "addDomain"
)

// Checker answers whether a user may update a site.
type Checker interface {
	CanEditSite(ctx context.Context, userID, siteID string) (bool, error)
}

// Store persists settings.
type Store interface {
	UpdateSettings(ctx context.Context, id string, s site.Settings) error
}

var _ component.Component = (*Component)(nil)

// Component handles the settings form.
type Component struct {
	ACL   Checker
	Sites Store
	Env   tenant.Environment
}

func (c *Component) Name() string { return "settings" }

// Migrations returns the ACL tables consulted on save.
func (c *Component) Migrations() []string { return acl.Migrations() }

func (c *Component) Init(env component.Env) error {
	c.ACL = acl.NewChecker(env.DB())
	c.Sites = site.NewRepository(env.DB())
	c.Env = env.Environment()
	return nil
}

func (c *Component) Routes(r chi.Router) {
	r.With(acl.RequireUser).Post("/settings/site", core.Handle(c.Env, c.submit))
}

func init() { component.Register(&Component{}) }

// Form is the decoded settings payload.
type Form struct {
	Intent       string `form:"intent"       validate:"required,oneof=saveSettings addDomain"`
	SiteID       string `form:"siteId"       validate:"required"` // any stored id; the ACL lookup decides existence
	Name         string `form:"name"         validate:"min=3"`
	About        string `form:"about"`
	Slug         string `form:"slug"         validate:"required"` // normalised by routing.MakeSlug
	IsPublic     bool   `form:"isPublic"`
	EnableAds    bool   `form:"enableAds"`
	GATagID      string `form:"gaTagId"`
	GAPropertyID string `form:"gaPropertyId"`
}

func decode(r *http.Request) (Form, error) {
	if err := r.ParseForm(); err != nil {
		return Form{}, httpx.Validation("Malformed form body.")
	}
	f := Form{
		Intent:       r.PostForm.Get("intent"),
		SiteID:       r.PostForm.Get("siteId"),
		Name:         r.PostForm.Get("name"),
		About:        r.PostForm.Get("about"),
		Slug:         routing.MakeSlug(r.PostForm.Get("slug")),
		IsPublic:     httpx.Checkbox(r, "isPublic"),
		EnableAds:    httpx.Checkbox(r, "enableAds"),
		GATagID:      r.PostForm.Get("gaTagId"),
		GAPropertyID: r.PostForm.Get("gaPropertyId"),
	}
	return f, httpx.Struct(f)
}

func (c *Component) submit(cc *core.Context, w http.ResponseWriter) error {
	f, err := decode(cc.Request)
	if err != nil {
		return err
	}

	if f.Intent == IntentAddDomain {
		return httpx.Validation("Custom domains are not supported.",
			httpx.FieldError{Name: "intent", Message: "addDomain is not available."})
	}

	ok, err := c.ACL.CanEditSite(cc.Ctx(), cc.UserID, f.SiteID)
	switch {
	case errors.Is(err, site.ErrNotFound):
		return httpx.NotFound(err)
	case err != nil:
		return err
	case !ok:
		zap.L().Warn("settings update denied",
			zap.String("user", cc.UserID),
			zap.String("site", f.SiteID))
		return httpx.Forbidden("You cannot edit this site.")
	}

	err = c.Sites.UpdateSettings(cc.Ctx(), f.SiteID, site.Settings{
		Name:         f.Name,
		About:        f.About,
		Slug:         f.Slug,
		IsPublic:     f.IsPublic,
		EnableAds:    f.EnableAds,
		GATagID:      f.GATagID,
		GAPropertyID: f.GAPropertyID,
	})
	if errors.Is(err, site.ErrNotFound) {
		return httpx.NotFound(err)
	}
	if err != nil {
		return err
	}

	metrics.SettingsSaved.Inc()
	zap.L().Info("site settings saved",
		zap.String("user", cc.UserID),
		zap.String("site", f.SiteID))
	httpx.JSON(w, http.StatusOK, map[string]string{"success": "Settings updated"})
	return nil
}
