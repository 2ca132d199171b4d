// components/notes/notes.go
//
// Add-note component.
//
// Workflow
// --------
//
//	GET  /{siteId}/collections/{collectionId}/{entryId}/add
//	     → {"noteTypes": […]}
//	POST /{siteId}/collections/{collectionId}/{entryId}/add   (form: ui)
//	     → create note, append to entry → 302 …/{entryId}/edit/{noteId}
//
// Anonymous POSTs go to /login; an entry outside the addressed site or
// collection is treated as missing.
package notes

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/manawiki/mana/internal/component"
	"github.com/manawiki/mana/internal/core"
	"github.com/manawiki/mana/internal/entry"
	"github.com/manawiki/mana/internal/httpx"
	"github.com/manawiki/mana/internal/routing"
	"github.com/manawiki/mana/internal/tenant"
)

const addPath = "/{siteId}/collections/{collectionId}/{entryId}/add"

var _ component.Component = (*Component)(nil)

// Component wires entry.Notes to HTTP.
type Component struct {
	Notes *entry.Notes
	Env   tenant.Environment
}

func (c *Component) Name() string         { return "notes" }
func (c *Component) Migrations() []string { return entry.Migrations() }

func (c *Component) Init(env component.Env) error {
	c.Notes = &entry.Notes{Store: entry.NewRepository(env.DB())}
	c.Env = env.Environment()
	return nil
}

func (c *Component) Routes(r chi.Router) {
	r.Get(addPath, core.Handle(c.Env, c.types))
	r.Post(addPath, core.Handle(c.Env, c.add))
}

func init() { component.Register(&Component{}) }

func (c *Component) types(cc *core.Context, w http.ResponseWriter) error {
	if err := httpx.SiteID(cc.Param("siteId")); err != nil {
		return err
	}
	types, err := c.Notes.Types(cc)
	if err != nil {
		return err
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"noteTypes": types})
	return nil
}

type addForm struct {
	UI string `form:"ui" validate:"required"`
}

func (c *Component) add(cc *core.Context, w http.ResponseWriter) error {
	siteID := cc.Param("siteId")
	if err := httpx.SiteID(siteID); err != nil {
		return err
	}
	if !cc.Authenticated() {
		return httpx.Unauthenticated()
	}
	if err := cc.Request.ParseForm(); err != nil {
		return httpx.Validation("Malformed form body.")
	}
	in := addForm{UI: cc.Request.PostForm.Get("ui")}
	if err := httpx.Struct(in); err != nil {
		return err
	}

	collectionID, entryID := cc.Param("collectionId"), cc.Param("entryId")
	note, err := c.Notes.Add(cc, siteID, collectionID, entryID, in.UI)
	switch {
	case errors.Is(err, entry.ErrUnauthenticated):
		return httpx.Unauthenticated()
	case errors.Is(err, entry.ErrNotFound):
		return httpx.NotFound(err)
	case err != nil:
		return err
	}

	target := routing.BuildPath(siteID, "collections", collectionID, entryID, "edit", note.ID)
	http.Redirect(w, cc.Request, target, http.StatusFound)
	return nil
}
