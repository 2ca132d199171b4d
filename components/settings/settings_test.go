package settings

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-chi/chi/v5"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manawiki/mana/internal/auth"
	"github.com/manawiki/mana/internal/site"
	"github.com/manawiki/mana/internal/tenant"
)

type allowList map[string]string // siteID → owner

func (a allowList) CanEditSite(_ context.Context, userID, siteID string) (bool, error) {
	owner, ok := a[siteID]
	if !ok {
		return false, site.ErrNotFound
	}
	return owner == userID, nil
}

type recorder struct {
	saved map[string]site.Settings
}

func (r *recorder) UpdateSettings(_ context.Context, id string, s site.Settings) error {
	r.saved[id] = s
	return nil
}

func newRouter() (chi.Router, *recorder) {
	store := &recorder{saved: map[string]site.Settings{}}
	c := &Component{ACL: allowList{"abcdefghij": "owner"}, Sites: store, Env: tenant.EnvProduction}
	r := chi.NewRouter()
	c.Routes(r)
	return r, store
}

func validForm() url.Values {
	return url.Values{
		"intent":       {IntentSave},
		"siteId":       {"abcdefghij"},
		"name":         {"Genshin Wiki"},
		"slug":         {"Genshin Wiki"},
		"about":        {"All things Teyvat"},
		"isPublic":     {"on"},
		"gaTagId":      {"G-123"},
		"gaPropertyId": {""},
	}
}

func submit(r http.Handler, userID string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/settings/site", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if userID != "" {
		req = req.WithContext(auth.WithUser(req.Context(), userID))
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestSave(t *testing.T) {
	r, store := newRouter()
	rec := submit(r, "owner", validForm())

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":"Settings updated"}`, rec.Body.String())

	got := store.saved["abcdefghij"]
	assert.Equal(t, "Genshin Wiki", got.Name)
	assert.Equal(t, "genshin-wiki", got.Slug)
	assert.True(t, got.IsPublic)
	assert.False(t, got.EnableAds)
	assert.Equal(t, "G-123", got.GATagID)
}

func TestSave_Validation(t *testing.T) {
	r, store := newRouter()
	form := validForm()
	form.Set("name", "ab")
	form.Del("slug")

	rec := submit(r, "owner", form)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"name"`)
	assert.Contains(t, rec.Body.String(), `"slug"`)
	assert.Empty(t, store.saved)
}

func TestSave_NotOwner(t *testing.T) {
	r, store := newRouter()
	rec := submit(r, "stranger", validForm())
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Empty(t, store.saved)
}

func TestSave_UnknownSite(t *testing.T) {
	r, _ := newRouter()
	form := validForm()
	form.Set("siteId", "zzzzzzzzzz")
	rec := submit(r, "owner", form)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/404", rec.Header().Get("Location"))
}

func TestSave_Anonymous(t *testing.T) {
	r, _ := newRouter()
	rec := submit(r, "", validForm())
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login?redirectTo=%2Fsettings%2Fsite", rec.Header().Get("Location"))
}

func TestAddDomain(t *testing.T) {
	r, store := newRouter()
	form := validForm()
	form.Set("intent", IntentAddDomain)
	rec := submit(r, "owner", form)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, store.saved)
}

func TestSave_ResubmitUnchanged(t *testing.T) {
	raw, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer raw.Close()

	c := &Component{
		ACL:   allowList{"abcdefghij": "owner"},
		Sites: site.NewRepository(sqlx.NewDb(raw, "sqlmock")),
		Env:   tenant.EnvProduction,
	}
	r := chi.NewRouter()
	c.Routes(r)

	// Second identical submit: nothing changes, MySQL reports 0 rows.
	mock.ExpectExec(`UPDATE site`).WillReturnResult(sqlmock.NewResult(0, 0))

	rec := submit(r, "owner", validForm())
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":"Settings updated"}`, rec.Body.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSave_SiteIDOnlyRequired(t *testing.T) {
	r, store := newRouter()

	form := validForm()
	form.Set("siteId", "legacy")
	rec := submit(r, "owner", form)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/404", rec.Header().Get("Location"))

	form.Set("siteId", "")
	rec = submit(r, "owner", form)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"siteId"`)
	assert.Empty(t, store.saved)
}
