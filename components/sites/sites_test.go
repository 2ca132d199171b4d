package sites

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-chi/chi/v5"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manawiki/mana/internal/auth"
	"github.com/manawiki/mana/internal/component"
	"github.com/manawiki/mana/internal/config"
	"github.com/manawiki/mana/internal/membership"
	"github.com/manawiki/mana/internal/site"
	"github.com/manawiki/mana/internal/tenant"
	"github.com/manawiki/mana/internal/user"
)

type fakeSites map[string]*site.Record

func (f fakeSites) ByID(_ context.Context, id string) (*site.Record, error) {
	if rec, ok := f[id]; ok {
		return rec, nil
	}
	return nil, site.ErrNotFound
}

type fakeUsers struct {
	sites map[string][]string
}

var joined = time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

// ByID knows every user that has a follow list entry, even an empty one.
func (f *fakeUsers) ByID(_ context.Context, id string) (*user.Record, error) {
	if _, ok := f.sites[id]; !ok {
		return nil, user.ErrNotFound
	}
	return &user.Record{ID: id, Email: id + "@example.com", CreatedAt: joined}, nil
}

func (f *fakeUsers) SiteRefs(_ context.Context, userID string, _ int) ([]site.Ref, error) {
	var refs []site.Ref
	for _, id := range f.sites[userID] {
		refs = append(refs, site.Ref{ID: id})
	}
	return refs, nil
}

func (f *fakeUsers) ReplaceSites(_ context.Context, userID string, ids []string) error {
	f.sites[userID] = ids
	return nil
}

const (
	coreID   = "coreSite01"
	customID = "customSite"
)

func newComponent(env tenant.Environment) (chi.Router, *fakeUsers) {
	sites := fakeSites{
		coreID: {ID: coreID, Type: site.TypeCore, OwnerID: "owner"},
		customID: {ID: customID, Type: site.TypeCustom, OwnerID: "owner",
			Subdomain: sql.NullString{String: "genshin", Valid: true}},
	}
	users := &fakeUsers{sites: map[string][]string{"owner": {coreID, customID}, "u1": nil}}
	c := &Component{
		Sites:      sites,
		Users:      users,
		Membership: &membership.Service{Users: users, Sites: sites},
		Resolver:   tenant.Resolver{Domains: tenant.Domains{Production: "mana.wiki", DevServer: "manatee.wiki"}},
		Env:        env,
	}
	r := chi.NewRouter()
	c.Routes(r)
	return r, users
}

func get(r http.Handler, host, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "http://"+host+path, nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func post(r http.Handler, path, userID string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if userID != "" {
		req = req.WithContext(auth.WithUser(req.Context(), userID))
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestLoad(t *testing.T) {
	cases := []struct {
		name     string
		env      tenant.Environment
		host     string
		path     string
		status   int
		location string
	}{
		{"custom on apex redirects", tenant.EnvProduction, "mana.wiki", "/" + customID,
			http.StatusMovedPermanently, "https://genshin.mana.wiki/" + customID},
		{"custom on dev apex", tenant.EnvDevServer, "manatee.wiki", "/" + customID,
			http.StatusMovedPermanently, "https://genshin.manatee.wiki/" + customID},
		{"custom on own subdomain", tenant.EnvProduction, "genshin.mana.wiki", "/" + customID, http.StatusOK, ""},
		{"custom on foreign subdomain", tenant.EnvProduction, "other.mana.wiki", "/" + customID, http.StatusOK, ""},
		{"core on subdomain redirects", tenant.EnvProduction, "foo.mana.wiki", "/" + coreID,
			http.StatusMovedPermanently, "https://mana.wiki/" + coreID},
		{"local never redirects", tenant.EnvLocal, "localhost:3000", "/" + customID, http.StatusOK, ""},
		{"missing site", tenant.EnvProduction, "mana.wiki", "/missing000", http.StatusFound, "/404"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r, _ := newComponent(tc.env)
			rec := get(r, tc.host, tc.path)
			assert.Equal(t, tc.status, rec.Code)
			if tc.location != "" {
				assert.Equal(t, tc.location, rec.Header().Get("Location"))
			}
		})
	}
}

func TestLoad_Payload(t *testing.T) {
	r, _ := newComponent(tenant.EnvProduction)
	rec := get(r, "mana.wiki", "/"+coreID)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Site map[string]any `json:"site"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, coreID, body.Site["id"])
}

func TestLoad_BadSiteID(t *testing.T) {
	r, _ := newComponent(tenant.EnvProduction)
	rec := get(r, "mana.wiki", "/short")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAction_FollowUnfollow(t *testing.T) {
	r, users := newComponent(tenant.EnvProduction)
	users.sites["u1"] = nil

	rec := post(r, "/"+coreID, "u1", url.Values{"intent": {IntentFollow}})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"user":{"id":"u1","email":"u1@example.com","createdAt":"2024-01-02T03:04:05Z","sites":["coreSite01"]}}`, rec.Body.String())

	rec = post(r, "/"+coreID, "u1", url.Values{"intent": {IntentUnfollow}})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, users.sites["u1"])
}

func TestAction_OwnerCannotUnfollow(t *testing.T) {
	r, users := newComponent(tenant.EnvProduction)

	rec := post(r, "/"+customID, "owner", url.Values{"intent": {IntentUnfollow}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"errors":"Cannot unfollow your own site"}`, rec.Body.String())
	assert.Equal(t, []string{coreID, customID}, users.sites["owner"])
}

func TestAction_Anonymous(t *testing.T) {
	r, _ := newComponent(tenant.EnvProduction)
	rec := post(r, "/"+coreID, "", url.Values{"intent": {IntentFollow}})
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Contains(t, rec.Header().Get("Location"), "/login?redirectTo=")
}

func TestAction_UnknownIntent(t *testing.T) {
	r, _ := newComponent(tenant.EnvProduction)
	rec := post(r, "/"+coreID, "u1", url.Values{"intent": {"delete"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAction_UnfollowMissingSite(t *testing.T) {
	r, _ := newComponent(tenant.EnvProduction)
	rec := post(r, "/missing000", "u1", url.Values{"intent": {IntentUnfollow}})
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/404", rec.Header().Get("Location"))
}

func TestAction_StaleSession(t *testing.T) {
	r, users := newComponent(tenant.EnvProduction)
	rec := post(r, "/"+coreID, "ghost", url.Values{"intent": {IntentFollow}})
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Contains(t, rec.Header().Get("Location"), "/login?redirectTo=")
	assert.NotContains(t, users.sites, "ghost")
}

func TestInit_DedupeFollowFromConfig(t *testing.T) {
	raw, _, err := sqlmock.New()
	require.NoError(t, err)
	defer raw.Close()

	cfg := &config.Config{
		Site:       config.Site{Environment: "production", Domain: "mana.wiki", DevDomain: "manatee.wiki"},
		Membership: config.Membership{DedupeFollow: true},
	}
	env, err := component.NewEnv(sqlx.NewDb(raw, "sqlmock"), cfg)
	require.NoError(t, err)

	c := &Component{}
	require.NoError(t, c.Init(env))
	require.NotNil(t, c.Membership.Live)

	// Keep the Service Init built, backed by in-memory stores.
	sites := fakeSites{coreID: {ID: coreID, Type: site.TypeCore, OwnerID: "owner"}}
	users := &fakeUsers{sites: map[string][]string{"u1": nil}}
	c.Sites, c.Users = sites, users
	c.Membership.Users, c.Membership.Sites = users, sites

	r := chi.NewRouter()
	c.Routes(r)
	for i := 0; i < 2; i++ {
		rec := post(r, "/"+coreID, "u1", url.Values{"intent": {IntentFollow}})
		require.Equal(t, http.StatusOK, rec.Code)
	}
	assert.Equal(t, []string{coreID}, users.sites["u1"])

	cfg.Membership.DedupeFollow = false
	rec := post(r, "/"+coreID, "u1", url.Values{"intent": {IntentFollow}})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{coreID, coreID}, users.sites["u1"])
}
