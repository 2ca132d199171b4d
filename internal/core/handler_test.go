package core

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"

	"github.com/manawiki/mana/internal/auth"
	"github.com/manawiki/mana/internal/httpx"
	"github.com/manawiki/mana/internal/tenant"
)

func TestHandleBuildsContext(t *testing.T) {
	var got *Context
	r := chi.NewRouter()
	r.Get("/{siteId}", Handle(tenant.EnvDevServer, func(cc *Context, w http.ResponseWriter) error {
		got = cc
		w.WriteHeader(http.StatusNoContent)
		return nil
	}))

	req := httptest.NewRequest(http.MethodGet, "/abcdefghij", nil)
	req = req.WithContext(auth.WithUser(req.Context(), "u1"))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "abcdefghij", got.Param("siteId"))
	assert.Equal(t, "u1", got.UserID)
	assert.True(t, got.Authenticated())
	assert.Equal(t, tenant.EnvDevServer, got.Env)
}

func TestHandleMapsErrors(t *testing.T) {
	h := Handle(tenant.EnvLocal, func(cc *Context, w http.ResponseWriter) error {
		return httpx.NotFound(errors.New("gone"))
	})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/404", rec.Header().Get("Location"))
}

func TestNilContextIsAnonymous(t *testing.T) {
	var cc *Context
	assert.False(t, cc.Authenticated())
	assert.NotNil(t, cc.Ctx())
}
