// internal/router/router.go
//
// Root HTTP handler.
//
// Workflow
// --------
//  1. chi middleware: RequestID, RealIP, Recoverer, then security headers.
//  2. Operational routes: /metrics, /healthz, /404.  These answer plain
//     HTTP so in-cluster scrapers and health checks are never redirected.
//  3. App group: ForceHTTPS outside `local` when enabled, a per-request
//     deadline, requestinfo.Enrich (RealIP must already have run), and the
//     session middleware, which attaches the acting user.
//  4. Every registered component: Init(env), then Routes(group).
//
// Notes
// -----
// • Unknown paths fall through to chi's NotFound, which redirects to /404
//   the same way loaders do.
package router

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/manawiki/mana/internal/auth"
	"github.com/manawiki/mana/internal/component"
	"github.com/manawiki/mana/internal/httpx"
	"github.com/manawiki/mana/internal/middleware"
	"github.com/manawiki/mana/internal/requestinfo"
)

// DefaultHandlerTimeout bounds component handlers, store calls included.
// It stays under the server's WriteTimeout so the 504 can still be written.
const DefaultHandlerTimeout = 10 * time.Second

// Options tunes the root handler.
type Options struct {
	ForceHTTPS bool
	Sessions   *auth.Sessions

	// HandlerTimeout overrides DefaultHandlerTimeout when positive.
	HandlerTimeout time.Duration
}

// New initialises every component against env and returns the root handler.
func New(env component.Env, comps []component.Component, opts Options) (http.Handler, error) {
	r := chi.NewRouter()

	r.Use(chimw.RequestID, chimw.RealIP, chimw.Recoverer)
	r.Use(middleware.Security)

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/healthz", healthz(env))
	r.Get("/404", func(w http.ResponseWriter, _ *http.Request) {
		httpx.JSON(w, http.StatusNotFound, map[string]string{"errors": http.StatusText(http.StatusNotFound)})
	})

	timeout := opts.HandlerTimeout
	if timeout <= 0 {
		timeout = DefaultHandlerTimeout
	}

	var initErr error
	r.Group(func(app chi.Router) {
		if opts.ForceHTTPS {
			app.Use(func(next http.Handler) http.Handler {
				return middleware.ForceHTTPS(env.Environment(), next)
			})
		}
		app.Use(chimw.Timeout(timeout))
		app.Use(requestinfo.Enrich)
		if opts.Sessions != nil {
			app.Use(opts.Sessions.Middleware)
		}

		for _, c := range comps {
			if err := c.Init(env); err != nil {
				initErr = fmt.Errorf("init component %s: %w", c.Name(), err)
				return
			}
			c.Routes(app)
			zap.L().Debug("component mounted", zap.String("component", c.Name()))
		}
	})
	if initErr != nil {
		return nil, initErr
	}

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		httpx.Fail(w, req, httpx.NotFound(nil))
	})
	return r, nil
}

func healthz(env component.Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if db := env.DB(); db != nil {
			if err := db.PingContext(r.Context()); err != nil {
				zap.L().Warn("healthz ping failed", zap.Error(err))
				httpx.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
				return
			}
		}
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

