// internal/component/registry.go
//
// Component registry (cycle-free).
//
// Each concrete component lives under components/<name> and calls
// component.Register() in an init() function.  The router calls Init(env)
// on every component, then lets each one add its routes to the shared chi
// router.  cmd/web applies Migrations() at boot when database.migrate is
// set.

package component

import (
	"sort"
	"sync"

	"github.com/go-chi/chi/v5"
)

// Component contract.
//
// Migrations() may return nil if the component has no schema.  Routes()
// registers handlers on r directly; patterns are absolute, e.g.
//
//	r.Get("/{siteId}", c.loader)
//	r.With(acl.RequireUser).Post("/settings/site", c.save)
type Component interface {
	Name() string
	Init(Env) error
	Routes(r chi.Router)
	Migrations() []string
}

var (
	mu       sync.RWMutex
	registry = map[string]Component{}
)

// Register is invoked from component init() functions.  A second
// registration under the same name replaces the first.
func Register(c Component) {
	mu.Lock()
	registry[c.Name()] = c
	mu.Unlock()
}

// All returns every registered component ordered by name.
func All() []Component {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]Component, 0, len(registry))
	for _, c := range registry {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}

// Migrations collects every component's DDL in name order.
func Migrations() []string {
	var stmts []string
	for _, c := range All() {
		stmts = append(stmts, c.Migrations()...)
	}
	return stmts
}
