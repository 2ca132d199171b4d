// internal/tenant/resolver.go
//
// Canonical-host resolution for site requests.
//
// Context
// -------
// A site is reachable on the platform apex (`mana.wiki/{id}`) or, for
// custom sites, on its own subdomain (`{sub}.mana.wiki/{id}`).  Resolve
// decides for one request whether to serve it or send the client to the
// canonical address with a permanent redirect.  The `local` environment
// never redirects so development hosts keep working.
//
// Workflow
// --------
//  1. Missing site             → NotFound.
//  2. custom + subdomain set:
//     apex request             → 301 https://{sub}.{domain}/{id}
//     matching subdomain       → Serve
//     other subdomain          → Serve, SubdomainMismatch set
//  3. core + subdomain request → 301 https://{domain}/{id}
//  4. everything else          → Serve
//
// Resolve is pure: no I/O, no logging.  Callers own side effects.
package tenant

import (
	"github.com/manawiki/mana/internal/site"
)

// Kind enumerates resolver outcomes.
type Kind int

const (
	Serve Kind = iota
	RedirectPermanent
	NotFound
)

func (k Kind) String() string {
	switch k {
	case Serve:
		return "serve"
	case RedirectPermanent:
		return "redirect"
	case NotFound:
		return "not_found"
	}
	return "unknown"
}

// Outcome is the resolver's decision.  URL is set only for
// RedirectPermanent.  SubdomainMismatch marks a custom site served on a
// subdomain other than its own.
type Outcome struct {
	Kind              Kind
	URL               string
	SubdomainMismatch bool
}

// Resolver binds the apex domains so call sites pass only per-request data.
type Resolver struct {
	Domains Domains
}

// Resolve decides how to answer a request for rec arriving on host.
func (r Resolver) Resolve(rec *site.Record, host string, env Environment) Outcome {
	if rec == nil {
		return Outcome{Kind: NotFound}
	}

	domain := r.Domains.For(env)
	sub := IsSubdomain(host)

	if env != EnvLocal && rec.Type == site.TypeCustom && rec.SubdomainLabel() != "" {
		if !sub {
			return Outcome{
				Kind: RedirectPermanent,
				URL:  "https://" + rec.SubdomainLabel() + "." + domain + "/" + rec.ID,
			}
		}
		if LeadingLabel(host) == rec.SubdomainLabel() {
			return Outcome{Kind: Serve}
		}
		return Outcome{Kind: Serve, SubdomainMismatch: true}
	}

	if env != EnvLocal && rec.Type == site.TypeCore && sub {
		return Outcome{
			Kind: RedirectPermanent,
			URL:  "https://" + domain + "/" + rec.ID,
		}
	}
	return Outcome{Kind: Serve}
}
