// Package metrics holds Prometheus instruments shared across mana.  All
// collectors are registered with the global registry, so mounting
// promhttp.Handler() is enough to expose them.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// SiteResolutions counts resolver outcomes by kind
	// ("serve", "redirect", "not_found").
	SiteResolutions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mana_site_resolutions_total",
			Help: "Site loader outcomes by kind.",
		}, []string{"outcome"})

	SubdomainMismatches = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "mana_subdomain_mismatch_total",
			Help: "Custom-site requests served on a subdomain other than the configured one.",
		})

	// MembershipChanges counts persisted follow-list updates by intent.
	MembershipChanges = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mana_membership_changes_total",
			Help: "Persisted follow and unfollow operations.",
		}, []string{"intent"})

	OwnershipViolations = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "mana_ownership_violations_total",
			Help: "Rejected attempts by owners to unfollow their own site.",
		})

	NotesCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "mana_notes_created_total",
			Help: "Notes created and attached to an entry.",
		})

	SettingsSaved = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "mana_site_settings_saved_total",
			Help: "Successful site settings updates.",
		})
)

func init() {
	prometheus.MustRegister(
		SiteResolutions,
		SubdomainMismatches,
		MembershipChanges,
		OwnershipViolations,
		NotesCreated,
		SettingsSaved,
	)
}
