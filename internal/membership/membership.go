// internal/membership/membership.go
//
// Follow-list transformations.
//
// Context
// -------
// A user's followed sites are an ordered list of site ids.  Follow and
// Unfollow compute the next list from the current one; they never touch
// the store and never mutate their input.  Persisting the result is the
// Service's job (service.go).
//
// Rules
// -----
//   • Follow appends.  With Options.Dedupe an id already present leaves
//     the list unchanged; without it a second reference is appended.
//   • Unfollow removes the first occurrence, or nothing when absent.
//   • An owner may never unfollow their own site.
package membership

import (
	"errors"
	"slices"
)

// ErrOwnershipViolation is returned when an owner tries to unfollow their
// own site.
var ErrOwnershipViolation = errors.New("cannot unfollow your own site")

// OwnershipMessage is the user-facing text for ErrOwnershipViolation.
const OwnershipMessage = "Cannot unfollow your own site"

// Options tunes Follow.
type Options struct {
	Dedupe bool
}

// Follow returns sites with siteID appended.
func Follow(sites []string, siteID string, opts Options) []string {
	if opts.Dedupe && slices.Contains(sites, siteID) {
		return slices.Clone(sites)
	}
	out := make([]string, len(sites), len(sites)+1)
	copy(out, sites)
	return append(out, siteID)
}

// Unfollow returns sites without the first occurrence of siteID.
func Unfollow(sites []string, siteID string, isOwner bool) ([]string, error) {
	if isOwner {
		return nil, ErrOwnershipViolation
	}
	out := slices.Clone(sites)
	if i := slices.Index(out, siteID); i >= 0 {
		out = slices.Delete(out, i, i+1)
	}
	return out, nil
}
