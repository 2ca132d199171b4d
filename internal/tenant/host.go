package tenant

import "strings"

// StripPort removes :port from a Host header when present.
func StripPort(h string) string {
	if i := strings.LastIndexByte(h, ':'); i != -1 && !strings.Contains(h[i:], "]") {
		return h[:i]
	}
	return h
}

// IsSubdomain reports whether host has more than two dot-separated labels.
func IsSubdomain(host string) bool {
	return strings.Count(StripPort(host), ".") >= 2
}

// LeadingLabel returns the first dot-separated label of host.
func LeadingLabel(host string) string {
	label, _, _ := strings.Cut(StripPort(host), ".")
	return label
}
