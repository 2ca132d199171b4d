package site

import (
	"database/sql"
	"encoding/json"
	"time"
)

// Type distinguishes platform-hosted sites from tenant-configured ones.
type Type string

const (
	TypeCore   Type = "core"   // served under the platform apex domain
	TypeCustom Type = "custom" // served under its own subdomain
)

// IDLength is the fixed length of a site identifier.
const IDLength = 10

// Record mirrors one row in the `site` table.
type Record struct {
	ID           string         `db:"id"            json:"id"`
	Name         string         `db:"name"          json:"name"`
	Slug         string         `db:"slug"          json:"slug"`
	About        string         `db:"about"         json:"about,omitempty"`
	Type         Type           `db:"type"          json:"type"`
	Subdomain    sql.NullString `db:"subdomain"     json:"-"`
	OwnerID      string         `db:"owner_id"      json:"owner"`
	IsPublic     bool           `db:"is_public"     json:"isPublic"`
	EnableAds    bool           `db:"enable_ads"    json:"enableAds"`
	GATagID      sql.NullString `db:"ga_tag_id"     json:"-"`
	GAPropertyID sql.NullString `db:"ga_property_id" json:"-"`
	CreatedAt    time.Time      `db:"created_at"    json:"createdAt"`
	UpdatedAt    time.Time      `db:"updated_at"    json:"updatedAt"`
}

// SubdomainLabel returns the configured subdomain or "" when unset.
func (r *Record) SubdomainLabel() string {
	if !r.Subdomain.Valid {
		return ""
	}
	return r.Subdomain.String
}

// OwnedBy reports whether userID owns the site.
func (r *Record) OwnedBy(userID string) bool {
	return userID != "" && r.OwnerID == userID
}

// Settings is the owner-editable subset of a site.
type Settings struct {
	Name         string
	About        string
	Slug         string
	IsPublic     bool
	EnableAds    bool
	GATagID      string
	GAPropertyID string
}

// Ref is one element of a relation list pointing at a site.  At depth 0
// only ID is set; deeper reads also carry the expanded record.
type Ref struct {
	ID       string
	Expanded *Record
}

// Normalize collapses refs into their canonical ids, preserving order.
func Normalize(refs []Ref) []string {
	ids := make([]string, 0, len(refs))
	for _, r := range refs {
		if r.Expanded != nil {
			ids = append(ids, r.Expanded.ID)
			continue
		}
		ids = append(ids, r.ID)
	}
	return ids
}

// MarshalJSON flattens the nullable columns into optional strings.
func (r Record) MarshalJSON() ([]byte, error) {
	type plain Record
	return json.Marshal(struct {
		plain
		Subdomain    string `json:"subdomain,omitempty"`
		GATagID      string `json:"gaTagId,omitempty"`
		GAPropertyID string `json:"gaPropertyId,omitempty"`
	}{
		plain:        plain(r),
		Subdomain:    r.Subdomain.String,
		GATagID:      r.GATagID.String,
		GAPropertyID: r.GAPropertyID.String,
	})
}
