package entry

import (
	"database/sql/driver"
	"fmt"
	"time"
)

// Record mirrors one row in the `entry` table.
type Record struct {
	ID           string `db:"id"            json:"id"`
	SiteID       string `db:"site_id"       json:"site"`
	CollectionID string `db:"collection_id" json:"collection"`
	Name         string `db:"name"          json:"name"`
}

// Note mirrors one row in the `note` table.
type Note struct {
	ID        string    `db:"id"         json:"id"`
	UI        string    `db:"ui"         json:"ui"`
	MDX       string    `db:"mdx"        json:"mdx"`
	Data      Blocks    `db:"data"       json:"data"`
	AuthorID  string    `db:"author_id"  json:"author"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// Blocks is a note's JSON block list, stored verbatim in a JSON column.
// The zero value is the empty list.
type Blocks []byte

// Scan copies the column bytes; drivers may reuse their buffer.
func (b *Blocks) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*b = nil
	case []byte:
		*b = append(Blocks(nil), v...)
	case string:
		*b = Blocks(v)
	default:
		return fmt.Errorf("entry: cannot scan %T into Blocks", src)
	}
	return nil
}

// Value implements driver.Valuer.
func (b Blocks) Value() (driver.Value, error) {
	if len(b) == 0 {
		return "[]", nil
	}
	return string(b), nil
}

// MarshalJSON embeds the stored JSON as is.
func (b Blocks) MarshalJSON() ([]byte, error) {
	if len(b) == 0 {
		return []byte("[]"), nil
	}
	return b, nil
}

// NoteType is a selectable note template.
type NoteType struct {
	ID   string `db:"id"   json:"id"`
	Name string `db:"name" json:"name"`
	UI   string `db:"ui"   json:"ui"`
}

// NoteRef is one element of an entry's note list: a bare id, or the
// expanded note when read at depth ≥ 1.
type NoteRef struct {
	ID       string
	Expanded *Note
}

// NormalizeNotes collapses refs into ids, preserving order.
func NormalizeNotes(refs []NoteRef) []string {
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
