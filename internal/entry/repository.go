// internal/entry/repository.go
//
// Entry, note, and note-type queries.
//
//	entry      (id PK, site_id, collection_id, name)
//	note       (id PK, ui, mdx, data JSON, author_id, created_at)
//	entry_note (entry_id, note_id, position)  PK (entry_id, position)
//	note_type  (id PK, name, ui)
//
// As with user_site, the ordered note list is rewritten whole inside one
// transaction.
package entry

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// ErrNotFound is returned when no entry row matches.
var ErrNotFound = errors.New("entry not found")

// Repository reads and writes entries and their notes.
type Repository struct {
	db *sqlx.DB
}

// NewRepository wraps db.
func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// ByID fetches one entry.
func (r *Repository) ByID(ctx context.Context, id string) (*Record, error) {
	const q = `SELECT id, site_id, collection_id, name FROM entry WHERE id = ? LIMIT 1`
	var rec Record
	if err := r.db.GetContext(ctx, &rec, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("entry.ByID %q: %w", id, err)
	}
	return &rec, nil
}

// NoteRefs returns the entry's notes in order.  At depth ≥ 1 each ref
// also carries its note; ids with no note row stay as bare refs.
func (r *Repository) NoteRefs(ctx context.Context, entryID string, depth int) ([]NoteRef, error) {
	var ids []string
	if err := r.db.SelectContext(ctx, &ids,
		`SELECT note_id FROM entry_note WHERE entry_id = ? ORDER BY position`, entryID); err != nil {
		return nil, fmt.Errorf("entry.NoteRefs %q: %w", entryID, err)
	}
	refs := make([]NoteRef, len(ids))
	for i, id := range ids {
		refs[i] = NoteRef{ID: id}
	}
	if depth <= 0 || len(ids) == 0 {
		return refs, nil
	}

	q, args, err := sqlx.In(
		`SELECT id, ui, mdx, data, author_id, created_at FROM note WHERE id IN (?)`, ids)
	if err != nil {
		return nil, err
	}
	var notes []Note
	if err := r.db.SelectContext(ctx, &notes, r.db.Rebind(q), args...); err != nil {
		return nil, fmt.Errorf("entry.NoteRefs expand %q: %w", entryID, err)
	}
	byID := make(map[string]*Note, len(notes))
	for i := range notes {
		byID[notes[i].ID] = &notes[i]
	}
	for i := range refs {
		refs[i].Expanded = byID[refs[i].ID]
	}
	return refs, nil
}

// ReplaceNotes overwrites the entry's note list with ids, in order.
func (r *Repository) ReplaceNotes(ctx context.Context, entryID string, ids []string) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM entry_note WHERE entry_id = ?`, entryID); err != nil {
		return fmt.Errorf("entry.ReplaceNotes clear %q: %w", entryID, err)
	}
	for pos, id := range ids {
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO entry_note (entry_id, note_id, position) VALUES (?, ?, ?)`,
			entryID, id, pos); err != nil {
			return fmt.Errorf("entry.ReplaceNotes insert %q: %w", entryID, err)
		}
	}
	return tx.Commit()
}

// CreateNote inserts n.
func (r *Repository) CreateNote(ctx context.Context, n *Note) error {
	const q = `INSERT INTO note (id, ui, mdx, data, author_id, created_at)
               VALUES (:id, :ui, :mdx, :data, :author_id, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, q, n); err != nil {
		return fmt.Errorf("entry.CreateNote: %w", err)
	}
	return nil
}

// NoteTypes lists every note type by name.
func (r *Repository) NoteTypes(ctx context.Context) ([]NoteType, error) {
	types := []NoteType{}
	if err := r.db.SelectContext(ctx, &types,
		`SELECT id, name, ui FROM note_type ORDER BY name`); err != nil {
		return nil, fmt.Errorf("entry.NoteTypes: %w", err)
	}
	return types, nil
}

// Migrations returns the DDL for entry tables.
func Migrations() []string {
	return []string{`
CREATE TABLE IF NOT EXISTS entry (
    id            VARCHAR(36)  NOT NULL PRIMARY KEY,
    site_id       CHAR(10)     NOT NULL,
    collection_id VARCHAR(64)  NOT NULL,
    name          VARCHAR(256) NOT NULL,
    KEY idx_entry_site (site_id, collection_id)
)`, `
CREATE TABLE IF NOT EXISTS note (
    id         CHAR(36)     NOT NULL PRIMARY KEY,
    ui         VARCHAR(64)  NOT NULL,
    mdx        MEDIUMTEXT   NOT NULL,
    data       JSON         NOT NULL,
    author_id  VARCHAR(36)  NOT NULL,
    created_at TIMESTAMP    NOT NULL DEFAULT CURRENT_TIMESTAMP
)`, `
CREATE TABLE IF NOT EXISTS entry_note (
    entry_id VARCHAR(36) NOT NULL,
    note_id  CHAR(36)    NOT NULL,
    position INT         NOT NULL,
    PRIMARY KEY (entry_id, position)
)`, `
CREATE TABLE IF NOT EXISTS note_type (
    id   VARCHAR(36)  NOT NULL PRIMARY KEY,
    name VARCHAR(128) NOT NULL,
    ui   VARCHAR(64)  NOT NULL
)`}
}
