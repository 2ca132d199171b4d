// internal/user/user.go
//
// User rows and their ordered follow list.
//
// Context
// -------
// A user's followed sites live in `user_site`, one row per follow with an
// explicit `position` so insertion order survives round trips:
//
//	user       (id PK, email, created_at)
//	user_site  (user_id, site_id, position)  PK (user_id, position)
//
// Reads come in two depths, mirroring how relation fields are fetched:
// depth 0 yields bare ids, depth ≥ 1 joins `site` and yields expanded
// records.  Either way callers get []site.Ref and normalise with
// site.Normalize.
//
// Writes replace the whole list inside one transaction.  Two concurrent
// writers for the same user are not merged: the last commit wins.
package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/manawiki/mana/internal/site"
)

// ErrNotFound is returned when no user row matches.
var ErrNotFound = errors.New("user not found")

// Record mirrors one row in the `user` table.
type Record struct {
	ID        string    `db:"id"         json:"id"`
	Email     string    `db:"email"      json:"email"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// Repository reads and writes users and their follow lists.
type Repository struct {
	db *sqlx.DB
}

// NewRepository wraps db.
func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// ByID fetches one user row.
func (r *Repository) ByID(ctx context.Context, id string) (*Record, error) {
	const q = `SELECT id, email, created_at FROM user WHERE id = ? LIMIT 1`
	var rec Record
	if err := r.db.GetContext(ctx, &rec, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("user.ByID %q: %w", id, err)
	}
	return &rec, nil
}

// SiteRefs returns the user's followed sites in follow order.  At depth
// ≥ 1 each ref also carries its site; ids with no site row stay bare.
func (r *Repository) SiteRefs(ctx context.Context, userID string, depth int) ([]site.Ref, error) {
	const q = `SELECT site_id FROM user_site WHERE user_id = ? ORDER BY position`
	var ids []string
	if err := r.db.SelectContext(ctx, &ids, q, userID); err != nil {
		return nil, fmt.Errorf("user.SiteRefs %q: %w", userID, err)
	}
	refs := make([]site.Ref, len(ids))
	for i, id := range ids {
		refs[i] = site.Ref{ID: id}
	}
	if depth <= 0 || len(ids) == 0 {
		return refs, nil
	}

	eq, args, err := sqlx.In(`SELECT `+site.Columns("")+` FROM site WHERE id IN (?)`, ids)
	if err != nil {
		return nil, err
	}
	var recs []site.Record
	if err := r.db.SelectContext(ctx, &recs, r.db.Rebind(eq), args...); err != nil {
		return nil, fmt.Errorf("user.SiteRefs expand %q: %w", userID, err)
	}
	byID := make(map[string]*site.Record, len(recs))
	for i := range recs {
		byID[recs[i].ID] = &recs[i]
	}
	for i := range refs {
		refs[i].Expanded = byID[refs[i].ID]
	}
	return refs, nil
}

// ReplaceSites overwrites the user's follow list with ids, in order.
func (r *Repository) ReplaceSites(ctx context.Context, userID string, ids []string) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM user_site WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("user.ReplaceSites clear %q: %w", userID, err)
	}
	for pos, id := range ids {
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO user_site (user_id, site_id, position) VALUES (?, ?, ?)`,
			userID, id, pos); err != nil {
			return fmt.Errorf("user.ReplaceSites insert %q: %w", userID, err)
		}
	}
	return tx.Commit()
}

// Migrations returns the DDL for user tables.
func Migrations() []string {
	return []string{`
CREATE TABLE IF NOT EXISTS user (
    id         VARCHAR(36)   NOT NULL PRIMARY KEY,
    email      VARCHAR(320)  NOT NULL UNIQUE,
    created_at TIMESTAMP     NOT NULL DEFAULT CURRENT_TIMESTAMP
)`, `
CREATE TABLE IF NOT EXISTS user_site (
    user_id  VARCHAR(36) NOT NULL,
    site_id  CHAR(10)    NOT NULL,
    position INT         NOT NULL,
    PRIMARY KEY (user_id, position),
    KEY idx_user_site_site (site_id)
)`}
}
