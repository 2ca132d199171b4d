// internal/site/repository.go
//
// Site-table queries.
//
// Context
// -------
// Every site request reads its row fresh from the control-plane DB; there
// is no process-level cache, so ownership and subdomain changes are visible
// on the next request.  Concurrent reads of the same id are coalesced with
// singleflight: the first caller's query answers everyone waiting on it,
// and nothing is kept once it returns.
//
// Notes
// -----
//   - Column list matches the fields in `Record`; update both together.
//   - Errors are returned wrapped so callers can errors.Is(ErrNotFound).
package site

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"golang.org/x/sync/singleflight"
)

// ErrNotFound is returned when no site row matches.
var ErrNotFound = errors.New("site not found")

var columnNames = []string{
	"id", "name", "slug", "about", "type", "subdomain", "owner_id", "is_public",
	"enable_ads", "ga_tag_id", "ga_property_id", "created_at", "updated_at",
}

// Columns returns the select list for Record, each column qualified with
// alias when alias is non-empty.  Other packages use it when joining.
func Columns(alias string) string {
	if alias == "" {
		return strings.Join(columnNames, ", ")
	}
	qualified := make([]string, len(columnNames))
	for i, c := range columnNames {
		qualified[i] = alias + "." + c
	}
	return strings.Join(qualified, ", ")
}

// Repository reads and updates site rows.
type Repository struct {
	db  *sqlx.DB
	sfg singleflight.Group
}

// NewRepository wraps db.
func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// lookupTimeout bounds a shared ByID query once it no longer follows any
// single caller's context.
const lookupTimeout = 5 * time.Second

// ByID fetches a single site row.  The shared query is detached from the
// first caller's cancellation; each caller still stops waiting when its own
// ctx ends.
func (r *Repository) ByID(ctx context.Context, id string) (*Record, error) {
	ch := r.sfg.DoChan(id, func() (any, error) {
		qctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), lookupTimeout)
		defer cancel()

		q := `SELECT ` + Columns("") + ` FROM site WHERE id = ? LIMIT 1`
		var rec Record
		if err := r.db.GetContext(qctx, &rec, q, id); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, ErrNotFound
			}
			return nil, fmt.Errorf("site.ByID %q: %w", id, err)
		}
		return &rec, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		// Callers may mutate their copy.
		rec := *res.Val.(*Record)
		return &rec, nil
	}
}

// UpdateSettings writes the owner-editable columns.  Existence is the
// caller's concern (acl.Checker.CanEditSite reads the row first): MySQL
// reports changed rows, so an identical resubmission affects zero rows
// without being an error.
func (r *Repository) UpdateSettings(ctx context.Context, id string, s Settings) error {
	const q = `UPDATE site
                  SET name = ?, about = ?, slug = ?, is_public = ?, enable_ads = ?,
                      ga_tag_id = ?, ga_property_id = ?, updated_at = CURRENT_TIMESTAMP
                WHERE id = ?`
	if _, err := r.db.ExecContext(ctx, q,
		s.Name, s.About, s.Slug, s.IsPublic, s.EnableAds,
		nullable(s.GATagID), nullable(s.GAPropertyID), id); err != nil {
		return fmt.Errorf("site.UpdateSettings %q: %w", id, err)
	}
	return nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// Migrations returns the DDL for the site table.
func Migrations() []string {
	return []string{`
CREATE TABLE IF NOT EXISTS site (
    id             CHAR(10)      NOT NULL PRIMARY KEY,
    name           VARCHAR(256)  NOT NULL,
    slug           VARCHAR(256)  NOT NULL,
    about          TEXT          NOT NULL,
    type           ENUM('core','custom') NOT NULL DEFAULT 'core',
    subdomain      VARCHAR(63)   NULL UNIQUE,
    owner_id       VARCHAR(36)   NOT NULL,
    is_public      TINYINT(1)    NOT NULL DEFAULT 0,
    enable_ads     TINYINT(1)    NOT NULL DEFAULT 0,
    ga_tag_id      VARCHAR(64)   NULL,
    ga_property_id VARCHAR(64)   NULL,
    created_at     TIMESTAMP     NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at     TIMESTAMP     NOT NULL DEFAULT CURRENT_TIMESTAMP
)`}
}
