// internal/acl/store.go
//
// Query helpers for role-based access control.
//
// Context
// -------
// The ACL model lives next to the content tables:
//
//	role        (id PK, name, enabled)
//	role_acl    (role_id, component, action, permitted)
//	user_role   (user_id, role_id)
//
// Handlers need answers to three questions:
//  1. Which *role names* does user X have?                 → `UserRoles()`
//  2. Is role R permitted for component/action?            → `RoleAllowed()`
//  3. May user X update site S (owner, or a granted role)? → `CanEditSite()`
//
// The helpers run simple parameterised queries and cache nothing.
//
// Notes
// -----
// • Max line length 100 columns.
package acl

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/manawiki/mana/internal/site"
)

// Component and action names checked for site updates.
const (
	ComponentSites = "sites"
	ActionUpdate   = "update"
)

// UserRoles returns the role *names* bound to userID.  Disabled roles are
// filtered out.
func UserRoles(ctx context.Context, db *sqlx.DB, userID string) ([]string, error) {
	const q = `SELECT r.name
                 FROM user_role ur
                 JOIN role r ON r.id = ur.role_id
                WHERE ur.user_id = ? AND r.enabled = TRUE`

	roles := make([]string, 0, 4)
	if err := db.SelectContext(ctx, &roles, q, userID); err != nil {
		return nil, err
	}
	return roles, nil
}

// RoleAllowed reports whether *any* of the candidate roles is permitted for the
// given component + action.
//
// Empty roles slice returns false, nil.
func RoleAllowed(ctx context.Context, db *sqlx.DB, roles []string, component, action string) (bool, error) {
	if len(roles) == 0 {
		return false, nil
	}

	q, args, err := sqlx.In(`SELECT 1
            FROM role_acl ra
            JOIN role r ON r.id = ra.role_id
           WHERE r.name IN (?)
             AND ra.component = ?
             AND ra.action   = ?
             AND ra.permitted = TRUE
           LIMIT 1`, roles, component, action)
	if err != nil {
		return false, err
	}

	var hit int
	err = db.QueryRowxContext(ctx, db.Rebind(q), args...).Scan(&hit)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Checker answers site-level authorisation questions against db.
type Checker struct {
	db *sqlx.DB
}

// NewChecker wraps db.
func NewChecker(db *sqlx.DB) *Checker { return &Checker{db: db} }

// CanEditSite reports whether userID may update siteID: the owner always
// may, anyone else needs a role granted sites/update.  A missing site
// yields site.ErrNotFound.
func (c *Checker) CanEditSite(ctx context.Context, userID, siteID string) (bool, error) {
	if userID == "" {
		return false, nil
	}

	var owner string
	err := c.db.GetContext(ctx, &owner, `SELECT owner_id FROM site WHERE id = ? LIMIT 1`, siteID)
	if errors.Is(err, sql.ErrNoRows) {
		return false, site.ErrNotFound
	}
	if err != nil {
		return false, fmt.Errorf("acl owner %q: %w", siteID, err)
	}
	if owner == userID {
		return true, nil
	}

	roles, err := UserRoles(ctx, c.db, userID)
	if err != nil {
		return false, fmt.Errorf("acl roles %q: %w", userID, err)
	}
	return RoleAllowed(ctx, c.db, roles, ComponentSites, ActionUpdate)
}

// Migrations returns the DDL for the ACL tables.
func Migrations() []string {
	return []string{`
CREATE TABLE IF NOT EXISTS role (
    id      INT          NOT NULL AUTO_INCREMENT PRIMARY KEY,
    name    VARCHAR(64)  NOT NULL UNIQUE,
    enabled BOOLEAN      NOT NULL DEFAULT TRUE
)`, `
CREATE TABLE IF NOT EXISTS role_acl (
    role_id   INT          NOT NULL,
    component VARCHAR(64)  NOT NULL,
    action    VARCHAR(64)  NOT NULL,
    permitted BOOLEAN      NOT NULL DEFAULT FALSE,
    PRIMARY KEY (role_id, component, action)
)`, `
CREATE TABLE IF NOT EXISTS user_role (
    user_id VARCHAR(36) NOT NULL,
    role_id INT         NOT NULL,
    PRIMARY KEY (user_id, role_id)
)`}
}
