package membership

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/manawiki/mana/internal/core"
	"github.com/manawiki/mana/internal/metrics"
	"github.com/manawiki/mana/internal/site"
)

// ErrUnauthenticated is returned when the request carries no acting user.
var ErrUnauthenticated = errors.New("membership: no acting user")

// UserStore is the slice of user.Repository the Service needs.
type UserStore interface {
	SiteRefs(ctx context.Context, userID string, depth int) ([]site.Ref, error)
	ReplaceSites(ctx context.Context, userID string, ids []string) error
}

// SiteStore is the slice of site.Repository the Service needs.
type SiteStore interface {
	ByID(ctx context.Context, id string) (*site.Record, error)
}

// Service reads a user's follow list, applies a transformation, and writes
// the result back.  Read and write are not isolated from concurrent
// requests for the same user: the later write wins.
type Service struct {
	Users   UserStore
	Sites   SiteStore
	Options Options

	// Live, when set, is consulted on every call instead of Options so a
	// config reload reaches running handlers.
	Live func() Options
}

func (s *Service) options() Options {
	if s.Live != nil {
		return s.Live()
	}
	return s.Options
}

// Follow appends siteID to the acting user's list and returns the stored
// list.
func (s *Service) Follow(cc *core.Context, siteID string) ([]string, error) {
	if !cc.Authenticated() {
		return nil, ErrUnauthenticated
	}
	current, err := s.current(cc)
	if err != nil {
		return nil, err
	}

	next := Follow(current, siteID, s.options())
	if err := s.Users.ReplaceSites(cc.Ctx(), cc.UserID, next); err != nil {
		return nil, err
	}

	metrics.MembershipChanges.WithLabelValues("follow").Inc()
	zap.L().Info("site followed",
		zap.String("user", cc.UserID),
		zap.String("site", siteID),
		zap.Int("count", len(next)))
	return next, nil
}

// Unfollow removes siteID from the acting user's list.  Owners get
// ErrOwnershipViolation and nothing is written.  A missing site yields
// site.ErrNotFound.
func (s *Service) Unfollow(cc *core.Context, siteID string) ([]string, error) {
	if !cc.Authenticated() {
		return nil, ErrUnauthenticated
	}
	rec, err := s.Sites.ByID(cc.Ctx(), siteID)
	if err != nil {
		return nil, err
	}
	current, err := s.current(cc)
	if err != nil {
		return nil, err
	}

	next, err := Unfollow(current, siteID, rec.OwnedBy(cc.UserID))
	if err != nil {
		metrics.OwnershipViolations.Inc()
		zap.L().Warn("owner tried to unfollow own site",
			zap.String("user", cc.UserID),
			zap.String("site", siteID))
		return nil, err
	}
	if err := s.Users.ReplaceSites(cc.Ctx(), cc.UserID, next); err != nil {
		return nil, err
	}

	metrics.MembershipChanges.WithLabelValues("unfollow").Inc()
	zap.L().Info("site unfollowed",
		zap.String("user", cc.UserID),
		zap.String("site", siteID),
		zap.Int("count", len(next)))
	return next, nil
}

func (s *Service) current(cc *core.Context) ([]string, error) {
	refs, err := s.Users.SiteRefs(cc.Ctx(), cc.UserID, 0)
	if err != nil {
		return nil, fmt.Errorf("load follow list: %w", err)
	}
	return site.Normalize(refs), nil
}
