package entry

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/manawiki/mana/internal/core"
	"github.com/manawiki/mana/internal/metrics"
)

// ErrUnauthenticated is returned when no acting user is attached.
var ErrUnauthenticated = errors.New("entry: no acting user")

// initialMDX seeds every new note with an empty heading.
const initialMDX = "## "

// Store is the slice of Repository the Notes service needs.
type Store interface {
	ByID(ctx context.Context, id string) (*Record, error)
	NoteRefs(ctx context.Context, entryID string, depth int) ([]NoteRef, error)
	ReplaceNotes(ctx context.Context, entryID string, ids []string) error
	CreateNote(ctx context.Context, n *Note) error
	NoteTypes(ctx context.Context) ([]NoteType, error)
}

// Notes creates notes and attaches them to entries.
type Notes struct {
	Store Store
	Now   func() time.Time
}

// Types lists the selectable note types.
func (s *Notes) Types(cc *core.Context) ([]NoteType, error) {
	return s.Store.NoteTypes(cc.Ctx())
}

// Add creates an empty note of the given ui type, authored by the acting
// user, and appends it to the entry's note list.  The entry must belong to
// siteID and collectionID, otherwise ErrNotFound.
func (s *Notes) Add(cc *core.Context, siteID, collectionID, entryID, ui string) (*Note, error) {
	if !cc.Authenticated() {
		return nil, ErrUnauthenticated
	}
	ctx := cc.Ctx()

	ent, err := s.Store.ByID(ctx, entryID)
	if err != nil {
		return nil, err
	}
	if ent.SiteID != siteID || ent.CollectionID != collectionID {
		return nil, ErrNotFound
	}

	note := &Note{
		ID:        uuid.NewString(),
		UI:        ui,
		MDX:       initialMDX,
		Data:      Blocks("[]"),
		AuthorID:  cc.UserID,
		CreatedAt: s.now(),
	}
	if err := s.Store.CreateNote(ctx, note); err != nil {
		return nil, err
	}

	// Bare ids are enough to rebuild the list, and keep references whose
	// note row no longer resolves.
	refs, err := s.Store.NoteRefs(ctx, entryID, 0)
	if err != nil {
		return nil, err
	}
	ids := append(NormalizeNotes(refs), note.ID)
	if err := s.Store.ReplaceNotes(ctx, entryID, ids); err != nil {
		return nil, err
	}

	metrics.NotesCreated.Inc()
	zap.L().Info("note added",
		zap.String("entry", entryID),
		zap.String("note", note.ID),
		zap.String("author", cc.UserID))
	return note, nil
}

func (s *Notes) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}
