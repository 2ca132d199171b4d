package site

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMock(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewRepository(sqlx.NewDb(db, "sqlmock")), mock
}

var siteCols = []string{
	"id", "name", "slug", "about", "type", "subdomain", "owner_id", "is_public",
	"enable_ads", "ga_tag_id", "ga_property_id", "created_at", "updated_at",
}

func TestByID(t *testing.T) {
	repo, mock := newMock(t)
	now := time.Now()

	mock.ExpectQuery(`SELECT .+ FROM site WHERE id = \? LIMIT 1`).
		WithArgs("abcdefghij").
		WillReturnRows(sqlmock.NewRows(siteCols).AddRow(
			"abcdefghij", "Grand Wiki", "grand", "", "custom", "grand", "u1", true,
			false, nil, nil, now, now))

	rec, err := repo.ByID(context.Background(), "abcdefghij")
	require.NoError(t, err)
	assert.Equal(t, TypeCustom, rec.Type)
	assert.Equal(t, "grand", rec.SubdomainLabel())
	assert.True(t, rec.OwnedBy("u1"))
	assert.False(t, rec.OwnedBy(""))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestByID_NotFound(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectQuery(`SELECT .+ FROM site WHERE id = \?`).
		WithArgs("missing123").
		WillReturnRows(sqlmock.NewRows(siteCols))

	_, err := repo.ByID(context.Background(), "missing123")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateSettings(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectExec(`UPDATE site SET name = \?`).
		WithArgs("New Name", "about", "slug", true, false, "G-1", nil, "abcdefghij").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.UpdateSettings(context.Background(), "abcdefghij", Settings{
		Name: "New Name", About: "about", Slug: "slug", IsPublic: true, GATagID: "G-1",
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateSettings_UnchangedRowIsNotAnError(t *testing.T) {
	repo, mock := newMock(t)

	// Identical values: MySQL reports 0 changed rows.
	mock.ExpectExec(`UPDATE site`).WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateSettings(context.Background(), "abcdefghij", Settings{Name: "abc", Slug: "s"})
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestByID_SharedQuerySurvivesFirstCallerCancel(t *testing.T) {
	repo, mock := newMock(t)
	now := time.Now()

	// One query only: the second caller joins the first one's flight.
	mock.ExpectQuery(`SELECT .+ FROM site WHERE id = \?`).
		WithArgs("abcdefghij").
		WillDelayFor(200 * time.Millisecond).
		WillReturnRows(sqlmock.NewRows(siteCols).AddRow(
			"abcdefghij", "Grand Wiki", "grand", "", "core", nil, "u1", true,
			false, nil, nil, now, now))

	ctxA, cancelA := context.WithCancel(context.Background())
	errA := make(chan error, 1)
	go func() {
		_, err := repo.ByID(ctxA, "abcdefghij")
		errA <- err
	}()
	time.Sleep(20 * time.Millisecond)

	type result struct {
		rec *Record
		err error
	}
	resB := make(chan result, 1)
	go func() {
		rec, err := repo.ByID(context.Background(), "abcdefghij")
		resB <- result{rec, err}
	}()
	time.Sleep(20 * time.Millisecond)
	cancelA()

	assert.ErrorIs(t, <-errA, context.Canceled)
	b := <-resB
	require.NoError(t, b.err)
	assert.Equal(t, "Grand Wiki", b.rec.Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNormalize(t *testing.T) {
	refs := []Ref{
		{ID: "A"},
		{ID: "B", Expanded: &Record{ID: "B"}},
		{Expanded: &Record{ID: "C"}},
	}
	assert.Equal(t, []string{"A", "B", "C"}, Normalize(refs))
	assert.Empty(t, Normalize(nil))
}

func TestRecordJSON(t *testing.T) {
	rec := Record{ID: "abcdefghij", Name: "W", Type: TypeCore}
	rec.Subdomain.String, rec.Subdomain.Valid = "w", true

	raw, err := json.Marshal(rec)
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.Equal(t, "w", out["subdomain"])
	assert.Equal(t, "core", out["type"])
	assert.NotContains(t, out, "gaTagId")
}
