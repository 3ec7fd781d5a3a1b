package repository

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFollowRepository(t *testing.T) {
	db := setupSQLite(t)
	repo := NewFollowRepository(db)
	ctx := context.Background()

	leo := mustUser(t, db, "leo")
	anna := mustUser(t, db, "anna")
	bob := mustUser(t, db, "bob")

	require.NoError(t, repo.Create(ctx, leo.ID, anna.ID))
	require.NoError(t, repo.Create(ctx, leo.ID, anna.ID), "second follow is a no-op")
	require.NoError(t, repo.Create(ctx, bob.ID, anna.ID))

	ok, err := repo.Exists(ctx, leo.ID, anna.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.Exists(ctx, anna.ID, leo.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	followers, err := repo.CountFollowers(ctx, anna.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), followers)

	following, err := repo.CountFollowing(ctx, leo.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), following)

	require.NoError(t, repo.Delete(ctx, leo.ID, anna.ID))
	require.NoError(t, repo.Delete(ctx, leo.ID, anna.ID), "deleting a missing edge is a no-op")

	ok, err = repo.Exists(ctx, leo.ID, anna.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFollowRepository_CreateUsesOnConflict(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewFollowRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "follows" ("user_id","author_id") VALUES ($1,$2) ON CONFLICT DO NOTHING RETURNING "id"`)).
		WithArgs(1, 2).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectCommit()

	require.NoError(t, repo.Create(context.Background(), 1, 2))
	assert.NoError(t, mock.ExpectationsWereMet())
}
