package repository_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fanspark/discovery/internal/db"
	"github.com/fanspark/discovery/internal/repository"
)

func TestHasMatchIsDirectionless(t *testing.T) {
	ctx := context.Background()
	dbase := setupTestDB(t)
	repo := repository.NewMatchRepository(dbase)

	require.NoError(t, dbase.Create(&db.Match{UserLowID: 1, UserHighID: 2}).Error)

	ok, err := repo.HasMatch(ctx, 1, 2)
	assert.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.HasMatch(ctx, 2, 1)
	assert.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.HasMatch(ctx, 1, 3)
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestMaterializeIfReciprocal(t *testing.T) {
	ctx := context.Background()
	dbase := setupTestDB(t)
	likes := repository.NewLikeRepository(dbase)
	matches := repository.NewMatchRepository(dbase)

	// one-way like does not materialize
	_ = likes.CreateLike(ctx, 1, 2, false)
	require.NoError(t, matches.MaterializeIfReciprocal(ctx, 1, 2))
	ok, _ := matches.HasMatch(ctx, 1, 2)
	assert.False(t, ok)

	// reciprocal like does
	_ = likes.CreateLike(ctx, 2, 1, false)
	require.NoError(t, matches.MaterializeIfReciprocal(ctx, 2, 1))
	ok, _ = matches.HasMatch(ctx, 1, 2)
	assert.True(t, ok)

	// idempotent: re-running leaves a single row
	require.NoError(t, matches.MaterializeIfReciprocal(ctx, 1, 2))
	var count int64
	dbase.Table("matches").Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestListMatches(t *testing.T) {
	ctx := context.Background()
	dbase := setupTestDB(t)
	repo := repository.NewMatchRepository(dbase)

	require.NoError(t, dbase.Create(&db.Match{UserLowID: 1, UserHighID: 2}).Error)
	require.NoError(t, dbase.Create(&db.Match{UserLowID: 2, UserHighID: 5}).Error)
	require.NoError(t, dbase.Create(&db.Match{UserLowID: 3, UserHighID: 4}).Error)

	matches, err := repo.ListMatches(ctx, 2)
	assert.NoError(t, err)
	assert.Len(t, matches, 2)
}
