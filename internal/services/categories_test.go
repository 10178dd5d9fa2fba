package services

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/bookshelf/internal/config"
	"github.com/mrlokans/bookshelf/internal/database"
	"github.com/mrlokans/bookshelf/internal/database/categories"
	"github.com/mrlokans/bookshelf/internal/entities"
)

func setupService(t *testing.T, defaults ...string) (*CategoryService, *categories.Repository) {
	t.Helper()
	db, err := database.NewDatabase(config.Database{
		Path:     filepath.Join(t.TempDir(), "services.db"),
		LogLevel: "silent",
	})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo := categories.NewRepository(db.DB)
	return NewCategoryService(repo, defaults), repo
}

func names(list []entities.Category) []string {
	out := make([]string, len(list))
	for i, c := range list {
		out[i] = c.Name
	}
	return out
}

func TestCategoryService_CreateAndList(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	for _, name := range []string{"fiction", "poetry", "essays"} {
		_, err := svc.CreateCategory(ctx, 1, name)
		require.NoError(t, err)
	}
	_, err := svc.CreateCategory(ctx, 1, "poetry")
	assert.ErrorIs(t, err, categories.ErrDuplicateName)

	list, err := svc.ListCategories(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"fiction", "poetry", "essays"}, names(list))
	assert.Equal(t, []int{1, 2, 3}, []int{list[0].Position, list[1].Position, list[2].Position})
}

func TestCategoryService_SwapPositions(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	for _, name := range []string{"a", "b", "c"} {
		_, err := svc.CreateCategory(ctx, 1, name)
		require.NoError(t, err)
	}

	require.NoError(t, svc.SwapPositions(ctx, 1, "a", 3))
	list, err := svc.ListCategories(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "b", "a"}, names(list))

	assert.ErrorIs(t, svc.SwapPositions(ctx, 1, "missing", 1), categories.ErrNotFound)
	assert.ErrorIs(t, svc.SwapPositions(ctx, 1, "a", 99), categories.ErrNotFound)
	assert.ErrorIs(t, svc.SwapPositions(ctx, 2, "a", 1), categories.ErrNotFound)
}

func TestCategoryService_BulkSetPositions(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	for _, name := range []string{"a", "b", "c"} {
		_, err := svc.CreateCategory(ctx, 1, name)
		require.NoError(t, err)
	}

	require.NoError(t, svc.BulkSetPositions(ctx, 1, map[string]int{"a": 3, "b": 1, "c": 2}))
	list, err := svc.ListCategories(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "c", "a"}, names(list))
}

func TestCategoryService_BulkSetPositions_ConflictRollsBack(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	for _, name := range []string{"a", "b"} {
		_, err := svc.CreateCategory(ctx, 1, name)
		require.NoError(t, err)
	}

	err := svc.BulkSetPositions(ctx, 1, map[string]int{"a": 1, "b": 1})

	var conflict *categories.ConstraintViolationError
	require.True(t, errors.As(err, &conflict))
	assert.Equal(t, uint(1), conflict.Owner)
	assert.Equal(t, 1, conflict.Position)

	list, err := svc.ListCategories(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, names(list))
	assert.Equal(t, 2, list[1].Position)
}

func TestCategoryService_BulkSetPositions_UnknownNameWritesNothing(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	for _, name := range []string{"a", "b"} {
		_, err := svc.CreateCategory(ctx, 1, name)
		require.NoError(t, err)
	}

	err := svc.BulkSetPositions(ctx, 1, map[string]int{"a": 2, "b": 1, "ghost": 3})

	assert.ErrorIs(t, err, categories.ErrNotFound)
	list, err := svc.ListCategories(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, names(list))
}

func TestCategoryService_RenameDeleteNormalize(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	for _, name := range []string{"a", "b", "c"} {
		_, err := svc.CreateCategory(ctx, 1, name)
		require.NoError(t, err)
	}

	renamed, err := svc.RenameCategory(ctx, 1, "c", "classics")
	require.NoError(t, err)
	assert.Equal(t, 3, renamed.Position)

	require.NoError(t, svc.DeleteCategory(ctx, 1, "a"))

	moved, err := svc.NormalizePositions(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, moved)

	list, err := svc.ListCategories(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "classics"}, names(list))
	assert.Equal(t, 1, list[0].Position)
	assert.Equal(t, 2, list[1].Position)
}

func TestCategoryService_EnsureDefaultCategories(t *testing.T) {
	svc, _ := setupService(t, entities.DefaultCategoryNames...)
	ctx := context.Background()

	created, err := svc.EnsureDefaultCategories(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, entities.DefaultCategoryNames, names(created))

	created, err = svc.EnsureDefaultCategories(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, created)

	none, _ := setupService(t)
	created, err = none.EnsureDefaultCategories(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, created)
}
