// Package repotest holds behaviour every attractions.Repository must share.
// Backend packages run it from their own tests.
package repotest

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-attractions/pkg/attractions"
)

// Factory returns an empty repository. It is called once per subtest.
type Factory func(t *testing.T) attractions.Repository

func strPtr(s string) *string { return &s }

func newAttraction(name, location string) *attractions.Attraction {
	return &attractions.Attraction{
		ID:       uuid.New().String(),
		Name:     name,
		Location: location,
	}
}

// Run exercises list, get, create, update and delete against repositories from newRepo.
func Run(t *testing.T, newRepo Factory) {
	ctx := context.Background()

	t.Run("ListEmpty", func(t *testing.T) {
		repo := newRepo(t)

		list, err := repo.ListAttractions(ctx)
		require.NoError(t, err)
		assert.Empty(t, list)
	})

	t.Run("CreateAndGet", func(t *testing.T) {
		repo := newRepo(t)
		a := newAttraction("Eiffel Tower", "Paris")
		a.AttractionImage = "2024-01-02T03:04:05.678Ztower.png"

		require.NoError(t, repo.CreateAttraction(ctx, a))

		got, err := repo.GetAttraction(ctx, a.ID)
		require.NoError(t, err)
		assert.Equal(t, a, got)
	})

	t.Run("CreateDuplicate", func(t *testing.T) {
		repo := newRepo(t)
		a := newAttraction("Louvre", "Paris")

		require.NoError(t, repo.CreateAttraction(ctx, a))
		err := repo.CreateAttraction(ctx, a)
		assert.True(t, errors.Is(err, attractions.ErrDuplicateID), "got %v", err)
	})

	t.Run("GetMissing", func(t *testing.T) {
		repo := newRepo(t)

		_, err := repo.GetAttraction(ctx, uuid.New().String())
		assert.True(t, errors.Is(err, attractions.ErrAttractionNotFound), "got %v", err)
	})

	t.Run("ListInCreationOrder", func(t *testing.T) {
		repo := newRepo(t)
		created := []*attractions.Attraction{
			newAttraction("first", "a"),
			newAttraction("second", "b"),
			newAttraction("third", "c"),
		}
		for _, a := range created {
			require.NoError(t, repo.CreateAttraction(ctx, a))
		}

		list, err := repo.ListAttractions(ctx)
		require.NoError(t, err)
		require.Len(t, list, len(created))
		for i, a := range created {
			assert.Equal(t, a, list[i])
		}
	})

	t.Run("UpdateSetsOnlyPatchedFields", func(t *testing.T) {
		repo := newRepo(t)
		a := newAttraction("Big Ben", "London")
		require.NoError(t, repo.CreateAttraction(ctx, a))

		matched, err := repo.UpdateAttraction(ctx, a.ID, attractions.AttractionPatch{Name: strPtr("Elizabeth Tower")})
		require.NoError(t, err)
		assert.True(t, matched)

		got, err := repo.GetAttraction(ctx, a.ID)
		require.NoError(t, err)
		assert.Equal(t, a.ID, got.ID)
		assert.Equal(t, "Elizabeth Tower", got.Name)
		assert.Equal(t, "London", got.Location)

		matched, err = repo.UpdateAttraction(ctx, a.ID, attractions.AttractionPatch{
			Location:        strPtr("Westminster"),
			AttractionImage: strPtr("ben.jpg"),
		})
		require.NoError(t, err)
		assert.True(t, matched)

		got, err = repo.GetAttraction(ctx, a.ID)
		require.NoError(t, err)
		assert.Equal(t, "Elizabeth Tower", got.Name)
		assert.Equal(t, "Westminster", got.Location)
		assert.Equal(t, "ben.jpg", got.AttractionImage)
	})

	t.Run("UpdateMissing", func(t *testing.T) {
		repo := newRepo(t)

		matched, err := repo.UpdateAttraction(ctx, uuid.New().String(), attractions.AttractionPatch{Name: strPtr("X")})
		require.NoError(t, err)
		assert.False(t, matched)

		list, err := repo.ListAttractions(ctx)
		require.NoError(t, err)
		assert.Empty(t, list)
	})

	t.Run("Delete", func(t *testing.T) {
		repo := newRepo(t)
		keep := newAttraction("keep", "here")
		gone := newAttraction("gone", "there")
		require.NoError(t, repo.CreateAttraction(ctx, keep))
		require.NoError(t, repo.CreateAttraction(ctx, gone))

		deleted, err := repo.DeleteAttraction(ctx, gone.ID)
		require.NoError(t, err)
		assert.True(t, deleted)

		_, err = repo.GetAttraction(ctx, gone.ID)
		assert.True(t, errors.Is(err, attractions.ErrAttractionNotFound))

		list, err := repo.ListAttractions(ctx)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, keep.ID, list[0].ID)

		deleted, err = repo.DeleteAttraction(ctx, gone.ID)
		require.NoError(t, err)
		assert.False(t, deleted)
	})
}
