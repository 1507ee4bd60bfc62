package memory_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-attractions/pkg/attractions"
	"github.com/tendant/simple-attractions/pkg/attractions/repo/memory"
	"github.com/tendant/simple-attractions/pkg/attractions/repo/repotest"
)

func TestMemoryRepository(t *testing.T) {
	repotest.Run(t, func(t *testing.T) attractions.Repository {
		return memory.New()
	})
}

func TestMemoryRepository_ReturnsCopies(t *testing.T) {
	repo := memory.New()
	ctx := context.Background()

	a := &attractions.Attraction{ID: uuid.New().String(), Name: "Louvre", Location: "Paris"}
	require.NoError(t, repo.CreateAttraction(ctx, a))
	a.Name = "changed by caller"

	got, err := repo.GetAttraction(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "Louvre", got.Name)

	got.Location = "changed by reader"
	list, err := repo.ListAttractions(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Paris", list[0].Location)
}
