package attractions_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-attractions/pkg/attractions"
	"github.com/tendant/simple-attractions/pkg/attractions/repo/memory"
	memorystorage "github.com/tendant/simple-attractions/pkg/attractions/storage/memory"
)

var fixedNow = time.Date(2024, 5, 6, 7, 8, 9, 10000000, time.UTC)

func setupService(t *testing.T, opts ...attractions.Option) (attractions.Service, *memory.Repository, *memorystorage.Backend) {
	t.Helper()
	repo := memory.New()
	store := memorystorage.New()
	base := []attractions.Option{
		attractions.WithRepository(repo),
		attractions.WithBlobStore(store),
		attractions.WithClock(func() time.Time { return fixedNow }),
	}
	svc, err := attractions.New(append(base, opts...)...)
	require.NoError(t, err)
	return svc, repo, store
}

func TestServiceCreation(t *testing.T) {
	tests := []struct {
		name        string
		options     []attractions.Option
		expectError bool
	}{
		{
			name:        "no options should fail",
			options:     []attractions.Option{},
			expectError: true,
		},
		{
			name: "repository without blob store should fail",
			options: []attractions.Option{
				attractions.WithRepository(memory.New()),
			},
			expectError: true,
		},
		{
			name: "with repository and blob store should succeed",
			options: []attractions.Option{
				attractions.WithRepository(memory.New()),
				attractions.WithBlobStore(memorystorage.New()),
			},
			expectError: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := attractions.New(tt.options...)

			if tt.expectError {
				assert.Error(t, err)
				assert.Nil(t, svc)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, svc)
			}
		})
	}
}

func TestAttractionOperations(t *testing.T) {
	svc, _, _ := setupService(t)
	ctx := context.Background()

	list, err := svc.ListAttractions(ctx)
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)

	created, err := svc.CreateAttraction(ctx, attractions.CreateAttractionRequest{
		Name:     "Eiffel Tower",
		Location: "Paris",
	})
	require.NoError(t, err)
	_, err = uuid.Parse(created.ID)
	require.NoError(t, err)

	got, err := svc.GetAttraction(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)

	t.Run("update", func(t *testing.T) {
		err := svc.UpdateAttraction(ctx, created.ID, []attractions.UpdateOperation{
			{PropName: "location", Value: "Paris, France"},
		})
		require.NoError(t, err)

		got, err := svc.GetAttraction(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "Eiffel Tower", got.Name)
		assert.Equal(t, "Paris, France", got.Location)
	})

	t.Run("empty update is a no-op", func(t *testing.T) {
		require.NoError(t, svc.UpdateAttraction(ctx, created.ID, nil))
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, svc.DeleteAttraction(ctx, created.ID))

		_, err := svc.GetAttraction(ctx, created.ID)
		assert.True(t, errors.Is(err, attractions.ErrAttractionNotFound))

		var attrErr *attractions.AttractionError
		require.True(t, errors.As(err, &attrErr))
		assert.Equal(t, "get", attrErr.Op)
	})

	t.Run("delete again still succeeds", func(t *testing.T) {
		assert.NoError(t, svc.DeleteAttraction(ctx, created.ID))
	})
}

func TestInvalidIDs(t *testing.T) {
	svc, _, _ := setupService(t)
	ctx := context.Background()

	_, err := svc.GetAttraction(ctx, "nope")
	assert.True(t, errors.Is(err, attractions.ErrInvalidID))

	err = svc.UpdateAttraction(ctx, "nope", []attractions.UpdateOperation{{PropName: "name", Value: "X"}})
	assert.True(t, errors.Is(err, attractions.ErrInvalidID))

	err = svc.DeleteAttraction(ctx, "nope")
	assert.True(t, errors.Is(err, attractions.ErrInvalidID))
}

func TestBuildPatch(t *testing.T) {
	tests := []struct {
		name    string
		ops     []attractions.UpdateOperation
		want    map[string]string
		wantErr bool
	}{
		{
			name: "single field",
			ops:  []attractions.UpdateOperation{{PropName: "name", Value: "X"}},
			want: map[string]string{"name": "X"},
		},
		{
			name: "all updatable fields",
			ops: []attractions.UpdateOperation{
				{PropName: "name", Value: "A"},
				{PropName: "location", Value: "B"},
				{PropName: "attractionImage", Value: "C.png"},
			},
			want: map[string]string{"name": "A", "location": "B", "attractionImage": "C.png"},
		},
		{
			name: "last operation wins",
			ops: []attractions.UpdateOperation{
				{PropName: "name", Value: "first"},
				{PropName: "name", Value: "second"},
			},
			want: map[string]string{"name": "second"},
		},
		{
			name: "empty",
			want: map[string]string{},
		},
		{
			name:    "identifier is not updatable",
			ops:     []attractions.UpdateOperation{{PropName: "_id", Value: "x"}},
			wantErr: true,
		},
		{
			name:    "unknown field",
			ops:     []attractions.UpdateOperation{{PropName: "rating", Value: "5"}},
			wantErr: true,
		},
		{
			name:    "non string value",
			ops:     []attractions.UpdateOperation{{PropName: "name", Value: 3.0}},
			wantErr: true,
		},
		{
			name:    "null value",
			ops:     []attractions.UpdateOperation{{PropName: "name", Value: nil}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			patch, err := attractions.BuildPatch(tt.ops)
			if tt.wantErr {
				assert.True(t, errors.Is(err, attractions.ErrInvalidUpdate))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, patch.Fields())
			assert.Equal(t, len(tt.want) == 0, patch.IsEmpty())
		})
	}
}

func TestCreateImageAttachment(t *testing.T) {
	ctx := context.Background()
	req := attractions.CreateAttractionRequest{Name: "Louvre", Location: "Paris", Image: "2024-05-06T07:08:09.010Zlouvre.png"}

	svc, repo, _ := setupService(t)
	created, err := svc.CreateAttraction(ctx, req)
	require.NoError(t, err)
	assert.Empty(t, created.AttractionImage)
	stored, err := repo.GetAttraction(ctx, created.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.AttractionImage)

	svc, repo, _ = setupService(t, attractions.WithAttachImages(true))
	created, err = svc.CreateAttraction(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, req.Image, created.AttractionImage)
	stored, err = repo.GetAttraction(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, req.Image, stored.AttractionImage)
}

func TestImageOperations(t *testing.T) {
	svc, _, store := setupService(t)
	ctx := context.Background()

	t.Run("rejected media type", func(t *testing.T) {
		decision := svc.AcceptImage("anim.gif", "image/gif")
		assert.False(t, decision.Accepted)
		assert.Error(t, svc.StoreImage(ctx, decision, strings.NewReader("GIF89a")))
		assert.Equal(t, 0, store.Len())
	})

	t.Run("store open discard", func(t *testing.T) {
		decision := svc.AcceptImage("photo.png", "image/png")
		require.True(t, decision.Accepted)
		assert.Equal(t, "2024-05-06T07:08:09.010Zphoto.png", decision.Name)

		require.NoError(t, svc.StoreImage(ctx, decision, strings.NewReader("png bytes")))

		rc, meta, err := svc.OpenImage(ctx, decision.Name)
		require.NoError(t, err)
		data, err := io.ReadAll(rc)
		require.NoError(t, rc.Close())
		require.NoError(t, err)
		assert.Equal(t, "png bytes", string(data))
		assert.Equal(t, "image/png", meta.ContentType)
		assert.Equal(t, int64(len(data)), meta.Size)

		require.NoError(t, svc.DiscardImage(ctx, decision.Name))
		_, _, err = svc.OpenImage(ctx, decision.Name)
		assert.True(t, errors.Is(err, attractions.ErrObjectNotFound))

		assert.NoError(t, svc.DiscardImage(ctx, decision.Name), "discarding twice is fine")
	})

	t.Run("oversized image is not stored", func(t *testing.T) {
		decision := svc.AcceptImage("big.jpg", "image/jpeg")
		big := bytes.Repeat([]byte{1}, int(attractions.MaxImageBytes)+1)

		err := svc.StoreImage(ctx, decision, bytes.NewReader(big))
		assert.True(t, errors.Is(err, attractions.ErrFileTooLarge))

		var uploadErr *attractions.UploadError
		require.True(t, errors.As(err, &uploadErr))
		assert.Equal(t, "read", uploadErr.Op)
		assert.Equal(t, 0, store.Len())
	})

	t.Run("custom policy", func(t *testing.T) {
		small, _, smallStore := setupService(t, attractions.WithUploadPolicy(attractions.UploadPolicy{
			FieldName:    attractions.ImageFieldName,
			MaxBytes:     4,
			AllowedTypes: []string{"image/webp"},
		}))
		decision := small.AcceptImage("a.webp", "image/webp")
		require.True(t, decision.Accepted)
		assert.True(t, errors.Is(small.StoreImage(ctx, decision, strings.NewReader("12345")), attractions.ErrFileTooLarge))
		require.NoError(t, small.StoreImage(ctx, decision, strings.NewReader("1234")))
		assert.Equal(t, 1, smallStore.Len())
	})
}
