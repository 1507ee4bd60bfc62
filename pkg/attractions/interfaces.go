package attractions

import (
	"context"
	"io"
)

// BlobStore defines the interface for image storage backends
type BlobStore interface {
	// UploadWithParams stores the bytes read from reader under params.ObjectKey
	UploadWithParams(ctx context.Context, reader io.Reader, params UploadParams) error

	// Download opens a stored object
	Download(ctx context.Context, objectKey string) (io.ReadCloser, error)

	// Delete removes a stored object
	Delete(ctx context.Context, objectKey string) error

	// GetObjectMeta retrieves metadata for a stored object
	GetObjectMeta(ctx context.Context, objectKey string) (*ObjectMeta, error)
}

// Repository defines the interface for attraction persistence
type Repository interface {
	ListAttractions(ctx context.Context) ([]*Attraction, error)
	GetAttraction(ctx context.Context, id string) (*Attraction, error)
	CreateAttraction(ctx context.Context, attraction *Attraction) error

	// UpdateAttraction applies patch to the record with id. matched is false
	// when no record has that id.
	UpdateAttraction(ctx context.Context, id string, patch AttractionPatch) (matched bool, err error)

	// DeleteAttraction removes the record with id. deleted is false when no
	// record had that id.
	DeleteAttraction(ctx context.Context, id string) (deleted bool, err error)
}
