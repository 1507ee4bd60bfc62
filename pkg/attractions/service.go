package attractions

import (
	"context"
	"io"
)

// Service defines the operations behind the attractions routes
type Service interface {
	// Attraction operations
	ListAttractions(ctx context.Context) ([]*Attraction, error)
	GetAttraction(ctx context.Context, id string) (*Attraction, error)
	CreateAttraction(ctx context.Context, req CreateAttractionRequest) (*Attraction, error)
	UpdateAttraction(ctx context.Context, id string, ops []UpdateOperation) error
	DeleteAttraction(ctx context.Context, id string) error

	// Image operations
	AcceptImage(originalName, mediaType string) UploadDecision
	StoreImage(ctx context.Context, decision UploadDecision, reader io.Reader) error
	DiscardImage(ctx context.Context, name string) error
	OpenImage(ctx context.Context, name string) (io.ReadCloser, *ObjectMeta, error)
}
