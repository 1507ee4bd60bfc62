package attractions

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// service implements the Service interface
type service struct {
	repository   Repository
	blobStore    BlobStore
	policy       UploadPolicy
	attachImages bool
	now          func() time.Time
	logger       *slog.Logger
}

// Option represents a functional option for configuring the service
type Option func(*service)

// WithRepository sets the repository for the service
func WithRepository(repo Repository) Option {
	return func(s *service) {
		s.repository = repo
	}
}

// WithBlobStore sets the image storage backend
func WithBlobStore(store BlobStore) Option {
	return func(s *service) {
		s.blobStore = store
	}
}

// WithUploadPolicy overrides the default image upload policy
func WithUploadPolicy(policy UploadPolicy) Option {
	return func(s *service) {
		s.policy = policy
	}
}

// WithAttachImages controls whether an accepted image name is written to the
// created record. By default the image is stored but not attached.
func WithAttachImages(attach bool) Option {
	return func(s *service) {
		s.attachImages = attach
	}
}

// WithClock sets the time source used to name uploads
func WithClock(now func() time.Time) Option {
	return func(s *service) {
		s.now = now
	}
}

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(s *service) {
		s.logger = logger
	}
}

// New creates a new service instance with the given options
func New(options ...Option) (Service, error) {
	s := &service{
		policy: DefaultUploadPolicy(),
		now:    time.Now,
		logger: slog.Default(),
	}

	for _, option := range options {
		option(s)
	}

	if s.repository == nil {
		return nil, fmt.Errorf("repository is required")
	}
	if s.blobStore == nil {
		return nil, fmt.Errorf("blob store is required")
	}

	return s, nil
}

func parseID(id string) (string, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return parsed.String(), nil
}

// Attraction operations

func (s *service) ListAttractions(ctx context.Context) ([]*Attraction, error) {
	list, err := s.repository.ListAttractions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list attractions: %w", err)
	}
	if list == nil {
		list = []*Attraction{}
	}
	return list, nil
}

func (s *service) GetAttraction(ctx context.Context, id string) (*Attraction, error) {
	key, err := parseID(id)
	if err != nil {
		return nil, err
	}
	attraction, err := s.repository.GetAttraction(ctx, key)
	if err != nil {
		return nil, &AttractionError{ID: key, Op: "get", Err: err}
	}
	return attraction, nil
}

func (s *service) CreateAttraction(ctx context.Context, req CreateAttractionRequest) (*Attraction, error) {
	attraction := &Attraction{
		ID:       uuid.New().String(),
		Name:     req.Name,
		Location: req.Location,
	}
	if s.attachImages {
		attraction.AttractionImage = req.Image
	}

	if err := s.repository.CreateAttraction(ctx, attraction); err != nil {
		return nil, &AttractionError{ID: attraction.ID, Op: "create", Err: err}
	}

	s.logger.Info("Attraction created", "attraction_id", attraction.ID)
	return attraction, nil
}

func (s *service) UpdateAttraction(ctx context.Context, id string, ops []UpdateOperation) error {
	key, err := parseID(id)
	if err != nil {
		return err
	}
	patch, err := BuildPatch(ops)
	if err != nil {
		return err
	}
	if patch.IsEmpty() {
		return nil
	}

	matched, err := s.repository.UpdateAttraction(ctx, key, patch)
	if err != nil {
		return &AttractionError{ID: key, Op: "update", Err: err}
	}
	if !matched {
		s.logger.Warn("Update matched no attraction", "attraction_id", key)
	}
	return nil
}

func (s *service) DeleteAttraction(ctx context.Context, id string) error {
	key, err := parseID(id)
	if err != nil {
		return err
	}
	deleted, err := s.repository.DeleteAttraction(ctx, key)
	if err != nil {
		return &AttractionError{ID: key, Op: "delete", Err: err}
	}
	if !deleted {
		s.logger.Warn("Delete matched no attraction", "attraction_id", key)
	}
	return nil
}

// BuildPatch validates ops against the updatable fields. Later operations
// on the same field win.
func BuildPatch(ops []UpdateOperation) (AttractionPatch, error) {
	var patch AttractionPatch
	for _, op := range ops {
		value, ok := op.Value.(string)
		if !ok {
			return AttractionPatch{}, fmt.Errorf("%w: value of %q must be a string", ErrInvalidUpdate, op.PropName)
		}
		switch op.PropName {
		case FieldName:
			patch.Name = &value
		case FieldLocation:
			patch.Location = &value
		case FieldAttractionImage:
			patch.AttractionImage = &value
		default:
			return AttractionPatch{}, fmt.Errorf("%w: field %q is not updatable", ErrInvalidUpdate, op.PropName)
		}
	}
	return patch, nil
}

// Image operations

func (s *service) AcceptImage(originalName, mediaType string) UploadDecision {
	return s.policy.Decide(s.now(), originalName, mediaType)
}

func (s *service) StoreImage(ctx context.Context, decision UploadDecision, reader io.Reader) error {
	if !decision.Accepted {
		return fmt.Errorf("store image: %s", decision.Reason)
	}
	return storeImage(ctx, s.blobStore, s.policy, decision, reader)
}

func (s *service) DiscardImage(ctx context.Context, name string) error {
	if err := s.blobStore.Delete(ctx, name); err != nil && !errors.Is(err, ErrObjectNotFound) {
		return &UploadError{Name: name, Op: "discard", Err: err}
	}
	return nil
}

func (s *service) OpenImage(ctx context.Context, name string) (io.ReadCloser, *ObjectMeta, error) {
	meta, err := s.blobStore.GetObjectMeta(ctx, name)
	if err != nil {
		return nil, nil, err
	}
	rc, err := s.blobStore.Download(ctx, name)
	if err != nil {
		return nil, nil, err
	}
	return rc, meta, nil
}
