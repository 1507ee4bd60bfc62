package attractions

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"
)

const (
	// ImageFieldName is the multipart field carrying the attraction image
	ImageFieldName = "attractionImage"

	// MaxImageBytes is the largest accepted image, 5 MiB
	MaxImageBytes int64 = 5 * 1024 * 1024

	// objectNameTimeFormat is ISO-8601 in UTC with millisecond precision
	objectNameTimeFormat = "2006-01-02T15:04:05.000Z"
)

// UploadPolicy decides which uploaded files are stored.
type UploadPolicy struct {
	FieldName    string
	MaxBytes     int64
	AllowedTypes []string
}

// DefaultUploadPolicy accepts jpeg and png images up to 5 MiB.
func DefaultUploadPolicy() UploadPolicy {
	return UploadPolicy{
		FieldName:    ImageFieldName,
		MaxBytes:     MaxImageBytes,
		AllowedTypes: []string{"image/jpeg", "image/png"},
	}
}

// Allows reports whether mediaType is accepted. Parameters such as
// "; charset=" are ignored.
func (p UploadPolicy) Allows(mediaType string) bool {
	mt := strings.ToLower(strings.TrimSpace(mediaType))
	if i := strings.Index(mt, ";"); i >= 0 {
		mt = strings.TrimSpace(mt[:i])
	}
	for _, allowed := range p.AllowedTypes {
		if mt == allowed {
			return true
		}
	}
	return false
}

// UploadDecision is either Accepted with a generated object name or
// Rejected with a reason.
type UploadDecision struct {
	Accepted  bool
	Name      string
	MediaType string
	Reason    string
}

// Accepted builds an accepting decision.
func Accepted(name, mediaType string) UploadDecision {
	return UploadDecision{Accepted: true, Name: name, MediaType: mediaType}
}

// Rejected builds a rejecting decision.
func Rejected(reason string) UploadDecision {
	return UploadDecision{Reason: reason}
}

// GenerateObjectName returns the timestamp of now followed by the base
// name of the original filename.
func GenerateObjectName(now time.Time, originalName string) string {
	base := filepath.Base(filepath.Clean("/" + strings.ReplaceAll(originalName, "\\", "/")))
	if base == "/" || base == "." {
		base = ""
	}
	return now.UTC().Format(objectNameTimeFormat) + base
}

// Decide applies the policy to a file.
func (p UploadPolicy) Decide(now time.Time, originalName, mediaType string) UploadDecision {
	if !p.Allows(mediaType) {
		return Rejected(fmt.Sprintf("media type %q not accepted", mediaType))
	}
	return Accepted(GenerateObjectName(now, originalName), mediaType)
}

// readLimited reads all of r, failing with ErrFileTooLarge once more than
// max bytes have been seen.
func readLimited(r io.Reader, max int64) ([]byte, error) {
	var buf bytes.Buffer
	n, err := io.Copy(&buf, io.LimitReader(r, max+1))
	if err != nil {
		return nil, err
	}
	if n > max {
		return nil, ErrFileTooLarge
	}
	return buf.Bytes(), nil
}

// storeImage writes an accepted upload to store, enforcing the size limit
// before anything is persisted.
func storeImage(ctx context.Context, store BlobStore, policy UploadPolicy, decision UploadDecision, r io.Reader) error {
	data, err := readLimited(r, policy.MaxBytes)
	if err != nil {
		return &UploadError{Name: decision.Name, Op: "read", Err: err}
	}
	params := UploadParams{ObjectKey: decision.Name, MimeType: decision.MediaType}
	if err := store.UploadWithParams(ctx, bytes.NewReader(data), params); err != nil {
		return &UploadError{Name: decision.Name, Op: "store", Err: fmt.Errorf("%w: %v", ErrUploadFailed, err)}
	}
	return nil
}
