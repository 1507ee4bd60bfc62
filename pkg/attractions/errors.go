package attractions

import (
	"errors"
	"fmt"
)

var (
	// ErrAttractionNotFound indicates no attraction exists for an identifier
	ErrAttractionNotFound = errors.New("attraction not found")

	// ErrDuplicateID indicates an attempt to create a record with an existing id
	ErrDuplicateID = errors.New("attraction already exists")

	// ErrInvalidID indicates an identifier that is not a valid attraction id
	ErrInvalidID = errors.New("invalid attraction id")

	// ErrInvalidUpdate indicates an update operation naming an unknown field or carrying a bad value
	ErrInvalidUpdate = errors.New("invalid update operation")

	// ErrObjectNotFound indicates a blob was not found in storage
	ErrObjectNotFound = errors.New("object not found")

	// ErrFileTooLarge indicates an uploaded file exceeded the size limit
	ErrFileTooLarge = errors.New("file too large")

	// ErrUnexpectedFile indicates a second file, or a file under an unknown field
	ErrUnexpectedFile = errors.New("unexpected file")

	// ErrUploadFailed indicates the blob store could not persist an upload
	ErrUploadFailed = errors.New("upload failed")
)

// AttractionError represents an error related to an attraction operation
type AttractionError struct {
	ID  string
	Op  string
	Err error
}

func (e *AttractionError) Error() string {
	return fmt.Sprintf("attraction operation %s failed for attraction %s: %v", e.Op, e.ID, e.Err)
}

func (e *AttractionError) Unwrap() error {
	return e.Err
}

// UploadError represents an error related to storing an uploaded image
type UploadError struct {
	Name string
	Op   string
	Err  error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("upload operation %s failed for %s: %v", e.Op, e.Name, e.Err)
}

func (e *UploadError) Unwrap() error {
	return e.Err
}
