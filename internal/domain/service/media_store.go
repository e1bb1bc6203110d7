package service

import (
	"context"
	"errors"
	"io"
	"time"
)

// ErrMediaNotFound is returned when no blob exists under the requested name.
var ErrMediaNotFound = errors.New("media not found")

// ErrInvalidMediaName is returned for names that could escape the store's namespace.
var ErrInvalidMediaName = errors.New("invalid media name")

// MediaAttributes describes a stored blob.
type MediaAttributes struct {
	ContentType string
	Size        int64
	ModTime     time.Time
}

// MediaObject is an open blob. The caller must Close it.
type MediaObject struct {
	io.ReadCloser
	Attributes MediaAttributes
}

// MediaStore keeps uploaded media as named blobs.
type MediaStore interface {
	// Write streams r into a blob called name and returns the number of bytes written.
	// When the copy fails the partial blob is discarded.
	Write(ctx context.Context, name string, r io.Reader, contentType string) (int64, error)

	Open(ctx context.Context, name string) (*MediaObject, error)

	// Delete removes a blob. Deleting a missing blob returns ErrMediaNotFound.
	Delete(ctx context.Context, name string) error

	Exists(ctx context.Context, name string) (bool, error)

	Close() error
}
