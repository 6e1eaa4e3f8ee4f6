// Package mediastore stores photo blobs attached to property visits and
// hands back opaque locators for later retrieval.
package mediastore

import (
	"context"
	"errors"
	"io"
)

// ErrNotFound indicates no blob exists for the locator. Deletion callers
// tolerate it: a missing blob and a deleted blob are the same outcome.
var ErrNotFound = errors.New("photo not found")

// Store is the blob storage boundary. Save namespaces the blob under the
// owning meeting id and the upload timestamp, so locators never collide.
type Store interface {
	Save(ctx context.Context, meetingID, mimeType string, r io.Reader) (locator string, err error)
	Open(ctx context.Context, locator string) (io.ReadCloser, string, error)
	Delete(ctx context.Context, locator string) error
}
