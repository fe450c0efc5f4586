package ports

import (
	"context"
	"io"
)

// Object is what the object store knows about an uploaded blob.
type Object struct {
	ID       string
	Name     string
	Size     int64
	MimeType string
}

type ObjectStore interface {
	Put(ctx context.Context, name string, size int64, r io.Reader) (*Object, error)
	Get(ctx context.Context, objectID string) (io.ReadCloser, error)
	Delete(ctx context.Context, objectID string) error
	URL(objectID string) string
}
