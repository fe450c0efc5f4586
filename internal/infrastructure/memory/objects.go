package memory

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"path"
	"strings"
	"sync"

	"github.com/google/uuid"

	"cloudy/internal/application/ports"
	"cloudy/internal/domain/apperr"
)

type blob struct {
	obj  ports.Object
	data []byte
}

// ObjectStore keeps uploaded bytes in memory. URLs point at publicBase.
type ObjectStore struct {
	mu         sync.RWMutex
	blobs      map[string]blob
	publicBase string
}

func NewObjectStore(publicBase string) *ObjectStore {
	return &ObjectStore{
		blobs:      make(map[string]blob),
		publicBase: strings.TrimRight(publicBase, "/"),
	}
}

func (s *ObjectStore) Put(ctx context.Context, name string, size int64, r io.Reader) (*ports.Object, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := io.ReadAll(io.LimitReader(r, size+1))
	if err != nil {
		return nil, fmt.Errorf("read upload %q: %w", name, err)
	}
	if int64(len(data)) != size {
		return nil, fmt.Errorf("%w: %q declared %d bytes, got %d", apperr.ErrInvalidInput, name, size, len(data))
	}

	obj := ports.Object{
		ID:       uuid.NewString(),
		Name:     name,
		Size:     size,
		MimeType: mime.TypeByExtension(path.Ext(name)),
	}

	s.mu.Lock()
	s.blobs[obj.ID] = blob{obj: obj, data: data}
	s.mu.Unlock()

	return &obj, nil
}

func (s *ObjectStore) Get(_ context.Context, objectID string) (io.ReadCloser, error) {
	s.mu.RLock()
	b, ok := s.blobs[objectID]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("object %s: %w", objectID, apperr.ErrNotFound)
	}
	return io.NopCloser(bytes.NewReader(b.data)), nil
}

func (s *ObjectStore) Delete(_ context.Context, objectID string) error {
	s.mu.Lock()
	delete(s.blobs, objectID)
	s.mu.Unlock()
	return nil
}

func (s *ObjectStore) URL(objectID string) string {
	return s.publicBase + "/" + objectID
}

// Len reports the number of stored objects.
func (s *ObjectStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.blobs)
}
