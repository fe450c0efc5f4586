package memory

import (
	"context"
	"sync"
)

// Views counts invalidations per listing path.
type Views struct {
	mu       sync.Mutex
	versions map[string]int64
}

func NewViews() *Views { return &Views{versions: make(map[string]int64)} }

func (v *Views) Invalidate(_ context.Context, paths ...string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	for _, p := range paths {
		v.versions[p]++
	}
	return nil
}

func (v *Views) Version(_ context.Context, path string) (int64, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.versions[path], nil
}
