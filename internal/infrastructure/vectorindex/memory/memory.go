// Package memory is an in-process vector index using brute-force cosine
// similarity. Fine for development and tests.
package memory

import (
	"context"
	"errors"
	"math"
	"sort"
	"sync"

	"cloudy/internal/application/ports"
)

type entry struct {
	vector   []float64
	metadata map[string]string
}

type Index struct {
	mu      sync.RWMutex
	entries map[string]entry
}

func New() *Index { return &Index{entries: make(map[string]entry)} }

func (s *Index) Upsert(_ context.Context, id string, vector []float64, metadata map[string]string) error {
	if len(vector) == 0 {
		return errors.New("empty vector")
	}
	md := make(map[string]string, len(metadata))
	for k, v := range metadata {
		md[k] = v
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[id] = entry{vector: normalize(vector), metadata: md}

	return nil
}

func (s *Index) Query(_ context.Context, vector []float64, topK int) ([]ports.Match, error) {
	if topK <= 0 {
		topK = 5
	}
	q := normalize(vector)

	s.mu.RLock()
	out := make([]ports.Match, 0, len(s.entries))
	for id, e := range s.entries {
		out = append(out, ports.Match{ID: id, Score: dot(q, e.vector), Metadata: e.metadata})
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Score == out[j].Score {
			return out[i].ID < out[j].ID
		}
		return out[i].Score > out[j].Score
	})
	if len(out) > topK {
		out = out[:topK]
	}

	return out, nil
}

func (s *Index) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, id)
	return nil
}

// Len reports the number of indexed entries.
func (s *Index) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

func normalize(v []float64) []float64 {
	var sum float64
	for _, x := range v {
		sum += x * x
	}
	out := make([]float64, len(v))
	if sum == 0 {
		return out
	}
	n := math.Sqrt(sum)
	for i, x := range v {
		out[i] = x / n
	}
	return out
}

func dot(a, b []float64) float64 {
	n := min(len(a), len(b))
	sum := 0.0
	for i := 0; i < n; i++ {
		sum += a[i] * b[i]
	}
	return sum
}
