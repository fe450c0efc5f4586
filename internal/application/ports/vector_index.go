package ports

import "context"

type Match struct {
	ID       string
	Score    float64
	Metadata map[string]string
}

// VectorIndex holds one entry per file id. Upsert overwrites.
type VectorIndex interface {
	Upsert(ctx context.Context, id string, vector []float64, metadata map[string]string) error
	Query(ctx context.Context, vector []float64, topK int) ([]Match, error)
	Delete(ctx context.Context, id string) error
}
