// Package qdrant is a minimal REST client to Qdrant holding one point per file.
package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"cloudy/internal/application/ports"
	"cloudy/internal/domain/apperr"
)

type Config struct {
	URL        string
	APIKey     string
	Collection string
	Timeout    time.Duration
}

// Index assumes cosine distance. The collection is created on the first
// upsert, when the vector size is known.
type Index struct {
	url        string
	apiKey     string
	collection string
	client     *http.Client

	mu        sync.Mutex
	dimension int
}

func New(cfg Config) *Index {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &Index{
		url:        cfg.URL,
		apiKey:     cfg.APIKey,
		collection: cfg.Collection,
		client:     &http.Client{Timeout: timeout},
	}
}

func (s *Index) ensureCollection(ctx context.Context, dimension int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.dimension == dimension {
		return nil
	}

	body := map[string]any{
		"vectors": map[string]any{
			"size":     dimension,
			"distance": "Cosine",
		},
	}
	// 409 means the collection is already there
	status, err := s.do(ctx, http.MethodPut, s.collectionURL(""), body, nil)
	if err != nil && status != http.StatusConflict {
		return err
	}
	s.dimension = dimension

	return nil
}

func (s *Index) Upsert(ctx context.Context, id string, vector []float64, metadata map[string]string) error {
	if len(vector) == 0 {
		return fmt.Errorf("qdrant upsert %s: empty vector", id)
	}
	if err := s.ensureCollection(ctx, len(vector)); err != nil {
		return err
	}

	body := map[string]any{
		"points": []map[string]any{{
			"id":      id,
			"vector":  vector,
			"payload": metadata,
		}},
	}
	_, err := s.do(ctx, http.MethodPut, s.collectionURL("/points?wait=true"), body, nil)
	return err
}

func (s *Index) Query(ctx context.Context, vector []float64, topK int) ([]ports.Match, error) {
	if topK <= 0 {
		topK = 5
	}
	req := map[string]any{
		"vector":       vector,
		"limit":        topK,
		"with_payload": true,
	}
	var resp struct {
		Result []struct {
			ID      any            `json:"id"`
			Score   float64        `json:"score"`
			Payload map[string]any `json:"payload"`
		} `json:"result"`
	}
	status, err := s.do(ctx, http.MethodPost, s.collectionURL("/points/search"), req, &resp)
	if status == http.StatusNotFound {
		// nothing indexed yet
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	out := make([]ports.Match, 0, len(resp.Result))
	for _, r := range resp.Result {
		md := make(map[string]string, len(r.Payload))
		for k, v := range r.Payload {
			if s, ok := v.(string); ok {
				md[k] = s
			}
		}
		out = append(out, ports.Match{ID: fmt.Sprint(r.ID), Score: r.Score, Metadata: md})
	}

	return out, nil
}

func (s *Index) Delete(ctx context.Context, id string) error {
	body := map[string]any{"points": []string{id}}
	status, err := s.do(ctx, http.MethodPost, s.collectionURL("/points/delete?wait=true"), body, nil)
	if status == http.StatusNotFound {
		return nil
	}
	return err
}

func (s *Index) collectionURL(suffix string) string {
	return fmt.Sprintf("%s/collections/%s%s", s.url, s.collection, suffix)
}

func (s *Index) do(ctx context.Context, method, url string, body, out any) (int, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return 0, err
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(data))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("api-key", s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("qdrant %s %s: %v: %w", method, url, err, apperr.ErrStoreUnavailable)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return resp.StatusCode, fmt.Errorf("qdrant %s %s failed: %s %s", method, url, resp.Status, bytes.TrimSpace(msg))
	}
	if out != nil {
		if err = json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, fmt.Errorf("qdrant decode: %w", err)
		}
	}

	return resp.StatusCode, nil
}
