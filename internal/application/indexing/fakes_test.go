package indexing

import (
	"context"
	"io"
	"strings"

	"cloudy/internal/application/ports"
)

type FakeObjectStore struct {
	PutFn    func(ctx context.Context, name string, size int64, r io.Reader) (*ports.Object, error)
	GetFn    func(ctx context.Context, objectID string) (io.ReadCloser, error)
	DeleteFn func(ctx context.Context, objectID string) error
}

func (f *FakeObjectStore) Put(ctx context.Context, name string, size int64, r io.Reader) (*ports.Object, error) {
	return f.PutFn(ctx, name, size, r)
}

func (f *FakeObjectStore) Get(ctx context.Context, objectID string) (io.ReadCloser, error) {
	if f.GetFn == nil {
		return io.NopCloser(strings.NewReader("%PDF-fake")), nil
	}
	return f.GetFn(ctx, objectID)
}

func (f *FakeObjectStore) Delete(ctx context.Context, objectID string) error {
	if f.DeleteFn == nil {
		return nil
	}
	return f.DeleteFn(ctx, objectID)
}

func (f *FakeObjectStore) URL(objectID string) string { return "https://cdn.local/" + objectID }

type FakeExtractor struct {
	ExtractTextFn func(ctx context.Context, data []byte) (string, error)
}

func (f *FakeExtractor) ExtractText(ctx context.Context, data []byte) (string, error) {
	return f.ExtractTextFn(ctx, data)
}

type FakeSummarizer struct {
	SummarizeTextFn func(ctx context.Context, text string) (string, error)
	DescribeImageFn func(ctx context.Context, url string) (string, error)
}

func (f *FakeSummarizer) SummarizeText(ctx context.Context, text string) (string, error) {
	return f.SummarizeTextFn(ctx, text)
}

func (f *FakeSummarizer) DescribeImage(ctx context.Context, url string) (string, error) {
	return f.DescribeImageFn(ctx, url)
}

type FakeEmbedder struct {
	EmbedFn func(ctx context.Context, text string) ([]float64, error)
}

func (f *FakeEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	if f.EmbedFn == nil {
		return []float64{float64(len(text)), 1}, nil
	}
	return f.EmbedFn(ctx, text)
}

type FakeVectorIndex struct {
	UpsertFn func(ctx context.Context, id string, vector []float64, metadata map[string]string) error
	QueryFn  func(ctx context.Context, vector []float64, topK int) ([]ports.Match, error)
	DeleteFn func(ctx context.Context, id string) error
}

func (f *FakeVectorIndex) Upsert(ctx context.Context, id string, vector []float64, metadata map[string]string) error {
	return f.UpsertFn(ctx, id, vector, metadata)
}

func (f *FakeVectorIndex) Query(ctx context.Context, vector []float64, topK int) ([]ports.Match, error) {
	return f.QueryFn(ctx, vector, topK)
}

func (f *FakeVectorIndex) Delete(ctx context.Context, id string) error {
	return f.DeleteFn(ctx, id)
}
