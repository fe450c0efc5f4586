package services

import (
	"context"
	"io"
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"cloudy/internal/application/ports"
	"cloudy/internal/domain/file"
)

func newCounter() *prometheus.CounterVec {
	return prometheus.NewCounterVec(prometheus.CounterOpts{Name: "test_counters"}, []string{"result"})
}

// FakeObjectStore wraps another store and lets tests override single calls.
type FakeObjectStore struct {
	ports.ObjectStore

	mu      sync.Mutex
	puts    int
	deletes []string

	PutFn    func(ctx context.Context, name string, size int64, r io.Reader) (*ports.Object, error)
	DeleteFn func(ctx context.Context, objectID string) error
}

func (f *FakeObjectStore) Put(ctx context.Context, name string, size int64, r io.Reader) (*ports.Object, error) {
	f.mu.Lock()
	f.puts++
	f.mu.Unlock()
	if f.PutFn != nil {
		return f.PutFn(ctx, name, size, r)
	}
	return f.ObjectStore.Put(ctx, name, size, r)
}

func (f *FakeObjectStore) Delete(ctx context.Context, objectID string) error {
	f.mu.Lock()
	f.deletes = append(f.deletes, objectID)
	f.mu.Unlock()
	if f.DeleteFn != nil {
		return f.DeleteFn(ctx, objectID)
	}
	return f.ObjectStore.Delete(ctx, objectID)
}

type FakeScheduler struct {
	mu      sync.Mutex
	indexed []file.ID
	removed []file.ID
}

func (f *FakeScheduler) ScheduleIndex(fl *file.File) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.indexed = append(f.indexed, fl.ID)
}

func (f *FakeScheduler) ScheduleRemove(id file.ID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removed = append(f.removed, id)
}

type FakeFileRepository struct {
	file.Repository

	CreateFileErr error
	DeleteFileErr error
}

func (f *FakeFileRepository) CreateFile(ctx context.Context, req *file.File) (*file.File, error) {
	if f.CreateFileErr != nil {
		return nil, f.CreateFileErr
	}
	return f.Repository.CreateFile(ctx, req)
}

type FakeOTPSender struct {
	mu    sync.Mutex
	codes map[string]string
	Err   error
}

func (f *FakeOTPSender) SendOTP(_ context.Context, email, code string) error {
	if f.Err != nil {
		return f.Err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.codes == nil {
		f.codes = make(map[string]string)
	}
	f.codes[email] = code
	return nil
}

func (f *FakeOTPSender) last(email string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.codes[email]
}

func (f *FakeFileRepository) DeleteFile(ctx context.Context, id file.ID) error {
	if f.DeleteFileErr != nil {
		return f.DeleteFileErr
	}
	return f.Repository.DeleteFile(ctx, id)
}

type FakeEmbedder struct {
	EmbedFn func(ctx context.Context, text string) ([]float64, error)
}

func (f *FakeEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	return f.EmbedFn(ctx, text)
}

type FakeVectorIndex struct {
	QueryFn func(ctx context.Context, vector []float64, topK int) ([]ports.Match, error)
}

func (f *FakeVectorIndex) Upsert(context.Context, string, []float64, map[string]string) error {
	return nil
}

func (f *FakeVectorIndex) Query(ctx context.Context, vector []float64, topK int) ([]ports.Match, error) {
	return f.QueryFn(ctx, vector, topK)
}

func (f *FakeVectorIndex) Delete(context.Context, string) error { return nil }

func newReader(s string) io.Reader { return strings.NewReader(s) }
