// Package memory holds in-process adapters used when STORAGE_DRIVER=memory
// and in tests. All of them are safe for concurrent use.
package memory

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"cloudy/internal/domain/apperr"
	"cloudy/internal/domain/file"
	"cloudy/internal/domain/query"
)

type FileRepository struct {
	mu    sync.RWMutex
	files map[file.ID]*file.File
	now   func() time.Time
}

func NewFileRepository() *FileRepository {
	return &FileRepository{
		files: make(map[file.ID]*file.File),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func (r *FileRepository) CreateFile(_ context.Context, f *file.File) (*file.File, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c := clone(f)
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if _, ok := r.files[c.ID]; ok {
		return nil, fmt.Errorf("%w: file %s already exists", apperr.ErrInvalidInput, c.ID)
	}
	c.Owner.Summary = nil
	c.CreatedAt = r.now()
	c.UpdatedAt = c.CreatedAt
	r.files[c.ID] = c

	return clone(c), nil
}

func (r *FileRepository) FetchFile(_ context.Context, id file.ID) (*file.File, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	f, ok := r.files[id]
	if !ok {
		return nil, fmt.Errorf("file %s: %w", id, apperr.ErrNotFound)
	}
	return clone(f), nil
}

func (r *FileRepository) FetchFiles(_ context.Context, spec query.Spec) (file.Files, error) {
	r.mu.RLock()
	out := make(file.Files, 0, len(r.files))
	for _, f := range r.files {
		ok, err := matchAll(spec.Filter, f)
		if err != nil {
			r.mu.RUnlock()
			return nil, err
		}
		if ok {
			out = append(out, clone(f))
		}
	}
	r.mu.RUnlock()

	sortFiles(out, spec.Sort)
	if spec.Limit > 0 && len(out) > spec.Limit {
		out = out[:spec.Limit]
	}

	return out, nil
}

func (r *FileRepository) UpdateFileName(_ context.Context, id file.ID, name, url string) (*file.File, error) {
	return r.update(id, func(f *file.File) {
		f.Name = name
		f.URL = url
	})
}

func (r *FileRepository) UpdateFileUsers(_ context.Context, id file.ID, users []string) (*file.File, error) {
	return r.update(id, func(f *file.File) {
		f.Users = slices.Clone(users)
	})
}

func (r *FileRepository) DeleteFile(_ context.Context, id file.ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.files[id]; !ok {
		return fmt.Errorf("file %s: %w", id, apperr.ErrNotFound)
	}
	delete(r.files, id)

	return nil
}

func (r *FileRepository) update(id file.ID, fn func(f *file.File)) (*file.File, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	f, ok := r.files[id]
	if !ok {
		return nil, fmt.Errorf("file %s: %w", id, apperr.ErrNotFound)
	}
	fn(f)
	f.UpdatedAt = r.now()

	return clone(f), nil
}

func clone(f *file.File) *file.File {
	c := *f
	c.Users = slices.Clone(f.Users)
	return &c
}

func matchAll(exprs []query.Expr, f *file.File) (bool, error) {
	for _, e := range exprs {
		ok, err := match(e, f)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

func match(e query.Expr, f *file.File) (bool, error) {
	switch e.Op {
	case query.OpAnd:
		return matchAll(e.Children, f)
	case query.OpOr:
		for _, c := range e.Children {
			ok, err := match(c, f)
			if err != nil {
				return false, err
			}
			if ok {
				return true, nil
			}
		}
		return false, nil
	case query.OpHas:
		if e.Field != query.FieldUsers || len(e.Values) != 1 {
			return false, fmt.Errorf("%w: has on %q", apperr.ErrInvalidQuery, e.Field)
		}
		return slices.Contains(f.Users, e.Values[0]), nil
	}

	v, err := scalar(f, e.Field)
	if err != nil {
		return false, err
	}

	switch e.Op {
	case query.OpEqual:
		if len(e.Values) != 1 {
			return false, fmt.Errorf("%w: equal needs one value", apperr.ErrInvalidQuery)
		}
		return v == e.Values[0], nil
	case query.OpIn:
		return slices.Contains(e.Values, v), nil
	case query.OpContains:
		if len(e.Values) != 1 {
			return false, fmt.Errorf("%w: contains needs one value", apperr.ErrInvalidQuery)
		}
		return strings.Contains(strings.ToLower(v), strings.ToLower(e.Values[0])), nil
	default:
		return false, fmt.Errorf("%w: unknown operator %d", apperr.ErrInvalidQuery, e.Op)
	}
}

func scalar(f *file.File, field query.Field) (string, error) {
	switch field {
	case query.FieldID:
		return f.ID.String(), nil
	case query.FieldOwner:
		return f.Owner.ID.String(), nil
	case query.FieldType:
		return string(f.Type), nil
	case query.FieldName:
		return f.Name, nil
	case query.FieldSize:
		return strconv.FormatInt(f.Size, 10), nil
	case query.FieldCreatedAt:
		return f.CreatedAt.Format(time.RFC3339Nano), nil
	case query.FieldUpdatedAt:
		return f.UpdatedAt.Format(time.RFC3339Nano), nil
	default:
		return "", fmt.Errorf("%w: field %q is not scalar", apperr.ErrInvalidQuery, field)
	}
}

func sortFiles(fs file.Files, s query.Sort) {
	if s.Field == "" {
		s = query.DefaultSort
	}
	slices.SortStableFunc(fs, func(a, b *file.File) int {
		var c int
		switch s.Field {
		case query.FieldName:
			c = strings.Compare(a.Name, b.Name)
		case query.FieldSize:
			c = cmp.Compare(a.Size, b.Size)
		case query.FieldUpdatedAt:
			c = a.UpdatedAt.Compare(b.UpdatedAt)
		default:
			c = a.CreatedAt.Compare(b.CreatedAt)
		}
		if c == 0 {
			c = strings.Compare(a.ID.String(), b.ID.String())
		}
		if s.Direction == query.Asc {
			return c
		}
		return -c
	})
}
