package file

import (
	"context"

	"cloudy/internal/domain/query"
)

// Repository is the metadata store for file records.
type Repository interface {
	CreateFile(ctx context.Context, req *File) (*File, error)
	FetchFile(ctx context.Context, id ID) (*File, error)
	FetchFiles(ctx context.Context, spec query.Spec) (Files, error)
	UpdateFileName(ctx context.Context, id ID, name, url string) (*File, error)
	UpdateFileUsers(ctx context.Context, id ID, users []string) (*File, error)
	DeleteFile(ctx context.Context, id ID) error
}
