package ports

import (
	"context"
	"io"

	"cloudy/internal/domain/file"
	"cloudy/internal/domain/query"
	"cloudy/internal/domain/usage"
	"cloudy/internal/domain/user"
)

type (
	Upload struct {
		Name string
		Size int64
		Body io.Reader
	}
	UploadResult struct {
		Name string
		File *file.File
		Err  error
	}
)

type FileService interface {
	Create(ctx context.Context, ownerID user.ID, accountID string, obj *Object) (*file.File, error)
	Upload(ctx context.Context, requester *user.User, in Upload) (*file.File, error)
	UploadBatch(ctx context.Context, requester *user.User, in []Upload) []UploadResult
	Rename(ctx context.Context, fileID file.ID, requester *user.User, newBaseName string) (*file.File, error)
	UpdateSharedUsers(ctx context.Context, fileID file.ID, requester *user.User, emails []string) (*file.File, error)
	Delete(ctx context.Context, fileID file.ID, requester *user.User) (file.DeleteStatus, error)
	List(ctx context.Context, requester *user.User, spec query.Spec) (file.Files, error)
	Apply(ctx context.Context, requester *user.User, action file.Action) (*file.ActionResult, error)
}

type SearchService interface {
	Search(ctx context.Context, requester *user.User, q string) (file.Files, error)
}

type UsageService interface {
	Usage(ctx context.Context, requester *user.User) (usage.Summary, error)
}
