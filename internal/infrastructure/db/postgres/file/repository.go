package file

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"cloudy/internal/domain/apperr"
	"cloudy/internal/domain/file"
	"cloudy/internal/domain/query"
	"cloudy/internal/infrastructure/db/postgres"
)

type Repository struct {
	db postgres.DB
}

func NewRepository(db postgres.DB) file.Repository {
	return &Repository{db: db}
}

func (r *Repository) CreateFile(ctx context.Context, req *file.File) (*file.File, error) {
	f, err := scan(r.db.QueryRow(
		ctx,
		InsertFile,
		req.Name, req.Extension, string(req.Type), req.Size, req.Owner.ID.String(),
		req.AccountID, req.Users, req.BucketFileID, req.URL,
	))
	if err != nil {
		return nil, postgres.MapError("create file", err)
	}

	return fromDBModel(f), nil
}

func (r *Repository) FetchFile(ctx context.Context, id file.ID) (*file.File, error) {
	f, err := scan(r.db.QueryRow(ctx, SelectFileByID, id.String()))
	if err != nil {
		return nil, postgres.MapError(fmt.Sprintf("fetch file %s", id), err)
	}

	return fromDBModel(f), nil
}

func (r *Repository) FetchFiles(ctx context.Context, spec query.Spec) (file.Files, error) {
	sql, args, err := buildSelect(spec)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, postgres.MapError("fetch files", err)
	}
	defer rows.Close()

	var fs Files
	for rows.Next() {
		f, err := scan(rows)
		if err != nil {
			return nil, postgres.MapError("scan file", err)
		}
		fs = append(fs, f)
	}
	if err = rows.Err(); err != nil {
		return nil, postgres.MapError("fetch files", err)
	}

	return fromDBModels(fs), nil
}

func (r *Repository) UpdateFileName(ctx context.Context, id file.ID, name, url string) (*file.File, error) {
	f, err := scan(r.db.QueryRow(ctx, UpdateFileName, name, url, id.String()))
	if err != nil {
		return nil, postgres.MapError(fmt.Sprintf("rename file %s", id), err)
	}

	return fromDBModel(f), nil
}

func (r *Repository) UpdateFileUsers(ctx context.Context, id file.ID, users []string) (*file.File, error) {
	if users == nil {
		users = []string{}
	}
	f, err := scan(r.db.QueryRow(ctx, UpdateFileUsers, users, id.String()))
	if err != nil {
		return nil, postgres.MapError(fmt.Sprintf("update users of file %s", id), err)
	}

	return fromDBModel(f), nil
}

func (r *Repository) DeleteFile(ctx context.Context, id file.ID) error {
	tag, err := r.db.Exec(ctx, DeleteFileByID, id.String())
	if err != nil {
		return postgres.MapError(fmt.Sprintf("delete file %s", id), err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("delete file %s: %w", id, apperr.ErrNotFound)
	}

	return nil
}

func scan(row pgx.Row) (*File, error) {
	f := new(File)
	err := row.Scan(
		&f.ID,
		&f.Name,
		&f.Extension,
		&f.Type,
		&f.Size,
		&f.OwnerID,
		&f.AccountID,
		&f.Users,
		&f.BucketFileID,
		&f.URL,

		&f.CreatedAt,
		&f.UpdatedAt,
	)
	return f, err
}
