package file

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cloudy/internal/domain/apperr"
	"cloudy/internal/domain/file"
	"cloudy/internal/domain/query"
)

var cols = []string{"id", "name", "extension", "type", "size", "owner_id", "account_id", "users", "bucket_file_id", "url", "created_at", "updated_at"}

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		mock.Close()
	})
	return mock
}

func row(mock pgxmock.PgxPoolIface, id, owner uuid.UUID, name string, users []string) *pgxmock.Rows {
	now := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	return mock.NewRows(cols).AddRow(id, name, "pdf", "document", int64(42), owner, "acc-1", users, "obj-1", "http://cdn/obj-1", now, now)
}

func TestRepository_CreateFile(t *testing.T) {
	mock := newMock(t)
	repo := NewRepository(mock)

	id, owner := uuid.New(), uuid.New()
	req := &file.File{
		Name: "a.pdf", Extension: "pdf", Type: file.TypeDocument, Size: 42,
		Owner: file.Owner{ID: owner}, AccountID: "acc-1", Users: []string{"o@x.io"},
		BucketFileID: "obj-1", URL: "http://cdn/obj-1",
	}

	mock.ExpectQuery(regexp.QuoteMeta(InsertFile)).
		WithArgs("a.pdf", "pdf", "document", int64(42), owner.String(), "acc-1", []string{"o@x.io"}, "obj-1", "http://cdn/obj-1").
		WillReturnRows(row(mock, id, owner, "a.pdf", []string{"o@x.io"}))

	got, err := repo.CreateFile(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, id, got.ID)
	assert.Equal(t, owner, got.Owner.ID)
	assert.False(t, got.Owner.Resolved())
	assert.Equal(t, []string{"o@x.io"}, got.Users)
	assert.Equal(t, file.TypeDocument, got.Type)
}

func TestRepository_FetchFile_Errors(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantErr error
	}{
		{name: "no rows", err: pgx.ErrNoRows, wantErr: apperr.ErrNotFound},
		{name: "connection lost", err: errors.New("conn closed"), wantErr: apperr.ErrStoreUnavailable},
		{name: "unique violation", err: &pgconn.PgError{Code: "23505"}, wantErr: apperr.ErrInvalidInput},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			mock := newMock(t)
			repo := NewRepository(mock)
			id := uuid.New()

			mock.ExpectQuery(regexp.QuoteMeta(SelectFileByID)).WithArgs(id.String()).WillReturnError(tt.err)

			_, err := repo.FetchFile(context.Background(), id)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestRepository_FetchFiles(t *testing.T) {
	mock := newMock(t)
	repo := NewRepository(mock)

	owner := uuid.New()
	a, b := uuid.New(), uuid.New()
	spec := query.Spec{
		Filter: []query.Expr{query.Or(query.Equal(query.FieldOwner, owner.String()), query.Has(query.FieldUsers, "o@x.io"))},
		Sort:   query.DefaultSort,
		Limit:  2,
	}
	sql, args, err := buildSelect(spec)
	require.NoError(t, err)

	rows := row(mock, a, owner, "a.pdf", []string{"o@x.io"})
	rows.AddRow(b, "b.pdf", "pdf", "document", int64(1), owner, "acc-1", []string{"o@x.io", "s@x.io"}, "obj-2", "http://cdn/obj-2", time.Now(), time.Now())

	mock.ExpectQuery(regexp.QuoteMeta(sql)).WithArgs(args...).WillReturnRows(rows)

	got, err := repo.FetchFiles(context.Background(), spec)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, []file.ID{a, b}, got.IDs())
	assert.Equal(t, []string{"o@x.io", "s@x.io"}, got[1].Users)
}

func TestRepository_FetchFiles_InvalidSpec(t *testing.T) {
	mock := newMock(t)
	repo := NewRepository(mock)

	_, err := repo.FetchFiles(context.Background(), query.Spec{Filter: []query.Expr{query.Has(query.FieldName, "x")}})
	assert.ErrorIs(t, err, apperr.ErrInvalidQuery)
}

func TestRepository_Updates(t *testing.T) {
	mock := newMock(t)
	repo := NewRepository(mock)
	id, owner := uuid.New(), uuid.New()

	mock.ExpectQuery(regexp.QuoteMeta(UpdateFileName)).
		WithArgs("report.pdf", "http://cdn/obj-1", id.String()).
		WillReturnRows(row(mock, id, owner, "report.pdf", []string{"o@x.io"}))
	mock.ExpectQuery(regexp.QuoteMeta(UpdateFileUsers)).
		WithArgs([]string{}, id.String()).
		WillReturnRows(row(mock, id, owner, "report.pdf", []string{}))

	got, err := repo.UpdateFileName(context.Background(), id, "report.pdf", "http://cdn/obj-1")
	require.NoError(t, err)
	assert.Equal(t, "report.pdf", got.Name)

	got, err = repo.UpdateFileUsers(context.Background(), id, nil)
	require.NoError(t, err)
	assert.NotNil(t, got.Users)
}

func TestRepository_DeleteFile(t *testing.T) {
	mock := newMock(t)
	repo := NewRepository(mock)
	id := uuid.New()

	mock.ExpectExec(regexp.QuoteMeta(DeleteFileByID)).WithArgs(id.String()).WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectExec(regexp.QuoteMeta(DeleteFileByID)).WithArgs(id.String()).WillReturnResult(pgxmock.NewResult("DELETE", 0))

	require.NoError(t, repo.DeleteFile(context.Background(), id))
	assert.ErrorIs(t, repo.DeleteFile(context.Background(), id), apperr.ErrNotFound)
}
