package rest

import (
	"context"
	"errors"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"cloudy/internal/application/ports"
	"cloudy/internal/domain/apperr"
	"cloudy/internal/domain/file"
	"cloudy/internal/domain/query"
	"cloudy/internal/domain/user"
	fileDTO "cloudy/internal/interface/api/rest/dto/file"
)

var testFileID = uuid.MustParse("22222222-2222-2222-2222-222222222222")

func sampleFile() *file.File {
	return &file.File{
		ID:        testFileID,
		Name:      "report.pdf",
		Extension: "pdf",
		Type:      file.TypeDocument,
		Size:      1024,
		Owner:     file.Owner{ID: testUser.ID, Summary: &user.Summary{ID: testUser.ID, FullName: testUser.FullName}},
		AccountID: testUser.AccountID,
		Users:     []string{testUser.Email},
		URL:       "http://cdn/uploads/report.pdf",
		CreatedAt: time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
		UpdatedAt: time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

func setupFileRouter(fs *FakeFileService, views *FakeViews) *gin.Engine {
	r := newTestRouter()
	if views == nil {
		views = &FakeViews{versions: map[string]int64{}}
	}
	NewFileController(r, fs, views, zap.NewNop(), withUser(testUser))
	return r
}

func TestFileController_ListFilesHandler(t *testing.T) {
	type tc struct {
		name        string
		url         string
		list        func(ctx context.Context, requester *user.User, spec query.Spec) (file.Files, error)
		views       *FakeViews
		wantStatus  int
		wantVersion string
		wantTotal   int
	}

	cases := []tc{
		{
			name: "documents listing",
			url:  RouteFiles + "?types=document&sort=name-asc&limit=10",
			list: func(_ context.Context, requester *user.User, spec query.Spec) (file.Files, error) {
				assert.Equal(t, testUser, requester)
				assert.Equal(t, 10, spec.Limit)
				assert.Equal(t, query.FieldName, spec.Sort.Field)
				assert.Equal(t, query.Asc, spec.Sort.Direction)
				return file.Files{sampleFile()}, nil
			},
			views:       &FakeViews{versions: map[string]int64{"/documents": 3}},
			wantStatus:  http.StatusOK,
			wantVersion: "3",
			wantTotal:   1,
		},
		{
			name: "mixed types use the dashboard version",
			url:  RouteFiles + "?types=image,document",
			list: func(context.Context, *user.User, query.Spec) (file.Files, error) {
				return file.Files{}, nil
			},
			views:       &FakeViews{versions: map[string]int64{"/": 7}},
			wantStatus:  http.StatusOK,
			wantVersion: "7",
		},
		{
			name: "version lookup failure still lists",
			url:  RouteFiles,
			list: func(context.Context, *user.User, query.Spec) (file.Files, error) {
				return file.Files{}, nil
			},
			views:      &FakeViews{err: errors.New("redis down")},
			wantStatus: http.StatusOK,
		},
		{
			name:       "unknown type",
			url:        RouteFiles + "?types=spreadsheet",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "bad sort field",
			url:        RouteFiles + "?sort=owner-asc",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "bad limit",
			url:        RouteFiles + "?limit=-3",
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "store unavailable",
			url:  RouteFiles,
			list: func(context.Context, *user.User, query.Spec) (file.Files, error) {
				return nil, apperr.ErrStoreUnavailable
			},
			wantStatus: http.StatusServiceUnavailable,
		},
	}

	for _, tt := range cases {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			r := setupFileRouter(&FakeFileService{ListFunc: tt.list}, tt.views)

			rr := doReq(t, r, http.MethodGet, tt.url, nil, nil)
			require.Equal(t, tt.wantStatus, rr.Code, rr.Body.String())
			assert.Equal(t, tt.wantVersion, rr.Header().Get(HeaderViewVersion))
			if tt.wantStatus == http.StatusOK {
				got := decode[fileDTO.ResponseData](t, rr)
				assert.Equal(t, tt.wantTotal, got.Total)
				assert.Len(t, got.Data, tt.wantTotal)
			}
		})
	}
}

func TestFileController_UploadFilesHandler(t *testing.T) {
	t.Run("partial success returns per file outcomes", func(t *testing.T) {
		fs := &FakeFileService{UploadBatchFunc: func(_ context.Context, requester *user.User, in []ports.Upload) []ports.UploadResult {
			require.Equal(t, testUser, requester)
			require.Len(t, in, 2)
			out := make([]ports.UploadResult, len(in))
			for i, u := range in {
				b, _ := io.ReadAll(u.Body)
				out[i] = ports.UploadResult{Name: u.Name}
				if u.Name == "big.mp4" {
					out[i].Err = apperr.ErrFileTooLarge
					continue
				}
				f := sampleFile()
				f.Name, f.Size = u.Name, int64(len(b))
				out[i].File = f
			}
			return out
		}}
		r := setupFileRouter(fs, nil)

		rr := doMultipartReq(t, r, http.MethodPost, RouteFiles, formFieldFiles, []formFile{
			{name: "report.pdf", content: []byte("%PDF-1.4")},
			{name: "big.mp4", content: []byte("x")},
		})
		require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

		got := decode[fileDTO.UploadResponse](t, rr)
		require.Len(t, got.Data, 2)
		require.NotNil(t, got.Data[0].File)
		assert.Equal(t, int64(8), got.Data[0].File.Size)
		assert.Nil(t, got.Data[1].File)
		assert.Equal(t, apperr.ErrFileTooLarge.Error(), got.Data[1].Error)
	})

	t.Run("all failed maps the first error", func(t *testing.T) {
		fs := &FakeFileService{UploadBatchFunc: func(_ context.Context, _ *user.User, in []ports.Upload) []ports.UploadResult {
			return []ports.UploadResult{{Name: in[0].Name, Err: apperr.ErrFileTooLarge}}
		}}
		r := setupFileRouter(fs, nil)

		rr := doMultipartReq(t, r, http.MethodPost, RouteFiles, formFieldFiles, []formFile{{name: "big.mp4", content: []byte("x")}})
		assert.Equal(t, http.StatusRequestEntityTooLarge, rr.Code)
	})

	t.Run("no files", func(t *testing.T) {
		r := setupFileRouter(&FakeFileService{}, nil)

		rr := doMultipartReq(t, r, http.MethodPost, RouteFiles, "other", []formFile{{name: "a.txt", content: []byte("a")}})
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("not multipart", func(t *testing.T) {
		r := setupFileRouter(&FakeFileService{}, nil)

		rr := doReq(t, r, http.MethodPost, RouteFiles, map[string]string{"a": "b"}, nil)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestFileController_RenameFileHandler(t *testing.T) {
	type tc struct {
		name       string
		fileID     string
		body       any
		rename     func(ctx context.Context, fileID file.ID, requester *user.User, name string) (*file.File, error)
		wantStatus int
	}

	cases := []tc{
		{
			name:   "renamed",
			fileID: testFileID.String(),
			body:   map[string]string{"name": "final"},
			rename: func(_ context.Context, id file.ID, _ *user.User, name string) (*file.File, error) {
				assert.Equal(t, testFileID, id)
				assert.Equal(t, "final", name)
				f := sampleFile()
				f.Name = "final.pdf"
				return f, nil
			},
			wantStatus: http.StatusOK,
		},
		{
			name:   "not the owner",
			fileID: testFileID.String(),
			body:   map[string]string{"name": "final"},
			rename: func(context.Context, file.ID, *user.User, string) (*file.File, error) {
				return nil, apperr.ErrUnauthorized
			},
			wantStatus: http.StatusForbidden,
		},
		{
			name:   "missing file",
			fileID: testFileID.String(),
			body:   map[string]string{"name": "final"},
			rename: func(context.Context, file.ID, *user.User, string) (*file.File, error) {
				return nil, apperr.ErrNotFound
			},
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "empty name",
			fileID:     testFileID.String(),
			body:       map[string]string{"name": ""},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "bad id",
			fileID:     "nope",
			body:       map[string]string{"name": "final"},
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range cases {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			r := setupFileRouter(&FakeFileService{RenameFunc: tt.rename}, nil)

			rr := doReq(t, r, http.MethodPatch, RouteFiles+"/"+tt.fileID+"/name", tt.body, nil)
			require.Equal(t, tt.wantStatus, rr.Code, rr.Body.String())
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, "final.pdf", decode[fileDTO.File](t, rr).Name)
			}
		})
	}
}

func TestFileController_UpdateFileUsersHandler(t *testing.T) {
	t.Run("shared", func(t *testing.T) {
		fs := &FakeFileService{UpdateSharedUsersFunc: func(_ context.Context, _ file.ID, _ *user.User, emails []string) (*file.File, error) {
			f := sampleFile()
			f.Users = append([]string{testUser.Email}, emails...)
			return f, nil
		}}
		r := setupFileRouter(fs, nil)

		rr := doReq(t, r, http.MethodPut, RouteFiles+"/"+testFileID.String()+"/users",
			map[string][]string{"emails": {"bob@example.com"}}, nil)
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		assert.Equal(t, []string{testUser.Email, "bob@example.com"}, decode[fileDTO.File](t, rr).Users)
	})

	t.Run("invalid email", func(t *testing.T) {
		r := setupFileRouter(&FakeFileService{}, nil)

		rr := doReq(t, r, http.MethodPut, RouteFiles+"/"+testFileID.String()+"/users",
			map[string][]string{"emails": {"bob"}}, nil)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestFileController_DeleteFileHandler(t *testing.T) {
	type tc struct {
		name       string
		status     file.DeleteStatus
		err        error
		wantStatus int
	}

	cases := []tc{
		{name: "owner deletes", status: file.StatusDeleted, wantStatus: http.StatusOK},
		{name: "recipient leaves", status: file.StatusLeft, wantStatus: http.StatusOK},
		{name: "stranger", err: apperr.ErrUnauthorized, wantStatus: http.StatusForbidden},
		{name: "store down", err: apperr.ErrStoreUnavailable, wantStatus: http.StatusServiceUnavailable},
	}

	for _, tt := range cases {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			fs := &FakeFileService{DeleteFunc: func(context.Context, file.ID, *user.User) (file.DeleteStatus, error) {
				return tt.status, tt.err
			}}
			r := setupFileRouter(fs, nil)

			rr := doReq(t, r, http.MethodDelete, RouteFiles+"/"+testFileID.String(), nil, nil)
			require.Equal(t, tt.wantStatus, rr.Code, rr.Body.String())
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, string(tt.status), decode[fileDTO.DeleteResponse](t, rr).Status)
			}
		})
	}
}

func TestFileController_ApplyActionHandler(t *testing.T) {
	type tc struct {
		name       string
		body       any
		wantAction file.Action
		wantStatus int
	}

	cases := []tc{
		{
			name:       "rename",
			body:       map[string]any{"type": "rename", "name": "notes"},
			wantAction: file.RenameAction{FileID: testFileID, Name: "notes"},
			wantStatus: http.StatusOK,
		},
		{
			name:       "share",
			body:       map[string]any{"type": "share", "emails": []string{"bob@example.com"}},
			wantAction: file.ShareAction{FileID: testFileID, Emails: []string{"bob@example.com"}},
			wantStatus: http.StatusOK,
		},
		{
			name:       "delete",
			body:       map[string]any{"type": "delete"},
			wantAction: file.DeleteAction{FileID: testFileID},
			wantStatus: http.StatusOK,
		},
		{
			name:       "rename without name",
			body:       map[string]any{"type": "rename"},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "unknown type",
			body:       map[string]any{"type": "move"},
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range cases {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			fs := &FakeFileService{ApplyFunc: func(_ context.Context, _ *user.User, action file.Action) (*file.ActionResult, error) {
				assert.Equal(t, tt.wantAction, action)
				if _, ok := action.(file.DeleteAction); ok {
					return &file.ActionResult{Status: file.StatusDeleted}, nil
				}
				return &file.ActionResult{File: sampleFile()}, nil
			}}
			r := setupFileRouter(fs, nil)

			rr := doReq(t, r, http.MethodPost, RouteFiles+"/"+testFileID.String()+"/actions", tt.body, nil)
			require.Equal(t, tt.wantStatus, rr.Code, rr.Body.String())
		})
	}
}

func TestViewPath(t *testing.T) {
	tests := []struct {
		name  string
		types []file.Type
		want  string
	}{
		{name: "no filter", want: "/"},
		{name: "images", types: []file.Type{file.TypeImage}, want: "/images"},
		{name: "media", types: []file.Type{file.TypeVideo, file.TypeAudio}, want: "/media"},
		{name: "mixed", types: []file.Type{file.TypeImage, file.TypeOther}, want: "/"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, viewPath(tt.types))
		})
	}
}
