package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"cloudy/internal/application/ports"
	"cloudy/internal/domain/file"
	"cloudy/internal/domain/query"
	"cloudy/internal/domain/usage"
	"cloudy/internal/domain/user"
	"cloudy/internal/interface/api/rest/middleware"
)

type FakeAccountService struct {
	CreateAccountFunc func(ctx context.Context, fullName, email string) (string, error)
	SignInFunc        func(ctx context.Context, email string) (string, error)
	VerifySecretFunc  func(ctx context.Context, accountID, secret string) (string, error)
	FindUserByIDFunc  func(ctx context.Context, id user.ID) (*user.User, error)
}

func (f *FakeAccountService) CreateAccount(ctx context.Context, fullName, email string) (string, error) {
	if f.CreateAccountFunc == nil {
		return "", errors.New("not used")
	}
	return f.CreateAccountFunc(ctx, fullName, email)
}
func (f *FakeAccountService) SignIn(ctx context.Context, email string) (string, error) {
	if f.SignInFunc == nil {
		return "", errors.New("not used")
	}
	return f.SignInFunc(ctx, email)
}
func (f *FakeAccountService) VerifySecret(ctx context.Context, accountID, secret string) (string, error) {
	if f.VerifySecretFunc == nil {
		return "", errors.New("not used")
	}
	return f.VerifySecretFunc(ctx, accountID, secret)
}
func (f *FakeAccountService) FindUserByID(ctx context.Context, id user.ID) (*user.User, error) {
	if f.FindUserByIDFunc == nil {
		return nil, errors.New("not used")
	}
	return f.FindUserByIDFunc(ctx, id)
}

type FakeFileService struct {
	CreateFunc            func(ctx context.Context, ownerID user.ID, accountID string, obj *ports.Object) (*file.File, error)
	UploadFunc            func(ctx context.Context, requester *user.User, in ports.Upload) (*file.File, error)
	UploadBatchFunc       func(ctx context.Context, requester *user.User, in []ports.Upload) []ports.UploadResult
	RenameFunc            func(ctx context.Context, fileID file.ID, requester *user.User, newBaseName string) (*file.File, error)
	UpdateSharedUsersFunc func(ctx context.Context, fileID file.ID, requester *user.User, emails []string) (*file.File, error)
	DeleteFunc            func(ctx context.Context, fileID file.ID, requester *user.User) (file.DeleteStatus, error)
	ListFunc              func(ctx context.Context, requester *user.User, spec query.Spec) (file.Files, error)
	ApplyFunc             func(ctx context.Context, requester *user.User, action file.Action) (*file.ActionResult, error)
}

func (f *FakeFileService) Create(ctx context.Context, ownerID user.ID, accountID string, obj *ports.Object) (*file.File, error) {
	if f.CreateFunc == nil {
		return nil, errors.New("not used")
	}
	return f.CreateFunc(ctx, ownerID, accountID, obj)
}
func (f *FakeFileService) Upload(ctx context.Context, requester *user.User, in ports.Upload) (*file.File, error) {
	if f.UploadFunc == nil {
		return nil, errors.New("not used")
	}
	return f.UploadFunc(ctx, requester, in)
}
func (f *FakeFileService) UploadBatch(ctx context.Context, requester *user.User, in []ports.Upload) []ports.UploadResult {
	if f.UploadBatchFunc == nil {
		return nil
	}
	return f.UploadBatchFunc(ctx, requester, in)
}
func (f *FakeFileService) Rename(ctx context.Context, fileID file.ID, requester *user.User, newBaseName string) (*file.File, error) {
	if f.RenameFunc == nil {
		return nil, errors.New("not used")
	}
	return f.RenameFunc(ctx, fileID, requester, newBaseName)
}
func (f *FakeFileService) UpdateSharedUsers(ctx context.Context, fileID file.ID, requester *user.User, emails []string) (*file.File, error) {
	if f.UpdateSharedUsersFunc == nil {
		return nil, errors.New("not used")
	}
	return f.UpdateSharedUsersFunc(ctx, fileID, requester, emails)
}
func (f *FakeFileService) Delete(ctx context.Context, fileID file.ID, requester *user.User) (file.DeleteStatus, error) {
	if f.DeleteFunc == nil {
		return "", errors.New("not used")
	}
	return f.DeleteFunc(ctx, fileID, requester)
}
func (f *FakeFileService) List(ctx context.Context, requester *user.User, spec query.Spec) (file.Files, error) {
	if f.ListFunc == nil {
		return nil, errors.New("not used")
	}
	return f.ListFunc(ctx, requester, spec)
}
func (f *FakeFileService) Apply(ctx context.Context, requester *user.User, action file.Action) (*file.ActionResult, error) {
	if f.ApplyFunc == nil {
		return nil, errors.New("not used")
	}
	return f.ApplyFunc(ctx, requester, action)
}

type FakeSearchService struct {
	SearchFunc func(ctx context.Context, requester *user.User, q string) (file.Files, error)
}

func (f *FakeSearchService) Search(ctx context.Context, requester *user.User, q string) (file.Files, error) {
	if f.SearchFunc == nil {
		return nil, errors.New("not used")
	}
	return f.SearchFunc(ctx, requester, q)
}

type FakeUsageService struct {
	UsageFunc func(ctx context.Context, requester *user.User) (usage.Summary, error)
}

func (f *FakeUsageService) Usage(ctx context.Context, requester *user.User) (usage.Summary, error) {
	if f.UsageFunc == nil {
		return usage.Summary{}, errors.New("not used")
	}
	return f.UsageFunc(ctx, requester)
}

type FakeViews struct {
	versions map[string]int64
	err      error
}

func (f *FakeViews) Invalidate(_ context.Context, paths ...string) error {
	for _, p := range paths {
		f.versions[p]++
	}
	return nil
}
func (f *FakeViews) Version(_ context.Context, path string) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	return f.versions[path], nil
}

var testUser = &user.User{
	ID:        uuid.MustParse("11111111-1111-1111-1111-111111111111"),
	AccountID: "acc-1",
	Email:     "ann@example.com",
	FullName:  "Ann Lee",
}

// withUser stands in for the auth middleware.
func withUser(u *user.User) gin.HandlerFunc {
	return func(c *gin.Context) {
		if u != nil {
			c.Set(middleware.CtxUser, u)
		}
		c.Next()
	}
}

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

func doReq(t *testing.T, r *gin.Engine, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	switch v := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(v))
	default:
		b, err := json.Marshal(v)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

type formFile struct {
	name    string
	content []byte
}

func doMultipartReq(t *testing.T, r *gin.Engine, method, path, fileField string, files []formFile) *httptest.ResponseRecorder {
	t.Helper()

	var b bytes.Buffer
	w := multipart.NewWriter(&b)
	for _, f := range files {
		fw, err := w.CreateFormFile(fileField, f.name)
		require.NoError(t, err)
		_, _ = fw.Write(f.content)
	}
	require.NoError(t, w.Close())

	req, err := http.NewRequest(method, path, &b)
	require.NoError(t, err)
	req.Header.Set("Content-Type", w.FormDataContentType())

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v))
	return v
}
