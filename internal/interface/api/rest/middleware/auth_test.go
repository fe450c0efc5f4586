package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cloudy/internal/domain/apperr"
	"cloudy/internal/domain/user"
	jwtSvc "cloudy/internal/infrastructure/jwt"
)

type FakeUserLoader struct {
	FindUserByIDFunc func(ctx context.Context, id user.ID) (*user.User, error)
}

func (f *FakeUserLoader) FindUserByID(ctx context.Context, id user.ID) (*user.User, error) {
	return f.FindUserByIDFunc(ctx, id)
}

func TestAuthMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	j := jwtSvc.New("test-secret")
	u := &user.User{ID: uuid.New(), Email: "ann@example.com", AccountID: "acc"}

	valid, err := j.GenerateJWT(u.ID.String(), u.AccountID, time.Hour)
	require.NoError(t, err)
	orphan, err := j.GenerateJWT(uuid.NewString(), "acc", time.Hour)
	require.NoError(t, err)
	badSubject, err := j.GenerateJWT("not-a-uuid", "acc", time.Hour)
	require.NoError(t, err)
	expired, err := j.GenerateJWT(u.ID.String(), u.AccountID, -time.Minute)
	require.NoError(t, err)

	loader := &FakeUserLoader{FindUserByIDFunc: func(_ context.Context, id user.ID) (*user.User, error) {
		if id == u.ID {
			return u, nil
		}
		return nil, apperr.ErrNotFound
	}}

	tests := []struct {
		name       string
		header     string
		loader     UserLoader
		wantStatus int
	}{
		{name: "valid", header: "Bearer " + valid, loader: loader, wantStatus: http.StatusOK},
		{name: "missing header", header: "", loader: loader, wantStatus: http.StatusUnauthorized},
		{name: "no bearer prefix", header: valid, loader: loader, wantStatus: http.StatusUnauthorized},
		{name: "expired", header: "Bearer " + expired, loader: loader, wantStatus: http.StatusUnauthorized},
		{name: "subject not a uuid", header: "Bearer " + badSubject, loader: loader, wantStatus: http.StatusUnauthorized},
		{name: "user gone", header: "Bearer " + orphan, loader: loader, wantStatus: http.StatusUnauthorized},
		{
			name:   "store down",
			header: "Bearer " + valid,
			loader: &FakeUserLoader{FindUserByIDFunc: func(context.Context, user.ID) (*user.User, error) {
				return nil, errors.New("pool closed")
			}},
			wantStatus: http.StatusServiceUnavailable,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.GET("/me", AuthMiddleware(j, tt.loader), func(c *gin.Context) {
				got := CurrentUser(c)
				require.NotNil(t, got)
				c.String(http.StatusOK, got.Email)
			})

			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()
			r.ServeHTTP(rr, req)

			assert.Equal(t, tt.wantStatus, rr.Code, rr.Body.String())
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, u.Email, rr.Body.String())
			}
		})
	}
}
