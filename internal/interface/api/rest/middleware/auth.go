package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"cloudy/internal/domain/apperr"
	"cloudy/internal/domain/user"
	"cloudy/internal/infrastructure/jwt"
)

const CtxUser = "user"

// UserLoader resolves the user record a session belongs to.
type UserLoader interface {
	FindUserByID(ctx context.Context, id user.ID) (*user.User, error)
}

// AuthMiddleware validates the bearer token and stores the session user
// in the gin context.
func AuthMiddleware(jwtService *jwt.Service, users UserLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(
				http.StatusUnauthorized,
				gin.H{"error": "missing Authorization header"},
			)
			return
		}

		tokenStr := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenStr == authHeader {
			c.AbortWithStatusJSON(
				http.StatusUnauthorized,
				gin.H{"error": "invalid token format"},
			)
			return
		}

		claims, err := jwtService.ValidateToken(tokenStr)
		if err != nil {
			c.AbortWithStatusJSON(
				http.StatusUnauthorized,
				gin.H{"error": "invalid token"},
			)
			return
		}
		id, err := uuid.Parse(claims.UserID())
		if err != nil {
			c.AbortWithStatusJSON(
				http.StatusUnauthorized,
				gin.H{"error": "invalid token"},
			)
			return
		}

		u, err := users.FindUserByID(c.Request.Context(), id)
		switch {
		case errors.Is(err, apperr.ErrNotFound):
			c.AbortWithStatusJSON(
				http.StatusUnauthorized,
				gin.H{"error": "session user no longer exists"},
			)
			return
		case err != nil:
			c.AbortWithStatusJSON(
				http.StatusServiceUnavailable,
				gin.H{"error": "failed to load session"},
			)
			return
		}

		c.Set(CtxUser, u)

		c.Next()
	}
}

// CurrentUser returns the user AuthMiddleware stored, or nil.
func CurrentUser(c *gin.Context) *user.User {
	v, ok := c.Get(CtxUser)
	if !ok {
		return nil
	}
	u, _ := v.(*user.User)
	return u
}
