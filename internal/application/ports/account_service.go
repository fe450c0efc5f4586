package ports

import (
	"context"

	"cloudy/internal/domain/user"
)

type AccountService interface {
	CreateAccount(ctx context.Context, fullName, email string) (accountID string, err error)
	SignIn(ctx context.Context, email string) (accountID string, err error)
	VerifySecret(ctx context.Context, accountID, secret string) (token string, err error)
	FindUserByID(ctx context.Context, id user.ID) (*user.User, error)
}
