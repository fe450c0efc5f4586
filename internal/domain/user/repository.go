package user

import (
	"context"
)

type Repository interface {
	FetchUserByID(ctx context.Context, id ID) (*User, error)
	FetchUserByEmail(ctx context.Context, email string) (*User, error)
	FetchUserByAccountID(ctx context.Context, accountID string) (*User, error)
	CreateUser(ctx context.Context, req User) (*User, error)
}
