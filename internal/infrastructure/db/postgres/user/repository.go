package user

import (
	"context"

	"github.com/jackc/pgx/v5"

	"cloudy/internal/domain/user"
	"cloudy/internal/infrastructure/db/postgres"
)

type Repository struct {
	db postgres.DB
}

func NewRepository(db postgres.DB) user.Repository {
	return &Repository{db: db}
}

func (r *Repository) FetchUserByID(ctx context.Context, id user.ID) (*user.User, error) {
	return r.fetchOne(ctx, "fetch user by id", SelectUserByID, id.String())
}

func (r *Repository) FetchUserByEmail(ctx context.Context, email string) (*user.User, error) {
	return r.fetchOne(ctx, "fetch user by email", SelectUserByEmail, email)
}

func (r *Repository) FetchUserByAccountID(ctx context.Context, accountID string) (*user.User, error) {
	return r.fetchOne(ctx, "fetch user by account", SelectUserByAccountID, accountID)
}

func (r *Repository) CreateUser(ctx context.Context, req user.User) (*user.User, error) {
	u, err := scan(r.db.QueryRow(
		ctx,
		InsertUser,
		req.AccountID, req.Email, req.FullName, req.Avatar,
	))
	if err != nil {
		return nil, postgres.MapError("create user", err)
	}

	return fromDBModel(u), nil
}

func (r *Repository) fetchOne(ctx context.Context, op, sql string, arg any) (*user.User, error) {
	u, err := scan(r.db.QueryRow(ctx, sql, arg))
	if err != nil {
		return nil, postgres.MapError(op, err)
	}

	return fromDBModel(u), nil
}

func scan(row pgx.Row) (*User, error) {
	u := new(User)
	err := row.Scan(
		&u.ID,
		&u.AccountID,
		&u.Email,
		&u.FullName,
		&u.Avatar,

		&u.CreatedAt,
		&u.UpdatedAt,
	)
	return u, err
}
