package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"cloudy/internal/domain/apperr"
	"cloudy/internal/domain/user"
)

type UserRepository struct {
	mu    sync.RWMutex
	users map[user.ID]*user.User
}

func NewUserRepository() *UserRepository {
	return &UserRepository{users: make(map[user.ID]*user.User)}
}

func (r *UserRepository) FetchUserByID(_ context.Context, id user.ID) (*user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", id, apperr.ErrNotFound)
	}
	c := *u
	return &c, nil
}

func (r *UserRepository) FetchUserByEmail(_ context.Context, email string) (*user.User, error) {
	return r.find(func(u *user.User) bool { return strings.EqualFold(u.Email, email) })
}

func (r *UserRepository) FetchUserByAccountID(_ context.Context, accountID string) (*user.User, error) {
	return r.find(func(u *user.User) bool { return u.AccountID == accountID })
}

func (r *UserRepository) CreateUser(_ context.Context, req user.User) (*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if strings.EqualFold(u.Email, req.Email) {
			return nil, fmt.Errorf("%w: email %s already registered", apperr.ErrInvalidInput, req.Email)
		}
	}

	if req.ID == uuid.Nil {
		req.ID = uuid.New()
	}
	req.CreatedAt = time.Now().UTC()
	req.UpdatedAt = req.CreatedAt
	r.users[req.ID] = &req

	c := req
	return &c, nil
}

func (r *UserRepository) find(fn func(u *user.User) bool) (*user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if fn(u) {
			c := *u
			return &c, nil
		}
	}
	return nil, fmt.Errorf("user: %w", apperr.ErrNotFound)
}
