package user

import (
	"time"

	"github.com/google/uuid"
)

type (
	User struct {
		ID        uuid.UUID
		AccountID string
		Email     string
		FullName  string
		Avatar    string

		CreatedAt time.Time
		UpdatedAt time.Time
	}
	Users []*User
)
