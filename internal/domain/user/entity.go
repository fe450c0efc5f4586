package user

import (
	"time"

	"github.com/google/uuid"
)

type (
	ID   = uuid.UUID
	User struct {
		ID        ID
		AccountID string
		Email     string
		FullName  string
		Avatar    string

		CreatedAt time.Time
		UpdatedAt time.Time
	}
	Users []*User

	// Summary is the owner projection attached to files at read time.
	Summary struct {
		ID       ID
		FullName string
		Email    string
		Avatar   string
	}
)

func (u *User) Summary() Summary {
	return Summary{
		ID:       u.ID,
		FullName: u.FullName,
		Email:    u.Email,
		Avatar:   u.Avatar,
	}
}
