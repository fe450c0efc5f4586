package user

import (
	"github.com/google/uuid"
)

type (
	User struct {
		ID        uuid.UUID `json:"id"`
		AccountID string    `json:"accountId"`
		Email     string    `json:"email"`
		FullName  string    `json:"fullName"`
		Avatar    string    `json:"avatar"`
	}
	// Owner is the owner projection embedded in file responses.
	Owner struct {
		ID       uuid.UUID `json:"id"`
		FullName string    `json:"fullName,omitempty"`
		Email    string    `json:"email,omitempty"`
		Avatar   string    `json:"avatar,omitempty"`
	}
)
