package user

import (
	"cloudy/internal/domain/user"
)

func ToResponseUser(uDomain user.User) User {
	return User{
		ID:        uDomain.ID,
		AccountID: uDomain.AccountID,
		Email:     uDomain.Email,
		FullName:  uDomain.FullName,
		Avatar:    uDomain.Avatar,
	}
}

func ToResponseOwner(id user.ID, s *user.Summary) Owner {
	if s == nil {
		return Owner{ID: id}
	}
	return Owner{
		ID:       id,
		FullName: s.FullName,
		Email:    s.Email,
		Avatar:   s.Avatar,
	}
}
