package user

import (
	domain "cloudy/internal/domain/user"
)

func fromDBModel(model *User) *domain.User {
	return &domain.User{
		ID:        model.ID,
		AccountID: model.AccountID,
		Email:     model.Email,
		FullName:  model.FullName,
		Avatar:    model.Avatar,

		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}
}
