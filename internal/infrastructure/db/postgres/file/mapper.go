package file

import (
	domain "cloudy/internal/domain/file"
)

func fromDBModel(model *File) *domain.File {
	users := model.Users
	if users == nil {
		users = []string{}
	}
	return &domain.File{
		ID:           model.ID,
		Name:         model.Name,
		Extension:    model.Extension,
		Type:         domain.Type(model.Type),
		Size:         model.Size,
		Owner:        domain.Owner{ID: model.OwnerID},
		AccountID:    model.AccountID,
		Users:        users,
		BucketFileID: model.BucketFileID,
		URL:          model.URL,

		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}
}

func fromDBModels(models Files) domain.Files {
	fs := make(domain.Files, len(models))
	for idx, f := range models {
		fs[idx] = fromDBModel(f)
	}

	return fs
}
