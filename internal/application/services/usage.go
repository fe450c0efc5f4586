package services

import (
	"context"

	"cloudy/internal/application/ports"
	"cloudy/internal/application/querybuilder"
	"cloudy/internal/domain/usage"
	"cloudy/internal/domain/user"
)

type UsageService struct {
	files ports.FileService
}

func NewUsageService(files ports.FileService) ports.UsageService {
	return &UsageService{files: files}
}

// Usage totals every file the requester can see.
func (us *UsageService) Usage(ctx context.Context, requester *user.User) (usage.Summary, error) {
	spec, err := querybuilder.Build(requester, nil, "", "", 0)
	if err != nil {
		return usage.Summary{}, err
	}

	fls, err := us.files.List(ctx, requester, spec)
	if err != nil {
		return usage.Summary{}, err
	}

	return usage.Summarize(fls), nil
}
