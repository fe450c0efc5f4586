package file

import (
	"time"

	"github.com/google/uuid"
)

type (
	File struct {
		ID           uuid.UUID
		Name         string
		Extension    string
		Type         string
		Size         int64
		OwnerID      uuid.UUID
		AccountID    string
		Users        []string
		BucketFileID string
		URL          string

		CreatedAt time.Time
		UpdatedAt time.Time
	}
	Files []*File
)
