package file

import (
	"slices"
	"time"

	"github.com/google/uuid"

	"cloudy/internal/domain/user"
)

type (
	ID = uuid.UUID

	// Owner is either a bare reference (Summary == nil) or an already
	// resolved owner record. ID is authoritative in both cases.
	Owner struct {
		ID      user.ID
		Summary *user.Summary
	}

	File struct {
		ID        ID
		Name      string
		Extension string
		Type      Type
		Size      int64
		Owner     Owner
		AccountID string
		// Users holds the emails the file is shared with, owner included.
		Users        []string
		BucketFileID string
		URL          string

		CreatedAt time.Time
		UpdatedAt time.Time
	}
	Files []*File
)

func (o Owner) Resolved() bool { return o.Summary != nil }

func (f *File) HasUser(email string) bool {
	return email != "" && slices.Contains(f.Users, email)
}

// IDs returns the ids of fs in order.
func (fs Files) IDs() []ID {
	ids := make([]ID, len(fs))
	for i, f := range fs {
		ids[i] = f.ID
	}
	return ids
}
