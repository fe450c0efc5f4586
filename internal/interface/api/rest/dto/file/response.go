package file

import (
	"time"

	"github.com/google/uuid"

	"cloudy/internal/interface/api/rest/dto/user"
)

type (
	File struct {
		ID        uuid.UUID  `json:"id"`
		Name      string     `json:"name"`
		Extension string     `json:"extension"`
		Type      string     `json:"type"`
		Size      int64      `json:"size"`
		URL       string     `json:"url"`
		Owner     user.Owner `json:"owner"`
		AccountID string     `json:"accountId"`
		Users     []string   `json:"users"`
		CreatedAt time.Time  `json:"createdAt"`
		UpdatedAt time.Time  `json:"updatedAt"`
	}
	Files        []File
	ResponseData struct {
		Data  Files `json:"data"`
		Total int   `json:"total"`
	}

	UploadResult struct {
		Name  string `json:"name"`
		File  *File  `json:"file,omitempty"`
		Error string `json:"error,omitempty"`
	}
	UploadResponse struct {
		Data []UploadResult `json:"data"`
	}

	DeleteResponse struct {
		Status string `json:"status"`
	}
	ActionResponse struct {
		File   *File  `json:"file,omitempty"`
		Status string `json:"status,omitempty"`
	}
)
