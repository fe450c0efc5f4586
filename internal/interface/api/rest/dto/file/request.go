package file

import (
	"fmt"

	"cloudy/internal/domain/file"
)

const (
	ActionRename = "rename"
	ActionShare  = "share"
	ActionDelete = "delete"
)

type (
	RenameRequest struct {
		Name string `json:"name" validate:"required,max=255"`
	}
	ShareRequest struct {
		Emails []string `json:"emails" validate:"dive,email"`
	}
	// ActionRequest is the tagged body of POST /files/:file_id/actions.
	ActionRequest struct {
		Type   string   `json:"type" validate:"required,oneof=rename share delete"`
		Name   string   `json:"name" validate:"required_if=Type rename,max=255"`
		Emails []string `json:"emails" validate:"dive,email"`
	}
)

func ToDomainAction(fileID file.ID, r ActionRequest) (file.Action, error) {
	switch r.Type {
	case ActionRename:
		return file.RenameAction{FileID: fileID, Name: r.Name}, nil
	case ActionShare:
		return file.ShareAction{FileID: fileID, Emails: r.Emails}, nil
	case ActionDelete:
		return file.DeleteAction{FileID: fileID}, nil
	}
	return nil, fmt.Errorf("unknown action %q", r.Type)
}
