package file

// Action is the closed set of mutations a requester can apply to a file.
// The unexported marker keeps the set closed to this package.
type Action interface {
	Target() ID
	action()
}

type (
	RenameAction struct {
		FileID ID
		Name   string
	}
	ShareAction struct {
		FileID ID
		Emails []string
	}
	DeleteAction struct {
		FileID ID
	}
)

func (a RenameAction) Target() ID { return a.FileID }
func (a ShareAction) Target() ID  { return a.FileID }
func (a DeleteAction) Target() ID { return a.FileID }

func (RenameAction) action() {}
func (ShareAction) action()  {}
func (DeleteAction) action() {}

type DeleteStatus string

const (
	StatusDeleted DeleteStatus = "deleted"
	StatusLeft    DeleteStatus = "left"
)

// ActionResult carries the updated record for rename/share and the status
// for delete.
type ActionResult struct {
	File   *File
	Status DeleteStatus
}
