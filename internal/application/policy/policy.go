// Package policy decides who may read, mutate or delete a file record.
// Ownership is always compared by user record id, never by account id or email.
package policy

import (
	"cloudy/internal/domain/file"
	"cloudy/internal/domain/query"
	"cloudy/internal/domain/user"
)

type DeleteMode int

const (
	DeleteDenied DeleteMode = iota
	// DeleteOwner removes metadata, object and index entry.
	DeleteOwner
	// DeleteLeave only removes the requester from the share list.
	DeleteLeave
)

func (m DeleteMode) String() string {
	switch m {
	case DeleteOwner:
		return "owner_delete"
	case DeleteLeave:
		return "shared_user_leave"
	default:
		return "denied"
	}
}

func IsOwner(u *user.User, f *file.File) bool {
	if u == nil || f == nil {
		return false
	}
	return u.ID == f.Owner.ID
}

func CanRead(u *user.User, f *file.File) bool {
	if u == nil || f == nil {
		return false
	}
	return IsOwner(u, f) || f.HasUser(u.Email)
}

// CanMutate covers rename and share-list management.
func CanMutate(u *user.User, f *file.File) bool {
	return IsOwner(u, f)
}

func CanDelete(u *user.User, f *file.File) DeleteMode {
	switch {
	case IsOwner(u, f):
		return DeleteOwner
	case CanRead(u, f):
		return DeleteLeave
	default:
		return DeleteDenied
	}
}

// Visibility is the store-side form of CanRead.
func Visibility(u *user.User) query.Expr {
	return query.Or(
		query.Equal(query.FieldOwner, u.ID.String()),
		query.Has(query.FieldUsers, u.Email),
	)
}
