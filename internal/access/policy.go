// Package access decides who may open which view and see or change which record.
// Every function here is pure; side effects such as revoking the session of a
// fired user belong to the caller.
package access

import (
	apperrors "abantech/internal/errors"
	"abantech/internal/model"
	"abantech/internal/session"
)

// Owned is anything with an owning user identifier.
type Owned interface {
	LedgerOwner() string
}

// Check returns nil if s may open a view that requires target, otherwise the
// reason: ErrUnauthenticated without a session, ErrAccountDeactivated for a
// fired user (whatever the role), ErrForbidden for the wrong role.
func Check(s *session.Session, target model.Role) error {
	if s == nil {
		return apperrors.ErrUnauthenticated
	}
	if s.Status == model.UserStatusFired {
		return apperrors.ErrAccountDeactivated
	}
	if s.Role != target {
		return apperrors.ErrForbidden
	}
	return nil
}

// CanAccess reports whether s may open a view that requires target.
func CanAccess(s *session.Session, target model.Role) bool {
	return Check(s, target) == nil
}

// CheckLogin rejects credentials that matched a fired user.
func CheckLogin(user *model.User) error {
	if user.Status == model.UserStatusFired {
		return apperrors.ErrAccountDeactivated
	}
	return nil
}

// CanView reports whether s may read record: admins read everything, users
// only what they own.
func CanView(s *session.Session, record Owned) bool {
	if s == nil || s.Status == model.UserStatusFired {
		return false
	}
	if s.Role == model.RoleAdmin {
		return true
	}
	return record.LedgerOwner() == s.Identifier()
}

// CanEdit reports whether s may change record. Only the owner may, admins included.
func CanEdit(s *session.Session, record Owned) bool {
	if s == nil || s.Status == model.UserStatusFired {
		return false
	}
	return record.LedgerOwner() == s.Identifier()
}
