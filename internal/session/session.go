// Package session holds the identity of an authenticated user between requests.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"abantech/internal/model"
)

// ErrNotFound is returned by a Store when no live session has the given id.
var ErrNotFound = errors.New("session not found")

// Session is the identity established at login. It is owned by exactly one
// login: created by Login, destroyed by Logout or when the user is fired.
type Session struct {
	ID        string           `json:"id"`
	UserID    uuid.UUID        `json:"user_id"`
	Email     string           `json:"email"`
	Username  string           `json:"username,omitempty"`
	Role      model.Role       `json:"role"`
	ShopID    *uuid.UUID       `json:"shop_id,omitempty"`
	Status    model.UserStatus `json:"status"`
	CreatedAt time.Time        `json:"created_at"`
}

// New starts a session for user with a fresh id.
func New(user *model.User) *Session {
	s := &Session{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		Email:     user.Email,
		CreatedAt: time.Now().UTC(),
	}
	s.Refresh(user)
	return s
}

// Refresh copies the admin-mutable fields of user into the session.
func (s *Session) Refresh(user *model.User) {
	s.Username = user.Username
	s.Role = user.Role
	s.ShopID = user.ShopID
	s.Status = user.Status
}

// Identifier returns the owner name used on both record writes and ledger
// reads: the username when set, else the email. It must agree with
// model.User.Identifier.
func (s *Session) Identifier() string {
	if s.Username != "" {
		return s.Username
	}
	return s.Email
}

// Store keeps sessions by id.
type Store interface {
	Get(ctx context.Context, id string) (*Session, error)
	Set(ctx context.Context, s *Session, ttl time.Duration) error
	Clear(ctx context.Context, id string) error
}
