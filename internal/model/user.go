package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is a shop attendant or an admin.
type User struct {
	ID           uuid.UUID  `json:"id" gorm:"type:char(36);primaryKey"`
	Email        string     `json:"email" gorm:"uniqueIndex;size:255;not null"`
	Username     string     `json:"username,omitempty" gorm:"size:100;index"`
	PasswordHash string     `json:"-" gorm:"size:255;not null"` // Never expose in JSON
	Role         Role       `json:"role" gorm:"type:varchar(20);not null;default:'user';index"`
	ShopID       *uuid.UUID `json:"shop_id,omitempty" gorm:"type:char(36);index"`
	Status       UserStatus `json:"status" gorm:"type:varchar(20);not null;default:'active';index"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// Identifier is the name stamped on records the user creates and the key their
// ledger is filtered by: the username when set, else the email.
func (u *User) Identifier() string {
	if u.Username != "" {
		return u.Username
	}
	return u.Email
}

// BeforeCreate sets defaults before inserting the record.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.Role == "" {
		u.Role = RoleUser
	}
	if u.Status == "" {
		u.Status = UserStatusActive
	}
	return nil
}
