package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Shop is a physical business location. Records reference it by name.
type Shop struct {
	ID        uuid.UUID  `json:"id" gorm:"type:char(36);primaryKey"`
	Name      string     `json:"name" gorm:"uniqueIndex;size:255;not null"`
	Status    ShopStatus `json:"status" gorm:"type:varchar(20);not null;default:'active';index"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// BeforeCreate sets UUID before creating the record.
func (s *Shop) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if s.Status == "" {
		s.Status = ShopStatusActive
	}
	return nil
}
