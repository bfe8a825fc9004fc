package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// MaxDescriptionLength bounds the free-text description of a record.
const MaxDescriptionLength = 100

// Revenue is money taken in by a shop for one activity.
// ID, Username, Shop and Timestamp never change after creation.
type Revenue struct {
	ID          uuid.UUID       `json:"id" gorm:"type:char(36);primaryKey"`
	Activity    Activity        `json:"activity" gorm:"type:varchar(64);not null;index"`
	Amount      decimal.Decimal `json:"amount" gorm:"type:decimal(20,2);not null;default:0"`
	Date        string          `json:"date" gorm:"type:varchar(10);not null;index"`
	Shop        string          `json:"shop" gorm:"size:255;not null;index"`
	Username    string          `json:"username" gorm:"size:255;not null;index"`
	Description string          `json:"description,omitempty" gorm:"size:100"`
	Timestamp   time.Time       `json:"timestamp" gorm:"column:recorded_at;not null;index"`
}

// BeforeCreate sets UUID and creation instant before creating the record.
func (r *Revenue) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	if r.Timestamp.IsZero() {
		r.Timestamp = time.Now().UTC()
	}
	return nil
}

// Ledger accessors used by the ledger filter and aggregator.
func (r Revenue) LedgerDate() string { return r.Date }
func (r Revenue) LedgerAmount() decimal.Decimal { return r.Amount }
func (r Revenue) LedgerShop() string { return r.Shop }
func (r Revenue) LedgerOwner() string { return r.Username }
func (r Revenue) LedgerKind() string { return string(r.Activity) }
