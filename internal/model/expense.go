package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Expense is money paid out for a shop under one category.
// ID, Username, Shop and Timestamp never change after creation.
type Expense struct {
	ID          uuid.UUID       `json:"id" gorm:"type:char(36);primaryKey"`
	Category    Category        `json:"category" gorm:"type:varchar(64);not null;index"`
	Amount      decimal.Decimal `json:"amount" gorm:"type:decimal(20,2);not null;default:0"`
	Date        string          `json:"date" gorm:"type:varchar(10);not null;index"`
	Shop        string          `json:"shop" gorm:"size:255;not null;index"`
	Username    string          `json:"username" gorm:"size:255;not null;index"`
	Description string          `json:"description,omitempty" gorm:"size:100"`
	Timestamp   time.Time       `json:"timestamp" gorm:"column:recorded_at;not null;index"`
}

// BeforeCreate sets UUID and creation instant before creating the record.
func (e *Expense) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}
	return nil
}

// Ledger accessors used by the ledger filter and aggregator.
func (e Expense) LedgerDate() string { return e.Date }
func (e Expense) LedgerAmount() decimal.Decimal { return e.Amount }
func (e Expense) LedgerShop() string { return e.Shop }
func (e Expense) LedgerOwner() string { return e.Username }
func (e Expense) LedgerKind() string { return string(e.Category) }
