package service

import (
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	apperrors "abantech/internal/errors"
	"abantech/internal/model"
)

// RecordValidator validates the fields of revenue and expense submissions.
type RecordValidator struct{}

// NewRecordValidator creates a new record validator.
func NewRecordValidator() *RecordValidator {
	return &RecordValidator{}
}

// ValidateAmount rejects negative amounts.
func (v *RecordValidator) ValidateAmount(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return apperrors.NewValidationError("amount", "must not be negative")
	}
	return nil
}

// ValidateDate requires a canonical YYYY-MM-DD calendar date.
func (v *RecordValidator) ValidateDate(field, date string) error {
	if !model.ValidDate(date) {
		return apperrors.NewValidationError(field, "must be a date in YYYY-MM-DD format")
	}
	return nil
}

// ValidateDescription bounds the description length in characters.
func (v *RecordValidator) ValidateDescription(description string) error {
	if utf8.RuneCountInString(description) > model.MaxDescriptionLength {
		return apperrors.NewValidationError("description", "must be at most 100 characters")
	}
	return nil
}

// ValidateRange checks optional from/to bounds. Both must be canonical dates
// when set, and from must not be after to.
func (v *RecordValidator) ValidateRange(from, to string) error {
	if from != "" {
		if err := v.ValidateDate("from", from); err != nil {
			return err
		}
	}
	if to != "" {
		if err := v.ValidateDate("to", to); err != nil {
			return err
		}
	}
	if from != "" && to != "" && from > to {
		return apperrors.NewValidationError("to", "must not be before from")
	}
	return nil
}

// ValidateRecord checks the fields shared by every submission.
func (v *RecordValidator) ValidateRecord(amount decimal.Decimal, date, description string) error {
	if err := v.ValidateAmount(amount); err != nil {
		return err
	}
	if err := v.ValidateDate("date", date); err != nil {
		return err
	}
	return v.ValidateDescription(description)
}

// ParseActivityFilter accepts a blank filter, "all", or a known activity.
func (v *RecordValidator) ParseActivityFilter(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "all" {
		return "", nil
	}
	a, err := model.ParseActivity(s)
	if err != nil {
		return "", apperrors.NewValidationError("activity", err.Error())
	}
	return string(a), nil
}

// ParseCategoryFilter accepts a blank filter, "all", or a category of any family.
func (v *RecordValidator) ParseCategoryFilter(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "all" {
		return "", nil
	}
	c, err := model.ParseCategory(s)
	if err != nil {
		return "", apperrors.NewValidationError("category", err.Error())
	}
	return string(c), nil
}
