package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	apperrors "abantech/internal/errors"
)

// notFound maps GORM's missing-row error onto the domain error.
func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.ErrNotFound
	}
	return err
}

// patchByID applies a partial update to the row with id and returns the row as
// stored afterwards. Concurrent patches are last-write-wins.
func patchByID[T any](ctx context.Context, db *gorm.DB, id uuid.UUID, fields map[string]interface{}) (*T, error) {
	var row T
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&row).Error; err != nil {
			return err
		}
		if len(fields) == 0 {
			return nil
		}
		if err := tx.Model(&row).Updates(fields).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).First(&row).Error
	})
	if err != nil {
		return nil, notFound(err)
	}
	return &row, nil
}
