package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"abantech/internal/model"
)

// RevenueRepository defines revenue persistence operations. Records come back
// in creation order.
type RevenueRepository interface {
	Create(ctx context.Context, revenue *model.Revenue) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Revenue, error)
	ListForUser(ctx context.Context, owner string) ([]model.Revenue, error)
	ListForShop(ctx context.Context, shop string) ([]model.Revenue, error)
	Patch(ctx context.Context, id uuid.UUID, fields map[string]interface{}) (*model.Revenue, error)
}

type revenueRepository struct {
	db *gorm.DB
}

// NewRevenueRepository creates a new revenue repository.
func NewRevenueRepository(db *gorm.DB) RevenueRepository {
	return &revenueRepository{db: db}
}

// Create creates a new revenue record.
func (r *revenueRepository) Create(ctx context.Context, revenue *model.Revenue) error {
	return r.db.WithContext(ctx).Create(revenue).Error
}

// FindByID finds a revenue record by ID.
func (r *revenueRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Revenue, error) {
	var revenue model.Revenue
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&revenue).Error; err != nil {
		return nil, notFound(err)
	}
	return &revenue, nil
}

// ListForUser lists the records stamped with owner.
func (r *revenueRepository) ListForUser(ctx context.Context, owner string) ([]model.Revenue, error) {
	var revenues []model.Revenue
	if err := r.db.WithContext(ctx).Where("username = ?", owner).
		Order("recorded_at ASC").Find(&revenues).Error; err != nil {
		return nil, err
	}
	return revenues, nil
}

// ListForShop lists the records booked against shop.
func (r *revenueRepository) ListForShop(ctx context.Context, shop string) ([]model.Revenue, error) {
	var revenues []model.Revenue
	if err := r.db.WithContext(ctx).Where("shop = ?", shop).
		Order("recorded_at ASC").Find(&revenues).Error; err != nil {
		return nil, err
	}
	return revenues, nil
}

// Patch updates only the given columns.
func (r *revenueRepository) Patch(ctx context.Context, id uuid.UUID, fields map[string]interface{}) (*model.Revenue, error) {
	return patchByID[model.Revenue](ctx, r.db, id, fields)
}
