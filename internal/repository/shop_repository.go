package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"abantech/internal/model"
)

// ShopRepository defines shop persistence operations.
type ShopRepository interface {
	Create(ctx context.Context, shop *model.Shop) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Shop, error)
	FindByName(ctx context.Context, name string) (*model.Shop, error)
	List(ctx context.Context) ([]model.Shop, error)
	ListActive(ctx context.Context) ([]model.Shop, error)
	Patch(ctx context.Context, id uuid.UUID, fields map[string]interface{}) (*model.Shop, error)
}

type shopRepository struct {
	db *gorm.DB
}

// NewShopRepository creates a new shop repository.
func NewShopRepository(db *gorm.DB) ShopRepository {
	return &shopRepository{db: db}
}

// Create creates a new shop.
func (r *shopRepository) Create(ctx context.Context, shop *model.Shop) error {
	return r.db.WithContext(ctx).Create(shop).Error
}

// FindByID finds a shop by ID.
func (r *shopRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Shop, error) {
	var shop model.Shop
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&shop).Error; err != nil {
		return nil, notFound(err)
	}
	return &shop, nil
}

// FindByName finds a shop by its unique display name.
func (r *shopRepository) FindByName(ctx context.Context, name string) (*model.Shop, error) {
	var shop model.Shop
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&shop).Error; err != nil {
		return nil, notFound(err)
	}
	return &shop, nil
}

// List lists all shops in creation order.
func (r *shopRepository) List(ctx context.Context) ([]model.Shop, error) {
	var shops []model.Shop
	if err := r.db.WithContext(ctx).Order("created_at ASC").Find(&shops).Error; err != nil {
		return nil, err
	}
	return shops, nil
}

// ListActive lists shops that are open for business.
func (r *shopRepository) ListActive(ctx context.Context) ([]model.Shop, error) {
	var shops []model.Shop
	if err := r.db.WithContext(ctx).Where("status = ?", model.ShopStatusActive).
		Order("created_at ASC").Find(&shops).Error; err != nil {
		return nil, err
	}
	return shops, nil
}

// Patch updates only the given columns.
func (r *shopRepository) Patch(ctx context.Context, id uuid.UUID, fields map[string]interface{}) (*model.Shop, error) {
	return patchByID[model.Shop](ctx, r.db, id, fields)
}
