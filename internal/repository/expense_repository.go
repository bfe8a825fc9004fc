package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"abantech/internal/model"
)

// ExpenseRepository defines expense persistence operations. Records come back
// in creation order.
type ExpenseRepository interface {
	Create(ctx context.Context, expense *model.Expense) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Expense, error)
	ListForUser(ctx context.Context, owner string) ([]model.Expense, error)
	ListForShop(ctx context.Context, shop string) ([]model.Expense, error)
	Patch(ctx context.Context, id uuid.UUID, fields map[string]interface{}) (*model.Expense, error)
}

type expenseRepository struct {
	db *gorm.DB
}

// NewExpenseRepository creates a new expense repository.
func NewExpenseRepository(db *gorm.DB) ExpenseRepository {
	return &expenseRepository{db: db}
}

// Create creates a new expense record.
func (r *expenseRepository) Create(ctx context.Context, expense *model.Expense) error {
	return r.db.WithContext(ctx).Create(expense).Error
}

// FindByID finds a expense record by ID.
func (r *expenseRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Expense, error) {
	var expense model.Expense
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&expense).Error; err != nil {
		return nil, notFound(err)
	}
	return &expense, nil
}

// ListForUser lists the records stamped with owner.
func (r *expenseRepository) ListForUser(ctx context.Context, owner string) ([]model.Expense, error) {
	var expenses []model.Expense
	if err := r.db.WithContext(ctx).Where("username = ?", owner).
		Order("recorded_at ASC").Find(&expenses).Error; err != nil {
		return nil, err
	}
	return expenses, nil
}

// ListForShop lists the records booked against shop.
func (r *expenseRepository) ListForShop(ctx context.Context, shop string) ([]model.Expense, error) {
	var expenses []model.Expense
	if err := r.db.WithContext(ctx).Where("shop = ?", shop).
		Order("recorded_at ASC").Find(&expenses).Error; err != nil {
		return nil, err
	}
	return expenses, nil
}

// Patch updates only the given columns.
func (r *expenseRepository) Patch(ctx context.Context, id uuid.UUID, fields map[string]interface{}) (*model.Expense, error) {
	return patchByID[model.Expense](ctx, r.db, id, fields)
}
