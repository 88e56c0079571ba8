// Package orders handles order submission: a final synchronous estimate,
// price totals, and persistence.
package orders

import (
	"context"
	stderrors "errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/techb2bnew/coconut-delivery/pkg/db"
	"github.com/techb2bnew/coconut-delivery/pkg/db/models"
	"github.com/techb2bnew/coconut-delivery/pkg/errors"
)

// Repository persists orders and reads the franchises they belong to.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	CreateOrder(ctx context.Context, order *models.Order) error
	FindOrderByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	ListOrdersByFranchise(ctx context.Context, franchiseID uuid.UUID, limit int) ([]models.Order, error)

	FindFranchiseByID(ctx context.Context, id uuid.UUID) (*models.Franchise, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds the GORM-backed order repository.
func NewRepository(db *gorm.DB) (Repository, error) {
	if db == nil {
		return nil, errors.New(errors.CodeInternal, "orders: db handle is required")
	}
	return &repository{db: db}, nil
}

// WithTx returns a repository bound to the given transaction.
func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateOrder(ctx context.Context, order *models.Order) error {
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		if db.IsUniqueViolation(err, "") {
			return errors.Wrap(errors.CodeConflict, err, "order already exists")
		}
		return errors.Wrap(errors.CodeDependency, err, "insert order")
	}
	return nil
}

func (r *repository) FindOrderByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&order).Error
	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errors.New(errors.CodeNotFound, "order not found")
	}
	if err != nil {
		return nil, errors.Wrap(errors.CodeDependency, err, "query order")
	}
	return &order, nil
}

func (r *repository) ListOrdersByFranchise(ctx context.Context, franchiseID uuid.UUID, limit int) ([]models.Order, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var out []models.Order
	err := r.db.WithContext(ctx).
		Where("franchise_id = ?", franchiseID).
		Order("created_at DESC").
		Limit(limit).
		Find(&out).Error
	if err != nil {
		return nil, errors.Wrap(errors.CodeDependency, err, "list orders")
	}
	return out, nil
}

func (r *repository) FindFranchiseByID(ctx context.Context, id uuid.UUID) (*models.Franchise, error) {
	var franchise models.Franchise
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&franchise).Error
	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errors.New(errors.CodeNotFound, "franchise not found")
	}
	if err != nil {
		return nil, errors.Wrap(errors.CodeDependency, err, "query franchise")
	}
	return &franchise, nil
}
