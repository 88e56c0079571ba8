// Package rules loads delivery rules for the estimator, with an optional
// Redis read-through cache in front of the database.
package rules

import (
	"context"
	stderrors "errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/techb2bnew/coconut-delivery/pkg/db/models"
	"github.com/techb2bnew/coconut-delivery/pkg/enums"
	"github.com/techb2bnew/coconut-delivery/pkg/errors"
)

// Repository reads delivery rules. It satisfies estimation.RuleSource and
// adds the listing queries the admin API needs.
type Repository interface {
	ActiveQuantityRules(ctx context.Context, franchiseID uuid.UUID) ([]models.QuantityRule, error)
	ActiveZoneRule(ctx context.Context, franchiseID uuid.UUID, zoneID uuid.UUID) (*models.ZoneRule, error)
	ResolveZoneIDByName(ctx context.Context, nameFragment string) (uuid.UUID, bool, error)

	ListQuantityRules(ctx context.Context, franchiseID uuid.UUID) ([]models.QuantityRule, error)
	ListZoneRules(ctx context.Context, franchiseID uuid.UUID) ([]models.ZoneRule, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds the GORM-backed rule repository.
func NewRepository(db *gorm.DB) (Repository, error) {
	if db == nil {
		return nil, errors.New(errors.CodeInternal, "rules: db handle is required")
	}
	return &repository{db: db}, nil
}

func (r *repository) ActiveQuantityRules(ctx context.Context, franchiseID uuid.UUID) ([]models.QuantityRule, error) {
	var rules []models.QuantityRule
	// Deterministic order keeps residual tie-breaks in the estimator
	// stable across fetches.
	err := r.db.WithContext(ctx).
		Where("franchise_id = ? AND status = ?", franchiseID, enums.RuleStatusActive).
		Order("min_quantity ASC, created_at ASC").
		Find(&rules).Error
	if err != nil {
		return nil, errors.Wrap(errors.CodeDependency, err, "query quantity rules")
	}
	return rules, nil
}

func (r *repository) ActiveZoneRule(ctx context.Context, franchiseID uuid.UUID, zoneID uuid.UUID) (*models.ZoneRule, error) {
	var rule models.ZoneRule
	err := r.db.WithContext(ctx).
		Where("franchise_id = ? AND zone_id = ? AND status = ?", franchiseID, zoneID, enums.RuleStatusActive).
		Order("updated_at DESC").
		First(&rule).Error
	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(errors.CodeDependency, err, "query zone rule")
	}
	return &rule, nil
}

func (r *repository) ResolveZoneIDByName(ctx context.Context, nameFragment string) (uuid.UUID, bool, error) {
	fragment := strings.ToLower(strings.TrimSpace(nameFragment))
	if fragment == "" {
		return uuid.Nil, false, nil
	}

	var zone models.Zone
	// lower() keeps the match case-insensitive on both Postgres and SQLite.
	err := r.db.WithContext(ctx).
		Where("lower(name) LIKE ?", "%"+fragment+"%").
		Order("name ASC").
		First(&zone).Error
	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		return uuid.Nil, false, nil
	}
	if err != nil {
		return uuid.Nil, false, errors.Wrap(errors.CodeDependency, err, "resolve zone by name")
	}
	return zone.ID, true, nil
}

func (r *repository) ListQuantityRules(ctx context.Context, franchiseID uuid.UUID) ([]models.QuantityRule, error) {
	var rules []models.QuantityRule
	err := r.db.WithContext(ctx).
		Where("franchise_id = ?", franchiseID).
		Order("min_quantity ASC").
		Find(&rules).Error
	if err != nil {
		return nil, errors.Wrap(errors.CodeDependency, err, "list quantity rules")
	}
	return rules, nil
}

func (r *repository) ListZoneRules(ctx context.Context, franchiseID uuid.UUID) ([]models.ZoneRule, error) {
	var rules []models.ZoneRule
	err := r.db.WithContext(ctx).
		Where("franchise_id = ?", franchiseID).
		Order("created_at ASC").
		Find(&rules).Error
	if err != nil {
		return nil, errors.Wrap(errors.CodeDependency, err, "list zone rules")
	}
	return rules, nil
}
