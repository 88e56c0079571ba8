package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/techb2bnew/coconut-delivery/pkg/enums"
	"github.com/techb2bnew/coconut-delivery/pkg/types"
)

// QuantityRule maps an inclusive order-quantity range onto a delivery
// offset. MaxQuantity is nullable upstream; rows without it are invalid for
// matching and skipped by the estimator. Ranges of active rules may overlap.
type QuantityRule struct {
	ID                 uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	FranchiseID        uuid.UUID        `gorm:"column:franchise_id;type:uuid;not null;index"`
	Status             enums.RuleStatus `gorm:"column:status;type:text;not null;default:'Active'"`
	MinQuantity        int              `gorm:"column:min_quantity;not null"`
	MaxQuantity        *int             `gorm:"column:max_quantity"`
	DeliveryOffsetDays types.OffsetDays `gorm:"column:delivery_offset_days;type:text"`
	CreatedAt          time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

// RangeWidth returns max-min for tie-breaking; callers must ensure
// MaxQuantity is present.
func (q QuantityRule) RangeWidth() int {
	if q.MaxQuantity == nil {
		return 0
	}
	return *q.MaxQuantity - q.MinQuantity
}

// Matches reports whether the rule is eligible and contains quantity.
func (q QuantityRule) Matches(quantity int) bool {
	if q.MaxQuantity == nil {
		return false
	}
	return q.MinQuantity <= quantity && quantity <= *q.MaxQuantity
}
