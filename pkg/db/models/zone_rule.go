package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/techb2bnew/coconut-delivery/pkg/enums"
)

// ZoneRule configures the cutoff-time fallback for a delivery zone.
// CutoffTime is a local wall-clock "HH:MM" or "HH:MM:SS" string; the offsets
// are nullable and default to 1 (before cutoff) and 2 (after cutoff).
type ZoneRule struct {
	ID                     uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	FranchiseID            uuid.UUID        `gorm:"column:franchise_id;type:uuid;not null;index"`
	ZoneID                 uuid.UUID        `gorm:"column:zone_id;type:uuid;not null;index"`
	Status                 enums.RuleStatus `gorm:"column:status;type:text;not null;default:'Active'"`
	CutoffTime             string           `gorm:"column:cutoff_time"`
	BeforeCutoffOffsetDays *int             `gorm:"column:before_cutoff_offset_days"`
	AfterCutoffOffsetDays  *int             `gorm:"column:after_cutoff_offset_days"`
	CreatedAt              time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt              time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
