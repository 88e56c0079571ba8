package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/techb2bnew/coconut-delivery/pkg/enums"
)

// Order is a submitted coconut order. DeliveryDate and DeliveryDayLabel are
// written once at submission time from the estimator's final output and are
// never recomputed afterwards; the label column keeps its legacy name.
type Order struct {
	ID               uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	FranchiseID      uuid.UUID         `gorm:"column:franchise_id;type:uuid;not null;index"`
	ZoneID           *uuid.UUID        `gorm:"column:zone_id;type:uuid;index"`
	CustomerName     string            `gorm:"column:customer_name;not null"`
	DeliveryAddress  string            `gorm:"column:delivery_address;not null"`
	Quantity         int               `gorm:"column:quantity;not null"`
	UnitPrice        decimal.Decimal   `gorm:"column:unit_price;type:numeric(10,2);not null"`
	TotalPrice       decimal.Decimal   `gorm:"column:total_price;type:numeric(12,2);not null"`
	DeliveryDate     time.Time         `gorm:"column:delivery_date;not null"`
	DeliveryDayLabel *string           `gorm:"column:delivery_day_date"`
	Status           enums.OrderStatus `gorm:"column:status;type:text;not null;default:'pending'"`
	Notes            *string           `gorm:"column:notes"`
	CreatedAt        time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
