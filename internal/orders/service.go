package orders

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/techb2bnew/coconut-delivery/internal/estimation"
	"github.com/techb2bnew/coconut-delivery/pkg/db/models"
	"github.com/techb2bnew/coconut-delivery/pkg/enums"
	"github.com/techb2bnew/coconut-delivery/pkg/errors"
	"github.com/techb2bnew/coconut-delivery/pkg/logger"
)

// TxRunner runs a function inside a database transaction. Satisfied by
// pkg/db.Client.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// SubmitInput is one order submission.
type SubmitInput struct {
	FranchiseID     uuid.UUID
	CustomerName    string
	DeliveryAddress string
	Quantity        int
	OrderTime       time.Time
	ZoneID          *uuid.UUID
	ZoneName        string
	Notes           *string
}

// SubmitResult pairs the stored order with the estimate that produced its
// delivery date.
type SubmitResult struct {
	Order    models.Order
	Estimate estimation.Result
}

// Service submits and reads orders.
type Service interface {
	// Submit runs a final estimate for the order and persists it. The
	// stored delivery date is frozen at submission time; an estimator
	// fallback still submits, with a nil day label.
	Submit(ctx context.Context, in SubmitInput) (*SubmitResult, error)

	GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error)
	ListOrders(ctx context.Context, franchiseID uuid.UUID, limit int) ([]models.Order, error)
}

type service struct {
	repo      Repository
	estimator estimation.Service
	tx        TxRunner
	logg      *logger.Logger
}

// NewService builds the order service.
func NewService(repo Repository, estimator estimation.Service, tx TxRunner, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, errors.New(errors.CodeInternal, "orders: repository is required")
	}
	if estimator == nil {
		return nil, errors.New(errors.CodeInternal, "orders: estimator is required")
	}
	if tx == nil {
		return nil, errors.New(errors.CodeInternal, "orders: tx runner is required")
	}
	if logg == nil {
		return nil, errors.New(errors.CodeInternal, "orders: logger is required")
	}
	return &service{repo: repo, estimator: estimator, tx: tx, logg: logg}, nil
}

func (s *service) Submit(ctx context.Context, in SubmitInput) (*SubmitResult, error) {
	if err := validateSubmit(in); err != nil {
		return nil, err
	}

	ctx = s.logg.WithFranchiseID(ctx, in.FranchiseID.String())

	franchise, err := s.repo.FindFranchiseByID(ctx, in.FranchiseID)
	if err != nil {
		return nil, err
	}
	if !franchise.IsActive {
		return nil, errors.New(errors.CodeStateConflict, "franchise is not accepting orders")
	}

	estimate, err := s.estimator.Estimate(ctx, estimation.Input{
		FranchiseID: in.FranchiseID,
		Quantity:    in.Quantity,
		OrderTime:   in.OrderTime,
		ZoneID:      in.ZoneID,
		ZoneName:    in.ZoneName,
		Timezone:    franchise.Timezone,
	})
	if err != nil {
		return nil, err
	}

	quantity := decimal.NewFromInt(int64(in.Quantity))
	order := models.Order{
		ID:               uuid.New(),
		FranchiseID:      in.FranchiseID,
		ZoneID:           in.ZoneID,
		CustomerName:     strings.TrimSpace(in.CustomerName),
		DeliveryAddress:  strings.TrimSpace(in.DeliveryAddress),
		Quantity:         in.Quantity,
		UnitPrice:        franchise.UnitPrice,
		TotalPrice:       franchise.UnitPrice.Mul(quantity),
		DeliveryDate:     estimate.DeliveryDate,
		DeliveryDayLabel: estimate.DeliveryDayLabel,
		Status:           enums.OrderStatusPending,
		Notes:            in.Notes,
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return s.repo.WithTx(tx).CreateOrder(ctx, &order)
	})
	if err != nil {
		return nil, err
	}

	s.logg.Info(s.logg.WithOrderID(ctx, order.ID.String()), "order submitted")
	return &SubmitResult{Order: order, Estimate: estimate}, nil
}

func (s *service) GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	if id == uuid.Nil {
		return nil, errors.New(errors.CodeValidation, "order id is required")
	}
	return s.repo.FindOrderByID(ctx, id)
}

func (s *service) ListOrders(ctx context.Context, franchiseID uuid.UUID, limit int) ([]models.Order, error) {
	if franchiseID == uuid.Nil {
		return nil, errors.New(errors.CodeValidation, "franchise id is required")
	}
	return s.repo.ListOrdersByFranchise(ctx, franchiseID, limit)
}

func validateSubmit(in SubmitInput) error {
	if in.FranchiseID == uuid.Nil {
		return errors.New(errors.CodeValidation, "franchise id is required")
	}
	if strings.TrimSpace(in.CustomerName) == "" {
		return errors.New(errors.CodeValidation, "customer name is required")
	}
	if strings.TrimSpace(in.DeliveryAddress) == "" {
		return errors.New(errors.CodeValidation, "delivery address is required")
	}
	if in.Quantity <= 0 {
		return errors.New(errors.CodeValidation, "quantity must be positive")
	}
	if in.OrderTime.IsZero() {
		return errors.New(errors.CodeValidation, "order timestamp is required")
	}
	return nil
}
