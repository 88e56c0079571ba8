package orders

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/techb2bnew/coconut-delivery/pkg/db/models"
	"github.com/techb2bnew/coconut-delivery/pkg/enums"
	pkgerrors "github.com/techb2bnew/coconut-delivery/pkg/errors"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=private"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Franchise{}, &models.Zone{}, &models.Order{}))
	return db
}

func seedFranchise(t *testing.T, db *gorm.DB) models.Franchise {
	t.Helper()
	franchise := models.Franchise{
		ID:        uuid.New(),
		Name:      "Coco Fresh Kandy",
		Slug:      "coco-fresh-kandy",
		Timezone:  "Asia/Colombo",
		UnitPrice: decimal.RequireFromString("3.25"),
		IsActive:  true,
	}
	require.NoError(t, db.Create(&franchise).Error)
	return franchise
}

func newOrder(franchiseID uuid.UUID) models.Order {
	label := "1 day"
	return models.Order{
		ID:               uuid.New(),
		FranchiseID:      franchiseID,
		CustomerName:     "Kumari Silva",
		DeliveryAddress:  "45 Temple Street",
		Quantity:         6,
		UnitPrice:        decimal.RequireFromString("3.25"),
		TotalPrice:       decimal.RequireFromString("19.50"),
		DeliveryDate:     time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC),
		DeliveryDayLabel: &label,
		Status:           enums.OrderStatusPending,
	}
}

func TestCreateAndFindOrder(t *testing.T) {
	db := openTestDB(t)
	repo, err := NewRepository(db)
	require.NoError(t, err)
	franchise := seedFranchise(t, db)

	order := newOrder(franchise.ID)
	require.NoError(t, repo.CreateOrder(context.Background(), &order))

	got, err := repo.FindOrderByID(context.Background(), order.ID)
	require.NoError(t, err)
	require.Equal(t, order.ID, got.ID)
	require.True(t, got.TotalPrice.Equal(order.TotalPrice))
	require.NotNil(t, got.DeliveryDayLabel)
	require.Equal(t, "1 day", *got.DeliveryDayLabel)
}

func TestFindOrderByIDNotFound(t *testing.T) {
	db := openTestDB(t)
	repo, err := NewRepository(db)
	require.NoError(t, err)

	_, err = repo.FindOrderByID(context.Background(), uuid.New())
	coded := pkgerrors.As(err)
	require.NotNil(t, coded)
	require.Equal(t, pkgerrors.CodeNotFound, coded.Code())
}

func TestListOrdersByFranchise(t *testing.T) {
	db := openTestDB(t)
	repo, err := NewRepository(db)
	require.NoError(t, err)
	franchise := seedFranchise(t, db)

	for i := 0; i < 3; i++ {
		order := newOrder(franchise.ID)
		require.NoError(t, repo.CreateOrder(context.Background(), &order))
	}
	other := newOrder(uuid.New())
	require.NoError(t, repo.CreateOrder(context.Background(), &other))

	list, err := repo.ListOrdersByFranchise(context.Background(), franchise.ID, 10)
	require.NoError(t, err)
	require.Len(t, list, 3)

	capped, err := repo.ListOrdersByFranchise(context.Background(), franchise.ID, 2)
	require.NoError(t, err)
	require.Len(t, capped, 2)
}

func TestFindFranchiseByID(t *testing.T) {
	db := openTestDB(t)
	repo, err := NewRepository(db)
	require.NoError(t, err)
	franchise := seedFranchise(t, db)

	got, err := repo.FindFranchiseByID(context.Background(), franchise.ID)
	require.NoError(t, err)
	require.Equal(t, franchise.Slug, got.Slug)

	_, err = repo.FindFranchiseByID(context.Background(), uuid.New())
	coded := pkgerrors.As(err)
	require.NotNil(t, coded)
	require.Equal(t, pkgerrors.CodeNotFound, coded.Code())
}
