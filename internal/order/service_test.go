package order

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/avetisn/plumb_erp/internal/models"
)

func initTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect to in-memory db: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Product{},
		&models.PromoCode{},
		&models.Order{},
		&models.OrderItem{},
		&models.PointEntry{},
	); err != nil {
		t.Fatalf("failed to migrate tables: %v", err)
	}
	return db
}

func seedProduct(t *testing.T, db *gorm.DB, name, price string, stock int) models.Product {
	t.Helper()
	p := models.Product{
		Name:          name,
		Price:         decimal.RequireFromString(price),
		StockQuantity: stock,
	}
	require.NoError(t, db.Create(&p).Error)
	return p
}

func intp(n int) *int { return &n }

func stockOf(t *testing.T, db *gorm.DB, id uint) int {
	t.Helper()
	var p models.Product
	require.NoError(t, db.First(&p, id).Error)
	return p.StockQuantity
}

func countRows(t *testing.T, db *gorm.DB, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(model).Count(&n).Error)
	return n
}

func TestPlaceOrderRoundTrip(t *testing.T) {
	db := initTestDB(t)
	p := seedProduct(t, db, "ball valve", "100.00", 10)

	svc := &Service{DB: db}
	placed, err := svc.PlaceOrder(context.Background(), 1, []ItemRequest{{ProductID: p.ID, Quantity: 2}}, "")
	require.NoError(t, err)

	require.True(t, placed.Pricing.Subtotal.Equal(decimal.RequireFromString("200.00")))
	require.True(t, placed.Pricing.DiscountAmount.IsZero())
	require.True(t, placed.Pricing.Total.Equal(decimal.RequireFromString("200.00")))
	require.Nil(t, placed.Promo)

	require.Equal(t, models.OrderStatusPending, placed.Order.Status)
	require.Equal(t, uint(1), placed.Order.UserID)
	require.Len(t, placed.Order.Items, 1)
	require.Equal(t, 2, placed.Order.Items[0].Quantity)
	require.True(t, placed.Order.Items[0].UnitPrice.Equal(decimal.RequireFromString("100.00")))

	require.Equal(t, 8, stockOf(t, db, p.ID))

	var entry models.PointEntry
	require.NoError(t, db.Where("order_id = ?", placed.Order.ID).First(&entry).Error)
	require.Equal(t, int64(200), entry.Points)
}

func TestPlaceOrderValidation(t *testing.T) {
	db := initTestDB(t)
	svc := &Service{DB: db}

	_, err := svc.PlaceOrder(context.Background(), 1, nil, "")
	require.ErrorIs(t, err, ErrValidation)

	_, err = svc.PlaceOrder(context.Background(), 1, []ItemRequest{{ProductID: 1, Quantity: 0}}, "")
	require.ErrorIs(t, err, ErrValidation)

	_, err = svc.PlaceOrder(context.Background(), 1, []ItemRequest{{ProductID: 0, Quantity: 1}}, "")
	require.ErrorIs(t, err, ErrValidation)
}

func TestPlaceOrderUnknownProduct(t *testing.T) {
	db := initTestDB(t)
	p := seedProduct(t, db, "elbow joint", "10.00", 5)

	svc := &Service{DB: db}
	_, err := svc.PlaceOrder(context.Background(), 1, []ItemRequest{
		{ProductID: p.ID, Quantity: 1},
		{ProductID: 999, Quantity: 1},
	}, "")
	require.ErrorIs(t, err, ErrNotFound)
	require.ErrorContains(t, err, "999")

	require.Equal(t, 5, stockOf(t, db, p.ID))
	require.EqualValues(t, 0, countRows(t, db, &models.Order{}))
	require.EqualValues(t, 0, countRows(t, db, &models.OrderItem{}))
}

func TestPlaceOrderInsufficientStockIsAtomic(t *testing.T) {
	db := initTestDB(t)
	a := seedProduct(t, db, "copper pipe", "25.00", 100)
	b := seedProduct(t, db, "pressure gauge", "80.00", 1)

	svc := &Service{DB: db}
	_, err := svc.PlaceOrder(context.Background(), 1, []ItemRequest{
		{ProductID: a.ID, Quantity: 10},
		{ProductID: b.ID, Quantity: 2},
	}, "")
	require.ErrorIs(t, err, ErrInsufficientStock)
	require.ErrorContains(t, err, "pressure gauge")

	require.Equal(t, 100, stockOf(t, db, a.ID))
	require.Equal(t, 1, stockOf(t, db, b.ID))
	require.EqualValues(t, 0, countRows(t, db, &models.Order{}))
	require.EqualValues(t, 0, countRows(t, db, &models.OrderItem{}))
}

func TestPlaceOrderDuplicateLinesCountTogether(t *testing.T) {
	db := initTestDB(t)
	p := seedProduct(t, db, "pump seal", "5.00", 3)

	svc := &Service{DB: db}
	_, err := svc.PlaceOrder(context.Background(), 1, []ItemRequest{
		{ProductID: p.ID, Quantity: 2},
		{ProductID: p.ID, Quantity: 2},
	}, "")
	require.ErrorIs(t, err, ErrInsufficientStock)
	require.Equal(t, 3, stockOf(t, db, p.ID))
}

func TestPlaceOrderWithPromo(t *testing.T) {
	db := initTestDB(t)
	p := seedProduct(t, db, "water heater", "100.00", 10)
	code := models.PromoCode{
		Code:          "TEN",
		DiscountType:  models.DiscountTypePercentage,
		DiscountValue: decimal.RequireFromString("10"),
		ValidFrom:     time.Now().Add(-time.Hour),
		ValidUntil:    time.Now().Add(time.Hour),
		Status:        models.PromoStatusActive,
	}
	require.NoError(t, db.Create(&code).Error)

	svc := &Service{DB: db}
	placed, err := svc.PlaceOrder(context.Background(), 1, []ItemRequest{{ProductID: p.ID, Quantity: 2}}, "TEN")
	require.NoError(t, err)

	require.NotNil(t, placed.Promo)
	require.True(t, placed.Promo.Applied)
	require.True(t, placed.Pricing.DiscountAmount.Equal(decimal.RequireFromString("20.00")))
	require.True(t, placed.Pricing.Total.Equal(decimal.RequireFromString("180.00")))
	require.NotNil(t, placed.Order.PromoCodeID)
	require.Equal(t, code.ID, *placed.Order.PromoCodeID)

	var stored models.PromoCode
	require.NoError(t, db.First(&stored, code.ID).Error)
	require.Equal(t, 1, stored.UsedCount)
}

func TestPlaceOrderInapplicablePromoProceeds(t *testing.T) {
	db := initTestDB(t)
	p := seedProduct(t, db, "gate valve", "50.00", 10)
	code := models.PromoCode{
		Code:          "EXPIRED",
		DiscountType:  models.DiscountTypeFlat,
		DiscountValue: decimal.RequireFromString("5"),
		ValidFrom:     time.Now().Add(-48 * time.Hour),
		ValidUntil:    time.Now().Add(-24 * time.Hour),
		Status:        models.PromoStatusActive,
	}
	require.NoError(t, db.Create(&code).Error)

	svc := &Service{DB: db}
	placed, err := svc.PlaceOrder(context.Background(), 1, []ItemRequest{{ProductID: p.ID, Quantity: 1}}, "EXPIRED")
	require.NoError(t, err)

	require.NotNil(t, placed.Promo)
	require.False(t, placed.Promo.Applied)
	require.NotEmpty(t, placed.Promo.Reason)
	require.True(t, placed.Pricing.DiscountAmount.IsZero())
	require.True(t, placed.Pricing.Total.Equal(decimal.RequireFromString("50.00")))
	require.Nil(t, placed.Order.PromoCodeID)

	var stored models.PromoCode
	require.NoError(t, db.First(&stored, code.ID).Error)
	require.Equal(t, 0, stored.UsedCount)
}

func TestPlaceOrderPromoUsageCap(t *testing.T) {
	db := initTestDB(t)
	p := seedProduct(t, db, "sink trap", "100.00", 100)
	code := models.PromoCode{
		Code:          "ONCE",
		DiscountType:  models.DiscountTypeFlat,
		DiscountValue: decimal.RequireFromString("10"),
		ValidFrom:     time.Now().Add(-time.Hour),
		ValidUntil:    time.Now().Add(time.Hour),
		UsageLimit:    intp(1),
		Status:        models.PromoStatusActive,
	}
	require.NoError(t, db.Create(&code).Error)

	svc := &Service{DB: db}

	first, err := svc.PlaceOrder(context.Background(), 1, []ItemRequest{{ProductID: p.ID, Quantity: 1}}, "ONCE")
	require.NoError(t, err)
	require.True(t, first.Promo.Applied)

	second, err := svc.PlaceOrder(context.Background(), 2, []ItemRequest{{ProductID: p.ID, Quantity: 1}}, "ONCE")
	require.NoError(t, err)
	require.False(t, second.Promo.Applied)
	require.True(t, second.Pricing.DiscountAmount.IsZero())

	var stored models.PromoCode
	require.NoError(t, db.First(&stored, code.ID).Error)
	require.Equal(t, 1, stored.UsedCount)
}

func TestPlaceOrderFlatPromoClampsTotalAtZero(t *testing.T) {
	db := initTestDB(t)
	p := seedProduct(t, db, "washer pack", "10.00", 10)
	code := models.PromoCode{
		Code:          "HUGE",
		DiscountType:  models.DiscountTypeFlat,
		DiscountValue: decimal.RequireFromString("50"),
		ValidFrom:     time.Now().Add(-time.Hour),
		ValidUntil:    time.Now().Add(time.Hour),
		Status:        models.PromoStatusActive,
	}
	require.NoError(t, db.Create(&code).Error)

	svc := &Service{DB: db}
	placed, err := svc.PlaceOrder(context.Background(), 1, []ItemRequest{{ProductID: p.ID, Quantity: 1}}, "HUGE")
	require.NoError(t, err)
	require.True(t, placed.Pricing.Total.IsZero())
}

func TestPriceSnapshotSurvivesCatalogChange(t *testing.T) {
	db := initTestDB(t)
	p := seedProduct(t, db, "boiler", "300.00", 5)

	svc := &Service{DB: db}
	placed, err := svc.PlaceOrder(context.Background(), 1, []ItemRequest{{ProductID: p.ID, Quantity: 1}}, "")
	require.NoError(t, err)

	require.NoError(t, db.Model(&models.Product{}).Where("id = ?", p.ID).
		Update("price", decimal.RequireFromString("999.00")).Error)

	var item models.OrderItem
	require.NoError(t, db.Where("order_id = ?", placed.Order.ID).First(&item).Error)
	require.True(t, item.UnitPrice.Equal(decimal.RequireFromString("300.00")))
}

func TestDecrementStockGuard(t *testing.T) {
	db := initTestDB(t)
	p := seedProduct(t, db, "last unit", "10.00", 1)

	repo := &GormRepo{DB: db}
	require.NoError(t, repo.DecrementStock(context.Background(), p.ID, 1))
	require.ErrorIs(t, repo.DecrementStock(context.Background(), p.ID, 1), ErrConflict)
	require.Equal(t, 0, stockOf(t, db, p.ID))
}

func TestConsumePromoUsageGuard(t *testing.T) {
	db := initTestDB(t)
	code := models.PromoCode{
		Code:          "GUARD",
		DiscountType:  models.DiscountTypeFlat,
		DiscountValue: decimal.RequireFromString("1"),
		ValidFrom:     time.Now().Add(-time.Hour),
		ValidUntil:    time.Now().Add(time.Hour),
		UsageLimit:    intp(1),
		Status:        models.PromoStatusActive,
	}
	require.NoError(t, db.Create(&code).Error)

	repo := &GormRepo{DB: db}
	require.NoError(t, repo.ConsumePromoUsage(context.Background(), code.ID))
	require.ErrorIs(t, repo.ConsumePromoUsage(context.Background(), code.ID), ErrConflict)

	var stored models.PromoCode
	require.NoError(t, db.First(&stored, code.ID).Error)
	require.Equal(t, 1, stored.UsedCount)
}

func TestUpdateStatusCompletes(t *testing.T) {
	db := initTestDB(t)
	p := seedProduct(t, db, "boiler", "300.00", 5)

	svc := &Service{DB: db}
	placed, err := svc.PlaceOrder(context.Background(), 1, []ItemRequest{{ProductID: p.ID, Quantity: 2}}, "")
	require.NoError(t, err)

	updated, err := svc.UpdateStatus(context.Background(), placed.Order.ID, models.OrderStatusCompleted)
	require.NoError(t, err)
	require.Equal(t, models.OrderStatusCompleted, updated.Status)

	var stored models.Order
	require.NoError(t, db.First(&stored, placed.Order.ID).Error)
	require.Equal(t, models.OrderStatusCompleted, stored.Status)
	require.Equal(t, 3, stockOf(t, db, p.ID))
}

func TestUpdateStatusCancelRestoresStock(t *testing.T) {
	db := initTestDB(t)
	p := seedProduct(t, db, "boiler", "300.00", 5)

	svc := &Service{DB: db}
	placed, err := svc.PlaceOrder(context.Background(), 1, []ItemRequest{{ProductID: p.ID, Quantity: 2}}, "")
	require.NoError(t, err)
	require.Equal(t, 3, stockOf(t, db, p.ID))

	_, err = svc.UpdateStatus(context.Background(), placed.Order.ID, models.OrderStatusCancelled)
	require.NoError(t, err)
	require.Equal(t, 5, stockOf(t, db, p.ID))
}

func TestUpdateStatusGuards(t *testing.T) {
	db := initTestDB(t)
	p := seedProduct(t, db, "boiler", "300.00", 5)

	svc := &Service{DB: db}
	placed, err := svc.PlaceOrder(context.Background(), 1, []ItemRequest{{ProductID: p.ID, Quantity: 1}}, "")
	require.NoError(t, err)

	_, err = svc.UpdateStatus(context.Background(), placed.Order.ID, "Shipped")
	require.ErrorIs(t, err, ErrValidation)

	_, err = svc.UpdateStatus(context.Background(), 999, models.OrderStatusCompleted)
	require.ErrorIs(t, err, ErrNotFound)

	_, err = svc.UpdateStatus(context.Background(), placed.Order.ID, models.OrderStatusCompleted)
	require.NoError(t, err)

	_, err = svc.UpdateStatus(context.Background(), placed.Order.ID, models.OrderStatusCancelled)
	require.ErrorIs(t, err, ErrConflict)
	require.Equal(t, 4, stockOf(t, db, p.ID))
}

func TestMyOrdersNewestFirst(t *testing.T) {
	db := initTestDB(t)
	p := seedProduct(t, db, "hose clamp", "1.00", 100)

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc := &Service{DB: db}
	for i := 0; i < 3; i++ {
		ts := base.Add(time.Duration(i) * time.Hour)
		svc.Now = func() time.Time { return ts }
		_, err := svc.PlaceOrder(context.Background(), 7, []ItemRequest{{ProductID: p.ID, Quantity: 1}}, "")
		require.NoError(t, err)
	}

	total, orders, err := svc.MyOrders(context.Background(), 7, 0, 2)
	require.NoError(t, err)
	require.EqualValues(t, 3, total)
	require.Len(t, orders, 2)
	require.True(t, orders[0].OrderDate.After(orders[1].OrderDate))
	require.Len(t, orders[0].Items, 1)
}
