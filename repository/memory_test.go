package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront-service/models"
)

func TestMemoryProducts_CRUD(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore().Store()

	p := models.Product{SKU: "BRK-001", Name: "Brake Pad", Price: decimal.NewFromInt(450), Stock: 5, IsActive: true}
	require.NoError(t, store.Products.Create(ctx, &p))
	require.NotZero(t, p.ID)

	got, err := store.Products.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Brake Pad", got.Name)

	dup := models.Product{SKU: "brk-001", Name: "Copy"}
	assert.ErrorIs(t, store.Products.Create(ctx, &dup), ErrDuplicate)

	p.Price = decimal.NewFromInt(500)
	require.NoError(t, store.Products.Update(ctx, &p))

	require.NoError(t, store.Products.Delete(ctx, p.ID))
	_, err = store.Products.GetByID(ctx, p.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryProducts_ListFilters(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore().Store()
	brand := int64(7)
	add := func(sku, name, category string, active bool, brandID *int64) {
		p := models.Product{SKU: sku, Name: name, Category: category, IsActive: active, BrandID: brandID}
		require.NoError(t, store.Products.Create(ctx, &p))
	}
	add("S1", "Chain Sprocket Kit", "drivetrain", true, &brand)
	add("S2", "Air Filter", "engine", true, nil)
	add("S3", "Chain Lube", "maintenance", false, nil)

	list, err := store.Products.List(ctx, models.ProductFilter{Query: "chain"})
	require.NoError(t, err)
	assert.Len(t, list, 2)

	list, _ = store.Products.List(ctx, models.ProductFilter{Query: "chain", ActiveOnly: true})
	assert.Len(t, list, 1)

	list, _ = store.Products.List(ctx, models.ProductFilter{BrandID: brand})
	require.Len(t, list, 1)
	assert.Equal(t, "S1", list[0].SKU)

	list, _ = store.Products.List(ctx, models.ProductFilter{Category: "engine"})
	require.Len(t, list, 1)
	assert.Equal(t, "S2", list[0].SKU)
}

func TestMemoryProducts_AdjustStock(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore().Store()
	p := models.Product{SKU: "S1", Name: "Clutch Cable", Stock: 2}
	require.NoError(t, store.Products.Create(ctx, &p))

	require.NoError(t, store.Products.AdjustStock(ctx, p.ID, -2))
	assert.ErrorIs(t, store.Products.AdjustStock(ctx, p.ID, -1), ErrInsufficientStock)
	require.NoError(t, store.Products.AdjustStock(ctx, p.ID, 3))
	got, _ := store.Products.GetByID(ctx, p.ID)
	assert.Equal(t, 3, got.Stock)

	assert.ErrorIs(t, store.Products.AdjustStock(ctx, 999, 1), ErrNotFound)
}

func TestMemoryTx_RollsBackOnError(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore().Store()
	p := models.Product{SKU: "S1", Name: "Spark Plug", Stock: 5}
	require.NoError(t, store.Products.Create(ctx, &p))

	boom := errors.New("boom")
	err := store.Tx.WithTransaction(ctx, func(ctx context.Context) error {
		if err := store.Products.AdjustStock(ctx, p.ID, -3); err != nil {
			return err
		}
		o := models.Order{OrderNumber: "ORD-1", Items: []models.OrderItem{{ProductID: p.ID, Quantity: 3}}}
		if err := store.Orders.Create(ctx, &o); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	got, _ := store.Products.GetByID(ctx, p.ID)
	assert.Equal(t, 5, got.Stock)
	orders, _ := store.Orders.List(ctx)
	assert.Empty(t, orders)
}

func TestMemoryTx_Commits(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore().Store()
	p := models.Product{SKU: "S1", Name: "Spark Plug", Stock: 5}
	require.NoError(t, store.Products.Create(ctx, &p))

	err := store.Tx.WithTransaction(ctx, func(ctx context.Context) error {
		if err := store.Products.AdjustStock(ctx, p.ID, -3); err != nil {
			return err
		}
		o := models.Order{OrderNumber: "ORD-1", UserID: 1, Items: []models.OrderItem{{ProductID: p.ID, Quantity: 3}}}
		return store.Orders.Create(ctx, &o)
	})
	require.NoError(t, err)

	got, _ := store.Products.GetByID(ctx, p.ID)
	assert.Equal(t, 2, got.Stock)
	orders, _ := store.Orders.ListByUser(ctx, 1)
	require.Len(t, orders, 1)
	require.Len(t, orders[0].Items, 1)
	assert.Equal(t, orders[0].ID, orders[0].Items[0].OrderID)
}

func TestMemoryOrders_DuplicateNumber(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore().Store()
	require.NoError(t, store.Orders.Create(ctx, &models.Order{OrderNumber: "ORD-1"}))
	assert.ErrorIs(t, store.Orders.Create(ctx, &models.Order{OrderNumber: "ORD-1"}), ErrDuplicate)
}

func TestMemoryCoupons_IncrementUsageRespectsLimit(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore().Store()
	limit := 1
	c := models.Coupon{Code: "SAVE10", UsageLimit: &limit, ValidFrom: time.Now(), ValidUntil: time.Now()}
	require.NoError(t, store.Coupons.Create(ctx, &c))

	require.NoError(t, store.Coupons.IncrementUsage(ctx, c.ID))
	assert.ErrorIs(t, store.Coupons.IncrementUsage(ctx, c.ID), ErrCouponExhausted)

	got, err := store.Coupons.GetByCode(ctx, "SAVE10")
	require.NoError(t, err)
	assert.Equal(t, 1, got.UsageCount)
}

func TestMemoryAddresses_ClearDefault(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore().Store()
	a1 := models.Address{UserID: 1, IsDefault: true}
	a2 := models.Address{UserID: 2, IsDefault: true}
	require.NoError(t, store.Addresses.Create(ctx, &a1))
	require.NoError(t, store.Addresses.Create(ctx, &a2))

	require.NoError(t, store.Addresses.ClearDefault(ctx, 1))

	got1, _ := store.Addresses.GetByID(ctx, a1.ID)
	got2, _ := store.Addresses.GetByID(ctx, a2.ID)
	assert.False(t, got1.IsDefault)
	assert.True(t, got2.IsDefault)
}
