package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront-service/apperrors"
	"storefront-service/models"
)

func TestSlugify(t *testing.T) {
	tests := map[string]string{
		"Royal Enfield":        "royal-enfield",
		"  KTM  Duke 390 ":     "ktm-duke-390",
		"Bajaj/Pulsar (2020)!": "bajaj-pulsar-2020",
		"---":                  "",
	}
	for in, want := range tests {
		assert.Equal(t, want, Slugify(in), in)
	}
}

func TestCatalog_BrandsAndBikes(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc := NewCatalogService(f.store)

	brand, err := svc.CreateBrand(ctx, models.BrandRequest{Name: "Royal Enfield"})
	require.NoError(t, err)
	assert.Equal(t, "royal-enfield", brand.Slug)

	_, err = svc.CreateBrand(ctx, models.BrandRequest{Name: "Royal  Enfield"})
	requireKind(t, err, apperrors.KindInvalidRequest)

	_, err = svc.CreateBike(ctx, models.BikeRequest{BrandID: 999, Model: "Classic 350"})
	requireKind(t, err, apperrors.KindInvalidRequest)

	bike, err := svc.CreateBike(ctx, models.BikeRequest{BrandID: brand.ID, Model: " Classic 350 ", YearFrom: 2009})
	require.NoError(t, err)
	assert.Equal(t, "Classic 350", bike.Model)

	bikes, err := svc.ListBikes(ctx, brand.ID)
	require.NoError(t, err)
	assert.Len(t, bikes, 1)

	updated, err := svc.UpdateBrand(ctx, brand.ID, models.BrandRequest{Name: "Royal Enfield", Slug: "RE"})
	require.NoError(t, err)
	assert.Equal(t, "re", updated.Slug)

	require.NoError(t, svc.DeleteBrand(ctx, brand.ID))
	requireKind(t, svc.DeleteBrand(ctx, brand.ID), apperrors.KindNotFound)
}

func TestCatalog_Products(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc := NewCatalogService(f.store)

	req := models.ProductRequest{SKU: "air-01", Name: "Air Filter", Price: dec("450"), SalePrice: decPtr("399"), Stock: 8}
	p, err := svc.CreateProduct(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, "AIR-01", p.SKU)
	assert.Equal(t, "air-filter", p.Slug)
	assert.True(t, p.IsActive)

	_, err = svc.CreateProduct(ctx, req)
	requireKind(t, err, apperrors.KindInvalidRequest)

	bad := req
	bad.SKU = "AIR-02"
	bad.SalePrice = decPtr("500")
	_, err = svc.CreateProduct(ctx, bad)
	requireKind(t, err, apperrors.KindInvalidRequest)

	bad.SalePrice = nil
	bad.Price = dec("0")
	_, err = svc.CreateProduct(ctx, bad)
	requireKind(t, err, apperrors.KindInvalidRequest)

	missing := int64(999)
	bad.Price = dec("10")
	bad.BikeID = &missing
	_, err = svc.CreateProduct(ctx, bad)
	requireKind(t, err, apperrors.KindInvalidRequest)

	_, err = svc.GetProduct(ctx, f.oldKit.ID, false)
	requireKind(t, err, apperrors.KindNotFound)
	got, err := svc.GetProduct(ctx, f.oldKit.ID, true)
	require.NoError(t, err)
	assert.False(t, got.IsActive)

	active, err := svc.ListProducts(ctx, models.ProductFilter{ActiveOnly: true})
	require.NoError(t, err)
	for _, p := range active {
		assert.True(t, p.IsActive, p.Name)
	}
	assert.Len(t, active, 3)

	off := false
	req.IsActive = &off
	req.Stock = 2
	p, err = svc.UpdateProduct(ctx, p.ID, req)
	require.NoError(t, err)
	assert.False(t, p.IsActive)
	assert.Equal(t, 2, p.Stock)

	require.NoError(t, svc.DeleteProduct(ctx, p.ID))
	_, err = svc.UpdateProduct(ctx, p.ID, req)
	requireKind(t, err, apperrors.KindNotFound)
}

func TestCatalog_Banners(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc := NewCatalogService(f.store)

	off := false
	_, err := svc.CreateBanner(ctx, models.BannerRequest{Title: "Monsoon sale", ImageURL: "/img/monsoon.jpg", Position: 1})
	require.NoError(t, err)
	hidden, err := svc.CreateBanner(ctx, models.BannerRequest{Title: "Draft", ImageURL: "/img/draft.jpg", IsActive: &off})
	require.NoError(t, err)

	public, err := svc.ListBanners(ctx, true)
	require.NoError(t, err)
	assert.Len(t, public, 1)
	all, err := svc.ListBanners(ctx, false)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	require.NoError(t, svc.DeleteBanner(ctx, hidden.ID))
	requireKind(t, svc.DeleteBanner(ctx, hidden.ID), apperrors.KindNotFound)
}
