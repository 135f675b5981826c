package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"storefront-service/apperrors"
	"storefront-service/models"
	"storefront-service/repository"
)

// CatalogService manages brands, bikes, products and banners.
type CatalogService struct {
	store repository.Store
	now   func() time.Time
}

func NewCatalogService(store repository.Store) *CatalogService {
	return &CatalogService{store: store, now: time.Now}
}

// brands

func (s *CatalogService) ListBrands(ctx context.Context) ([]models.Brand, error) {
	brands, err := s.store.Brands.List(ctx)
	if err != nil {
		return nil, storeErr(err, "Brand")
	}
	return brands, nil
}

func (s *CatalogService) CreateBrand(ctx context.Context, req models.BrandRequest) (*models.Brand, error) {
	b := &models.Brand{CreatedAt: s.now()}
	if err := applyBrand(b, req); err != nil {
		return nil, err
	}
	if err := s.store.Brands.Create(ctx, b); err != nil {
		return nil, storeErr(err, "Brand")
	}
	return b, nil
}

func (s *CatalogService) UpdateBrand(ctx context.Context, id int64, req models.BrandRequest) (*models.Brand, error) {
	b, err := s.store.Brands.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, "Brand")
	}
	if err := applyBrand(b, req); err != nil {
		return nil, err
	}
	if err := s.store.Brands.Update(ctx, b); err != nil {
		return nil, storeErr(err, "Brand")
	}
	return b, nil
}

func (s *CatalogService) DeleteBrand(ctx context.Context, id int64) error {
	return storeErrOrNil(s.store.Brands.Delete(ctx, id), "Brand")
}

func applyBrand(b *models.Brand, req models.BrandRequest) error {
	b.Name = strings.TrimSpace(req.Name)
	b.Slug = slugOr(req.Slug, b.Name)
	if b.Slug == "" {
		return apperrors.InvalidRequest("Brand name must contain letters or digits")
	}
	b.LogoURL = strings.TrimSpace(req.LogoURL)
	return nil
}

// bikes

func (s *CatalogService) ListBikes(ctx context.Context, brandID int64) ([]models.Bike, error) {
	bikes, err := s.store.Bikes.List(ctx, brandID)
	if err != nil {
		return nil, storeErr(err, "Bike")
	}
	return bikes, nil
}

func (s *CatalogService) CreateBike(ctx context.Context, req models.BikeRequest) (*models.Bike, error) {
	b := &models.Bike{CreatedAt: s.now()}
	if err := s.applyBike(ctx, b, req); err != nil {
		return nil, err
	}
	if err := s.store.Bikes.Create(ctx, b); err != nil {
		return nil, storeErr(err, "Bike")
	}
	return b, nil
}

func (s *CatalogService) UpdateBike(ctx context.Context, id int64, req models.BikeRequest) (*models.Bike, error) {
	b, err := s.store.Bikes.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, "Bike")
	}
	if err := s.applyBike(ctx, b, req); err != nil {
		return nil, err
	}
	if err := s.store.Bikes.Update(ctx, b); err != nil {
		return nil, storeErr(err, "Bike")
	}
	return b, nil
}

func (s *CatalogService) DeleteBike(ctx context.Context, id int64) error {
	return storeErrOrNil(s.store.Bikes.Delete(ctx, id), "Bike")
}

func (s *CatalogService) applyBike(ctx context.Context, b *models.Bike, req models.BikeRequest) error {
	if err := s.brandExists(ctx, req.BrandID); err != nil {
		return err
	}
	b.BrandID = req.BrandID
	b.Model = strings.TrimSpace(req.Model)
	b.YearFrom = req.YearFrom
	b.YearTo = req.YearTo
	b.ImageURL = strings.TrimSpace(req.ImageURL)
	return nil
}

func (s *CatalogService) brandExists(ctx context.Context, id int64) error {
	_, err := s.store.Brands.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.InvalidRequest("Brand %d does not exist", id)
	}
	if err != nil {
		return apperrors.Internal("Failed to load brand", err)
	}
	return nil
}

// products

// ListProducts returns products matching f. Public callers set f.ActiveOnly.
func (s *CatalogService) ListProducts(ctx context.Context, f models.ProductFilter) ([]models.Product, error) {
	products, err := s.store.Products.List(ctx, f)
	if err != nil {
		return nil, storeErr(err, "Product")
	}
	return products, nil
}

// GetProduct hides inactive products unless includeInactive is set.
func (s *CatalogService) GetProduct(ctx context.Context, id int64, includeInactive bool) (*models.Product, error) {
	p, err := s.store.Products.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, "Product")
	}
	if !p.IsActive && !includeInactive {
		return nil, apperrors.NotFound("Product not found")
	}
	return p, nil
}

func (s *CatalogService) CreateProduct(ctx context.Context, req models.ProductRequest) (*models.Product, error) {
	now := s.now()
	p := &models.Product{IsActive: true, CreatedAt: now}
	if err := s.applyProduct(ctx, p, req); err != nil {
		return nil, err
	}
	if err := s.store.Products.Create(ctx, p); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.InvalidRequest("A product with this SKU or slug already exists")
		}
		return nil, storeErr(err, "Product")
	}
	return p, nil
}

func (s *CatalogService) UpdateProduct(ctx context.Context, id int64, req models.ProductRequest) (*models.Product, error) {
	p, err := s.store.Products.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, "Product")
	}
	if err := s.applyProduct(ctx, p, req); err != nil {
		return nil, err
	}
	if err := s.store.Products.Update(ctx, p); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.InvalidRequest("A product with this SKU or slug already exists")
		}
		return nil, storeErr(err, "Product")
	}
	return p, nil
}

func (s *CatalogService) DeleteProduct(ctx context.Context, id int64) error {
	return storeErrOrNil(s.store.Products.Delete(ctx, id), "Product")
}

func (s *CatalogService) applyProduct(ctx context.Context, p *models.Product, req models.ProductRequest) error {
	if !req.Price.IsPositive() {
		return apperrors.InvalidRequest("Price must be positive")
	}
	if req.SalePrice != nil && (req.SalePrice.IsNegative() || req.SalePrice.GreaterThan(req.Price)) {
		return apperrors.InvalidRequest("Sale price must be between 0 and the price")
	}
	if req.BrandID != nil {
		if err := s.brandExists(ctx, *req.BrandID); err != nil {
			return err
		}
	}
	if req.BikeID != nil {
		if _, err := s.store.Bikes.GetByID(ctx, *req.BikeID); errors.Is(err, repository.ErrNotFound) {
			return apperrors.InvalidRequest("Bike %d does not exist", *req.BikeID)
		} else if err != nil {
			return apperrors.Internal("Failed to load bike", err)
		}
	}

	p.SKU = strings.ToUpper(strings.TrimSpace(req.SKU))
	p.Name = strings.TrimSpace(req.Name)
	p.Slug = slugOr(req.Slug, p.Name)
	if p.Slug == "" {
		return apperrors.InvalidRequest("Product name must contain letters or digits")
	}
	p.Description = strings.TrimSpace(req.Description)
	p.BrandID = req.BrandID
	p.BikeID = req.BikeID
	p.Category = strings.TrimSpace(req.Category)
	p.Price = req.Price
	p.SalePrice = req.SalePrice
	p.Stock = req.Stock
	p.ImageURL = strings.TrimSpace(req.ImageURL)
	if req.IsActive != nil {
		p.IsActive = *req.IsActive
	}
	p.UpdatedAt = s.now()
	return nil
}

// banners

func (s *CatalogService) ListBanners(ctx context.Context, activeOnly bool) ([]models.Banner, error) {
	banners, err := s.store.Banners.List(ctx, activeOnly)
	if err != nil {
		return nil, storeErr(err, "Banner")
	}
	return banners, nil
}

func (s *CatalogService) CreateBanner(ctx context.Context, req models.BannerRequest) (*models.Banner, error) {
	b := &models.Banner{IsActive: true, CreatedAt: s.now()}
	applyBanner(b, req)
	if err := s.store.Banners.Create(ctx, b); err != nil {
		return nil, storeErr(err, "Banner")
	}
	return b, nil
}

func (s *CatalogService) UpdateBanner(ctx context.Context, id int64, req models.BannerRequest) (*models.Banner, error) {
	b, err := s.store.Banners.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, "Banner")
	}
	applyBanner(b, req)
	if err := s.store.Banners.Update(ctx, b); err != nil {
		return nil, storeErr(err, "Banner")
	}
	return b, nil
}

func (s *CatalogService) DeleteBanner(ctx context.Context, id int64) error {
	return storeErrOrNil(s.store.Banners.Delete(ctx, id), "Banner")
}

func applyBanner(b *models.Banner, req models.BannerRequest) {
	b.Title = strings.TrimSpace(req.Title)
	b.ImageURL = strings.TrimSpace(req.ImageURL)
	b.LinkURL = strings.TrimSpace(req.LinkURL)
	b.Position = req.Position
	if req.IsActive != nil {
		b.IsActive = *req.IsActive
	}
}

func slugOr(slug, name string) string {
	if s := Slugify(slug); s != "" {
		return s
	}
	return Slugify(name)
}

func storeErrOrNil(err error, what string) error {
	if err == nil {
		return nil
	}
	return storeErr(err, what)
}
