package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Brand struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	LogoURL   string    `json:"logoUrl,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

type BrandRequest struct {
	Name    string `json:"name" binding:"required"`
	Slug    string `json:"slug"`
	LogoURL string `json:"logoUrl"`
}

type Bike struct {
	ID        int64     `json:"id"`
	BrandID   int64     `json:"brandId"`
	Model     string    `json:"model"`
	YearFrom  int       `json:"yearFrom,omitempty"`
	YearTo    int       `json:"yearTo,omitempty"`
	ImageURL  string    `json:"imageUrl,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

type BikeRequest struct {
	BrandID  int64  `json:"brandId" binding:"required,gt=0"`
	Model    string `json:"model" binding:"required"`
	YearFrom int    `json:"yearFrom" binding:"omitempty,gte=1900"`
	YearTo   int    `json:"yearTo" binding:"omitempty,gtefield=YearFrom"`
	ImageURL string `json:"imageUrl"`
}

type Product struct {
	ID          int64            `json:"id"`
	SKU         string           `json:"sku"`
	Name        string           `json:"name"`
	Slug        string           `json:"slug"`
	Description string           `json:"description,omitempty"`
	BrandID     *int64           `json:"brandId,omitempty"`
	BikeID      *int64           `json:"bikeId,omitempty"`
	Category    string           `json:"category,omitempty"`
	Price       decimal.Decimal  `json:"price"`
	SalePrice   *decimal.Decimal `json:"salePrice,omitempty"`
	Stock       int              `json:"stock"`
	ImageURL    string           `json:"imageUrl,omitempty"`
	IsActive    bool             `json:"isActive"`
	CreatedAt   time.Time        `json:"createdAt"`
	UpdatedAt   time.Time        `json:"updatedAt"`
}

// EffectivePrice is the sale price when one is set, otherwise the list price.
func (p Product) EffectivePrice() decimal.Decimal {
	if p.SalePrice != nil && p.SalePrice.IsPositive() {
		return *p.SalePrice
	}
	return p.Price
}

type ProductRequest struct {
	SKU         string           `json:"sku" binding:"required"`
	Name        string           `json:"name" binding:"required"`
	Slug        string           `json:"slug"`
	Description string           `json:"description"`
	BrandID     *int64           `json:"brandId"`
	BikeID      *int64           `json:"bikeId"`
	Category    string           `json:"category"`
	Price       decimal.Decimal  `json:"price"`
	SalePrice   *decimal.Decimal `json:"salePrice"`
	Stock       int              `json:"stock" binding:"gte=0"`
	ImageURL    string           `json:"imageUrl"`
	IsActive    *bool            `json:"isActive"`
}

type ProductFilter struct {
	Query      string
	BrandID    int64
	BikeID     int64
	Category   string
	ActiveOnly bool
}

type Banner struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	ImageURL  string    `json:"imageUrl"`
	LinkURL   string    `json:"linkUrl,omitempty"`
	Position  int       `json:"position"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
}

type BannerRequest struct {
	Title    string `json:"title" binding:"required"`
	ImageURL string `json:"imageUrl" binding:"required"`
	LinkURL  string `json:"linkUrl"`
	Position int    `json:"position" binding:"gte=0"`
	IsActive *bool  `json:"isActive"`
}
