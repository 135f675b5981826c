package repository

import (
	"context"
	"errors"

	"storefront-service/models"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrCouponExhausted   = errors.New("coupon usage limit reached")
	ErrDuplicate         = errors.New("duplicate entry")
)

// TxManager runs fn inside one transaction. Repositories called with the ctx
// passed to fn take part in that transaction.
type TxManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type UserRepository interface {
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
	UpdateRole(ctx context.Context, id int64, role models.Role) error
}

type AddressRepository interface {
	ListByUser(ctx context.Context, userID int64) ([]models.Address, error)
	GetByID(ctx context.Context, id int64) (*models.Address, error)
	Create(ctx context.Context, a *models.Address) error
	Update(ctx context.Context, a *models.Address) error
	Delete(ctx context.Context, id int64) error
	// ClearDefault unsets the default flag on every address of userID.
	ClearDefault(ctx context.Context, userID int64) error
}

type ProductRepository interface {
	Create(ctx context.Context, p *models.Product) error
	GetByID(ctx context.Context, id int64) (*models.Product, error)
	// GetForUpdate reads the product and, inside a transaction, locks its row.
	GetForUpdate(ctx context.Context, id int64) (*models.Product, error)
	Update(ctx context.Context, p *models.Product) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, f models.ProductFilter) ([]models.Product, error)
	// AdjustStock adds delta to stock. A result below zero fails with ErrInsufficientStock.
	AdjustStock(ctx context.Context, id int64, delta int) error
}

type BrandRepository interface {
	Create(ctx context.Context, b *models.Brand) error
	GetByID(ctx context.Context, id int64) (*models.Brand, error)
	Update(ctx context.Context, b *models.Brand) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context) ([]models.Brand, error)
}

type BikeRepository interface {
	Create(ctx context.Context, b *models.Bike) error
	GetByID(ctx context.Context, id int64) (*models.Bike, error)
	Update(ctx context.Context, b *models.Bike) error
	Delete(ctx context.Context, id int64) error
	// List returns all bikes, or only those of brandID when it is non-zero.
	List(ctx context.Context, brandID int64) ([]models.Bike, error)
}

type BannerRepository interface {
	Create(ctx context.Context, b *models.Banner) error
	GetByID(ctx context.Context, id int64) (*models.Banner, error)
	Update(ctx context.Context, b *models.Banner) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, activeOnly bool) ([]models.Banner, error)
}

type CouponRepository interface {
	Create(ctx context.Context, c *models.Coupon) error
	GetByID(ctx context.Context, id int64) (*models.Coupon, error)
	// GetByCode expects an already upper-cased code.
	GetByCode(ctx context.Context, code string) (*models.Coupon, error)
	Update(ctx context.Context, c *models.Coupon) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context) ([]models.Coupon, error)
	// IncrementUsage bumps usage_count unless the usage limit is already reached,
	// in which case it returns ErrCouponExhausted.
	IncrementUsage(ctx context.Context, id int64) error
}

type OrderRepository interface {
	// Create inserts the order and its items. A taken order number yields ErrDuplicate.
	Create(ctx context.Context, o *models.Order) error
	GetByID(ctx context.Context, id int64) (*models.Order, error)
	ListByUser(ctx context.Context, userID int64) ([]models.Order, error)
	List(ctx context.Context) ([]models.Order, error)
	UpdateStatus(ctx context.Context, id int64, status models.OrderStatus, payment models.PaymentStatus) error
}

// Store groups the repositories of one backend.
type Store struct {
	Tx        TxManager
	Users     UserRepository
	Addresses AddressRepository
	Products  ProductRepository
	Brands    BrandRepository
	Bikes     BikeRepository
	Banners   BannerRepository
	Coupons   CouponRepository
	Orders    OrderRepository
}
