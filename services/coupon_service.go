package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"storefront-service/apperrors"
	"storefront-service/models"
	"storefront-service/repository"
)

type CouponService struct {
	coupons repository.CouponRepository
	now     func() time.Time
}

func NewCouponService(coupons repository.CouponRepository) *CouponService {
	return &CouponService{coupons: coupons, now: time.Now}
}

// dateOnly drops the time of day, keeping the local calendar date.
func dateOnly(t time.Time) time.Time {
	y, m, d := t.In(time.Local).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.Local)
}

// Validate reports whether code can be redeemed against orderValue today.
// It never changes the coupon's usage count.
func (s *CouponService) Validate(ctx context.Context, code string, orderValue decimal.Decimal) (*models.Coupon, error) {
	code = models.NormalizeCouponCode(code)
	if code == "" {
		return nil, apperrors.InvalidRequest("Coupon code is required")
	}

	coupon, err := s.coupons.GetByCode(ctx, code)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NotFound("Invalid coupon code")
	}
	if err != nil {
		return nil, apperrors.Internal("Failed to validate coupon", err)
	}

	if !coupon.IsActive {
		return nil, apperrors.InvalidRequest("This coupon is no longer active")
	}

	today := dateOnly(s.now())
	if from := dateOnly(coupon.ValidFrom); today.Before(from) {
		return nil, apperrors.InvalidRequest("This coupon is valid from %s", from.Format(models.DateLayout))
	}
	if until := dateOnly(coupon.ValidUntil); today.After(until) {
		return nil, apperrors.InvalidRequest("This coupon expired on %s", until.Format(models.DateLayout))
	}

	if coupon.UsageLimit != nil && coupon.UsageCount >= *coupon.UsageLimit {
		return nil, apperrors.InvalidRequest("This coupon has reached its usage limit")
	}

	if minValue := coupon.MinOrderValue; minValue != nil && minValue.IsPositive() && orderValue.LessThan(*minValue) {
		return nil, apperrors.InvalidRequest("Minimum order value of Rs. %s required", minValue.StringFixed(2))
	}

	return coupon, nil
}

func (s *CouponService) List(ctx context.Context) ([]models.Coupon, error) {
	coupons, err := s.coupons.List(ctx)
	if err != nil {
		return nil, storeErr(err, "Coupon")
	}
	return coupons, nil
}

func (s *CouponService) Get(ctx context.Context, id int64) (*models.Coupon, error) {
	c, err := s.coupons.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, "Coupon")
	}
	return c, nil
}

func (s *CouponService) Create(ctx context.Context, req models.CouponRequest) (*models.Coupon, error) {
	c := &models.Coupon{IsActive: true, CreatedAt: s.now()}
	if err := s.apply(c, req); err != nil {
		return nil, err
	}
	if err := s.coupons.Create(ctx, c); err != nil {
		return nil, storeErr(err, "Coupon")
	}
	return c, nil
}

func (s *CouponService) Update(ctx context.Context, id int64, req models.CouponRequest) (*models.Coupon, error) {
	c, err := s.coupons.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, "Coupon")
	}
	if err := s.apply(c, req); err != nil {
		return nil, err
	}
	if err := s.coupons.Update(ctx, c); err != nil {
		return nil, storeErr(err, "Coupon")
	}
	return c, nil
}

func (s *CouponService) Delete(ctx context.Context, id int64) error {
	if err := s.coupons.Delete(ctx, id); err != nil {
		return storeErr(err, "Coupon")
	}
	return nil
}

func (s *CouponService) apply(c *models.Coupon, req models.CouponRequest) error {
	code := models.NormalizeCouponCode(req.Code)
	if code == "" || strings.ContainsAny(code, " \t") {
		return apperrors.InvalidRequest("Coupon code must be a single word")
	}
	if !req.DiscountValue.IsPositive() {
		return apperrors.InvalidRequest("Discount value must be positive")
	}
	if req.DiscountType == models.DiscountPercent && req.DiscountValue.GreaterThan(decimal.NewFromInt(100)) {
		return apperrors.InvalidRequest("Percentage discount cannot exceed 100")
	}
	if req.ValidFrom.IsZero() || req.ValidUntil.IsZero() {
		return apperrors.InvalidRequest("validFrom and validUntil are required")
	}
	if req.ValidUntil.Before(req.ValidFrom.Time) {
		return apperrors.InvalidRequest("validUntil cannot be before validFrom")
	}

	c.Code = code
	c.Description = strings.TrimSpace(req.Description)
	c.DiscountType = req.DiscountType
	c.DiscountValue = req.DiscountValue
	c.MinOrderValue = req.MinOrderValue
	c.MaxDiscount = req.MaxDiscount
	// A zero limit means unlimited.
	c.UsageLimit = req.UsageLimit
	if c.UsageLimit != nil && *c.UsageLimit == 0 {
		c.UsageLimit = nil
	}
	if req.IsActive != nil {
		c.IsActive = *req.IsActive
	}
	c.ValidFrom = req.ValidFrom.Time
	c.ValidUntil = req.ValidUntil.Time
	c.UpdatedAt = s.now()
	return nil
}
