package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type DiscountType string

const (
	DiscountPercent DiscountType = "PERCENT"
	DiscountFlat    DiscountType = "FLAT"
)

var hundred = decimal.NewFromInt(100)

type Coupon struct {
	ID            int64            `json:"id"`
	Code          string           `json:"code"`
	Description   string           `json:"description,omitempty"`
	DiscountType  DiscountType     `json:"discountType"`
	DiscountValue decimal.Decimal  `json:"discountValue"`
	MinOrderValue *decimal.Decimal `json:"minOrderValue,omitempty"`
	MaxDiscount   *decimal.Decimal `json:"maxDiscount,omitempty"`
	UsageLimit    *int             `json:"usageLimit,omitempty"`
	UsageCount    int              `json:"usageCount"`
	IsActive      bool             `json:"isActive"`
	ValidFrom     time.Time        `json:"validFrom"`
	ValidUntil    time.Time        `json:"validUntil"`
	CreatedAt     time.Time        `json:"createdAt"`
	UpdatedAt     time.Time        `json:"updatedAt"`
}

func NormalizeCouponCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// DiscountFor returns the amount taken off subtotal, never more than subtotal.
func (c *Coupon) DiscountFor(subtotal decimal.Decimal) decimal.Decimal {
	var d decimal.Decimal
	switch c.DiscountType {
	case DiscountPercent:
		d = subtotal.Mul(c.DiscountValue).Div(hundred).Round(2)
		if c.MaxDiscount != nil && c.MaxDiscount.IsPositive() && d.GreaterThan(*c.MaxDiscount) {
			d = *c.MaxDiscount
		}
	default:
		d = c.DiscountValue
	}
	if d.GreaterThan(subtotal) {
		d = subtotal
	}
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// CouponPayload is the client-facing view of a redeemable coupon.
type CouponPayload struct {
	ID            int64        `json:"id"`
	Code          string       `json:"code"`
	Description   string       `json:"description,omitempty"`
	DiscountType  DiscountType `json:"discountType"`
	DiscountValue float64      `json:"discountValue"`
	MinOrderValue *float64     `json:"minOrderValue"`
	MaxDiscount   *float64     `json:"maxDiscount"`
	UsageLimit    *int         `json:"usageLimit"`
	UsageCount    int          `json:"usageCount"`
	ValidFrom     time.Time    `json:"validFrom"`
	ValidUntil    time.Time    `json:"validUntil"`
}

func (c *Coupon) Payload() CouponPayload {
	return CouponPayload{
		ID:            c.ID,
		Code:          c.Code,
		Description:   c.Description,
		DiscountType:  c.DiscountType,
		DiscountValue: c.DiscountValue.InexactFloat64(),
		MinOrderValue: floatPtr(c.MinOrderValue),
		MaxDiscount:   floatPtr(c.MaxDiscount),
		UsageLimit:    c.UsageLimit,
		UsageCount:    c.UsageCount,
		ValidFrom:     c.ValidFrom,
		ValidUntil:    c.ValidUntil,
	}
}

func floatPtr(d *decimal.Decimal) *float64 {
	if d == nil {
		return nil
	}
	f := d.InexactFloat64()
	return &f
}

type ValidateCouponRequest struct {
	Code       string          `json:"code"`
	OrderValue decimal.Decimal `json:"orderValue"`
}

type CouponRequest struct {
	Code          string           `json:"code" binding:"required"`
	Description   string           `json:"description"`
	DiscountType  DiscountType     `json:"discountType" binding:"required,oneof=PERCENT FLAT"`
	DiscountValue decimal.Decimal  `json:"discountValue"`
	MinOrderValue *decimal.Decimal `json:"minOrderValue"`
	MaxDiscount   *decimal.Decimal `json:"maxDiscount"`
	UsageLimit    *int             `json:"usageLimit" binding:"omitempty,gte=0"`
	IsActive      *bool            `json:"isActive"`
	ValidFrom     Date             `json:"validFrom"`
	ValidUntil    Date             `json:"validUntil"`
}
