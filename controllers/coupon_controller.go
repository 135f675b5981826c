package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront-service/apperrors"
	"storefront-service/middlewares"
	"storefront-service/models"
)

func (h *Handlers) ValidateCoupon(c *gin.Context) {
	var req models.ValidateCouponRequest
	if !bindJSON(c, &req) {
		return
	}
	coupon, err := h.Coupons.Validate(c.Request.Context(), req.Code, req.OrderValue)
	if err != nil {
		if apperrors.KindOf(err) == apperrors.KindInternal {
			middlewares.RecordCouponValidation("error")
		} else {
			middlewares.RecordCouponValidation("rejected")
		}
		respondError(c, err)
		return
	}
	middlewares.RecordCouponValidation("valid")
	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"coupon":   coupon.Payload(),
		"discount": coupon.DiscountFor(req.OrderValue).InexactFloat64(),
	})
}

func (h *Handlers) ListCoupons(c *gin.Context) {
	coupons, err := h.Coupons.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, coupons)
}

func (h *Handlers) GetCoupon(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	coupon, err := h.Coupons.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, coupon)
}

func (h *Handlers) CreateCoupon(c *gin.Context) {
	var req models.CouponRequest
	if !bindJSON(c, &req) {
		return
	}
	coupon, err := h.Coupons.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, coupon)
}

func (h *Handlers) UpdateCoupon(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req models.CouponRequest
	if !bindJSON(c, &req) {
		return
	}
	coupon, err := h.Coupons.Update(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, coupon)
}

func (h *Handlers) DeleteCoupon(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.Coupons.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Coupon deleted"})
}
