package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront-service/middlewares"
	"storefront-service/models"
)

func (h *Handlers) CreateOrder(c *gin.Context) {
	var req models.CreateOrderRequest
	if !bindJSON(c, &req) {
		middlewares.RecordOrderOperation("create", false)
		return
	}
	res, err := h.Orders.CreateOrder(c.Request.Context(), middlewares.UserEmail(c), req)
	middlewares.RecordOrderOperation("create", err == nil)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handlers) GetUserOrders(c *gin.Context) {
	orders, err := h.Orders.ListUserOrders(c.Request.Context(), middlewares.UserEmail(c))
	middlewares.RecordOrderOperation("list", err == nil)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

func (h *Handlers) GetOrderDetails(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	order, err := h.Orders.GetUserOrder(c.Request.Context(), middlewares.UserEmail(c), id)
	middlewares.RecordOrderOperation("get", err == nil)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *Handlers) ListOrders(c *gin.Context) {
	orders, err := h.Orders.ListOrders(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

func (h *Handlers) UpdateOrderStatus(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req models.UpdateOrderStatusRequest
	if !bindJSON(c, &req) {
		return
	}
	order, err := h.Orders.UpdateStatus(c.Request.Context(), id, req)
	middlewares.RecordOrderOperation("update_status", err == nil)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}
