package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront-service/middlewares"
	"storefront-service/models"
)

func (h *Handlers) GetAddresses(c *gin.Context) {
	addresses, err := h.Addresses.List(c.Request.Context(), middlewares.UserEmail(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, addresses)
}

func (h *Handlers) CreateAddress(c *gin.Context) {
	var req models.AddressRequest
	if !bindJSON(c, &req) {
		return
	}
	address, err := h.Addresses.Create(c.Request.Context(), middlewares.UserEmail(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, address)
}

func (h *Handlers) UpdateAddress(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req models.AddressRequest
	if !bindJSON(c, &req) {
		return
	}
	address, err := h.Addresses.Update(c.Request.Context(), middlewares.UserEmail(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, address)
}

func (h *Handlers) DeleteAddress(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.Addresses.Delete(c.Request.Context(), middlewares.UserEmail(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Address deleted"})
}
