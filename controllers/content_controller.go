package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront-service/models"
)

func (h *Handlers) ListTestimonials(c *gin.Context) {
	items, err := h.Content.ListTestimonials()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *Handlers) CreateTestimonial(c *gin.Context) {
	var req models.Testimonial
	if !bindJSON(c, &req) {
		return
	}
	item, err := h.Content.CreateTestimonial(req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

func (h *Handlers) UpdateTestimonial(c *gin.Context) {
	var req models.Testimonial
	if !bindJSON(c, &req) {
		return
	}
	item, err := h.Content.UpdateTestimonial(c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *Handlers) DeleteTestimonial(c *gin.Context) {
	if err := h.Content.DeleteTestimonial(c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Testimonial deleted"})
}

func (h *Handlers) ListVideos(c *gin.Context) {
	items, err := h.Content.ListVideos()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *Handlers) CreateVideo(c *gin.Context) {
	var req models.Video
	if !bindJSON(c, &req) {
		return
	}
	item, err := h.Content.CreateVideo(req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

func (h *Handlers) UpdateVideo(c *gin.Context) {
	var req models.Video
	if !bindJSON(c, &req) {
		return
	}
	item, err := h.Content.UpdateVideo(c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *Handlers) DeleteVideo(c *gin.Context) {
	if err := h.Content.DeleteVideo(c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Video deleted"})
}

func (h *Handlers) ListMenu(c *gin.Context) {
	items, err := h.Content.ListMenu()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *Handlers) CreateMenuItem(c *gin.Context) {
	var req models.MenuItem
	if !bindJSON(c, &req) {
		return
	}
	item, err := h.Content.CreateMenuItem(req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

func (h *Handlers) UpdateMenuItem(c *gin.Context) {
	var req models.MenuItem
	if !bindJSON(c, &req) {
		return
	}
	item, err := h.Content.UpdateMenuItem(c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *Handlers) DeleteMenuItem(c *gin.Context) {
	if err := h.Content.DeleteMenuItem(c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Menu item deleted"})
}
