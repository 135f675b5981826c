package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"storefront-service/models"
)

// products

func (h *Handlers) productFilter(c *gin.Context, activeOnly bool) (models.ProductFilter, bool) {
	brandID, ok := queryID(c, "brandId")
	if !ok {
		return models.ProductFilter{}, false
	}
	bikeID, ok := queryID(c, "bikeId")
	if !ok {
		return models.ProductFilter{}, false
	}
	return models.ProductFilter{
		Query:      strings.TrimSpace(c.Query("q")),
		BrandID:    brandID,
		BikeID:     bikeID,
		Category:   strings.TrimSpace(c.Query("category")),
		ActiveOnly: activeOnly,
	}, true
}

func (h *Handlers) listProducts(c *gin.Context, activeOnly bool) {
	f, ok := h.productFilter(c, activeOnly)
	if !ok {
		return
	}
	products, err := h.Catalog.ListProducts(c.Request.Context(), f)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, products)
}

func (h *Handlers) ListProducts(c *gin.Context) { h.listProducts(c, true) }

func (h *Handlers) AdminListProducts(c *gin.Context) { h.listProducts(c, false) }

func (h *Handlers) getProduct(c *gin.Context, includeInactive bool) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	product, err := h.Catalog.GetProduct(c.Request.Context(), id, includeInactive)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h *Handlers) GetProduct(c *gin.Context) { h.getProduct(c, false) }

func (h *Handlers) AdminGetProduct(c *gin.Context) { h.getProduct(c, true) }

func (h *Handlers) CreateProduct(c *gin.Context) {
	var req models.ProductRequest
	if !bindJSON(c, &req) {
		return
	}
	product, err := h.Catalog.CreateProduct(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, product)
}

func (h *Handlers) UpdateProduct(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req models.ProductRequest
	if !bindJSON(c, &req) {
		return
	}
	product, err := h.Catalog.UpdateProduct(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h *Handlers) DeleteProduct(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.Catalog.DeleteProduct(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Product deleted"})
}

// brands

func (h *Handlers) ListBrands(c *gin.Context) {
	brands, err := h.Catalog.ListBrands(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, brands)
}

func (h *Handlers) CreateBrand(c *gin.Context) {
	var req models.BrandRequest
	if !bindJSON(c, &req) {
		return
	}
	brand, err := h.Catalog.CreateBrand(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, brand)
}

func (h *Handlers) UpdateBrand(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req models.BrandRequest
	if !bindJSON(c, &req) {
		return
	}
	brand, err := h.Catalog.UpdateBrand(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, brand)
}

func (h *Handlers) DeleteBrand(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.Catalog.DeleteBrand(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Brand deleted"})
}

// bikes

func (h *Handlers) ListBikes(c *gin.Context) {
	brandID, ok := queryID(c, "brandId")
	if !ok {
		return
	}
	bikes, err := h.Catalog.ListBikes(c.Request.Context(), brandID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, bikes)
}

func (h *Handlers) CreateBike(c *gin.Context) {
	var req models.BikeRequest
	if !bindJSON(c, &req) {
		return
	}
	bike, err := h.Catalog.CreateBike(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, bike)
}

func (h *Handlers) UpdateBike(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req models.BikeRequest
	if !bindJSON(c, &req) {
		return
	}
	bike, err := h.Catalog.UpdateBike(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, bike)
}

func (h *Handlers) DeleteBike(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.Catalog.DeleteBike(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Bike deleted"})
}

// banners

func (h *Handlers) listBanners(c *gin.Context, activeOnly bool) {
	banners, err := h.Catalog.ListBanners(c.Request.Context(), activeOnly)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, banners)
}

func (h *Handlers) ListBanners(c *gin.Context) { h.listBanners(c, true) }

func (h *Handlers) AdminListBanners(c *gin.Context) { h.listBanners(c, false) }

func (h *Handlers) CreateBanner(c *gin.Context) {
	var req models.BannerRequest
	if !bindJSON(c, &req) {
		return
	}
	banner, err := h.Catalog.CreateBanner(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, banner)
}

func (h *Handlers) UpdateBanner(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req models.BannerRequest
	if !bindJSON(c, &req) {
		return
	}
	banner, err := h.Catalog.UpdateBanner(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, banner)
}

func (h *Handlers) DeleteBanner(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.Catalog.DeleteBanner(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Banner deleted"})
}
