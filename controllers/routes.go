package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"storefront-service/middlewares"
	"storefront-service/models"
)

// NewRouter builds the gin engine with every storefront route.
func NewRouter(h *Handlers, jwtSecret string) *gin.Engine {
	RegisterValidators()

	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	r.Use(middlewares.PrometheusMiddleware())

	// 暴露Prometheus指标端点
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/health", h.Health)

	r.GET("/products", h.ListProducts)
	r.GET("/products/:id", h.GetProduct)
	r.GET("/brands", h.ListBrands)
	r.GET("/bikes", h.ListBikes)
	r.GET("/banners", h.ListBanners)
	r.GET("/testimonials", h.ListTestimonials)
	r.GET("/videos", h.ListVideos)
	r.GET("/menu", h.ListMenu)
	r.POST("/coupons/validate", h.ValidateCoupon)

	// 需要认证的路由组
	auth := r.Group("/", middlewares.AuthMiddleware(jwtSecret))
	{
		auth.POST("/orders", h.CreateOrder)
		auth.GET("/user/me", h.GetProfile)
		auth.GET("/user/orders", h.GetUserOrders)
		auth.GET("/user/orders/:id", h.GetOrderDetails)
		auth.GET("/user/addresses", h.GetAddresses)
		auth.POST("/user/addresses", h.CreateAddress)
		auth.PUT("/user/addresses/:id", h.UpdateAddress)
		auth.DELETE("/user/addresses/:id", h.DeleteAddress)
	}

	admin := r.Group("/admin", middlewares.AuthMiddleware(jwtSecret), middlewares.RequireRole(models.RoleAdmin))
	{
		admin.GET("/brands", h.ListBrands)
		admin.POST("/brands", h.CreateBrand)
		admin.PUT("/brands/:id", h.UpdateBrand)
		admin.DELETE("/brands/:id", h.DeleteBrand)

		admin.GET("/bikes", h.ListBikes)
		admin.POST("/bikes", h.CreateBike)
		admin.PUT("/bikes/:id", h.UpdateBike)
		admin.DELETE("/bikes/:id", h.DeleteBike)

		admin.GET("/products", h.AdminListProducts)
		admin.GET("/products/:id", h.AdminGetProduct)
		admin.POST("/products", h.CreateProduct)
		admin.PUT("/products/:id", h.UpdateProduct)
		admin.DELETE("/products/:id", h.DeleteProduct)

		admin.GET("/banners", h.AdminListBanners)
		admin.POST("/banners", h.CreateBanner)
		admin.PUT("/banners/:id", h.UpdateBanner)
		admin.DELETE("/banners/:id", h.DeleteBanner)

		admin.GET("/coupons", h.ListCoupons)
		admin.GET("/coupons/:id", h.GetCoupon)
		admin.POST("/coupons", h.CreateCoupon)
		admin.PUT("/coupons/:id", h.UpdateCoupon)
		admin.DELETE("/coupons/:id", h.DeleteCoupon)

		admin.GET("/testimonials", h.ListTestimonials)
		admin.POST("/testimonials", h.CreateTestimonial)
		admin.PUT("/testimonials/:id", h.UpdateTestimonial)
		admin.DELETE("/testimonials/:id", h.DeleteTestimonial)

		admin.GET("/videos", h.ListVideos)
		admin.POST("/videos", h.CreateVideo)
		admin.PUT("/videos/:id", h.UpdateVideo)
		admin.DELETE("/videos/:id", h.DeleteVideo)

		admin.GET("/menu-items", h.ListMenu)
		admin.POST("/menu-items", h.CreateMenuItem)
		admin.PUT("/menu-items/:id", h.UpdateMenuItem)
		admin.DELETE("/menu-items/:id", h.DeleteMenuItem)

		admin.GET("/users", h.ListUsers)
		admin.PUT("/users/:id/role", h.UpdateUserRole)

		admin.GET("/orders", h.ListOrders)
		admin.PUT("/orders/:id/status", h.UpdateOrderStatus)
	}

	return r
}

func (h *Handlers) Health(c *gin.Context) {
	if h.Ping != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := h.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
