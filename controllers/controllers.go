package controllers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"storefront-service/apperrors"
	"storefront-service/services"
)

// Handlers binds the HTTP surface to the services.
type Handlers struct {
	Orders    *services.OrderService
	Coupons   *services.CouponService
	Addresses *services.AddressService
	Catalog   *services.CatalogService
	Users     *services.UserService
	Content   *services.ContentService

	// Ping reports whether the backing store is reachable. Nil means always healthy.
	Ping func(ctx context.Context) error
}

// respondError writes err as {error, details?} with the status of its kind.
func respondError(c *gin.Context, err error) {
	kind := apperrors.KindOf(err)
	msg, details := apperrors.MessageOf(err)
	if kind == apperrors.KindInternal {
		log.Printf("%s %s failed: %v", c.Request.Method, c.FullPath(), err)
	}
	body := gin.H{"error": msg}
	if details != "" {
		body["details"] = details
	}
	c.JSON(kind.HTTPStatus(), body)
}

var fieldMessages = map[string]string{
	"phone_in": "Invalid phone number. Enter a 10-digit mobile number",
	"pincode":  "Invalid pincode. Enter a 6-digit pincode",
}

// bindJSON decodes the body into req, answering 400 on failure.
func bindJSON(c *gin.Context, req any) bool {
	err := c.ShouldBindJSON(req)
	if err == nil {
		return true
	}
	var verrs validator.ValidationErrors
	msg := "Invalid request body"
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		switch {
		case fieldMessages[fe.Tag()] != "":
			msg = fieldMessages[fe.Tag()]
		case fe.Tag() == "required":
			msg = fmt.Sprintf("%s is required", fe.Field())
		default:
			msg = fmt.Sprintf("%s is invalid", fe.Field())
		}
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": msg, "details": err.Error()})
	return false
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID"})
		return 0, false
	}
	return id, true
}

func queryID(c *gin.Context, key string) (int64, bool) {
	raw := c.Query(key)
	if raw == "" {
		return 0, true
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + key})
		return 0, false
	}
	return id, true
}

var registerOnce sync.Once

// RegisterValidators adds the storefront's custom binding tags to gin's validator.
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			log.Printf("Warning: unexpected validator engine %T", binding.Validator.Engine())
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		_ = v.RegisterValidation("phone_in", func(fl validator.FieldLevel) bool {
			return services.ValidPhone(fl.Field().String())
		})
		_ = v.RegisterValidation("pincode", func(fl validator.FieldLevel) bool {
			return services.ValidPincode(fl.Field().String())
		})
	})
}
