package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront-service/apperrors"
	"storefront-service/models"
	"storefront-service/payment"
	"storefront-service/repository"
	"storefront-service/services"
	"storefront-service/utils"
)

const jwtSecret = "controller-test-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

type testEnv struct {
	engine *gin.Engine
	store  repository.Store

	buyer, admin, other string
	chain, retired      *models.Product
}

func setupServer(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()
	mem := repository.NewMemoryStore()
	store := mem.Store()

	env := &testEnv{store: store}
	for _, u := range []*models.User{
		{Email: "buyer@example.com", Name: "Buyer", Role: models.RoleUser},
		{Email: "other@example.com", Name: "Other", Role: models.RoleUser},
		{Email: "admin@example.com", Name: "Admin", Role: models.RoleAdmin},
	} {
		mem.AddUser(u)
	}
	env.buyer = token(t, "buyer@example.com", models.RoleUser)
	env.other = token(t, "other@example.com", models.RoleUser)
	env.admin = token(t, "admin@example.com", models.RoleAdmin)

	env.chain = &models.Product{SKU: "CHAIN-01", Name: "Chain Kit", Slug: "chain-kit",
		Price: decimal.NewFromInt(300), Stock: 5, IsActive: true}
	env.retired = &models.Product{SKU: "OLD-01", Name: "Old Kit", Slug: "old-kit",
		Price: decimal.NewFromInt(100), Stock: 5}
	require.NoError(t, store.Products.Create(ctx, env.chain))
	require.NoError(t, store.Products.Create(ctx, env.retired))

	minOrder, limit := decimal.NewFromInt(500), 100
	require.NoError(t, store.Coupons.Create(ctx, &models.Coupon{
		Code: "SAVE10", DiscountType: models.DiscountPercent, DiscountValue: decimal.NewFromInt(10),
		MinOrderValue: &minOrder, UsageLimit: &limit, IsActive: true,
		ValidFrom:  time.Date(2000, 1, 1, 0, 0, 0, 0, time.Local),
		ValidUntil: time.Date(2099, 12, 31, 0, 0, 0, 0, time.Local),
	}))

	coupons := services.NewCouponService(store.Coupons)
	h := &Handlers{
		Orders: services.NewOrderService(store, coupons, payment.LocalGateway{}, nil,
			services.Pricing{Currency: "INR"}, 0),
		Coupons:   coupons,
		Addresses: services.NewAddressService(store),
		Catalog:   services.NewCatalogService(store),
		Users:     services.NewUserService(store.Users),
		Content:   services.NewContentService(t.TempDir()),
	}
	env.engine = NewRouter(h, jwtSecret)
	return env
}

func token(t *testing.T, email string, role models.Role) string {
	t.Helper()
	tok, err := utils.GenerateToken(email, role, jwtSecret, time.Hour)
	require.NoError(t, err)
	return tok
}

func doJSON(t *testing.T, env *testEnv, method, path, tok string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	w := httptest.NewRecorder()
	env.engine.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func validAddress() map[string]any {
	return map[string]any{
		"fullName": "Asha Rao", "phone": "9876543210", "line1": "14 Residency Road",
		"city": "Bengaluru", "state": "KA", "pincode": "560025",
	}
}

func TestHealth(t *testing.T) {
	env := setupServer(t)
	w := doJSON(t, env, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestAddressRoutes(t *testing.T) {
	env := setupServer(t)

	bad := validAddress()
	bad["phone"] = "12345"
	w := doJSON(t, env, http.MethodPost, "/user/addresses", env.buyer, bad)
	require.Equal(t, http.StatusBadRequest, w.Code)
	var errBody map[string]string
	decode(t, w, &errBody)
	assert.Equal(t, "Invalid phone number. Enter a 10-digit mobile number", errBody["error"])
	assert.NotEmpty(t, errBody["details"])

	w = doJSON(t, env, http.MethodPost, "/user/addresses", env.buyer, validAddress())
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created models.Address
	decode(t, w, &created)
	assert.True(t, created.IsDefault)

	path := "/user/addresses/" + strconv.FormatInt(created.ID, 10)
	w = doJSON(t, env, http.MethodPut, path, env.other, validAddress())
	assert.Equal(t, http.StatusNotFound, w.Code)

	update := validAddress()
	update["city"] = "Mysuru"
	w = doJSON(t, env, http.MethodPut, path, env.buyer, update)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, env, http.MethodGet, "/user/addresses", env.buyer, nil)
	var list []models.Address
	decode(t, w, &list)
	require.Len(t, list, 1)
	assert.Equal(t, "Mysuru", list[0].City)

	w = doJSON(t, env, http.MethodDelete, path, env.buyer, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, env, http.MethodDelete, "/user/addresses/abc", env.buyer, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCouponValidateRoute(t *testing.T) {
	env := setupServer(t)

	w := doJSON(t, env, http.MethodPost, "/coupons/validate", "", map[string]any{"code": "save10", "orderValue": 600})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var ok struct {
		Success  bool                 `json:"success"`
		Coupon   models.CouponPayload `json:"coupon"`
		Discount float64              `json:"discount"`
	}
	decode(t, w, &ok)
	assert.True(t, ok.Success)
	assert.Equal(t, "SAVE10", ok.Coupon.Code)
	assert.Equal(t, 10.0, ok.Coupon.DiscountValue)
	assert.Equal(t, 60.0, ok.Discount)

	w = doJSON(t, env, http.MethodPost, "/coupons/validate", "", map[string]any{"code": "SAVE10", "orderValue": 400})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Minimum order value of Rs. 500.00 required"}`, w.Body.String())

	w = doJSON(t, env, http.MethodPost, "/coupons/validate", "", map[string]any{"code": "NOPE", "orderValue": 600})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, env, http.MethodPost, "/coupons/validate", "", map[string]any{"orderValue": 600})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestOrderFlow(t *testing.T) {
	env := setupServer(t)

	w := doJSON(t, env, http.MethodPost, "/orders", "", map[string]any{})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(t, env, http.MethodPost, "/user/addresses", env.buyer, validAddress())
	require.Equal(t, http.StatusCreated, w.Code)
	var addr models.Address
	decode(t, w, &addr)

	w = doJSON(t, env, http.MethodPost, "/orders", env.buyer, map[string]any{"items": []any{}, "addressId": addr.ID})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Cart is empty"}`, w.Body.String())

	w = doJSON(t, env, http.MethodPost, "/orders", env.buyer, map[string]any{
		"items": []any{map[string]any{"productId": env.chain.ID, "quantity": 0}}, "addressId": addr.ID,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, env, http.MethodPost, "/orders", env.other, map[string]any{
		"items": []any{map[string]any{"productId": env.chain.ID, "quantity": 1}}, "addressId": addr.ID,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Invalid address"}`, w.Body.String())

	w = doJSON(t, env, http.MethodPost, "/orders", env.buyer, map[string]any{
		"items": []any{map[string]any{"productId": env.chain.ID, "quantity": 9}}, "addressId": addr.ID,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Chain Kit")

	w = doJSON(t, env, http.MethodPost, "/orders", env.buyer, map[string]any{
		"items":      []any{map[string]any{"productId": env.chain.ID, "quantity": 2}},
		"addressId":  addr.ID,
		"couponCode": "save10",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var created models.CreateOrderResponse
	decode(t, w, &created)
	assert.Equal(t, 540.0, created.Amount)
	assert.Equal(t, "order_local_"+created.OrderNumber, created.RazorpayOrderID)

	w = doJSON(t, env, http.MethodGet, "/user/orders", env.buyer, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var orders []map[string]any
	decode(t, w, &orders)
	require.Len(t, orders, 1)
	assert.Equal(t, 600.0, orders[0]["subtotal"])
	assert.Equal(t, 540.0, orders[0]["total"])
	assert.Equal(t, "PENDING", orders[0]["status"])

	path := "/user/orders/" + strconv.FormatInt(created.OrderID, 10)
	w = doJSON(t, env, http.MethodGet, path, env.buyer, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var detail models.Order
	decode(t, w, &detail)
	require.Len(t, detail.Items, 1)
	assert.True(t, detail.Items[0].Subtotal.Equal(decimal.NewFromInt(600)))
	require.NotNil(t, detail.Address)

	w = doJSON(t, env, http.MethodGet, path, env.other, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"Order not found"}`, w.Body.String())

	w = doJSON(t, env, http.MethodPut, "/admin/orders/"+strconv.FormatInt(created.OrderID, 10)+"/status", env.admin,
		map[string]any{"status": "SHIPPED", "paymentStatus": "PAID"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	decode(t, w, &detail)
	assert.Equal(t, models.OrderStatusShipped, detail.Status)
	assert.Equal(t, models.PaymentStatusPaid, detail.PaymentStatus)

	w = doJSON(t, env, http.MethodPut, "/admin/orders/"+strconv.FormatInt(created.OrderID, 10)+"/status", env.admin,
		map[string]any{"status": "LOST"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPublicCatalog(t *testing.T) {
	env := setupServer(t)

	w := doJSON(t, env, http.MethodGet, "/products", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var products []models.Product
	decode(t, w, &products)
	require.Len(t, products, 1)
	assert.Equal(t, "CHAIN-01", products[0].SKU)

	w = doJSON(t, env, http.MethodGet, "/products/"+strconv.FormatInt(env.retired.ID, 10), "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, env, http.MethodGet, "/products?brandId=x", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	for _, path := range []string{"/brands", "/bikes", "/banners", "/testimonials", "/videos", "/menu"} {
		w = doJSON(t, env, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusOK, w.Code, path)
		assert.JSONEq(t, `[]`, w.Body.String(), path)
	}
}

func TestAdminRoutes(t *testing.T) {
	env := setupServer(t)

	w := doJSON(t, env, http.MethodGet, "/admin/users", env.buyer, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = doJSON(t, env, http.MethodGet, "/admin/users", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(t, env, http.MethodPost, "/admin/brands", env.admin, map[string]any{"name": "Royal Enfield"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var brand models.Brand
	decode(t, w, &brand)
	assert.Equal(t, "royal-enfield", brand.Slug)

	w = doJSON(t, env, http.MethodPost, "/admin/bikes", env.admin, map[string]any{"brandId": brand.ID, "model": "Classic 350"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = doJSON(t, env, http.MethodPost, "/admin/products", env.admin, map[string]any{
		"sku": "air-01", "name": "Air Filter", "price": 450, "stock": 3, "brandId": brand.ID,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var product models.Product
	decode(t, w, &product)
	assert.Equal(t, "AIR-01", product.SKU)

	w = doJSON(t, env, http.MethodGet, "/admin/products", env.admin, nil)
	var all []models.Product
	decode(t, w, &all)
	assert.Len(t, all, 3)

	w = doJSON(t, env, http.MethodPost, "/admin/coupons", env.admin, map[string]any{
		"code": "monsoon", "discountType": "FLAT", "discountValue": 100,
		"validFrom": "2024-06-01T00:00:00Z", "validUntil": "2024-09-30T00:00:00Z",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var coupon models.Coupon
	decode(t, w, &coupon)
	assert.Equal(t, "MONSOON", coupon.Code)

	w = doJSON(t, env, http.MethodPost, "/admin/coupons", env.admin, map[string]any{"code": "X", "discountType": "BOGO"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, env, http.MethodPost, "/admin/testimonials", env.admin, map[string]any{
		"name": "Ravi", "message": "Quick delivery", "rating": 5,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	w = doJSON(t, env, http.MethodGet, "/testimonials", "", nil)
	var testimonials []models.Testimonial
	decode(t, w, &testimonials)
	require.Len(t, testimonials, 1)

	w = doJSON(t, env, http.MethodPost, "/admin/testimonials", env.admin, map[string]any{"name": "Ravi", "message": "x", "rating": 9})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, env, http.MethodDelete, "/admin/videos/missing", env.admin, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, env, http.MethodGet, "/admin/users", env.admin, nil)
	var users []models.User
	decode(t, w, &users)
	require.Len(t, users, 3)

	var buyerID int64
	for _, u := range users {
		if u.Email == "buyer@example.com" {
			buyerID = u.ID
		}
	}
	w = doJSON(t, env, http.MethodPut, "/admin/users/"+strconv.FormatInt(buyerID, 10)+"/role", env.admin, map[string]any{"role": "ADMIN"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var promoted models.User
	decode(t, w, &promoted)
	assert.Equal(t, models.RoleAdmin, promoted.Role)
}

func TestRespondError(t *testing.T) {
	tests := []struct {
		err  error
		code int
		body string
	}{
		{apperrors.Unauthorized("User not authenticated"), http.StatusUnauthorized, `{"error":"User not authenticated"}`},
		{apperrors.Forbidden("Forbidden"), http.StatusForbidden, `{"error":"Forbidden"}`},
		{apperrors.NotFound("Order not found"), http.StatusNotFound, `{"error":"Order not found"}`},
		{apperrors.Internal("Failed to create order", errors.New("deadlock")), http.StatusInternalServerError,
			`{"error":"Failed to create order","details":"deadlock"}`},
		{errors.New("boom"), http.StatusInternalServerError, `{"error":"Internal server error","details":"boom"}`},
	}
	for _, tt := range tests {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
		respondError(c, tt.err)
		assert.Equal(t, tt.code, w.Code)
		assert.JSONEq(t, tt.body, w.Body.String())
	}
}

func TestProfile(t *testing.T) {
	env := setupServer(t)

	w := doJSON(t, env, http.MethodGet, "/user/me", env.buyer, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var me models.User
	decode(t, w, &me)
	assert.Equal(t, "buyer@example.com", me.Email)

	w = doJSON(t, env, http.MethodGet, "/user/me", token(t, "ghost@example.com", models.RoleUser), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, env, http.MethodGet, "/user/me", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"error":"Invalid token"}`, w.Body.String())
}

func TestCouponDateOnlyWindow(t *testing.T) {
	// West of UTC, a UTC-midnight reading of the end date would fall on the previous local day.
	prev := time.Local
	time.Local = time.FixedZone("UTC-5", -5*60*60)
	t.Cleanup(func() { time.Local = prev })

	env := setupServer(t)
	today := time.Now().Format(models.DateLayout)

	w := doJSON(t, env, http.MethodPost, "/admin/coupons", env.admin, map[string]any{
		"code": "lastday", "discountType": "FLAT", "discountValue": 50,
		"validFrom": "2024-01-01", "validUntil": today,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = doJSON(t, env, http.MethodPost, "/coupons/validate", "", map[string]any{"code": "LASTDAY", "orderValue": 600})
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doJSON(t, env, http.MethodPost, "/admin/coupons", env.admin, map[string]any{
		"code": "utcday", "discountType": "FLAT", "discountValue": 50,
		"validFrom": "2024-01-01T00:00:00Z", "validUntil": today + "T00:00:00Z",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = doJSON(t, env, http.MethodPost, "/coupons/validate", "", map[string]any{"code": "UTCDAY", "orderValue": 600})
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doJSON(t, env, http.MethodPost, "/admin/coupons", env.admin, map[string]any{
		"code": "baddate", "discountType": "FLAT", "discountValue": 50,
		"validFrom": "01/01/2024", "validUntil": today,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, env, http.MethodPost, "/admin/coupons", env.admin, map[string]any{
		"code": "nodate", "discountType": "FLAT", "discountValue": 50,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"validFrom and validUntil are required"}`, w.Body.String())
}
