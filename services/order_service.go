package services

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"log"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"storefront-service/apperrors"
	"storefront-service/logging"
	"storefront-service/models"
	"storefront-service/payment"
	"storefront-service/repository"
)

const (
	orderNumberAttempts = 3

	priorityDefault   uint8 = 5
	priorityCancelled uint8 = 8
	priorityLarge     uint8 = 9
)

var largeOrderTotal = decimal.NewFromInt(1000)

// Pricing holds the charges added on top of the cart subtotal.
type Pricing struct {
	Currency              string
	TaxRate               decimal.Decimal // percent of subtotal
	ShippingFee           decimal.Decimal
	FreeShippingThreshold decimal.Decimal // zero disables free shipping
}

func (p Pricing) Tax(subtotal decimal.Decimal) decimal.Decimal {
	return subtotal.Mul(p.TaxRate).Div(decimal.NewFromInt(100)).Round(2)
}

func (p Pricing) Shipping(subtotal decimal.Decimal) decimal.Decimal {
	if p.FreeShippingThreshold.IsPositive() && subtotal.GreaterThanOrEqual(p.FreeShippingThreshold) {
		return decimal.Zero
	}
	return p.ShippingFee
}

// NewOrderNumber returns ORD-<epoch ms>-<random base-36 token>.
func NewOrderNumber(now time.Time) string {
	id := uuid.New()
	token := strconv.FormatUint(binary.BigEndian.Uint64(id[:8]), 36)
	if len(token) > 9 {
		token = token[len(token)-9:]
	}
	return fmt.Sprintf("ORD-%d-%s", now.UnixMilli(), strings.ToUpper(token))
}

type OrderService struct {
	store          repository.Store
	coupons        *CouponService
	gateway        payment.Gateway
	events         EventPublisher
	pricing        Pricing
	paymentTimeout time.Duration
	now            func() time.Time
}

func NewOrderService(store repository.Store, coupons *CouponService, gateway payment.Gateway,
	events EventPublisher, pricing Pricing, paymentTimeout time.Duration) *OrderService {
	return &OrderService{
		store:          store,
		coupons:        coupons,
		gateway:        gateway,
		events:         events,
		pricing:        pricing,
		paymentTimeout: paymentTimeout,
		now:            time.Now,
	}
}

// CreateOrder checks the cart, opens a payment order with the provider and
// persists the order. Stock and coupon usage change in the same transaction
// as the order insert.
func (s *OrderService) CreateOrder(ctx context.Context, email string, req models.CreateOrderRequest) (*models.CreateOrderResponse, error) {
	start := time.Now()
	if strings.TrimSpace(email) == "" {
		return nil, apperrors.Unauthorized("User not authenticated")
	}
	if len(req.Items) == 0 {
		return nil, apperrors.InvalidRequest("Cart is empty")
	}

	user, err := resolveUser(ctx, s.store.Users, email)
	if err != nil {
		return nil, err
	}

	address, err := s.store.Addresses.GetByID(ctx, req.AddressID)
	if errors.Is(err, repository.ErrNotFound) || (err == nil && address.UserID != user.ID) {
		return nil, apperrors.InvalidRequest("Invalid address")
	}
	if err != nil {
		return nil, apperrors.Internal("Failed to load address", err)
	}

	products := make(map[int64]*models.Product, len(req.Items))
	requested := make(map[int64]int, len(req.Items))
	for _, item := range req.Items {
		if item.Quantity <= 0 {
			return nil, apperrors.InvalidRequest("Invalid quantity for product %d", item.ProductID)
		}
		if _, seen := products[item.ProductID]; !seen {
			p, err := s.store.Products.GetByID(ctx, item.ProductID)
			if errors.Is(err, repository.ErrNotFound) {
				return nil, apperrors.InvalidRequest("Product %d not found", item.ProductID)
			}
			if err != nil {
				return nil, apperrors.Internal("Failed to load product", err)
			}
			if !p.IsActive {
				return nil, apperrors.InvalidRequest("Product %s is no longer available", p.Name)
			}
			products[item.ProductID] = p
		}
		requested[item.ProductID] += item.Quantity
	}
	for _, item := range req.Items {
		p := products[item.ProductID]
		if p.Stock < requested[item.ProductID] {
			return nil, apperrors.InvalidRequest("Insufficient stock for %s. Available: %d", p.Name, p.Stock)
		}
	}

	order := &models.Order{
		UserID:        user.ID,
		AddressID:     address.ID,
		Status:        models.OrderStatusPending,
		PaymentStatus: models.PaymentStatusPending,
		PaymentMethod: models.PaymentMethodRazorpay,
		Subtotal:      decimal.Zero,
		Discount:      decimal.Zero,
	}
	for _, item := range req.Items {
		line := models.NewOrderItem(*products[item.ProductID], item.Quantity)
		order.Items = append(order.Items, line)
		order.Subtotal = order.Subtotal.Add(line.Subtotal)
	}

	var couponID int64
	if code := models.NormalizeCouponCode(req.CouponCode); code != "" {
		coupon, err := s.coupons.Validate(ctx, code, order.Subtotal)
		if err != nil {
			return nil, err
		}
		couponID = coupon.ID
		order.CouponCode = coupon.Code
		order.Discount = coupon.DiscountFor(order.Subtotal)
	}

	order.Tax = s.pricing.Tax(order.Subtotal)
	order.ShippingCost = s.pricing.Shipping(order.Subtotal)
	order.Total = order.Subtotal.Add(order.Tax).Add(order.ShippingCost).Sub(order.Discount)
	if order.Total.IsNegative() {
		order.Total = decimal.Zero
	}

	now := s.now()
	order.OrderNumber = NewOrderNumber(now)
	order.CreatedAt, order.UpdatedAt = now, now

	remote, err := s.gateway.CreateOrder(ctx, payment.ToMinorUnits(order.Total), s.pricing.Currency, order.OrderNumber)
	if err != nil {
		return nil, apperrors.Internal("Failed to create payment order", err)
	}
	order.RazorpayOrderID = remote.ID

	for attempt := 1; ; attempt++ {
		err = s.store.Tx.WithTransaction(ctx, func(ctx context.Context) error {
			return s.persist(ctx, order, couponID)
		})
		if !errors.Is(err, repository.ErrDuplicate) || attempt == orderNumberAttempts {
			break
		}
		log.Printf("Order number %s already taken, regenerating", order.OrderNumber)
		order.OrderNumber = NewOrderNumber(s.now())
	}
	if err != nil {
		var appErr *apperrors.Error
		if errors.As(err, &appErr) {
			return nil, err
		}
		return nil, apperrors.Internal("Failed to create order", err)
	}

	logging.Event(logging.Fields{
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		UserID:      user.ID,
		Step:        "create_order",
		Status:      "created",
		DurationMS:  time.Since(start).Milliseconds(),
	})
	s.afterCreate(ctx, order)

	return &models.CreateOrderResponse{
		OrderID:         order.ID,
		OrderNumber:     order.OrderNumber,
		RazorpayOrderID: order.RazorpayOrderID,
		Amount:          order.Total.InexactFloat64(),
	}, nil
}

// persist runs inside the checkout transaction.
func (s *OrderService) persist(ctx context.Context, order *models.Order, couponID int64) error {
	need := make(map[int64]int, len(order.Items))
	for _, item := range order.Items {
		need[item.ProductID] += item.Quantity
	}
	ids := make([]int64, 0, len(need))
	for id := range need {
		ids = append(ids, id)
	}
	// Rows are locked in id order so two checkouts never wait on each other crosswise.
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		p, err := s.store.Products.GetForUpdate(ctx, id)
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.InvalidRequest("Product %d not found", id)
		}
		if err != nil {
			return err
		}
		err = s.store.Products.AdjustStock(ctx, id, -need[id])
		if errors.Is(err, repository.ErrInsufficientStock) {
			return apperrors.InvalidRequest("Insufficient stock for %s. Available: %d", p.Name, p.Stock)
		}
		if err != nil {
			return err
		}
	}

	if err := s.store.Orders.Create(ctx, order); err != nil {
		return err
	}

	if couponID != 0 {
		err := s.store.Coupons.IncrementUsage(ctx, couponID)
		if errors.Is(err, repository.ErrCouponExhausted) {
			return apperrors.InvalidRequest("This coupon has reached its usage limit")
		}
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.InvalidRequest("Invalid coupon code")
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *OrderService) event(o *models.Order, eventType string) models.OrderEvent {
	return models.OrderEvent{
		OrderID:     o.ID,
		OrderNumber: o.OrderNumber,
		UserID:      o.UserID,
		Type:        eventType,
		Status:      o.Status,
		Total:       o.Total,
		Occurred:    s.now(),
	}
}

func (s *OrderService) afterCreate(ctx context.Context, o *models.Order) {
	if s.events == nil {
		return
	}
	priority := priorityDefault
	if o.Total.GreaterThan(largeOrderTotal) {
		priority = priorityLarge
	}
	if err := s.events.PublishOrderEvent(ctx, s.event(o, models.EventOrderCreated), priority); err != nil {
		log.Printf("Failed to publish order created event: %v", err)
	}
	if s.paymentTimeout > 0 {
		if err := s.events.PublishDelayedEvent(ctx, s.event(o, models.EventPaymentCheck), s.paymentTimeout); err != nil {
			log.Printf("Failed to publish delayed payment check event: %v", err)
		}
	}
}

func (s *OrderService) publishStatus(ctx context.Context, o *models.Order) {
	if s.events == nil {
		return
	}
	priority := priorityDefault
	if o.Status == models.OrderStatusCancelled {
		priority = priorityCancelled
	}
	if err := s.events.PublishOrderEvent(ctx, s.event(o, models.EventStatusUpdated), priority); err != nil {
		log.Printf("Failed to publish order updated event: %v", err)
	}
}

// restoreStock puts the quantities of items back. Products deleted since the
// order was placed are skipped.
func (s *OrderService) restoreStock(ctx context.Context, items []models.OrderItem) error {
	for _, item := range items {
		err := s.store.Products.AdjustStock(ctx, item.ProductID, item.Quantity)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return err
		}
	}
	return nil
}

func (s *OrderService) ListUserOrders(ctx context.Context, email string) ([]models.Order, error) {
	user, err := resolveUser(ctx, s.store.Users, email)
	if err != nil {
		return nil, err
	}
	orders, err := s.store.Orders.ListByUser(ctx, user.ID)
	if err != nil {
		return nil, apperrors.Internal("Failed to fetch orders", err)
	}
	return orders, nil
}

// GetUserOrder returns one of the caller's orders with its delivery address.
// Orders of other users are reported as missing.
func (s *OrderService) GetUserOrder(ctx context.Context, email string, id int64) (*models.Order, error) {
	user, err := resolveUser(ctx, s.store.Users, email)
	if err != nil {
		return nil, err
	}
	o, err := s.store.Orders.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) || (err == nil && o.UserID != user.ID) {
		return nil, apperrors.NotFound("Order not found")
	}
	if err != nil {
		return nil, apperrors.Internal("Failed to fetch order", err)
	}
	if a, err := s.store.Addresses.GetByID(ctx, o.AddressID); err == nil {
		o.Address = a
	}
	return o, nil
}

func (s *OrderService) ListOrders(ctx context.Context) ([]models.Order, error) {
	orders, err := s.store.Orders.List(ctx)
	if err != nil {
		return nil, apperrors.Internal("Failed to fetch orders", err)
	}
	return orders, nil
}

// UpdateStatus moves an order to a new status. Cancelling returns its stock;
// a cancelled order cannot be moved again.
func (s *OrderService) UpdateStatus(ctx context.Context, id int64, req models.UpdateOrderStatusRequest) (*models.Order, error) {
	var updated *models.Order
	err := s.store.Tx.WithTransaction(ctx, func(ctx context.Context) error {
		o, err := s.store.Orders.GetByID(ctx, id)
		if err != nil {
			return storeErr(err, "Order")
		}
		if o.Status == models.OrderStatusCancelled && req.Status != models.OrderStatusCancelled {
			return apperrors.InvalidRequest("Cancelled orders cannot change status")
		}
		paymentStatus := o.PaymentStatus
		if req.PaymentStatus != "" {
			paymentStatus = req.PaymentStatus
		}
		if err := s.store.Orders.UpdateStatus(ctx, id, req.Status, paymentStatus); err != nil {
			return err
		}
		if req.Status == models.OrderStatusCancelled && o.Status != models.OrderStatusCancelled {
			if err := s.restoreStock(ctx, o.Items); err != nil {
				return err
			}
		}
		o.Status, o.PaymentStatus, o.UpdatedAt = req.Status, paymentStatus, s.now()
		updated = o
		return nil
	})
	if err != nil {
		return nil, storeErr(err, "Order")
	}
	s.publishStatus(ctx, updated)
	return updated, nil
}

// ExpireUnpaid cancels an order whose payment never arrived and returns its
// stock. It reports false when the order was paid or already moved on.
func (s *OrderService) ExpireUnpaid(ctx context.Context, id int64) (bool, error) {
	var expired *models.Order
	err := s.store.Tx.WithTransaction(ctx, func(ctx context.Context) error {
		o, err := s.store.Orders.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if o.Status != models.OrderStatusPending || o.PaymentStatus != models.PaymentStatusPending {
			return nil
		}
		if err := s.store.Orders.UpdateStatus(ctx, id, models.OrderStatusCancelled, models.PaymentStatusFailed); err != nil {
			return err
		}
		if err := s.restoreStock(ctx, o.Items); err != nil {
			return err
		}
		o.Status, o.PaymentStatus = models.OrderStatusCancelled, models.PaymentStatusFailed
		expired = o
		return nil
	})
	if err != nil {
		return false, storeErr(err, "Order")
	}
	if expired == nil {
		return false, nil
	}
	logging.Event(logging.Fields{
		OrderID:     expired.ID,
		OrderNumber: expired.OrderNumber,
		UserID:      expired.UserID,
		Step:        "payment_check",
		Status:      "expired",
	})
	s.publishStatus(ctx, expired)
	return true, nil
}
