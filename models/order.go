package models

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Money leaves the service as plain JSON numbers, not quoted strings.
	decimal.MarshalJSONWithoutQuotes = true
}

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "PENDING"
	OrderStatusProcessing OrderStatus = "PROCESSING"
	OrderStatusShipped    OrderStatus = "SHIPPED"
	OrderStatusDelivered  OrderStatus = "DELIVERED"
	OrderStatusCancelled  OrderStatus = "CANCELLED"
)

type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "PENDING"
	PaymentStatusPaid     PaymentStatus = "PAID"
	PaymentStatusFailed   PaymentStatus = "FAILED"
	PaymentStatusRefunded PaymentStatus = "REFUNDED"
)

const PaymentMethodRazorpay = "RAZORPAY"

type Order struct {
	ID              int64           `json:"id"`
	OrderNumber     string          `json:"orderNumber"`
	UserID          int64           `json:"userId"`
	AddressID       int64           `json:"addressId"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	Tax             decimal.Decimal `json:"tax"`
	ShippingCost    decimal.Decimal `json:"shippingCost"`
	Discount        decimal.Decimal `json:"discount"`
	Total           decimal.Decimal `json:"total"`
	CouponCode      string          `json:"couponCode,omitempty"`
	Status          OrderStatus     `json:"status"`
	PaymentStatus   PaymentStatus   `json:"paymentStatus"`
	PaymentMethod   string          `json:"paymentMethod"`
	RazorpayOrderID string          `json:"razorpayOrderId"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
	Items           []OrderItem     `json:"items"`
	Address         *Address        `json:"address,omitempty"`
}

// OrderItem keeps the unit price captured when the order was placed.
type OrderItem struct {
	ID          int64           `json:"id"`
	OrderID     int64           `json:"orderId"`
	ProductID   int64           `json:"productId"`
	ProductName string          `json:"productName"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

func NewOrderItem(p Product, quantity int) OrderItem {
	price := p.EffectivePrice()
	return OrderItem{
		ProductID:   p.ID,
		ProductName: p.Name,
		Quantity:    quantity,
		Price:       price,
		Subtotal:    price.Mul(decimal.NewFromInt(int64(quantity))),
	}
}

type CartItem struct {
	ProductID int64 `json:"productId" binding:"required,gt=0"`
	Quantity  int   `json:"quantity" binding:"required,gt=0"`
}

type CreateOrderRequest struct {
	Items      []CartItem `json:"items" binding:"dive"`
	AddressID  int64      `json:"addressId"`
	CouponCode string     `json:"couponCode"`
}

type CreateOrderResponse struct {
	OrderID         int64   `json:"orderId"`
	OrderNumber     string  `json:"orderNumber"`
	RazorpayOrderID string  `json:"razorpayOrderId"`
	Amount          float64 `json:"amount"`
}

type UpdateOrderStatusRequest struct {
	Status        OrderStatus   `json:"status" binding:"required,oneof=PENDING PROCESSING SHIPPED DELIVERED CANCELLED"`
	PaymentStatus PaymentStatus `json:"paymentStatus" binding:"omitempty,oneof=PENDING PAID FAILED REFUNDED"`
}

const (
	EventOrderCreated  = "created"
	EventStatusUpdated = "status_updated"
	EventPaymentCheck  = "payment_check"
)

type OrderEvent struct {
	OrderID     int64           `json:"orderId"`
	OrderNumber string          `json:"orderNumber"`
	UserID      int64           `json:"userId"`
	Type        string          `json:"type"`
	Status      OrderStatus     `json:"status"`
	Total       decimal.Decimal `json:"total"`
	Occurred    time.Time       `json:"occurred"`
}
