package payment

import (
	"context"
	"errors"
	"fmt"

	razorpay "github.com/razorpay/razorpay-go"
	"github.com/shopspring/decimal"
)

// RemoteOrder is the provider-side handle the client uses to confirm payment.
type RemoteOrder struct {
	ID       string
	Amount   int64
	Currency string
	Receipt  string
}

type Gateway interface {
	CreateOrder(ctx context.Context, amountMinor int64, currency, receipt string) (RemoteOrder, error)
}

// ToMinorUnits converts a major-unit amount (rupees) into paise, rounding half away from zero.
func ToMinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

type RazorpayGateway struct {
	client *razorpay.Client
}

func NewRazorpayGateway(keyID, keySecret string) *RazorpayGateway {
	return &RazorpayGateway{client: razorpay.NewClient(keyID, keySecret)}
}

func (g *RazorpayGateway) CreateOrder(ctx context.Context, amountMinor int64, currency, receipt string) (RemoteOrder, error) {
	if err := ctx.Err(); err != nil {
		return RemoteOrder{}, err
	}
	body, err := g.client.Order.Create(map[string]interface{}{
		"amount":   amountMinor,
		"currency": currency,
		"receipt":  receipt,
	}, nil)
	if err != nil {
		return RemoteOrder{}, fmt.Errorf("razorpay create order: %w", err)
	}
	id, _ := body["id"].(string)
	if id == "" {
		return RemoteOrder{}, errors.New("razorpay create order: response has no id")
	}
	return RemoteOrder{ID: id, Amount: amountMinor, Currency: currency, Receipt: receipt}, nil
}

// LocalGateway stands in for the provider when no API key is configured.
type LocalGateway struct{}

func (LocalGateway) CreateOrder(ctx context.Context, amountMinor int64, currency, receipt string) (RemoteOrder, error) {
	if err := ctx.Err(); err != nil {
		return RemoteOrder{}, err
	}
	return RemoteOrder{ID: "order_local_" + receipt, Amount: amountMinor, Currency: currency, Receipt: receipt}, nil
}
