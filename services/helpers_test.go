package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"storefront-service/apperrors"
	"storefront-service/models"
	"storefront-service/payment"
	"storefront-service/repository"
)

const (
	buyerEmail = "buyer@example.com"
	otherEmail = "other@example.com"
	adminEmail = "admin@example.com"
)

type fixture struct {
	mem   *repository.MemoryStore
	store repository.Store

	buyer, other, admin *models.User
	address, otherAddr  *models.Address
	chain, pads, oldKit *models.Product
	save10              *models.Coupon
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func intPtr(n int) *int { return &n }

func localDate(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.Local)
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	f := &fixture{mem: repository.NewMemoryStore()}
	f.store = f.mem.Store()

	f.buyer = &models.User{Email: buyerEmail, Name: "Buyer", Role: models.RoleUser}
	f.other = &models.User{Email: otherEmail, Name: "Other", Role: models.RoleUser}
	f.admin = &models.User{Email: adminEmail, Name: "Admin", Role: models.RoleAdmin}
	f.mem.AddUser(f.buyer)
	f.mem.AddUser(f.other)
	f.mem.AddUser(f.admin)

	f.address = &models.Address{UserID: f.buyer.ID, FullName: "Buyer", Phone: "9876543210",
		Line1: "1 MG Road", City: "Pune", State: "MH", Pincode: "411001", IsDefault: true}
	f.otherAddr = &models.Address{UserID: f.other.ID, FullName: "Other", Phone: "9123456789",
		Line1: "2 Park St", City: "Kolkata", State: "WB", Pincode: "700016", IsDefault: true}
	require.NoError(t, f.store.Addresses.Create(ctx, f.address))
	require.NoError(t, f.store.Addresses.Create(ctx, f.otherAddr))

	f.chain = &models.Product{SKU: "CHAIN-01", Name: "Chain Kit", Slug: "chain-kit", Price: dec("300"), Stock: 5, IsActive: true}
	f.pads = &models.Product{SKU: "PAD-01", Name: "Brake Pads", Slug: "brake-pads", Price: dec("250"), SalePrice: decPtr("200"), Stock: 1, IsActive: true}
	f.oldKit = &models.Product{SKU: "OLD-01", Name: "Old Kit", Slug: "old-kit", Price: dec("100"), Stock: 10, IsActive: false}
	for _, p := range []*models.Product{f.chain, f.pads, f.oldKit} {
		require.NoError(t, f.store.Products.Create(ctx, p))
	}

	f.save10 = &models.Coupon{Code: "SAVE10", DiscountType: models.DiscountPercent, DiscountValue: dec("10"),
		MinOrderValue: decPtr("500"), UsageLimit: intPtr(100), IsActive: true,
		ValidFrom: localDate(2000, 1, 1), ValidUntil: localDate(2099, 12, 31)}
	require.NoError(t, f.store.Coupons.Create(ctx, f.save10))
	return f
}

func (f *fixture) stock(t *testing.T, id int64) int {
	t.Helper()
	p, err := f.store.Products.GetByID(context.Background(), id)
	require.NoError(t, err)
	return p.Stock
}

func requireKind(t *testing.T, err error, kind apperrors.Kind) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, kind, apperrors.KindOf(err), "error: %v", err)
}

type published struct {
	event    models.OrderEvent
	priority uint8
	delay    time.Duration
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []published
}

func (p *recordingPublisher) PublishOrderEvent(_ context.Context, e models.OrderEvent, priority uint8) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, published{event: e, priority: priority})
	return nil
}

func (p *recordingPublisher) PublishDelayedEvent(_ context.Context, e models.OrderEvent, delay time.Duration) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, published{event: e, delay: delay})
	return nil
}

// hookGateway calls before while CreateOrder sits between its checks and the transaction.
type hookGateway struct {
	before func()
	err    error
	calls  int
}

func (g *hookGateway) CreateOrder(ctx context.Context, amountMinor int64, currency, receipt string) (payment.RemoteOrder, error) {
	g.calls++
	if g.before != nil {
		g.before()
	}
	if g.err != nil {
		return payment.RemoteOrder{}, g.err
	}
	return payment.LocalGateway{}.CreateOrder(ctx, amountMinor, currency, receipt)
}
