package repository

import (
	"context"
	"sort"
	"strings"
	"sync"

	"storefront-service/models"
)

// MemoryStore keeps every entity in process memory. WithTransaction holds the
// write lock for the whole callback and marks the context, so repository calls
// made inside it skip their own locking.
type MemoryStore struct {
	mu     sync.RWMutex
	nextID int64

	users     map[int64]models.User
	addresses map[int64]models.Address
	products  map[int64]models.Product
	brands    map[int64]models.Brand
	bikes     map[int64]models.Bike
	banners   map[int64]models.Banner
	coupons   map[int64]models.Coupon
	orders    map[int64]models.Order
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		nextID:    1,
		users:     make(map[int64]models.User),
		addresses: make(map[int64]models.Address),
		products:  make(map[int64]models.Product),
		brands:    make(map[int64]models.Brand),
		bikes:     make(map[int64]models.Bike),
		banners:   make(map[int64]models.Banner),
		coupons:   make(map[int64]models.Coupon),
		orders:    make(map[int64]models.Order),
	}
}

// Store exposes m through the repository interfaces.
func (m *MemoryStore) Store() Store {
	return Store{
		Tx:        &memoryTx{m},
		Users:     &memoryUsers{m},
		Addresses: &memoryAddresses{m},
		Products:  &memoryProducts{m},
		Brands:    &memoryBrands{m},
		Bikes:     &memoryBikes{m},
		Banners:   &memoryBanners{m},
		Coupons:   &memoryCoupons{m},
		Orders:    &memoryOrders{m},
	}
}

// AddUser registers a user, assigning an ID when none is set.
func (m *MemoryStore) AddUser(u *models.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u.ID == 0 {
		u.ID = m.id()
	}
	m.users[u.ID] = *u
}

type memTxKey struct{}

func isMemTx(ctx context.Context) bool {
	b, _ := ctx.Value(memTxKey{}).(bool)
	return b
}

func (m *MemoryStore) rlock(ctx context.Context) {
	if !isMemTx(ctx) {
		m.mu.RLock()
	}
}

func (m *MemoryStore) runlock(ctx context.Context) {
	if !isMemTx(ctx) {
		m.mu.RUnlock()
	}
}

func (m *MemoryStore) wlock(ctx context.Context) {
	if !isMemTx(ctx) {
		m.mu.Lock()
	}
}

func (m *MemoryStore) wunlock(ctx context.Context) {
	if !isMemTx(ctx) {
		m.mu.Unlock()
	}
}

// id must be called with the write lock held.
func (m *MemoryStore) id() int64 {
	id := m.nextID
	m.nextID++
	return id
}

type memoryTx struct{ m *MemoryStore }

// WithTransaction snapshots the store and restores it when fn fails.
func (tx *memoryTx) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if isMemTx(ctx) {
		return fn(ctx)
	}
	tx.m.mu.Lock()
	defer tx.m.mu.Unlock()

	snap := tx.m.snapshot()
	if err := fn(context.WithValue(ctx, memTxKey{}, true)); err != nil {
		tx.m.restore(snap)
		return err
	}
	return nil
}

type memorySnapshot struct {
	nextID    int64
	products  map[int64]models.Product
	addresses map[int64]models.Address
	coupons   map[int64]models.Coupon
	orders    map[int64]models.Order
}

func (m *MemoryStore) snapshot() memorySnapshot {
	return memorySnapshot{
		nextID:    m.nextID,
		products:  cloneMap(m.products),
		addresses: cloneMap(m.addresses),
		coupons:   cloneMap(m.coupons),
		orders:    cloneMap(m.orders),
	}
}

func (m *MemoryStore) restore(s memorySnapshot) {
	m.nextID = s.nextID
	m.products = s.products
	m.addresses = s.addresses
	m.coupons = s.coupons
	m.orders = s.orders
}

func cloneMap[V any](src map[int64]V) map[int64]V {
	dst := make(map[int64]V, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

func sortedValues[V any](src map[int64]V, keep func(V) bool) []V {
	ids := make([]int64, 0, len(src))
	for id, v := range src {
		if keep == nil || keep(v) {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := make([]V, 0, len(ids))
	for _, id := range ids {
		out = append(out, src[id])
	}
	return out
}

func reversed[V any](s []V) []V {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
	return s
}

// users

type memoryUsers struct{ m *MemoryStore }

func (r *memoryUsers) GetByID(ctx context.Context, id int64) (*models.User, error) {
	r.m.rlock(ctx)
	defer r.m.runlock(ctx)
	u, ok := r.m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (r *memoryUsers) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	r.m.rlock(ctx)
	defer r.m.runlock(ctx)
	for _, u := range r.m.users {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

func (r *memoryUsers) List(ctx context.Context) ([]models.User, error) {
	r.m.rlock(ctx)
	defer r.m.runlock(ctx)
	return reversed(sortedValues(r.m.users, nil)), nil
}

func (r *memoryUsers) UpdateRole(ctx context.Context, id int64, role models.Role) error {
	r.m.wlock(ctx)
	defer r.m.wunlock(ctx)
	u, ok := r.m.users[id]
	if !ok {
		return ErrNotFound
	}
	u.Role = role
	r.m.users[id] = u
	return nil
}

// addresses

type memoryAddresses struct{ m *MemoryStore }

func (r *memoryAddresses) ListByUser(ctx context.Context, userID int64) ([]models.Address, error) {
	r.m.rlock(ctx)
	defer r.m.runlock(ctx)
	out := reversed(sortedValues(r.m.addresses, func(a models.Address) bool { return a.UserID == userID }))
	sort.SliceStable(out, func(i, j int) bool { return out[i].IsDefault && !out[j].IsDefault })
	return out, nil
}

func (r *memoryAddresses) GetByID(ctx context.Context, id int64) (*models.Address, error) {
	r.m.rlock(ctx)
	defer r.m.runlock(ctx)
	a, ok := r.m.addresses[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &a, nil
}

func (r *memoryAddresses) Create(ctx context.Context, a *models.Address) error {
	r.m.wlock(ctx)
	defer r.m.wunlock(ctx)
	a.ID = r.m.id()
	r.m.addresses[a.ID] = *a
	return nil
}

func (r *memoryAddresses) Update(ctx context.Context, a *models.Address) error {
	r.m.wlock(ctx)
	defer r.m.wunlock(ctx)
	if _, ok := r.m.addresses[a.ID]; !ok {
		return ErrNotFound
	}
	r.m.addresses[a.ID] = *a
	return nil
}

func (r *memoryAddresses) Delete(ctx context.Context, id int64) error {
	r.m.wlock(ctx)
	defer r.m.wunlock(ctx)
	if _, ok := r.m.addresses[id]; !ok {
		return ErrNotFound
	}
	delete(r.m.addresses, id)
	return nil
}

func (r *memoryAddresses) ClearDefault(ctx context.Context, userID int64) error {
	r.m.wlock(ctx)
	defer r.m.wunlock(ctx)
	for id, a := range r.m.addresses {
		if a.UserID == userID && a.IsDefault {
			a.IsDefault = false
			r.m.addresses[id] = a
		}
	}
	return nil
}

// products

type memoryProducts struct{ m *MemoryStore }

func (r *memoryProducts) skuTaken(sku string, except int64) bool {
	for id, p := range r.m.products {
		if id != except && strings.EqualFold(p.SKU, sku) {
			return true
		}
	}
	return false
}

func (r *memoryProducts) Create(ctx context.Context, p *models.Product) error {
	r.m.wlock(ctx)
	defer r.m.wunlock(ctx)
	if r.skuTaken(p.SKU, 0) {
		return ErrDuplicate
	}
	p.ID = r.m.id()
	r.m.products[p.ID] = *p
	return nil
}

func (r *memoryProducts) GetByID(ctx context.Context, id int64) (*models.Product, error) {
	r.m.rlock(ctx)
	defer r.m.runlock(ctx)
	p, ok := r.m.products[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (r *memoryProducts) GetForUpdate(ctx context.Context, id int64) (*models.Product, error) {
	return r.GetByID(ctx, id)
}

func (r *memoryProducts) Update(ctx context.Context, p *models.Product) error {
	r.m.wlock(ctx)
	defer r.m.wunlock(ctx)
	if _, ok := r.m.products[p.ID]; !ok {
		return ErrNotFound
	}
	if r.skuTaken(p.SKU, p.ID) {
		return ErrDuplicate
	}
	r.m.products[p.ID] = *p
	return nil
}

func (r *memoryProducts) Delete(ctx context.Context, id int64) error {
	r.m.wlock(ctx)
	defer r.m.wunlock(ctx)
	if _, ok := r.m.products[id]; !ok {
		return ErrNotFound
	}
	delete(r.m.products, id)
	return nil
}

func (r *memoryProducts) List(ctx context.Context, f models.ProductFilter) ([]models.Product, error) {
	r.m.rlock(ctx)
	defer r.m.runlock(ctx)
	q := strings.ToLower(f.Query)
	return reversed(sortedValues(r.m.products, func(p models.Product) bool {
		switch {
		case q != "" && !strings.Contains(strings.ToLower(p.Name), q) && !strings.Contains(strings.ToLower(p.SKU), q):
			return false
		case f.BrandID != 0 && (p.BrandID == nil || *p.BrandID != f.BrandID):
			return false
		case f.BikeID != 0 && (p.BikeID == nil || *p.BikeID != f.BikeID):
			return false
		case f.Category != "" && p.Category != f.Category:
			return false
		case f.ActiveOnly && !p.IsActive:
			return false
		}
		return true
	})), nil
}

func (r *memoryProducts) AdjustStock(ctx context.Context, id int64, delta int) error {
	r.m.wlock(ctx)
	defer r.m.wunlock(ctx)
	p, ok := r.m.products[id]
	if !ok {
		return ErrNotFound
	}
	if p.Stock+delta < 0 {
		return ErrInsufficientStock
	}
	p.Stock += delta
	r.m.products[id] = p
	return nil
}

// brands

type memoryBrands struct{ m *MemoryStore }

func (r *memoryBrands) slugTaken(slug string, except int64) bool {
	for id, b := range r.m.brands {
		if id != except && b.Slug == slug {
			return true
		}
	}
	return false
}

func (r *memoryBrands) Create(ctx context.Context, b *models.Brand) error {
	r.m.wlock(ctx)
	defer r.m.wunlock(ctx)
	if r.slugTaken(b.Slug, 0) {
		return ErrDuplicate
	}
	b.ID = r.m.id()
	r.m.brands[b.ID] = *b
	return nil
}

func (r *memoryBrands) GetByID(ctx context.Context, id int64) (*models.Brand, error) {
	r.m.rlock(ctx)
	defer r.m.runlock(ctx)
	b, ok := r.m.brands[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &b, nil
}

func (r *memoryBrands) Update(ctx context.Context, b *models.Brand) error {
	r.m.wlock(ctx)
	defer r.m.wunlock(ctx)
	if _, ok := r.m.brands[b.ID]; !ok {
		return ErrNotFound
	}
	if r.slugTaken(b.Slug, b.ID) {
		return ErrDuplicate
	}
	r.m.brands[b.ID] = *b
	return nil
}

func (r *memoryBrands) Delete(ctx context.Context, id int64) error {
	r.m.wlock(ctx)
	defer r.m.wunlock(ctx)
	if _, ok := r.m.brands[id]; !ok {
		return ErrNotFound
	}
	delete(r.m.brands, id)
	for bikeID, bike := range r.m.bikes {
		if bike.BrandID == id {
			delete(r.m.bikes, bikeID)
		}
	}
	return nil
}

func (r *memoryBrands) List(ctx context.Context) ([]models.Brand, error) {
	r.m.rlock(ctx)
	defer r.m.runlock(ctx)
	out := sortedValues(r.m.brands, nil)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// bikes

type memoryBikes struct{ m *MemoryStore }

func (r *memoryBikes) Create(ctx context.Context, b *models.Bike) error {
	r.m.wlock(ctx)
	defer r.m.wunlock(ctx)
	b.ID = r.m.id()
	r.m.bikes[b.ID] = *b
	return nil
}

func (r *memoryBikes) GetByID(ctx context.Context, id int64) (*models.Bike, error) {
	r.m.rlock(ctx)
	defer r.m.runlock(ctx)
	b, ok := r.m.bikes[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &b, nil
}

func (r *memoryBikes) Update(ctx context.Context, b *models.Bike) error {
	r.m.wlock(ctx)
	defer r.m.wunlock(ctx)
	if _, ok := r.m.bikes[b.ID]; !ok {
		return ErrNotFound
	}
	r.m.bikes[b.ID] = *b
	return nil
}

func (r *memoryBikes) Delete(ctx context.Context, id int64) error {
	r.m.wlock(ctx)
	defer r.m.wunlock(ctx)
	if _, ok := r.m.bikes[id]; !ok {
		return ErrNotFound
	}
	delete(r.m.bikes, id)
	return nil
}

func (r *memoryBikes) List(ctx context.Context, brandID int64) ([]models.Bike, error) {
	r.m.rlock(ctx)
	defer r.m.runlock(ctx)
	out := sortedValues(r.m.bikes, func(b models.Bike) bool { return brandID == 0 || b.BrandID == brandID })
	sort.SliceStable(out, func(i, j int) bool { return out[i].Model < out[j].Model })
	return out, nil
}

// banners

type memoryBanners struct{ m *MemoryStore }

func (r *memoryBanners) Create(ctx context.Context, b *models.Banner) error {
	r.m.wlock(ctx)
	defer r.m.wunlock(ctx)
	b.ID = r.m.id()
	r.m.banners[b.ID] = *b
	return nil
}

func (r *memoryBanners) GetByID(ctx context.Context, id int64) (*models.Banner, error) {
	r.m.rlock(ctx)
	defer r.m.runlock(ctx)
	b, ok := r.m.banners[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &b, nil
}

func (r *memoryBanners) Update(ctx context.Context, b *models.Banner) error {
	r.m.wlock(ctx)
	defer r.m.wunlock(ctx)
	if _, ok := r.m.banners[b.ID]; !ok {
		return ErrNotFound
	}
	r.m.banners[b.ID] = *b
	return nil
}

func (r *memoryBanners) Delete(ctx context.Context, id int64) error {
	r.m.wlock(ctx)
	defer r.m.wunlock(ctx)
	if _, ok := r.m.banners[id]; !ok {
		return ErrNotFound
	}
	delete(r.m.banners, id)
	return nil
}

func (r *memoryBanners) List(ctx context.Context, activeOnly bool) ([]models.Banner, error) {
	r.m.rlock(ctx)
	defer r.m.runlock(ctx)
	out := sortedValues(r.m.banners, func(b models.Banner) bool { return !activeOnly || b.IsActive })
	sort.SliceStable(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

// coupons

type memoryCoupons struct{ m *MemoryStore }

func (r *memoryCoupons) codeTaken(code string, except int64) bool {
	for id, c := range r.m.coupons {
		if id != except && c.Code == code {
			return true
		}
	}
	return false
}

func (r *memoryCoupons) Create(ctx context.Context, c *models.Coupon) error {
	r.m.wlock(ctx)
	defer r.m.wunlock(ctx)
	if r.codeTaken(c.Code, 0) {
		return ErrDuplicate
	}
	c.ID = r.m.id()
	r.m.coupons[c.ID] = *c
	return nil
}

func (r *memoryCoupons) GetByID(ctx context.Context, id int64) (*models.Coupon, error) {
	r.m.rlock(ctx)
	defer r.m.runlock(ctx)
	c, ok := r.m.coupons[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &c, nil
}

func (r *memoryCoupons) GetByCode(ctx context.Context, code string) (*models.Coupon, error) {
	r.m.rlock(ctx)
	defer r.m.runlock(ctx)
	for _, c := range r.m.coupons {
		if c.Code == code {
			return &c, nil
		}
	}
	return nil, ErrNotFound
}

func (r *memoryCoupons) Update(ctx context.Context, c *models.Coupon) error {
	r.m.wlock(ctx)
	defer r.m.wunlock(ctx)
	old, ok := r.m.coupons[c.ID]
	if !ok {
		return ErrNotFound
	}
	if r.codeTaken(c.Code, c.ID) {
		return ErrDuplicate
	}
	c.UsageCount = old.UsageCount
	r.m.coupons[c.ID] = *c
	return nil
}

func (r *memoryCoupons) Delete(ctx context.Context, id int64) error {
	r.m.wlock(ctx)
	defer r.m.wunlock(ctx)
	if _, ok := r.m.coupons[id]; !ok {
		return ErrNotFound
	}
	delete(r.m.coupons, id)
	return nil
}

func (r *memoryCoupons) List(ctx context.Context) ([]models.Coupon, error) {
	r.m.rlock(ctx)
	defer r.m.runlock(ctx)
	return reversed(sortedValues(r.m.coupons, nil)), nil
}

func (r *memoryCoupons) IncrementUsage(ctx context.Context, id int64) error {
	r.m.wlock(ctx)
	defer r.m.wunlock(ctx)
	c, ok := r.m.coupons[id]
	if !ok {
		return ErrNotFound
	}
	if c.UsageLimit != nil && c.UsageCount >= *c.UsageLimit {
		return ErrCouponExhausted
	}
	c.UsageCount++
	r.m.coupons[id] = c
	return nil
}

// orders

type memoryOrders struct{ m *MemoryStore }

func (r *memoryOrders) Create(ctx context.Context, o *models.Order) error {
	r.m.wlock(ctx)
	defer r.m.wunlock(ctx)
	for _, existing := range r.m.orders {
		if existing.OrderNumber == o.OrderNumber {
			return ErrDuplicate
		}
	}
	o.ID = r.m.id()
	for i := range o.Items {
		o.Items[i].ID = r.m.id()
		o.Items[i].OrderID = o.ID
	}
	stored := *o
	stored.Items = append([]models.OrderItem(nil), o.Items...)
	r.m.orders[o.ID] = stored
	return nil
}

func (r *memoryOrders) get(id int64) (*models.Order, bool) {
	o, ok := r.m.orders[id]
	if !ok {
		return nil, false
	}
	o.Items = append([]models.OrderItem{}, o.Items...)
	return &o, true
}

func (r *memoryOrders) GetByID(ctx context.Context, id int64) (*models.Order, error) {
	r.m.rlock(ctx)
	defer r.m.runlock(ctx)
	o, ok := r.get(id)
	if !ok {
		return nil, ErrNotFound
	}
	return o, nil
}

func (r *memoryOrders) ListByUser(ctx context.Context, userID int64) ([]models.Order, error) {
	r.m.rlock(ctx)
	defer r.m.runlock(ctx)
	return r.list(func(o models.Order) bool { return o.UserID == userID }), nil
}

func (r *memoryOrders) List(ctx context.Context) ([]models.Order, error) {
	r.m.rlock(ctx)
	defer r.m.runlock(ctx)
	return r.list(nil), nil
}

func (r *memoryOrders) list(keep func(models.Order) bool) []models.Order {
	out := reversed(sortedValues(r.m.orders, keep))
	for i := range out {
		out[i].Items = append([]models.OrderItem{}, out[i].Items...)
	}
	return out
}

func (r *memoryOrders) UpdateStatus(ctx context.Context, id int64, status models.OrderStatus, payment models.PaymentStatus) error {
	r.m.wlock(ctx)
	defer r.m.wunlock(ctx)
	o, ok := r.m.orders[id]
	if !ok {
		return ErrNotFound
	}
	o.Status = status
	o.PaymentStatus = payment
	r.m.orders[id] = o
	return nil
}
