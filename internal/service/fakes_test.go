package service

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nikolayk812/atelier-cart/internal/cache"
	"github.com/nikolayk812/atelier-cart/internal/domain"
	"github.com/nikolayk812/atelier-cart/internal/port"
)

var errInjected = errors.New("injected failure")

type memCart struct {
	cart  domain.Cart
	items []domain.LineItem
}

type memState struct {
	carts map[uuid.UUID]*memCart
}

func (s memState) clone() memState {
	out := memState{carts: make(map[uuid.UUID]*memCart, len(s.carts))}
	for id, c := range s.carts {
		out.carts[id] = &memCart{cart: c.cart, items: slices.Clone(c.items)}
	}
	return out
}

// memRepository is an in-memory port.CartRepository. Transact works on a copy of the
// state which replaces the original only when fn succeeds.
type memRepository struct {
	m     *sync.RWMutex
	state *memState
	skus  map[uuid.UUID]domain.SKUSnapshot

	// failOnWrite makes the n-th item write inside a transaction fail, 0 disables it
	failOnWrite int
	writes      int
	getErr      error

	// beforeTransact runs ahead of the transaction snapshot, to model a concurrent writer
	beforeTransact func()
}

func newMemRepository() *memRepository {
	return &memRepository{
		m:     &sync.RWMutex{},
		state: &memState{carts: map[uuid.UUID]*memCart{}},
		skus:  map[uuid.UUID]domain.SKUSnapshot{},
	}
}

func (r *memRepository) addSKU(sku domain.SKUSnapshot) domain.SKUSnapshot {
	if sku.ID == uuid.Nil {
		sku.ID = uuid.New()
	}
	if sku.ListingID == uuid.Nil {
		sku.ListingID = uuid.New()
	}
	if sku.ListingStatus == "" {
		sku.ListingStatus = domain.ListingPublic
	}
	r.skus[sku.ID] = sku
	return sku
}

func (r *memRepository) seedCart(owner domain.Owner, expiresAt time.Time, items ...domain.LineItem) domain.Cart {
	c := domain.Cart{ID: uuid.New(), Owner: owner, ExpiresAt: expiresAt}
	r.state.carts[c.ID] = &memCart{cart: c, items: items}
	return c
}

func (r *memRepository) find(owner domain.Owner) *memCart {
	for _, c := range r.state.carts {
		if c.cart.Owner == owner {
			return c
		}
	}
	return nil
}

func (r *memRepository) GetCart(ctx context.Context, owner domain.Owner) (domain.Cart, error) {
	r.m.RLock()
	defer r.m.RUnlock()

	if err := ctx.Err(); err != nil {
		return domain.Cart{}, err
	}
	if r.getErr != nil {
		return domain.Cart{}, r.getErr
	}

	c := r.find(owner)
	if c == nil {
		return domain.Cart{}, domain.ErrCartNotFound
	}

	cart := c.cart
	cart.Items = nil
	for _, item := range c.items {
		item.SKU = r.skus[item.SKUID]
		cart.Items = append(cart.Items, item)
	}
	return cart, nil
}

func (r *memRepository) CreateCart(_ context.Context, owner domain.Owner, expiresAt time.Time) (domain.Cart, error) {
	r.m.Lock()
	defer r.m.Unlock()

	if r.find(owner) != nil {
		return domain.Cart{}, errors.New("duplicate cart owner")
	}
	c := domain.Cart{ID: uuid.New(), Owner: owner, ExpiresAt: expiresAt}
	r.state.carts[c.ID] = &memCart{cart: c}
	return c, nil
}

func (r *memRepository) DeleteCart(_ context.Context, cartID uuid.UUID) (bool, error) {
	r.m.Lock()
	defer r.m.Unlock()

	_, ok := r.state.carts[cartID]
	delete(r.state.carts, cartID)
	return ok, nil
}

func (r *memRepository) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	r.m.Lock()
	defer r.m.Unlock()

	var purged int64
	for id, c := range r.state.carts {
		if c.cart.Owner.IsGuest() && c.cart.IsExpired(now) {
			delete(r.state.carts, id)
			purged++
		}
	}
	return purged, nil
}

func (r *memRepository) write() error {
	r.writes++
	if r.failOnWrite > 0 && r.writes == r.failOnWrite {
		return errInjected
	}
	return nil
}

func (r *memRepository) AddItem(_ context.Context, cartID uuid.UUID, item domain.LineItem) error {
	r.m.Lock()
	defer r.m.Unlock()

	if err := r.write(); err != nil {
		return err
	}

	c, ok := r.state.carts[cartID]
	if !ok {
		return errors.New("cart does not exist")
	}
	item.SKU = domain.SKUSnapshot{}
	c.items = append(c.items, item)
	return nil
}

func (r *memRepository) SetItemQuantity(_ context.Context, cartID, skuID uuid.UUID, quantity int) (bool, error) {
	r.m.Lock()
	defer r.m.Unlock()

	if err := r.write(); err != nil {
		return false, err
	}

	c, ok := r.state.carts[cartID]
	if !ok {
		return false, nil
	}
	for i := range c.items {
		if c.items[i].SKUID == skuID {
			c.items[i].Quantity = quantity
			return true, nil
		}
	}
	return false, nil
}

func (r *memRepository) RefreshPrices(_ context.Context, cartID uuid.UUID) (int64, error) {
	r.m.Lock()
	defer r.m.Unlock()

	c, ok := r.state.carts[cartID]
	if !ok {
		return 0, nil
	}

	var updated int64
	for i := range c.items {
		current := r.skus[c.items[i].SKUID].Price
		if c.items[i].PriceAtAdd != current {
			c.items[i].PriceAtAdd = current
			updated++
		}
	}
	return updated, nil
}

func (r *memRepository) GetSKUSnapshots(_ context.Context, skuIDs []uuid.UUID) (map[uuid.UUID]domain.SKUSnapshot, error) {
	r.m.RLock()
	defer r.m.RUnlock()

	result := make(map[uuid.UUID]domain.SKUSnapshot, len(skuIDs))
	for _, id := range skuIDs {
		if sku, ok := r.skus[id]; ok {
			result[id] = sku
		}
	}
	return result, nil
}

func (r *memRepository) Transact(ctx context.Context, fn func(repo port.CartRepository) error) error {
	if r.beforeTransact != nil {
		r.beforeTransact()
	}

	r.m.Lock()
	snapshot := r.state.clone()
	r.m.Unlock()

	tx := &memRepository{
		m:           &sync.RWMutex{},
		state:       &snapshot,
		skus:        r.skus,
		failOnWrite: r.failOnWrite,
	}

	if err := fn(tx); err != nil {
		return err
	}

	r.m.Lock()
	*r.state = *tx.state
	r.m.Unlock()

	return nil
}

type fakeUsers struct {
	existing map[uuid.UUID]bool
	err      error
}

func (f *fakeUsers) UserExists(_ context.Context, userID uuid.UUID) (bool, error) {
	return f.existing[userID], f.err
}

type fakeLimiter struct {
	deny  bool
	calls []string
}

func (f *fakeLimiter) Allow(_ context.Context, key string, _ port.RateLimitPolicy) (port.RateLimitDecision, error) {
	f.calls = append(f.calls, key)
	if f.deny {
		return port.RateLimitDecision{Allowed: false, Message: "Too many attempts, please retry in 1m0s.", RetryAfter: time.Minute}, nil
	}
	return port.RateLimitDecision{Allowed: true}, nil
}

// fakeCache records invalidated tags and keeps values in memory.
type fakeCache struct {
	m           sync.Mutex
	values      map[string][]byte
	tags        map[string][]string
	invalidated []string
	gets        int
}

func newFakeCache() *fakeCache {
	return &fakeCache{values: map[string][]byte{}, tags: map[string][]string{}}
}

func (f *fakeCache) Get(ctx context.Context, key string) ([]byte, error) {
	f.m.Lock()
	defer f.m.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f.gets++
	v, ok := f.values[key]
	if !ok {
		return nil, cache.ErrCacheMiss
	}
	return v, nil
}

func (f *fakeCache) Set(_ context.Context, key string, value []byte, _ time.Duration, tags ...string) error {
	f.m.Lock()
	defer f.m.Unlock()

	f.values[key] = value
	for _, tag := range tags {
		f.tags[tag] = append(f.tags[tag], key)
	}
	return nil
}

func (f *fakeCache) Invalidate(_ context.Context, tags ...string) error {
	f.m.Lock()
	defer f.m.Unlock()

	for _, tag := range tags {
		for _, key := range f.tags[tag] {
			delete(f.values, key)
		}
		delete(f.tags, tag)
	}
	f.invalidated = append(f.invalidated, tags...)
	return nil
}
