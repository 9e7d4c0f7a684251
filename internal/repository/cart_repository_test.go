package repository_test

import (
	"errors"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/atelier-cart/internal/dbmigrate"
	"github.com/nikolayk812/atelier-cart/internal/domain"
	"github.com/nikolayk812/atelier-cart/internal/port"
	"github.com/nikolayk812/atelier-cart/internal/repository"
	"github.com/nikolayk812/atelier-cart/internal/testpg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

type cartRepositorySuite struct {
	suite.Suite

	repo      port.CartRepository
	users     port.UserRepository
	pool      *pgxpool.Pool
	container *postgres.PostgresContainer
	connStr   string
}

// entry point to run the tests in the suite
func TestCartRepositorySuite(t *testing.T) {
	suite.Run(t, new(cartRepositorySuite))
}

// before all tests in the suite
func (suite *cartRepositorySuite) SetupSuite() {
	ctx := suite.T().Context()

	var err error
	suite.container, suite.connStr, err = testpg.Start(ctx)
	suite.Require().NoError(err)

	suite.pool, err = pgxpool.New(ctx, suite.connStr)
	suite.Require().NoError(err)

	suite.repo = repository.NewCart(suite.pool)
	suite.users = repository.NewUser(suite.pool)
}

// after all tests in the suite
func (suite *cartRepositorySuite) TearDownSuite() {
	if suite.pool != nil {
		suite.pool.Close()
	}
	suite.NoError(testpg.Terminate(suite.container))
}

func (suite *cartRepositorySuite) TestMigrationVersion() {
	version, dirty, err := dbmigrate.Version(suite.connStr)
	suite.Require().NoError(err)
	suite.False(dirty)
	suite.Equal(uint(1), version)

	// re-applying is a no-op
	suite.NoError(dbmigrate.Up(suite.connStr))
}

func (suite *cartRepositorySuite) TestCreateCart() {
	defer suite.deleteAll()

	userID := suite.insertUser(false)
	expiresAt := time.Now().Add(time.Hour).UTC().Truncate(time.Microsecond)

	tests := []struct {
		name      string
		owner     domain.Owner
		expiresAt time.Time
		wantError string
	}{
		{
			name:  "user cart: ok",
			owner: domain.UserOwner(userID),
		},
		{
			name:      "session cart: ok",
			owner:     domain.SessionOwner(gofakeit.UUID()),
			expiresAt: expiresAt,
		},
		{
			name:      "session cart without expiry: error",
			owner:     domain.SessionOwner(gofakeit.UUID()),
			wantError: "expiresAt is empty for session cart",
		},
		{
			name:      "empty owner: error",
			owner:     domain.Owner{},
			wantError: "owner: cart owner is empty",
		},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			t := suite.T()
			ctx := t.Context()

			created, err := suite.repo.CreateCart(ctx, tt.owner, tt.expiresAt)
			if tt.wantError != "" {
				require.EqualError(t, err, tt.wantError)
				return
			}
			require.NoError(t, err)

			fetched, err := suite.repo.GetCart(ctx, tt.owner)
			require.NoError(t, err)

			assert.Equal(t, created.ID, fetched.ID)
			assert.Equal(t, tt.owner, fetched.Owner)
			assert.True(t, fetched.ExpiresAt.Equal(tt.expiresAt))
			assert.Empty(t, fetched.Items)
		})
	}
}

func (suite *cartRepositorySuite) TestGetCart_NotFound() {
	ctx := suite.T().Context()

	_, err := suite.repo.GetCart(ctx, domain.SessionOwner(gofakeit.UUID()))
	suite.ErrorIs(err, domain.ErrCartNotFound)

	_, err = suite.repo.GetCart(ctx, domain.UserOwner(uuid.New()))
	suite.ErrorIs(err, domain.ErrCartNotFound)
}

func (suite *cartRepositorySuite) TestAddItem() {
	defer suite.deleteAll()

	t := suite.T()
	ctx := t.Context()

	cart := suite.createGuestCart()
	first := suite.insertSKU(testpg.SKUSpec{Price: 2500, CompareAtPrice: 5000, Inventory: 3})
	second := suite.insertSKU(testpg.SKUSpec{Price: 1200, Inventory: 0, Inactive: true, Status: domain.ListingDraft})

	require.NoError(t, suite.repo.AddItem(ctx, cart.ID, domain.LineItem{SKUID: first.ID, Quantity: 2, PriceAtAdd: 2000}))
	require.NoError(t, suite.repo.AddItem(ctx, cart.ID, domain.LineItem{SKUID: second.ID, Quantity: 1, PriceAtAdd: 1200}))

	err := suite.repo.AddItem(ctx, cart.ID, domain.LineItem{SKUID: first.ID, Quantity: 1, PriceAtAdd: 1})
	require.Error(t, err, "duplicate sku in one cart")

	err = suite.repo.AddItem(ctx, cart.ID, domain.LineItem{SKUID: first.ID, Quantity: 0})
	require.EqualError(t, err, "quantity must be positive")

	fetched, err := suite.repo.GetCart(ctx, cart.Owner)
	require.NoError(t, err)

	want := []domain.LineItem{
		{SKUID: first.ID, Quantity: 2, PriceAtAdd: 2000, SKU: first},
		{SKUID: second.ID, Quantity: 1, PriceAtAdd: 1200, SKU: second},
	}
	assertLineItems(t, want, fetched.Items)
}

func (suite *cartRepositorySuite) TestSetItemQuantity() {
	defer suite.deleteAll()

	t := suite.T()
	ctx := t.Context()

	cart := suite.createGuestCart()
	sku := suite.insertSKU(testpg.SKUSpec{Price: 1000, Inventory: 10})
	require.NoError(t, suite.repo.AddItem(ctx, cart.ID, domain.LineItem{SKUID: sku.ID, Quantity: 1, PriceAtAdd: 1000}))

	updated, err := suite.repo.SetItemQuantity(ctx, cart.ID, sku.ID, 4)
	require.NoError(t, err)
	assert.True(t, updated)

	updated, err = suite.repo.SetItemQuantity(ctx, cart.ID, uuid.New(), 4)
	require.NoError(t, err)
	assert.False(t, updated)

	_, err = suite.repo.SetItemQuantity(ctx, cart.ID, sku.ID, 0)
	require.EqualError(t, err, "quantity must be positive")

	fetched, err := suite.repo.GetCart(ctx, cart.Owner)
	require.NoError(t, err)
	require.Len(t, fetched.Items, 1)
	assert.Equal(t, 4, fetched.Items[0].Quantity)
}

func (suite *cartRepositorySuite) TestRefreshPrices() {
	defer suite.deleteAll()

	t := suite.T()
	ctx := t.Context()

	cart := suite.createGuestCart()
	stale := suite.insertSKU(testpg.SKUSpec{Price: 1500, Inventory: 10})
	fresh := suite.insertSKU(testpg.SKUSpec{Price: 900, Inventory: 10})
	require.NoError(t, suite.repo.AddItem(ctx, cart.ID, domain.LineItem{SKUID: stale.ID, Quantity: 1, PriceAtAdd: 2000}))
	require.NoError(t, suite.repo.AddItem(ctx, cart.ID, domain.LineItem{SKUID: fresh.ID, Quantity: 1, PriceAtAdd: 900}))

	updated, err := suite.repo.RefreshPrices(ctx, cart.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), updated)

	fetched, err := suite.repo.GetCart(ctx, cart.Owner)
	require.NoError(t, err)
	for _, item := range fetched.Items {
		assert.False(t, domain.HasChanged(item))
	}
}

func (suite *cartRepositorySuite) TestGetSKUSnapshots() {
	defer suite.deleteAll()

	t := suite.T()
	ctx := t.Context()

	a := suite.insertSKU(testpg.SKUSpec{Price: 1000, CompareAtPrice: 1500, Inventory: 2})
	b := suite.insertSKU(testpg.SKUSpec{Price: 3000, Inventory: 0, Status: domain.ListingArchived})
	missing := uuid.New()

	snapshots, err := suite.repo.GetSKUSnapshots(ctx, []uuid.UUID{a.ID, b.ID, missing})
	require.NoError(t, err)

	assert.Empty(t, cmp.Diff(map[uuid.UUID]domain.SKUSnapshot{a.ID: a, b.ID: b}, snapshots))

	empty, err := suite.repo.GetSKUSnapshots(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func (suite *cartRepositorySuite) TestDeleteCart() {
	defer suite.deleteAll()

	t := suite.T()
	ctx := t.Context()

	cart := suite.createGuestCart()
	sku := suite.insertSKU(testpg.SKUSpec{Price: 1000, Inventory: 10})
	require.NoError(t, suite.repo.AddItem(ctx, cart.ID, domain.LineItem{SKUID: sku.ID, Quantity: 1, PriceAtAdd: 1000}))

	deleted, err := suite.repo.DeleteCart(ctx, cart.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = suite.repo.DeleteCart(ctx, cart.ID)
	require.NoError(t, err)
	assert.False(t, deleted)

	_, err = suite.repo.GetCart(ctx, cart.Owner)
	assert.ErrorIs(t, err, domain.ErrCartNotFound)
}

func (suite *cartRepositorySuite) TestDeleteExpired() {
	defer suite.deleteAll()

	t := suite.T()
	ctx := t.Context()
	now := time.Now()

	expired, err := suite.repo.CreateCart(ctx, domain.SessionOwner(gofakeit.UUID()), now.Add(-time.Minute))
	require.NoError(t, err)
	alive, err := suite.repo.CreateCart(ctx, domain.SessionOwner(gofakeit.UUID()), now.Add(time.Hour))
	require.NoError(t, err)
	userCart, err := suite.repo.CreateCart(ctx, domain.UserOwner(suite.insertUser(false)), time.Time{})
	require.NoError(t, err)

	purged, err := suite.repo.DeleteExpired(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), purged)

	_, err = suite.repo.GetCart(ctx, expired.Owner)
	assert.ErrorIs(t, err, domain.ErrCartNotFound)
	_, err = suite.repo.GetCart(ctx, alive.Owner)
	assert.NoError(t, err)
	_, err = suite.repo.GetCart(ctx, userCart.Owner)
	assert.NoError(t, err)
}

func (suite *cartRepositorySuite) TestTransact() {
	defer suite.deleteAll()

	t := suite.T()
	ctx := t.Context()

	cart := suite.createGuestCart()
	skus := make([]domain.SKUSnapshot, 5)
	for i := range skus {
		skus[i] = suite.insertSKU(testpg.SKUSpec{Price: 1000, Inventory: 10})
	}

	errBoom := errors.New("boom")

	err := suite.repo.Transact(ctx, func(tx port.CartRepository) error {
		for i, sku := range skus {
			if i == 3 {
				return errBoom
			}
			if err := tx.AddItem(ctx, cart.ID, domain.LineItem{SKUID: sku.ID, Quantity: 1, PriceAtAdd: 1000}); err != nil {
				return err
			}
		}
		return nil
	})
	require.ErrorIs(t, err, errBoom)

	fetched, err := suite.repo.GetCart(ctx, cart.Owner)
	require.NoError(t, err)
	assert.Empty(t, fetched.Items, "rolled back")

	err = suite.repo.Transact(ctx, func(tx port.CartRepository) error {
		// nested transact joins the outer transaction
		return tx.Transact(ctx, func(inner port.CartRepository) error {
			return inner.AddItem(ctx, cart.ID, domain.LineItem{SKUID: skus[0].ID, Quantity: 1, PriceAtAdd: 1000})
		})
	})
	require.NoError(t, err)

	fetched, err = suite.repo.GetCart(ctx, cart.Owner)
	require.NoError(t, err)
	assert.Len(t, fetched.Items, 1)
}

func (suite *cartRepositorySuite) TestNewCartWithTx() {
	defer suite.deleteAll()

	t := suite.T()
	ctx := t.Context()

	sku := suite.insertSKU(testpg.SKUSpec{Price: 1500, Inventory: 3})
	item := domain.LineItem{SKUID: sku.ID, Quantity: 2, PriceAtAdd: 1500}

	// caller owned transaction, rolled back
	tx, err := suite.pool.Begin(ctx)
	require.NoError(t, err)

	txRepo := repository.NewCartWithTx(tx)
	rolledBack, err := txRepo.CreateCart(ctx, domain.SessionOwner(gofakeit.UUID()), time.Now().Add(time.Hour))
	require.NoError(t, err)
	require.NoError(t, txRepo.AddItem(ctx, rolledBack.ID, item))

	fetched, err := txRepo.GetCart(ctx, rolledBack.Owner)
	require.NoError(t, err)
	assert.Len(t, fetched.Items, 1, "visible inside the transaction")

	require.NoError(t, tx.Rollback(ctx))

	_, err = suite.repo.GetCart(ctx, rolledBack.Owner)
	assert.ErrorIs(t, err, domain.ErrCartNotFound)

	// caller owned transaction, committed; Transact runs inline
	tx, err = suite.pool.Begin(ctx)
	require.NoError(t, err)

	txRepo = repository.NewCartWithTx(tx)
	committed, err := txRepo.CreateCart(ctx, domain.SessionOwner(gofakeit.UUID()), time.Now().Add(time.Hour))
	require.NoError(t, err)
	err = txRepo.Transact(ctx, func(inner port.CartRepository) error {
		return inner.AddItem(ctx, committed.ID, item)
	})
	require.NoError(t, err)

	require.NoError(t, tx.Commit(ctx))

	fetched, err = suite.repo.GetCart(ctx, committed.Owner)
	require.NoError(t, err)
	require.Len(t, fetched.Items, 1)
	assert.Equal(t, 2, fetched.Items[0].Quantity)
}

func (suite *cartRepositorySuite) TestUserExists() {
	defer suite.deleteAll()

	t := suite.T()
	ctx := t.Context()

	active := suite.insertUser(false)
	deleted := suite.insertUser(true)

	tests := []struct {
		name      string
		userID    uuid.UUID
		want      bool
		wantError string
	}{
		{name: "active user: ok", userID: active, want: true},
		{name: "soft deleted user: not found", userID: deleted},
		{name: "unknown user: not found", userID: uuid.New()},
		{name: "empty user ID: error", userID: uuid.Nil, wantError: "userID is empty"},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			exists, err := suite.users.UserExists(ctx, tt.userID)
			if tt.wantError != "" {
				require.EqualError(suite.T(), err, tt.wantError)
				return
			}
			require.NoError(suite.T(), err)
			assert.Equal(suite.T(), tt.want, exists)
		})
	}
}

func (suite *cartRepositorySuite) deleteAll() {
	suite.NoError(testpg.Truncate(suite.T().Context(), suite.pool))
}

func (suite *cartRepositorySuite) createGuestCart() domain.Cart {
	cart, err := suite.repo.CreateCart(suite.T().Context(), domain.SessionOwner(gofakeit.UUID()), time.Now().Add(time.Hour))
	suite.Require().NoError(err)
	return cart
}

func (suite *cartRepositorySuite) insertSKU(spec testpg.SKUSpec) domain.SKUSnapshot {
	sku, err := testpg.InsertSKU(suite.T().Context(), suite.pool, spec)
	suite.Require().NoError(err)
	return sku
}

func (suite *cartRepositorySuite) insertUser(deleted bool) uuid.UUID {
	id, err := testpg.InsertUser(suite.T().Context(), suite.pool, deleted)
	suite.Require().NoError(err)
	return id
}

func assertLineItems(t *testing.T, expected, actual []domain.LineItem) {
	t.Helper()

	opts := cmp.Options{
		cmpopts.IgnoreFields(domain.LineItem{}, "CreatedAt"),
	}

	diff := cmp.Diff(expected, actual, opts)
	assert.Empty(t, diff)

	for _, item := range actual {
		assert.False(t, item.CreatedAt.IsZero())
	}
}
