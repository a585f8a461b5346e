package checkout

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/MikeMC777/shop-service/internal/apperr"
	"github.com/MikeMC777/shop-service/internal/cart"
	"github.com/MikeMC777/shop-service/internal/logger"
	"github.com/MikeMC777/shop-service/internal/order"
	"github.com/MikeMC777/shop-service/internal/product"
)

type fakeCatalog struct {
	mu     sync.Mutex
	prices map[string]string
	err    error
}

func (f *fakeCatalog) GetByID(_ context.Context, id string) (*product.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	price, ok := f.prices[id]
	if !ok {
		return nil, product.ErrNotFound
	}
	return &product.Product{ID: id, Name: id, Price: decimal.RequireFromString(price)}, nil
}

type fakeOrders struct {
	mu      sync.Mutex
	created []order.Order
	err     error
}

func (f *fakeOrders) Create(_ context.Context, o *order.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.created = append(f.created, *o)
	return nil
}

type fakePublisher struct {
	mu     sync.Mutex
	orders []string
	err    error
}

func (f *fakePublisher) OrderPlaced(_ context.Context, o order.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.orders = append(f.orders, o.ID)
	return f.err
}

type fixture struct {
	carts   *cart.MemoryRegistry
	catalog *fakeCatalog
	orders  *fakeOrders
	events  *fakePublisher
	svc     *Service
}

func newFixture(prices map[string]string) *fixture {
	f := &fixture{
		carts:   cart.NewMemoryRegistry(),
		catalog: &fakeCatalog{prices: prices},
		orders:  &fakeOrders{},
		events:  &fakePublisher{},
	}
	f.svc = NewService(f.carts, f.catalog, f.orders, f.events, logger.Discard(), 4)
	return f
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestCheckout_SingleItem(t *testing.T) {
	f := newFixture(map[string]string{"p1": "10.00"})
	ctx := context.Background()
	_, err := f.carts.Add(ctx, "u1", "p1", 2)
	require.NoError(t, err)

	o, err := f.svc.Checkout(ctx, "u1")
	require.NoError(t, err)

	assert.True(t, o.Total.Equal(dec("20.00")), "total=%s", o.Total)
	require.Len(t, o.Items, 1)
	assert.Equal(t, "p1", o.Items[0].ProductID)
	assert.Equal(t, 2, o.Items[0].Quantity)
	assert.True(t, o.Items[0].Price.Equal(dec("10.00")))
	assert.Equal(t, o.ID, o.Items[0].OrderID)
	assert.Equal(t, order.StatusPlaced, o.Status)

	entries, err := f.carts.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, entries)

	require.Len(t, f.orders.created, 1)
	assert.Equal(t, []string{o.ID}, f.events.orders)
}

func TestCheckout_DropsMissingProducts(t *testing.T) {
	f := newFixture(map[string]string{"p1": "5.00"})
	ctx := context.Background()
	_, _ = f.carts.Add(ctx, "u1", "p1", 1)
	_, _ = f.carts.Add(ctx, "u1", "missing", 3)

	o, err := f.svc.Checkout(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, o.Total.Equal(dec("5.00")))
	require.Len(t, o.Items, 1)
	assert.Equal(t, "p1", o.Items[0].ProductID)

	entries, _ := f.carts.Get(ctx, "u1")
	assert.Empty(t, entries)
}

func TestCheckout_AllProductsMissing_ZeroOrder(t *testing.T) {
	f := newFixture(map[string]string{})
	ctx := context.Background()
	_, _ = f.carts.Add(ctx, "u1", "gone", 2)

	o, err := f.svc.Checkout(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, o.Total.IsZero())
	assert.Empty(t, o.Items)
	require.Len(t, f.orders.created, 1)

	entries, _ := f.carts.Get(ctx, "u1")
	assert.Empty(t, entries)
}

func TestCheckout_EmptyCart(t *testing.T) {
	f := newFixture(map[string]string{"p1": "1.00"})
	ctx := context.Background()

	o, err := f.svc.Checkout(ctx, "u1")
	assert.Nil(t, o)
	assert.ErrorIs(t, err, apperr.ErrEmptyCart)
	assert.Empty(t, f.orders.created)
	assert.Empty(t, f.events.orders)

	entries, _ := f.carts.Get(ctx, "u1")
	assert.Empty(t, entries)
}

func TestCheckout_WriteFailureKeepsCart(t *testing.T) {
	f := newFixture(map[string]string{"p1": "3.00"})
	f.orders.err = errors.New("disk full")
	ctx := context.Background()
	_, _ = f.carts.Add(ctx, "u1", "p1", 2)

	_, err := f.svc.Checkout(ctx, "u1")
	assert.ErrorIs(t, err, apperr.ErrPersistence)

	entries, _ := f.carts.Get(ctx, "u1")
	assert.Equal(t, []cart.Entry{{ProductID: "p1", Quantity: 2}}, entries)
	assert.Empty(t, f.events.orders)

	// retry succeeds once the store recovers
	f.orders.err = nil
	o, err := f.svc.Checkout(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, o.Total.Equal(dec("6.00")))
}

func TestCheckout_StoreTimeoutIsUnavailable(t *testing.T) {
	f := newFixture(map[string]string{"p1": "3.00"})
	f.orders.err = apperr.Store("order.create", context.DeadlineExceeded)
	ctx := context.Background()
	_, _ = f.carts.Add(ctx, "u1", "p1", 1)

	_, err := f.svc.Checkout(ctx, "u1")
	assert.ErrorIs(t, err, apperr.ErrUnavailable)

	entries, _ := f.carts.Get(ctx, "u1")
	assert.Len(t, entries, 1)
}

func TestCheckout_CatalogFailureWritesNothing(t *testing.T) {
	f := newFixture(map[string]string{"p1": "3.00"})
	f.catalog.err = errors.New("catalog down")
	ctx := context.Background()
	_, _ = f.carts.Add(ctx, "u1", "p1", 1)

	_, err := f.svc.Checkout(ctx, "u1")
	assert.ErrorIs(t, err, apperr.ErrPersistence)
	assert.Empty(t, f.orders.created)

	entries, _ := f.carts.Get(ctx, "u1")
	assert.Len(t, entries, 1)
}

func TestCheckout_PublishFailureDoesNotFail(t *testing.T) {
	f := newFixture(map[string]string{"p1": "3.00"})
	f.events.err = errors.New("broker down")
	ctx := context.Background()
	_, _ = f.carts.Add(ctx, "u1", "p1", 1)

	o, err := f.svc.Checkout(ctx, "u1")
	require.NoError(t, err)
	assert.NotNil(t, o)
}

func TestCheckout_TotalMatchesItems(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	prices := map[string]string{}
	for i := 0; i < 20; i++ {
		prices[fmt.Sprintf("p%d", i)] = fmt.Sprintf("%d.%02d", rng.Intn(500), rng.Intn(100))
	}
	f := newFixture(prices)
	ctx := context.Background()

	for round := 0; round < 25; round++ {
		user := fmt.Sprintf("u%d", round)
		for n := rng.Intn(8) + 1; n > 0; n-- {
			_, err := f.carts.Add(ctx, user, fmt.Sprintf("p%d", rng.Intn(25)), rng.Intn(5)+1)
			require.NoError(t, err)
		}
		o, err := f.svc.Checkout(ctx, user)
		require.NoError(t, err)

		sum := decimal.Zero
		for _, it := range o.Items {
			sum = sum.Add(it.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
		}
		assert.True(t, o.Total.Equal(sum), "round %d: total=%s sum=%s", round, o.Total, sum)
	}
}

func TestCheckout_ConcurrentCheckoutsPlaceOneOrder(t *testing.T) {
	f := newFixture(map[string]string{"p1": "2.50"})
	ctx := context.Background()
	_, _ = f.carts.Add(ctx, "u1", "p1", 4)

	var (
		mu      sync.Mutex
		placed  int
		empties int
	)
	g := new(errgroup.Group)
	for i := 0; i < 10; i++ {
		g.Go(func() error {
			_, err := f.svc.Checkout(ctx, "u1")
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				placed++
			case errors.Is(err, apperr.ErrEmptyCart):
				empties++
			default:
				return err
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
	assert.Equal(t, 1, placed)
	assert.Equal(t, 9, empties)
	assert.Len(t, f.orders.created, 1)
}

func TestCheckout_PriceCapturedAtCheckout(t *testing.T) {
	f := newFixture(map[string]string{"p1": "10.00"})
	ctx := context.Background()
	_, _ = f.carts.Add(ctx, "u1", "p1", 1)

	o, err := f.svc.Checkout(ctx, "u1")
	require.NoError(t, err)

	f.catalog.mu.Lock()
	f.catalog.prices["p1"] = "99.00"
	f.catalog.mu.Unlock()

	assert.True(t, f.orders.created[0].Items[0].Price.Equal(dec("10.00")))
	assert.True(t, o.Items[0].Price.Equal(dec("10.00")))
}
