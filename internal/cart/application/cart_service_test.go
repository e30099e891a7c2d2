package application

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wyfcoding/ecommerce/internal/cart/domain"
	catalogdomain "github.com/wyfcoding/ecommerce/internal/catalog/domain"
)

var errDuplicateActiveCart = errors.New("duplicate entry for key idx_active_user")

type fakeCartRepo struct {
	mu     sync.Mutex
	nextID uint
	carts  map[uint]*domain.Cart

	// beforeSave 在下一次 Save 前执行一次，用来在读和写之间插入并发动作
	beforeSave func()
}

func newFakeCartRepo() *fakeCartRepo {
	return &fakeCartRepo{carts: make(map[uint]*domain.Cart)}
}

func (r *fakeCartRepo) GetActiveByUserID(_ context.Context, userID uint) (*domain.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.carts {
		if c.UserID == userID && c.Status == domain.CartStatusActive {
			copied := *c
			copied.Items = append([]domain.CartItem(nil), c.Items...)
			return &copied, nil
		}
	}
	return nil, domain.ErrCartNotFound
}

func (r *fakeCartRepo) Save(_ context.Context, cart *domain.Cart) error {
	if hook := r.beforeSave; hook != nil {
		r.beforeSave = nil
		hook()
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if cart.ActiveKey != nil {
		for id, c := range r.carts {
			if id != cart.ID && c.ActiveKey != nil && *c.ActiveKey == *cart.ActiveKey {
				return errDuplicateActiveCart
			}
		}
	}
	if cart.ID == 0 {
		r.nextID++
		cart.ID = r.nextID
	}
	r.carts[cart.ID] = cart
	return nil
}

func (r *fakeCartRepo) UpsertItem(_ context.Context, cartID, productID uint, qty int, price decimal.Decimal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.carts[cartID].AddItem(productID, qty, price)
	return nil
}

func (r *fakeCartRepo) UpdateItemQuantity(_ context.Context, cartID, productID uint, qty int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.carts[cartID].SetItemQuantity(productID, qty)
	return nil
}

func (r *fakeCartRepo) DeleteItem(_ context.Context, cartID, productID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.carts[cartID].RemoveItem(productID)
	return nil
}

func (r *fakeCartRepo) ClearItems(_ context.Context, cartID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.carts[cartID].Items = nil
	return nil
}

func (r *fakeCartRepo) MarkConverted(_ context.Context, cartID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.carts[cartID].Status = domain.CartStatusConverted
	r.carts[cartID].ActiveKey = nil
	return nil
}

type fakeProductRepo struct {
	products map[uint]*catalogdomain.Product
}

func (r *fakeProductRepo) Save(_ context.Context, p *catalogdomain.Product) error {
	r.products[p.ID] = p
	return nil
}

func (r *fakeProductRepo) GetByID(_ context.Context, id uint) (*catalogdomain.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, catalogdomain.ErrProductNotFound
	}
	copied := *p
	return &copied, nil
}

func (r *fakeProductRepo) GetWithLock(ctx context.Context, id uint) (*catalogdomain.Product, error) {
	return r.GetByID(ctx, id)
}

func (r *fakeProductRepo) List(_ context.Context, _ string, _, _ int) ([]*catalogdomain.Product, int64, error) {
	return nil, 0, nil
}

func (r *fakeProductRepo) DecrementStock(_ context.Context, _ uint, _ int) error { return nil }
func (r *fakeProductRepo) IncrementStock(_ context.Context, _ uint, _ int) error { return nil }

func (r *fakeProductRepo) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func newCartService() (*CartCommandService, *CartQueryService, *fakeCartRepo, *fakeProductRepo) {
	carts := newFakeCartRepo()
	products := &fakeProductRepo{products: make(map[uint]*catalogdomain.Product)}
	return NewCartCommandService(carts, products, nil), NewCartQueryService(carts), carts, products
}

func seedProduct(products *fakeProductRepo, id uint, listPrice, salePrice string, active bool) {
	p := &catalogdomain.Product{
		Name:   "product",
		Price:  decimal.RequireFromString(listPrice),
		Stock:  100,
		Active: active,
	}
	p.ID = id
	if salePrice != "" {
		p.SalePrice = decimal.NewNullDecimal(decimal.RequireFromString(salePrice))
	}
	products.products[id] = p
}

func TestAddItemCreatesCartAndSnapshotsSalePrice(t *testing.T) {
	cmd, query, _, products := newCartService()
	seedProduct(products, 10, "9.99", "7.50", true)

	err := cmd.AddItem(context.Background(), AddItemCommand{UserID: 1, ProductID: 10, Quantity: 2})
	require.NoError(t, err)

	cart, err := query.GetCart(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 2, cart.Items[0].Quantity)
	// 快照取生效价：促销价优先于标价
	assert.True(t, cart.Items[0].Price.Equal(decimal.RequireFromString("7.50")))
}

func TestAddItemMerges(t *testing.T) {
	cmd, query, _, products := newCartService()
	seedProduct(products, 10, "9.99", "", true)

	require.NoError(t, cmd.AddItem(context.Background(), AddItemCommand{UserID: 1, ProductID: 10, Quantity: 2}))
	require.NoError(t, cmd.AddItem(context.Background(), AddItemCommand{UserID: 1, ProductID: 10, Quantity: 3}))

	cart, err := query.GetCart(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 5, cart.Items[0].Quantity)
}

func TestAddItemRejectsNonPositiveQuantity(t *testing.T) {
	cmd, _, _, products := newCartService()
	seedProduct(products, 10, "9.99", "", true)

	err := cmd.AddItem(context.Background(), AddItemCommand{UserID: 1, ProductID: 10, Quantity: 0})
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)

	err = cmd.AddItem(context.Background(), AddItemCommand{UserID: 1, ProductID: 10, Quantity: -1})
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
}

func TestAddItemRejectsInactiveProduct(t *testing.T) {
	cmd, _, _, products := newCartService()
	seedProduct(products, 10, "9.99", "", false)

	err := cmd.AddItem(context.Background(), AddItemCommand{UserID: 1, ProductID: 10, Quantity: 1})
	assert.ErrorIs(t, err, catalogdomain.ErrProductInactive)
}

func TestAddItemUnknownProduct(t *testing.T) {
	cmd, _, _, _ := newCartService()
	err := cmd.AddItem(context.Background(), AddItemCommand{UserID: 1, ProductID: 404, Quantity: 1})
	assert.ErrorIs(t, err, catalogdomain.ErrProductNotFound)
}

func TestUpdateItemQuantitySetsExactValue(t *testing.T) {
	cmd, query, _, products := newCartService()
	seedProduct(products, 10, "9.99", "", true)
	require.NoError(t, cmd.AddItem(context.Background(), AddItemCommand{UserID: 1, ProductID: 10, Quantity: 2}))

	require.NoError(t, cmd.UpdateItemQuantity(context.Background(), UpdateItemQuantityCommand{UserID: 1, ProductID: 10, Quantity: 7}))

	cart, _ := query.GetCart(context.Background(), 1)
	assert.Equal(t, 7, cart.FindItem(10).Quantity)
}

func TestUpdateItemQuantityZeroRemoves(t *testing.T) {
	cmd, query, _, products := newCartService()
	seedProduct(products, 10, "9.99", "", true)
	require.NoError(t, cmd.AddItem(context.Background(), AddItemCommand{UserID: 1, ProductID: 10, Quantity: 2}))

	require.NoError(t, cmd.UpdateItemQuantity(context.Background(), UpdateItemQuantityCommand{UserID: 1, ProductID: 10, Quantity: 0}))

	cart, _ := query.GetCart(context.Background(), 1)
	assert.True(t, cart.IsEmpty())
}

func TestUpdateItemQuantityWithoutCartIsNoop(t *testing.T) {
	cmd, _, _, _ := newCartService()
	err := cmd.UpdateItemQuantity(context.Background(), UpdateItemQuantityCommand{UserID: 1, ProductID: 10, Quantity: 3})
	assert.NoError(t, err)
}

func TestRemoveItemAndClear(t *testing.T) {
	cmd, query, _, products := newCartService()
	seedProduct(products, 10, "5.00", "", true)
	seedProduct(products, 11, "3.00", "", true)
	require.NoError(t, cmd.AddItem(context.Background(), AddItemCommand{UserID: 1, ProductID: 10, Quantity: 1}))
	require.NoError(t, cmd.AddItem(context.Background(), AddItemCommand{UserID: 1, ProductID: 11, Quantity: 2}))

	require.NoError(t, cmd.RemoveItem(context.Background(), RemoveItemCommand{UserID: 1, ProductID: 10}))
	cart, _ := query.GetCart(context.Background(), 1)
	assert.Len(t, cart.Items, 1)

	require.NoError(t, cmd.ClearCart(context.Background(), ClearCartCommand{UserID: 1}))
	cart, _ = query.GetCart(context.Background(), 1)
	assert.True(t, cart.IsEmpty())
}

func TestRemoveThenReAddSameProduct(t *testing.T) {
	cmd, query, _, products := newCartService()
	seedProduct(products, 10, "5.00", "", true)
	require.NoError(t, cmd.AddItem(context.Background(), AddItemCommand{UserID: 1, ProductID: 10, Quantity: 2}))

	require.NoError(t, cmd.RemoveItem(context.Background(), RemoveItemCommand{UserID: 1, ProductID: 10}))
	require.NoError(t, cmd.AddItem(context.Background(), AddItemCommand{UserID: 1, ProductID: 10, Quantity: 3}))

	cart, err := query.GetCart(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 3, cart.Items[0].Quantity)
}

func TestGetOrCreateActiveCartLosesInsertRace(t *testing.T) {
	cmd, _, carts, _ := newCartService()

	// 在读到"无购物车"之后、插入之前，另一请求先建了一个 ACTIVE 购物车
	var winner *domain.Cart
	carts.beforeSave = func() {
		winner = domain.NewActiveCart(9)
		require.NoError(t, carts.Save(context.Background(), winner))
	}

	cart, err := cmd.GetOrCreateActiveCart(context.Background(), 9)
	require.NoError(t, err)
	assert.Equal(t, winner.ID, cart.ID)

	active := 0
	for _, c := range carts.carts {
		if c.Status == domain.CartStatusActive {
			active++
		}
	}
	assert.Equal(t, 1, active)
}

func TestGetCartReturnsEmptyCartWhenAbsent(t *testing.T) {
	_, query, _, _ := newCartService()

	cart, err := query.GetCart(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, uint(42), cart.UserID)
	assert.True(t, cart.IsEmpty())

	total, err := query.GetCartTotal(context.Background(), 42)
	require.NoError(t, err)
	assert.True(t, total.IsZero())

	count, err := query.GetCartItemCount(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}
