package application

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wyfcoding/ecommerce/internal/catalog/domain"
)

type memProductRepo struct {
	mu       sync.Mutex
	nextID   uint
	products map[uint]*domain.Product
}

func newMemProductRepo() *memProductRepo {
	return &memProductRepo{products: make(map[uint]*domain.Product)}
}

func (r *memProductRepo) Save(_ context.Context, p *domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p.ID == 0 {
		r.nextID++
		p.ID = r.nextID
	}
	copied := *p
	r.products[p.ID] = &copied
	return nil
}

func (r *memProductRepo) GetByID(_ context.Context, id uint) (*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	copied := *p
	return &copied, nil
}

func (r *memProductRepo) GetWithLock(ctx context.Context, id uint) (*domain.Product, error) {
	return r.GetByID(ctx, id)
}

func (r *memProductRepo) List(_ context.Context, category string, offset, limit int) ([]*domain.Product, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var all []*domain.Product
	for _, p := range r.products {
		if p.Active && (category == "" || p.Category == category) {
			copied := *p
			all = append(all, &copied)
		}
	}
	total := int64(len(all))
	if offset >= len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (r *memProductRepo) DecrementStock(_ context.Context, productID uint, qty int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[productID]
	if !ok {
		return domain.ErrProductNotFound
	}
	if p.Stock < qty {
		return &domain.InsufficientStockError{
			ProductID:   p.ID,
			ProductName: p.Name,
			Requested:   qty,
			Available:   p.Stock,
		}
	}
	p.Stock -= qty
	return nil
}

func (r *memProductRepo) IncrementStock(_ context.Context, productID uint, qty int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[productID]
	if !ok {
		return domain.ErrProductNotFound
	}
	p.Stock += qty
	return nil
}

func (r *memProductRepo) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func TestCreateAndGetProduct(t *testing.T) {
	repo := newMemProductRepo()
	cmd := NewCatalogCommandService(repo, nil)
	query := NewCatalogQueryService(repo)

	id, err := cmd.CreateProduct(context.Background(), CreateProductCommand{
		Name:     "widget",
		Price:    decimal.RequireFromString("9.99"),
		Stock:    5,
		Category: "tools",
	})
	require.NoError(t, err)
	require.NotZero(t, id)

	p, err := query.GetProduct(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "widget", p.Name)
	assert.True(t, p.Active)
	assert.Equal(t, 5, p.Stock)
}

func TestUpdateProduct(t *testing.T) {
	repo := newMemProductRepo()
	cmd := NewCatalogCommandService(repo, nil)

	id, err := cmd.CreateProduct(context.Background(), CreateProductCommand{
		Name:  "widget",
		Price: decimal.RequireFromString("9.99"),
	})
	require.NoError(t, err)

	err = cmd.UpdateProduct(context.Background(), UpdateProductCommand{
		ProductID: id,
		Name:      "widget v2",
		Price:     decimal.RequireFromString("12.00"),
		SalePrice: decimal.NewNullDecimal(decimal.RequireFromString("10.00")),
		Active:    true,
	})
	require.NoError(t, err)

	p, err := repo.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "widget v2", p.Name)
	assert.True(t, p.EffectivePrice().Equal(decimal.RequireFromString("10.00")))
}

func TestUpdateProductNotFound(t *testing.T) {
	cmd := NewCatalogCommandService(newMemProductRepo(), nil)
	err := cmd.UpdateProduct(context.Background(), UpdateProductCommand{ProductID: 404})
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestAdjustStock(t *testing.T) {
	repo := newMemProductRepo()
	cmd := NewCatalogCommandService(repo, nil)

	id, err := cmd.CreateProduct(context.Background(), CreateProductCommand{
		Name:  "widget",
		Price: decimal.RequireFromString("9.99"),
		Stock: 5,
	})
	require.NoError(t, err)

	require.NoError(t, cmd.AdjustStock(context.Background(), AdjustStockCommand{ProductID: id, Delta: 3, Reason: "restock"}))
	require.NoError(t, cmd.AdjustStock(context.Background(), AdjustStockCommand{ProductID: id, Delta: -2, Reason: "damage"}))

	p, _ := repo.GetByID(context.Background(), id)
	assert.Equal(t, 6, p.Stock)
}

func TestAdjustStockNeverGoesNegative(t *testing.T) {
	repo := newMemProductRepo()
	cmd := NewCatalogCommandService(repo, nil)

	id, err := cmd.CreateProduct(context.Background(), CreateProductCommand{
		Name:  "widget",
		Price: decimal.RequireFromString("9.99"),
		Stock: 2,
	})
	require.NoError(t, err)

	err = cmd.AdjustStock(context.Background(), AdjustStockCommand{ProductID: id, Delta: -5, Reason: "oops"})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	p, _ := repo.GetByID(context.Background(), id)
	assert.Equal(t, 2, p.Stock)
}

func TestAdjustStockZeroDelta(t *testing.T) {
	cmd := NewCatalogCommandService(newMemProductRepo(), nil)
	err := cmd.AdjustStock(context.Background(), AdjustStockCommand{ProductID: 1, Delta: 0})
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
}
