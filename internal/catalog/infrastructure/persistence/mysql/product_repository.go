package mysql

import (
	"context"
	"errors"

	"github.com/wyfcoding/ecommerce/internal/catalog/domain"
	"github.com/wyfcoding/pkg/contextx"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type productRepository struct{ db *gorm.DB }

func NewProductRepository(db *gorm.DB) domain.ProductRepository {
	return &productRepository{db: db}
}

// Transaction 在同一事务上下文中执行回调。
func (r *productRepository) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(contextx.WithTx(ctx, tx))
	})
}

func (r *productRepository) Save(ctx context.Context, product *domain.Product) error {
	return r.getDB(ctx).WithContext(ctx).Save(product).Error
}

func (r *productRepository) GetByID(ctx context.Context, id uint) (*domain.Product, error) {
	var product domain.Product
	err := r.getDB(ctx).WithContext(ctx).First(&product, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// GetWithLock 悲观锁获取
func (r *productRepository) GetWithLock(ctx context.Context, id uint) (*domain.Product, error) {
	var product domain.Product
	// SELECT * FROM products WHERE id = ? FOR UPDATE
	err := r.getDB(ctx).WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).First(&product, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepository) List(ctx context.Context, category string, offset, limit int) ([]*domain.Product, int64, error) {
	query := r.getDB(ctx).WithContext(ctx).Model(&domain.Product{}).Where("active = ?", true)
	if category != "" {
		query = query.Where("category = ?", category)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var products []*domain.Product
	if err := query.Order("id").Offset(offset).Limit(limit).Find(&products).Error; err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

// DecrementStock 带守卫条件的原子扣减。
// UPDATE products SET stock = stock - ? WHERE id = ? AND stock >= ?
// 零行受影响说明库存不足或商品不存在，回读区分两种情况。
func (r *productRepository) DecrementStock(ctx context.Context, productID uint, qty int) error {
	if qty <= 0 {
		return domain.ErrInvalidQuantity
	}

	db := r.getDB(ctx)
	result := db.WithContext(ctx).Model(&domain.Product{}).
		Where("id = ? AND stock >= ?", productID, qty).
		Update("stock", gorm.Expr("stock - ?", qty))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		return nil
	}

	product, err := r.GetByID(ctx, productID)
	if err != nil {
		return err
	}
	return &domain.InsufficientStockError{
		ProductID:   product.ID,
		ProductName: product.Name,
		Requested:   qty,
		Available:   product.Stock,
	}
}

// IncrementStock 原子增加库存。
func (r *productRepository) IncrementStock(ctx context.Context, productID uint, qty int) error {
	if qty <= 0 {
		return domain.ErrInvalidQuantity
	}

	result := r.getDB(ctx).WithContext(ctx).Model(&domain.Product{}).
		Where("id = ?", productID).
		Update("stock", gorm.Expr("stock + ?", qty))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}

func (r *productRepository) getDB(ctx context.Context) *gorm.DB {
	if tx, ok := contextx.GetTx(ctx).(*gorm.DB); ok && tx != nil {
		return tx
	}
	return r.db
}
