package mysql

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"github.com/wyfcoding/ecommerce/internal/cart/domain"
	"github.com/wyfcoding/pkg/contextx"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type cartRepository struct{ db *gorm.DB }

func NewCartRepository(db *gorm.DB) domain.CartRepository {
	return &cartRepository{db: db}
}

func (r *cartRepository) GetActiveByUserID(ctx context.Context, userID uint) (*domain.Cart, error) {
	var cart domain.Cart
	err := r.getDB(ctx).WithContext(ctx).
		Preload("Items").
		Where("user_id = ? AND status = ?", userID, domain.CartStatusActive).
		Order("created_at DESC").
		First(&cart).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrCartNotFound
	}
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

func (r *cartRepository) Save(ctx context.Context, cart *domain.Cart) error {
	return r.getDB(ctx).WithContext(ctx).
		Session(&gorm.Session{FullSaveAssociations: true}).
		Save(cart).Error
}

// UpsertItem 单条原子语句完成合并加购。
// INSERT ... ON DUPLICATE KEY UPDATE quantity = quantity + VALUES(quantity),
// price = VALUES(price)。并发加购不会丢失增量，价格快照刷新为当前价。
func (r *cartRepository) UpsertItem(ctx context.Context, cartID, productID uint, qty int, price decimal.Decimal) error {
	item := domain.CartItem{CartID: cartID, ProductID: productID, Quantity: qty, Price: price}
	return r.getDB(ctx).WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "cart_id"}, {Name: "product_id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"quantity": gorm.Expr("quantity + VALUES(quantity)"),
				"price":    gorm.Expr("VALUES(price)"),
			}),
		}).
		Create(&item).Error
}

func (r *cartRepository) UpdateItemQuantity(ctx context.Context, cartID, productID uint, qty int) error {
	return r.getDB(ctx).WithContext(ctx).
		Model(&domain.CartItem{}).
		Where("cart_id = ? AND product_id = ?", cartID, productID).
		Update("quantity", qty).Error
}

// DeleteItem 物理删除行项。软删的墓碑行会继续占住 (cart_id, product_id)
// 唯一索引，同一商品之后无法再次加购。
func (r *cartRepository) DeleteItem(ctx context.Context, cartID, productID uint) error {
	return r.getDB(ctx).WithContext(ctx).
		Unscoped().
		Where("cart_id = ? AND product_id = ?", cartID, productID).
		Delete(&domain.CartItem{}).Error
}

func (r *cartRepository) ClearItems(ctx context.Context, cartID uint) error {
	return r.getDB(ctx).WithContext(ctx).
		Unscoped().
		Where("cart_id = ?", cartID).
		Delete(&domain.CartItem{}).Error
}

// MarkConverted 置空 active_key，释放该用户的唯一 ACTIVE 位
func (r *cartRepository) MarkConverted(ctx context.Context, cartID uint) error {
	return r.getDB(ctx).WithContext(ctx).
		Model(&domain.Cart{}).
		Where("id = ?", cartID).
		Updates(map[string]any{
			"status":     domain.CartStatusConverted,
			"active_key": nil,
		}).Error
}

func (r *cartRepository) getDB(ctx context.Context) *gorm.DB {
	if tx, ok := contextx.GetTx(ctx).(*gorm.DB); ok && tx != nil {
		return tx
	}
	return r.db
}
