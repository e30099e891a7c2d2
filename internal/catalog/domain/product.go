// Package domain 商品目录上下文的领域模型
// 商品库存字段是可售库存的唯一事实来源
package domain

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrProductNotFound   = errors.New("product not found")
	ErrProductInactive   = errors.New("product is not active")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrInvalidQuantity   = errors.New("quantity must be positive")
)

// InsufficientStockError 库存不足错误
// 携带商品与数量信息，便于调用方生成可操作的提示
type InsufficientStockError struct {
	ProductID   uint
	ProductName string
	Requested   int
	Available   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %d (%s): requested %d, available %d",
		e.ProductID, e.ProductName, e.Requested, e.Available)
}

// Is 与 ErrInsufficientStock 哨兵匹配
func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}

// Product 商品实体
type Product struct {
	gorm.Model
	Name        string              `gorm:"column:name;type:varchar(255);not null" json:"name"`
	Description string              `gorm:"column:description;type:text" json:"description"`
	Price       decimal.Decimal     `gorm:"column:price;type:decimal(10,2);not null" json:"price"`
	SalePrice   decimal.NullDecimal `gorm:"column:sale_price;type:decimal(10,2)" json:"sale_price"`
	Stock       int                 `gorm:"column:stock;not null;default:0" json:"stock"`
	Category    string              `gorm:"column:category;type:varchar(100);index" json:"category"`
	Active      bool                `gorm:"column:active;default:true" json:"active"`
}

func (Product) TableName() string { return "products" }

// EffectivePrice 当前生效价格：有促销价用促销价，否则用标价
func (p *Product) EffectivePrice() decimal.Decimal {
	if p.SalePrice.Valid {
		return p.SalePrice.Decimal
	}
	return p.Price
}

// HasStock 库存是否足够
func (p *Product) HasStock(qty int) bool {
	return p.Stock >= qty
}

// ProductRepository 商品仓储接口
// DecrementStock / IncrementStock 构成库存台账的原子操作
type ProductRepository interface {
	Save(ctx context.Context, product *Product) error
	GetByID(ctx context.Context, id uint) (*Product, error)
	// GetWithLock 以 FOR UPDATE 行锁获取商品，必须在事务上下文内调用
	GetWithLock(ctx context.Context, id uint) (*Product, error)
	List(ctx context.Context, category string, offset, limit int) ([]*Product, int64, error)
	// DecrementStock 原子扣减库存，结果为负时返回 *InsufficientStockError
	DecrementStock(ctx context.Context, productID uint, qty int) error
	// IncrementStock 原子增加库存（人工补货）
	IncrementStock(ctx context.Context, productID uint, qty int) error
	// Transaction 在同一事务上下文中执行回调
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error
}
