// Package domain 购物车上下文的领域模型
package domain

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrCartNotFound    = errors.New("cart not found")
	ErrInvalidQuantity = errors.New("quantity must be positive")
)

// CartStatus 购物车状态
type CartStatus string

const (
	// CartStatusActive 可变更的进行中购物车，每个用户同一时刻最多一个
	CartStatusActive CartStatus = "ACTIVE"
	// CartStatusConverted 已结算为订单的购物车，不再复用
	CartStatusConverted CartStatus = "CONVERTED"
)

// Cart 购物车聚合根
type Cart struct {
	gorm.Model
	UserID uint       `gorm:"column:user_id;index;not null" json:"user_id"`
	Status CartStatus `gorm:"column:status;type:varchar(20);index;not null;default:'ACTIVE'" json:"status"`
	// ActiveKey 为 ACTIVE 时等于 UserID，转换后置空。
	// 唯一索引把"每个用户同一时刻至多一个 ACTIVE 购物车"落到数据库层。
	ActiveKey *uint      `gorm:"column:active_key;uniqueIndex:idx_active_user" json:"-"`
	Items     []CartItem `gorm:"foreignKey:CartID" json:"items"`
}

func (Cart) TableName() string { return "carts" }

// NewActiveCart 创建一个空的 ACTIVE 购物车
func NewActiveCart(userID uint) *Cart {
	key := userID
	return &Cart{UserID: userID, Status: CartStatusActive, ActiveKey: &key}
}

// CartItem 购物车行项
// Price 是加入购物车时刻的价格快照，再次加购同一商品时刷新
type CartItem struct {
	gorm.Model
	CartID    uint            `gorm:"column:cart_id;index:idx_cart_product,unique;not null" json:"cart_id"`
	ProductID uint            `gorm:"column:product_id;index:idx_cart_product,unique;not null" json:"product_id"`
	Quantity  int             `gorm:"column:quantity;not null" json:"quantity"`
	Price     decimal.Decimal `gorm:"column:price;type:decimal(10,2);not null" json:"price"`
}

func (CartItem) TableName() string { return "cart_items" }

// LineTotal 行小计
func (i *CartItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// AddItem 合并加购：同一商品只有一行，数量累加且价格快照刷新为当前价
func (c *Cart) AddItem(productID uint, qty int, price decimal.Decimal) {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			c.Items[i].Quantity += qty
			c.Items[i].Price = price
			return
		}
	}
	c.Items = append(c.Items, CartItem{CartID: c.ID, ProductID: productID, Quantity: qty, Price: price})
}

// SetItemQuantity 数量设为给定值（非累加），qty <= 0 等价于移除
func (c *Cart) SetItemQuantity(productID uint, qty int) {
	if qty <= 0 {
		c.RemoveItem(productID)
		return
	}
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			c.Items[i].Quantity = qty
			return
		}
	}
}

// RemoveItem 移除商品，不存在则为空操作
func (c *Cart) RemoveItem(productID uint) {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			return
		}
	}
}

// FindItem 查找商品对应的行项
func (c *Cart) FindItem(productID uint) *CartItem {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return &c.Items[i]
		}
	}
	return nil
}

// Total 购物车总金额，空车为零
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for i := range c.Items {
		total = total.Add(c.Items[i].LineTotal())
	}
	return total
}

// ItemCount 商品件数合计（UI 角标用）
func (c *Cart) ItemCount() int {
	var count int
	for i := range c.Items {
		count += c.Items[i].Quantity
	}
	return count
}

// IsEmpty 是否为空车
func (c *Cart) IsEmpty() bool { return len(c.Items) == 0 }

// CartRepository 购物车仓储接口
type CartRepository interface {
	// GetActiveByUserID 获取用户的 ACTIVE 购物车，不存在返回 ErrCartNotFound
	GetActiveByUserID(ctx context.Context, userID uint) (*Cart, error)
	// Save 保存购物车及其行项
	Save(ctx context.Context, cart *Cart) error
	// UpsertItem 原子合并加购：已存在则数量累加、价格快照刷新
	UpsertItem(ctx context.Context, cartID, productID uint, qty int, price decimal.Decimal) error
	// UpdateItemQuantity 将行项数量设为给定值
	UpdateItemQuantity(ctx context.Context, cartID, productID uint, qty int) error
	// DeleteItem 删除行项，不存在为空操作
	DeleteItem(ctx context.Context, cartID, productID uint) error
	// ClearItems 删除购物车全部行项
	ClearItems(ctx context.Context, cartID uint) error
	// MarkConverted 将购物车标记为 CONVERTED
	MarkConverted(ctx context.Context, cartID uint) error
}
