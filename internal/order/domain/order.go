// Package domain 订单上下文的领域模型
package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OrderStatus 订单状态
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "PENDING"
	OrderStatusProcessing OrderStatus = "PROCESSING"
	OrderStatusShipped    OrderStatus = "SHIPPED"
	OrderStatusDelivered  OrderStatus = "DELIVERED"
	OrderStatusCancelled  OrderStatus = "CANCELLED"
)

// IsTerminal 终态不再接受任何流转
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

// IsValid 是否为已知状态
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo 状态流转图：
// PENDING → PROCESSING → SHIPPED → DELIVERED，任意非终态可进入 CANCELLED。
// 管理端 UpdateStatus 只记录请求的状态，不强制此图；
// 用户侧取消路径依赖它做校验。
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	if s.IsTerminal() {
		return false
	}
	switch s {
	case OrderStatusPending:
		return next == OrderStatusProcessing || next == OrderStatusCancelled
	case OrderStatusProcessing:
		return next == OrderStatusShipped || next == OrderStatusCancelled
	case OrderStatusShipped:
		return next == OrderStatusDelivered || next == OrderStatusCancelled
	}
	return false
}

// DefaultPaymentMethod 占位支付方式，真实支付集成不在本仓库范围内
const DefaultPaymentMethod = "Credit Card"

// Order 订单聚合根
// 创建后行项不可变，只有 Status 与 UpdatedAt 允许变更
type Order struct {
	gorm.Model
	OrderNo         string          `gorm:"column:order_no;type:varchar(32);uniqueIndex;not null" json:"order_no"`
	UserID          uint            `gorm:"column:user_id;index;not null" json:"user_id"`
	Status          OrderStatus     `gorm:"column:status;type:varchar(20);index;not null" json:"status"`
	ShippingAddress string          `gorm:"column:shipping_address;type:varchar(500);not null" json:"shipping_address"`
	BillingAddress  string          `gorm:"column:billing_address;type:varchar(500);not null" json:"billing_address"`
	PaymentMethod   string          `gorm:"column:payment_method;type:varchar(50);not null" json:"payment_method"`
	TotalAmount     decimal.Decimal `gorm:"column:total_amount;type:decimal(12,2);not null" json:"total_amount"`
	Items           []OrderItem     `gorm:"foreignKey:OrderID" json:"items"`
}

func (Order) TableName() string { return "orders" }

// OrderItem 订单行项
// Price 是下单时刻的价格快照（促销价优先），与购物车快照相互独立
type OrderItem struct {
	gorm.Model
	OrderID     uint            `gorm:"column:order_id;index;not null" json:"order_id"`
	ProductID   uint            `gorm:"column:product_id;index;not null" json:"product_id"`
	ProductName string          `gorm:"column:product_name;type:varchar(255);not null" json:"product_name"`
	Quantity    int             `gorm:"column:quantity;not null" json:"quantity"`
	Price       decimal.Decimal `gorm:"column:price;type:decimal(10,2);not null" json:"price"`
}

func (OrderItem) TableName() string { return "order_items" }

// LineTotal 行小计
func (i *OrderItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// NewOrder 创建订单，账单地址缺省等于收货地址
func NewOrder(orderNo string, userID uint, shippingAddress string) *Order {
	return &Order{
		OrderNo:         orderNo,
		UserID:          userID,
		Status:          OrderStatusPending,
		ShippingAddress: shippingAddress,
		BillingAddress:  shippingAddress,
		PaymentMethod:   DefaultPaymentMethod,
		TotalAmount:     decimal.Zero,
	}
}

// AddItem 追加行项（仅限创建阶段）
func (o *Order) AddItem(productID uint, productName string, qty int, price decimal.Decimal) {
	o.Items = append(o.Items, OrderItem{
		ProductID:   productID,
		ProductName: productName,
		Quantity:    qty,
		Price:       price,
	})
}

// CalculateTotal 从行项重算总金额，绝不信任调用方传入的总额
func (o *Order) CalculateTotal() {
	total := decimal.Zero
	for i := range o.Items {
		total = total.Add(o.Items[i].LineTotal())
	}
	o.TotalAmount = total
}

// CanBeCancelledByUser 普通用户仅能在 PENDING 时取消自己的订单
func (o *Order) CanBeCancelledByUser() bool {
	return o.Status == OrderStatusPending
}

// OrderRepository 订单仓储接口
type OrderRepository interface {
	// Save 保存订单及其行项
	Save(ctx context.Context, order *Order) error
	// GetByID 根据ID获取订单（含行项）
	GetByID(ctx context.Context, id uint) (*Order, error)
	// GetByOrderNo 根据订单号获取订单（含行项）
	GetByOrderNo(ctx context.Context, orderNo string) (*Order, error)
	// ListByUser 获取用户订单列表，按创建时间倒序
	ListByUser(ctx context.Context, userID uint, limit, offset int) ([]*Order, int64, error)
	// ListByStatus 按状态获取订单列表
	ListByStatus(ctx context.Context, status OrderStatus, limit, offset int) ([]*Order, int64, error)
	// ListByDateRange 按创建时间区间获取订单列表（管理端报表）
	ListByDateRange(ctx context.Context, start, end time.Time, limit, offset int) ([]*Order, int64, error)
	// UpdateStatus 更新订单状态
	UpdateStatus(ctx context.Context, orderID uint, status OrderStatus) error
	// Transaction 在同一事务上下文中执行回调
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// OrderReadRepository 订单读缓存仓储，按订单号做旁路缓存。
// 缓存未命中返回 (nil, nil)，由调用方回源数据库。
type OrderReadRepository interface {
	Save(ctx context.Context, order *Order) error
	Get(ctx context.Context, orderNo string) (*Order, error)
	Delete(ctx context.Context, orderNo string) error
}
