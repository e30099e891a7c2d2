package domain

import (
	"context"
	"time"
)

const (
	OrderPlacedEventType        = "order.placed"
	OrderStatusChangedEventType = "order.status.changed"
	OrderCancelledEventType     = "order.cancelled"
)

// OrderPlacedEvent 下单成功事件
type OrderPlacedEvent struct {
	OrderID     uint      `json:"order_id"`
	OrderNo     string    `json:"order_no"`
	UserID      uint      `json:"user_id"`
	TotalAmount string    `json:"total_amount"`
	ItemCount   int       `json:"item_count"`
	Timestamp   time.Time `json:"timestamp"`
}

// OrderStatusChangedEvent 订单状态变更事件
type OrderStatusChangedEvent struct {
	OrderID   uint        `json:"order_id"`
	OrderNo   string      `json:"order_no"`
	OldStatus OrderStatus `json:"old_status"`
	NewStatus OrderStatus `json:"new_status"`
	Timestamp time.Time   `json:"timestamp"`
}

// OrderCancelledEvent 订单取消事件
type OrderCancelledEvent struct {
	OrderID   uint      `json:"order_id"`
	OrderNo   string    `json:"order_no"`
	UserID    uint      `json:"user_id"`
	Timestamp time.Time `json:"timestamp"`
}

// EventPublisher 订单事件发布者接口
type EventPublisher interface {
	Publish(ctx context.Context, topic string, key string, event any) error
	PublishInTx(ctx context.Context, tx any, topic string, key string, event any) error
}
