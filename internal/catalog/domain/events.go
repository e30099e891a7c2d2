package domain

import (
	"context"
	"time"
)

const (
	ProductCreatedEventType      = "product.created"
	ProductUpdatedEventType      = "product.updated"
	ProductStockChangedEventType = "product.stock.changed"
)

// ProductCreatedEvent 商品创建事件
type ProductCreatedEvent struct {
	ProductID uint      `json:"product_id"`
	Name      string    `json:"name"`
	Price     string    `json:"price"`
	Stock     int       `json:"stock"`
	Timestamp time.Time `json:"timestamp"`
}

// ProductUpdatedEvent 商品更新事件
type ProductUpdatedEvent struct {
	ProductID uint      `json:"product_id"`
	Name      string    `json:"name"`
	Price     string    `json:"price"`
	Active    bool      `json:"active"`
	Timestamp time.Time `json:"timestamp"`
}

// ProductStockChangedEvent 库存变动事件
type ProductStockChangedEvent struct {
	ProductID uint      `json:"product_id"`
	Delta     int       `json:"delta"`
	Reason    string    `json:"reason"`
	Timestamp time.Time `json:"timestamp"`
}

// EventPublisher 目录事件发布者接口
type EventPublisher interface {
	// Publish 发布事件（非事务内）
	Publish(ctx context.Context, topic string, key string, event any) error
	// PublishInTx 在事务中发布事件（Outbox 模式）
	PublishInTx(ctx context.Context, tx any, topic string, key string, event any) error
}
