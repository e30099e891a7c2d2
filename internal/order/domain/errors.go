package domain

import "errors"

var (
	// ErrOrderNotFound 订单不存在
	ErrOrderNotFound = errors.New("order not found")
	// ErrEmptyCart 空购物车不能结算
	ErrEmptyCart = errors.New("cannot create order with empty cart")
	// ErrInvalidAddress 收货地址缺失或为空白
	ErrInvalidAddress = errors.New("shipping address is required")
	// ErrOrderNotCancellable 当前状态下不允许取消
	ErrOrderNotCancellable = errors.New("order cannot be cancelled in its current status")
	// ErrNotOrderOwner 调用方不是订单属主
	ErrNotOrderOwner = errors.New("order does not belong to this user")
	// ErrInvalidStatus 未知的订单状态
	ErrInvalidStatus = errors.New("invalid order status")
)
