package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestNewOrderDefaults(t *testing.T) {
	order := NewOrder("ORD-1", 7, "1 Main St")

	assert.Equal(t, OrderStatusPending, order.Status)
	assert.Equal(t, "1 Main St", order.ShippingAddress)
	assert.Equal(t, "1 Main St", order.BillingAddress)
	assert.Equal(t, DefaultPaymentMethod, order.PaymentMethod)
	assert.True(t, order.TotalAmount.IsZero())
}

func TestCalculateTotal(t *testing.T) {
	order := NewOrder("ORD-1", 7, "1 Main St")
	order.AddItem(1, "widget", 2, decimal.RequireFromString("7.50"))
	order.AddItem(2, "gadget", 1, decimal.RequireFromString("10.00"))
	order.CalculateTotal()

	assert.True(t, order.TotalAmount.Equal(decimal.RequireFromString("25.00")),
		"total = %s", order.TotalAmount)
}

func TestCalculateTotalEmpty(t *testing.T) {
	order := NewOrder("ORD-1", 7, "1 Main St")
	order.CalculateTotal()
	assert.True(t, order.TotalAmount.IsZero())
}

func TestStatusTransitions(t *testing.T) {
	cases := []struct {
		from OrderStatus
		to   OrderStatus
		ok   bool
	}{
		{OrderStatusPending, OrderStatusProcessing, true},
		{OrderStatusPending, OrderStatusCancelled, true},
		{OrderStatusPending, OrderStatusShipped, false},
		{OrderStatusPending, OrderStatusDelivered, false},
		{OrderStatusProcessing, OrderStatusShipped, true},
		{OrderStatusProcessing, OrderStatusCancelled, true},
		{OrderStatusProcessing, OrderStatusPending, false},
		{OrderStatusShipped, OrderStatusDelivered, true},
		{OrderStatusShipped, OrderStatusCancelled, true},
		{OrderStatusDelivered, OrderStatusCancelled, false},
		{OrderStatusCancelled, OrderStatusPending, false},
		{OrderStatusCancelled, OrderStatusProcessing, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.ok, tc.from.CanTransitionTo(tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestStatusTerminal(t *testing.T) {
	assert.True(t, OrderStatusDelivered.IsTerminal())
	assert.True(t, OrderStatusCancelled.IsTerminal())
	assert.False(t, OrderStatusPending.IsTerminal())
	assert.False(t, OrderStatusProcessing.IsTerminal())
	assert.False(t, OrderStatusShipped.IsTerminal())
}

func TestStatusIsValid(t *testing.T) {
	assert.True(t, OrderStatusPending.IsValid())
	assert.False(t, OrderStatus("PAUSED").IsValid())
	assert.False(t, OrderStatus("").IsValid())
}

func TestCanBeCancelledByUser(t *testing.T) {
	order := NewOrder("ORD-1", 7, "1 Main St")
	assert.True(t, order.CanBeCancelledByUser())

	order.Status = OrderStatusProcessing
	assert.False(t, order.CanBeCancelledByUser())

	order.Status = OrderStatusCancelled
	assert.False(t, order.CanBeCancelledByUser())
}
