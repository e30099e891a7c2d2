package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestEffectivePrice(t *testing.T) {
	p := &Product{Price: decimal.RequireFromString("9.99")}
	assert.True(t, p.EffectivePrice().Equal(decimal.RequireFromString("9.99")))

	p.SalePrice = decimal.NewNullDecimal(decimal.RequireFromString("7.50"))
	assert.True(t, p.EffectivePrice().Equal(decimal.RequireFromString("7.50")))
}

func TestHasStock(t *testing.T) {
	p := &Product{Stock: 3}
	assert.True(t, p.HasStock(3))
	assert.True(t, p.HasStock(1))
	assert.False(t, p.HasStock(4))
}

func TestInsufficientStockErrorMatchesSentinel(t *testing.T) {
	err := fmt.Errorf("placement failed: %w", &InsufficientStockError{
		ProductID:   1,
		ProductName: "widget",
		Requested:   3,
		Available:   1,
	})

	assert.ErrorIs(t, err, ErrInsufficientStock)

	var stockErr *InsufficientStockError
	assert.True(t, errors.As(err, &stockErr))
	assert.Equal(t, 3, stockErr.Requested)
	assert.Contains(t, stockErr.Error(), "widget")
}
