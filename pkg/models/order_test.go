package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrderBalance(t *testing.T) {
	order := &Order{TotalAmount: 1000, PaidAmount: 300}
	assert.InDelta(t, 700, order.Balance(), 1e-9)

	order.PaidAmount = 1000
	assert.Equal(t, 0.0, order.Balance())

	// floored at zero even if payments somehow exceed the total
	order.PaidAmount = 1100
	assert.Equal(t, 0.0, order.Balance())
}

func TestOrderCanAcceptPayment(t *testing.T) {
	order := &Order{TotalAmount: 1000, PaidAmount: 300}

	assert.True(t, order.CanAcceptPayment(700))
	assert.True(t, order.CanAcceptPayment(200))
	assert.True(t, order.CanAcceptPayment(700.005), "float drift within tolerance")

	assert.False(t, order.CanAcceptPayment(700.02))
	assert.False(t, order.CanAcceptPayment(1000))

	order.PaidAmount = 1000
	assert.False(t, order.CanAcceptPayment(50), "settled order takes no more payments")
}

func TestOrderIsPaid(t *testing.T) {
	order := &Order{TotalAmount: 1000, PaidAmount: 999.995}
	assert.True(t, order.IsPaid())

	order.PaidAmount = 999.9
	assert.False(t, order.IsPaid())
}
