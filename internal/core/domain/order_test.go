package domain_test

import (
	"testing"

	"github.com/ordelo/orders-ms/internal/core/domain"
	"github.com/stretchr/testify/assert"
)

func TestOrderStatus_Valid(t *testing.T) {
	assert.True(t, domain.OrderStatusPending.Valid())
	assert.True(t, domain.OrderStatusPaid.Valid())
	assert.True(t, domain.OrderStatusDelivered.Valid())
	assert.True(t, domain.OrderStatusCancelled.Valid())
	assert.False(t, domain.OrderStatus("SHIPPED").Valid())
	assert.False(t, domain.OrderStatus("").Valid())
}

func TestOrderStatus_CanTransition(t *testing.T) {
	type transitionTest struct {
		from    domain.OrderStatus
		to      domain.OrderStatus
		allowed bool
	}

	tests := []transitionTest{
		{domain.OrderStatusPending, domain.OrderStatusPaid, true},
		{domain.OrderStatusPending, domain.OrderStatusCancelled, true},
		{domain.OrderStatusPending, domain.OrderStatusDelivered, false},
		{domain.OrderStatusPaid, domain.OrderStatusDelivered, true},
		{domain.OrderStatusPaid, domain.OrderStatusPending, false},
		{domain.OrderStatusPaid, domain.OrderStatusCancelled, false},
		{domain.OrderStatusDelivered, domain.OrderStatusPending, false},
		{domain.OrderStatusCancelled, domain.OrderStatusPaid, false},
	}

	for _, test := range tests {
		t.Run(string(test.from)+"->"+string(test.to), func(t *testing.T) {
			assert.Equal(t, test.allowed, test.from.CanTransition(test.to))
		})
	}
}
