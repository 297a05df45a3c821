package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// ステータス遷移の表（逆戻り・終端からの遷移は不可）
func TestOrderStatusTransitions(t *testing.T) {
	tests := []struct {
		from OrderStatus
		to   OrderStatus
		want bool
	}{
		{OrderStatusProcessing, OrderStatusShipped, true},
		{OrderStatusProcessing, OrderStatusCancelled, true},
		{OrderStatusProcessing, OrderStatusCompleted, false},
		{OrderStatusShipped, OrderStatusCompleted, true},
		{OrderStatusShipped, OrderStatusCancelled, true},
		{OrderStatusShipped, OrderStatusProcessing, false},
		{OrderStatusCompleted, OrderStatusProcessing, false},
		{OrderStatusCompleted, OrderStatusCancelled, false},
		{OrderStatusCancelled, OrderStatusProcessing, false},
		{OrderStatusCancelled, OrderStatusShipped, false},
	}

	for _, tt := range tests {
		got := tt.from.CanTransitionTo(tt.to)
		assert.Equal(t, tt.want, got, "%s -> %s", tt.from, tt.to)
	}
}

func TestIsValidOrderStatus(t *testing.T) {
	assert.True(t, IsValidOrderStatus("processing"))
	assert.True(t, IsValidOrderStatus("shipped"))
	assert.True(t, IsValidOrderStatus("completed"))
	assert.True(t, IsValidOrderStatus("cancelled"))

	assert.False(t, IsValidOrderStatus("refunded"))
	assert.False(t, IsValidOrderStatus("PROCESSING"))
	assert.False(t, IsValidOrderStatus(""))
}
