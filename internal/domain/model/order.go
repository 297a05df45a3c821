package model

import "time"

type OrderStatus string

const (
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusCompleted  OrderStatus = "completed"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// KnownOrderStatuses は集計で名前付きバケツに入れるステータス一覧。
// ここに無い値は total にだけ数える。
var KnownOrderStatuses = []OrderStatus{
	OrderStatusProcessing,
	OrderStatusShipped,
	OrderStatusCompleted,
	OrderStatusCancelled,
}

// ステータス遷移は一方向のみ（逆戻りなし）
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusProcessing: {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped:    {OrderStatusCompleted, OrderStatusCancelled},
	OrderStatusCompleted:  {},
	OrderStatusCancelled:  {},
}

func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func IsValidOrderStatus(s string) bool {
	for _, known := range KnownOrderStatuses {
		if string(known) == s {
			return true
		}
	}
	return false
}

type Order struct {
	ID          int64       `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID      int64       `gorm:"not null;index" json:"user_id"`
	Total       int64       `gorm:"not null" json:"total"`
	Status      OrderStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	AddressText string      `gorm:"type:text;not null" json:"address_text"`
	CreatedAt   time.Time   `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time   `gorm:"not null;autoUpdateTime" json:"updated_at"`

	// Orderが明細を所有する（Order削除で明細も消える）
	Items []OrderItem `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}
