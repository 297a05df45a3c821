package model

// 購入時点の価格スナップショット。後で商品価格が変わっても明細は変わらない。
type OrderItem struct {
	ID        int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID   int64 `gorm:"not null;index" json:"order_id"`
	ProductID int64 `gorm:"not null;index" json:"product_id"`
	Price     int64 `gorm:"not null" json:"price"`
	Qty       int64 `gorm:"not null" json:"qty"`
	Subtotal  int64 `gorm:"not null" json:"subtotal"`
}
