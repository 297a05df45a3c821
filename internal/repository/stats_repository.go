package repository

import (
	"context"

	"storefront/internal/domain/model"
)

// 商品のアクティブ/非アクティブ内訳
type ProductStatsRow struct {
	Total    int64
	Active   int64
	Inactive int64
}

// ステータスごとの件数（GROUP BY status の1行）
type OrderStatusCount struct {
	Status string
	Count  int64
}

// ダッシュボード表示用の読み取りモデル。
// リレーションの暗黙ロードはせず、必要な値を明示的に詰めて返す。
type OrderActivityItem struct {
	ProductID   int64  `json:"product_id"`
	ProductName string `json:"product_name"`
	Price       int64  `json:"price"`
	Qty         int64  `json:"qty"`
	Subtotal    int64  `json:"subtotal"`
}

type OrderActivity struct {
	Order     model.Order         `json:"order"`
	UserName  string              `json:"user_name"`
	UserEmail string              `json:"user_email"`
	Items     []OrderActivityItem `json:"items"`
}

// 集計はスナップショット読みでよい（ロックしない）。
type StatsRepository interface {
	ProductStats(ctx context.Context) (ProductStatsRow, error)
	OrderStatusCounts(ctx context.Context) ([]OrderStatusCount, error)
	RecentOrders(ctx context.Context, page int, limit int) ([]OrderActivity, int64, error)
}
