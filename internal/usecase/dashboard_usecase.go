package usecase

import (
	"context"
	"net/http"
	"time"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"
)

// ダッシュボードの注文明細1ページは10件固定
const dashboardActivityPageSize = 10

// DashboardUsecase は管理ダッシュボードの集計。
type DashboardUsecase struct {
	statsRepo repo.StatsRepository
}

func NewDashboardUsecase(statsRepo repo.StatsRepository) *DashboardUsecase {
	return &DashboardUsecase{statsRepo: statsRepo}
}

type ProductStatsResponse struct {
	Total    int64 `json:"total"`
	Active   int64 `json:"active"`
	Inactive int64 `json:"inactive"`
}

type OrderStatsResponse struct {
	Total      int64 `json:"total"`
	Processing int64 `json:"processing"`
	Shipped    int64 `json:"shipped"`
	Completed  int64 `json:"completed"`
	Cancelled  int64 `json:"cancelled"`
}

type DashboardStatistics struct {
	Products ProductStatsResponse `json:"products"`
	Orders   OrderStatsResponse   `json:"orders"`
}

type ActivityItemResponse struct {
	ProductID   int64  `json:"product_id"`
	ProductName string `json:"product_name"`
	Price       int64  `json:"price"`
	Qty         int64  `json:"qty"`
	Subtotal    int64  `json:"subtotal"`
}

type ActivityOrderResponse struct {
	OrderID     int64                  `json:"order_id"`
	UserName    string                 `json:"user_name"`
	UserEmail   string                 `json:"user_email"`
	Status      string                 `json:"status"`
	Total       int64                  `json:"total"`
	AddressText string                 `json:"address_text"`
	CreatedAt   time.Time              `json:"created_at"`
	Items       []ActivityItemResponse `json:"items"`
}

type ActivityLogResponse struct {
	Items []ActivityOrderResponse `json:"items"`
	Total int64                   `json:"total"`
	Page  int                     `json:"page"`
	Limit int                     `json:"limit"`
}

type DashboardResponse struct {
	Statistics  DashboardStatistics `json:"statistics"`
	ActivityLog ActivityLogResponse `json:"activity_log"`
}

// GetDashboard は商品・注文の統計と直近注文の一覧を返す。
// 集計は読み取り時点のスナップショットでよい。
func (u *DashboardUsecase) GetDashboard(ctx context.Context, page int) (DashboardResponse, error) {
	if page < 1 {
		page = 1
	}

	ps, err := u.statsRepo.ProductStats(ctx)
	if err != nil {
		return DashboardResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	counts, err := u.statsRepo.OrderStatusCounts(ctx)
	if err != nil {
		return DashboardResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	activities, total, err := u.statsRepo.RecentOrders(ctx, page, dashboardActivityPageSize)
	if err != nil {
		return DashboardResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	items := make([]ActivityOrderResponse, 0, len(activities))
	for _, a := range activities {
		outItems := make([]ActivityItemResponse, 0, len(a.Items))
		for _, it := range a.Items {
			outItems = append(outItems, ActivityItemResponse{
				ProductID:   it.ProductID,
				ProductName: it.ProductName,
				Price:       it.Price,
				Qty:         it.Qty,
				Subtotal:    it.Subtotal,
			})
		}
		items = append(items, ActivityOrderResponse{
			OrderID:     a.Order.ID,
			UserName:    a.UserName,
			UserEmail:   a.UserEmail,
			Status:      string(a.Order.Status),
			Total:       a.Order.Total,
			AddressText: a.Order.AddressText,
			CreatedAt:   a.Order.CreatedAt,
			Items:       outItems,
		})
	}

	return DashboardResponse{
		Statistics: DashboardStatistics{
			Products: ProductStatsResponse{
				Total:    ps.Total,
				Active:   ps.Active,
				Inactive: ps.Inactive,
			},
			Orders: buildOrderStats(counts),
		},
		ActivityLog: ActivityLogResponse{
			Items: items,
			Total: total,
			Page:  page,
			Limit: dashboardActivityPageSize,
		},
	}, nil
}

// buildOrderStats はステータスごとの件数を名前付きバケツに振り分ける。
// 既知でないステータスの注文は total にだけ数える（落とさない）。
func buildOrderStats(counts []repo.OrderStatusCount) OrderStatsResponse {
	var out OrderStatsResponse
	for _, c := range counts {
		out.Total += c.Count
		switch model.OrderStatus(c.Status) {
		case model.OrderStatusProcessing:
			out.Processing += c.Count
		case model.OrderStatusShipped:
			out.Shipped += c.Count
		case model.OrderStatusCompleted:
			out.Completed += c.Count
		case model.OrderStatusCancelled:
			out.Cancelled += c.Count
		}
	}
	return out
}
