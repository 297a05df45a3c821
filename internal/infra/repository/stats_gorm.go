package repository

import (
	"context"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"gorm.io/gorm"
)

type StatsGormRepository struct {
	db *gorm.DB
}

// DI
func NewStatsGormRepository(db *gorm.DB) *StatsGormRepository {
	return &StatsGormRepository{db: db}
}

// 商品のactive/inactive内訳を1クエリで取る
func (r *StatsGormRepository) ProductStats(ctx context.Context) (repo.ProductStatsRow, error) {
	var row repo.ProductStatsRow

	err := r.db.WithContext(ctx).
		Model(&model.Product{}).
		Select(
			"COUNT(*) as total, " +
				"SUM(CASE WHEN is_active THEN 1 ELSE 0 END) as active, " +
				"SUM(CASE WHEN is_active THEN 0 ELSE 1 END) as inactive",
		).
		Scan(&row).Error
	if err != nil {
		return repo.ProductStatsRow{}, err
	}

	return row, nil
}

// GROUP BY status の生カウント。語彙の解釈はusecase側でやる。
func (r *StatsGormRepository) OrderStatusCounts(ctx context.Context) ([]repo.OrderStatusCount, error) {
	var rows []repo.OrderStatusCount

	err := r.db.WithContext(ctx).
		Model(&model.Order{}).
		Select("status, COUNT(*) as count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	return rows, nil
}

// 新しい順の注文にユーザーと明細（商品名付き）を明示的に詰めて返す。
// 遅延ロードに頼らない読み取りモデル。
func (r *StatsGormRepository) RecentOrders(ctx context.Context, page int, limit int) ([]repo.OrderActivity, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 || limit > 100 {
		limit = 10
	}

	var total int64
	if err := r.db.WithContext(ctx).Model(&model.Order{}).Count(&total).Error; err != nil {
		return []repo.OrderActivity{}, 0, err
	}

	var orders []model.Order
	offset := (page - 1) * limit
	err := r.db.WithContext(ctx).
		Order("created_at desc").
		Order("id desc").
		Limit(limit).
		Offset(offset).
		Find(&orders).Error
	if err != nil {
		return []repo.OrderActivity{}, 0, err
	}

	activities := make([]repo.OrderActivity, 0, len(orders))
	for _, o := range orders {
		act := repo.OrderActivity{Order: o}

		// 注文者
		var u model.User
		if err := r.db.WithContext(ctx).Where("id = ?", o.UserID).First(&u).Error; err == nil {
			act.UserName = u.Name
			act.UserEmail = u.Email
		}

		// 明細＋商品名（left joinなので削除済み商品の名前も引ける）
		type itemRow struct {
			ProductID   int64
			ProductName string
			Price       int64
			Qty         int64
			Subtotal    int64
		}
		var rows []itemRow
		err := r.db.WithContext(ctx).
			Model(&model.OrderItem{}).
			Select("order_items.product_id, products.name as product_name, order_items.price, order_items.qty, order_items.subtotal").
			Joins("left join products on products.id = order_items.product_id").
			Where("order_items.order_id = ?", o.ID).
			Order("order_items.id asc").
			Scan(&rows).Error
		if err != nil {
			return []repo.OrderActivity{}, 0, err
		}

		act.Items = make([]repo.OrderActivityItem, 0, len(rows))
		for _, row := range rows {
			act.Items = append(act.Items, repo.OrderActivityItem{
				ProductID:   row.ProductID,
				ProductName: row.ProductName,
				Price:       row.Price,
				Qty:         row.Qty,
				Subtotal:    row.Subtotal,
			})
		}

		activities = append(activities, act)
	}

	return activities, total, nil
}

var _ repo.StatsRepository = (*StatsGormRepository)(nil)
