package usecase

import (
	"context"
	"net/http"
	"testing"

	"storefront/internal/domain/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test: 自分の注文詳細（商品名つき）
func TestGetMyOrderDetail(t *testing.T) {
	store := newFakeStore()
	store.addProduct(model.Product{ID: 1, Name: "コーヒー豆", Price: 500, Stock: 10, IsActive: true, CategoryID: 1})
	uc := NewOrderUsecase(newFakeTxManager(store))

	orderRepo := &fakeOrderRepo{store: store}
	orderID, _ := orderRepo.Create(context.Background(), model.Order{
		UserID: 1, Total: 1000, Status: model.OrderStatusProcessing, AddressText: "どこか",
	})
	itemRepo := &fakeOrderItemRepo{store: store}
	_ = itemRepo.CreateBulk(context.Background(), orderID, []model.OrderItem{
		{ProductID: 1, Price: 500, Qty: 2, Subtotal: 1000},
	})

	out, err := uc.GetMyOrderDetail(context.Background(), 1, orderID)
	require.NoError(t, err)

	assert.Equal(t, orderID, out.ID)
	assert.Equal(t, int64(1000), out.Total)
	require.Len(t, out.Items, 1)
	assert.Equal(t, "コーヒー豆", out.Items[0].Name)
	assert.Equal(t, int64(500), out.Items[0].Price)
}

// Test: 他人の注文は404（存在がバレない）
func TestGetMyOrderDetailOwnedByOther(t *testing.T) {
	store := newFakeStore()
	uc := NewOrderUsecase(newFakeTxManager(store))

	orderRepo := &fakeOrderRepo{store: store}
	orderID, _ := orderRepo.Create(context.Background(), model.Order{
		UserID: 2, Total: 1000, Status: model.OrderStatusProcessing,
	})

	_, err := uc.GetMyOrderDetail(context.Background(), 1, orderID)
	require.Error(t, err)
	he, ok := AsHTTPError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, he.Status)
	assert.Equal(t, "not found", he.Message)
}

// Test: 一覧は自分の注文だけ
func TestListMyOrders(t *testing.T) {
	store := newFakeStore()
	uc := NewOrderUsecase(newFakeTxManager(store))

	orderRepo := &fakeOrderRepo{store: store}
	_, _ = orderRepo.Create(context.Background(), model.Order{UserID: 1, Total: 100, Status: model.OrderStatusProcessing})
	_, _ = orderRepo.Create(context.Background(), model.Order{UserID: 1, Total: 200, Status: model.OrderStatusShipped})
	_, _ = orderRepo.Create(context.Background(), model.Order{UserID: 2, Total: 300, Status: model.OrderStatusProcessing})

	out, err := uc.ListMyOrders(context.Background(), 1, 1, 20)
	require.NoError(t, err)

	assert.Equal(t, int64(2), out.Total)
	assert.Len(t, out.Items, 2)
	for _, o := range out.Items {
		assert.Equal(t, int64(1), o.UserID)
	}
}

// Test: 削除済み商品の明細は商品名が空のまま返る
func TestOrderDetailSurvivesProductDeletion(t *testing.T) {
	store := newFakeStore()
	store.addProduct(model.Product{ID: 1, Name: "A", Price: 500, Stock: 10, IsActive: true, CategoryID: 1})
	uc := NewOrderUsecase(newFakeTxManager(store))

	orderRepo := &fakeOrderRepo{store: store}
	orderID, _ := orderRepo.Create(context.Background(), model.Order{
		UserID: 1, Total: 500, Status: model.OrderStatusCompleted,
	})
	itemRepo := &fakeOrderItemRepo{store: store}
	_ = itemRepo.CreateBulk(context.Background(), orderID, []model.OrderItem{
		{ProductID: 1, Price: 500, Qty: 1, Subtotal: 500},
	})

	//商品削除
	productRepo := &fakeProductRepo{store: store}
	_ = productRepo.SoftDelete(context.Background(), 1)

	out, err := uc.GetMyOrderDetail(context.Background(), 1, orderID)
	require.NoError(t, err)
	require.Len(t, out.Items, 1)
	assert.Equal(t, "", out.Items[0].Name)
	assert.Equal(t, int64(500), out.Items[0].Price)
}
