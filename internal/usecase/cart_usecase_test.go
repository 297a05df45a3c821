package usecase

import (
	"context"
	"net/http"
	"testing"

	"storefront/internal/domain/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCartFixture() (*fakeStore, *CartUsecase) {
	store := newFakeStore()
	uc := NewCartUsecase(&fakeCartItemRepo{store: store}, &fakeProductRepo{store: store})
	return store, uc
}

// Test: 追加と同一商品の数量加算
func TestAddToCartAccumulatesQuantity(t *testing.T) {
	store, uc := newCartFixture()
	store.addProduct(model.Product{ID: 1, Name: "A", Price: 500, Stock: 10, IsActive: true, CategoryID: 1})

	out, err := uc.AddToCart(context.Background(), 1, AddCartInput{ProductID: 1, Quantity: 2})
	require.NoError(t, err)
	require.Len(t, out.Items, 1)
	assert.Equal(t, int64(2), out.Items[0].Quantity)

	out, err = uc.AddToCart(context.Background(), 1, AddCartInput{ProductID: 1, Quantity: 3})
	require.NoError(t, err)
	require.Len(t, out.Items, 1)
	assert.Equal(t, int64(5), out.Items[0].Quantity)
	assert.Equal(t, int64(2500), out.Total)
}

// Test: 在庫を超える追加は409
func TestAddToCartExceedingStock(t *testing.T) {
	store, uc := newCartFixture()
	store.addProduct(model.Product{ID: 1, Name: "A", Price: 500, Stock: 3, IsActive: true, CategoryID: 1})

	_, err := uc.AddToCart(context.Background(), 1, AddCartInput{ProductID: 1, Quantity: 2})
	require.NoError(t, err)

	//既存2 + 追加2 > 在庫3
	_, err = uc.AddToCart(context.Background(), 1, AddCartInput{ProductID: 1, Quantity: 2})
	require.Error(t, err)
	he, ok := AsHTTPError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusConflict, he.Status)
}

// Test: 非公開商品は追加できない
func TestAddToCartInactiveProduct(t *testing.T) {
	store, uc := newCartFixture()
	store.addProduct(model.Product{ID: 1, Name: "A", Price: 500, Stock: 10, IsActive: false, CategoryID: 1})

	_, err := uc.AddToCart(context.Background(), 1, AddCartInput{ProductID: 1, Quantity: 1})
	require.Error(t, err)
	he, ok := AsHTTPError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, he.Status)
}

// Test: 他人の明細は404扱い
func TestUpdateCartItemOwnedByOther(t *testing.T) {
	store, uc := newCartFixture()
	store.addProduct(model.Product{ID: 1, Name: "A", Price: 500, Stock: 10, IsActive: true, CategoryID: 1})
	item := store.addCartItem(model.CartItem{UserID: 2, ProductID: 1, Quantity: 1})

	_, err := uc.UpdateCartItem(context.Background(), 1, item.ID, UpdateCartItemInput{Quantity: 3})
	require.Error(t, err)
	he, ok := AsHTTPError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, he.Status)

	_, err = uc.DeleteCartItem(context.Background(), 1, item.ID)
	require.Error(t, err)
	he, ok = AsHTTPError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, he.Status)
}

// Test: 数量変更は在庫チェックあり
func TestUpdateCartItemQuantity(t *testing.T) {
	store, uc := newCartFixture()
	store.addProduct(model.Product{ID: 1, Name: "A", Price: 500, Stock: 4, IsActive: true, CategoryID: 1})
	item := store.addCartItem(model.CartItem{UserID: 1, ProductID: 1, Quantity: 1})

	out, err := uc.UpdateCartItem(context.Background(), 1, item.ID, UpdateCartItemInput{Quantity: 4})
	require.NoError(t, err)
	assert.Equal(t, int64(4), out.Items[0].Quantity)

	_, err = uc.UpdateCartItem(context.Background(), 1, item.ID, UpdateCartItemInput{Quantity: 5})
	require.Error(t, err)
	he, ok := AsHTTPError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusConflict, he.Status)
}

// Test: 削除後のカート表示
func TestDeleteCartItem(t *testing.T) {
	store, uc := newCartFixture()
	store.addProduct(model.Product{ID: 1, Name: "A", Price: 500, Stock: 10, IsActive: true, CategoryID: 1})
	item := store.addCartItem(model.CartItem{UserID: 1, ProductID: 1, Quantity: 2})

	out, err := uc.DeleteCartItem(context.Background(), 1, item.ID)
	require.NoError(t, err)
	assert.Empty(t, out.Items)
	assert.Equal(t, int64(0), out.Total)
}

// Test: 非公開になった商品の行は表示から外れる
func TestGetCartHidesInactiveProducts(t *testing.T) {
	store, uc := newCartFixture()
	store.addProduct(model.Product{ID: 1, Name: "A", Price: 500, Stock: 10, IsActive: true, CategoryID: 1})
	store.addProduct(model.Product{ID: 2, Name: "B", Price: 800, Stock: 10, IsActive: false, CategoryID: 1})
	store.addCartItem(model.CartItem{UserID: 1, ProductID: 1, Quantity: 1})
	store.addCartItem(model.CartItem{UserID: 1, ProductID: 2, Quantity: 1})

	out, err := uc.GetCart(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, out.Items, 1)
	assert.Equal(t, int64(1), out.Items[0].ProductID)
	assert.Equal(t, int64(500), out.Total)
}
