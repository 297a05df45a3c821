package usecase

import (
	"net/http"
	"testing"

	"storefront/internal/domain/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckAvailability(t *testing.T) {
	active := model.Product{ID: 1, Name: "A", Price: 100, Stock: 5, IsActive: true}
	inactive := model.Product{ID: 2, Name: "B", Price: 100, Stock: 5, IsActive: false}

	tests := []struct {
		name       string
		product    model.Product
		qty        int64
		wantStatus int // 0なら成功
	}{
		{"在庫内の数量は成功", active, 5, 0},
		{"数量1も成功", active, 1, 0},
		{"数量0は400", active, 0, http.StatusBadRequest},
		{"負の数量は400", active, -1, http.StatusBadRequest},
		{"ゼロ値の商品は404", model.Product{}, 1, http.StatusNotFound},
		{"非公開は404", inactive, 1, http.StatusNotFound},
		{"在庫超過は409", active, 6, http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckAvailability(tt.product, tt.qty)
			if tt.wantStatus == 0 {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			he, ok := AsHTTPError(err)
			require.True(t, ok)
			assert.Equal(t, tt.wantStatus, he.Status)
		})
	}
}

// 数量チェックが公開チェックより先（非公開商品に数量0でも400）
func TestCheckAvailabilityQuantityCheckedFirst(t *testing.T) {
	inactive := model.Product{ID: 2, IsActive: false, Stock: 5}

	err := CheckAvailability(inactive, 0)
	require.Error(t, err)
	he, ok := AsHTTPError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, he.Status)
}
