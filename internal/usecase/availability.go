package usecase

import (
	"net/http"

	"storefront/internal/domain/model"
)

// CheckAvailability は読み込んだ商品に対する在庫・公開チェック。
// 副作用なし。注文エンジンの事前条件をここに集約して単体テストできるようにする。
func CheckAvailability(p model.Product, qty int64) error {
	if qty < 1 {
		return NewHTTPError(http.StatusBadRequest, "invalid quantity")
	}
	if p.ID == 0 || !p.IsActive {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	if qty > p.Stock {
		return NewHTTPError(http.StatusConflict, "out of stock")
	}
	return nil
}
