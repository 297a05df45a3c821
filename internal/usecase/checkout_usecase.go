package usecase

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"
)

// 注文確認メールの内容。SMTP実装はinfra側。
type OrderConfirmationLine struct {
	Name     string
	Price    int64
	Qty      int64
	Subtotal int64
}

type OrderConfirmation struct {
	OrderID     int64
	Total       int64
	AddressText string
	Lines       []OrderConfirmationLine
}

type Mailer interface {
	SendOrderConfirmation(ctx context.Context, to string, conf OrderConfirmation) error
}

// CheckoutUsecase は購入意図（商品＋数量＋住所）を、
// 在庫と整合したOrderに変換する注文エンジン。
type CheckoutUsecase struct {
	tx     repo.TransactionManager
	users  repo.UserRepository
	mailer Mailer // 未設定ならメールは送らない
}

func NewCheckoutUsecase(tx repo.TransactionManager, users repo.UserRepository, mailer Mailer) *CheckoutUsecase {
	return &CheckoutUsecase{tx: tx, users: users, mailer: mailer}
}

type CheckoutLine struct {
	ProductID int64
	Quantity  int64
}

type PlaceOrderInput struct {
	// FromCart=false のときの購入明細
	Lines       []CheckoutLine
	AddressText string
	// trueならカートの中身を明細にして、購入後にカート行を消す
	FromCart bool
}

type OrderItemOutput struct {
	ProductID int64  `json:"product_id"`
	Name      string `json:"name"`
	Price     int64  `json:"price"`
	Qty       int64  `json:"qty"`
	Subtotal  int64  `json:"subtotal"`
}

type OrderOutput struct {
	ID          int64             `json:"id"`
	UserID      int64             `json:"user_id"`
	Status      string            `json:"status"`
	Total       int64             `json:"total"`
	AddressText string            `json:"address_text"`
	CreatedAt   time.Time         `json:"created_at"`
	Items       []OrderItemOutput `json:"items"`
}

// PlaceOrder は1回の呼び出しを全部まとめて適用する。
// どこかで失敗したらOrderも明細も在庫もカートも一切変えない。
func (u *CheckoutUsecase) PlaceOrder(ctx context.Context, userID int64, in PlaceOrderInput) (OrderOutput, error) {
	if userID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	address := strings.TrimSpace(in.AddressText)
	if address == "" {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "address required")
	}
	if !in.FromCart {
		if len(in.Lines) == 0 {
			return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "no items")
		}
		for _, line := range in.Lines {
			if line.ProductID <= 0 {
				return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid product_id")
			}
			if line.Quantity < 1 {
				return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid quantity")
			}
		}
	}

	var out OrderOutput

	//注文処理はトランザクション
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		lines := in.Lines

		//カート発なら確定時点の中身を読む
		if in.FromCart {
			cartItems, err := r.CartItems().ListByUserID(ctx, userID)
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			if len(cartItems) == 0 {
				return NewHTTPError(http.StatusBadRequest, "cart empty")
			}
			lines = make([]CheckoutLine, 0, len(cartItems))
			for _, ci := range cartItems {
				lines = append(lines, CheckoutLine{ProductID: ci.ProductID, Quantity: ci.Quantity})
			}
		}

		orderItems := make([]model.OrderItem, 0, len(lines))
		outItems := make([]OrderItemOutput, 0, len(lines))
		productIDs := make([]int64, 0, len(lines))
		var total int64 = 0

		for _, line := range lines {
			//商品取得（削除済み・非公開は404）
			p, err := r.Products().FindByID(ctx, line.ProductID)
			if err == repo.ErrNotFound {
				return NewHTTPError(http.StatusNotFound, "not found")
			}
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			if err := CheckAvailability(p, line.Quantity); err != nil {
				return err
			}

			//在庫減算。pre-decrement値を条件にした1本のUPDATE。
			//同時リクエストで合計が在庫を超えても両方成功することはない。
			ok, err := r.Inventory().DecreaseStockIfEnough(ctx, line.ProductID, line.Quantity)
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			if !ok {
				return NewHTTPError(http.StatusConflict, "out of stock")
			}

			//価格は呼び出し時点のスナップショット
			subtotal := p.Price * line.Quantity
			orderItems = append(orderItems, model.OrderItem{
				ProductID: line.ProductID,
				Price:     p.Price,
				Qty:       line.Quantity,
				Subtotal:  subtotal,
			})
			outItems = append(outItems, OrderItemOutput{
				ProductID: line.ProductID,
				Name:      p.Name,
				Price:     p.Price,
				Qty:       line.Quantity,
				Subtotal:  subtotal,
			})
			productIDs = append(productIDs, line.ProductID)

			total += subtotal
		}

		// 注文作成
		now := time.Now()
		order := model.Order{
			UserID:      userID,
			Total:       total,
			Status:      model.OrderStatusProcessing,
			AddressText: address,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		orderID, err := r.Orders().Create(ctx, order)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		//注文明細一括作成
		if err := r.OrderItems().CreateBulk(ctx, orderID, orderItems); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		//カート発なら購入済み商品の行を消す
		if in.FromCart {
			if err := r.CartItems().DeleteByUserAndProducts(ctx, userID, productIDs); err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
		}

		out = OrderOutput{
			ID:          orderID,
			UserID:      userID,
			Status:      string(model.OrderStatusProcessing),
			Total:       total,
			AddressText: address,
			CreatedAt:   now,
			Items:       outItems,
		}
		return nil
	})

	if err != nil {
		return OrderOutput{}, err
	}

	//確認メールはベストエフォート（commit後、失敗してもエラーにしない）
	u.sendConfirmation(ctx, userID, out)

	return out, nil
}

// CheckoutDirect は商品詳細ページからの単品購入。
func (u *CheckoutUsecase) CheckoutDirect(ctx context.Context, userID int64, productID int64, quantity int64, addressText string) (OrderOutput, error) {
	return u.PlaceOrder(ctx, userID, PlaceOrderInput{
		Lines:       []CheckoutLine{{ProductID: productID, Quantity: quantity}},
		AddressText: addressText,
	})
}

// CheckoutCart はカートの中身をまとめて購入する。
func (u *CheckoutUsecase) CheckoutCart(ctx context.Context, userID int64, addressText string) (OrderOutput, error) {
	return u.PlaceOrder(ctx, userID, PlaceOrderInput{
		AddressText: addressText,
		FromCart:    true,
	})
}

func (u *CheckoutUsecase) sendConfirmation(ctx context.Context, userID int64, out OrderOutput) {
	if u.mailer == nil {
		return
	}

	user, err := u.users.FindByID(ctx, userID)
	if err != nil || user == nil {
		return
	}

	conf := OrderConfirmation{
		OrderID:     out.ID,
		Total:       out.Total,
		AddressText: out.AddressText,
		Lines:       make([]OrderConfirmationLine, 0, len(out.Items)),
	}
	for _, it := range out.Items {
		conf.Lines = append(conf.Lines, OrderConfirmationLine{
			Name:     it.Name,
			Price:    it.Price,
			Qty:      it.Qty,
			Subtotal: it.Subtotal,
		})
	}

	if err := u.mailer.SendOrderConfirmation(ctx, user.Email, conf); err != nil {
		log.Printf("order confirmation mail failed: order=%d err=%v", out.ID, err)
	}
}
