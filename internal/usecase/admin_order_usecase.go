package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"
)

// AdminOrderUsecase は管理者による注文ステータス更新。
type AdminOrderUsecase struct {
	tx        repo.TransactionManager
	auditRepo repo.AuditLogRepository
}

func NewAdminOrderUsecase(tx repo.TransactionManager, auditRepo repo.AuditLogRepository) *AdminOrderUsecase {
	return &AdminOrderUsecase{tx: tx, auditRepo: auditRepo}
}

type UpdateOrderStatusInput struct {
	Status string
}

type OrderStatusResponse struct {
	ID     int64  `json:"id"`
	Status string `json:"status"`
}

// UpdateStatus はステータス遷移。許可された一方向の遷移のみ。
// キャンセル時は明細分の在庫を同じTxで戻す。
func (u *AdminOrderUsecase) UpdateStatus(ctx context.Context, adminID int64, orderID int64, in UpdateOrderStatusInput) (OrderStatusResponse, error) {
	if orderID <= 0 {
		return OrderStatusResponse{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if !model.IsValidOrderStatus(in.Status) {
		return OrderStatusResponse{}, NewHTTPError(http.StatusBadRequest, "invalid status")
	}
	next := model.OrderStatus(in.Status)

	var before model.OrderStatus

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		before = o.Status

		if o.Status == next {
			//同値更新は何もしない
			return nil
		}
		if !o.Status.CanTransitionTo(next) {
			return NewHTTPError(http.StatusBadRequest,
				fmt.Sprintf("cannot change status from %s to %s", o.Status, next))
		}

		if err := r.Orders().UpdateStatus(ctx, orderID, next); err != nil {
			if err == repo.ErrNotFound {
				return NewHTTPError(http.StatusNotFound, "not found")
			}
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		//キャンセルなら在庫を明細分戻す
		if next == model.OrderStatusCancelled {
			items, err := r.OrderItems().ListByOrderID(ctx, orderID)
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			for _, it := range items {
				if err := r.Inventory().IncreaseStock(ctx, it.ProductID, it.Qty); err != nil {
					return NewHTTPError(http.StatusInternalServerError, "db error")
				}
			}
		}

		return nil
	})
	if err != nil {
		return OrderStatusResponse{}, err
	}

	if before != next {
		u.writeAudit(ctx, adminID, orderID, before, next)
	}

	return OrderStatusResponse{ID: orderID, Status: string(next)}, nil
}

func (u *AdminOrderUsecase) writeAudit(ctx context.Context, adminID int64, orderID int64, before model.OrderStatus, after model.OrderStatus) {
	beforeJSON, _ := json.Marshal(map[string]string{"status": string(before)})
	afterJSON, _ := json.Marshal(map[string]string{"status": string(after)})

	entry := model.AuditLog{
		ActorUserID:  adminID,
		Action:       model.AuditActionUpdateOrderStatus,
		ResourceType: model.AuditResourceOrder,
		ResourceID:   orderID,
		BeforeJSON:   string(beforeJSON),
		AfterJSON:    string(afterJSON),
		CreatedAt:    time.Now(),
	}
	if err := u.auditRepo.Create(ctx, entry); err != nil {
		log.Printf("audit log write failed: action=%s order=%d err=%v", entry.Action, orderID, err)
	}
}
