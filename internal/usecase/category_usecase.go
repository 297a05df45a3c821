package usecase

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"
)

// CategoryUsecase はカテゴリの参照と管理者による作成。
type CategoryUsecase struct {
	categoryRepo repo.CategoryRepository
	auditRepo    repo.AuditLogRepository
}

func NewCategoryUsecase(
	categoryRepo repo.CategoryRepository,
	auditRepo repo.AuditLogRepository,
) *CategoryUsecase {
	return &CategoryUsecase{
		categoryRepo: categoryRepo,
		auditRepo:    auditRepo,
	}
}

type CategoryResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type CreateCategoryInput struct {
	Name string
}

func (u *CategoryUsecase) ListCategories(ctx context.Context) ([]CategoryResponse, error) {
	categories, err := u.categoryRepo.List(ctx)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	items := make([]CategoryResponse, 0, len(categories))
	for _, c := range categories {
		items = append(items, CategoryResponse{ID: c.ID, Name: c.Name})
	}
	return items, nil
}

// CreateCategory は管理者のカテゴリ作成。同名は422。
func (u *CategoryUsecase) CreateCategory(ctx context.Context, adminID int64, in CreateCategoryInput) (CategoryResponse, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return CategoryResponse{}, NewHTTPError(http.StatusBadRequest, "name required")
	}

	created, err := u.categoryRepo.Create(ctx, model.Category{Name: name})
	if err == repo.ErrDuplicateName {
		return CategoryResponse{}, NewHTTPError(http.StatusUnprocessableEntity, "category name already exists")
	}
	if err != nil {
		return CategoryResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	//監査ログはベストエフォート
	entry := model.AuditLog{
		ActorUserID:  adminID,
		Action:       model.AuditActionCreateCategory,
		ResourceType: model.AuditResourceCategory,
		ResourceID:   created.ID,
		CreatedAt:    time.Now(),
	}
	if b, err := json.Marshal(created); err == nil {
		entry.AfterJSON = string(b)
	}
	if err := u.auditRepo.Create(ctx, entry); err != nil {
		log.Printf("audit log write failed: action=%s category=%d err=%v", entry.Action, created.ID, err)
	}

	return CategoryResponse{ID: created.ID, Name: created.Name}, nil
}
