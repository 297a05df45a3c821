package usecase

import (
	"context"
	"net/http"
	"time"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"
)

// ProductUsecase は公開ストアフロント向けの商品参照。
type ProductUsecase struct {
	productRepo  repo.ProductRepository
	categoryRepo repo.CategoryRepository
}

func NewProductUsecase(
	productRepo repo.ProductRepository,
	categoryRepo repo.CategoryRepository,
) *ProductUsecase {
	return &ProductUsecase{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
	}
}

type ProductListInput struct {
	Page       int
	Limit      int
	Q          string
	CategoryID *int64
	MinPrice   *int64
	MaxPrice   *int64
	Sort       string
}

type ProductResponse struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	Price        int64     `json:"price"`
	Stock        int64     `json:"stock"`
	IsActive     bool      `json:"is_active"`
	CategoryID   int64     `json:"category_id"`
	CategoryName string    `json:"category_name"`
	Image        string    `json:"image"`
	CreatedAt    time.Time `json:"created_at"`
}

type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Total int64             `json:"total"`
	Page  int               `json:"page"`
	Limit int               `json:"limit"`
}

// ListProducts は公開中の商品だけを返す。
func (u *ProductUsecase) ListProducts(ctx context.Context, in ProductListInput) (ProductListResponse, error) {
	if in.Page < 1 {
		in.Page = 1
	}
	if in.Limit < 1 || in.Limit > 100 {
		in.Limit = 20
	}
	if in.MinPrice != nil && *in.MinPrice < 0 {
		return ProductListResponse{}, NewHTTPError(http.StatusBadRequest, "invalid min_price")
	}
	if in.MaxPrice != nil && *in.MaxPrice < 0 {
		return ProductListResponse{}, NewHTTPError(http.StatusBadRequest, "invalid max_price")
	}
	if in.MinPrice != nil && in.MaxPrice != nil && *in.MinPrice > *in.MaxPrice {
		return ProductListResponse{}, NewHTTPError(http.StatusBadRequest, "invalid price range")
	}
	switch in.Sort {
	case "", "price_asc", "price_desc", "newest":
	default:
		return ProductListResponse{}, NewHTTPError(http.StatusBadRequest, "invalid sort")
	}

	products, total, err := u.productRepo.ListPublic(ctx, repo.ProductListQuery{
		Page:       in.Page,
		Limit:      in.Limit,
		Q:          in.Q,
		CategoryID: in.CategoryID,
		MinPrice:   in.MinPrice,
		MaxPrice:   in.MaxPrice,
		Sort:       in.Sort,
	})
	if err != nil {
		return ProductListResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	names, err := u.categoryNames(ctx)
	if err != nil {
		return ProductListResponse{}, err
	}

	items := make([]ProductResponse, 0, len(products))
	for _, p := range products {
		items = append(items, toProductResponse(p, names[p.CategoryID]))
	}

	return ProductListResponse{Items: items, Total: total, Page: in.Page, Limit: in.Limit}, nil
}

// GetProductDetail は商品詳細。非公開・削除済みは404。
func (u *ProductUsecase) GetProductDetail(ctx context.Context, id int64) (ProductResponse, error) {
	if id <= 0 {
		return ProductResponse{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	p, err := u.productRepo.FindByID(ctx, id)
	if err == repo.ErrNotFound {
		return ProductResponse{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return ProductResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if !p.IsActive {
		return ProductResponse{}, NewHTTPError(http.StatusNotFound, "not found")
	}

	categoryName := ""
	if c, err := u.categoryRepo.FindByID(ctx, p.CategoryID); err == nil {
		categoryName = c.Name
	}

	return toProductResponse(p, categoryName), nil
}

// カテゴリ名をIDで引けるようにしておく
func (u *ProductUsecase) categoryNames(ctx context.Context) (map[int64]string, error) {
	categories, err := u.categoryRepo.List(ctx)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	names := make(map[int64]string, len(categories))
	for _, c := range categories {
		names[c.ID] = c.Name
	}
	return names, nil
}

func toProductResponse(p model.Product, categoryName string) ProductResponse {
	return ProductResponse{
		ID:           p.ID,
		Name:         p.Name,
		Description:  p.Description,
		Price:        p.Price,
		Stock:        p.Stock,
		IsActive:     p.IsActive,
		CategoryID:   p.CategoryID,
		CategoryName: categoryName,
		Image:        p.Image,
		CreatedAt:    p.CreatedAt,
	}
}
