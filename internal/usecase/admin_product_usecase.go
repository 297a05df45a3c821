package usecase

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"
)

// 商品画像の保存先。MinIO実装はinfra側。
type ImageStore interface {
	// 保存してURL（またはオブジェクトキー）を返す
	Save(ctx context.Context, filename string, contentType string, size int64, body io.Reader) (string, error)
	Remove(ctx context.Context, imageURL string) error
}

// アップロードされた画像。handler側でサイズ・形式検証済みのものを受け取る。
type ImageUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// AdminProductUsecase は管理者の商品CRUD。
// 変更は監査ログに、在庫変更は調整履歴にも残す。
type AdminProductUsecase struct {
	tx           repo.TransactionManager
	productRepo  repo.ProductRepository
	categoryRepo repo.CategoryRepository
	auditRepo    repo.AuditLogRepository
	images       ImageStore // 未設定なら画像なしで運用
}

func NewAdminProductUsecase(
	tx repo.TransactionManager,
	productRepo repo.ProductRepository,
	categoryRepo repo.CategoryRepository,
	auditRepo repo.AuditLogRepository,
	images ImageStore,
) *AdminProductUsecase {
	return &AdminProductUsecase{
		tx:           tx,
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		auditRepo:    auditRepo,
		images:       images,
	}
}

type CreateProductInput struct {
	Name        string
	Description string
	Price       int64
	Stock       int64
	IsActive    bool
	CategoryID  int64
	Image       *ImageUpload
}

type UpdateProductInput struct {
	Name        string
	Description string
	Price       int64
	Stock       int64
	IsActive    bool
	CategoryID  int64
	Image       *ImageUpload
}

// ListProducts は非公開・在庫切れ含む全商品。
func (u *AdminProductUsecase) ListProducts(ctx context.Context, page int, limit int) (ProductListResponse, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	products, total, err := u.productRepo.ListAdmin(ctx, page, limit)
	if err != nil {
		return ProductListResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	categories, err := u.categoryRepo.List(ctx)
	if err != nil {
		return ProductListResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	names := make(map[int64]string, len(categories))
	for _, c := range categories {
		names[c.ID] = c.Name
	}

	items := make([]ProductResponse, 0, len(products))
	for _, p := range products {
		items = append(items, toProductResponse(p, names[p.CategoryID]))
	}

	return ProductListResponse{Items: items, Total: total, Page: page, Limit: limit}, nil
}

func (u *AdminProductUsecase) GetProduct(ctx context.Context, id int64) (ProductResponse, error) {
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

	categoryName := ""
	if c, err := u.categoryRepo.FindByID(ctx, p.CategoryID); err == nil {
		categoryName = c.Name
	}

	return toProductResponse(p, categoryName), nil
}

func (u *AdminProductUsecase) CreateProduct(ctx context.Context, adminID int64, in CreateProductInput) (ProductResponse, error) {
	if err := u.validateProductInput(ctx, in.Name, in.Price, in.Stock, in.CategoryID); err != nil {
		return ProductResponse{}, err
	}

	imageURL := ""
	if in.Image != nil && u.images != nil {
		url, err := u.images.Save(ctx, in.Image.Filename, in.Image.ContentType, in.Image.Size, in.Image.Body)
		if err != nil {
			return ProductResponse{}, NewHTTPError(http.StatusInternalServerError, "image upload failed")
		}
		imageURL = url
	}

	created, err := u.productRepo.Create(ctx, model.Product{
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Price:       in.Price,
		Stock:       in.Stock,
		IsActive:    in.IsActive,
		CategoryID:  in.CategoryID,
		Image:       imageURL,
	})
	if err != nil {
		return ProductResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	u.writeAudit(ctx, adminID, model.AuditActionCreateProduct, created.ID, nil, &created)

	categoryName := ""
	if c, err := u.categoryRepo.FindByID(ctx, created.CategoryID); err == nil {
		categoryName = c.Name
	}
	return toProductResponse(created, categoryName), nil
}

// UpdateProduct は商品更新。在庫が変わっていたら調整履歴も同じTxで残す。
func (u *AdminProductUsecase) UpdateProduct(ctx context.Context, adminID int64, id int64, in UpdateProductInput) (ProductResponse, error) {
	if id <= 0 {
		return ProductResponse{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := u.validateProductInput(ctx, in.Name, in.Price, in.Stock, in.CategoryID); err != nil {
		return ProductResponse{}, err
	}

	imageURL := ""
	if in.Image != nil && u.images != nil {
		url, err := u.images.Save(ctx, in.Image.Filename, in.Image.ContentType, in.Image.Size, in.Image.Body)
		if err != nil {
			return ProductResponse{}, NewHTTPError(http.StatusInternalServerError, "image upload failed")
		}
		imageURL = url
	}

	var before model.Product
	var after model.Product

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		p, err := r.Products().FindByID(ctx, id)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		before = p

		p.Name = strings.TrimSpace(in.Name)
		p.Description = in.Description
		p.Price = in.Price
		p.Stock = in.Stock
		p.IsActive = in.IsActive
		p.CategoryID = in.CategoryID
		if imageURL != "" {
			p.Image = imageURL
		}

		if err := r.Products().Update(ctx, p); err != nil {
			if err == repo.ErrNotFound {
				return NewHTTPError(http.StatusNotFound, "not found")
			}
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		//在庫変更は差分を履歴に残す
		if delta := in.Stock - before.Stock; delta != 0 {
			adj := model.InventoryAdjustment{
				ProductID:   id,
				AdminUserID: adminID,
				Delta:       delta,
				Reason:      "admin product update",
			}
			if err := r.Inventory().CreateAdjustment(ctx, adj); err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
		}

		after = p
		return nil
	})
	if err != nil {
		return ProductResponse{}, err
	}

	u.writeAudit(ctx, adminID, model.AuditActionUpdateProduct, id, &before, &after)

	categoryName := ""
	if c, err := u.categoryRepo.FindByID(ctx, after.CategoryID); err == nil {
		categoryName = c.Name
	}
	return toProductResponse(after, categoryName), nil
}

// DeleteProduct は論理削除。過去の注文明細は残る。
func (u *AdminProductUsecase) DeleteProduct(ctx context.Context, adminID int64, id int64) error {
	if id <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	before, err := u.productRepo.FindByID(ctx, id)
	if err == repo.ErrNotFound {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if err := u.productRepo.SoftDelete(ctx, id); err != nil {
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	u.writeAudit(ctx, adminID, model.AuditActionDeleteProduct, id, &before, nil)
	return nil
}

func (u *AdminProductUsecase) validateProductInput(ctx context.Context, name string, price int64, stock int64, categoryID int64) error {
	if strings.TrimSpace(name) == "" {
		return NewHTTPError(http.StatusBadRequest, "name required")
	}
	if price < 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid price")
	}
	if stock < 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid stock")
	}
	if categoryID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid category_id")
	}

	if _, err := u.categoryRepo.FindByID(ctx, categoryID); err != nil {
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusBadRequest, "category not found")
		}
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}

// 監査ログ書き込みはベストエフォート（操作自体は成功済み）。
func (u *AdminProductUsecase) writeAudit(ctx context.Context, adminID int64, action model.AuditAction, productID int64, before *model.Product, after *model.Product) {
	entry := model.AuditLog{
		ActorUserID:  adminID,
		Action:       action,
		ResourceType: model.AuditResourceProduct,
		ResourceID:   productID,
		CreatedAt:    time.Now(),
	}
	if before != nil {
		if b, err := json.Marshal(before); err == nil {
			entry.BeforeJSON = string(b)
		}
	}
	if after != nil {
		if b, err := json.Marshal(after); err == nil {
			entry.AfterJSON = string(b)
		}
	}

	if err := u.auditRepo.Create(ctx, entry); err != nil {
		log.Printf("audit log write failed: action=%s product=%d err=%v", action, productID, err)
	}
}
