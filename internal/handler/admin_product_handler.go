package handler

import (
	"mime/multipart"
	"net/http"
	"strconv"

	"storefront/internal/config"
	"storefront/internal/middleware"
	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
)

// 画像は2MBまで
const maxImageSize = 2 << 20

// SuccessResponse は { message: string } の形。
type SuccessResponse struct {
	Message string `json:"message"`
}

// /admin/products のHTTP。作成・更新はmultipart/form-dataで受ける（画像付き）。
type AdminProductHandler struct {
	uc *usecase.AdminProductUsecase
}

// DI
func NewAdminProductHandler(uc *usecase.AdminProductUsecase) *AdminProductHandler {
	return &AdminProductHandler{uc: uc}
}

// adminの商品ルートを登録
func (h *AdminProductHandler) RegisterRoutes(e *echo.Echo, cfg config.Config) {
	admin := e.Group("/admin")

	admin.Use(middleware.AuthJWT(cfg))
	admin.Use(middleware.AdminRoleGuard())

	admin.GET("/products", h.listProducts)
	admin.GET("/products/:id", h.getProduct)
	admin.POST("/products", h.createProduct)
	admin.PUT("/products/:id", h.updateProduct)
	admin.DELETE("/products/:id", h.deleteProduct)
}

func (h *AdminProductHandler) listProducts(c echo.Context) error {
	page := 1
	if v := c.QueryParam("page"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid page"})
		}
		page = p
	}

	limit := 20
	if v := c.QueryParam("limit"); v != "" {
		l, err := strconv.Atoi(v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid limit"})
		}
		limit = l
	}

	out, err := h.uc.ListProducts(c.Request().Context(), page, limit)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *AdminProductHandler) getProduct(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	out, err := h.uc.GetProduct(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *AdminProductHandler) createProduct(c echo.Context) error {
	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	in, errMsg := h.bindProductForm(c)
	if errMsg != "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: errMsg})
	}

	out, err := h.uc.CreateProduct(c.Request().Context(), adminID, usecase.CreateProductInput{
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		Stock:       in.Stock,
		IsActive:    in.IsActive,
		CategoryID:  in.CategoryID,
		Image:       in.Image,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, out)
}

func (h *AdminProductHandler) updateProduct(c echo.Context) error {
	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	in, errMsg := h.bindProductForm(c)
	if errMsg != "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: errMsg})
	}

	out, err := h.uc.UpdateProduct(c.Request().Context(), adminID, id, usecase.UpdateProductInput{
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		Stock:       in.Stock,
		IsActive:    in.IsActive,
		CategoryID:  in.CategoryID,
		Image:       in.Image,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *AdminProductHandler) deleteProduct(c echo.Context) error {
	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	if err := h.uc.DeleteProduct(c.Request().Context(), adminID, id); err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, SuccessResponse{Message: "deleted"})
}

type productForm struct {
	Name        string
	Description string
	Price       int64
	Stock       int64
	IsActive    bool
	CategoryID  int64
	Image       *usecase.ImageUpload
}

// multipart/form-dataのフィールドと画像を読む。
// 戻り値のstringが空でなければエラーメッセージ。
func (h *AdminProductHandler) bindProductForm(c echo.Context) (productForm, string) {
	var f productForm

	f.Name = c.FormValue("name")
	f.Description = c.FormValue("description")

	price, err := strconv.ParseInt(c.FormValue("price"), 10, 64)
	if err != nil {
		return f, "invalid price"
	}
	f.Price = price

	stock, err := strconv.ParseInt(c.FormValue("stock"), 10, 64)
	if err != nil {
		return f, "invalid stock"
	}
	f.Stock = stock

	categoryID, err := strconv.ParseInt(c.FormValue("category_id"), 10, 64)
	if err != nil {
		return f, "invalid category_id"
	}
	f.CategoryID = categoryID

	f.IsActive = c.FormValue("is_active") == "true"

	//画像は任意
	fh, err := c.FormFile("image")
	if err != nil {
		return f, ""
	}

	upload, errMsg := openImage(fh)
	if errMsg != "" {
		return f, errMsg
	}
	f.Image = upload

	return f, ""
}

// 画像のサイズ・形式を検証して開く
func openImage(fh *multipart.FileHeader) (*usecase.ImageUpload, string) {
	if fh.Size > maxImageSize {
		return nil, "image too large"
	}

	contentType := fh.Header.Get("Content-Type")
	switch contentType {
	case "image/png", "image/jpeg", "image/gif":
	default:
		return nil, "unsupported image type"
	}

	src, err := fh.Open()
	if err != nil {
		return nil, "invalid image"
	}

	return &usecase.ImageUpload{
		Filename:    fh.Filename,
		ContentType: contentType,
		Size:        fh.Size,
		Body:        src,
	}, ""
}

// contextからuser_idを取り出す
func getUserIDFromContext(c echo.Context) (int64, bool) {
	v := c.Get(middleware.CtxUserIDKey)
	id, ok := v.(int64)
	if !ok || id <= 0 {
		return 0, false
	}
	return id, true
}
