package server

import (
	"storefront/internal/config"
	"storefront/internal/handler"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
)

// Handlers はルート登録に必要なhandler一式。
type Handlers struct {
	Auth           *handler.AuthHandler
	Product        *handler.ProductHandler
	Category       *handler.CategoryHandler
	Cart           *handler.CartHandler
	Checkout       *handler.CheckoutHandler
	Order          *handler.OrderHandler
	AdminProduct   *handler.AdminProductHandler
	AdminCategory  *handler.AdminCategoryHandler
	AdminOrder     *handler.AdminOrderHandler
	AdminDashboard *handler.AdminDashboardHandler
	AdminAudit     *handler.AdminAuditHandler
}

// New はechoを組み立ててルートを登録する。
func New(cfg config.Config, h Handlers) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	e.Use(echomw.Logger())
	e.Use(echomw.Recover())

	corsConfig := echomw.DefaultCORSConfig
	if cfg.FEURL != "" {
		corsConfig.AllowOrigins = []string{cfg.FEURL}
	}
	e.Use(echomw.CORSWithConfig(corsConfig))

	h.Auth.RegisterRoutes(e, cfg)
	h.Product.RegisterRoutes(e)
	h.Category.RegisterRoutes(e)
	h.Cart.RegisterRoutes(e, cfg)
	h.Checkout.RegisterRoutes(e, cfg)
	h.Order.RegisterRoutes(e, cfg)
	h.AdminProduct.RegisterRoutes(e, cfg)
	h.AdminCategory.RegisterRoutes(e, cfg)
	h.AdminOrder.RegisterRoutes(e, cfg)
	h.AdminDashboard.RegisterRoutes(e, cfg)
	h.AdminAudit.RegisterRoutes(e, cfg)

	return e
}

// Start はサーバー起動。
func Start(e *echo.Echo, port string) error {
	addr := port
	if addr == "" {
		addr = "8080"
	}
	if addr[0] != ':' {
		addr = ":" + addr
	}
	return e.Start(addr)
}
