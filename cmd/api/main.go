package main

import (
	"context"
	"log"

	"storefront/internal/config"
	"storefront/internal/domain/model"
	"storefront/internal/handler"
	"storefront/internal/infra/db"
	"storefront/internal/infra/mail"
	infraRepo "storefront/internal/infra/repository"
	"storefront/internal/infra/storage"
	"storefront/internal/server"
	"storefront/internal/usecase"

	"github.com/joho/godotenv"
)

func main() {
	//.envは無くてもよい（本番は環境変数で渡す）
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	//DB接続
	gormDB, err := db.Connect()
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}

	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.Category{},
		&model.Product{},
		&model.CartItem{},
		&model.Order{},
		&model.OrderItem{},
		&model.AuditLog{},
		&model.InventoryAdjustment{},
	); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	//Repository（GORM実装）生成
	userRepo := infraRepo.NewUserGormRepository(gormDB)
	productRepo := infraRepo.NewProductGormRepository(gormDB)
	categoryRepo := infraRepo.NewCategoryGormRepository(gormDB)
	cartItemRepo := infraRepo.NewCartItemGormRepository(gormDB)
	auditRepo := infraRepo.NewAuditLogGormRepository(gormDB)
	statsRepo := infraRepo.NewStatsGormRepository(gormDB)
	txManager := infraRepo.NewTxManagerGorm(gormDB)

	//画像保存（MinIO）。設定がなければ画像なしで動く。
	var imageStore usecase.ImageStore
	if cfg.MinioEnabled() {
		store, err := storage.NewMinioImageStore(context.Background(), cfg)
		if err != nil {
			log.Fatalf("minio: %v", err)
		}
		imageStore = store
	} else {
		log.Println("minio not configured, image upload disabled")
	}

	//注文確認メール（SMTP）。設定がなければ送らない。
	var mailer usecase.Mailer
	if cfg.SMTPEnabled() {
		mailer = mail.NewSMTPMailer(cfg)
	} else {
		log.Println("smtp not configured, order mail disabled")
	}

	//Usecase生成
	authUC := usecase.NewAuthUsecase(cfg, userRepo)
	productUC := usecase.NewProductUsecase(productRepo, categoryRepo)
	categoryUC := usecase.NewCategoryUsecase(categoryRepo, auditRepo)
	cartUC := usecase.NewCartUsecase(cartItemRepo, productRepo)
	checkoutUC := usecase.NewCheckoutUsecase(txManager, userRepo, mailer)
	orderUC := usecase.NewOrderUsecase(txManager)
	adminProductUC := usecase.NewAdminProductUsecase(txManager, productRepo, categoryRepo, auditRepo, imageStore)
	adminOrderUC := usecase.NewAdminOrderUsecase(txManager, auditRepo)
	dashboardUC := usecase.NewDashboardUsecase(statsRepo)
	auditUC := usecase.NewAuditLogUsecase(auditRepo)

	//Handler生成
	handlers := server.Handlers{
		Auth:           handler.NewAuthHandler(authUC),
		Product:        handler.NewProductHandler(productUC),
		Category:       handler.NewCategoryHandler(categoryUC),
		Cart:           handler.NewCartHandler(cartUC),
		Checkout:       handler.NewCheckoutHandler(checkoutUC),
		Order:          handler.NewOrderHandler(orderUC),
		AdminProduct:   handler.NewAdminProductHandler(adminProductUC),
		AdminCategory:  handler.NewAdminCategoryHandler(categoryUC),
		AdminOrder:     handler.NewAdminOrderHandler(adminOrderUC),
		AdminDashboard: handler.NewAdminDashboardHandler(dashboardUC),
		AdminAudit:     handler.NewAdminAuditHandler(auditUC),
	}

	//Server起動
	e := server.New(cfg, handlers)
	if err := server.Start(e, cfg.Port); err != nil {
		log.Fatalf("server: %v", err)
	}
}
