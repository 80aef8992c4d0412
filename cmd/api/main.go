package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"techshop/internal/config"
	"techshop/internal/handler"
	"techshop/internal/infra/db"
	infraRepo "techshop/internal/infra/repository"
	"techshop/internal/logger"
	"techshop/internal/metrics"
	"techshop/internal/server"
	"techshop/internal/usecase"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

type uuidGenerator struct{}

func (g *uuidGenerator) NewID() string {
	return uuid.NewString()
}

type realClock struct{}

func (c *realClock) Now() time.Time {
	return time.Now()
}

func main() {
	//.envは無くても良い（環境変数で渡す運用もある）
	if err := godotenv.Load(); err != nil {
		log.WithError(err).Warn(".env not loaded")
	}

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("config")
	}

	lg := logger.New(logger.Options{
		Service: "techshop-api",
		Env:     cfg.GoEnv,
		Level:   cfg.LogLevel,
	})

	//DB接続
	gormDB, err := db.Connect(cfg, lg)
	if err != nil {
		lg.WithError(err).Fatal("db connect")
	}
	if err := db.Migrate(gormDB); err != nil {
		lg.WithError(err).Fatal("db migrate")
	}

	//Repository（GORM実装）生成
	cartRepo := infraRepo.NewCartGormRepository(gormDB)
	productRepo := infraRepo.NewProductGormRepository(gormDB)
	orderRepo := infraRepo.NewOrderGormRepository(gormDB)
	auditRepo := infraRepo.NewAuditLogGormRepository(gormDB)
	txManager := infraRepo.NewTxManagerGorm(gormDB)

	//usecaseに渡す部品
	idGen := &uuidGenerator{}
	clock := &realClock{}
	shopMetrics := metrics.NewShopMetrics()

	//Usecase生成
	cartUC := usecase.NewCartUsecase(cartRepo, productRepo, shopMetrics, cfg.Currency, lg)
	orderUC := usecase.NewOrderUsecase(txManager, orderRepo, idGen, clock, shopMetrics, lg)
	adminOrderUC := usecase.NewAdminOrderUsecase(txManager, orderRepo, auditRepo, clock, shopMetrics, lg)
	productUC := usecase.NewProductUsecase(txManager, productRepo, idGen, clock, lg)

	//Handler生成
	e := server.New(cfg, lg, server.Handlers{
		Product:      handler.NewProductHandler(productUC),
		Cart:         handler.NewCartHandler(cartUC),
		Order:        handler.NewOrderHandler(orderUC),
		AdminOrder:   handler.NewAdminOrderHandler(adminOrderUC),
		AdminProduct: handler.NewAdminProductHandler(productUC),
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := server.Start(ctx, e, cfg.Addr(), lg); err != nil {
		lg.WithError(err).Fatal("server")
	}

	if sqlDB, err := gormDB.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
