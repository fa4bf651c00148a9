package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/iliyamo/inventory-pos/internal/auth"
	"github.com/iliyamo/inventory-pos/internal/config"
	"github.com/iliyamo/inventory-pos/internal/database"
	"github.com/iliyamo/inventory-pos/internal/handler"
	"github.com/iliyamo/inventory-pos/internal/mailer"
	"github.com/iliyamo/inventory-pos/internal/middleware"
	"github.com/iliyamo/inventory-pos/internal/queue"
	"github.com/iliyamo/inventory-pos/internal/repository"
	"github.com/iliyamo/inventory-pos/internal/router"
	"github.com/iliyamo/inventory-pos/internal/service"
	"github.com/iliyamo/inventory-pos/internal/storage"
	"github.com/iliyamo/inventory-pos/internal/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger, err := config.NewLogger(cfg.Logger())
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg config.Config, logger *zap.Logger) error {
	decimal.MarshalJSONWithoutQuotes = true

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dsn := database.DSN(cfg.DB)
	db, err := database.Open(dsn)
	if err != nil {
		return err
	}
	defer db.Close()
	if cfg.DB.AutoMigrate {
		if err := database.Migrate(dsn); err != nil {
			return err
		}
		logger.Info("migrations applied")
	}

	users := repository.NewUserRepo(db)
	products := repository.NewProductRepo(db)
	sales := repository.NewSaleRepo(db)
	vendors := repository.NewVendorRepo(db)
	contacts := repository.NewContactRepo(db)
	imports := repository.NewImportHistoryRepo(db)
	ledger := repository.NewSaleLedger(db, products, sales)

	rdb := config.NewRedisClient(cfg.Redis)
	var denylist service.Denylist
	if rdb != nil {
		defer rdb.Close()
		denylist = repository.NewTokenDenylist(rdb)
	} else {
		logger.Warn("redis unavailable: rate limiting and token revocation disabled", zap.String("addr", cfg.Redis.Address()))
	}

	var publisher service.EventPublisher
	if cfg.Queue.Enabled {
		publisher = queue.NewPublisher(cfg.Queue.URL, cfg.Queue.Name, logger)
	}

	images, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		return err
	}
	mail := mailer.New(cfg.SMTP, logger)

	hasher := auth.NewPasswordHasher(cfg.Auth.BcryptCost)
	tokens := auth.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.AccessTTL(), cfg.Auth.RefreshTTL())
	unique := service.NewUniqueness(users, products, vendors)

	authSvc := service.NewAuthService(users, hasher, tokens, denylist, unique, logger)
	saleSvc := service.NewSaleService(ledger, sales, publisher, logger)
	importSvc := service.NewImportService(products, imports, publisher, logger)

	h := router.Handlers{
		Auth:     handler.NewAuthHandler(authSvc, logger),
		Users:    handler.NewUserHandler(service.NewUserService(users, hasher, unique), logger),
		Products: handler.NewProductHandler(service.NewProductService(products, vendors, unique, images, logger), logger),
		Sales:    handler.NewSaleHandler(saleSvc, logger),
		Vendors:  handler.NewVendorHandler(service.NewVendorService(vendors, products, unique), logger),
		Contacts: handler.NewContactHandler(service.NewContactService(contacts, mail, logger), logger),
		Imports:  handler.NewImportHandler(importSvc, logger),
		Activity: handler.NewActivityHandler(service.NewActivityService(sales, products), logger),
	}

	e := echo.New()
	e.HideBanner = true
	e.Validator = utils.NewValidator()
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(middleware.RequestLogger(logger))
	e.Use(middleware.NewTokenBucket(cfg.RateLimit, rdb, logger))

	uploadDir := ""
	if cfg.Storage.Driver == "" || cfg.Storage.Driver == "local" {
		uploadDir = cfg.Storage.UploadDir
	}
	router.RegisterPublic(e, h, db, uploadDir)
	router.RegisterProtected(e, h, authSvc, logger)

	if cfg.Queue.ConsumerEnabled {
		consumer := &queue.Consumer{
			URL:   cfg.Queue.URL,
			Queue: cfg.Queue.Name,
			Handler: &queue.EventLog{
				Dir:               cfg.Queue.LogDir,
				LowStockThreshold: cfg.Queue.LowStockThreshold,
				Log:               logger,
			},
			Log: logger,
		}
		go func() {
			if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("event consumer stopped", zap.Error(err))
			}
		}()
	}

	errCh := make(chan error, 1)
	go func() {
		addr := ":" + cfg.Port
		logger.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown", zap.Error(err))
	}
	saleSvc.Wait()
	importSvc.Wait()
	return nil
}
