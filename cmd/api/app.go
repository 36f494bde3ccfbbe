package main

import (
	"log/slog"

	"storefront/internal/config"
	"storefront/internal/handler"
	"storefront/internal/infra/cache"
	"storefront/internal/infra/db"
	"storefront/internal/infra/payment"
	infraRepo "storefront/internal/infra/repository"
	"storefront/internal/middleware"
	"storefront/internal/pkg/telemetry"
	repo "storefront/internal/repository"
	"storefront/internal/server"
	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// loadConfig は設定を読み、ロガーを初期化する。
func loadConfig() (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, err
	}
	telemetry.InitLogger(cfg.LogLevel)
	return cfg, nil
}

// openDB はservice-roleの資格情報があるときだけ接続する。
func openDB(cfg config.Config) (*gorm.DB, error) {
	if !cfg.HasServiceCredential() {
		slog.Warn("service credential missing; order store operations will return 503")
		return nil, nil
	}
	return db.Connect(cfg.DatabaseURL)
}

// buildServer は部品を組み立ててechoを返す。gormDBがnilでも起動する。
func buildServer(cfg config.Config, gormDB *gorm.DB) *echo.Echo {
	//usecaseに渡す部品
	idGen := usecase.UUIDGenerator{}
	clock := usecase.RealClock{}

	var (
		tx    repo.TransactionManager
		users repo.UserRepository
		roles usecase.RoleProvider
	)
	if gormDB != nil {
		tx = infraRepo.NewTxManagerGorm(gormDB)
		users = infraRepo.NewUserGormRepository(gormDB)
		roles = usecase.NewUserRoleProvider(users)
	}

	var roleCache repo.RoleCache
	if cfg.RedisAddr != "" {
		roleCache = cache.NewRedisRoleCache(cfg.RedisAddr, "storefront")
	} else {
		roleCache = cache.NewMemoryRoleCache()
	}

	policy := usecase.AllowAnyTransition
	if cfg.StrictTransitions {
		policy = usecase.StrictTransitions
	}
	lifecycle := usecase.NewOrderLifecycle(policy, clock)

	gateway := payment.NewClient(cfg.PaymentAPIBaseURL, cfg.PaymentKeyID, cfg.PaymentKeySecret, cfg.RequestTimeout)
	guard := usecase.NewAdminGuard(roles, roleCache, cfg.RoleCacheTTL)

	//Usecase生成
	paymentUC := usecase.NewPaymentUsecase(gateway, cfg.PaymentKeySecret, tx, lifecycle, clock)
	checkoutUC := usecase.NewCheckoutUsecase(tx, usecase.ShippingRule{
		FlatCents:          cfg.ShippingFlatCents,
		FreeThresholdCents: cfg.FreeShippingThresholdCents,
	}, idGen, clock)
	adminOrderUC := usecase.NewAdminOrderUsecase(tx, lifecycle, clock)
	adminUserUC := usecase.NewAdminUserUsecase(users, guard)

	//Handler生成
	return server.New(server.Handlers{
		Payment:    handler.NewPaymentHandler(paymentUC),
		Orders:     handler.NewOrderHandler(checkoutUC),
		AdminOrder: handler.NewAdminOrderHandler(adminOrderUC),
		AdminUser:  handler.NewAdminUserHandler(adminUserUC),
	}, cfg.RequestTimeout,
		middleware.AuthJWT(cfg.JWTSecret),
		middleware.AdminGuard(guard),
	)
}
