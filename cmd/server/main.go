package main

import (
	"context"
	"time"

	"github.com/dailycrate/dailycrate/internal/api"
	"github.com/dailycrate/dailycrate/internal/api/cron"
	v1 "github.com/dailycrate/dailycrate/internal/api/v1"
	"github.com/dailycrate/dailycrate/internal/cache"
	"github.com/dailycrate/dailycrate/internal/config"
	"github.com/dailycrate/dailycrate/internal/logger"
	"github.com/dailycrate/dailycrate/internal/postgres"
	"github.com/dailycrate/dailycrate/internal/repository"
	"github.com/dailycrate/dailycrate/internal/scheduler"
	"github.com/dailycrate/dailycrate/internal/service"
	"github.com/dailycrate/dailycrate/internal/validator"
	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
)

func init() {
	// Set UTC timezone for the entire application
	time.Local = time.UTC
}

func main() {
	var opts []fx.Option

	// Core dependencies
	opts = append(opts,
		fx.Provide(
			// Validator
			validator.NewValidator,

			// Config
			config.NewConfig,

			// Logger
			logger.NewLogger,

			// Cache
			provideCache,

			// Postgres
			postgres.NewDB,

			// Repositories
			repository.NewSubscriptionRepository,
			repository.NewWalletRepository,
			repository.NewOrderRepository,
			repository.NewProductRepository,
			repository.NewAddressRepository,
			repository.NewCartRepository,
		),
	)

	// Service layer
	opts = append(opts,
		fx.Provide(
			service.NewServiceParams,

			service.NewSubscriptionService,
			service.NewWalletService,
			service.NewOrderService,
			service.NewProductService,
			service.NewAddressService,
			service.NewCartService,
			service.NewPaymentService,
			service.NewBillingService,
		),
	)

	// API and scheduler
	opts = append(opts,
		fx.Provide(
			provideHandlers,
			provideRouter,
			scheduler.NewScheduler,
		),
		fx.Invoke(
			startServer,
			startScheduler,
		),
	)

	app := fx.New(opts...)
	app.Run()
}

func provideCache(cfg *config.Configuration, log *logger.Logger) cache.Cache {
	return cache.NewInMemoryCache(cfg, log)
}

func provideHandlers(
	logger *logger.Logger,
	subscriptionService service.SubscriptionService,
	walletService service.WalletService,
	orderService service.OrderService,
	productService service.ProductService,
	addressService service.AddressService,
	cartService service.CartService,
	billingService service.BillingService,
) api.Handlers {
	return api.Handlers{
		Subscription: v1.NewSubscriptionHandler(subscriptionService, logger),
		Wallet:       v1.NewWalletHandler(walletService, logger),
		Order:        v1.NewOrderHandler(orderService, logger),
		Product:      v1.NewProductHandler(productService, logger),
		Address:      v1.NewAddressHandler(addressService, logger),
		Cart:         v1.NewCartHandler(cartService, logger),
		BillingCron:  cron.NewBillingCronHandler(logger, billingService),
	}
}

func provideRouter(handlers api.Handlers, cfg *config.Configuration, logger *logger.Logger) *gin.Engine {
	return api.NewRouter(handlers, cfg, logger)
}

func startServer(
	lc fx.Lifecycle,
	r *gin.Engine,
	cfg *config.Configuration,
	log *logger.Logger,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("Starting API server...")
			go func() {
				if err := r.Run(cfg.Server.Address); err != nil {
					log.Fatalf("Failed to start server: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("Shutting down server...")
			return nil
		},
	})
}

func startScheduler(
	lc fx.Lifecycle,
	sched *scheduler.Scheduler,
	log *logger.Logger,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			sched.Start()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			sched.Stop()
			return nil
		},
	})
}
