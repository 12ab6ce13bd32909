package api

import (
	"net/http"

	"github.com/dailycrate/dailycrate/internal/api/cron"
	v1 "github.com/dailycrate/dailycrate/internal/api/v1"
	"github.com/dailycrate/dailycrate/internal/config"
	"github.com/dailycrate/dailycrate/internal/logger"
	"github.com/dailycrate/dailycrate/internal/rest/middleware"
	"github.com/dailycrate/dailycrate/internal/types"
	"github.com/gin-gonic/gin"
)

type Handlers struct {
	Subscription *v1.SubscriptionHandler
	Wallet       *v1.WalletHandler
	Order        *v1.OrderHandler
	Product      *v1.ProductHandler
	Address      *v1.AddressHandler
	Cart         *v1.CartHandler
	BillingCron  *cron.BillingCronHandler
}

func NewRouter(handlers Handlers, cfg *config.Configuration, logger *logger.Logger) *gin.Engine {
	if cfg.Deployment.Mode == types.ModeProd {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.RequestIDMiddleware,
		middleware.CORSMiddleware,
		middleware.ErrorHandler(),
	)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1Group := router.Group("/v1")
	registerV1Routes(v1Group, handlers)

	cronGroup := router.Group("/cron")
	registerCronRoutes(cronGroup, handlers)

	return router
}

func registerV1Routes(router *gin.RouterGroup, handlers Handlers) {
	subscriptions := router.Group("/subscriptions")
	{
		subscriptions.POST("", handlers.Subscription.CreateSubscription)
		subscriptions.GET("", handlers.Subscription.ListSubscriptions)
		subscriptions.GET("/:id", handlers.Subscription.GetSubscription)
		subscriptions.PUT("/:id", handlers.Subscription.UpdateSubscription)
		subscriptions.POST("/:id/pause", handlers.Subscription.PauseSubscription)
		subscriptions.POST("/:id/resume", handlers.Subscription.ResumeSubscription)
		subscriptions.POST("/:id/cancel", handlers.Subscription.CancelSubscription)
	}

	orders := router.Group("/orders")
	{
		orders.GET("", handlers.Order.ListOrders)
		orders.GET("/:id", handlers.Order.GetOrder)
	}

	products := router.Group("/products")
	{
		products.POST("", handlers.Product.CreateProduct)
		products.GET("", handlers.Product.ListProducts)
		products.GET("/:id", handlers.Product.GetProduct)
	}

	users := router.Group("/users/:id")
	{
		users.GET("/wallet", handlers.Wallet.GetWallet)
		users.POST("/wallet/top-up", handlers.Wallet.TopUpWallet)
		users.GET("/wallet/transactions", handlers.Wallet.ListTransactions)

		users.POST("/addresses", handlers.Address.CreateAddress)
		users.GET("/addresses", handlers.Address.ListAddresses)

		users.GET("/cart", handlers.Cart.GetCart)
		users.PUT("/cart", handlers.Cart.ReplaceCart)
		users.DELETE("/cart", handlers.Cart.ClearCart)
	}
}

func registerCronRoutes(router *gin.RouterGroup, handlers Handlers) {
	billing := router.Group("/billing")
	{
		billing.POST("/sweep", handlers.BillingCron.RunBillingSweep)
	}
}
