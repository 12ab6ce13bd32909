package service

import (
	"github.com/dailycrate/dailycrate/internal/cache"
	"github.com/dailycrate/dailycrate/internal/config"
	"github.com/dailycrate/dailycrate/internal/domain/address"
	"github.com/dailycrate/dailycrate/internal/domain/cart"
	"github.com/dailycrate/dailycrate/internal/domain/order"
	"github.com/dailycrate/dailycrate/internal/domain/product"
	"github.com/dailycrate/dailycrate/internal/domain/subscription"
	"github.com/dailycrate/dailycrate/internal/domain/wallet"
	"github.com/dailycrate/dailycrate/internal/logger"
	"github.com/dailycrate/dailycrate/internal/postgres"
)

// ServiceParams holds common dependencies for services
type ServiceParams struct {
	Logger *logger.Logger
	Config *config.Configuration
	DB     postgres.IClient
	Cache  cache.Cache

	// Repositories
	SubRepo     subscription.Repository
	WalletRepo  wallet.Repository
	OrderRepo   order.Repository
	ProductRepo product.Repository
	AddressRepo address.Repository
	CartRepo    cart.Repository
}

// NewServiceParams assembles the common service dependencies
func NewServiceParams(
	logger *logger.Logger,
	config *config.Configuration,
	db *postgres.DB,
	cache cache.Cache,
	subRepo subscription.Repository,
	walletRepo wallet.Repository,
	orderRepo order.Repository,
	productRepo product.Repository,
	addressRepo address.Repository,
	cartRepo cart.Repository,
) ServiceParams {
	return ServiceParams{
		Logger:      logger,
		Config:      config,
		DB:          db,
		Cache:       cache,
		SubRepo:     subRepo,
		WalletRepo:  walletRepo,
		OrderRepo:   orderRepo,
		ProductRepo: productRepo,
		AddressRepo: addressRepo,
		CartRepo:    cartRepo,
	}
}
