package repository

import (
	"github.com/dailycrate/dailycrate/internal/domain/address"
	"github.com/dailycrate/dailycrate/internal/domain/cart"
	"github.com/dailycrate/dailycrate/internal/domain/order"
	"github.com/dailycrate/dailycrate/internal/domain/product"
	"github.com/dailycrate/dailycrate/internal/domain/subscription"
	"github.com/dailycrate/dailycrate/internal/domain/wallet"
	"github.com/dailycrate/dailycrate/internal/logger"
	"github.com/dailycrate/dailycrate/internal/postgres"
	postgresRepo "github.com/dailycrate/dailycrate/internal/repository/postgres"
)

func NewSubscriptionRepository(db *postgres.DB, logger *logger.Logger) subscription.Repository {
	return postgresRepo.NewSubscriptionRepository(db, logger)
}

func NewWalletRepository(db *postgres.DB, logger *logger.Logger) wallet.Repository {
	return postgresRepo.NewWalletRepository(db, logger)
}

func NewOrderRepository(db *postgres.DB, logger *logger.Logger) order.Repository {
	return postgresRepo.NewOrderRepository(db, logger)
}

func NewProductRepository(db *postgres.DB, logger *logger.Logger) product.Repository {
	return postgresRepo.NewProductRepository(db, logger)
}

func NewAddressRepository(db *postgres.DB, logger *logger.Logger) address.Repository {
	return postgresRepo.NewAddressRepository(db, logger)
}

func NewCartRepository(db *postgres.DB, logger *logger.Logger) cart.Repository {
	return postgresRepo.NewCartRepository(db, logger)
}
