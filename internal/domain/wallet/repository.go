package wallet

import (
	"context"

	"github.com/shopspring/decimal"
)

// Repository defines the interface for wallet persistence operations
type Repository interface {
	CreateWallet(ctx context.Context, w *Wallet) error
	GetWalletByID(ctx context.Context, id string) (*Wallet, error)
	GetWalletByUserID(ctx context.Context, userID string) (*Wallet, error)

	// GetWalletByUserIDForUpdate acquires a row lock on the wallet for the
	// duration of the surrounding transaction, serializing concurrent debits
	GetWalletByUserIDForUpdate(ctx context.Context, userID string) (*Wallet, error)

	UpdateWalletBalance(ctx context.Context, walletID string, balance decimal.Decimal) error

	CreateTransaction(ctx context.Context, tx *Transaction) error
	GetTransactionByID(ctx context.Context, id string) (*Transaction, error)
	ListTransactionsByUserID(ctx context.Context, userID string) ([]*Transaction, error)
}
