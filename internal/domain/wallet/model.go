package wallet

import (
	ierr "github.com/dailycrate/dailycrate/internal/errors"
	"github.com/dailycrate/dailycrate/internal/types"
	"github.com/shopspring/decimal"
)

// Wallet is a user's prepaid balance. The balance is denormalized from the
// ledger and only ever mutated together with a ledger entry inside one
// transaction, under a row lock on the wallet.
type Wallet struct {
	ID           string             `db:"id" json:"id"`
	UserID       string             `db:"user_id" json:"user_id"`
	Balance      decimal.Decimal    `db:"balance" json:"balance"`
	WalletStatus types.WalletStatus `db:"wallet_status" json:"wallet_status"`

	types.BaseModel
}

func (w *Wallet) TableName() string {
	return "wallets"
}

func (w *Wallet) Validate() error {
	if w.UserID == "" {
		return ierr.NewError("wallet user id is required").
			WithHint("Wallet must belong to a user").
			Mark(ierr.ErrValidation)
	}
	if w.Balance.IsNegative() {
		return ierr.NewError("wallet balance cannot be negative").
			WithHint("Wallet balance cannot be negative").
			WithReportableDetails(map[string]any{
				"wallet_id": w.ID,
				"balance":   w.Balance,
			}).
			Mark(ierr.ErrValidation)
	}
	return w.WalletStatus.Validate()
}

// CanSpend reports whether the wallet is active and holds at least amount
func (w *Wallet) CanSpend(amount decimal.Decimal) bool {
	return w.WalletStatus == types.WalletStatusActive && w.Balance.GreaterThanOrEqual(amount)
}
