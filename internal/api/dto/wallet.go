package dto

import (
	ierr "github.com/dailycrate/dailycrate/internal/errors"
	"github.com/dailycrate/dailycrate/internal/domain/wallet"
	"github.com/dailycrate/dailycrate/internal/validator"
	"github.com/shopspring/decimal"
)

// TopUpWalletRequest credits a user's wallet from the tokenized payment stub
type TopUpWalletRequest struct {
	UserID      string          `json:"user_id" validate:"required"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description,omitempty"`
}

func (r *TopUpWalletRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	if r.Amount.LessThanOrEqual(decimal.Zero) {
		return ierr.NewError("top-up amount must be positive").
			WithHint("Amount must be greater than zero").
			WithReportableDetails(map[string]any{
				"amount": r.Amount,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

type WalletResponse struct {
	*wallet.Wallet
}

type ListWalletTransactionsResponse struct {
	Transactions []*wallet.Transaction `json:"transactions"`
	Total        int                   `json:"total"`
}
