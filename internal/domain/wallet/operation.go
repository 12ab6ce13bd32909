package wallet

import (
	ierr "github.com/dailycrate/dailycrate/internal/errors"
	"github.com/dailycrate/dailycrate/internal/types"
	"github.com/shopspring/decimal"
)

// Operation is an internal request to credit or debit a wallet
type Operation struct {
	UserID        string
	Type          types.TransactionType
	Amount        decimal.Decimal
	Description   string
	ReferenceType types.WalletTxReferenceType
	ReferenceID   string
}

func (op *Operation) Validate() error {
	if op.UserID == "" {
		return ierr.NewError("operation user id is required").
			WithHint("Wallet operation must name a user").
			Mark(ierr.ErrValidation)
	}
	if err := op.Type.Validate(); err != nil {
		return err
	}
	if op.Amount.LessThanOrEqual(decimal.Zero) {
		return ierr.NewError("operation amount must be positive").
			WithHint("Amount must be greater than zero").
			WithReportableDetails(map[string]any{
				"amount": op.Amount,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}
