package wallet

import (
	"github.com/dailycrate/dailycrate/internal/types"
	"github.com/shopspring/decimal"
)

// Transaction is one immutable wallet ledger entry. Successful entries carry
// the balance before and after; failed debit attempts are recorded with both
// balances equal to the balance at attempt time.
type Transaction struct {
	ID            string                      `db:"id" json:"id"`
	WalletID      string                      `db:"wallet_id" json:"wallet_id"`
	UserID        string                      `db:"user_id" json:"user_id"`
	Type          types.TransactionType       `db:"type" json:"type"`
	Amount        decimal.Decimal             `db:"amount" json:"amount"`
	BalanceBefore decimal.Decimal             `db:"balance_before" json:"balance_before"`
	BalanceAfter  decimal.Decimal             `db:"balance_after" json:"balance_after"`
	TxStatus      types.TransactionStatus     `db:"tx_status" json:"tx_status"`
	Description   string                      `db:"description" json:"description"`
	ReferenceType types.WalletTxReferenceType `db:"reference_type" json:"reference_type"`
	ReferenceID   string                      `db:"reference_id" json:"reference_id"`

	types.BaseModel
}

func (t *Transaction) TableName() string {
	return "wallet_transactions"
}
