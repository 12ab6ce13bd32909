package types

import (
	ierr "github.com/dailycrate/dailycrate/internal/errors"
	"github.com/samber/lo"
)

// WalletStatus is the lifecycle status of a wallet
type WalletStatus string

const (
	WalletStatusActive WalletStatus = "active"
	WalletStatusFrozen WalletStatus = "frozen"
	WalletStatusClosed WalletStatus = "closed"
)

func (s WalletStatus) Validate() error {
	allowed := []WalletStatus{
		WalletStatusActive,
		WalletStatusFrozen,
		WalletStatusClosed,
	}
	if !lo.Contains(allowed, s) {
		return ierr.NewError("invalid wallet status").
			WithHint("Invalid wallet status").
			WithReportableDetails(map[string]any{
				"status": s,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// TransactionType is the direction of a wallet ledger entry
type TransactionType string

const (
	TransactionTypeCredit TransactionType = "credit"
	TransactionTypeDebit  TransactionType = "debit"
)

func (t TransactionType) Validate() error {
	allowed := []TransactionType{
		TransactionTypeCredit,
		TransactionTypeDebit,
	}
	if !lo.Contains(allowed, t) {
		return ierr.NewError("invalid transaction type").
			WithHint("Transaction type must be credit or debit").
			WithReportableDetails(map[string]any{
				"type": t,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// TransactionStatus is the outcome recorded on a wallet ledger entry.
// Failed debit attempts are recorded too, with the wallet balance untouched.
type TransactionStatus string

const (
	TransactionStatusPending TransactionStatus = "pending"
	TransactionStatusSuccess TransactionStatus = "success"
	TransactionStatusFailed  TransactionStatus = "failed"
)

// WalletTxReferenceType identifies what a ledger entry was recorded for
type WalletTxReferenceType string

const (
	WalletTxReferenceTypeOrder        WalletTxReferenceType = "order"
	WalletTxReferenceTypeSubscription WalletTxReferenceType = "subscription"
	WalletTxReferenceTypeRequest      WalletTxReferenceType = "request"
)
