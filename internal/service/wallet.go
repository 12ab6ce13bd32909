package service

import (
	"context"

	"github.com/dailycrate/dailycrate/internal/api/dto"
	"github.com/dailycrate/dailycrate/internal/domain/wallet"
	ierr "github.com/dailycrate/dailycrate/internal/errors"
	"github.com/dailycrate/dailycrate/internal/types"
	"github.com/shopspring/decimal"
)

// WalletService manages prepaid wallets and their append-only ledger. All
// balance mutations go through processOperation, which pairs the balance write
// with a ledger entry inside one transaction under a wallet row lock.
type WalletService interface {
	GetOrCreateWallet(ctx context.Context, userID string) (*dto.WalletResponse, error)
	GetBalance(ctx context.Context, userID string) (decimal.Decimal, error)
	TopUpWallet(ctx context.Context, req *dto.TopUpWalletRequest) (*dto.WalletResponse, error)
	ListTransactions(ctx context.Context, userID string) (*dto.ListWalletTransactionsResponse, error)

	// DebitWallet debits the user's wallet if the balance is sufficient.
	// The caller is expected to run it inside a transaction scope when the
	// debit must be atomic with other writes.
	DebitWallet(ctx context.Context, op *wallet.Operation) (*wallet.Transaction, error)

	// RecordFailedDebit writes a failed ledger entry without touching the
	// balance. Used by the billing sweep to make insufficient-funds attempts
	// visible in the ledger.
	RecordFailedDebit(ctx context.Context, op *wallet.Operation) (*wallet.Transaction, error)
}

type walletService struct {
	ServiceParams
}

func NewWalletService(params ServiceParams) WalletService {
	return &walletService{
		ServiceParams: params,
	}
}

func (s *walletService) GetOrCreateWallet(ctx context.Context, userID string) (*dto.WalletResponse, error) {
	if userID == "" {
		return nil, ierr.NewError("user id is required").
			WithHint("Please provide a valid user ID").
			Mark(ierr.ErrValidation)
	}

	w, err := s.WalletRepo.GetWalletByUserID(ctx, userID)
	if err == nil {
		return &dto.WalletResponse{Wallet: w}, nil
	}
	if !ierr.IsNotFound(err) {
		return nil, err
	}

	w = &wallet.Wallet{
		ID:           types.GenerateUUIDWithPrefix(types.UUID_PREFIX_WALLET),
		UserID:       userID,
		Balance:      decimal.Zero,
		WalletStatus: types.WalletStatusActive,
		BaseModel:    types.GetDefaultBaseModel(ctx),
	}
	if err := w.Validate(); err != nil {
		return nil, err
	}
	if err := s.WalletRepo.CreateWallet(ctx, w); err != nil {
		return nil, err
	}

	s.Logger.Infow("created wallet", "wallet_id", w.ID, "user_id", userID)
	return &dto.WalletResponse{Wallet: w}, nil
}

func (s *walletService) GetBalance(ctx context.Context, userID string) (decimal.Decimal, error) {
	w, err := s.WalletRepo.GetWalletByUserID(ctx, userID)
	if err != nil {
		return decimal.Zero, err
	}
	return w.Balance, nil
}

func (s *walletService) TopUpWallet(ctx context.Context, req *dto.TopUpWalletRequest) (*dto.WalletResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	// Ensure the wallet exists before crediting it
	if _, err := s.GetOrCreateWallet(ctx, req.UserID); err != nil {
		return nil, err
	}

	description := req.Description
	if description == "" {
		description = "Wallet top-up"
	}

	op := &wallet.Operation{
		UserID:        req.UserID,
		Type:          types.TransactionTypeCredit,
		Amount:        req.Amount,
		Description:   description,
		ReferenceType: types.WalletTxReferenceTypeRequest,
		ReferenceID:   types.GenerateUUIDWithPrefix(types.UUID_PREFIX_WALLET_TRANSACTION),
	}

	if err := s.DB.WithTx(ctx, func(ctx context.Context) error {
		_, err := s.processOperation(ctx, op)
		return err
	}); err != nil {
		return nil, err
	}

	w, err := s.WalletRepo.GetWalletByUserID(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	return &dto.WalletResponse{Wallet: w}, nil
}

func (s *walletService) ListTransactions(ctx context.Context, userID string) (*dto.ListWalletTransactionsResponse, error) {
	txns, err := s.WalletRepo.ListTransactionsByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &dto.ListWalletTransactionsResponse{
		Transactions: txns,
		Total:        len(txns),
	}, nil
}

func (s *walletService) DebitWallet(ctx context.Context, op *wallet.Operation) (*wallet.Transaction, error) {
	if op.Type != types.TransactionTypeDebit {
		return nil, ierr.NewError("invalid transaction type").
			WithHint("Debit operations must carry the debit type").
			Mark(ierr.ErrValidation)
	}
	var txn *wallet.Transaction
	err := s.DB.WithTx(ctx, func(ctx context.Context) error {
		var opErr error
		txn, opErr = s.processOperation(ctx, op)
		return opErr
	})
	if err != nil {
		return nil, err
	}
	return txn, nil
}

func (s *walletService) RecordFailedDebit(ctx context.Context, op *wallet.Operation) (*wallet.Transaction, error) {
	if err := op.Validate(); err != nil {
		return nil, err
	}

	w, err := s.WalletRepo.GetWalletByUserID(ctx, op.UserID)
	if err != nil {
		return nil, err
	}

	txn := &wallet.Transaction{
		ID:            types.GenerateUUIDWithPrefix(types.UUID_PREFIX_WALLET_TRANSACTION),
		WalletID:      w.ID,
		UserID:        op.UserID,
		Type:          op.Type,
		Amount:        op.Amount,
		BalanceBefore: w.Balance,
		BalanceAfter:  w.Balance,
		TxStatus:      types.TransactionStatusFailed,
		Description:   op.Description,
		ReferenceType: op.ReferenceType,
		ReferenceID:   op.ReferenceID,
		BaseModel:     types.GetDefaultBaseModel(ctx),
	}
	if err := s.WalletRepo.CreateTransaction(ctx, txn); err != nil {
		return nil, err
	}

	s.Logger.Infow("recorded failed wallet debit",
		"wallet_id", w.ID,
		"user_id", op.UserID,
		"amount", op.Amount,
		"reference_id", op.ReferenceID,
	)
	return txn, nil
}

// processOperation applies a credit or debit under the wallet row lock. It must
// run inside a transaction scope; the row lock then holds until the outer
// transaction commits or rolls back.
func (s *walletService) processOperation(ctx context.Context, op *wallet.Operation) (*wallet.Transaction, error) {
	if err := op.Validate(); err != nil {
		return nil, err
	}

	w, err := s.WalletRepo.GetWalletByUserIDForUpdate(ctx, op.UserID)
	if err != nil {
		return nil, err
	}

	if w.WalletStatus != types.WalletStatusActive {
		return nil, ierr.NewError("wallet is not active").
			WithHint("Wallet is not active").
			WithReportableDetails(map[string]any{
				"wallet_id":     w.ID,
				"wallet_status": w.WalletStatus,
			}).
			Mark(ierr.ErrInvalidOperation)
	}

	var newBalance decimal.Decimal
	switch op.Type {
	case types.TransactionTypeDebit:
		if !w.CanSpend(op.Amount) {
			return nil, ierr.NewError("insufficient wallet balance").
				WithHintf("Wallet balance %s is below the required %s", w.Balance, op.Amount).
				WithReportableDetails(map[string]any{
					"wallet_id": w.ID,
					"balance":   w.Balance,
					"required":  op.Amount,
				}).
				Mark(ierr.ErrInsufficientFunds)
		}
		newBalance = w.Balance.Sub(op.Amount)
	case types.TransactionTypeCredit:
		newBalance = w.Balance.Add(op.Amount)
	}

	txn := &wallet.Transaction{
		ID:            types.GenerateUUIDWithPrefix(types.UUID_PREFIX_WALLET_TRANSACTION),
		WalletID:      w.ID,
		UserID:        op.UserID,
		Type:          op.Type,
		Amount:        op.Amount,
		BalanceBefore: w.Balance,
		BalanceAfter:  newBalance,
		TxStatus:      types.TransactionStatusSuccess,
		Description:   op.Description,
		ReferenceType: op.ReferenceType,
		ReferenceID:   op.ReferenceID,
		BaseModel:     types.GetDefaultBaseModel(ctx),
	}

	if err := s.WalletRepo.CreateTransaction(ctx, txn); err != nil {
		return nil, err
	}
	if err := s.WalletRepo.UpdateWalletBalance(ctx, w.ID, newBalance); err != nil {
		return nil, err
	}

	s.Logger.Debugw("wallet operation completed",
		"wallet_id", w.ID,
		"type", op.Type,
		"amount", op.Amount,
		"balance_after", newBalance,
	)
	return txn, nil
}
