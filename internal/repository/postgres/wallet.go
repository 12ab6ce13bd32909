package postgres

import (
	"context"

	"github.com/dailycrate/dailycrate/internal/domain/wallet"
	ierr "github.com/dailycrate/dailycrate/internal/errors"
	"github.com/dailycrate/dailycrate/internal/logger"
	"github.com/dailycrate/dailycrate/internal/postgres"
	"github.com/dailycrate/dailycrate/internal/types"
	"github.com/shopspring/decimal"
)

type walletRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

// NewWalletRepository creates a new instance of wallet repository
func NewWalletRepository(db *postgres.DB, logger *logger.Logger) wallet.Repository {
	return &walletRepository{
		db:     db,
		logger: logger,
	}
}

func (r *walletRepository) CreateWallet(ctx context.Context, w *wallet.Wallet) error {
	query := `
		INSERT INTO wallets (
			id, user_id, balance, wallet_status,
			status, created_at, updated_at, created_by, updated_by
		) VALUES (
			:id, :user_id, :balance, :wallet_status,
			:status, :created_at, :updated_at, :created_by, :updated_by
		)`

	r.logger.Debugw("creating wallet",
		"wallet_id", w.ID,
		"user_id", w.UserID,
	)

	if _, err := r.db.NamedExecContext(ctx, query, w); err != nil {
		return ierr.WithError(err).
			WithHint("Failed to create wallet").
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *walletRepository) GetWalletByID(ctx context.Context, id string) (*wallet.Wallet, error) {
	query := `
		SELECT * FROM wallets
		WHERE id = :id
		AND status = :status`

	params := map[string]interface{}{
		"id":     id,
		"status": types.StatusPublished,
	}

	return r.queryOne(ctx, query, params)
}

func (r *walletRepository) GetWalletByUserID(ctx context.Context, userID string) (*wallet.Wallet, error) {
	query := `
		SELECT * FROM wallets
		WHERE user_id = :user_id
		AND status = :status`

	params := map[string]interface{}{
		"user_id": userID,
		"status":  types.StatusPublished,
	}

	return r.queryOne(ctx, query, params)
}

// GetWalletByUserIDForUpdate locks the wallet row until the surrounding
// transaction ends. Concurrent debits for the same user serialize here, which
// prevents two debits from both reading a stale sufficient balance.
func (r *walletRepository) GetWalletByUserIDForUpdate(ctx context.Context, userID string) (*wallet.Wallet, error) {
	query := `
		SELECT * FROM wallets
		WHERE user_id = :user_id
		AND status = :status
		FOR UPDATE`

	params := map[string]interface{}{
		"user_id": userID,
		"status":  types.StatusPublished,
	}

	return r.queryOne(ctx, query, params)
}

func (r *walletRepository) UpdateWalletBalance(ctx context.Context, walletID string, balance decimal.Decimal) error {
	query := `
		UPDATE wallets
		SET
			balance = :balance,
			updated_at = NOW(),
			updated_by = :updated_by
		WHERE id = :id
		AND status = :status`

	params := map[string]interface{}{
		"id":         walletID,
		"balance":    balance,
		"updated_by": types.GetUserID(ctx),
		"status":     types.StatusPublished,
	}

	r.logger.Debugw("updating wallet balance",
		"wallet_id", walletID,
		"balance", balance,
	)

	result, err := r.db.NamedExecContext(ctx, query, params)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to update wallet balance").
			Mark(ierr.ErrDatabase)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to read affected rows").
			Mark(ierr.ErrDatabase)
	}
	if rows == 0 {
		return ierr.NewError("wallet not found").
			WithHint("Wallet not found").
			WithReportableDetails(map[string]any{
				"wallet_id": walletID,
			}).
			Mark(ierr.ErrNotFound)
	}
	return nil
}

func (r *walletRepository) CreateTransaction(ctx context.Context, tx *wallet.Transaction) error {
	query := `
		INSERT INTO wallet_transactions (
			id, wallet_id, user_id, type, amount, balance_before, balance_after,
			tx_status, description, reference_type, reference_id,
			status, created_at, updated_at, created_by, updated_by
		) VALUES (
			:id, :wallet_id, :user_id, :type, :amount, :balance_before, :balance_after,
			:tx_status, :description, :reference_type, :reference_id,
			:status, :created_at, :updated_at, :created_by, :updated_by
		)`

	r.logger.Debugw("creating wallet transaction",
		"transaction_id", tx.ID,
		"wallet_id", tx.WalletID,
		"type", tx.Type,
		"tx_status", tx.TxStatus,
	)

	if _, err := r.db.NamedExecContext(ctx, query, tx); err != nil {
		return ierr.WithError(err).
			WithHint("Failed to create wallet transaction").
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *walletRepository) GetTransactionByID(ctx context.Context, id string) (*wallet.Transaction, error) {
	query := `
		SELECT * FROM wallet_transactions
		WHERE id = :id
		AND status = :status`

	params := map[string]interface{}{
		"id":     id,
		"status": types.StatusPublished,
	}

	rows, err := r.db.NamedQueryContext(ctx, query, params)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to query wallet transaction").
			Mark(ierr.ErrDatabase)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, ierr.NewError("wallet transaction not found").
			WithHint("Wallet transaction not found").
			Mark(ierr.ErrNotFound)
	}

	var tx wallet.Transaction
	if err := rows.StructScan(&tx); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to scan wallet transaction").
			Mark(ierr.ErrDatabase)
	}
	return &tx, nil
}

func (r *walletRepository) ListTransactionsByUserID(ctx context.Context, userID string) ([]*wallet.Transaction, error) {
	query := `
		SELECT * FROM wallet_transactions
		WHERE user_id = :user_id
		AND status = :status
		ORDER BY created_at DESC`

	params := map[string]interface{}{
		"user_id": userID,
		"status":  types.StatusPublished,
	}

	rows, err := r.db.NamedQueryContext(ctx, query, params)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to query wallet transactions").
			Mark(ierr.ErrDatabase)
	}
	defer rows.Close()

	var txns []*wallet.Transaction
	for rows.Next() {
		var tx wallet.Transaction
		if err := rows.StructScan(&tx); err != nil {
			return nil, ierr.WithError(err).
				WithHint("Failed to scan wallet transaction").
				Mark(ierr.ErrDatabase)
		}
		txns = append(txns, &tx)
	}

	if err = rows.Err(); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Error iterating wallet transaction rows").
			Mark(ierr.ErrDatabase)
	}
	return txns, nil
}

func (r *walletRepository) queryOne(ctx context.Context, query string, params map[string]interface{}) (*wallet.Wallet, error) {
	rows, err := r.db.NamedQueryContext(ctx, query, params)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to query wallet").
			Mark(ierr.ErrDatabase)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, ierr.NewError("wallet not found").
			WithHint("Wallet not found").
			Mark(ierr.ErrNotFound)
	}

	var w wallet.Wallet
	if err := rows.StructScan(&w); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to scan wallet").
			Mark(ierr.ErrDatabase)
	}
	return &w, nil
}
