package testutil

import (
	"context"
	"sort"
	"sync"

	"github.com/dailycrate/dailycrate/internal/domain/wallet"
	ierr "github.com/dailycrate/dailycrate/internal/errors"
	"github.com/shopspring/decimal"
)

type InMemoryWalletStore struct {
	mu           sync.RWMutex
	wallets      map[string]*wallet.Wallet
	transactions map[string]*wallet.Transaction
}

func NewInMemoryWalletStore() *InMemoryWalletStore {
	return &InMemoryWalletStore{
		wallets:      make(map[string]*wallet.Wallet),
		transactions: make(map[string]*wallet.Transaction),
	}
}

func (r *InMemoryWalletStore) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.wallets = make(map[string]*wallet.Wallet)
	r.transactions = make(map[string]*wallet.Transaction)
}

func (r *InMemoryWalletStore) CreateWallet(ctx context.Context, w *wallet.Wallet) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.wallets[w.ID]; exists {
		return ierr.NewError("wallet already exists").
			Mark(ierr.ErrAlreadyExists)
	}
	c := *w
	r.wallets[w.ID] = &c
	return nil
}

func (r *InMemoryWalletStore) GetWalletByID(ctx context.Context, id string) (*wallet.Wallet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	w, exists := r.wallets[id]
	if !exists {
		return nil, ierr.NewError("wallet not found").
			Mark(ierr.ErrNotFound)
	}
	c := *w
	return &c, nil
}

func (r *InMemoryWalletStore) GetWalletByUserID(ctx context.Context, userID string) (*wallet.Wallet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.findByUserID(userID)
}

// GetWalletByUserIDForUpdate has no row lock to take in memory; tests that
// exercise locking behavior run against a real database
func (r *InMemoryWalletStore) GetWalletByUserIDForUpdate(ctx context.Context, userID string) (*wallet.Wallet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.findByUserID(userID)
}

func (r *InMemoryWalletStore) findByUserID(userID string) (*wallet.Wallet, error) {
	for _, w := range r.wallets {
		if w.UserID == userID {
			c := *w
			return &c, nil
		}
	}
	return nil, ierr.NewError("wallet not found").
		Mark(ierr.ErrNotFound)
}

func (r *InMemoryWalletStore) UpdateWalletBalance(ctx context.Context, walletID string, balance decimal.Decimal) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	w, exists := r.wallets[walletID]
	if !exists {
		return ierr.NewError("wallet not found").
			Mark(ierr.ErrNotFound)
	}
	w.Balance = balance
	return nil
}

func (r *InMemoryWalletStore) CreateTransaction(ctx context.Context, tx *wallet.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.transactions[tx.ID]; exists {
		return ierr.NewError("transaction already exists").
			Mark(ierr.ErrAlreadyExists)
	}
	c := *tx
	r.transactions[tx.ID] = &c
	return nil
}

func (r *InMemoryWalletStore) GetTransactionByID(ctx context.Context, id string) (*wallet.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tx, exists := r.transactions[id]
	if !exists {
		return nil, ierr.NewError("transaction not found").
			Mark(ierr.ErrNotFound)
	}
	c := *tx
	return &c, nil
}

func (r *InMemoryWalletStore) ListTransactionsByUserID(ctx context.Context, userID string) ([]*wallet.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*wallet.Transaction
	for _, tx := range r.transactions {
		if tx.UserID == userID {
			c := *tx
			result = append(result, &c)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}
