package service

import (
	"testing"

	"github.com/dailycrate/dailycrate/internal/api/dto"
	"github.com/dailycrate/dailycrate/internal/domain/wallet"
	ierr "github.com/dailycrate/dailycrate/internal/errors"
	"github.com/dailycrate/dailycrate/internal/testutil"
	"github.com/dailycrate/dailycrate/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type WalletServiceSuite struct {
	testutil.BaseServiceTestSuite
	service WalletService
}

func TestWalletService(t *testing.T) {
	suite.Run(t, new(WalletServiceSuite))
}

func (s *WalletServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	stores := s.GetStores()
	s.service = NewWalletService(ServiceParams{
		Logger:      s.GetLogger(),
		Config:      s.GetConfig(),
		DB:          s.GetDB(),
		SubRepo:     stores.SubscriptionRepo,
		WalletRepo:  stores.WalletRepo,
		OrderRepo:   stores.OrderRepo,
		ProductRepo: stores.ProductRepo,
		AddressRepo: stores.AddressRepo,
		CartRepo:    stores.CartRepo,
	})
}

func (s *WalletServiceSuite) TestGetOrCreateWallet() {
	resp, err := s.service.GetOrCreateWallet(s.GetContext(), "user_1")
	s.NoError(err)
	s.True(resp.Balance.IsZero())
	s.Equal(types.WalletStatusActive, resp.WalletStatus)

	// second call returns the same wallet
	again, err := s.service.GetOrCreateWallet(s.GetContext(), "user_1")
	s.NoError(err)
	s.Equal(resp.ID, again.ID)
}

func (s *WalletServiceSuite) TestTopUpCreditsBalanceAndLedger() {
	resp, err := s.service.TopUpWallet(s.GetContext(), &dto.TopUpWalletRequest{
		UserID: "user_1",
		Amount: decimal.NewFromInt(200),
	})
	s.NoError(err)
	s.True(resp.Balance.Equal(decimal.NewFromInt(200)))

	txns, err := s.service.ListTransactions(s.GetContext(), "user_1")
	s.NoError(err)
	s.Equal(1, txns.Total)
	s.Equal(types.TransactionTypeCredit, txns.Transactions[0].Type)
	s.True(txns.Transactions[0].BalanceBefore.IsZero())
	s.True(txns.Transactions[0].BalanceAfter.Equal(decimal.NewFromInt(200)))
}

func (s *WalletServiceSuite) TestTopUpRejectsNonPositiveAmount() {
	_, err := s.service.TopUpWallet(s.GetContext(), &dto.TopUpWalletRequest{
		UserID: "user_1",
		Amount: decimal.Zero,
	})
	s.True(ierr.IsValidation(err))

	_, err = s.service.TopUpWallet(s.GetContext(), &dto.TopUpWalletRequest{
		UserID: "user_1",
		Amount: decimal.NewFromInt(-5),
	})
	s.True(ierr.IsValidation(err))
}

func (s *WalletServiceSuite) TestDebitWallet() {
	_, err := s.service.TopUpWallet(s.GetContext(), &dto.TopUpWalletRequest{
		UserID: "user_1",
		Amount: decimal.NewFromInt(100),
	})
	s.NoError(err)

	txn, err := s.service.DebitWallet(s.GetContext(), &wallet.Operation{
		UserID:        "user_1",
		Type:          types.TransactionTypeDebit,
		Amount:        decimal.NewFromInt(60),
		Description:   "order payment",
		ReferenceType: types.WalletTxReferenceTypeOrder,
		ReferenceID:   "ord_1",
	})
	s.NoError(err)
	s.True(txn.BalanceBefore.Equal(decimal.NewFromInt(100)))
	s.True(txn.BalanceAfter.Equal(decimal.NewFromInt(40)))

	balance, err := s.service.GetBalance(s.GetContext(), "user_1")
	s.NoError(err)
	s.True(balance.Equal(decimal.NewFromInt(40)))
}

func (s *WalletServiceSuite) TestDebitInsufficientFunds() {
	_, err := s.service.TopUpWallet(s.GetContext(), &dto.TopUpWalletRequest{
		UserID: "user_1",
		Amount: decimal.NewFromInt(30),
	})
	s.NoError(err)

	_, err = s.service.DebitWallet(s.GetContext(), &wallet.Operation{
		UserID:        "user_1",
		Type:          types.TransactionTypeDebit,
		Amount:        decimal.NewFromInt(60),
		Description:   "order payment",
		ReferenceType: types.WalletTxReferenceTypeOrder,
		ReferenceID:   "ord_1",
	})
	s.True(ierr.IsInsufficientFunds(err))

	balance, err := s.service.GetBalance(s.GetContext(), "user_1")
	s.NoError(err)
	s.True(balance.Equal(decimal.NewFromInt(30)), "failed debit must not move the balance")

	// the failed attempt wrote no ledger entry; that is the caller's choice
	// via RecordFailedDebit
	txns, err := s.service.ListTransactions(s.GetContext(), "user_1")
	s.NoError(err)
	s.Equal(1, txns.Total)
}

func (s *WalletServiceSuite) TestRecordFailedDebit() {
	_, err := s.service.GetOrCreateWallet(s.GetContext(), "user_1")
	s.NoError(err)

	txn, err := s.service.RecordFailedDebit(s.GetContext(), &wallet.Operation{
		UserID:        "user_1",
		Type:          types.TransactionTypeDebit,
		Amount:        decimal.NewFromInt(102),
		Description:   "subscription delivery payment failed",
		ReferenceType: types.WalletTxReferenceTypeSubscription,
		ReferenceID:   "sub_1",
	})
	s.NoError(err)
	s.Equal(types.TransactionStatusFailed, txn.TxStatus)
	s.True(txn.BalanceBefore.Equal(txn.BalanceAfter))

	balance, err := s.service.GetBalance(s.GetContext(), "user_1")
	s.NoError(err)
	s.True(balance.IsZero())
}

func (s *WalletServiceSuite) TestFrozenWalletRejectsOperations() {
	stores := s.GetStores()
	s.NoError(stores.WalletRepo.CreateWallet(s.GetContext(), &wallet.Wallet{
		ID:           "wallet_frozen",
		UserID:       "user_1",
		Balance:      decimal.NewFromInt(500),
		WalletStatus: types.WalletStatusFrozen,
		BaseModel:    types.GetDefaultBaseModel(s.GetContext()),
	}))

	_, err := s.service.DebitWallet(s.GetContext(), &wallet.Operation{
		UserID:        "user_1",
		Type:          types.TransactionTypeDebit,
		Amount:        decimal.NewFromInt(10),
		Description:   "order payment",
		ReferenceType: types.WalletTxReferenceTypeOrder,
		ReferenceID:   "ord_1",
	})
	s.True(ierr.IsInvalidOperation(err))
}
