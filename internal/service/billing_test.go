package service

import (
	"context"
	"testing"
	"time"

	"github.com/dailycrate/dailycrate/internal/api/dto"
	"github.com/dailycrate/dailycrate/internal/domain/address"
	"github.com/dailycrate/dailycrate/internal/domain/order"
	"github.com/dailycrate/dailycrate/internal/domain/product"
	"github.com/dailycrate/dailycrate/internal/domain/subscription"
	"github.com/dailycrate/dailycrate/internal/domain/wallet"
	ierr "github.com/dailycrate/dailycrate/internal/errors"
	"github.com/dailycrate/dailycrate/internal/testutil"
	"github.com/dailycrate/dailycrate/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type BillingServiceSuite struct {
	testutil.BaseServiceTestSuite
	service BillingService
	due     time.Time
}

func TestBillingService(t *testing.T) {
	suite.Run(t, new(BillingServiceSuite))
}

func (s *BillingServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.service = NewBillingService(s.params())
	s.due = time.Date(2025, time.June, 2, 0, 0, 0, 0, time.UTC)
	s.setupCatalog()
}

func (s *BillingServiceSuite) params() ServiceParams {
	stores := s.GetStores()
	return ServiceParams{
		Logger:      s.GetLogger(),
		Config:      s.GetConfig(),
		DB:          s.GetDB(),
		SubRepo:     stores.SubscriptionRepo,
		WalletRepo:  stores.WalletRepo,
		OrderRepo:   stores.OrderRepo,
		ProductRepo: stores.ProductRepo,
		AddressRepo: stores.AddressRepo,
		CartRepo:    stores.CartRepo,
	}
}

func (s *BillingServiceSuite) setupCatalog() {
	stores := s.GetStores()
	ctx := s.GetContext()

	s.NoError(stores.ProductRepo.Create(ctx, &product.Product{
		ID:        "prod_coffee",
		Name:      "House Blend Coffee",
		BasePrice: decimal.NewFromInt(40),
		BaseModel: types.GetDefaultBaseModel(ctx),
	}))
	s.NoError(stores.ProductRepo.Create(ctx, &product.Product{
		ID:        "prod_tea",
		Name:      "Green Tea",
		BasePrice: decimal.NewFromInt(25),
		BaseModel: types.GetDefaultBaseModel(ctx),
	}))
	s.NoError(stores.AddressRepo.Create(ctx, &address.Address{
		ID:        "addr_home",
		UserID:    "user_1",
		Line1:     "12 Crate Street",
		City:      "Pune",
		BaseModel: types.GetDefaultBaseModel(ctx),
	}))
}

func (s *BillingServiceSuite) createWallet(userID string, balance decimal.Decimal) {
	s.NoError(s.GetStores().WalletRepo.CreateWallet(s.GetContext(), &wallet.Wallet{
		ID:           types.GenerateUUIDWithPrefix(types.UUID_PREFIX_WALLET),
		UserID:       userID,
		Balance:      balance,
		WalletStatus: types.WalletStatusActive,
		BaseModel:    types.GetDefaultBaseModel(s.GetContext()),
	}))
}

func (s *BillingServiceSuite) createSubscription(userID string, items subscription.LineItems) *subscription.Subscription {
	sub := &subscription.Subscription{
		ID:                 types.GenerateUUIDWithPrefix(types.UUID_PREFIX_SUBSCRIPTION),
		UserID:             userID,
		DeliveryAddressID:  "addr_home",
		Items:              items,
		Frequency:          types.FrequencyWeekly,
		SubscriptionStatus: types.SubscriptionStatusActive,
		NextDeliveryDate:   s.due,
		PaymentMethodToken: "ptok_test",
		BaseModel:          types.GetDefaultBaseModel(s.GetContext()),
	}
	s.NoError(s.GetStores().SubscriptionRepo.Create(s.GetContext(), sub))
	return sub
}

func (s *BillingServiceSuite) TestSweepBillsDueSubscription() {
	s.createWallet("user_1", decimal.NewFromInt(200))
	sub := s.createSubscription("user_1", subscription.LineItems{
		{ProductID: "prod_coffee", Quantity: 3},
	})

	result, err := s.service.RunSweep(s.GetContext(), s.due)
	s.NoError(err)
	s.Equal(1, result.Processed)
	s.Equal(1, result.Billed)
	s.Equal(0, result.Failed)

	// 3 x 40 = 120, minus the 15% subscription discount = 102
	w, err := s.GetStores().WalletRepo.GetWalletByUserID(s.GetContext(), "user_1")
	s.NoError(err)
	s.True(w.Balance.Equal(decimal.NewFromInt(98)), "balance %s", w.Balance)

	orders, err := s.GetStores().OrderRepo.GetBySubscriptionID(s.GetContext(), sub.ID)
	s.NoError(err)
	s.Len(orders, 1)
	ord := orders[0]
	s.True(ord.TotalAmount.Equal(decimal.NewFromInt(102)))
	s.Equal(types.OrderTypeSubscription, ord.OrderType)
	s.Equal(types.PaymentStatusPaid, ord.PaymentStatus)
	s.Len(ord.Items, 1)
	s.Equal("House Blend Coffee", ord.Items[0].ProductName)
	s.True(ord.Items[0].UnitPrice.Equal(decimal.NewFromInt(40)))

	updated, err := s.GetStores().SubscriptionRepo.Get(s.GetContext(), sub.ID)
	s.NoError(err)
	s.Equal(s.due.AddDate(0, 0, 7), updated.NextDeliveryDate)
	s.NotNil(updated.LastDeliveryDate)
	s.Equal(s.due, *updated.LastDeliveryDate)

	txns, err := s.GetStores().WalletRepo.ListTransactionsByUserID(s.GetContext(), "user_1")
	s.NoError(err)
	s.Len(txns, 1)
	s.Equal(types.TransactionTypeDebit, txns[0].Type)
	s.Equal(types.TransactionStatusSuccess, txns[0].TxStatus)
	s.True(txns[0].BalanceBefore.Equal(decimal.NewFromInt(200)))
	s.True(txns[0].BalanceAfter.Equal(decimal.NewFromInt(98)))
}

func (s *BillingServiceSuite) TestSweepIsIdempotentForDate() {
	s.createWallet("user_1", decimal.NewFromInt(500))
	sub := s.createSubscription("user_1", subscription.LineItems{
		{ProductID: "prod_coffee", Quantity: 1},
	})

	first, err := s.service.RunSweep(s.GetContext(), s.due)
	s.NoError(err)
	s.Equal(1, first.Billed)

	// the successful cycle advanced the due date, so the same sweep again is a no-op
	second, err := s.service.RunSweep(s.GetContext(), s.due)
	s.NoError(err)
	s.Equal(0, second.Processed)

	orders, err := s.GetStores().OrderRepo.GetBySubscriptionID(s.GetContext(), sub.ID)
	s.NoError(err)
	s.Len(orders, 1)

	w, err := s.GetStores().WalletRepo.GetWalletByUserID(s.GetContext(), "user_1")
	s.NoError(err)
	s.True(w.Balance.Equal(decimal.NewFromInt(466)), "charged exactly once, balance %s", w.Balance)
}

func (s *BillingServiceSuite) TestOverdueSubscriptionBilledOnce() {
	s.createWallet("user_1", decimal.NewFromInt(500))
	sub := s.createSubscription("user_1", subscription.LineItems{
		{ProductID: "prod_coffee", Quantity: 1},
	})

	// the sweep runs three days late; the next date advances from the missed
	// due date, not from the sweep date, so the schedule does not drift
	asOf := s.due.AddDate(0, 0, 3)
	result, err := s.service.RunSweep(s.GetContext(), asOf)
	s.NoError(err)
	s.Equal(1, result.Billed)

	updated, err := s.GetStores().SubscriptionRepo.Get(s.GetContext(), sub.ID)
	s.NoError(err)
	s.Equal(s.due.AddDate(0, 0, 7), updated.NextDeliveryDate)

	orders, err := s.GetStores().OrderRepo.GetBySubscriptionID(s.GetContext(), sub.ID)
	s.NoError(err)
	s.Len(orders, 1)
}

func (s *BillingServiceSuite) TestInsufficientFundsLeavesStateIntact() {
	s.createWallet("user_1", decimal.NewFromInt(50))
	sub := s.createSubscription("user_1", subscription.LineItems{
		{ProductID: "prod_coffee", Quantity: 3}, // 102 after discount
	})

	result, err := s.service.RunSweep(s.GetContext(), s.due)
	s.NoError(err)
	s.Equal(1, result.Failed)
	s.Equal(0, result.Billed)

	w, err := s.GetStores().WalletRepo.GetWalletByUserID(s.GetContext(), "user_1")
	s.NoError(err)
	s.True(w.Balance.Equal(decimal.NewFromInt(50)), "failed cycle must not touch the balance")

	orders, err := s.GetStores().OrderRepo.GetBySubscriptionID(s.GetContext(), sub.ID)
	s.NoError(err)
	s.Empty(orders, "no order without payment")

	txns, err := s.GetStores().WalletRepo.ListTransactionsByUserID(s.GetContext(), "user_1")
	s.NoError(err)
	s.Len(txns, 1, "exactly one failed ledger entry")
	s.Equal(types.TransactionStatusFailed, txns[0].TxStatus)
	s.True(txns[0].Amount.Equal(decimal.NewFromInt(102)))
	s.True(txns[0].BalanceBefore.Equal(txns[0].BalanceAfter))

	updated, err := s.GetStores().SubscriptionRepo.Get(s.GetContext(), sub.ID)
	s.NoError(err)
	s.Equal(types.SubscriptionStatusActive, updated.SubscriptionStatus)
	s.Equal(s.due, updated.NextDeliveryDate, "due date stays so the next sweep retries")
	s.Equal(1, updated.FailedAttempts)
}

func (s *BillingServiceSuite) TestTopUpAfterFailureBillsOnNextSweep() {
	s.createWallet("user_1", decimal.NewFromInt(50))
	sub := s.createSubscription("user_1", subscription.LineItems{
		{ProductID: "prod_coffee", Quantity: 3},
	})

	result, err := s.service.RunSweep(s.GetContext(), s.due)
	s.NoError(err)
	s.Equal(1, result.Failed)

	walletSvc := NewWalletService(s.params())
	_, err = walletSvc.TopUpWallet(s.GetContext(), &dto.TopUpWalletRequest{
		UserID: "user_1",
		Amount: decimal.NewFromInt(150),
	})
	s.NoError(err)

	result, err = s.service.RunSweep(s.GetContext(), s.due)
	s.NoError(err)
	s.Equal(1, result.Billed)

	updated, err := s.GetStores().SubscriptionRepo.Get(s.GetContext(), sub.ID)
	s.NoError(err)
	s.Equal(0, updated.FailedAttempts, "success resets the failure counter")

	w, err := s.GetStores().WalletRepo.GetWalletByUserID(s.GetContext(), "user_1")
	s.NoError(err)
	s.True(w.Balance.Equal(decimal.NewFromInt(98)))
}

func (s *BillingServiceSuite) TestRetryForeverKeepsSubscriptionActive() {
	s.createWallet("user_1", decimal.NewFromInt(10))
	sub := s.createSubscription("user_1", subscription.LineItems{
		{ProductID: "prod_coffee", Quantity: 1},
	})

	for i := 0; i < 3; i++ {
		_, err := s.service.RunSweep(s.GetContext(), s.due)
		s.NoError(err)
	}

	updated, err := s.GetStores().SubscriptionRepo.Get(s.GetContext(), sub.ID)
	s.NoError(err)
	s.Equal(types.SubscriptionStatusActive, updated.SubscriptionStatus)
	s.Equal(3, updated.FailedAttempts)
}

func (s *BillingServiceSuite) TestPauseAfterNFailures() {
	s.GetConfig().Billing.FailurePolicy = types.BillingFailurePolicyPauseAfterN
	s.GetConfig().Billing.MaxBillingFailures = 2
	defer func() {
		s.GetConfig().Billing.FailurePolicy = types.BillingFailurePolicyRetryForever
		s.GetConfig().Billing.MaxBillingFailures = 0
	}()

	s.createWallet("user_1", decimal.NewFromInt(10))
	sub := s.createSubscription("user_1", subscription.LineItems{
		{ProductID: "prod_coffee", Quantity: 1},
	})

	for i := 0; i < 2; i++ {
		_, err := s.service.RunSweep(s.GetContext(), s.due)
		s.NoError(err)
	}

	updated, err := s.GetStores().SubscriptionRepo.Get(s.GetContext(), sub.ID)
	s.NoError(err)
	s.Equal(types.SubscriptionStatusPaused, updated.SubscriptionStatus)
	s.Equal(2, updated.FailedAttempts)

	// paused subscriptions are out of the sweep entirely
	result, err := s.service.RunSweep(s.GetContext(), s.due)
	s.NoError(err)
	s.Equal(0, result.Processed)
}

func (s *BillingServiceSuite) TestVariantPricePinnedAtEnrollment() {
	s.createWallet("user_1", decimal.NewFromInt(200))
	sub := s.createSubscription("user_1", subscription.LineItems{
		{
			ProductID:     "prod_coffee",
			Quantity:      1,
			VariantWeight: lo.ToPtr("500g"),
			VariantPrice:  lo.ToPtr(decimal.NewFromInt(70)),
		},
		{ProductID: "prod_tea", Quantity: 2},
	})

	result, err := s.service.RunSweep(s.GetContext(), s.due)
	s.NoError(err)
	s.Equal(1, result.Billed)

	// (70 + 2 x 25) x 0.85 = 102
	orders, err := s.GetStores().OrderRepo.GetBySubscriptionID(s.GetContext(), sub.ID)
	s.NoError(err)
	s.Len(orders, 1)
	s.True(orders[0].TotalAmount.Equal(decimal.NewFromInt(102)), "total %s", orders[0].TotalAmount)
	s.True(orders[0].Items[0].UnitPrice.Equal(decimal.NewFromInt(70)), "variant price wins over base price")
}

func (s *BillingServiceSuite) TestCatalogPriceChangePicksUpNextCycle() {
	s.createWallet("user_1", decimal.NewFromInt(500))
	sub := s.createSubscription("user_1", subscription.LineItems{
		{ProductID: "prod_tea", Quantity: 2},
	})

	_, err := s.service.RunSweep(s.GetContext(), s.due)
	s.NoError(err)

	// reprice the catalog between cycles
	stores := s.GetStores()
	stores.ProductRepo.(*testutil.InMemoryProductStore).Delete("prod_tea")
	s.NoError(stores.ProductRepo.Create(s.GetContext(), &product.Product{
		ID:        "prod_tea",
		Name:      "Green Tea",
		BasePrice: decimal.NewFromInt(30),
		BaseModel: types.GetDefaultBaseModel(s.GetContext()),
	}))

	_, err = s.service.RunSweep(s.GetContext(), s.due.AddDate(0, 0, 7))
	s.NoError(err)

	orders, err := stores.OrderRepo.GetBySubscriptionID(s.GetContext(), sub.ID)
	s.NoError(err)
	s.Len(orders, 2)

	// frozen snapshots: the first order keeps the old price forever
	totals := []decimal.Decimal{orders[0].TotalAmount, orders[1].TotalAmount}
	s.True(totals[0].Add(totals[1]).Equal(decimal.NewFromFloat(93.5)), "42.5 + 51")
}

func (s *BillingServiceSuite) TestRetiredProductContributesNothing() {
	s.createWallet("user_1", decimal.NewFromInt(200))
	sub := s.createSubscription("user_1", subscription.LineItems{
		{ProductID: "prod_coffee", Quantity: 1},
		{ProductID: "prod_tea", Quantity: 2},
	})
	s.GetStores().ProductRepo.(*testutil.InMemoryProductStore).Delete("prod_coffee")

	result, err := s.service.RunSweep(s.GetContext(), s.due)
	s.NoError(err)
	s.Equal(1, result.Billed)

	// only the tea line survives: 2 x 25 x 0.85 = 42.5
	orders, err := s.GetStores().OrderRepo.GetBySubscriptionID(s.GetContext(), sub.ID)
	s.NoError(err)
	s.Len(orders, 1)
	s.Len(orders[0].Items, 1)
	s.True(orders[0].TotalAmount.Equal(decimal.NewFromFloat(42.5)))
}

func (s *BillingServiceSuite) TestFullyRetiredBundleSkipsWithoutCharge() {
	s.createWallet("user_1", decimal.NewFromInt(200))
	sub := s.createSubscription("user_1", subscription.LineItems{
		{ProductID: "prod_coffee", Quantity: 1},
	})
	s.GetStores().ProductRepo.(*testutil.InMemoryProductStore).Delete("prod_coffee")

	result, err := s.service.RunSweep(s.GetContext(), s.due)
	s.NoError(err)
	s.Equal(1, result.Skipped)

	w, err := s.GetStores().WalletRepo.GetWalletByUserID(s.GetContext(), "user_1")
	s.NoError(err)
	s.True(w.Balance.Equal(decimal.NewFromInt(200)))

	// the date still advances so the subscription is not revisited every sweep
	updated, err := s.GetStores().SubscriptionRepo.Get(s.GetContext(), sub.ID)
	s.NoError(err)
	s.Equal(s.due.AddDate(0, 0, 7), updated.NextDeliveryDate)
}

func (s *BillingServiceSuite) TestPausedAndCancelledAreNotSwept() {
	s.createWallet("user_1", decimal.NewFromInt(500))

	active := s.createSubscription("user_1", subscription.LineItems{
		{ProductID: "prod_coffee", Quantity: 1},
	})
	paused := s.createSubscription("user_1", subscription.LineItems{
		{ProductID: "prod_tea", Quantity: 1},
	})
	paused.SubscriptionStatus = types.SubscriptionStatusPaused
	s.NoError(s.GetStores().SubscriptionRepo.Update(s.GetContext(), paused))
	cancelled := s.createSubscription("user_1", subscription.LineItems{
		{ProductID: "prod_tea", Quantity: 2},
	})
	cancelled.SubscriptionStatus = types.SubscriptionStatusCancelled
	s.NoError(s.GetStores().SubscriptionRepo.Update(s.GetContext(), cancelled))

	result, err := s.service.RunSweep(s.GetContext(), s.due)
	s.NoError(err)
	s.Equal(1, result.Processed)
	s.Equal(1, result.Billed)

	for _, id := range []string{paused.ID, cancelled.ID} {
		orders, err := s.GetStores().OrderRepo.GetBySubscriptionID(s.GetContext(), id)
		s.NoError(err)
		s.Empty(orders)
	}
	orders, err := s.GetStores().OrderRepo.GetBySubscriptionID(s.GetContext(), active.ID)
	s.NoError(err)
	s.Len(orders, 1)
}

// failingOrderRepo simulates an order store outage mid-cycle.
type failingOrderRepo struct {
	order.Repository
}

func (r failingOrderRepo) Create(ctx context.Context, o *order.Order) error {
	return ierr.NewError("order store unavailable").Mark(ierr.ErrDatabase)
}

// countingWalletRepo counts balance writes so a test can pin down how many
// debits a cycle attempted.
type countingWalletRepo struct {
	wallet.Repository
	balanceWrites int
}

func (r *countingWalletRepo) UpdateWalletBalance(ctx context.Context, walletID string, balance decimal.Decimal) error {
	r.balanceWrites++
	return r.Repository.UpdateWalletBalance(ctx, walletID, balance)
}

func (s *BillingServiceSuite) TestOrderWriteFailureDoesNotAdvanceCycle() {
	s.createWallet("user_1", decimal.NewFromInt(200))
	sub := s.createSubscription("user_1", subscription.LineItems{
		{ProductID: "prod_coffee", Quantity: 1},
	})

	counting := &countingWalletRepo{Repository: s.GetStores().WalletRepo}
	params := s.params()
	params.WalletRepo = counting
	params.OrderRepo = failingOrderRepo{Repository: params.OrderRepo}
	svc := NewBillingService(params)

	result, err := svc.RunSweep(s.GetContext(), s.due)
	s.NoError(err)
	s.Equal(1, result.Processed)
	s.Equal(0, result.Billed)
	s.Equal(1, result.Errored)

	// exactly one debit was attempted; no order and an unchanged due date
	// mean the cycle is retried as-is on the next sweep once the store
	// recovers
	s.Equal(1, counting.balanceWrites)
	orders, err := s.GetStores().OrderRepo.GetBySubscriptionID(s.GetContext(), sub.ID)
	s.NoError(err)
	s.Empty(orders)

	updated, err := s.GetStores().SubscriptionRepo.Get(s.GetContext(), sub.ID)
	s.NoError(err)
	s.Equal(s.due, updated.NextDeliveryDate)
	s.Nil(updated.LastDeliveryDate)
	s.Equal(types.SubscriptionStatusActive, updated.SubscriptionStatus)
	s.Equal(0, updated.FailedAttempts)

	// The in-memory store cannot roll the aborted transaction back, so put
	// the balance where the rollback would have left it before retrying
	w, err := s.GetStores().WalletRepo.GetWalletByUserID(s.GetContext(), "user_1")
	s.NoError(err)
	s.NoError(s.GetStores().WalletRepo.UpdateWalletBalance(s.GetContext(), w.ID, decimal.NewFromInt(200)))

	// Once the store recovers the same cycle bills with a single fresh debit
	retryParams := s.params()
	retryParams.WalletRepo = counting
	result, err = NewBillingService(retryParams).RunSweep(s.GetContext(), s.due)
	s.NoError(err)
	s.Equal(1, result.Billed)
	s.Equal(2, counting.balanceWrites, "one attempt per cycle, never a double debit")

	orders, err = s.GetStores().OrderRepo.GetBySubscriptionID(s.GetContext(), sub.ID)
	s.NoError(err)
	s.Len(orders, 1)
	s.True(orders[0].TotalAmount.Equal(decimal.NewFromInt(34)))

	w, err = s.GetStores().WalletRepo.GetWalletByUserID(s.GetContext(), "user_1")
	s.NoError(err)
	s.True(w.Balance.Equal(decimal.NewFromInt(166)), "balance %s", w.Balance)

	txns, err := s.GetStores().WalletRepo.ListTransactionsByUserID(s.GetContext(), "user_1")
	s.NoError(err)
	committed := lo.Filter(txns, func(t *wallet.Transaction, _ int) bool {
		return t.ReferenceID == orders[0].ID
	})
	s.Len(committed, 1, "exactly one ledger entry references the committed order")
}

func (s *BillingServiceSuite) TestEnrollmentThroughSweepEndToEnd() {
	s.createWallet("user_1", decimal.NewFromInt(200))

	start := s.due
	resp, err := NewSubscriptionService(s.params()).CreateSubscription(s.GetContext(), &dto.CreateSubscriptionRequest{
		UserID:            "user_1",
		Frequency:         types.FrequencyWeekly,
		DeliveryAddressID: "addr_home",
		StartDate:         &start,
		PaymentMethod:     "card_4242",
		Items: []dto.LineItemRequest{{
			ProductID:     "prod_coffee",
			Quantity:      1,
			VariantWeight: lo.ToPtr("500g"),
			VariantPrice:  lo.ToPtr(decimal.NewFromInt(120)),
		}},
	})
	s.NoError(err)
	s.Len(resp.Subscriptions, 1)
	subID := resp.Subscriptions[0].ID

	result, err := s.service.RunSweep(s.GetContext(), s.due)
	s.NoError(err)
	s.Equal(1, result.Billed)

	// variant price 120 minus the 15% subscription discount = 102
	w, err := s.GetStores().WalletRepo.GetWalletByUserID(s.GetContext(), "user_1")
	s.NoError(err)
	s.True(w.Balance.Equal(decimal.NewFromInt(98)), "balance %s", w.Balance)

	orders, err := s.GetStores().OrderRepo.GetBySubscriptionID(s.GetContext(), subID)
	s.NoError(err)
	s.Len(orders, 1)
	s.True(orders[0].TotalAmount.Equal(decimal.NewFromInt(102)))
	s.True(orders[0].Items[0].UnitPrice.Equal(decimal.NewFromInt(120)), "snapshot keeps the enrollment price")

	updated, err := s.GetStores().SubscriptionRepo.Get(s.GetContext(), subID)
	s.NoError(err)
	s.Equal(s.due.AddDate(0, 0, 7), updated.NextDeliveryDate)
}

func (s *BillingServiceSuite) TestUsersAreBilledIndependently() {
	s.createWallet("user_1", decimal.NewFromInt(200))
	s.createSubscription("user_1", subscription.LineItems{
		{ProductID: "prod_coffee", Quantity: 1},
	})

	// user_2 has no wallet at all; that cycle errors but must not block user_1
	s.NoError(s.GetStores().AddressRepo.Create(s.GetContext(), &address.Address{
		ID:        "addr_2",
		UserID:    "user_2",
		Line1:     "9 Elm Road",
		City:      "Pune",
		BaseModel: types.GetDefaultBaseModel(s.GetContext()),
	}))
	s.createSubscription("user_2", subscription.LineItems{
		{ProductID: "prod_tea", Quantity: 1},
	})

	result, err := s.service.RunSweep(s.GetContext(), s.due)
	s.NoError(err)
	s.Equal(2, result.Processed)
	s.Equal(1, result.Billed)
	s.Equal(1, result.Errored)

	w, err := s.GetStores().WalletRepo.GetWalletByUserID(s.GetContext(), "user_1")
	s.NoError(err)
	s.True(w.Balance.Equal(decimal.NewFromInt(166)), "40 x 0.85 = 34 charged")
}
