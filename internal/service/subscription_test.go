package service

import (
	"context"
	"testing"
	"time"

	"github.com/dailycrate/dailycrate/internal/api/dto"
	"github.com/dailycrate/dailycrate/internal/domain/address"
	"github.com/dailycrate/dailycrate/internal/domain/cart"
	"github.com/dailycrate/dailycrate/internal/domain/product"
	"github.com/dailycrate/dailycrate/internal/domain/subscription"
	ierr "github.com/dailycrate/dailycrate/internal/errors"
	"github.com/dailycrate/dailycrate/internal/testutil"
	"github.com/dailycrate/dailycrate/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type SubscriptionServiceSuite struct {
	testutil.BaseServiceTestSuite
	service  SubscriptionService
	testData struct {
		coffee  *product.Product
		tea     *product.Product
		address *address.Address
	}
}

func TestSubscriptionService(t *testing.T) {
	suite.Run(t, new(SubscriptionServiceSuite))
}

func (s *SubscriptionServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.service = NewSubscriptionService(s.params())
	s.setupTestData()
}

func (s *SubscriptionServiceSuite) params() ServiceParams {
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

func (s *SubscriptionServiceSuite) setupTestData() {
	stores := s.GetStores()

	s.testData.coffee = &product.Product{
		ID:        "prod_coffee",
		Name:      "House Blend Coffee",
		BasePrice: decimal.NewFromInt(40),
		BaseModel: types.GetDefaultBaseModel(s.GetContext()),
	}
	s.NoError(stores.ProductRepo.Create(s.GetContext(), s.testData.coffee))

	s.testData.tea = &product.Product{
		ID:        "prod_tea",
		Name:      "Green Tea",
		BasePrice: decimal.NewFromInt(25),
		BaseModel: types.GetDefaultBaseModel(s.GetContext()),
	}
	s.NoError(stores.ProductRepo.Create(s.GetContext(), s.testData.tea))

	s.testData.address = &address.Address{
		ID:        "addr_home",
		UserID:    "user_1",
		Line1:     "12 Crate Street",
		City:      "Pune",
		BaseModel: types.GetDefaultBaseModel(s.GetContext()),
	}
	s.NoError(stores.AddressRepo.Create(s.GetContext(), s.testData.address))
}

func (s *SubscriptionServiceSuite) enrollmentRequest(items ...dto.LineItemRequest) *dto.CreateSubscriptionRequest {
	return &dto.CreateSubscriptionRequest{
		UserID:            "user_1",
		Items:             items,
		Frequency:         types.FrequencyWeekly,
		DeliveryAddressID: s.testData.address.ID,
		PaymentMethod:     "card_4242",
	}
}

func (s *SubscriptionServiceSuite) TestCreateSubscriptionPerItem() {
	resp, err := s.service.CreateSubscription(s.GetContext(), s.enrollmentRequest(
		dto.LineItemRequest{ProductID: "prod_coffee", Quantity: 2},
		dto.LineItemRequest{ProductID: "prod_tea", Quantity: 1},
	))
	s.NoError(err)
	s.Len(resp.Subscriptions, 2, "one subscription per enrolled item")

	for _, sub := range resp.Subscriptions {
		s.Equal(types.SubscriptionStatusActive, sub.SubscriptionStatus)
		s.Equal(types.FrequencyWeekly, sub.Frequency)
		s.Len(sub.Items, 1)
		s.NotEmpty(sub.PaymentMethodToken)
		s.False(sub.NextDeliveryDate.IsZero())
	}
}

func (s *SubscriptionServiceSuite) TestCreateSubscriptionWithStartDate() {
	start := time.Date(2025, time.July, 1, 0, 0, 0, 0, time.UTC)
	req := s.enrollmentRequest(dto.LineItemRequest{ProductID: "prod_coffee", Quantity: 1})
	req.StartDate = &start

	resp, err := s.service.CreateSubscription(s.GetContext(), req)
	s.NoError(err)
	s.Equal(start, resp.Subscriptions[0].NextDeliveryDate)
}

func (s *SubscriptionServiceSuite) TestCreateSubscriptionUnknownProduct() {
	_, err := s.service.CreateSubscription(s.GetContext(), s.enrollmentRequest(
		dto.LineItemRequest{ProductID: "prod_missing", Quantity: 1},
	))
	s.True(ierr.IsValidation(err))
}

func (s *SubscriptionServiceSuite) TestCreateSubscriptionForeignAddress() {
	req := s.enrollmentRequest(dto.LineItemRequest{ProductID: "prod_coffee", Quantity: 1})
	req.UserID = "user_2"

	_, err := s.service.CreateSubscription(s.GetContext(), req)
	s.True(ierr.IsPermissionDenied(err))
}

func (s *SubscriptionServiceSuite) TestConflictWithoutForceMergeCreatesNothing() {
	_, err := s.service.CreateSubscription(s.GetContext(), s.enrollmentRequest(
		dto.LineItemRequest{ProductID: "prod_coffee", Quantity: 2},
	))
	s.NoError(err)

	// re-enrolling coffee plus a brand new tea item must block entirely
	_, err = s.service.CreateSubscription(s.GetContext(), s.enrollmentRequest(
		dto.LineItemRequest{ProductID: "prod_coffee", Quantity: 1},
		dto.LineItemRequest{ProductID: "prod_tea", Quantity: 1},
	))
	s.True(ierr.IsAlreadyExists(err))

	subs, err := s.GetStores().SubscriptionRepo.GetByUserID(s.GetContext(), "user_1")
	s.NoError(err)
	s.Len(subs, 1, "blocked enrollment must not create the non-conflicting item either")
}

func (s *SubscriptionServiceSuite) TestForceMergeIncrementsQuantity() {
	first, err := s.service.CreateSubscription(s.GetContext(), s.enrollmentRequest(
		dto.LineItemRequest{ProductID: "prod_coffee", Quantity: 2},
	))
	s.NoError(err)
	existingID := first.Subscriptions[0].ID

	req := s.enrollmentRequest(
		dto.LineItemRequest{ProductID: "prod_coffee", Quantity: 3},
		dto.LineItemRequest{ProductID: "prod_tea", Quantity: 1},
	)
	req.ForceMerge = true

	resp, err := s.service.CreateSubscription(s.GetContext(), req)
	s.NoError(err)
	s.Len(resp.Subscriptions, 2)

	merged, err := s.GetStores().SubscriptionRepo.Get(s.GetContext(), existingID)
	s.NoError(err)
	s.Equal(5, merged.Items[0].Quantity, "2 existing + 3 requested")

	subs, err := s.GetStores().SubscriptionRepo.GetByUserID(s.GetContext(), "user_1")
	s.NoError(err)
	s.Len(subs, 2, "merge must not create a duplicate coffee subscription")
}

// enrollmentRaceRepo splices a committed concurrent write into the points
// where a real database grants the enrollment locks: right before the
// per-user lock returns and right before the row lock returns. Each hook
// fires once, standing in for the transaction that committed first.
type enrollmentRaceRepo struct {
	subscription.Repository
	onUserLock func()
	onRowLock  func()
}

func (r *enrollmentRaceRepo) LockUserEnrollment(ctx context.Context, userID string) error {
	if r.onUserLock != nil {
		fire := r.onUserLock
		r.onUserLock = nil
		fire()
	}
	return r.Repository.LockUserEnrollment(ctx, userID)
}

func (r *enrollmentRaceRepo) GetForUpdate(ctx context.Context, id string) (*subscription.Subscription, error) {
	if r.onRowLock != nil {
		fire := r.onRowLock
		r.onRowLock = nil
		fire()
	}
	return r.Repository.GetForUpdate(ctx, id)
}

func (s *SubscriptionServiceSuite) TestConflictCheckSeesEnrollmentCommittedFirst() {
	stores := s.GetStores()

	// The competing request for the same item commits while this one waits
	// for the per-user enrollment lock
	raced := &enrollmentRaceRepo{Repository: stores.SubscriptionRepo}
	raced.onUserLock = func() {
		s.NoError(stores.SubscriptionRepo.Create(s.GetContext(), &subscription.Subscription{
			ID:                 "sub_concurrent",
			UserID:             "user_1",
			DeliveryAddressID:  s.testData.address.ID,
			Items:              subscription.LineItems{{ProductID: "prod_coffee", Quantity: 1}},
			Frequency:          types.FrequencyWeekly,
			SubscriptionStatus: types.SubscriptionStatusActive,
			NextDeliveryDate:   time.Date(2025, time.June, 2, 0, 0, 0, 0, time.UTC),
			PaymentMethodToken: "ptok_other",
			BaseModel:          types.GetDefaultBaseModel(s.GetContext()),
		}))
	}

	params := s.params()
	params.SubRepo = raced
	svc := NewSubscriptionService(params)

	_, err := svc.CreateSubscription(s.GetContext(), s.enrollmentRequest(
		dto.LineItemRequest{ProductID: "prod_coffee", Quantity: 1},
	))
	s.True(ierr.IsAlreadyExists(err), "the check runs under the lock, so the fresh row must be seen")

	subs, err := stores.SubscriptionRepo.GetByUserID(s.GetContext(), "user_1")
	s.NoError(err)
	s.Len(subs, 1, "the losing request must not create a duplicate row")
}

func (s *SubscriptionServiceSuite) TestMergeReadsFreshQuantityUnderRowLock() {
	stores := s.GetStores()

	first, err := s.service.CreateSubscription(s.GetContext(), s.enrollmentRequest(
		dto.LineItemRequest{ProductID: "prod_coffee", Quantity: 2},
	))
	s.NoError(err)
	existingID := first.Subscriptions[0].ID

	// A competing merge commits its increment while this one waits for the
	// row lock; computing from the pre-lock read would overwrite it
	raced := &enrollmentRaceRepo{Repository: stores.SubscriptionRepo}
	raced.onRowLock = func() {
		sub, err := stores.SubscriptionRepo.Get(s.GetContext(), existingID)
		s.NoError(err)
		sub.Items[0].Quantity++
		s.NoError(stores.SubscriptionRepo.Update(s.GetContext(), sub))
	}

	params := s.params()
	params.SubRepo = raced
	svc := NewSubscriptionService(params)

	req := s.enrollmentRequest(dto.LineItemRequest{ProductID: "prod_coffee", Quantity: 3})
	req.ForceMerge = true
	_, err = svc.CreateSubscription(s.GetContext(), req)
	s.NoError(err)

	merged, err := stores.SubscriptionRepo.Get(s.GetContext(), existingID)
	s.NoError(err)
	s.Equal(6, merged.Items[0].Quantity, "2 existing + 1 concurrent + 3 requested")
}

func (s *SubscriptionServiceSuite) TestDifferentFrequencyIsNotAConflict() {
	_, err := s.service.CreateSubscription(s.GetContext(), s.enrollmentRequest(
		dto.LineItemRequest{ProductID: "prod_coffee", Quantity: 1},
	))
	s.NoError(err)

	req := s.enrollmentRequest(dto.LineItemRequest{ProductID: "prod_coffee", Quantity: 1})
	req.Frequency = types.FrequencyMonthly

	_, err = s.service.CreateSubscription(s.GetContext(), req)
	s.NoError(err)

	subs, err := s.GetStores().SubscriptionRepo.GetByUserID(s.GetContext(), "user_1")
	s.NoError(err)
	s.Len(subs, 2)
}

func (s *SubscriptionServiceSuite) TestVariantIsScopedByWeight() {
	_, err := s.service.CreateSubscription(s.GetContext(), s.enrollmentRequest(
		dto.LineItemRequest{ProductID: "prod_coffee", Quantity: 1},
	))
	s.NoError(err)

	// same product, but a pinned 500g variant is a different uniqueness key
	_, err = s.service.CreateSubscription(s.GetContext(), s.enrollmentRequest(
		dto.LineItemRequest{
			ProductID:     "prod_coffee",
			Quantity:      1,
			VariantWeight: lo.ToPtr("500g"),
			VariantPrice:  lo.ToPtr(decimal.NewFromInt(70)),
		},
	))
	s.NoError(err)
}

func (s *SubscriptionServiceSuite) TestCancelledSubscriptionDoesNotConflict() {
	resp, err := s.service.CreateSubscription(s.GetContext(), s.enrollmentRequest(
		dto.LineItemRequest{ProductID: "prod_coffee", Quantity: 1},
	))
	s.NoError(err)
	s.NoError(s.service.CancelSubscription(s.GetContext(), resp.Subscriptions[0].ID, "user_1"))

	_, err = s.service.CreateSubscription(s.GetContext(), s.enrollmentRequest(
		dto.LineItemRequest{ProductID: "prod_coffee", Quantity: 1},
	))
	s.NoError(err, "cancelled subscriptions are out of the conflict scope")
}

func (s *SubscriptionServiceSuite) TestEnrollmentClearsCart() {
	s.NoError(s.GetStores().CartRepo.Upsert(s.GetContext(), &cart.Cart{
		ID:     "cart_1",
		UserID: "user_1",
		Items: cart.CartItems{
			{ProductID: "prod_coffee", Quantity: 2},
		},
		BaseModel: types.GetDefaultBaseModel(s.GetContext()),
	}))

	_, err := s.service.CreateSubscription(s.GetContext(), s.enrollmentRequest(
		dto.LineItemRequest{ProductID: "prod_coffee", Quantity: 2},
	))
	s.NoError(err)

	c, err := s.GetStores().CartRepo.GetByUserID(s.GetContext(), "user_1")
	s.NoError(err)
	s.Empty(c.Items)
}

func (s *SubscriptionServiceSuite) TestPauseResumeKeepsDueDate() {
	resp, err := s.service.CreateSubscription(s.GetContext(), s.enrollmentRequest(
		dto.LineItemRequest{ProductID: "prod_coffee", Quantity: 1},
	))
	s.NoError(err)
	id := resp.Subscriptions[0].ID
	due := resp.Subscriptions[0].NextDeliveryDate

	s.NoError(s.service.PauseSubscription(s.GetContext(), id, "user_1"))
	sub, err := s.GetStores().SubscriptionRepo.Get(s.GetContext(), id)
	s.NoError(err)
	s.Equal(types.SubscriptionStatusPaused, sub.SubscriptionStatus)

	s.NoError(s.service.ResumeSubscription(s.GetContext(), id, "user_1"))
	sub, err = s.GetStores().SubscriptionRepo.Get(s.GetContext(), id)
	s.NoError(err)
	s.Equal(types.SubscriptionStatusActive, sub.SubscriptionStatus)
	s.Equal(due, sub.NextDeliveryDate)
}

func (s *SubscriptionServiceSuite) TestCancelIsTerminal() {
	resp, err := s.service.CreateSubscription(s.GetContext(), s.enrollmentRequest(
		dto.LineItemRequest{ProductID: "prod_coffee", Quantity: 1},
	))
	s.NoError(err)
	id := resp.Subscriptions[0].ID

	s.NoError(s.service.CancelSubscription(s.GetContext(), id, "user_1"))
	err = s.service.ResumeSubscription(s.GetContext(), id, "user_1")
	s.True(ierr.IsInvalidOperation(err))
}

func (s *SubscriptionServiceSuite) TestOwnershipEnforced() {
	resp, err := s.service.CreateSubscription(s.GetContext(), s.enrollmentRequest(
		dto.LineItemRequest{ProductID: "prod_coffee", Quantity: 1},
	))
	s.NoError(err)

	err = s.service.CancelSubscription(s.GetContext(), resp.Subscriptions[0].ID, "user_2")
	s.True(ierr.IsPermissionDenied(err))
}

func (s *SubscriptionServiceSuite) TestUpdateFrequencyKeepsDueDate() {
	resp, err := s.service.CreateSubscription(s.GetContext(), s.enrollmentRequest(
		dto.LineItemRequest{ProductID: "prod_coffee", Quantity: 1},
	))
	s.NoError(err)
	id := resp.Subscriptions[0].ID
	due := resp.Subscriptions[0].NextDeliveryDate

	updated, err := s.service.UpdateSubscription(s.GetContext(), id, "user_1", &dto.UpdateSubscriptionRequest{
		Frequency: lo.ToPtr(types.FrequencyMonthly),
	})
	s.NoError(err)
	s.Equal(types.FrequencyMonthly, updated.Frequency)
	s.Equal(due, updated.NextDeliveryDate, "cadence change alone must not move the due date")
}

func (s *SubscriptionServiceSuite) TestUpdateQuantities() {
	resp, err := s.service.CreateSubscription(s.GetContext(), s.enrollmentRequest(
		dto.LineItemRequest{ProductID: "prod_coffee", Quantity: 1},
	))
	s.NoError(err)
	id := resp.Subscriptions[0].ID

	updated, err := s.service.UpdateSubscription(s.GetContext(), id, "user_1", &dto.UpdateSubscriptionRequest{
		Quantities: map[string]int{"prod_coffee": 4},
	})
	s.NoError(err)
	s.Equal(4, updated.Items[0].Quantity)

	_, err = s.service.UpdateSubscription(s.GetContext(), id, "user_1", &dto.UpdateSubscriptionRequest{
		Quantities: map[string]int{"prod_coffee": 0},
	})
	s.True(ierr.IsValidation(err))
}

func (s *SubscriptionServiceSuite) TestGetSubscriptionIncludesHistory() {
	resp, err := s.service.CreateSubscription(s.GetContext(), s.enrollmentRequest(
		dto.LineItemRequest{ProductID: "prod_coffee", Quantity: 1},
	))
	s.NoError(err)

	detail, err := s.service.GetSubscription(s.GetContext(), resp.Subscriptions[0].ID, "user_1")
	s.NoError(err)
	s.Empty(detail.Orders)
	s.Len(detail.Addresses, 1)
}
