package service

import (
	"context"
	"time"

	"github.com/dailycrate/dailycrate/internal/api/dto"
	"github.com/dailycrate/dailycrate/internal/domain/product"
	"github.com/dailycrate/dailycrate/internal/domain/subscription"
	ierr "github.com/dailycrate/dailycrate/internal/errors"
	"github.com/dailycrate/dailycrate/internal/types"
	"github.com/samber/lo"
)

// SubscriptionService owns the subscription lifecycle: enrollment with
// conflict detection/merge, reads, cadence updates and the explicit
// pause/resume/cancel transitions. The billing sweep lives in BillingService.
type SubscriptionService interface {
	CreateSubscription(ctx context.Context, req *dto.CreateSubscriptionRequest) (*dto.EnrollmentResponse, error)
	GetSubscription(ctx context.Context, id string, userID string) (*dto.SubscriptionDetailResponse, error)
	ListSubscriptions(ctx context.Context, userID string) (*dto.ListSubscriptionsResponse, error)
	UpdateSubscription(ctx context.Context, id string, userID string, req *dto.UpdateSubscriptionRequest) (*dto.SubscriptionResponse, error)
	PauseSubscription(ctx context.Context, id string, userID string) error
	ResumeSubscription(ctx context.Context, id string, userID string) error
	CancelSubscription(ctx context.Context, id string, userID string) error
}

type subscriptionService struct {
	ServiceParams
}

func NewSubscriptionService(params ServiceParams) SubscriptionService {
	return &subscriptionService{
		ServiceParams: params,
	}
}

// itemMatch pairs one requested item with the active subscription it collides
// with, when one exists
type itemMatch struct {
	item     subscription.LineItem
	existing *subscription.Subscription
	product  *product.Product
}

func (s *subscriptionService) CreateSubscription(ctx context.Context, req *dto.CreateSubscriptionRequest) (*dto.EnrollmentResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	// Referential checks happen before any write so a bad payload mutates nothing
	addr, err := s.AddressRepo.Get(ctx, req.DeliveryAddressID)
	if err != nil {
		if ierr.IsNotFound(err) {
			return nil, ierr.NewError("unknown delivery address").
				WithHint("The delivery address does not exist").
				WithReportableDetails(map[string]any{
					"delivery_address_id": req.DeliveryAddressID,
				}).
				Mark(ierr.ErrValidation)
		}
		return nil, err
	}
	if addr.UserID != req.UserID {
		return nil, ierr.NewError("address does not belong to user").
			WithHint("The delivery address belongs to a different user").
			Mark(ierr.ErrPermissionDenied)
	}

	// Coalesce request items sharing a (product, variant) key so one enrollment
	// can never create two subscriptions violating the uniqueness invariant
	items := coalesceItems(req.LineItems())

	products := make([]*product.Product, 0, len(items))
	for _, item := range items {
		p, err := s.ProductRepo.Get(ctx, item.ProductID)
		if err != nil {
			if ierr.IsNotFound(err) {
				return nil, ierr.NewError("unknown product").
					WithHint("One of the requested products does not exist").
					WithReportableDetails(map[string]any{
						"product_id": item.ProductID,
					}).
					Mark(ierr.ErrValidation)
			}
			return nil, err
		}
		products = append(products, p)
	}

	token, err := NewPaymentService(s.ServiceParams).TokenizePaymentMethod(ctx, req.PaymentMethod)
	if err != nil {
		return nil, err
	}

	startDate := req.EffectiveStartDate(time.Now().UTC())
	var affected []*subscription.Subscription
	var merges int

	// The conflict check, merges and creates run as one atomic unit under a
	// per-user enrollment lock. The lock closes the window in which a
	// concurrent enrollment could insert a matching subscription after this
	// one checked and found none.
	err = s.DB.WithTx(ctx, func(ctx context.Context) error {
		if err := s.SubRepo.LockUserEnrollment(ctx, req.UserID); err != nil {
			return err
		}

		matches := make([]itemMatch, 0, len(items))
		for i, item := range items {
			existing, err := s.SubRepo.FindActive(ctx, req.UserID, item.ProductID, item.VariantKey(), req.Frequency)
			if err != nil && !ierr.IsNotFound(err) {
				return err
			}
			matches = append(matches, itemMatch{item: items[i], existing: existing, product: products[i]})
		}

		conflicts := lo.FilterMap(matches, func(m itemMatch, _ int) (dto.EnrollmentConflict, bool) {
			if m.existing == nil {
				return dto.EnrollmentConflict{}, false
			}
			return dto.EnrollmentConflict{
				ProductID:      m.item.ProductID,
				ProductName:    m.product.Name,
				SubscriptionID: m.existing.ID,
			}, true
		})
		merges = len(conflicts)

		// Without force-merge a single collision blocks the whole enrollment.
		// This is a confirmation round-trip for the caller, not a hard failure:
		// nothing has been written yet.
		if len(conflicts) > 0 && !req.ForceMerge {
			return ierr.NewError("active subscription already exists for requested items").
				WithHint("You already have an active subscription for some of these items. Re-submit with force_merge to combine them.").
				WithReportableDetails(map[string]any{
					"conflicts": conflicts,
				}).
				Mark(ierr.ErrAlreadyExists)
		}

		for _, m := range matches {
			if m.existing != nil {
				merged, err := s.mergeQuantity(ctx, m.existing.ID, m.item)
				if err != nil {
					return err
				}
				affected = append(affected, merged)
				continue
			}

			sub := &subscription.Subscription{
				ID:                 types.GenerateUUIDWithPrefix(types.UUID_PREFIX_SUBSCRIPTION),
				UserID:             req.UserID,
				DeliveryAddressID:  req.DeliveryAddressID,
				Items:              subscription.LineItems{m.item},
				Frequency:          req.Frequency,
				SubscriptionStatus: types.SubscriptionStatusActive,
				NextDeliveryDate:   startDate,
				PaymentMethodToken: token,
				BaseModel:          types.GetDefaultBaseModel(ctx),
			}
			if err := sub.Validate(); err != nil {
				return err
			}
			if err := s.SubRepo.Create(ctx, sub); err != nil {
				return err
			}
			affected = append(affected, sub)
		}

		// Enrollment consumes the staged cart
		return s.CartRepo.Clear(ctx, req.UserID)
	})
	if err != nil {
		return nil, err
	}

	s.Logger.Infow("enrollment completed",
		"user_id", req.UserID,
		"frequency", req.Frequency,
		"subscriptions", len(affected),
		"merged", merges,
	)

	responses := lo.Map(affected, func(sub *subscription.Subscription, _ int) *dto.SubscriptionResponse {
		return &dto.SubscriptionResponse{Subscription: sub}
	})
	return &dto.EnrollmentResponse{Subscriptions: responses}, nil
}

// mergeQuantity folds a requested item into the matching line of an existing
// subscription. The row is re-read under a lock inside the transaction so a
// concurrent merge cannot overwrite this increment with a stale quantity.
func (s *subscriptionService) mergeQuantity(ctx context.Context, subscriptionID string, item subscription.LineItem) (*subscription.Subscription, error) {
	sub, err := s.SubRepo.GetForUpdate(ctx, subscriptionID)
	if err != nil {
		return nil, err
	}

	merged := false
	for i := range sub.Items {
		if sub.Items[i].ProductID == item.ProductID && sub.Items[i].VariantKey() == item.VariantKey() {
			sub.Items[i].Quantity += item.Quantity
			merged = true
			break
		}
	}
	if !merged {
		// The conflict match was found through this item, so the line must exist
		return nil, ierr.NewError("matched line item disappeared during merge").
			WithHint("Could not merge into the existing subscription").
			WithReportableDetails(map[string]any{
				"subscription_id": subscriptionID,
				"product_id":      item.ProductID,
			}).
			Mark(ierr.ErrSystem)
	}

	if err := s.SubRepo.Update(ctx, sub); err != nil {
		return nil, err
	}
	return sub, nil
}

func (s *subscriptionService) GetSubscription(ctx context.Context, id string, userID string) (*dto.SubscriptionDetailResponse, error) {
	sub, err := s.getOwned(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	orders, err := s.OrderRepo.GetBySubscriptionID(ctx, sub.ID)
	if err != nil {
		return nil, err
	}

	addresses, err := s.AddressRepo.GetByUserID(ctx, sub.UserID)
	if err != nil {
		return nil, err
	}

	addressResponses := make([]*dto.AddressResponse, 0, len(addresses))
	for _, a := range addresses {
		addressResponses = append(addressResponses, &dto.AddressResponse{Address: a})
	}

	return &dto.SubscriptionDetailResponse{
		Subscription: sub,
		Orders:       orders,
		Addresses:    addressResponses,
	}, nil
}

func (s *subscriptionService) ListSubscriptions(ctx context.Context, userID string) (*dto.ListSubscriptionsResponse, error) {
	subs, err := s.SubRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	responses := lo.Map(subs, func(sub *subscription.Subscription, _ int) *dto.SubscriptionResponse {
		return &dto.SubscriptionResponse{Subscription: sub}
	})
	return &dto.ListSubscriptionsResponse{
		Subscriptions: responses,
		Total:         len(responses),
	}, nil
}

func (s *subscriptionService) UpdateSubscription(ctx context.Context, id string, userID string, req *dto.UpdateSubscriptionRequest) (*dto.SubscriptionResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	sub, err := s.getOwned(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	if sub.SubscriptionStatus == types.SubscriptionStatusCancelled {
		return nil, ierr.NewError("cannot update a cancelled subscription").
			WithHint("This subscription has been cancelled").
			Mark(ierr.ErrInvalidOperation)
	}

	// A frequency change redefines the cadence going forward but keeps the
	// current due date unless the caller passes a new one explicitly
	if req.Frequency != nil {
		sub.Frequency = *req.Frequency
	}
	if req.NextDeliveryDate != nil {
		sub.NextDeliveryDate = types.DateOnly(*req.NextDeliveryDate)
	}
	if req.DeliveryAddressID != nil {
		addr, err := s.AddressRepo.Get(ctx, *req.DeliveryAddressID)
		if err != nil {
			return nil, err
		}
		if addr.UserID != userID {
			return nil, ierr.NewError("address does not belong to user").
				WithHint("The delivery address belongs to a different user").
				Mark(ierr.ErrPermissionDenied)
		}
		sub.DeliveryAddressID = addr.ID
	}
	for productID, quantity := range req.Quantities {
		if quantity < 1 {
			return nil, ierr.NewError("quantity must be at least 1").
				WithHint("Quantity must be at least 1").
				WithReportableDetails(map[string]any{
					"product_id": productID,
					"quantity":   quantity,
				}).
				Mark(ierr.ErrValidation)
		}
		for i := range sub.Items {
			if sub.Items[i].ProductID == productID {
				sub.Items[i].Quantity = quantity
			}
		}
	}

	if err := sub.Validate(); err != nil {
		return nil, err
	}
	if err := s.SubRepo.Update(ctx, sub); err != nil {
		return nil, err
	}
	return &dto.SubscriptionResponse{Subscription: sub}, nil
}

func (s *subscriptionService) PauseSubscription(ctx context.Context, id string, userID string) error {
	return s.transition(ctx, id, userID, (*subscription.Subscription).Pause)
}

func (s *subscriptionService) ResumeSubscription(ctx context.Context, id string, userID string) error {
	return s.transition(ctx, id, userID, (*subscription.Subscription).Resume)
}

func (s *subscriptionService) CancelSubscription(ctx context.Context, id string, userID string) error {
	return s.transition(ctx, id, userID, (*subscription.Subscription).Cancel)
}

func (s *subscriptionService) transition(ctx context.Context, id string, userID string, move func(*subscription.Subscription) error) error {
	sub, err := s.getOwned(ctx, id, userID)
	if err != nil {
		return err
	}
	if err := move(sub); err != nil {
		return err
	}
	if err := s.SubRepo.UpdateStatus(ctx, sub.ID, sub.SubscriptionStatus); err != nil {
		return err
	}

	s.Logger.Infow("subscription transition",
		"subscription_id", sub.ID,
		"subscription_status", sub.SubscriptionStatus,
	)
	return nil
}

func (s *subscriptionService) getOwned(ctx context.Context, id string, userID string) (*subscription.Subscription, error) {
	if id == "" {
		return nil, ierr.NewError("subscription id is required").
			WithHint("Please provide a valid subscription ID").
			Mark(ierr.ErrValidation)
	}

	sub, err := s.SubRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if userID != "" && sub.UserID != userID {
		return nil, ierr.NewError("subscription does not belong to user").
			WithHint("You do not have access to this subscription").
			Mark(ierr.ErrPermissionDenied)
	}
	return sub, nil
}

// coalesceItems folds request items sharing a (product, variant) key into one
// line, summing quantities, while preserving the order of first appearance
func coalesceItems(items subscription.LineItems) subscription.LineItems {
	type key struct {
		productID string
		variant   string
	}

	index := make(map[key]int, len(items))
	out := make(subscription.LineItems, 0, len(items))
	for _, item := range items {
		k := key{productID: item.ProductID, variant: item.VariantKey()}
		if i, ok := index[k]; ok {
			out[i].Quantity += item.Quantity
			continue
		}
		index[k] = len(out)
		out = append(out, item)
	}
	return out
}
