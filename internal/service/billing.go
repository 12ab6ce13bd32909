package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dailycrate/dailycrate/internal/api/dto"
	"github.com/dailycrate/dailycrate/internal/domain/order"
	"github.com/dailycrate/dailycrate/internal/domain/product"
	"github.com/dailycrate/dailycrate/internal/domain/subscription"
	"github.com/dailycrate/dailycrate/internal/domain/wallet"
	ierr "github.com/dailycrate/dailycrate/internal/errors"
	"github.com/dailycrate/dailycrate/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/sourcegraph/conc/pool"
)

// BillingService runs the recurring billing sweep. The sweep is a pure
// function of the as-of date: re-running it for the same date bills nothing
// twice, because every successful cycle advances the subscription's due date
// in the same transaction that takes the money.
type BillingService interface {
	// RunSweep bills every subscription due on or before asOf
	RunSweep(ctx context.Context, asOf time.Time) (*dto.SweepResult, error)

	// BillSubscription runs a single billing cycle for one subscription
	BillSubscription(ctx context.Context, sub *subscription.Subscription, asOf time.Time) dto.SweepItem
}

type billingService struct {
	ServiceParams
}

func NewBillingService(params ServiceParams) BillingService {
	return &billingService{
		ServiceParams: params,
	}
}

func (s *billingService) RunSweep(ctx context.Context, asOf time.Time) (*dto.SweepResult, error) {
	asOf = types.DateOnly(asOf)

	due, err := s.SubRepo.ListDue(ctx, asOf)
	if err != nil {
		return nil, err
	}

	result := &dto.SweepResult{
		AsOf:  asOf,
		Items: make([]dto.SweepItem, 0, len(due)),
	}
	if len(due) == 0 {
		return result, nil
	}

	s.Logger.Infow("billing sweep started",
		"as_of", asOf.Format(time.DateOnly),
		"due_subscriptions", len(due),
	)

	// Users are billed concurrently but one user's subscriptions run in
	// sequence, so two cycles never contend for the same wallet lock
	byUser := lo.GroupBy(due, func(sub *subscription.Subscription) string {
		return sub.UserID
	})

	var mu sync.Mutex
	p := pool.New().WithMaxGoroutines(s.Config.Billing.SweepConcurrency)
	for _, subs := range byUser {
		subs := subs
		p.Go(func() {
			for _, sub := range subs {
				item := s.BillSubscription(ctx, sub, asOf)
				mu.Lock()
				result.Items = append(result.Items, item)
				mu.Unlock()
			}
		})
	}
	p.Wait()

	for _, item := range result.Items {
		result.Processed++
		switch item.Outcome {
		case dto.SweepOutcomeBilled:
			result.Billed++
		case dto.SweepOutcomeSkipped:
			result.Skipped++
		case dto.SweepOutcomeFailed:
			result.Failed++
		case dto.SweepOutcomeErrored:
			result.Errored++
		}
	}

	s.Logger.Infow("billing sweep finished",
		"as_of", asOf.Format(time.DateOnly),
		"processed", result.Processed,
		"billed", result.Billed,
		"skipped", result.Skipped,
		"failed", result.Failed,
		"errored", result.Errored,
	)
	return result, nil
}

func (s *billingService) BillSubscription(ctx context.Context, sub *subscription.Subscription, asOf time.Time) dto.SweepItem {
	item := dto.SweepItem{
		SubscriptionID: sub.ID,
		UserID:         sub.UserID,
	}

	if !sub.IsDue(asOf) || sub.SubscriptionStatus != types.SubscriptionStatusActive {
		item.Outcome = dto.SweepOutcomeSkipped
		item.Reason = "not due"
		return item
	}

	orderItems, total, err := s.priceCycle(ctx, sub)
	if err != nil {
		item.Outcome = dto.SweepOutcomeErrored
		item.Reason = err.Error()
		s.Logger.Errorw("failed to price billing cycle",
			"subscription_id", sub.ID,
			"error", err,
		)
		return item
	}
	item.Amount = total

	// Nothing chargeable this cycle: advance the date so the subscription is
	// not revisited, but take no money and cut no order
	if total.IsZero() {
		if err := s.advance(ctx, sub, asOf); err != nil {
			item.Outcome = dto.SweepOutcomeErrored
			item.Reason = err.Error()
			return item
		}
		item.Outcome = dto.SweepOutcomeSkipped
		item.Reason = "nothing to charge"
		return item
	}

	ord, err := s.billCycle(ctx, sub, orderItems, total, asOf)
	if err == nil {
		item.Outcome = dto.SweepOutcomeBilled
		item.OrderID = ord.ID
		return item
	}

	if ierr.IsInsufficientFunds(err) {
		item.Outcome = dto.SweepOutcomeFailed
		item.Reason = "insufficient funds"
		if ferr := s.recordBillingFailure(ctx, sub, total); ferr != nil {
			s.Logger.Errorw("failed to record billing failure",
				"subscription_id", sub.ID,
				"error", ferr,
			)
		}
		return item
	}

	item.Outcome = dto.SweepOutcomeErrored
	item.Reason = err.Error()
	s.Logger.Errorw("billing cycle errored",
		"subscription_id", sub.ID,
		"error", err,
	)
	return item
}

// priceCycle resolves the current unit price of every line item and builds the
// frozen snapshot lines for the order. Prices are read at bill time: catalog
// changes between cycles are picked up, prices within one order never move
// again after this point.
func (s *billingService) priceCycle(ctx context.Context, sub *subscription.Subscription) ([]order.OrderItem, decimal.Decimal, error) {
	items := make([]order.OrderItem, 0, len(sub.Items))
	subtotal := decimal.Zero

	for _, li := range sub.Items {
		p, err := s.getProduct(ctx, li.ProductID)
		if err != nil {
			if ierr.IsNotFound(err) {
				// A retired product contributes nothing; the rest of the
				// bundle still ships
				s.Logger.Warnw("skipping retired product in billing cycle",
					"subscription_id", sub.ID,
					"product_id", li.ProductID,
				)
				continue
			}
			return nil, decimal.Zero, err
		}

		unit := li.UnitPrice(p.BasePrice)
		lineTotal := unit.Mul(decimal.NewFromInt(int64(li.Quantity)))
		items = append(items, order.OrderItem{
			ProductID:     li.ProductID,
			ProductName:   p.Name,
			Quantity:      li.Quantity,
			VariantWeight: li.VariantWeight,
			UnitPrice:     unit,
			LineTotal:     lineTotal,
		})
		subtotal = subtotal.Add(lineTotal)
	}

	discounted := subtotal.
		Mul(decimal.NewFromInt(1).Sub(s.Config.Billing.SubscriptionDiscountRate)).
		Round(2)
	return items, discounted, nil
}

func (s *billingService) getProduct(ctx context.Context, id string) (*product.Product, error) {
	resp, err := NewProductService(s.ServiceParams).GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	return resp.Product, nil
}

// billCycle is the atomic unit of the sweep: debit, ledger entry, order
// snapshot and due-date advance commit together or not at all
func (s *billingService) billCycle(ctx context.Context, sub *subscription.Subscription, items []order.OrderItem, total decimal.Decimal, asOf time.Time) (*order.Order, error) {
	orderSvc := NewOrderService(s.ServiceParams)
	walletSvc := NewWalletService(s.ServiceParams)

	var ord *order.Order
	err := s.DB.WithTx(ctx, func(ctx context.Context) error {
		ord = orderSvc.BuildSnapshot(ctx, sub, items, total)

		_, err := walletSvc.DebitWallet(ctx, &wallet.Operation{
			UserID:        sub.UserID,
			Type:          types.TransactionTypeDebit,
			Amount:        total,
			Description:   fmt.Sprintf("subscription delivery %s", ord.OrderNumber),
			ReferenceType: types.WalletTxReferenceTypeOrder,
			ReferenceID:   ord.ID,
		})
		if err != nil {
			return err
		}

		if err := s.OrderRepo.Create(ctx, ord); err != nil {
			return err
		}

		return s.advance(ctx, sub, asOf)
	})
	if err != nil {
		return nil, err
	}

	s.Logger.Infow("billing cycle completed",
		"subscription_id", sub.ID,
		"order_id", ord.ID,
		"amount", total,
		"next_delivery_date", sub.NextDeliveryDate.Format(time.DateOnly),
	)
	return ord, nil
}

// advance moves the due date one cadence step past the date that was just
// billed and updates the in-memory copy to match
func (s *billingService) advance(ctx context.Context, sub *subscription.Subscription, asOf time.Time) error {
	next, err := types.NextDeliveryDate(sub.NextDeliveryDate, sub.Frequency)
	if err != nil {
		return err
	}
	if err := s.SubRepo.AdvanceDeliveryDates(ctx, sub.ID, next, asOf); err != nil {
		return err
	}
	sub.LastDeliveryDate = lo.ToPtr(asOf)
	sub.NextDeliveryDate = next
	sub.FailedAttempts = 0
	return nil
}

// recordBillingFailure writes the failed ledger entry and applies the failure
// policy. This happens outside the billing transaction: the failed attempt
// must survive even though the cycle itself rolled back.
func (s *billingService) recordBillingFailure(ctx context.Context, sub *subscription.Subscription, total decimal.Decimal) error {
	_, err := NewWalletService(s.ServiceParams).RecordFailedDebit(ctx, &wallet.Operation{
		UserID:        sub.UserID,
		Type:          types.TransactionTypeDebit,
		Amount:        total,
		Description:   "subscription delivery payment failed",
		ReferenceType: types.WalletTxReferenceTypeSubscription,
		ReferenceID:   sub.ID,
	})
	if err != nil {
		return err
	}

	sub.FailedAttempts++
	if err := s.SubRepo.Update(ctx, sub); err != nil {
		return err
	}

	s.Logger.Warnw("billing cycle failed on insufficient funds",
		"subscription_id", sub.ID,
		"user_id", sub.UserID,
		"amount", total,
		"failed_attempts", sub.FailedAttempts,
	)

	// Under retry_forever the subscription stays due and is retried on every
	// sweep until the wallet is topped up or the user cancels
	if s.Config.Billing.FailurePolicy == types.BillingFailurePolicyPauseAfterN &&
		sub.FailedAttempts >= s.Config.Billing.MaxBillingFailures {
		if err := sub.Pause(); err != nil {
			return err
		}
		if err := s.SubRepo.UpdateStatus(ctx, sub.ID, sub.SubscriptionStatus); err != nil {
			return err
		}
		s.Logger.Warnw("subscription paused after repeated billing failures",
			"subscription_id", sub.ID,
			"failed_attempts", sub.FailedAttempts,
		)
	}
	return nil
}
