package subscription

import (
	"testing"
	"time"

	ierr "github.com/dailycrate/dailycrate/internal/errors"
	"github.com/dailycrate/dailycrate/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSubscription(status types.SubscriptionStatus) *Subscription {
	return &Subscription{
		ID:     "sub_1",
		UserID: "user_1",
		Items: LineItems{
			{ProductID: "prod_1", Quantity: 2},
		},
		Frequency:          types.FrequencyWeekly,
		SubscriptionStatus: status,
		NextDeliveryDate:   time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestStatusTransitions(t *testing.T) {
	t.Run("pause and resume", func(t *testing.T) {
		sub := testSubscription(types.SubscriptionStatusActive)
		require.NoError(t, sub.Pause())
		assert.Equal(t, types.SubscriptionStatusPaused, sub.SubscriptionStatus)
		require.NoError(t, sub.Resume())
		assert.Equal(t, types.SubscriptionStatusActive, sub.SubscriptionStatus)
	})

	t.Run("cancelled is terminal", func(t *testing.T) {
		sub := testSubscription(types.SubscriptionStatusActive)
		require.NoError(t, sub.Cancel())

		err := sub.Resume()
		assert.True(t, ierr.IsInvalidOperation(err))
		err = sub.Pause()
		assert.True(t, ierr.IsInvalidOperation(err))
		assert.Equal(t, types.SubscriptionStatusCancelled, sub.SubscriptionStatus)
	})

	t.Run("paused cannot pause again", func(t *testing.T) {
		sub := testSubscription(types.SubscriptionStatusPaused)
		err := sub.Pause()
		assert.True(t, ierr.IsInvalidOperation(err))
	})

	t.Run("cancel allowed from any non-terminal state", func(t *testing.T) {
		for _, status := range []types.SubscriptionStatus{
			types.SubscriptionStatusPending,
			types.SubscriptionStatusActive,
			types.SubscriptionStatusPaused,
		} {
			sub := testSubscription(status)
			assert.NoError(t, sub.Cancel(), "from %s", status)
		}
	})
}

func TestIsDue(t *testing.T) {
	sub := testSubscription(types.SubscriptionStatusActive)

	assert.True(t, sub.IsDue(sub.NextDeliveryDate))
	assert.True(t, sub.IsDue(sub.NextDeliveryDate.AddDate(0, 0, 3)))
	assert.False(t, sub.IsDue(sub.NextDeliveryDate.AddDate(0, 0, -1)))

	// a time-of-day on the due date still counts as due
	assert.True(t, sub.IsDue(sub.NextDeliveryDate.Add(9*time.Hour)))

	sub.SubscriptionStatus = types.SubscriptionStatusPaused
	assert.False(t, sub.IsDue(sub.NextDeliveryDate))
}

func TestSubscriptionValidate(t *testing.T) {
	sub := testSubscription(types.SubscriptionStatusActive)
	assert.NoError(t, sub.Validate())

	t.Run("active requires due date", func(t *testing.T) {
		s := testSubscription(types.SubscriptionStatusActive)
		s.NextDeliveryDate = time.Time{}
		assert.True(t, ierr.IsValidation(s.Validate()))
	})

	t.Run("no items", func(t *testing.T) {
		s := testSubscription(types.SubscriptionStatusActive)
		s.Items = nil
		assert.True(t, ierr.IsValidation(s.Validate()))
	})

	t.Run("zero quantity item", func(t *testing.T) {
		s := testSubscription(types.SubscriptionStatusActive)
		s.Items[0].Quantity = 0
		assert.True(t, ierr.IsValidation(s.Validate()))
	})

	t.Run("variant weight without price", func(t *testing.T) {
		s := testSubscription(types.SubscriptionStatusActive)
		s.Items[0].VariantWeight = lo.ToPtr("500g")
		assert.True(t, ierr.IsValidation(s.Validate()))
	})
}

func TestLineItemUnitPrice(t *testing.T) {
	base := decimal.NewFromInt(40)

	standard := LineItem{ProductID: "prod_1", Quantity: 1}
	assert.True(t, standard.UnitPrice(base).Equal(base))

	variant := LineItem{
		ProductID:     "prod_1",
		Quantity:      1,
		VariantWeight: lo.ToPtr("500g"),
		VariantPrice:  lo.ToPtr(decimal.NewFromInt(70)),
	}
	assert.True(t, variant.UnitPrice(base).Equal(decimal.NewFromInt(70)))
	assert.Equal(t, "500g", variant.VariantKey())
	assert.Equal(t, "", standard.VariantKey())
}
