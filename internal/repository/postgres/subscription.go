package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/dailycrate/dailycrate/internal/domain/subscription"
	ierr "github.com/dailycrate/dailycrate/internal/errors"
	"github.com/dailycrate/dailycrate/internal/logger"
	"github.com/dailycrate/dailycrate/internal/postgres"
	"github.com/dailycrate/dailycrate/internal/types"
)

type subscriptionRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

// NewSubscriptionRepository creates a new instance of subscription repository
func NewSubscriptionRepository(db *postgres.DB, logger *logger.Logger) subscription.Repository {
	return &subscriptionRepository{
		db:     db,
		logger: logger,
	}
}

func (r *subscriptionRepository) Create(ctx context.Context, sub *subscription.Subscription) error {
	query := `
		INSERT INTO subscriptions (
			id, user_id, delivery_address_id, items, frequency, subscription_status,
			next_delivery_date, last_delivery_date, payment_method_token, failed_attempts,
			status, created_at, updated_at, created_by, updated_by
		) VALUES (
			:id, :user_id, :delivery_address_id, :items, :frequency, :subscription_status,
			:next_delivery_date, :last_delivery_date, :payment_method_token, :failed_attempts,
			:status, :created_at, :updated_at, :created_by, :updated_by
		)`

	r.logger.Debugw("creating subscription",
		"subscription_id", sub.ID,
		"user_id", sub.UserID,
	)

	if _, err := r.db.NamedExecContext(ctx, query, sub); err != nil {
		return ierr.WithError(err).
			WithHint("Failed to create subscription").
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *subscriptionRepository) Get(ctx context.Context, id string) (*subscription.Subscription, error) {
	query := `
		SELECT * FROM subscriptions
		WHERE id = :id
		AND status = :status`

	params := map[string]interface{}{
		"id":     id,
		"status": types.StatusPublished,
	}

	rows, err := r.db.NamedQueryContext(ctx, query, params)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to query subscription").
			Mark(ierr.ErrDatabase)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, ierr.NewError("subscription not found").
			WithHint("Subscription not found").
			WithReportableDetails(map[string]any{
				"subscription_id": id,
			}).
			Mark(ierr.ErrNotFound)
	}

	var sub subscription.Subscription
	if err := rows.StructScan(&sub); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to scan subscription").
			Mark(ierr.ErrDatabase)
	}
	return &sub, nil
}

// GetForUpdate locks the subscription row until the surrounding transaction
// ends. Concurrent merges for the same subscription serialize here, so each
// increment is computed from the previous committed state.
func (r *subscriptionRepository) GetForUpdate(ctx context.Context, id string) (*subscription.Subscription, error) {
	query := `
		SELECT * FROM subscriptions
		WHERE id = :id
		AND status = :status
		FOR UPDATE`

	params := map[string]interface{}{
		"id":     id,
		"status": types.StatusPublished,
	}

	rows, err := r.db.NamedQueryContext(ctx, query, params)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to lock subscription").
			Mark(ierr.ErrDatabase)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, ierr.NewError("subscription not found").
			WithHint("Subscription not found").
			WithReportableDetails(map[string]any{
				"subscription_id": id,
			}).
			Mark(ierr.ErrNotFound)
	}

	var sub subscription.Subscription
	if err := rows.StructScan(&sub); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to scan subscription").
			Mark(ierr.ErrDatabase)
	}
	return &sub, nil
}

// LockUserEnrollment takes a transaction-scoped advisory lock keyed by user.
// The uniqueness key lives inside the jsonb items column, so no unique index
// can back it; serializing enrollments per user closes the window between the
// conflict check and the insert instead.
func (r *subscriptionRepository) LockUserEnrollment(ctx context.Context, userID string) error {
	query := `SELECT pg_advisory_xact_lock(hashtext(:user_id))`

	params := map[string]interface{}{
		"user_id": userID,
	}

	rows, err := r.db.NamedQueryContext(ctx, query, params)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to lock user enrollments").
			Mark(ierr.ErrDatabase)
	}
	return rows.Close()
}

func (r *subscriptionRepository) GetByUserID(ctx context.Context, userID string) ([]*subscription.Subscription, error) {
	query := `
		SELECT * FROM subscriptions
		WHERE user_id = :user_id
		AND status = :status
		ORDER BY created_at DESC`

	params := map[string]interface{}{
		"user_id": userID,
		"status":  types.StatusPublished,
	}

	return r.queryMany(ctx, query, params)
}

func (r *subscriptionRepository) ListDue(ctx context.Context, asOf time.Time) ([]*subscription.Subscription, error) {
	query := `
		SELECT * FROM subscriptions
		WHERE subscription_status = :subscription_status
		AND next_delivery_date <= :as_of
		AND status = :status
		ORDER BY next_delivery_date ASC`

	params := map[string]interface{}{
		"subscription_status": types.SubscriptionStatusActive,
		"as_of":               types.DateOnly(asOf),
		"status":              types.StatusPublished,
	}

	r.logger.Debugw("listing due subscriptions", "as_of", asOf)

	return r.queryMany(ctx, query, params)
}

func (r *subscriptionRepository) FindActive(ctx context.Context, userID, productID, variantWeight string, frequency types.Frequency) (*subscription.Subscription, error) {
	// The uniqueness key is (user, product, variant weight, frequency); the item
	// match is resolved against the jsonb items column.
	query := `
		SELECT * FROM subscriptions
		WHERE user_id = :user_id
		AND frequency = :frequency
		AND subscription_status = :subscription_status
		AND status = :status
		AND EXISTS (
			SELECT 1 FROM jsonb_array_elements(items) AS item
			WHERE item->>'product_id' = :product_id
			AND COALESCE(item->>'variant_weight', '') = :variant_weight
		)
		LIMIT 1`

	params := map[string]interface{}{
		"user_id":             userID,
		"product_id":          productID,
		"variant_weight":      variantWeight,
		"frequency":           frequency,
		"subscription_status": types.SubscriptionStatusActive,
		"status":              types.StatusPublished,
	}

	rows, err := r.db.NamedQueryContext(ctx, query, params)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to query active subscription").
			Mark(ierr.ErrDatabase)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, ierr.NewError("no active subscription for item").
			WithHint("No matching active subscription").
			Mark(ierr.ErrNotFound)
	}

	var sub subscription.Subscription
	if err := rows.StructScan(&sub); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to scan subscription").
			Mark(ierr.ErrDatabase)
	}
	return &sub, nil
}

func (r *subscriptionRepository) Update(ctx context.Context, sub *subscription.Subscription) error {
	query := `
		UPDATE subscriptions
		SET
			items = :items,
			frequency = :frequency,
			subscription_status = :subscription_status,
			delivery_address_id = :delivery_address_id,
			next_delivery_date = :next_delivery_date,
			last_delivery_date = :last_delivery_date,
			failed_attempts = :failed_attempts,
			updated_at = NOW(),
			updated_by = :updated_by
		WHERE id = :id
		AND status = :status`

	sub.UpdatedBy = types.GetUserID(ctx)
	arg := map[string]interface{}{
		"id":                  sub.ID,
		"items":               sub.Items,
		"frequency":           sub.Frequency,
		"subscription_status": sub.SubscriptionStatus,
		"delivery_address_id": sub.DeliveryAddressID,
		"next_delivery_date":  sub.NextDeliveryDate,
		"last_delivery_date":  sub.LastDeliveryDate,
		"failed_attempts":     sub.FailedAttempts,
		"updated_by":          sub.UpdatedBy,
		"status":              types.StatusPublished,
	}

	result, err := r.db.NamedExecContext(ctx, query, arg)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to update subscription").
			Mark(ierr.ErrDatabase)
	}
	return r.requireRow(result, sub.ID)
}

func (r *subscriptionRepository) UpdateStatus(ctx context.Context, id string, status types.SubscriptionStatus) error {
	query := `
		UPDATE subscriptions
		SET
			subscription_status = :subscription_status,
			updated_at = NOW(),
			updated_by = :updated_by
		WHERE id = :id
		AND status = :status`

	params := map[string]interface{}{
		"id":                  id,
		"subscription_status": status,
		"updated_by":          types.GetUserID(ctx),
		"status":              types.StatusPublished,
	}

	r.logger.Debugw("updating subscription status",
		"subscription_id", id,
		"subscription_status", status,
	)

	result, err := r.db.NamedExecContext(ctx, query, params)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to update subscription status").
			Mark(ierr.ErrDatabase)
	}
	return r.requireRow(result, id)
}

func (r *subscriptionRepository) AdvanceDeliveryDates(ctx context.Context, id string, next time.Time, last time.Time) error {
	query := `
		UPDATE subscriptions
		SET
			next_delivery_date = :next_delivery_date,
			last_delivery_date = :last_delivery_date,
			failed_attempts = 0,
			updated_at = NOW(),
			updated_by = :updated_by
		WHERE id = :id
		AND status = :status`

	params := map[string]interface{}{
		"id":                 id,
		"next_delivery_date": next,
		"last_delivery_date": last,
		"updated_by":         types.GetUserID(ctx),
		"status":             types.StatusPublished,
	}

	result, err := r.db.NamedExecContext(ctx, query, params)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to advance subscription delivery dates").
			Mark(ierr.ErrDatabase)
	}
	return r.requireRow(result, id)
}

func (r *subscriptionRepository) queryMany(ctx context.Context, query string, params map[string]interface{}) ([]*subscription.Subscription, error) {
	rows, err := r.db.NamedQueryContext(ctx, query, params)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to query subscriptions").
			Mark(ierr.ErrDatabase)
	}
	defer rows.Close()

	var subs []*subscription.Subscription
	for rows.Next() {
		var sub subscription.Subscription
		if err := rows.StructScan(&sub); err != nil {
			return nil, ierr.WithError(err).
				WithHint("Failed to scan subscription").
				Mark(ierr.ErrDatabase)
		}
		subs = append(subs, &sub)
	}

	if err = rows.Err(); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Error iterating subscription rows").
			Mark(ierr.ErrDatabase)
	}
	return subs, nil
}

func (r *subscriptionRepository) requireRow(result sql.Result, id string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to read affected rows").
			Mark(ierr.ErrDatabase)
	}
	if rows == 0 {
		return ierr.NewError("subscription not found").
			WithHint("Subscription not found").
			WithReportableDetails(map[string]any{
				"subscription_id": id,
			}).
			Mark(ierr.ErrNotFound)
	}
	return nil
}
