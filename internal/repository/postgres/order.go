package postgres

import (
	"context"

	"github.com/dailycrate/dailycrate/internal/domain/order"
	ierr "github.com/dailycrate/dailycrate/internal/errors"
	"github.com/dailycrate/dailycrate/internal/logger"
	"github.com/dailycrate/dailycrate/internal/postgres"
	"github.com/dailycrate/dailycrate/internal/types"
)

type orderRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

// NewOrderRepository creates a new instance of order repository
func NewOrderRepository(db *postgres.DB, logger *logger.Logger) order.Repository {
	return &orderRepository{
		db:     db,
		logger: logger,
	}
}

func (r *orderRepository) Create(ctx context.Context, o *order.Order) error {
	query := `
		INSERT INTO orders (
			id, order_number, user_id, subscription_id, items, total_amount,
			order_status, payment_status, order_type, delivery_address_id,
			status, created_at, updated_at, created_by, updated_by
		) VALUES (
			:id, :order_number, :user_id, :subscription_id, :items, :total_amount,
			:order_status, :payment_status, :order_type, :delivery_address_id,
			:status, :created_at, :updated_at, :created_by, :updated_by
		)`

	r.logger.Debugw("creating order",
		"order_id", o.ID,
		"order_number", o.OrderNumber,
		"user_id", o.UserID,
	)

	if _, err := r.db.NamedExecContext(ctx, query, o); err != nil {
		return ierr.WithError(err).
			WithHint("Failed to create order").
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *orderRepository) Get(ctx context.Context, id string) (*order.Order, error) {
	query := `
		SELECT * FROM orders
		WHERE id = :id
		AND status = :status`

	params := map[string]interface{}{
		"id":     id,
		"status": types.StatusPublished,
	}

	rows, err := r.db.NamedQueryContext(ctx, query, params)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to query order").
			Mark(ierr.ErrDatabase)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, ierr.NewError("order not found").
			WithHint("Order not found").
			WithReportableDetails(map[string]any{
				"order_id": id,
			}).
			Mark(ierr.ErrNotFound)
	}

	var o order.Order
	if err := rows.StructScan(&o); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to scan order").
			Mark(ierr.ErrDatabase)
	}
	return &o, nil
}

func (r *orderRepository) GetByUserID(ctx context.Context, userID string) ([]*order.Order, error) {
	query := `
		SELECT * FROM orders
		WHERE user_id = :user_id
		AND status = :status
		ORDER BY created_at DESC`

	params := map[string]interface{}{
		"user_id": userID,
		"status":  types.StatusPublished,
	}

	return r.queryMany(ctx, query, params)
}

func (r *orderRepository) GetBySubscriptionID(ctx context.Context, subscriptionID string) ([]*order.Order, error) {
	query := `
		SELECT * FROM orders
		WHERE subscription_id = :subscription_id
		AND status = :status
		ORDER BY created_at DESC`

	params := map[string]interface{}{
		"subscription_id": subscriptionID,
		"status":          types.StatusPublished,
	}

	return r.queryMany(ctx, query, params)
}

func (r *orderRepository) UpdateStatus(ctx context.Context, id string, status types.OrderStatus) error {
	query := `
		UPDATE orders
		SET
			order_status = :order_status,
			updated_at = NOW(),
			updated_by = :updated_by
		WHERE id = :id
		AND status = :status`

	params := map[string]interface{}{
		"id":           id,
		"order_status": status,
		"updated_by":   types.GetUserID(ctx),
		"status":       types.StatusPublished,
	}

	result, err := r.db.NamedExecContext(ctx, query, params)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to update order status").
			Mark(ierr.ErrDatabase)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to read affected rows").
			Mark(ierr.ErrDatabase)
	}
	if rows == 0 {
		return ierr.NewError("order not found").
			WithHint("Order not found").
			WithReportableDetails(map[string]any{
				"order_id": id,
			}).
			Mark(ierr.ErrNotFound)
	}
	return nil
}

func (r *orderRepository) queryMany(ctx context.Context, query string, params map[string]interface{}) ([]*order.Order, error) {
	rows, err := r.db.NamedQueryContext(ctx, query, params)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to query orders").
			Mark(ierr.ErrDatabase)
	}
	defer rows.Close()

	var orders []*order.Order
	for rows.Next() {
		var o order.Order
		if err := rows.StructScan(&o); err != nil {
			return nil, ierr.WithError(err).
				WithHint("Failed to scan order").
				Mark(ierr.ErrDatabase)
		}
		orders = append(orders, &o)
	}

	if err = rows.Err(); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Error iterating order rows").
			Mark(ierr.ErrDatabase)
	}
	return orders, nil
}
