package postgres

import (
	"context"

	"github.com/dailycrate/dailycrate/internal/domain/cart"
	ierr "github.com/dailycrate/dailycrate/internal/errors"
	"github.com/dailycrate/dailycrate/internal/logger"
	"github.com/dailycrate/dailycrate/internal/postgres"
	"github.com/dailycrate/dailycrate/internal/types"
)

type cartRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

// NewCartRepository creates a new instance of cart repository
func NewCartRepository(db *postgres.DB, logger *logger.Logger) cart.Repository {
	return &cartRepository{
		db:     db,
		logger: logger,
	}
}

func (r *cartRepository) GetByUserID(ctx context.Context, userID string) (*cart.Cart, error) {
	query := `
		SELECT * FROM carts
		WHERE user_id = :user_id
		AND status = :status`

	params := map[string]interface{}{
		"user_id": userID,
		"status":  types.StatusPublished,
	}

	rows, err := r.db.NamedQueryContext(ctx, query, params)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to query cart").
			Mark(ierr.ErrDatabase)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, ierr.NewError("cart not found").
			WithHint("Cart not found").
			WithReportableDetails(map[string]any{
				"user_id": userID,
			}).
			Mark(ierr.ErrNotFound)
	}

	var c cart.Cart
	if err := rows.StructScan(&c); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to scan cart").
			Mark(ierr.ErrDatabase)
	}
	return &c, nil
}

func (r *cartRepository) Upsert(ctx context.Context, c *cart.Cart) error {
	query := `
		INSERT INTO carts (
			id, user_id, items,
			status, created_at, updated_at, created_by, updated_by
		) VALUES (
			:id, :user_id, :items,
			:status, :created_at, :updated_at, :created_by, :updated_by
		)
		ON CONFLICT (user_id) DO UPDATE
		SET items = EXCLUDED.items,
			updated_at = NOW(),
			updated_by = EXCLUDED.updated_by`

	if _, err := r.db.NamedExecContext(ctx, query, c); err != nil {
		return ierr.WithError(err).
			WithHint("Failed to upsert cart").
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *cartRepository) Clear(ctx context.Context, userID string) error {
	query := `
		UPDATE carts
		SET
			items = '[]'::jsonb,
			updated_at = NOW(),
			updated_by = :updated_by
		WHERE user_id = :user_id
		AND status = :status`

	params := map[string]interface{}{
		"user_id":    userID,
		"updated_by": types.GetUserID(ctx),
		"status":     types.StatusPublished,
	}

	r.logger.Debugw("clearing cart", "user_id", userID)

	// Clearing a cart that does not exist is a no-op
	if _, err := r.db.NamedExecContext(ctx, query, params); err != nil {
		return ierr.WithError(err).
			WithHint("Failed to clear cart").
			Mark(ierr.ErrDatabase)
	}
	return nil
}
