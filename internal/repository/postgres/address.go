package postgres

import (
	"context"

	"github.com/dailycrate/dailycrate/internal/domain/address"
	ierr "github.com/dailycrate/dailycrate/internal/errors"
	"github.com/dailycrate/dailycrate/internal/logger"
	"github.com/dailycrate/dailycrate/internal/postgres"
	"github.com/dailycrate/dailycrate/internal/types"
)

type addressRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

// NewAddressRepository creates a new instance of address repository
func NewAddressRepository(db *postgres.DB, logger *logger.Logger) address.Repository {
	return &addressRepository{
		db:     db,
		logger: logger,
	}
}

func (r *addressRepository) Create(ctx context.Context, a *address.Address) error {
	query := `
		INSERT INTO addresses (
			id, user_id, label, line1, line2, city, postal_code,
			status, created_at, updated_at, created_by, updated_by
		) VALUES (
			:id, :user_id, :label, :line1, :line2, :city, :postal_code,
			:status, :created_at, :updated_at, :created_by, :updated_by
		)`

	if _, err := r.db.NamedExecContext(ctx, query, a); err != nil {
		return ierr.WithError(err).
			WithHint("Failed to create address").
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *addressRepository) Get(ctx context.Context, id string) (*address.Address, error) {
	query := `
		SELECT * FROM addresses
		WHERE id = :id
		AND status = :status`

	params := map[string]interface{}{
		"id":     id,
		"status": types.StatusPublished,
	}

	rows, err := r.db.NamedQueryContext(ctx, query, params)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to query address").
			Mark(ierr.ErrDatabase)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, ierr.NewError("address not found").
			WithHint("Address not found").
			WithReportableDetails(map[string]any{
				"address_id": id,
			}).
			Mark(ierr.ErrNotFound)
	}

	var a address.Address
	if err := rows.StructScan(&a); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to scan address").
			Mark(ierr.ErrDatabase)
	}
	return &a, nil
}

func (r *addressRepository) GetByUserID(ctx context.Context, userID string) ([]*address.Address, error) {
	query := `
		SELECT * FROM addresses
		WHERE user_id = :user_id
		AND status = :status
		ORDER BY created_at ASC`

	params := map[string]interface{}{
		"user_id": userID,
		"status":  types.StatusPublished,
	}

	rows, err := r.db.NamedQueryContext(ctx, query, params)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to query addresses").
			Mark(ierr.ErrDatabase)
	}
	defer rows.Close()

	var addresses []*address.Address
	for rows.Next() {
		var a address.Address
		if err := rows.StructScan(&a); err != nil {
			return nil, ierr.WithError(err).
				WithHint("Failed to scan address").
				Mark(ierr.ErrDatabase)
		}
		addresses = append(addresses, &a)
	}

	if err = rows.Err(); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Error iterating address rows").
			Mark(ierr.ErrDatabase)
	}
	return addresses, nil
}
