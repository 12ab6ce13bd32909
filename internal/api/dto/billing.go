package dto

import (
	"time"

	ierr "github.com/dailycrate/dailycrate/internal/errors"
	"github.com/shopspring/decimal"
)

// SweepRequest triggers a billing sweep, optionally replaying it as of a past
// date for backfill or testing
type SweepRequest struct {
	AsOfDate string `json:"as_of_date,omitempty"` // YYYY-MM-DD, defaults to today
}

// AsOf resolves the requested sweep date, defaulting to now
func (r *SweepRequest) AsOf(now time.Time) (time.Time, error) {
	if r.AsOfDate == "" {
		return now, nil
	}
	asOf, err := time.Parse("2006-01-02", r.AsOfDate)
	if err != nil {
		return time.Time{}, ierr.WithError(err).
			WithHint("as_of_date must be formatted YYYY-MM-DD").
			WithReportableDetails(map[string]any{
				"as_of_date": r.AsOfDate,
			}).
			Mark(ierr.ErrValidation)
	}
	return asOf, nil
}

// SweepOutcome is the per-subscription result of one billing cycle attempt
type SweepOutcome string

const (
	SweepOutcomeBilled  SweepOutcome = "billed"
	SweepOutcomeSkipped SweepOutcome = "skipped"
	SweepOutcomeFailed  SweepOutcome = "failed"
	SweepOutcomeErrored SweepOutcome = "errored"
)

// SweepItem is the record of one subscription's billing cycle within a sweep
type SweepItem struct {
	SubscriptionID string          `json:"subscription_id"`
	UserID         string          `json:"user_id"`
	Outcome        SweepOutcome    `json:"outcome"`
	Amount         decimal.Decimal `json:"amount"`
	OrderID        string          `json:"order_id,omitempty"`
	Reason         string          `json:"reason,omitempty"`
}

// SweepResult summarizes one full billing sweep
type SweepResult struct {
	AsOf      time.Time   `json:"as_of"`
	Processed int         `json:"processed"`
	Billed    int         `json:"billed"`
	Skipped   int         `json:"skipped"`
	Failed    int         `json:"failed"`
	Errored   int         `json:"errored"`
	Items     []SweepItem `json:"items"`
}
