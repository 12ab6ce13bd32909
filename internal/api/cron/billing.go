package cron

import (
	"net/http"
	"time"

	"github.com/dailycrate/dailycrate/internal/api/dto"
	ierr "github.com/dailycrate/dailycrate/internal/errors"
	"github.com/dailycrate/dailycrate/internal/logger"
	"github.com/dailycrate/dailycrate/internal/service"
	"github.com/gin-gonic/gin"
)

// BillingCronHandler exposes the billing sweep over HTTP so an external
// scheduler can trigger it, and so operators can replay a date by hand
type BillingCronHandler struct {
	logger         *logger.Logger
	billingService service.BillingService
}

func NewBillingCronHandler(logger *logger.Logger, billingService service.BillingService) *BillingCronHandler {
	return &BillingCronHandler{
		logger:         logger,
		billingService: billingService,
	}
}

// RunBillingSweep bills every subscription due as of the requested date
func (h *BillingCronHandler) RunBillingSweep(c *gin.Context) {
	// The body is optional: an empty trigger sweeps as of today
	var req dto.SweepRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.Error(ierr.WithError(err).
				WithHint("Invalid request format").
				Mark(ierr.ErrValidation))
			return
		}
	}

	asOf, err := req.AsOf(time.Now().UTC())
	if err != nil {
		c.Error(err)
		return
	}

	h.logger.Infow("billing sweep cron triggered", "as_of", asOf.Format(time.DateOnly))

	result, err := h.billingService.RunSweep(c.Request.Context(), asOf)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, result)
}
