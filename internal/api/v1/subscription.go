package v1

import (
	"context"
	"net/http"

	"github.com/dailycrate/dailycrate/internal/api/dto"
	ierr "github.com/dailycrate/dailycrate/internal/errors"
	"github.com/dailycrate/dailycrate/internal/logger"
	"github.com/dailycrate/dailycrate/internal/service"
	"github.com/gin-gonic/gin"
)

type SubscriptionHandler struct {
	subscriptionService service.SubscriptionService
	logger              *logger.Logger
}

func NewSubscriptionHandler(subscriptionService service.SubscriptionService, logger *logger.Logger) *SubscriptionHandler {
	return &SubscriptionHandler{
		subscriptionService: subscriptionService,
		logger:              logger,
	}
}

// @Summary Enroll into subscriptions
// @Description Creates or merges subscriptions for the requested items
// @Tags Subscriptions
// @Accept json
// @Produce json
// @Param enrollment body dto.CreateSubscriptionRequest true "Enrollment request"
// @Success 201 {object} dto.EnrollmentResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 409 {object} ierr.ErrorResponse
// @Failure 500 {object} ierr.ErrorResponse
// @Router /subscriptions [post]
func (h *SubscriptionHandler) CreateSubscription(c *gin.Context) {
	var req dto.CreateSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	response, err := h.subscriptionService.CreateSubscription(c.Request.Context(), &req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, response)
}

// @Summary Get a subscription by ID
// @Description Retrieves a subscription with its billing history
// @Tags Subscriptions
// @Accept json
// @Produce json
// @Param id path string true "Subscription ID"
// @Param user_id query string false "Owner user ID"
// @Success 200 {object} dto.SubscriptionDetailResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Failure 500 {object} ierr.ErrorResponse
// @Router /subscriptions/{id} [get]
func (h *SubscriptionHandler) GetSubscription(c *gin.Context) {
	response, err := h.subscriptionService.GetSubscription(c.Request.Context(), c.Param("id"), c.Query("user_id"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// @Summary List subscriptions of a user
// @Description Lists all subscriptions of a user across all statuses
// @Tags Subscriptions
// @Accept json
// @Produce json
// @Param user_id query string true "User ID"
// @Success 200 {object} dto.ListSubscriptionsResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 500 {object} ierr.ErrorResponse
// @Router /subscriptions [get]
func (h *SubscriptionHandler) ListSubscriptions(c *gin.Context) {
	userID := c.Query("user_id")
	if userID == "" {
		c.Error(ierr.NewError("user_id is required").
			WithHint("Please provide a user ID").
			Mark(ierr.ErrValidation))
		return
	}

	response, err := h.subscriptionService.ListSubscriptions(c.Request.Context(), userID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// @Summary Update a subscription
// @Description Updates cadence, quantities, delivery address or next delivery date
// @Tags Subscriptions
// @Accept json
// @Produce json
// @Param id path string true "Subscription ID"
// @Param user_id query string false "Owner user ID"
// @Param subscription body dto.UpdateSubscriptionRequest true "Update request"
// @Success 200 {object} dto.SubscriptionResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Failure 500 {object} ierr.ErrorResponse
// @Router /subscriptions/{id} [put]
func (h *SubscriptionHandler) UpdateSubscription(c *gin.Context) {
	var req dto.UpdateSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	response, err := h.subscriptionService.UpdateSubscription(c.Request.Context(), c.Param("id"), c.Query("user_id"), &req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// @Summary Pause a subscription
// @Description Pauses an active subscription so it is skipped by billing
// @Tags Subscriptions
// @Produce json
// @Param id path string true "Subscription ID"
// @Param user_id query string false "Owner user ID"
// @Success 200 {object} gin.H
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Router /subscriptions/{id}/pause [post]
func (h *SubscriptionHandler) PauseSubscription(c *gin.Context) {
	h.transition(c, h.subscriptionService.PauseSubscription, "subscription paused")
}

// @Summary Resume a subscription
// @Description Resumes a paused subscription with its due date intact
// @Tags Subscriptions
// @Produce json
// @Param id path string true "Subscription ID"
// @Param user_id query string false "Owner user ID"
// @Success 200 {object} gin.H
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Router /subscriptions/{id}/resume [post]
func (h *SubscriptionHandler) ResumeSubscription(c *gin.Context) {
	h.transition(c, h.subscriptionService.ResumeSubscription, "subscription resumed")
}

// @Summary Cancel a subscription
// @Description Cancels a subscription permanently
// @Tags Subscriptions
// @Produce json
// @Param id path string true "Subscription ID"
// @Param user_id query string false "Owner user ID"
// @Success 200 {object} gin.H
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Router /subscriptions/{id}/cancel [post]
func (h *SubscriptionHandler) CancelSubscription(c *gin.Context) {
	h.transition(c, h.subscriptionService.CancelSubscription, "subscription cancelled")
}

func (h *SubscriptionHandler) transition(c *gin.Context, move func(ctx context.Context, id string, userID string) error, message string) {
	if err := move(c.Request.Context(), c.Param("id"), c.Query("user_id")); err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": message})
}
