package v1

import (
	"net/http"

	"github.com/dailycrate/dailycrate/internal/domain/cart"
	ierr "github.com/dailycrate/dailycrate/internal/errors"
	"github.com/dailycrate/dailycrate/internal/logger"
	"github.com/dailycrate/dailycrate/internal/service"
	"github.com/gin-gonic/gin"
)

type CartHandler struct {
	cartService service.CartService
	logger      *logger.Logger
}

func NewCartHandler(cartService service.CartService, logger *logger.Logger) *CartHandler {
	return &CartHandler{
		cartService: cartService,
		logger:      logger,
	}
}

type replaceCartRequest struct {
	Items cart.CartItems `json:"items"`
}

// @Summary Get a user's cart
// @Description Returns the staged cart, empty if none exists
// @Tags Cart
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} cart.Cart
// @Router /users/{id}/cart [get]
func (h *CartHandler) GetCart(c *gin.Context) {
	response, err := h.cartService.GetCart(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// @Summary Replace the cart contents
// @Description Replaces the staged items of the user's cart
// @Tags Cart
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Param cart body replaceCartRequest true "Cart contents"
// @Success 200 {object} cart.Cart
// @Failure 400 {object} ierr.ErrorResponse
// @Router /users/{id}/cart [put]
func (h *CartHandler) ReplaceCart(c *gin.Context) {
	var req replaceCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	response, err := h.cartService.ReplaceItems(c.Request.Context(), c.Param("id"), req.Items)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// @Summary Clear the cart
// @Description Empties the user's staged cart
// @Tags Cart
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} gin.H
// @Router /users/{id}/cart [delete]
func (h *CartHandler) ClearCart(c *gin.Context) {
	if err := h.cartService.ClearCart(c.Request.Context(), c.Param("id")); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "cart cleared"})
}
