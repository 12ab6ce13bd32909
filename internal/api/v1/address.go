package v1

import (
	"net/http"

	"github.com/dailycrate/dailycrate/internal/api/dto"
	ierr "github.com/dailycrate/dailycrate/internal/errors"
	"github.com/dailycrate/dailycrate/internal/logger"
	"github.com/dailycrate/dailycrate/internal/service"
	"github.com/gin-gonic/gin"
)

type AddressHandler struct {
	addressService service.AddressService
	logger         *logger.Logger
}

func NewAddressHandler(addressService service.AddressService, logger *logger.Logger) *AddressHandler {
	return &AddressHandler{
		addressService: addressService,
		logger:         logger,
	}
}

// @Summary Create a delivery address
// @Description Adds a delivery address for a user
// @Tags Addresses
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Param address body dto.CreateAddressRequest true "Address request"
// @Success 201 {object} dto.AddressResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Router /users/{id}/addresses [post]
func (h *AddressHandler) CreateAddress(c *gin.Context) {
	var req dto.CreateAddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}
	req.UserID = c.Param("id")

	response, err := h.addressService.CreateAddress(c.Request.Context(), &req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, response)
}

// @Summary List a user's addresses
// @Description Lists all delivery addresses of a user
// @Tags Addresses
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {array} dto.AddressResponse
// @Router /users/{id}/addresses [get]
func (h *AddressHandler) ListAddresses(c *gin.Context) {
	response, err := h.addressService.ListAddresses(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, response)
}
