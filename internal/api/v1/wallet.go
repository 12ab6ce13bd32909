package v1

import (
	"net/http"

	"github.com/dailycrate/dailycrate/internal/api/dto"
	ierr "github.com/dailycrate/dailycrate/internal/errors"
	"github.com/dailycrate/dailycrate/internal/logger"
	"github.com/dailycrate/dailycrate/internal/service"
	"github.com/gin-gonic/gin"
)

type WalletHandler struct {
	walletService service.WalletService
	logger        *logger.Logger
}

func NewWalletHandler(walletService service.WalletService, logger *logger.Logger) *WalletHandler {
	return &WalletHandler{
		walletService: walletService,
		logger:        logger,
	}
}

// @Summary Get a user's wallet
// @Description Returns the user's wallet, creating an empty one on first use
// @Tags Wallet
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} dto.WalletResponse
// @Failure 500 {object} ierr.ErrorResponse
// @Router /users/{id}/wallet [get]
func (h *WalletHandler) GetWallet(c *gin.Context) {
	response, err := h.walletService.GetOrCreateWallet(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// @Summary Top up a wallet
// @Description Credits the user's wallet balance
// @Tags Wallet
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Param topup body dto.TopUpWalletRequest true "Top-up request"
// @Success 200 {object} dto.WalletResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 500 {object} ierr.ErrorResponse
// @Router /users/{id}/wallet/top-up [post]
func (h *WalletHandler) TopUpWallet(c *gin.Context) {
	var req dto.TopUpWalletRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}
	req.UserID = c.Param("id")

	response, err := h.walletService.TopUpWallet(c.Request.Context(), &req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// @Summary List wallet transactions
// @Description Returns the user's ledger entries, newest first
// @Tags Wallet
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} dto.ListWalletTransactionsResponse
// @Failure 500 {object} ierr.ErrorResponse
// @Router /users/{id}/wallet/transactions [get]
func (h *WalletHandler) ListTransactions(c *gin.Context) {
	response, err := h.walletService.ListTransactions(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, response)
}
