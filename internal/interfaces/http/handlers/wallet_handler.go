package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"sevapay.backend/internal/domain/entities"
	"sevapay.backend/internal/interfaces/http/middleware"
	"sevapay.backend/internal/interfaces/http/response"
	"sevapay.backend/internal/usecases"
)

// WalletHandler serves wallet balance and adjustment endpoints
type WalletHandler struct {
	walletUsecase *usecases.WalletUsecase
}

// NewWalletHandler creates a new wallet handler
func NewWalletHandler(walletUsecase *usecases.WalletUsecase) *WalletHandler {
	return &WalletHandler{walletUsecase: walletUsecase}
}

// Balance handles GET /api/v1/wallets/:partnerId
func (h *WalletHandler) Balance(c *gin.Context) {
	partnerID, err := uuid.Parse(c.Param("partnerId"))
	if err != nil {
		response.BadRequest(c, "Invalid partner ID")
		return
	}

	balance, err := h.walletUsecase.Balance(c.Request.Context(), partnerID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, balance)
}

// Push handles POST /api/v1/wallets/push
func (h *WalletHandler) Push(c *gin.Context) {
	adminID, ok := middleware.GetAdminID(c)
	if !ok {
		response.BadRequest(c, "Admin context missing")
		return
	}

	var input entities.WalletAdjustInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	wallet, err := h.walletUsecase.Push(c.Request.Context(), adminID, &input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, wallet)
}

// Pull handles POST /api/v1/wallets/pull
func (h *WalletHandler) Pull(c *gin.Context) {
	adminID, ok := middleware.GetAdminID(c)
	if !ok {
		response.BadRequest(c, "Admin context missing")
		return
	}

	var input entities.WalletAdjustInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	wallet, err := h.walletUsecase.Pull(c.Request.Context(), adminID, &input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, wallet)
}

// Ledger handles GET /api/v1/wallets/:partnerId/ledger
func (h *WalletHandler) Ledger(c *gin.Context) {
	partnerID, err := uuid.Parse(c.Param("partnerId"))
	if err != nil {
		response.BadRequest(c, "Invalid partner ID")
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))

	entries, err := h.walletUsecase.Ledger(c.Request.Context(), partnerID, limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, entries)
}
