package handlers

import (
	"github.com/gin-gonic/gin"

	"sevapay.backend/internal/domain/entities"
	"sevapay.backend/internal/interfaces/http/middleware"
	"sevapay.backend/internal/interfaces/http/response"
	"sevapay.backend/internal/usecases"
)

// AuthHandler serves admin authentication endpoints
type AuthHandler struct {
	adminUsecase *usecases.AdminUsecase
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(adminUsecase *usecases.AdminUsecase) *AuthHandler {
	return &AuthHandler{adminUsecase: adminUsecase}
}

// Login handles POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var input entities.AdminLoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	result, err := h.adminUsecase.Login(c.Request.Context(), &input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// ChangePassword handles POST /api/v1/auth/change-password
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	adminID, ok := middleware.GetAdminID(c)
	if !ok {
		response.BadRequest(c, "Admin context missing")
		return
	}

	var input entities.ChangePasswordInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	if err := h.adminUsecase.ChangePassword(c.Request.Context(), adminID, &input); err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithMessage(c, "Password changed", nil)
}

// Me handles GET /api/v1/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	claims, ok := middleware.GetClaims(c)
	if !ok {
		response.BadRequest(c, "Auth context missing")
		return
	}
	response.Success(c, claims)
}
