package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"sevapay.backend/internal/domain/entities"
	"sevapay.backend/internal/interfaces/http/middleware"
	"sevapay.backend/internal/interfaces/http/response"
	"sevapay.backend/internal/usecases"
)

// AdminUserHandler serves sub-admin management and partner impersonation
type AdminUserHandler struct {
	adminUsecase *usecases.AdminUsecase
}

// NewAdminUserHandler creates a new admin user handler
func NewAdminUserHandler(adminUsecase *usecases.AdminUsecase) *AdminUserHandler {
	return &AdminUserHandler{adminUsecase: adminUsecase}
}

// ListSubAdmins handles GET /api/v1/admins/sub-admins
func (h *AdminUserHandler) ListSubAdmins(c *gin.Context) {
	admins, err := h.adminUsecase.ListSubAdmins(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, admins)
}

// CreateSubAdmin handles POST /api/v1/admins/sub-admins
func (h *AdminUserHandler) CreateSubAdmin(c *gin.Context) {
	var input entities.SubAdminInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	admin, err := h.adminUsecase.CreateSubAdmin(c.Request.Context(), &input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, admin)
}

// UpdateSubAdmin handles PUT /api/v1/admins/sub-admins/:id
func (h *AdminUserHandler) UpdateSubAdmin(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid admin ID")
		return
	}

	var input entities.SubAdminInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	admin, err := h.adminUsecase.UpdateSubAdmin(c.Request.Context(), id, &input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, admin)
}

// DeleteSubAdmin handles DELETE /api/v1/admins/sub-admins/:id
func (h *AdminUserHandler) DeleteSubAdmin(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid admin ID")
		return
	}

	if err := h.adminUsecase.DeleteSubAdmin(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithMessage(c, "Sub-admin deleted", nil)
}

// StartImpersonation handles POST /api/v1/admins/impersonate/:partnerId
func (h *AdminUserHandler) StartImpersonation(c *gin.Context) {
	adminID, ok := middleware.GetAdminID(c)
	if !ok {
		response.BadRequest(c, "Admin context missing")
		return
	}
	partnerID, err := uuid.Parse(c.Param("partnerId"))
	if err != nil {
		response.BadRequest(c, "Invalid partner ID")
		return
	}

	result, err := h.adminUsecase.StartImpersonation(c.Request.Context(), adminID, partnerID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// StopImpersonation handles POST /api/v1/admins/impersonate/stop
func (h *AdminUserHandler) StopImpersonation(c *gin.Context) {
	adminID, ok := middleware.GetAdminID(c)
	if !ok {
		response.BadRequest(c, "Admin context missing")
		return
	}

	var body struct {
		SessionID string `json:"sessionId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	if err := h.adminUsecase.StopImpersonation(c.Request.Context(), adminID, body.SessionID); err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithMessage(c, "Impersonation ended", nil)
}

// ResetPartnerPassword handles POST /api/v1/admins/partners/:partnerId/reset-password
func (h *AdminUserHandler) ResetPartnerPassword(c *gin.Context) {
	partnerID, err := uuid.Parse(c.Param("partnerId"))
	if err != nil {
		response.BadRequest(c, "Invalid partner ID")
		return
	}

	tempPassword, err := h.adminUsecase.ResetPartnerPassword(c.Request.Context(), partnerID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"temporaryPassword": tempPassword})
}
