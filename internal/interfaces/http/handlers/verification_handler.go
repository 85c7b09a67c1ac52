package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"sevapay.backend/internal/interfaces/http/response"
	"sevapay.backend/internal/usecases"
)

// VerificationHandler serves the onboarding verification queue
type VerificationHandler struct {
	verificationUsecase *usecases.VerificationUsecase
}

// NewVerificationHandler creates a new verification handler
func NewVerificationHandler(verificationUsecase *usecases.VerificationUsecase) *VerificationHandler {
	return &VerificationHandler{verificationUsecase: verificationUsecase}
}

// ListPending handles GET /api/v1/verification/pending
func (h *VerificationHandler) ListPending(c *gin.Context) {
	pending, err := h.verificationUsecase.ListPending(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, pending)
}

// GetPending handles GET /api/v1/verification/:id
func (h *VerificationHandler) GetPending(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid partner ID")
		return
	}

	partner, err := h.verificationUsecase.GetPending(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, partner)
}

type verificationDecision struct {
	Remarks string `json:"remarks"`
}

// Approve handles POST /api/v1/verification/:id/approve
func (h *VerificationHandler) Approve(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid partner ID")
		return
	}

	var body verificationDecision
	_ = c.ShouldBindJSON(&body)

	if err := h.verificationUsecase.Approve(c.Request.Context(), id, body.Remarks); err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithMessage(c, "Partner approved", nil)
}

// Reject handles POST /api/v1/verification/:id/reject
func (h *VerificationHandler) Reject(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid partner ID")
		return
	}

	var body verificationDecision
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	if err := h.verificationUsecase.Reject(c.Request.Context(), id, body.Remarks); err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithMessage(c, "Partner rejected", nil)
}
