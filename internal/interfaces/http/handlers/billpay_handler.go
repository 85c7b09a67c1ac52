package handlers

import (
	"github.com/gin-gonic/gin"

	"sevapay.backend/internal/domain/entities"
	"sevapay.backend/internal/interfaces/http/middleware"
	"sevapay.backend/internal/interfaces/http/response"
	"sevapay.backend/internal/usecases"
)

// BillpayHandler serves the bill-payment flow for partner-scoped sessions
type BillpayHandler struct {
	billpayUsecase *usecases.BillpayUsecase
}

// NewBillpayHandler creates a new billpay handler
func NewBillpayHandler(billpayUsecase *usecases.BillpayUsecase) *BillpayHandler {
	return &BillpayHandler{billpayUsecase: billpayUsecase}
}

// Categories handles GET /api/v1/billpay/categories
func (h *BillpayHandler) Categories(c *gin.Context) {
	cats, err := h.billpayUsecase.ListCategories(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, cats)
}

// Billers handles GET /api/v1/billpay/billers?category=...
func (h *BillpayHandler) Billers(c *gin.Context) {
	category := c.Query("category")
	if category == "" {
		response.BadRequest(c, "category query parameter is required")
		return
	}

	billers, err := h.billpayUsecase.ListBillers(c.Request.Context(), category)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, billers)
}

// sessionView decorates a session with the available amount options
func (h *BillpayHandler) sessionView(session *entities.PaymentSession) gin.H {
	full, minimum, custom := h.billpayUsecase.AmountOptions(session)
	view := gin.H{
		"session": session,
		"options": gin.H{"full": full, "minimum": minimum, "custom": custom},
	}
	if session.Stage == entities.StageConfirm {
		view["breakdown"] = h.billpayUsecase.Breakdown(session)
	}
	return view
}

// StartSession handles POST /api/v1/billpay/sessions
func (h *BillpayHandler) StartSession(c *gin.Context) {
	partnerID, ok := middleware.GetPartnerID(c)
	if !ok {
		response.BadRequest(c, "Partner context missing")
		return
	}

	var input usecases.StartSessionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	session, err := h.billpayUsecase.StartSession(c.Request.Context(), partnerID, &input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, h.sessionView(session))
}

// GetSession handles GET /api/v1/billpay/sessions/:sessionId
func (h *BillpayHandler) GetSession(c *gin.Context) {
	partnerID, ok := middleware.GetPartnerID(c)
	if !ok {
		response.BadRequest(c, "Partner context missing")
		return
	}

	session, err := h.billpayUsecase.GetSession(c.Request.Context(), partnerID, c.Param("sessionId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, h.sessionView(session))
}

// SelectAmount handles POST /api/v1/billpay/sessions/:sessionId/amount
func (h *BillpayHandler) SelectAmount(c *gin.Context) {
	partnerID, ok := middleware.GetPartnerID(c)
	if !ok {
		response.BadRequest(c, "Partner context missing")
		return
	}

	var body struct {
		Option      entities.AmountOption `json:"option" binding:"required"`
		AmountPaise int64                 `json:"amountPaise,omitempty"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	session, err := h.billpayUsecase.SelectAmount(c.Request.Context(), partnerID, c.Param("sessionId"), body.Option, body.AmountPaise)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, h.sessionView(session))
}

// Confirm handles POST /api/v1/billpay/sessions/:sessionId/confirm
func (h *BillpayHandler) Confirm(c *gin.Context) {
	partnerID, ok := middleware.GetPartnerID(c)
	if !ok {
		response.BadRequest(c, "Partner context missing")
		return
	}

	// T-PIN is mandatory only for partners that configured one; the
	// usecase decides, so an empty body is fine here.
	var body struct {
		Tpin string `json:"tpin"`
	}
	_ = c.ShouldBindJSON(&body)

	result, err := h.billpayUsecase.Confirm(c.Request.Context(), partnerID, c.Param("sessionId"), body.Tpin)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// Back handles POST /api/v1/billpay/sessions/:sessionId/back
func (h *BillpayHandler) Back(c *gin.Context) {
	partnerID, ok := middleware.GetPartnerID(c)
	if !ok {
		response.BadRequest(c, "Partner context missing")
		return
	}

	session, err := h.billpayUsecase.Back(c.Request.Context(), partnerID, c.Param("sessionId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, h.sessionView(session))
}

// RegisterComplaint handles POST /api/v1/billpay/complaints
func (h *BillpayHandler) RegisterComplaint(c *gin.Context) {
	partnerID, ok := middleware.GetPartnerID(c)
	if !ok {
		response.BadRequest(c, "Partner context missing")
		return
	}

	var input entities.ComplaintInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	complaintID, err := h.billpayUsecase.RegisterComplaint(c.Request.Context(), partnerID, &input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"complaintId": complaintID})
}
