package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"sevapay.backend/internal/domain/entities"
	"sevapay.backend/internal/interfaces/http/response"
	"sevapay.backend/internal/usecases"
)

// PartnerHandler serves the partner directory endpoints
type PartnerHandler struct {
	partnerUsecase *usecases.PartnerUsecase
}

// NewPartnerHandler creates a new partner handler
func NewPartnerHandler(partnerUsecase *usecases.PartnerUsecase) *PartnerHandler {
	return &PartnerHandler{partnerUsecase: partnerUsecase}
}

// Create handles POST /api/v1/partners
func (h *PartnerHandler) Create(c *gin.Context) {
	var input entities.PartnerCreateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	partner, err := h.partnerUsecase.Create(c.Request.Context(), &input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, partner)
}

// Get handles GET /api/v1/partners/:id
func (h *PartnerHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid partner ID")
		return
	}

	partner, err := h.partnerUsecase.GetByID(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, partner)
}

// List handles GET /api/v1/partners
func (h *PartnerHandler) List(c *gin.Context) {
	filter := partnerFilterFromQuery(c)
	partners, meta, err := h.partnerUsecase.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paginated(c, partners, meta)
}

// Update handles PUT /api/v1/partners/:id
func (h *PartnerHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid partner ID")
		return
	}

	var input entities.PartnerUpdateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	partner, err := h.partnerUsecase.Update(c.Request.Context(), id, &input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, partner)
}

// Delete handles DELETE /api/v1/partners/:id
func (h *PartnerHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid partner ID")
		return
	}

	if err := h.partnerUsecase.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithMessage(c, "Partner deleted", nil)
}

// BulkDelete handles POST /api/v1/partners/bulk-delete
func (h *PartnerHandler) BulkDelete(c *gin.Context) {
	var body struct {
		IDs []uuid.UUID `json:"ids" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	count, err := h.partnerUsecase.BulkDelete(c.Request.Context(), body.IDs)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"deleted": count})
}

// SetTpin handles POST /api/v1/partners/:id/tpin
func (h *PartnerHandler) SetTpin(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid partner ID")
		return
	}

	var body struct {
		Tpin string `json:"tpin" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	if err := h.partnerUsecase.SetTpin(c.Request.Context(), id, body.Tpin); err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithMessage(c, "T-PIN set", nil)
}

// Export handles GET /api/v1/partners/export?format=csv|json
func (h *PartnerHandler) Export(c *gin.Context) {
	filter := partnerFilterFromQuery(c)

	switch c.DefaultQuery("format", "csv") {
	case "json":
		out, err := h.partnerUsecase.ExportJSON(c.Request.Context(), filter)
		if err != nil {
			response.Error(c, err)
			return
		}
		c.Header("Content-Disposition", `attachment; filename="partners.json"`)
		c.Data(200, "application/json", []byte(out))
	case "csv":
		out, err := h.partnerUsecase.ExportCSV(c.Request.Context(), filter)
		if err != nil {
			response.Error(c, err)
			return
		}
		c.Header("Content-Disposition", `attachment; filename="partners.csv"`)
		c.Data(200, "text/csv", []byte(out))
	default:
		response.BadRequest(c, "Unsupported export format")
	}
}

func partnerFilterFromQuery(c *gin.Context) entities.PartnerListFilter {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	return entities.PartnerListFilter{
		PartnerType: entities.PartnerType(c.Query("type")),
		Search:      c.Query("search"),
		Status:      entities.PartnerStatus(c.Query("status")),
		SortBy:      c.Query("sortBy"),
		SortDesc:    c.Query("sortDir") == "desc",
		Page:        page,
		Limit:       limit,
	}
}
