package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"sevapay.backend/internal/domain/entities"
	"sevapay.backend/internal/interfaces/http/response"
	"sevapay.backend/internal/usecases"
)

// PosHandler serves POS device and mapping endpoints
type PosHandler struct {
	posUsecase *usecases.PosUsecase
}

// NewPosHandler creates a new POS handler
func NewPosHandler(posUsecase *usecases.PosUsecase) *PosHandler {
	return &PosHandler{posUsecase: posUsecase}
}

// CreateMachine handles POST /api/v1/pos/machines
func (h *PosHandler) CreateMachine(c *gin.Context) {
	var input entities.PosMachineInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	machine, err := h.posUsecase.CreateMachine(c.Request.Context(), &input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, machine)
}

// GetMachine handles GET /api/v1/pos/machines/:id
func (h *PosHandler) GetMachine(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid machine ID")
		return
	}

	machine, err := h.posUsecase.GetMachine(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, machine)
}

// ListMachines handles GET /api/v1/pos/machines
func (h *PosHandler) ListMachines(c *gin.Context) {
	machines, meta, err := h.posUsecase.ListMachines(c.Request.Context(), machineFilterFromQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paginated(c, machines, meta)
}

// ExportMachines handles GET /api/v1/pos/machines/export?format=csv|json
func (h *PosHandler) ExportMachines(c *gin.Context) {
	filter := machineFilterFromQuery(c)

	switch c.DefaultQuery("format", "csv") {
	case "json":
		out, err := h.posUsecase.ExportMachinesJSON(c.Request.Context(), filter)
		if err != nil {
			response.Error(c, err)
			return
		}
		c.Header("Content-Disposition", `attachment; filename="pos-machines.json"`)
		c.Data(200, "application/json", []byte(out))
	case "csv":
		out, err := h.posUsecase.ExportMachinesCSV(c.Request.Context(), filter)
		if err != nil {
			response.Error(c, err)
			return
		}
		c.Header("Content-Disposition", `attachment; filename="pos-machines.csv"`)
		c.Data(200, "text/csv", []byte(out))
	default:
		response.BadRequest(c, "Unsupported export format")
	}
}

func machineFilterFromQuery(c *gin.Context) entities.PosMachineListFilter {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	return entities.PosMachineListFilter{
		Search:   c.Query("search"),
		Status:   entities.PosMachineStatus(c.Query("status")),
		SortBy:   c.Query("sortBy"),
		SortDesc: c.Query("sortDir") == "desc",
		Page:     page,
		Limit:    limit,
	}
}

// UpdateMachine handles PUT /api/v1/pos/machines/:id
func (h *PosHandler) UpdateMachine(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid machine ID")
		return
	}

	var input entities.PosMachineInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	machine, err := h.posUsecase.UpdateMachine(c.Request.Context(), id, &input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, machine)
}

// DeleteMachine handles DELETE /api/v1/pos/machines/:id
func (h *PosHandler) DeleteMachine(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid machine ID")
		return
	}

	if err := h.posUsecase.DeleteMachine(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithMessage(c, "Machine deleted", nil)
}

// BulkUploadTemplate handles GET /api/v1/pos/machines/bulk-upload/template
func (h *PosHandler) BulkUploadTemplate(c *gin.Context) {
	c.Header("Content-Disposition", `attachment; filename="pos_machines_template.csv"`)
	c.Data(200, "text/csv", []byte(h.posUsecase.BulkUploadTemplate()))
}

// BulkUpload handles POST /api/v1/pos/machines/bulk-upload
func (h *PosHandler) BulkUpload(c *gin.Context) {
	file, _, err := c.Request.FormFile("file")
	if err != nil {
		response.BadRequest(c, "A CSV file upload named 'file' is required")
		return
	}
	defer file.Close()

	result, err := h.posUsecase.BulkUpload(c.Request.Context(), file)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// CreateMapping handles POST /api/v1/pos/mappings
func (h *PosHandler) CreateMapping(c *gin.Context) {
	var input entities.PosDeviceMappingInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	mapping, err := h.posUsecase.CreateMapping(c.Request.Context(), &input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, mapping)
}

// ListMappings handles GET /api/v1/pos/mappings
func (h *PosHandler) ListMappings(c *gin.Context) {
	mappings, err := h.posUsecase.ListMappings(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, mappings)
}

// UpdateMapping handles PUT /api/v1/pos/mappings/:id
func (h *PosHandler) UpdateMapping(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid mapping ID")
		return
	}

	var input entities.PosDeviceMappingInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	mapping, err := h.posUsecase.UpdateMapping(c.Request.Context(), id, &input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, mapping)
}

// DeleteMapping handles DELETE /api/v1/pos/mappings/:id
func (h *PosHandler) DeleteMapping(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid mapping ID")
		return
	}

	if err := h.posUsecase.DeleteMapping(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithMessage(c, "Mapping deleted", nil)
}
