package handlers

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"sevapay.backend/internal/domain/entities"
	"sevapay.backend/internal/interfaces/http/response"
	"sevapay.backend/internal/usecases"
)

// ReportHandler serves transaction reports and exports
type ReportHandler struct {
	reportUsecase *usecases.ReportUsecase
}

// NewReportHandler creates a new report handler
func NewReportHandler(reportUsecase *usecases.ReportUsecase) *ReportHandler {
	return &ReportHandler{reportUsecase: reportUsecase}
}

// List handles GET /api/v1/reports/transactions
func (h *ReportHandler) List(c *gin.Context) {
	filter, err := transactionFilterFromQuery(c)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	txns, meta, err := h.reportUsecase.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paginated(c, txns, meta)
}

// Get handles GET /api/v1/reports/transactions/:id
func (h *ReportHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid transaction ID")
		return
	}

	txn, err := h.reportUsecase.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, txn)
}

// Export handles GET /api/v1/reports/transactions/export?format=csv|json
func (h *ReportHandler) Export(c *gin.Context) {
	filter, err := transactionFilterFromQuery(c)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	switch c.DefaultQuery("format", "csv") {
	case "json":
		out, err := h.reportUsecase.ExportJSON(c.Request.Context(), filter)
		if err != nil {
			response.Error(c, err)
			return
		}
		c.Header("Content-Disposition", `attachment; filename="transactions.json"`)
		c.Data(200, "application/json", []byte(out))
	case "csv":
		out, err := h.reportUsecase.ExportCSV(c.Request.Context(), filter)
		if err != nil {
			response.Error(c, err)
			return
		}
		c.Header("Content-Disposition", `attachment; filename="transactions.csv"`)
		c.Data(200, "text/csv", []byte(out))
	default:
		response.BadRequest(c, "Unsupported export format")
	}
}

func transactionFilterFromQuery(c *gin.Context) (entities.TransactionListFilter, error) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	filter := entities.TransactionListFilter{
		Status: entities.TransactionStatus(c.Query("status")),
		Page:   page,
		Limit:  limit,
	}

	if p := c.Query("partnerId"); p != "" {
		id, err := uuid.Parse(p)
		if err != nil {
			return filter, errInvalidFilter("partnerId")
		}
		filter.PartnerID = id
	}
	if from := c.Query("from"); from != "" {
		t, err := time.Parse("2006-01-02", from)
		if err != nil {
			return filter, errInvalidFilter("from")
		}
		filter.From = t
	}
	if to := c.Query("to"); to != "" {
		t, err := time.Parse("2006-01-02", to)
		if err != nil {
			return filter, errInvalidFilter("to")
		}
		// Inclusive end of day.
		filter.To = t.Add(24*time.Hour - time.Nanosecond)
	}
	return filter, nil
}

type filterError string

func (e filterError) Error() string { return string(e) }

func errInvalidFilter(field string) error {
	return filterError("Invalid " + field + " filter")
}
