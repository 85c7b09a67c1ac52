package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	domainerrors "sevapay.backend/internal/domain/errors"
	"sevapay.backend/pkg/logger"
	"sevapay.backend/pkg/utils"
)

// Response is the standard API envelope
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// PaginatedResponse wraps list payloads with pagination metadata
type PaginatedResponse struct {
	Success    bool                 `json:"success"`
	Data       interface{}          `json:"data"`
	Pagination utils.PaginationMeta `json:"pagination"`
}

// Success sends a 200 with data
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{Success: true, Data: data})
}

// SuccessWithMessage sends a 200 with a message and data
func SuccessWithMessage(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, Response{Success: true, Message: message, Data: data})
}

// Created sends a 201 with data
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{Success: true, Data: data})
}

// Paginated sends a 200 list page with metadata
func Paginated(c *gin.Context, data interface{}, meta utils.PaginationMeta) {
	c.JSON(http.StatusOK, PaginatedResponse{Success: true, Data: data, Pagination: meta})
}

// Error maps a domain error onto the HTTP envelope. AppErrors carry their
// own status; anything else is a masked 500.
func Error(c *gin.Context, err error) {
	var appErr *domainerrors.AppError
	if errors.As(err, &appErr) {
		c.JSON(appErr.Status, Response{Success: false, Error: appErr.Message})
		return
	}

	switch {
	case errors.Is(err, domainerrors.ErrNotFound):
		c.JSON(http.StatusNotFound, Response{Success: false, Error: "Resource not found"})
	case errors.Is(err, domainerrors.ErrTimeout):
		c.JSON(http.StatusGatewayTimeout, Response{Success: false, Error: "Upstream service timed out"})
	default:
		logger.Error(c.Request.Context(), "unhandled error", zap.Error(err))
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: "Internal server error"})
	}
}

// BadRequest sends a 400 with a validation message
func BadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, Response{Success: false, Error: message})
}
