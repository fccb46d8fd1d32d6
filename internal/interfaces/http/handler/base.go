package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/dmflow/backend/internal/domain/shared"
	"github.com/dmflow/backend/internal/interfaces/http/dto"
)

// BaseHandler provides common response helpers for all handlers
type BaseHandler struct {
	logger *zap.Logger
}

// NewBaseHandler creates a new base handler
func NewBaseHandler(logger *zap.Logger) BaseHandler {
	return BaseHandler{logger: logger}
}

// Success sends a 200 response with data
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// SuccessWithMeta sends a 200 response with data and pagination meta
func (h *BaseHandler) SuccessWithMeta(c *gin.Context, data any, total int64, page, pageSize int) {
	c.JSON(http.StatusOK, dto.NewSuccessResponseWithMeta(data, total, page, pageSize))
}

// Created sends a 201 response with data
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// NoContent sends a 204 response
func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// BadRequest sends a 400 response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.ErrCodeBadRequest, message))
}

// Unauthorized sends a 401 response
func (h *BaseHandler) Unauthorized(c *gin.Context, message string) {
	c.JSON(http.StatusUnauthorized, dto.NewErrorResponse(dto.ErrCodeUnauthorized, message))
}

// HandleError maps an error to the appropriate HTTP response. Domain
// errors keep their code and map to a status through the dto table;
// anything else is a 500 with the detail kept out of the response.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		status := dto.GetHTTPStatus(domainErr.Code)
		if status >= http.StatusInternalServerError {
			h.logger.Error("Domain error treated as internal",
				zap.String("code", domainErr.Code),
				zap.String("path", c.FullPath()),
				zap.Error(err))
		}
		c.JSON(status, dto.NewErrorResponse(domainErr.Code, domainErr.Message))
		return
	}

	h.logger.Error("Unhandled error",
		zap.String("path", c.FullPath()),
		zap.Error(err))
	c.JSON(http.StatusInternalServerError,
		dto.NewErrorResponse(dto.ErrCodeInternal, "An internal error occurred"))
}

// HandleBindingError sends a 400 response for a failed request binding,
// listing the offending fields when the validator produced them
func (h *BaseHandler) HandleBindingError(c *gin.Context, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		details := make([]dto.ValidationDetail, 0, len(validationErrs))
		for _, fe := range validationErrs {
			details = append(details, dto.ValidationDetail{
				Field:   strings.ToLower(fe.Field()),
				Message: validationMessage(fe),
			})
		}
		c.JSON(http.StatusBadRequest,
			dto.NewValidationErrorResponse("Request validation failed", details))
		return
	}
	c.JSON(http.StatusBadRequest,
		dto.NewErrorResponse(dto.ErrCodeBadRequest, "Invalid request payload"))
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required"
	case "email":
		return "Must be a valid email address"
	case "uuid":
		return "Must be a valid UUID"
	case "min":
		return "Value is too small or too short (min " + fe.Param() + ")"
	case "max":
		return "Value is too large or too long (max " + fe.Param() + ")"
	case "oneof":
		return "Must be one of: " + fe.Param()
	default:
		return "Invalid value"
	}
}
