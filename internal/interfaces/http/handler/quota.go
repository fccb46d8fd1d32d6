package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	appbilling "github.com/dmflow/backend/internal/application/billing"
	"github.com/dmflow/backend/internal/domain/billing"
	"github.com/dmflow/backend/internal/interfaces/http/dto"
	"github.com/dmflow/backend/internal/interfaces/http/middleware"
)

// QuotaHandler serves usage checks, consumption and the tier summary
// for the authenticated user
type QuotaHandler struct {
	BaseHandler
	quota      *appbilling.QuotaService
	resolution *appbilling.TierResolutionService
}

// NewQuotaHandler creates a new quota handler
func NewQuotaHandler(quota *appbilling.QuotaService, resolution *appbilling.TierResolutionService, logger *zap.Logger) *QuotaHandler {
	return &QuotaHandler{
		BaseHandler: NewBaseHandler(logger),
		quota:       quota,
		resolution:  resolution,
	}
}

// Check handles GET /quota/check/:resource
func (h *QuotaHandler) Check(c *gin.Context) {
	var req dto.ResourceRequest
	if err := c.ShouldBindUri(&req); err != nil {
		h.HandleBindingError(c, err)
		return
	}
	resource, err := billing.ParseResource(req.Resource)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	result, err := h.quota.CheckUsage(c.Request.Context(), middleware.GetUserID(c), resource)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Consume handles POST /quota/consume. A denied consumption is not an
// error at the transport level; the result carries allowed=false.
func (h *QuotaHandler) Consume(c *gin.Context) {
	var req dto.ConsumeUsageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.HandleBindingError(c, err)
		return
	}
	resource, err := billing.ParseResource(req.Resource)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	amount := req.Amount
	if amount == 0 {
		amount = 1
	}
	var workspaceID *uuid.UUID
	if req.WorkspaceID != "" {
		id, err := uuid.Parse(req.WorkspaceID)
		if err != nil {
			h.BadRequest(c, "Invalid workspace id")
			return
		}
		workspaceID = &id
	}

	result, err := h.quota.ConsumeUsage(c.Request.Context(), middleware.GetUserID(c), resource, amount, workspaceID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Summary handles GET /quota/summary
func (h *QuotaHandler) Summary(c *gin.Context) {
	summary, err := h.quota.GetUsageSummary(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, summary)
}

// CheckFeature handles GET /quota/features/:feature
func (h *QuotaHandler) CheckFeature(c *gin.Context) {
	var req dto.FeatureRequest
	if err := c.ShouldBindUri(&req); err != nil {
		h.HandleBindingError(c, err)
		return
	}
	feature, err := billing.ParseFeature(req.Feature)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	allowed, err := h.quota.CheckFeature(c.Request.Context(), middleware.GetUserID(c), feature)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.FeatureCheckResponse{Feature: string(feature), Allowed: allowed})
}

// Tier handles GET /quota/tier, returning the caller's resolved tier
// with overrides merged in
func (h *QuotaHandler) Tier(c *gin.Context) {
	resolved, err := h.resolution.GetTierForUser(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resolved)
}
