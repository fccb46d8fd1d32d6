package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	appbilling "github.com/dmflow/backend/internal/application/billing"
	"github.com/dmflow/backend/internal/domain/billing"
	"github.com/dmflow/backend/internal/domain/shared"
	"github.com/dmflow/backend/internal/interfaces/http/dto"
)

// TierHandler serves the admin tier catalog endpoints
type TierHandler struct {
	BaseHandler
	catalog *appbilling.TierCatalogService
}

// NewTierHandler creates a new tier handler
func NewTierHandler(catalog *appbilling.TierCatalogService, logger *zap.Logger) *TierHandler {
	return &TierHandler{
		BaseHandler: NewBaseHandler(logger),
		catalog:     catalog,
	}
}

// Create handles POST /admin/tiers
func (h *TierHandler) Create(c *gin.Context) {
	var req dto.CreateTierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.HandleBindingError(c, err)
		return
	}

	tier, err := h.catalog.Create(c.Request.Context(), appbilling.TierInput{
		Name:        req.Name,
		Description: req.Description,
		Limits:      req.Limits,
		IsDefault:   req.IsDefault,
		IsCustom:    req.IsCustom,
		Status:      billing.TierStatus(req.Status),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, dto.ToTierResponse(tier))
}

// Update handles PATCH /admin/tiers/:id
func (h *TierHandler) Update(c *gin.Context) {
	id, ok := h.bindID(c)
	if !ok {
		return
	}

	var req dto.UpdateTierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.HandleBindingError(c, err)
		return
	}

	input := appbilling.UpdateTierInput{
		Name:        req.Name,
		Description: req.Description,
		Limits:      req.Limits,
		IsDefault:   req.IsDefault,
		IsCustom:    req.IsCustom,
	}
	if req.Status != nil {
		status := billing.TierStatus(*req.Status)
		input.Status = &status
	}

	tier, err := h.catalog.Update(c.Request.Context(), id, input)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.ToTierResponse(tier))
}

// Delete handles DELETE /admin/tiers/:id
func (h *TierHandler) Delete(c *gin.Context) {
	id, ok := h.bindID(c)
	if !ok {
		return
	}
	if err := h.catalog.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Get handles GET /admin/tiers/:id
func (h *TierHandler) Get(c *gin.Context) {
	id, ok := h.bindID(c)
	if !ok {
		return
	}
	tier, err := h.catalog.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.ToTierResponse(tier))
}

// List handles GET /admin/tiers
func (h *TierHandler) List(c *gin.Context) {
	var req dto.ListTiersRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.HandleBindingError(c, err)
		return
	}

	filter := billing.TierFilter{
		Filter: shared.Filter{
			Page:     req.Page,
			PageSize: req.PageSize,
			OrderBy:  req.OrderBy,
			OrderDir: req.OrderDir,
			Search:   req.Search,
		},
		Name:   req.Search,
		Status: billing.TierStatus(req.Status),
	}

	page, err := h.catalog.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, dto.ToTierResponses(page.Items), page.Total, page.Page, page.PageSize)
}

func (h *TierHandler) bindID(c *gin.Context) (uuid.UUID, bool) {
	var req dto.IDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		h.HandleBindingError(c, err)
		return uuid.Nil, false
	}
	id, err := uuid.Parse(req.ID)
	if err != nil {
		h.BadRequest(c, "Invalid tier id")
		return uuid.Nil, false
	}
	return id, true
}
