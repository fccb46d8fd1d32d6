package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	appbilling "github.com/dmflow/backend/internal/application/billing"
	appidentity "github.com/dmflow/backend/internal/application/identity"
	"github.com/dmflow/backend/internal/domain/billing"
	"github.com/dmflow/backend/internal/interfaces/http/dto"
)

// AdminHandler serves operator actions on users, billing accounts and
// subscriptions
type AdminHandler struct {
	BaseHandler
	users         *appidentity.UserService
	subscriptions *appbilling.SubscriptionService
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(users *appidentity.UserService, subscriptions *appbilling.SubscriptionService, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{
		BaseHandler:   NewBaseHandler(logger),
		users:         users,
		subscriptions: subscriptions,
	}
}

// AssignTier handles PUT /admin/users/:id/tier
func (h *AdminHandler) AssignTier(c *gin.Context) {
	userID, ok := h.bindID(c)
	if !ok {
		return
	}

	var req dto.AssignTierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.HandleBindingError(c, err)
		return
	}
	tierID, err := uuid.Parse(req.TierID)
	if err != nil {
		h.BadRequest(c, "Invalid tier id")
		return
	}

	if err := h.users.AssignTier(c.Request.Context(), userID, tierID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// SetOverrides handles PUT /admin/users/:id/overrides
func (h *AdminHandler) SetOverrides(c *gin.Context) {
	userID, ok := h.bindID(c)
	if !ok {
		return
	}

	var overrides billing.Limits
	if err := c.ShouldBindJSON(&overrides); err != nil {
		h.HandleBindingError(c, err)
		return
	}

	if err := h.users.SetOverrides(c.Request.Context(), userID, overrides); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// CreateBillingAccount handles POST /admin/billing-accounts
func (h *AdminHandler) CreateBillingAccount(c *gin.Context) {
	var req dto.CreateBillingAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.HandleBindingError(c, err)
		return
	}
	ownerID, err := uuid.Parse(req.OwnerUserID)
	if err != nil {
		h.BadRequest(c, "Invalid owner user id")
		return
	}

	account, err := h.subscriptions.CreateBillingAccount(c.Request.Context(), ownerID, req.Name)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	if err := h.users.AttachBillingAccount(c.Request.Context(), ownerID, account.ID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, account)
}

// CreateSubscription handles POST /admin/subscriptions. Creating a
// subscription cancels any other active one on the same account.
func (h *AdminHandler) CreateSubscription(c *gin.Context) {
	var req dto.CreateSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.HandleBindingError(c, err)
		return
	}
	accountID, err := uuid.Parse(req.BillingAccountID)
	if err != nil {
		h.BadRequest(c, "Invalid billing account id")
		return
	}
	tierID, err := uuid.Parse(req.TierID)
	if err != nil {
		h.BadRequest(c, "Invalid tier id")
		return
	}

	sub, err := h.subscriptions.CreateSubscription(c.Request.Context(), appbilling.SubscriptionInput{
		BillingAccountID: accountID,
		TierID:           tierID,
		CurrentPeriodEnd: req.CurrentPeriodEnd,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, sub)
}

// CancelSubscriptions handles POST /admin/billing-accounts/:id/cancel
func (h *AdminHandler) CancelSubscriptions(c *gin.Context) {
	accountID, ok := h.bindID(c)
	if !ok {
		return
	}

	canceled, err := h.subscriptions.CancelActiveSubscriptions(c.Request.Context(), accountID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"canceled": canceled})
}

// ListSubscriptions handles GET /admin/billing-accounts/:id/subscriptions
func (h *AdminHandler) ListSubscriptions(c *gin.Context) {
	accountID, ok := h.bindID(c)
	if !ok {
		return
	}

	subs, err := h.subscriptions.ListSubscriptions(c.Request.Context(), accountID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, subs)
}

func (h *AdminHandler) bindID(c *gin.Context) (uuid.UUID, bool) {
	var req dto.IDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		h.HandleBindingError(c, err)
		return uuid.Nil, false
	}
	id, err := uuid.Parse(req.ID)
	if err != nil {
		h.BadRequest(c, "Invalid id")
		return uuid.Nil, false
	}
	return id, true
}
