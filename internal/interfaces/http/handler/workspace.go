package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	appidentity "github.com/dmflow/backend/internal/application/identity"
	"github.com/dmflow/backend/internal/domain/identity"
	"github.com/dmflow/backend/internal/interfaces/http/dto"
	"github.com/dmflow/backend/internal/interfaces/http/middleware"
)

// WorkspaceHandler serves workspace and membership endpoints
type WorkspaceHandler struct {
	BaseHandler
	workspaces *appidentity.WorkspaceService
}

// NewWorkspaceHandler creates a new workspace handler
func NewWorkspaceHandler(workspaces *appidentity.WorkspaceService, logger *zap.Logger) *WorkspaceHandler {
	return &WorkspaceHandler{
		BaseHandler: NewBaseHandler(logger),
		workspaces:  workspaces,
	}
}

// Create handles POST /workspaces
func (h *WorkspaceHandler) Create(c *gin.Context) {
	var req dto.CreateWorkspaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.HandleBindingError(c, err)
		return
	}

	ws, err := h.workspaces.Create(c.Request.Context(), middleware.GetUserID(c), req.Name)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, dto.ToWorkspaceResponse(ws))
}

// List handles GET /workspaces, returning the caller's workspaces
func (h *WorkspaceHandler) List(c *gin.Context) {
	workspaces, err := h.workspaces.GetUserWorkspaces(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.ToWorkspaceResponses(workspaces))
}

// Get handles GET /workspaces/:id
func (h *WorkspaceHandler) Get(c *gin.Context) {
	workspaceID, ok := h.bindWorkspaceID(c)
	if !ok {
		return
	}

	ws, err := h.workspaces.GetWorkspace(c.Request.Context(), middleware.GetUserID(c), workspaceID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.ToWorkspaceResponse(ws))
}

// ListMembers handles GET /workspaces/:id/members
func (h *WorkspaceHandler) ListMembers(c *gin.Context) {
	workspaceID, ok := h.bindWorkspaceID(c)
	if !ok {
		return
	}

	members, err := h.workspaces.GetMembers(c.Request.Context(), middleware.GetUserID(c), workspaceID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.ToMemberResponses(members))
}

// AddMember handles POST /workspaces/:id/members
func (h *WorkspaceHandler) AddMember(c *gin.Context) {
	workspaceID, ok := h.bindWorkspaceID(c)
	if !ok {
		return
	}

	var req dto.AddMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.HandleBindingError(c, err)
		return
	}
	memberUserID, err := uuid.Parse(req.UserID)
	if err != nil {
		h.BadRequest(c, "Invalid user id")
		return
	}
	role, err := identity.ParseWorkspaceRole(req.Role)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	member, err := h.workspaces.AddMember(c.Request.Context(),
		middleware.GetUserID(c), workspaceID, memberUserID, role)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, dto.ToMemberResponse(member))
}

// UpdateMemberRole handles PATCH /workspaces/:id/members/:user_id
func (h *WorkspaceHandler) UpdateMemberRole(c *gin.Context) {
	workspaceID, memberUserID, ok := h.bindMemberIDs(c)
	if !ok {
		return
	}

	var req dto.UpdateMemberRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.HandleBindingError(c, err)
		return
	}
	role, err := identity.ParseWorkspaceRole(req.Role)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	member, err := h.workspaces.UpdateMemberRole(c.Request.Context(),
		middleware.GetUserID(c), workspaceID, memberUserID, role)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.ToMemberResponse(member))
}

// RemoveMember handles DELETE /workspaces/:id/members/:user_id
func (h *WorkspaceHandler) RemoveMember(c *gin.Context) {
	workspaceID, memberUserID, ok := h.bindMemberIDs(c)
	if !ok {
		return
	}

	err := h.workspaces.RemoveMember(c.Request.Context(),
		middleware.GetUserID(c), workspaceID, memberUserID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

func (h *WorkspaceHandler) bindWorkspaceID(c *gin.Context) (uuid.UUID, bool) {
	var req dto.IDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		h.HandleBindingError(c, err)
		return uuid.Nil, false
	}
	id, err := uuid.Parse(req.ID)
	if err != nil {
		h.BadRequest(c, "Invalid workspace id")
		return uuid.Nil, false
	}
	return id, true
}

func (h *WorkspaceHandler) bindMemberIDs(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	var req dto.MemberIDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		h.HandleBindingError(c, err)
		return uuid.Nil, uuid.Nil, false
	}
	workspaceID, err := uuid.Parse(req.ID)
	if err != nil {
		h.BadRequest(c, "Invalid workspace id")
		return uuid.Nil, uuid.Nil, false
	}
	memberUserID, err := uuid.Parse(req.UserID)
	if err != nil {
		h.BadRequest(c, "Invalid user id")
		return uuid.Nil, uuid.Nil, false
	}
	return workspaceID, memberUserID, true
}
