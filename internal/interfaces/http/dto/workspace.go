package dto

import (
	"time"

	"github.com/dmflow/backend/internal/domain/identity"
)

// CreateWorkspaceRequest represents a workspace creation payload
type CreateWorkspaceRequest struct {
	Name string `json:"name" binding:"required,min=1,max=100"`
}

// AddMemberRequest represents a member addition payload
type AddMemberRequest struct {
	UserID string `json:"user_id" binding:"required,uuid"`
	Role   string `json:"role" binding:"required,oneof=admin agent viewer"`
}

// UpdateMemberRoleRequest represents a member role change payload
type UpdateMemberRoleRequest struct {
	Role string `json:"role" binding:"required,oneof=admin agent viewer"`
}

// MemberIDRequest represents workspace and member path parameters
type MemberIDRequest struct {
	ID     string `uri:"id" binding:"required,uuid"`
	UserID string `uri:"user_id" binding:"required,uuid"`
}

// WorkspaceResponse is the public projection of a workspace
type WorkspaceResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	OwnerUserID string    `json:"owner_user_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// MemberResponse is the public projection of a workspace membership
type MemberResponse struct {
	WorkspaceID string    `json:"workspace_id"`
	UserID      string    `json:"user_id"`
	Role        string    `json:"role"`
	JoinedAt    time.Time `json:"joined_at"`
}

// ToWorkspaceResponse converts a domain workspace to its response form
func ToWorkspaceResponse(ws *identity.Workspace) WorkspaceResponse {
	return WorkspaceResponse{
		ID:          ws.ID.String(),
		Name:        ws.Name,
		OwnerUserID: ws.OwnerUserID.String(),
		CreatedAt:   ws.CreatedAt,
	}
}

// ToWorkspaceResponses converts a slice of domain workspaces
func ToWorkspaceResponses(workspaces []*identity.Workspace) []WorkspaceResponse {
	out := make([]WorkspaceResponse, len(workspaces))
	for i, ws := range workspaces {
		out[i] = ToWorkspaceResponse(ws)
	}
	return out
}

// ToMemberResponse converts a domain membership to its response form
func ToMemberResponse(m *identity.WorkspaceMember) MemberResponse {
	return MemberResponse{
		WorkspaceID: m.WorkspaceID.String(),
		UserID:      m.UserID.String(),
		Role:        string(m.Role),
		JoinedAt:    m.CreatedAt,
	}
}

// ToMemberResponses converts a slice of domain memberships
func ToMemberResponses(members []*identity.WorkspaceMember) []MemberResponse {
	out := make([]MemberResponse, len(members))
	for i, m := range members {
		out[i] = ToMemberResponse(m)
	}
	return out
}
