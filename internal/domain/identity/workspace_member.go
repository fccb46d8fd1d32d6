package identity

import (
	"context"
	"time"

	"github.com/dmflow/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// WorkspaceRole is a strictly ordered workspace role. Higher rank
// implies every permission of the ranks below it.
type WorkspaceRole string

const (
	WorkspaceRoleOwner  WorkspaceRole = "owner"
	WorkspaceRoleAdmin  WorkspaceRole = "admin"
	WorkspaceRoleAgent  WorkspaceRole = "agent"
	WorkspaceRoleViewer WorkspaceRole = "viewer"
)

// Rank returns the role's position in the hierarchy; higher is stronger.
// Unknown roles rank 0, below viewer.
func (r WorkspaceRole) Rank() int {
	switch r {
	case WorkspaceRoleOwner:
		return 4
	case WorkspaceRoleAdmin:
		return 3
	case WorkspaceRoleAgent:
		return 2
	case WorkspaceRoleViewer:
		return 1
	default:
		return 0
	}
}

// IsValid returns true if the role is a known value
func (r WorkspaceRole) IsValid() bool {
	return r.Rank() > 0
}

// CanActAs reports whether the role satisfies the required role
func (r WorkspaceRole) CanActAs(required WorkspaceRole) bool {
	return r.Rank() >= required.Rank()
}

// ParseWorkspaceRole converts a string into a known WorkspaceRole
func ParseWorkspaceRole(s string) (WorkspaceRole, error) {
	r := WorkspaceRole(s)
	if !r.IsValid() {
		return "", shared.NewDomainError("INVALID_ROLE", "Unknown workspace role")
	}
	return r, nil
}

// WorkspaceMember links a user to a workspace with a role. The
// (workspace, user) pair is unique, and exactly one member per workspace
// holds the owner role, matching workspace.OwnerUserID.
type WorkspaceMember struct {
	shared.BaseEntity
	WorkspaceID uuid.UUID
	UserID      uuid.UUID
	Role        WorkspaceRole
	LegacyID    string
}

// NewWorkspaceMember creates a membership record
func NewWorkspaceMember(workspaceID, userID uuid.UUID, role WorkspaceRole) (*WorkspaceMember, error) {
	if workspaceID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_WORKSPACE", "Workspace ID cannot be empty")
	}
	if userID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "User ID cannot be empty")
	}
	if !role.IsValid() {
		return nil, shared.NewDomainError("INVALID_ROLE", "Unknown workspace role")
	}

	return &WorkspaceMember{
		BaseEntity:  shared.NewBaseEntity(),
		WorkspaceID: workspaceID,
		UserID:      userID,
		Role:        role,
	}, nil
}

// IsOwner returns true for the single owner membership
func (m *WorkspaceMember) IsOwner() bool {
	return m.Role == WorkspaceRoleOwner
}

// ChangeRole updates the membership role. Ownership is never granted or
// revoked through role changes; it requires an explicit transfer path.
func (m *WorkspaceMember) ChangeRole(role WorkspaceRole) error {
	if m.Role == WorkspaceRoleOwner {
		return shared.NewDomainError("OWNER_ROLE_IMMUTABLE", "Cannot change the owner's role; transfer ownership explicitly")
	}
	if role == WorkspaceRoleOwner {
		return shared.NewDomainError("OWNER_ROLE_IMMUTABLE", "Cannot grant the owner role; transfer ownership explicitly")
	}
	if !role.IsValid() {
		return shared.NewDomainError("INVALID_ROLE", "Unknown workspace role")
	}
	m.Role = role
	m.UpdatedAt = time.Now()
	return nil
}

// WorkspaceMemberRepository defines persistence for workspace memberships
type WorkspaceMemberRepository interface {
	// Save inserts a membership. Returns shared.ErrAlreadyExists when the
	// (workspace, user) pair already has a row.
	Save(ctx context.Context, member *WorkspaceMember) error

	// SaveWithinSeatLimit inserts the membership only when the workspace's
	// member count after the insert stays within seatLimit (-1 means
	// unlimited). The count check and the insert run in one transaction.
	// Returns shared.ErrSeatLimitReached when full and
	// shared.ErrAlreadyExists on duplicates.
	SaveWithinSeatLimit(ctx context.Context, member *WorkspaceMember, seatLimit int64) error

	// Update persists a role change
	Update(ctx context.Context, member *WorkspaceMember) error

	// Find returns the membership for the pair, or shared.ErrNotFound
	Find(ctx context.Context, workspaceID, userID uuid.UUID) (*WorkspaceMember, error)

	// FindByWorkspace returns all memberships of a workspace
	FindByWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]*WorkspaceMember, error)

	// FindByUser returns all memberships of a user
	FindByUser(ctx context.Context, userID uuid.UUID) ([]*WorkspaceMember, error)

	// CountByWorkspace returns the number of members in a workspace
	CountByWorkspace(ctx context.Context, workspaceID uuid.UUID) (int64, error)

	// Delete removes the membership for the pair
	Delete(ctx context.Context, workspaceID, userID uuid.UUID) error
}
