package identity

import (
	"context"
	"strings"
	"time"

	"github.com/dmflow/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Workspace is the unit of collaboration: an Instagram inbox shared by a
// team. When BillingAccountID is set the workspace's effective tier is
// billing-derived; otherwise it follows the owning user's tier.
type Workspace struct {
	shared.BaseEntity
	Name             string
	OwnerUserID      uuid.UUID
	BillingAccountID *uuid.UUID
	LegacyID         string
}

// NewWorkspace creates a workspace owned by a user
func NewWorkspace(ownerUserID uuid.UUID, name string) (*Workspace, error) {
	if ownerUserID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_OWNER", "Workspace owner cannot be empty")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_WORKSPACE_NAME", "Workspace name cannot be empty")
	}
	if len(name) > 120 {
		return nil, shared.NewDomainError("INVALID_WORKSPACE_NAME", "Workspace name cannot exceed 120 characters")
	}

	return &Workspace{
		BaseEntity:  shared.NewBaseEntity(),
		Name:        name,
		OwnerUserID: ownerUserID,
	}, nil
}

// Rename changes the workspace name
func (w *Workspace) Rename(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_WORKSPACE_NAME", "Workspace name cannot be empty")
	}
	w.Name = name
	w.UpdatedAt = time.Now()
	return nil
}

// AttachBillingAccount makes the workspace's tier billing-derived
func (w *Workspace) AttachBillingAccount(accountID uuid.UUID) {
	w.BillingAccountID = &accountID
	w.UpdatedAt = time.Now()
}

// WorkspaceRepository defines persistence for workspaces
type WorkspaceRepository interface {
	// Save inserts a new workspace
	Save(ctx context.Context, workspace *Workspace) error

	// Update persists changes to an existing workspace
	Update(ctx context.Context, workspace *Workspace) error

	// FindByID returns the workspace or shared.ErrNotFound
	FindByID(ctx context.Context, id uuid.UUID) (*Workspace, error)

	// FindByIDs returns the workspaces matching the given ids
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*Workspace, error)

	// CountByOwner returns how many workspaces the user owns
	CountByOwner(ctx context.Context, ownerUserID uuid.UUID) (int64, error)
}
