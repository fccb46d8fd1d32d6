package identity

import (
	"context"
	"errors"

	"github.com/dmflow/backend/internal/domain/identity"
	"github.com/dmflow/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// QuotaGuard is the slice of quota enforcement workspace management
// needs: the owner's workspace-count gate and the seat ceiling for
// membership inserts.
type QuotaGuard interface {
	AssertWorkspaceCreation(ctx context.Context, ownerUserID uuid.UUID) error
	SeatLimit(ctx context.Context, ownerUserID uuid.UUID) (int64, error)
}

// TierInheritor propagates a workspace's effective tier onto users who
// have no tier of their own yet
type TierInheritor interface {
	AssignTierFromOwner(ctx context.Context, workspaceID, memberUserID uuid.UUID) error
}

// WorkspaceService manages workspaces and their memberships, enforcing
// the role hierarchy and the owner's tier limits.
type WorkspaceService struct {
	workspaceRepo identity.WorkspaceRepository
	memberRepo    identity.WorkspaceMemberRepository
	userRepo      identity.UserRepository
	quota         QuotaGuard
	inheritor     TierInheritor
	logger        *zap.Logger
}

// NewWorkspaceService creates a new WorkspaceService
func NewWorkspaceService(
	workspaceRepo identity.WorkspaceRepository,
	memberRepo identity.WorkspaceMemberRepository,
	userRepo identity.UserRepository,
	quota QuotaGuard,
	inheritor TierInheritor,
	logger *zap.Logger,
) *WorkspaceService {
	return &WorkspaceService{
		workspaceRepo: workspaceRepo,
		memberRepo:    memberRepo,
		userRepo:      userRepo,
		quota:         quota,
		inheritor:     inheritor,
		logger:        logger,
	}
}

// Create makes a new workspace owned by the user, within the owner's
// workspace ceiling, and records the owner membership
func (s *WorkspaceService) Create(ctx context.Context, ownerUserID uuid.UUID, name string) (*identity.Workspace, error) {
	owner, err := s.userRepo.FindByID(ctx, ownerUserID)
	if err != nil {
		return nil, err
	}

	if err := s.quota.AssertWorkspaceCreation(ctx, ownerUserID); err != nil {
		return nil, err
	}

	workspace, err := identity.NewWorkspace(ownerUserID, name)
	if err != nil {
		return nil, err
	}
	if err := s.workspaceRepo.Save(ctx, workspace); err != nil {
		return nil, err
	}

	member, err := identity.NewWorkspaceMember(workspace.ID, ownerUserID, identity.WorkspaceRoleOwner)
	if err != nil {
		return nil, err
	}
	if err := s.memberRepo.Save(ctx, member); err != nil {
		return nil, err
	}

	// First workspace becomes the login default. Best effort.
	if owner.DefaultWorkspaceID == nil {
		owner.SetDefaultWorkspace(workspace.ID)
		if err := s.userRepo.Update(ctx, owner); err != nil {
			s.logger.Warn("Failed to set default workspace",
				zap.String("user_id", ownerUserID.String()), zap.Error(err))
		}
	}

	s.logger.Info("Workspace created",
		zap.String("workspace_id", workspace.ID.String()),
		zap.String("owner_user_id", ownerUserID.String()))
	return workspace, nil
}

// AddMember adds a user to the workspace. The actor needs admin rights,
// the owner role is never granted here, the insert respects the owner's
// seat ceiling, and a member without a tier inherits the workspace's.
func (s *WorkspaceService) AddMember(ctx context.Context, actorUserID, workspaceID, memberUserID uuid.UUID, role identity.WorkspaceRole) (*identity.WorkspaceMember, error) {
	if role == identity.WorkspaceRoleOwner {
		return nil, shared.NewDomainError("OWNER_ROLE_IMMUTABLE", "The owner role is granted only on workspace creation")
	}

	workspace, err := s.workspaceRepo.FindByID(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	if err := s.AssertPermission(ctx, actorUserID, workspaceID, identity.WorkspaceRoleAdmin); err != nil {
		return nil, err
	}
	if _, err := s.userRepo.FindByID(ctx, memberUserID); err != nil {
		return nil, err
	}

	member, err := identity.NewWorkspaceMember(workspaceID, memberUserID, role)
	if err != nil {
		return nil, err
	}

	seatLimit, err := s.quota.SeatLimit(ctx, workspace.OwnerUserID)
	if err != nil {
		return nil, err
	}
	if err := s.memberRepo.SaveWithinSeatLimit(ctx, member, seatLimit); err != nil {
		return nil, err
	}

	// Inheritance failure leaves the membership in place; the member
	// resolves to the default tier until the next assignment.
	if err := s.inheritor.AssignTierFromOwner(ctx, workspaceID, memberUserID); err != nil {
		s.logger.Warn("Failed to inherit owner tier",
			zap.String("workspace_id", workspaceID.String()),
			zap.String("member_user_id", memberUserID.String()),
			zap.Error(err))
	}

	s.logger.Info("Workspace member added",
		zap.String("workspace_id", workspaceID.String()),
		zap.String("member_user_id", memberUserID.String()),
		zap.String("role", string(role)))
	return member, nil
}

// RemoveMember removes a member. Admins can remove anyone but the
// owner; any member can remove themselves.
func (s *WorkspaceService) RemoveMember(ctx context.Context, actorUserID, workspaceID, memberUserID uuid.UUID) error {
	member, err := s.memberRepo.Find(ctx, workspaceID, memberUserID)
	if err != nil {
		return err
	}
	if member.IsOwner() {
		return shared.NewDomainError("OWNER_IRREMOVABLE", "The workspace owner cannot be removed")
	}

	if actorUserID != memberUserID {
		if err := s.AssertPermission(ctx, actorUserID, workspaceID, identity.WorkspaceRoleAdmin); err != nil {
			return err
		}
	}

	if err := s.memberRepo.Delete(ctx, workspaceID, memberUserID); err != nil {
		return err
	}

	s.logger.Info("Workspace member removed",
		zap.String("workspace_id", workspaceID.String()),
		zap.String("member_user_id", memberUserID.String()))
	return nil
}

// UpdateMemberRole changes a member's role. The actor needs admin
// rights; the owner role can be neither granted nor revoked.
func (s *WorkspaceService) UpdateMemberRole(ctx context.Context, actorUserID, workspaceID, memberUserID uuid.UUID, role identity.WorkspaceRole) (*identity.WorkspaceMember, error) {
	if err := s.AssertPermission(ctx, actorUserID, workspaceID, identity.WorkspaceRoleAdmin); err != nil {
		return nil, err
	}

	member, err := s.memberRepo.Find(ctx, workspaceID, memberUserID)
	if err != nil {
		return nil, err
	}
	if err := member.ChangeRole(role); err != nil {
		return nil, err
	}
	if err := s.memberRepo.Update(ctx, member); err != nil {
		return nil, err
	}
	return member, nil
}

// HasPermission reports whether the user holds at least the required
// role in the workspace. Non-members simply lack permission.
func (s *WorkspaceService) HasPermission(ctx context.Context, userID, workspaceID uuid.UUID, required identity.WorkspaceRole) (bool, error) {
	member, err := s.memberRepo.Find(ctx, workspaceID, userID)
	if errors.Is(err, shared.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return member.Role.CanActAs(required), nil
}

// AssertPermission is HasPermission with an error outcome
func (s *WorkspaceService) AssertPermission(ctx context.Context, userID, workspaceID uuid.UUID, required identity.WorkspaceRole) error {
	ok, err := s.HasPermission(ctx, userID, workspaceID, required)
	if err != nil {
		return err
	}
	if !ok {
		return shared.ErrForbidden
	}
	return nil
}

// GetMembers lists the workspace's memberships; the actor must at least
// be a viewer
func (s *WorkspaceService) GetMembers(ctx context.Context, actorUserID, workspaceID uuid.UUID) ([]*identity.WorkspaceMember, error) {
	if err := s.AssertPermission(ctx, actorUserID, workspaceID, identity.WorkspaceRoleViewer); err != nil {
		return nil, err
	}
	return s.memberRepo.FindByWorkspace(ctx, workspaceID)
}

// GetUserWorkspaces returns every workspace the user is a member of
func (s *WorkspaceService) GetUserWorkspaces(ctx context.Context, userID uuid.UUID) ([]*identity.Workspace, error) {
	memberships, err := s.memberRepo.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(memberships) == 0 {
		return []*identity.Workspace{}, nil
	}

	ids := make([]uuid.UUID, 0, len(memberships))
	for _, m := range memberships {
		ids = append(ids, m.WorkspaceID)
	}
	return s.workspaceRepo.FindByIDs(ctx, ids)
}

// GetWorkspace returns a workspace the actor is a member of
func (s *WorkspaceService) GetWorkspace(ctx context.Context, actorUserID, workspaceID uuid.UUID) (*identity.Workspace, error) {
	if err := s.AssertPermission(ctx, actorUserID, workspaceID, identity.WorkspaceRoleViewer); err != nil {
		return nil, err
	}
	return s.workspaceRepo.FindByID(ctx, workspaceID)
}
