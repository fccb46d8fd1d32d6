package identity

import (
	"context"
	"testing"

	"github.com/dmflow/backend/internal/domain/identity"
	"github.com/dmflow/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type workspaceMocks struct {
	workspaceRepo *MockWorkspaceRepository
	memberRepo    *MockWorkspaceMemberRepository
	userRepo      *MockUserRepository
	quota         *MockQuotaGuard
	inheritor     *MockTierInheritor
}

func newWorkspaceService() (*WorkspaceService, *workspaceMocks) {
	m := &workspaceMocks{
		workspaceRepo: new(MockWorkspaceRepository),
		memberRepo:    new(MockWorkspaceMemberRepository),
		userRepo:      new(MockUserRepository),
		quota:         new(MockQuotaGuard),
		inheritor:     new(MockTierInheritor),
	}
	svc := NewWorkspaceService(m.workspaceRepo, m.memberRepo, m.userRepo, m.quota, m.inheritor, zap.NewNop())
	return svc, m
}

func testUser() *identity.User {
	return &identity.User{
		BaseEntity: shared.NewBaseEntity(),
		Email:      "owner@example.com",
		Role:       identity.UserRoleUser,
	}
}

func testWorkspace(t *testing.T, ownerID uuid.UUID) *identity.Workspace {
	t.Helper()
	workspace, err := identity.NewWorkspace(ownerID, "Main Inbox")
	require.NoError(t, err)
	return workspace
}

func testMember(t *testing.T, workspaceID, userID uuid.UUID, role identity.WorkspaceRole) *identity.WorkspaceMember {
	t.Helper()
	member, err := identity.NewWorkspaceMember(workspaceID, userID, role)
	require.NoError(t, err)
	return member
}

func TestWorkspaceCreate(t *testing.T) {
	svc, m := newWorkspaceService()
	ctx := context.Background()

	owner := testUser()
	m.userRepo.On("FindByID", ctx, owner.ID).Return(owner, nil)
	m.quota.On("AssertWorkspaceCreation", ctx, owner.ID).Return(nil)
	m.workspaceRepo.On("Save", ctx, mock.AnythingOfType("*identity.Workspace")).Return(nil)
	m.memberRepo.On("Save", ctx, mock.AnythingOfType("*identity.WorkspaceMember")).Return(nil)
	m.userRepo.On("Update", ctx, owner).Return(nil)

	workspace, err := svc.Create(ctx, owner.ID, "Main Inbox")
	require.NoError(t, err)
	assert.Equal(t, owner.ID, workspace.OwnerUserID)

	// the creator becomes the owner member
	member := m.memberRepo.Calls[0].Arguments.Get(1).(*identity.WorkspaceMember)
	assert.Equal(t, identity.WorkspaceRoleOwner, member.Role)
	assert.Equal(t, owner.ID, member.UserID)

	// first workspace becomes the login default
	require.NotNil(t, owner.DefaultWorkspaceID)
	assert.Equal(t, workspace.ID, *owner.DefaultWorkspaceID)
}

func TestWorkspaceCreate_QuotaDenied(t *testing.T) {
	svc, m := newWorkspaceService()
	ctx := context.Background()

	owner := testUser()
	m.userRepo.On("FindByID", ctx, owner.ID).Return(owner, nil)
	m.quota.On("AssertWorkspaceCreation", ctx, owner.ID).Return(shared.ErrQuotaExceeded)

	_, err := svc.Create(ctx, owner.ID, "Main Inbox")
	assert.ErrorIs(t, err, shared.ErrQuotaExceeded)
	m.workspaceRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestAddMember(t *testing.T) {
	svc, m := newWorkspaceService()
	ctx := context.Background()

	ownerID := uuid.New()
	newUserID := uuid.New()
	workspace := testWorkspace(t, ownerID)
	ownerMember := testMember(t, workspace.ID, ownerID, identity.WorkspaceRoleOwner)
	newUser := testUser()
	newUser.ID = newUserID

	m.workspaceRepo.On("FindByID", ctx, workspace.ID).Return(workspace, nil)
	m.memberRepo.On("Find", ctx, workspace.ID, ownerID).Return(ownerMember, nil)
	m.userRepo.On("FindByID", ctx, newUserID).Return(newUser, nil)
	m.quota.On("SeatLimit", ctx, ownerID).Return(int64(3), nil)
	m.memberRepo.On("SaveWithinSeatLimit", ctx, mock.AnythingOfType("*identity.WorkspaceMember"), int64(3)).Return(nil)
	m.inheritor.On("AssignTierFromOwner", ctx, workspace.ID, newUserID).Return(nil)

	member, err := svc.AddMember(ctx, ownerID, workspace.ID, newUserID, identity.WorkspaceRoleAgent)
	require.NoError(t, err)
	assert.Equal(t, identity.WorkspaceRoleAgent, member.Role)
	m.inheritor.AssertCalled(t, "AssignTierFromOwner", ctx, workspace.ID, newUserID)
}

func TestAddMember_SeatLimitReached(t *testing.T) {
	svc, m := newWorkspaceService()
	ctx := context.Background()

	ownerID := uuid.New()
	newUserID := uuid.New()
	workspace := testWorkspace(t, ownerID)
	ownerMember := testMember(t, workspace.ID, ownerID, identity.WorkspaceRoleOwner)
	newUser := testUser()
	newUser.ID = newUserID

	m.workspaceRepo.On("FindByID", ctx, workspace.ID).Return(workspace, nil)
	m.memberRepo.On("Find", ctx, workspace.ID, ownerID).Return(ownerMember, nil)
	m.userRepo.On("FindByID", ctx, newUserID).Return(newUser, nil)
	m.quota.On("SeatLimit", ctx, ownerID).Return(int64(3), nil)
	m.memberRepo.On("SaveWithinSeatLimit", ctx, mock.Anything, int64(3)).Return(shared.ErrSeatLimitReached)

	_, err := svc.AddMember(ctx, ownerID, workspace.ID, newUserID, identity.WorkspaceRoleAgent)
	assert.ErrorIs(t, err, shared.ErrSeatLimitReached)
	m.inheritor.AssertNotCalled(t, "AssignTierFromOwner", mock.Anything, mock.Anything, mock.Anything)
}

func TestAddMember_OwnerRoleRefused(t *testing.T) {
	svc, m := newWorkspaceService()
	ctx := context.Background()

	_, err := svc.AddMember(ctx, uuid.New(), uuid.New(), uuid.New(), identity.WorkspaceRoleOwner)
	require.Error(t, err)

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "OWNER_ROLE_IMMUTABLE", domainErr.Code)
	m.workspaceRepo.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
}

func TestAddMember_ActorNeedsAdmin(t *testing.T) {
	svc, m := newWorkspaceService()
	ctx := context.Background()

	ownerID := uuid.New()
	actorID := uuid.New()
	workspace := testWorkspace(t, ownerID)
	agent := testMember(t, workspace.ID, actorID, identity.WorkspaceRoleAgent)

	m.workspaceRepo.On("FindByID", ctx, workspace.ID).Return(workspace, nil)
	m.memberRepo.On("Find", ctx, workspace.ID, actorID).Return(agent, nil)

	_, err := svc.AddMember(ctx, actorID, workspace.ID, uuid.New(), identity.WorkspaceRoleViewer)
	assert.ErrorIs(t, err, shared.ErrForbidden)
}

func TestRemoveMember_OwnerRefused(t *testing.T) {
	svc, m := newWorkspaceService()
	ctx := context.Background()

	ownerID := uuid.New()
	workspaceID := uuid.New()
	ownerMember := testMember(t, workspaceID, ownerID, identity.WorkspaceRoleOwner)

	m.memberRepo.On("Find", ctx, workspaceID, ownerID).Return(ownerMember, nil)

	err := svc.RemoveMember(ctx, ownerID, workspaceID, ownerID)
	require.Error(t, err)

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "OWNER_IRREMOVABLE", domainErr.Code)
	m.memberRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything, mock.Anything)
}

func TestRemoveMember_SelfLeave(t *testing.T) {
	svc, m := newWorkspaceService()
	ctx := context.Background()

	userID := uuid.New()
	workspaceID := uuid.New()
	viewer := testMember(t, workspaceID, userID, identity.WorkspaceRoleViewer)

	m.memberRepo.On("Find", ctx, workspaceID, userID).Return(viewer, nil)
	m.memberRepo.On("Delete", ctx, workspaceID, userID).Return(nil)

	// a viewer cannot remove others but can always leave
	require.NoError(t, svc.RemoveMember(ctx, userID, workspaceID, userID))
}

func TestRemoveMember_ByAdmin(t *testing.T) {
	svc, m := newWorkspaceService()
	ctx := context.Background()

	adminID := uuid.New()
	targetID := uuid.New()
	workspaceID := uuid.New()
	admin := testMember(t, workspaceID, adminID, identity.WorkspaceRoleAdmin)
	target := testMember(t, workspaceID, targetID, identity.WorkspaceRoleAgent)

	m.memberRepo.On("Find", ctx, workspaceID, targetID).Return(target, nil)
	m.memberRepo.On("Find", ctx, workspaceID, adminID).Return(admin, nil)
	m.memberRepo.On("Delete", ctx, workspaceID, targetID).Return(nil)

	require.NoError(t, svc.RemoveMember(ctx, adminID, workspaceID, targetID))
}

func TestUpdateMemberRole(t *testing.T) {
	svc, m := newWorkspaceService()
	ctx := context.Background()

	adminID := uuid.New()
	targetID := uuid.New()
	workspaceID := uuid.New()
	admin := testMember(t, workspaceID, adminID, identity.WorkspaceRoleAdmin)
	target := testMember(t, workspaceID, targetID, identity.WorkspaceRoleViewer)

	m.memberRepo.On("Find", ctx, workspaceID, adminID).Return(admin, nil)
	m.memberRepo.On("Find", ctx, workspaceID, targetID).Return(target, nil)
	m.memberRepo.On("Update", ctx, target).Return(nil)

	member, err := svc.UpdateMemberRole(ctx, adminID, workspaceID, targetID, identity.WorkspaceRoleAgent)
	require.NoError(t, err)
	assert.Equal(t, identity.WorkspaceRoleAgent, member.Role)
}

func TestHasPermission_NonMember(t *testing.T) {
	svc, m := newWorkspaceService()
	ctx := context.Background()

	userID := uuid.New()
	workspaceID := uuid.New()
	m.memberRepo.On("Find", ctx, workspaceID, userID).Return(nil, shared.ErrNotFound)

	ok, err := svc.HasPermission(ctx, userID, workspaceID, identity.WorkspaceRoleViewer)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestGetUserWorkspaces(t *testing.T) {
	svc, m := newWorkspaceService()
	ctx := context.Background()

	userID := uuid.New()
	ws1 := testWorkspace(t, userID)
	member := testMember(t, ws1.ID, userID, identity.WorkspaceRoleOwner)

	m.memberRepo.On("FindByUser", ctx, userID).Return([]*identity.WorkspaceMember{member}, nil)
	m.workspaceRepo.On("FindByIDs", ctx, []uuid.UUID{ws1.ID}).Return([]*identity.Workspace{ws1}, nil)

	workspaces, err := svc.GetUserWorkspaces(ctx, userID)
	require.NoError(t, err)
	require.Len(t, workspaces, 1)
	assert.Equal(t, ws1.ID, workspaces[0].ID)
}

func TestGetUserWorkspaces_None(t *testing.T) {
	svc, m := newWorkspaceService()
	ctx := context.Background()

	userID := uuid.New()
	m.memberRepo.On("FindByUser", ctx, userID).Return([]*identity.WorkspaceMember{}, nil)

	workspaces, err := svc.GetUserWorkspaces(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, workspaces)
	m.workspaceRepo.AssertNotCalled(t, "FindByIDs", mock.Anything, mock.Anything)
}
