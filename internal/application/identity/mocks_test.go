package identity

import (
	"context"

	"github.com/dmflow/backend/internal/domain/billing"
	"github.com/dmflow/backend/internal/domain/identity"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Save(ctx context.Context, user *identity.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserRepository) Update(ctx context.Context, user *identity.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*identity.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*identity.User, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*identity.User), args.Error(1)
}

func (m *MockUserRepository) AssignTier(ctx context.Context, userID, tierID uuid.UUID) error {
	return m.Called(ctx, userID, tierID).Error(0)
}

func (m *MockUserRepository) CountByTier(ctx context.Context, tierID uuid.UUID) (int64, error) {
	args := m.Called(ctx, tierID)
	return args.Get(0).(int64), args.Error(1)
}

type MockWorkspaceRepository struct {
	mock.Mock
}

func (m *MockWorkspaceRepository) Save(ctx context.Context, workspace *identity.Workspace) error {
	return m.Called(ctx, workspace).Error(0)
}

func (m *MockWorkspaceRepository) Update(ctx context.Context, workspace *identity.Workspace) error {
	return m.Called(ctx, workspace).Error(0)
}

func (m *MockWorkspaceRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.Workspace, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Workspace), args.Error(1)
}

func (m *MockWorkspaceRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*identity.Workspace, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*identity.Workspace), args.Error(1)
}

func (m *MockWorkspaceRepository) CountByOwner(ctx context.Context, ownerUserID uuid.UUID) (int64, error) {
	args := m.Called(ctx, ownerUserID)
	return args.Get(0).(int64), args.Error(1)
}

type MockWorkspaceMemberRepository struct {
	mock.Mock
}

func (m *MockWorkspaceMemberRepository) Save(ctx context.Context, member *identity.WorkspaceMember) error {
	return m.Called(ctx, member).Error(0)
}

func (m *MockWorkspaceMemberRepository) SaveWithinSeatLimit(ctx context.Context, member *identity.WorkspaceMember, seatLimit int64) error {
	return m.Called(ctx, member, seatLimit).Error(0)
}

func (m *MockWorkspaceMemberRepository) Update(ctx context.Context, member *identity.WorkspaceMember) error {
	return m.Called(ctx, member).Error(0)
}

func (m *MockWorkspaceMemberRepository) Find(ctx context.Context, workspaceID, userID uuid.UUID) (*identity.WorkspaceMember, error) {
	args := m.Called(ctx, workspaceID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.WorkspaceMember), args.Error(1)
}

func (m *MockWorkspaceMemberRepository) FindByWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]*identity.WorkspaceMember, error) {
	args := m.Called(ctx, workspaceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*identity.WorkspaceMember), args.Error(1)
}

func (m *MockWorkspaceMemberRepository) FindByUser(ctx context.Context, userID uuid.UUID) ([]*identity.WorkspaceMember, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*identity.WorkspaceMember), args.Error(1)
}

func (m *MockWorkspaceMemberRepository) CountByWorkspace(ctx context.Context, workspaceID uuid.UUID) (int64, error) {
	args := m.Called(ctx, workspaceID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockWorkspaceMemberRepository) Delete(ctx context.Context, workspaceID, userID uuid.UUID) error {
	return m.Called(ctx, workspaceID, userID).Error(0)
}

type MockTierRepository struct {
	mock.Mock
}

func (m *MockTierRepository) Save(ctx context.Context, tier *billing.Tier) error {
	return m.Called(ctx, tier).Error(0)
}

func (m *MockTierRepository) Update(ctx context.Context, tier *billing.Tier) error {
	return m.Called(ctx, tier).Error(0)
}

func (m *MockTierRepository) SaveAsDefault(ctx context.Context, tier *billing.Tier) error {
	return m.Called(ctx, tier).Error(0)
}

func (m *MockTierRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Tier, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Tier), args.Error(1)
}

func (m *MockTierRepository) FindByName(ctx context.Context, name string) (*billing.Tier, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Tier), args.Error(1)
}

func (m *MockTierRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*billing.Tier, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*billing.Tier), args.Error(1)
}

func (m *MockTierRepository) FindAll(ctx context.Context, filter billing.TierFilter) ([]*billing.Tier, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*billing.Tier), args.Get(1).(int64), args.Error(2)
}

func (m *MockTierRepository) FindDefaultActive(ctx context.Context) (*billing.Tier, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Tier), args.Error(1)
}

func (m *MockTierRepository) FindFirstActive(ctx context.Context) (*billing.Tier, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Tier), args.Error(1)
}

func (m *MockTierRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

type MockQuotaGuard struct {
	mock.Mock
}

func (m *MockQuotaGuard) AssertWorkspaceCreation(ctx context.Context, ownerUserID uuid.UUID) error {
	return m.Called(ctx, ownerUserID).Error(0)
}

func (m *MockQuotaGuard) SeatLimit(ctx context.Context, ownerUserID uuid.UUID) (int64, error) {
	args := m.Called(ctx, ownerUserID)
	return args.Get(0).(int64), args.Error(1)
}

type MockTierInheritor struct {
	mock.Mock
}

func (m *MockTierInheritor) AssignTierFromOwner(ctx context.Context, workspaceID, memberUserID uuid.UUID) error {
	return m.Called(ctx, workspaceID, memberUserID).Error(0)
}

type MockTierInvalidator struct {
	mock.Mock
}

func (m *MockTierInvalidator) InvalidateUser(ctx context.Context, userID uuid.UUID) {
	m.Called(ctx, userID)
}
