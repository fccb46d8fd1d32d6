package billing

import (
	"context"
	"time"

	"github.com/dmflow/backend/internal/domain/billing"
	"github.com/dmflow/backend/internal/domain/identity"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

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

type MockSubscriptionRepository struct {
	mock.Mock
}

func (m *MockSubscriptionRepository) Save(ctx context.Context, sub *billing.Subscription) error {
	return m.Called(ctx, sub).Error(0)
}

func (m *MockSubscriptionRepository) Update(ctx context.Context, sub *billing.Subscription) error {
	return m.Called(ctx, sub).Error(0)
}

func (m *MockSubscriptionRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Subscription, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Subscription), args.Error(1)
}

func (m *MockSubscriptionRepository) FindActiveByBillingAccount(ctx context.Context, billingAccountID uuid.UUID) (*billing.Subscription, error) {
	args := m.Called(ctx, billingAccountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Subscription), args.Error(1)
}

func (m *MockSubscriptionRepository) FindByBillingAccount(ctx context.Context, billingAccountID uuid.UUID) ([]*billing.Subscription, error) {
	args := m.Called(ctx, billingAccountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*billing.Subscription), args.Error(1)
}

func (m *MockSubscriptionRepository) CancelActiveForAccount(ctx context.Context, billingAccountID uuid.UUID, excludeID *uuid.UUID) (int64, error) {
	args := m.Called(ctx, billingAccountID, excludeID)
	return args.Get(0).(int64), args.Error(1)
}

type MockBillingAccountRepository struct {
	mock.Mock
}

func (m *MockBillingAccountRepository) Save(ctx context.Context, account *billing.BillingAccount) error {
	return m.Called(ctx, account).Error(0)
}

func (m *MockBillingAccountRepository) Update(ctx context.Context, account *billing.BillingAccount) error {
	return m.Called(ctx, account).Error(0)
}

func (m *MockBillingAccountRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.BillingAccount, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.BillingAccount), args.Error(1)
}

func (m *MockBillingAccountRepository) FindByOwner(ctx context.Context, ownerUserID uuid.UUID) ([]*billing.BillingAccount, error) {
	args := m.Called(ctx, ownerUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*billing.BillingAccount), args.Error(1)
}

type MockUsageCounterRepository struct {
	mock.Mock
}

func (m *MockUsageCounterRepository) Get(ctx context.Context, userID uuid.UUID, resource billing.Resource, periodStart time.Time) (*billing.UsageCounter, error) {
	args := m.Called(ctx, userID, resource, periodStart)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.UsageCounter), args.Error(1)
}

func (m *MockUsageCounterRepository) Increment(ctx context.Context, counter *billing.UsageCounter) (int64, error) {
	args := m.Called(ctx, counter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockUsageCounterRepository) IncrementWithinLimit(ctx context.Context, counter *billing.UsageCounter, limit int64) (int64, bool, error) {
	args := m.Called(ctx, counter, limit)
	return args.Get(0).(int64), args.Bool(1), args.Error(2)
}

func (m *MockUsageCounterRepository) ListForUser(ctx context.Context, userID uuid.UUID, periodStart time.Time) ([]*billing.UsageCounter, error) {
	args := m.Called(ctx, userID, periodStart)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*billing.UsageCounter), args.Error(1)
}

type MockTierCache struct {
	mock.Mock
}

func (m *MockTierCache) GetUserTier(ctx context.Context, userID uuid.UUID) (*ResolvedTier, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ResolvedTier), args.Error(1)
}

func (m *MockTierCache) SetUserTier(ctx context.Context, userID uuid.UUID, resolved *ResolvedTier) error {
	return m.Called(ctx, userID, resolved).Error(0)
}

func (m *MockTierCache) InvalidateUser(ctx context.Context, userID uuid.UUID) error {
	return m.Called(ctx, userID).Error(0)
}

func (m *MockTierCache) Flush(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}
