package reconcile

import (
	"context"
	"testing"
	"time"

	"github.com/dmflow/backend/internal/domain/billing"
	"github.com/dmflow/backend/internal/domain/identity"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeSource serves fixed legacy records
type fakeSource struct {
	tiers    []LegacyTier
	accounts []LegacyBillingAccount
	users    []LegacyUser
	subs     []LegacySubscription
	spaces   []LegacyWorkspace
	members  []LegacyWorkspaceMember
	counters []LegacyUsageCounter

	resets int
}

func (f *fakeSource) Tiers(context.Context) ([]LegacyTier, error)              { return f.tiers, nil }
func (f *fakeSource) BillingAccounts(context.Context) ([]LegacyBillingAccount, error) {
	return f.accounts, nil
}
func (f *fakeSource) Users(context.Context) ([]LegacyUser, error)             { return f.users, nil }
func (f *fakeSource) Subscriptions(context.Context) ([]LegacySubscription, error) { return f.subs, nil }
func (f *fakeSource) Workspaces(context.Context) ([]LegacyWorkspace, error)   { return f.spaces, nil }
func (f *fakeSource) WorkspaceMembers(context.Context) ([]LegacyWorkspaceMember, error) {
	return f.members, nil
}
func (f *fakeSource) UsageCounters(context.Context) ([]LegacyUsageCounter, error) {
	return f.counters, nil
}
func (f *fakeSource) Reset(context.Context) error {
	f.resets++
	return nil
}

// fakeStore records upserts keyed by id, mimicking last-writer-wins rows
type fakeStore struct {
	tiers    map[uuid.UUID]billing.Tier
	accounts map[uuid.UUID]billing.BillingAccount
	users    map[uuid.UUID]identity.User
	subs     map[uuid.UUID]billing.Subscription
	spaces   map[uuid.UUID]identity.Workspace
	members  map[uuid.UUID]identity.WorkspaceMember
	counters map[uuid.UUID]billing.UsageCounter

	resetKeep string
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		tiers:    map[uuid.UUID]billing.Tier{},
		accounts: map[uuid.UUID]billing.BillingAccount{},
		users:    map[uuid.UUID]identity.User{},
		subs:     map[uuid.UUID]billing.Subscription{},
		spaces:   map[uuid.UUID]identity.Workspace{},
		members:  map[uuid.UUID]identity.WorkspaceMember{},
		counters: map[uuid.UUID]billing.UsageCounter{},
	}
}

func (s *fakeStore) UpsertTier(_ context.Context, t *billing.Tier) error {
	s.tiers[t.ID] = *t
	return nil
}
func (s *fakeStore) UpsertBillingAccount(_ context.Context, a *billing.BillingAccount) error {
	s.accounts[a.ID] = *a
	return nil
}
func (s *fakeStore) UpsertUser(_ context.Context, u *identity.User) error {
	s.users[u.ID] = *u
	return nil
}
func (s *fakeStore) UpsertSubscription(_ context.Context, sub *billing.Subscription) error {
	s.subs[sub.ID] = *sub
	return nil
}
func (s *fakeStore) UpsertWorkspace(_ context.Context, w *identity.Workspace) error {
	s.spaces[w.ID] = *w
	return nil
}
func (s *fakeStore) UpsertWorkspaceMember(_ context.Context, m *identity.WorkspaceMember) error {
	s.members[m.ID] = *m
	return nil
}
func (s *fakeStore) UpsertUsageCounter(_ context.Context, c *billing.UsageCounter) error {
	s.counters[c.ID] = *c
	return nil
}
func (s *fakeStore) Reset(_ context.Context, keepUserEmail string) error {
	s.resetKeep = keepUserEmail
	return nil
}

func legacyFixture() *fakeSource {
	stamp := time.Date(2025, time.June, 1, 12, 0, 0, 0, time.UTC)
	return &fakeSource{
		tiers: []LegacyTier{
			{ID: "tier-starter", Name: "Starter", Status: "active", IsDefault: true,
				Limits: billing.Limits{AIMessages: billing.Int64(300)}, CreatedAt: stamp, UpdatedAt: stamp},
			{ID: "tier-pro", Name: "Pro", Status: "active",
				Limits: billing.Limits{AIMessages: billing.Int64(2000)}, CreatedAt: stamp, UpdatedAt: stamp},
		},
		accounts: []LegacyBillingAccount{
			{ID: "acc-1", OwnerUserID: "user-1", Name: "Acme", Status: "active", CreatedAt: stamp, UpdatedAt: stamp},
		},
		users: []LegacyUser{
			{ID: "user-1", Email: "owner@acme.test", Role: "admin", TierID: "tier-pro",
				BillingAccountID: "acc-1", CreatedAt: stamp, UpdatedAt: stamp},
			{ID: "user-2", Email: "agent@acme.test", Role: "user", TierID: "tier-gone",
				CreatedAt: stamp, UpdatedAt: stamp},
		},
		subs: []LegacySubscription{
			{ID: "sub-1", BillingAccountID: "acc-1", TierID: "tier-pro", Status: "active",
				StartedAt: stamp, CreatedAt: stamp, UpdatedAt: stamp},
		},
		spaces: []LegacyWorkspace{
			{ID: "ws-1", Name: "Inbox", OwnerUserID: "user-1", BillingAccountID: "acc-1",
				CreatedAt: stamp, UpdatedAt: stamp},
		},
		members: []LegacyWorkspaceMember{
			{ID: "mem-1", WorkspaceID: "ws-1", UserID: "user-1", Role: "owner", CreatedAt: stamp, UpdatedAt: stamp},
			{ID: "mem-2", WorkspaceID: "ws-1", UserID: "user-2", Role: "agent", CreatedAt: stamp, UpdatedAt: stamp},
		},
		counters: []LegacyUsageCounter{
			{ID: "uc-1", UserID: "user-1", Resource: "ai_messages",
				PeriodStart: stamp, PeriodEnd: stamp.AddDate(0, 0, 30), Count: 42,
				TierID: "tier-pro", WorkspaceID: "ws-1", CreatedAt: stamp, UpdatedAt: stamp},
		},
	}
}

func TestReconcilerRun(t *testing.T) {
	source := legacyFixture()
	store := newFakeStore()
	rec := NewReconciler(source, store, zap.NewNop())

	report, err := rec.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, report.Tiers)
	assert.Equal(t, 1, report.BillingAccounts)
	assert.Equal(t, 2, report.Users)
	assert.Equal(t, 1, report.Subscriptions)
	assert.Equal(t, 1, report.Workspaces)
	assert.Equal(t, 2, report.Members)
	assert.Equal(t, 1, report.UsageCounters)
	assert.Equal(t, 0, report.Skipped)

	// references are rewired to the mapped relational ids
	sub := store.subs[mappedID("subscription", "sub-1")]
	assert.Equal(t, mappedID("billing_account", "acc-1"), sub.BillingAccountID)
	assert.Equal(t, mappedID("tier", "tier-pro"), sub.TierID)

	owner := store.users[mappedID("user", "user-1")]
	require.NotNil(t, owner.TierID)
	assert.Equal(t, mappedID("tier", "tier-pro"), *owner.TierID)
	assert.Equal(t, identity.UserRoleAdmin, owner.Role)

	// a dangling optional tier reference is dropped, the user still lands
	agent := store.users[mappedID("user", "user-2")]
	assert.Equal(t, "agent@acme.test", agent.Email)
	assert.Nil(t, agent.TierID)

	counter := store.counters[mappedID("usage_counter", "uc-1")]
	assert.Equal(t, billing.ResourceAIMessages, counter.Resource)
	assert.Equal(t, int64(42), counter.Count)
	require.NotNil(t, counter.WorkspaceID)
	assert.Equal(t, mappedID("workspace", "ws-1"), *counter.WorkspaceID)
}

func TestReconcilerRun_Idempotent(t *testing.T) {
	source := legacyFixture()
	store := newFakeStore()
	rec := NewReconciler(source, store, zap.NewNop())
	ctx := context.Background()

	first, err := rec.Run(ctx)
	require.NoError(t, err)

	snapshot := map[uuid.UUID]identity.User{}
	for id, u := range store.users {
		snapshot[id] = u
	}

	second, err := rec.Run(ctx)
	require.NoError(t, err)

	assert.Equal(t, first, second, "reports match across runs")
	assert.Equal(t, snapshot, store.users, "rows are rewritten identically")
	assert.Len(t, store.tiers, 2, "no duplicate rows appear")
}

func TestReconcilerRun_SkipsDanglingAndInvalid(t *testing.T) {
	source := legacyFixture()
	source.subs = append(source.subs, LegacySubscription{
		ID: "sub-bad", BillingAccountID: "acc-gone", TierID: "tier-pro", Status: "active",
	})
	source.members = append(source.members, LegacyWorkspaceMember{
		ID: "mem-bad", WorkspaceID: "ws-1", UserID: "user-1", Role: "superuser",
	})
	source.counters = append(source.counters, LegacyUsageCounter{
		ID: "uc-bad", UserID: "user-1", Resource: "carrier_pigeons",
	})

	store := newFakeStore()
	rec := NewReconciler(source, store, zap.NewNop())

	report, err := rec.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, report.Skipped)
	assert.Equal(t, 1, report.Subscriptions)
	assert.Equal(t, 2, report.Members)
	assert.Equal(t, 1, report.UsageCounters)
}

func TestFactoryReset(t *testing.T) {
	source := legacyFixture()
	store := newFakeStore()
	rec := NewReconciler(source, store, zap.NewNop())

	require.NoError(t, rec.FactoryReset(context.Background(), "root@dmflow.test"))
	assert.Equal(t, "root@dmflow.test", store.resetKeep)
	assert.Equal(t, 1, source.resets, "legacy store is wiped when the source supports it")
}

func TestMappedID_Deterministic(t *testing.T) {
	a := mappedID("user", "abc")
	b := mappedID("user", "abc")
	c := mappedID("tier", "abc")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c, "kind prefix separates id spaces")
}
