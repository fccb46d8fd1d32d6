package persistence

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmflow/backend/internal/domain/identity"
	"github.com/dmflow/backend/internal/domain/shared"
)

func newMember(t *testing.T, workspaceID, userID uuid.UUID, role identity.WorkspaceRole) *identity.WorkspaceMember {
	t.Helper()
	member, err := identity.NewWorkspaceMember(workspaceID, userID, role)
	require.NoError(t, err)
	return member
}

func TestWorkspaceMemberRepository_SaveAndFind(t *testing.T) {
	db := setupTestDB(t)
	repo := NewWorkspaceMemberRepository(db)
	ctx := context.Background()
	workspaceID := uuid.New()
	userID := uuid.New()

	member := newMember(t, workspaceID, userID, identity.WorkspaceRoleAgent)
	require.NoError(t, repo.Save(ctx, member))

	found, err := repo.Find(ctx, workspaceID, userID)
	require.NoError(t, err)
	assert.Equal(t, identity.WorkspaceRoleAgent, found.Role)

	_, err = repo.Find(ctx, workspaceID, uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestWorkspaceMemberRepository_Save_DuplicatePair(t *testing.T) {
	db := setupTestDB(t)
	repo := NewWorkspaceMemberRepository(db)
	ctx := context.Background()
	workspaceID := uuid.New()
	userID := uuid.New()

	require.NoError(t, repo.Save(ctx, newMember(t, workspaceID, userID, identity.WorkspaceRoleAgent)))

	err := repo.Save(ctx, newMember(t, workspaceID, userID, identity.WorkspaceRoleViewer))
	assert.ErrorIs(t, err, shared.ErrAlreadyExists)
}

func TestWorkspaceMemberRepository_SaveWithinSeatLimit(t *testing.T) {
	db := setupTestDB(t)
	repo := NewWorkspaceMemberRepository(db)
	ctx := context.Background()
	workspaceID := uuid.New()

	require.NoError(t, repo.SaveWithinSeatLimit(ctx, newMember(t, workspaceID, uuid.New(), identity.WorkspaceRoleOwner), 2))
	require.NoError(t, repo.SaveWithinSeatLimit(ctx, newMember(t, workspaceID, uuid.New(), identity.WorkspaceRoleAgent), 2))

	// Third seat exceeds the limit of 2.
	err := repo.SaveWithinSeatLimit(ctx, newMember(t, workspaceID, uuid.New(), identity.WorkspaceRoleAgent), 2)
	assert.ErrorIs(t, err, shared.ErrSeatLimitReached)

	count, err := repo.CountByWorkspace(ctx, workspaceID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestWorkspaceMemberRepository_SaveWithinSeatLimit_Unlimited(t *testing.T) {
	db := setupTestDB(t)
	repo := NewWorkspaceMemberRepository(db)
	ctx := context.Background()
	workspaceID := uuid.New()

	for i := 0; i < 5; i++ {
		require.NoError(t, repo.SaveWithinSeatLimit(ctx, newMember(t, workspaceID, uuid.New(), identity.WorkspaceRoleViewer), -1))
	}

	count, err := repo.CountByWorkspace(ctx, workspaceID)
	require.NoError(t, err)
	assert.Equal(t, int64(5), count)
}

func TestWorkspaceMemberRepository_SaveWithinSeatLimit_Duplicate(t *testing.T) {
	db := setupTestDB(t)
	repo := NewWorkspaceMemberRepository(db)
	ctx := context.Background()
	workspaceID := uuid.New()
	userID := uuid.New()

	require.NoError(t, repo.SaveWithinSeatLimit(ctx, newMember(t, workspaceID, userID, identity.WorkspaceRoleAgent), 10))

	err := repo.SaveWithinSeatLimit(ctx, newMember(t, workspaceID, userID, identity.WorkspaceRoleAgent), 10)
	assert.ErrorIs(t, err, shared.ErrAlreadyExists)
}

func TestWorkspaceMemberRepository_UpdateRole(t *testing.T) {
	db := setupTestDB(t)
	repo := NewWorkspaceMemberRepository(db)
	ctx := context.Background()
	workspaceID := uuid.New()
	userID := uuid.New()

	member := newMember(t, workspaceID, userID, identity.WorkspaceRoleAgent)
	require.NoError(t, repo.Save(ctx, member))

	require.NoError(t, member.ChangeRole(identity.WorkspaceRoleAdmin))
	require.NoError(t, repo.Update(ctx, member))

	found, err := repo.Find(ctx, workspaceID, userID)
	require.NoError(t, err)
	assert.Equal(t, identity.WorkspaceRoleAdmin, found.Role)
}

func TestWorkspaceMemberRepository_Delete(t *testing.T) {
	db := setupTestDB(t)
	repo := NewWorkspaceMemberRepository(db)
	ctx := context.Background()
	workspaceID := uuid.New()
	userID := uuid.New()

	require.NoError(t, repo.Save(ctx, newMember(t, workspaceID, userID, identity.WorkspaceRoleAgent)))
	require.NoError(t, repo.Delete(ctx, workspaceID, userID))

	_, err := repo.Find(ctx, workspaceID, userID)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	assert.ErrorIs(t, repo.Delete(ctx, workspaceID, userID), shared.ErrNotFound)
}

func TestWorkspaceMemberRepository_FindByUserAndWorkspace(t *testing.T) {
	db := setupTestDB(t)
	repo := NewWorkspaceMemberRepository(db)
	ctx := context.Background()
	workspaceID := uuid.New()
	userID := uuid.New()

	require.NoError(t, repo.Save(ctx, newMember(t, workspaceID, userID, identity.WorkspaceRoleOwner)))
	require.NoError(t, repo.Save(ctx, newMember(t, workspaceID, uuid.New(), identity.WorkspaceRoleViewer)))
	require.NoError(t, repo.Save(ctx, newMember(t, uuid.New(), userID, identity.WorkspaceRoleAgent)))

	byWorkspace, err := repo.FindByWorkspace(ctx, workspaceID)
	require.NoError(t, err)
	assert.Len(t, byWorkspace, 2)

	byUser, err := repo.FindByUser(ctx, userID)
	require.NoError(t, err)
	assert.Len(t, byUser, 2)
}
