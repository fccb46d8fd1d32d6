package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dmflow/backend/internal/domain/identity"
	"github.com/dmflow/backend/internal/domain/shared"
	"github.com/dmflow/backend/internal/infrastructure/persistence/models"
)

// WorkspaceMemberRepository implements identity.WorkspaceMemberRepository using GORM
type WorkspaceMemberRepository struct {
	db *gorm.DB
}

// NewWorkspaceMemberRepository creates a new workspace member repository
func NewWorkspaceMemberRepository(db *gorm.DB) *WorkspaceMemberRepository {
	return &WorkspaceMemberRepository{db: db}
}

// Save inserts a membership
func (r *WorkspaceMemberRepository) Save(ctx context.Context, member *identity.WorkspaceMember) error {
	var model models.WorkspaceMemberModel
	model.FromDomain(member)

	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return shared.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// SaveWithinSeatLimit inserts the membership only when the workspace's
// member count after the insert stays within seatLimit. The count and
// the insert share one transaction so a parallel insert cannot slip a
// seat past the ceiling unseen.
func (r *WorkspaceMemberRepository) SaveWithinSeatLimit(ctx context.Context, member *identity.WorkspaceMember, seatLimit int64) error {
	if seatLimit < 0 {
		return r.Save(ctx, member)
	}

	var model models.WorkspaceMemberModel
	model.FromDomain(member)

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		err := tx.Model(&models.WorkspaceMemberModel{}).
			Where("workspace_id = ?", model.WorkspaceID).
			Count(&count).Error
		if err != nil {
			return err
		}
		if count >= seatLimit {
			return shared.ErrSeatLimitReached
		}

		if err := tx.Create(&model).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return shared.ErrAlreadyExists
			}
			return err
		}
		return nil
	})
}

// Update persists a role change
func (r *WorkspaceMemberRepository) Update(ctx context.Context, member *identity.WorkspaceMember) error {
	var model models.WorkspaceMemberModel
	model.FromDomain(member)

	result := r.db.WithContext(ctx).Model(&models.WorkspaceMemberModel{}).
		Where("id = ?", model.ID).
		Select("*").Omit("id", "created_at").
		Updates(&model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Find retrieves the membership for a (workspace, user) pair
func (r *WorkspaceMemberRepository) Find(ctx context.Context, workspaceID, userID uuid.UUID) (*identity.WorkspaceMember, error) {
	var model models.WorkspaceMemberModel
	err := r.db.WithContext(ctx).
		First(&model, "workspace_id = ? AND user_id = ?", workspaceID, userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByWorkspace retrieves all memberships of a workspace
func (r *WorkspaceMemberRepository) FindByWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]*identity.WorkspaceMember, error) {
	var modelList []models.WorkspaceMemberModel
	err := r.db.WithContext(ctx).
		Where("workspace_id = ?", workspaceID).
		Order("created_at ASC").
		Find(&modelList).Error
	if err != nil {
		return nil, err
	}
	return membersToDomain(modelList), nil
}

// FindByUser retrieves all memberships of a user
func (r *WorkspaceMemberRepository) FindByUser(ctx context.Context, userID uuid.UUID) ([]*identity.WorkspaceMember, error) {
	var modelList []models.WorkspaceMemberModel
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&modelList).Error
	if err != nil {
		return nil, err
	}
	return membersToDomain(modelList), nil
}

// CountByWorkspace returns the number of members in a workspace
func (r *WorkspaceMemberRepository) CountByWorkspace(ctx context.Context, workspaceID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.WorkspaceMemberModel{}).
		Where("workspace_id = ?", workspaceID).
		Count(&count).Error
	return count, err
}

// Delete removes the membership for a (workspace, user) pair
func (r *WorkspaceMemberRepository) Delete(ctx context.Context, workspaceID, userID uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Delete(&models.WorkspaceMemberModel{}, "workspace_id = ? AND user_id = ?", workspaceID, userID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func membersToDomain(modelList []models.WorkspaceMemberModel) []*identity.WorkspaceMember {
	members := make([]*identity.WorkspaceMember, len(modelList))
	for i := range modelList {
		members[i] = modelList[i].ToDomain()
	}
	return members
}

// Ensure WorkspaceMemberRepository implements the interface
var _ identity.WorkspaceMemberRepository = (*WorkspaceMemberRepository)(nil)
