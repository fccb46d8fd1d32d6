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

// WorkspaceRepository implements identity.WorkspaceRepository using GORM
type WorkspaceRepository struct {
	db *gorm.DB
}

// NewWorkspaceRepository creates a new workspace repository
func NewWorkspaceRepository(db *gorm.DB) *WorkspaceRepository {
	return &WorkspaceRepository{db: db}
}

// Save inserts a new workspace
func (r *WorkspaceRepository) Save(ctx context.Context, workspace *identity.Workspace) error {
	var model models.WorkspaceModel
	model.FromDomain(workspace)

	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return shared.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// Update persists changes to an existing workspace
func (r *WorkspaceRepository) Update(ctx context.Context, workspace *identity.Workspace) error {
	var model models.WorkspaceModel
	model.FromDomain(workspace)

	result := r.db.WithContext(ctx).Model(&models.WorkspaceModel{}).
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

// FindByID retrieves a workspace by its ID
func (r *WorkspaceRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.Workspace, error) {
	var model models.WorkspaceModel
	err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDs retrieves workspaces matching the given IDs
func (r *WorkspaceRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*identity.Workspace, error) {
	if len(ids) == 0 {
		return []*identity.Workspace{}, nil
	}

	var modelList []models.WorkspaceModel
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&modelList).Error; err != nil {
		return nil, err
	}

	workspaces := make([]*identity.Workspace, len(modelList))
	for i := range modelList {
		workspaces[i] = modelList[i].ToDomain()
	}
	return workspaces, nil
}

// CountByOwner returns how many workspaces the user owns
func (r *WorkspaceRepository) CountByOwner(ctx context.Context, ownerUserID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.WorkspaceModel{}).
		Where("owner_user_id = ?", ownerUserID).
		Count(&count).Error
	return count, err
}

// Ensure WorkspaceRepository implements the interface
var _ identity.WorkspaceRepository = (*WorkspaceRepository)(nil)
