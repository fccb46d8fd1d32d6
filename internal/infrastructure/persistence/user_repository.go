package persistence

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dmflow/backend/internal/domain/identity"
	"github.com/dmflow/backend/internal/domain/shared"
	"github.com/dmflow/backend/internal/infrastructure/persistence/models"
)

// UserRepository implements identity.UserRepository using GORM
type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Save inserts a new user
func (r *UserRepository) Save(ctx context.Context, user *identity.User) error {
	var model models.UserModel
	model.FromDomain(user)

	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return shared.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// Update persists changes to an existing user
func (r *UserRepository) Update(ctx context.Context, user *identity.User) error {
	var model models.UserModel
	model.FromDomain(user)

	result := r.db.WithContext(ctx).Model(&models.UserModel{}).
		Where("id = ?", model.ID).
		Select("*").Omit("id", "created_at").
		Updates(&model)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return shared.ErrAlreadyExists
		}
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// FindByID retrieves a user by ID
func (r *UserRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	var model models.UserModel
	err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByEmail retrieves a user by email, case-insensitively. Emails are
// stored lowercased, so lowering the input is sufficient.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*identity.User, error) {
	var model models.UserModel
	err := r.db.WithContext(ctx).
		First(&model, "email = ?", strings.ToLower(strings.TrimSpace(email))).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDs retrieves users matching the given IDs
func (r *UserRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*identity.User, error) {
	if len(ids) == 0 {
		return []*identity.User{}, nil
	}

	var modelList []models.UserModel
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&modelList).Error; err != nil {
		return nil, err
	}

	users := make([]*identity.User, len(modelList))
	for i := range modelList {
		users[i] = modelList[i].ToDomain()
	}
	return users, nil
}

// AssignTier sets only the user's tier column, leaving concurrent
// changes to other fields untouched.
func (r *UserRepository) AssignTier(ctx context.Context, userID, tierID uuid.UUID) error {
	result := r.db.WithContext(ctx).Model(&models.UserModel{}).
		Where("id = ?", userID).
		Updates(map[string]any{
			"tier_id":    tierID,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// CountByTier returns how many users directly reference the tier
func (r *UserRepository) CountByTier(ctx context.Context, tierID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.UserModel{}).
		Where("tier_id = ?", tierID).
		Count(&count).Error
	return count, err
}

// Ensure UserRepository implements the interface
var _ identity.UserRepository = (*UserRepository)(nil)
