package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dmflow/backend/internal/domain/billing"
	"github.com/dmflow/backend/internal/domain/shared"
	"github.com/dmflow/backend/internal/infrastructure/persistence/models"
)

// TierRepository implements billing.TierRepository using GORM
type TierRepository struct {
	db *gorm.DB
}

// NewTierRepository creates a new tier repository
func NewTierRepository(db *gorm.DB) *TierRepository {
	return &TierRepository{db: db}
}

// Save inserts a new tier
func (r *TierRepository) Save(ctx context.Context, tier *billing.Tier) error {
	var model models.TierModel
	model.FromDomain(tier)

	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return shared.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// Update persists changes to an existing tier
func (r *TierRepository) Update(ctx context.Context, tier *billing.Tier) error {
	var model models.TierModel
	model.FromDomain(tier)

	result := r.db.WithContext(ctx).Model(&models.TierModel{}).
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

// SaveAsDefault upserts the tier with the default flag set, clearing
// the flag on every other tier first so the single-default unique index
// never sees two flagged rows. Both statements run in one transaction.
func (r *TierRepository) SaveAsDefault(ctx context.Context, tier *billing.Tier) error {
	tier.IsDefault = true

	var model models.TierModel
	model.FromDomain(tier)

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.TierModel{}).
			Where("id <> ? AND is_default", model.ID).
			Update("is_default", false).Error; err != nil {
			return err
		}
		if err := tx.Save(&model).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return shared.ErrAlreadyExists
			}
			return err
		}
		return nil
	})
}

// FindByID retrieves a tier by its ID
func (r *TierRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Tier, error) {
	var model models.TierModel
	err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByName retrieves a tier by its unique name
func (r *TierRepository) FindByName(ctx context.Context, name string) (*billing.Tier, error) {
	var model models.TierModel
	err := r.db.WithContext(ctx).First(&model, "name = ?", name).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDs retrieves tiers matching the given IDs
func (r *TierRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*billing.Tier, error) {
	if len(ids) == 0 {
		return []*billing.Tier{}, nil
	}

	var modelList []models.TierModel
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&modelList).Error; err != nil {
		return nil, err
	}

	tiers := make([]*billing.Tier, len(modelList))
	for i := range modelList {
		tiers[i] = modelList[i].ToDomain()
	}
	return tiers, nil
}

// FindAll retrieves a page of tiers matching the filter plus the total count
func (r *TierRepository) FindAll(ctx context.Context, filter billing.TierFilter) ([]*billing.Tier, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.TierModel{})

	if filter.Name != "" {
		query = query.Where("name LIKE ?", "%"+filter.Name+"%")
	}
	if filter.Status != "" {
		query = query.Where("status = ?", string(filter.Status))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var modelList []models.TierModel
	if err := applyPagination(query, filter.Filter).Find(&modelList).Error; err != nil {
		return nil, 0, err
	}

	tiers := make([]*billing.Tier, len(modelList))
	for i := range modelList {
		tiers[i] = modelList[i].ToDomain()
	}
	return tiers, total, nil
}

// FindDefaultActive retrieves the active tier carrying the default flag
func (r *TierRepository) FindDefaultActive(ctx context.Context) (*billing.Tier, error) {
	var model models.TierModel
	err := r.db.WithContext(ctx).
		Where("is_default AND status = ?", string(billing.TierStatusActive)).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindFirstActive retrieves the oldest active tier
func (r *TierRepository) FindFirstActive(ctx context.Context) (*billing.Tier, error) {
	var model models.TierModel
	err := r.db.WithContext(ctx).
		Where("status = ?", string(billing.TierStatusActive)).
		Order("created_at ASC").
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Delete removes a tier by its ID
func (r *TierRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.TierModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// applyPagination applies ordering and paging from a filter
func applyPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize < 1 {
		pageSize = 20
	}

	orderBy := filter.OrderBy
	if orderBy == "" {
		orderBy = "created_at"
	}
	direction := "DESC"
	if filter.OrderDir == "asc" {
		direction = "ASC"
	}

	return query.Order(orderBy + " " + direction).
		Offset((page - 1) * pageSize).
		Limit(pageSize)
}

// Ensure TierRepository implements the interface
var _ billing.TierRepository = (*TierRepository)(nil)
