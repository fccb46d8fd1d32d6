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

// BillingAccountRepository implements billing.BillingAccountRepository using GORM
type BillingAccountRepository struct {
	db *gorm.DB
}

// NewBillingAccountRepository creates a new billing account repository
func NewBillingAccountRepository(db *gorm.DB) *BillingAccountRepository {
	return &BillingAccountRepository{db: db}
}

// Save inserts a new billing account
func (r *BillingAccountRepository) Save(ctx context.Context, account *billing.BillingAccount) error {
	var model models.BillingAccountModel
	model.FromDomain(account)

	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return shared.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// Update persists changes to an existing billing account
func (r *BillingAccountRepository) Update(ctx context.Context, account *billing.BillingAccount) error {
	var model models.BillingAccountModel
	model.FromDomain(account)

	result := r.db.WithContext(ctx).Model(&models.BillingAccountModel{}).
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

// FindByID retrieves a billing account by its ID
func (r *BillingAccountRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.BillingAccount, error) {
	var model models.BillingAccountModel
	err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByOwner retrieves the billing accounts owned by a user
func (r *BillingAccountRepository) FindByOwner(ctx context.Context, ownerUserID uuid.UUID) ([]*billing.BillingAccount, error) {
	var modelList []models.BillingAccountModel
	err := r.db.WithContext(ctx).
		Where("owner_user_id = ?", ownerUserID).
		Order("created_at ASC").
		Find(&modelList).Error
	if err != nil {
		return nil, err
	}

	accounts := make([]*billing.BillingAccount, len(modelList))
	for i := range modelList {
		accounts[i] = modelList[i].ToDomain()
	}
	return accounts, nil
}

// Ensure BillingAccountRepository implements the interface
var _ billing.BillingAccountRepository = (*BillingAccountRepository)(nil)
