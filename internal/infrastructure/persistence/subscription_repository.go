package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dmflow/backend/internal/domain/billing"
	"github.com/dmflow/backend/internal/domain/shared"
	"github.com/dmflow/backend/internal/infrastructure/persistence/models"
)

// SubscriptionRepository implements billing.SubscriptionRepository using GORM
type SubscriptionRepository struct {
	db *gorm.DB
}

// NewSubscriptionRepository creates a new subscription repository
func NewSubscriptionRepository(db *gorm.DB) *SubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

// Save inserts a new subscription
func (r *SubscriptionRepository) Save(ctx context.Context, sub *billing.Subscription) error {
	var model models.SubscriptionModel
	model.FromDomain(sub)

	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return shared.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// Update persists changes to an existing subscription
func (r *SubscriptionRepository) Update(ctx context.Context, sub *billing.Subscription) error {
	var model models.SubscriptionModel
	model.FromDomain(sub)

	result := r.db.WithContext(ctx).Model(&models.SubscriptionModel{}).
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

// FindByID retrieves a subscription by its ID
func (r *SubscriptionRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Subscription, error) {
	var model models.SubscriptionModel
	err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindActiveByBillingAccount retrieves the most recently created active
// subscription for the account
func (r *SubscriptionRepository) FindActiveByBillingAccount(ctx context.Context, billingAccountID uuid.UUID) (*billing.Subscription, error) {
	var model models.SubscriptionModel
	err := r.db.WithContext(ctx).
		Where("billing_account_id = ? AND status = ?", billingAccountID, string(billing.SubscriptionStatusActive)).
		Order("created_at DESC").
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByBillingAccount retrieves all subscriptions for the account, newest first
func (r *SubscriptionRepository) FindByBillingAccount(ctx context.Context, billingAccountID uuid.UUID) ([]*billing.Subscription, error) {
	var modelList []models.SubscriptionModel
	err := r.db.WithContext(ctx).
		Where("billing_account_id = ?", billingAccountID).
		Order("created_at DESC").
		Find(&modelList).Error
	if err != nil {
		return nil, err
	}

	subs := make([]*billing.Subscription, len(modelList))
	for i := range modelList {
		subs[i] = modelList[i].ToDomain()
	}
	return subs, nil
}

// CancelActiveForAccount cancels every active subscription for the
// account with a single UPDATE, stamping the cancellation time, so two
// active subscriptions are never visible to readers.
func (r *SubscriptionRepository) CancelActiveForAccount(ctx context.Context, billingAccountID uuid.UUID, excludeID *uuid.UUID) (int64, error) {
	now := time.Now()

	query := r.db.WithContext(ctx).Model(&models.SubscriptionModel{}).
		Where("billing_account_id = ? AND status = ?", billingAccountID, string(billing.SubscriptionStatusActive))
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}

	result := query.Updates(map[string]any{
		"status":      string(billing.SubscriptionStatusCanceled),
		"canceled_at": now,
		"updated_at":  now,
	})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// Ensure SubscriptionRepository implements the interface
var _ billing.SubscriptionRepository = (*SubscriptionRepository)(nil)
