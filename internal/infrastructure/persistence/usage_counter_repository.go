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

// UsageCounterRepository implements billing.UsageCounterRepository using GORM.
//
// Both increments are single upsert statements against the
// (user_id, resource, period_start) key, so concurrent callers are
// serialized by the database and the bounded variant can never let two
// requests jointly exceed the ceiling.
type UsageCounterRepository struct {
	db *gorm.DB
}

// NewUsageCounterRepository creates a new usage counter repository
func NewUsageCounterRepository(db *gorm.DB) *UsageCounterRepository {
	return &UsageCounterRepository{db: db}
}

const incrementSQL = `
INSERT INTO usage_counters (id, created_at, updated_at, user_id, resource, period_start, period_end, count, tier_id, workspace_id)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (user_id, resource, period_start) DO UPDATE SET
	count = usage_counters.count + excluded.count,
	updated_at = excluded.updated_at,
	tier_id = excluded.tier_id,
	workspace_id = excluded.workspace_id
RETURNING count`

const incrementWithinLimitSQL = `
INSERT INTO usage_counters (id, created_at, updated_at, user_id, resource, period_start, period_end, count, tier_id, workspace_id)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (user_id, resource, period_start) DO UPDATE SET
	count = usage_counters.count + excluded.count,
	updated_at = excluded.updated_at,
	tier_id = excluded.tier_id,
	workspace_id = excluded.workspace_id
WHERE usage_counters.count + excluded.count <= ?
RETURNING count`

// Get retrieves the counter for the key
func (r *UsageCounterRepository) Get(ctx context.Context, userID uuid.UUID, resource billing.Resource, periodStart time.Time) (*billing.UsageCounter, error) {
	var model models.UsageCounterModel
	err := r.db.WithContext(ctx).
		First(&model, "user_id = ? AND resource = ? AND period_start = ?", userID, string(resource), periodStart).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Increment atomically inserts the counter or adds its count to the
// existing row, returning the post-increment count.
func (r *UsageCounterRepository) Increment(ctx context.Context, counter *billing.UsageCounter) (int64, error) {
	var model models.UsageCounterModel
	model.FromDomain(counter)

	var newCount int64
	err := r.db.WithContext(ctx).
		Raw(incrementSQL,
			model.ID, model.CreatedAt, model.UpdatedAt,
			model.UserID, model.Resource, model.PeriodStart, model.PeriodEnd,
			model.Count, model.TierID, model.WorkspaceID).
		Scan(&newCount).Error
	if err != nil {
		return 0, err
	}
	return newCount, nil
}

// IncrementWithinLimit is the bounded increment: the insert-or-add only
// commits when the resulting count stays within limit. The check lives
// inside the upsert's WHERE clause, so there is no window between
// checking and incrementing.
func (r *UsageCounterRepository) IncrementWithinLimit(ctx context.Context, counter *billing.UsageCounter, limit int64) (int64, bool, error) {
	if counter.Count > limit {
		current, err := r.currentCount(ctx, counter)
		if err != nil {
			return 0, false, err
		}
		return current, false, nil
	}

	var model models.UsageCounterModel
	model.FromDomain(counter)

	var newCount int64
	result := r.db.WithContext(ctx).
		Raw(incrementWithinLimitSQL,
			model.ID, model.CreatedAt, model.UpdatedAt,
			model.UserID, model.Resource, model.PeriodStart, model.PeriodEnd,
			model.Count, model.TierID, model.WorkspaceID,
			limit).
		Scan(&newCount)
	if result.Error != nil {
		return 0, false, result.Error
	}
	if result.RowsAffected == 0 {
		// Nothing inserted or updated: the increment would exceed the limit.
		current, err := r.currentCount(ctx, counter)
		if err != nil {
			return 0, false, err
		}
		return current, false, nil
	}
	return newCount, true, nil
}

// ListForUser retrieves all counters for the user in the window
// starting at periodStart
func (r *UsageCounterRepository) ListForUser(ctx context.Context, userID uuid.UUID, periodStart time.Time) ([]*billing.UsageCounter, error) {
	var modelList []models.UsageCounterModel
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND period_start = ?", userID, periodStart).
		Order("resource ASC").
		Find(&modelList).Error
	if err != nil {
		return nil, err
	}

	counters := make([]*billing.UsageCounter, len(modelList))
	for i := range modelList {
		counters[i] = modelList[i].ToDomain()
	}
	return counters, nil
}

func (r *UsageCounterRepository) currentCount(ctx context.Context, counter *billing.UsageCounter) (int64, error) {
	existing, err := r.Get(ctx, counter.UserID, counter.Resource, counter.PeriodStart)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return existing.Count, nil
}

// Ensure UsageCounterRepository implements the interface
var _ billing.UsageCounterRepository = (*UsageCounterRepository)(nil)
