package persistence

import (
	"context"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/dmflow/backend/internal/application/reconcile"
	"github.com/dmflow/backend/internal/domain/billing"
	"github.com/dmflow/backend/internal/domain/identity"
	"github.com/dmflow/backend/internal/infrastructure/persistence/models"
)

// ReconcileStore is the relational side of the legacy reconciliation:
// id-keyed upserts that overwrite every column, so reruns converge on
// the legacy store's state, plus the transactional factory reset.
type ReconcileStore struct {
	db *gorm.DB
}

// NewReconcileStore creates a new reconcile store
func NewReconcileStore(db *gorm.DB) *ReconcileStore {
	return &ReconcileStore{db: db}
}

// upsertByID inserts the model or overwrites all of its columns when a
// row with the same id already exists
func (s *ReconcileStore) upsertByID(ctx context.Context, model any) error {
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).
		Create(model).Error
}

// UpsertTier writes a tier keyed by id
func (s *ReconcileStore) UpsertTier(ctx context.Context, tier *billing.Tier) error {
	var model models.TierModel
	model.FromDomain(tier)
	return s.upsertByID(ctx, &model)
}

// UpsertBillingAccount writes a billing account keyed by id
func (s *ReconcileStore) UpsertBillingAccount(ctx context.Context, account *billing.BillingAccount) error {
	var model models.BillingAccountModel
	model.FromDomain(account)
	return s.upsertByID(ctx, &model)
}

// UpsertUser writes a user keyed by id
func (s *ReconcileStore) UpsertUser(ctx context.Context, user *identity.User) error {
	var model models.UserModel
	model.FromDomain(user)
	return s.upsertByID(ctx, &model)
}

// UpsertSubscription writes a subscription keyed by id
func (s *ReconcileStore) UpsertSubscription(ctx context.Context, sub *billing.Subscription) error {
	var model models.SubscriptionModel
	model.FromDomain(sub)
	return s.upsertByID(ctx, &model)
}

// UpsertWorkspace writes a workspace keyed by id
func (s *ReconcileStore) UpsertWorkspace(ctx context.Context, workspace *identity.Workspace) error {
	var model models.WorkspaceModel
	model.FromDomain(workspace)
	return s.upsertByID(ctx, &model)
}

// UpsertWorkspaceMember writes a membership keyed by id
func (s *ReconcileStore) UpsertWorkspaceMember(ctx context.Context, member *identity.WorkspaceMember) error {
	var model models.WorkspaceMemberModel
	model.FromDomain(member)
	return s.upsertByID(ctx, &model)
}

// UpsertUsageCounter writes a usage counter keyed by id
func (s *ReconcileStore) UpsertUsageCounter(ctx context.Context, counter *billing.UsageCounter) error {
	var model models.UsageCounterModel
	model.FromDomain(counter)
	return s.upsertByID(ctx, &model)
}

// Reset deletes all rows in dependency order, children before parents,
// keeping only the user with keepUserEmail (when non-empty). The whole
// sweep runs in one transaction; any failure rolls everything back.
func (s *ReconcileStore) Reset(ctx context.Context, keepUserEmail string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		deletions := []any{
			&models.WorkspaceMemberModel{},
			&models.WorkspaceModel{},
			&models.SubscriptionModel{},
			&models.UsageCounterModel{},
			&models.BillingAccountModel{},
			&models.TierModel{},
		}
		for _, model := range deletions {
			if err := tx.Where("1 = 1").Delete(model).Error; err != nil {
				return err
			}
		}

		users := tx.Model(&models.UserModel{})
		if keepUserEmail != "" {
			users = users.Where("email <> ?", strings.ToLower(strings.TrimSpace(keepUserEmail)))
		} else {
			users = users.Where("1 = 1")
		}
		if err := users.Delete(&models.UserModel{}).Error; err != nil {
			return err
		}

		// The surviving admin must not dangle into the wiped tables.
		if keepUserEmail != "" {
			return tx.Model(&models.UserModel{}).
				Where("1 = 1").
				Updates(map[string]any{
					"tier_id":              nil,
					"billing_account_id":   nil,
					"default_workspace_id": nil,
				}).Error
		}
		return nil
	})
}

// Ensure ReconcileStore implements the interface
var _ reconcile.Store = (*ReconcileStore)(nil)
