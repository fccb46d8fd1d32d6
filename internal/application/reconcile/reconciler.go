package reconcile

import (
	"context"
	"time"

	"github.com/dmflow/backend/internal/domain/billing"
	"github.com/dmflow/backend/internal/domain/identity"
	"github.com/dmflow/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Store is the relational side of the reconciliation. Every upsert is
// keyed by the entity's id: matching rows have all columns overwritten
// with the incoming values, absent rows are inserted.
type Store interface {
	UpsertTier(ctx context.Context, tier *billing.Tier) error
	UpsertBillingAccount(ctx context.Context, account *billing.BillingAccount) error
	UpsertUser(ctx context.Context, user *identity.User) error
	UpsertSubscription(ctx context.Context, sub *billing.Subscription) error
	UpsertWorkspace(ctx context.Context, workspace *identity.Workspace) error
	UpsertWorkspaceMember(ctx context.Context, member *identity.WorkspaceMember) error
	UpsertUsageCounter(ctx context.Context, counter *billing.UsageCounter) error

	// Reset deletes every row except the user with the given email, in
	// one transaction: children before parents, all or nothing.
	Reset(ctx context.Context, keepUserEmail string) error
}

// Report counts what a reconciliation run did per entity type
type Report struct {
	Tiers           int
	BillingAccounts int
	Users           int
	Subscriptions   int
	Workspaces      int
	Members         int
	UsageCounters   int
	Skipped         int
}

// idNamespace seeds the deterministic legacy-id to uuid mapping. Fixed
// forever: changing it would re-key every reconciled row.
var idNamespace = uuid.MustParse("b1a5c0de-7e1e-4f5a-9c27-df1000000001")

// Reconciler projects legacy document-store records into the relational
// schema. Relational ids are derived deterministically from legacy ids,
// so repeated runs over unchanged source data rewrite identical rows and
// the projection is idempotent.
type Reconciler struct {
	source Source
	store  Store
	logger *zap.Logger
}

// NewReconciler creates a new Reconciler
func NewReconciler(source Source, store Store, logger *zap.Logger) *Reconciler {
	return &Reconciler{
		source: source,
		store:  store,
		logger: logger,
	}
}

// mappedID derives the relational uuid for a legacy identifier. The
// kind prefix keeps different entity types from colliding on equal
// legacy ids.
func mappedID(kind, legacyID string) uuid.UUID {
	return uuid.NewSHA1(idNamespace, []byte(kind+":"+legacyID))
}

// baseEntity builds entity metadata from the legacy document's own
// timestamps, keeping repeated runs deterministic
func baseEntity(id uuid.UUID, createdAt, updatedAt time.Time) shared.BaseEntity {
	return shared.BaseEntity{
		ID:        id,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}
}

// Run migrates every entity type in dependency order: tiers, billing
// accounts and users first, then subscriptions, workspaces, members and
// usage counters. Records with unparseable fields or dangling required
// references are skipped and counted, never partially written.
func (r *Reconciler) Run(ctx context.Context) (*Report, error) {
	report := &Report{}

	tiers, err := r.migrateTiers(ctx, report)
	if err != nil {
		return report, err
	}
	accounts, err := r.migrateBillingAccounts(ctx, report)
	if err != nil {
		return report, err
	}
	users, err := r.migrateUsers(ctx, report, tiers, accounts)
	if err != nil {
		return report, err
	}
	if err := r.migrateSubscriptions(ctx, report, tiers, accounts); err != nil {
		return report, err
	}
	workspaces, err := r.migrateWorkspaces(ctx, report, users, accounts)
	if err != nil {
		return report, err
	}
	if err := r.migrateWorkspaceMembers(ctx, report, workspaces, users); err != nil {
		return report, err
	}
	if err := r.migrateUsageCounters(ctx, report, users, tiers, workspaces); err != nil {
		return report, err
	}

	r.logger.Info("Reconciliation complete",
		zap.Int("tiers", report.Tiers),
		zap.Int("billing_accounts", report.BillingAccounts),
		zap.Int("users", report.Users),
		zap.Int("subscriptions", report.Subscriptions),
		zap.Int("workspaces", report.Workspaces),
		zap.Int("members", report.Members),
		zap.Int("usage_counters", report.UsageCounters),
		zap.Int("skipped", report.Skipped))
	return report, nil
}

// FactoryReset wipes the relational store except the designated admin
// user, then wipes the legacy store when the source supports it. Each
// store's wipe is a single transaction.
func (r *Reconciler) FactoryReset(ctx context.Context, keepUserEmail string) error {
	if err := r.store.Reset(ctx, keepUserEmail); err != nil {
		return err
	}
	r.logger.Info("Relational store reset", zap.String("kept_user", keepUserEmail))

	if resetter, ok := r.source.(Resetter); ok {
		if err := resetter.Reset(ctx); err != nil {
			return err
		}
		r.logger.Info("Legacy store reset")
	}
	return nil
}

// migrateTiers returns the set of migrated legacy tier ids, used to
// validate references in later passes
func (r *Reconciler) migrateTiers(ctx context.Context, report *Report) (map[string]uuid.UUID, error) {
	records, err := r.source.Tiers(ctx)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]uuid.UUID, len(records))
	for _, rec := range records {
		status := billing.TierStatus(rec.Status)
		if !status.IsValid() {
			r.skip(report, "tier", rec.ID, "unknown status "+rec.Status)
			continue
		}
		if rec.Name == "" {
			r.skip(report, "tier", rec.ID, "empty name")
			continue
		}

		tier := &billing.Tier{
			BaseEntity:  baseEntity(mappedID("tier", rec.ID), rec.CreatedAt, rec.UpdatedAt),
			Name:        rec.Name,
			Description: rec.Description,
			Limits:      rec.Limits,
			IsDefault:   rec.IsDefault,
			IsCustom:    rec.IsCustom,
			Status:      status,
			LegacyID:    rec.ID,
		}
		if err := r.store.UpsertTier(ctx, tier); err != nil {
			return nil, err
		}
		seen[rec.ID] = tier.ID
		report.Tiers++
	}
	return seen, nil
}

func (r *Reconciler) migrateBillingAccounts(ctx context.Context, report *Report) (map[string]uuid.UUID, error) {
	records, err := r.source.BillingAccounts(ctx)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]uuid.UUID, len(records))
	for _, rec := range records {
		status := billing.BillingAccountStatus(rec.Status)
		if status != billing.BillingAccountStatusActive && status != billing.BillingAccountStatusInactive {
			r.skip(report, "billing_account", rec.ID, "unknown status "+rec.Status)
			continue
		}

		account := &billing.BillingAccount{
			BaseEntity:  baseEntity(mappedID("billing_account", rec.ID), rec.CreatedAt, rec.UpdatedAt),
			OwnerUserID: mappedID("user", rec.OwnerUserID),
			Name:        rec.Name,
			Status:      status,
			LegacyID:    rec.ID,
		}
		if err := r.store.UpsertBillingAccount(ctx, account); err != nil {
			return nil, err
		}
		seen[rec.ID] = account.ID
		report.BillingAccounts++
	}
	return seen, nil
}

func (r *Reconciler) migrateUsers(ctx context.Context, report *Report, tiers, accounts map[string]uuid.UUID) (map[string]uuid.UUID, error) {
	records, err := r.source.Users(ctx)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]uuid.UUID, len(records))
	for _, rec := range records {
		if rec.Email == "" {
			r.skip(report, "user", rec.ID, "empty email")
			continue
		}

		role := identity.UserRole(rec.Role)
		if !role.IsValid() {
			role = identity.UserRoleUser
		}

		user := &identity.User{
			BaseEntity:         baseEntity(mappedID("user", rec.ID), rec.CreatedAt, rec.UpdatedAt),
			Email:              rec.Email,
			PasswordHash:       rec.PasswordHash,
			DisplayName:        rec.DisplayName,
			Role:               role,
			TierLimitOverrides: rec.TierLimitOverrides,
			LegacyID:           rec.ID,
		}
		// Optional references are dropped when they dangle; the user row
		// itself still migrates.
		if id, ok := tiers[rec.TierID]; ok {
			user.TierID = &id
		}
		if id, ok := accounts[rec.BillingAccountID]; ok {
			user.BillingAccountID = &id
		}
		if rec.DefaultWorkspaceID != "" {
			id := mappedID("workspace", rec.DefaultWorkspaceID)
			user.DefaultWorkspaceID = &id
		}

		if err := r.store.UpsertUser(ctx, user); err != nil {
			return nil, err
		}
		seen[rec.ID] = user.ID
		report.Users++
	}
	return seen, nil
}

func (r *Reconciler) migrateSubscriptions(ctx context.Context, report *Report, tiers, accounts map[string]uuid.UUID) error {
	records, err := r.source.Subscriptions(ctx)
	if err != nil {
		return err
	}

	for _, rec := range records {
		status := billing.SubscriptionStatus(rec.Status)
		if !status.IsValid() {
			r.skip(report, "subscription", rec.ID, "unknown status "+rec.Status)
			continue
		}
		accountID, ok := accounts[rec.BillingAccountID]
		if !ok {
			r.skip(report, "subscription", rec.ID, "dangling billing account "+rec.BillingAccountID)
			continue
		}
		tierID, ok := tiers[rec.TierID]
		if !ok {
			r.skip(report, "subscription", rec.ID, "dangling tier "+rec.TierID)
			continue
		}

		sub := &billing.Subscription{
			BaseEntity:       baseEntity(mappedID("subscription", rec.ID), rec.CreatedAt, rec.UpdatedAt),
			BillingAccountID: accountID,
			TierID:           tierID,
			Status:           status,
			StartedAt:        rec.StartedAt,
			CanceledAt:       rec.CanceledAt,
			CurrentPeriodEnd: rec.CurrentPeriodEnd,
			LegacyID:         rec.ID,
		}
		if err := r.store.UpsertSubscription(ctx, sub); err != nil {
			return err
		}
		report.Subscriptions++
	}
	return nil
}

func (r *Reconciler) migrateWorkspaces(ctx context.Context, report *Report, users, accounts map[string]uuid.UUID) (map[string]uuid.UUID, error) {
	records, err := r.source.Workspaces(ctx)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]uuid.UUID, len(records))
	for _, rec := range records {
		ownerID, ok := users[rec.OwnerUserID]
		if !ok {
			r.skip(report, "workspace", rec.ID, "dangling owner "+rec.OwnerUserID)
			continue
		}

		workspace := &identity.Workspace{
			BaseEntity:  baseEntity(mappedID("workspace", rec.ID), rec.CreatedAt, rec.UpdatedAt),
			Name:        rec.Name,
			OwnerUserID: ownerID,
			LegacyID:    rec.ID,
		}
		if id, ok := accounts[rec.BillingAccountID]; ok {
			workspace.BillingAccountID = &id
		}

		if err := r.store.UpsertWorkspace(ctx, workspace); err != nil {
			return nil, err
		}
		seen[rec.ID] = workspace.ID
		report.Workspaces++
	}
	return seen, nil
}

func (r *Reconciler) migrateWorkspaceMembers(ctx context.Context, report *Report, workspaces, users map[string]uuid.UUID) error {
	records, err := r.source.WorkspaceMembers(ctx)
	if err != nil {
		return err
	}

	for _, rec := range records {
		role := identity.WorkspaceRole(rec.Role)
		if !role.IsValid() {
			r.skip(report, "workspace_member", rec.ID, "unknown role "+rec.Role)
			continue
		}
		workspaceID, ok := workspaces[rec.WorkspaceID]
		if !ok {
			r.skip(report, "workspace_member", rec.ID, "dangling workspace "+rec.WorkspaceID)
			continue
		}
		userID, ok := users[rec.UserID]
		if !ok {
			r.skip(report, "workspace_member", rec.ID, "dangling user "+rec.UserID)
			continue
		}

		member := &identity.WorkspaceMember{
			BaseEntity:  baseEntity(mappedID("workspace_member", rec.ID), rec.CreatedAt, rec.UpdatedAt),
			WorkspaceID: workspaceID,
			UserID:      userID,
			Role:        role,
			LegacyID:    rec.ID,
		}
		if err := r.store.UpsertWorkspaceMember(ctx, member); err != nil {
			return err
		}
		report.Members++
	}
	return nil
}

func (r *Reconciler) migrateUsageCounters(ctx context.Context, report *Report, users, tiers, workspaces map[string]uuid.UUID) error {
	records, err := r.source.UsageCounters(ctx)
	if err != nil {
		return err
	}

	for _, rec := range records {
		resource, err := billing.ParseResource(rec.Resource)
		if err != nil {
			r.skip(report, "usage_counter", rec.ID, err.Error())
			continue
		}
		userID, ok := users[rec.UserID]
		if !ok {
			r.skip(report, "usage_counter", rec.ID, "dangling user "+rec.UserID)
			continue
		}

		counter := &billing.UsageCounter{
			BaseEntity:  baseEntity(mappedID("usage_counter", rec.ID), rec.CreatedAt, rec.UpdatedAt),
			UserID:      userID,
			Resource:    resource,
			PeriodStart: rec.PeriodStart,
			PeriodEnd:   rec.PeriodEnd,
			Count:       rec.Count,
			LegacyID:    rec.ID,
		}
		if id, ok := tiers[rec.TierID]; ok {
			counter.TierID = &id
		}
		if id, ok := workspaces[rec.WorkspaceID]; ok {
			counter.WorkspaceID = &id
		}

		if err := r.store.UpsertUsageCounter(ctx, counter); err != nil {
			return err
		}
		report.UsageCounters++
	}
	return nil
}

func (r *Reconciler) skip(report *Report, kind, legacyID, reason string) {
	report.Skipped++
	r.logger.Warn("Skipping legacy record",
		zap.String("kind", kind),
		zap.String("legacy_id", legacyID),
		zap.String("reason", reason))
}
