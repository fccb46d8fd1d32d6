package legacy

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/dmflow/backend/internal/application/reconcile"
	"github.com/dmflow/backend/internal/domain/billing"
	"github.com/dmflow/backend/internal/infrastructure/config"
)

// Collection names in the legacy document store
const (
	collTiers            = "tiers"
	collBillingAccounts  = "billing_accounts"
	collUsers            = "users"
	collSubscriptions    = "subscriptions"
	collWorkspaces       = "workspaces"
	collWorkspaceMembers = "workspace_members"
	collUsageCounters    = "usage_counters"
)

// Store reads the legacy MongoDB document store. It is the read side of
// the reconciliation and is never written to during normal operation.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

// NewStore connects to the legacy document store
func NewStore(ctx context.Context, cfg *config.LegacyConfig) (*Store, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to legacy store: %w", err)
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping legacy store: %w", err)
	}

	return &Store{
		client: client,
		db:     client.Database(cfg.Database),
	}, nil
}

// Close disconnects from the legacy store
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// tierDoc mirrors the legacy tier document shape
type tierDoc struct {
	ID          string         `bson:"_id"`
	Name        string         `bson:"name"`
	Description string         `bson:"description"`
	Limits      limitsDoc      `bson:"limits"`
	IsDefault   bool           `bson:"isDefault"`
	IsCustom    bool           `bson:"isCustom"`
	Status      string         `bson:"status"`
	CreatedAt   time.Time      `bson:"createdAt"`
	UpdatedAt   time.Time      `bson:"updatedAt"`
}

// limitsDoc mirrors the sparse limits object embedded in legacy
// documents. Field names follow the legacy camelCase convention.
type limitsDoc struct {
	AIMessages     *int64 `bson:"aiMessages,omitempty"`
	TeamMembers    *int64 `bson:"teamMembers,omitempty"`
	Workspaces     *int64 `bson:"workspaces,omitempty"`
	KnowledgeBases *int64 `bson:"knowledgeBases,omitempty"`
	Contacts       *int64 `bson:"contacts,omitempty"`
	Broadcasts     *int64 `bson:"broadcasts,omitempty"`
	AIAutoReply    *bool  `bson:"aiAutoReply,omitempty"`
	CustomBranding *bool  `bson:"customBranding,omitempty"`
	APIAccess      *bool  `bson:"apiAccess,omitempty"`
}

func (d limitsDoc) toLimits() billing.Limits {
	return billing.Limits{
		AIMessages:     d.AIMessages,
		TeamMembers:    d.TeamMembers,
		Workspaces:     d.Workspaces,
		KnowledgeBases: d.KnowledgeBases,
		Contacts:       d.Contacts,
		Broadcasts:     d.Broadcasts,
		AIAutoReply:    d.AIAutoReply,
		CustomBranding: d.CustomBranding,
		APIAccess:      d.APIAccess,
	}
}

type billingAccountDoc struct {
	ID          string    `bson:"_id"`
	OwnerUserID string    `bson:"ownerUserId"`
	Name        string    `bson:"name"`
	Status      string    `bson:"status"`
	CreatedAt   time.Time `bson:"createdAt"`
	UpdatedAt   time.Time `bson:"updatedAt"`
}

type userDoc struct {
	ID                 string    `bson:"_id"`
	Email              string    `bson:"email"`
	PasswordHash       string    `bson:"passwordHash"`
	DisplayName        string    `bson:"displayName"`
	Role               string    `bson:"role"`
	TierID             string    `bson:"tierId"`
	TierLimitOverrides limitsDoc `bson:"tierLimitOverrides"`
	BillingAccountID   string    `bson:"billingAccountId"`
	DefaultWorkspaceID string    `bson:"defaultWorkspaceId"`
	CreatedAt          time.Time `bson:"createdAt"`
	UpdatedAt          time.Time `bson:"updatedAt"`
}

type subscriptionDoc struct {
	ID               string     `bson:"_id"`
	BillingAccountID string     `bson:"billingAccountId"`
	TierID           string     `bson:"tierId"`
	Status           string     `bson:"status"`
	StartedAt        time.Time  `bson:"startedAt"`
	CanceledAt       *time.Time `bson:"canceledAt,omitempty"`
	CurrentPeriodEnd *time.Time `bson:"currentPeriodEnd,omitempty"`
	CreatedAt        time.Time  `bson:"createdAt"`
	UpdatedAt        time.Time  `bson:"updatedAt"`
}

type workspaceDoc struct {
	ID               string    `bson:"_id"`
	Name             string    `bson:"name"`
	OwnerUserID      string    `bson:"ownerUserId"`
	BillingAccountID string    `bson:"billingAccountId"`
	CreatedAt        time.Time `bson:"createdAt"`
	UpdatedAt        time.Time `bson:"updatedAt"`
}

type workspaceMemberDoc struct {
	ID          string    `bson:"_id"`
	WorkspaceID string    `bson:"workspaceId"`
	UserID      string    `bson:"userId"`
	Role        string    `bson:"role"`
	CreatedAt   time.Time `bson:"createdAt"`
	UpdatedAt   time.Time `bson:"updatedAt"`
}

type usageCounterDoc struct {
	ID          string    `bson:"_id"`
	UserID      string    `bson:"userId"`
	Resource    string    `bson:"resource"`
	PeriodStart time.Time `bson:"periodStart"`
	PeriodEnd   time.Time `bson:"periodEnd"`
	Count       int64     `bson:"count"`
	TierID      string    `bson:"tierId"`
	WorkspaceID string    `bson:"workspaceId"`
	CreatedAt   time.Time `bson:"createdAt"`
	UpdatedAt   time.Time `bson:"updatedAt"`
}

func findAll[D any](ctx context.Context, db *mongo.Database, collection string) ([]D, error) {
	cursor, err := db.Collection(collection).Find(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", collection, err)
	}
	defer cursor.Close(ctx)

	var docs []D
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", collection, err)
	}
	return docs, nil
}

// Tiers reads every tier document
func (s *Store) Tiers(ctx context.Context) ([]reconcile.LegacyTier, error) {
	docs, err := findAll[tierDoc](ctx, s.db, collTiers)
	if err != nil {
		return nil, err
	}
	tiers := make([]reconcile.LegacyTier, len(docs))
	for i, d := range docs {
		tiers[i] = reconcile.LegacyTier{
			ID:          d.ID,
			Name:        d.Name,
			Description: d.Description,
			Limits:      d.Limits.toLimits(),
			IsDefault:   d.IsDefault,
			IsCustom:    d.IsCustom,
			Status:      d.Status,
			CreatedAt:   d.CreatedAt,
			UpdatedAt:   d.UpdatedAt,
		}
	}
	return tiers, nil
}

// BillingAccounts reads every billing account document
func (s *Store) BillingAccounts(ctx context.Context) ([]reconcile.LegacyBillingAccount, error) {
	docs, err := findAll[billingAccountDoc](ctx, s.db, collBillingAccounts)
	if err != nil {
		return nil, err
	}
	accounts := make([]reconcile.LegacyBillingAccount, len(docs))
	for i, d := range docs {
		accounts[i] = reconcile.LegacyBillingAccount{
			ID:          d.ID,
			OwnerUserID: d.OwnerUserID,
			Name:        d.Name,
			Status:      d.Status,
			CreatedAt:   d.CreatedAt,
			UpdatedAt:   d.UpdatedAt,
		}
	}
	return accounts, nil
}

// Users reads every user document
func (s *Store) Users(ctx context.Context) ([]reconcile.LegacyUser, error) {
	docs, err := findAll[userDoc](ctx, s.db, collUsers)
	if err != nil {
		return nil, err
	}
	users := make([]reconcile.LegacyUser, len(docs))
	for i, d := range docs {
		users[i] = reconcile.LegacyUser{
			ID:                 d.ID,
			Email:              d.Email,
			PasswordHash:       d.PasswordHash,
			DisplayName:        d.DisplayName,
			Role:               d.Role,
			TierID:             d.TierID,
			TierLimitOverrides: d.TierLimitOverrides.toLimits(),
			BillingAccountID:   d.BillingAccountID,
			DefaultWorkspaceID: d.DefaultWorkspaceID,
			CreatedAt:          d.CreatedAt,
			UpdatedAt:          d.UpdatedAt,
		}
	}
	return users, nil
}

// Subscriptions reads every subscription document
func (s *Store) Subscriptions(ctx context.Context) ([]reconcile.LegacySubscription, error) {
	docs, err := findAll[subscriptionDoc](ctx, s.db, collSubscriptions)
	if err != nil {
		return nil, err
	}
	subs := make([]reconcile.LegacySubscription, len(docs))
	for i, d := range docs {
		subs[i] = reconcile.LegacySubscription{
			ID:               d.ID,
			BillingAccountID: d.BillingAccountID,
			TierID:           d.TierID,
			Status:           d.Status,
			StartedAt:        d.StartedAt,
			CanceledAt:       d.CanceledAt,
			CurrentPeriodEnd: d.CurrentPeriodEnd,
			CreatedAt:        d.CreatedAt,
			UpdatedAt:        d.UpdatedAt,
		}
	}
	return subs, nil
}

// Workspaces reads every workspace document
func (s *Store) Workspaces(ctx context.Context) ([]reconcile.LegacyWorkspace, error) {
	docs, err := findAll[workspaceDoc](ctx, s.db, collWorkspaces)
	if err != nil {
		return nil, err
	}
	workspaces := make([]reconcile.LegacyWorkspace, len(docs))
	for i, d := range docs {
		workspaces[i] = reconcile.LegacyWorkspace{
			ID:               d.ID,
			Name:             d.Name,
			OwnerUserID:      d.OwnerUserID,
			BillingAccountID: d.BillingAccountID,
			CreatedAt:        d.CreatedAt,
			UpdatedAt:        d.UpdatedAt,
		}
	}
	return workspaces, nil
}

// WorkspaceMembers reads every membership document
func (s *Store) WorkspaceMembers(ctx context.Context) ([]reconcile.LegacyWorkspaceMember, error) {
	docs, err := findAll[workspaceMemberDoc](ctx, s.db, collWorkspaceMembers)
	if err != nil {
		return nil, err
	}
	members := make([]reconcile.LegacyWorkspaceMember, len(docs))
	for i, d := range docs {
		members[i] = reconcile.LegacyWorkspaceMember{
			ID:          d.ID,
			WorkspaceID: d.WorkspaceID,
			UserID:      d.UserID,
			Role:        d.Role,
			CreatedAt:   d.CreatedAt,
			UpdatedAt:   d.UpdatedAt,
		}
	}
	return members, nil
}

// UsageCounters reads every usage counter document
func (s *Store) UsageCounters(ctx context.Context) ([]reconcile.LegacyUsageCounter, error) {
	docs, err := findAll[usageCounterDoc](ctx, s.db, collUsageCounters)
	if err != nil {
		return nil, err
	}
	counters := make([]reconcile.LegacyUsageCounter, len(docs))
	for i, d := range docs {
		counters[i] = reconcile.LegacyUsageCounter{
			ID:          d.ID,
			UserID:      d.UserID,
			Resource:    d.Resource,
			PeriodStart: d.PeriodStart,
			PeriodEnd:   d.PeriodEnd,
			Count:       d.Count,
			TierID:      d.TierID,
			WorkspaceID: d.WorkspaceID,
			CreatedAt:   d.CreatedAt,
			UpdatedAt:   d.UpdatedAt,
		}
	}
	return counters, nil
}

// Reset drops every reconciled collection inside one session
// transaction, so the factory reset is all-or-nothing on the legacy
// side too. Requires the legacy deployment to be a replica set.
func (s *Store) Reset(ctx context.Context) error {
	session, err := s.client.StartSession()
	if err != nil {
		return fmt.Errorf("failed to start legacy session: %w", err)
	}
	defer session.EndSession(ctx)

	collections := []string{
		collWorkspaceMembers,
		collWorkspaces,
		collSubscriptions,
		collUsageCounters,
		collBillingAccounts,
		collTiers,
		collUsers,
	}

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (any, error) {
		for _, coll := range collections {
			if _, err := s.db.Collection(coll).DeleteMany(sc, bson.D{}); err != nil {
				return nil, fmt.Errorf("failed to clear legacy %s: %w", coll, err)
			}
		}
		return nil, nil
	})
	return err
}

// Ensure Store implements both reconciliation interfaces
var (
	_ reconcile.Source   = (*Store)(nil)
	_ reconcile.Resetter = (*Store)(nil)
)
