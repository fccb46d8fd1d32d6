package reconcile

import (
	"context"
	"time"

	"github.com/dmflow/backend/internal/domain/billing"
)

// Source reads the legacy document store. Identifiers are opaque
// strings in the legacy format; nothing here assumes they parse as
// anything else.
type Source interface {
	Tiers(ctx context.Context) ([]LegacyTier, error)
	BillingAccounts(ctx context.Context) ([]LegacyBillingAccount, error)
	Users(ctx context.Context) ([]LegacyUser, error)
	Subscriptions(ctx context.Context) ([]LegacySubscription, error)
	Workspaces(ctx context.Context) ([]LegacyWorkspace, error)
	WorkspaceMembers(ctx context.Context) ([]LegacyWorkspaceMember, error)
	UsageCounters(ctx context.Context) ([]LegacyUsageCounter, error)
}

// Resetter is implemented by sources that can wipe the legacy store in
// one transaction, for the factory-reset routine
type Resetter interface {
	Reset(ctx context.Context) error
}

// LegacyTier is a tier document as stored in the legacy system
type LegacyTier struct {
	ID          string
	Name        string
	Description string
	Limits      billing.Limits
	IsDefault   bool
	IsCustom    bool
	Status      string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// LegacyBillingAccount is a billing account document
type LegacyBillingAccount struct {
	ID          string
	OwnerUserID string
	Name        string
	Status      string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// LegacyUser is a user document
type LegacyUser struct {
	ID                 string
	Email              string
	PasswordHash       string
	DisplayName        string
	Role               string
	TierID             string
	TierLimitOverrides billing.Limits
	BillingAccountID   string
	DefaultWorkspaceID string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// LegacySubscription is a subscription document
type LegacySubscription struct {
	ID               string
	BillingAccountID string
	TierID           string
	Status           string
	StartedAt        time.Time
	CanceledAt       *time.Time
	CurrentPeriodEnd *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// LegacyWorkspace is a workspace document
type LegacyWorkspace struct {
	ID               string
	Name             string
	OwnerUserID      string
	BillingAccountID string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// LegacyWorkspaceMember is a membership document
type LegacyWorkspaceMember struct {
	ID          string
	WorkspaceID string
	UserID      string
	Role        string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// LegacyUsageCounter is a usage counter document
type LegacyUsageCounter struct {
	ID          string
	UserID      string
	Resource    string
	PeriodStart time.Time
	PeriodEnd   time.Time
	Count       int64
	TierID      string
	WorkspaceID string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
