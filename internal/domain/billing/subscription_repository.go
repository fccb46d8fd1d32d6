package billing

import (
	"context"

	"github.com/google/uuid"
)

// SubscriptionRepository defines persistence for subscriptions
type SubscriptionRepository interface {
	// Save inserts a new subscription
	Save(ctx context.Context, sub *Subscription) error

	// Update persists changes to an existing subscription
	Update(ctx context.Context, sub *Subscription) error

	// FindByID returns the subscription or shared.ErrNotFound
	FindByID(ctx context.Context, id uuid.UUID) (*Subscription, error)

	// FindActiveByBillingAccount returns the most recently created active
	// subscription for the account, or shared.ErrNotFound
	FindActiveByBillingAccount(ctx context.Context, billingAccountID uuid.UUID) (*Subscription, error)

	// FindByBillingAccount returns all subscriptions for the account,
	// newest first
	FindByBillingAccount(ctx context.Context, billingAccountID uuid.UUID) ([]*Subscription, error)

	// CancelActiveForAccount cancels every active subscription for the
	// account (optionally excluding one) with a single statement, stamping
	// canceled_at, so two active subscriptions are never visible. Returns
	// the number of subscriptions canceled.
	CancelActiveForAccount(ctx context.Context, billingAccountID uuid.UUID, excludeID *uuid.UUID) (int64, error)
}
