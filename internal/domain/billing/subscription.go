package billing

import (
	"time"

	"github.com/dmflow/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// SubscriptionStatus represents the status of a subscription
type SubscriptionStatus string

const (
	SubscriptionStatusActive   SubscriptionStatus = "active"
	SubscriptionStatusCanceled SubscriptionStatus = "canceled"
	SubscriptionStatusPaused   SubscriptionStatus = "paused"
)

// IsValid returns true if the status is a known value
func (s SubscriptionStatus) IsValid() bool {
	switch s {
	case SubscriptionStatusActive, SubscriptionStatusCanceled, SubscriptionStatusPaused:
		return true
	}
	return false
}

// Subscription ties a billing account to a tier. At most one active
// subscription may exist per billing account at any time; activating a
// new one cancels prior active ones for that account.
type Subscription struct {
	shared.BaseEntity
	BillingAccountID uuid.UUID
	TierID           uuid.UUID
	Status           SubscriptionStatus
	StartedAt        time.Time
	CanceledAt       *time.Time
	CurrentPeriodEnd *time.Time
	LegacyID         string
}

// NewSubscription creates an active subscription starting now
func NewSubscription(billingAccountID, tierID uuid.UUID) (*Subscription, error) {
	if billingAccountID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_BILLING_ACCOUNT", "Billing account ID cannot be empty")
	}
	if tierID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_TIER", "Tier ID cannot be empty")
	}

	return &Subscription{
		BaseEntity:       shared.NewBaseEntity(),
		BillingAccountID: billingAccountID,
		TierID:           tierID,
		Status:           SubscriptionStatusActive,
		StartedAt:        time.Now(),
	}, nil
}

// IsActive returns true if the subscription is active
func (s *Subscription) IsActive() bool {
	return s.Status == SubscriptionStatusActive
}

// Cancel marks the subscription canceled and stamps the cancellation time
func (s *Subscription) Cancel() {
	now := time.Now()
	s.Status = SubscriptionStatusCanceled
	s.CanceledAt = &now
	s.UpdatedAt = now
}

// Pause suspends the subscription without canceling it
func (s *Subscription) Pause() error {
	if s.Status != SubscriptionStatusActive {
		return shared.ErrInvalidState
	}
	s.Status = SubscriptionStatusPaused
	s.UpdatedAt = time.Now()
	return nil
}
