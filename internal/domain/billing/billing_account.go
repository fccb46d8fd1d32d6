package billing

import (
	"context"
	"strings"
	"time"

	"github.com/dmflow/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// BillingAccountStatus represents the status of a billing account
type BillingAccountStatus string

const (
	BillingAccountStatusActive   BillingAccountStatus = "active"
	BillingAccountStatusInactive BillingAccountStatus = "inactive"
)

// BillingAccount is the paying entity. A workspace or user may reference
// it; it holds at most one active subscription at a time.
type BillingAccount struct {
	shared.BaseEntity
	OwnerUserID uuid.UUID
	Name        string
	Status      BillingAccountStatus
	LegacyID    string
}

// NewBillingAccount creates an active billing account owned by a user
func NewBillingAccount(ownerUserID uuid.UUID, name string) (*BillingAccount, error) {
	if ownerUserID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_OWNER", "Billing account owner cannot be empty")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_ACCOUNT_NAME", "Billing account name cannot be empty")
	}

	return &BillingAccount{
		BaseEntity:  shared.NewBaseEntity(),
		OwnerUserID: ownerUserID,
		Name:        name,
		Status:      BillingAccountStatusActive,
	}, nil
}

// IsActive returns true if the account is active
func (a *BillingAccount) IsActive() bool {
	return a.Status == BillingAccountStatusActive
}

// Deactivate marks the account inactive
func (a *BillingAccount) Deactivate() {
	a.Status = BillingAccountStatusInactive
	a.UpdatedAt = time.Now()
}

// BillingAccountRepository defines persistence for billing accounts
type BillingAccountRepository interface {
	Save(ctx context.Context, account *BillingAccount) error
	Update(ctx context.Context, account *BillingAccount) error
	FindByID(ctx context.Context, id uuid.UUID) (*BillingAccount, error)
	FindByOwner(ctx context.Context, ownerUserID uuid.UUID) ([]*BillingAccount, error)
}
