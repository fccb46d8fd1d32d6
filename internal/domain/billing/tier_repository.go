package billing

import (
	"context"

	"github.com/dmflow/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// TierFilter narrows tier listings
type TierFilter struct {
	shared.Filter
	Name   string
	Status TierStatus
}

// TierRepository defines persistence for tiers
type TierRepository interface {
	// Save inserts a new tier
	Save(ctx context.Context, tier *Tier) error

	// Update persists changes to an existing tier
	Update(ctx context.Context, tier *Tier) error

	// SaveAsDefault upserts the tier with IsDefault set and, in the same
	// transaction, clears the default flag on every other tier with a
	// single statement so two defaults are never visible.
	SaveAsDefault(ctx context.Context, tier *Tier) error

	// FindByID returns the tier or shared.ErrNotFound
	FindByID(ctx context.Context, id uuid.UUID) (*Tier, error)

	// FindByName returns the tier with the given name or shared.ErrNotFound
	FindByName(ctx context.Context, name string) (*Tier, error)

	// FindByIDs returns the tiers matching the given ids, in no particular order
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*Tier, error)

	// FindAll returns a page of tiers matching the filter plus the total count
	FindAll(ctx context.Context, filter TierFilter) ([]*Tier, int64, error)

	// FindDefaultActive returns the active tier carrying the default flag,
	// or shared.ErrNotFound when none is marked
	FindDefaultActive(ctx context.Context) (*Tier, error)

	// FindFirstActive returns the oldest active tier, used as a fallback
	// when no default is marked
	FindFirstActive(ctx context.Context) (*Tier, error)

	// Delete removes the tier. Returns shared.ErrNotFound when absent.
	Delete(ctx context.Context, id uuid.UUID) error
}
