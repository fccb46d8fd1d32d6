package identity

import (
	"context"

	"github.com/google/uuid"
)

// UserRepository defines persistence for users
type UserRepository interface {
	// Save inserts a new user
	Save(ctx context.Context, user *User) error

	// Update persists changes to an existing user
	Update(ctx context.Context, user *User) error

	// FindByID returns the user or shared.ErrNotFound
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)

	// FindByEmail looks the user up case-insensitively
	FindByEmail(ctx context.Context, email string) (*User, error)

	// FindByIDs returns the users matching the given ids
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*User, error)

	// AssignTier sets only the user's tier_id column. Used by tier
	// resolution to persist the default-tier side effect without
	// clobbering concurrent changes to other fields.
	AssignTier(ctx context.Context, userID, tierID uuid.UUID) error

	// CountByTier returns how many users directly reference the tier
	CountByTier(ctx context.Context, tierID uuid.UUID) (int64, error)
}
