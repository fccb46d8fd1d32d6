package billing

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// UsageCounterRepository defines persistence for usage counters.
//
// Increments must execute as single atomic statements at the storage
// layer, never as read-then-write, because concurrent requests for the
// same (user, resource, periodStart) key are expected.
type UsageCounterRepository interface {
	// Get returns the counter for the key, or shared.ErrNotFound when no
	// usage has been recorded in the window yet
	Get(ctx context.Context, userID uuid.UUID, resource Resource, periodStart time.Time) (*UsageCounter, error)

	// Increment atomically inserts the counter or adds counter.Count to
	// the existing row's count, returning the post-increment count.
	Increment(ctx context.Context, counter *UsageCounter) (int64, error)

	// IncrementWithinLimit is the bounded variant: the insert-or-add only
	// commits when the resulting count stays within limit. Returns the
	// post-increment count and true when the increment was accepted, or
	// the (unchanged) current count and false when it would exceed the
	// limit. The check and the increment are one conditional statement, so
	// concurrent callers can never jointly exceed the ceiling.
	IncrementWithinLimit(ctx context.Context, counter *UsageCounter, limit int64) (int64, bool, error)

	// ListForUser returns all counters for the user in the window starting
	// at periodStart
	ListForUser(ctx context.Context, userID uuid.UUID, periodStart time.Time) ([]*UsageCounter, error)
}
