package billing

import (
	"time"

	"github.com/dmflow/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// UsageCounter records consumption of one resource by one user within
// one usage window. Rows are created lazily on first increment and are
// only ever mutated through the repository's atomic increments.
type UsageCounter struct {
	shared.BaseEntity
	UserID      uuid.UUID
	Resource    Resource
	PeriodStart time.Time
	PeriodEnd   time.Time
	Count       int64
	TierID      *uuid.UUID // tier in effect at increment time, for audit
	WorkspaceID *uuid.UUID // workspace the usage was attributed to, if any
	LegacyID    string
}

// NewUsageCounter creates a counter carrying the first increment for a window
func NewUsageCounter(userID uuid.UUID, resource Resource, periodStart, periodEnd time.Time, count int64) (*UsageCounter, error) {
	if userID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "User ID cannot be empty")
	}
	if !resource.IsValid() {
		return nil, shared.NewDomainError("INVALID_RESOURCE", "Invalid resource kind")
	}
	if count <= 0 {
		return nil, shared.NewDomainError("INVALID_INCREMENT", "Increment must be positive")
	}
	if !periodEnd.After(periodStart) {
		return nil, shared.NewDomainError("INVALID_PERIOD", "Period end must be after period start")
	}

	return &UsageCounter{
		BaseEntity:  shared.NewBaseEntity(),
		UserID:      userID,
		Resource:    resource,
		PeriodStart: periodStart,
		PeriodEnd:   periodEnd,
		Count:       count,
	}, nil
}

// CurrentWindow computes the usage window containing now for a
// fixed-length period of windowDays days. The window is anchored so that
// periodStart is today truncated to midnight minus (windowDays-1) days;
// every counter written on the same calendar day therefore shares the
// same periodStart, which is the grouping key.
func CurrentWindow(now time.Time, windowDays int) (start, end time.Time) {
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	start = midnight.AddDate(0, 0, -(windowDays - 1))
	end = start.AddDate(0, 0, windowDays)
	return start, end
}
