package billing

import (
	"context"
	"errors"
	"time"

	"github.com/dmflow/backend/internal/domain/billing"
	"github.com/dmflow/backend/internal/domain/identity"
	"github.com/dmflow/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// UsageCheckResult reports the outcome of a quota check or consumption
type UsageCheckResult struct {
	Resource    billing.Resource `json:"resource"`
	Allowed     bool             `json:"allowed"`
	Current     int64            `json:"current"`
	Limit       int64            `json:"limit"` // -1 when unlimited
	Unlimited   bool             `json:"unlimited"`
	PeriodStart time.Time        `json:"periodStart"`
	PeriodEnd   time.Time        `json:"periodEnd"`
}

// Remaining returns how many units are left in the window, or -1 when
// the resource is unlimited
func (r *UsageCheckResult) Remaining() int64 {
	if r.Unlimited {
		return -1
	}
	if r.Current >= r.Limit {
		return 0
	}
	return r.Limit - r.Current
}

// UsageSummary aggregates a user's consumption for the current window
type UsageSummary struct {
	UserID      uuid.UUID                              `json:"userId"`
	TierName    string                                 `json:"tierName"`
	PeriodStart time.Time                              `json:"periodStart"`
	PeriodEnd   time.Time                              `json:"periodEnd"`
	Resources   map[billing.Resource]*UsageCheckResult `json:"resources"`
}

// QuotaService enforces tier limits. Metered resources are consumed
// through a single conditional increment at the storage layer, so a
// burst of concurrent requests can never jointly exceed a ceiling.
type QuotaService struct {
	resolution    *TierResolutionService
	counterRepo   billing.UsageCounterRepository
	workspaceRepo identity.WorkspaceRepository
	windowDays    int
	now           func() time.Time
	logger        *zap.Logger
}

// NewQuotaService creates a new QuotaService. windowDays is the length
// of the rolling usage window and must be positive.
func NewQuotaService(
	resolution *TierResolutionService,
	counterRepo billing.UsageCounterRepository,
	workspaceRepo identity.WorkspaceRepository,
	windowDays int,
	logger *zap.Logger,
) *QuotaService {
	return &QuotaService{
		resolution:    resolution,
		counterRepo:   counterRepo,
		workspaceRepo: workspaceRepo,
		windowDays:    windowDays,
		now:           time.Now,
		logger:        logger,
	}
}

// ConsumeUsage records amount units of a metered resource for the user,
// but only if the user's effective limit allows it. The returned result
// carries the post-consumption count on success, or the untouched
// current count on denial.
func (s *QuotaService) ConsumeUsage(ctx context.Context, userID uuid.UUID, resource billing.Resource, amount int64, workspaceID *uuid.UUID) (*UsageCheckResult, error) {
	resolved, err := s.resolution.GetTierForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	start, end := billing.CurrentWindow(s.now(), s.windowDays)
	counter, err := billing.NewUsageCounter(userID, resource, start, end, amount)
	if err != nil {
		return nil, err
	}
	counter.TierID = &resolved.Tier.ID
	counter.WorkspaceID = workspaceID

	result := &UsageCheckResult{
		Resource:    resource,
		PeriodStart: start,
		PeriodEnd:   end,
	}

	limit := resolved.Limits.LimitFor(resource)
	if limit == nil {
		// No ceiling configured: allow without writing the counter
		existing, err := s.counterRepo.Get(ctx, userID, resource, start)
		if err != nil && !errors.Is(err, shared.ErrNotFound) {
			return nil, err
		}
		result.Allowed = true
		result.Unlimited = true
		result.Limit = -1
		if existing != nil {
			result.Current = existing.Count
		}
		return result, nil
	}

	result.Limit = *limit
	count, ok, err := s.counterRepo.IncrementWithinLimit(ctx, counter, *limit)
	if err != nil {
		return nil, err
	}
	result.Current = count
	result.Allowed = ok
	if !ok {
		s.logger.Info("Usage denied",
			zap.String("user_id", userID.String()),
			zap.String("resource", string(resource)),
			zap.Int64("current", count),
			zap.Int64("limit", *limit))
	}
	return result, nil
}

// AssertUsage is ConsumeUsage with an error outcome: it returns
// shared.ErrQuotaExceeded when the consumption was denied
func (s *QuotaService) AssertUsage(ctx context.Context, userID uuid.UUID, resource billing.Resource, amount int64, workspaceID *uuid.UUID) (*UsageCheckResult, error) {
	result, err := s.ConsumeUsage(ctx, userID, resource, amount, workspaceID)
	if err != nil {
		return nil, err
	}
	if !result.Allowed {
		return result, shared.ErrQuotaExceeded
	}
	return result, nil
}

// CheckUsage is the read-only variant: it reports current consumption
// against the limit without consuming anything
func (s *QuotaService) CheckUsage(ctx context.Context, userID uuid.UUID, resource billing.Resource) (*UsageCheckResult, error) {
	resolved, err := s.resolution.GetTierForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	start, end := billing.CurrentWindow(s.now(), s.windowDays)
	result := &UsageCheckResult{
		Resource:    resource,
		PeriodStart: start,
		PeriodEnd:   end,
	}

	counter, err := s.counterRepo.Get(ctx, userID, resource, start)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	if counter != nil {
		result.Current = counter.Count
	}

	limit := resolved.Limits.LimitFor(resource)
	if limit == nil {
		result.Unlimited = true
		result.Limit = -1
		result.Allowed = true
		return result, nil
	}
	result.Limit = *limit
	result.Allowed = result.Current < *limit
	return result, nil
}

// SeatLimit returns the workspace owner's team member ceiling, or -1
// when the owner's tier leaves it unlimited
func (s *QuotaService) SeatLimit(ctx context.Context, ownerUserID uuid.UUID) (int64, error) {
	resolved, err := s.resolution.GetTierForUser(ctx, ownerUserID)
	if err != nil {
		return 0, err
	}
	limit := resolved.Limits.LimitFor(billing.ResourceTeamMembers)
	if limit == nil {
		return -1, nil
	}
	return *limit, nil
}

// AssertWorkspaceCreation fails with shared.ErrQuotaExceeded when the
// user already owns as many workspaces as the tier allows
func (s *QuotaService) AssertWorkspaceCreation(ctx context.Context, ownerUserID uuid.UUID) error {
	resolved, err := s.resolution.GetTierForUser(ctx, ownerUserID)
	if err != nil {
		return err
	}

	limit := resolved.Limits.LimitFor(billing.ResourceWorkspaces)
	if limit == nil {
		return nil
	}

	owned, err := s.workspaceRepo.CountByOwner(ctx, ownerUserID)
	if err != nil {
		return err
	}
	if owned >= *limit {
		s.logger.Info("Workspace creation denied",
			zap.String("user_id", ownerUserID.String()),
			zap.Int64("owned", owned),
			zap.Int64("limit", *limit))
		return shared.ErrQuotaExceeded
	}
	return nil
}

// CheckFeature reports whether the user's effective tier includes a
// boolean feature. Features absent from the limits are allowed.
func (s *QuotaService) CheckFeature(ctx context.Context, userID uuid.UUID, feature billing.Feature) (bool, error) {
	resolved, err := s.resolution.GetTierForUser(ctx, userID)
	if err != nil {
		return false, err
	}
	return resolved.Limits.FeatureAllowed(feature), nil
}

// AssertWorkspaceFeature fails with shared.ErrFeatureNotAvailable when
// the workspace's effective tier (its owner's tier) excludes the feature
func (s *QuotaService) AssertWorkspaceFeature(ctx context.Context, workspaceID uuid.UUID, feature billing.Feature) error {
	wt, err := s.resolution.GetTierForWorkspace(ctx, workspaceID)
	if err != nil {
		return err
	}
	if !wt.Limits.FeatureAllowed(feature) {
		return shared.ErrFeatureNotAvailable
	}
	return nil
}

// GetUsageSummary reports the user's consumption of every metered
// resource with a ceiling in the current window
func (s *QuotaService) GetUsageSummary(ctx context.Context, userID uuid.UUID) (*UsageSummary, error) {
	resolved, err := s.resolution.GetTierForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	start, end := billing.CurrentWindow(s.now(), s.windowDays)
	counters, err := s.counterRepo.ListForUser(ctx, userID, start)
	if err != nil {
		return nil, err
	}
	counts := make(map[billing.Resource]int64, len(counters))
	for _, c := range counters {
		counts[c.Resource] = c.Count
	}

	summary := &UsageSummary{
		UserID:      userID,
		TierName:    resolved.Tier.Name,
		PeriodStart: start,
		PeriodEnd:   end,
		Resources:   make(map[billing.Resource]*UsageCheckResult),
	}
	for _, resource := range billing.AllResources() {
		result := &UsageCheckResult{
			Resource:    resource,
			PeriodStart: start,
			PeriodEnd:   end,
			Current:     counts[resource],
		}
		if limit := resolved.Limits.LimitFor(resource); limit != nil {
			result.Limit = *limit
			result.Allowed = result.Current < *limit
		} else {
			result.Unlimited = true
			result.Limit = -1
			result.Allowed = true
		}
		summary.Resources[resource] = result
	}
	return summary, nil
}
