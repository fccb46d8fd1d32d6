package billing

import (
	"context"
	"errors"

	"github.com/dmflow/backend/internal/domain/billing"
	"github.com/dmflow/backend/internal/domain/identity"
	"github.com/dmflow/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TierSource records which rule of the resolution chain produced the tier
type TierSource string

const (
	TierSourceBilling TierSource = "billing_subscription"
	TierSourceDirect  TierSource = "direct_assignment"
	TierSourceDefault TierSource = "catalog_default"
)

// ResolvedTier is the outcome of tier resolution for a user: the tier
// itself plus its limits with the user's per-user overrides merged in.
type ResolvedTier struct {
	Tier   *billing.Tier  `json:"tier"`
	Limits billing.Limits `json:"limits"`
	Source TierSource     `json:"source"`
}

// WorkspaceTier is a workspace's effective tier: billing-derived when
// the workspace carries its own billing account, otherwise the resolved
// tier of its owner.
type WorkspaceTier struct {
	ResolvedTier
	WorkspaceID      uuid.UUID  `json:"workspaceId"`
	OwnerUserID      uuid.UUID  `json:"ownerUserId"`
	BillingAccountID *uuid.UUID `json:"billingAccountId,omitempty"`
}

// TierCache caches resolution results. All methods are best effort;
// callers log failures and carry on against the database.
type TierCache interface {
	// GetUserTier returns the cached resolution for the user, or nil on miss
	GetUserTier(ctx context.Context, userID uuid.UUID) (*ResolvedTier, error)

	// SetUserTier stores a resolution result
	SetUserTier(ctx context.Context, userID uuid.UUID, resolved *ResolvedTier) error

	// InvalidateUser drops the cached resolution for one user
	InvalidateUser(ctx context.Context, userID uuid.UUID) error

	// Flush drops every cached resolution, used after catalog or
	// subscription writes that can affect arbitrary users
	Flush(ctx context.Context) error
}

// TierResolutionService computes the effective tier for users and
// workspaces. Resolution order: active billing subscription, then the
// user's directly assigned tier, then the catalog default. Inactive or
// missing tiers at any step fall through to the next one, and a default
// resolution is written back to the user so later lookups are direct.
type TierResolutionService struct {
	userRepo      identity.UserRepository
	workspaceRepo identity.WorkspaceRepository
	tierRepo      billing.TierRepository
	subRepo       billing.SubscriptionRepository
	cache         TierCache // nil disables caching
	logger        *zap.Logger
}

// NewTierResolutionService creates a new TierResolutionService
func NewTierResolutionService(
	userRepo identity.UserRepository,
	workspaceRepo identity.WorkspaceRepository,
	tierRepo billing.TierRepository,
	subRepo billing.SubscriptionRepository,
	cache TierCache,
	logger *zap.Logger,
) *TierResolutionService {
	return &TierResolutionService{
		userRepo:      userRepo,
		workspaceRepo: workspaceRepo,
		tierRepo:      tierRepo,
		subRepo:       subRepo,
		cache:         cache,
		logger:        logger,
	}
}

// GetTierForUser resolves the user's effective tier and merged limits
func (s *TierResolutionService) GetTierForUser(ctx context.Context, userID uuid.UUID) (*ResolvedTier, error) {
	if s.cache != nil {
		cached, err := s.cache.GetUserTier(ctx, userID)
		if err != nil {
			s.logger.Warn("Tier cache read failed", zap.Error(err))
		} else if cached != nil {
			return cached, nil
		}
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	tier, source, err := s.resolveTier(ctx, user)
	if err != nil {
		return nil, err
	}

	resolved := &ResolvedTier{
		Tier:   tier,
		Limits: tier.Limits.Merge(user.TierLimitOverrides),
		Source: source,
	}

	if s.cache != nil {
		if err := s.cache.SetUserTier(ctx, userID, resolved); err != nil {
			s.logger.Warn("Tier cache write failed", zap.Error(err))
		}
	}
	return resolved, nil
}

// GetTierForWorkspace resolves a workspace's effective tier. A workspace
// with its own billing account takes the tier of that account's active
// subscription; only without one (or when the subscription's tier is
// missing or inactive) does it fall back to the owner's resolved tier.
func (s *TierResolutionService) GetTierForWorkspace(ctx context.Context, workspaceID uuid.UUID) (*WorkspaceTier, error) {
	workspace, err := s.workspaceRepo.FindByID(ctx, workspaceID)
	if err != nil {
		return nil, err
	}

	wt := &WorkspaceTier{
		WorkspaceID:      workspace.ID,
		OwnerUserID:      workspace.OwnerUserID,
		BillingAccountID: workspace.BillingAccountID,
	}

	if workspace.BillingAccountID != nil {
		tier, err := s.subscribedTier(ctx, *workspace.BillingAccountID)
		if err != nil {
			return nil, err
		}
		if tier != nil {
			wt.ResolvedTier = ResolvedTier{Tier: tier, Limits: tier.Limits, Source: TierSourceBilling}
			return wt, nil
		}
	}

	resolved, err := s.GetTierForUser(ctx, workspace.OwnerUserID)
	if err != nil {
		return nil, err
	}
	wt.ResolvedTier = *resolved
	return wt, nil
}

// AssignTierFromOwner propagates the workspace's effective tier onto its
// owner and onto a joining member. Users who already have a direct tier
// assignment keep it.
func (s *TierResolutionService) AssignTierFromOwner(ctx context.Context, workspaceID, memberUserID uuid.UUID) error {
	wt, err := s.GetTierForWorkspace(ctx, workspaceID)
	if err != nil {
		return err
	}

	for _, userID := range []uuid.UUID{wt.OwnerUserID, memberUserID} {
		assigned, err := s.assignTierIfUnset(ctx, userID, wt.Tier.ID)
		if err != nil {
			return err
		}
		if assigned {
			s.logger.Info("Workspace tier propagated",
				zap.String("user_id", userID.String()),
				zap.String("workspace_id", workspaceID.String()),
				zap.String("tier", wt.Tier.Name))
		}
	}
	return nil
}

// InvalidateUser drops any cached resolution for the user. Call after
// writes that change the user's tier, overrides, or billing account.
func (s *TierResolutionService) InvalidateUser(ctx context.Context, userID uuid.UUID) {
	s.invalidateUser(ctx, userID)
}

func (s *TierResolutionService) resolveTier(ctx context.Context, user *identity.User) (*billing.Tier, TierSource, error) {
	if user.BillingAccountID != nil {
		tier, err := s.subscribedTier(ctx, *user.BillingAccountID)
		if err != nil {
			return nil, "", err
		}
		if tier != nil {
			return tier, TierSourceBilling, nil
		}
	}

	if user.TierID != nil {
		tier, err := s.findActiveTier(ctx, *user.TierID)
		if err != nil {
			return nil, "", err
		}
		if tier != nil {
			return tier, TierSourceDirect, nil
		}
	}

	tier, err := s.defaultTier(ctx)
	if err != nil {
		return nil, "", err
	}

	// Persist the default so the next resolution short-circuits to the
	// direct rule. Best effort: resolution still succeeds if this fails.
	if err := s.userRepo.AssignTier(ctx, user.ID, tier.ID); err != nil {
		s.logger.Warn("Failed to persist default tier assignment",
			zap.String("user_id", user.ID.String()), zap.Error(err))
	}
	return tier, TierSourceDefault, nil
}

// subscribedTier returns the active tier behind a billing account's
// active subscription, or nil when no usable subscription or tier exists
func (s *TierResolutionService) subscribedTier(ctx context.Context, billingAccountID uuid.UUID) (*billing.Tier, error) {
	sub, err := s.subRepo.FindActiveByBillingAccount(ctx, billingAccountID)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	if sub == nil {
		return nil, nil
	}
	return s.findActiveTier(ctx, sub.TierID)
}

// assignTierIfUnset assigns the tier only when the user has no direct
// assignment yet, reporting whether a write happened
func (s *TierResolutionService) assignTierIfUnset(ctx context.Context, userID, tierID uuid.UUID) (bool, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return false, err
	}
	if user.TierID != nil {
		return false, nil
	}
	if err := s.userRepo.AssignTier(ctx, userID, tierID); err != nil {
		return false, err
	}
	s.invalidateUser(ctx, userID)
	return true, nil
}

// findActiveTier returns the tier when it exists and is active, nil when
// it is missing or inactive so resolution falls through
func (s *TierResolutionService) findActiveTier(ctx context.Context, tierID uuid.UUID) (*billing.Tier, error) {
	tier, err := s.tierRepo.FindByID(ctx, tierID)
	if errors.Is(err, shared.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if tier.Status != billing.TierStatusActive {
		return nil, nil
	}
	return tier, nil
}

func (s *TierResolutionService) defaultTier(ctx context.Context) (*billing.Tier, error) {
	tier, err := s.tierRepo.FindDefaultActive(ctx)
	if err == nil {
		return tier, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	tier, err = s.tierRepo.FindFirstActive(ctx)
	if errors.Is(err, shared.ErrNotFound) {
		return nil, shared.NewDomainError("NO_TIER_AVAILABLE", "No active tier exists in the catalog")
	}
	if err != nil {
		return nil, err
	}
	return tier, nil
}

func (s *TierResolutionService) invalidateUser(ctx context.Context, userID uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateUser(ctx, userID); err != nil {
		s.logger.Warn("Tier cache invalidation failed",
			zap.String("user_id", userID.String()), zap.Error(err))
	}
}
