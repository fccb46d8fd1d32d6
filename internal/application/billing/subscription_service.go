package billing

import (
	"context"
	"errors"
	"time"

	"github.com/dmflow/backend/internal/domain/billing"
	"github.com/dmflow/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SubscriptionService manages billing accounts and their subscriptions.
// Activating a subscription cancels any prior active ones for the same
// account, so at most one subscription per account is ever active.
type SubscriptionService struct {
	subRepo     billing.SubscriptionRepository
	accountRepo billing.BillingAccountRepository
	tierRepo    billing.TierRepository
	cache       TierCache // nil disables caching
	logger      *zap.Logger
}

// NewSubscriptionService creates a new SubscriptionService
func NewSubscriptionService(
	subRepo billing.SubscriptionRepository,
	accountRepo billing.BillingAccountRepository,
	tierRepo billing.TierRepository,
	cache TierCache,
	logger *zap.Logger,
) *SubscriptionService {
	return &SubscriptionService{
		subRepo:     subRepo,
		accountRepo: accountRepo,
		tierRepo:    tierRepo,
		cache:       cache,
		logger:      logger,
	}
}

// CreateBillingAccount creates a billing account owned by a user
func (s *SubscriptionService) CreateBillingAccount(ctx context.Context, ownerUserID uuid.UUID, name string) (*billing.BillingAccount, error) {
	account, err := billing.NewBillingAccount(ownerUserID, name)
	if err != nil {
		return nil, err
	}
	if err := s.accountRepo.Save(ctx, account); err != nil {
		return nil, err
	}

	s.logger.Info("Billing account created",
		zap.String("account_id", account.ID.String()),
		zap.String("owner_user_id", ownerUserID.String()))
	return account, nil
}

// GetBillingAccount returns a billing account by id
func (s *SubscriptionService) GetBillingAccount(ctx context.Context, id uuid.UUID) (*billing.BillingAccount, error) {
	return s.accountRepo.FindByID(ctx, id)
}

// SubscriptionInput carries the fields needed to activate a subscription
type SubscriptionInput struct {
	BillingAccountID uuid.UUID
	TierID           uuid.UUID
	CurrentPeriodEnd *time.Time
}

// CreateSubscription activates a subscription for the account on the
// given tier. Prior active subscriptions are canceled first, so the
// one-active-subscription invariant holds at every point in time.
func (s *SubscriptionService) CreateSubscription(ctx context.Context, input SubscriptionInput) (*billing.Subscription, error) {
	account, err := s.accountRepo.FindByID(ctx, input.BillingAccountID)
	if err != nil {
		return nil, err
	}
	if !account.IsActive() {
		return nil, shared.NewDomainError("BILLING_ACCOUNT_INACTIVE", "Cannot subscribe an inactive billing account")
	}

	tier, err := s.tierRepo.FindByID(ctx, input.TierID)
	if err != nil {
		return nil, err
	}
	if tier.Status != billing.TierStatusActive {
		return nil, shared.NewDomainError("TIER_NOT_ACTIVE", "Cannot subscribe to an inactive tier")
	}

	canceled, err := s.subRepo.CancelActiveForAccount(ctx, account.ID, nil)
	if err != nil {
		return nil, err
	}

	sub, err := billing.NewSubscription(account.ID, tier.ID)
	if err != nil {
		return nil, err
	}
	sub.CurrentPeriodEnd = input.CurrentPeriodEnd
	if err := s.subRepo.Save(ctx, sub); err != nil {
		return nil, err
	}

	s.flushCache(ctx)
	s.logger.Info("Subscription activated",
		zap.String("subscription_id", sub.ID.String()),
		zap.String("account_id", account.ID.String()),
		zap.String("tier", tier.Name),
		zap.Int64("prior_canceled", canceled))
	return sub, nil
}

// CancelActiveSubscriptions cancels every active subscription for the
// account and returns how many were canceled
func (s *SubscriptionService) CancelActiveSubscriptions(ctx context.Context, billingAccountID uuid.UUID) (int64, error) {
	canceled, err := s.subRepo.CancelActiveForAccount(ctx, billingAccountID, nil)
	if err != nil {
		return 0, err
	}
	if canceled > 0 {
		s.flushCache(ctx)
		s.logger.Info("Subscriptions canceled",
			zap.String("account_id", billingAccountID.String()),
			zap.Int64("count", canceled))
	}
	return canceled, nil
}

// GetActiveSubscription returns the account's active subscription, or
// nil when the account has none
func (s *SubscriptionService) GetActiveSubscription(ctx context.Context, billingAccountID uuid.UUID) (*billing.Subscription, error) {
	sub, err := s.subRepo.FindActiveByBillingAccount(ctx, billingAccountID)
	if errors.Is(err, shared.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return sub, nil
}

// ListSubscriptions returns the account's subscription history, newest first
func (s *SubscriptionService) ListSubscriptions(ctx context.Context, billingAccountID uuid.UUID) ([]*billing.Subscription, error) {
	return s.subRepo.FindByBillingAccount(ctx, billingAccountID)
}

func (s *SubscriptionService) flushCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Flush(ctx); err != nil {
		s.logger.Warn("Failed to flush tier cache", zap.Error(err))
	}
}
