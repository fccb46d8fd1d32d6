package identity

import (
	"context"
	"errors"

	"github.com/dmflow/backend/internal/domain/billing"
	"github.com/dmflow/backend/internal/domain/identity"
	"github.com/dmflow/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TierInvalidator drops cached tier resolutions after user writes that
// change resolution inputs
type TierInvalidator interface {
	InvalidateUser(ctx context.Context, userID uuid.UUID)
}

// UserService manages account registration and the per-user billing
// attributes (direct tier, overrides) that feed tier resolution.
type UserService struct {
	userRepo    identity.UserRepository
	tierRepo    billing.TierRepository
	invalidator TierInvalidator // nil disables invalidation
	logger      *zap.Logger
}

// NewUserService creates a new UserService
func NewUserService(
	userRepo identity.UserRepository,
	tierRepo billing.TierRepository,
	invalidator TierInvalidator,
	logger *zap.Logger,
) *UserService {
	return &UserService{
		userRepo:    userRepo,
		tierRepo:    tierRepo,
		invalidator: invalidator,
		logger:      logger,
	}
}

// Register creates a user account. Emails are unique case-insensitively.
func (s *UserService) Register(ctx context.Context, email, password, displayName string) (*identity.User, error) {
	user, err := identity.NewUser(email, password)
	if err != nil {
		return nil, err
	}
	if err := user.SetDisplayName(displayName); err != nil {
		return nil, err
	}

	if _, err := s.userRepo.FindByEmail(ctx, user.Email); err == nil {
		return nil, shared.NewDomainError("EMAIL_TAKEN", "An account with this email already exists")
	} else if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("User registered",
		zap.String("user_id", user.ID.String()),
		zap.String("email", user.Email))
	return user, nil
}

// Authenticate verifies credentials and returns the user. The same
// error is returned for an unknown email and a wrong password.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*identity.User, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if errors.Is(err, shared.ErrNotFound) {
		return nil, shared.NewDomainError("INVALID_CREDENTIALS", "Invalid email or password")
	}
	if err != nil {
		return nil, err
	}
	if !user.VerifyPassword(password) {
		return nil, shared.NewDomainError("INVALID_CREDENTIALS", "Invalid email or password")
	}
	return user, nil
}

// GetByID returns a user by id
func (s *UserService) GetByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	return s.userRepo.FindByID(ctx, id)
}

// AssignTier sets a user's directly assigned tier. Operator action.
func (s *UserService) AssignTier(ctx context.Context, userID, tierID uuid.UUID) error {
	if _, err := s.tierRepo.FindByID(ctx, tierID); err != nil {
		return err
	}
	if err := s.userRepo.AssignTier(ctx, userID, tierID); err != nil {
		return err
	}
	s.invalidate(ctx, userID)
	s.logger.Info("Tier assigned",
		zap.String("user_id", userID.String()),
		zap.String("tier_id", tierID.String()))
	return nil
}

// SetOverrides replaces a user's per-user limit overrides. Operator action.
func (s *UserService) SetOverrides(ctx context.Context, userID uuid.UUID, overrides billing.Limits) error {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	user.SetOverrides(overrides)
	if err := s.userRepo.Update(ctx, user); err != nil {
		return err
	}
	s.invalidate(ctx, userID)
	return nil
}

// AttachBillingAccount links a user to a paying entity, switching their
// tier resolution to the billing rule
func (s *UserService) AttachBillingAccount(ctx context.Context, userID, accountID uuid.UUID) error {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	user.AttachBillingAccount(accountID)
	if err := s.userRepo.Update(ctx, user); err != nil {
		return err
	}
	s.invalidate(ctx, userID)
	return nil
}

func (s *UserService) invalidate(ctx context.Context, userID uuid.UUID) {
	if s.invalidator != nil {
		s.invalidator.InvalidateUser(ctx, userID)
	}
}
