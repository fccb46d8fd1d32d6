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

// TierCatalogService manages the tier catalog: the operator-facing CRUD
// over tier definitions plus idempotent seeding of the baseline tiers.
type TierCatalogService struct {
	tierRepo billing.TierRepository
	userRepo identity.UserRepository
	cache    TierCache // nil disables caching
	logger   *zap.Logger
}

// NewTierCatalogService creates a new TierCatalogService
func NewTierCatalogService(
	tierRepo billing.TierRepository,
	userRepo identity.UserRepository,
	cache TierCache,
	logger *zap.Logger,
) *TierCatalogService {
	return &TierCatalogService{
		tierRepo: tierRepo,
		userRepo: userRepo,
		cache:    cache,
		logger:   logger,
	}
}

// TierInput carries the writable fields of a tier
type TierInput struct {
	Name        string
	Description string
	Limits      billing.Limits
	IsDefault   bool
	IsCustom    bool
	Status      billing.TierStatus // empty means active
}

// Create adds a new tier. When IsDefault is set, the default flag is
// cleared on every other tier in the same operation.
func (s *TierCatalogService) Create(ctx context.Context, input TierInput) (*billing.Tier, error) {
	tier, err := billing.NewTier(input.Name, input.Limits)
	if err != nil {
		return nil, err
	}
	tier.Description = input.Description
	tier.IsCustom = input.IsCustom
	if input.Status != "" {
		if err := tier.SetStatus(input.Status); err != nil {
			return nil, err
		}
	}

	if _, err := s.tierRepo.FindByName(ctx, tier.Name); err == nil {
		return nil, shared.NewDomainError("TIER_NAME_TAKEN", "A tier with this name already exists")
	} else if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	if input.IsDefault {
		tier.MarkDefault()
		err = s.tierRepo.SaveAsDefault(ctx, tier)
	} else {
		err = s.tierRepo.Save(ctx, tier)
	}
	if err != nil {
		return nil, err
	}

	s.flushCache(ctx)
	s.logger.Info("Tier created",
		zap.String("tier_id", tier.ID.String()),
		zap.String("name", tier.Name),
		zap.Bool("is_default", tier.IsDefault))
	return tier, nil
}

// UpdateTierInput carries optional field updates; nil fields are untouched
type UpdateTierInput struct {
	Name        *string
	Description *string
	Limits      *billing.Limits
	IsDefault   *bool
	IsCustom    *bool
	Status      *billing.TierStatus
}

// Update edits an existing tier
func (s *TierCatalogService) Update(ctx context.Context, id uuid.UUID, input UpdateTierInput) (*billing.Tier, error) {
	tier, err := s.tierRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil && *input.Name != tier.Name {
		existing, err := s.tierRepo.FindByName(ctx, *input.Name)
		if err == nil && existing.ID != tier.ID {
			return nil, shared.NewDomainError("TIER_NAME_TAKEN", "A tier with this name already exists")
		} else if err != nil && !errors.Is(err, shared.ErrNotFound) {
			return nil, err
		}
		tier.Name = *input.Name
	}
	if input.Description != nil {
		tier.Description = *input.Description
	}
	if input.Limits != nil {
		tier.SetLimits(*input.Limits)
	}
	if input.IsCustom != nil {
		tier.IsCustom = *input.IsCustom
	}
	if input.Status != nil {
		if err := tier.SetStatus(*input.Status); err != nil {
			return nil, err
		}
	}

	if input.IsDefault != nil && *input.IsDefault {
		tier.MarkDefault()
		err = s.tierRepo.SaveAsDefault(ctx, tier)
	} else {
		if input.IsDefault != nil && !*input.IsDefault {
			tier.ClearDefault()
		}
		err = s.tierRepo.Update(ctx, tier)
	}
	if err != nil {
		return nil, err
	}

	s.flushCache(ctx)
	return tier, nil
}

// Delete removes a tier. The default tier and tiers still referenced by
// users cannot be deleted.
func (s *TierCatalogService) Delete(ctx context.Context, id uuid.UUID) error {
	tier, err := s.tierRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if tier.IsDefault {
		return shared.NewDomainError("DEFAULT_TIER_UNDELETABLE", "Cannot delete the default tier; mark another tier default first")
	}

	users, err := s.userRepo.CountByTier(ctx, id)
	if err != nil {
		return err
	}
	if users > 0 {
		return shared.NewDomainError("TIER_IN_USE", "Cannot delete a tier that users are assigned to")
	}

	if err := s.tierRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.flushCache(ctx)
	s.logger.Info("Tier deleted", zap.String("tier_id", id.String()), zap.String("name", tier.Name))
	return nil
}

// GetByID returns a tier by id
func (s *TierCatalogService) GetByID(ctx context.Context, id uuid.UUID) (*billing.Tier, error) {
	return s.tierRepo.FindByID(ctx, id)
}

// GetByName returns a tier by its unique name
func (s *TierCatalogService) GetByName(ctx context.Context, name string) (*billing.Tier, error) {
	return s.tierRepo.FindByName(ctx, name)
}

// ListByIDs returns the tiers matching the given ids
func (s *TierCatalogService) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]*billing.Tier, error) {
	return s.tierRepo.FindByIDs(ctx, ids)
}

// List returns a page of tiers
func (s *TierCatalogService) List(ctx context.Context, filter billing.TierFilter) (shared.Paginated[*billing.Tier], error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	tiers, total, err := s.tierRepo.FindAll(ctx, filter)
	if err != nil {
		return shared.Paginated[*billing.Tier]{}, err
	}
	return shared.NewPaginated(tiers, total, filter.Page, filter.PageSize), nil
}

// GetDefaultActive returns the active tier marked default
func (s *TierCatalogService) GetDefaultActive(ctx context.Context) (*billing.Tier, error) {
	return s.tierRepo.FindDefaultActive(ctx)
}

// GetFirstActive returns the oldest active tier, the fallback when no
// default is marked
func (s *TierCatalogService) GetFirstActive(ctx context.Context) (*billing.Tier, error) {
	return s.tierRepo.FindFirstActive(ctx)
}

// UpsertByName updates the tier with the given name in place, or creates
// it when absent. Used for idempotent seeding of baseline tiers.
func (s *TierCatalogService) UpsertByName(ctx context.Context, input TierInput) (*billing.Tier, error) {
	existing, err := s.tierRepo.FindByName(ctx, input.Name)
	if errors.Is(err, shared.ErrNotFound) {
		return s.Create(ctx, input)
	}
	if err != nil {
		return nil, err
	}

	existing.Description = input.Description
	existing.SetLimits(input.Limits)
	existing.IsCustom = input.IsCustom
	if input.Status != "" {
		if err := existing.SetStatus(input.Status); err != nil {
			return nil, err
		}
	}

	if input.IsDefault {
		existing.MarkDefault()
		err = s.tierRepo.SaveAsDefault(ctx, existing)
	} else {
		err = s.tierRepo.Update(ctx, existing)
	}
	if err != nil {
		return nil, err
	}

	s.flushCache(ctx)
	return existing, nil
}

// SeedDefaults upserts the baseline tier set. Safe to run on every boot.
func (s *TierCatalogService) SeedDefaults(ctx context.Context) error {
	for _, tier := range billing.DefaultTiers() {
		input := TierInput{
			Name:        tier.Name,
			Description: tier.Description,
			Limits:      tier.Limits,
			IsDefault:   tier.IsDefault,
		}
		if _, err := s.UpsertByName(ctx, input); err != nil {
			return err
		}
	}
	s.logger.Info("Baseline tiers seeded")
	return nil
}

func (s *TierCatalogService) flushCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Flush(ctx); err != nil {
		s.logger.Warn("Failed to flush tier cache", zap.Error(err))
	}
}
