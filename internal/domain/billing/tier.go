package billing

import (
	"strings"
	"time"

	"github.com/dmflow/backend/internal/domain/shared"
)

// TierStatus represents the lifecycle status of a tier
type TierStatus string

const (
	TierStatusActive     TierStatus = "active"
	TierStatusInactive   TierStatus = "inactive"
	TierStatusDeprecated TierStatus = "deprecated"
)

// IsValid returns true if the status is a known value
func (s TierStatus) IsValid() bool {
	switch s {
	case TierStatusActive, TierStatusInactive, TierStatusDeprecated:
		return true
	}
	return false
}

// Tier is a named bundle of resource ceilings and feature flags
// representing a subscription plan. At most one tier system-wide may
// carry the default flag.
type Tier struct {
	shared.BaseEntity
	Name        string
	Description string
	Limits      Limits
	IsDefault   bool
	IsCustom    bool
	Status      TierStatus
	LegacyID    string // identifier in the legacy document store, empty for native rows
}

// NewTier creates a new active tier
func NewTier(name string, limits Limits) (*Tier, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_TIER_NAME", "Tier name cannot be empty")
	}
	if len(name) > 100 {
		return nil, shared.NewDomainError("INVALID_TIER_NAME", "Tier name cannot exceed 100 characters")
	}

	return &Tier{
		BaseEntity: shared.NewBaseEntity(),
		Name:       name,
		Limits:     limits,
		Status:     TierStatusActive,
	}, nil
}

// IsActive returns true if the tier can be assigned to users
func (t *Tier) IsActive() bool {
	return t.Status == TierStatusActive
}

// MarkDefault flags the tier as the system default. The repository is
// responsible for clearing the flag on every other tier in the same
// operation.
func (t *Tier) MarkDefault() {
	t.IsDefault = true
	t.UpdatedAt = time.Now()
}

// ClearDefault removes the default flag
func (t *Tier) ClearDefault() {
	t.IsDefault = false
	t.UpdatedAt = time.Now()
}

// SetStatus transitions the tier lifecycle status
func (t *Tier) SetStatus(status TierStatus) error {
	if !status.IsValid() {
		return shared.NewDomainError("INVALID_TIER_STATUS", "Invalid tier status")
	}
	t.Status = status
	t.UpdatedAt = time.Now()
	return nil
}

// SetLimits replaces the tier's limit set
func (t *Tier) SetLimits(limits Limits) {
	t.Limits = limits
	t.UpdatedAt = time.Now()
}

// Baseline tier names seeded on first boot
const (
	TierNameStarter  = "Starter"
	TierNamePro      = "Pro"
	TierNameBusiness = "Business"
)

// DefaultTiers returns the baseline tier set. Starter carries the
// default flag and is what unassigned users resolve to.
func DefaultTiers() []*Tier {
	starter, _ := NewTier(TierNameStarter, Limits{
		AIMessages:     Int64(300),
		TeamMembers:    Int64(3),
		Workspaces:     Int64(1),
		KnowledgeBases: Int64(1),
		Contacts:       Int64(1000),
		CustomBranding: Bool(false),
		APIAccess:      Bool(false),
	})
	starter.Description = "Free plan for getting started"
	starter.IsDefault = true

	pro, _ := NewTier(TierNamePro, Limits{
		AIMessages:     Int64(2000),
		TeamMembers:    Int64(15),
		Workspaces:     Int64(3),
		KnowledgeBases: Int64(5),
		Contacts:       Int64(25000),
		APIAccess:      Bool(false),
	})
	pro.Description = "For growing teams automating their inbox"

	business, _ := NewTier(TierNameBusiness, Limits{
		AIMessages:     Int64(10000),
		TeamMembers:    Int64(50),
		Workspaces:     Int64(10),
		KnowledgeBases: Int64(20),
	})
	business.Description = "High-volume plan with API access"

	return []*Tier{starter, pro, business}
}
