package models

import (
	"time"

	"github.com/dmflow/backend/internal/domain/billing"
	"github.com/google/uuid"
)

// TierModel is the GORM model for tiers
type TierModel struct {
	BaseModel
	Name        string         `gorm:"type:varchar(100);not null;uniqueIndex"`
	Description string         `gorm:"type:text"`
	Limits      billing.Limits `gorm:"type:jsonb;not null"`
	IsDefault   bool           `gorm:"not null;default:false;uniqueIndex:idx_tiers_single_default,where:is_default"`
	IsCustom    bool           `gorm:"not null;default:false"`
	Status      string         `gorm:"type:varchar(20);not null;index"`
	LegacyID    *string        `gorm:"type:varchar(64);uniqueIndex"`
}

// TableName specifies the table name
func (TierModel) TableName() string {
	return "tiers"
}

// ToDomain converts the model to a domain entity
func (m *TierModel) ToDomain() *billing.Tier {
	return &billing.Tier{
		BaseEntity:  m.BaseModel.ToDomain(),
		Name:        m.Name,
		Description: m.Description,
		Limits:      m.Limits,
		IsDefault:   m.IsDefault,
		IsCustom:    m.IsCustom,
		Status:      billing.TierStatus(m.Status),
		LegacyID:    legacyIDValue(m.LegacyID),
	}
}

// FromDomain populates the model from a domain entity
func (m *TierModel) FromDomain(t *billing.Tier) {
	m.FromDomainBaseEntity(t.BaseEntity)
	m.Name = t.Name
	m.Description = t.Description
	m.Limits = t.Limits
	m.IsDefault = t.IsDefault
	m.IsCustom = t.IsCustom
	m.Status = string(t.Status)
	m.LegacyID = legacyIDColumn(t.LegacyID)
}

// BillingAccountModel is the GORM model for billing accounts
type BillingAccountModel struct {
	BaseModel
	OwnerUserID uuid.UUID `gorm:"type:uuid;not null;index"`
	Name        string    `gorm:"type:varchar(200);not null"`
	Status      string    `gorm:"type:varchar(20);not null"`
	LegacyID    *string   `gorm:"type:varchar(64);uniqueIndex"`
}

// TableName specifies the table name
func (BillingAccountModel) TableName() string {
	return "billing_accounts"
}

// ToDomain converts the model to a domain entity
func (m *BillingAccountModel) ToDomain() *billing.BillingAccount {
	return &billing.BillingAccount{
		BaseEntity:  m.BaseModel.ToDomain(),
		OwnerUserID: m.OwnerUserID,
		Name:        m.Name,
		Status:      billing.BillingAccountStatus(m.Status),
		LegacyID:    legacyIDValue(m.LegacyID),
	}
}

// FromDomain populates the model from a domain entity
func (m *BillingAccountModel) FromDomain(a *billing.BillingAccount) {
	m.FromDomainBaseEntity(a.BaseEntity)
	m.OwnerUserID = a.OwnerUserID
	m.Name = a.Name
	m.Status = string(a.Status)
	m.LegacyID = legacyIDColumn(a.LegacyID)
}

// SubscriptionModel is the GORM model for subscriptions
type SubscriptionModel struct {
	BaseModel
	BillingAccountID uuid.UUID  `gorm:"type:uuid;not null;index"`
	TierID           uuid.UUID  `gorm:"type:uuid;not null"`
	Status           string     `gorm:"type:varchar(20);not null;index"`
	StartedAt        time.Time  `gorm:"not null"`
	CanceledAt       *time.Time `gorm:""`
	CurrentPeriodEnd *time.Time `gorm:""`
	LegacyID         *string    `gorm:"type:varchar(64);uniqueIndex"`
}

// TableName specifies the table name
func (SubscriptionModel) TableName() string {
	return "subscriptions"
}

// ToDomain converts the model to a domain entity
func (m *SubscriptionModel) ToDomain() *billing.Subscription {
	return &billing.Subscription{
		BaseEntity:       m.BaseModel.ToDomain(),
		BillingAccountID: m.BillingAccountID,
		TierID:           m.TierID,
		Status:           billing.SubscriptionStatus(m.Status),
		StartedAt:        m.StartedAt,
		CanceledAt:       m.CanceledAt,
		CurrentPeriodEnd: m.CurrentPeriodEnd,
		LegacyID:         legacyIDValue(m.LegacyID),
	}
}

// FromDomain populates the model from a domain entity
func (m *SubscriptionModel) FromDomain(s *billing.Subscription) {
	m.FromDomainBaseEntity(s.BaseEntity)
	m.BillingAccountID = s.BillingAccountID
	m.TierID = s.TierID
	m.Status = string(s.Status)
	m.StartedAt = s.StartedAt
	m.CanceledAt = s.CanceledAt
	m.CurrentPeriodEnd = s.CurrentPeriodEnd
	m.LegacyID = legacyIDColumn(s.LegacyID)
}

// UsageCounterModel is the GORM model for usage counters. The
// (user_id, resource, period_start) triple is the conflict key the
// atomic increments upsert against.
type UsageCounterModel struct {
	BaseModel
	UserID      uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_usage_window,priority:1"`
	Resource    string     `gorm:"type:varchar(40);not null;uniqueIndex:idx_usage_window,priority:2"`
	PeriodStart time.Time  `gorm:"not null;uniqueIndex:idx_usage_window,priority:3"`
	PeriodEnd   time.Time  `gorm:"not null"`
	Count       int64      `gorm:"not null;default:0"`
	TierID      *uuid.UUID `gorm:"type:uuid"`
	WorkspaceID *uuid.UUID `gorm:"type:uuid"`
	LegacyID    *string    `gorm:"type:varchar(64);uniqueIndex"`
}

// TableName specifies the table name
func (UsageCounterModel) TableName() string {
	return "usage_counters"
}

// ToDomain converts the model to a domain entity
func (m *UsageCounterModel) ToDomain() *billing.UsageCounter {
	return &billing.UsageCounter{
		BaseEntity:  m.BaseModel.ToDomain(),
		UserID:      m.UserID,
		Resource:    billing.Resource(m.Resource),
		PeriodStart: m.PeriodStart,
		PeriodEnd:   m.PeriodEnd,
		Count:       m.Count,
		TierID:      m.TierID,
		WorkspaceID: m.WorkspaceID,
		LegacyID:    legacyIDValue(m.LegacyID),
	}
}

// FromDomain populates the model from a domain entity
func (m *UsageCounterModel) FromDomain(c *billing.UsageCounter) {
	m.FromDomainBaseEntity(c.BaseEntity)
	m.UserID = c.UserID
	m.Resource = string(c.Resource)
	m.PeriodStart = c.PeriodStart
	m.PeriodEnd = c.PeriodEnd
	m.Count = c.Count
	m.TierID = c.TierID
	m.WorkspaceID = c.WorkspaceID
	m.LegacyID = legacyIDColumn(c.LegacyID)
}
