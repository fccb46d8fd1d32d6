package models

import (
	"github.com/dmflow/backend/internal/domain/billing"
	"github.com/dmflow/backend/internal/domain/identity"
	"github.com/google/uuid"
)

// UserModel is the GORM model for users. Emails are stored lowercased,
// so the unique index is case-insensitive in practice.
type UserModel struct {
	BaseModel
	Email              string         `gorm:"type:varchar(254);not null;uniqueIndex"`
	PasswordHash       string         `gorm:"type:varchar(100);not null"`
	DisplayName        string         `gorm:"type:varchar(200)"`
	Role               string         `gorm:"type:varchar(20);not null"`
	TierID             *uuid.UUID     `gorm:"type:uuid;index"`
	TierLimitOverrides billing.Limits `gorm:"type:jsonb;not null"`
	BillingAccountID   *uuid.UUID     `gorm:"type:uuid"`
	DefaultWorkspaceID *uuid.UUID     `gorm:"type:uuid"`
	LegacyID           *string        `gorm:"type:varchar(64);uniqueIndex"`
}

// TableName specifies the table name
func (UserModel) TableName() string {
	return "users"
}

// ToDomain converts the model to a domain entity
func (m *UserModel) ToDomain() *identity.User {
	return &identity.User{
		BaseEntity:         m.BaseModel.ToDomain(),
		Email:              m.Email,
		PasswordHash:       m.PasswordHash,
		DisplayName:        m.DisplayName,
		Role:               identity.UserRole(m.Role),
		TierID:             m.TierID,
		TierLimitOverrides: m.TierLimitOverrides,
		BillingAccountID:   m.BillingAccountID,
		DefaultWorkspaceID: m.DefaultWorkspaceID,
		LegacyID:           legacyIDValue(m.LegacyID),
	}
}

// FromDomain populates the model from a domain entity
func (m *UserModel) FromDomain(u *identity.User) {
	m.FromDomainBaseEntity(u.BaseEntity)
	m.Email = u.Email
	m.PasswordHash = u.PasswordHash
	m.DisplayName = u.DisplayName
	m.Role = string(u.Role)
	m.TierID = u.TierID
	m.TierLimitOverrides = u.TierLimitOverrides
	m.BillingAccountID = u.BillingAccountID
	m.DefaultWorkspaceID = u.DefaultWorkspaceID
	m.LegacyID = legacyIDColumn(u.LegacyID)
}

// WorkspaceModel is the GORM model for workspaces
type WorkspaceModel struct {
	BaseModel
	Name             string     `gorm:"type:varchar(120);not null"`
	OwnerUserID      uuid.UUID  `gorm:"type:uuid;not null;index"`
	BillingAccountID *uuid.UUID `gorm:"type:uuid"`
	LegacyID         *string    `gorm:"type:varchar(64);uniqueIndex"`
}

// TableName specifies the table name
func (WorkspaceModel) TableName() string {
	return "workspaces"
}

// ToDomain converts the model to a domain entity
func (m *WorkspaceModel) ToDomain() *identity.Workspace {
	return &identity.Workspace{
		BaseEntity:       m.BaseModel.ToDomain(),
		Name:             m.Name,
		OwnerUserID:      m.OwnerUserID,
		BillingAccountID: m.BillingAccountID,
		LegacyID:         legacyIDValue(m.LegacyID),
	}
}

// FromDomain populates the model from a domain entity
func (m *WorkspaceModel) FromDomain(w *identity.Workspace) {
	m.FromDomainBaseEntity(w.BaseEntity)
	m.Name = w.Name
	m.OwnerUserID = w.OwnerUserID
	m.BillingAccountID = w.BillingAccountID
	m.LegacyID = legacyIDColumn(w.LegacyID)
}

// WorkspaceMemberModel is the GORM model for workspace memberships
type WorkspaceMemberModel struct {
	BaseModel
	WorkspaceID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_workspace_user,priority:1"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_workspace_user,priority:2;index"`
	Role        string    `gorm:"type:varchar(20);not null"`
	LegacyID    *string   `gorm:"type:varchar(64);uniqueIndex"`
}

// TableName specifies the table name
func (WorkspaceMemberModel) TableName() string {
	return "workspace_members"
}

// ToDomain converts the model to a domain entity
func (m *WorkspaceMemberModel) ToDomain() *identity.WorkspaceMember {
	return &identity.WorkspaceMember{
		BaseEntity:  m.BaseModel.ToDomain(),
		WorkspaceID: m.WorkspaceID,
		UserID:      m.UserID,
		Role:        identity.WorkspaceRole(m.Role),
		LegacyID:    legacyIDValue(m.LegacyID),
	}
}

// FromDomain populates the model from a domain entity
func (m *WorkspaceMemberModel) FromDomain(member *identity.WorkspaceMember) {
	m.FromDomainBaseEntity(member.BaseEntity)
	m.WorkspaceID = member.WorkspaceID
	m.UserID = member.UserID
	m.Role = string(member.Role)
	m.LegacyID = legacyIDColumn(member.LegacyID)
}
