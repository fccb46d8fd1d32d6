package models

import (
	"time"

	"github.com/dmflow/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// BaseModel provides common persistence fields for all models.
// It maps to the domain's BaseEntity.
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// ToDomain converts BaseModel to domain BaseEntity
func (m *BaseModel) ToDomain() shared.BaseEntity {
	return shared.BaseEntity{
		ID:        m.ID,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// FromDomainBaseEntity populates BaseModel from domain BaseEntity
func (m *BaseModel) FromDomainBaseEntity(e shared.BaseEntity) {
	m.ID = e.ID
	m.CreatedAt = e.CreatedAt
	m.UpdatedAt = e.UpdatedAt
}

// legacyIDColumn maps the domain's opaque legacy identifier (empty
// string for native rows) to a nullable unique column, so natively
// created rows don't collide on the unique index.
func legacyIDColumn(legacyID string) *string {
	if legacyID == "" {
		return nil
	}
	return &legacyID
}

// legacyIDValue is the inverse of legacyIDColumn
func legacyIDValue(column *string) string {
	if column == nil {
		return ""
	}
	return *column
}
