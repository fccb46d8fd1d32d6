package dto

import (
	"time"

	"github.com/dmflow/backend/internal/domain/billing"
)

// CreateTierRequest represents a tier creation payload. Limit fields
// left null mean unlimited.
type CreateTierRequest struct {
	Name        string         `json:"name" binding:"required,min=1,max=100"`
	Description string         `json:"description" binding:"omitempty,max=500"`
	Limits      billing.Limits `json:"limits"`
	IsDefault   bool           `json:"is_default"`
	IsCustom    bool           `json:"is_custom"`
	Status      string         `json:"status" binding:"omitempty,oneof=active inactive"`
}

// UpdateTierRequest represents a partial tier update. Absent fields are
// left untouched.
type UpdateTierRequest struct {
	Name        *string         `json:"name" binding:"omitempty,min=1,max=100"`
	Description *string         `json:"description" binding:"omitempty,max=500"`
	Limits      *billing.Limits `json:"limits"`
	IsDefault   *bool           `json:"is_default"`
	IsCustom    *bool           `json:"is_custom"`
	Status      *string         `json:"status" binding:"omitempty,oneof=active inactive"`
}

// ListTiersRequest represents tier list query parameters
type ListTiersRequest struct {
	ListRequest
	Status string `form:"status" binding:"omitempty,oneof=active inactive"`
}

// TierResponse is the public projection of a tier
type TierResponse struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Limits      billing.Limits `json:"limits"`
	IsDefault   bool           `json:"is_default"`
	IsCustom    bool           `json:"is_custom"`
	Status      string         `json:"status"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// ToTierResponse converts a domain tier to its response form
func ToTierResponse(tier *billing.Tier) TierResponse {
	return TierResponse{
		ID:          tier.ID.String(),
		Name:        tier.Name,
		Description: tier.Description,
		Limits:      tier.Limits,
		IsDefault:   tier.IsDefault,
		IsCustom:    tier.IsCustom,
		Status:      string(tier.Status),
		CreatedAt:   tier.CreatedAt,
		UpdatedAt:   tier.UpdatedAt,
	}
}

// ToTierResponses converts a slice of domain tiers
func ToTierResponses(tiers []*billing.Tier) []TierResponse {
	out := make([]TierResponse, len(tiers))
	for i, tier := range tiers {
		out[i] = ToTierResponse(tier)
	}
	return out
}
