package dto

import "time"

// AssignTierRequest represents a direct tier assignment payload
type AssignTierRequest struct {
	TierID string `json:"tier_id" binding:"required,uuid"`
}

// CreateBillingAccountRequest represents a billing account creation payload
type CreateBillingAccountRequest struct {
	OwnerUserID string `json:"owner_user_id" binding:"required,uuid"`
	Name        string `json:"name" binding:"required,min=1,max=200"`
}

// CreateSubscriptionRequest represents a subscription creation payload
type CreateSubscriptionRequest struct {
	BillingAccountID string     `json:"billing_account_id" binding:"required,uuid"`
	TierID           string     `json:"tier_id" binding:"required,uuid"`
	CurrentPeriodEnd *time.Time `json:"current_period_end"`
}
