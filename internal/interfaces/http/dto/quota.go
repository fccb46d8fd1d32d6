package dto

// ConsumeUsageRequest represents a metered consumption payload
type ConsumeUsageRequest struct {
	Resource    string `json:"resource" binding:"required"`
	Amount      int64  `json:"amount" binding:"omitempty,min=1"`
	WorkspaceID string `json:"workspace_id" binding:"omitempty,uuid"`
}

// ResourceRequest represents a resource path parameter
type ResourceRequest struct {
	Resource string `uri:"resource" binding:"required"`
}

// FeatureRequest represents a feature path parameter
type FeatureRequest struct {
	Feature string `uri:"feature" binding:"required"`
}

// FeatureCheckResponse reports whether a boolean feature is available
type FeatureCheckResponse struct {
	Feature string `json:"feature"`
	Allowed bool   `json:"allowed"`
}
