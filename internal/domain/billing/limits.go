package billing

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/dmflow/backend/internal/domain/shared"
)

// Resource identifies a countable resource subject to tier ceilings
type Resource string

const (
	ResourceAIMessages     Resource = "ai_messages"
	ResourceTeamMembers    Resource = "team_members"
	ResourceWorkspaces     Resource = "workspaces"
	ResourceKnowledgeBases Resource = "knowledge_bases"
	ResourceContacts       Resource = "contacts"
	ResourceBroadcasts     Resource = "broadcasts"
)

// AllResources lists every known resource kind
func AllResources() []Resource {
	return []Resource{
		ResourceAIMessages,
		ResourceTeamMembers,
		ResourceWorkspaces,
		ResourceKnowledgeBases,
		ResourceContacts,
		ResourceBroadcasts,
	}
}

// IsValid returns true if the resource is a known kind
func (r Resource) IsValid() bool {
	switch r {
	case ResourceAIMessages, ResourceTeamMembers, ResourceWorkspaces,
		ResourceKnowledgeBases, ResourceContacts, ResourceBroadcasts:
		return true
	}
	return false
}

// String returns the string representation of the resource
func (r Resource) String() string {
	return string(r)
}

// DisplayName returns a human-readable name for the resource
func (r Resource) DisplayName() string {
	switch r {
	case ResourceAIMessages:
		return "AI messages"
	case ResourceTeamMembers:
		return "Team members"
	case ResourceWorkspaces:
		return "Workspaces"
	case ResourceKnowledgeBases:
		return "Knowledge bases"
	case ResourceContacts:
		return "Contacts"
	case ResourceBroadcasts:
		return "Broadcasts"
	default:
		return string(r)
	}
}

// ParseResource converts a string into a known Resource
func ParseResource(s string) (Resource, error) {
	r := Resource(s)
	if !r.IsValid() {
		return "", shared.NewDomainError("INVALID_RESOURCE", "Unknown resource kind")
	}
	return r, nil
}

// Feature identifies a boolean-gated capability
type Feature string

const (
	FeatureAIAutoReply    Feature = "ai_auto_reply"
	FeatureCustomBranding Feature = "custom_branding"
	FeatureAPIAccess      Feature = "api_access"
)

// IsValid returns true if the feature is a known kind
func (f Feature) IsValid() bool {
	switch f {
	case FeatureAIAutoReply, FeatureCustomBranding, FeatureAPIAccess:
		return true
	}
	return false
}

// ParseFeature converts a string into a known Feature
func ParseFeature(s string) (Feature, error) {
	f := Feature(s)
	if !f.IsValid() {
		return "", shared.NewDomainError("INVALID_FEATURE", "Unknown feature kind")
	}
	return f, nil
}

// Limits is the sparse set of resource ceilings and feature flags a tier
// grants. A nil field means unlimited (for ceilings) or allowed (for
// feature flags); only an explicit false denies a feature.
type Limits struct {
	AIMessages     *int64 `json:"aiMessages,omitempty"`
	TeamMembers    *int64 `json:"teamMembers,omitempty"`
	Workspaces     *int64 `json:"workspaces,omitempty"`
	KnowledgeBases *int64 `json:"knowledgeBases,omitempty"`
	Contacts       *int64 `json:"contacts,omitempty"`
	Broadcasts     *int64 `json:"broadcasts,omitempty"`

	AIAutoReply    *bool `json:"aiAutoReply,omitempty"`
	CustomBranding *bool `json:"customBranding,omitempty"`
	APIAccess      *bool `json:"apiAccess,omitempty"`
}

// LimitFor returns the ceiling for a resource, or nil when unlimited
func (l Limits) LimitFor(resource Resource) *int64 {
	switch resource {
	case ResourceAIMessages:
		return l.AIMessages
	case ResourceTeamMembers:
		return l.TeamMembers
	case ResourceWorkspaces:
		return l.Workspaces
	case ResourceKnowledgeBases:
		return l.KnowledgeBases
	case ResourceContacts:
		return l.Contacts
	case ResourceBroadcasts:
		return l.Broadcasts
	default:
		return nil
	}
}

// FeatureAllowed reports whether a feature is granted. An absent flag
// means allowed; only an explicit false denies.
func (l Limits) FeatureAllowed(feature Feature) bool {
	var flag *bool
	switch feature {
	case FeatureAIAutoReply:
		flag = l.AIAutoReply
	case FeatureCustomBranding:
		flag = l.CustomBranding
	case FeatureAPIAccess:
		flag = l.APIAccess
	}
	if flag == nil {
		return true
	}
	return *flag
}

// Merge applies override on top of the receiver, key by key. Non-nil
// override fields win; absent override fields keep the receiver's value.
func (l Limits) Merge(override Limits) Limits {
	merged := l
	if override.AIMessages != nil {
		merged.AIMessages = override.AIMessages
	}
	if override.TeamMembers != nil {
		merged.TeamMembers = override.TeamMembers
	}
	if override.Workspaces != nil {
		merged.Workspaces = override.Workspaces
	}
	if override.KnowledgeBases != nil {
		merged.KnowledgeBases = override.KnowledgeBases
	}
	if override.Contacts != nil {
		merged.Contacts = override.Contacts
	}
	if override.Broadcasts != nil {
		merged.Broadcasts = override.Broadcasts
	}
	if override.AIAutoReply != nil {
		merged.AIAutoReply = override.AIAutoReply
	}
	if override.CustomBranding != nil {
		merged.CustomBranding = override.CustomBranding
	}
	if override.APIAccess != nil {
		merged.APIAccess = override.APIAccess
	}
	return merged
}

// IsEmpty returns true when no ceiling or flag is set
func (l Limits) IsEmpty() bool {
	return l == Limits{}
}

// Value implements driver.Valuer, storing limits as a sparse JSON object
func (l Limits) Value() (driver.Value, error) {
	b, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner
func (l *Limits) Scan(value interface{}) error {
	if value == nil {
		*l = Limits{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	default:
		return fmt.Errorf("cannot scan %T into Limits", value)
	}
}

// Int64 returns a pointer to v, for building sparse limit sets
func Int64(v int64) *int64 {
	return &v
}

// Bool returns a pointer to v, for building sparse feature flags
func Bool(v bool) *bool {
	return &v
}
