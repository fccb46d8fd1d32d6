package identity

import (
	"regexp"
	"strings"
	"time"

	"github.com/dmflow/backend/internal/domain/billing"
	"github.com/dmflow/backend/internal/domain/shared"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// UserRole represents the platform-level role of a user
type UserRole string

const (
	UserRoleUser  UserRole = "user"
	UserRoleAdmin UserRole = "admin"
)

// IsValid returns true if the role is a known value
func (r UserRole) IsValid() bool {
	return r == UserRoleUser || r == UserRoleAdmin
}

// Password cost for bcrypt
const bcryptCost = 12

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// User represents an account holder. Tier resolution keys off the user:
// billing account subscription first, then the direct TierID, then the
// catalog default; TierLimitOverrides are merged on top of whatever tier
// was chosen.
type User struct {
	shared.BaseEntity
	Email              string // stored lowercased, unique case-insensitively
	PasswordHash       string
	DisplayName        string
	Role               UserRole
	TierID             *uuid.UUID
	TierLimitOverrides billing.Limits
	BillingAccountID   *uuid.UUID
	DefaultWorkspaceID *uuid.UUID
	LegacyID           string
}

// NewUser creates a user with a hashed password
func NewUser(email, password string) (*User, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, shared.NewDomainError("PASSWORD_HASH_ERROR", "Failed to hash password")
	}

	return &User{
		BaseEntity:   shared.NewBaseEntity(),
		Email:        email,
		PasswordHash: string(hash),
		Role:         UserRoleUser,
	}, nil
}

// VerifyPassword checks a plaintext password against the stored hash
func (u *User) VerifyPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// IsAdmin returns true for platform operators
func (u *User) IsAdmin() bool {
	return u.Role == UserRoleAdmin
}

// AssignTier sets the user's directly assigned tier
func (u *User) AssignTier(tierID uuid.UUID) {
	u.TierID = &tierID
	u.UpdatedAt = time.Now()
}

// SetOverrides replaces the user's per-user limit overrides
func (u *User) SetOverrides(overrides billing.Limits) {
	u.TierLimitOverrides = overrides
	u.UpdatedAt = time.Now()
}

// AttachBillingAccount links the user to a paying entity
func (u *User) AttachBillingAccount(accountID uuid.UUID) {
	u.BillingAccountID = &accountID
	u.UpdatedAt = time.Now()
}

// SetDefaultWorkspace records the workspace opened on login
func (u *User) SetDefaultWorkspace(workspaceID uuid.UUID) {
	u.DefaultWorkspaceID = &workspaceID
	u.UpdatedAt = time.Now()
}

// SetDisplayName sets the user's display name
func (u *User) SetDisplayName(displayName string) error {
	if len(displayName) > 200 {
		return shared.NewDomainError("INVALID_DISPLAY_NAME", "Display name cannot exceed 200 characters")
	}
	u.DisplayName = strings.TrimSpace(displayName)
	u.UpdatedAt = time.Now()
	return nil
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", shared.NewDomainError("INVALID_EMAIL", "Email cannot be empty")
	}
	if len(email) > 254 || !emailRegex.MatchString(email) {
		return "", shared.NewDomainError("INVALID_EMAIL", "Email format is invalid")
	}
	return email, nil
}

func validatePassword(password string) error {
	if len(password) < 8 {
		return shared.NewDomainError("INVALID_PASSWORD", "Password must be at least 8 characters")
	}
	if len(password) > 128 {
		return shared.NewDomainError("INVALID_PASSWORD", "Password cannot exceed 128 characters")
	}
	return nil
}
