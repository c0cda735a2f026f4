package model

import "time"

// Role values stored in users.role.  The set mirrors the ENUM column in the
// database; anything else is rejected at the handler layer.
const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
	RoleVendor   = "vendor"
)

// User represents an application user record as stored in the `users` table.
// A user authenticates either locally (PasswordHash set) or through an OAuth
// provider (Provider + ProviderID set).  Both may be present when a local
// account was later linked to a provider identity.  Optional profile fields
// are empty strings when the provider did not supply them; they are never
// filled with placeholder values.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Username     – unique username.
//  Email        – unique email address, always stored lowercased.
//  PasswordHash – bcrypt hashed password; empty for OAuth-only accounts.
//  Provider     – OAuth provider name ("google", "github"); empty for local-only accounts.
//  ProviderID   – subject identifier issued by the provider.
//  FirstName    – optional given name.
//  LastName     – optional family name.
//  AvatarURL    – optional avatar image URL.
//  Role         – one of customer/admin/vendor.
//  IsActive     – whether the account is active.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type User struct {
	ID           uint64    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Provider     string    `json:"provider,omitempty"`
	ProviderID   string    `json:"-"`
	FirstName    string    `json:"first_name,omitempty"`
	LastName     string    `json:"last_name,omitempty"`
	AvatarURL    string    `json:"avatar_url,omitempty"`
	Role         string    `json:"role"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// HasPassword reports whether the account can be verified locally.  OAuth-only
// accounts have no stored hash and always fail local verification.
func (u User) HasPassword() bool { return u.PasswordHash != "" }

// ValidRole reports whether r is one of the accepted role values.
func ValidRole(r string) bool {
	switch r {
	case RoleCustomer, RoleAdmin, RoleVendor:
		return true
	}
	return false
}
