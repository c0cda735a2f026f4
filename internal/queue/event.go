// Package queue defines message payloads exchanged over the message broker.
package queue

// Auth event types published to the auth.events queue.
const (
	EventUserRegistered = "user.registered"
	EventUserLoggedIn   = "user.logged_in"
	EventOAuthLinked    = "oauth.linked"
)

// AuthEvent is published whenever an identity is established or changed:
// local registration, local or OAuth login, and provider linking. It carries
// enough information for downstream consumers to build an audit trail
// without querying the primary database. Passwords and hashes never appear
// in events.
type AuthEvent struct {
	Type     string `json:"type"`
	UserID   uint64 `json:"user_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Provider string `json:"provider,omitempty"`
	IP       string `json:"ip,omitempty"`
	At       string `json:"at"`
}
