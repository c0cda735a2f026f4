// Package repository implements MySQL persistence for users and items. This
// file defines sentinel error values shared across repositories so that
// handlers can translate failure scenarios into stable HTTP responses
// without inspecting driver-specific errors themselves.
package repository

import (
	"errors"
	"strings"
)

// ErrNotFound is returned when the requested row does not exist. Handlers
// should translate this into an HTTP 404 response.
var ErrNotFound = errors.New("not found")

// ErrEmailExists is returned when an insert or update would violate the
// unique email constraint. Handlers translate this into HTTP 409.
var ErrEmailExists = errors.New("email already exists")

// ErrUsernameExists is returned when an insert or update would violate the
// unique username constraint. Handlers translate this into HTTP 409.
var ErrUsernameExists = errors.New("username already exists")

// ErrIdentityConflict is returned when two concurrent requests race to create
// or link the same OAuth identity and the loser hits the unique
// (provider, provider_id) constraint. The caller must not retry with a
// fresh insert; the winning row already represents the account.
var ErrIdentityConflict = errors.New("identity conflict")

// duplicateError maps a MySQL duplicate-key failure (error 1062) onto the
// sentinel matching the violated constraint. Any other error is returned
// unchanged.
func duplicateError(err error) error {
	if err == nil {
		return nil
	}
	msg := strings.ToLower(err.Error())
	if !strings.Contains(msg, "1062") {
		return err
	}
	switch {
	case strings.Contains(msg, "uq_users_email"):
		return ErrEmailExists
	case strings.Contains(msg, "uq_users_username"):
		return ErrUsernameExists
	case strings.Contains(msg, "uq_users_provider"):
		return ErrIdentityConflict
	}
	return ErrIdentityConflict
}
