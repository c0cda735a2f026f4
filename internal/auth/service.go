// Package auth implements credential verification, registration and OAuth
// identity linking. It owns the security-sensitive decisions: how passwords
// are verified, when a third-party identity may be attached to an account,
// and which failures are reported indistinguishably to avoid user
// enumeration.
package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/iliyamo/storefront/internal/model"
	"github.com/iliyamo/storefront/internal/repository"
	"github.com/iliyamo/storefront/internal/utils"
)

// ErrInvalidCredentials covers both "no such account" and "wrong password".
// Callers must not distinguish the two in responses.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrOAuthOnly is returned when a local login is attempted against an
// account that has no stored password hash.
var ErrOAuthOnly = errors.New("account has no password; use its oauth provider")

// ErrIdentityConflict is returned when concurrent registration or linking
// attempts race on the same email or provider identity. The losing request
// must not create a duplicate account.
var ErrIdentityConflict = errors.New("identity conflict")

// UserStore is the slice of the user repository the auth flows depend on.
// *repository.UserRepo satisfies it.
type UserStore interface {
	Create(ctx context.Context, u *model.User) error
	GetByEmail(ctx context.Context, email string) (model.User, error)
	GetByProvider(ctx context.Context, provider, providerID string) (model.User, error)
	AttachProvider(ctx context.Context, id uint64, provider, providerID string) error
}

// Service bundles the user store with the hashing configuration.
type Service struct {
	Users      UserStore
	BcryptCost int
}

func NewService(users UserStore, bcryptCost int) *Service {
	return &Service{Users: users, BcryptCost: bcryptCost}
}

// Register creates a local account with a hashed password and returns it.
// Email/username collisions surface as repository.ErrEmailExists or
// repository.ErrUsernameExists; they are not converted into a login.
func (s *Service) Register(ctx context.Context, username, email, password string) (model.User, error) {
	hash, err := utils.HashPassword(password, s.BcryptCost)
	if err != nil {
		return model.User{}, err
	}
	u := model.User{
		Username:     strings.TrimSpace(username),
		Email:        strings.ToLower(strings.TrimSpace(email)),
		PasswordHash: hash,
		Role:         model.RoleCustomer,
	}
	if err := s.Users.Create(ctx, &u); err != nil {
		return model.User{}, err
	}
	return u, nil
}

// VerifyLocal checks an email/password pair against the stored account.
// A missing account, an inactive account and a wrong password all map to
// ErrInvalidCredentials. Accounts without a password hash (OAuth-only) are
// reported as ErrOAuthOnly and never verify, regardless of input.
func (s *Service) VerifyLocal(ctx context.Context, email, password string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	u, err := s.Users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.User{}, ErrInvalidCredentials
		}
		return model.User{}, err
	}
	if !u.IsActive {
		return model.User{}, ErrInvalidCredentials
	}
	if !u.HasPassword() {
		return model.User{}, ErrOAuthOnly
	}
	if !utils.VerifyPassword(u.PasswordHash, password) {
		return model.User{}, ErrInvalidCredentials
	}
	return u, nil
}
