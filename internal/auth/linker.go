package auth

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/iliyamo/storefront/internal/model"
	"github.com/iliyamo/storefront/internal/repository"
)

// Profile carries what an OAuth provider told us about the authenticated
// subject. Every field except Provider and Subject is optional; which ones
// arrive depends on the scopes the user granted.
type Profile struct {
	Provider   string // provider name, e.g. "google"
	Subject    string // provider-issued stable identifier
	Email      string
	Username   string // provider-side login name (GitHub login, etc.)
	Name       string
	GivenName  string
	FamilyName string
	AvatarURL  string
}

// LinkOutcome reports how LinkOrCreate resolved a profile. Callers use it to
// tell a first OAuth signup apart from a link and from a plain login.
type LinkOutcome int

const (
	LinkExisting LinkOutcome = iota // resolved to an account that needed no change
	LinkAttached                    // identity attached to an account found by email
	LinkCreated                     // a new account was created
)

// LinkOrCreate resolves an OAuth callback profile to a local account:
//
//  1. an account already linked to (provider, subject) is returned unchanged;
//  2. an account matching the profile email gets the identity attached if it
//     has none yet (local registration followed by OAuth login on the same
//     address), and is otherwise returned as-is;
//  3. with no match, a fresh account is created from whatever profile fields
//     the provider supplied.
//
// Concurrent attempts racing on the same email or identity resolve at the
// database's unique constraints; the loser gets ErrIdentityConflict and no
// duplicate account exists afterwards.
func (s *Service) LinkOrCreate(ctx context.Context, p Profile) (model.User, LinkOutcome, error) {
	u, err := s.Users.GetByProvider(ctx, p.Provider, p.Subject)
	if err == nil {
		return u, LinkExisting, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return model.User{}, LinkExisting, err
	}

	email := strings.ToLower(strings.TrimSpace(p.Email))
	if email != "" {
		u, err = s.Users.GetByEmail(ctx, email)
		if err == nil {
			if u.Provider == "" {
				if err := s.Users.AttachProvider(ctx, u.ID, p.Provider, p.Subject); err != nil {
					return model.User{}, LinkExisting, conflict(err)
				}
				u.Provider = p.Provider
				u.ProviderID = p.Subject
				return u, LinkAttached, nil
			}
			return u, LinkExisting, nil
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return model.User{}, LinkExisting, err
		}
	}

	created, err := s.createFromProfile(ctx, p, email)
	if err != nil {
		return model.User{}, LinkExisting, err
	}
	return created, LinkCreated, nil
}

func (s *Service) createFromProfile(ctx context.Context, p Profile, email string) (model.User, error) {
	username := deriveUsername(p, email)
	if email == "" {
		email = placeholderEmail(p, username)
	}

	u := model.User{
		Username:   username,
		Email:      email,
		Provider:   p.Provider,
		ProviderID: p.Subject,
		FirstName:  p.GivenName,
		LastName:   p.FamilyName,
		AvatarURL:  p.AvatarURL,
		Role:       model.RoleCustomer,
	}
	if u.FirstName == "" && u.LastName == "" && p.Name != "" {
		u.FirstName, u.LastName = splitName(p.Name)
	}

	err := s.Users.Create(ctx, &u)
	if errors.Is(err, repository.ErrUsernameExists) {
		// Username derived from the email local part collided with an
		// unrelated account; retry once with a subject-scoped suffix.
		u.Username = fmt.Sprintf("%s-%s", username, suffixOf(p.Subject))
		err = s.Users.Create(ctx, &u)
	}
	if err != nil {
		return model.User{}, conflict(err)
	}
	return u, nil
}

// usernameStripRe removes everything the username column and the
// registration policy do not accept.
var usernameStripRe = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

const (
	maxUsernameLen = 30
	// Derived usernames stop short of the column limit so the "-xxxxxx"
	// collision retry suffix still fits.
	maxDerivedLen = maxUsernameLen - 7
)

// sanitizeUsername strips disallowed characters and truncates the result to
// leave room for the collision retry suffix.
func sanitizeUsername(s string) string {
	s = usernameStripRe.ReplaceAllString(s, "")
	if len(s) > maxDerivedLen {
		s = s[:maxDerivedLen]
	}
	return s
}

// deriveUsername prefers the email local part, then the provider login name,
// then the provider subject id. Candidates are sanitized to the username
// charset; one too short after sanitizing falls through to the next.
func deriveUsername(p Profile, email string) string {
	if email != "" {
		if at := strings.IndexByte(email, '@'); at > 0 {
			if u := sanitizeUsername(email[:at]); len(u) >= 3 {
				return u
			}
		}
	}
	if u := sanitizeUsername(p.Username); len(u) >= 3 {
		return u
	}
	return sanitizeUsername(p.Provider + "-" + p.Subject)
}

// placeholderEmail synthesizes a deterministic address for providers that
// return no email at all, so the unique email constraint cannot collide
// between two email-less accounts.
func placeholderEmail(p Profile, username string) string {
	return strings.ToLower(fmt.Sprintf("%s@%s.oauth.local", username, p.Provider))
}

func splitName(full string) (first, last string) {
	parts := strings.Fields(full)
	if len(parts) == 0 {
		return "", ""
	}
	if len(parts) == 1 {
		return parts[0], ""
	}
	return parts[0], strings.Join(parts[1:], " ")
}

func suffixOf(subject string) string {
	if len(subject) > 6 {
		return subject[len(subject)-6:]
	}
	return subject
}

// conflict maps persistence-level duplicate failures onto ErrIdentityConflict
// while passing through infrastructure errors untouched.
func conflict(err error) error {
	switch {
	case errors.Is(err, repository.ErrEmailExists),
		errors.Is(err, repository.ErrUsernameExists),
		errors.Is(err, repository.ErrIdentityConflict):
		return ErrIdentityConflict
	}
	return err
}
