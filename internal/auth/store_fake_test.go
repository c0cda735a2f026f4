package auth

import (
	"context"
	"strings"

	"github.com/iliyamo/storefront/internal/model"
	"github.com/iliyamo/storefront/internal/repository"
)

// fakeStore is an in-memory UserStore mirroring the repository's uniqueness
// semantics: duplicate email, username and provider identity fail with the
// same sentinels the MySQL layer produces.
type fakeStore struct {
	nextID    uint64
	users     []*model.User
	createErr error // when set, Create fails with this before any checks
}

func newFakeStore() *fakeStore { return &fakeStore{} }

func (f *fakeStore) Create(_ context.Context, u *model.User) error {
	if f.createErr != nil {
		return f.createErr
	}
	for _, ex := range f.users {
		if strings.EqualFold(ex.Email, u.Email) {
			return repository.ErrEmailExists
		}
		if ex.Username == u.Username {
			return repository.ErrUsernameExists
		}
		if u.Provider != "" && ex.Provider == u.Provider && ex.ProviderID == u.ProviderID {
			return repository.ErrIdentityConflict
		}
	}
	f.nextID++
	u.ID = f.nextID
	u.IsActive = true
	cp := *u
	f.users = append(f.users, &cp)
	return nil
}

func (f *fakeStore) GetByEmail(_ context.Context, email string) (model.User, error) {
	for _, u := range f.users {
		if strings.EqualFold(u.Email, email) {
			return *u, nil
		}
	}
	return model.User{}, repository.ErrNotFound
}

func (f *fakeStore) GetByProvider(_ context.Context, provider, providerID string) (model.User, error) {
	for _, u := range f.users {
		if u.Provider == provider && u.ProviderID == providerID {
			return *u, nil
		}
	}
	return model.User{}, repository.ErrNotFound
}

func (f *fakeStore) AttachProvider(_ context.Context, id uint64, provider, providerID string) error {
	for _, u := range f.users {
		if u.ID == id {
			if u.Provider != "" {
				return repository.ErrIdentityConflict
			}
			u.Provider = provider
			u.ProviderID = providerID
			return nil
		}
	}
	return repository.ErrIdentityConflict
}

// get returns the stored record by id so tests can assert on persisted state.
func (f *fakeStore) get(id uint64) *model.User {
	for _, u := range f.users {
		if u.ID == id {
			return u
		}
	}
	return nil
}
