package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/iliyamo/storefront/internal/model"
	"github.com/iliyamo/storefront/internal/repository"
)

const testCost = 4 // minimum bcrypt cost, keeps the suite fast

func TestRegisterAndVerify(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, testCost)
	ctx := context.Background()

	u, err := svc.Register(ctx, "alice", "Alice@Example.COM", "Str0ngpass")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if u.ID == 0 {
		t.Error("registered user has no id")
	}
	if u.Email != "alice@example.com" {
		t.Errorf("email not normalized: %q", u.Email)
	}
	if u.Role != model.RoleCustomer {
		t.Errorf("role = %q, want customer", u.Role)
	}
	if u.PasswordHash == "Str0ngpass" || u.PasswordHash == "" {
		t.Error("password stored unhashed")
	}

	got, err := svc.VerifyLocal(ctx, "ALICE@example.com", "Str0ngpass")
	if err != nil {
		t.Fatalf("VerifyLocal: %v", err)
	}
	if got.ID != u.ID {
		t.Errorf("verified wrong user: %d != %d", got.ID, u.ID)
	}
}

func TestVerifyWrongPassword(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, testCost)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "bob", "bob@example.com", "Str0ngpass"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if _, err := svc.VerifyLocal(ctx, "bob@example.com", "wrongpass1A"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong password: got %v, want ErrInvalidCredentials", err)
	}
}

func TestVerifyUnknownAccount(t *testing.T) {
	svc := NewService(newFakeStore(), testCost)

	// Unknown account must be indistinguishable from a wrong password.
	if _, err := svc.VerifyLocal(context.Background(), "nobody@example.com", "whatever1A"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown account: got %v, want ErrInvalidCredentials", err)
	}
}

func TestVerifyInactiveAccount(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, testCost)
	ctx := context.Background()

	u, err := svc.Register(ctx, "carol", "carol@example.com", "Str0ngpass")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	store.get(u.ID).IsActive = false

	if _, err := svc.VerifyLocal(ctx, "carol@example.com", "Str0ngpass"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("inactive account: got %v, want ErrInvalidCredentials", err)
	}
}

func TestVerifyOAuthOnlyAccount(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, testCost)
	ctx := context.Background()

	if _, _, err := svc.LinkOrCreate(ctx, Profile{
		Provider: "google",
		Subject:  "g-123",
		Email:    "dora@example.com",
	}); err != nil {
		t.Fatalf("LinkOrCreate: %v", err)
	}

	if _, err := svc.VerifyLocal(ctx, "dora@example.com", "anything1A"); !errors.Is(err, ErrOAuthOnly) {
		t.Errorf("oauth-only account: got %v, want ErrOAuthOnly", err)
	}
	// Even the empty password must not slip through the empty stored hash.
	if _, err := svc.VerifyLocal(ctx, "dora@example.com", ""); !errors.Is(err, ErrOAuthOnly) {
		t.Errorf("oauth-only account, empty password: got %v, want ErrOAuthOnly", err)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, testCost)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "eve", "eve@example.com", "Str0ngpass"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if _, err := svc.Register(ctx, "eve2", "EVE@example.com", "Str0ngpass"); !errors.Is(err, repository.ErrEmailExists) {
		t.Errorf("duplicate email: got %v, want ErrEmailExists", err)
	}
	if _, err := svc.Register(ctx, "eve", "other@example.com", "Str0ngpass"); !errors.Is(err, repository.ErrUsernameExists) {
		t.Errorf("duplicate username: got %v, want ErrUsernameExists", err)
	}
}
