package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestGoogleProfileFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"sub": "10987654321",
			"email": "mia@example.com",
			"name": "Mia Wallace",
			"given_name": "Mia",
			"family_name": "Wallace",
			"picture": "https://lh3.example/mia"
		}`))
	}))
	defer srv.Close()

	p := NewGoogle("id", "secret", "http://localhost/cb")
	p.userInfoURL = srv.URL

	profile, err := p.fetch(context.Background(), p, srv.Client())
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if profile.Provider != "google" || profile.Subject != "10987654321" {
		t.Errorf("identity = %q/%q", profile.Provider, profile.Subject)
	}
	if profile.Email != "mia@example.com" {
		t.Errorf("email = %q", profile.Email)
	}
	if profile.GivenName != "Mia" || profile.FamilyName != "Wallace" {
		t.Errorf("name = %q %q", profile.GivenName, profile.FamilyName)
	}
	if profile.AvatarURL != "https://lh3.example/mia" {
		t.Errorf("avatar = %q", profile.AvatarURL)
	}
}

func TestGoogleProfileMissingSubject(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"email": "nosub@example.com"}`))
	}))
	defer srv.Close()

	p := NewGoogle("id", "secret", "http://localhost/cb")
	p.userInfoURL = srv.URL

	if _, err := p.fetch(context.Background(), p, srv.Client()); err == nil {
		t.Fatal("profile without subject accepted")
	}
}

func TestGitHubProfileFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"id": 583231,
			"login": "octocat",
			"name": "The Octocat",
			"email": "octo@example.com",
			"avatar_url": "https://avatars.example/octocat"
		}`))
	}))
	defer srv.Close()

	p := NewGitHub("id", "secret", "http://localhost/cb")
	p.userInfoURL = srv.URL
	p.emailsURL = ""

	profile, err := p.fetch(context.Background(), p, srv.Client())
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if profile.Provider != "github" || profile.Subject != "583231" {
		t.Errorf("identity = %q/%q", profile.Provider, profile.Subject)
	}
	if profile.Username != "octocat" {
		t.Errorf("username = %q", profile.Username)
	}
	if profile.Email != "octo@example.com" {
		t.Errorf("email = %q", profile.Email)
	}
}

func TestGitHubPrivateEmailFallsBackToList(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/user", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id": 7, "login": "shy", "email": ""}`))
	})
	mux.HandleFunc("/user/emails", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[
			{"email": "old@example.com", "primary": false, "verified": true},
			{"email": "shy@example.com", "primary": true, "verified": true}
		]`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	p := NewGitHub("id", "secret", "http://localhost/cb")
	p.userInfoURL = srv.URL + "/user"
	p.emailsURL = srv.URL + "/user/emails"

	profile, err := p.fetch(context.Background(), p, srv.Client())
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if profile.Email != "shy@example.com" {
		t.Errorf("email = %q, want primary verified address", profile.Email)
	}
}

func TestGitHubEmailListFailureIsNotFatal(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/user", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id": 8, "login": "noscope"}`))
	})
	mux.HandleFunc("/user/emails", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message": "Not Found"}`, http.StatusNotFound)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	p := NewGitHub("id", "secret", "http://localhost/cb")
	p.userInfoURL = srv.URL + "/user"
	p.emailsURL = srv.URL + "/user/emails"

	profile, err := p.fetch(context.Background(), p, srv.Client())
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if profile.Email != "" {
		t.Errorf("email = %q, want empty", profile.Email)
	}
	if profile.Username != "noscope" {
		t.Errorf("username = %q", profile.Username)
	}
}

func TestProfileEndpointErrorSurfaces(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": "invalid_token"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	p := NewGoogle("id", "secret", "http://localhost/cb")
	p.userInfoURL = srv.URL

	_, err := p.fetch(context.Background(), p, srv.Client())
	if err == nil {
		t.Fatal("expected error from 401 response")
	}
	if !strings.Contains(err.Error(), "401") {
		t.Errorf("error %q does not carry the status", err)
	}
}

func TestAuthCodeURLCarriesState(t *testing.T) {
	p := NewGoogle("client-id", "secret", "http://localhost/v1/auth/google/callback")
	u := p.AuthCodeURL("state-xyz")
	if !strings.Contains(u, "state=state-xyz") {
		t.Errorf("auth url %q missing state", u)
	}
	if !strings.Contains(u, "client_id=client-id") {
		t.Errorf("auth url %q missing client id", u)
	}
}
