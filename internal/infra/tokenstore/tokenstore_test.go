package tokenstore_test

import (
	"path/filepath"
	"testing"

	"github.com/boddenberg/crm-desk-go/internal/domain"
	"github.com/boddenberg/crm-desk-go/internal/infra/kvstore"
	"github.com/boddenberg/crm-desk-go/internal/infra/tokenstore"

	"go.uber.org/zap"
)

func newStore(t *testing.T) *tokenstore.Store {
	t.Helper()
	kv, err := kvstore.Open(filepath.Join(t.TempDir(), "session.json"))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	return tokenstore.New(kv, zap.NewNop())
}

func TestSetSession_RoundTrip(t *testing.T) {
	s := newStore(t)
	user := &domain.AuthUser{ID: "u-1", Name: "Jo", Email: "jo@example.com", Roles: domain.RoleList{"USER"}}

	if err := s.SetSession("access", "refresh", user); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if got := s.AccessToken(); got != "access" {
		t.Errorf("expected access token, got %q", got)
	}
	if got := s.RefreshToken(); got != "refresh" {
		t.Errorf("expected refresh token, got %q", got)
	}
	got := s.User()
	if got == nil || got.ID != "u-1" || got.Name != "Jo" {
		t.Errorf("expected stored user snapshot, got %+v", got)
	}
}

func TestSetSession_EmptyRefreshTokenKeepsPrevious(t *testing.T) {
	s := newStore(t)
	user := &domain.AuthUser{ID: "u-1"}

	_ = s.SetSession("a1", "r1", user)
	if err := s.SetSession("a2", "", user); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if got := s.AccessToken(); got != "a2" {
		t.Errorf("expected rotated access token, got %q", got)
	}
	if got := s.RefreshToken(); got != "r1" {
		t.Errorf("expected previous refresh token kept, got %q", got)
	}
}

func TestClear_RemovesEverything(t *testing.T) {
	s := newStore(t)
	_ = s.SetSession("a", "r", &domain.AuthUser{ID: "u-1"})

	if err := s.Clear(); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if s.AccessToken() != "" || s.RefreshToken() != "" || s.User() != nil {
		t.Error("expected empty store after clear")
	}

	// Idempotent.
	if err := s.Clear(); err != nil {
		t.Fatalf("expected repeated clear to succeed, got %v", err)
	}
}

func TestUser_AbsentReturnsNil(t *testing.T) {
	s := newStore(t)
	if s.User() != nil {
		t.Error("expected nil user on empty store")
	}
}

func TestSetUser_ReplacesSnapshotOnly(t *testing.T) {
	s := newStore(t)
	_ = s.SetSession("a", "r", &domain.AuthUser{ID: "u-1", Name: "Old"})

	if err := s.SetUser(&domain.AuthUser{ID: "u-1", Name: "New"}); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if got := s.User(); got == nil || got.Name != "New" {
		t.Errorf("expected updated snapshot, got %+v", got)
	}
	if s.AccessToken() != "a" || s.RefreshToken() != "r" {
		t.Error("expected tokens untouched")
	}
}
