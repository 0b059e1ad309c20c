package api_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/boddenberg/crm-desk-go/internal/domain"
	"github.com/boddenberg/crm-desk-go/internal/infra/api"
	"github.com/boddenberg/crm-desk-go/internal/infra/kvstore"
	"github.com/boddenberg/crm-desk-go/internal/infra/observability"
	"github.com/boddenberg/crm-desk-go/internal/infra/tokenstore"

	"go.uber.org/zap"
)

// --- Mocks ---

// mockSession simulates the session manager: a successful refresh rotates
// the stored token pair the way the real one does.
type mockSession struct {
	tokens       *tokenstore.Store
	refreshOK    bool
	newToken     string
	refreshCalls int
	logoutCalls  int
}

func (m *mockSession) Refresh(_ context.Context) *domain.AuthUser {
	m.refreshCalls++
	if !m.refreshOK {
		return nil
	}
	user := &domain.AuthUser{ID: "u-1"}
	_ = m.tokens.SetSession(m.newToken, "refresh-2", user)
	return user
}

func (m *mockSession) Logout() {
	m.logoutCalls++
	_ = m.tokens.Clear()
}

func newTokens(t *testing.T) *tokenstore.Store {
	t.Helper()
	kv, err := kvstore.Open(filepath.Join(t.TempDir(), "session.json"))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	return tokenstore.New(kv, zap.NewNop())
}

func newClient(t *testing.T, tokens *tokenstore.Store, session *mockSession) *http.Client {
	t.Helper()
	transport := api.NewAuthTransport(nil, tokens, zap.NewNop(), observability.NewMetrics())
	if session != nil {
		transport.BindSession(session)
	}
	return &http.Client{Transport: transport}
}

// --- Tests ---

func TestAuthTransport_AttachesBearer(t *testing.T) {
	tokens := newTokens(t)
	_ = tokens.SetSession("tok-1", "refresh-1", &domain.AuthUser{ID: "u-1"})

	var gotAuth string
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := newClient(t, tokens, &mockSession{tokens: tokens})
	resp, err := client.Get(srv.URL + "/api/customers")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	resp.Body.Close()

	if gotAuth != "Bearer tok-1" {
		t.Errorf("expected bearer header, got %q", gotAuth)
	}
	if calls != 1 {
		t.Errorf("expected exactly 1 call, got %d", calls)
	}
}

func TestAuthTransport_NoTokenNoHeader(t *testing.T) {
	tokens := newTokens(t)

	var sawAuth bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, sawAuth = r.Header["Authorization"]
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := newClient(t, tokens, nil)
	resp, err := client.Get(srv.URL + "/auth/login")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	resp.Body.Close()

	if sawAuth {
		t.Error("expected no Authorization header without a stored token")
	}
}

func TestAuthTransport_RefreshAndRetryOnce(t *testing.T) {
	tokens := newTokens(t)
	_ = tokens.SetSession("stale", "refresh-1", &domain.AuthUser{ID: "u-1"})
	session := &mockSession{tokens: tokens, refreshOK: true, newToken: "fresh"}

	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if r.Header.Get("Authorization") != "Bearer fresh" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := newClient(t, tokens, session)
	resp, err := client.Get(srv.URL + "/api/customers")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200 after retry, got %d", resp.StatusCode)
	}
	if calls != 2 {
		t.Errorf("expected exactly 2 calls to the resource, got %d", calls)
	}
	if session.refreshCalls != 1 {
		t.Errorf("expected exactly 1 refresh, got %d", session.refreshCalls)
	}
	if session.logoutCalls != 0 {
		t.Errorf("expected no logout, got %d", session.logoutCalls)
	}
}

func TestAuthTransport_RetryFailureIsFinal(t *testing.T) {
	tokens := newTokens(t)
	_ = tokens.SetSession("stale", "refresh-1", &domain.AuthUser{ID: "u-1"})
	session := &mockSession{tokens: tokens, refreshOK: true, newToken: "fresh"}

	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	client := newClient(t, tokens, session)
	resp, err := client.Get(srv.URL + "/api/customers")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 to surface, got %d", resp.StatusCode)
	}
	if calls != 2 {
		t.Errorf("expected exactly 2 calls, got %d", calls)
	}
	if session.refreshCalls != 1 {
		t.Errorf("expected exactly 1 refresh, got %d", session.refreshCalls)
	}
}

func TestAuthTransport_FailedRefreshLogsOut(t *testing.T) {
	tokens := newTokens(t)
	_ = tokens.SetSession("stale", "refresh-1", &domain.AuthUser{ID: "u-1"})
	session := &mockSession{tokens: tokens, refreshOK: false}

	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	client := newClient(t, tokens, session)
	resp, err := client.Get(srv.URL + "/api/customers")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected the original 401, got %d", resp.StatusCode)
	}
	if calls != 1 {
		t.Errorf("expected no retry after failed refresh, got %d calls", calls)
	}
	if session.logoutCalls != 1 {
		t.Errorf("expected logout after failed refresh, got %d", session.logoutCalls)
	}
}

func TestAuthTransport_RefreshEndpoint401IsTerminal(t *testing.T) {
	tokens := newTokens(t)
	_ = tokens.SetSession("stale", "refresh-1", &domain.AuthUser{ID: "u-1"})
	session := &mockSession{tokens: tokens, refreshOK: true, newToken: "fresh"}

	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	client := newClient(t, tokens, session)
	resp, err := client.Post(srv.URL+"/auth/refresh", "application/json", strings.NewReader(`{}`))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	resp.Body.Close()

	if calls != 1 {
		t.Errorf("expected no recursion into refresh, got %d calls", calls)
	}
	if session.refreshCalls != 0 {
		t.Errorf("expected no refresh attempt, got %d", session.refreshCalls)
	}
}

func TestAuthTransport_NoRefreshTokenIsTerminal(t *testing.T) {
	tokens := newTokens(t)
	_ = tokens.SetSession("stale", "", &domain.AuthUser{ID: "u-1"})
	session := &mockSession{tokens: tokens, refreshOK: true, newToken: "fresh"}

	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	client := newClient(t, tokens, session)
	resp, err := client.Get(srv.URL + "/api/customers")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	resp.Body.Close()

	if calls != 1 {
		t.Errorf("expected no retry without a refresh token, got %d calls", calls)
	}
	if session.refreshCalls != 0 {
		t.Errorf("expected no refresh attempt, got %d", session.refreshCalls)
	}
}

func TestAuthTransport_ReplaysBodyOnRetry(t *testing.T) {
	tokens := newTokens(t)
	_ = tokens.SetSession("stale", "refresh-1", &domain.AuthUser{ID: "u-1"})
	session := &mockSession{tokens: tokens, refreshOK: true, newToken: "fresh"}

	var bodies []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		bodies = append(bodies, string(body))
		if r.Header.Get("Authorization") != "Bearer fresh" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	client := newClient(t, tokens, session)
	resp, err := client.Post(srv.URL+"/api/customers", "application/json", strings.NewReader(`{"name":"Acme"}`))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201 after retry, got %d", resp.StatusCode)
	}
	if len(bodies) != 2 || bodies[0] != bodies[1] || bodies[1] != `{"name":"Acme"}` {
		t.Errorf("expected identical bodies on both attempts, got %v", bodies)
	}
}
