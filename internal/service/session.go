// Package service implements the session manager, the reactive resource
// store, and the customer/contact/note services built on the gateways.
package service

import (
	"context"
	"time"

	"github.com/boddenberg/crm-desk-go/internal/domain"
	"github.com/boddenberg/crm-desk-go/internal/infra/reactive"
	"github.com/boddenberg/crm-desk-go/internal/port"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// Session owns the authenticated-user state machine: login, register,
// refresh, logout, profile updates, and role checks. Tokens and the user
// snapshot always change together; a missing access token means "not
// authenticated" no matter what else is stored.
type Session struct {
	gateway port.AuthGateway
	tokens  port.TokenStore
	nav     port.Navigator
	logger  *zap.Logger

	user *reactive.Signal[*domain.AuthUser]
}

// NewSession creates the session manager, seeding the user signal from the
// persisted snapshot so a restart resumes the previous session.
func NewSession(gateway port.AuthGateway, tokens port.TokenStore, nav port.Navigator, logger *zap.Logger) *Session {
	return &Session{
		gateway: gateway,
		tokens:  tokens,
		nav:     nav,
		logger:  logger,
		user:    reactive.NewSignal(tokens.User()),
	}
}

// Login exchanges credentials for a session and signals navigation to the
// dashboard.
func (s *Session) Login(ctx context.Context, req *domain.LoginRequest) (*domain.AuthUser, error) {
	resp, err := s.gateway.Login(ctx, req)
	if err != nil {
		s.logger.Warn("login failed", zap.String("email", req.Email), zap.Error(err))
		return nil, err
	}

	user, err := s.storeAuth(resp)
	if err != nil {
		return nil, err
	}

	s.logger.Info("user logged in", zap.String("user_id", user.ID))
	s.navigate(port.RouteDashboard)
	return user, nil
}

// Register creates an account and stores the returned session. No
// navigation: the caller decides the next step.
func (s *Session) Register(ctx context.Context, req *domain.RegisterRequest) (*domain.AuthUser, error) {
	resp, err := s.gateway.Register(ctx, req)
	if err != nil {
		s.logger.Warn("registration failed", zap.String("email", req.Email), zap.Error(err))
		return nil, err
	}

	user, err := s.storeAuth(resp)
	if err != nil {
		return nil, err
	}

	s.logger.Info("user registered", zap.String("user_id", user.ID))
	return user, nil
}

// Refresh exchanges the stored refresh token for a new pair. Returns nil
// without a network call when no refresh token is stored, and nil on any
// failure, leaving prior tokens untouched — the caller decides whether that
// forces a logout.
func (s *Session) Refresh(ctx context.Context) *domain.AuthUser {
	refreshToken := s.tokens.RefreshToken()
	if refreshToken == "" {
		return nil
	}

	resp, err := s.gateway.Refresh(ctx, refreshToken)
	if err != nil {
		s.logger.Warn("token refresh failed", zap.Error(err))
		return nil
	}

	user, err := s.storeAuth(resp)
	if err != nil {
		return nil
	}

	s.logger.Debug("token pair refreshed", zap.String("user_id", user.ID))
	return user
}

// Logout clears the stored session and signals navigation to the
// unauthenticated entry point. Idempotent.
func (s *Session) Logout() {
	if err := s.tokens.Clear(); err != nil {
		s.logger.Warn("failed to clear stored session", zap.Error(err))
	}
	s.user.Set(nil)
	s.logger.Info("user logged out")
	s.navigate(port.RouteAuth)
}

// IsAuthenticated reports whether both an access token and a user snapshot
// are present.
func (s *Session) IsAuthenticated() bool {
	return s.tokens.AccessToken() != "" && s.user.Get() != nil
}

// HasRole reports whether the current user carries the role. UI affordance
// only; the backend stays authoritative.
func (s *Session) HasRole(role string) bool {
	return s.user.Get().HasRole(role)
}

// IsAdmin reports whether the current user carries the ADMIN role.
func (s *Session) IsAdmin() bool {
	return s.HasRole(domain.RoleAdmin)
}

// CurrentUser returns the current user snapshot, or nil.
func (s *Session) CurrentUser() *domain.AuthUser {
	return s.user.Get()
}

// SubscribeUser registers fn for user changes and returns an unsubscribe
// function.
func (s *Session) SubscribeUser(fn func(*domain.AuthUser)) func() {
	return s.user.Subscribe(fn)
}

// UpdateProfile sends the new name/email to the backend and patches the
// stored snapshot with the result.
func (s *Session) UpdateProfile(ctx context.Context, name, email string) (*domain.AuthUser, error) {
	updated, err := s.gateway.UpdateProfile(ctx, &domain.ProfileUpdate{Name: name, Email: email})
	if err != nil {
		s.logger.Warn("profile update failed", zap.Error(err))
		return nil, err
	}

	s.UpdateCurrentUser(updated.Name, updated.Email)
	return s.user.Get(), nil
}

// UpdateCurrentUser patches name/email on the current snapshot, in memory
// and on disk. The user ID never changes. No-op without a session.
func (s *Session) UpdateCurrentUser(name, email string) {
	current := s.user.Get()
	if current == nil {
		return
	}
	patched := *current
	if name != "" {
		patched.Name = name
	}
	if email != "" {
		patched.Email = email
	}
	if err := s.tokens.SetUser(&patched); err != nil {
		s.logger.Warn("failed to persist user snapshot", zap.Error(err))
	}
	s.user.Set(&patched)
}

// TokenExpiresAt decodes the stored access token without verification and
// returns its expiry. Zero time when no token is stored or the token has no
// exp claim. Display/logging only — the backend does the real validation.
func (s *Session) TokenExpiresAt() time.Time {
	token := s.tokens.AccessToken()
	if token == "" {
		return time.Time{}
	}

	claims := jwt.RegisteredClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, &claims); err != nil {
		return time.Time{}
	}
	if claims.ExpiresAt == nil {
		return time.Time{}
	}
	return claims.ExpiresAt.Time
}

// storeAuth persists tokens + user in one write and publishes the new user.
func (s *Session) storeAuth(resp *domain.AuthResponse) (*domain.AuthUser, error) {
	user := resp.User()
	if err := s.tokens.SetSession(resp.Token, resp.RefreshToken, user); err != nil {
		s.logger.Error("failed to persist session", zap.Error(err))
		return nil, err
	}
	s.user.Set(user)
	return user, nil
}

func (s *Session) navigate(route string) {
	if s.nav != nil {
		s.nav.NavigateTo(route)
	}
}
