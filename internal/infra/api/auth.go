package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/boddenberg/crm-desk-go/internal/domain"
)

// AuthClient implements port.AuthGateway over the backend auth endpoints.
type AuthClient struct {
	backend *Backend
}

// NewAuthClient creates the auth gateway.
func NewAuthClient(backend *Backend) *AuthClient {
	return &AuthClient{backend: backend}
}

// Login exchanges credentials for a token pair + user.
func (c *AuthClient) Login(ctx context.Context, req *domain.LoginRequest) (*domain.AuthResponse, error) {
	ctx, span := tracer.Start(ctx, "AuthClient.Login")
	defer span.End()

	var resp domain.AuthResponse
	if err := c.backend.do(ctx, "auth_login", http.MethodPost, "/auth/login", nil, req, &resp); err != nil {
		return nil, mapAuthError(err, "Invalid email or password")
	}
	if resp.Token == "" {
		return nil, &domain.ErrMalformedResponse{Reason: "login response missing token"}
	}
	return &resp, nil
}

// Register creates an account and returns a token pair + user.
func (c *AuthClient) Register(ctx context.Context, req *domain.RegisterRequest) (*domain.AuthResponse, error) {
	ctx, span := tracer.Start(ctx, "AuthClient.Register")
	defer span.End()

	var resp domain.AuthResponse
	if err := c.backend.do(ctx, "auth_register", http.MethodPost, "/auth/register", nil, req, &resp); err != nil {
		return nil, err
	}
	if resp.Token == "" {
		return nil, &domain.ErrMalformedResponse{Reason: "register response missing token"}
	}
	return &resp, nil
}

// Refresh exchanges the refresh token for a new token pair.
func (c *AuthClient) Refresh(ctx context.Context, refreshToken string) (*domain.AuthResponse, error) {
	ctx, span := tracer.Start(ctx, "AuthClient.Refresh")
	defer span.End()

	var resp domain.AuthResponse
	req := &domain.RefreshRequest{RefreshToken: refreshToken}
	if err := c.backend.do(ctx, "auth_refresh", http.MethodPost, "/auth/refresh", nil, req, &resp); err != nil {
		return nil, err
	}
	if resp.Token == "" {
		return nil, &domain.ErrMalformedResponse{Reason: "refresh response missing token"}
	}
	return &resp, nil
}

// UpdateProfile updates the current user's name/email.
func (c *AuthClient) UpdateProfile(ctx context.Context, req *domain.ProfileUpdate) (*domain.AuthUser, error) {
	ctx, span := tracer.Start(ctx, "AuthClient.UpdateProfile")
	defer span.End()

	var user domain.AuthUser
	if err := c.backend.do(ctx, "auth_profile", http.MethodPut, "/auth/profile", nil, req, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// mapAuthError turns a 401/403 status into a credential failure carrying the
// backend message when one is present.
func mapAuthError(err error, fallback string) error {
	var status *domain.ErrStatus
	if errors.As(err, &status) && (status.Status == http.StatusUnauthorized || status.Status == http.StatusForbidden) {
		msg := fallback
		if status.Body != nil && status.Body.Message != "" {
			msg = status.Body.Message
		}
		return &domain.ErrUnauthorized{Message: msg}
	}
	return err
}
