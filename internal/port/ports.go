// Package port defines the interfaces (ports) between the service layer and
// its concrete adapters: HTTP gateways, token persistence, and navigation.
package port

import (
	"context"

	"github.com/boddenberg/crm-desk-go/internal/domain"
)

// TokenStore persists the session: access token, refresh token and user
// snapshot as three independent entries. An empty string means "absent".
type TokenStore interface {
	AccessToken() string
	RefreshToken() string
	User() *domain.AuthUser

	SetSession(accessToken, refreshToken string, user *domain.AuthUser) error
	SetUser(user *domain.AuthUser) error
	Clear() error
}

// AuthGateway talks to the backend auth endpoints.
type AuthGateway interface {
	Login(ctx context.Context, req *domain.LoginRequest) (*domain.AuthResponse, error)
	Register(ctx context.Context, req *domain.RegisterRequest) (*domain.AuthResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*domain.AuthResponse, error)
	UpdateProfile(ctx context.Context, req *domain.ProfileUpdate) (*domain.AuthUser, error)
}

// CustomerGateway talks to the backend customer endpoints.
type CustomerGateway interface {
	List(ctx context.Context, q domain.ListQuery) (*domain.CustomerPage, error)
	Get(ctx context.Context, id int64) (*domain.Customer, error)
	Create(ctx context.Context, details *domain.CustomerDetails) (*domain.Customer, error)
	Update(ctx context.Context, id int64, details *domain.CustomerDetails) (*domain.Customer, error)
	Delete(ctx context.Context, id int64) error
}

// ContactGateway talks to the backend contact endpoints.
type ContactGateway interface {
	ListByCustomer(ctx context.Context, customerID int64) ([]domain.Contact, error)
	Create(ctx context.Context, contact *domain.Contact) (*domain.Contact, error)
	Update(ctx context.Context, id int64, contact *domain.Contact) (*domain.Contact, error)
	Delete(ctx context.Context, id int64) error
}

// NoteGateway talks to the backend note endpoints.
type NoteGateway interface {
	ListByCustomer(ctx context.Context, customerID int64) ([]domain.Note, error)
	Create(ctx context.Context, note *domain.Note) (*domain.Note, error)
	Update(ctx context.Context, id int64, note *domain.Note) (*domain.Note, error)
	Delete(ctx context.Context, id int64) error
}

// Navigator receives navigation targets the session decides on (dashboard
// after login, auth entry point after logout). The UI shell owns the actual
// screen switch.
type Navigator interface {
	NavigateTo(route string)
}

// Navigation targets used by the session.
const (
	RouteDashboard = "dashboard"
	RouteAuth      = "auth"
)

// NavigatorFunc adapts a function to the Navigator interface.
type NavigatorFunc func(route string)

func (f NavigatorFunc) NavigateTo(route string) { f(route) }
