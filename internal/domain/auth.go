package domain

import "encoding/json"

// LoginRequest are the credentials for POST /auth/login. Never persisted.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest is the payload for POST /auth/register. Never persisted.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthUser is the snapshot of the signed-in user derived from the latest
// successful auth response. Roles drive UI affordances only; the backend
// stays authoritative.
type AuthUser struct {
	ID    string   `json:"id"`
	Name  string   `json:"name"`
	Email string   `json:"email"`
	Roles RoleList `json:"roles"`
}

// HasRole reports whether the user carries the given role name.
func (u *AuthUser) HasRole(role string) bool {
	if u == nil {
		return false
	}
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// AuthResponse is the body of login/register/refresh responses.
type AuthResponse struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Email        string   `json:"email"`
	Roles        RoleList `json:"roles"`
	Token        string   `json:"token"`
	RefreshToken string   `json:"refreshToken"`
}

// User extracts the user snapshot from an auth response.
func (r *AuthResponse) User() *AuthUser {
	return &AuthUser{ID: r.ID, Name: r.Name, Email: r.Email, Roles: r.Roles}
}

// RoleList flattens the two role shapes the backend emits: bare strings
// ("ADMIN") or objects with a name field ({"name":"ADMIN"}). Both decode to
// plain role names.
type RoleList []string

func (l *RoleList) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		var s string
		if err := json.Unmarshal(item, &s); err == nil {
			out = append(out, s)
			continue
		}
		var obj struct {
			Name string `json:"name"`
		}
		if err := json.Unmarshal(item, &obj); err != nil {
			return err
		}
		out = append(out, obj.Name)
	}
	*l = out
	return nil
}

// RefreshRequest is the payload for POST /auth/refresh.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// ProfileUpdate is the payload for PUT /auth/profile. The user ID is taken
// from the bearer token server-side and is not editable.
type ProfileUpdate struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Role names with client-side affordances.
const RoleAdmin = "ADMIN"
