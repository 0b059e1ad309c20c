// Package tokenstore persists the session as three key/value entries:
// access token, refresh token, and the serialized user snapshot. Absence of
// any entry is treated as "no session".
package tokenstore

import (
	"encoding/json"

	"github.com/boddenberg/crm-desk-go/internal/domain"
	"github.com/boddenberg/crm-desk-go/internal/infra/kvstore"

	"go.uber.org/zap"
)

const (
	keyAccessToken  = "auth_token"
	keyRefreshToken = "auth_refresh_token"
	keyUser         = "auth_user"
)

// Store holds the token pair and user snapshot on top of a kvstore file.
// Pure storage: no network, no token interpretation.
type Store struct {
	kv     *kvstore.File
	logger *zap.Logger
}

// New creates a token store over the given key/value file.
func New(kv *kvstore.File, logger *zap.Logger) *Store {
	return &Store{kv: kv, logger: logger}
}

// AccessToken returns the stored access token, or "" when absent.
func (s *Store) AccessToken() string {
	v, _ := s.kv.Get(keyAccessToken)
	return v
}

// RefreshToken returns the stored refresh token, or "" when absent.
func (s *Store) RefreshToken() string {
	v, _ := s.kv.Get(keyRefreshToken)
	return v
}

// User returns the stored user snapshot, or nil when absent or unreadable.
func (s *Store) User() *domain.AuthUser {
	raw, ok := s.kv.Get(keyUser)
	if !ok || raw == "" {
		return nil
	}
	var user domain.AuthUser
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		s.logger.Warn("token store: discarding unreadable user snapshot", zap.Error(err))
		return nil
	}
	return &user
}

// SetSession stores the token pair and user snapshot in one write, keeping
// tokens and user atomically consistent. An empty refresh token keeps the
// previous one (the backend omits it on some refresh responses).
func (s *Store) SetSession(accessToken, refreshToken string, user *domain.AuthUser) error {
	raw, err := json.Marshal(user)
	if err != nil {
		return err
	}

	entries := map[string]string{
		keyAccessToken: accessToken,
		keyUser:        string(raw),
	}
	if refreshToken != "" {
		entries[keyRefreshToken] = refreshToken
	}
	return s.kv.SetAll(entries)
}

// SetUser replaces only the user snapshot (profile edits).
func (s *Store) SetUser(user *domain.AuthUser) error {
	raw, err := json.Marshal(user)
	if err != nil {
		return err
	}
	return s.kv.Set(keyUser, string(raw))
}

// Clear removes all three entries. Idempotent.
func (s *Store) Clear() error {
	return s.kv.Delete(keyAccessToken, keyRefreshToken, keyUser)
}
