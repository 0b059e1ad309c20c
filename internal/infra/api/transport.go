package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/boddenberg/crm-desk-go/internal/domain"
	"github.com/boddenberg/crm-desk-go/internal/infra/observability"
	"github.com/boddenberg/crm-desk-go/internal/port"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// sessionControl is the slice of the session manager the transport needs to
// recover from a 401. Bound after construction because the session's own
// gateway is built on top of this transport.
type sessionControl interface {
	Refresh(ctx context.Context) *domain.AuthUser
	Logout()
}

// AuthTransport attaches the bearer token to every outgoing request and, on
// a 401, refreshes the token pair and re-issues the original request exactly
// once. The refresh call itself is never retried, so the recursion is capped
// at one hop.
type AuthTransport struct {
	base    http.RoundTripper
	tokens  port.TokenStore
	session sessionControl
	logger  *zap.Logger
	metrics *observability.Metrics
}

// NewAuthTransport wraps base with bearer handling. Call BindSession before
// issuing requests that may need a refresh.
func NewAuthTransport(base http.RoundTripper, tokens port.TokenStore, logger *zap.Logger, metrics *observability.Metrics) *AuthTransport {
	if base == nil {
		base = http.DefaultTransport
	}
	return &AuthTransport{
		base:    base,
		tokens:  tokens,
		logger:  logger,
		metrics: metrics,
	}
}

// BindSession wires the session manager in. Separate from the constructor
// because session and transport depend on each other.
func (t *AuthTransport) BindSession(s sessionControl) {
	t.session = s
}

// RoundTrip implements http.RoundTripper.
func (t *AuthTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	out := req.Clone(req.Context())
	out.Header.Set("X-Request-Id", uuid.NewString())
	if token := t.tokens.AccessToken(); token != "" {
		out.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := t.base.RoundTrip(out)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized {
		return resp, nil
	}

	// Terminal cases: the refresh call failing with 401 must not trigger
	// another refresh, and without a refresh token there is nothing to try.
	if isRefreshRequest(req) || t.tokens.RefreshToken() == "" || t.session == nil {
		return resp, nil
	}

	t.logger.Debug("request unauthorized, attempting token refresh",
		zap.String("method", req.Method),
		zap.String("path", req.URL.Path),
	)

	if user := t.session.Refresh(req.Context()); user == nil {
		t.metrics.IncrTokenRefresh("failure")
		t.session.Logout()
		return resp, nil // surface the original failure
	}
	t.metrics.IncrTokenRefresh("success")

	newToken := t.tokens.AccessToken()
	if newToken == "" {
		t.session.Logout()
		return resp, nil
	}

	// Retry once with the fresh token. Whatever comes back is final.
	retry, rerr := t.rewind(req)
	if rerr != nil {
		return resp, nil
	}
	resp.Body.Close()

	retry.Header.Set("X-Request-Id", uuid.NewString())
	retry.Header.Set("Authorization", "Bearer "+newToken)
	t.metrics.IncrRequestRetry()

	return t.base.RoundTrip(retry)
}

// rewind clones req with a replayable body. Requests built by this package
// always carry GetBody (bytes readers do by construction).
func (t *AuthTransport) rewind(req *http.Request) (*http.Request, error) {
	clone := req.Clone(req.Context())
	if req.Body == nil || req.GetBody == nil {
		return clone, nil
	}
	body, err := req.GetBody()
	if err != nil {
		return nil, err
	}
	clone.Body = body
	return clone, nil
}

func isRefreshRequest(req *http.Request) bool {
	return strings.HasSuffix(req.URL.Path, "/auth/refresh")
}
