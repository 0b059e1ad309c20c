// Package api implements the HTTP gateways for the CRM backend and the
// bearer-token transport they share.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/boddenberg/crm-desk-go/internal/domain"
	"github.com/boddenberg/crm-desk-go/internal/infra/observability"
	"github.com/boddenberg/crm-desk-go/internal/infra/resilience"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("api")

// Backend bundles what every gateway shares: the authenticated HTTP client,
// base URL, breaker, retry policy and observability.
type Backend struct {
	httpClient *http.Client
	baseURL    string
	cb         *gobreaker.CircuitBreaker
	retry      resilience.Config
	logger     *zap.Logger
	metrics    *observability.Metrics
}

// NewBackend creates the shared gateway backend. The retry policy applies to
// GET requests only and retries nothing but transport-level failures, so
// definitive backend answers (any HTTP status) are never re-sent.
func NewBackend(httpClient *http.Client, baseURL string, cb *gobreaker.CircuitBreaker, retry resilience.Config, logger *zap.Logger, metrics *observability.Metrics) *Backend {
	if retry.RetryIf == nil {
		retry.RetryIf = func(err error) bool {
			var unreachable *domain.ErrUnreachable
			return errors.As(err, &unreachable)
		}
	}
	return &Backend{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		cb:         cb,
		retry:      retry,
		logger:     logger,
		metrics:    metrics,
	}
}

// do executes one backend call: breaker, read-only retry, request/response
// codec and error mapping. out may be nil for calls without a useful body.
func (b *Backend) do(ctx context.Context, operation, method, path string, query url.Values, in, out any) error {
	start := time.Now()
	defer func() {
		b.metrics.RecordRequestDuration(operation, time.Since(start))
	}()

	call := func() error {
		if method == http.MethodGet {
			return resilience.RetryWithBackoff(ctx, b.retry, func() error {
				return b.once(ctx, method, path, query, in, out)
			})
		}
		return b.once(ctx, method, path, query, in, out)
	}

	_, err := b.cb.Execute(func() (any, error) {
		return nil, call()
	})
	if err != nil {
		b.metrics.IncrRequest(operation, "error")
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return &domain.ErrUnreachable{Err: err}
		}
		return err
	}

	b.metrics.IncrRequest(operation, "success")
	return nil
}

// once performs a single HTTP exchange.
func (b *Backend) once(ctx context.Context, method, path string, query url.Values, in, out any) error {
	target := b.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reqBody io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reqBody)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := b.httpClient.Do(req)
	if err != nil {
		b.logger.Debug("backend unreachable",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err),
		)
		return &domain.ErrUnreachable{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &domain.ErrUnreachable{Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		statusErr := &domain.ErrStatus{Status: resp.StatusCode, Raw: string(body)}
		var apiErr domain.APIError
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Message != "" {
			statusErr.Body = &apiErr
		}
		b.logger.Warn("backend returned error status",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
		)
		return statusErr
	}

	if out == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &domain.ErrMalformedResponse{Reason: fmt.Sprintf("decode %s %s: %v", method, path, err)}
	}
	return nil
}

// listEnvelope is the {data: [...]} wrapper used by the contacts and notes
// list endpoints.
type listEnvelope[T any] struct {
	Data []T `json:"data"`
}
