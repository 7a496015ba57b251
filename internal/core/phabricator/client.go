// Package phabricator provides a client for the Phabricator Conduit API.
//
// The Client is used for:
//   - Resolving a username to its PHID
//   - Enumerating the Maniphest tasks a user is subscribed to
//   - Fetching the transaction history of a single task
//
// Every call is a GET against /api/<method> carrying the API token as a
// query parameter; responses use the Conduit envelope
// {"result": ..., "error_code": ..., "error_info": ...}.
package phabricator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	apperrors "github.com/lueurxax/task-stats/internal/core/errors"
	"github.com/lueurxax/task-stats/internal/platform/observability"
)

const (
	defaultTimeout      = 30 * time.Second
	defaultUserMethod   = "user.mediawikiquery"
	apiPath             = "/api/"
	paramToken          = "api.token"
	serviceName         = "phabricator"
	maxResponseBodySize = 32 * 1024 * 1024
	errBodyReadLimit    = 512
	logFieldMethod      = "method"
)

// Config holds the settings for a Conduit client.
type Config struct {
	BaseURL    string
	APIToken   string
	UserMethod string
	Timeout    time.Duration
	// RPS limits outgoing requests per second. Zero disables limiting.
	RPS        float64
	CursorMode CursorMode
}

// Client talks to one Phabricator installation. It is safe for concurrent use.
type Client struct {
	baseURL     string
	token       string
	userMethod  string
	cursorMode  CursorMode
	httpClient  *http.Client
	rateLimiter *rate.Limiter
	logger      *zerolog.Logger
}

// New creates a Conduit client with the given configuration.
func New(cfg Config, logger *zerolog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	userMethod := cfg.UserMethod
	if userMethod == "" {
		userMethod = defaultUserMethod
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.RPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RPS), 1)
	}

	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	return &Client{
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		token:      cfg.APIToken,
		userMethod: userMethod,
		cursorMode: cfg.CursorMode,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		rateLimiter: limiter,
		logger:      logger,
	}
}

// envelope is the common Conduit response wrapper.
type envelope struct {
	Result    json.RawMessage `json:"result"`
	ErrorCode *string         `json:"error_code"` //nolint:tagliatelle // Conduit uses snake_case
	ErrorInfo *string         `json:"error_info"` //nolint:tagliatelle // Conduit uses snake_case
}

// call performs one Conduit request and returns the raw result payload.
// An envelope carrying an error pair is returned as *apperrors.APIError.
func (c *Client) call(ctx context.Context, method string, params url.Values) (json.RawMessage, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %s rate limit: %w", apperrors.ErrTransport, method, err)
	}

	if params == nil {
		params = url.Values{}
	}

	params.Set(paramToken, c.token)

	callURL := c.baseURL + apiPath + method + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, callURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create %s request: %w", method, err)
	}

	start := time.Now()

	resp, err := c.httpClient.Do(req)

	observability.RequestDuration.WithLabelValues(serviceName, method).Observe(time.Since(start).Seconds())

	if err != nil {
		observability.RequestsTotal.WithLabelValues(serviceName, method, observability.StatusError).Inc()

		return nil, fmt.Errorf("%w: %s request: %w", apperrors.ErrTransport, method, err)
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	result, err := c.readEnvelope(method, resp)
	if err != nil {
		observability.RequestsTotal.WithLabelValues(serviceName, method, observability.StatusError).Inc()

		return nil, err
	}

	observability.RequestsTotal.WithLabelValues(serviceName, method, observability.StatusOK).Inc()

	c.logger.Debug().
		Str(logFieldMethod, method).
		Dur("elapsed", time.Since(start)).
		Int("bytes", len(result)).
		Msg("conduit call completed")

	return result, nil
}

func (c *Client) readEnvelope(method string, resp *http.Response) (json.RawMessage, error) {
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodySize))
	if err != nil {
		return nil, fmt.Errorf("%w: read %s response: %w", apperrors.ErrTransport, method, err)
	}

	var env envelope

	decodeErr := json.Unmarshal(body, &env)

	if resp.StatusCode != http.StatusOK {
		if decodeErr == nil && env.ErrorCode != nil {
			return nil, newAPIError(method, env)
		}

		return nil, fmt.Errorf("%w: body: %s", &apperrors.APIError{Method: method, Status: resp.StatusCode}, truncate(body))
	}

	if decodeErr != nil {
		return nil, fmt.Errorf("%w: %s envelope: %w", apperrors.ErrDataShape, method, decodeErr)
	}

	if env.ErrorCode != nil {
		return nil, newAPIError(method, env)
	}

	return env.Result, nil
}

func newAPIError(method string, env envelope) *apperrors.APIError {
	apiErr := &apperrors.APIError{Method: method}

	if env.ErrorCode != nil {
		apiErr.Code = *env.ErrorCode
	}

	if env.ErrorInfo != nil {
		apiErr.Info = *env.ErrorInfo
	}

	return apiErr
}

// isNull reports whether a raw payload is missing or JSON null.
func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)

	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

func truncate(body []byte) string {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > errBodyReadLimit {
		return string(trimmed[:errBodyReadLimit]) + "..."
	}

	return string(trimmed)
}
