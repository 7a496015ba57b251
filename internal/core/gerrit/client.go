// Package gerrit provides a read-only client for the Gerrit REST API.
//
// Only the change query endpoint is used. Gerrit prefixes every JSON body
// with the ")]}'" XSSI guard and pages results with the "_more_changes"
// flag on the last change of a page.
package gerrit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/rs/zerolog"

	apperrors "github.com/lueurxax/task-stats/internal/core/errors"
	"github.com/lueurxax/task-stats/internal/platform/observability"
)

const (
	defaultTimeout      = 30 * time.Second
	defaultPageSize     = 500
	changesPath         = "/changes/"
	methodQueryChanges  = "changes.query"
	serviceName         = "gerrit"
	maxResponseBodySize = 32 * 1024 * 1024
	errBodyReadLimit    = 512
)

var xssiPrefix = []byte(")]}'")

// Config holds the settings for a Gerrit client.
type Config struct {
	BaseURL  string
	Timeout  time.Duration
	PageSize int
}

// Client queries one Gerrit server.
type Client struct {
	baseURL    string
	pageSize   int
	httpClient *http.Client
	logger     *zerolog.Logger
}

// New creates a Gerrit client with the given configuration.
func New(cfg Config, logger *zerolog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}

	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	return &Client{
		baseURL:  strings.TrimSuffix(cfg.BaseURL, "/"),
		pageSize: pageSize,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// ChangeInfo is the subset of a Gerrit change entity used here.
type ChangeInfo struct {
	ID          string `json:"id"`
	Number      int    `json:"_number"` //nolint:tagliatelle // Gerrit field name
	Project     string `json:"project"`
	Subject     string `json:"subject"`
	Status      string `json:"status"`
	Updated     string `json:"updated"`
	MoreChanges bool   `json:"_more_changes"` //nolint:tagliatelle // Gerrit field name
}

// UpdatedAt parses the change's "updated" timestamp, which Gerrit sends in
// UTC as "2006-01-02 15:04:05.000000000".
func (c ChangeInfo) UpdatedAt() (time.Time, error) {
	t, err := dateparse.ParseIn(c.Updated, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: change %d updated %q: %w", apperrors.ErrDataShape, c.Number, c.Updated, err)
	}

	return t, nil
}

// Query is a change search expressed in Gerrit query operators.
type Query struct {
	Status string
	Owner  string
	After  string
	Before string
}

func (q Query) String() string {
	terms := []string{"status:" + q.Status, "owner:" + q.Owner}

	if q.After != "" {
		terms = append(terms, "after:"+q.After)
	}

	if q.Before != "" {
		terms = append(terms, "before:"+q.Before)
	}

	return strings.Join(terms, " ")
}

// QueryChanges returns every change matching q, following "_more_changes".
func (c *Client) QueryChanges(ctx context.Context, q Query) ([]ChangeInfo, error) {
	var all []ChangeInfo

	for start := 0; ; {
		page, err := c.queryPage(ctx, q, start)
		if err != nil {
			return nil, err
		}

		all = append(all, page...)

		c.logger.Debug().Str("query", q.String()).Int("start", start).Int("changes", len(page)).Msg("gerrit page fetched")

		if len(page) == 0 || !page[len(page)-1].MoreChanges {
			return all, nil
		}

		start += len(page)
	}
}

func (c *Client) queryPage(ctx context.Context, q Query, start int) ([]ChangeInfo, error) {
	params := url.Values{}
	params.Set("q", q.String())
	params.Set("n", strconv.Itoa(c.pageSize))

	if start > 0 {
		params.Set("S", strconv.Itoa(start))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+changesPath+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create gerrit request: %w", err)
	}

	req.Header.Set("Accept", "application/json")

	started := time.Now()

	resp, err := c.httpClient.Do(req)

	observability.RequestDuration.WithLabelValues(serviceName, methodQueryChanges).Observe(time.Since(started).Seconds())

	if err != nil {
		observability.RequestsTotal.WithLabelValues(serviceName, methodQueryChanges, observability.StatusError).Inc()

		return nil, fmt.Errorf("%w: gerrit request: %w", apperrors.ErrTransport, err)
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	changes, err := decodeChanges(resp)
	if err != nil {
		observability.RequestsTotal.WithLabelValues(serviceName, methodQueryChanges, observability.StatusError).Inc()

		return nil, err
	}

	observability.RequestsTotal.WithLabelValues(serviceName, methodQueryChanges, observability.StatusOK).Inc()

	return changes, nil
}

func decodeChanges(resp *http.Response) ([]ChangeInfo, error) {
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodySize))
	if err != nil {
		return nil, fmt.Errorf("%w: read gerrit response: %w", apperrors.ErrTransport, err)
	}

	if resp.StatusCode != http.StatusOK {
		apiErr := &apperrors.APIError{Method: methodQueryChanges, Status: resp.StatusCode}

		return nil, fmt.Errorf("%w: %s", apiErr, truncate(body))
	}

	body = bytes.TrimPrefix(bytes.TrimSpace(body), xssiPrefix)

	var changes []ChangeInfo
	if err := json.Unmarshal(body, &changes); err != nil {
		return nil, fmt.Errorf("%w: parse gerrit changes: %w", apperrors.ErrDataShape, err)
	}

	return changes, nil
}

func truncate(body []byte) string {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > errBodyReadLimit {
		return string(trimmed[:errBodyReadLimit]) + "..."
	}

	return string(trimmed)
}
