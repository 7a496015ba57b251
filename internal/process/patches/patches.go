// Package patches counts a Gerrit owner's changes in a given status.
package patches

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/lueurxax/task-stats/internal/core/domain"
	apperrors "github.com/lueurxax/task-stats/internal/core/errors"
	"github.com/lueurxax/task-stats/internal/core/gerrit"
)

// Change statuses accepted on the command line.
const (
	StatusMerged    = "merged"
	StatusOpen      = "open"
	StatusAbandoned = "abandoned"
)

// reportedStatus maps a query status to the status Gerrit reports on the
// change itself. Open changes come back as NEW.
var reportedStatus = map[string]string{
	StatusMerged:    "MERGED",
	StatusOpen:      "NEW",
	StatusAbandoned: "ABANDONED",
}

// ChangeQuerier is the subset of the Gerrit client the counter needs.
type ChangeQuerier interface {
	QueryChanges(ctx context.Context, q gerrit.Query) ([]gerrit.ChangeInfo, error)
}

var _ ChangeQuerier = (*gerrit.Client)(nil)

// Request describes one count. A nil date means "unbounded"; a non-nil
// date must be a valid YYYY-MM-DD, so an explicitly empty date is rejected.
type Request struct {
	Owner  string
	Status string
	After  *string
	Before *string
}

type Counter struct {
	client ChangeQuerier
	logger *zerolog.Logger
}

func New(client ChangeQuerier, logger *zerolog.Logger) *Counter {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	return &Counter{client: client, logger: logger}
}

// Count validates req, runs the query and counts the changes whose status
// matches the requested one.
func (c *Counter) Count(ctx context.Context, req Request) (domain.ChangeCount, error) {
	q, err := buildQuery(req)
	if err != nil {
		return domain.ChangeCount{}, err
	}

	changes, err := c.client.QueryChanges(ctx, q)
	if err != nil {
		return domain.ChangeCount{}, fmt.Errorf("query changes: %w", err)
	}

	result := domain.ChangeCount{Owner: q.Owner, Status: q.Status}
	want := reportedStatus[q.Status]

	for _, ch := range changes {
		if ch.Status != want {
			continue
		}

		result.Count++

		updated, err := ch.UpdatedAt()
		if err != nil {
			return domain.ChangeCount{}, err
		}

		if updated.After(result.Latest) {
			result.Latest = updated
		}
	}

	c.logger.Info().
		Str("owner", q.Owner).
		Str("status", q.Status).
		Int("fetched", len(changes)).
		Int("count", result.Count).
		Msg("gerrit changes counted")

	return result, nil
}

func buildQuery(req Request) (gerrit.Query, error) {
	owner := strings.TrimSpace(req.Owner)
	if owner == "" {
		return gerrit.Query{}, fmt.Errorf("%w: owner is required", apperrors.ErrInputFormat)
	}

	status := strings.ToLower(strings.TrimSpace(req.Status))
	if status == "" {
		status = StatusMerged
	}

	if _, ok := reportedStatus[status]; !ok {
		return gerrit.Query{}, fmt.Errorf("%w: status %q, expected merged, open or abandoned", apperrors.ErrInputFormat, req.Status)
	}

	q := gerrit.Query{Status: status, Owner: owner}

	var err error

	if q.After, err = optionalDay(req.After); err != nil {
		return gerrit.Query{}, err
	}

	if q.Before, err = optionalDay(req.Before); err != nil {
		return gerrit.Query{}, err
	}

	return q, nil
}

func optionalDay(s *string) (string, error) {
	if s == nil {
		return "", nil
	}

	if _, err := domain.ParseDay(*s); err != nil {
		return "", err
	}

	return *s, nil
}
