// Package subscriptions computes how often a user started watching
// Maniphest tasks in each week of a month.
//
// The pipeline resolves the username once, enumerates the watched tasks,
// loads every task history (sequentially or fanned out), keeps the first
// subscription transition per task and buckets those by week.
package subscriptions

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/lueurxax/task-stats/internal/core/domain"
	"github.com/lueurxax/task-stats/internal/core/phabricator"
	"github.com/lueurxax/task-stats/internal/platform/observability"
)

// API is the subset of the Conduit client the pipeline needs.
type API interface {
	TransactionSource
	ResolveIdentity(ctx context.Context, username string) (domain.Identity, error)
	SubscribedTasks(ctx context.Context, phid string) ([]domain.ItemReference, error)
}

// Compile-time assertion that *phabricator.Client implements API.
var _ API = (*phabricator.Client)(nil)

// Options tunes a Pipeline.
type Options struct {
	// Concurrency above 1 fans transaction requests out with that many in flight.
	Concurrency int
	// Location is the time zone used to bucket events. Defaults to time.Local.
	Location *time.Location
}

// Result is everything a run produced.
type Result struct {
	Identity domain.Identity
	Items    []domain.ItemReference
	Events   []domain.SubscriptionEvent
	Report   domain.WeeklyReport
}

type Pipeline struct {
	api     API
	fetcher Fetcher
	loc     *time.Location
	logger  *zerolog.Logger
}

func New(api API, opts Options, logger *zerolog.Logger) *Pipeline {
	var fetcher Fetcher = NewSequentialFetcher(api)
	if opts.Concurrency > 1 {
		fetcher = NewConcurrentFetcher(api, opts.Concurrency)
	}

	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}

	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	return &Pipeline{
		api:     api,
		fetcher: fetcher,
		loc:     loc,
		logger:  logger,
	}
}

// Run computes the weekly subscription report of username for month.
func (p *Pipeline) Run(ctx context.Context, username string, month domain.Month) (*Result, error) {
	identity, err := p.api.ResolveIdentity(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("resolve identity: %w", err)
	}

	logger := p.logger.With().Str("username", identity.Username).Str("phid", identity.PHID).Logger()

	items, err := p.api.SubscribedTasks(ctx, identity.PHID)
	if err != nil {
		return nil, fmt.Errorf("enumerate subscribed tasks: %w", err)
	}

	observability.ItemsEnumerated.Set(float64(len(items)))
	logger.Info().Int("items", len(items)).Msg("subscribed tasks enumerated")

	histories, err := p.fetcher.Fetch(ctx, items)
	if err != nil {
		return nil, fmt.Errorf("fetch transactions: %w", err)
	}

	events := p.extract(items, histories, identity.PHID)

	p.recordEvents(events, month)
	logger.Info().Int("events", len(events)).Str("month", month.String()).Msg("subscription events extracted")

	return &Result{
		Identity: identity,
		Items:    items,
		Events:   events,
		Report:   Aggregate(events, month, p.loc),
	}, nil
}

// extract walks items in enumeration order, looking histories up by id.
func (p *Pipeline) extract(items []domain.ItemReference, histories map[int64][]domain.TransactionRecord, phid string) []domain.SubscriptionEvent {
	events := make([]domain.SubscriptionEvent, 0, len(items))

	for _, item := range items {
		ev, found := ExtractEvent(item.ID, histories[item.ID], phid)
		if !found {
			continue
		}

		events = append(events, ev)
	}

	return events
}

func (p *Pipeline) recordEvents(events []domain.SubscriptionEvent, month domain.Month) {
	for _, ev := range events {
		inMonth := month.Contains(ev.OccurredAt, p.loc)
		observability.SubscriptionEvents.WithLabelValues(strconv.FormatBool(inMonth)).Inc()
	}
}
