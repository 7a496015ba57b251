package subscriptions

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/lueurxax/task-stats/internal/core/domain"
)

// TransactionSource returns the history of a single item.
type TransactionSource interface {
	TaskTransactions(ctx context.Context, itemID int64) ([]domain.TransactionRecord, error)
}

// Fetcher loads the histories of a set of items. Results are keyed by item
// id; a repeated reference reuses the history fetched for its first
// occurrence. Any single failure fails the whole batch.
type Fetcher interface {
	Fetch(ctx context.Context, items []domain.ItemReference) (map[int64][]domain.TransactionRecord, error)
}

// SequentialFetcher issues one blocking request per item in enumeration order.
type SequentialFetcher struct {
	source TransactionSource
}

// NewSequentialFetcher creates a fetcher that never overlaps requests.
func NewSequentialFetcher(source TransactionSource) *SequentialFetcher {
	return &SequentialFetcher{source: source}
}

func (f *SequentialFetcher) Fetch(ctx context.Context, items []domain.ItemReference) (map[int64][]domain.TransactionRecord, error) {
	out := make(map[int64][]domain.TransactionRecord, len(items))

	for _, id := range uniqueIDs(items) {
		records, err := f.source.TaskTransactions(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("fetch item %d: %w", id, err)
		}

		out[id] = records
	}

	return out, nil
}

// ConcurrentFetcher fans requests out and joins them before returning.
type ConcurrentFetcher struct {
	source TransactionSource
	limit  int
}

// NewConcurrentFetcher creates a fan-out fetcher. limit caps the number of
// in-flight requests; zero or less means no cap.
func NewConcurrentFetcher(source TransactionSource, limit int) *ConcurrentFetcher {
	return &ConcurrentFetcher{source: source, limit: limit}
}

func (f *ConcurrentFetcher) Fetch(ctx context.Context, items []domain.ItemReference) (map[int64][]domain.TransactionRecord, error) {
	g, gctx := errgroup.WithContext(ctx)
	if f.limit > 0 {
		g.SetLimit(f.limit)
	}

	var mu sync.Mutex

	out := make(map[int64][]domain.TransactionRecord, len(items))

	for _, id := range uniqueIDs(items) {
		g.Go(func() error {
			records, err := f.source.TaskTransactions(gctx, id)
			if err != nil {
				return fmt.Errorf("fetch item %d: %w", id, err)
			}

			mu.Lock()
			out[id] = records
			mu.Unlock()

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err //nolint:wrapcheck // already wrapped with the item id
	}

	return out, nil
}

func uniqueIDs(items []domain.ItemReference) []int64 {
	seen := make(map[int64]struct{}, len(items))
	ids := make([]int64, 0, len(items))

	for _, item := range items {
		if _, ok := seen[item.ID]; ok {
			continue
		}

		seen[item.ID] = struct{}{}
		ids = append(ids, item.ID)
	}

	return ids
}
