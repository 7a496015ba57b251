package phabricator

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/lueurxax/task-stats/internal/core/domain"
	apperrors "github.com/lueurxax/task-stats/internal/core/errors"
	"github.com/lueurxax/task-stats/internal/platform/observability"
)

const (
	methodManiphestSearch = "maniphest.search"
	paramSubscribers      = "constraints[subscribers][0]"
	paramAfter            = "after"
	itemTypeTask          = "TASK"
)

// SubscribedTasks returns every task the given PHID watches, following the
// search cursor until the configured CursorMode says stop. Items keep the
// order the service returns them in and are not deduplicated.
func (c *Client) SubscribedTasks(ctx context.Context, phid string) ([]domain.ItemReference, error) {
	var (
		items []domain.ItemReference
		after string
	)

	seen := make(map[string]struct{})

	for page := 1; ; page++ {
		res, err := c.searchPage(ctx, phid, after)
		if err != nil {
			return nil, fmt.Errorf("search page %d: %w", page, err)
		}

		observability.PagesFetched.Inc()

		for _, item := range res.Data {
			if item.Type != itemTypeTask {
				continue
			}

			if item.ID <= 0 {
				return nil, fmt.Errorf("%w: %s page %d has task without id", apperrors.ErrDataShape, methodManiphestSearch, page)
			}

			items = append(items, domain.ItemReference{ID: item.ID})
		}

		c.logger.Debug().Int("page", page).Int("results", len(res.Data)).Int("tasks", len(items)).Msg("search page fetched")

		if !c.cursorMode.Continues(res.Cursor.After) {
			return items, nil
		}

		next := res.Cursor.After.Token()
		if _, ok := seen[next]; ok {
			return nil, fmt.Errorf("%w: %s returned cursor %q twice", apperrors.ErrDataShape, methodManiphestSearch, next)
		}

		seen[next] = struct{}{}
		after = next
	}
}

func (c *Client) searchPage(ctx context.Context, phid, after string) (*searchResult, error) {
	params := url.Values{}
	params.Set(paramSubscribers, phid)

	if after != "" {
		params.Set(paramAfter, after)
	}

	raw, err := c.call(ctx, methodManiphestSearch, params)
	if err != nil {
		return nil, err
	}

	if isNull(raw) {
		return nil, fmt.Errorf("%w: %s returned no result", apperrors.ErrDataShape, methodManiphestSearch)
	}

	var res searchResult
	if err := json.Unmarshal(raw, &res); err != nil {
		return nil, fmt.Errorf("%w: parse %s result: %w", apperrors.ErrDataShape, methodManiphestSearch, err)
	}

	if res.Data == nil {
		return nil, fmt.Errorf("%w: %s result has no data list", apperrors.ErrDataShape, methodManiphestSearch)
	}

	if res.Cursor == nil {
		return nil, fmt.Errorf("%w: %s result has no cursor", apperrors.ErrDataShape, methodManiphestSearch)
	}

	return &res, nil
}
