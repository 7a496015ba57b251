package phabricator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/lueurxax/task-stats/internal/core/domain"
	apperrors "github.com/lueurxax/task-stats/internal/core/errors"
)

const (
	methodTaskTransactions = "maniphest.gettasktransactions"
	paramIDs               = "ids[0]"
)

// TaskTransactions returns the full transaction history of one task in the
// order the service lists it.
func (c *Client) TaskTransactions(ctx context.Context, itemID int64) ([]domain.TransactionRecord, error) {
	key := strconv.FormatInt(itemID, 10)

	params := url.Values{}
	params.Set(paramIDs, key)

	raw, err := c.call(ctx, methodTaskTransactions, params)
	if err != nil {
		return nil, fmt.Errorf("task %d transactions: %w", itemID, err)
	}

	byTask, err := decodeTransactionMap(raw)
	if err != nil {
		return nil, fmt.Errorf("task %d transactions: %w", itemID, err)
	}

	items, ok := byTask[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s result has no entry for task %d", apperrors.ErrDataShape, methodTaskTransactions, itemID)
	}

	records := make([]domain.TransactionRecord, 0, len(items))

	for i, item := range items {
		rec := domain.TransactionRecord{
			ItemID:    itemID,
			Type:      item.TransactionType,
			CreatedAt: item.DateCreated.Time,
		}

		if item.TransactionType == domain.SubscribersTransaction {
			if rec.OldValues, err = decodeValueSet(item.OldValue); err != nil {
				return nil, fmt.Errorf("task %d transaction %d old value: %w", itemID, i, err)
			}

			if rec.NewValues, err = decodeValueSet(item.NewValue); err != nil {
				return nil, fmt.Errorf("task %d transaction %d new value: %w", itemID, i, err)
			}
		}

		records = append(records, rec)
	}

	return records, nil
}

// decodeTransactionMap reads the task-id keyed payload. An empty PHP array
// is serialized as [] rather than {}.
func decodeTransactionMap(raw json.RawMessage) (map[string][]transactionItem, error) {
	if isNull(raw) {
		return nil, fmt.Errorf("%w: %s returned no result", apperrors.ErrDataShape, methodTaskTransactions)
	}

	if bytes.Equal(bytes.TrimSpace(raw), []byte("[]")) {
		return map[string][]transactionItem{}, nil
	}

	var byTask map[string][]transactionItem
	if err := json.Unmarshal(raw, &byTask); err != nil {
		return nil, fmt.Errorf("%w: parse %s result: %w", apperrors.ErrDataShape, methodTaskTransactions, err)
	}

	return byTask, nil
}
