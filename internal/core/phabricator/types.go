package phabricator

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"time"

	apperrors "github.com/lueurxax/task-stats/internal/core/errors"
)

// userRecord is one element of a user lookup result.
type userRecord struct {
	PHID     string `json:"phid"`
	UserName string `json:"userName"` //nolint:tagliatelle // Conduit uses camelCase
}

// searchResult is the maniphest.search payload.
type searchResult struct {
	Data   []searchItem  `json:"data"`
	Cursor *searchCursor `json:"cursor"`
}

type searchItem struct {
	ID   int64  `json:"id"`
	Type string `json:"type"`
	PHID string `json:"phid"`
}

type searchCursor struct {
	After Cursor `json:"after"`
}

// transactionItem is one entry of maniphest.gettasktransactions.
type transactionItem struct {
	TransactionType string          `json:"transactionType"` //nolint:tagliatelle // Conduit uses camelCase
	OldValue        json.RawMessage `json:"oldValue"`        //nolint:tagliatelle // Conduit uses camelCase
	NewValue        json.RawMessage `json:"newValue"`        //nolint:tagliatelle // Conduit uses camelCase
	DateCreated     unixTime        `json:"dateCreated"`     //nolint:tagliatelle // Conduit uses camelCase
}

// unixTime decodes a Unix timestamp sent either as a string or a number.
type unixTime struct {
	time.Time
}

func (u *unixTime) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return fmt.Errorf("%w: dateCreated: %w", apperrors.ErrDataShape, err)
		}

		trimmed = []byte(s)
	}

	secs, err := strconv.ParseInt(string(trimmed), 10, 64)
	if err != nil {
		return fmt.Errorf("%w: dateCreated %q is not a unix timestamp", apperrors.ErrDataShape, trimmed)
	}

	u.Time = time.Unix(secs, 0)

	return nil
}

// decodeValueSet reads a subscriber list. Conduit sends a JSON array, an
// object when the underlying PHP array is not a list, or null for "none".
func decodeValueSet(raw json.RawMessage) ([]string, error) {
	if isNull(raw) {
		return nil, nil
	}

	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return list, nil
	}

	var keyed map[string]string
	if err := json.Unmarshal(raw, &keyed); err != nil {
		return nil, fmt.Errorf("%w: subscriber value %s is not a list", apperrors.ErrDataShape, truncate(raw))
	}

	keys := make([]string, 0, len(keyed))
	for k := range keyed {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	list = make([]string, 0, len(keyed))
	for _, k := range keys {
		list = append(list, keyed[k])
	}

	return list, nil
}
