package phabricator

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lueurxax/task-stats/internal/core/domain"
	apperrors "github.com/lueurxax/task-stats/internal/core/errors"
)

const transactionsBody = `{"result":{"101":[
	{"taskID":"101","transactionType":"core:create","oldValue":null,"newValue":true,"dateCreated":"1514764800"},
	{"taskID":"101","transactionType":"core:subscribers","oldValue":[],"newValue":["PHID-USER-1"],"dateCreated":"1514937600"},
	{"taskID":"101","transactionType":"status","oldValue":"open","newValue":"resolved","dateCreated":1515024000},
	{"taskID":"101","transactionType":"core:subscribers","oldValue":{"0":"PHID-USER-1","1":"PHID-USER-2"},"newValue":null,"dateCreated":"1515110400"}
]},"error_code":null,"error_info":null}`

func TestTaskTransactions(t *testing.T) {
	f, ts := newFakeConduit(t, map[string]conduitHandler{
		methodTaskTransactions: okBody(transactionsBody),
	})

	records, err := newTestClient(ts.URL, CursorTruthy).TaskTransactions(context.Background(), 101)
	require.NoError(t, err)
	require.Len(t, records, 4)

	calls := f.paramsFor(methodTaskTransactions)
	require.Len(t, calls, 1)
	assert.Equal(t, "101", calls[0].Get(paramIDs))

	assert.Equal(t, "core:create", records[0].Type)
	assert.Nil(t, records[0].OldValues)
	assert.Nil(t, records[0].NewValues)

	assert.Equal(t, domain.SubscribersTransaction, records[1].Type)
	assert.Empty(t, records[1].OldValues)
	assert.Equal(t, []string{"PHID-USER-1"}, records[1].NewValues)
	assert.Equal(t, time.Unix(1514937600, 0), records[1].CreatedAt)
	assert.Equal(t, int64(101), records[1].ItemID)

	assert.Equal(t, time.Unix(1515024000, 0), records[2].CreatedAt)
	assert.Nil(t, records[2].NewValues)

	assert.Equal(t, []string{"PHID-USER-1", "PHID-USER-2"}, records[3].OldValues)
	assert.Nil(t, records[3].NewValues)
}

func TestTaskTransactions_EmptyHistory(t *testing.T) {
	_, ts := newFakeConduit(t, map[string]conduitHandler{
		methodTaskTransactions: okBody(`{"result":{"5":[]}}`),
	})

	records, err := newTestClient(ts.URL, CursorTruthy).TaskTransactions(context.Background(), 5)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestTaskTransactions_MalformedPayloads(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "null result", body: `{"result":null}`},
		{name: "empty php array", body: `{"result":[]}`},
		{name: "other task only", body: `{"result":{"102":[]}}`},
		{name: "bad timestamp", body: `{"result":{"101":[{"transactionType":"core:comment","dateCreated":"yesterday"}]}}`},
		{name: "subscriber value not a list", body: `{"result":{"101":[{"transactionType":"core:subscribers","oldValue":"PHID-USER-1","newValue":[],"dateCreated":"1"}]}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ts := newFakeConduit(t, map[string]conduitHandler{methodTaskTransactions: okBody(tt.body)})

			_, err := newTestClient(ts.URL, CursorTruthy).TaskTransactions(context.Background(), 101)
			assert.ErrorIs(t, err, apperrors.ErrDataShape)
		})
	}
}
