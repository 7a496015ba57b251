package subscriptions

import (
	"context"
	"errors"
	"fmt"

	"github.com/stretchr/testify/mock"

	"github.com/lueurxax/task-stats/internal/core/domain"
)

const (
	methodResolveIdentity  = "ResolveIdentity"
	methodSubscribedTasks  = "SubscribedTasks"
	methodTaskTransactions = "TaskTransactions"
)

var errInvalidType = errors.New("invalid type")

type mockAPI struct {
	mock.Mock
}

func (m *mockAPI) ResolveIdentity(ctx context.Context, username string) (domain.Identity, error) {
	args := m.Called(ctx, username)

	id, ok := args.Get(0).(domain.Identity)
	if !ok {
		return domain.Identity{}, errInvalidType
	}

	if err := args.Error(1); err != nil {
		return id, fmt.Errorf("%w", err)
	}

	return id, nil
}

func (m *mockAPI) SubscribedTasks(ctx context.Context, phid string) ([]domain.ItemReference, error) {
	args := m.Called(ctx, phid)
	if args.Get(0) == nil {
		if err := args.Error(1); err != nil {
			return nil, fmt.Errorf("%w", err)
		}

		return nil, nil
	}

	items, ok := args.Get(0).([]domain.ItemReference)
	if !ok {
		return nil, errInvalidType
	}

	if err := args.Error(1); err != nil {
		return items, fmt.Errorf("%w", err)
	}

	return items, nil
}

func (m *mockAPI) TaskTransactions(ctx context.Context, itemID int64) ([]domain.TransactionRecord, error) {
	args := m.Called(ctx, itemID)
	if args.Get(0) == nil {
		if err := args.Error(1); err != nil {
			return nil, fmt.Errorf("%w", err)
		}

		return nil, nil
	}

	records, ok := args.Get(0).([]domain.TransactionRecord)
	if !ok {
		return nil, errInvalidType
	}

	if err := args.Error(1); err != nil {
		return records, fmt.Errorf("%w", err)
	}

	return records, nil
}
