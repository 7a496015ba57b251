package subscriptions

import (
	"slices"

	"github.com/lueurxax/task-stats/internal/core/domain"
)

// ExtractEvent returns the first transaction in which phid was added to the
// item's subscribers. Later resubscriptions on the same item are ignored,
// even when the first one falls outside the month being reported.
func ExtractEvent(itemID int64, records []domain.TransactionRecord, phid string) (domain.SubscriptionEvent, bool) {
	for _, rec := range records {
		if !isSubscriptionAdded(rec, phid) {
			continue
		}

		return domain.SubscriptionEvent{ItemID: itemID, OccurredAt: rec.CreatedAt}, true
	}

	return domain.SubscriptionEvent{}, false
}

func isSubscriptionAdded(rec domain.TransactionRecord, phid string) bool {
	if rec.Type != domain.SubscribersTransaction {
		return false
	}

	return !slices.Contains(rec.OldValues, phid) && slices.Contains(rec.NewValues, phid)
}
