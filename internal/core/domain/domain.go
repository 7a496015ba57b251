// Package domain holds the value types shared by the Phabricator and Gerrit
// statistics pipelines.
package domain

import "time"

// SubscribersTransaction is the transaction type recording watcher changes.
const SubscribersTransaction = "core:subscribers"

// WeeksPerMonth is the number of week buckets in a monthly report.
const WeeksPerMonth = 5

// Identity is a username resolved to its stable handle (PHID).
type Identity struct {
	Username string
	PHID     string
}

// ItemReference points to a watched work item.
type ItemReference struct {
	ID int64
}

// TransactionRecord is one audit-log entry of a work item.
// OldValues and NewValues are only populated for subscriber changes.
type TransactionRecord struct {
	ItemID    int64
	Type      string
	OldValues []string
	NewValues []string
	CreatedAt time.Time
}

// SubscriptionEvent is the moment an identity started watching an item.
type SubscriptionEvent struct {
	ItemID     int64
	OccurredAt time.Time
}

// WeekBucket counts subscription events in one week of a month.
type WeekBucket struct {
	Week  int
	Count int
}

// WeeklyReport is the per-week breakdown for one target month.
type WeeklyReport struct {
	Month   Month
	Buckets [WeeksPerMonth]WeekBucket
}

// NewWeeklyReport returns a report with all five buckets zeroed.
func NewWeeklyReport(m Month) WeeklyReport {
	r := WeeklyReport{Month: m}
	for i := range r.Buckets {
		r.Buckets[i] = WeekBucket{Week: i + 1}
	}

	return r
}

// Total returns the sum of all bucket counts.
func (r WeeklyReport) Total() int {
	total := 0
	for _, b := range r.Buckets {
		total += b.Count
	}

	return total
}

// ChangeCount is the number of code review changes an owner has in a status.
type ChangeCount struct {
	Owner  string
	Status string
	Count  int
	Latest time.Time
}
