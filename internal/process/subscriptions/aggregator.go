package subscriptions

import (
	"time"

	"github.com/lueurxax/task-stats/internal/core/domain"
)

const daysPerWeek = 7

// Aggregate counts events per week of the target month. Event times are
// converted to loc before their calendar day is taken; events outside the
// month are dropped.
func Aggregate(events []domain.SubscriptionEvent, month domain.Month, loc *time.Location) domain.WeeklyReport {
	if loc == nil {
		loc = time.Local
	}

	report := domain.NewWeeklyReport(month)

	for _, ev := range events {
		if !month.Contains(ev.OccurredAt, loc) {
			continue
		}

		week := WeekOfMonth(ev.OccurredAt.In(loc).Day())
		report.Buckets[week-1].Count++
	}

	return report
}

// WeekOfMonth maps a day of month to ceil(day/7): 1-7 is week 1 and 29-31
// is week 5.
func WeekOfMonth(day int) int {
	return (day + daysPerWeek - 1) / daysPerWeek
}
