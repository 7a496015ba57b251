package domain

import (
	"fmt"
	"time"

	apperrors "github.com/lueurxax/task-stats/internal/core/errors"
)

const (
	monthLayout = "2006-01"
	dayLayout   = "2006-01-02"
)

// Month is a calendar month of a specific year.
type Month struct {
	Year  int
	Month time.Month
}

// ParseMonth parses a YYYY-MM string.
func ParseMonth(s string) (Month, error) {
	if len(s) != len(monthLayout) {
		return Month{}, fmt.Errorf("%w: month %q, expected YYYY-MM", apperrors.ErrInputFormat, s)
	}

	t, err := time.Parse(monthLayout, s)
	if err != nil {
		return Month{}, fmt.Errorf("%w: month %q, expected YYYY-MM", apperrors.ErrInputFormat, s)
	}

	return Month{Year: t.Year(), Month: t.Month()}, nil
}

// ParseDay parses a YYYY-MM-DD string.
func ParseDay(s string) (time.Time, error) {
	if len(s) != len(dayLayout) {
		return time.Time{}, fmt.Errorf("%w: date %q, expected YYYY-MM-DD", apperrors.ErrInputFormat, s)
	}

	t, err := time.Parse(dayLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date %q, expected YYYY-MM-DD", apperrors.ErrInputFormat, s)
	}

	return t, nil
}

// Contains reports whether t, viewed in loc, falls within the month.
func (m Month) Contains(t time.Time, loc *time.Location) bool {
	local := t.In(loc)

	return local.Year() == m.Year && local.Month() == m.Month
}

func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}
