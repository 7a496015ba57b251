package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/lueurxax/task-stats/internal/core/errors"
)

func TestParseMonth(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Month
		wantErr bool
	}{
		{name: "january", input: "2018-01", want: Month{Year: 2018, Month: time.January}},
		{name: "december", input: "2023-12", want: Month{Year: 2023, Month: time.December}},
		{name: "month zero", input: "2023-00", wantErr: true},
		{name: "month thirteen", input: "2023-13", wantErr: true},
		{name: "single digit month", input: "2023-1", wantErr: true},
		{name: "with day", input: "2023-01-15", wantErr: true},
		{name: "slash separator", input: "2023/01", wantErr: true},
		{name: "empty", input: "", wantErr: true},
		{name: "letters", input: "abcd-ef", wantErr: true},
		{name: "short year", input: "23-01", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseMonth(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, apperrors.ErrInputFormat)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.input, got.String())
		})
	}
}

func TestParseMonthAllValidMonths(t *testing.T) {
	for m := time.January; m <= time.December; m++ {
		want := Month{Year: 2019, Month: m}

		got, err := ParseMonth(want.String())
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestParseDay(t *testing.T) {
	got, err := ParseDay("2018-01-15")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2018, time.January, 15, 0, 0, 0, 0, time.UTC), got)

	for _, bad := range []string{"", "2018-01", "2018-1-15", "2018-02-30", "15-01-2018"} {
		_, err := ParseDay(bad)
		assert.ErrorIs(t, err, apperrors.ErrInputFormat, bad)
	}
}

func TestMonthContains(t *testing.T) {
	m := Month{Year: 2024, Month: time.March}

	assert.True(t, m.Contains(time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC), time.UTC))
	assert.True(t, m.Contains(time.Date(2024, time.March, 31, 23, 59, 59, 0, time.UTC), time.UTC))
	assert.False(t, m.Contains(time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC), time.UTC))
	assert.False(t, m.Contains(time.Date(2023, time.March, 10, 0, 0, 0, 0, time.UTC), time.UTC))

	// 23:30 UTC on the last day is already the next month two hours east.
	east := time.FixedZone("UTC+2", 2*60*60)
	assert.False(t, m.Contains(time.Date(2024, time.March, 31, 23, 30, 0, 0, time.UTC), east))
}

func TestNewWeeklyReport(t *testing.T) {
	r := NewWeeklyReport(Month{Year: 2024, Month: time.May})

	for i, b := range r.Buckets {
		assert.Equal(t, i+1, b.Week)
		assert.Zero(t, b.Count)
	}

	assert.Zero(t, r.Total())
}
