package report

import (
	"testing"
	"time"

	"threadmarket/pkg/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeRangeWidensToWholeDays(t *testing.T) {
	start := time.Date(2024, 3, 10, 14, 30, 0, 0, time.UTC)
	end := time.Date(2024, 3, 12, 9, 0, 0, 0, time.UTC)

	rng, err := NormalizeRange(&start, &end)
	require.NoError(t, err)

	assert.Equal(t, time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC), *rng.Start)
	assert.Equal(t, 23, rng.End.Hour())
	assert.Equal(t, 59, rng.End.Minute())
	assert.Equal(t, 59, rng.End.Second())
	assert.Equal(t, 12, rng.End.Day())
}

func TestNormalizeRangeRejectsInvertedRange(t *testing.T) {
	start := time.Date(2024, 3, 12, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)

	_, err := NormalizeRange(&start, &end)
	require.Error(t, err)
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
}

func TestNormalizeRangeOpenBounds(t *testing.T) {
	rng, err := NormalizeRange(nil, nil)
	require.NoError(t, err)
	assert.True(t, rng.IsZero())

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rng, err = NormalizeRange(&start, nil)
	require.NoError(t, err)
	assert.NotNil(t, rng.Start)
	assert.Nil(t, rng.End)
}

func TestWeekRange(t *testing.T) {
	tests := []struct {
		name      string
		year      int
		week      int
		wantStart time.Time
		wantEnd   time.Time
	}{
		{
			// 2024-01-01 is a Monday, week 1 starts there
			name:      "first week of 2024",
			year:      2024,
			week:      1,
			wantStart: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2024, 1, 7, 0, 0, 0, 0, time.UTC),
		},
		{
			// 2023-01-01 is a Sunday, snaps back to Monday 2022-12-26
			name:      "first week of 2023 snaps to previous monday",
			year:      2023,
			week:      1,
			wantStart: time.Date(2022, 12, 26, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name:      "second week of 2024",
			year:      2024,
			week:      2,
			wantStart: time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2024, 1, 14, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rng, err := WeekRange(tc.year, tc.week)
			require.NoError(t, err)

			assert.Equal(t, tc.wantStart, *rng.Start)
			assert.Equal(t, tc.wantEnd.Year(), rng.End.Year())
			assert.Equal(t, tc.wantEnd.Month(), rng.End.Month())
			assert.Equal(t, tc.wantEnd.Day(), rng.End.Day())
			assert.Equal(t, 23, rng.End.Hour())
		})
	}
}

func TestWeekRangeRejectsBadInput(t *testing.T) {
	for _, tc := range []struct{ year, week int }{
		{0, 1},
		{2024, 0},
		{2024, 54},
	} {
		_, err := WeekRange(tc.year, tc.week)
		assert.Error(t, err)
	}
}

func TestMonthRangeBoundaries(t *testing.T) {
	rng, err := MonthRange(2024, 2)
	require.NoError(t, err)

	// leap year february
	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), *rng.Start)
	assert.Equal(t, 29, rng.End.Day())
	assert.Equal(t, time.February, rng.End.Month())

	rng, err = MonthRange(2024, 12)
	require.NoError(t, err)
	assert.Equal(t, 31, rng.End.Day())
	assert.Equal(t, time.December, rng.End.Month())

	_, err = MonthRange(2024, 13)
	assert.Error(t, err)
}

func TestQuarterRangeBoundaries(t *testing.T) {
	rng, err := QuarterRange(2024, 4)
	require.NoError(t, err)

	assert.Equal(t, time.Date(2024, 10, 1, 0, 0, 0, 0, time.UTC), *rng.Start)
	assert.Equal(t, time.December, rng.End.Month())
	assert.Equal(t, 31, rng.End.Day())

	rng, err = QuarterRange(2024, 1)
	require.NoError(t, err)
	assert.Equal(t, time.January, rng.Start.Month())
	assert.Equal(t, time.March, rng.End.Month())
	assert.Equal(t, 31, rng.End.Day())

	_, err = QuarterRange(2024, 5)
	assert.Error(t, err)
}
