package report

import (
	"time"

	"threadmarket/domain"
	"threadmarket/pkg/apperror"
)

// StartOfDay truncates t to 00:00:00.000 UTC.
func StartOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// EndOfDay clamps t to 23:59:59.999 UTC, the inclusive end boundary used by
// every range query.
func EndOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, int(999*time.Millisecond), time.UTC)
}

// NormalizeRange widens the optional bounds to whole days and rejects
// inverted ranges. Nil bounds stay open.
func NormalizeRange(start, end *time.Time) (domain.DateRange, error) {
	var rng domain.DateRange

	if start != nil {
		s := StartOfDay(*start)
		rng.Start = &s
	}
	if end != nil {
		e := EndOfDay(*end)
		rng.End = &e
	}

	if rng.Start != nil && rng.End != nil && rng.Start.After(*rng.End) {
		return domain.DateRange{}, apperror.Validation("start_date must not be after end_date")
	}

	return rng, nil
}

// DayRange is the whole calendar day containing date.
func DayRange(date time.Time) domain.DateRange {
	start := StartOfDay(date)
	end := EndOfDay(date)
	return domain.DateRange{Start: &start, End: &end}
}

// WeekRange resolves (year, week) to a 7-day window: January 1st plus
// 7·(week−1) days, snapped back to the Monday on or before it.
func WeekRange(year, week int) (domain.DateRange, error) {
	if year <= 0 || week < 1 || week > 53 {
		return domain.DateRange{}, apperror.Validation("invalid week or year")
	}

	simple := time.Date(year, time.January, 1+(week-1)*7, 0, 0, 0, 0, time.UTC)

	offset := 1 - int(simple.Weekday())
	if simple.Weekday() == time.Sunday {
		offset = -6
	}

	start := simple.AddDate(0, 0, offset)
	end := EndOfDay(start.AddDate(0, 0, 6))

	return domain.DateRange{Start: &start, End: &end}, nil
}

// MonthRange resolves (year, month) to the calendar month.
func MonthRange(year, month int) (domain.DateRange, error) {
	if year <= 0 || month < 1 || month > 12 {
		return domain.DateRange{}, apperror.Validation("invalid month or year")
	}

	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	// day 0 of the next month is the last day of this one
	end := EndOfDay(time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC))

	return domain.DateRange{Start: &start, End: &end}, nil
}

// QuarterRange resolves (year, quarter) to a 3-month block starting at month
// (quarter−1)·3+1.
func QuarterRange(year, quarter int) (domain.DateRange, error) {
	if year <= 0 || quarter < 1 || quarter > 4 {
		return domain.DateRange{}, apperror.Validation("invalid quarter or year")
	}

	firstMonth := time.Month((quarter-1)*3 + 1)
	start := time.Date(year, firstMonth, 1, 0, 0, 0, 0, time.UTC)
	end := EndOfDay(time.Date(year, firstMonth+3, 0, 0, 0, 0, 0, time.UTC))

	return domain.DateRange{Start: &start, End: &end}, nil
}
