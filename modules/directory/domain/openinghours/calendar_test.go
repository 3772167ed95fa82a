package openinghours_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/connectedplaces/directory/modules/directory/domain/openinghours"
)

var london = mustLoadLocation("Europe/London")

func mustLoadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic(err)
	}
	return loc
}

func date(y int, m time.Month, d int) openinghours.Date {
	return openinghours.NewDate(y, m, d)
}

func tod(s string) openinghours.TimeOfDay {
	t, err := openinghours.ParseTimeOfDay(s)
	if err != nil {
		panic(err)
	}
	return t
}

func weeklyMonday() openinghours.RegularOpeningHour {
	return openinghours.RegularOpeningHour{
		Frequency: openinghours.FrequencyWeekly,
		Weekday:   openinghours.WeekdayMonday,
		OpensAt:   tod("09:00"),
		ClosesAt:  tod("17:30"),
	}
}

func TestNextOccurrenceWeekly(t *testing.T) {
	cal := openinghours.NewCalendar(london)
	now := time.Date(2024, time.July, 31, 12, 0, 0, 0, london)

	occ, ok := cal.NextOccurrence(weeklyMonday(), nil, now)
	require.True(t, ok)
	assert.Equal(t, date(2024, time.August, 5), occ.Date)
	assert.Equal(t, tod("09:00"), occ.OpensAt)
	assert.Equal(t, tod("17:30"), occ.ClosesAt)
}

func TestNextOccurrenceWeeklyRetimedByHoliday(t *testing.T) {
	cal := openinghours.NewCalendar(london)
	now := time.Date(2024, time.July, 31, 12, 0, 0, 0, london)
	overrides := []openinghours.HolidayOpeningHour{
		{
			StartsAt: date(2024, time.August, 2),
			EndsAt:   date(2024, time.August, 9),
			OpensAt:  tod("10:00"),
			ClosesAt: tod("16:00"),
		},
	}

	occ, ok := cal.NextOccurrence(weeklyMonday(), overrides, now)
	require.True(t, ok)
	assert.Equal(t, date(2024, time.August, 5), occ.Date)
	assert.Equal(t, tod("10:00"), occ.OpensAt)
	assert.Equal(t, tod("16:00"), occ.ClosesAt)
}

func TestNextOccurrenceMonthly(t *testing.T) {
	cal := openinghours.NewCalendar(london)
	now := time.Date(2024, time.July, 31, 9, 0, 0, 0, london)
	rule := openinghours.RegularOpeningHour{
		Frequency:  openinghours.FrequencyMonthly,
		DayOfMonth: 28,
		OpensAt:    tod("09:00"),
		ClosesAt:   tod("17:00"),
	}

	occ, ok := cal.NextOccurrence(rule, nil, now)
	require.True(t, ok)
	assert.Equal(t, date(2024, time.August, 28), occ.Date)

	closedLateAugust := []openinghours.HolidayOpeningHour{
		{
			StartsAt: date(2024, time.August, 26),
			EndsAt:   date(2024, time.August, 30),
			IsClosed: true,
		},
	}
	occ, ok = cal.NextOccurrence(rule, closedLateAugust, now)
	require.True(t, ok)
	assert.Equal(t, date(2024, time.September, 28), occ.Date)
}

func TestNextOccurrenceMonthlyClampsShortMonths(t *testing.T) {
	cal := openinghours.NewCalendar(london)
	rule := openinghours.RegularOpeningHour{
		Frequency:  openinghours.FrequencyMonthly,
		DayOfMonth: 31,
		OpensAt:    tod("09:00"),
		ClosesAt:   tod("17:00"),
	}
	now := time.Date(2024, time.September, 1, 9, 0, 0, 0, london)

	occ, ok := cal.NextOccurrence(rule, nil, now)
	require.True(t, ok)
	assert.Equal(t, date(2024, time.September, 30), occ.Date)
}

func TestNextOccurrenceFortnightly(t *testing.T) {
	cal := openinghours.NewCalendar(london)
	anchor := date(2024, time.July, 30)
	rule := openinghours.RegularOpeningHour{
		Frequency: openinghours.FrequencyFortnightly,
		StartsAt:  &anchor,
		OpensAt:   tod("09:00"),
		ClosesAt:  tod("17:00"),
	}
	now := time.Date(2024, time.July, 31, 9, 0, 0, 0, london)

	occ, ok := cal.NextOccurrence(rule, nil, now)
	require.True(t, ok)
	assert.Equal(t, date(2024, time.August, 13), occ.Date)

	elsewhere := []openinghours.HolidayOpeningHour{
		{
			StartsAt: date(2024, time.August, 19),
			EndsAt:   date(2024, time.August, 23),
			IsClosed: true,
		},
	}
	occ, ok = cal.NextOccurrence(rule, elsewhere, now)
	require.True(t, ok)
	assert.Equal(t, date(2024, time.August, 13), occ.Date)
}

func TestNextOccurrenceLastMondayOfMonth(t *testing.T) {
	cal := openinghours.NewCalendar(london)
	rule := openinghours.RegularOpeningHour{
		Frequency:         openinghours.FrequencyNthOccurrenceOfMonth,
		Weekday:           openinghours.WeekdayMonday,
		OccurrenceOfMonth: 5,
		OpensAt:           tod("09:00"),
		ClosesAt:          tod("17:00"),
	}
	now := time.Date(2024, time.July, 31, 9, 0, 0, 0, london)

	occ, ok := cal.NextOccurrence(rule, nil, now)
	require.True(t, ok)
	assert.Equal(t, date(2024, time.August, 26), occ.Date)

	closed := []openinghours.HolidayOpeningHour{
		{
			StartsAt: date(2024, time.August, 26),
			EndsAt:   date(2024, time.August, 26),
			IsClosed: true,
		},
	}
	occ, ok = cal.NextOccurrence(rule, closed, now)
	require.True(t, ok)
	assert.Equal(t, date(2024, time.September, 30), occ.Date)
}

func TestNextOccurrenceSameDayRespectsClosingTime(t *testing.T) {
	cal := openinghours.NewCalendar(london)
	// Monday 5 Aug 2024.
	beforeClose := time.Date(2024, time.August, 5, 17, 0, 0, 0, london)
	afterClose := time.Date(2024, time.August, 5, 18, 0, 0, 0, london)

	occ, ok := cal.NextOccurrence(weeklyMonday(), nil, beforeClose)
	require.True(t, ok)
	assert.Equal(t, date(2024, time.August, 5), occ.Date)

	occ, ok = cal.NextOccurrence(weeklyMonday(), nil, afterClose)
	require.True(t, ok)
	assert.Equal(t, date(2024, time.August, 12), occ.Date)
}

func TestNextOccurrenceHorizonExhausted(t *testing.T) {
	cal := openinghours.NewCalendar(london)
	closedForever := []openinghours.HolidayOpeningHour{
		{
			StartsAt: date(2020, time.January, 1),
			EndsAt:   date(2040, time.January, 1),
			IsClosed: true,
		},
	}
	now := time.Date(2024, time.July, 31, 9, 0, 0, 0, london)

	_, ok := cal.NextOccurrence(weeklyMonday(), closedForever, now)
	assert.False(t, ok)
}

func TestIsOpen(t *testing.T) {
	cal := openinghours.NewCalendar(london)
	rule := weeklyMonday()

	t.Run("open during window", func(t *testing.T) {
		now := time.Date(2024, time.August, 5, 10, 0, 0, 0, london)
		assert.True(t, cal.IsOpen(rule, nil, now))
	})

	t.Run("closed before opening", func(t *testing.T) {
		now := time.Date(2024, time.August, 5, 8, 59, 0, 0, london)
		assert.False(t, cal.IsOpen(rule, nil, now))
	})

	t.Run("closed at closing time", func(t *testing.T) {
		now := time.Date(2024, time.August, 5, 17, 30, 0, 0, london)
		assert.False(t, cal.IsOpen(rule, nil, now))
	})

	t.Run("closed on a non-matching day", func(t *testing.T) {
		now := time.Date(2024, time.August, 6, 10, 0, 0, 0, london)
		assert.False(t, cal.IsOpen(rule, nil, now))
	})

	t.Run("closed override wins over the rule", func(t *testing.T) {
		overrides := []openinghours.HolidayOpeningHour{
			{
				StartsAt: date(2024, time.August, 5),
				EndsAt:   date(2024, time.August, 5),
				IsClosed: true,
			},
		}
		now := time.Date(2024, time.August, 5, 10, 0, 0, 0, london)
		assert.False(t, cal.IsOpen(rule, overrides, now))
	})

	t.Run("open override retimes the window", func(t *testing.T) {
		overrides := []openinghours.HolidayOpeningHour{
			{
				StartsAt: date(2024, time.August, 5),
				EndsAt:   date(2024, time.August, 5),
				OpensAt:  tod("12:00"),
				ClosesAt: tod("14:00"),
			},
		}
		morning := time.Date(2024, time.August, 5, 10, 0, 0, 0, london)
		midday := time.Date(2024, time.August, 5, 13, 0, 0, 0, london)
		assert.False(t, cal.IsOpen(rule, overrides, morning))
		assert.True(t, cal.IsOpen(rule, overrides, midday))
	})
}

func TestRegularOpeningHourValidate(t *testing.T) {
	anchor := date(2024, time.July, 30)
	cases := []struct {
		name    string
		rule    openinghours.RegularOpeningHour
		wantErr bool
	}{
		{
			name: "valid weekly",
			rule: weeklyMonday(),
		},
		{
			name: "weekday out of range",
			rule: openinghours.RegularOpeningHour{
				Frequency: openinghours.FrequencyWeekly,
				Weekday:   8,
				OpensAt:   tod("09:00"),
				ClosesAt:  tod("17:00"),
			},
			wantErr: true,
		},
		{
			name: "closes before opens",
			rule: openinghours.RegularOpeningHour{
				Frequency: openinghours.FrequencyWeekly,
				Weekday:   1,
				OpensAt:   tod("17:00"),
				ClosesAt:  tod("09:00"),
			},
			wantErr: true,
		},
		{
			name: "fortnightly without anchor",
			rule: openinghours.RegularOpeningHour{
				Frequency: openinghours.FrequencyFortnightly,
				OpensAt:   tod("09:00"),
				ClosesAt:  tod("17:00"),
			},
			wantErr: true,
		},
		{
			name: "valid fortnightly",
			rule: openinghours.RegularOpeningHour{
				Frequency: openinghours.FrequencyFortnightly,
				StartsAt:  &anchor,
				OpensAt:   tod("09:00"),
				ClosesAt:  tod("17:00"),
			},
		},
		{
			name: "day of month out of range",
			rule: openinghours.RegularOpeningHour{
				Frequency:  openinghours.FrequencyMonthly,
				DayOfMonth: 32,
				OpensAt:    tod("09:00"),
				ClosesAt:   tod("17:00"),
			},
			wantErr: true,
		},
		{
			name: "unknown frequency",
			rule: openinghours.RegularOpeningHour{
				Frequency: "yearly",
				OpensAt:   tod("09:00"),
				ClosesAt:  tod("17:00"),
			},
			wantErr: true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.rule.Validate()
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
