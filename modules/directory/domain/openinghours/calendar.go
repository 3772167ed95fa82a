package openinghours

import "time"

// searchHorizonMonths bounds the forward search for the next occurrence. A
// rule whose every occurrence is suppressed by closed overrides would
// otherwise never terminate; two years is the documented contract.
const searchHorizonMonths = 24

// Calendar resolves recurrence rules in the system's single fixed time zone.
type Calendar struct {
	loc *time.Location
}

func NewCalendar(loc *time.Location) Calendar {
	if loc == nil {
		loc = time.UTC
	}
	return Calendar{loc: loc}
}

// NextOccurrence resolves the first upcoming occurrence of the rule at or
// after now, with holiday overrides applied. Occurrences whose date falls in
// a closed override are skipped; an open override replaces the rule's times.
// The second return value is false when no occurrence exists within the
// search horizon.
func (c Calendar) NextOccurrence(rule RegularOpeningHour, overrides []HolidayOpeningHour, now time.Time) (Occurrence, bool) {
	now = now.In(c.loc)
	today := DateOf(now)
	nowTime := NewTimeOfDay(now.Hour(), now.Minute())
	horizon := DateOf(now.AddDate(0, searchHorizonMonths, 0))

	next := occurrenceDates(rule, today)
	for {
		date, ok := next()
		if !ok || date.After(horizon) {
			return Occurrence{}, false
		}

		opensAt, closesAt, closed := effectiveTimes(rule, overrides, date)
		if closed {
			continue
		}
		if date.Equal(today) && closesAt <= nowTime {
			continue
		}
		return Occurrence{Date: date, OpensAt: opensAt, ClosesAt: closesAt}, true
	}
}

// IsOpen reports whether the rule's window contains now. A closed override
// covering today always forces false.
func (c Calendar) IsOpen(rule RegularOpeningHour, overrides []HolidayOpeningHour, now time.Time) bool {
	now = now.In(c.loc)
	today := DateOf(now)
	nowTime := NewTimeOfDay(now.Hour(), now.Minute())

	next := occurrenceDates(rule, today)
	date, ok := next()
	if !ok || !date.Equal(today) {
		return false
	}

	opensAt, closesAt, closed := effectiveTimes(rule, overrides, today)
	if closed {
		return false
	}
	return opensAt <= nowTime && nowTime < closesAt
}

// effectiveTimes applies holiday overrides to one occurrence date. Any closed
// override wins; otherwise the first matching open override retimes the
// occurrence.
func effectiveTimes(rule RegularOpeningHour, overrides []HolidayOpeningHour, date Date) (TimeOfDay, TimeOfDay, bool) {
	var match *HolidayOpeningHour
	for i := range overrides {
		if !overrides[i].Contains(date) {
			continue
		}
		if overrides[i].IsClosed {
			return 0, 0, true
		}
		if match == nil {
			match = &overrides[i]
		}
	}
	if match != nil {
		return match.OpensAt, match.ClosesAt, false
	}
	return rule.OpensAt, rule.ClosesAt, false
}

// occurrenceDates returns a generator of the rule's occurrence dates at or
// after from, in ascending order.
func occurrenceDates(rule RegularOpeningHour, from Date) func() (Date, bool) {
	switch rule.Frequency {
	case FrequencyWeekly:
		return weeklyDates(rule.Weekday, from)
	case FrequencyFortnightly:
		anchor := from
		if rule.StartsAt != nil {
			anchor = *rule.StartsAt
		}
		return fortnightlyDates(anchor, from)
	case FrequencyMonthly:
		return monthlyDates(rule.DayOfMonth, from)
	case FrequencyNthOccurrenceOfMonth:
		return nthWeekdayDates(rule.Weekday, rule.OccurrenceOfMonth, from)
	default:
		return func() (Date, bool) { return Date{}, false }
	}
}

func weeklyDates(weekday int, from Date) func() (Date, bool) {
	current := from.AddDays((weekday - from.ISOWeekday() + 7) % 7)
	return func() (Date, bool) {
		date := current
		current = current.AddDays(7)
		return date, true
	}
}

func fortnightlyDates(anchor, from Date) func() (Date, bool) {
	current := anchor
	if diff := from.DaysSince(anchor); diff > 0 {
		steps := (diff + daysPerFortnight - 1) / daysPerFortnight
		current = anchor.AddDays(steps * daysPerFortnight)
	}
	return func() (Date, bool) {
		date := current
		current = current.AddDays(daysPerFortnight)
		return date, true
	}
}

func monthlyDates(dayOfMonth int, from Date) func() (Date, bool) {
	year, month := from.Year, from.Month
	return func() (Date, bool) {
		for {
			day := dayOfMonth
			// Day 31 in a shorter month resolves to that month's last day,
			// never the next month.
			if max := daysInMonth(year, month); day > max {
				day = max
			}
			date := NewDate(year, month, day)
			year, month = nextMonth(year, month)
			if date.Before(from) {
				continue
			}
			return date, true
		}
	}
}

func nthWeekdayDates(weekday, occurrence int, from Date) func() (Date, bool) {
	year, month := from.Year, from.Month
	return func() (Date, bool) {
		for {
			date := nthWeekdayOfMonth(year, month, weekday, occurrence)
			year, month = nextMonth(year, month)
			if date.Before(from) {
				continue
			}
			return date, true
		}
	}
}

// nthWeekdayOfMonth finds the nth given weekday of a month; occurrence 5
// means the last one.
func nthWeekdayOfMonth(year int, month time.Month, weekday, occurrence int) Date {
	first := NewDate(year, month, 1)
	offset := (weekday - first.ISOWeekday() + 7) % 7
	if occurrence == lastOccurrence {
		last := offset + 1
		for last+7 <= daysInMonth(year, month) {
			last += 7
		}
		return NewDate(year, month, last)
	}
	day := offset + 1 + (occurrence-1)*7
	if max := daysInMonth(year, month); day > max {
		// Months always hold four of each weekday; a fifth that does not
		// exist falls back to the last.
		day -= 7
	}
	return NewDate(year, month, day)
}

func nextMonth(year int, month time.Month) (int, time.Month) {
	if month == time.December {
		return year + 1, time.January
	}
	return year, month + 1
}
