package openinghours

import (
	"encoding/json"
	"fmt"
	"time"
)

type Frequency string

const (
	FrequencyWeekly               Frequency = "weekly"
	FrequencyMonthly              Frequency = "monthly"
	FrequencyFortnightly          Frequency = "fortnightly"
	FrequencyNthOccurrenceOfMonth Frequency = "nth_occurrence_of_month"
)

// Weekdays follow ISO-8601: 1 is Monday, 7 is Sunday.
const (
	WeekdayMonday    = 1
	WeekdaySunday    = 7
	lastOccurrence   = 5
	daysPerFortnight = 14
)

// RegularOpeningHour describes one repeating opening window of a service
// location. Which parameter fields are meaningful depends on Frequency.
type RegularOpeningHour struct {
	Frequency         Frequency `json:"frequency"`
	Weekday           int       `json:"weekday,omitempty"`
	DayOfMonth        int       `json:"day_of_month,omitempty"`
	OccurrenceOfMonth int       `json:"occurrence_of_month,omitempty"`
	StartsAt          *Date     `json:"starts_at,omitempty"`
	OpensAt           TimeOfDay `json:"opens_at"`
	ClosesAt          TimeOfDay `json:"closes_at"`
}

func (r RegularOpeningHour) Validate() error {
	if r.ClosesAt <= r.OpensAt {
		return fmt.Errorf("closes_at %s must be after opens_at %s", r.ClosesAt, r.OpensAt)
	}
	switch r.Frequency {
	case FrequencyWeekly:
		if r.Weekday < WeekdayMonday || r.Weekday > WeekdaySunday {
			return fmt.Errorf("weekday %d out of range 1-7", r.Weekday)
		}
	case FrequencyMonthly:
		if r.DayOfMonth < 1 || r.DayOfMonth > 31 {
			return fmt.Errorf("day_of_month %d out of range 1-31", r.DayOfMonth)
		}
	case FrequencyFortnightly:
		if r.StartsAt == nil {
			return fmt.Errorf("starts_at is required for fortnightly frequency")
		}
	case FrequencyNthOccurrenceOfMonth:
		if r.Weekday < WeekdayMonday || r.Weekday > WeekdaySunday {
			return fmt.Errorf("weekday %d out of range 1-7", r.Weekday)
		}
		if r.OccurrenceOfMonth < 1 || r.OccurrenceOfMonth > lastOccurrence {
			return fmt.Errorf("occurrence_of_month %d out of range 1-5", r.OccurrenceOfMonth)
		}
	default:
		return fmt.Errorf("unknown frequency %q", r.Frequency)
	}
	return nil
}

// HolidayOpeningHour is a date-range exception. A closed override suppresses
// occurrences inside its range; an open one replaces their times.
type HolidayOpeningHour struct {
	StartsAt Date      `json:"starts_at"`
	EndsAt   Date      `json:"ends_at"`
	IsClosed bool      `json:"is_closed"`
	OpensAt  TimeOfDay `json:"opens_at,omitempty"`
	ClosesAt TimeOfDay `json:"closes_at,omitempty"`
}

// Contains reports whether d falls inside the override's inclusive range.
func (h HolidayOpeningHour) Contains(d Date) bool {
	return !d.Before(h.StartsAt) && !d.After(h.EndsAt)
}

// Occurrence is one concrete resolved opening window.
type Occurrence struct {
	Date     Date      `json:"date"`
	OpensAt  TimeOfDay `json:"opens_at"`
	ClosesAt TimeOfDay `json:"closes_at"`
}

// TimeOfDay is a clock time stored as minutes since midnight.
type TimeOfDay int

func NewTimeOfDay(hour, minute int) TimeOfDay {
	return TimeOfDay(hour*60 + minute)
}

func ParseTimeOfDay(s string) (TimeOfDay, error) {
	var hour, minute int
	if _, err := fmt.Sscanf(s, "%d:%d", &hour, &minute); err != nil {
		return 0, fmt.Errorf("invalid time of day %q: %w", s, err)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("invalid time of day %q", s)
	}
	return NewTimeOfDay(hour, minute), nil
}

func (t TimeOfDay) Hour() int   { return int(t) / 60 }
func (t TimeOfDay) Minute() int { return int(t) % 60 }

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute())
}

func (t TimeOfDay) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *TimeOfDay) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseTimeOfDay(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Date is a calendar date without a time component.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{Year: year, Month: month, Day: day}
}

func DateOf(t time.Time) Date {
	return Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}
}

func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, err
	}
	return DateOf(t), nil
}

// utc pins the date to UTC midnight so day arithmetic never crosses DST gaps.
func (d Date) utc() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

func (d Date) Weekday() time.Weekday { return d.utc().Weekday() }

// ISOWeekday returns 1 for Monday through 7 for Sunday.
func (d Date) ISOWeekday() int {
	wd := int(d.Weekday())
	if wd == 0 {
		return WeekdaySunday
	}
	return wd
}

func (d Date) AddDays(n int) Date {
	return DateOf(d.utc().AddDate(0, 0, n))
}

func (d Date) Before(other Date) bool { return d.utc().Before(other.utc()) }
func (d Date) After(other Date) bool  { return d.utc().After(other.utc()) }
func (d Date) Equal(other Date) bool  { return d == other }

// DaysSince returns the number of whole days from other to d.
func (d Date) DaysSince(other Date) int {
	return int(d.utc().Sub(other.utc()) / (24 * time.Hour))
}

func (d Date) String() string {
	return d.utc().Format("2006-01-02")
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
