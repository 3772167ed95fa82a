package servicelocation

import (
	"time"

	"github.com/google/uuid"

	"github.com/connectedplaces/directory/modules/directory/domain/openinghours"
)

// ServiceLocation links a service to a location and owns that pairing's
// opening-hours schedule. The hour sets are always replaced wholesale, never
// merged element by element.
type ServiceLocation struct {
	ID          uuid.UUID  `json:"id"`
	ServiceID   uuid.UUID  `json:"service_id"`
	LocationID  uuid.UUID  `json:"location_id"`
	Name        *string    `json:"name,omitempty"`
	ImageFileID *uuid.UUID `json:"image_file_id,omitempty"`

	RegularOpeningHours []openinghours.RegularOpeningHour `json:"regular_opening_hours"`
	HolidayOpeningHours []openinghours.HolidayOpeningHour `json:"holiday_opening_hours"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NextOccurrence resolves the soonest upcoming opening across all regular
// hours, with the location's holiday overrides applied.
func (sl *ServiceLocation) NextOccurrence(cal openinghours.Calendar, now time.Time) (openinghours.Occurrence, bool) {
	var best openinghours.Occurrence
	found := false
	for _, rule := range sl.RegularOpeningHours {
		occ, ok := cal.NextOccurrence(rule, sl.HolidayOpeningHours, now)
		if !ok {
			continue
		}
		if !found || occurrenceBefore(occ, best) {
			best = occ
			found = true
		}
	}
	return best, found
}

// IsOpenNow reports whether any of the location's regular hours is open.
func (sl *ServiceLocation) IsOpenNow(cal openinghours.Calendar, now time.Time) bool {
	for _, rule := range sl.RegularOpeningHours {
		if cal.IsOpen(rule, sl.HolidayOpeningHours, now) {
			return true
		}
	}
	return false
}

func occurrenceBefore(a, b openinghours.Occurrence) bool {
	if !a.Date.Equal(b.Date) {
		return a.Date.Before(b.Date)
	}
	return a.OpensAt < b.OpensAt
}
