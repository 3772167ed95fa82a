package location

import (
	"time"

	"github.com/google/uuid"
)

type Location struct {
	ID                  uuid.UUID  `json:"id"`
	AddressLine1        string     `json:"address_line_1"`
	AddressLine2        *string    `json:"address_line_2,omitempty"`
	AddressLine3        *string    `json:"address_line_3,omitempty"`
	City                string     `json:"city"`
	County              string     `json:"county"`
	Postcode            string     `json:"postcode"`
	Country             string     `json:"country"`
	Latitude            *float64   `json:"lat,omitempty"`
	Longitude           *float64   `json:"lon,omitempty"`
	HasWheelchairAccess bool       `json:"has_wheelchair_access"`
	HasInductionLoop    bool       `json:"has_induction_loop"`
	ImageFileID         *uuid.UUID `json:"image_file_id,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}
