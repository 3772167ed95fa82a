package taxonomy

import (
	"time"

	"github.com/google/uuid"
)

type Tree string

const (
	TreeCategory           Tree = "category"
	TreeOrganisation       Tree = "organisation"
	TreeServiceEligibility Tree = "service_eligibility"
)

type Taxonomy struct {
	ID        uuid.UUID  `json:"id"`
	Tree      Tree       `json:"tree"`
	ParentID  *uuid.UUID `json:"parent_id,omitempty"`
	Name      string     `json:"name"`
	Slug      string     `json:"slug"`
	Order     int        `json:"order"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}
