package upload

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	// StatusPendingAssignment marks a freshly uploaded file that no record
	// references yet. Only files in this state may be attached by an
	// approved proposal.
	StatusPendingAssignment Status = "pending_assignment"
	StatusAssigned          Status = "assigned"
)

type Upload struct {
	ID        uuid.UUID `json:"id"`
	Filename  string    `json:"filename"`
	MimeType  string    `json:"mime_type"`
	Size      int64     `json:"size"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
