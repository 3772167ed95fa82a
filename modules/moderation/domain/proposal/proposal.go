package proposal

import (
	"time"

	"github.com/google/uuid"

	"github.com/connectedplaces/directory/modules/moderation/domain/payload"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	// StatusRejected covers both moderator rejection and supersession by a
	// newer proposal; both soft-delete the record.
	StatusRejected Status = "rejected"
)

// Proposal is a pending edit against a target. It is immutable once either
// terminal timestamp is set; the only mutations afterwards are none.
type Proposal struct {
	ID               uuid.UUID        `json:"id"`
	TargetType       TargetType       `json:"target_type"`
	TargetID         *uuid.UUID       `json:"target_id,omitempty"`
	SubmittedBy      *uuid.UUID       `json:"submitted_by,omitempty"`
	ActionedBy       *uuid.UUID       `json:"actioned_by,omitempty"`
	Payload          payload.Document `json:"payload"`
	RejectionMessage *string          `json:"rejection_message,omitempty"`
	ApprovedAt       *time.Time       `json:"approved_at,omitempty"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
	DeletedAt        *time.Time       `json:"deleted_at,omitempty"`
}

// Status derives the lifecycle state from the terminal timestamps; exactly
// one of approved, rejected or pending holds at any time.
func (p *Proposal) Status() Status {
	switch {
	case p.ApprovedAt != nil:
		return StatusApproved
	case p.DeletedAt != nil:
		return StatusRejected
	default:
		return StatusPending
	}
}

func (p *Proposal) IsPending() bool {
	return p.Status() == StatusPending
}
