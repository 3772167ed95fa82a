package proposal

import "github.com/google/uuid"

type SubmittedEvent struct {
	Proposal *Proposal
}

type ApprovedEvent struct {
	Proposal   *Proposal
	ActionedBy uuid.UUID
}

type RejectedEvent struct {
	Proposal   *Proposal
	ActionedBy uuid.UUID
}
