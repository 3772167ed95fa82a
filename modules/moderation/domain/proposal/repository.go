package proposal

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/connectedplaces/directory/modules/moderation/domain/payload"
)

type FindParams struct {
	TargetType TargetType
	TargetID   *uuid.UUID
	Status     Status
	Limit      int
	Offset     int
}

type Repository interface {
	// GetByID returns the proposal regardless of terminal state, so callers
	// can distinguish already-actioned from missing.
	GetByID(ctx context.Context, id uuid.UUID) (*Proposal, error)
	// PendingForTarget returns pending proposals for the pair, oldest first.
	PendingForTarget(ctx context.Context, targetType TargetType, targetID uuid.UUID) ([]*Proposal, error)
	List(ctx context.Context, params *FindParams) ([]*Proposal, error)
	Create(ctx context.Context, p *Proposal) (*Proposal, error)
	UpdatePayload(ctx context.Context, id uuid.UUID, doc payload.Document) error
	MarkApproved(ctx context.Context, id uuid.UUID, actionedBy uuid.UUID, at time.Time) error
	MarkRejected(ctx context.Context, id uuid.UUID, actionedBy uuid.UUID, message string, at time.Time) error
	// Supersede soft-deletes a pending proposal whose every field was
	// overtaken by a newer submission.
	Supersede(ctx context.Context, id uuid.UUID, at time.Time) error
}
