package services

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/connectedplaces/directory/modules/moderation/domain/payload"
	"github.com/connectedplaces/directory/modules/moderation/domain/proposal"
	"github.com/connectedplaces/directory/modules/moderation/infrastructure/persistence"
	"github.com/connectedplaces/directory/modules/moderation/services/appliers"
	"github.com/connectedplaces/directory/pkg/composables"
	"github.com/connectedplaces/directory/pkg/eventbus"
	"github.com/connectedplaces/directory/pkg/serrors"
)

var (
	ErrProposalNotFound  = serrors.NewError("MODERATION_PROPOSAL_NOT_FOUND", "proposal not found", "Moderation.Errors.ProposalNotFound")
	ErrAlreadyActioned   = serrors.NewError("MODERATION_ALREADY_ACTIONED", "proposal was already approved or rejected", "Moderation.Errors.AlreadyActioned")
	ErrUnknownTargetType = serrors.NewError("MODERATION_UNKNOWN_TARGET_TYPE", "unknown target type", "Moderation.Errors.UnknownTargetType")
	ErrTargetIDRequired  = serrors.NewError("MODERATION_TARGET_ID_REQUIRED", "target id is required for edits to existing records", "Moderation.Errors.TargetIDRequired")
	ErrMessageRequired   = serrors.NewError("MODERATION_MESSAGE_REQUIRED", "a rejection message is required", "Moderation.Errors.MessageRequired")
)

// PermissionChecker answers whether an actor may act on a proposal. The
// implementation lives outside this module; moderation only states the
// questions.
type PermissionChecker interface {
	CanSubmit(ctx context.Context, actor uuid.UUID, targetType proposal.TargetType, targetID *uuid.UUID) error
	CanModerate(ctx context.Context, actor uuid.UUID, targetType proposal.TargetType, targetID *uuid.UUID) error
}

// Atomic runs fn with all-or-nothing semantics. Production wires
// composables.InTx; tests substitute a pass-through.
type Atomic func(ctx context.Context, fn func(ctx context.Context) error) error

func PgAtomic() Atomic {
	return composables.InTx
}

type SubmitCommand struct {
	TargetType  proposal.TargetType
	TargetID    *uuid.UUID
	SubmittedBy *uuid.UUID
	Payload     payload.Document
}

type ActionCommand struct {
	ActionedBy uuid.UUID
	// Edit forces created services into inactive status for review.
	Edit bool
	// Message accompanies a rejection; approval ignores it.
	Message string
}

type ModerationService struct {
	repo      proposal.Repository
	appliers  appliers.Registry
	perms     PermissionChecker
	publisher eventbus.EventBus
	atomic    Atomic
}

func NewModerationService(
	repo proposal.Repository,
	registry appliers.Registry,
	perms PermissionChecker,
	publisher eventbus.EventBus,
	atomic Atomic,
) *ModerationService {
	return &ModerationService{
		repo:      repo,
		appliers:  registry,
		perms:     perms,
		publisher: publisher,
		atomic:    atomic,
	}
}

func (s *ModerationService) GetByID(ctx context.Context, id uuid.UUID) (*proposal.Proposal, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, persistence.ErrProposalNotFound) {
			return nil, ErrProposalNotFound.WithCause(err)
		}
		return nil, errors.Wrap(err, "get proposal")
	}
	return p, nil
}

func (s *ModerationService) List(ctx context.Context, params *proposal.FindParams) ([]*proposal.Proposal, error) {
	return s.repo.List(ctx, params)
}

// Submit records a proposed edit. Submission is lenient: the payload is not
// validated against the target schema here, only at approval. Older pending
// proposals on the same target lose any field this payload re-edits.
func (s *ModerationService) Submit(ctx context.Context, cmd SubmitCommand) (*proposal.Proposal, error) {
	if !cmd.TargetType.Valid() {
		return nil, ErrUnknownTargetType
	}
	if cmd.TargetType.IsNew() {
		cmd.TargetID = nil
	} else if cmd.TargetID == nil {
		return nil, ErrTargetIDRequired
	}

	if s.perms != nil && cmd.SubmittedBy != nil {
		if err := s.perms.CanSubmit(ctx, *cmd.SubmittedBy, cmd.TargetType, cmd.TargetID); err != nil {
			return nil, err
		}
	}

	var created *proposal.Proposal
	err := s.atomic(ctx, func(ctx context.Context) error {
		if cmd.TargetID != nil {
			if err := reconcilePending(ctx, s.repo, cmd.TargetType, *cmd.TargetID, cmd.Payload, time.Now()); err != nil {
				return err
			}
		}
		p, err := s.repo.Create(ctx, &proposal.Proposal{
			TargetType:  cmd.TargetType,
			TargetID:    cmd.TargetID,
			SubmittedBy: cmd.SubmittedBy,
			Payload:     cmd.Payload,
		})
		if err != nil {
			return err
		}
		created = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publisher.Publish(&proposal.SubmittedEvent{Proposal: created})
	return created, nil
}

// Approve applies the proposal's effect and marks it approved in one
// transaction. If the applier fails the proposal stays pending so the
// submitter can fix and resubmit, or a moderator can reject with a reason.
func (s *ModerationService) Approve(ctx context.Context, id uuid.UUID, cmd ActionCommand) (*proposal.Proposal, *appliers.Result, error) {
	p, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if !p.IsPending() {
		return nil, nil, ErrAlreadyActioned
	}
	if s.perms != nil {
		if err := s.perms.CanModerate(ctx, cmd.ActionedBy, p.TargetType, p.TargetID); err != nil {
			return nil, nil, err
		}
	}

	applier, ok := s.appliers.For(p.TargetType)
	if !ok {
		return nil, nil, ErrUnknownTargetType
	}

	var result *appliers.Result
	now := time.Now()
	err = s.atomic(ctx, func(ctx context.Context) error {
		r, err := applier.Apply(ctx, p.TargetID, p.Payload, appliers.Options{
			ActionedBy: cmd.ActionedBy,
			Edit:       cmd.Edit,
		})
		if err != nil {
			return err
		}
		result = r
		if err := s.repo.MarkApproved(ctx, p.ID, cmd.ActionedBy, now); err != nil {
			// The guarded update touches no rows when a concurrent action
			// settled the proposal after our read. The row exists, so the
			// loser gets AlreadyActioned, not NotFound.
			if errors.Is(err, persistence.ErrProposalNotFound) {
				return ErrAlreadyActioned.WithCause(err)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	p.ActionedBy = &cmd.ActionedBy
	p.ApprovedAt = &now
	s.publisher.Publish(&proposal.ApprovedEvent{Proposal: p, ActionedBy: cmd.ActionedBy})
	return p, result, nil
}

// Reject declines the proposal with a message for the submitter. Nothing is
// applied; the record is soft-deleted and keeps its payload for audit.
func (s *ModerationService) Reject(ctx context.Context, id uuid.UUID, cmd ActionCommand) (*proposal.Proposal, error) {
	if cmd.Message == "" {
		return nil, ErrMessageRequired
	}
	p, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.IsPending() {
		return nil, ErrAlreadyActioned
	}
	if s.perms != nil {
		if err := s.perms.CanModerate(ctx, cmd.ActionedBy, p.TargetType, p.TargetID); err != nil {
			return nil, err
		}
	}

	now := time.Now()
	if err := s.repo.MarkRejected(ctx, p.ID, cmd.ActionedBy, cmd.Message, now); err != nil {
		if errors.Is(err, persistence.ErrProposalNotFound) {
			return nil, ErrAlreadyActioned.WithCause(err)
		}
		return nil, err
	}

	p.ActionedBy = &cmd.ActionedBy
	p.RejectionMessage = &cmd.Message
	p.DeletedAt = &now
	s.publisher.Publish(&proposal.RejectedEvent{Proposal: p, ActionedBy: cmd.ActionedBy})
	return p, nil
}
