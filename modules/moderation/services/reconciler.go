package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/connectedplaces/directory/modules/moderation/domain/payload"
	"github.com/connectedplaces/directory/modules/moderation/domain/proposal"
)

// reconcilePending strips from every older pending proposal on the same
// target the fields the incoming payload re-edits. The newest submission wins
// per field; an older proposal left with no fields is superseded rather than
// kept as an empty shell. Fields the incoming payload does not touch stay
// pending under their original proposal.
func reconcilePending(ctx context.Context, repo proposal.Repository, targetType proposal.TargetType, targetID uuid.UUID, incoming payload.Document, now time.Time) error {
	if incoming.IsEmpty() {
		return nil
	}
	pending, err := repo.PendingForTarget(ctx, targetType, targetID)
	if err != nil {
		return err
	}

	names := incoming.Names()
	for _, older := range pending {
		survivors := older.Payload.Without(names...)
		if survivors.Len() == older.Payload.Len() {
			continue
		}
		if survivors.IsEmpty() {
			if err := repo.Supersede(ctx, older.ID, now); err != nil {
				return err
			}
			continue
		}
		if err := repo.UpdatePayload(ctx, older.ID, survivors); err != nil {
			return err
		}
	}
	return nil
}
