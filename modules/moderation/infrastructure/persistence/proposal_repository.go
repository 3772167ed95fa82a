package persistence

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/connectedplaces/directory/modules/moderation/domain/payload"
	"github.com/connectedplaces/directory/modules/moderation/domain/proposal"
	"github.com/connectedplaces/directory/pkg/composables"
	"github.com/connectedplaces/directory/pkg/repo"
)

var ErrProposalNotFound = errors.New("proposal not found")

const proposalColumns = `id, target_type, target_id, submitted_by, actioned_by, payload, rejection_message, approved_at, created_at, updated_at, deleted_at`

type PgProposalRepository struct{}

func NewProposalRepository() proposal.Repository {
	return &PgProposalRepository{}
}

func (r *PgProposalRepository) GetByID(ctx context.Context, id uuid.UUID) (*proposal.Proposal, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}

	row := tx.QueryRow(ctx, `SELECT `+proposalColumns+` FROM proposals WHERE id = $1`, id)
	p, err := scanProposal(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrProposalNotFound
	}
	return p, err
}

func (r *PgProposalRepository) PendingForTarget(ctx context.Context, targetType proposal.TargetType, targetID uuid.UUID) ([]*proposal.Proposal, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := tx.Query(ctx, `
		SELECT `+proposalColumns+`
		FROM proposals
		WHERE target_type = $1 AND target_id = $2 AND approved_at IS NULL AND deleted_at IS NULL
		ORDER BY created_at ASC`,
		targetType, targetID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectProposals(rows)
}

func (r *PgProposalRepository) List(ctx context.Context, params *proposal.FindParams) ([]*proposal.Proposal, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}

	where, args := buildProposalFilters(params)
	query := `SELECT ` + proposalColumns + ` FROM proposals`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY created_at DESC`
	if params != nil {
		query += " " + repo.FormatLimitOffset(params.Limit, params.Offset)
	}

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectProposals(rows)
}

func (r *PgProposalRepository) Create(ctx context.Context, p *proposal.Proposal) (*proposal.Proposal, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}

	raw, err := p.Payload.MarshalJSON()
	if err != nil {
		return nil, errors.Wrap(err, "marshal payload")
	}

	row := tx.QueryRow(ctx, `
		INSERT INTO proposals (target_type, target_id, submitted_by, payload)
		VALUES ($1, $2, $3, $4)
		RETURNING `+proposalColumns,
		p.TargetType, p.TargetID, p.SubmittedBy, raw,
	)
	return scanProposal(row)
}

func (r *PgProposalRepository) UpdatePayload(ctx context.Context, id uuid.UUID, doc payload.Document) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}

	raw, err := doc.MarshalJSON()
	if err != nil {
		return errors.Wrap(err, "marshal payload")
	}

	tag, err := tx.Exec(ctx, `
		UPDATE proposals
		SET payload = $2, updated_at = now()
		WHERE id = $1 AND approved_at IS NULL AND deleted_at IS NULL`,
		id, raw,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrProposalNotFound
	}
	return nil
}

func (r *PgProposalRepository) MarkApproved(ctx context.Context, id, actionedBy uuid.UUID, at time.Time) error {
	return r.action(ctx, `
		UPDATE proposals
		SET actioned_by = $2, approved_at = $3, updated_at = $3
		WHERE id = $1 AND approved_at IS NULL AND deleted_at IS NULL`,
		id, actionedBy, at,
	)
}

func (r *PgProposalRepository) MarkRejected(ctx context.Context, id, actionedBy uuid.UUID, message string, at time.Time) error {
	return r.action(ctx, `
		UPDATE proposals
		SET actioned_by = $2, rejection_message = $3, deleted_at = $4, updated_at = $4
		WHERE id = $1 AND approved_at IS NULL AND deleted_at IS NULL`,
		id, actionedBy, message, at,
	)
}

func (r *PgProposalRepository) Supersede(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.action(ctx, `
		UPDATE proposals
		SET deleted_at = $2, updated_at = $2
		WHERE id = $1 AND approved_at IS NULL AND deleted_at IS NULL`,
		id, at,
	)
}

func (r *PgProposalRepository) action(ctx context.Context, query string, args ...any) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrProposalNotFound
	}
	return nil
}

func buildProposalFilters(params *proposal.FindParams) ([]string, []any) {
	var where []string
	var args []any
	if params == nil {
		return where, args
	}
	argPos := 1
	if params.TargetType != "" {
		where = append(where, fmt.Sprintf("target_type = $%d", argPos))
		args = append(args, params.TargetType)
		argPos++
	}
	if params.TargetID != nil {
		where = append(where, fmt.Sprintf("target_id = $%d", argPos))
		args = append(args, *params.TargetID)
		argPos++
	}
	switch params.Status {
	case proposal.StatusPending:
		where = append(where, "approved_at IS NULL AND deleted_at IS NULL")
	case proposal.StatusApproved:
		where = append(where, "approved_at IS NOT NULL")
	case proposal.StatusRejected:
		where = append(where, "approved_at IS NULL AND deleted_at IS NOT NULL")
	}
	return where, args
}

func scanProposal(row pgx.Row) (*proposal.Proposal, error) {
	var p proposal.Proposal
	var raw []byte
	if err := row.Scan(
		&p.ID,
		&p.TargetType,
		&p.TargetID,
		&p.SubmittedBy,
		&p.ActionedBy,
		&raw,
		&p.RejectionMessage,
		&p.ApprovedAt,
		&p.CreatedAt,
		&p.UpdatedAt,
		&p.DeletedAt,
	); err != nil {
		return nil, err
	}
	doc, err := payload.FromJSON(raw)
	if err != nil {
		return nil, errors.Wrap(err, "decode payload")
	}
	p.Payload = doc
	return &p, nil
}

func collectProposals(rows pgx.Rows) ([]*proposal.Proposal, error) {
	var out []*proposal.Proposal
	for rows.Next() {
		p, err := scanProposal(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
