package persistence

import (
	"context"
	"strings"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/connectedplaces/directory/modules/directory/domain/aggregates/organisation"
	"github.com/connectedplaces/directory/pkg/composables"
	"github.com/connectedplaces/directory/pkg/repo"
)

var ErrOrganisationNotFound = errors.New("organisation not found")

const organisationColumns = `id, name, slug, description, url, email, phone, logo_file_id, created_at, updated_at`

type PgOrganisationRepository struct{}

func NewOrganisationRepository() organisation.Repository {
	return &PgOrganisationRepository{}
}

func (r *PgOrganisationRepository) GetByID(ctx context.Context, id uuid.UUID) (*organisation.Organisation, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	row := tx.QueryRow(ctx, `SELECT `+organisationColumns+` FROM organisations WHERE id = $1`, id)
	o, err := scanOrganisation(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrOrganisationNotFound
	}
	return o, err
}

func (r *PgOrganisationRepository) GetPaginated(ctx context.Context, params *organisation.FindParams) ([]*organisation.Organisation, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}

	query := `SELECT ` + organisationColumns + ` FROM organisations`
	var args []any
	if params != nil && strings.TrimSpace(params.Search) != "" {
		query += ` WHERE name ILIKE $1`
		args = append(args, "%"+strings.TrimSpace(params.Search)+"%")
	}
	query += ` ORDER BY name ASC`
	if params != nil {
		query += " " + repo.FormatLimitOffset(params.Limit, params.Offset)
	}

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*organisation.Organisation
	for rows.Next() {
		o, err := scanOrganisation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PgOrganisationRepository) SlugExists(ctx context.Context, slug string, excludeID uuid.UUID) (bool, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return false, err
	}
	var exists bool
	err = tx.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM organisations WHERE slug = $1 AND id <> $2)`,
		slug, excludeID,
	).Scan(&exists)
	return exists, err
}

func (r *PgOrganisationRepository) Create(ctx context.Context, o *organisation.Organisation) (*organisation.Organisation, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	row := tx.QueryRow(ctx, `
		INSERT INTO organisations (name, slug, description, url, email, phone, logo_file_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+organisationColumns,
		o.Name, o.Slug, o.Description, o.URL, o.Email, o.Phone, o.LogoFileID,
	)
	return scanOrganisation(row)
}

func (r *PgOrganisationRepository) Update(ctx context.Context, o *organisation.Organisation) (*organisation.Organisation, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	row := tx.QueryRow(ctx, `
		UPDATE organisations
		SET name = $2, slug = $3, description = $4, url = $5, email = $6, phone = $7, logo_file_id = $8, updated_at = now()
		WHERE id = $1
		RETURNING `+organisationColumns,
		o.ID, o.Name, o.Slug, o.Description, o.URL, o.Email, o.Phone, o.LogoFileID,
	)
	out, err := scanOrganisation(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrOrganisationNotFound
	}
	return out, err
}

func (r *PgOrganisationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, `DELETE FROM organisations WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrOrganisationNotFound
	}
	return nil
}

func scanOrganisation(row pgx.Row) (*organisation.Organisation, error) {
	var o organisation.Organisation
	if err := row.Scan(
		&o.ID,
		&o.Name,
		&o.Slug,
		&o.Description,
		&o.URL,
		&o.Email,
		&o.Phone,
		&o.LogoFileID,
		&o.CreatedAt,
		&o.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &o, nil
}
