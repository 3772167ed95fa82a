package persistence

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/connectedplaces/directory/modules/directory/domain/entities/taxonomy"
	"github.com/connectedplaces/directory/pkg/composables"
)

var ErrTaxonomyNotFound = errors.New("taxonomy not found")

const taxonomyColumns = `id, tree, parent_id, name, slug, sort_order, created_at, updated_at`

type PgTaxonomyRepository struct{}

func NewTaxonomyRepository() taxonomy.Repository {
	return &PgTaxonomyRepository{}
}

func (r *PgTaxonomyRepository) GetByID(ctx context.Context, id uuid.UUID) (*taxonomy.Taxonomy, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	row := tx.QueryRow(ctx, `SELECT `+taxonomyColumns+` FROM taxonomies WHERE id = $1`, id)
	t, err := scanTaxonomy(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrTaxonomyNotFound
	}
	return t, err
}

func (r *PgTaxonomyRepository) GetByTree(ctx context.Context, tree taxonomy.Tree) ([]*taxonomy.Taxonomy, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, `
		SELECT `+taxonomyColumns+`
		FROM taxonomies
		WHERE tree = $1
		ORDER BY sort_order ASC, name ASC`,
		tree,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*taxonomy.Taxonomy
	for rows.Next() {
		t, err := scanTaxonomy(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PgTaxonomyRepository) SlugExists(ctx context.Context, tree taxonomy.Tree, slug string, excludeID uuid.UUID) (bool, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return false, err
	}
	var exists bool
	err = tx.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM taxonomies WHERE tree = $1 AND slug = $2 AND id <> $3)`,
		tree, slug, excludeID,
	).Scan(&exists)
	return exists, err
}

func (r *PgTaxonomyRepository) Create(ctx context.Context, t *taxonomy.Taxonomy) (*taxonomy.Taxonomy, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	row := tx.QueryRow(ctx, `
		INSERT INTO taxonomies (tree, parent_id, name, slug, sort_order)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+taxonomyColumns,
		t.Tree, t.ParentID, t.Name, t.Slug, t.Order,
	)
	return scanTaxonomy(row)
}

func (r *PgTaxonomyRepository) Update(ctx context.Context, t *taxonomy.Taxonomy) (*taxonomy.Taxonomy, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	row := tx.QueryRow(ctx, `
		UPDATE taxonomies
		SET parent_id = $2, name = $3, slug = $4, sort_order = $5, updated_at = now()
		WHERE id = $1
		RETURNING `+taxonomyColumns,
		t.ID, t.ParentID, t.Name, t.Slug, t.Order,
	)
	out, err := scanTaxonomy(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrTaxonomyNotFound
	}
	return out, err
}

func (r *PgTaxonomyRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, `DELETE FROM taxonomies WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrTaxonomyNotFound
	}
	return nil
}

func scanTaxonomy(row pgx.Row) (*taxonomy.Taxonomy, error) {
	var t taxonomy.Taxonomy
	if err := row.Scan(
		&t.ID,
		&t.Tree,
		&t.ParentID,
		&t.Name,
		&t.Slug,
		&t.Order,
		&t.CreatedAt,
		&t.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &t, nil
}
