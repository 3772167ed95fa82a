package persistence

import (
	"context"
	"strings"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/connectedplaces/directory/modules/directory/domain/aggregates/location"
	"github.com/connectedplaces/directory/pkg/composables"
	"github.com/connectedplaces/directory/pkg/repo"
)

var ErrLocationNotFound = errors.New("location not found")

const locationColumns = `id, address_line_1, address_line_2, address_line_3, city, county, postcode, country,
	lat, lon, has_wheelchair_access, has_induction_loop, image_file_id, created_at, updated_at`

type PgLocationRepository struct{}

func NewLocationRepository() location.Repository {
	return &PgLocationRepository{}
}

func (r *PgLocationRepository) GetByID(ctx context.Context, id uuid.UUID) (*location.Location, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	row := tx.QueryRow(ctx, `SELECT `+locationColumns+` FROM locations WHERE id = $1`, id)
	l, err := scanLocation(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrLocationNotFound
	}
	return l, err
}

func (r *PgLocationRepository) GetPaginated(ctx context.Context, params *location.FindParams) ([]*location.Location, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}

	query := `SELECT ` + locationColumns + ` FROM locations`
	var args []any
	if params != nil && strings.TrimSpace(params.Search) != "" {
		query += ` WHERE address_line_1 ILIKE $1 OR city ILIKE $1 OR postcode ILIKE $1`
		args = append(args, "%"+strings.TrimSpace(params.Search)+"%")
	}
	query += ` ORDER BY city ASC, address_line_1 ASC`
	if params != nil {
		query += " " + repo.FormatLimitOffset(params.Limit, params.Offset)
	}

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*location.Location
	for rows.Next() {
		l, err := scanLocation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PgLocationRepository) Create(ctx context.Context, l *location.Location) (*location.Location, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	row := tx.QueryRow(ctx, `
		INSERT INTO locations (
			address_line_1, address_line_2, address_line_3, city, county, postcode, country,
			lat, lon, has_wheelchair_access, has_induction_loop, image_file_id
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING `+locationColumns,
		l.AddressLine1, l.AddressLine2, l.AddressLine3, l.City, l.County, l.Postcode, l.Country,
		l.Latitude, l.Longitude, l.HasWheelchairAccess, l.HasInductionLoop, l.ImageFileID,
	)
	return scanLocation(row)
}

func (r *PgLocationRepository) Update(ctx context.Context, l *location.Location) (*location.Location, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	row := tx.QueryRow(ctx, `
		UPDATE locations
		SET address_line_1 = $2, address_line_2 = $3, address_line_3 = $4, city = $5, county = $6,
			postcode = $7, country = $8, lat = $9, lon = $10, has_wheelchair_access = $11,
			has_induction_loop = $12, image_file_id = $13, updated_at = now()
		WHERE id = $1
		RETURNING `+locationColumns,
		l.ID, l.AddressLine1, l.AddressLine2, l.AddressLine3, l.City, l.County,
		l.Postcode, l.Country, l.Latitude, l.Longitude, l.HasWheelchairAccess,
		l.HasInductionLoop, l.ImageFileID,
	)
	out, err := scanLocation(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrLocationNotFound
	}
	return out, err
}

func (r *PgLocationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, `DELETE FROM locations WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrLocationNotFound
	}
	return nil
}

func scanLocation(row pgx.Row) (*location.Location, error) {
	var l location.Location
	if err := row.Scan(
		&l.ID,
		&l.AddressLine1,
		&l.AddressLine2,
		&l.AddressLine3,
		&l.City,
		&l.County,
		&l.Postcode,
		&l.Country,
		&l.Latitude,
		&l.Longitude,
		&l.HasWheelchairAccess,
		&l.HasInductionLoop,
		&l.ImageFileID,
		&l.CreatedAt,
		&l.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &l, nil
}
