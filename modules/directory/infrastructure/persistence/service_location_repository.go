package persistence

import (
	"context"
	"encoding/json"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/connectedplaces/directory/modules/directory/domain/aggregates/servicelocation"
	"github.com/connectedplaces/directory/modules/directory/domain/openinghours"
	"github.com/connectedplaces/directory/pkg/composables"
)

var ErrServiceLocationNotFound = errors.New("service location not found")

const serviceLocationColumns = `id, service_id, location_id, name, image_file_id,
	regular_opening_hours, holiday_opening_hours, created_at, updated_at`

// PgServiceLocationRepository stores both opening-hour sets as jsonb; the
// schedule is always read and written as a whole, so rows per rule would buy
// nothing.
type PgServiceLocationRepository struct{}

func NewServiceLocationRepository() servicelocation.Repository {
	return &PgServiceLocationRepository{}
}

func (r *PgServiceLocationRepository) GetByID(ctx context.Context, id uuid.UUID) (*servicelocation.ServiceLocation, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	row := tx.QueryRow(ctx, `SELECT `+serviceLocationColumns+` FROM service_locations WHERE id = $1`, id)
	sl, err := scanServiceLocation(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrServiceLocationNotFound
	}
	return sl, err
}

func (r *PgServiceLocationRepository) GetByServiceID(ctx context.Context, serviceID uuid.UUID) ([]*servicelocation.ServiceLocation, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, `
		SELECT `+serviceLocationColumns+`
		FROM service_locations
		WHERE service_id = $1
		ORDER BY created_at ASC`,
		serviceID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*servicelocation.ServiceLocation
	for rows.Next() {
		sl, err := scanServiceLocation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sl)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PgServiceLocationRepository) Create(ctx context.Context, sl *servicelocation.ServiceLocation) (*servicelocation.ServiceLocation, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	regular, holiday, err := marshalHours(sl)
	if err != nil {
		return nil, err
	}
	row := tx.QueryRow(ctx, `
		INSERT INTO service_locations (service_id, location_id, name, image_file_id, regular_opening_hours, holiday_opening_hours)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+serviceLocationColumns,
		sl.ServiceID, sl.LocationID, sl.Name, sl.ImageFileID, regular, holiday,
	)
	return scanServiceLocation(row)
}

func (r *PgServiceLocationRepository) Update(ctx context.Context, sl *servicelocation.ServiceLocation) (*servicelocation.ServiceLocation, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	regular, holiday, err := marshalHours(sl)
	if err != nil {
		return nil, err
	}
	row := tx.QueryRow(ctx, `
		UPDATE service_locations
		SET service_id = $2, location_id = $3, name = $4, image_file_id = $5,
			regular_opening_hours = $6, holiday_opening_hours = $7, updated_at = now()
		WHERE id = $1
		RETURNING `+serviceLocationColumns,
		sl.ID, sl.ServiceID, sl.LocationID, sl.Name, sl.ImageFileID, regular, holiday,
	)
	out, err := scanServiceLocation(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrServiceLocationNotFound
	}
	return out, err
}

func (r *PgServiceLocationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, `DELETE FROM service_locations WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrServiceLocationNotFound
	}
	return nil
}

func marshalHours(sl *servicelocation.ServiceLocation) ([]byte, []byte, error) {
	regular, err := json.Marshal(sl.RegularOpeningHours)
	if err != nil {
		return nil, nil, errors.Wrap(err, "marshal regular opening hours")
	}
	holiday, err := json.Marshal(sl.HolidayOpeningHours)
	if err != nil {
		return nil, nil, errors.Wrap(err, "marshal holiday opening hours")
	}
	return regular, holiday, nil
}

func scanServiceLocation(row pgx.Row) (*servicelocation.ServiceLocation, error) {
	var sl servicelocation.ServiceLocation
	var regular, holiday []byte
	if err := row.Scan(
		&sl.ID,
		&sl.ServiceID,
		&sl.LocationID,
		&sl.Name,
		&sl.ImageFileID,
		&regular,
		&holiday,
		&sl.CreatedAt,
		&sl.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if len(regular) > 0 {
		var hours []openinghours.RegularOpeningHour
		if err := json.Unmarshal(regular, &hours); err != nil {
			return nil, errors.Wrap(err, "decode regular opening hours")
		}
		sl.RegularOpeningHours = hours
	}
	if len(holiday) > 0 {
		var hours []openinghours.HolidayOpeningHour
		if err := json.Unmarshal(holiday, &hours); err != nil {
			return nil, errors.Wrap(err, "decode holiday opening hours")
		}
		sl.HolidayOpeningHours = hours
	}
	return &sl, nil
}
