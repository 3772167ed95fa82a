package persistence

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/connectedplaces/directory/modules/directory/domain/aggregates/service"
	"github.com/connectedplaces/directory/pkg/composables"
	"github.com/connectedplaces/directory/pkg/repo"
)

var ErrServiceNotFound = errors.New("service not found")

const serviceColumns = `id, organisation_id, name, slug, status, intro, description, wait_time, is_free,
	fees_text, fees_url, testimonial, video_embed, url, contact_name, contact_phone, contact_email,
	referral_method, referral_email, referral_url, logo_file_id, created_at, updated_at`

type PgServiceRepository struct{}

func NewServiceRepository() service.Repository {
	return &PgServiceRepository{}
}

func (r *PgServiceRepository) GetByID(ctx context.Context, id uuid.UUID) (*service.Service, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	row := tx.QueryRow(ctx, `SELECT `+serviceColumns+` FROM services WHERE id = $1`, id)
	svc, err := scanService(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrServiceNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := r.loadNested(ctx, svc); err != nil {
		return nil, err
	}
	return svc, nil
}

func (r *PgServiceRepository) GetPaginated(ctx context.Context, params *service.FindParams) ([]*service.Service, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}

	var where []string
	var args []any
	argPos := 1
	if params != nil {
		if params.OrganisationID != nil {
			where = append(where, fmt.Sprintf("organisation_id = $%d", argPos))
			args = append(args, *params.OrganisationID)
			argPos++
		}
		if s := strings.TrimSpace(params.Search); s != "" {
			where = append(where, fmt.Sprintf("name ILIKE $%d", argPos))
			args = append(args, "%"+s+"%")
		}
	}

	query := `SELECT ` + serviceColumns + ` FROM services`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
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

	var out []*service.Service
	for rows.Next() {
		svc, err := scanService(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, svc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, svc := range out {
		if err := r.loadNested(ctx, svc); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (r *PgServiceRepository) SlugExists(ctx context.Context, slug string, excludeID uuid.UUID) (bool, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return false, err
	}
	var exists bool
	err = tx.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM services WHERE slug = $1 AND id <> $2)`,
		slug, excludeID,
	).Scan(&exists)
	return exists, err
}

func (r *PgServiceRepository) Create(ctx context.Context, s *service.Service) (*service.Service, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	row := tx.QueryRow(ctx, `
		INSERT INTO services (
			organisation_id, name, slug, status, intro, description, wait_time, is_free,
			fees_text, fees_url, testimonial, video_embed, url, contact_name, contact_phone,
			contact_email, referral_method, referral_email, referral_url, logo_file_id
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
		RETURNING `+serviceColumns,
		s.OrganisationID, s.Name, s.Slug, s.Status, s.Intro, s.Description, s.WaitTime, s.IsFree,
		s.FeesText, s.FeesURL, s.Testimonial, s.VideoEmbed, s.URL, s.ContactName, s.ContactPhone,
		s.ContactEmail, s.ReferralMethod, s.ReferralEmail, s.ReferralURL, s.LogoFileID,
	)
	created, err := scanService(row)
	if err != nil {
		return nil, err
	}
	created.UsefulInfos = s.UsefulInfos
	created.Offerings = s.Offerings
	created.SocialMedias = s.SocialMedias
	created.CategoryIDs = s.CategoryIDs
	if err := r.replaceNested(ctx, created); err != nil {
		return nil, err
	}
	return created, nil
}

func (r *PgServiceRepository) Update(ctx context.Context, s *service.Service) (*service.Service, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	row := tx.QueryRow(ctx, `
		UPDATE services
		SET organisation_id = $2, name = $3, slug = $4, status = $5, intro = $6, description = $7,
			wait_time = $8, is_free = $9, fees_text = $10, fees_url = $11, testimonial = $12,
			video_embed = $13, url = $14, contact_name = $15, contact_phone = $16, contact_email = $17,
			referral_method = $18, referral_email = $19, referral_url = $20, logo_file_id = $21,
			updated_at = now()
		WHERE id = $1
		RETURNING `+serviceColumns,
		s.ID, s.OrganisationID, s.Name, s.Slug, s.Status, s.Intro, s.Description,
		s.WaitTime, s.IsFree, s.FeesText, s.FeesURL, s.Testimonial,
		s.VideoEmbed, s.URL, s.ContactName, s.ContactPhone, s.ContactEmail,
		s.ReferralMethod, s.ReferralEmail, s.ReferralURL, s.LogoFileID,
	)
	updated, err := scanService(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrServiceNotFound
	}
	if err != nil {
		return nil, err
	}
	updated.UsefulInfos = s.UsefulInfos
	updated.Offerings = s.Offerings
	updated.SocialMedias = s.SocialMedias
	updated.CategoryIDs = s.CategoryIDs
	if err := r.replaceNested(ctx, updated); err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *PgServiceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, `DELETE FROM services WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrServiceNotFound
	}
	return nil
}

// replaceNested rewrites every child collection, matching the domain's
// wholesale-replacement semantics.
func (r *PgServiceRepository) replaceNested(ctx context.Context, s *service.Service) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}

	for _, table := range []string{
		"service_useful_infos",
		"service_offerings",
		"service_social_medias",
		"service_category_taxonomies",
	} {
		if _, err := tx.Exec(ctx, `DELETE FROM `+table+` WHERE service_id = $1`, s.ID); err != nil {
			return err
		}
	}

	for _, ui := range s.UsefulInfos {
		if _, err := tx.Exec(ctx, `
			INSERT INTO service_useful_infos (service_id, title, description, sort_order)
			VALUES ($1, $2, $3, $4)`,
			s.ID, ui.Title, ui.Description, ui.Order,
		); err != nil {
			return err
		}
	}
	for _, o := range s.Offerings {
		if _, err := tx.Exec(ctx, `
			INSERT INTO service_offerings (service_id, offering, sort_order)
			VALUES ($1, $2, $3)`,
			s.ID, o.Offering, o.Order,
		); err != nil {
			return err
		}
	}
	for _, sm := range s.SocialMedias {
		if _, err := tx.Exec(ctx, `
			INSERT INTO service_social_medias (service_id, type, url)
			VALUES ($1, $2, $3)`,
			s.ID, sm.Type, sm.URL,
		); err != nil {
			return err
		}
	}
	for _, catID := range s.CategoryIDs {
		if _, err := tx.Exec(ctx, `
			INSERT INTO service_category_taxonomies (service_id, taxonomy_id)
			VALUES ($1, $2)`,
			s.ID, catID,
		); err != nil {
			return err
		}
	}
	return nil
}

func (r *PgServiceRepository) loadNested(ctx context.Context, s *service.Service) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}

	rows, err := tx.Query(ctx, `
		SELECT title, description, sort_order FROM service_useful_infos
		WHERE service_id = $1 ORDER BY sort_order ASC`, s.ID)
	if err != nil {
		return err
	}
	for rows.Next() {
		var ui service.UsefulInfo
		if err := rows.Scan(&ui.Title, &ui.Description, &ui.Order); err != nil {
			rows.Close()
			return err
		}
		s.UsefulInfos = append(s.UsefulInfos, ui)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	rows, err = tx.Query(ctx, `
		SELECT offering, sort_order FROM service_offerings
		WHERE service_id = $1 ORDER BY sort_order ASC`, s.ID)
	if err != nil {
		return err
	}
	for rows.Next() {
		var o service.Offering
		if err := rows.Scan(&o.Offering, &o.Order); err != nil {
			rows.Close()
			return err
		}
		s.Offerings = append(s.Offerings, o)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	rows, err = tx.Query(ctx, `
		SELECT type, url FROM service_social_medias
		WHERE service_id = $1 ORDER BY type ASC`, s.ID)
	if err != nil {
		return err
	}
	for rows.Next() {
		var sm service.SocialMedia
		if err := rows.Scan(&sm.Type, &sm.URL); err != nil {
			rows.Close()
			return err
		}
		s.SocialMedias = append(s.SocialMedias, sm)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	rows, err = tx.Query(ctx, `
		SELECT taxonomy_id FROM service_category_taxonomies
		WHERE service_id = $1`, s.ID)
	if err != nil {
		return err
	}
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return err
		}
		s.CategoryIDs = append(s.CategoryIDs, id)
	}
	rows.Close()
	return rows.Err()
}

func scanService(row pgx.Row) (*service.Service, error) {
	var s service.Service
	if err := row.Scan(
		&s.ID,
		&s.OrganisationID,
		&s.Name,
		&s.Slug,
		&s.Status,
		&s.Intro,
		&s.Description,
		&s.WaitTime,
		&s.IsFree,
		&s.FeesText,
		&s.FeesURL,
		&s.Testimonial,
		&s.VideoEmbed,
		&s.URL,
		&s.ContactName,
		&s.ContactPhone,
		&s.ContactEmail,
		&s.ReferralMethod,
		&s.ReferralEmail,
		&s.ReferralURL,
		&s.LogoFileID,
		&s.CreatedAt,
		&s.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &s, nil
}
