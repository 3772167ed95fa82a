package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/connectedplaces/directory/modules/core/domain/aggregates/user"
	"github.com/connectedplaces/directory/pkg/composables"
)

type PgRoleRepository struct{}

func NewRoleRepository() user.RoleRepository {
	return &PgRoleRepository{}
}

func (r *PgRoleRepository) Assign(ctx context.Context, userID uuid.UUID, role user.Role) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	_, err = tx.Exec(ctx, `
		INSERT INTO user_roles (user_id, name, organisation_id, service_id)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT DO NOTHING`,
		userID, role.Name, role.OrganisationID, role.ServiceID,
	)
	return err
}

func (r *PgRoleRepository) RevokeServiceRoles(ctx context.Context, serviceID, organisationID uuid.UUID) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	_, err = tx.Exec(ctx, `
		DELETE FROM user_roles
		WHERE service_id = $1 AND organisation_id = $2`,
		serviceID, organisationID,
	)
	return err
}

func (r *PgRoleRepository) OrganisationAdminIDs(ctx context.Context, organisationID uuid.UUID) ([]uuid.UUID, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, `
		SELECT user_id FROM user_roles
		WHERE name = $1 AND organisation_id = $2`,
		user.RoleOrganisationAdmin, organisationID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

func (r *PgRoleRepository) RolesForUser(ctx context.Context, userID uuid.UUID) ([]user.Role, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, `
		SELECT name, organisation_id, service_id FROM user_roles
		WHERE user_id = $1
		ORDER BY name ASC`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRoles(rows)
}

func collectRoles(rows pgx.Rows) ([]user.Role, error) {
	var out []user.Role
	for rows.Next() {
		var role user.Role
		if err := rows.Scan(&role.Name, &role.OrganisationID, &role.ServiceID); err != nil {
			return nil, err
		}
		out = append(out, role)
	}
	return out, rows.Err()
}
