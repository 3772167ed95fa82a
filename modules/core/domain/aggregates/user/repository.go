package user

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	Create(ctx context.Context, u *User) (*User, error)
	Update(ctx context.Context, u *User) (*User, error)
}

type RoleRepository interface {
	Assign(ctx context.Context, userID uuid.UUID, role Role) error
	// RevokeServiceRoles removes every service-scoped role on the service
	// that is tied to the given organisation.
	RevokeServiceRoles(ctx context.Context, serviceID, organisationID uuid.UUID) error
	OrganisationAdminIDs(ctx context.Context, organisationID uuid.UUID) ([]uuid.UUID, error)
	RolesForUser(ctx context.Context, userID uuid.UUID) ([]Role, error)
}
