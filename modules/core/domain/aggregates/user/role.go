package user

import "github.com/google/uuid"

type RoleName string

const (
	RoleGlobalAdmin       RoleName = "global_admin"
	RoleOrganisationAdmin RoleName = "organisation_admin"
	RoleServiceAdmin      RoleName = "service_admin"
	RoleServiceWorker     RoleName = "service_worker"
)

// Role is a scoped grant. Organisation roles carry an organisation id;
// service roles carry both the service id and the organisation the service
// belonged to when the role was granted, which is what role migration keys on.
type Role struct {
	Name           RoleName   `json:"name"`
	OrganisationID *uuid.UUID `json:"organisation_id,omitempty"`
	ServiceID      *uuid.UUID `json:"service_id,omitempty"`
}

func OrganisationAdminRole(organisationID uuid.UUID) Role {
	return Role{Name: RoleOrganisationAdmin, OrganisationID: &organisationID}
}

func ServiceAdminRole(organisationID, serviceID uuid.UUID) Role {
	return Role{Name: RoleServiceAdmin, OrganisationID: &organisationID, ServiceID: &serviceID}
}

func ServiceWorkerRole(organisationID, serviceID uuid.UUID) Role {
	return Role{Name: RoleServiceWorker, OrganisationID: &organisationID, ServiceID: &serviceID}
}
