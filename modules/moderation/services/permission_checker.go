package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/connectedplaces/directory/modules/core/domain/aggregates/user"
	"github.com/connectedplaces/directory/modules/directory/domain/aggregates/service"
	"github.com/connectedplaces/directory/modules/directory/domain/aggregates/servicelocation"
	"github.com/connectedplaces/directory/modules/moderation/domain/proposal"
	"github.com/connectedplaces/directory/pkg/serrors"
)

var ErrForbidden = serrors.NewError("MODERATION_FORBIDDEN", "not allowed to act on this proposal", "Moderation.Errors.Forbidden")

// RolePermissionChecker grounds proposal permissions in scoped roles. Global
// admins can do everything; organisation and service roles grant submission
// on the records inside their scope; moderation itself is global-admin only.
type RolePermissionChecker struct {
	roles            user.RoleRepository
	services         service.Repository
	serviceLocations servicelocation.Repository
}

func NewRolePermissionChecker(
	roles user.RoleRepository,
	services service.Repository,
	serviceLocations servicelocation.Repository,
) *RolePermissionChecker {
	return &RolePermissionChecker{
		roles:            roles,
		services:         services,
		serviceLocations: serviceLocations,
	}
}

func (c *RolePermissionChecker) CanSubmit(ctx context.Context, actor uuid.UUID, targetType proposal.TargetType, targetID *uuid.UUID) error {
	roles, err := c.roles.RolesForUser(ctx, actor)
	if err != nil {
		return err
	}
	if hasRole(roles, user.RoleGlobalAdmin) {
		return nil
	}

	switch targetType {
	case proposal.TargetOrganisation:
		if targetID != nil && adminOfOrganisation(roles, *targetID) {
			return nil
		}
	case proposal.TargetService:
		if targetID == nil {
			break
		}
		svc, err := c.services.GetByID(ctx, *targetID)
		if err != nil {
			return err
		}
		if canManageService(roles, svc.OrganisationID, svc.ID) {
			return nil
		}
	case proposal.TargetServiceLocation:
		if targetID == nil {
			break
		}
		sl, err := c.serviceLocations.GetByID(ctx, *targetID)
		if err != nil {
			return err
		}
		svc, err := c.services.GetByID(ctx, sl.ServiceID)
		if err != nil {
			return err
		}
		if canManageService(roles, svc.OrganisationID, svc.ID) {
			return nil
		}
	case proposal.TargetNewServiceByOrgAdmin:
		// The payload names the organisation; membership is verified when the
		// service is created at approval time.
		if hasRole(roles, user.RoleOrganisationAdmin) {
			return nil
		}
	case proposal.TargetNewOrganisationSignup:
		// Sign-up is open to the public.
		return nil
	}
	return ErrForbidden
}

func (c *RolePermissionChecker) CanModerate(ctx context.Context, actor uuid.UUID, _ proposal.TargetType, _ *uuid.UUID) error {
	roles, err := c.roles.RolesForUser(ctx, actor)
	if err != nil {
		return err
	}
	if !hasRole(roles, user.RoleGlobalAdmin) {
		return ErrForbidden
	}
	return nil
}

func hasRole(roles []user.Role, name user.RoleName) bool {
	for _, r := range roles {
		if r.Name == name {
			return true
		}
	}
	return false
}

func adminOfOrganisation(roles []user.Role, orgID uuid.UUID) bool {
	for _, r := range roles {
		if r.Name == user.RoleOrganisationAdmin && r.OrganisationID != nil && *r.OrganisationID == orgID {
			return true
		}
	}
	return false
}

func canManageService(roles []user.Role, orgID, serviceID uuid.UUID) bool {
	if adminOfOrganisation(roles, orgID) {
		return true
	}
	for _, r := range roles {
		if (r.Name == user.RoleServiceAdmin || r.Name == user.RoleServiceWorker) &&
			r.ServiceID != nil && *r.ServiceID == serviceID {
			return true
		}
	}
	return false
}
