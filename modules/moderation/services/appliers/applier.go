package appliers

import (
	"context"

	"github.com/google/uuid"

	"github.com/connectedplaces/directory/modules/core/domain/aggregates/user"
	"github.com/connectedplaces/directory/modules/core/domain/entities/upload"
	"github.com/connectedplaces/directory/modules/directory/domain/aggregates/location"
	"github.com/connectedplaces/directory/modules/directory/domain/aggregates/organisation"
	"github.com/connectedplaces/directory/modules/directory/domain/aggregates/service"
	"github.com/connectedplaces/directory/modules/directory/domain/aggregates/servicelocation"
	"github.com/connectedplaces/directory/modules/directory/domain/entities/taxonomy"
	"github.com/connectedplaces/directory/modules/moderation/domain/payload"
	"github.com/connectedplaces/directory/modules/moderation/domain/proposal"
)

// Applier executes an approved proposal's effect on real records. Existing-
// target appliers receive the target id; new-target appliers receive nil and
// create records from the payload.
type Applier interface {
	Apply(ctx context.Context, targetID *uuid.UUID, doc payload.Document, opts Options) (*Result, error)
}

// Options carries approval-time flags; they are supplied by the moderator,
// never stored in the payload.
type Options struct {
	ActionedBy uuid.UUID
	// Edit creates new services in inactive status regardless of the
	// requested one, so a moderator can review before publishing.
	Edit bool
}

type Result struct {
	UpdatedID             *uuid.UUID `json:"updated_id,omitempty"`
	CreatedUserID         *uuid.UUID `json:"created_user_id,omitempty"`
	CreatedOrganisationID *uuid.UUID `json:"created_organisation_id,omitempty"`
	CreatedServiceID      *uuid.UUID `json:"created_service_id,omitempty"`
}

// Deps bundles every repository the appliers mutate.
type Deps struct {
	Organisations    organisation.Repository
	Services         service.Repository
	Locations        location.Repository
	ServiceLocations servicelocation.Repository
	Taxonomies       taxonomy.Repository
	Users            user.Repository
	Roles            user.RoleRepository
	Uploads          upload.Repository
}

// Registry selects the applier for a target type; dispatch is a lookup, not
// a type switch.
type Registry map[proposal.TargetType]Applier

func NewRegistry(deps Deps) Registry {
	newService := &newServiceApplier{deps: deps}
	return Registry{
		proposal.TargetOrganisation:               &organisationApplier{deps: deps},
		proposal.TargetService:                    &serviceApplier{deps: deps},
		proposal.TargetLocation:                   &locationApplier{deps: deps},
		proposal.TargetServiceLocation:            &serviceLocationApplier{deps: deps},
		proposal.TargetTaxonomyCategory:           &taxonomyApplier{deps: deps, tree: taxonomy.TreeCategory},
		proposal.TargetTaxonomyOrganisation:       &taxonomyApplier{deps: deps, tree: taxonomy.TreeOrganisation},
		proposal.TargetTaxonomyServiceEligibility: &taxonomyApplier{deps: deps, tree: taxonomy.TreeServiceEligibility},
		proposal.TargetNewServiceByOrgAdmin:       newService,
		proposal.TargetNewServiceByGlobalAdmin:    newService,
		proposal.TargetNewOrganisationSignup:      &organisationSignupApplier{deps: deps},
	}
}

func (r Registry) For(t proposal.TargetType) (Applier, bool) {
	a, ok := r[t]
	return a, ok
}
