package proposal

import "strings"

// TargetType names the entity family a proposal acts on. The "existing:"
// kinds mutate one record identified by TargetID; the "new:" kinds create
// one or more records and carry a nil TargetID.
type TargetType string

const (
	TargetOrganisation               TargetType = "existing:organisation"
	TargetService                    TargetType = "existing:service"
	TargetLocation                   TargetType = "existing:location"
	TargetServiceLocation            TargetType = "existing:service_location"
	TargetTaxonomyCategory           TargetType = "existing:taxonomy_category"
	TargetTaxonomyOrganisation       TargetType = "existing:taxonomy_organisation"
	TargetTaxonomyServiceEligibility TargetType = "existing:taxonomy_service_eligibility"
	TargetNewServiceByOrgAdmin       TargetType = "new:service_by_org_admin"
	TargetNewServiceByGlobalAdmin    TargetType = "new:service_by_global_admin"
	TargetNewOrganisationSignup      TargetType = "new:organisation_signup"
)

var allTargetTypes = map[TargetType]struct{}{
	TargetOrganisation:               {},
	TargetService:                    {},
	TargetLocation:                   {},
	TargetServiceLocation:            {},
	TargetTaxonomyCategory:           {},
	TargetTaxonomyOrganisation:       {},
	TargetTaxonomyServiceEligibility: {},
	TargetNewServiceByOrgAdmin:       {},
	TargetNewServiceByGlobalAdmin:    {},
	TargetNewOrganisationSignup:      {},
}

func (t TargetType) Valid() bool {
	_, ok := allTargetTypes[t]
	return ok
}

func (t TargetType) IsNew() bool {
	return strings.HasPrefix(string(t), "new:")
}
