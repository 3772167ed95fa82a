package appliers

import (
	"context"

	"github.com/google/uuid"

	"github.com/connectedplaces/directory/modules/core/domain/aggregates/user"
	"github.com/connectedplaces/directory/modules/directory/domain/aggregates/service"
	"github.com/connectedplaces/directory/modules/moderation/domain/payload"
)

type serviceApplier struct {
	deps Deps
}

type serviceUpdateDTO struct {
	OrganisationID *uuid.UUID            `json:"organisation_id"`
	Name           *string               `json:"name" validate:"omitempty,min=1,max=255"`
	Status         *string               `json:"status" validate:"omitempty,oneof=active inactive"`
	Intro          *string               `json:"intro" validate:"omitempty,max=300"`
	Description    *string               `json:"description" validate:"omitempty,max=10000"`
	URL            *string               `json:"url" validate:"omitempty,url"`
	ContactEmail   *string               `json:"contact_email" validate:"omitempty,email"`
	ReferralMethod *string               `json:"referral_method" validate:"omitempty,oneof=internal external none"`
	ReferralEmail  *string               `json:"referral_email" validate:"omitempty,email"`
	ReferralURL    *string               `json:"referral_url" validate:"omitempty,url"`
	UsefulInfos    []service.UsefulInfo  `json:"useful_infos" validate:"omitempty,dive"`
	Offerings      []service.Offering    `json:"offerings" validate:"omitempty,dive"`
	SocialMedias   []service.SocialMedia `json:"social_medias" validate:"omitempty,dive"`
	CategoryIDs    []uuid.UUID           `json:"category_taxonomy_ids"`
}

func (a *serviceApplier) Apply(ctx context.Context, targetID *uuid.UUID, doc payload.Document, _ Options) (*Result, error) {
	if targetID == nil {
		return nil, validationError("service proposals require a target id", nil)
	}
	svc, err := a.deps.Services.GetByID(ctx, *targetID)
	if err != nil {
		return nil, notFoundError("service", err)
	}

	var dto serviceUpdateDTO
	if err := decodeInto(doc, &dto); err != nil {
		return nil, err
	}

	if doc.Has("organisation_id") && dto.OrganisationID != nil && *dto.OrganisationID != svc.OrganisationID {
		if err := a.reassignOrganisation(ctx, svc, *dto.OrganisationID); err != nil {
			return nil, err
		}
	}

	if doc.Has("name") && dto.Name != nil {
		svc.Name = *dto.Name
		slug, err := uniqueSlug(ctx, svc.Name, svc.ID, a.deps.Services.SlugExists)
		if err != nil {
			return nil, err
		}
		svc.Slug = slug
	}
	if doc.Has("status") && dto.Status != nil {
		svc.Status = service.Status(*dto.Status)
	}
	setString(&svc.Intro, doc, "intro")
	setString(&svc.Description, doc, "description")
	setOptString(&svc.WaitTime, doc, "wait_time")
	setBool(&svc.IsFree, doc, "is_free")
	setOptString(&svc.FeesText, doc, "fees_text")
	setOptString(&svc.FeesURL, doc, "fees_url")
	setOptString(&svc.Testimonial, doc, "testimonial")
	setOptString(&svc.VideoEmbed, doc, "video_embed")
	setOptString(&svc.URL, doc, "url")
	setOptString(&svc.ContactName, doc, "contact_name")
	setOptString(&svc.ContactPhone, doc, "contact_phone")
	setOptString(&svc.ContactEmail, doc, "contact_email")
	setOptString(&svc.ReferralMethod, doc, "referral_method")
	setOptString(&svc.ReferralEmail, doc, "referral_email")
	setOptString(&svc.ReferralURL, doc, "referral_url")

	// Nested collections replace wholesale, matching the repository's
	// delete-then-recreate semantics.
	if doc.Has("useful_infos") {
		svc.UsefulInfos = dto.UsefulInfos
	}
	if doc.Has("offerings") {
		svc.Offerings = dto.Offerings
	}
	if doc.Has("social_medias") {
		svc.SocialMedias = dto.SocialMedias
	}
	if doc.Has("category_taxonomy_ids") {
		svc.CategoryIDs = dto.CategoryIDs
	}

	if v, ok := doc.Get("logo_file_id"); ok {
		fileID, err := applyFileField(ctx, a.deps.Uploads, v)
		if err != nil {
			return nil, err
		}
		svc.LogoFileID = fileID
	}

	if _, err := a.deps.Services.Update(ctx, svc); err != nil {
		return nil, err
	}
	return &Result{UpdatedID: &svc.ID}, nil
}

// reassignOrganisation moves the service between organisations and migrates
// scoped roles: everyone holding a service role tied to the old organisation
// loses it, and the new organisation's admins gain service-admin here.
func (a *serviceApplier) reassignOrganisation(ctx context.Context, svc *service.Service, newOrgID uuid.UUID) error {
	if _, err := a.deps.Organisations.GetByID(ctx, newOrgID); err != nil {
		return applicationError("new organisation not found", err)
	}

	oldOrgID := svc.OrganisationID
	if err := a.deps.Roles.RevokeServiceRoles(ctx, svc.ID, oldOrgID); err != nil {
		return err
	}

	adminIDs, err := a.deps.Roles.OrganisationAdminIDs(ctx, newOrgID)
	if err != nil {
		return err
	}
	for _, adminID := range adminIDs {
		if err := a.deps.Roles.Assign(ctx, adminID, user.ServiceAdminRole(newOrgID, svc.ID)); err != nil {
			return err
		}
	}

	svc.OrganisationID = newOrgID
	return nil
}
