package appliers

import (
	"context"

	"github.com/google/uuid"

	"github.com/connectedplaces/directory/modules/directory/domain/aggregates/service"
	"github.com/connectedplaces/directory/modules/moderation/domain/payload"
)

// newServiceApplier backs both the org-admin and global-admin creation
// flows; the difference between them is authorization, which is decided
// before the proposal exists.
type newServiceApplier struct {
	deps Deps
}

type newServiceDTO struct {
	OrganisationID uuid.UUID             `json:"organisation_id" validate:"required"`
	Name           string                `json:"name" validate:"required,min=1,max=255"`
	Status         string                `json:"status" validate:"omitempty,oneof=active inactive"`
	Intro          string                `json:"intro" validate:"max=300"`
	Description    string                `json:"description" validate:"max=10000"`
	WaitTime       *string               `json:"wait_time"`
	IsFree         bool                  `json:"is_free"`
	FeesText       *string               `json:"fees_text"`
	FeesURL        *string               `json:"fees_url" validate:"omitempty,url"`
	Testimonial    *string               `json:"testimonial"`
	VideoEmbed     *string               `json:"video_embed" validate:"omitempty,url"`
	URL            *string               `json:"url" validate:"omitempty,url"`
	ContactName    *string               `json:"contact_name"`
	ContactPhone   *string               `json:"contact_phone"`
	ContactEmail   *string               `json:"contact_email" validate:"omitempty,email"`
	ReferralMethod *string               `json:"referral_method" validate:"omitempty,oneof=internal external none"`
	ReferralEmail  *string               `json:"referral_email" validate:"omitempty,email"`
	ReferralURL    *string               `json:"referral_url" validate:"omitempty,url"`
	LogoFileID     *uuid.UUID            `json:"logo_file_id"`
	UsefulInfos    []service.UsefulInfo  `json:"useful_infos" validate:"omitempty,dive"`
	Offerings      []service.Offering    `json:"offerings" validate:"omitempty,dive"`
	SocialMedias   []service.SocialMedia `json:"social_medias" validate:"omitempty,dive"`
	CategoryIDs    []uuid.UUID           `json:"category_taxonomy_ids"`
}

func (a *newServiceApplier) Apply(ctx context.Context, _ *uuid.UUID, doc payload.Document, opts Options) (*Result, error) {
	var dto newServiceDTO
	if err := decodeInto(doc, &dto); err != nil {
		return nil, err
	}

	created, err := createService(ctx, a.deps, &dto, opts)
	if err != nil {
		return nil, err
	}
	return &Result{CreatedServiceID: &created.ID}, nil
}

// createService is shared with the organisation sign-up flow.
func createService(ctx context.Context, deps Deps, dto *newServiceDTO, opts Options) (*service.Service, error) {
	if _, err := deps.Organisations.GetByID(ctx, dto.OrganisationID); err != nil {
		return nil, applicationError("organisation not found", err)
	}

	slug, err := uniqueSlug(ctx, dto.Name, uuid.Nil, deps.Services.SlugExists)
	if err != nil {
		return nil, err
	}

	status := service.Status(dto.Status)
	if status == "" {
		status = service.StatusInactive
	}
	if opts.Edit {
		// Moderator asked to review before publishing.
		status = service.StatusInactive
	}

	svc := &service.Service{
		OrganisationID: dto.OrganisationID,
		Name:           dto.Name,
		Slug:           slug,
		Status:         status,
		Intro:          dto.Intro,
		Description:    dto.Description,
		WaitTime:       dto.WaitTime,
		IsFree:         dto.IsFree,
		FeesText:       dto.FeesText,
		FeesURL:        dto.FeesURL,
		Testimonial:    dto.Testimonial,
		VideoEmbed:     dto.VideoEmbed,
		URL:            dto.URL,
		ContactName:    dto.ContactName,
		ContactPhone:   dto.ContactPhone,
		ContactEmail:   dto.ContactEmail,
		ReferralMethod: dto.ReferralMethod,
		ReferralEmail:  dto.ReferralEmail,
		ReferralURL:    dto.ReferralURL,
		UsefulInfos:    dto.UsefulInfos,
		Offerings:      dto.Offerings,
		SocialMedias:   dto.SocialMedias,
		CategoryIDs:    dto.CategoryIDs,
	}

	if dto.LogoFileID != nil {
		v, err := payload.NewValue(*dto.LogoFileID)
		if err != nil {
			return nil, err
		}
		fileID, err := applyFileField(ctx, deps.Uploads, v)
		if err != nil {
			return nil, err
		}
		svc.LogoFileID = fileID
	}

	return deps.Services.Create(ctx, svc)
}
