package appliers

import (
	"context"

	"github.com/google/uuid"

	"github.com/connectedplaces/directory/modules/moderation/domain/payload"
)

type organisationApplier struct {
	deps Deps
}

type organisationUpdateDTO struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=255"`
	Description *string `json:"description" validate:"omitempty,max=10000"`
	URL         *string `json:"url" validate:"omitempty,url"`
	Email       *string `json:"email" validate:"omitempty,email"`
	Phone       *string `json:"phone" validate:"omitempty,max=32"`
}

func (a *organisationApplier) Apply(ctx context.Context, targetID *uuid.UUID, doc payload.Document, _ Options) (*Result, error) {
	if targetID == nil {
		return nil, validationError("organisation proposals require a target id", nil)
	}
	org, err := a.deps.Organisations.GetByID(ctx, *targetID)
	if err != nil {
		return nil, notFoundError("organisation", err)
	}

	var dto organisationUpdateDTO
	if err := decodeInto(doc, &dto); err != nil {
		return nil, err
	}

	if doc.Has("name") && dto.Name != nil {
		org.Name = *dto.Name
		slug, err := uniqueSlug(ctx, org.Name, org.ID, a.deps.Organisations.SlugExists)
		if err != nil {
			return nil, err
		}
		org.Slug = slug
	}
	setString(&org.Description, doc, "description")
	setOptString(&org.URL, doc, "url")
	setOptString(&org.Email, doc, "email")
	setOptString(&org.Phone, doc, "phone")

	if v, ok := doc.Get("logo_file_id"); ok {
		fileID, err := applyFileField(ctx, a.deps.Uploads, v)
		if err != nil {
			return nil, err
		}
		org.LogoFileID = fileID
	}

	if _, err := a.deps.Organisations.Update(ctx, org); err != nil {
		return nil, err
	}
	return &Result{UpdatedID: &org.ID}, nil
}
