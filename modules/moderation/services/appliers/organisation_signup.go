package appliers

import (
	"context"

	"github.com/google/uuid"

	"github.com/connectedplaces/directory/modules/core/domain/aggregates/user"
	"github.com/connectedplaces/directory/modules/directory/domain/aggregates/organisation"
	"github.com/connectedplaces/directory/modules/moderation/domain/payload"
)

// organisationSignupApplier handles the public sign-up flow: one approval
// creates the submitter's account, their organisation (or attaches them to an
// existing one) and their first service.
type organisationSignupApplier struct {
	deps Deps
}

type signupUserDTO struct {
	FirstName string  `json:"first_name" validate:"required,min=1,max=100"`
	LastName  string  `json:"last_name" validate:"required,min=1,max=100"`
	Email     string  `json:"email" validate:"required,email"`
	Phone     *string `json:"phone"`
}

type signupOrganisationDTO struct {
	// ID names an organisation that already exists; the new user is attached
	// to it as an admin and the rest of the section is ignored.
	ID          *uuid.UUID `json:"id"`
	Name        string     `json:"name" validate:"required_without=ID,omitempty,min=1,max=255"`
	Description string     `json:"description" validate:"max=10000"`
	URL         *string    `json:"url" validate:"omitempty,url"`
	Email       *string    `json:"email" validate:"omitempty,email"`
	Phone       *string    `json:"phone"`
}

type signupDTO struct {
	User         signupUserDTO         `json:"user" validate:"required"`
	Organisation signupOrganisationDTO `json:"organisation" validate:"required"`
	Service      newServiceDTO         `json:"service"`
}

func (a *organisationSignupApplier) Apply(ctx context.Context, _ *uuid.UUID, doc payload.Document, opts Options) (*Result, error) {
	var dto signupDTO
	if err := doc.Decode(&dto); err != nil {
		return nil, validationError("malformed payload", err)
	}
	if err := validate.Struct(dto.User); err != nil {
		return nil, validationError("user section failed validation", err)
	}
	if err := validate.Struct(dto.Organisation); err != nil {
		return nil, validationError("organisation section failed validation", err)
	}

	if _, err := a.deps.Users.GetByEmail(ctx, dto.User.Email); err == nil {
		return nil, applicationError("a user with that email already exists", nil)
	}

	org, err := a.resolveOrganisation(ctx, &dto.Organisation)
	if err != nil {
		return nil, err
	}

	usr, err := a.deps.Users.Create(ctx, user.New(dto.User.FirstName, dto.User.LastName, dto.User.Email))
	if err != nil {
		return nil, err
	}
	if dto.User.Phone != nil {
		usr.Phone = dto.User.Phone
		if usr, err = a.deps.Users.Update(ctx, usr); err != nil {
			return nil, err
		}
	}
	if err := a.deps.Roles.Assign(ctx, usr.ID, user.OrganisationAdminRole(org.ID)); err != nil {
		return nil, err
	}

	result := &Result{
		CreatedUserID:         &usr.ID,
		CreatedOrganisationID: &org.ID,
	}

	if doc.Has("service") {
		dto.Service.OrganisationID = org.ID
		if err := validate.Struct(&dto.Service); err != nil {
			return nil, validationError("service section failed validation", err)
		}
		svc, err := createService(ctx, a.deps, &dto.Service, opts)
		if err != nil {
			return nil, err
		}
		result.CreatedServiceID = &svc.ID
	}

	return result, nil
}

func (a *organisationSignupApplier) resolveOrganisation(ctx context.Context, dto *signupOrganisationDTO) (*organisation.Organisation, error) {
	if dto.ID != nil {
		org, err := a.deps.Organisations.GetByID(ctx, *dto.ID)
		if err != nil {
			return nil, applicationError("organisation to join does not exist", err)
		}
		return org, nil
	}

	slug, err := uniqueSlug(ctx, dto.Name, uuid.Nil, a.deps.Organisations.SlugExists)
	if err != nil {
		return nil, err
	}
	return a.deps.Organisations.Create(ctx, &organisation.Organisation{
		Name:        dto.Name,
		Slug:        slug,
		Description: dto.Description,
		URL:         dto.URL,
		Email:       dto.Email,
		Phone:       dto.Phone,
	})
}
