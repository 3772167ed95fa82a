package appliers

import (
	"context"

	"github.com/google/uuid"

	"github.com/connectedplaces/directory/modules/moderation/domain/payload"
)

type locationApplier struct {
	deps Deps
}

type locationUpdateDTO struct {
	AddressLine1 *string  `json:"address_line_1" validate:"omitempty,min=1,max=255"`
	AddressLine2 *string  `json:"address_line_2" validate:"omitempty,max=255"`
	AddressLine3 *string  `json:"address_line_3" validate:"omitempty,max=255"`
	City         *string  `json:"city" validate:"omitempty,min=1,max=255"`
	County       *string  `json:"county" validate:"omitempty,max=255"`
	Postcode     *string  `json:"postcode" validate:"omitempty,min=1,max=16"`
	Country      *string  `json:"country" validate:"omitempty,min=1,max=255"`
	Latitude     *float64 `json:"lat" validate:"omitempty,latitude"`
	Longitude    *float64 `json:"lon" validate:"omitempty,longitude"`
}

func (a *locationApplier) Apply(ctx context.Context, targetID *uuid.UUID, doc payload.Document, _ Options) (*Result, error) {
	if targetID == nil {
		return nil, validationError("location proposals require a target id", nil)
	}
	loc, err := a.deps.Locations.GetByID(ctx, *targetID)
	if err != nil {
		return nil, notFoundError("location", err)
	}

	var dto locationUpdateDTO
	if err := decodeInto(doc, &dto); err != nil {
		return nil, err
	}

	setString(&loc.AddressLine1, doc, "address_line_1")
	setOptString(&loc.AddressLine2, doc, "address_line_2")
	setOptString(&loc.AddressLine3, doc, "address_line_3")
	setString(&loc.City, doc, "city")
	setString(&loc.County, doc, "county")
	setString(&loc.Postcode, doc, "postcode")
	setString(&loc.Country, doc, "country")
	setBool(&loc.HasWheelchairAccess, doc, "has_wheelchair_access")
	setBool(&loc.HasInductionLoop, doc, "has_induction_loop")

	if doc.Has("lat") {
		loc.Latitude = dto.Latitude
	}
	if doc.Has("lon") {
		loc.Longitude = dto.Longitude
	}

	if v, ok := doc.Get("image_file_id"); ok {
		fileID, err := applyFileField(ctx, a.deps.Uploads, v)
		if err != nil {
			return nil, err
		}
		loc.ImageFileID = fileID
	}

	if _, err := a.deps.Locations.Update(ctx, loc); err != nil {
		return nil, err
	}
	return &Result{UpdatedID: &loc.ID}, nil
}
