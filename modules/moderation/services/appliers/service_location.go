package appliers

import (
	"context"

	"github.com/google/uuid"

	"github.com/connectedplaces/directory/modules/directory/domain/openinghours"
	"github.com/connectedplaces/directory/modules/moderation/domain/payload"
)

type serviceLocationApplier struct {
	deps Deps
}

type serviceLocationUpdateDTO struct {
	Name                *string                           `json:"name" validate:"omitempty,max=255"`
	RegularOpeningHours []openinghours.RegularOpeningHour `json:"regular_opening_hours"`
	HolidayOpeningHours []openinghours.HolidayOpeningHour `json:"holiday_opening_hours"`
}

func (a *serviceLocationApplier) Apply(ctx context.Context, targetID *uuid.UUID, doc payload.Document, _ Options) (*Result, error) {
	if targetID == nil {
		return nil, validationError("service location proposals require a target id", nil)
	}
	sl, err := a.deps.ServiceLocations.GetByID(ctx, *targetID)
	if err != nil {
		return nil, notFoundError("service location", err)
	}

	var dto serviceLocationUpdateDTO
	if err := decodeInto(doc, &dto); err != nil {
		return nil, err
	}

	setOptString(&sl.Name, doc, "name")

	// Opening hours replace the full current set, never merge. An explicit
	// null or empty list clears it.
	if doc.Has("regular_opening_hours") {
		for _, rule := range dto.RegularOpeningHours {
			if err := rule.Validate(); err != nil {
				return nil, validationError("invalid regular opening hour", err)
			}
		}
		sl.RegularOpeningHours = dto.RegularOpeningHours
	}
	if doc.Has("holiday_opening_hours") {
		sl.HolidayOpeningHours = dto.HolidayOpeningHours
	}

	if v, ok := doc.Get("image_file_id"); ok {
		fileID, err := applyFileField(ctx, a.deps.Uploads, v)
		if err != nil {
			return nil, err
		}
		sl.ImageFileID = fileID
	}

	if _, err := a.deps.ServiceLocations.Update(ctx, sl); err != nil {
		return nil, err
	}
	return &Result{UpdatedID: &sl.ID}, nil
}
