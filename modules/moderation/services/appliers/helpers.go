package appliers

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/connectedplaces/directory/modules/core/domain/entities/upload"
	"github.com/connectedplaces/directory/modules/moderation/domain/payload"
	"github.com/connectedplaces/directory/pkg/serrors"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

var (
	errTargetNotFound = serrors.NewError("MODERATION_NOT_FOUND", "target not found", "Moderation.Errors.NotFound")
	errValidation     = serrors.NewError("MODERATION_VALIDATION", "payload failed validation", "Moderation.Errors.Validation")
	errApplication    = serrors.NewError("MODERATION_APPLICATION", "proposal could not be applied", "Moderation.Errors.Application")
)

func notFoundError(what string, cause error) error {
	return serrors.NewError(errTargetNotFound.Code, fmt.Sprintf("%s not found", what), errTargetNotFound.LocaleKey).WithCause(cause)
}

func validationError(msg string, cause error) error {
	return serrors.NewError(errValidation.Code, msg, errValidation.LocaleKey).WithCause(cause)
}

func applicationError(msg string, cause error) error {
	return serrors.NewError(errApplication.Code, msg, errApplication.LocaleKey).WithCause(cause)
}

// decodeInto unmarshals the payload into a DTO and runs struct validation.
// This is the strict half of lenient-submit/strict-apply.
func decodeInto(doc payload.Document, dto any) error {
	if err := doc.Decode(dto); err != nil {
		return validationError("malformed payload", err)
	}
	if err := validate.Struct(dto); err != nil {
		return validationError("payload failed validation", err)
	}
	return nil
}

// applyFileField resolves an image field edit. A non-null value must name an
// upload still in pending-assignment state; applying assigns it. A null
// detaches and leaves the previous file orphaned for later cleanup.
func applyFileField(ctx context.Context, uploads upload.Repository, v payload.Value) (*uuid.UUID, error) {
	if v.IsNull() {
		return nil, nil
	}
	var id uuid.UUID
	if err := v.Decode(&id); err != nil {
		return nil, validationError("file id is not a valid uuid", err)
	}
	file, err := uploads.GetByID(ctx, id)
	if err != nil {
		return nil, applicationError(fmt.Sprintf("file %s not found", id), err)
	}
	if file.Status != upload.StatusPendingAssignment {
		return nil, applicationError(fmt.Sprintf("file %s is not awaiting assignment", id), nil)
	}
	if err := uploads.MarkAssigned(ctx, id); err != nil {
		return nil, err
	}
	return &id, nil
}

// setString applies a non-nullable text field.
func setString(dst *string, doc payload.Document, name string) {
	if v, ok := doc.Get(name); ok && !v.IsNull() {
		if s, ok := v.AsString(); ok {
			*dst = s
		}
	}
}

// setOptString applies a nullable text field; an explicit null clears it.
func setOptString(dst **string, doc payload.Document, name string) {
	v, ok := doc.Get(name)
	if !ok {
		return
	}
	if v.IsNull() {
		*dst = nil
		return
	}
	if s, ok := v.AsString(); ok {
		*dst = &s
	}
}

// setBool applies a boolean field.
func setBool(dst *bool, doc payload.Document, name string) {
	if v, ok := doc.Get(name); ok && !v.IsNull() {
		var b bool
		if v.Decode(&b) == nil {
			*dst = b
		}
	}
}
