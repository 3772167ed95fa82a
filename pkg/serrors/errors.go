package serrors

import "fmt"

// BaseError is a coded error that namespaces failures by a stable machine code.
// LocaleKey is optional and names the translation entry used by presentation
// layers; the core never reads it.
type BaseError struct {
	Code         string
	Message      string
	LocaleKey    string
	TemplateData map[string]string
	cause        error
}

func NewError(code, message, localeKey string) *BaseError {
	return &BaseError{
		Code:      code,
		Message:   message,
		LocaleKey: localeKey,
	}
}

func (e *BaseError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *BaseError) Unwrap() error {
	return e.cause
}

// Is makes two BaseErrors equivalent when their codes match, so sentinel
// errors compare with errors.Is regardless of wrapped causes.
func (e *BaseError) Is(target error) bool {
	t, ok := target.(*BaseError)
	return ok && t.Code == e.Code
}

func (e *BaseError) WithTemplateData(data map[string]string) *BaseError {
	clone := *e
	clone.TemplateData = data
	return &clone
}

func (e *BaseError) WithCause(cause error) *BaseError {
	clone := *e
	clone.cause = cause
	return &clone
}

// ValidationErrors maps field names to their individual errors.
type ValidationErrors map[string]*BaseError

func NewFieldRequiredError(field, localeKey string) *BaseError {
	return NewError(
		"FIELD_REQUIRED",
		fmt.Sprintf("%s is required", field),
		localeKey,
	).WithTemplateData(map[string]string{"field": field})
}
