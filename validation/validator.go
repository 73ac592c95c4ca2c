package validation

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/kbukum/pullfeed/errors"
)

// Validator accumulates field checks and reports them together:
//
//	err := validation.New().
//		OneOf("mode", c.Mode, "tui", "serve").
//		Nested("feed", c.Feed.Validate()).
//		Err()
type Validator struct {
	fields []FieldError
}

// FieldError is one failed check.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// New creates an empty Validator.
func New() *Validator {
	return &Validator{}
}

// Fail records a failed check on field.
func (v *Validator) Fail(field, message string) *Validator {
	v.fields = append(v.fields, FieldError{Field: field, Message: message})
	return v
}

// Check records message against field unless ok.
func (v *Validator) Check(ok bool, field, message string) *Validator {
	if !ok {
		v.Fail(field, message)
	}
	return v
}

// Required fails on an empty or blank value.
func (v *Validator) Required(field, value string) *Validator {
	return v.Check(strings.TrimSpace(value) != "", field, "is required")
}

// OptionalUUID fails on a non-empty value that does not parse as a UUID.
func (v *Validator) OptionalUUID(field, value string) *Validator {
	if value == "" {
		return v
	}
	_, err := uuid.Parse(value)
	return v.Check(err == nil, field, "must be a valid UUID")
}

// Min fails when value is below minVal.
func (v *Validator) Min(field string, value, minVal int) *Validator {
	return v.Check(value >= minVal, field, fmt.Sprintf("must be at least %d", minVal))
}

// OneOf fails unless value is one of allowed. An empty value fails too.
func (v *Validator) OneOf(field, value string, allowed ...string) *Validator {
	for _, a := range allowed {
		if value == a {
			return v
		}
	}
	return v.Fail(field, fmt.Sprintf("must be one of [%s] (got: %q)", strings.Join(allowed, ", "), value))
}

// Nested folds the error of a sub-config's Validate under prefix. Field
// errors keep their names as prefix.field; any other error is recorded
// against prefix itself.
func (v *Validator) Nested(prefix string, err error) *Validator {
	if err == nil {
		return v
	}
	if appErr, ok := errors.AsAppError(err); ok {
		if fields, ok := appErr.Details["fields"].([]FieldError); ok && len(fields) > 0 {
			for _, f := range fields {
				v.Fail(prefix+"."+f.Field, f.Message)
			}
			return v
		}
	}
	return v.Fail(prefix, err.Error())
}

// HasErrors reports whether any check failed.
func (v *Validator) HasErrors() bool {
	return len(v.fields) > 0
}

// Errors returns the failed checks in order.
func (v *Validator) Errors() []FieldError {
	return v.fields
}

// Validate returns the failed checks as one AppError, nil when all passed.
func (v *Validator) Validate() *errors.AppError {
	if !v.HasErrors() {
		return nil
	}
	messages := make([]string, len(v.fields))
	for i, f := range v.fields {
		messages[i] = f.Field + ": " + f.Message
	}
	return errors.Validation(strings.Join(messages, "; ")).
		WithDetail("fields", v.fields)
}

// Err is Validate as a plain error, nil when all checks passed.
func (v *Validator) Err() error {
	if appErr := v.Validate(); appErr != nil {
		return appErr
	}
	return nil
}
