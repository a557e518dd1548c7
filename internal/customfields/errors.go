package customfields

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnknownField         = errors.New("field is not defined for this tenant")
	ErrMissingRequiredField = errors.New("field is required")
	ErrInvalidOption        = errors.New("value is not one of the allowed options")
	ErrInvalidValue         = errors.New("value does not match the field type")
	ErrDuplicateName        = errors.New("field name is already used")
	ErrMissingOptions       = errors.New("select fields need at least one option")
	ErrDuplicateOption      = errors.New("options must be unique")
	ErrBlankOption          = errors.New("options cannot be blank")
	ErrInvalidFieldType     = errors.New("unsupported field type")
	ErrInvalidName          = errors.New("name must start with a letter or underscore and contain only letters, digits and underscores")
	ErrMissingLabel         = errors.New("label is required")
)

var codes = map[error]string{
	ErrUnknownField:         "UNKNOWN_FIELD",
	ErrMissingRequiredField: "MISSING_REQUIRED_FIELD",
	ErrInvalidOption:        "INVALID_OPTION",
	ErrInvalidValue:         "INVALID_FIELD_VALUE",
	ErrDuplicateName:        "DUPLICATE_FIELD_NAME",
	ErrMissingOptions:       "MISSING_OPTIONS",
	ErrDuplicateOption:      "DUPLICATE_OPTION",
	ErrBlankOption:          "BLANK_OPTION",
	ErrInvalidFieldType:     "INVALID_FIELD_TYPE",
	ErrInvalidName:          "INVALID_FIELD_NAME",
	ErrMissingLabel:         "MISSING_LABEL",
}

// Violation ties one sentinel error to the field (or schema entry) that caused it.
type Violation struct {
	Field string
	Err   error
}

func (v Violation) Code() string {
	if code, ok := codes[v.Err]; ok {
		return code
	}
	return "VALIDATION_ERROR"
}

func (v Violation) Error() string {
	return fmt.Sprintf("%s: %v", v.Field, v.Err)
}

// ValidationError carries every violation found in one pass.
type ValidationError struct {
	Violations []Violation
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		msgs = append(msgs, v.Error())
	}
	return "custom fields invalid: " + strings.Join(msgs, "; ")
}

func (e *ValidationError) Unwrap() []error {
	errs := make([]error, 0, len(e.Violations))
	for _, v := range e.Violations {
		errs = append(errs, v.Err)
	}
	return errs
}

// Code is the code of the first violation.
func (e *ValidationError) Code() string {
	if len(e.Violations) == 0 {
		return "VALIDATION_ERROR"
	}
	return e.Violations[0].Code()
}

// Details maps each offending field to a message. Later violations on the same field are appended.
func (e *ValidationError) Details() map[string]string {
	details := make(map[string]string, len(e.Violations))
	for _, v := range e.Violations {
		if prev, ok := details[v.Field]; ok {
			details[v.Field] = prev + "; " + v.Err.Error()
			continue
		}
		details[v.Field] = v.Err.Error()
	}
	return details
}

func (e *ValidationError) add(field string, err error) {
	e.Violations = append(e.Violations, Violation{Field: field, Err: err})
}

func (e *ValidationError) orNil() error {
	if len(e.Violations) == 0 {
		return nil
	}
	return e
}
