package models

import (
	"errors"
	"fmt"
)

// Error kinds. Handlers match on these with errors.Is.
var (
	ErrNotFound         = errors.New("not found")
	ErrMissingField     = errors.New("missing field")
	ErrInvalidFormat    = errors.New("invalid format")
	ErrDuplicateEmail   = errors.New("duplicate email")
	ErrInvalidCapacity  = errors.New("invalid capacity")
	ErrInvalidReference = errors.New("invalid reference")
	ErrInUse            = errors.New("in use")
	ErrAlreadyExists    = errors.New("already exists")
)

// FieldError is a validation failure tied to one field and the offending value.
type FieldError struct {
	Kind  error
	Field string
	Value any
	// Msg overrides the default message for Kind.
	Msg string
}

func (e *FieldError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	switch e.Kind {
	case ErrMissingField:
		return fmt.Sprintf("Required field: %q.", e.Field)
	case ErrDuplicateEmail:
		return fmt.Sprintf("Duplicate email: '%v'", e.Value)
	case ErrInvalidCapacity:
		return fmt.Sprintf("Invalid capacity: '%v'", e.Value)
	case ErrInvalidReference:
		return fmt.Sprintf("Invalid %s: '%v' does not exist", e.Field, e.Value)
	case ErrInUse:
		if e.Value == nil {
			return fmt.Sprintf("%s rows are still referenced", e.Field)
		}
		return fmt.Sprintf("%s %v is still referenced", e.Field, e.Value)
	case ErrNotFound:
		return fmt.Sprintf("%s %v doesn't exist", e.Field, e.Value)
	case ErrAlreadyExists:
		return fmt.Sprintf("%s %v already exists", e.Field, e.Value)
	default:
		return fmt.Sprintf("Invalid %s: '%v'", e.Field, e.Value)
	}
}

func (e *FieldError) Unwrap() error { return e.Kind }

// Reason is the machine-readable name of the error kind.
func (e *FieldError) Reason() string {
	switch e.Kind {
	case ErrMissingField:
		return "missing_field"
	case ErrDuplicateEmail:
		return "duplicate_email"
	case ErrInvalidCapacity:
		return "invalid_capacity"
	case ErrInvalidReference:
		return "invalid_reference"
	case ErrInUse:
		return "in_use"
	case ErrNotFound:
		return "not_found"
	case ErrAlreadyExists:
		return "already_exists"
	default:
		return "invalid_format"
	}
}

// NotFoundError reports a missing row of the named entity.
func NotFoundError(entity string, id any) error {
	return &FieldError{Kind: ErrNotFound, Field: entity, Value: id}
}

// InUseError reports a delete refused because other rows still reference the row.
func InUseError(entity string, id any) error {
	return &FieldError{Kind: ErrInUse, Field: entity, Value: id}
}
