package domain

import "errors"

// ErrNotFound is returned when the referenced project or cost item
// does not exist or is not visible to the caller.
var ErrNotFound = errors.New("not found")

// ValidationError rejects malformed input before any repository
// access, carrying one or more messages per offending field.
type ValidationError struct {
	Fields map[string][]string
}

func NewValidationError() *ValidationError {
	return &ValidationError{Fields: make(map[string][]string)}
}

func (e *ValidationError) Add(field, message string) {
	e.Fields[field] = append(e.Fields[field], message)
}

func (e *ValidationError) Empty() bool {
	return len(e.Fields) == 0
}

func (e *ValidationError) Error() string {
	return "validation failed"
}

// ErrOrNil collapses an empty ValidationError to nil so callers can
// return the result of a validate step directly.
func (e *ValidationError) ErrOrNil() error {
	if e.Empty() {
		return nil
	}
	return e
}

// AsValidation unwraps err into a ValidationError if it is one.
func AsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
