package schema

import (
	"errors"
	"fmt"
)

// ErrUnknownCollection is returned when a collection name is not one of
// the persisted collections.
var ErrUnknownCollection = errors.New("unknown collection")

// ValidationError reports a single invalid field on a record.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Message)
}

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// RowError ties a validation or parse failure to a 1-based data row of an
// imported file.
type RowError struct {
	Row int
	Err error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row %d: %v", e.Row, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}
