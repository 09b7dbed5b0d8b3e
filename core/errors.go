package core

import "github.com/pkg/errors"

// ErrPermissionDenied is returned by guarded mutations when the actor is not allowed to perform them.
var ErrPermissionDenied = errors.New("permission denied")

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string
	Error string
}

// ValidationError reports invalid input, field by field when Fields is set.
type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{Err: err, Fields: flds}
}

// NewFieldError reports err on a single field, err's text being the field message.
func NewFieldError(field string, err error) error {
	return NewValidationError(err, FieldError{Field: field, Error: err.Error()})
}

// FieldMap returns the field messages keyed by field name, or nil.
func (err ValidationError) FieldMap() map[string]string {
	if len(err.Fields) == 0 {
		return nil
	}
	m := make(map[string]string, len(err.Fields))
	for _, fld := range err.Fields {
		m[fld.Field] = fld.Error
	}
	return m
}

func (err ValidationError) Error() string {
	switch {
	case err.Err != nil:
		return err.Err.Error()
	case len(err.Fields) > 0:
		return err.Fields[0].Field + ": " + err.Fields[0].Error
	default:
		return "invalid input"
	}
}

func (err ValidationError) Cause() error  { return err.Err }
func (err ValidationError) Unwrap() error { return err.Err }

// ShutdownError marks failures the process cannot recover from, eg. a closed database connection.
type ShutdownError struct {
	Err error
}

func NewShutdownError(err error) error {
	return &ShutdownError{Err: err}
}

func (err ShutdownError) Error() string {
	return "unrecoverable: " + err.Err.Error()
}

func (err ShutdownError) Unwrap() error { return err.Err }

func IsShutdown(err error) bool {
	var sErr *ShutdownError
	return errors.As(err, &sErr)
}
