package normalize

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownClassification = errors.New("unknown classification")
	ErrNoSession             = errors.New("no legislative session")
	ErrEmptyHistory          = errors.New("empty action history")
	ErrMissingField          = errors.New("missing required field")
	ErrMalformedField        = errors.New("malformed field")
)

// UnknownClassificationError reports a label absent from a lookup table.
type UnknownClassificationError struct {
	Table string
	Label string
}

func (e *UnknownClassificationError) Error() string {
	return fmt.Sprintf("unknown %s classification: %q", e.Table, e.Label)
}

func (e *UnknownClassificationError) Is(target error) bool {
	return target == ErrUnknownClassification
}

// FieldError reports a required upstream field that is absent or unusable.
type FieldError struct {
	Entity string
	Field  string
	Err    error // ErrMissingField or ErrMalformedField
	Value  string
}

func (e *FieldError) Error() string {
	if e.Value != "" {
		return fmt.Sprintf("%s %s %q: %v", e.Entity, e.Field, e.Value, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Entity, e.Field, e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

func missingField(entity, field string) error {
	return &FieldError{Entity: entity, Field: field, Err: ErrMissingField}
}

func malformedField(entity, field, value string) error {
	return &FieldError{Entity: entity, Field: field, Err: ErrMalformedField, Value: value}
}
