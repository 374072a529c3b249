package domain

import (
	"errors"
	"fmt"
)

const (
	SourceCountries = "countries"
	SourceRates     = "rates"
)

var (
	ErrCountryNotFound   = errors.New("country not found")
	ErrSourceUnavailable = errors.New("external data source unavailable")
	ErrPersistence       = errors.New("failed to persist countries")
	ErrRender            = errors.New("failed to render summary image")
	ErrInvalidSort       = errors.New("invalid sort value")
)

// SourceUnavailableError reports a failed fetch from one of the external APIs.
type SourceUnavailableError struct {
	Source string
	Err    error
}

func (e *SourceUnavailableError) Error() string {
	return fmt.Sprintf("external data source unavailable: %s: %v", e.Source, e.Err)
}

func (e *SourceUnavailableError) Unwrap() error { return e.Err }

func (e *SourceUnavailableError) Is(target error) bool { return target == ErrSourceUnavailable }

func NewSourceUnavailable(source string, err error) *SourceUnavailableError {
	return &SourceUnavailableError{Source: source, Err: err}
}

type PersistenceError struct {
	Err error
}

func (e *PersistenceError) Error() string { return fmt.Sprintf("%s: %v", ErrPersistence, e.Err) }

func (e *PersistenceError) Unwrap() error { return e.Err }

func (e *PersistenceError) Is(target error) bool { return target == ErrPersistence }

// ValidationError carries the name of the offending query parameter.
type ValidationError struct {
	Field string
	Value string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%v: %s=%q", e.Err, e.Field, e.Value)
}

func (e *ValidationError) Unwrap() error { return e.Err }
