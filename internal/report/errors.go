// Package report loads audit reports and flattens them into spreadsheet rows.
package report

import (
	"errors"
	"fmt"
)

var (
	// ErrReadReport is returned when a report file cannot be read
	ErrReadReport = fmt.Errorf("failed to read report")
	// ErrMissingField is returned when a field the extractor depends on is absent
	ErrMissingField = fmt.Errorf("missing required field")
	// ErrNoEmbeddedJSON is returned when an HTML report carries no inline result document
	ErrNoEmbeddedJSON = fmt.Errorf("no embedded report JSON found in HTML")
)

// ParseError represents a report document that is not valid JSON or does not match the report schema
type ParseError struct {
	Path    string
	Message string
	Cause   error
}

func (e *ParseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("parse error in %s: %s: %v", e.Path, e.Message, e.Cause)
	}
	return fmt.Sprintf("parse error in %s: %s", e.Path, e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}

// IsInputError reports whether err was caused by the report input rather than by a remote service
func IsInputError(err error) bool {
	var parseErr *ParseError
	return errors.As(err, &parseErr) ||
		errors.Is(err, ErrReadReport) ||
		errors.Is(err, ErrMissingField) ||
		errors.Is(err, ErrNoEmbeddedJSON)
}
