// FILE: lixenwraith/compose/errors.go
package compose

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrFileNotFound is returned when a configuration file does not exist
	ErrFileNotFound = errors.New("configuration file not found")
	// ErrParse is matched by every document syntax or shape failure
	ErrParse = errors.New("configuration parse error")
	// ErrConfigType is matched when a resolved configuration has a type tag outside the allowed set
	ErrConfigType = errors.New("configuration type not allowed")
	// ErrInvalidIdentifier is returned for file identifiers that cannot name a file
	ErrInvalidIdentifier = errors.New("invalid configuration file identifier")
	// ErrFileTooLarge is returned when a file exceeds SecurityOptions.MaxFileSize
	ErrFileTooLarge = errors.New("configuration file too large")
)

// ParseError reports a malformed document. Document is the zero-based index of
// the failing document within the file, or -1 when the failure is file-wide.
type ParseError struct {
	Path     string
	Format   string
	Document int
	Err      error
}

func (e *ParseError) Error() string {
	if e.Document < 0 {
		return fmt.Sprintf("failed to parse %s config file '%s': %v", strings.ToUpper(e.Format), e.Path, e.Err)
	}
	return fmt.Sprintf("failed to parse %s config file '%s' (document %d): %v",
		strings.ToUpper(e.Format), e.Path, e.Document+1, e.Err)
}

// Unwrap exposes both ErrParse and the decoder error
func (e *ParseError) Unwrap() []error {
	return []error{ErrParse, e.Err}
}

// ConfigTypeError identifies the first resolved configuration whose type tag
// is not in the allowed set.
type ConfigTypeError struct {
	Index   int    // zero-based position in the resolved list
	Key     string // tag key, normally "type"
	Value   Value  // tag value found, nil when Present is false
	Present bool
	Allowed []string
}

func (e *ConfigTypeError) Error() string {
	if !e.Present {
		return fmt.Sprintf("config %d has no '%s' entry, allowed types are %v", e.Index+1, e.Key, e.Allowed)
	}
	return fmt.Sprintf("config %d has %s %v not in allowed types %v", e.Index+1, e.Key, ToAny(e.Value), e.Allowed)
}

func (e *ConfigTypeError) Unwrap() error {
	return ErrConfigType
}

// FatalError is an unrecoverable failure reported through a Reporter
type FatalError struct {
	Source string
	Err    error
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("ERROR from %s - %v", e.Source, e.Err)
}

func (e *FatalError) Unwrap() error {
	return e.Err
}
