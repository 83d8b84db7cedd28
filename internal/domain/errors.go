package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent the closed set of failure kinds in markship.
// They are returned wrapped and can be checked with errors.Is.
var (
	// ErrParseFormat is returned when a trackpoint line does not have the
	// expected lat/lon token layout.
	ErrParseFormat = errors.New("markship: malformed trackpoint")

	// ErrConnection is returned for any transport failure: dial, write,
	// acknowledgment read or peer disconnect.
	ErrConnection = errors.New("markship: connection error")

	// ErrIndexOutOfRange is returned when a mark index does not address
	// an element of the track.
	ErrIndexOutOfRange = errors.New("markship: mark index out of range")

	// ErrInvalidConfig is returned when configuration validation fails.
	ErrInvalidConfig = errors.New("markship: invalid configuration")
)

// ParseError describes the trackpoint line that stopped a parse.
type ParseError struct {
	Line   int    // 1-based line number in the source file
	Text   string // trimmed line text
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%v: line %d: %s: %q", ErrParseFormat, e.Line, e.Reason, e.Text)
}

// Unwrap lets errors.Is match ErrParseFormat.
func (e *ParseError) Unwrap() error {
	return ErrParseFormat
}
