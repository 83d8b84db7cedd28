// Package domain contains the core entities of markship.
//
// It has no dependencies on infrastructure (network, file system, logging)
// and holds only the track model and the error kinds shared by every layer.
//
// # Entities
//
//   - [Mark]: a single trackpoint, coordinates kept as source text
//   - [Track]: the ordered, immutable sequence of marks read from a GPX file
//
// # Errors
//
// Every failure surfaced by markship wraps one of [ErrParseFormat],
// [ErrConnection], [ErrIndexOutOfRange] or [ErrInvalidConfig], so callers
// can branch with errors.Is.
package domain
