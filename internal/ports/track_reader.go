package ports

import (
	"context"

	"github.com/gtopo/markship/internal/domain"
)

// TrackReader loads the ordered trackpoints of a GPX file.
type TrackReader interface {
	// Read parses the whole file up front. A malformed trackpoint
	// aborts the read with an error wrapping domain.ErrParseFormat.
	Read(ctx context.Context, path string) (domain.Track, error)
}
