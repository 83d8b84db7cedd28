package domain

import "fmt"

// Command verbs understood by the remote-control port.
const (
	VerbMarkCenter = "MC" // place the mark and center the map on it
	VerbMark       = "M"  // place the mark only
	VerbPathPoint  = "P"  // append a point to the path
	VerbErasePath  = "E"
	VerbDrawPath   = "D"
)

// Mark is a single trackpoint. Coordinates are kept exactly as they appear
// in the source file; they are never parsed to numbers.
type Mark struct {
	Lat  string
	Lon  string
	Line int
}

// Command returns the mark+center command, "MC <lon> <lat>".
func (m Mark) Command() string {
	return m.CommandVerb(VerbMarkCenter)
}

// CommandVerb returns "<verb> <lon> <lat>". Longitude goes first.
func (m Mark) CommandVerb(verb string) string {
	return verb + " " + m.Lon + " " + m.Lat
}

// Track is the ordered sequence of marks read from one file.
// Its order is the file's line order and it is never modified after
// construction.
type Track struct {
	marks []Mark
}

// NewTrack builds a Track from marks. The slice is copied.
func NewTrack(marks []Mark) Track {
	return Track{marks: append([]Mark(nil), marks...)}
}

// Len returns the number of marks.
func (t Track) Len() int {
	return len(t.marks)
}

// At returns the i-th mark (0-based).
func (t Track) At(i int) (Mark, error) {
	if i < 0 || i >= len(t.marks) {
		return Mark{}, fmt.Errorf("%w: %d (track has %d marks)", ErrIndexOutOfRange, i, len(t.marks))
	}
	return t.marks[i], nil
}

// Marks returns a copy of all marks in order.
func (t Track) Marks() []Mark {
	return append([]Mark(nil), t.marks...)
}

// Commands returns the mark+center command of every mark in order.
func (t Track) Commands() []string {
	out := make([]string, len(t.marks))
	for i, m := range t.marks {
		out[i] = m.Command()
	}
	return out
}
