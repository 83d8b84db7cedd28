// Package gpx extracts trackpoints from GPX files.
//
// The parser is line oriented, not an XML decoder: it expects each
// trackpoint element to start on its own line with lat before lon,
// the layout GPS loggers write. Token position decides which value is
// which, so a line with the attributes swapped is rejected instead of
// being silently mislabelled.
package gpx

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/gtopo/markship/internal/domain"
	"github.com/gtopo/markship/internal/ports"
	"github.com/gtopo/markship/pkg/log"
)

var _ ports.TrackReader = (*Reader)(nil)

const (
	trkptMarker = "trkpt "
	latPrefix   = "lat="
	lonPrefix   = "lon="

	// the GPX header line alone can run to several hundred bytes
	maxLineBytes = 1 << 20
)

var stripper = strings.NewReplacer(`"`, "", "<", "", ">", "")

// Reader implements ports.TrackReader for files on disk.
type Reader struct {
	logger log.Logger
}

// NewReader creates a Reader. A nil logger discards output.
func NewReader(logger log.Logger) *Reader {
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	return &Reader{logger: logger}
}

// Read opens path and parses it with Parse.
func (r *Reader) Read(ctx context.Context, path string) (domain.Track, error) {
	if err := ctx.Err(); err != nil {
		return domain.Track{}, err
	}
	f, err := os.Open(path)
	if err != nil {
		return domain.Track{}, fmt.Errorf("open track: %w", err)
	}
	defer f.Close()

	track, err := Parse(f)
	if err != nil {
		return domain.Track{}, fmt.Errorf("read %s: %w", path, err)
	}
	r.logger.Debug("track loaded", log.String("path", path), log.Int("marks", track.Len()))
	return track, nil
}

// Parse reads trackpoints from r in line order. The first malformed
// trackpoint line stops the parse with a *domain.ParseError.
func Parse(r io.Reader) (domain.Track, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 4096), maxLineBytes)

	var marks []domain.Mark
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if !strings.Contains(line, trkptMarker) {
			continue
		}
		m, err := ParseLine(line)
		if err != nil {
			if pe, ok := err.(*domain.ParseError); ok {
				pe.Line = lineNo
			}
			return domain.Track{}, err
		}
		m.Line = lineNo
		marks = append(marks, m)
	}
	if err := sc.Err(); err != nil {
		return domain.Track{}, fmt.Errorf("scan track: %w", err)
	}
	return domain.NewTrack(marks), nil
}

// ParseLine extracts the mark from a single trackpoint line such as
// `<trkpt lat="31.71" lon="-110.87">`. The second token must carry lat
// and the third lon. Tags glued to the front of the element, as in
// `<trkseg><trkpt ...>`, merge into the first token once brackets are
// stripped.
func ParseLine(line string) (domain.Mark, error) {
	w := strings.Fields(stripper.Replace(line))
	if len(w) < 3 {
		return domain.Mark{}, &domain.ParseError{Text: line, Reason: "expected lat and lon attributes"}
	}
	lat, err := attrValue(w[1], latPrefix)
	if err != nil {
		return domain.Mark{}, &domain.ParseError{Text: line, Reason: err.Error()}
	}
	lon, err := attrValue(w[2], lonPrefix)
	if err != nil {
		return domain.Mark{}, &domain.ParseError{Text: line, Reason: err.Error()}
	}
	return domain.Mark{Lat: lat, Lon: lon}, nil
}

func attrValue(tok, prefix string) (string, error) {
	if !strings.HasPrefix(tok, prefix) {
		return "", fmt.Errorf("token %q is not %svalue", tok, prefix)
	}
	// self-closing elements leave a trailing slash on the last value
	v := strings.TrimSuffix(strings.TrimPrefix(tok, prefix), "/")
	if v == "" {
		return "", fmt.Errorf("empty %s value", strings.TrimSuffix(prefix, "="))
	}
	return v, nil
}
