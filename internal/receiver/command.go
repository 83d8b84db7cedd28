package receiver

import (
	"errors"
	"strconv"
	"strings"
)

// Kind identifies a remote-control command.
type Kind int

const (
	KindMark Kind = iota // mark and/or center at a coordinate
	KindPathPoint
	KindErasePath
	KindDrawPath
)

func (k Kind) String() string {
	switch k {
	case KindMark:
		return "mark"
	case KindPathPoint:
		return "point"
	case KindErasePath:
		return "erase"
	case KindDrawPath:
		return "draw"
	default:
		return "unknown"
	}
}

// Command is one decoded request.
type Command struct {
	Kind   Kind
	Mark   bool
	Center bool
	Lon    float64
	Lat    float64
}

var errBadCommand = errors.New("bad command")

// ParseCommand decodes a single request such as "MC -110.87813 31.71917".
//
// Letters of the first word are matched case-insensitively: m marks,
// c centers, p appends a path point, e erases the path and d draws it.
// e and d take effect as soon as they are seen and need no arguments.
func ParseCommand(s string) (Command, error) {
	w := splitN(s, 4)
	if len(w) < 1 {
		return Command{}, errBadCommand
	}

	var cmd Command
	point, valid := false, false
	for _, r := range w[0] {
		switch r {
		case 'm', 'M':
			cmd.Mark, valid = true, true
		case 'c', 'C':
			cmd.Center, valid = true, true
		case 'p', 'P':
			point, valid = true, true
		case 'e', 'E':
			return Command{Kind: KindErasePath}, nil
		case 'd', 'D':
			return Command{Kind: KindDrawPath}, nil
		}
	}
	if !valid || len(w) != 3 {
		return Command{}, errBadCommand
	}

	lon, err := strconv.ParseFloat(w[1], 64)
	if err != nil {
		return Command{}, errBadCommand
	}
	lat, err := strconv.ParseFloat(w[2], 64)
	if err != nil {
		return Command{}, errBadCommand
	}
	cmd.Lon, cmd.Lat = lon, lat

	if point {
		return Command{Kind: KindPathPoint, Lon: lon, Lat: lat}, nil
	}
	cmd.Kind = KindMark
	return cmd, nil
}

// splitN splits on whitespace into at most n words; the last word keeps
// whatever text remains.
func splitN(s string, n int) []string {
	var out []string
	s = strings.TrimSpace(s)
	for s != "" && len(out) < n-1 {
		i := strings.IndexAny(s, " \t")
		if i < 0 {
			break
		}
		out = append(out, s[:i])
		s = strings.TrimLeft(s[i:], " \t")
	}
	if s != "" {
		out = append(out, s)
	}
	return out
}
