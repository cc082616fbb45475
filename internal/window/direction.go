package window

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidDirection is returned when a resize direction is not one of the
// eight compass directions.
var ErrInvalidDirection = errors.New("invalid resize direction")

// Direction is a resize handle, built from independent edge components so that
// a corner applies both of its edge rules.
type Direction uint8

const (
	North Direction = 1 << iota
	South
	East
	West

	NorthEast = North | East
	NorthWest = North | West
	SouthEast = South | East
	SouthWest = South | West
)

// Has reports whether d moves the given edge.
func (d Direction) Has(edge Direction) bool {
	return d&edge != 0
}

// Valid reports whether d is one of the eight compass directions.
func (d Direction) Valid() bool {
	switch d {
	case North, South, East, West, NorthEast, NorthWest, SouthEast, SouthWest:
		return true
	default:
		return false
	}
}

// String returns the compass name ("n", "se", ...).
func (d Direction) String() string {
	if !d.Valid() {
		return "invalid"
	}
	var sb strings.Builder
	if d.Has(North) {
		sb.WriteByte('n')
	}
	if d.Has(South) {
		sb.WriteByte('s')
	}
	if d.Has(East) {
		sb.WriteByte('e')
	}
	if d.Has(West) {
		sb.WriteByte('w')
	}
	return sb.String()
}

// MarshalText encodes the direction by compass name.
func (d Direction) MarshalText() ([]byte, error) {
	if !d.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidDirection, uint8(d))
	}
	return []byte(d.String()), nil
}

// UnmarshalText decodes a compass name.
func (d *Direction) UnmarshalText(text []byte) error {
	parsed, err := ParseDirection(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Directions lists every valid direction, edges first.
func Directions() []Direction {
	return []Direction{North, South, East, West, NorthEast, NorthWest, SouthEast, SouthWest}
}

// ParseDirection converts a compass name to a Direction.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "n":
		return North, nil
	case "s":
		return South, nil
	case "e":
		return East, nil
	case "w":
		return West, nil
	case "ne":
		return NorthEast, nil
	case "nw":
		return NorthWest, nil
	case "se":
		return SouthEast, nil
	case "sw":
		return SouthWest, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidDirection, s)
	}
}
