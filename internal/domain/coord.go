package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// MaxRows is the number of addressable rows; rows are labelled A..Z.
const MaxRows = 26

// ErrInvalidCoordinate is returned when a coordinate cannot be parsed.
var ErrInvalidCoordinate = errors.New("invalid coordinate")

// Coord addresses a single board cell. Row and Col are zero-based.
//
// On the wire a coordinate is a row letter plus a 1-based column number,
// so "B7" is Coord{Row: 1, Col: 6}. No other convention is accepted.
type Coord struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// ParseCoord converts a row letter and a 1-based column number into a Coord.
// It does not check the coordinate against a board; the resolver does that.
func ParseCoord(row string, column int) (Coord, error) {
	row = strings.ToUpper(strings.TrimSpace(row))
	if len(row) != 1 || row[0] < 'A' || row[0] > 'Z' {
		return Coord{}, fmt.Errorf("%w: row %q must be a single letter A-Z", ErrInvalidCoordinate, row)
	}
	if column < 1 {
		return Coord{}, fmt.Errorf("%w: column %d must be 1 or greater", ErrInvalidCoordinate, column)
	}
	return Coord{Row: int(row[0] - 'A'), Col: column - 1}, nil
}

// ParseLabel parses a compact label such as "B7" or "j10". The column part
// must be plain decimal digits.
func ParseLabel(label string) (Coord, error) {
	label = strings.TrimSpace(label)
	if len(label) < 2 {
		return Coord{}, fmt.Errorf("%w: %q", ErrInvalidCoordinate, label)
	}
	for _, r := range label[1:] {
		if r < '0' || r > '9' {
			return Coord{}, fmt.Errorf("%w: column in %q is not a number", ErrInvalidCoordinate, label)
		}
	}
	column, err := strconv.Atoi(label[1:])
	if err != nil {
		return Coord{}, fmt.Errorf("%w: column in %q is not a number", ErrInvalidCoordinate, label)
	}
	return ParseCoord(label[:1], column)
}

// String renders the coordinate in wire format.
func (c Coord) String() string {
	if c.Row < 0 || c.Row >= MaxRows || c.Col < 0 {
		return fmt.Sprintf("(%d,%d)", c.Row, c.Col)
	}
	return fmt.Sprintf("%c%d", 'A'+c.Row, c.Col+1)
}

func (c Coord) add(dr, dc int) Coord {
	return Coord{Row: c.Row + dr, Col: c.Col + dc}
}
