package domain

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ShipID identifies a ship on one board. IDs start at 1; NoShip marks water.
type ShipID int

// NoShip is the ShipID reported for an empty cell.
const NoShip ShipID = 0

// Cell is either empty water or occupied by exactly one ship.
// The zero value is an empty cell.
type Cell struct {
	ship ShipID
}

// EmptyCell returns a water cell.
func EmptyCell() Cell { return Cell{} }

// ShipCell returns a cell occupied by the given ship.
func ShipCell(id ShipID) Cell { return Cell{ship: id} }

// IsEmpty reports whether the cell holds no ship.
func (c Cell) IsEmpty() bool { return c.ship == NoShip }

// Ship returns the occupying ship, if any.
func (c Cell) Ship() (ShipID, bool) {
	return c.ship, c.ship != NoShip
}

// MarshalJSON stores a cell as its ship id, 0 for water.
func (c Cell) MarshalJSON() ([]byte, error) {
	return json.Marshal(int(c.ship))
}

// UnmarshalJSON reads a cell stored by MarshalJSON.
func (c *Cell) UnmarshalJSON(data []byte) error {
	var id int
	if err := json.Unmarshal(data, &id); err != nil {
		return err
	}
	if id < 0 {
		return fmt.Errorf("negative ship id %d in cell", id)
	}
	c.ship = ShipID(id)
	return nil
}

// Board is a Width x Height grid stored row-major.
type Board struct {
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Cells  []Cell `json:"cells"`
}

// NewBoard returns an all-water board.
func NewBoard(width, height int) Board {
	return Board{Width: width, Height: height, Cells: make([]Cell, width*height)}
}

// InBounds reports whether c lies on the board.
func (b *Board) InBounds(c Coord) bool {
	return c.Row >= 0 && c.Row < b.Height && c.Col >= 0 && c.Col < b.Width
}

// Index returns the row-major index of c. c must be in bounds.
func (b *Board) Index(c Coord) int {
	return c.Row*b.Width + c.Col
}

// At returns the cell at c, or an empty cell when c is off the board.
func (b *Board) At(c Coord) Cell {
	if !b.InBounds(c) {
		return EmptyCell()
	}
	return b.Cells[b.Index(c)]
}

func (b *Board) set(c Coord, cell Cell) {
	b.Cells[b.Index(c)] = cell
}

func (b *Board) free(coords []Coord) bool {
	for _, c := range coords {
		if !b.InBounds(c) || !b.At(c).IsEmpty() {
			return false
		}
	}
	return true
}

// Bits flattens the board into occupancy bits, 1 for ship and 0 for water.
func (b *Board) Bits() []uint8 {
	out := make([]uint8, len(b.Cells))
	for i, cell := range b.Cells {
		if !cell.IsEmpty() {
			out[i] = 1
		}
	}
	return out
}

// Orientation is the axis a ship lies along.
type Orientation string

const (
	// Horizontal ships grow to the right.
	Horizontal Orientation = "H"
	// Vertical ships grow downwards.
	Vertical Orientation = "V"
	// DiagonalDown ships grow down and to the right.
	DiagonalDown Orientation = "D+"
	// DiagonalUp ships grow up and to the right.
	DiagonalUp Orientation = "D-"
)

// Orientations lists every permitted axis in a fixed order.
var Orientations = []Orientation{Horizontal, Vertical, DiagonalDown, DiagonalUp}

func (o Orientation) step() (dr, dc int, ok bool) {
	switch o {
	case Horizontal:
		return 0, 1, true
	case Vertical:
		return 1, 0, true
	case DiagonalDown:
		return 1, 1, true
	case DiagonalUp:
		return -1, 1, true
	default:
		return 0, 0, false
	}
}

// Span returns the length cells starting at anchor along o.
func Span(anchor Coord, o Orientation, length int) []Coord {
	dr, dc, ok := o.step()
	if !ok || length < 1 {
		return nil
	}
	coords := make([]Coord, length)
	for i := range coords {
		coords[i] = anchor.add(dr*i, dc*i)
	}
	return coords
}

// Ship is one placed vessel.
type Ship struct {
	ID          ShipID      `json:"id"`
	Length      int         `json:"length"`
	Orientation Orientation `json:"orientation"`
	Coords      []Coord     `json:"coords"`
}

// Covered reports whether every tile of the ship is in hits.
func (s Ship) Covered(hits HitSet) bool {
	for _, c := range s.Coords {
		if !hits.Contains(c) {
			return false
		}
	}
	return true
}

// Fleet is a board together with the ships stamped onto it.
type Fleet struct {
	Board Board  `json:"board"`
	Ships []Ship `json:"ships"`
}

// NewFleet stamps ships onto a fresh width x height board and validates the
// result. Ship ids are assigned in order starting at 1.
func NewFleet(width, height int, ships []Ship) (Fleet, error) {
	if width < 1 || height < 1 {
		return Fleet{}, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}
	f := Fleet{Board: NewBoard(width, height), Ships: make([]Ship, len(ships))}
	for i, s := range ships {
		s.ID = ShipID(i + 1)
		s.Length = len(s.Coords)
		s.Coords = append([]Coord(nil), s.Coords...)
		for _, c := range s.Coords {
			if f.Board.InBounds(c) {
				f.Board.set(c, ShipCell(s.ID))
			}
		}
		f.Ships[i] = s
	}
	if err := f.Validate(); err != nil {
		return Fleet{}, err
	}
	return f, nil
}

// Ship looks up a ship by id.
func (f *Fleet) Ship(id ShipID) (Ship, bool) {
	idx := int(id) - 1
	if idx < 0 || idx >= len(f.Ships) || f.Ships[idx].ID != id {
		for _, s := range f.Ships {
			if s.ID == id {
				return s, true
			}
		}
		return Ship{}, false
	}
	return f.Ships[idx], true
}

// AllSunk reports whether hits covers every ship tile.
func (f *Fleet) AllSunk(hits HitSet) bool {
	for _, s := range f.Ships {
		if !s.Covered(hits) {
			return false
		}
	}
	return true
}

// Tiles returns the total number of ship cells.
func (f *Fleet) Tiles() int {
	n := 0
	for _, s := range f.Ships {
		n += len(s.Coords)
	}
	return n
}

// ErrCorruptFleet is returned by Validate when a fleet breaks its invariants.
var ErrCorruptFleet = errors.New("corrupt fleet")

// Validate checks that every ship is in bounds, straight along one axis,
// does not overlap another ship, and matches what the board cells say.
func (f *Fleet) Validate() error {
	b := &f.Board
	if b.Width < 1 || b.Height < 1 || len(b.Cells) != b.Width*b.Height {
		return fmt.Errorf("%w: board %dx%d has %d cells", ErrCorruptFleet, b.Width, b.Height, len(b.Cells))
	}
	claimed := make(map[Coord]ShipID)
	for i, s := range f.Ships {
		if s.ID != ShipID(i+1) {
			return fmt.Errorf("%w: ship %d has id %d", ErrCorruptFleet, i+1, s.ID)
		}
		if s.Length != len(s.Coords) || s.Length < 1 {
			return fmt.Errorf("%w: ship %d length %d does not match %d coords", ErrCorruptFleet, s.ID, s.Length, len(s.Coords))
		}
		want := Span(s.Coords[0], s.Orientation, s.Length)
		if want == nil {
			return fmt.Errorf("%w: ship %d has orientation %q", ErrCorruptFleet, s.ID, s.Orientation)
		}
		for j, c := range s.Coords {
			if c != want[j] {
				return fmt.Errorf("%w: ship %d is not a straight %s line", ErrCorruptFleet, s.ID, s.Orientation)
			}
			if !b.InBounds(c) {
				return fmt.Errorf("%w: ship %d leaves the board at %s", ErrCorruptFleet, s.ID, c)
			}
			if other, taken := claimed[c]; taken {
				return fmt.Errorf("%w: ships %d and %d overlap at %s", ErrCorruptFleet, other, s.ID, c)
			}
			claimed[c] = s.ID
			if id, _ := b.At(c).Ship(); id != s.ID {
				return fmt.Errorf("%w: cell %s holds %d, want %d", ErrCorruptFleet, c, id, s.ID)
			}
		}
	}
	for i, cell := range b.Cells {
		if id, ok := cell.Ship(); ok {
			c := Coord{Row: i / b.Width, Col: i % b.Width}
			if claimed[c] != id {
				return fmt.Errorf("%w: cell %s holds ship %d that does not claim it", ErrCorruptFleet, c, id)
			}
		}
	}
	return nil
}
