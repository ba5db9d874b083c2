package domain

import (
	"errors"
	"fmt"
	"math/rand"
	"time"
)

// DefaultRetryBudget is the number of placement attempts allowed per ship.
const DefaultRetryBudget = 1000

var (
	ErrInvalidDimensions  = errors.New("invalid board dimensions")
	ErrInvalidShipLength  = errors.New("invalid ship length")
	ErrInvalidRules       = errors.New("invalid placement rules")
	ErrPlacementExhausted = errors.New("placement exhausted")
)

// PlacementExhaustedError reports the ship that could not be placed.
// It matches ErrPlacementExhausted with errors.Is.
type PlacementExhaustedError struct {
	Length   int
	Attempts int
	Placed   int
}

func (e *PlacementExhaustedError) Error() string {
	return fmt.Sprintf("could not place a ship of length %d after %d attempts (%d ships placed); try fewer ship tiles or a larger board",
		e.Length, e.Attempts, e.Placed)
}

func (e *PlacementExhaustedError) Is(target error) bool {
	return target == ErrPlacementExhausted
}

// ClusterPolicy controls how tightly ships may pack together.
//
// A candidate touching HardLimit or more distinct ships is always rejected.
// Below the limit, RejectChance[k] is the probability of rejecting a
// candidate that touches k ships; missing entries mean "always accept".
type ClusterPolicy struct {
	HardLimit    int       `json:"hard_limit"`
	RejectChance []float64 `json:"reject_chance,omitempty"`
}

// StrictClusterPolicy rejects at three touching ships and thins out
// candidates touching one or two.
func StrictClusterPolicy() ClusterPolicy {
	return ClusterPolicy{HardLimit: 3, RejectChance: []float64{0, 0.6, 0.9}}
}

// LooseClusterPolicy only rejects candidates touching four or more ships.
func LooseClusterPolicy() ClusterPolicy {
	return ClusterPolicy{HardLimit: 4}
}

// IsolatedClusterPolicy forbids ships from touching at all, diagonals included.
func IsolatedClusterPolicy() ClusterPolicy {
	return ClusterPolicy{HardLimit: 1}
}

// ClusterPolicyByName resolves the preset names used in configuration.
func ClusterPolicyByName(name string) (ClusterPolicy, bool) {
	switch name {
	case "", "strict":
		return StrictClusterPolicy(), true
	case "loose":
		return LooseClusterPolicy(), true
	case "isolated":
		return IsolatedClusterPolicy(), true
	default:
		return ClusterPolicy{}, false
	}
}

// Validate checks the table is usable.
func (p ClusterPolicy) Validate() error {
	if p.HardLimit < 1 {
		return fmt.Errorf("%w: hard limit %d must be at least 1", ErrInvalidRules, p.HardLimit)
	}
	if len(p.RejectChance) > p.HardLimit {
		return fmt.Errorf("%w: %d reject chances for hard limit %d", ErrInvalidRules, len(p.RejectChance), p.HardLimit)
	}
	for k, chance := range p.RejectChance {
		if chance < 0 || chance > 1 {
			return fmt.Errorf("%w: reject chance %v at %d touching ships", ErrInvalidRules, chance, k)
		}
	}
	return nil
}

func (p ClusterPolicy) rejects(touching int, rng *rand.Rand) bool {
	if touching >= p.HardLimit {
		return true
	}
	if touching >= len(p.RejectChance) {
		return false
	}
	chance := p.RejectChance[touching]
	return chance > 0 && rng.Float64() < chance
}

// OrientationWeights are relative odds of picking each orientation.
type OrientationWeights struct {
	Horizontal   int `json:"horizontal"`
	Vertical     int `json:"vertical"`
	DiagonalDown int `json:"diagonal_down"`
	DiagonalUp   int `json:"diagonal_up"`
}

// DefaultOrientationWeights favours straight ships 4:4 over diagonals 1:1.
func DefaultOrientationWeights() OrientationWeights {
	return OrientationWeights{Horizontal: 4, Vertical: 4, DiagonalDown: 1, DiagonalUp: 1}
}

func (w OrientationWeights) weights() []int {
	return []int{w.Horizontal, w.Vertical, w.DiagonalDown, w.DiagonalUp}
}

// Validate checks every weight is non-negative and at least one is positive.
func (w OrientationWeights) Validate() error {
	total := 0
	for _, v := range w.weights() {
		if v < 0 {
			return fmt.Errorf("%w: negative orientation weight %d", ErrInvalidRules, v)
		}
		total += v
	}
	if total == 0 {
		return fmt.Errorf("%w: all orientation weights are zero", ErrInvalidRules)
	}
	return nil
}

// PlacementRules bundles the tunables of the layout generator.
type PlacementRules struct {
	RetryBudget int                `json:"retry_budget"`
	Policy      ClusterPolicy      `json:"policy"`
	Weights     OrientationWeights `json:"weights"`
}

// DefaultPlacementRules returns the rules used when nothing is configured.
func DefaultPlacementRules() PlacementRules {
	return PlacementRules{
		RetryBudget: DefaultRetryBudget,
		Policy:      StrictClusterPolicy(),
		Weights:     DefaultOrientationWeights(),
	}
}

// Validate checks all rule components.
func (r PlacementRules) Validate() error {
	if r.RetryBudget < 1 {
		return fmt.Errorf("%w: retry budget %d must be positive", ErrInvalidRules, r.RetryBudget)
	}
	if err := r.Policy.Validate(); err != nil {
		return err
	}
	return r.Weights.Validate()
}

// Generator produces random fleets. It is not safe for concurrent use
// because it owns its random source.
type Generator struct {
	rng   *rand.Rand
	rules PlacementRules
}

// NewGenerator constructs a Generator with the provided rng or a time-seeded default.
func NewGenerator(rng *rand.Rand, rules PlacementRules) *Generator {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Generator{rng: rng, rules: rules}
}

// Generate places one ship per entry of lengths, in order, on a fresh board.
// Either every ship is placed or a *PlacementExhaustedError is returned.
func (g *Generator) Generate(width, height int, lengths []int) (Fleet, error) {
	if width < 1 || height < 1 {
		return Fleet{}, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}
	if err := g.rules.Validate(); err != nil {
		return Fleet{}, err
	}

	fleet := Fleet{Board: NewBoard(width, height), Ships: make([]Ship, 0, len(lengths))}
	for _, length := range lengths {
		if length < 1 {
			return Fleet{}, fmt.Errorf("%w: %d", ErrInvalidShipLength, length)
		}
		ship, ok := g.place(&fleet.Board, ShipID(len(fleet.Ships)+1), length)
		if !ok {
			return Fleet{}, &PlacementExhaustedError{
				Length:   length,
				Attempts: g.rules.RetryBudget,
				Placed:   len(fleet.Ships),
			}
		}
		fleet.Ships = append(fleet.Ships, ship)
	}
	return fleet, nil
}

func (g *Generator) place(b *Board, id ShipID, length int) (Ship, bool) {
	for attempt := 0; attempt < g.rules.RetryBudget; attempt++ {
		o := g.pickOrientation()
		anchor, ok := g.pickAnchor(b, o, length)
		if !ok {
			continue
		}
		coords := Span(anchor, o, length)
		if !b.free(coords) {
			continue
		}
		if g.rules.Policy.rejects(TouchCount(b, coords, NoShip), g.rng) {
			continue
		}
		for _, c := range coords {
			b.set(c, ShipCell(id))
		}
		return Ship{ID: id, Length: length, Orientation: o, Coords: coords}, true
	}
	return Ship{}, false
}

func (g *Generator) pickOrientation() Orientation {
	weights := g.rules.Weights.weights()
	total := 0
	for _, w := range weights {
		total += w
	}
	n := g.rng.Intn(total)
	for i, w := range weights {
		if n < w {
			return Orientations[i]
		}
		n -= w
	}
	return Horizontal
}

// pickAnchor samples uniformly among anchors whose whole span fits.
func (g *Generator) pickAnchor(b *Board, o Orientation, length int) (Coord, bool) {
	minRow, maxRow, minCol, maxCol := anchorRange(b.Width, b.Height, o, length)
	if maxRow < minRow || maxCol < minCol {
		return Coord{}, false
	}
	return Coord{
		Row: minRow + g.rng.Intn(maxRow-minRow+1),
		Col: minCol + g.rng.Intn(maxCol-minCol+1),
	}, true
}

func anchorRange(width, height int, o Orientation, length int) (minRow, maxRow, minCol, maxCol int) {
	switch o {
	case Horizontal:
		return 0, height - 1, 0, width - length
	case Vertical:
		return 0, height - length, 0, width - 1
	case DiagonalDown:
		return 0, height - length, 0, width - length
	case DiagonalUp:
		return length - 1, height - 1, 0, width - length
	default:
		return 0, -1, 0, -1
	}
}

// TouchCount returns how many distinct ships, other than self, occupy the
// 8-connected neighbourhood of coords.
func TouchCount(b *Board, coords []Coord, self ShipID) int {
	seen := make(map[ShipID]struct{})
	for _, c := range coords {
		for dr := -1; dr <= 1; dr++ {
			for dc := -1; dc <= 1; dc++ {
				if dr == 0 && dc == 0 {
					continue
				}
				id, ok := b.At(c.add(dr, dc)).Ship()
				if ok && id != self {
					seen[id] = struct{}{}
				}
			}
		}
	}
	return len(seen)
}
