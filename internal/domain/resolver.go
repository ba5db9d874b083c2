package domain

// Outcome is the per-shot verdict.
type Outcome string

const (
	OutcomeMiss         Outcome = "miss"
	OutcomeHit          Outcome = "hit"
	OutcomeSunk         Outcome = "sunk"
	OutcomeAlreadyFired Outcome = "already_fired"
	OutcomeOutOfBounds  Outcome = "out_of_bounds"
)

// Mutates reports whether a shot with this outcome changes the shot record.
func (o Outcome) Mutates() bool {
	return o == OutcomeMiss || o == OutcomeHit || o == OutcomeSunk
}

// HitSet is the ordered, duplicate-free list of coordinates a side has fired at.
type HitSet []Coord

// Contains reports whether c has been fired at.
func (h HitSet) Contains(c Coord) bool {
	for _, hit := range h {
		if hit == c {
			return true
		}
	}
	return false
}

// SunkSet lists opponent ships already announced as sunk.
type SunkSet []ShipID

// Contains reports whether id is in the set.
func (s SunkSet) Contains(id ShipID) bool {
	for _, sunk := range s {
		if sunk == id {
			return true
		}
	}
	return false
}

// Shots is one side's outgoing fire record against the opponent fleet.
type Shots struct {
	Hits HitSet  `json:"hits"`
	Sunk SunkSet `json:"sunk"`
}

func (s Shots) clone() Shots {
	return Shots{
		Hits: append(HitSet(nil), s.Hits...),
		Sunk: append(SunkSet(nil), s.Sunk...),
	}
}

// ShotResult describes a resolved shot.
type ShotResult struct {
	Coord   Coord
	Outcome Outcome
	// Ship is the ship struck, NoShip on a miss.
	Ship ShipID
	// AllSunk is true when every ship of the fleet is covered after the shot.
	AllSunk bool
}

// Resolve fires at c and returns the verdict along with the updated record.
// The input record is never modified; on OutOfBounds and AlreadyFired the
// returned record equals the input.
func Resolve(fleet *Fleet, shots Shots, c Coord) (ShotResult, Shots) {
	res := ShotResult{Coord: c}
	if !fleet.Board.InBounds(c) {
		res.Outcome = OutcomeOutOfBounds
		res.AllSunk = fleet.AllSunk(shots.Hits)
		return res, shots
	}
	if shots.Hits.Contains(c) {
		res.Outcome = OutcomeAlreadyFired
		res.Ship, _ = fleet.Board.At(c).Ship()
		res.AllSunk = fleet.AllSunk(shots.Hits)
		return res, shots
	}

	next := shots.clone()
	next.Hits = append(next.Hits, c)

	id, ok := fleet.Board.At(c).Ship()
	if !ok {
		res.Outcome = OutcomeMiss
	} else {
		res.Ship = id
		res.Outcome = OutcomeHit
		if ship, found := fleet.Ship(id); found && ship.Covered(next.Hits) && !next.Sunk.Contains(id) {
			res.Outcome = OutcomeSunk
			next.Sunk = append(next.Sunk, id)
		}
	}
	res.AllSunk = fleet.AllSunk(next.Hits)
	return res, next
}

// Score is a read-side tally over a shot record.
type Score struct {
	Shots          int `json:"shots"`
	SunkTiles      int `json:"sunk_tiles"`
	HitTiles       int `json:"hit_tiles"`
	Misses         int `json:"misses"`
	ShipsSunk      int `json:"ships_sunk"`
	ShipsRemaining int `json:"ships_remaining"`
}

// ScoreShots recomputes the tally from the fleet and the record.
func ScoreShots(fleet *Fleet, shots Shots) Score {
	score := Score{Shots: len(shots.Hits)}
	for _, c := range shots.Hits {
		id, ok := fleet.Board.At(c).Ship()
		if !ok {
			continue
		}
		if shots.Sunk.Contains(id) {
			score.SunkTiles++
		} else {
			score.HitTiles++
		}
	}
	score.Misses = score.Shots - score.SunkTiles - score.HitTiles
	for _, s := range fleet.Ships {
		if shots.Sunk.Contains(s.ID) {
			score.ShipsSunk++
		}
	}
	score.ShipsRemaining = len(fleet.Ships) - score.ShipsSunk
	return score
}
