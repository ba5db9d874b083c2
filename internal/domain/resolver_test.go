package domain

import (
	"math/rand"
	"reflect"
	"testing"
)

// fleetWith builds a fleet from explicit ship spans.
func fleetWith(t *testing.T, width, height int, spans ...[]Coord) Fleet {
	t.Helper()
	fleet := Fleet{Board: NewBoard(width, height)}
	for i, coords := range spans {
		id := ShipID(i + 1)
		o := Horizontal
		if len(coords) > 1 {
			for _, cand := range Orientations {
				if reflect.DeepEqual(Span(coords[0], cand, len(coords)), coords) {
					o = cand
				}
			}
		}
		for _, c := range coords {
			fleet.Board.set(c, ShipCell(id))
		}
		fleet.Ships = append(fleet.Ships, Ship{ID: id, Length: len(coords), Orientation: o, Coords: coords})
	}
	if err := fleet.Validate(); err != nil {
		t.Fatalf("test fleet invalid: %v", err)
	}
	return fleet
}

func TestResolveMissOnEmptyBoard(t *testing.T) {
	fleet := fleetWith(t, 5, 5)

	res, shots := Resolve(&fleet, Shots{}, Coord{Row: 0, Col: 0})
	if res.Outcome != OutcomeMiss {
		t.Fatalf("Outcome = %s, want miss", res.Outcome)
	}
	if !reflect.DeepEqual(shots.Hits, HitSet{{Row: 0, Col: 0}}) {
		t.Fatalf("Hits = %v, want [(0,0)]", shots.Hits)
	}
}

func TestResolveHitSunkAlreadyFired(t *testing.T) {
	fleet := fleetWith(t, 5, 5, []Coord{{Row: 0, Col: 0}, {Row: 0, Col: 1}})
	var shots Shots

	steps := []struct {
		at      Coord
		want    Outcome
		allSunk bool
		hits    int
	}{
		{at: Coord{Row: 0, Col: 0}, want: OutcomeHit, hits: 1},
		{at: Coord{Row: 0, Col: 1}, want: OutcomeSunk, allSunk: true, hits: 2},
		{at: Coord{Row: 0, Col: 0}, want: OutcomeAlreadyFired, allSunk: true, hits: 2},
	}
	for i, step := range steps {
		var res ShotResult
		res, shots = Resolve(&fleet, shots, step.at)
		if res.Outcome != step.want {
			t.Fatalf("step %d: Outcome = %s, want %s", i, res.Outcome, step.want)
		}
		if res.AllSunk != step.allSunk {
			t.Fatalf("step %d: AllSunk = %t, want %t", i, res.AllSunk, step.allSunk)
		}
		if len(shots.Hits) != step.hits {
			t.Fatalf("step %d: %d hits, want %d", i, len(shots.Hits), step.hits)
		}
	}
	if !reflect.DeepEqual(shots.Sunk, SunkSet{1}) {
		t.Fatalf("Sunk = %v, want [1]", shots.Sunk)
	}
}

func TestResolveOutOfBoundsLeavesStateAlone(t *testing.T) {
	fleet := fleetWith(t, 10, 10, []Coord{{Row: 2, Col: 2}, {Row: 2, Col: 3}})
	before := Shots{Hits: HitSet{{Row: 1, Col: 1}}}

	for _, c := range []Coord{{Row: 99, Col: 0}, {Row: 0, Col: 10}, {Row: -1, Col: 0}} {
		res, after := Resolve(&fleet, before, c)
		if res.Outcome != OutcomeOutOfBounds {
			t.Fatalf("%v: Outcome = %s, want out_of_bounds", c, res.Outcome)
		}
		if !reflect.DeepEqual(after, before) {
			t.Fatalf("%v: shots changed to %+v", c, after)
		}
	}
}

func TestResolveDoesNotMutateInput(t *testing.T) {
	fleet := fleetWith(t, 5, 5, []Coord{{Row: 1, Col: 1}})
	in := Shots{Hits: make(HitSet, 0, 8)}

	_, out := Resolve(&fleet, in, Coord{Row: 1, Col: 1})
	if len(in.Hits) != 0 || len(in.Sunk) != 0 {
		t.Fatalf("input mutated: %+v", in)
	}
	if len(out.Hits) != 1 || len(out.Sunk) != 1 {
		t.Fatalf("output = %+v, want one hit and one sunk", out)
	}
}

func TestResolveSunkExactlyOnce(t *testing.T) {
	fleet := fleetWith(t, 6, 6,
		[]Coord{{Row: 0, Col: 0}, {Row: 1, Col: 1}, {Row: 2, Col: 2}},
		[]Coord{{Row: 5, Col: 0}, {Row: 4, Col: 1}},
	)

	var shots Shots
	sunkReports := make(map[ShipID]int)
	var lastAllSunk bool
	for r := 0; r < 6; r++ {
		for c := 0; c < 6; c++ {
			var res ShotResult
			prev := len(shots.Hits)
			res, shots = Resolve(&fleet, shots, Coord{Row: r, Col: c})
			if len(shots.Hits) < prev {
				t.Fatalf("hit set shrank from %d to %d", prev, len(shots.Hits))
			}
			if res.Outcome == OutcomeSunk {
				sunkReports[res.Ship]++
			}
			if res.AllSunk && !lastAllSunk {
				union := true
				for _, s := range fleet.Ships {
					union = union && s.Covered(shots.Hits)
				}
				if !union {
					t.Fatalf("AllSunk reported before every tile was hit")
				}
			}
			lastAllSunk = res.AllSunk
		}
	}
	if sunkReports[1] != 1 || sunkReports[2] != 1 {
		t.Fatalf("sunk reports = %v, want one per ship", sunkReports)
	}
	if !lastAllSunk {
		t.Fatalf("expected AllSunk after sweeping the board")
	}
}

func TestResolveRepeatedFireIsIdempotent(t *testing.T) {
	rng := rand.New(rand.NewSource(9))
	fleet, err := NewGenerator(rng, DefaultPlacementRules()).Generate(10, 10, CanonicalLengths)
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}

	var shots Shots
	for i := 0; i < 200; i++ {
		c := Coord{Row: rng.Intn(10), Col: rng.Intn(10)}
		seen := shots.Hits.Contains(c)
		before := shots
		var res ShotResult
		res, shots = Resolve(&fleet, shots, c)
		if seen {
			if res.Outcome != OutcomeAlreadyFired {
				t.Fatalf("repeat shot at %v = %s", c, res.Outcome)
			}
			if !reflect.DeepEqual(before, shots) {
				t.Fatalf("repeat shot at %v changed the record", c)
			}
		} else if !res.Outcome.Mutates() {
			t.Fatalf("first shot at %v = %s", c, res.Outcome)
		}
	}
}

func TestScoreShots(t *testing.T) {
	fleet := fleetWith(t, 5, 5,
		[]Coord{{Row: 0, Col: 0}, {Row: 0, Col: 1}},
		[]Coord{{Row: 2, Col: 0}, {Row: 3, Col: 0}, {Row: 4, Col: 0}},
	)
	var shots Shots
	for _, c := range []Coord{{Row: 0, Col: 0}, {Row: 0, Col: 1}, {Row: 2, Col: 0}, {Row: 4, Col: 4}, {Row: 1, Col: 3}} {
		_, shots = Resolve(&fleet, shots, c)
	}

	got := ScoreShots(&fleet, shots)
	want := Score{Shots: 5, SunkTiles: 2, HitTiles: 1, Misses: 2, ShipsSunk: 1, ShipsRemaining: 1}
	if got != want {
		t.Fatalf("ScoreShots() = %+v, want %+v", got, want)
	}
}
