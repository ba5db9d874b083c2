package domain

import "time"

// Phase represents the lifecycle stage of a game.
type Phase string

const (
	// PhaseLobby indicates at least one side has no channel bound yet.
	PhaseLobby Phase = "lobby"
	// PhasePlaying indicates both sides are bound and fleets remain afloat.
	PhasePlaying Phase = "playing"
	// PhaseEnded indicates one side has sunk the whole opposing fleet.
	// Firing is still allowed after this point.
	PhaseEnded Phase = "ended"
)

// Commitment binds a side's board to a published root before play starts.
// Salt stays private until the board is revealed.
type Commitment struct {
	Root string `json:"root"`
	Salt string `json:"salt"`
}

// Side holds everything one team owns in a game.
type Side struct {
	Channel    string     `json:"channel,omitempty"`
	Team       string     `json:"team,omitempty"`
	Fleet      Fleet      `json:"fleet"`
	Shots      Shots      `json:"shots"` // fired by this side at the opponent
	Commitment Commitment `json:"commitment"`
}

// Bound reports whether a channel has joined this side.
func (s *Side) Bound() bool { return s.Channel != "" }

// Game is the persisted record of one match.
type Game struct {
	ID        string    `json:"id"`
	Width     int       `json:"width"`
	Height    int       `json:"height"`
	ShipTiles int       `json:"ship_tiles"`
	Pool      []int     `json:"pool"`
	Sides     [2]Side   `json:"sides"`
	CreatedAt time.Time `json:"created_at"`
}

// Side returns side n (1 or 2), or nil for any other n.
func (g *Game) Side(n int) *Side {
	if n < 1 || n > len(g.Sides) {
		return nil
	}
	return &g.Sides[n-1]
}

// Opponent returns the side facing side n.
func (g *Game) Opponent(n int) *Side {
	return g.Side(OpponentOf(n))
}

// OpponentOf maps side 1 to 2 and 2 to 1.
func OpponentOf(n int) int { return 3 - n }

// SideOf returns the side number bound to channel.
func (g *Game) SideOf(channel string) (int, bool) {
	if channel == "" {
		return 0, false
	}
	for i := range g.Sides {
		if g.Sides[i].Channel == channel {
			return i + 1, true
		}
	}
	return 0, false
}

// FirstOpenSide returns the lowest side number without a channel.
func (g *Game) FirstOpenSide() (int, bool) {
	for i := range g.Sides {
		if !g.Sides[i].Bound() {
			return i + 1, true
		}
	}
	return 0, false
}

// Channels lists the bound channels in side order.
func (g *Game) Channels() []string {
	var out []string
	for i := range g.Sides {
		if g.Sides[i].Bound() {
			out = append(out, g.Sides[i].Channel)
		}
	}
	return out
}

// Phase derives the lifecycle stage from the record.
func (g *Game) Phase() Phase {
	for n := 1; n <= len(g.Sides); n++ {
		if g.Opponent(n).Fleet.AllSunk(g.Side(n).Shots.Hits) {
			return PhaseEnded
		}
	}
	if _, open := g.FirstOpenSide(); open {
		return PhaseLobby
	}
	return PhasePlaying
}

// TeamName returns the display name of side n.
func (g *Game) TeamName(n int) string {
	if s := g.Side(n); s != nil && s.Team != "" {
		return s.Team
	}
	return "Team " + string(rune('0'+n))
}
