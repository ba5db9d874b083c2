// Package render turns boards and shot records into chat text.
package render

import (
	"fmt"
	"strings"

	"battleship/internal/domain"
)

// Tile glyphs.
const (
	TileWater = "🟦"
	TileMiss  = "⬜"
	TileHit   = "🟥"
	TileSunk  = "⬛"
	TileShip  = "🚢"
	corner    = "⬛"
)

// TargetGrid draws the opponent board as seen by the firing side: only
// tiles already fired at are disclosed.
func TargetGrid(fleet *domain.Fleet, shots domain.Shots) string {
	return draw(&fleet.Board, func(c domain.Coord) string {
		if !shots.Hits.Contains(c) {
			return TileWater
		}
		id, ok := fleet.Board.At(c).Ship()
		switch {
		case !ok:
			return TileMiss
		case shots.Sunk.Contains(id):
			return TileSunk
		default:
			return TileHit
		}
	})
}

// OwnGrid draws a side's own board with every ship visible and the
// opponent's incoming fire marked on top.
func OwnGrid(fleet *domain.Fleet, incoming domain.Shots) string {
	return draw(&fleet.Board, func(c domain.Coord) string {
		_, ship := fleet.Board.At(c).Ship()
		fired := incoming.Hits.Contains(c)
		switch {
		case ship && fired:
			return TileHit
		case ship:
			return TileShip
		case fired:
			return TileMiss
		default:
			return TileWater
		}
	})
}

func draw(b *domain.Board, tile func(domain.Coord) string) string {
	var sb strings.Builder
	sb.WriteString(corner)
	for col := 1; col <= b.Width; col++ {
		fmt.Fprintf(&sb, "%02d", col)
	}
	for row := 0; row < b.Height; row++ {
		sb.WriteByte('\n')
		sb.WriteByte(byte('A' + row))
		for col := 0; col < b.Width; col++ {
			sb.WriteString(tile(domain.Coord{Row: row, Col: col}))
		}
	}
	return sb.String()
}

// GridTitle is the embed title for a team's view of the enemy.
func GridTitle(team string) string {
	return team + " Target Grid"
}
