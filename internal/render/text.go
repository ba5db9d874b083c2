package render

import (
	"fmt"

	"battleship/internal/domain"
)

const allSunkNotice = "🎉 **You have sunk all your opponent's battleships, but you may continue to shoot tiles.**"

// OutcomeText is the chat line announcing a shot result.
func OutcomeText(res domain.ShotResult) string {
	var line string
	switch res.Outcome {
	case domain.OutcomeMiss:
		line = "💦 Miss!"
	case domain.OutcomeHit:
		line = "🔥 Hit!"
	case domain.OutcomeSunk:
		line = "💣 Ship Sunk!"
	case domain.OutcomeAlreadyFired:
		line = "You already shot there."
	case domain.OutcomeOutOfBounds:
		line = "Invalid coordinates."
	default:
		line = string(res.Outcome)
	}
	if res.AllSunk && res.Outcome.Mutates() {
		line += "\n" + allSunkNotice
	}
	return line
}

// IncomingText tells the defending side where the opponent fired.
func IncomingText(attacker string, res domain.ShotResult) string {
	switch res.Outcome {
	case domain.OutcomeMiss:
		return fmt.Sprintf("%s fired at %s and missed.", attacker, res.Coord)
	case domain.OutcomeHit:
		return fmt.Sprintf("%s hit one of your ships at %s!", attacker, res.Coord)
	case domain.OutcomeSunk:
		if res.AllSunk {
			return fmt.Sprintf("%s sank your last ship at %s. Your fleet is gone.", attacker, res.Coord)
		}
		return fmt.Sprintf("%s sank one of your ships at %s!", attacker, res.Coord)
	default:
		return ""
	}
}

// ScoreText summarises a score for a status reply.
func ScoreText(s domain.Score) string {
	return fmt.Sprintf("Shots: %d | Hits: %d | Sunk tiles: %d | Misses: %d | Ships sunk: %d | Ships remaining: %d",
		s.Shots, s.HitTiles, s.SunkTiles, s.Misses, s.ShipsSunk, s.ShipsRemaining)
}
