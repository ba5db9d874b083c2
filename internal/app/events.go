package app

import "battleship/internal/domain"

// EventKind identifies emitted domain events for channel dispatch.
type EventKind string

const (
	EventGameCreated EventKind = "game_created"
	EventSideJoined  EventKind = "side_joined"
	EventShotFired   EventKind = "shot_fired"
	EventFleetSunk   EventKind = "fleet_sunk"
	EventGameDeleted EventKind = "game_deleted"
)

// Event is an app event with optional targeted recipients.
type Event struct {
	Kind       EventKind
	Payload    any
	Recipients []string // channel IDs; empty means nobody to notify
}

type GameCreatedPayload struct {
	GameID string
	Pool   []int
}

type SideJoinedPayload struct {
	GameID string
	Side   int
	Team   string
}

// ShotFiredPayload is delivered to the defending side.
type ShotFiredPayload struct {
	GameID   string
	Attacker string
	Result   domain.ShotResult
	// Defender's board with all incoming fire, for the embed.
	Defender domain.Fleet
	Incoming domain.Shots
}

type FleetSunkPayload struct {
	GameID string
	Winner string
	Loser  string
}

type GameDeletedPayload struct {
	GameID string
}
