package app

const (
	// updateAttempts bounds the reload-and-reapply loop on version conflicts.
	updateAttempts = 3
	// createAttempts bounds game id regeneration on collisions.
	createAttempts = 5
	// gameIDAlphabet matches the ids players already type in chat.
	gameIDAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)
