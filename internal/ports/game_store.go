package ports

import (
	"context"
	"errors"

	"battleship/internal/domain"
)

var (
	ErrNotFound        = errors.New("record not found")
	ErrVersionConflict = errors.New("record version conflict")
	ErrAlreadyExists   = errors.New("record already exists")
)

// StoredGame is a game together with the storage version it was read at.
type StoredGame struct {
	Game    *domain.Game
	Version string
}

// GameStore persists game records and the channel → game index.
type GameStore interface {
	// Create writes a new game and indexes its bound channels. Returns
	// ErrAlreadyExists when the id is taken.
	Create(ctx context.Context, game *domain.Game) (string, error)

	// Load reads a game by id. Returns ErrNotFound when absent.
	Load(ctx context.Context, gameID string) (StoredGame, error)

	// Save writes game only if the stored version still equals version,
	// returning ErrVersionConflict otherwise. Channels in bind are indexed to
	// the game in the same write; other index entries are left alone since a
	// channel may have moved on to a newer game.
	Save(ctx context.Context, game *domain.Game, version string, bind []string) (string, error)

	// FindByChannel resolves the game a channel is bound to.
	FindByChannel(ctx context.Context, channelID string) (string, error)

	// Delete removes the game and its channel index entries.
	Delete(ctx context.Context, game *domain.Game) error
}
