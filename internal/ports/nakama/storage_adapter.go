package nakama

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"battleship/internal/domain"
	"battleship/internal/ports"

	"github.com/heroiclabs/nakama-common/api"
	"github.com/heroiclabs/nakama-common/runtime"
)

// storageAPI is the slice of runtime.NakamaModule the game store needs.
type storageAPI interface {
	StorageRead(ctx context.Context, reads []*runtime.StorageRead) ([]*api.StorageObject, error)
	MultiUpdate(ctx context.Context, accountUpdates []*runtime.AccountUpdate, storageWrites []*runtime.StorageWrite, storageDeletes []*runtime.StorageDelete, walletUpdates []*runtime.WalletUpdate, updateLedger bool) ([]*api.StorageObjectAck, []*runtime.WalletUpdateResult, error)
}

type channelIndex struct {
	GameID string `json:"game_id"`
}

// NakamaGameStore implements ports.GameStore on Nakama storage. Game
// documents use object versions for optimistic concurrency.
type NakamaGameStore struct {
	nk storageAPI
}

// NewNakamaGameStore creates a new game store adapter.
func NewNakamaGameStore(nk storageAPI) *NakamaGameStore {
	return &NakamaGameStore{nk: nk}
}

// Create writes a new game with version "*" so an existing id is never overwritten.
func (s *NakamaGameStore) Create(ctx context.Context, game *domain.Game) (string, error) {
	version, err := s.write(ctx, game, "*", game.Channels())
	if errors.Is(err, runtime.ErrStorageRejectedVersion) {
		return "", ports.ErrAlreadyExists
	}
	return version, err
}

// Save writes game if the stored version still matches and points the
// channels in bind at it.
func (s *NakamaGameStore) Save(ctx context.Context, game *domain.Game, version string, bind []string) (string, error) {
	if version == "" || version == "*" {
		return "", fmt.Errorf("save of game %s needs a concrete version", game.ID)
	}
	newVersion, err := s.write(ctx, game, version, bind)
	if errors.Is(err, runtime.ErrStorageRejectedVersion) {
		return "", ports.ErrVersionConflict
	}
	return newVersion, err
}

// write stores the game and the index entries for channels in one transaction.
func (s *NakamaGameStore) write(ctx context.Context, game *domain.Game, version string, channels []string) (string, error) {
	if game.ID == "" {
		return "", fmt.Errorf("game id is required")
	}
	value, err := json.Marshal(game)
	if err != nil {
		return "", fmt.Errorf("failed to marshal game %s: %w", game.ID, err)
	}

	writes := []*runtime.StorageWrite{
		{
			Collection:      CollectionGames,
			Key:             game.ID,
			Value:           string(value),
			Version:         version,
			PermissionRead:  runtime.STORAGE_PERMISSION_NO_READ,
			PermissionWrite: runtime.STORAGE_PERMISSION_NO_WRITE,
		},
	}
	for _, channel := range channels {
		if _, ok := game.SideOf(channel); !ok {
			return "", fmt.Errorf("channel %s is not bound to game %s", channel, game.ID)
		}
		idx, err := json.Marshal(channelIndex{GameID: game.ID})
		if err != nil {
			return "", fmt.Errorf("failed to marshal channel index: %w", err)
		}
		writes = append(writes, &runtime.StorageWrite{
			Collection:      CollectionChannels,
			Key:             channel,
			Value:           string(idx),
			PermissionRead:  runtime.STORAGE_PERMISSION_NO_READ,
			PermissionWrite: runtime.STORAGE_PERMISSION_NO_WRITE,
		})
	}

	acks, _, err := s.nk.MultiUpdate(ctx, nil, writes, nil, nil, false)
	if err != nil {
		if errors.Is(err, runtime.ErrStorageRejectedVersion) {
			return "", err
		}
		return "", fmt.Errorf("failed to write game %s: %w", game.ID, err)
	}
	for _, ack := range acks {
		if ack.GetCollection() == CollectionGames && ack.GetKey() == game.ID {
			return ack.GetVersion(), nil
		}
	}
	return "", fmt.Errorf("no storage ack for game %s", game.ID)
}

// Load reads a game and the version it was stored at.
func (s *NakamaGameStore) Load(ctx context.Context, gameID string) (ports.StoredGame, error) {
	objects, err := s.nk.StorageRead(ctx, []*runtime.StorageRead{
		{Collection: CollectionGames, Key: gameID},
	})
	if err != nil {
		return ports.StoredGame{}, fmt.Errorf("failed to read game %s: %w", gameID, err)
	}
	if len(objects) == 0 {
		return ports.StoredGame{}, ports.ErrNotFound
	}

	var game domain.Game
	if err := json.Unmarshal([]byte(objects[0].GetValue()), &game); err != nil {
		return ports.StoredGame{}, fmt.Errorf("failed to unmarshal game %s: %w", gameID, err)
	}
	return ports.StoredGame{Game: &game, Version: objects[0].GetVersion()}, nil
}

// FindByChannel resolves the game id a channel was last bound to.
func (s *NakamaGameStore) FindByChannel(ctx context.Context, channelID string) (string, error) {
	objects, err := s.nk.StorageRead(ctx, []*runtime.StorageRead{
		{Collection: CollectionChannels, Key: channelID},
	})
	if err != nil {
		return "", fmt.Errorf("failed to read channel %s: %w", channelID, err)
	}
	if len(objects) == 0 {
		return "", ports.ErrNotFound
	}
	var idx channelIndex
	if err := json.Unmarshal([]byte(objects[0].GetValue()), &idx); err != nil || idx.GameID == "" {
		return "", fmt.Errorf("corrupt channel index for %s", channelID)
	}
	return idx.GameID, nil
}

// Delete removes the game and the index entries that still point at it.
func (s *NakamaGameStore) Delete(ctx context.Context, game *domain.Game) error {
	reads := []*runtime.StorageRead{{Collection: CollectionGames, Key: game.ID}}
	for _, channel := range game.Channels() {
		reads = append(reads, &runtime.StorageRead{Collection: CollectionChannels, Key: channel})
	}
	objects, err := s.nk.StorageRead(ctx, reads)
	if err != nil {
		return fmt.Errorf("failed to read game %s: %w", game.ID, err)
	}

	var deletes []*runtime.StorageDelete
	found := false
	for _, obj := range objects {
		switch obj.GetCollection() {
		case CollectionGames:
			found = true
			deletes = append(deletes, &runtime.StorageDelete{Collection: CollectionGames, Key: obj.GetKey()})
		case CollectionChannels:
			var idx channelIndex
			// A channel may since have joined another game.
			if json.Unmarshal([]byte(obj.GetValue()), &idx) == nil && idx.GameID == game.ID {
				deletes = append(deletes, &runtime.StorageDelete{Collection: CollectionChannels, Key: obj.GetKey(), Version: obj.GetVersion()})
			}
		}
	}
	if !found {
		return ports.ErrNotFound
	}

	if _, _, err := s.nk.MultiUpdate(ctx, nil, nil, deletes, nil, false); err != nil {
		return fmt.Errorf("failed to delete game %s: %w", game.ID, err)
	}
	return nil
}

var _ ports.GameStore = (*NakamaGameStore)(nil)
