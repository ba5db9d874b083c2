package config

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"battleship/internal/domain"
)

// DefaultPath is where the plugin looks for its config relative to the Nakama data dir.
const DefaultPath = "data/battleship_config.json"

type GameConfig struct {
	MinWidth  int `json:"min_width"`
	MaxWidth  int `json:"max_width"`
	MinHeight int `json:"min_height"`
	MaxHeight int `json:"max_height"`
	// MinShipTiles is the smallest accepted target; anything lower yields an empty pool.
	MinShipTiles int `json:"min_ship_tiles"`
	// MaxFillPercent caps the target at this share of the board area.
	MaxFillPercent int `json:"max_fill_percent"`

	RetryBudget        int                        `json:"retry_budget"`
	ClusterPolicy      string                     `json:"cluster_policy"`
	ClusterTable       *domain.ClusterPolicy      `json:"cluster_table,omitempty"`
	OrientationWeights *domain.OrientationWeights `json:"orientation_weights,omitempty"`

	GameIDLength int `json:"game_id_length"`
}

// DefaultGameConfig mirrors the classic bot limits.
func DefaultGameConfig() GameConfig {
	return GameConfig{
		MinWidth:       2,
		MaxWidth:       domain.MaxRows,
		MinHeight:      5,
		MaxHeight:      domain.MaxRows,
		MinShipTiles:   2,
		MaxFillPercent: 50,
		RetryBudget:    domain.DefaultRetryBudget,
		ClusterPolicy:  "strict",
		GameIDLength:   6,
	}
}

var (
	cfg      *GameConfig
	loadOnce sync.Once
	loadErr  error
)

// LoadGameConfig loads the game configuration from the given path.
// Only the first call reads the file; later calls return the first result.
func LoadGameConfig(path string) error {
	loadOnce.Do(func() {
		data, err := os.ReadFile(path)
		if err != nil {
			loadErr = fmt.Errorf("failed to read game config: %w", err)
			return
		}

		c, err := ParseGameConfig(data)
		if err != nil {
			loadErr = err
			return
		}
		cfg = &c
	})
	return loadErr
}

// GetGameConfig returns the loaded configuration, or the defaults when
// nothing was loaded.
func GetGameConfig() GameConfig {
	if cfg == nil {
		return DefaultGameConfig()
	}
	return *cfg
}

// ParseGameConfig decodes data over the defaults and validates the result.
func ParseGameConfig(data []byte) (GameConfig, error) {
	c := DefaultGameConfig()
	if err := json.Unmarshal(data, &c); err != nil {
		return GameConfig{}, fmt.Errorf("failed to unmarshal game config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return GameConfig{}, err
	}
	return c, nil
}

// Validate checks limits are consistent and placement rules resolve.
func (c GameConfig) Validate() error {
	if c.MinWidth < 1 || c.MinWidth > c.MaxWidth || c.MaxWidth > domain.MaxRows {
		return fmt.Errorf("invalid width limits %d..%d", c.MinWidth, c.MaxWidth)
	}
	// Rows are labelled with single letters.
	if c.MinHeight < 1 || c.MinHeight > c.MaxHeight || c.MaxHeight > domain.MaxRows {
		return fmt.Errorf("invalid height limits %d..%d", c.MinHeight, c.MaxHeight)
	}
	if c.MinShipTiles < 1 {
		return fmt.Errorf("min_ship_tiles must be positive, got %d", c.MinShipTiles)
	}
	if c.MaxFillPercent < 1 || c.MaxFillPercent > 100 {
		return fmt.Errorf("max_fill_percent must be within 1..100, got %d", c.MaxFillPercent)
	}
	if c.GameIDLength < 4 {
		return fmt.Errorf("game_id_length must be at least 4, got %d", c.GameIDLength)
	}
	if _, err := c.PlacementRules(); err != nil {
		return err
	}
	return nil
}

// PlacementRules builds generator rules from the config. An explicit
// cluster table wins over the named preset.
func (c GameConfig) PlacementRules() (domain.PlacementRules, error) {
	rules := domain.DefaultPlacementRules()
	rules.RetryBudget = c.RetryBudget

	if c.ClusterTable != nil {
		rules.Policy = *c.ClusterTable
	} else {
		policy, ok := domain.ClusterPolicyByName(c.ClusterPolicy)
		if !ok {
			return domain.PlacementRules{}, fmt.Errorf("unknown cluster policy %q", c.ClusterPolicy)
		}
		rules.Policy = policy
	}
	if c.OrientationWeights != nil {
		rules.Weights = *c.OrientationWeights
	}

	if err := rules.Validate(); err != nil {
		return domain.PlacementRules{}, err
	}
	return rules, nil
}

// MaxShipTiles returns the largest accepted target for a board.
func (c GameConfig) MaxShipTiles(width, height int) int {
	return width * height * c.MaxFillPercent / 100
}
