package app

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"battleship/internal/commit"
	"battleship/internal/config"
	"battleship/internal/domain"
	"battleship/internal/ports"
)

var (
	ErrInvalidDimensions = errors.New("invalid game dimensions")
	ErrInvalidRequest    = errors.New("invalid request")
	ErrGameNotFound      = errors.New("game not found")
	ErrBothSidesTaken    = errors.New("both teams have already joined")
	ErrSideUnresolvable  = errors.New("this channel is not part of the game")
	ErrOutOfBounds       = errors.New("coordinate is off the board")
	ErrUnauthorized      = errors.New("not authorized")
	ErrConcurrentUpdate  = errors.New("game changed concurrently, try again")
	ErrRevealLocked      = errors.New("opponent fleet is still afloat")
)

// Service contains Battleship use-cases operating on stored games.
type Service struct {
	store ports.GameStore
	cfg   config.GameConfig
	rules domain.PlacementRules
	now   func() time.Time

	// mu guards rng; RPCs run concurrently.
	mu  sync.Mutex
	rng *rand.Rand
}

// NewService constructs a Service with provided rng or a time-seeded default.
func NewService(store ports.GameStore, cfg config.GameConfig, rng *rand.Rand) (*Service, error) {
	if store == nil {
		return nil, errors.New("game store is required")
	}
	rules, err := cfg.PlacementRules()
	if err != nil {
		return nil, fmt.Errorf("invalid placement config: %w", err)
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Service{store: store, cfg: cfg, rules: rules, now: time.Now, rng: rng}, nil
}

// CreateGame generates two independent fleets from one ship pool and
// stores the new game under a fresh id.
func (s *Service) CreateGame(ctx context.Context, width, height, shipTiles int) (*domain.Game, []Event, error) {
	if err := s.checkDimensions(width, height, shipTiles); err != nil {
		return nil, nil, err
	}

	s.mu.Lock()
	pool := domain.ShipPool(s.rng, shipTiles)
	var fleets [2]domain.Fleet
	var genErr error
	if len(pool) == 0 {
		genErr = fmt.Errorf("%w: %d ship tiles is too few for any ship", ErrInvalidDimensions, shipTiles)
	}
	gen := domain.NewGenerator(s.rng, s.rules)
	for i := range fleets {
		if genErr != nil {
			break
		}
		fleets[i], genErr = gen.Generate(width, height, pool)
	}
	s.mu.Unlock()
	if genErr != nil {
		return nil, nil, genErr
	}

	game := &domain.Game{
		Width:     width,
		Height:    height,
		ShipTiles: shipTiles,
		Pool:      pool,
		CreatedAt: s.now().UTC(),
	}
	for i := range fleets {
		seal, err := commit.Commit(fleets[i].Board.Bits())
		if err != nil {
			return nil, nil, fmt.Errorf("failed to commit fleet %d: %w", i+1, err)
		}
		game.Sides[i] = domain.Side{
			Fleet:      fleets[i],
			Commitment: domain.Commitment{Root: seal.Root, Salt: seal.Salt},
		}
	}

	for attempt := 0; attempt < createAttempts; attempt++ {
		game.ID = s.newGameID()
		_, err := s.store.Create(ctx, game)
		if err == nil {
			return game, []Event{{
				Kind:    EventGameCreated,
				Payload: GameCreatedPayload{GameID: game.ID, Pool: pool},
			}}, nil
		}
		if !errors.Is(err, ports.ErrAlreadyExists) {
			return nil, nil, fmt.Errorf("failed to create game: %w", err)
		}
	}
	return nil, nil, fmt.Errorf("no free game id after %d attempts: %w", createAttempts, ports.ErrAlreadyExists)
}

func (s *Service) checkDimensions(width, height, shipTiles int) error {
	c := s.cfg
	if width < c.MinWidth || width > c.MaxWidth {
		return fmt.Errorf("%w: width must be between %d and %d", ErrInvalidDimensions, c.MinWidth, c.MaxWidth)
	}
	if height < c.MinHeight || height > c.MaxHeight {
		return fmt.Errorf("%w: height must be between %d and %d", ErrInvalidDimensions, c.MinHeight, c.MaxHeight)
	}
	if limit := c.MaxShipTiles(width, height); shipTiles < c.MinShipTiles || shipTiles > limit {
		return fmt.Errorf("%w: ship tiles must be between %d and %d for a %dx%d board", ErrInvalidDimensions, c.MinShipTiles, limit, width, height)
	}
	return nil
}

func (s *Service) newGameID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var sb strings.Builder
	for i := 0; i < s.cfg.GameIDLength; i++ {
		sb.WriteByte(gameIDAlphabet[s.rng.Intn(len(gameIDAlphabet))])
	}
	return sb.String()
}

// JoinResult reports the side a channel was bound to.
type JoinResult struct {
	Game *domain.Game
	Side int
	// Rejoined is true when the channel already held this side.
	Rejoined bool
}

// JoinSide binds channelID to the first open side of a game.
func (s *Service) JoinSide(ctx context.Context, gameID, channelID, team string) (JoinResult, []Event, error) {
	if channelID == "" {
		return JoinResult{}, nil, fmt.Errorf("%w: channel is required", ErrInvalidRequest)
	}
	team = strings.TrimSpace(team)

	var res JoinResult
	game, err := s.update(ctx, gameID, []string{channelID}, func(g *domain.Game) (bool, error) {
		if n, ok := g.SideOf(channelID); ok {
			res = JoinResult{Side: n, Rejoined: true}
			return false, nil
		}
		n, ok := g.FirstOpenSide()
		if !ok {
			return false, ErrBothSidesTaken
		}
		side := g.Side(n)
		side.Channel = channelID
		side.Team = team
		res = JoinResult{Side: n}
		return true, nil
	})
	if err != nil {
		return JoinResult{}, nil, err
	}
	res.Game = game
	if res.Rejoined {
		return res, nil, nil
	}

	var events []Event
	if opp := game.Opponent(res.Side); opp.Bound() {
		events = append(events, Event{
			Kind:       EventSideJoined,
			Payload:    SideJoinedPayload{GameID: game.ID, Side: res.Side, Team: game.TeamName(res.Side)},
			Recipients: []string{opp.Channel},
		})
	}
	return res, events, nil
}

// ShotReport is the firing side's view of a resolved shot.
type ShotReport struct {
	Game   *domain.Game
	Side   int
	Result domain.ShotResult
	// Receipt authenticates the struck cell against the opponent's
	// commitment once its salt is revealed. Empty for repeat shots.
	Receipt *commit.Receipt
}

// FireShot resolves a shot from channelID's side at the opponent fleet.
// An empty gameID is resolved through the channel index.
func (s *Service) FireShot(ctx context.Context, gameID, channelID string, at domain.Coord) (ShotReport, []Event, error) {
	gameID, err := s.resolveGameID(ctx, gameID, channelID)
	if err != nil {
		return ShotReport{}, nil, err
	}

	var report ShotReport
	game, err := s.update(ctx, gameID, nil, func(g *domain.Game) (bool, error) {
		n, ok := g.SideOf(channelID)
		if !ok {
			return false, ErrSideUnresolvable
		}
		me, opp := g.Side(n), g.Opponent(n)
		result, next := domain.Resolve(&opp.Fleet, me.Shots, at)
		report = ShotReport{Side: n, Result: result}
		if result.Outcome == domain.OutcomeOutOfBounds {
			return false, fmt.Errorf("%w: %s on a %dx%d board", ErrOutOfBounds, at, g.Width, g.Height)
		}
		if !result.Outcome.Mutates() {
			return false, nil
		}
		me.Shots = next
		return true, nil
	})
	if err != nil {
		return ShotReport{}, nil, err
	}
	report.Game = game

	// The shot is already stored; a game without a usable salt simply gets no receipt.
	opp := game.Opponent(report.Side)
	if report.Result.Outcome.Mutates() {
		if receipt, err := commit.Prove(opp.Fleet.Board.Bits(), opp.Commitment.Salt, opp.Fleet.Board.Index(at)); err == nil {
			report.Receipt = &receipt
		}
	}
	return report, s.shotEvents(game, report), nil
}

func (s *Service) shotEvents(game *domain.Game, report ShotReport) []Event {
	if !report.Result.Outcome.Mutates() {
		return nil
	}
	me, opp := game.Side(report.Side), game.Opponent(report.Side)
	attacker := game.TeamName(report.Side)

	var events []Event
	if opp.Bound() {
		events = append(events, Event{
			Kind: EventShotFired,
			Payload: ShotFiredPayload{
				GameID:   game.ID,
				Attacker: attacker,
				Result:   report.Result,
				Defender: opp.Fleet,
				Incoming: me.Shots,
			},
			Recipients: []string{opp.Channel},
		})
	}
	if report.Result.Outcome == domain.OutcomeSunk && report.Result.AllSunk {
		events = append(events, Event{
			Kind: EventFleetSunk,
			Payload: FleetSunkPayload{
				GameID: game.ID,
				Winner: attacker,
				Loser:  game.TeamName(domain.OpponentOf(report.Side)),
			},
			Recipients: game.Channels(),
		})
	}
	return events
}

// StatusReport summarises one side's progress.
type StatusReport struct {
	Game  *domain.Game
	Side  int
	Phase domain.Phase
	// Score is this side's fire against the opponent.
	Score domain.Score
	// Incoming is the opponent's fire against this side.
	Incoming domain.Score
}

// Status reports the target grid state and scores for channelID's side.
func (s *Service) Status(ctx context.Context, gameID, channelID string) (StatusReport, error) {
	game, n, err := s.loadSide(ctx, gameID, channelID)
	if err != nil {
		return StatusReport{}, err
	}
	me, opp := game.Side(n), game.Opponent(n)
	return StatusReport{
		Game:     game,
		Side:     n,
		Phase:    game.Phase(),
		Score:    domain.ScoreShots(&opp.Fleet, me.Shots),
		Incoming: domain.ScoreShots(&me.Fleet, opp.Shots),
	}, nil
}

// RevealReport discloses an opponent layout together with its commitment.
type RevealReport struct {
	Game       *domain.Game
	Side       int
	Fleet      domain.Fleet
	Commitment domain.Commitment
}

// Reveal returns the opponent's fleet and salt once channelID's side has
// sunk all of it, after checking the layout against the published root.
func (s *Service) Reveal(ctx context.Context, gameID, channelID string) (RevealReport, error) {
	game, n, err := s.loadSide(ctx, gameID, channelID)
	if err != nil {
		return RevealReport{}, err
	}
	me, opp := game.Side(n), game.Opponent(n)
	if !opp.Fleet.AllSunk(me.Shots.Hits) {
		return RevealReport{}, ErrRevealLocked
	}
	if err := commit.Verify(opp.Fleet.Board.Bits(), opp.Commitment.Root, opp.Commitment.Salt); err != nil {
		return RevealReport{}, fmt.Errorf("stored fleet does not match its commitment: %w", err)
	}
	return RevealReport{Game: game, Side: n, Fleet: opp.Fleet, Commitment: opp.Commitment}, nil
}

// DeleteGame removes a game and its channel bindings.
func (s *Service) DeleteGame(ctx context.Context, gameID string, authorized bool) ([]Event, error) {
	if !authorized {
		return nil, ErrUnauthorized
	}
	stored, err := s.load(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if err := s.store.Delete(ctx, stored.Game); err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return nil, ErrGameNotFound
		}
		return nil, fmt.Errorf("failed to delete game %s: %w", gameID, err)
	}
	return []Event{{
		Kind:       EventGameDeleted,
		Payload:    GameDeletedPayload{GameID: gameID},
		Recipients: stored.Game.Channels(),
	}}, nil
}

func (s *Service) loadSide(ctx context.Context, gameID, channelID string) (*domain.Game, int, error) {
	gameID, err := s.resolveGameID(ctx, gameID, channelID)
	if err != nil {
		return nil, 0, err
	}
	stored, err := s.load(ctx, gameID)
	if err != nil {
		return nil, 0, err
	}
	n, ok := stored.Game.SideOf(channelID)
	if !ok {
		return nil, 0, ErrSideUnresolvable
	}
	return stored.Game, n, nil
}

func (s *Service) resolveGameID(ctx context.Context, gameID, channelID string) (string, error) {
	if channelID == "" {
		return "", fmt.Errorf("%w: channel is required", ErrInvalidRequest)
	}
	if gameID != "" {
		return gameID, nil
	}
	id, err := s.store.FindByChannel(ctx, channelID)
	if errors.Is(err, ports.ErrNotFound) {
		return "", ErrSideUnresolvable
	}
	if err != nil {
		return "", fmt.Errorf("failed to resolve channel %s: %w", channelID, err)
	}
	return id, nil
}

func (s *Service) load(ctx context.Context, gameID string) (ports.StoredGame, error) {
	if gameID == "" {
		return ports.StoredGame{}, ErrGameNotFound
	}
	stored, err := s.store.Load(ctx, gameID)
	if errors.Is(err, ports.ErrNotFound) {
		return ports.StoredGame{}, ErrGameNotFound
	}
	if err != nil {
		return ports.StoredGame{}, fmt.Errorf("failed to load game %s: %w", gameID, err)
	}
	return stored, nil
}

// update runs mutate against a freshly loaded game and saves it with the
// loaded version, reloading and reapplying on version conflicts. mutate
// returns false when there is nothing to write. Channels in bind are indexed
// to the game by the save.
func (s *Service) update(ctx context.Context, gameID string, bind []string, mutate func(*domain.Game) (bool, error)) (*domain.Game, error) {
	for attempt := 0; attempt < updateAttempts; attempt++ {
		stored, err := s.load(ctx, gameID)
		if err != nil {
			return nil, err
		}
		changed, err := mutate(stored.Game)
		if err != nil {
			return nil, err
		}
		if !changed {
			return stored.Game, nil
		}
		if _, err := s.store.Save(ctx, stored.Game, stored.Version, bind); err != nil {
			if errors.Is(err, ports.ErrVersionConflict) {
				continue
			}
			if errors.Is(err, ports.ErrNotFound) {
				return nil, ErrGameNotFound
			}
			return nil, fmt.Errorf("failed to save game %s: %w", gameID, err)
		}
		return stored.Game, nil
	}
	return nil, ErrConcurrentUpdate
}
