package nakama

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"battleship/internal/app"
	"battleship/internal/domain"
	"battleship/internal/ports"
	"battleship/internal/render"

	"github.com/heroiclabs/nakama-common/runtime"
)

type rpcFunc func(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error)

// rpcHandlers serves the chat commands. Each RPC is one stateless request.
type rpcHandlers struct {
	svc      *app.Service
	auth     *app.Authorizer
	tokens   *app.AdminTokens
	notifier ports.ChannelNotifier
}

func newRPCHandlers(svc *app.Service, auth *app.Authorizer, tokens *app.AdminTokens, notifier ports.ChannelNotifier) *rpcHandlers {
	return &rpcHandlers{svc: svc, auth: auth, tokens: tokens, notifier: notifier}
}

// RegisterRPCs registers Nakama RPC endpoints.
func RegisterRPCs(initializer runtime.Initializer, h *rpcHandlers) error {
	for _, rpc := range []struct {
		id string
		fn rpcFunc
	}{
		{RpcStart, h.rpcStart},
		{RpcJoin, h.rpcJoin},
		{RpcShoot, h.rpcShoot},
		{RpcStatus, h.rpcStatus},
		{RpcReveal, h.rpcReveal},
		{RpcDelete, h.rpcDelete},
		{RpcAdminToken, h.rpcAdminToken},
	} {
		if err := initializer.RegisterRpc(rpc.id, rpc.fn); err != nil {
			return fmt.Errorf("failed to register rpc %s: %w", rpc.id, err)
		}
	}
	return nil
}

func decodePayload(payload string, into interface{}) error {
	if payload == "" {
		payload = "{}"
	}
	if err := json.Unmarshal([]byte(payload), into); err != nil {
		return runtime.NewError("Invalid payload", codeInvalidArgument)
	}
	return nil
}

type startRequest struct {
	Width  int `json:"width"`
	Height int `json:"height"`
	Ships  int `json:"ships"`
}

func (h *rpcHandlers) rpcStart(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	var req startRequest
	if err := decodePayload(payload, &req); err != nil {
		return "", err
	}

	game, events, err := h.svc.CreateGame(ctx, req.Width, req.Height, req.Ships)
	if err != nil {
		return "", toRuntimeError(logger, err)
	}
	logger.WithFields(map[string]interface{}{"game_id": game.ID, "pool": game.Pool}).Info("Game created %dx%d with %d ship tiles", game.Width, game.Height, game.ShipTiles)
	h.dispatch(ctx, logger, events)

	return encodeResponse(logger, map[string]interface{}{
		"game_id": game.ID,
		"width":   game.Width,
		"height":  game.Height,
		"pool":    intsToList(game.Pool),
		"commitments": []interface{}{
			game.Side(1).Commitment.Root,
			game.Side(2).Commitment.Root,
		},
		"content": fmt.Sprintf("Game created with ID: **%s**", game.ID),
	})
}

type joinRequest struct {
	GameID    string `json:"game_id"`
	ChannelID string `json:"channel_id"`
	Team      string `json:"team"`
}

func (h *rpcHandlers) rpcJoin(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	var req joinRequest
	if err := decodePayload(payload, &req); err != nil {
		return "", err
	}

	res, events, err := h.svc.JoinSide(ctx, req.GameID, req.ChannelID, req.Team)
	if err != nil {
		return "", toRuntimeError(logger, err)
	}
	game := res.Game
	team := game.TeamName(res.Side)
	if !res.Rejoined {
		logger.WithField("game_id", game.ID).Info("Channel %s joined as side %d", req.ChannelID, res.Side)
	}
	h.dispatch(ctx, logger, events)

	opp := game.Opponent(res.Side)
	return encodeResponse(logger, map[string]interface{}{
		"game_id":    game.ID,
		"side":       res.Side,
		"team":       team,
		"rejoined":   res.Rejoined,
		"commitment": opp.Commitment.Root,
		"content":    fmt.Sprintf("Joined game %s as %s!\nHere is the opponent board:", game.ID, team),
		"embed":      embed(render.GridTitle(team), render.TargetGrid(&opp.Fleet, game.Side(res.Side).Shots)),
	})
}

type shootRequest struct {
	GameID    string `json:"game_id"`
	ChannelID string `json:"channel_id"`
	Row       string `json:"row"`
	Column    int    `json:"column"`
	// Target is an alternative compact form such as "B7".
	Target string `json:"target"`
}

func (r shootRequest) coord() (domain.Coord, error) {
	if r.Target != "" {
		return domain.ParseLabel(r.Target)
	}
	return domain.ParseCoord(r.Row, r.Column)
}

func (h *rpcHandlers) rpcShoot(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	var req shootRequest
	if err := decodePayload(payload, &req); err != nil {
		return "", err
	}
	at, err := req.coord()
	if err != nil {
		return "", toRuntimeError(logger, err)
	}

	report, events, err := h.svc.FireShot(ctx, req.GameID, req.ChannelID, at)
	if err != nil {
		return "", toRuntimeError(logger, err)
	}
	game := report.Game
	logger.WithFields(map[string]interface{}{"game_id": game.ID, "side": report.Side}).Debug("Shot at %s: %s", at, report.Result.Outcome)
	h.dispatch(ctx, logger, events)

	team := game.TeamName(report.Side)
	opp := game.Opponent(report.Side)
	body := map[string]interface{}{
		"game_id":    game.ID,
		"side":       report.Side,
		"outcome":    string(report.Result.Outcome),
		"coordinate": at.String(),
		"all_sunk":   report.Result.AllSunk,
		"content":    render.OutcomeText(report.Result),
		"embed":      embed(render.GridTitle(team), render.TargetGrid(&opp.Fleet, game.Side(report.Side).Shots)),
	}
	if report.Receipt != nil {
		body["receipt"] = receiptToMap(report.Receipt)
	}
	return encodeResponse(logger, body)
}

type channelRequest struct {
	GameID    string `json:"game_id"`
	ChannelID string `json:"channel_id"`
}

func (h *rpcHandlers) rpcStatus(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	var req channelRequest
	if err := decodePayload(payload, &req); err != nil {
		return "", err
	}

	status, err := h.svc.Status(ctx, req.GameID, req.ChannelID)
	if err != nil {
		return "", toRuntimeError(logger, err)
	}
	game := status.Game
	me, opp := game.Side(status.Side), game.Opponent(status.Side)
	team := game.TeamName(status.Side)

	return encodeResponse(logger, map[string]interface{}{
		"game_id":  game.ID,
		"side":     status.Side,
		"team":     team,
		"phase":    string(status.Phase),
		"score":    scoreToMap(status.Score),
		"incoming": scoreToMap(status.Incoming),
		"content":  render.ScoreText(status.Score),
		"embed":    embed(render.GridTitle(team), render.TargetGrid(&opp.Fleet, me.Shots)),
		"own_grid": render.OwnGrid(&me.Fleet, opp.Shots),
	})
}

func (h *rpcHandlers) rpcReveal(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	var req channelRequest
	if err := decodePayload(payload, &req); err != nil {
		return "", err
	}

	reveal, err := h.svc.Reveal(ctx, req.GameID, req.ChannelID)
	if err != nil {
		return "", toRuntimeError(logger, err)
	}
	game := reveal.Game
	me := game.Side(reveal.Side)
	opponent := game.TeamName(domain.OpponentOf(reveal.Side))

	return encodeResponse(logger, map[string]interface{}{
		"game_id":  game.ID,
		"side":     reveal.Side,
		"root":     reveal.Commitment.Root,
		"salt":     reveal.Commitment.Salt,
		"width":    reveal.Fleet.Board.Width,
		"height":   reveal.Fleet.Board.Height,
		"cells":    bitsToList(reveal.Fleet.Board.Bits()),
		"ships":    shipsToList(reveal.Fleet.Ships),
		"verified": true,
		"embed":    embed(opponent+" Fleet", render.OwnGrid(&reveal.Fleet, me.Shots)),
	})
}

type deleteRequest struct {
	GameID     string `json:"game_id"`
	AdminToken string `json:"admin_token"`
}

func (h *rpcHandlers) rpcDelete(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	var req deleteRequest
	if err := decodePayload(payload, &req); err != nil {
		return "", err
	}
	userID, _ := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string)

	events, err := h.svc.DeleteGame(ctx, req.GameID, h.auth.Allowed(userID, req.AdminToken))
	if err != nil {
		if userID != "" {
			logger.Warn("RpcDelete [User:%s]: delete of %s refused: %v", userID, req.GameID, err)
		}
		return "", toRuntimeError(logger, err)
	}
	logger.WithField("game_id", req.GameID).Info("Game deleted by %q", userID)
	h.dispatch(ctx, logger, events)

	return encodeResponse(logger, map[string]interface{}{
		"game_id": req.GameID,
		"deleted": true,
	})
}

type adminTokenRequest struct {
	Subject    string `json:"subject"`
	TTLSeconds int    `json:"ttl_seconds"`
}

// rpcAdminToken is only reachable server-to-server (http key), where no
// user id is present in the context.
func (h *rpcHandlers) rpcAdminToken(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	if userID, _ := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string); userID != "" {
		return "", runtime.NewError("Permission denied.", codePermissionDenied)
	}
	var req adminTokenRequest
	if err := decodePayload(payload, &req); err != nil {
		return "", err
	}
	if req.TTLSeconds < 0 {
		return "", runtime.NewError("ttl_seconds must not be negative", codeInvalidArgument)
	}

	ttl := time.Duration(req.TTLSeconds) * time.Second
	if ttl == 0 {
		ttl = app.DefaultAdminTokenTTL
	}
	token, err := h.tokens.Issue(req.Subject, ttl)
	if err != nil {
		logger.Warn("Failed to issue admin token: %v", err)
		return "", runtime.NewError(err.Error(), codeFailedPrecondition)
	}

	return encodeResponse(logger, map[string]interface{}{
		"token":      token,
		"expires_in": int(ttl / time.Second),
	})
}
