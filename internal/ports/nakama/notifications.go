package nakama

import (
	"context"
	"fmt"

	"battleship/internal/app"
	"battleship/internal/ports"
	"battleship/internal/render"

	"github.com/heroiclabs/nakama-common/runtime"
)

// dispatch delivers events to their channels. Delivery failures are logged
// and never fail the command that produced the event.
func (h *rpcHandlers) dispatch(ctx context.Context, logger runtime.Logger, events []app.Event) {
	for _, ev := range events {
		msg, ok := eventMessage(ev)
		if !ok {
			logger.Debug("dispatch: %s has no channel message", ev.Kind)
			continue
		}
		if h.notifier == nil {
			continue
		}
		for _, channelID := range ev.Recipients {
			if err := h.notifier.Notify(ctx, channelID, msg); err != nil {
				logger.WithField("event", string(ev.Kind)).Warn("dispatch: %v", err)
			}
		}
	}
}

func eventMessage(ev app.Event) (ports.Message, bool) {
	switch p := ev.Payload.(type) {
	case app.SideJoinedPayload:
		return ports.Message{
			Content: fmt.Sprintf("%s joined game %s. Let the battle begin!", p.Team, p.GameID),
		}, true
	case app.ShotFiredPayload:
		text := render.IncomingText(p.Attacker, p.Result)
		if text == "" {
			return ports.Message{}, false
		}
		return ports.Message{
			Content: text,
			Title:   "Your Fleet",
			Body:    render.OwnGrid(&p.Defender, p.Incoming),
		}, true
	case app.FleetSunkPayload:
		return ports.Message{
			Content: fmt.Sprintf("🏁 %s has sunk every ship of %s in game %s.", p.Winner, p.Loser, p.GameID),
		}, true
	case app.GameDeletedPayload:
		return ports.Message{
			Content: fmt.Sprintf("Game %s was deleted by an administrator.", p.GameID),
		}, true
	default:
		return ports.Message{}, false
	}
}
