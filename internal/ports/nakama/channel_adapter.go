package nakama

import (
	"context"
	"fmt"

	"battleship/internal/ports"

	"github.com/heroiclabs/nakama-common/rtapi"
)

// channelAPI is the slice of runtime.NakamaModule used to post chat messages.
type channelAPI interface {
	ChannelMessageSend(ctx context.Context, channelID string, content map[string]interface{}, senderId, senderUsername string, persist bool) (*rtapi.ChannelMessageAck, error)
}

// NakamaChannelNotifier implements ports.ChannelNotifier with Nakama chat.
// Messages are sent as the system user.
type NakamaChannelNotifier struct {
	nk channelAPI
}

// NewNakamaChannelNotifier creates a new channel notifier.
func NewNakamaChannelNotifier(nk channelAPI) *NakamaChannelNotifier {
	return &NakamaChannelNotifier{nk: nk}
}

// Notify posts msg to channelID and persists it in the channel history.
func (n *NakamaChannelNotifier) Notify(ctx context.Context, channelID string, msg ports.Message) error {
	if channelID == "" {
		return fmt.Errorf("channelID is required")
	}
	if _, err := n.nk.ChannelMessageSend(ctx, channelID, messageContent(msg), "", "", true); err != nil {
		return fmt.Errorf("failed to send message to channel %s: %w", channelID, err)
	}
	return nil
}

func messageContent(msg ports.Message) map[string]interface{} {
	content := map[string]interface{}{"content": msg.Content}
	if msg.Title != "" || msg.Body != "" {
		content["embed"] = map[string]interface{}{
			"title":       msg.Title,
			"description": msg.Body,
		}
	}
	return content
}

var _ ports.ChannelNotifier = (*NakamaChannelNotifier)(nil)
