package ports

import "context"

// Message is a chat reply: a short line of text plus an optional titled embed.
type Message struct {
	Content string
	Title   string
	Body    string
}

// ChannelNotifier posts messages to chat channels outside the request that
// triggered them.
type ChannelNotifier interface {
	Notify(ctx context.Context, channelID string, msg Message) error
}
