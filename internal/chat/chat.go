// Package chat carries the messaging transport: inbound events from the
// workspace webhook and outbound replies through the Web API.
package chat

import "context"

// File describes an attachment shared alongside a message.
type File struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Mimetype string `json:"mimetype"`
	URL      string `json:"url_private"`
	Size     int64  `json:"size"`
}

// Event is a normalized inbound message event.
type Event struct {
	Text      string `json:"text"`
	Files     []File `json:"files"`
	Channel   string `json:"channel"`
	ThreadTS  string `json:"thread_ts"`
	MessageTS string `json:"ts"`
	Subtype   string `json:"subtype"`
	BotID     string `json:"bot_id"`
}

// Message is one entry in a conversation thread.
type Message struct {
	User  string `json:"user"`
	BotID string `json:"bot_id"`
	Text  string `json:"text"`
	TS    string `json:"ts"`
}

// Client is the outbound side of the transport.
type Client interface {
	// PostMessage sends text to a channel, threaded when threadTS is set.
	PostMessage(ctx context.Context, channel, threadTS, text string) error
	// ThreadReplies fetches the messages of a thread, oldest first.
	ThreadReplies(ctx context.Context, channel, threadTS string) ([]Message, error)
	// DownloadFile fetches an attachment using the bot's credentials.
	DownloadFile(ctx context.Context, url string) ([]byte, error)
}
