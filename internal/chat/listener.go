package chat

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"
	"unicode/utf8"

	"github.com/rowanhart/curator/internal/agents"
	"github.com/rowanhart/curator/internal/llm"
	"github.com/rowanhart/curator/internal/vault"
)

// threadHistoryCap bounds how much thread context reaches the agents.
const threadHistoryCap = 10

// textInlineLimit is the largest non-binary attachment passed to the model
// inline. Bigger files are saved opaque instead.
const textInlineLimit = 50 * 1024

// handleTimeout bounds a single event end to end, covering every model call
// and vault write it triggers.
const handleTimeout = 5 * time.Minute

// Listener turns inbound events into agent requests and posts the replies.
type Listener struct {
	router *agents.Router
	vault  *vault.Vault
	client Client
	logger *slog.Logger
}

// NewListener wires the event pipeline.
func NewListener(router *agents.Router, v *vault.Vault, client Client, logger *slog.Logger) *Listener {
	if logger == nil {
		logger = slog.Default()
	}
	return &Listener{router: router, vault: v, client: client, logger: logger}
}

// HandleEvent processes one inbound message: filters non-user traffic,
// resolves attachments and thread history, routes to an agent, and posts
// the reply into the originating thread.
func (l *Listener) HandleEvent(ev Event) {
	// Ignore bot traffic (including our own replies) and message edits,
	// deletions, joins, etc. Plain messages have no subtype; file shares
	// arrive as "file_share".
	if ev.BotID != "" {
		return
	}
	if ev.Subtype != "" && ev.Subtype != "file_share" {
		return
	}
	if ev.Text == "" && len(ev.Files) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), handleTimeout)
	defer cancel()

	threadTS := ev.ThreadTS
	if threadTS == "" {
		threadTS = ev.MessageTS
	}

	req := &agents.Request{
		Text:   ev.Text,
		Vault:  l.vault,
		Thread: l.threadHistory(ctx, ev),
	}
	for _, f := range ev.Files {
		part, note := l.resolveFile(ctx, f)
		if note != "" {
			req.Text += note
		}
		if part != nil {
			req.Attachments = append(req.Attachments, *part)
		}
	}

	result, err := l.router.Route(ctx, req)
	if err != nil {
		l.logger.Error("event handling failed",
			slog.String("channel", ev.Channel),
			slog.Any("error", err))
		l.post(ctx, ev.Channel, threadTS,
			"⚠️ Sorry, something went wrong handling that. Please try again in a moment.")
		return
	}

	l.logger.Info("handled message",
		slog.String("agent", req.Routing.Intent),
		slog.String("filed", result.FiledPath),
		slog.Int("tokens", result.TokensUsed))
	l.post(ctx, ev.Channel, threadTS, result.ResponseText)
}

// resolveFile downloads one attachment and decides how it reaches the agent:
// whitelisted binaries are saved into the vault and also passed to the model
// as bytes, small UTF-8 text is inlined into the message, and everything
// else is saved opaque.
func (l *Listener) resolveFile(ctx context.Context, f File) (*llm.Part, string) {
	data, err := l.client.DownloadFile(ctx, f.URL)
	if err != nil {
		l.logger.Error("attachment download failed",
			slog.String("file", f.Name), slog.Any("error", err))
		return nil, fmt.Sprintf("\n\n[System: Attachment '%s' could not be downloaded.]", f.Name)
	}

	mime := llm.NormalizeMIME(f.Mimetype)
	if llm.BinaryMIMEs[mime] {
		saved, err := l.vault.SaveAttachment(f.Name, data)
		if err != nil {
			l.logger.Error("attachment save failed",
				slog.String("file", f.Name), slog.Any("error", err))
			return nil, fmt.Sprintf("\n\n[System: Attachment '%s' could not be saved.]", f.Name)
		}
		savedName := filepath.Base(saved)
		part := llm.BlobPart(mime, data)
		note := fmt.Sprintf("\n\n[System: Attachment '%s' saved as '%s'. "+
			"Include ![[%s]] to embed it or [[%s]] to link it from the note you create.]",
			f.Name, savedName, savedName, savedName)
		return &part, note
	}

	if utf8.Valid(data) && len(data) < textInlineLimit {
		note := fmt.Sprintf("\n\n### File: %s\n```\n%s\n```", f.Name, string(data))
		return nil, note
	}

	saved, err := l.vault.SaveAttachment(f.Name, data)
	if err != nil {
		l.logger.Error("attachment save failed",
			slog.String("file", f.Name), slog.Any("error", err))
		return nil, fmt.Sprintf("\n\n[System: Attachment '%s' could not be saved.]", f.Name)
	}
	return nil, fmt.Sprintf("\n\n[System: Attachment '%s' saved as '%s'. "+
		"Its content type is not supported for analysis; link it with [[%s]] if relevant.]",
		f.Name, filepath.Base(saved), filepath.Base(saved))
}

// threadHistory fetches prior thread messages, oldest first, capped at the
// most recent threadHistoryCap entries and excluding the current message.
func (l *Listener) threadHistory(ctx context.Context, ev Event) []agents.ThreadMessage {
	if ev.ThreadTS == "" {
		return nil
	}
	msgs, err := l.client.ThreadReplies(ctx, ev.Channel, ev.ThreadTS)
	if err != nil {
		l.logger.Warn("thread history fetch failed", slog.Any("error", err))
		return nil
	}

	var history []agents.ThreadMessage
	for _, m := range msgs {
		if m.TS == ev.MessageTS {
			continue
		}
		role := "user"
		if m.BotID != "" {
			role = "assistant"
		}
		history = append(history, agents.ThreadMessage{Role: role, Text: m.Text})
	}
	if len(history) > threadHistoryCap {
		history = history[len(history)-threadHistoryCap:]
	}
	return history
}

func (l *Listener) post(ctx context.Context, channel, threadTS, text string) {
	if err := l.client.PostMessage(ctx, channel, threadTS, text); err != nil {
		l.logger.Error("posting reply failed",
			slog.String("channel", channel), slog.Any("error", err))
	}
}
