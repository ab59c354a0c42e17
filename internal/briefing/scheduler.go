package briefing

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/rowanhart/curator/internal/chat"
	"github.com/rowanhart/curator/internal/vault"
)

// Scheduler posts the briefing to a channel once a day at a fixed local time.
type Scheduler struct {
	vault   *vault.Vault
	client  chat.Client
	channel string
	hour    int
	minute  int
	logger  *slog.Logger
}

// NewScheduler parses an "HH:MM" send time. An empty channel disables the
// scheduler without error so deployments can opt out.
func NewScheduler(v *vault.Vault, client chat.Client, channel, at string, logger *slog.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Scheduler{vault: v, client: client, channel: channel, logger: logger}
	if _, err := fmt.Sscanf(at, "%d:%d", &s.hour, &s.minute); err != nil {
		return nil, fmt.Errorf("briefing time %q: want HH:MM: %w", at, err)
	}
	if s.hour < 0 || s.hour > 23 || s.minute < 0 || s.minute > 59 {
		return nil, fmt.Errorf("briefing time %q out of range", at)
	}
	return s, nil
}

// Run blocks until the context is cancelled, sending the briefing at the
// next occurrence of the configured time and every 24 hours after. Post
// failures are logged and the schedule keeps going.
func (s *Scheduler) Run(ctx context.Context) error {
	if s.channel == "" {
		s.logger.Info("briefing disabled, no channel configured")
		<-ctx.Done()
		return ctx.Err()
	}

	for {
		next := s.nextRun(time.Now())
		s.logger.Info("briefing scheduled", slog.Time("next", next))

		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		text := Build(s.vault, time.Now())
		if err := s.client.PostMessage(ctx, s.channel, "", text); err != nil {
			s.logger.Error("briefing post failed", slog.Any("error", err))
		} else {
			s.logger.Info("briefing posted", slog.String("channel", s.channel))
		}
	}
}

// nextRun returns the next occurrence of the configured wall-clock time
// strictly after now.
func (s *Scheduler) nextRun(now time.Time) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), s.hour, s.minute, 0, 0, now.Location())
	if !next.After(now) {
		next = next.Add(24 * time.Hour)
	}
	return next
}
