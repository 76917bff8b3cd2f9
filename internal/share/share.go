// Package share posts game envelopes to a Slack channel through an incoming webhook.
package share

import (
	"context"
	"errors"
	"fmt"

	"github.com/nlopes/slack"
	"go.uber.org/zap"
)

var ErrNotConfigured = errors.New("slack webhook is not configured")

// Poster sends envelopes to one webhook. The zero value is valid and reports
// ErrNotConfigured.
type Poster struct {
	webhookURL string
	channel    string
	username   string
	logger     *zap.Logger
}

func NewPoster(webhookURL, channel, username string, logger *zap.Logger) *Poster {
	return &Poster{
		webhookURL: webhookURL,
		channel:    channel,
		username:   username,
		logger:     logger,
	}
}

// Enabled reports whether a webhook URL is set
func (p *Poster) Enabled() bool {
	return p != nil && p.webhookURL != ""
}

// Message builds the webhook payload. The envelope goes in a code block so
// Slack keeps the board monospaced; the import path ignores the fences.
func (p *Poster) Message(status, envelope string) *slack.WebhookMessage {
	return &slack.WebhookMessage{
		Username:  p.username,
		Channel:   p.channel,
		IconEmoji: ":chess_pawn:",
		Text:      fmt.Sprintf("%s\n```\n%s```", status, envelope),
	}
}

// Share posts the envelope for one session
func (p *Poster) Share(ctx context.Context, sessionID, status, envelope string) error {
	if !p.Enabled() {
		return ErrNotConfigured
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := slack.PostWebhook(p.webhookURL, p.Message(status, envelope)); err != nil {
		return fmt.Errorf("failed to post to slack: %w", err)
	}

	p.logger.Info("game shared to slack",
		zap.String("sessionId", sessionID),
		zap.String("channel", p.channel))
	return nil
}
