package ai

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"agribuddy/internal/config"
	"agribuddy/internal/model"
)

// completer is what the text-based features need from the fast provider
type completer interface {
	Complete(ctx context.Context, messages []TextMessage) (string, error)
	CompleteJSON(ctx context.Context, messages []TextMessage) (string, error)
}

// Client is the AI capability layer. It owns both generative providers
// and everything built on them: chat replies, title synthesis, and the
// forced-JSON dashboard summaries.
type Client struct {
	vision       *Vision
	text         completer
	system       string
	titleTimeout time.Duration
}

// NewClient creates the AI client from configuration
func NewClient(ctx context.Context, cfg *config.AIConfig) (*Client, error) {
	if cfg.Vision.APIKey == "" {
		log.Warn().Msg("vision provider API key not configured")
	}
	if cfg.Text.APIKey == "" {
		log.Warn().Msg("text provider API key not configured")
	}

	system := cfg.SystemInstruction
	if system == "" {
		system = config.DefaultSystemInstruction
	}

	vision, err := NewVision(ctx, &cfg.Vision, system)
	if err != nil {
		return nil, err
	}

	titleTimeout := cfg.TitleTimeout
	if titleTimeout <= 0 {
		titleTimeout = 10 * time.Second
	}

	return &Client{
		vision:       vision,
		text:         NewTextClient(&cfg.Text),
		system:       system,
		titleTimeout: titleTimeout,
	}, nil
}

// VisionReply answers a message that carries an attachment (or any turn
// the router sends to the vision-capable provider).
func (c *Client) VisionReply(ctx context.Context, history []model.Message, text string, att *model.Attachment) (string, error) {
	return c.vision.Reply(ctx, history, text, att)
}

// TextReply answers a plain text message through the fast provider.
// History arrives already translated to the provider's role convention.
func (c *Client) TextReply(ctx context.Context, history []model.Message, message string) (string, error) {
	messages := make([]TextMessage, 0, len(history)+2)
	messages = append(messages, TextMessage{Role: model.RoleSystem, Content: c.system})
	for _, m := range history {
		messages = append(messages, TextMessage{Role: m.Role, Content: m.Content})
	}
	messages = append(messages, TextMessage{Role: model.RoleUser, Content: message})

	return c.text.Complete(ctx, messages)
}

// CompleteJSON runs a single prompt with JSON-object output forced
func (c *Client) CompleteJSON(ctx context.Context, prompt string) (string, error) {
	return c.text.CompleteJSON(ctx, []TextMessage{{Role: model.RoleUser, Content: prompt}})
}
