package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"agribuddy/internal/model"
)

// titleFallbackLen mirrors the historical behavior: the first 50
// characters of the opening message.
const titleFallbackLen = 50

// Title derives a short label for a new conversation. One fast provider
// call with a tight deadline; any failure falls back to truncating the
// opening message. Title generation is never fatal.
func (c *Client) Title(ctx context.Context, firstMessage string) string {
	ctx, cancel := context.WithTimeout(ctx, c.titleTimeout)
	defer cancel()

	prompt := fmt.Sprintf(
		"Buat judul singkat (maksimal 5 kata) untuk percakapan yang diawali dengan pesan ini: %q",
		firstMessage,
	)

	title, err := c.text.Complete(ctx, []TextMessage{{Role: model.RoleUser, Content: prompt}})
	if err != nil {
		log.Warn().Err(err).Msg("title generation failed, using fallback")
		return fallbackTitle(firstMessage)
	}

	title = strings.TrimSpace(strings.Trim(strings.TrimSpace(title), `"`))
	if title == "" {
		return fallbackTitle(firstMessage)
	}
	return title
}

func fallbackTitle(message string) string {
	runes := []rune(message)
	if len(runes) > titleFallbackLen {
		return string(runes[:titleFallbackLen])
	}
	return message
}
