package ai

import (
	"context"
	"encoding/base64"
	"fmt"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"agribuddy/internal/ai/component"
	"agribuddy/internal/config"
	"agribuddy/internal/model"
)

// Vision is the vision-capable provider. It replays the conversation
// history and sends the new turn as structured parts, so a binary
// attachment can ride along with (or instead of) text.
type Vision struct {
	chatModel einomodel.ChatModel
	system    string
}

// NewVision builds the vision provider on top of the ChatModel factory
func NewVision(ctx context.Context, cfg *config.VisionConfig, systemInstruction string) (*Vision, error) {
	chatModel, err := component.NewChatModel(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create vision chat model: %w", err)
	}

	return &Vision{
		chatModel: chatModel,
		system:    systemInstruction,
	}, nil
}

// Reply sends system instruction + history + the new message/attachment
// pair and returns the completion text.
func (v *Vision) Reply(ctx context.Context, history []model.Message, text string, att *model.Attachment) (string, error) {
	messages := make([]*schema.Message, 0, len(history)+2)
	messages = append(messages, schema.SystemMessage(v.system))

	for _, m := range history {
		role := schema.User
		if m.Role == model.RoleModel || m.Role == model.RoleAssistant {
			role = schema.Assistant
		}
		messages = append(messages, &schema.Message{Role: role, Content: m.Content})
	}

	messages = append(messages, newUserTurn(text, att))

	resp, err := v.chatModel.Generate(ctx, messages)
	if err != nil {
		return "", classify(err)
	}
	if resp == nil || resp.Content == "" {
		return "", fmt.Errorf("%w: empty completion", ErrProvider)
	}

	return resp.Content, nil
}

// newUserTurn assembles the multimodal user message. Attachments travel
// inline as base64 data URLs, the way the original mobile clients upload
// them.
func newUserTurn(text string, att *model.Attachment) *schema.Message {
	if att == nil {
		return schema.UserMessage(text)
	}

	parts := make([]schema.ChatMessagePart, 0, 2)
	if text != "" {
		parts = append(parts, schema.ChatMessagePart{
			Type: schema.ChatMessagePartTypeText,
			Text: text,
		})
	}
	parts = append(parts, schema.ChatMessagePart{
		Type: schema.ChatMessagePartTypeImageURL,
		ImageURL: &schema.ChatMessageImageURL{
			URL:      dataURL(att),
			MIMEType: att.MIMEType,
		},
	})

	return &schema.Message{Role: schema.User, MultiContent: parts}
}

func dataURL(att *model.Attachment) string {
	return "data:" + att.MIMEType + ";base64," + base64.StdEncoding.EncodeToString(att.Data)
}
