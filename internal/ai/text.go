package ai

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-resty/resty/v2"

	"agribuddy/internal/config"
)

// TextMessage is one turn of an OpenAI-compatible completion request
type TextMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model          string          `json:"model"`
	Messages       []TextMessage   `json:"messages"`
	Temperature    float64         `json:"temperature,omitempty"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// TextClient is the fast text provider: a Groq-style OpenAI-compatible
// chat completions endpoint called over resty.
type TextClient struct {
	http *resty.Client
	cfg  *config.TextConfig
}

// NewTextClient creates the fast text provider client
func NewTextClient(cfg *config.TextConfig) *TextClient {
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetHeader("Content-Type", "application/json")

	return &TextClient{http: client, cfg: cfg}
}

// Complete sends messages as-is and returns the completion text
func (c *TextClient) Complete(ctx context.Context, messages []TextMessage) (string, error) {
	return c.complete(ctx, messages, false)
}

// CompleteJSON forces the provider into JSON-object output mode. The
// returned string still needs defensive parsing by the caller.
func (c *TextClient) CompleteJSON(ctx context.Context, messages []TextMessage) (string, error) {
	return c.complete(ctx, messages, true)
}

func (c *TextClient) complete(ctx context.Context, messages []TextMessage, forceJSON bool) (string, error) {
	body := chatCompletionRequest{
		Model:    c.cfg.Model,
		Messages: messages,
	}
	if forceJSON {
		body.ResponseFormat = &responseFormat{Type: "json_object"}
	}

	var out chatCompletionResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(c.cfg.APIKey).
		SetBody(body).
		SetResult(&out).
		SetError(&out).
		Post("/chat/completions")
	if err != nil {
		return "", classify(err)
	}

	if resp.StatusCode() == http.StatusTooManyRequests {
		return "", fmt.Errorf("%w: status 429", ErrQuotaExceeded)
	}
	if resp.IsError() {
		detail := resp.Status()
		if out.Error != nil && out.Error.Message != "" {
			detail = out.Error.Message
		}
		return "", classify(fmt.Errorf("completion failed: %s", detail))
	}

	if len(out.Choices) == 0 || out.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("%w: empty completion", ErrProvider)
	}

	return out.Choices[0].Message.Content, nil
}
