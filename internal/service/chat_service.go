package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"agribuddy/internal/model"
	"agribuddy/internal/pkg/id"
	"agribuddy/internal/repository"
)

var (
	// ErrValidation is returned before any side effect when required
	// input is missing.
	ErrValidation = errors.New("message or attachment and user id are required")

	// ErrPersistence wraps a failed exchange write. The store has
	// already rolled back; no partial rows remain.
	ErrPersistence = errors.New("failed to persist exchange")
)

// ConversationStore is the persistence coordinator the orchestrator
// drives. Implementations must write each exchange atomically.
type ConversationStore interface {
	CreateWithExchange(ctx context.Context, conv *model.Conversation, userContent, modelContent string) error
	AppendExchange(ctx context.Context, conversationID, userContent, modelContent string) error
	History(ctx context.Context, conversationID string) ([]model.Message, error)
	FindByID(ctx context.Context, id string) (*model.Conversation, error)
}

// TitleSynthesizer labels a new conversation; it never fails
type TitleSynthesizer interface {
	Title(ctx context.Context, firstMessage string) string
}

// ChatInput is one incoming user turn
type ChatInput struct {
	UserID     string
	Message    string
	Attachment *model.Attachment
}

// ChatResult is the outcome of a handled turn
type ChatResult struct {
	ConversationID string
	Reply          string
	Source         RouteSource
}

// ChatService orchestrates a chat turn: validate, reconstruct history,
// route, persist, respond. Provider and persistence failures propagate;
// nothing is written unless the routed reply succeeded, and nothing
// partial is ever left behind.
type ChatService struct {
	router          *Router
	titles          TitleSynthesizer
	store           ConversationStore
	providerTimeout time.Duration
}

// NewChatService creates the orchestrator
func NewChatService(router *Router, titles TitleSynthesizer, store ConversationStore, providerTimeout time.Duration) *ChatService {
	if providerTimeout <= 0 {
		providerTimeout = 60 * time.Second
	}
	return &ChatService{
		router:          router,
		titles:          titles,
		store:           store,
		providerTimeout: providerTimeout,
	}
}

// Start handles a new conversation: route the first message, then create
// the conversation and its first exchange in one transaction.
func (s *ChatService) Start(ctx context.Context, in *ChatInput) (*ChatResult, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}

	logger := log.With().Str("user_id", in.UserID).Logger()

	routed, err := s.route(ctx, nil, in)
	if err != nil {
		logger.Error().Err(err).Str("stage", "route").Msg("start chat failed")
		return nil, err
	}

	userContent := persistedContent(in)
	conv := &model.Conversation{
		ID:     id.New(),
		UserID: in.UserID,
		Title:  s.titles.Title(ctx, userContent),
	}

	if err := s.store.CreateWithExchange(ctx, conv, userContent, routed.Reply); err != nil {
		logger.Error().Err(err).
			Str("stage", "persist").
			Str("conversation_id", conv.ID).
			Msg("start chat failed")
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	logger.Info().
		Str("conversation_id", conv.ID).
		Str("source", string(routed.Source)).
		Msg("conversation started")

	return &ChatResult{
		ConversationID: conv.ID,
		Reply:          routed.Reply,
		Source:         routed.Source,
	}, nil
}

// Continue handles a follow-up turn on an existing conversation
func (s *ChatService) Continue(ctx context.Context, conversationID string, in *ChatInput) (*ChatResult, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}

	logger := log.With().
		Str("user_id", in.UserID).
		Str("conversation_id", conversationID).
		Logger()

	// Resolve the conversation before spending a provider call on it.
	if _, err := s.store.FindByID(ctx, conversationID); err != nil {
		logger.Warn().Err(err).Str("stage", "resolve").Msg("continue chat rejected")
		return nil, err
	}

	history, err := s.store.History(ctx, conversationID)
	if err != nil {
		logger.Error().Err(err).Str("stage", "history").Msg("continue chat failed")
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	routed, err := s.route(ctx, history, in)
	if err != nil {
		logger.Error().Err(err).Str("stage", "route").Msg("continue chat failed")
		return nil, err
	}

	if err := s.store.AppendExchange(ctx, conversationID, persistedContent(in), routed.Reply); err != nil {
		logger.Error().Err(err).Str("stage", "persist").Msg("continue chat failed")
		if errors.Is(err, repository.ErrConversationNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	logger.Info().Str("source", string(routed.Source)).Msg("conversation continued")

	return &ChatResult{
		ConversationID: conversationID,
		Reply:          routed.Reply,
		Source:         routed.Source,
	}, nil
}

// route runs the provider router under the configured deadline. A
// provider that never answers must not hold the request open forever.
func (s *ChatService) route(ctx context.Context, history []model.Message, in *ChatInput) (*RouteResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.providerTimeout)
	defer cancel()
	return s.router.Route(ctx, history, in.Message, in.Attachment)
}

// validateInput rejects the request before any side effect
func validateInput(in *ChatInput) error {
	if in == nil || in.UserID == "" {
		return ErrValidation
	}
	if in.Message == "" && in.Attachment == nil {
		return ErrValidation
	}
	return nil
}

// persistedContent is what gets stored as the user message: the text, or
// the attachment placeholder when only a file was sent.
func persistedContent(in *ChatInput) string {
	if in.Message == "" && in.Attachment != nil {
		return in.Attachment.Placeholder()
	}
	return in.Message
}
