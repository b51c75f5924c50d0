package service

import (
	"context"

	"github.com/rs/zerolog/log"

	"agribuddy/internal/model"
	"agribuddy/internal/pkg/keyword"
)

// RouteSource tells which backend produced a reply
type RouteSource string

const (
	SourceKnowledgeBase RouteSource = "knowledge_base"
	SourceGenerative    RouteSource = "generative"
)

// VisionProvider answers a turn that may carry a binary attachment
type VisionProvider interface {
	VisionReply(ctx context.Context, history []model.Message, text string, att *model.Attachment) (string, error)
}

// TextProvider answers a plain text turn. History passed to it must
// already use its role convention (assistant, not model).
type TextProvider interface {
	TextReply(ctx context.Context, history []model.Message, message string) (string, error)
}

// KnowledgeStore lists the FAQ entries the matcher scores against
type KnowledgeStore interface {
	ListEntries(ctx context.Context) ([]model.KnowledgeEntry, error)
}

// RouteResult is a routed reply plus its source flag
type RouteResult struct {
	Reply  string
	Source RouteSource
}

// Router decides which backend answers a message:
//  1. attachment present -> vision provider, knowledge base skipped
//  2. knowledge-base match -> matched answer verbatim, no provider call
//  3. otherwise -> fast text provider with translated history
type Router struct {
	matcher   *keyword.Matcher
	knowledge KnowledgeStore
	vision    VisionProvider
	text      TextProvider
}

// NewRouter creates the provider router
func NewRouter(knowledge KnowledgeStore, vision VisionProvider, text TextProvider) *Router {
	return &Router{
		matcher:   keyword.NewMatcher(),
		knowledge: knowledge,
		vision:    vision,
		text:      text,
	}
}

// Route answers one message. At most one provider call is made; zero when
// the knowledge base matches. Provider errors propagate unmodified.
func (r *Router) Route(ctx context.Context, history []model.Message, message string, att *model.Attachment) (*RouteResult, error) {
	// A knowledge entry cannot address arbitrary file content, so an
	// attachment always goes to the vision provider.
	if att != nil {
		reply, err := r.vision.VisionReply(ctx, history, message, att)
		if err != nil {
			return nil, err
		}
		return &RouteResult{Reply: reply, Source: SourceGenerative}, nil
	}

	if entry, ok := r.matchKnowledge(ctx, message); ok {
		return &RouteResult{Reply: entry.Answer, Source: SourceKnowledgeBase}, nil
	}

	reply, err := r.text.TextReply(ctx, translateHistory(history), message)
	if err != nil {
		return nil, err
	}
	return &RouteResult{Reply: reply, Source: SourceGenerative}, nil
}

// matchKnowledge loads the entries and runs the matcher. An unavailable
// knowledge base is not fatal; the message just routes to the provider.
func (r *Router) matchKnowledge(ctx context.Context, message string) (*keyword.Entry, bool) {
	entries, err := r.knowledge.ListEntries(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("knowledge base unavailable, routing to provider")
		return nil, false
	}

	candidates := make([]keyword.Entry, len(entries))
	for i, e := range entries {
		candidates[i] = keyword.Entry{
			ID:       e.ID,
			Question: e.Question,
			Answer:   e.Answer,
			Keywords: e.Keywords,
		}
	}

	return r.matcher.Match(message, candidates)
}

// translateHistory remaps model turns to the text provider's assistant
// role. The loader itself stays provider-neutral.
func translateHistory(history []model.Message) []model.Message {
	out := make([]model.Message, len(history))
	for i, m := range history {
		if m.Role == model.RoleModel {
			m.Role = model.RoleAssistant
		}
		out[i] = m
	}
	return out
}
