package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"agribuddy/internal/model"
	"agribuddy/internal/pkg/cache"
)

// KnowledgeRepo reads the FAQ table the matcher consults. The content is
// maintained elsewhere; this side only lists it, cache-aside through redis
// when one is configured.
type KnowledgeRepo struct {
	db       *sql.DB
	cache    *cache.RedisCache
	cacheTTL time.Duration
}

// NewKnowledgeRepo creates the repository; redisCache may be nil
func NewKnowledgeRepo(db *sql.DB, redisCache *cache.RedisCache, cacheTTL time.Duration) *KnowledgeRepo {
	return &KnowledgeRepo{
		db:       db,
		cache:    redisCache,
		cacheTTL: cacheTTL,
	}
}

// ListEntries returns every knowledge entry, lowest id first. Cache
// failures degrade silently to the database.
func (r *KnowledgeRepo) ListEntries(ctx context.Context) ([]model.KnowledgeEntry, error) {
	if r.cache != nil {
		var cached []model.KnowledgeEntry
		if err := r.cache.Get(ctx, cache.KnowledgeEntriesKey, &cached); err == nil {
			return cached, nil
		}
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, question, answer, keywords FROM knowledge_entries ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("query knowledge entries: %w", err)
	}
	defer rows.Close()

	entries := []model.KnowledgeEntry{}
	for rows.Next() {
		var (
			entry    model.KnowledgeEntry
			keywords string
		)
		if err := rows.Scan(&entry.ID, &entry.Question, &entry.Answer, &keywords); err != nil {
			return nil, fmt.Errorf("scan knowledge entry: %w", err)
		}
		entry.Keywords = splitKeywords(keywords)
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if r.cache != nil {
		if err := r.cache.Set(ctx, cache.KnowledgeEntriesKey, entries, r.cacheTTL); err != nil {
			log.Warn().Err(err).Msg("failed to cache knowledge entries")
		}
	}

	return entries, nil
}

// splitKeywords parses the comma-separated keywords column
func splitKeywords(raw string) []string {
	parts := strings.Split(raw, ",")
	keywords := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			keywords = append(keywords, p)
		}
	}
	return keywords
}
