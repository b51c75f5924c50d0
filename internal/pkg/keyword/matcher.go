// Package keyword scores user questions against the knowledge base by
// token overlap. It is pure: entries come in, a match (or nothing) comes
// out, no provider call is ever made on this path.
package keyword

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Entry is one knowledge-base candidate
type Entry struct {
	ID       int64
	Question string
	Answer   string
	Keywords []string
}

// Indonesian stop words: articles, interrogatives, conjunctions and other
// function words that carry no topical signal.
var stopWords = map[string]struct{}{
	"yang": {}, "dan": {}, "atau": {}, "apa": {}, "apakah": {},
	"bagaimana": {}, "kenapa": {}, "mengapa": {}, "kapan": {}, "dimana": {},
	"mana": {}, "siapa": {}, "berapa": {}, "untuk": {}, "dari": {},
	"dengan": {}, "pada": {}, "dalam": {}, "adalah": {}, "itu": {},
	"ini": {}, "saya": {}, "kami": {}, "kita": {}, "anda": {},
	"bisa": {}, "boleh": {}, "harus": {}, "akan": {}, "sudah": {},
	"cara": {}, "agar": {}, "supaya": {}, "jika": {}, "kalau": {},
	"tolong": {}, "mohon": {},
}

// minTokenLen drops residue like "di", "ke", "ya" left after punctuation
// stripping.
const minTokenLen = 3

// Matcher scores questions against knowledge entries
type Matcher struct {
	minScore int
}

// NewMatcher returns a matcher that accepts entries scoring at least 2
func NewMatcher() *Matcher {
	return &Matcher{minScore: 2}
}

// Match returns the best-scoring entry when its score reaches the
// acceptance threshold. Ties on the top score go to the entry with the
// lowest id, so the result does not depend on input order.
func (m *Matcher) Match(question string, entries []Entry) (*Entry, bool) {
	tokens := Tokenize(question)
	if len(tokens) == 0 {
		return nil, false
	}

	var best *Entry
	bestScore := 0
	for i := range entries {
		e := &entries[i]
		score := overlap(tokens, e.Keywords)
		switch {
		case score > bestScore:
			best, bestScore = e, score
		case score == bestScore && best != nil && e.ID < best.ID:
			best = e
		}
	}

	if bestScore < m.minScore {
		return nil, false
	}
	return best, true
}

// Tokenize lowercases, strips punctuation, splits on whitespace and drops
// short tokens and stop words. The result is a set.
func Tokenize(text string) map[string]struct{} {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	tokens := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		if utf8.RuneCountInString(f) < minTokenLen {
			continue
		}
		if _, stop := stopWords[f]; stop {
			continue
		}
		tokens[f] = struct{}{}
	}
	return tokens
}

// overlap counts how many entry keywords appear among the question tokens
func overlap(tokens map[string]struct{}, keywords []string) int {
	seen := make(map[string]struct{}, len(keywords))
	score := 0
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" {
			continue
		}
		if _, dup := seen[kw]; dup {
			continue
		}
		seen[kw] = struct{}{}
		if _, ok := tokens[kw]; ok {
			score++
		}
	}
	return score
}
