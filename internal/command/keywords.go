package command

import (
	"sort"
	"strings"

	"github.com/starford/raido/internal/models"
)

// DefaultKeywordLimit caps KeywordCandidates when the caller passes limit <= 0.
const DefaultKeywordLimit = 15

// KeywordCandidates collects keywords across all bundles and returns the most
// frequent ones, lowercased, up to limit. Keyword fields are split on commas
// and semicolons. Ties are broken alphabetically so the result is stable.
func KeywordCandidates(bundles map[int]*models.Bundle, limit int) []string {
	if limit <= 0 {
		limit = DefaultKeywordLimit
	}

	counts := make(map[string]int)
	for _, b := range bundles {
		if b.Keywords == "" {
			continue
		}
		for _, tok := range strings.Split(strings.ReplaceAll(b.Keywords, ";", ","), ",") {
			tok = strings.ToLower(strings.TrimSpace(tok))
			if tok != "" {
				counts[tok]++
			}
		}
	}

	keywords := make([]string, 0, len(counts))
	for k := range counts {
		keywords = append(keywords, k)
	}
	sort.Slice(keywords, func(i, j int) bool {
		if counts[keywords[i]] != counts[keywords[j]] {
			return counts[keywords[i]] > counts[keywords[j]]
		}
		return keywords[i] < keywords[j]
	})

	if len(keywords) > limit {
		keywords = keywords[:limit]
	}
	return keywords
}
