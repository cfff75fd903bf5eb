package linktree

import (
	"strings"

	"github.com/starford/raido/internal/models"
)

// FilterByTags returns the records whose Tag is a member of keywords,
// preserving input order.
func FilterByTags(records []models.TaggedRecord, keywords map[string]struct{}) []models.TaggedRecord {
	out := make([]models.TaggedRecord, 0)
	for _, r := range records {
		if _, ok := keywords[r.Tag]; ok {
			out = append(out, r)
		}
	}
	return out
}

// RecordsForKeyword finds the node named keyword in the forest and returns
// the records matching its subtree keyword set. An unknown keyword yields an
// empty list.
func RecordsForKeyword(forest []*Node, records []models.TaggedRecord, keyword string) []models.TaggedRecord {
	node := Find(forest, keyword)
	if node == nil {
		return []models.TaggedRecord{}
	}
	return FilterByTags(records, node.AllKeywords())
}

// SearchByTitle returns records whose title contains query, case-insensitive.
// An empty query returns an empty result, not every record.
func SearchByTitle(records []models.TaggedRecord, query string) []models.TaggedRecord {
	out := make([]models.TaggedRecord, 0)
	if query == "" {
		return out
	}
	q := strings.ToLower(query)
	for _, r := range records {
		if strings.Contains(strings.ToLower(r.Title), q) {
			out = append(out, r)
		}
	}
	return out
}
