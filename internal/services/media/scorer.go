// -----------------------------------------------------------------------
// Media Relevance Scorer - Rank media items against a question by
// token overlap
// -----------------------------------------------------------------------

package media

import (
	"sort"
	"strings"

	"github.com/docuchat/docuchat/internal/models"
)

// minScore is the exclusive relevance floor. Items scoring at or below it
// are discarded.
const minScore = 0.1

// ScoreItems ranks items by token overlap with the query and returns at
// most limit of them, best first. The score for an item is the fraction
// of the query's unique tokens that appear in the item's description and
// associated text. Ties keep the input order.
func ScoreItems(query string, items []*models.MediaItem, limit int) []models.ScoredMedia {
	queryTokens := tokenize(query)
	if len(queryTokens) == 0 || limit <= 0 {
		return nil
	}

	scored := make([]models.ScoredMedia, 0, len(items))
	for _, item := range items {
		candidateTokens := tokenize(item.Description + " " + item.AssociatedText)

		matches := 0
		for token := range queryTokens {
			if _, ok := candidateTokens[token]; ok {
				matches++
			}
		}

		score := float64(matches) / float64(len(queryTokens))
		if score <= minScore {
			continue
		}
		scored = append(scored, models.ScoredMedia{
			Item:  item,
			Score: score,
		})
	}

	sort.SliceStable(scored, func(a, b int) bool {
		return scored[a].Score > scored[b].Score
	})
	if len(scored) > limit {
		scored = scored[:limit]
	}
	return scored
}

// tokenize lowercases and splits on whitespace, returning the unique
// token set.
func tokenize(s string) map[string]struct{} {
	tokens := make(map[string]struct{})
	for _, token := range strings.Fields(strings.ToLower(s)) {
		tokens[token] = struct{}{}
	}
	return tokens
}
