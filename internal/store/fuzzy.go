package store

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"

	"cardvault/pkg/models"
)

// Fuzzy matching weights. They sum to 1.0, so no match can ever score above
// the sum of the configured per-field weights.
const (
	fuzzyWeightCategory = 0.20
	fuzzyWeightPlayer   = 0.50
	fuzzyWeightSet      = 0.20
	fuzzyWeightNumber   = 0.10

	// fuzzyThreshold is the single acceptance cutoff: a candidate below it
	// is treated as no match at all.
	fuzzyThreshold = 0.65
)

// FuzzyMatch is the best approximate candidate for a query that missed on
// exact key lookup.
type FuzzyMatch struct {
	Key    string
	Record models.VerifiedPriceRecord
	Score  float64
}

// FindFuzzy scans every record and scores it field by field: category and
// card number use containment, player and set use an edit-distance ratio.
// Fields absent from the query contribute zero instead of penalizing.
//
// Candidates are visited in sorted key order and only a strictly higher
// score replaces the current best, so ties resolve to the first-seen key.
// That is a documented, accepted property, not randomness.
func (s *Store) FindFuzzy(q models.CardQuery) (FuzzyMatch, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.cards))
	for k := range s.cards {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var best FuzzyMatch
	for _, key := range keys {
		rec := s.cards[key]
		score := fuzzyScore(q, rec)
		if score > best.Score {
			best = FuzzyMatch{Key: key, Record: rec, Score: score}
		}
	}

	if best.Score < fuzzyThreshold {
		return FuzzyMatch{}, false
	}
	return best, true
}

func fuzzyScore(q models.CardQuery, rec models.VerifiedPriceRecord) float64 {
	score := 0.0

	if containsEitherWay(q.Category, rec.Category) {
		score += fuzzyWeightCategory
	}

	if q.Player != "" {
		bestPlayer := 0.0
		for _, player := range rec.Players {
			if sim := similarity(q.Player, player); sim > bestPlayer {
				bestPlayer = sim
			}
		}
		score += fuzzyWeightPlayer * bestPlayer
	}

	if q.SetName != "" && rec.Set != "" {
		score += fuzzyWeightSet * similarity(q.SetName, rec.Set)
	}

	if containsEitherWay(q.CardNumber, rec.CardNumber) {
		score += fuzzyWeightNumber
	}

	return score
}

// similarity is a symmetric edit-distance ratio in [0,1]: identical strings
// score 1, fully different strings score 0.
func similarity(a, b string) float64 {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 1
	}

	maxLen := len([]rune(a))
	if l := len([]rune(b)); l > maxLen {
		maxLen = l
	}
	dist := levenshtein.ComputeDistance(a, b)
	return 1 - float64(dist)/float64(maxLen)
}

func containsEitherWay(a, b string) bool {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	if a == "" || b == "" {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}
