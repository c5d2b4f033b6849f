package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cardvault/pkg/models"
)

func seedFuzzy(t *testing.T) *Store {
	t.Helper()
	s := testStore(t)
	_, _, _, err := s.AddOrUpdate(lebronParams())
	require.NoError(t, err)
	_, _, _, err = s.AddOrUpdate(UpsertParams{
		Name:       "Base Set Charizard 4/102",
		Set:        "Base Set",
		CardNumber: "4/102",
		Players:    []string{"Charizard"},
		Category:   "Pokemon",
		Grade:      "PSA 10",
		Min:        5000, Max: 8000,
	})
	require.NoError(t, err)
	return s
}

func TestFindFuzzyTypoStillMatches(t *testing.T) {
	s := seedFuzzy(t)

	match, ok := s.FindFuzzy(models.CardQuery{
		Category:   "Basketball",
		Player:     "Lebron Jammes", // misspelled
		SetName:    "Topps Chrome",
		CardNumber: "111",
	})
	require.True(t, ok)
	assert.Equal(t, "2003_topps_chrome_lebron_james_111", match.Key)
	assert.GreaterOrEqual(t, match.Score, 0.65)
	assert.LessOrEqual(t, match.Score, 1.0)
}

func TestFindFuzzyBelowThreshold(t *testing.T) {
	s := seedFuzzy(t)

	_, ok := s.FindFuzzy(models.CardQuery{
		Category: "Hockey",
		Player:   "Wayne Gretzky",
		SetName:  "O-Pee-Chee",
	})
	assert.False(t, ok)
}

func TestFindFuzzyMissingQueryFieldsContributeZero(t *testing.T) {
	s := seedFuzzy(t)

	// player alone carries weight 0.5, category 0.2: just under threshold
	_, ok := s.FindFuzzy(models.CardQuery{Player: "LeBron James"})
	assert.False(t, ok)

	match, ok := s.FindFuzzy(models.CardQuery{Category: "Basketball", Player: "LeBron James"})
	require.True(t, ok)
	assert.InDelta(t, 0.70, match.Score, 0.001)
}

func TestFindFuzzyEmptyStore(t *testing.T) {
	s := testStore(t)
	_, ok := s.FindFuzzy(models.CardQuery{Category: "Basketball", Player: "LeBron James"})
	assert.False(t, ok)
}

func TestFindFuzzyTieBreaksToFirstKey(t *testing.T) {
	s := testStore(t)
	for _, set := range []string{"Aurora", "Borealis"} {
		_, _, _, err := s.AddOrUpdate(UpsertParams{
			Name:     "Twin " + set,
			Set:      set,
			Players:  []string{"Same Player"},
			Category: "Basketball",
			Grade:    "RAW", Min: 10, Max: 20,
		})
		require.NoError(t, err)
	}

	// identical scores on both records: sorted key order wins
	match, ok := s.FindFuzzy(models.CardQuery{Category: "Basketball", Player: "Same Player"})
	require.True(t, ok)
	assert.Equal(t, "aurora_same_player", match.Key)
}

func TestSimilarity(t *testing.T) {
	assert.Equal(t, 1.0, similarity("LeBron James", "lebron james"))
	assert.Equal(t, 0.0, similarity("", "anything"))
	assert.Greater(t, similarity("Lebron Jammes", "LeBron James"), 0.8)
	assert.Less(t, similarity("Charizard", "LeBron James"), 0.3)
}
