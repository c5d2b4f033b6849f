package pricing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cardvault/pkg/models"
)

func fixedCalculator() *Calculator {
	c := NewCalculator(DefaultTables())
	c.now = func() time.Time { return time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC) }
	return c
}

func TestEstimateAlwaysPriced(t *testing.T) {
	c := fixedCalculator()

	est := c.Estimate(models.CardQuery{}, "")
	require.True(t, est.Priced())
	assert.Equal(t, models.SourceAlgorithm, est.Source)
	assert.Equal(t, "RAW", est.Grade)
	assert.Equal(t, "USD", est.Currency)
	assert.GreaterOrEqual(t, *est.Min, 1.0)
	assert.GreaterOrEqual(t, *est.Max, 2.0)
}

func TestEstimateBandMargins(t *testing.T) {
	c := fixedCalculator()

	est := c.Estimate(models.CardQuery{
		Category: "Basketball",
		Player:   "LeBron James",
		Year:     "2003",
		SetName:  "Topps Chrome",
	}, "PSA 10")

	require.True(t, est.Priced())
	assert.InDelta(t, *est.Avg*0.7, *est.Min, 0.01)
	assert.InDelta(t, *est.Avg*1.3, *est.Max, 0.01)
	assert.Greater(t, *est.Min, 0.0)
	assert.Greater(t, *est.Max, *est.Min)
}

func TestConfidenceStaysInAlgorithmicBand(t *testing.T) {
	queries := []models.CardQuery{
		{},
		{Category: "Basketball"},
		{Category: "Basketball", Player: "role player nobody knows"},
		{
			Category: "Basketball", Player: "Michael Jordan", Year: "1986",
			Manufacturer: "Fleer", SetName: "1986 Fleer", CardNumber: "57",
		},
		{Category: "Pokemon", Player: "Charizard", SerialNumber: "1/1", Parallel: "Superfractor"},
	}

	c := fixedCalculator()
	for _, q := range queries {
		for _, grade := range models.StandardGrades {
			est := c.Estimate(q, grade)
			assert.GreaterOrEqual(t, est.Confidence, 0.10)
			assert.LessOrEqual(t, est.Confidence, 0.75)
		}
	}
}

func TestConfidenceRewardsDetail(t *testing.T) {
	c := fixedCalculator()

	sparse := c.Estimate(models.CardQuery{Category: "Basketball"}, "PSA 10")
	detailed := c.Estimate(models.CardQuery{
		Category: "Basketball", Player: "LeBron James", Year: "2003",
		Manufacturer: "Topps", SetName: "Topps Chrome", CardNumber: "111",
	}, "PSA 10")

	assert.Greater(t, detailed.Confidence, sparse.Confidence)
	assert.Equal(t, 0.75, detailed.Confidence)
}

func TestGradeMultiplierOrdering(t *testing.T) {
	c := fixedCalculator()
	q := models.CardQuery{Category: "Basketball", Player: "LeBron James", Year: "2003", SetName: "Topps Chrome"}

	psa10 := c.Estimate(q, "PSA 10")
	psa9 := c.Estimate(q, "PSA 9")
	raw := c.Estimate(q, "RAW")

	assert.Greater(t, *psa10.Avg, *psa9.Avg)
	assert.Greater(t, *psa9.Avg, *raw.Avg)
}

func TestUnknownGradeLabelPricesNeutral(t *testing.T) {
	c := fixedCalculator()
	q := models.CardQuery{Category: "Basketball", Player: "LeBron James", Year: "2003", SetName: "Topps Chrome"}

	exotic := c.Estimate(q, "KSA 10")
	psa8 := c.Estimate(q, "PSA 8")

	require.True(t, exotic.Priced())
	assert.Equal(t, "KSA 10", exotic.Grade)
	// PSA 8 also carries multiplier 1.0, so the bands line up
	assert.Equal(t, *psa8.Avg, *exotic.Avg)
}

func TestPlayerTierResolution(t *testing.T) {
	c := fixedCalculator()

	tier, mult := c.playerTier(models.CardQuery{Category: "Basketball", Player: "LeBron James"})
	assert.Equal(t, "goat", tier)
	assert.Equal(t, 10.0, mult)

	tier, _ = c.playerTier(models.CardQuery{Category: "Pokemon", Player: "Charizard"})
	assert.Equal(t, "goat", tier)

	tier, mult = c.playerTier(models.CardQuery{Category: "Basketball", Player: "Nobody Special"})
	assert.Equal(t, "unknown", tier)
	assert.Equal(t, 0.5, mult)

	tier, _ = c.playerTier(models.CardQuery{Category: "Basketball"})
	assert.Equal(t, "unknown", tier)
}

func TestPlayerTierSearchesAllCategoriesWithoutOne(t *testing.T) {
	c := fixedCalculator()

	// no category narrows the search, so every tier list is scanned
	tier, mult := c.playerTier(models.CardQuery{Player: "Charizard"})
	assert.Equal(t, "goat", tier)
	assert.Equal(t, 10.0, mult)

	// a category with no tier lists of its own falls back to search-all too
	tier, _ = c.playerTier(models.CardQuery{Category: "Cricket", Player: "Wayne Gretzky"})
	assert.Equal(t, "goat", tier)

	tier, _ = c.playerTier(models.CardQuery{Player: "Nobody Special"})
	assert.Equal(t, "unknown", tier)
}

func TestSerialMultiplierBrackets(t *testing.T) {
	c := fixedCalculator()

	cases := []struct {
		serial string
		want   float64
	}{
		{"1/1", 50.0},
		{"3/5", 20.0},
		{"7/10", 12.0},
		{"23/99", 3.5},
		{"150/199", 2.5},
		{"400/499", 1.5},
		{"900/999", 1.3},
		// the final bracket has no ceiling
		{"12/2500", 1.3},
		{"5000/10000", 1.3},
		{"no slash", 0},
		{"", 0},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, c.serialMultiplier(tc.serial), "serial %q", tc.serial)
	}
}

func TestRarityRookieAutoCombines(t *testing.T) {
	c := fixedCalculator()

	rookie := c.rarityMultiplier(models.CardQuery{Rookie: true})
	auto := c.rarityMultiplier(models.CardQuery{Autograph: true})
	both := c.rarityMultiplier(models.CardQuery{Rookie: true, Autograph: true})

	assert.Equal(t, 2.0, rookie)
	assert.Equal(t, 5.0, auto)
	// combined flag uses the auto_rookie rate, not rookie*auto
	assert.Equal(t, 8.0, both)
}

func TestRarityMemorabiliaPriority(t *testing.T) {
	c := fixedCalculator()

	logoman := c.rarityMultiplier(models.CardQuery{Memorabilia: "logoman patch"})
	patch := c.rarityMultiplier(models.CardQuery{Memorabilia: "patch"})
	jersey := c.rarityMultiplier(models.CardQuery{Memorabilia: "jersey swatch"})

	assert.Equal(t, 30.0, logoman)
	assert.Equal(t, 4.0, patch)
	assert.Equal(t, 2.5, jersey)
}

func TestRarityParallelPicksStrongestKeyword(t *testing.T) {
	c := fixedCalculator()

	// "gold refractor" matches both gold (8.0) and refractor (3.0)
	mult := c.rarityMultiplier(models.CardQuery{Parallel: "Gold Refractor"})
	assert.Equal(t, 8.0, mult)
}

func TestSetMultiplierKeywordFallback(t *testing.T) {
	c := fixedCalculator()

	exact := c.setMultiplier(models.CardQuery{SetName: "Topps Chrome"})
	keyword := c.setMultiplier(models.CardQuery{SetName: "2003 Topps Chrome Refractors"})
	unknown := c.setMultiplier(models.CardQuery{SetName: "Some Obscure Set"})

	assert.Equal(t, 2.5, exact)
	assert.Equal(t, 2.5, keyword)
	assert.Equal(t, 1.0, unknown)
}

func TestSetMultiplierYearQualifiedFormWinsFirst(t *testing.T) {
	tables := DefaultTables()
	tables.Sets["2003 topps chrome"] = 9.0

	c := NewCalculator(tables)
	mult := c.setMultiplier(models.CardQuery{Year: "2003", SetName: "Topps Chrome"})
	assert.Equal(t, 9.0, mult)

	// without the year the plain set row still applies
	mult = c.setMultiplier(models.CardQuery{SetName: "Topps Chrome"})
	assert.Equal(t, 2.5, mult)
}

func TestEraMultiplier(t *testing.T) {
	c := fixedCalculator()

	assert.Equal(t, 2.0, c.eraMultiplier("1975"))
	assert.Equal(t, 1.5, c.eraMultiplier("1986"))
	assert.Equal(t, 1.2, c.eraMultiplier("1996"))
	assert.Equal(t, 1.0, c.eraMultiplier("2015"))
	assert.Equal(t, 1.1, c.eraMultiplier("2025")) // recent boost
	assert.Equal(t, 1.0, c.eraMultiplier(""))
	assert.Equal(t, 1.0, c.eraMultiplier("junk"))
}

func TestSearchSuggestion(t *testing.T) {
	q := models.CardQuery{Player: "LeBron James", Year: "2003", SetName: "Topps Chrome"}

	assert.Equal(t, "2003 Topps Chrome LeBron James PSA 10 sold", searchSuggestion(q, "PSA 10"))
	assert.Equal(t, "2003 Topps Chrome LeBron James sold", searchSuggestion(q, "RAW"))
	assert.Equal(t, "card sold", searchSuggestion(models.CardQuery{}, "RAW"))
}
