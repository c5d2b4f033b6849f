package pricing

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"cardvault/pkg/models"
)

const (
	algorithmBaseConfidence = 0.70
	algorithmMinConfidence  = 0.10
	algorithmMaxConfidence  = 0.75
	priceMargin             = 0.30
)

var serialDenominatorRe = regexp.MustCompile(`/(\d+)`)

// Calculator prices cards the verified store has never seen: a category
// base price scaled by grade, player tier, rarity, set prestige, and
// print era, with a confidence score that degrades as query detail
// thins out.
type Calculator struct {
	tables *Tables
	now    func() time.Time
}

func NewCalculator(tables *Tables) *Calculator {
	if tables == nil {
		tables = DefaultTables()
	}
	return &Calculator{tables: tables, now: time.Now}
}

// Estimate never fails; an empty query still produces a priced estimate,
// just one with confidence near the floor.
func (c *Calculator) Estimate(q models.CardQuery, grade string) models.PriceEstimate {
	grade = models.NormalizeGrade(grade)

	base := c.basePrice(q.Category)
	gradeMult := c.gradeMultiplier(grade)
	tier, tierMult := c.playerTier(q)
	rarityMult := c.rarityMultiplier(q)
	setMult := c.setMultiplier(q)
	eraMult := c.eraMultiplier(q.Year)

	avg := base * gradeMult * tierMult * rarityMult * setMult * eraMult
	min := round2(avg * (1 - priceMargin))
	max := round2(avg * (1 + priceMargin))
	avg = round2(avg)
	if min < 1 {
		min = 1
	}
	if max < 2 {
		max = 2
	}

	confidence := c.confidence(q, tier, rarityMult)

	return models.PriceEstimate{
		Min:              &min,
		Max:              &max,
		Avg:              &avg,
		Confidence:       confidence,
		Source:           models.SourceAlgorithm,
		Grade:            grade,
		Currency:         "USD",
		Notes:            "algorithmic estimate, verify against recent comps before buying or selling",
		SearchSuggestion: searchSuggestion(q, grade),
	}
}

func (c *Calculator) basePrice(category string) float64 {
	key := models.NormalizeKey(category)
	if price, ok := c.tables.BasePrices[key]; ok {
		return price
	}
	return c.tables.BasePrices["default"]
}

// gradeMultiplier prices unconfigured grade labels at a neutral 1.0 so
// an exotic slab label degrades gracefully instead of erroring.
func (c *Calculator) gradeMultiplier(grade string) float64 {
	if mult, ok := c.tables.Grades[grade]; ok {
		return mult
	}
	return 1.0
}

// playerTier scans the tier lists for the queried player. A category with
// its own lists narrows the search to them; a missing or unlisted category
// searches every category in stable order. Tiers are checked from most to
// least valuable so a name listed twice resolves to its best tier.
func (c *Calculator) playerTier(q models.CardQuery) (string, float64) {
	player := strings.ToLower(strings.TrimSpace(q.Player))
	if player == "" {
		return "unknown", c.tables.TierMultipliers["unknown"]
	}

	category := models.NormalizeKey(q.Category)
	var categories []string
	if _, ok := c.tables.PlayerTiers[category]; ok {
		categories = []string{category}
	} else {
		for cat := range c.tables.PlayerTiers {
			categories = append(categories, cat)
		}
		sort.Strings(categories)
	}

	for _, tier := range tierOrder {
		for _, cat := range categories {
			for _, name := range c.tables.PlayerTiers[cat][tier] {
				if strings.Contains(player, name) || strings.Contains(name, player) {
					return tier, c.tables.TierMultipliers[tier]
				}
			}
		}
	}
	return "unknown", c.tables.TierMultipliers["unknown"]
}

// rarityMultiplier combines parallel, serial numbering, rookie,
// autograph, and memorabilia signals. Multiplicative stacking over all
// of them produces absurd prices, so each group contributes its single
// strongest match and only the groups multiply.
func (c *Calculator) rarityMultiplier(q models.CardQuery) float64 {
	mult := c.tables.Rarity["base"]
	if mult == 0 {
		mult = 1.0
	}

	if parallel := strings.ToLower(q.Parallel); parallel != "" {
		best := 0.0
		for keyword, value := range c.tables.Rarity {
			if strings.Contains(parallel, strings.ReplaceAll(keyword, "_", " ")) && value > best {
				best = value
			}
		}
		if best > 0 {
			mult *= best
		}
	}

	if serial := c.serialMultiplier(q.SerialNumber); serial > 0 {
		mult *= serial
	}

	switch {
	case q.Rookie && q.Autograph:
		mult *= c.tables.Rarity["auto_rookie"]
	case q.Autograph:
		mult *= c.tables.Rarity["auto"]
	case q.Rookie:
		mult *= c.tables.Rarity["rookie"]
	}

	if q.Memorabilia != "" {
		memo := strings.ToLower(q.Memorabilia)
		switch {
		case strings.Contains(memo, "logoman"):
			mult *= c.tables.Rarity["logoman"]
		case strings.Contains(memo, "patch"):
			mult *= c.tables.Rarity["patch"]
		case strings.Contains(memo, "jersey"):
			mult *= c.tables.Rarity["jersey"]
		}
	}

	return mult
}

// serialMultiplier maps a print run like "23/99" onto the numbered
// rarity brackets. The final bracket has no ceiling: any numbered run is
// worth more than an unnumbered card.
func (c *Calculator) serialMultiplier(serial string) float64 {
	if serial == "" {
		return 0
	}
	match := serialDenominatorRe.FindStringSubmatch(serial)
	if match == nil {
		return 0
	}
	run, err := strconv.Atoi(match[1])
	if err != nil || run <= 0 {
		return 0
	}

	switch {
	case run == 1:
		return c.tables.Rarity["1/1"]
	case run <= 5:
		return c.tables.Rarity["numbered_5"]
	case run <= 10:
		return c.tables.Rarity["numbered_10"]
	case run <= 25:
		return c.tables.Rarity["numbered_25"]
	case run <= 50:
		return c.tables.Rarity["numbered_50"]
	case run <= 99:
		return c.tables.Rarity["numbered_99"]
	case run <= 199:
		return c.tables.Rarity["numbered_199"]
	case run <= 299:
		return c.tables.Rarity["numbered_299"]
	case run <= 499:
		return c.tables.Rarity["numbered_499"]
	default:
		return c.tables.Rarity["numbered_999"]
	}
}

// setMultiplier tries exact table hits first, then falls back to brand
// keywords so "2003 Topps Chrome Refractors" still lands on the chrome
// prestige bump.
func (c *Calculator) setMultiplier(q models.CardQuery) float64 {
	set := strings.ToLower(strings.TrimSpace(q.SetName))
	if set == "" {
		return 1.0
	}

	// year-qualified form first so "1986 fleer" outranks a plain "fleer" row
	var candidates []string
	if q.Year != "" {
		candidates = append(candidates, strings.ToLower(q.Year+" "+set))
	}
	candidates = append(candidates, set)
	if q.Manufacturer != "" {
		candidates = append(candidates, strings.ToLower(strings.TrimSpace(q.Manufacturer)+" "+set))
	}
	for _, candidate := range candidates {
		if mult, ok := c.tables.Sets[candidate]; ok {
			return mult
		}
	}

	keywords := []struct {
		keyword string
		table   string
	}{
		{"national treasures", "panini national treasures"},
		{"flawless", "panini flawless"},
		{"immaculate", "panini immaculate"},
		{"prizm", "panini prizm"},
		{"chrome", "topps chrome"},
		{"select", "panini select"},
		{"mosaic", "panini mosaic"},
		{"young guns", "upper deck young guns"},
		{"1st edition", "base set 1st edition"},
	}
	for _, entry := range keywords {
		if strings.Contains(set, entry.keyword) {
			if mult, ok := c.tables.Sets[entry.table]; ok {
				return mult
			}
		}
	}
	return 1.0
}

func (c *Calculator) eraMultiplier(yearStr string) float64 {
	year, err := strconv.Atoi(strings.TrimSpace(yearStr))
	if err != nil || year <= 0 {
		return 1.0
	}
	for _, band := range c.tables.Vintage {
		if year < band.Before {
			return band.Multiplier
		}
	}
	if c.now().Year()-year <= c.tables.RecentYears {
		return c.tables.RecentBoost
	}
	return 1.0
}

// confidence starts from the algorithmic base and loses points for each
// signal the model had to guess at. The result always stays inside the
// algorithmic band so callers can tell model output from verified data
// by score alone.
func (c *Calculator) confidence(q models.CardQuery, tier string, rarityMult float64) float64 {
	confidence := algorithmBaseConfidence
	if tier == "unknown" {
		confidence -= 0.15
	}
	if rarityMult > 5.0 {
		confidence -= 0.10
	}
	if strings.TrimSpace(q.Year) == "" {
		confidence -= 0.10
	}
	if strings.TrimSpace(q.SetName) == "" {
		confidence -= 0.10
	}
	if strings.TrimSpace(q.Player) == "" {
		confidence -= 0.15
	}
	if strings.TrimSpace(q.CardNumber) != "" {
		confidence += 0.05
	}
	if strings.TrimSpace(q.Manufacturer) != "" {
		confidence += 0.05
	}

	return clamp(confidence, algorithmMinConfidence, algorithmMaxConfidence)
}

func searchSuggestion(q models.CardQuery, grade string) string {
	parts := make([]string, 0, 5)
	if q.Year != "" {
		parts = append(parts, q.Year)
	}
	if q.SetName != "" {
		parts = append(parts, q.SetName)
	}
	if q.Player != "" {
		parts = append(parts, q.Player)
	} else {
		parts = append(parts, "card")
	}
	if grade != "" && grade != models.GradeRaw {
		parts = append(parts, grade)
	}
	parts = append(parts, "sold")
	return strings.Join(parts, " ")
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Describe renders the multiplier breakdown for CLI debugging.
func (c *Calculator) Describe(q models.CardQuery, grade string) string {
	grade = models.NormalizeGrade(grade)
	tier, tierMult := c.playerTier(q)
	return fmt.Sprintf("base=%.2f grade[%s]=%.2f tier[%s]=%.2f rarity=%.2f set=%.2f era=%.2f",
		c.basePrice(q.Category), grade, c.gradeMultiplier(grade), tier, tierMult,
		c.rarityMultiplier(q), c.setMultiplier(q), c.eraMultiplier(q.Year))
}
