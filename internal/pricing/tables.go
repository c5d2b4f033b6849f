// Package pricing implements the estimation pipeline: verified lookup,
// fuzzy fallback, and the multiplier model that prices cards nothing in
// the store matches.
package pricing

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"cardvault/pkg/models"
)

// VintageBand applies a multiplier to cards printed before a cutoff
// year. Bands are checked in order and the first match wins.
type VintageBand struct {
	Before     int     `json:"before"`
	Multiplier float64 `json:"multiplier"`
}

// Tables holds every multiplier the algorithmic model consults. All of
// them can be overridden from a JSON file; DefaultTables supplies the
// built-in values.
type Tables struct {
	Grades          map[string]float64             `json:"grades"`
	TierMultipliers map[string]float64             `json:"tier_multipliers"`
	PlayerTiers     map[string]map[string][]string `json:"player_tiers"`
	Rarity          map[string]float64             `json:"rarity"`
	Sets            map[string]float64             `json:"sets"`
	Vintage         []VintageBand                  `json:"vintage"`
	RecentYears     int                            `json:"recent_years"`
	RecentBoost     float64                        `json:"recent_boost"`
	BasePrices      map[string]float64             `json:"base_prices"`
}

// tierOrder lists tiers from most to least valuable. Validation and the
// calculator both rely on this being the closed set of tier names.
var tierOrder = []string{"goat", "legend", "superstar", "star", "starter", "role_player", "bench", "bust"}

func DefaultTables() *Tables {
	return &Tables{
		Grades: map[string]float64{
			"PSA 10":  8.0,
			"PSA 9":   2.5,
			"PSA 8":   1.0,
			"PSA 7":   0.6,
			"PSA 6":   0.4,
			"PSA 5":   0.3,
			"BGS 10":  10.0,
			"BGS 9.5": 5.0,
			"BGS 9":   2.0,
			"SGC 10":  6.0,
			"CGC 10":  6.0,
			"RAW":     0.5,
		},
		TierMultipliers: map[string]float64{
			"goat":        10.0,
			"legend":      6.0,
			"superstar":   4.0,
			"star":        2.0,
			"starter":     1.2,
			"role_player": 1.0,
			"bench":       0.7,
			"bust":        0.3,
			"unknown":     0.5,
		},
		PlayerTiers: map[string]map[string][]string{
			"basketball": {
				"goat":      {"michael jordan", "lebron james"},
				"legend":    {"kobe bryant", "magic johnson", "larry bird", "kareem abdul-jabbar", "shaquille o'neal", "tim duncan"},
				"superstar": {"stephen curry", "kevin durant", "giannis antetokounmpo", "luka doncic", "nikola jokic", "victor wembanyama"},
				"star":      {"jayson tatum", "anthony edwards", "ja morant", "zion williamson", "devin booker"},
			},
			"football": {
				"goat":      {"tom brady", "jerry rice"},
				"legend":    {"joe montana", "peyton manning", "patrick mahomes", "barry sanders", "lawrence taylor"},
				"superstar": {"josh allen", "joe burrow", "justin jefferson", "lamar jackson"},
				"star":      {"ceedee lamb", "jamarr chase", "c.j. stroud", "caleb williams"},
			},
			"baseball": {
				"goat":      {"babe ruth", "mickey mantle"},
				"legend":    {"willie mays", "hank aaron", "ken griffey jr", "derek jeter", "shohei ohtani"},
				"superstar": {"mike trout", "aaron judge", "mookie betts", "ronald acuna jr"},
				"star":      {"juan soto", "bobby witt jr", "julio rodriguez", "elly de la cruz"},
			},
			"hockey": {
				"goat":      {"wayne gretzky"},
				"legend":    {"mario lemieux", "bobby orr", "sidney crosby", "alex ovechkin"},
				"superstar": {"connor mcdavid", "auston matthews", "nathan mackinnon"},
				"star":      {"connor bedard", "jack hughes", "cale makar"},
			},
			"soccer": {
				"goat":      {"pele", "lionel messi", "diego maradona"},
				"legend":    {"cristiano ronaldo", "ronaldinho", "zinedine zidane"},
				"superstar": {"kylian mbappe", "erling haaland", "jude bellingham"},
				"star":      {"lamine yamal", "vinicius jr", "bukayo saka"},
			},
			"pokemon": {
				"goat":      {"charizard"},
				"legend":    {"pikachu", "blastoise", "venusaur", "mewtwo"},
				"superstar": {"mew", "lugia", "rayquaza", "umbreon"},
				"star":      {"gengar", "eevee", "gyarados", "dragonite"},
			},
		},
		Rarity: map[string]float64{
			"base":         1.0,
			"refractor":    3.0,
			"prizm":        2.5,
			"holo":         2.0,
			"reverse_holo": 1.5,
			"silver":       3.0,
			"gold":         8.0,
			"black":        15.0,
			"superfractor": 25.0,
			"1/1":          50.0,
			"numbered_5":   20.0,
			"numbered_10":  12.0,
			"numbered_25":  8.0,
			"numbered_50":  5.0,
			"numbered_99":  3.5,
			"numbered_199": 2.5,
			"numbered_299": 2.0,
			"numbered_499": 1.5,
			"numbered_999": 1.3,
			"rookie":       2.0,
			"auto":         5.0,
			"auto_rookie":  8.0,
			"patch":        4.0,
			"jersey":       2.5,
			"logoman":      30.0,
		},
		Sets: map[string]float64{
			"panini national treasures": 5.0,
			"panini flawless":           6.0,
			"panini immaculate":         4.0,
			"topps chrome":              2.5,
			"topps finest":              2.0,
			"panini prizm":              2.0,
			"panini select":             1.8,
			"panini mosaic":             1.5,
			"panini donruss optic":      1.5,
			"upper deck young guns":     2.5,
			"1986 fleer":                8.0,
			"base set":                  3.0,
			"base set 1st edition":      10.0,
			"topps":                     1.0,
			"panini donruss":            1.0,
			"bowman chrome":             2.2,
		},
		Vintage: []VintageBand{
			{Before: 1980, Multiplier: 2.0},
			{Before: 1990, Multiplier: 1.5},
			{Before: 2000, Multiplier: 1.2},
		},
		RecentYears: 2,
		RecentBoost: 1.1,
		BasePrices: map[string]float64{
			"basketball": 15.0,
			"football":   12.0,
			"baseball":   10.0,
			"hockey":     8.0,
			"soccer":     12.0,
			"pokemon":    20.0,
			"mtg":        15.0,
			"yugioh":     10.0,
			"default":    10.0,
		},
	}
}

// LoadTables reads a JSON override file layered on top of the defaults.
// Sections absent from the file keep their built-in values.
func LoadTables(path string) (*Tables, error) {
	tables := DefaultTables()
	if path == "" {
		return tables, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read tables file: %w", err)
	}
	if err := json.Unmarshal(data, tables); err != nil {
		return nil, fmt.Errorf("failed to parse tables file %s: %w", path, err)
	}
	if err := tables.Validate(); err != nil {
		return nil, fmt.Errorf("invalid tables file %s: %w", path, err)
	}
	return tables, nil
}

// Validate rejects tables that name grades or tiers outside the closed
// vocabularies. Typos in an override file fail loudly at startup instead
// of silently pricing every card through the fallback paths.
func (t *Tables) Validate() error {
	for grade := range t.Grades {
		if !models.KnownGrade(grade) {
			return fmt.Errorf("unknown grade %q in grade multipliers", grade)
		}
	}

	knownTiers := make(map[string]bool, len(tierOrder)+1)
	for _, tier := range tierOrder {
		knownTiers[tier] = true
	}
	knownTiers["unknown"] = true

	for tier := range t.TierMultipliers {
		if !knownTiers[tier] {
			return fmt.Errorf("unknown player tier %q in tier multipliers", tier)
		}
	}
	for category, tiers := range t.PlayerTiers {
		for tier := range tiers {
			if !knownTiers[tier] {
				return fmt.Errorf("unknown player tier %q in category %q", tier, category)
			}
		}
	}

	for _, mult := range t.Grades {
		if mult <= 0 {
			return fmt.Errorf("grade multipliers must be positive")
		}
	}
	if t.RecentYears < 0 {
		return fmt.Errorf("recent_years must not be negative")
	}
	return nil
}

// GradeKeys returns the configured grade names in a stable order.
func (t *Tables) GradeKeys() []string {
	keys := make([]string, 0, len(t.Grades))
	for grade := range t.Grades {
		keys = append(keys, grade)
	}
	sort.Strings(keys)
	return keys
}
