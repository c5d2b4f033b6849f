package models

// CardQuery is the structured identification of a single card as produced
// by an upstream identification step (AI vision, manual entry, CSV import).
//
// Every field except Category is optional; downstream code must tolerate
// blanks without failing.
type CardQuery struct {
	Category     string `json:"category"`                // "Basketball", "Pokemon", ...
	Player       string `json:"player,omitempty"`        // player or character name
	Year         string `json:"year,omitempty"`          // kept as text; may be absent or junk
	Manufacturer string `json:"manufacturer,omitempty"`  // "Topps", "Panini", ...
	SetName      string `json:"set_name,omitempty"`      // "Topps Chrome", "Base Set", ...
	CardNumber   string `json:"card_number,omitempty"`   // "111", "4/102", ...
	Parallel     string `json:"parallel,omitempty"`      // parallel / subset label, e.g. "Silver Refractor"
	SerialNumber string `json:"serial_number,omitempty"` // print-run fraction, e.g. "23/99"
	Rookie       bool   `json:"rookie,omitempty"`
	Autograph    bool   `json:"autograph,omitempty"`
	Memorabilia  string `json:"memorabilia,omitempty"` // "jersey", "patch", "logoman patch", ...
}

// Key returns the canonical store key for this query.
func (q CardQuery) Key() string {
	return CanonicalKey(q.Year, q.SetName, q.Player, q.CardNumber)
}

// PriceRange is one verified price entry for a specific grade.
type PriceRange struct {
	Min          float64 `json:"min"`
	Max          float64 `json:"max"`
	Avg          float64 `json:"avg"`
	LastVerified string  `json:"last_verified,omitempty"` // "YYYY-MM"
}

// VerifiedPriceRecord is one card in the verified price store. The canonical
// key is the map key in the store document, not a field here.
type VerifiedPriceRecord struct {
	Name       string                `json:"name"`
	Year       int                   `json:"year,omitempty"`
	Set        string                `json:"set,omitempty"`
	CardNumber string                `json:"card_number,omitempty"`
	Players    []string              `json:"players"`
	Category   string                `json:"category,omitempty"`
	Type       string                `json:"type,omitempty"` // "base", "rookie", "auto", ...
	IsRookie   bool                  `json:"is_rookie,omitempty"`
	Prices     map[string]PriceRange `json:"prices"`
	Population map[string]int        `json:"population,omitempty"`
	Confidence float64               `json:"confidence"`
	Source     string                `json:"source,omitempty"`
	Notes      string                `json:"notes,omitempty"`
}

// Estimate sources. Business misses are the Unavailable value, never errors.
const (
	SourceVerified    = "verified"
	SourceAlgorithm   = "algorithm"
	SourceUnavailable = "unavailable"
)

// PriceEstimate is the per-request output of the estimation pipeline.
// Min/Max/Avg are either all set or all nil.
type PriceEstimate struct {
	Min              *float64 `json:"min_price"`
	Max              *float64 `json:"max_price"`
	Avg              *float64 `json:"avg_price"`
	Confidence       float64  `json:"confidence"`
	Source           string   `json:"source"`
	Grade            string   `json:"grade"`
	Currency         string   `json:"currency"`
	LastVerified     string   `json:"last_verified,omitempty"`
	Notes            string   `json:"notes,omitempty"`
	SearchSuggestion string   `json:"search_suggestion,omitempty"`
}

// Priced reports whether the estimate carries a usable price band.
func (e PriceEstimate) Priced() bool {
	return e.Min != nil && e.Max != nil && e.Avg != nil
}

// StoreMetadata is the `_metadata` block of the persisted document.
type StoreMetadata struct {
	Version     string `json:"version"`
	LastUpdated string `json:"last_updated"` // "YYYY-MM-DD"
	Description string `json:"description,omitempty"`
}

// StoreDocument is the full persisted representation of the store:
// one keyed document, rewritten whole on every mutation.
type StoreDocument struct {
	Metadata StoreMetadata                  `json:"_metadata"`
	Cards    map[string]VerifiedPriceRecord `json:"cards"`
}

// SearchResult pairs a canonical key with its record for search listings.
type SearchResult struct {
	Key    string              `json:"key"`
	Record VerifiedPriceRecord `json:"record"`
}

// StaleEntry is one (record, grade) pair whose last verification is older
// than the requested threshold.
type StaleEntry struct {
	Key          string `json:"key"`
	Name         string `json:"name"`
	Grade        string `json:"grade"`
	LastVerified string `json:"last_verified"` // "unknown" when missing/unparsable
	AgeDays      int    `json:"age_days"`
}

// StoreStats summarizes the store contents.
type StoreStats struct {
	TotalCards        int            `json:"total_cards"`
	TotalPriceEntries int            `json:"total_price_entries"`
	Categories        map[string]int `json:"categories"`
}

// GradingAnalysis is the grading-ROI block: what sending the raw card to a
// grader would plausibly return at the top grade.
type GradingAnalysis struct {
	CostToGrade     float64 `json:"cost_to_grade"`
	PotentialProfit float64 `json:"potential_profit"`
	WorthGrading    bool    `json:"worth_grading"`
}

// GradingReport bundles per-grade estimates with the ROI analysis.
// Analysis is nil when either the raw or top-grade estimate has no price.
type GradingReport struct {
	Estimates map[string]PriceEstimate `json:"estimates"`
	Analysis  *GradingAnalysis         `json:"grading_analysis,omitempty"`
}
