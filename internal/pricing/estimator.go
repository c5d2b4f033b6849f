package pricing

import (
	"fmt"

	"cardvault/internal/store"
	"cardvault/pkg/models"
)

const (
	// minDisplayConfidence gates every tier uniformly: estimates below it
	// come back as unavailable rather than as a low-quality price.
	minDisplayConfidence = 0.50

	fuzzyConfidenceCap = 0.75

	defaultGradingCost     = 50.0
	defaultProfitThreshold = 100.0
)

// Estimator runs the tiered pipeline: exact verified lookup, then fuzzy
// match against the store, then the multiplier model. It never returns
// an error for a card it cannot price; that outcome is an unavailable
// estimate.
type Estimator struct {
	store *store.Store
	calc  *Calculator

	gradingCost     float64
	profitThreshold float64
}

func NewEstimator(st *store.Store, calc *Calculator) *Estimator {
	return &Estimator{
		store:           st,
		calc:            calc,
		gradingCost:     defaultGradingCost,
		profitThreshold: defaultProfitThreshold,
	}
}

// Estimate prices one card at one grade.
func (e *Estimator) Estimate(q models.CardQuery, grade string) models.PriceEstimate {
	grade = models.NormalizeGrade(grade)

	if rec, ok := e.store.Lookup(q.Key()); ok {
		if est, ok := verifiedEstimate(rec, grade, rec.Confidence, ""); ok {
			return e.gate(q, est)
		}
	}

	if match, ok := e.store.FindFuzzy(q); ok {
		confidence := match.Record.Confidence * match.Score
		if confidence > fuzzyConfidenceCap {
			confidence = fuzzyConfidenceCap
		}
		note := fmt.Sprintf("based on similar card: %s", match.Record.Name)
		if est, ok := verifiedEstimate(match.Record, grade, confidence, note); ok {
			return e.gate(q, est)
		}
	}

	return e.gate(q, e.calc.Estimate(q, grade))
}

// EstimateAll prices the card across the standard grade ladder.
func (e *Estimator) EstimateAll(q models.CardQuery) map[string]models.PriceEstimate {
	estimates := make(map[string]models.PriceEstimate, len(models.StandardGrades))
	for _, grade := range models.StandardGrades {
		estimates[grade] = e.Estimate(q, grade)
	}
	return estimates
}

// GradingReport compares the raw price against the top slab grade and
// reports whether paying for grading plausibly pays off. The analysis is
// omitted when either end of the comparison has no usable price.
func (e *Estimator) GradingReport(q models.CardQuery) models.GradingReport {
	estimates := e.EstimateAll(q)
	report := models.GradingReport{Estimates: estimates}

	raw, rawOK := estimates[models.GradeRaw]
	top, topOK := estimates["PSA 10"]
	if !rawOK || !topOK || !raw.Priced() || !top.Priced() {
		return report
	}

	profit := *top.Avg - *raw.Avg - e.gradingCost
	report.Analysis = &models.GradingAnalysis{
		CostToGrade:     e.gradingCost,
		PotentialProfit: round2(profit),
		WorthGrading:    profit > e.profitThreshold,
	}
	return report
}

// gate enforces the uniform confidence floor on every pipeline tier.
func (e *Estimator) gate(q models.CardQuery, est models.PriceEstimate) models.PriceEstimate {
	if est.Confidence >= minDisplayConfidence {
		return est
	}
	return models.PriceEstimate{
		Confidence:       0,
		Source:           models.SourceUnavailable,
		Grade:            est.Grade,
		Currency:         "USD",
		Notes:            "not enough signal for a reliable estimate, check recent sold listings",
		SearchSuggestion: searchSuggestion(q, est.Grade),
	}
}

// verifiedEstimate builds an estimate from a store record, if the record
// prices the requested grade.
func verifiedEstimate(rec models.VerifiedPriceRecord, grade string, confidence float64, note string) (models.PriceEstimate, bool) {
	band, ok := rec.Prices[grade]
	if !ok {
		return models.PriceEstimate{}, false
	}

	min, max, avg := band.Min, band.Max, band.Avg
	if avg == 0 {
		avg = round2((min + max) / 2)
	}
	notes := rec.Notes
	if note != "" {
		notes = note
	}
	return models.PriceEstimate{
		Min:          &min,
		Max:          &max,
		Avg:          &avg,
		Confidence:   confidence,
		Source:       models.SourceVerified,
		Grade:        grade,
		Currency:     "USD",
		LastVerified: band.LastVerified,
		Notes:        notes,
	}, true
}
