package quality

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
)

// =============================================================================
// COMPLETENESS ANALYZER
// =============================================================================

// FieldCompleteness is the presence rate of one field across all items
type FieldCompleteness struct {
	Field    string  `json:"field"`
	Required bool    `json:"required"`
	Present  int     `json:"present"`
	Total    int     `json:"total"`
	Rate     float64 `json:"rate"`
}

// CompletenessResult carries the score plus the per-field and per-item
// breakdowns the recommendation pass reuses
type CompletenessResult struct {
	Score      float64
	Findings   []QualityFinding
	FieldStats []FieldCompleteness
	ItemScores map[string]float64
}

// AnalyzeCompleteness scores field presence. Required fields contribute 80%
// of the score and recommended fields 20%, both at the collection level and
// per item. An empty collection scores 0.0 with a single critical finding.
func AnalyzeCompleteness(items []POAMItem, cfg QualityConfig) CompletenessResult {
	result := CompletenessResult{ItemScores: make(map[string]float64)}

	if len(items) == 0 {
		result.Score = 0.0
		result.Findings = append(result.Findings, QualityFinding{
			ID:               uuid.NewString(),
			Severity:         SeverityCritical,
			Category:         CategoryCompleteness,
			Description:      "no POA&M items found in the document",
			ImpactAssessment: "an empty plan cannot demonstrate remediation progress",
			Recommendation:   "verify the POA&M worksheet was detected and parsed",
		})
		return result
	}

	requiredPresent, requiredTotal := 0, 0
	recommendedPresent, recommendedTotal := 0, 0

	for _, field := range cfg.RequiredFields {
		stat := FieldCompleteness{Field: field, Required: true, Total: len(items)}
		for i := range items {
			if fieldPresent(&items[i], field) {
				stat.Present++
			}
		}
		stat.Rate = float64(stat.Present) / float64(stat.Total)
		requiredPresent += stat.Present
		requiredTotal += stat.Total
		result.FieldStats = append(result.FieldStats, stat)

		if stat.Rate < 1.0 {
			result.Findings = append(result.Findings, QualityFinding{
				ID:       uuid.NewString(),
				Severity: requiredFieldSeverity(stat.Rate),
				Category: CategoryCompleteness,
				Description: fmt.Sprintf("required field %q is missing from %d of %d items",
					field, stat.Total-stat.Present, stat.Total),
				Recommendation: fmt.Sprintf("populate %q for every item", field),
			})
		}
	}

	for _, field := range cfg.RecommendedFields {
		stat := FieldCompleteness{Field: field, Total: len(items)}
		for i := range items {
			if fieldPresent(&items[i], field) {
				stat.Present++
			}
		}
		stat.Rate = float64(stat.Present) / float64(stat.Total)
		recommendedPresent += stat.Present
		recommendedTotal += stat.Total
		result.FieldStats = append(result.FieldStats, stat)
	}

	result.Score = weightedCompleteness(
		ratio(requiredPresent, requiredTotal),
		ratio(recommendedPresent, recommendedTotal),
	)

	var incomplete []string
	itemTotal := 0.0
	for i := range items {
		item := &items[i]
		score := weightedCompleteness(
			fieldRatio(item, cfg.RequiredFields),
			fieldRatio(item, cfg.RecommendedFields),
		)
		result.ItemScores[itemLabel(item)] = score
		itemTotal += score
		if score < 0.5 {
			incomplete = append(incomplete, itemLabel(item))
		}
	}

	if len(incomplete) > 0 {
		sort.Strings(incomplete)
		result.Findings = append(result.Findings, QualityFinding{
			ID:             uuid.NewString(),
			Severity:       SeverityHigh,
			Category:       CategoryCompleteness,
			Description:    fmt.Sprintf("%d items are less than half complete", len(incomplete)),
			AffectedItems:  incomplete,
			Recommendation: "complete the missing required fields on the listed items",
		})
	}

	if avg := itemTotal / float64(len(items)); avg < 0.8 {
		result.Findings = append(result.Findings, QualityFinding{
			ID:          uuid.NewString(),
			Severity:    SeverityMedium,
			Category:    CategoryCompleteness,
			Description: fmt.Sprintf("average item completeness is %.2f, below 0.80", avg),
		})
	}

	return result
}

// weightedCompleteness applies the 80/20 required/recommended split
func weightedCompleteness(requiredRate, recommendedRate float64) float64 {
	return requiredRate*0.8 + recommendedRate*0.2
}

func requiredFieldSeverity(rate float64) FindingSeverity {
	switch {
	case rate < 0.5:
		return SeverityCritical
	case rate < 0.8:
		return SeverityHigh
	}
	return SeverityMedium
}

func fieldRatio(item *POAMItem, fields []string) float64 {
	if len(fields) == 0 {
		return 1.0
	}
	present := 0
	for _, field := range fields {
		if fieldPresent(item, field) {
			present++
		}
	}
	return float64(present) / float64(len(fields))
}

func ratio(numerator, denominator int) float64 {
	if denominator == 0 {
		return 1.0
	}
	return float64(numerator) / float64(denominator)
}
