package quality

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// CHECKER
// =============================================================================

// Checker orchestrates the four analyzers
type Checker struct {
	config QualityConfig
}

// NewChecker creates a checker with the given configuration
func NewChecker(config QualityConfig) *Checker {
	return &Checker{config: config}
}

// NewDefaultChecker creates a checker with the FedRAMP defaults
func NewDefaultChecker() *Checker {
	return NewChecker(DefaultQualityConfig())
}

// Assess runs all analyzers over the item collection. The overall score is
// the weight-blended sum of the four dimension scores; findings from every
// analyzer are merged, and recommendations are derived afterward.
func (c *Checker) Assess(items []POAMItem) *QualityAssessment {
	completeness := AnalyzeCompleteness(items, c.config)
	accuracyScore, accuracyFindings := AnalyzeAccuracy(items, c.config)
	consistencyScore, consistencyFindings := AnalyzeConsistency(items, c.config)
	complianceScore, complianceFindings := AnalyzeCompliance(items, c.config)

	var findings []QualityFinding
	findings = append(findings, completeness.Findings...)
	findings = append(findings, accuracyFindings...)
	findings = append(findings, consistencyFindings...)
	findings = append(findings, complianceFindings...)

	weights := c.config.Weights
	overall := completeness.Score*weights.Completeness +
		accuracyScore*weights.Accuracy +
		consistencyScore*weights.Consistency +
		complianceScore*weights.Compliance

	assessment := &QualityAssessment{
		AssessmentID:      uuid.NewString(),
		Timestamp:         time.Now().UTC(),
		OverallScore:      overall,
		CompletenessScore: completeness.Score,
		AccuracyScore:     accuracyScore,
		ConsistencyScore:  consistencyScore,
		ComplianceScore:   complianceScore,
		Metrics:           buildMetrics(len(items), findings),
		Findings:          findings,
	}
	assessment.Recommendations = c.recommend(completeness, findings)
	return assessment
}

// =============================================================================
// METRICS
// =============================================================================

func buildMetrics(totalItems int, findings []QualityFinding) QualityMetrics {
	metrics := QualityMetrics{
		TotalItems:     totalItems,
		CategoryScores: make(map[FindingCategory]float64, 4),
	}

	penalties := make(map[FindingCategory]float64, 4)
	for _, finding := range findings {
		switch finding.Severity {
		case SeverityCritical, SeverityHigh:
			metrics.ErrorCount++
		case SeverityMedium, SeverityLow:
			metrics.WarningCount++
		}
		penalties[finding.Category] += finding.Severity.Weight() * 0.1
	}

	for _, category := range []FindingCategory{
		CategoryCompleteness, CategoryAccuracy, CategoryConsistency, CategoryCompliance,
	} {
		metrics.CategoryScores[category] = penaltyScore(penalties[category], totalItems)
	}
	return metrics
}

// penaltyScore converts accumulated finding weight into a [0,1] score.
// The penalty is normalized by half the item count so small documents are
// penalized proportionally harder than large ones.
func penaltyScore(penalty float64, totalItems int) float64 {
	if totalItems == 0 {
		if penalty > 0 {
			return 0.0
		}
		return 1.0
	}
	normalized := math.Min(penalty/(float64(totalItems)*0.5), 1.0)
	return math.Max(0.0, 1.0-normalized)
}

// =============================================================================
// RECOMMENDATIONS
// =============================================================================

func (c *Checker) recommend(completeness CompletenessResult, findings []QualityFinding) []QualityRecommendation {
	var recs []QualityRecommendation

	criticalCount := 0
	for _, finding := range findings {
		if finding.Severity == SeverityCritical {
			criticalCount++
		}
	}
	if criticalCount > 0 {
		recs = append(recs, QualityRecommendation{
			ID:       uuid.NewString(),
			Priority: SeverityCritical,
			Category: categoryOfFirstCritical(findings),
			Description: fmt.Sprintf(
				"resolve the %d critical findings before submission", criticalCount),
		})
	}

	if completeness.Score < c.config.MinCompletenessScore {
		recs = append(recs, QualityRecommendation{
			ID:       uuid.NewString(),
			Priority: SeverityHigh,
			Category: CategoryCompleteness,
			Description: fmt.Sprintf(
				"overall completeness %.2f is below the %.2f minimum; fill in missing required fields",
				completeness.Score, c.config.MinCompletenessScore),
		})
	}

	for _, stat := range completeness.FieldStats {
		if !stat.Required || stat.Rate >= 0.8 {
			continue
		}
		priority := SeverityMedium
		if stat.Rate < 0.5 {
			priority = SeverityHigh
		}
		recs = append(recs, QualityRecommendation{
			ID:       uuid.NewString(),
			Priority: priority,
			Category: CategoryCompleteness,
			Description: fmt.Sprintf(
				"field %q is populated on only %.0f%% of items", stat.Field, stat.Rate*100),
		})
	}

	return recs
}

func categoryOfFirstCritical(findings []QualityFinding) FindingCategory {
	for _, finding := range findings {
		if finding.Severity == SeverityCritical {
			return finding.Category
		}
	}
	return CategoryCompleteness
}
