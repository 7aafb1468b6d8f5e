package confidence

import (
	"context"
	"fmt"
	"time"

	"compliance_ingest/pkg/core/fuzzy"
)

// =============================================================================
// FACTORS AND THRESHOLDS
// =============================================================================

// Factor identifies one input to the weighted confidence model
type Factor string

const (
	FactorStringSimilarity      Factor = "string_similarity"
	FactorSemanticSimilarity    Factor = "semantic_similarity"
	FactorHistoricalSuccess     Factor = "historical_success"
	FactorDataTypeCompatibility Factor = "data_type_compatibility"
)

// Semantic similarity and data-type compatibility are fixed placeholders
// until their backends exist; callers see these exact constants, never an
// unexplained default.
const (
	semanticSimilarityStub    = 0.5
	dataTypeCompatibilityStub = 0.8
	neutralHistoricalRate     = 0.5
	unlistedFactorWeight      = 0.1
)

// ThresholdStatus buckets an overall score for policy decisions
type ThresholdStatus string

const (
	HighConfidence    ThresholdStatus = "high_confidence"
	MediumConfidence  ThresholdStatus = "medium_confidence"
	LowConfidence     ThresholdStatus = "low_confidence"
	VeryLowConfidence ThresholdStatus = "very_low_confidence"
)

// Action is the recommended handling for a scored mapping
type Action string

const (
	ActionAutoAccept             Action = "auto_accept"
	ActionAcceptWithConfirmation Action = "accept_with_confirmation"
	ActionManualReview           Action = "manual_review"
)

// Priority ranks how urgently a recommendation needs attention
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// =============================================================================
// CONFIGURATION
// =============================================================================

// ScorerConfig holds factor weights and threshold boundaries
type ScorerConfig struct {
	FactorWeights   map[Factor]float64 `yaml:"factor_weights"`
	HighThreshold   float64            `yaml:"high_threshold"`
	MediumThreshold float64            `yaml:"medium_threshold"`
	LowThreshold    float64            `yaml:"low_threshold"`
}

// DefaultScorerConfig returns the standard weighting
func DefaultScorerConfig() ScorerConfig {
	return ScorerConfig{
		FactorWeights: map[Factor]float64{
			FactorStringSimilarity:      0.3,
			FactorSemanticSimilarity:    0.2,
			FactorHistoricalSuccess:     0.2,
			FactorDataTypeCompatibility: 0.3,
		},
		HighThreshold:   0.9,
		MediumThreshold: 0.7,
		LowThreshold:    0.5,
	}
}

// MappingContext carries document-level information into scoring
type MappingContext struct {
	DocumentType string
	Worksheet    string
}

// =============================================================================
// RESULT TYPES
// =============================================================================

// FactorContribution records one factor's share of the final score
type FactorContribution struct {
	Factor               Factor  `json:"factor"`
	RawScore             float64 `json:"raw_score"`
	Weight               float64 `json:"weight"`
	WeightedContribution float64 `json:"weighted_contribution"`
	Note                 string  `json:"note,omitempty"`
}

// Calculation lets a reviewer reconstruct the overall score by hand
type Calculation struct {
	TotalWeightedScore float64 `json:"total_weighted_score"`
	TotalWeight        float64 `json:"total_weight"`
	FinalScore         float64 `json:"final_score"`
}

// Recommendation is a threshold-driven policy suggestion
type Recommendation struct {
	Action   Action   `json:"action"`
	Priority Priority `json:"priority"`
	Message  string   `json:"message"`
}

// MappingConfidence is the full outcome of scoring one column->field
// candidate. Immutable once produced.
type MappingConfidence struct {
	SourceColumn    string               `json:"source_column"`
	TargetField     string               `json:"target_field"`
	OverallScore    float64              `json:"overall_score"`
	FactorScores    map[Factor]float64   `json:"factor_scores"`
	ThresholdStatus ThresholdStatus      `json:"threshold_status"`
	Recommendations []Recommendation     `json:"recommendations"`
	RiskFactors     []string             `json:"risk_factors,omitempty"`
	Explanation     []FactorContribution `json:"explanation"`
	Calculation     Calculation          `json:"calculation"`
	CalculationTime time.Duration        `json:"calculation_time_ns"`
}

// =============================================================================
// SCORER
// =============================================================================

// Scorer combines the weighted factors into a MappingConfidence
type Scorer struct {
	config  ScorerConfig
	matcher *fuzzy.Matcher
	history *HistoryStore
}

// NewScorer creates a scorer over the given history store
func NewScorer(config ScorerConfig, history *HistoryStore) *Scorer {
	if history == nil {
		history = NewHistoryStore()
	}
	return &Scorer{
		config:  config,
		matcher: fuzzy.NewDefaultMatcher(),
		history: history,
	}
}

// NewDefaultScorer uses the default configuration and a fresh history store
func NewDefaultScorer() *Scorer {
	return NewScorer(DefaultScorerConfig(), nil)
}

// History exposes the underlying store so callers can record outcomes
func (s *Scorer) History() *HistoryStore {
	return s.history
}

// CalculateConfidence scores one proposed column->field mapping
func (s *Scorer) CalculateConfidence(sourceColumn, targetField string, mctx MappingContext) MappingConfidence {
	start := time.Now()

	factorScores := map[Factor]float64{
		FactorStringSimilarity:      s.matcher.Match(sourceColumn, targetField).Score,
		FactorSemanticSimilarity:    semanticSimilarityStub,
		FactorDataTypeCompatibility: dataTypeCompatibilityStub,
	}
	historyNote := "no history; neutral default"
	if rate, ok := s.history.SuccessRate(sourceColumn, targetField, mctx.DocumentType); ok {
		factorScores[FactorHistoricalSuccess] = rate
		historyNote = ""
	} else {
		factorScores[FactorHistoricalSuccess] = neutralHistoricalRate
	}

	explanation := make([]FactorContribution, 0, len(factorScores))
	totalWeighted := 0.0
	totalWeight := 0.0
	for _, factor := range []Factor{
		FactorStringSimilarity,
		FactorSemanticSimilarity,
		FactorHistoricalSuccess,
		FactorDataTypeCompatibility,
	} {
		score := factorScores[factor]
		weight, ok := s.config.FactorWeights[factor]
		if !ok {
			weight = unlistedFactorWeight
		}
		contribution := FactorContribution{
			Factor:               factor,
			RawScore:             score,
			Weight:               weight,
			WeightedContribution: score * weight,
		}
		switch factor {
		case FactorSemanticSimilarity:
			contribution.Note = "placeholder constant pending semantic backend"
		case FactorDataTypeCompatibility:
			contribution.Note = "placeholder constant pending type inference"
		case FactorHistoricalSuccess:
			contribution.Note = historyNote
		}
		explanation = append(explanation, contribution)
		totalWeighted += contribution.WeightedContribution
		totalWeight += weight
	}

	overall := 0.0
	if totalWeight > 0 {
		overall = totalWeighted / totalWeight
	}

	status := s.bucket(overall)
	result := MappingConfidence{
		SourceColumn:    sourceColumn,
		TargetField:     targetField,
		OverallScore:    overall,
		FactorScores:    factorScores,
		ThresholdStatus: status,
		Recommendations: []Recommendation{recommendationFor(status, sourceColumn, targetField)},
		RiskFactors:     riskFactors(factorScores),
		Explanation:     explanation,
		Calculation: Calculation{
			TotalWeightedScore: totalWeighted,
			TotalWeight:        totalWeight,
			FinalScore:         overall,
		},
		CalculationTime: time.Since(start),
	}
	return result
}

// CalculateBatch scores many candidates, checking for cancellation between
// columns. A cancelled context returns the scores computed so far plus the
// context error.
func (s *Scorer) CalculateBatch(ctx context.Context, sourceColumns []string, targetField string, mctx MappingContext) ([]MappingConfidence, error) {
	results := make([]MappingConfidence, 0, len(sourceColumns))
	for _, column := range sourceColumns {
		if err := ctx.Err(); err != nil {
			return results, fmt.Errorf("batch scoring cancelled after %d of %d columns: %w",
				len(results), len(sourceColumns), err)
		}
		results = append(results, s.CalculateConfidence(column, targetField, mctx))
	}
	return results, nil
}

func (s *Scorer) bucket(score float64) ThresholdStatus {
	switch {
	case score >= s.config.HighThreshold:
		return HighConfidence
	case score >= s.config.MediumThreshold:
		return MediumConfidence
	case score >= s.config.LowThreshold:
		return LowConfidence
	default:
		return VeryLowConfidence
	}
}

func recommendationFor(status ThresholdStatus, source, target string) Recommendation {
	switch status {
	case HighConfidence:
		return Recommendation{
			Action:   ActionAutoAccept,
			Priority: PriorityLow,
			Message:  fmt.Sprintf("mapping %q -> %q can be accepted automatically", source, target),
		}
	case MediumConfidence:
		return Recommendation{
			Action:   ActionAcceptWithConfirmation,
			Priority: PriorityMedium,
			Message:  fmt.Sprintf("mapping %q -> %q should be confirmed before acceptance", source, target),
		}
	default:
		return Recommendation{
			Action:   ActionManualReview,
			Priority: PriorityHigh,
			Message:  fmt.Sprintf("mapping %q -> %q requires manual review", source, target),
		}
	}
}

func riskFactors(scores map[Factor]float64) []string {
	var risks []string
	if scores[FactorStringSimilarity] < 0.5 {
		risks = append(risks, "low string similarity between column and field names")
	}
	if scores[FactorHistoricalSuccess] < 0.4 {
		risks = append(risks, "mapping has a poor historical acceptance record")
	}
	return risks
}
