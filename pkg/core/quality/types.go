// Package quality - POA&M quality assessment engine
// Runs completeness, accuracy, consistency, and compliance analyzers over a
// collection of POA&M items and aggregates the results into a weighted
// overall score with findings and recommendations.
package quality

import (
	"strings"
	"time"
)

// =============================================================================
// POA&M DOMAIN MODEL
// =============================================================================

// Milestone is one scheduled step within a POA&M item
type Milestone struct {
	UUID          string `json:"uuid,omitempty"`
	Description   string `json:"description"`
	ScheduledDate string `json:"scheduled_date,omitempty"`
	Status        string `json:"status,omitempty"`
}

// POAMItem is one Plan of Action and Milestones entry as extracted from a
// spreadsheet row. Dates stay as raw strings; the analyzers parse them
// through the date chain so format problems surface as findings rather
// than ingestion failures.
type POAMItem struct {
	UUID                    string      `json:"uuid"`
	Title                   string      `json:"title"`
	Description             string      `json:"description"`
	Status                  string      `json:"status"`
	Severity                string      `json:"severity,omitempty"`
	ScheduledCompletionDate string      `json:"scheduled_completion_date,omitempty"`
	ActualCompletionDate    string      `json:"actual_completion_date,omitempty"`
	ResponsibleEntity       string      `json:"responsible_entity,omitempty"`
	ResourcesRequired       string      `json:"resources_required,omitempty"`
	RiskAssessment          string      `json:"risk_assessment,omitempty"`
	Milestones              []Milestone `json:"milestones,omitempty"`
}

// =============================================================================
// FINDINGS
// =============================================================================

// FindingSeverity is ordered Informational < Low < Medium < High < Critical
type FindingSeverity string

const (
	SeverityInformational FindingSeverity = "Informational"
	SeverityLow           FindingSeverity = "Low"
	SeverityMedium        FindingSeverity = "Medium"
	SeverityHigh          FindingSeverity = "High"
	SeverityCritical      FindingSeverity = "Critical"
)

// Weight returns the penalty weight used by category scoring
func (s FindingSeverity) Weight() float64 {
	switch s {
	case SeverityCritical:
		return 5
	case SeverityHigh:
		return 4
	case SeverityMedium:
		return 3
	case SeverityLow:
		return 2
	case SeverityInformational:
		return 1
	}
	return 0
}

// FindingCategory names the analyzer that produced a finding
type FindingCategory string

const (
	CategoryCompleteness FindingCategory = "Completeness"
	CategoryAccuracy     FindingCategory = "Accuracy"
	CategoryConsistency  FindingCategory = "Consistency"
	CategoryCompliance   FindingCategory = "Compliance"
)

// QualityFinding is one detected quality problem
type QualityFinding struct {
	ID               string          `json:"id"`
	Severity         FindingSeverity `json:"severity"`
	Category         FindingCategory `json:"category"`
	Description      string          `json:"description"`
	AffectedItems    []string        `json:"affected_items,omitempty"`
	ImpactAssessment string          `json:"impact_assessment,omitempty"`
	Recommendation   string          `json:"recommendation,omitempty"`
	Location         string          `json:"location,omitempty"`
}

// QualityRecommendation is a prioritized remediation suggestion
type QualityRecommendation struct {
	ID          string          `json:"id"`
	Priority    FindingSeverity `json:"priority"`
	Category    FindingCategory `json:"category"`
	Description string          `json:"description"`
}

// =============================================================================
// ASSESSMENT OUTPUT
// =============================================================================

// QualityMetrics summarizes an assessment numerically. CategoryScores uses
// penalty scoring: each finding subtracts severity_weight x 0.1, normalized
// by total_items x 0.5 and clamped to [0, 1].
type QualityMetrics struct {
	TotalItems     int                         `json:"total_items"`
	ErrorCount     int                         `json:"error_count"`
	WarningCount   int                         `json:"warning_count"`
	CategoryScores map[FindingCategory]float64 `json:"category_scores"`
}

// QualityAssessment is the full engine output for one item collection
type QualityAssessment struct {
	AssessmentID      string                  `json:"assessment_id"`
	Timestamp         time.Time               `json:"timestamp"`
	OverallScore      float64                 `json:"overall_score"`
	CompletenessScore float64                 `json:"completeness_score"`
	AccuracyScore     float64                 `json:"accuracy_score"`
	ConsistencyScore  float64                 `json:"consistency_score"`
	ComplianceScore   float64                 `json:"compliance_score"`
	Metrics           QualityMetrics          `json:"quality_metrics"`
	Findings          []QualityFinding        `json:"findings"`
	Recommendations   []QualityRecommendation `json:"recommendations"`
}

// =============================================================================
// CONFIGURATION
// =============================================================================

// DimensionWeights controls the contribution of each analyzer to the
// overall score
type DimensionWeights struct {
	Completeness float64 `yaml:"completeness"`
	Accuracy     float64 `yaml:"accuracy"`
	Consistency  float64 `yaml:"consistency"`
	Compliance   float64 `yaml:"compliance"`
}

// QualityConfig is a pure value object; no analyzer mutates it
type QualityConfig struct {
	MinCompletenessScore float64          `yaml:"min_completeness_score"`
	MinAccuracyScore     float64          `yaml:"min_accuracy_score"`
	MinConsistencyScore  float64          `yaml:"min_consistency_score"`
	MinComplianceScore   float64          `yaml:"min_compliance_score"`
	MinOverallScore      float64          `yaml:"min_overall_score"`
	Weights              DimensionWeights `yaml:"weights"`
	RequiredFields       []string         `yaml:"required_fields"`
	RecommendedFields    []string         `yaml:"recommended_fields"`
	ValidStatuses        []string         `yaml:"valid_statuses"`
	ValidSeverities      []string         `yaml:"valid_severities"`
	MinTitleLength       int              `yaml:"min_title_length"`
	MinDescriptionLength int              `yaml:"min_description_length"`
}

// DefaultQualityConfig returns the FedRAMP-oriented defaults
func DefaultQualityConfig() QualityConfig {
	return QualityConfig{
		MinCompletenessScore: 0.7,
		MinAccuracyScore:     0.8,
		MinConsistencyScore:  0.9,
		MinComplianceScore:   0.8,
		MinOverallScore:      0.9,
		Weights: DimensionWeights{
			Completeness: 0.3,
			Accuracy:     0.3,
			Consistency:  0.2,
			Compliance:   0.2,
		},
		RequiredFields: []string{
			"uuid", "title", "description", "status", "scheduled_completion_date",
		},
		RecommendedFields: []string{
			"responsible_entity", "resources_required", "milestones",
			"risk_assessment", "actual_completion_date", "severity",
		},
		ValidStatuses:        []string{"Open", "In Progress", "Completed", "Delayed", "Cancelled"},
		ValidSeverities:      []string{"Informational", "Low", "Medium", "High", "Critical"},
		MinTitleLength:       3,
		MinDescriptionLength: 10,
	}
}

// =============================================================================
// FIELD ACCESS
// =============================================================================

// fieldValue resolves a canonical field name to its raw string value; the
// milestones field maps to a non-empty marker so presence checks work
// uniformly.
func fieldValue(item *POAMItem, field string) string {
	switch field {
	case "uuid":
		return item.UUID
	case "title":
		return item.Title
	case "description":
		return item.Description
	case "status":
		return item.Status
	case "severity":
		return item.Severity
	case "scheduled_completion_date":
		return item.ScheduledCompletionDate
	case "actual_completion_date":
		return item.ActualCompletionDate
	case "responsible_entity":
		return item.ResponsibleEntity
	case "resources_required":
		return item.ResourcesRequired
	case "risk_assessment":
		return item.RiskAssessment
	case "milestones":
		if len(item.Milestones) > 0 {
			return "present"
		}
		return ""
	}
	return ""
}

func fieldPresent(item *POAMItem, field string) bool {
	return strings.TrimSpace(fieldValue(item, field)) != ""
}

func containsFold(haystack []string, needle string) bool {
	for _, candidate := range haystack {
		if strings.EqualFold(candidate, needle) {
			return true
		}
	}
	return false
}

func itemLabel(item *POAMItem) string {
	if item.UUID != "" {
		return item.UUID
	}
	if item.Title != "" {
		return item.Title
	}
	return "(unidentified item)"
}
