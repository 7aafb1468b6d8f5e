package validation

import (
	"fmt"
)

// =============================================================================
// DOCUMENT SCHEMA
// =============================================================================

// SchemaField declares one expected field of a document
type SchemaField struct {
	FieldID      string `json:"field_id"`
	SourceColumn string `json:"source_column"`
	ExpectedType string `json:"expected_type"`
}

// =============================================================================
// QUALITY METRICS
// =============================================================================

// RiskLevel summarizes how risky a document's quality is
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// QualityMetrics derives document-level numbers from field outcomes.
// An empty document is vacuously perfect: score 1.0, grade A, low risk.
type QualityMetrics struct {
	OverallScore   float64   `json:"overall_score"`
	PassedFields   int       `json:"passed_fields"`
	FailedFields   int       `json:"failed_fields"`
	TotalFields    int       `json:"total_fields"`
	RiskLevel      RiskLevel `json:"risk_level"`
	QualityGrade   string    `json:"quality_grade"`
	CompletionRate float64   `json:"completion_rate"`
}

func computeQualityMetrics(passed, total int) QualityMetrics {
	if total == 0 {
		return QualityMetrics{
			OverallScore:   1.0,
			RiskLevel:      RiskLow,
			QualityGrade:   "A",
			CompletionRate: 1.0,
		}
	}
	score := float64(passed) / float64(total)
	return QualityMetrics{
		OverallScore:   score,
		PassedFields:   passed,
		FailedFields:   total - passed,
		TotalFields:    total,
		RiskLevel:      riskLevelFor(score),
		QualityGrade:   gradeFor(score),
		CompletionRate: score,
	}
}

func riskLevelFor(score float64) RiskLevel {
	switch {
	case score >= 0.9:
		return RiskLow
	case score >= 0.7:
		return RiskMedium
	default:
		return RiskHigh
	}
}

func gradeFor(score float64) string {
	switch {
	case score >= 0.95:
		return "A"
	case score >= 0.85:
		return "B"
	case score >= 0.75:
		return "C"
	case score >= 0.65:
		return "D"
	default:
		return "F"
	}
}

// =============================================================================
// DOCUMENT VALIDATOR
// =============================================================================

// DocumentValidationResult bundles all field outcomes for one document
type DocumentValidationResult struct {
	FieldResults    []ColumnValidationResult `json:"field_results"`
	RuleViolations  []RuleViolation          `json:"rule_violations,omitempty"`
	Metrics         QualityMetrics           `json:"metrics"`
	MeetsThreshold  bool                     `json:"meets_threshold"`
	Summary         string                   `json:"summary"`
}

// DocumentValidator applies a schema plus registered custom rules to a
// document's columns
type DocumentValidator struct {
	qualityThreshold float64
	rules            []Rule
}

// NewDocumentValidator creates a validator with the given pass threshold
func NewDocumentValidator(qualityThreshold float64) *DocumentValidator {
	return &DocumentValidator{qualityThreshold: qualityThreshold}
}

// AddRule registers a custom rule, failing fast on malformed parameters
func (v *DocumentValidator) AddRule(rule Rule) error {
	if rule.Field == "" {
		return fmt.Errorf("add rule: field name is empty")
	}
	if err := rule.compile(); err != nil {
		return fmt.Errorf("add rule: %w", err)
	}
	v.rules = append(v.rules, rule)
	return nil
}

// ValidateDocument checks every schema field against the document's
// columns. Columns absent from the document are recorded as failed with
// actual type "Missing"; a bad column never aborts the rest.
func (v *DocumentValidator) ValidateDocument(columns map[string][]string, schema []SchemaField) DocumentValidationResult {
	var result DocumentValidationResult
	passed := 0

	for _, field := range schema {
		values, ok := columns[field.SourceColumn]
		if !ok {
			result.FieldResults = append(result.FieldResults, ColumnValidationResult{
				FieldID:      field.FieldID,
				SourceColumn: field.SourceColumn,
				ExpectedType: field.ExpectedType,
				ActualType:   "Missing",
				Status:       StatusMissing,
				Message:      fmt.Sprintf("column %q not present in document", field.SourceColumn),
			})
			continue
		}

		fieldResult := ValidateColumn(field.FieldID, field.SourceColumn, values, field.ExpectedType)
		violations := v.applyRules(field, values)
		result.RuleViolations = append(result.RuleViolations, violations...)
		if len(violations) > 0 && fieldResult.Status == StatusValid {
			fieldResult.Status = StatusInvalid
			fieldResult.Message = fmt.Sprintf("%d custom rule violations", len(violations))
		}
		result.FieldResults = append(result.FieldResults, fieldResult)
		if fieldResult.Status == StatusValid {
			passed++
		}
	}

	total := len(schema)
	result.Metrics = computeQualityMetrics(passed, total)
	result.MeetsThreshold = result.Metrics.OverallScore >= v.qualityThreshold
	result.Summary = summaryString(total, passed, result.MeetsThreshold)
	return result
}

func (v *DocumentValidator) applyRules(field SchemaField, values []string) []RuleViolation {
	var violations []RuleViolation
	for i := range v.rules {
		rule := &v.rules[i]
		if rule.Field != field.FieldID {
			continue
		}
		for rowIdx, value := range values {
			if msg := rule.check(value); msg != "" {
				violations = append(violations, RuleViolation{
					Field:   field.FieldID,
					Rule:    rule.Type,
					RowIdx:  rowIdx,
					Value:   value,
					Message: fmt.Sprintf("field %q row %d: %s", field.FieldID, rowIdx, msg),
				})
			}
		}
	}
	return violations
}

func summaryString(total, passed int, meetsThreshold bool) string {
	overall := "PASSED"
	if passed < total {
		overall = "FAILED"
	}
	threshold := "MET"
	if !meetsThreshold {
		threshold = "NOT MET"
	}
	return fmt.Sprintf("Document validation: %d fields total, %d passed, %d failed. Overall: %s. Quality threshold: %s",
		total, passed, total-passed, overall, threshold)
}
