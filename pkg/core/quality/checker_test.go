package quality

import (
	"math"
	"testing"
)

func approx(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("%s = %.6f, want %.6f", name, got, want)
	}
}

func perfectItem() POAMItem {
	return POAMItem{
		UUID:                    "123e4567-e89b-42d3-a456-426614174000",
		Title:                   "Patch OpenSSL",
		Description:             "Apply the vendor patch to all affected hosts.",
		Status:                  "Completed",
		Severity:                "High",
		ScheduledCompletionDate: "2024-03-15",
		ActualCompletionDate:    "2024-03-10",
		ResponsibleEntity:       "ISSO",
		ResourcesRequired:       "8 staff hours",
		RiskAssessment:          "Low residual risk after patching",
		Milestones: []Milestone{
			{Description: "stage patch", ScheduledDate: "2024-03-01"},
		},
	}
}

func TestAssessEmptyCollection(t *testing.T) {
	assessment := NewDefaultChecker().Assess(nil)

	approx(t, "CompletenessScore", assessment.CompletenessScore, 0.0)
	approx(t, "AccuracyScore", assessment.AccuracyScore, 1.0)
	approx(t, "ConsistencyScore", assessment.ConsistencyScore, 1.0)
	approx(t, "ComplianceScore", assessment.ComplianceScore, 1.0)
	// 0.0*0.3 + 1.0*0.3 + 1.0*0.2 + 1.0*0.2
	approx(t, "OverallScore", assessment.OverallScore, 0.7)

	if len(assessment.Findings) != 1 {
		t.Fatalf("got %d findings, want exactly 1", len(assessment.Findings))
	}
	finding := assessment.Findings[0]
	if finding.Severity != SeverityCritical || finding.Category != CategoryCompleteness {
		t.Errorf("finding = %s/%s, want Critical/Completeness", finding.Severity, finding.Category)
	}
	if assessment.Metrics.ErrorCount != 1 || assessment.Metrics.WarningCount != 0 {
		t.Errorf("metrics errors=%d warnings=%d, want 1/0",
			assessment.Metrics.ErrorCount, assessment.Metrics.WarningCount)
	}
	approx(t, "completeness category score", assessment.Metrics.CategoryScores[CategoryCompleteness], 0.0)
	approx(t, "accuracy category score", assessment.Metrics.CategoryScores[CategoryAccuracy], 1.0)
}

func TestAssessPerfectItem(t *testing.T) {
	assessment := NewDefaultChecker().Assess([]POAMItem{perfectItem()})

	approx(t, "CompletenessScore", assessment.CompletenessScore, 1.0)
	approx(t, "AccuracyScore", assessment.AccuracyScore, 1.0)
	approx(t, "ConsistencyScore", assessment.ConsistencyScore, 1.0)
	approx(t, "ComplianceScore", assessment.ComplianceScore, 1.0)
	approx(t, "OverallScore", assessment.OverallScore, 1.0)

	if len(assessment.Findings) != 0 {
		t.Errorf("findings = %+v, want none", assessment.Findings)
	}
	if len(assessment.Recommendations) != 0 {
		t.Errorf("recommendations = %+v, want none", assessment.Recommendations)
	}
	if assessment.AssessmentID == "" || assessment.Timestamp.IsZero() {
		t.Error("assessment id and timestamp must be populated")
	}
}

func TestRequiredOnlyItemScores(t *testing.T) {
	item := POAMItem{
		UUID:                    "123e4567-e89b-42d3-a456-426614174000",
		Title:                   "Fix",
		Description:             "Remediate the finding.",
		Status:                  "Open",
		ScheduledCompletionDate: "2024-06-01",
	}
	assessment := NewDefaultChecker().Assess([]POAMItem{item})

	// All 5 required fields present, 0 of 6 recommended.
	approx(t, "CompletenessScore", assessment.CompletenessScore, 0.8)
	approx(t, "AccuracyScore", assessment.AccuracyScore, 1.0)
	approx(t, "ConsistencyScore", assessment.ConsistencyScore, 1.0)
	// An open item without a risk assessment fails exactly one of the six
	// compliance rules.
	approx(t, "ComplianceScore", assessment.ComplianceScore, 5.0/6.0)
	approx(t, "OverallScore", assessment.OverallScore,
		0.8*0.3+1.0*0.3+1.0*0.2+(5.0/6.0)*0.2)

	if len(assessment.Findings) != 1 {
		t.Fatalf("got %d findings, want 1 (risk assessment)", len(assessment.Findings))
	}
	finding := assessment.Findings[0]
	if finding.Category != CategoryCompliance || finding.Severity != SeverityHigh {
		t.Errorf("finding = %s/%s, want Compliance/High (0%% pass rate)",
			finding.Category, finding.Severity)
	}
	if assessment.Metrics.ErrorCount != 1 {
		t.Errorf("ErrorCount = %d, want 1", assessment.Metrics.ErrorCount)
	}
	// Penalty 4*0.1 over 1*0.5 leaves 0.2.
	approx(t, "compliance category score", assessment.Metrics.CategoryScores[CategoryCompliance], 0.2)
}

func TestDuplicateUUIDs(t *testing.T) {
	first := perfectItem()
	second := perfectItem()
	second.Title = "Patch OpenSSL again"

	score, findings := AnalyzeConsistency([]POAMItem{first, second}, DefaultQualityConfig())

	// Uniqueness fails for both items; the other four rules pass, so the
	// mean drops by exactly one fifth.
	approx(t, "consistency score", score, 4.0/5.0)
	if len(findings) != 1 {
		t.Fatalf("got %d findings, want 1", len(findings))
	}
	if findings[0].Severity != SeverityHigh {
		t.Errorf("severity = %s, want High for a 0%% pass rate", findings[0].Severity)
	}
	if len(findings[0].AffectedItems) != 2 {
		t.Errorf("affected items = %v, want both duplicates", findings[0].AffectedItems)
	}
}

func TestMilestoneOrdering(t *testing.T) {
	item := perfectItem()
	item.Milestones = []Milestone{
		{Description: "second", ScheduledDate: "2024-03-10"},
		{Description: "first", ScheduledDate: "2024-03-01"},
	}

	_, findings := AnalyzeConsistency([]POAMItem{item}, DefaultQualityConfig())
	found := false
	for _, finding := range findings {
		if finding.Severity == SeverityHigh && finding.Category == CategoryConsistency {
			found = true
		}
	}
	if !found {
		t.Errorf("out-of-order milestones produced no consistency finding: %+v", findings)
	}
}

func TestAccuracyVocabularyAndFormats(t *testing.T) {
	bad := POAMItem{
		UUID:                    "not-a-uuid",
		Title:                   "ok",
		Description:             "short",
		Status:                  "Pending Review",
		Severity:                "Extreme",
		ScheduledCompletionDate: "someday soon",
	}

	score, findings := AnalyzeAccuracy([]POAMItem{bad}, DefaultQualityConfig())
	if score >= 1.0 {
		t.Errorf("score = %.3f, want below 1.0 for invalid values", score)
	}
	if len(findings) == 0 {
		t.Fatal("invalid values produced no accuracy findings")
	}
	for _, finding := range findings {
		if finding.Category != CategoryAccuracy {
			t.Errorf("finding category = %s, want Accuracy", finding.Category)
		}
	}
}

func TestCompletenessFindingSeverityBands(t *testing.T) {
	items := []POAMItem{perfectItem(), perfectItem(), perfectItem()}
	items[1].Description = ""
	items[2].Description = ""

	result := AnalyzeCompleteness(items, DefaultQualityConfig())

	var descFinding *QualityFinding
	for i := range result.Findings {
		if result.Findings[i].Category == CategoryCompleteness &&
			result.Findings[i].Severity == SeverityCritical {
			descFinding = &result.Findings[i]
		}
	}
	// description present on 1 of 3 items: rate 0.33 is below 0.5.
	if descFinding == nil {
		t.Fatalf("no critical completeness finding for a 33%% field: %+v", result.Findings)
	}
}

func TestRecommendationsForSparseData(t *testing.T) {
	sparse := POAMItem{Title: "x"}
	assessment := NewDefaultChecker().Assess([]POAMItem{sparse, sparse})

	if len(assessment.Recommendations) == 0 {
		t.Fatal("sparse items produced no recommendations")
	}

	hasCritical, hasCompleteness := false, false
	for _, rec := range assessment.Recommendations {
		if rec.Priority == SeverityCritical {
			hasCritical = true
		}
		if rec.Category == CategoryCompleteness {
			hasCompleteness = true
		}
	}
	if !hasCritical {
		t.Error("missing the critical-findings recommendation")
	}
	if !hasCompleteness {
		t.Error("missing completeness recommendations")
	}
}

func TestSeverityWeights(t *testing.T) {
	tests := []struct {
		severity FindingSeverity
		want     float64
	}{
		{SeverityCritical, 5},
		{SeverityHigh, 4},
		{SeverityMedium, 3},
		{SeverityLow, 2},
		{SeverityInformational, 1},
	}
	for _, tt := range tests {
		if got := tt.severity.Weight(); got != tt.want {
			t.Errorf("Weight(%s) = %v, want %v", tt.severity, got, tt.want)
		}
	}
}
