package quality

import (
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"compliance_ingest/pkg/core/dates"
)

// =============================================================================
// RULE SCORING SHARED BY THE ACCURACY/CONSISTENCY/COMPLIANCE ANALYZERS
// =============================================================================

// ruleStat accumulates pass/fail counts for one check; checks that never
// apply to any item score a vacuous 1.0.
type ruleStat struct {
	name    string
	checked int
	passed  int
	failed  []string
}

func (r *ruleStat) record(label string, ok bool) {
	r.checked++
	if ok {
		r.passed++
	} else {
		r.failed = append(r.failed, label)
	}
}

func (r *ruleStat) rate() float64 {
	if r.checked == 0 {
		return 1.0
	}
	return float64(r.passed) / float64(r.checked)
}

// meanRuleRate averages the rule success rates; no rules means a vacuous 1.0
func meanRuleRate(stats []*ruleStat) float64 {
	if len(stats) == 0 {
		return 1.0
	}
	total := 0.0
	for _, stat := range stats {
		total += stat.rate()
	}
	return total / float64(len(stats))
}

// ruleFindings emits one finding per rule whose success rate falls below
// 1.0; severity scales with how far below it fell.
func ruleFindings(stats []*ruleStat, category FindingCategory) []QualityFinding {
	var findings []QualityFinding
	for _, stat := range stats {
		rate := stat.rate()
		if rate >= 1.0 {
			continue
		}
		findings = append(findings, QualityFinding{
			ID:       uuid.NewString(),
			Severity: ruleSeverity(rate),
			Category: category,
			Description: fmt.Sprintf("%s check failed for %d of %d items (%.0f%% pass rate)",
				stat.name, stat.checked-stat.passed, stat.checked, rate*100),
			AffectedItems: stat.failed,
		})
	}
	return findings
}

func ruleSeverity(rate float64) FindingSeverity {
	switch {
	case rate < 0.5:
		return SeverityHigh
	case rate < 0.8:
		return SeverityMedium
	}
	return SeverityLow
}

// =============================================================================
// ACCURACY ANALYZER
// =============================================================================

var rfc4122Pattern = regexp.MustCompile(
	`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[1-5][0-9a-fA-F]{3}-[89abAB][0-9a-fA-F]{3}-[0-9a-fA-F]{12}$`)

// dateChain is shared by all analyzers; the converter is safe for
// concurrent readers.
var dateChain = dates.NewDefaultConverter()

// parseItemDate runs a raw cell through the date chain; nil means the value
// could not be interpreted as a date.
func parseItemDate(raw string) *time.Time {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	return dateChain.ParseDate(raw).Value
}

// AnalyzeAccuracy verifies field values against format and vocabulary
// rules. The score is the mean of the per-rule success rates; a rule that
// never applied counts as fully passing.
func AnalyzeAccuracy(items []POAMItem, cfg QualityConfig) (float64, []QualityFinding) {
	uuidRule := &ruleStat{name: "UUID format"}
	dateRule := &ruleStat{name: "date format"}
	statusRule := &ruleStat{name: "status vocabulary"}
	severityRule := &ruleStat{name: "severity vocabulary"}
	textRule := &ruleStat{name: "minimum text length"}

	for i := range items {
		item := &items[i]
		label := itemLabel(item)

		if item.UUID != "" {
			uuidRule.record(label, rfc4122Pattern.MatchString(item.UUID))
		}
		if item.ScheduledCompletionDate != "" {
			dateRule.record(label, parseItemDate(item.ScheduledCompletionDate) != nil)
		}
		if item.ActualCompletionDate != "" {
			dateRule.record(label, parseItemDate(item.ActualCompletionDate) != nil)
		}
		if item.Status != "" {
			statusRule.record(label, containsFold(cfg.ValidStatuses, item.Status))
		}
		if item.Severity != "" {
			severityRule.record(label, containsFold(cfg.ValidSeverities, item.Severity))
		}
		if item.Title != "" || item.Description != "" {
			textRule.record(label,
				len(strings.TrimSpace(item.Title)) >= cfg.MinTitleLength &&
					len(strings.TrimSpace(item.Description)) >= cfg.MinDescriptionLength)
		}

		// Soft check: completion before the scheduled date is unusual but
		// not wrong, so it is logged rather than scored.
		scheduled := parseItemDate(item.ScheduledCompletionDate)
		actual := parseItemDate(item.ActualCompletionDate)
		if scheduled != nil && actual != nil && actual.Before(*scheduled) {
			log.Printf("[quality] item %s completed before its scheduled date", label)
		}
	}

	stats := []*ruleStat{uuidRule, dateRule, statusRule, severityRule, textRule}
	return meanRuleRate(stats), ruleFindings(stats, CategoryAccuracy)
}
