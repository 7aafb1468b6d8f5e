package quality

import "strings"

// =============================================================================
// COMPLIANCE ANALYZER
// =============================================================================

// AnalyzeCompliance checks FedRAMP POA&M submission requirements plus the
// OSCAL identifier and date rules. The score is the mean of the per-rule
// compliance rates.
func AnalyzeCompliance(items []POAMItem, cfg QualityConfig) (float64, []QualityFinding) {
	requiredRule := &ruleStat{name: "FedRAMP required fields"}
	textQualityRule := &ruleStat{name: "FedRAMP text quality"}
	timelineRule := &ruleStat{name: "FedRAMP timeline"}
	riskRule := &ruleStat{name: "FedRAMP risk assessment"}
	oscalUUIDRule := &ruleStat{name: "OSCAL UUID"}
	oscalDateRule := &ruleStat{name: "OSCAL date format"}

	for i := range items {
		item := &items[i]
		label := itemLabel(item)

		requiredRule.record(label, hasAllFields(item, cfg.RequiredFields))
		textQualityRule.record(label,
			len(strings.TrimSpace(item.Title)) >= cfg.MinTitleLength &&
				len(strings.TrimSpace(item.Description)) >= cfg.MinDescriptionLength)

		// Every item needs a scheduled date; completed items need the
		// actual date recorded too.
		timelineOK := item.ScheduledCompletionDate != ""
		if strings.EqualFold(strings.TrimSpace(item.Status), "completed") {
			timelineOK = timelineOK && item.ActualCompletionDate != ""
		}
		timelineRule.record(label, timelineOK)

		switch strings.ToLower(strings.TrimSpace(item.Status)) {
		case "open", "in progress":
			riskRule.record(label, strings.TrimSpace(item.RiskAssessment) != "")
		}

		if item.UUID != "" {
			oscalUUIDRule.record(label, rfc4122Pattern.MatchString(item.UUID))
		}
		if item.ScheduledCompletionDate != "" {
			oscalDateRule.record(label, parseItemDate(item.ScheduledCompletionDate) != nil)
		}
	}

	stats := []*ruleStat{
		requiredRule, textQualityRule, timelineRule,
		riskRule, oscalUUIDRule, oscalDateRule,
	}
	return meanRuleRate(stats), ruleFindings(stats, CategoryCompliance)
}

func hasAllFields(item *POAMItem, fields []string) bool {
	for _, field := range fields {
		if !fieldPresent(item, field) {
			return false
		}
	}
	return true
}
