package quality

import "strings"

// =============================================================================
// CONSISTENCY ANALYZER
// =============================================================================

// AnalyzeConsistency verifies cross-field and cross-item invariants. The
// score is the mean of the per-rule success rates.
func AnalyzeConsistency(items []POAMItem, cfg QualityConfig) (float64, []QualityFinding) {
	uniqueRule := &ruleStat{name: "UUID uniqueness"}
	workflowRule := &ruleStat{name: "status workflow membership"}
	milestoneRule := &ruleStat{name: "milestone chronological order"}
	sequenceRule := &ruleStat{name: "scheduled/actual date sequence"}
	alignmentRule := &ruleStat{name: "status and completion date alignment"}

	seen := make(map[string]int, len(items))
	for i := range items {
		if items[i].UUID != "" {
			seen[strings.ToLower(items[i].UUID)]++
		}
	}

	for i := range items {
		item := &items[i]
		label := itemLabel(item)

		if item.UUID != "" {
			uniqueRule.record(label, seen[strings.ToLower(item.UUID)] == 1)
		}
		if item.Status != "" {
			workflowRule.record(label, containsFold(cfg.ValidStatuses, item.Status))
		}
		if len(item.Milestones) > 1 {
			milestoneRule.record(label, milestonesOrdered(item.Milestones))
		}

		// Dated milestones must not fall after the item's scheduled
		// completion date.
		if scheduled := parseItemDate(item.ScheduledCompletionDate); scheduled != nil {
			for j := range item.Milestones {
				milestone := parseItemDate(item.Milestones[j].ScheduledDate)
				if milestone == nil {
					continue
				}
				sequenceRule.record(label, !milestone.After(*scheduled))
			}
		}

		switch strings.ToLower(strings.TrimSpace(item.Status)) {
		case "completed":
			alignmentRule.record(label, item.ActualCompletionDate != "")
		case "open", "in progress":
			alignmentRule.record(label, item.ActualCompletionDate == "")
		}
	}

	stats := []*ruleStat{uniqueRule, workflowRule, milestoneRule, sequenceRule, alignmentRule}
	return meanRuleRate(stats), ruleFindings(stats, CategoryConsistency)
}

// milestonesOrdered checks that dated milestones appear in chronological
// order; undated milestones are skipped.
func milestonesOrdered(milestones []Milestone) bool {
	var last *Milestone
	for i := range milestones {
		if milestones[i].ScheduledDate == "" {
			continue
		}
		current := parseItemDate(milestones[i].ScheduledDate)
		if current == nil {
			continue
		}
		if last != nil {
			previous := parseItemDate(last.ScheduledDate)
			if previous != nil && current.Before(*previous) {
				return false
			}
		}
		last = &milestones[i]
	}
	return true
}
