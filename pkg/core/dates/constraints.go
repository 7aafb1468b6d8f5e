package dates

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// =============================================================================
// DATE CONSTRAINTS
// =============================================================================

// ConstraintKind enumerates the supported validation rule types
type ConstraintKind string

const (
	ConstraintAfter            ConstraintKind = "after"
	ConstraintBefore           ConstraintKind = "before"
	ConstraintBetween          ConstraintKind = "between"
	ConstraintBusinessDaysOnly ConstraintKind = "business_days_only"
	ConstraintWeekdaysOnly     ConstraintKind = "weekdays_only"
	ConstraintCustom           ConstraintKind = "custom"
)

// DateConstraint is a caller-registered rule applied by ValidateDate.
// FieldName "*" applies the rule to every field.
type DateConstraint struct {
	FieldName string
	Kind      ConstraintKind
	After     time.Time
	Before    time.Time
	Message   string
	Predicate func(time.Time) bool // ConstraintCustom only
}

// AddConstraint registers a validation rule on the chain
func (c *Converter) AddConstraint(constraint DateConstraint) error {
	if constraint.Kind == ConstraintCustom && constraint.Predicate == nil {
		return fmt.Errorf("custom constraint on %q has no predicate", constraint.FieldName)
	}
	if constraint.Kind == ConstraintBetween && !constraint.After.Before(constraint.Before) {
		return fmt.Errorf("between constraint on %q has an empty window", constraint.FieldName)
	}
	c.constraints = append(c.constraints, constraint)
	return nil
}

// ValidateDate checks a parsed date against every registered constraint
// whose field name matches (or is "*") and returns the violations
func (c *Converter) ValidateDate(value time.Time, fieldName string) []string {
	var violations []string
	for _, constraint := range c.constraints {
		if constraint.FieldName != "*" && constraint.FieldName != fieldName {
			continue
		}
		if msg := checkConstraint(value, fieldName, constraint); msg != "" {
			violations = append(violations, msg)
		}
	}
	return violations
}

func checkConstraint(value time.Time, fieldName string, constraint DateConstraint) string {
	fail := func(detail string) string {
		if constraint.Message != "" {
			return constraint.Message
		}
		return fmt.Sprintf("%s: %s", fieldName, detail)
	}

	switch constraint.Kind {
	case ConstraintAfter:
		if !value.After(constraint.After) {
			return fail(fmt.Sprintf("must be after %s", constraint.After.Format("2006-01-02")))
		}
	case ConstraintBefore:
		if !value.Before(constraint.Before) {
			return fail(fmt.Sprintf("must be before %s", constraint.Before.Format("2006-01-02")))
		}
	case ConstraintBetween:
		if value.Before(constraint.After) || value.After(constraint.Before) {
			return fail(fmt.Sprintf("must be between %s and %s",
				constraint.After.Format("2006-01-02"), constraint.Before.Format("2006-01-02")))
		}
	case ConstraintBusinessDaysOnly, ConstraintWeekdaysOnly:
		wd := value.Weekday()
		if wd == time.Saturday || wd == time.Sunday {
			return fail("falls on a weekend")
		}
	case ConstraintCustom:
		if constraint.Predicate != nil && !constraint.Predicate(value) {
			return fail("fails custom validation")
		}
	}
	return ""
}

// =============================================================================
// SEQUENCE VALIDATION
// =============================================================================

var (
	sequenceStartKeywords = []string{"start", "open", "begin", "created"}
	sequenceEndKeywords   = []string{"end", "close", "due", "completion", "finished"}
)

// ValidateDateSequence cross-checks a set of named dates. Any field whose
// name carries a start/open keyword must not be chronologically after a
// field carrying an end/close/due keyword. An "actual" date more than 90
// days past its "scheduled" counterpart produces a "Warning:"-prefixed
// entry rather than an error. Fields are checked in sorted name order so
// the returned issues are stable across runs.
func ValidateDateSequence(namedDates map[string]time.Time) []string {
	names := make([]string, 0, len(namedDates))
	for name := range namedDates {
		names = append(names, name)
	}
	sort.Strings(names)

	var issues []string
	for _, startName := range names {
		if !containsAny(startName, sequenceStartKeywords) {
			continue
		}
		startValue := namedDates[startName]
		for _, endName := range names {
			if startName == endName || !containsAny(endName, sequenceEndKeywords) {
				continue
			}
			if startValue.After(namedDates[endName]) {
				issues = append(issues, fmt.Sprintf(
					"%s (%s) is after %s (%s)",
					startName, startValue.Format("2006-01-02"),
					endName, namedDates[endName].Format("2006-01-02")))
			}
		}
	}

	for _, scheduledName := range names {
		if !strings.Contains(strings.ToLower(scheduledName), "scheduled") {
			continue
		}
		actualName := strings.Replace(strings.ToLower(scheduledName), "scheduled", "actual", 1)
		actualValue, ok := namedDates[actualName]
		if !ok {
			continue
		}
		if actualValue.Sub(namedDates[scheduledName]) > 90*24*time.Hour {
			issues = append(issues, fmt.Sprintf(
				"Warning: %s is more than 90 days after %s", actualName, scheduledName))
		}
	}

	return issues
}

func containsAny(name string, keywords []string) bool {
	lower := strings.ToLower(name)
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// =============================================================================
// POA&M PRESETS
// =============================================================================

// AddPOAMValidationRules registers the standard milestone-tracking rules:
// scheduled completions in the future, actual completions in the past,
// milestone dates on business days, and a sanity window on every field.
func (c *Converter) AddPOAMValidationRules(now time.Time) error {
	rules := []DateConstraint{
		{
			FieldName: "scheduled_completion_date",
			Kind:      ConstraintAfter,
			After:     now,
			Message:   "scheduled_completion_date: must be in the future",
		},
		{
			FieldName: "actual_completion_date",
			Kind:      ConstraintBefore,
			Before:    now,
			Message:   "actual_completion_date: must be in the past",
		},
		{
			FieldName: "milestone_date",
			Kind:      ConstraintBusinessDaysOnly,
			Message:   "milestone_date: must fall on a business day",
		},
		{
			FieldName: "*",
			Kind:      ConstraintBetween,
			After:     now.AddDate(-10, 0, 0),
			Before:    now.AddDate(5, 0, 0),
		},
	}
	for _, rule := range rules {
		if err := c.AddConstraint(rule); err != nil {
			return err
		}
	}
	return nil
}
