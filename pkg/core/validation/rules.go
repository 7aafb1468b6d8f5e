package validation

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"compliance_ingest/pkg/core/dates"
)

// =============================================================================
// CUSTOM VALIDATION RULES
// =============================================================================

// RuleType enumerates the registerable per-field rules
type RuleType string

const (
	RulePresence   RuleType = "presence"
	RulePattern    RuleType = "pattern"
	RuleRange      RuleType = "range"
	RuleEmail      RuleType = "email"
	RuleURL        RuleType = "url"
	RuleIPAddress  RuleType = "ip_address"
	RuleUUID       RuleType = "uuid"
	RuleDateFormat RuleType = "date_format"
)

// Rule is one registered check for a schema field. Null values pass every
// rule except presence; optionality is expressed by not registering a
// presence rule.
type Rule struct {
	Field   string
	Type    RuleType
	Pattern string // RulePattern
	Min     float64
	Max     float64 // RuleRange
	re      *regexp.Regexp
}

// RuleViolation points at the value that failed and why
type RuleViolation struct {
	Field   string   `json:"field"`
	Rule    RuleType `json:"rule"`
	RowIdx  int      `json:"row_idx"`
	Value   string   `json:"value"`
	Message string   `json:"message"`
}

var ruleDateChain = dates.NewDefaultConverter()

// compile validates a rule at registration time; a malformed rule is a
// configuration error and fails fast
func (r *Rule) compile() error {
	switch r.Type {
	case RulePattern:
		if r.Pattern == "" {
			return fmt.Errorf("pattern rule on %q has no pattern", r.Field)
		}
		re, err := regexp.Compile(r.Pattern)
		if err != nil {
			return fmt.Errorf("pattern rule on %q: %w", r.Field, err)
		}
		r.re = re
	case RuleRange:
		if r.Min > r.Max {
			return fmt.Errorf("range rule on %q has min %v > max %v", r.Field, r.Min, r.Max)
		}
	case RulePresence, RuleEmail, RuleURL, RuleIPAddress, RuleUUID, RuleDateFormat:
		// no parameters
	default:
		return fmt.Errorf("unknown rule type %q on %q", r.Type, r.Field)
	}
	return nil
}

// check evaluates the rule against one value, returning an empty string on
// success
func (r *Rule) check(value string) string {
	trimmed := strings.TrimSpace(value)
	if r.Type == RulePresence {
		if trimmed == "" {
			return "value is required"
		}
		return ""
	}
	if trimmed == "" {
		return "" // nulls pass non-presence rules
	}

	switch r.Type {
	case RulePattern:
		if !r.re.MatchString(trimmed) {
			return fmt.Sprintf("does not match pattern %q", r.Pattern)
		}
	case RuleRange:
		n, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return "is not numeric"
		}
		if n < r.Min || n > r.Max {
			return fmt.Sprintf("%v outside range [%v, %v]", n, r.Min, r.Max)
		}
	case RuleEmail:
		if !isEmail(trimmed) {
			return "is not a valid email address"
		}
	case RuleURL:
		if !isURL(trimmed) {
			return "is not a valid URL"
		}
	case RuleIPAddress:
		if !isIP(trimmed) {
			return "is not a valid IP address"
		}
	case RuleUUID:
		if !isUUID(trimmed) {
			return "is not a valid UUID"
		}
	case RuleDateFormat:
		if result := ruleDateChain.ParseDate(trimmed); result.Value == nil {
			return "is not a recognizable date"
		}
	}
	return ""
}
