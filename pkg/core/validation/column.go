// Package validation - Column and document validation
// Applies per-type validators to column values, infers data types, and
// aggregates field results into document-level quality metrics.
package validation

import (
	"regexp"
	"strconv"
	"strings"
)

// =============================================================================
// TYPE PATTERNS
// =============================================================================

var (
	dateLayoutRes = []*regexp.Regexp{
		regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`),
		regexp.MustCompile(`^\d{1,2}/\d{1,2}/\d{4}$`),
		regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}`),
		regexp.MustCompile(`^\d{1,2}-\d{1,2}-\d{4}$`),
	}
	emailRe = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	ipv4Re  = regexp.MustCompile(`^((25[0-5]|2[0-4]\d|1\d\d|[1-9]?\d)\.){3}(25[0-5]|2[0-4]\d|1\d\d|[1-9]?\d)$`)
	uuidRe  = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)
)

var booleanStrings = map[string]bool{
	"true": true, "false": true, "yes": true, "no": true,
	"1": true, "0": true, "on": true, "off": true,
}

// =============================================================================
// COLUMN VALIDATION
// =============================================================================

// FieldStatus is the outcome bucket for one validated column
type FieldStatus string

const (
	StatusValid        FieldStatus = "valid"
	StatusInvalid      FieldStatus = "invalid"
	StatusTypeMismatch FieldStatus = "type_mismatch"
	StatusMissing      FieldStatus = "missing"
)

// ColumnValidationResult reports how well a column's values fit a type.
// Null/empty values count as valid (optional-field semantics); the
// validity rate is computed over non-null values only.
type ColumnValidationResult struct {
	FieldID       string      `json:"field_id"`
	SourceColumn  string      `json:"source_column"`
	ExpectedType  string      `json:"expected_type"`
	ActualType    string      `json:"actual_type"`
	Status        FieldStatus `json:"status"`
	ValidityRate  float64     `json:"validity_rate"`
	TotalValues   int         `json:"total_values"`
	NonNullValues int         `json:"non_null_values"`
	InvalidCount  int         `json:"invalid_count"`
	SampleInvalid []string    `json:"sample_invalid,omitempty"`
	Message       string      `json:"message,omitempty"`
}

const maxInvalidSamples = 5

// ValidateColumn checks a column's values against an expected type.
// Supported types: string, integer, float, boolean, date, email, url, ip,
// uuid.
func ValidateColumn(fieldID, sourceColumn string, values []string, expectedType string) ColumnValidationResult {
	result := ColumnValidationResult{
		FieldID:      fieldID,
		SourceColumn: sourceColumn,
		ExpectedType: expectedType,
		TotalValues:  len(values),
	}

	checker := checkerFor(expectedType)
	valid := 0
	for _, value := range values {
		trimmed := strings.TrimSpace(value)
		if trimmed == "" {
			continue // nulls are valid for optional fields
		}
		result.NonNullValues++
		if checker(trimmed) {
			valid++
			continue
		}
		result.InvalidCount++
		if len(result.SampleInvalid) < maxInvalidSamples {
			result.SampleInvalid = append(result.SampleInvalid, trimmed)
		}
	}

	if result.NonNullValues == 0 {
		result.ValidityRate = 1.0
	} else {
		result.ValidityRate = float64(valid) / float64(result.NonNullValues)
	}

	result.ActualType = DetectDataType(values)
	result.Status = bucketStatus(expectedType, result.ValidityRate)
	if result.Status != StatusValid {
		result.Message = statusMessage(result)
	}
	return result
}

// bucketStatus: string uses a two-tier 0.9/0.7 cutoff, every other type a
// single 0.9 cutoff straight to type mismatch.
func bucketStatus(expectedType string, rate float64) FieldStatus {
	if expectedType == "string" {
		switch {
		case rate >= 0.9:
			return StatusValid
		case rate >= 0.7:
			return StatusInvalid
		default:
			return StatusTypeMismatch
		}
	}
	if rate >= 0.9 {
		return StatusValid
	}
	return StatusTypeMismatch
}

func statusMessage(r ColumnValidationResult) string {
	return strings.TrimSpace(
		"column " + r.SourceColumn + " expected " + r.ExpectedType +
			", validity rate " + strconv.FormatFloat(r.ValidityRate, 'f', 2, 64) +
			" over " + strconv.Itoa(r.NonNullValues) + " values")
}

func checkerFor(expectedType string) func(string) bool {
	switch expectedType {
	case "integer":
		return isInteger
	case "float":
		return isFloat
	case "boolean":
		return isBoolean
	case "date":
		return isDate
	case "email":
		return isEmail
	case "url":
		return isURL
	case "ip":
		return isIP
	case "uuid":
		return isUUID
	default:
		// Everything is a valid string.
		return func(string) bool { return true }
	}
}

func isInteger(v string) bool {
	_, err := strconv.ParseInt(v, 10, 64)
	return err == nil
}

func isFloat(v string) bool {
	_, err := strconv.ParseFloat(v, 64)
	return err == nil
}

func isBoolean(v string) bool {
	return booleanStrings[strings.ToLower(v)]
}

func isDate(v string) bool {
	for _, re := range dateLayoutRes {
		if re.MatchString(v) {
			return true
		}
	}
	return false
}

func isEmail(v string) bool {
	return emailRe.MatchString(v)
}

func isURL(v string) bool {
	lower := strings.ToLower(v)
	return strings.HasPrefix(lower, "http://") ||
		strings.HasPrefix(lower, "https://") ||
		strings.HasPrefix(lower, "ftp://")
}

func isIP(v string) bool {
	return ipv4Re.MatchString(v)
}

func isUUID(v string) bool {
	return uuidRe.MatchString(v)
}

// =============================================================================
// DATA TYPE DETECTION
// =============================================================================

// detectionOrder is both the per-value inference cascade and the
// deterministic tie-break: when two types are equally frequent the one
// earlier in the cascade wins.
var detectionOrder = []struct {
	name  string
	check func(string) bool
}{
	{"date", isDate},
	{"email", isEmail},
	{"url", isURL},
	{"ip", isIP},
	{"uuid", isUUID},
	{"integer", isInteger},
	{"float", isFloat},
}

// DetectDataType infers the most common plausible type across non-null
// values. Each value is tried against the cascade in precedence order and
// labeled with the first type that accepts it; the most frequent label
// wins, with frequency ties resolved by cascade precedence.
func DetectDataType(values []string) string {
	counts := make(map[string]int)
	nonNull := 0
	for _, value := range values {
		trimmed := strings.TrimSpace(value)
		if trimmed == "" {
			continue
		}
		nonNull++
		label := "string"
		for _, d := range detectionOrder {
			if d.check(trimmed) {
				label = d.name
				break
			}
		}
		counts[label]++
	}
	if nonNull == 0 {
		return "string"
	}

	// Visit labels in cascade precedence with a strictly-greater
	// comparison: equally-frequent types resolve to the earlier one.
	best := ""
	bestCount := 0
	for _, d := range detectionOrder {
		if counts[d.name] > bestCount {
			best = d.name
			bestCount = counts[d.name]
		}
	}
	if counts["string"] > bestCount || best == "" {
		best = "string"
	}
	return best
}
